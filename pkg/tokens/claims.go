package tokens

import "github.com/golang-jwt/jwt/v5"

// AccessClaims is the payload of a short-lived access token. Roles are
// embedded so protected routes can be gated without a store lookup; they
// are authoritative until the token expires.
type AccessClaims struct {
	Username string `json:"username"`
	Roles    []int  `json:"roles"`
	jwt.RegisteredClaims
}

// RefreshClaims deliberately carries no roles: privileges are re-read from
// the store on every refresh, so a long-lived token never pins stale roles.
type RefreshClaims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}
