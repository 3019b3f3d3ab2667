package middleware

import (
	"net/http"
	"strings"

	"github.com/andrsk/staff-portal/pkg/tokens"
	"github.com/labstack/echo/v4"
)

const (
	ContextUsername = "username"
	ContextRoles    = "roles"
)

type TokenVerifier struct {
	AccessSecret []byte
}

func NewTokenVerifier(secret []byte) *TokenVerifier {
	return &TokenVerifier{AccessSecret: secret}
}

// RequireAuth enforces Authorization: Bearer <accessToken>. A missing or
// malformed header is 401; a token that fails verification is 403 so an
// expired access token shows up to the client as a retryable condition
// rather than a redirect to login.
func (m *TokenVerifier) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		header := c.Request().Header.Get(echo.HeaderAuthorization)
		if !strings.HasPrefix(header, "Bearer ") {
			return echo.NewHTTPError(http.StatusUnauthorized, "missing access token")
		}

		token := strings.TrimPrefix(header, "Bearer ")
		claims, err := tokens.AccessClaimsFromToken(token, m.AccessSecret)
		if err != nil {
			return echo.NewHTTPError(http.StatusForbidden, "invalid or expired token")
		}

		c.Set(ContextUsername, claims.Username)
		c.Set(ContextRoles, []int(claims.Roles))

		return next(c)
	}
}
