package models

// Role codes. Numeric on the wire so the token payload does not leak role
// names.
const (
	RoleUser   = 2001
	RoleEditor = 1984
	RoleAdmin  = 5150
)

type RoleList []int

// Contains reports whether any of the given codes is present. A single
// match is enough.
func (r RoleList) Contains(codes ...int) bool {
	for _, have := range r {
		for _, want := range codes {
			if have == want {
				return true
			}
		}
	}
	return false
}

// User holds at most one live refresh token: logging in elsewhere
// overwrites it and forcibly logs out the prior session.
type User struct {
	ID           uint     `gorm:"primaryKey;autoIncrement" json:"id"`
	Username     string   `gorm:"uniqueIndex;not null"     json:"username"`
	PasswordHash string   `gorm:"not null"                 json:"-"`
	Roles        RoleList `gorm:"serializer:json;not null" json:"roles"`
	RefreshToken string   `gorm:"index"                    json:"-"`
}

type Employee struct {
	ID        uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	FirstName string `gorm:"not null"                 json:"firstname"`
	LastName  string `gorm:"not null"                 json:"lastname"`
}
