package domain

import "time"

// Role is one of the fixed account roles.
type Role string

const (
	RoleUser       Role = "user"
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "superAdmin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAdmin, RoleSuperAdmin:
		return true
	}
	return false
}

// User is an account able to authenticate against the API.
type User struct {
	ID           int64
	Username     string
	PasswordHash string
	Email        string
	Role         Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
