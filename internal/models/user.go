package models

import "time"

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// ValidRole reports whether role is one of the two recognized values.
func ValidRole(role string) bool {
	return role == RoleUser || role == RoleAdmin
}

type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	Phone        *string   `json:"phone,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
