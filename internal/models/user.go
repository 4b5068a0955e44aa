package models

import "time"

// user roles
const (
	RoleAdmin   = "admin"
	RoleSchool  = "school"
	RoleTrustee = "trustee"
)

// User is user entity. PasswordHash is never serialized to clients.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	Role         string
	CreatedAt    time.Time
}

// TokenPayload is payload of authorization token
type TokenPayload struct {
	UserID string
	Email  string
	Role   string
}
