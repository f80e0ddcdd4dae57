package domain

import "time"

// User is the identity record issued by the auth layer. The identifier is
// immutable for the lifetime of the account; everything user-editable lives
// on Profile instead.
type User struct {
	ID            string    `json:"id"`
	Email         string    `json:"email"`
	EmailVerified bool      `json:"email_verified"`
	PasswordHash  string    `json:"-"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
