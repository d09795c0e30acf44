// Package schemas defines the data structures
package schemas

import (
	"time"

	"github.com/google/uuid"
)

// User represents the data model for a user in the system.
type User struct {
	ID           uuid.UUID `json:"id"`         // Unique identifier for the user.
	Username     string    `json:"username"`   // Username of the user.
	Email        string    `json:"email"`      // Email address of the user.
	PasswordHash string    `json:"-"`          // Bcrypt digest of the password, never serialized.
	IsActive     bool      `json:"is_active"`  // Disabled accounts cannot log in.
	CreatedAt    time.Time `json:"created_at"` // Timestamp when the user was created.
	UpdatedAt    time.Time `json:"updated_at"` // Timestamp of the last profile or password change.
}

// Session represents a logged-in browser session identified by an opaque token.
type Session struct {
	ID        uuid.UUID `json:"id"`         // Unique identifier for the session.
	UserID    uuid.UUID `json:"user_id"`    // Identifier of the user owning the session.
	Token     string    `json:"-"`          // Token echoed in the session cookie.
	ExpiresAt time.Time `json:"expires_at"` // Sessions are inert once this instant is reached.
	CreatedAt time.Time `json:"created_at"` // Timestamp when the session was issued.
}

// PasswordResetToken grants time-boxed permission to set a new password.
type PasswordResetToken struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Token     string    `json:"-"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

// ToDTO strips everything that must not leave the server.
func (u *User) ToDTO() *UserDTO {
	return &UserDTO{
		ID:       u.ID.String(),
		Username: u.Username,
		Email:    u.Email,
	}
}
