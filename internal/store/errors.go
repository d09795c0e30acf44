// Package store holds the SQL behind users, sessions and password reset tokens.
package store

import (
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrNotFound is returned when a record does not exist or is no longer valid.
	ErrNotFound = errors.New("not found")
	// ErrUsernameTaken is returned when the username unique constraint rejects a write.
	ErrUsernameTaken = errors.New("username taken")
	// ErrEmailTaken is returned when the email unique constraint rejects a write.
	ErrEmailTaken = errors.New("email taken")
	// ErrTokenCollision is returned when every generated token already existed.
	ErrTokenCollision = errors.New("token collision")
)

// Constraint names, see internal/migrations.
const (
	usernameConstraint = "users_username_key"
	emailConstraint    = "users_email_key"
)

// maxTokenAttempts bounds the regeneration of colliding tokens.
const maxTokenAttempts = 3

// translateUniqueViolation maps unique violations on users to the store's sentinel errors.
func translateUniqueViolation(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != pgerrcode.UniqueViolation {
		return err
	}

	switch pgErr.ConstraintName {
	case usernameConstraint:
		return ErrUsernameTaken
	case emailConstraint:
		return ErrEmailTaken
	default:
		return err
	}
}
