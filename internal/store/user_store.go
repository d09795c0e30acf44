package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jxiaof/next16-demo/internal/interfaces"
	"github.com/jxiaof/next16-demo/internal/schemas"
)

const userColumns = "id, username, email, password_hash, is_active, created_at, updated_at"

// UserStore handles persistence for users.
type UserStore struct {
	db interfaces.PgxQuerier
}

func NewUserStore(db interfaces.PgxQuerier) *UserStore {
	return &UserStore{db: db}
}

// WithTx returns a store running its statements inside tx.
func (s *UserStore) WithTx(tx pgx.Tx) *UserStore {
	return &UserStore{db: tx}
}

func (s *UserStore) FindByID(ctx context.Context, id uuid.UUID) (*schemas.User, error) {
	queryString := "SELECT " + userColumns + " FROM users WHERE id = $1"
	return s.findOne(ctx, queryString, id)
}

func (s *UserStore) FindByUsername(ctx context.Context, username string) (*schemas.User, error) {
	queryString := "SELECT " + userColumns + " FROM users WHERE username = $1"
	return s.findOne(ctx, queryString, username)
}

func (s *UserStore) FindByEmail(ctx context.Context, email string) (*schemas.User, error) {
	queryString := "SELECT " + userColumns + " FROM users WHERE email = $1"
	return s.findOne(ctx, queryString, email)
}

// FindByUsernameOrEmail returns the first user holding either value, used for the registration pre-check.
func (s *UserStore) FindByUsernameOrEmail(ctx context.Context, username, email string) (*schemas.User, error) {
	queryString := "SELECT " + userColumns + " FROM users WHERE username = $1 OR email = $2 LIMIT 1"
	return s.findOne(ctx, queryString, username, email)
}

// ExistsUsernameForOther tells whether a user other than excludeID holds username.
func (s *UserStore) ExistsUsernameForOther(ctx context.Context, username string, excludeID uuid.UUID) (bool, error) {
	queryString := "SELECT EXISTS (SELECT 1 FROM users WHERE username = $1 AND id <> $2)"
	return s.exists(ctx, queryString, username, excludeID)
}

// ExistsEmailForOther tells whether a user other than excludeID holds email.
func (s *UserStore) ExistsEmailForOther(ctx context.Context, email string, excludeID uuid.UUID) (bool, error) {
	queryString := "SELECT EXISTS (SELECT 1 FROM users WHERE email = $1 AND id <> $2)"
	return s.exists(ctx, queryString, email, excludeID)
}

// Create inserts user. Unique violations come back as ErrUsernameTaken or ErrEmailTaken.
func (s *UserStore) Create(ctx context.Context, user *schemas.User) error {
	queryString := "INSERT INTO users (id, username, email, password_hash, is_active, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6, $7)"
	_, err := s.db.Exec(ctx, queryString, user.ID, user.Username, user.Email, user.PasswordHash, user.IsActive, user.CreatedAt, user.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert user: %w", translateUniqueViolation(err))
	}
	return nil
}

func (s *UserStore) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string, now time.Time) error {
	queryString := "UPDATE users SET password_hash = $1, updated_at = $2 WHERE id = $3"
	tag, err := s.db.Exec(ctx, queryString, passwordHash, now, id)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateProfile changes username and email of an active user and returns the updated row.
// ErrNotFound covers both an unknown id and a disabled account.
func (s *UserStore) UpdateProfile(ctx context.Context, id uuid.UUID, username, email string, now time.Time) (*schemas.User, error) {
	queryString := "UPDATE users SET username = $1, email = $2, updated_at = $3 WHERE id = $4 AND is_active RETURNING " + userColumns
	user, err := s.findOne(ctx, queryString, username, email, now, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("update profile: %w", translateUniqueViolation(err))
	}
	return user, nil
}

func (s *UserStore) findOne(ctx context.Context, queryString string, args ...interface{}) (*schemas.User, error) {
	user := &schemas.User{}
	err := s.db.QueryRow(ctx, queryString, args...).Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.IsActive,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *UserStore) exists(ctx context.Context, queryString string, args ...interface{}) (bool, error) {
	var exists bool
	if err := s.db.QueryRow(ctx, queryString, args...).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}
