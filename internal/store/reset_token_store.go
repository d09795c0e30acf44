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
	"github.com/jxiaof/next16-demo/internal/utils"
)

// DefaultResetTokenTTL is how long an emailed reset link stays usable.
const DefaultResetTokenTTL = time.Hour

// ResetTokenStore handles persistence for password reset tokens.
type ResetTokenStore struct {
	db            interfaces.PgxQuerier
	ttl           time.Duration
	generateToken func() (string, error)
}

func NewResetTokenStore(db interfaces.PgxQuerier, ttl time.Duration) *ResetTokenStore {
	if ttl <= 0 {
		ttl = DefaultResetTokenTTL
	}
	return &ResetTokenStore{db: db, ttl: ttl, generateToken: utils.GenerateSecureToken}
}

// WithTx returns a store running its statements inside tx.
func (s *ResetTokenStore) WithTx(tx pgx.Tx) *ResetTokenStore {
	return &ResetTokenStore{db: tx, ttl: s.ttl, generateToken: s.generateToken}
}

// Create stores a fresh reset token for userID, regenerating on collision.
func (s *ResetTokenStore) Create(ctx context.Context, userID uuid.UUID, now time.Time) (*schemas.PasswordResetToken, error) {
	resetToken := &schemas.PasswordResetToken{
		UserID:    userID,
		ExpiresAt: now.Add(s.ttl),
		CreatedAt: now,
	}

	queryString := "INSERT INTO password_reset_tokens (id, user_id, token, expires_at, created_at) VALUES ($1, $2, $3, $4, $5) ON CONFLICT (token) DO NOTHING RETURNING id"
	for attempt := 0; attempt < maxTokenAttempts; attempt++ {
		token, err := s.generateToken()
		if err != nil {
			return nil, fmt.Errorf("generate reset token: %w", err)
		}

		err = s.db.QueryRow(ctx, queryString, uuid.New(), userID, token, resetToken.ExpiresAt, now).Scan(&resetToken.ID)
		if errors.Is(err, pgx.ErrNoRows) {
			utils.LogMessageWithFields(ctx, "warn", "Reset token collided, regenerating")
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("insert reset token: %w", err)
		}

		resetToken.Token = token
		return resetToken, nil
	}

	return nil, ErrTokenCollision
}

// FindValidByToken returns the reset token if it expires strictly after now.
func (s *ResetTokenStore) FindValidByToken(ctx context.Context, token string, now time.Time) (*schemas.PasswordResetToken, error) {
	queryString := "SELECT id, user_id, token, expires_at, created_at FROM password_reset_tokens WHERE token = $1 AND expires_at > $2"

	resetToken := &schemas.PasswordResetToken{}
	err := s.db.QueryRow(ctx, queryString, token, now).Scan(&resetToken.ID, &resetToken.UserID, &resetToken.Token, &resetToken.ExpiresAt, &resetToken.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return resetToken, nil
}

// Consume deletes the token if it is still valid at now and returns the owning user.
// Two concurrent submissions of the same token cannot both succeed.
func (s *ResetTokenStore) Consume(ctx context.Context, token string, now time.Time) (uuid.UUID, error) {
	queryString := "DELETE FROM password_reset_tokens WHERE token = $1 AND expires_at > $2 RETURNING user_id"

	var userID uuid.UUID
	if err := s.db.QueryRow(ctx, queryString, token, now).Scan(&userID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return uuid.Nil, ErrNotFound
		}
		return uuid.Nil, err
	}
	return userID, nil
}

// DeleteByUserID removes every reset token of userID.
func (s *ResetTokenStore) DeleteByUserID(ctx context.Context, userID uuid.UUID) error {
	_, err := s.db.Exec(ctx, "DELETE FROM password_reset_tokens WHERE user_id = $1", userID)
	return err
}

// DeleteExpired purges tokens that are no longer valid at now.
func (s *ResetTokenStore) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	tag, err := s.db.Exec(ctx, "DELETE FROM password_reset_tokens WHERE expires_at <= $1", now)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
