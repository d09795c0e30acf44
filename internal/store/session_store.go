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

// DefaultSessionTTL is how long a session stays valid after login.
const DefaultSessionTTL = 7 * 24 * time.Hour

// SessionStore handles persistence for browser sessions.
type SessionStore struct {
	db            interfaces.PgxQuerier
	ttl           time.Duration
	generateToken func() (string, error)
}

func NewSessionStore(db interfaces.PgxQuerier, ttl time.Duration) *SessionStore {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &SessionStore{db: db, ttl: ttl, generateToken: utils.GenerateSecureToken}
}

// WithTx returns a store running its statements inside tx.
func (s *SessionStore) WithTx(tx pgx.Tx) *SessionStore {
	return &SessionStore{db: tx, ttl: s.ttl, generateToken: s.generateToken}
}

// Create issues a new session for userID expiring ttl after now.
// A token that already exists is regenerated, up to maxTokenAttempts times.
func (s *SessionStore) Create(ctx context.Context, userID uuid.UUID, now time.Time) (*schemas.Session, error) {
	session := &schemas.Session{
		UserID:    userID,
		ExpiresAt: now.Add(s.ttl),
		CreatedAt: now,
	}

	queryString := "INSERT INTO sessions (id, user_id, token, expires_at, created_at) VALUES ($1, $2, $3, $4, $5) ON CONFLICT (token) DO NOTHING RETURNING id"
	for attempt := 0; attempt < maxTokenAttempts; attempt++ {
		token, err := s.generateToken()
		if err != nil {
			return nil, fmt.Errorf("generate session token: %w", err)
		}

		err = s.db.QueryRow(ctx, queryString, uuid.New(), userID, token, session.ExpiresAt, now).Scan(&session.ID)
		if errors.Is(err, pgx.ErrNoRows) {
			utils.LogMessageWithFields(ctx, "warn", "Session token collided, regenerating")
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("insert session: %w", err)
		}

		session.Token = token
		return session, nil
	}

	return nil, ErrTokenCollision
}

// FindValidByToken returns the session for token if it expires strictly after now.
func (s *SessionStore) FindValidByToken(ctx context.Context, token string, now time.Time) (*schemas.Session, error) {
	queryString := "SELECT id, user_id, token, expires_at, created_at FROM sessions WHERE token = $1 AND expires_at > $2"

	session := &schemas.Session{}
	err := s.db.QueryRow(ctx, queryString, token, now).Scan(&session.ID, &session.UserID, &session.Token, &session.ExpiresAt, &session.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return session, nil
}

// DeleteByID revokes a single session.
func (s *SessionStore) DeleteByID(ctx context.Context, id uuid.UUID) error {
	_, err := s.db.Exec(ctx, "DELETE FROM sessions WHERE id = $1", id)
	return err
}

// DeleteByUserID revokes every session of userID and returns how many were removed.
func (s *SessionStore) DeleteByUserID(ctx context.Context, userID uuid.UUID) (int64, error) {
	tag, err := s.db.Exec(ctx, "DELETE FROM sessions WHERE user_id = $1", userID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// DeleteExpired purges sessions that are no longer valid at now.
func (s *SessionStore) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	tag, err := s.db.Exec(ctx, "DELETE FROM sessions WHERE expires_at <= $1", now)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
