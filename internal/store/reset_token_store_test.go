package store

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResetTokenCreate(t *testing.T) {
	poolMock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer poolMock.Close()

	now := time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)
	userID := uuid.New()
	tokenID := uuid.New()

	resetTokens := NewResetTokenStore(poolMock, 0)
	resetTokens.generateToken = sequenceTokens("token-a")

	poolMock.ExpectQuery("INSERT INTO password_reset_tokens").
		WithArgs(pgxmock.AnyArg(), userID, "token-a", now.Add(DefaultResetTokenTTL), now).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(tokenID))

	resetToken, err := resetTokens.Create(context.Background(), userID, now)
	require.NoError(t, err)
	assert.Equal(t, tokenID, resetToken.ID)
	assert.Equal(t, "token-a", resetToken.Token)
	assert.Equal(t, now.Add(time.Hour), resetToken.ExpiresAt)
	assert.NoError(t, poolMock.ExpectationsWereMet())
}

func TestResetTokenCreateRetriesOnCollision(t *testing.T) {
	poolMock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer poolMock.Close()

	now := time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)
	userID := uuid.New()
	tokenID := uuid.New()

	resetTokens := NewResetTokenStore(poolMock, 30*time.Minute)
	resetTokens.generateToken = sequenceTokens("taken", "fresh")

	poolMock.ExpectQuery("INSERT INTO password_reset_tokens").
		WithArgs(pgxmock.AnyArg(), userID, "taken", now.Add(30*time.Minute), now).
		WillReturnRows(pgxmock.NewRows([]string{"id"}))
	poolMock.ExpectQuery("INSERT INTO password_reset_tokens").
		WithArgs(pgxmock.AnyArg(), userID, "fresh", now.Add(30*time.Minute), now).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(tokenID))

	resetToken, err := resetTokens.Create(context.Background(), userID, now)
	require.NoError(t, err)
	assert.Equal(t, "fresh", resetToken.Token)
	assert.Equal(t, tokenID, resetToken.ID)
	assert.NoError(t, poolMock.ExpectationsWereMet())
}

func TestResetTokenCreateGivesUpAfterMaxAttempts(t *testing.T) {
	poolMock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer poolMock.Close()

	now := time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)
	resetTokens := NewResetTokenStore(poolMock, 0)
	resetTokens.generateToken = sequenceTokens("taken")

	for i := 0; i < maxTokenAttempts; i++ {
		poolMock.ExpectQuery("INSERT INTO password_reset_tokens").WillReturnRows(pgxmock.NewRows([]string{"id"}))
	}

	_, err = resetTokens.Create(context.Background(), uuid.New(), now)
	assert.ErrorIs(t, err, ErrTokenCollision)
	assert.NoError(t, poolMock.ExpectationsWereMet())
}

func TestResetTokenConsume(t *testing.T) {
	now := time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)

	t.Run("Valid", func(t *testing.T) {
		poolMock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer poolMock.Close()

		userID := uuid.New()
		poolMock.ExpectQuery("DELETE FROM password_reset_tokens WHERE token = \\$1 AND expires_at > \\$2 RETURNING user_id").
			WithArgs("token-a", now).
			WillReturnRows(pgxmock.NewRows([]string{"user_id"}).AddRow(userID))

		consumed, err := NewResetTokenStore(poolMock, 0).Consume(context.Background(), "token-a", now)
		require.NoError(t, err)
		assert.Equal(t, userID, consumed)
		assert.NoError(t, poolMock.ExpectationsWereMet())
	})

	t.Run("ExpiredOrUsed", func(t *testing.T) {
		poolMock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer poolMock.Close()

		poolMock.ExpectQuery("DELETE FROM password_reset_tokens").
			WithArgs("token-a", now).
			WillReturnRows(pgxmock.NewRows([]string{"user_id"}))

		_, err = NewResetTokenStore(poolMock, 0).Consume(context.Background(), "token-a", now)
		assert.ErrorIs(t, err, ErrNotFound)
		assert.NoError(t, poolMock.ExpectationsWereMet())
	})
}
