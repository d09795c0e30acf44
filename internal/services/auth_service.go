// Package services implements the account actions. Every action reports expected failures
// as a failed ActionResult and never as an error.
package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/jxiaof/next16-demo/internal/interfaces"
	"github.com/jxiaof/next16-demo/internal/managers"
	"github.com/jxiaof/next16-demo/internal/schemas"
	"github.com/jxiaof/next16-demo/internal/store"
	"github.com/jxiaof/next16-demo/internal/utils"
)

// Options tunes token lifetimes and the reset link.
type Options struct {
	BaseURL       string
	SessionTTL    time.Duration
	ResetTokenTTL time.Duration
	// Now defaults to time.Now and is replaced in tests to move the clock.
	Now func() time.Time
}

// AuthService orchestrates users, sessions and reset tokens.
type AuthService struct {
	pool        interfaces.PgxPoolIface
	users       *store.UserStore
	sessions    *store.SessionStore
	resetTokens *store.ResetTokenStore
	passwordMgr managers.PasswordMgr
	mailMgr     managers.MailMgr
	baseURL     string
	now         func() time.Time
}

func NewAuthService(databaseMgr managers.DatabaseMgr, passwordMgr managers.PasswordMgr, mailMgr managers.MailMgr, opts Options) *AuthService {
	pool := databaseMgr.GetPool()
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	return &AuthService{
		pool:        pool,
		users:       store.NewUserStore(pool),
		sessions:    store.NewSessionStore(pool, opts.SessionTTL),
		resetTokens: store.NewResetTokenStore(pool, opts.ResetTokenTTL),
		passwordMgr: passwordMgr,
		mailMgr:     mailMgr,
		baseURL:     opts.BaseURL,
		now:         now,
	}
}

// Register creates an active account. It does not log the user in.
func (s *AuthService) Register(ctx context.Context, req *schemas.RegistrationRequest) *schemas.ActionResult {
	if result := s.validate(ctx, req); result != nil {
		return result
	}

	existing, err := s.users.FindByUsernameOrEmail(ctx, req.Username, req.Email)
	switch {
	case err == nil:
		if existing.Username == req.Username {
			return schemas.Failed(schemas.UsernameTaken)
		}
		return schemas.Failed(schemas.EmailTaken)
	case !errors.Is(err, store.ErrNotFound):
		return s.internalError(ctx, "Error checking username and email", err)
	}

	passwordHash, err := s.passwordMgr.Hash(req.Password)
	if err != nil {
		return s.internalError(ctx, "Error hashing password", err)
	}

	now := s.now()
	user := &schemas.User{
		ID:           uuid.New(),
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: passwordHash,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	// The pre-check above is only a fast path, the unique constraints decide.
	if err := s.users.Create(ctx, user); err != nil {
		switch {
		case errors.Is(err, store.ErrUsernameTaken):
			return schemas.Failed(schemas.UsernameTaken)
		case errors.Is(err, store.ErrEmailTaken):
			return schemas.Failed(schemas.EmailTaken)
		}
		return s.internalError(ctx, "Error creating user", err)
	}

	utils.LogMessageWithFields(ctx, "info", "User registered")
	result := schemas.Succeeded(schemas.RegistrationSucceeded, user.ToDTO())
	result.HttpStatus = http.StatusCreated
	return result
}

// Login verifies the credentials and opens a session. The session is nil unless the result succeeded.
func (s *AuthService) Login(ctx context.Context, req *schemas.LoginRequest) (*schemas.ActionResult, *schemas.Session) {
	if result := s.validate(ctx, req); result != nil {
		return result, nil
	}

	user, err := s.users.FindByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return schemas.Failed(schemas.InvalidCredentials), nil
		}
		return s.internalError(ctx, "Error loading user", err), nil
	}

	if !s.passwordMgr.Verify(req.Password, user.PasswordHash) {
		return schemas.Failed(schemas.InvalidCredentials), nil
	}

	// Disabled accounts are only reported to callers holding the password.
	if !user.IsActive {
		return schemas.Failed(schemas.UserDisabled), nil
	}

	session, err := s.sessions.Create(ctx, user.ID, s.now())
	if err != nil {
		return s.internalError(ctx, "Error creating session", err), nil
	}

	utils.LogMessageWithFields(ctx, "info", "User logged in")
	return schemas.Succeeded(schemas.LoginSucceeded, user.ToDTO()), session
}

// Logout revokes the session of the request. Without a session it is a no-op.
func (s *AuthService) Logout(ctx context.Context, session *schemas.Session) *schemas.ActionResult {
	if session != nil {
		if err := s.sessions.DeleteByID(ctx, session.ID); err != nil {
			return s.internalError(ctx, "Error deleting session", err)
		}
	}
	return schemas.Succeeded(schemas.LogoutSucceeded, nil)
}

// ForgotPassword answers with the same message whether or not the email is registered.
func (s *AuthService) ForgotPassword(ctx context.Context, req *schemas.ForgotPasswordRequest) *schemas.ActionResult {
	if result := s.validate(ctx, req); result != nil {
		return result
	}

	user, err := s.users.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			utils.LogMessageWithFields(ctx, "info", "Password reset requested for unknown email")
			return schemas.Succeeded(schemas.ResetMailRequested, nil)
		}
		return s.failedResetMail(ctx, "Error loading user", err)
	}

	tx, transactionCtx, cancel, err := utils.BeginTransaction(ctx, s.pool)
	if err != nil {
		return s.failedResetMail(ctx, "Error beginning transaction", err)
	}
	defer utils.RollbackTransaction(ctx, tx, cancel)

	resetTokens := s.resetTokens.WithTx(tx)
	if err := resetTokens.DeleteByUserID(transactionCtx, user.ID); err != nil {
		return s.failedResetMail(ctx, "Error deleting previous reset tokens", err)
	}

	resetToken, err := resetTokens.Create(transactionCtx, user.ID, s.now())
	if err != nil {
		return s.failedResetMail(ctx, "Error creating reset token", err)
	}

	// The token commits only after the mail was handed over.
	if err := s.mailMgr.SendPasswordResetMail(user.Email, user.Username, s.ResetURL(resetToken.Token)); err != nil {
		return s.failedResetMail(ctx, "Error sending password reset mail", err)
	}

	if err := utils.CommitTransaction(transactionCtx, tx); err != nil {
		return s.failedResetMail(ctx, "Error committing reset token", err)
	}

	return schemas.Succeeded(schemas.ResetMailRequested, nil)
}

// VerifyResetToken reports whether token exists and expires strictly after now.
func (s *AuthService) VerifyResetToken(ctx context.Context, token string) bool {
	if token == "" {
		return false
	}

	_, err := s.resetTokens.FindValidByToken(ctx, token, s.now())
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			utils.LogMessageWithFieldsAndError(ctx, "error", "Error verifying reset token", err)
		}
		return false
	}
	return true
}

// ResetPassword sets a new password using a reset token. The token is checked again at
// submission and consumed atomically. Every session of the user is revoked and the user is
// not logged in.
func (s *AuthService) ResetPassword(ctx context.Context, req *schemas.ResetPasswordRequest) *schemas.ActionResult {
	if result := s.validate(ctx, req); result != nil {
		return result
	}

	now := s.now()
	resetToken, err := s.resetTokens.FindValidByToken(ctx, req.Token, now)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return schemas.Failed(schemas.ResetTokenInvalid)
		}
		return s.internalError(ctx, "Error loading reset token", err)
	}

	user, err := s.users.FindByID(ctx, resetToken.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return schemas.Failed(schemas.ResetTokenInvalid)
		}
		return s.internalError(ctx, "Error loading user", err)
	}

	passwordHash, err := s.passwordMgr.Hash(req.Password)
	if err != nil {
		return s.internalError(ctx, "Error hashing password", err)
	}

	tx, transactionCtx, cancel, err := utils.BeginTransaction(ctx, s.pool)
	if err != nil {
		return s.internalError(ctx, "Error beginning transaction", err)
	}
	defer utils.RollbackTransaction(ctx, tx, cancel)

	resetTokens := s.resetTokens.WithTx(tx)
	if _, err := resetTokens.Consume(transactionCtx, req.Token, now); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return schemas.Failed(schemas.ResetTokenInvalid)
		}
		return s.internalError(ctx, "Error consuming reset token", err)
	}

	if err := s.users.WithTx(tx).UpdatePassword(transactionCtx, user.ID, passwordHash, now); err != nil {
		return s.internalError(ctx, "Error updating password", err)
	}

	if err := resetTokens.DeleteByUserID(transactionCtx, user.ID); err != nil {
		return s.internalError(ctx, "Error deleting reset tokens", err)
	}

	if _, err := s.sessions.WithTx(tx).DeleteByUserID(transactionCtx, user.ID); err != nil {
		return s.internalError(ctx, "Error revoking sessions", err)
	}

	if err := utils.CommitTransaction(transactionCtx, tx); err != nil {
		return s.internalError(ctx, "Error committing password reset", err)
	}

	s.notifyPasswordChanged(ctx, user)
	return schemas.Succeeded(schemas.PasswordResetSucceeded, nil)
}

// ChangePassword replaces the password of the session's user. Revoking every session and
// issuing the replacement session commit together. The new session is nil unless the result succeeded.
func (s *AuthService) ChangePassword(ctx context.Context, session *schemas.Session, req *schemas.ChangePasswordRequest) (*schemas.ActionResult, *schemas.Session) {
	if session == nil {
		return schemas.Failed(schemas.Unauthorized), nil
	}
	if result := s.validate(ctx, req); result != nil {
		return result, nil
	}

	user, err := s.users.FindByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return schemas.Failed(schemas.Unauthorized), nil
		}
		return s.internalError(ctx, "Error loading user", err), nil
	}
	if !user.IsActive {
		return schemas.Failed(schemas.UserDisabled), nil
	}

	if !s.passwordMgr.Verify(req.CurrentPassword, user.PasswordHash) {
		return schemas.Failed(schemas.CurrentPasswordIncorrect), nil
	}
	if req.NewPassword == req.CurrentPassword {
		return schemas.Failed(schemas.PasswordReused), nil
	}

	passwordHash, err := s.passwordMgr.Hash(req.NewPassword)
	if err != nil {
		return s.internalError(ctx, "Error hashing password", err), nil
	}

	tx, transactionCtx, cancel, err := utils.BeginTransaction(ctx, s.pool)
	if err != nil {
		return s.internalError(ctx, "Error beginning transaction", err), nil
	}
	defer utils.RollbackTransaction(ctx, tx, cancel)

	now := s.now()
	if err := s.users.WithTx(tx).UpdatePassword(transactionCtx, user.ID, passwordHash, now); err != nil {
		return s.internalError(ctx, "Error updating password", err), nil
	}

	sessions := s.sessions.WithTx(tx)
	if _, err := sessions.DeleteByUserID(transactionCtx, user.ID); err != nil {
		return s.internalError(ctx, "Error revoking sessions", err), nil
	}

	newSession, err := sessions.Create(transactionCtx, user.ID, now)
	if err != nil {
		return s.internalError(ctx, "Error creating session", err), nil
	}

	if err := utils.CommitTransaction(transactionCtx, tx); err != nil {
		return s.internalError(ctx, "Error committing password change", err), nil
	}

	s.notifyPasswordChanged(ctx, user)
	return schemas.Succeeded(schemas.PasswordChanged, nil), newSession
}

// UpdateProfile changes username and email of the session's user. Keeping the current
// values is allowed.
func (s *AuthService) UpdateProfile(ctx context.Context, session *schemas.Session, req *schemas.UpdateProfileRequest) *schemas.ActionResult {
	if session == nil {
		return schemas.Failed(schemas.Unauthorized)
	}
	if result := s.validate(ctx, req); result != nil {
		return result
	}

	taken, err := s.users.ExistsUsernameForOther(ctx, req.Username, session.UserID)
	if err != nil {
		return s.internalError(ctx, "Error checking username", err)
	}
	if taken {
		return schemas.Failed(schemas.UsernameTaken)
	}

	taken, err = s.users.ExistsEmailForOther(ctx, req.Email, session.UserID)
	if err != nil {
		return s.internalError(ctx, "Error checking email", err)
	}
	if taken {
		return schemas.Failed(schemas.EmailTaken)
	}

	user, err := s.users.UpdateProfile(ctx, session.UserID, req.Username, req.Email, s.now())
	if err != nil {
		switch {
		case errors.Is(err, store.ErrUsernameTaken):
			return schemas.Failed(schemas.UsernameTaken)
		case errors.Is(err, store.ErrEmailTaken):
			return schemas.Failed(schemas.EmailTaken)
		case errors.Is(err, store.ErrNotFound):
			// Sessions cascade with their user, so no row means the account is disabled
			return schemas.Failed(schemas.UserDisabled)
		}
		return s.internalError(ctx, "Error updating profile", err)
	}

	return schemas.Succeeded(schemas.ProfileUpdated, user.ToDTO())
}

// GetSession resolves token to a live session. It returns nil for a missing, unknown or
// expired token and when the lookup itself fails.
func (s *AuthService) GetSession(ctx context.Context, token string) *schemas.Session {
	if token == "" {
		return nil
	}

	session, err := s.sessions.FindValidByToken(ctx, token, s.now())
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			utils.LogMessageWithFieldsAndError(ctx, "error", "Error loading session", err)
		}
		return nil
	}
	return session
}

// GetCurrentUser returns the public profile behind session, or nil.
func (s *AuthService) GetCurrentUser(ctx context.Context, session *schemas.Session) *schemas.UserDTO {
	if session == nil {
		return nil
	}

	user, err := s.users.FindByID(ctx, session.UserID)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			utils.LogMessageWithFieldsAndError(ctx, "error", "Error loading current user", err)
		}
		return nil
	}
	if !user.IsActive {
		return nil
	}
	return user.ToDTO()
}

// PurgeExpired deletes sessions and reset tokens that expired at or before now.
func (s *AuthService) PurgeExpired(ctx context.Context) (sessions int64, resetTokens int64, err error) {
	now := s.now()

	sessions, err = s.sessions.DeleteExpired(ctx, now)
	if err != nil {
		return 0, 0, fmt.Errorf("purge sessions: %w", err)
	}

	resetTokens, err = s.resetTokens.DeleteExpired(ctx, now)
	if err != nil {
		return sessions, 0, fmt.Errorf("purge reset tokens: %w", err)
	}

	return sessions, resetTokens, nil
}

// ResetURL is the link mailed for token.
func (s *AuthService) ResetURL(token string) string {
	return fmt.Sprintf("%s/reset-password?%s=%s", s.baseURL, utils.TokenQueryKey, token)
}

func (s *AuthService) notifyPasswordChanged(ctx context.Context, user *schemas.User) {
	if err := s.mailMgr.SendPasswordChangedMail(user.Email, user.Username); err != nil {
		utils.LogMessageWithFieldsAndError(ctx, "warn", "Error sending password changed mail", err)
	}
}

// validate returns a failed result with the first failing field's message, or nil.
func (s *AuthService) validate(ctx context.Context, req interface{}) *schemas.ActionResult {
	message := utils.GetValidator().FirstError(req)
	if message == "" {
		return nil
	}
	utils.LogMessageWithFields(ctx, "info", "Validation failed: "+message)
	return schemas.FailedValidation(message)
}

func (s *AuthService) failedResetMail(ctx context.Context, message string, err error) *schemas.ActionResult {
	utils.LogMessageWithFieldsAndError(ctx, "error", message, err)
	return schemas.Failed(schemas.ResetMailNotSent)
}

func (s *AuthService) internalError(ctx context.Context, message string, err error) *schemas.ActionResult {
	utils.LogMessageWithFieldsAndError(ctx, "error", message, err)
	return schemas.Failed(schemas.InternalServerError)
}
