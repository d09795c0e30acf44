package routing

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gavv/httpexpect/v2"
	"github.com/google/uuid"
	"github.com/jxiaof/next16-demo/internal/managers"
	"github.com/jxiaof/next16-demo/internal/managers/mocks"
	"github.com/jxiaof/next16-demo/internal/services"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

var (
	userColumns    = []string{"id", "username", "email", "password_hash", "is_active", "created_at", "updated_at"}
	sessionColumns = []string{"id", "user_id", "token", "expires_at", "created_at"}
	startTime      = time.Date(2026, 10, 17, 9, 30, 0, 0, time.UTC)
)

type testEnv struct {
	server      *httptest.Server
	poolMock    pgxmock.PgxPoolIface
	databaseMgr *mocks.MockDatabaseManager
	mailMgr     *mocks.MockMailManager
	passwordMgr managers.PasswordMgr
	clock       time.Time
}

func setupMocks(t *testing.T) *testEnv {
	t.Helper()

	poolMock, err := pgxmock.NewPool()
	require.NoError(t, err)

	databaseMgrMock := &mocks.MockDatabaseManager{}
	databaseMgrMock.On("GetPool").Return(poolMock)

	env := &testEnv{
		poolMock:    poolMock,
		databaseMgr: databaseMgrMock,
		mailMgr:     &mocks.MockMailManager{},
		passwordMgr: managers.NewPasswordManager(bcrypt.MinCost),
		clock:       startTime,
	}

	authService := services.NewAuthService(databaseMgrMock, env.passwordMgr, env.mailMgr, services.Options{
		BaseURL: "http://localhost:3000",
		Now:     func() time.Time { return env.clock },
	})
	router := InitRouter(databaseMgrMock, managers.NewSessionManager(false), authService, []string{"http://localhost:3000"})

	env.server = httptest.NewServer(router)
	t.Cleanup(func() {
		env.server.Close()
		poolMock.Close()
	})
	return env
}

// expect builds a client without a cookie jar, cookies are always passed explicitly.
func (env *testEnv) expect(t *testing.T) *httpexpect.Expect {
	return httpexpect.WithConfig(httpexpect.Config{
		BaseURL:  env.server.URL,
		Reporter: httpexpect.NewAssertReporter(t),
		Client:   &http.Client{},
	})
}

func (env *testEnv) verify(t *testing.T) {
	t.Helper()
	if err := env.poolMock.ExpectationsWereMet(); err != nil {
		t.Errorf("there were unfulfilled expectations: %s", err)
	}
	env.mailMgr.AssertExpectations(t)
}

func (env *testEnv) expectUserByUsername(t *testing.T, username, email, password string) uuid.UUID {
	t.Helper()
	hash, err := env.passwordMgr.Hash(password)
	require.NoError(t, err)

	userId := uuid.New()
	env.poolMock.ExpectQuery("FROM users WHERE username = \\$1$").
		WithArgs(username).
		WillReturnRows(pgxmock.NewRows(userColumns).AddRow(userId, username, email, hash, true, startTime, startTime))
	return userId
}

// expectSessionLookup returns the id of the session the lookup yields.
func (env *testEnv) expectSessionLookup(token string, userId uuid.UUID, valid bool) uuid.UUID {
	sessionId := uuid.New()
	rows := pgxmock.NewRows(sessionColumns)
	if valid {
		rows.AddRow(sessionId, userId, token, env.clock.Add(time.Hour), env.clock)
	}
	env.poolMock.ExpectQuery("FROM sessions WHERE token = \\$1 AND expires_at > \\$2").
		WithArgs(token, env.clock).
		WillReturnRows(rows)
	return sessionId
}

// login runs a successful login and returns the issued session token.
func (env *testEnv) login(t *testing.T, expect *httpexpect.Expect, userId uuid.UUID) string {
	t.Helper()
	env.poolMock.ExpectQuery("INSERT INTO sessions").
		WithArgs(pgxmock.AnyArg(), userId, pgxmock.AnyArg(), env.clock.Add(7*24*time.Hour), env.clock).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(uuid.New()))

	response := expect.POST("/api/auth/login").
		WithJSON(map[string]string{"username": "alice", "password": "Abcdef12"}).
		Expect().
		Status(http.StatusOK)

	token := response.Cookie("session_token").Value().Raw()
	require.Len(t, token, 64)
	return token
}

func TestMetadataAndHealth(t *testing.T) {
	env := setupMocks(t)
	env.databaseMgr.On("Healthy", mock.Anything).Return(true)

	expect := env.expect(t)
	expect.GET("/").Expect().Status(http.StatusOK).
		JSON().Object().HasValue("apiName", "Next16 Account API")
	expect.GET("/health").Expect().Status(http.StatusOK)
}

func TestUserRegistration(t *testing.T) {
	env := setupMocks(t)
	expect := env.expect(t)

	alice := map[string]string{
		"username":        "alice",
		"email":           "a@x.com",
		"password":        "Abcdef12",
		"confirmPassword": "Abcdef12",
	}

	env.poolMock.ExpectQuery("FROM users WHERE username = \\$1 OR email = \\$2").
		WithArgs("alice", "a@x.com").
		WillReturnRows(pgxmock.NewRows(userColumns))
	env.poolMock.ExpectExec("INSERT INTO users").
		WithArgs(pgxmock.AnyArg(), "alice", "a@x.com", pgxmock.AnyArg(), true, startTime, startTime).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	created := expect.POST("/api/auth/register").WithJSON(alice).
		Expect().
		Status(http.StatusCreated).
		JSON().Object()
	created.HasValue("success", true)
	created.Value("user").Object().HasValue("username", "alice").HasValue("email", "a@x.com")
	created.Value("user").Object().NotContainsKey("passwordHash")

	env.poolMock.ExpectQuery("FROM users WHERE username = \\$1 OR email = \\$2").
		WithArgs("alice", "b@x.com").
		WillReturnRows(pgxmock.NewRows(userColumns).AddRow(uuid.New(), "alice", "a@x.com", "hash", true, startTime, startTime))

	alice["email"] = "b@x.com"
	expect.POST("/api/auth/register").WithJSON(alice).
		Expect().
		Status(http.StatusConflict).
		JSON().IsEqual(map[string]interface{}{
		"success": false,
		"code":    "ERR-002",
		"message": "The username is already taken. Please try another username.",
	})

	env.verify(t)
}

func TestRegistrationValidation(t *testing.T) {
	env := setupMocks(t)
	expect := env.expect(t)

	expect.POST("/api/auth/register").
		WithJSON(map[string]string{"username": "alice", "email": "a@x.com", "password": "Abcdef12", "confirmPassword": "Abcdef13"}).
		Expect().
		Status(http.StatusBadRequest).
		JSON().Object().
		HasValue("success", false).
		HasValue("message", "The passwords do not match.")

	expect.POST("/api/auth/register").
		WithText("{not json").
		Expect().
		Status(http.StatusBadRequest).
		JSON().Object().HasValue("code", "ERR-001")

	env.verify(t)
}

func TestUserLogin(t *testing.T) {
	env := setupMocks(t)
	expect := env.expect(t)

	env.expectUserByUsername(t, "alice", "a@x.com", "Abcdef12")
	wrong := expect.POST("/api/auth/login").
		WithJSON(map[string]string{"username": "alice", "password": "wrong"}).
		Expect().
		Status(http.StatusUnauthorized)
	wrong.JSON().Object().HasValue("success", false).HasValue("message", "The username or password is incorrect.")
	wrong.Cookies().IsEmpty()

	env.poolMock.ExpectQuery("FROM users WHERE username = \\$1$").
		WithArgs("nobody").
		WillReturnRows(pgxmock.NewRows(userColumns))
	expect.POST("/api/auth/login").
		WithJSON(map[string]string{"username": "nobody", "password": "Abcdef12"}).
		Expect().
		Status(http.StatusUnauthorized).
		JSON().Object().HasValue("message", "The username or password is incorrect.")

	userId := env.expectUserByUsername(t, "alice", "a@x.com", "Abcdef12")
	token := env.login(t, expect, userId)

	env.expectSessionLookup(token, userId, true)
	env.poolMock.ExpectQuery("FROM users WHERE id = \\$1").
		WithArgs(userId).
		WillReturnRows(pgxmock.NewRows(userColumns).AddRow(userId, "alice", "a@x.com", "hash", true, startTime, startTime))
	expect.GET("/api/users/me").WithCookie("session_token", token).
		Expect().
		Status(http.StatusOK).
		JSON().Object().Value("user").Object().HasValue("id", userId.String()).HasValue("username", "alice")

	env.verify(t)
}

func TestLogout(t *testing.T) {
	env := setupMocks(t)
	expect := env.expect(t)
	token := strings.Repeat("ef", 32)
	userId := uuid.New()

	sessionId := env.expectSessionLookup(token, userId, true)
	env.poolMock.ExpectExec("DELETE FROM sessions WHERE id = \\$1").
		WithArgs(sessionId).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	response := expect.POST("/api/auth/logout").WithCookie("session_token", token).
		Expect().
		Status(http.StatusOK)
	response.JSON().Object().HasValue("success", true)
	response.Cookie("session_token").Value().IsEmpty()

	env.verify(t)
}

func TestPasswordResetExpires(t *testing.T) {
	env := setupMocks(t)
	expect := env.expect(t)
	userId := uuid.New()

	env.poolMock.ExpectQuery("FROM users WHERE email = \\$1").
		WithArgs("a@x.com").
		WillReturnRows(pgxmock.NewRows(userColumns).AddRow(userId, "alice", "a@x.com", "hash", true, startTime, startTime))
	env.poolMock.ExpectBegin()
	env.poolMock.ExpectExec("DELETE FROM password_reset_tokens WHERE user_id").
		WithArgs(userId).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
	env.poolMock.ExpectQuery("INSERT INTO password_reset_tokens").
		WithArgs(pgxmock.AnyArg(), userId, pgxmock.AnyArg(), startTime.Add(time.Hour), startTime).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(uuid.New()))
	env.poolMock.ExpectCommit()

	var resetURL string
	env.mailMgr.On("SendPasswordResetMail", "a@x.com", "alice", mock.AnythingOfType("string")).
		Run(func(args mock.Arguments) { resetURL = args.String(2) }).
		Return(nil)

	expect.POST("/api/auth/forgot-password").
		WithJSON(map[string]string{"email": "a@x.com"}).
		Expect().
		Status(http.StatusOK).
		JSON().Object().
		HasValue("success", true).
		HasValue("message", "If the email is registered, you will receive a password reset email shortly.")

	token := strings.TrimPrefix(resetURL, "http://localhost:3000/reset-password?token=")
	require.Len(t, token, 64)

	// the link is checked again when the new password is submitted
	env.clock = startTime.Add(time.Hour + time.Second)
	env.poolMock.ExpectQuery("FROM password_reset_tokens WHERE token = \\$1 AND expires_at > \\$2").
		WithArgs(token, env.clock).
		WillReturnRows(pgxmock.NewRows(sessionColumns))
	expect.GET("/api/auth/reset-password/" + token).
		Expect().
		Status(http.StatusOK).
		JSON().IsEqual(map[string]interface{}{"valid": false})

	env.poolMock.ExpectQuery("FROM password_reset_tokens WHERE token = \\$1 AND expires_at > \\$2").
		WithArgs(token, env.clock).
		WillReturnRows(pgxmock.NewRows(sessionColumns))
	expect.POST("/api/auth/reset-password").
		WithJSON(map[string]string{"token": token, "password": "Newpass12", "confirmPassword": "Newpass12"}).
		Expect().
		Status(http.StatusBadRequest).
		JSON().Object().
		HasValue("success", false).
		HasValue("message", "The reset link has expired or is invalid. Please request a new one.")

	env.verify(t)
}

func TestChangePasswordRevokesOldSession(t *testing.T) {
	env := setupMocks(t)
	expect := env.expect(t)

	userId := env.expectUserByUsername(t, "alice", "a@x.com", "Abcdef12")
	oldToken := env.login(t, expect, userId)

	hash, err := env.passwordMgr.Hash("Abcdef12")
	require.NoError(t, err)

	env.expectSessionLookup(oldToken, userId, true)
	env.poolMock.ExpectQuery("FROM users WHERE id = \\$1").
		WithArgs(userId).
		WillReturnRows(pgxmock.NewRows(userColumns).AddRow(userId, "alice", "a@x.com", hash, true, startTime, startTime))
	env.poolMock.ExpectBegin()
	env.poolMock.ExpectExec("UPDATE users SET password_hash").
		WithArgs(pgxmock.AnyArg(), env.clock, userId).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	env.poolMock.ExpectExec("DELETE FROM sessions WHERE user_id").
		WithArgs(userId).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	env.poolMock.ExpectQuery("INSERT INTO sessions").
		WithArgs(pgxmock.AnyArg(), userId, pgxmock.AnyArg(), env.clock.Add(7*24*time.Hour), env.clock).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(uuid.New()))
	env.poolMock.ExpectCommit()
	env.mailMgr.On("SendPasswordChangedMail", "a@x.com", "alice").Return(nil)

	changed := expect.PATCH("/api/users/me/password").
		WithCookie("session_token", oldToken).
		WithJSON(map[string]string{"currentPassword": "Abcdef12", "newPassword": "Newpass12", "confirmPassword": "Newpass12"}).
		Expect().
		Status(http.StatusOK)
	changed.JSON().Object().HasValue("success", true)
	newToken := changed.Cookie("session_token").Value().Raw()
	require.Len(t, newToken, 64)
	require.NotEqual(t, oldToken, newToken)

	// the revoked session no longer resolves
	env.expectSessionLookup(oldToken, userId, false)
	stale := expect.GET("/api/users/me").WithCookie("session_token", oldToken).
		Expect().
		Status(http.StatusOK)
	stale.JSON().Object().Value("user").IsNull()

	env.verify(t)
}

func TestProtectedRoutesRequireSession(t *testing.T) {
	env := setupMocks(t)
	expect := env.expect(t)

	unauthorized := map[string]interface{}{
		"success": false,
		"code":    "ERR-014",
		"message": "The request is unauthorized. Please log in to your account.",
	}

	expect.GET("/api/console").Expect().Status(http.StatusUnauthorized).JSON().IsEqual(unauthorized)
	expect.PUT("/api/users/me").
		WithJSON(map[string]string{"username": "alice", "email": "a@x.com"}).
		Expect().Status(http.StatusUnauthorized).JSON().IsEqual(unauthorized)
	expect.GET("/api/users/me").Expect().Status(http.StatusOK).JSON().IsEqual(map[string]interface{}{"user": nil})

	env.verify(t)
}

func TestUpdateProfile(t *testing.T) {
	env := setupMocks(t)
	expect := env.expect(t)
	token := strings.Repeat("ab", 32)
	userId := uuid.New()

	env.expectSessionLookup(token, userId, true)
	env.poolMock.ExpectQuery("SELECT EXISTS \\(SELECT 1 FROM users WHERE username").
		WithArgs("alice_new", userId).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))
	env.poolMock.ExpectQuery("SELECT EXISTS \\(SELECT 1 FROM users WHERE email").
		WithArgs("new@x.com", userId).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))

	expect.PUT("/api/users/me").
		WithCookie("session_token", token).
		WithJSON(map[string]string{"username": "alice_new", "email": "new@x.com"}).
		Expect().
		Status(http.StatusConflict).
		JSON().Object().HasValue("code", "ERR-003")

	env.verify(t)
}

func TestPages(t *testing.T) {
	env := setupMocks(t)
	expect := env.expect(t)

	expect.GET("/api/pages/pricing").Expect().Status(http.StatusOK).
		JSON().Object().HasValue("slug", "pricing").HasValue("title", "Pricing")
	expect.GET("/api/pages/unknown").Expect().Status(http.StatusNotFound).
		JSON().Object().HasValue("code", "ERR-011")
}
