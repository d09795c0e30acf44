package managers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jxiaof/next16-demo/internal/schemas"
	log "github.com/sirupsen/logrus"
)

// SessionCookieName is the cookie carrying the opaque session token.
const SessionCookieName = "session_token"

// SessionMgr moves the session token between the store and the browser cookie.
type SessionMgr interface {
	SetSessionCookie(c *gin.Context, session *schemas.Session)
	ClearSessionCookie(c *gin.Context)
	TokenFromRequest(c *gin.Context) string
}

type SessionManager struct {
	secure bool
}

// NewSessionManager marks the cookie Secure when secure is set, which is the case in production.
func NewSessionManager(secure bool) SessionMgr {
	log.Info("Initializing session manager")
	return &SessionManager{secure: secure}
}

// SetSessionCookie writes an HttpOnly cookie expiring together with session.
func (sm *SessionManager) SetSessionCookie(c *gin.Context, session *schemas.Session) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     SessionCookieName,
		Value:    session.Token,
		Path:     "/",
		Expires:  session.ExpiresAt,
		HttpOnly: true,
		Secure:   sm.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (sm *SessionManager) ClearSessionCookie(c *gin.Context) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   sm.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// TokenFromRequest returns the session token of the request, or "" if there is none.
func (sm *SessionManager) TokenFromRequest(c *gin.Context) string {
	token, err := c.Cookie(SessionCookieName)
	if err != nil {
		return ""
	}
	return token
}
