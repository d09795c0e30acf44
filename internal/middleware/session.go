package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/jxiaof/next16-demo/internal/managers"
	"github.com/jxiaof/next16-demo/internal/schemas"
	"github.com/jxiaof/next16-demo/internal/utils"
)

// SessionResolver maps a cookie token to a live session, or nil.
type SessionResolver func(ctx context.Context, token string) *schemas.Session

// LoadSession resolves the session cookie once per request. A cookie that no longer
// resolves is cleared.
func LoadSession(sessionMgr managers.SessionMgr, resolve SessionResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := sessionMgr.TokenFromRequest(c)
		if token == "" {
			c.Next()
			return
		}

		session := resolve(c.Request.Context(), token)
		if session == nil {
			utils.LogMessageWithFields(c, "debug", "Session cookie is stale, clearing it")
			sessionMgr.ClearSessionCookie(c)
			c.Next()
			return
		}

		c.Set(utils.SessionKey.String(), session)
		c.Next()
	}
}

// RequireSession rejects requests without a live session.
func RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		if SessionFrom(c) == nil {
			utils.LogMessageWithFields(c, "info", "Rejecting request without session")
			c.AbortWithStatusJSON(schemas.Unauthorized.HttpStatus, schemas.Failed(schemas.Unauthorized))
			return
		}
		c.Next()
	}
}

// SessionFrom returns the session loaded for the request, or nil.
func SessionFrom(c *gin.Context) *schemas.Session {
	value, exists := c.Get(utils.SessionKey.String())
	if !exists {
		return nil
	}
	session, _ := value.(*schemas.Session)
	return session
}
