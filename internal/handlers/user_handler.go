package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jxiaof/next16-demo/internal/managers"
	"github.com/jxiaof/next16-demo/internal/middleware"
	"github.com/jxiaof/next16-demo/internal/schemas"
	"github.com/jxiaof/next16-demo/internal/services"
	"github.com/jxiaof/next16-demo/internal/utils"
)

type UserHdl interface {
	GetCurrentUser(ctx *gin.Context)
	ChangePassword(ctx *gin.Context)
	UpdateProfile(ctx *gin.Context)
}

type UserHandler struct {
	AuthService    *services.AuthService
	SessionManager managers.SessionMgr
}

func NewUserHandler(authService *services.AuthService, sessionManager managers.SessionMgr) UserHdl {
	return &UserHandler{
		AuthService:    authService,
		SessionManager: sessionManager,
	}
}

// GetCurrentUser answers {"user": null} for anonymous requests instead of failing.
func (handler *UserHandler) GetCurrentUser(ctx *gin.Context) {
	user := handler.AuthService.GetCurrentUser(ctx.Request.Context(), middleware.SessionFrom(ctx))
	utils.WriteAndLogResponse(ctx, &schemas.CurrentUserDTO{User: user}, http.StatusOK)
}

// ChangePassword swaps the cookie for the session issued with the new password.
func (handler *UserHandler) ChangePassword(ctx *gin.Context) {
	req := middleware.Payload[schemas.ChangePasswordRequest](ctx)

	result, session := handler.AuthService.ChangePassword(ctx.Request.Context(), middleware.SessionFrom(ctx), req)
	if session != nil {
		handler.SessionManager.SetSessionCookie(ctx, session)
	}
	utils.WriteActionResult(ctx, result)
}

func (handler *UserHandler) UpdateProfile(ctx *gin.Context) {
	req := middleware.Payload[schemas.UpdateProfileRequest](ctx)
	utils.WriteActionResult(ctx, handler.AuthService.UpdateProfile(ctx.Request.Context(), middleware.SessionFrom(ctx), req))
}
