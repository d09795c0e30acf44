// Package handlers translates HTTP requests into account actions and their results back into responses.
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

type AuthHdl interface {
	Register(ctx *gin.Context)
	Login(ctx *gin.Context)
	Logout(ctx *gin.Context)
	ForgotPassword(ctx *gin.Context)
	VerifyResetToken(ctx *gin.Context)
	ResetPassword(ctx *gin.Context)
}

type AuthHandler struct {
	AuthService    *services.AuthService
	SessionManager managers.SessionMgr
}

func NewAuthHandler(authService *services.AuthService, sessionManager managers.SessionMgr) AuthHdl {
	return &AuthHandler{
		AuthService:    authService,
		SessionManager: sessionManager,
	}
}

func (handler *AuthHandler) Register(ctx *gin.Context) {
	req := middleware.Payload[schemas.RegistrationRequest](ctx)
	utils.WriteActionResult(ctx, handler.AuthService.Register(ctx.Request.Context(), req))
}

// Login sets the session cookie when the credentials are accepted.
func (handler *AuthHandler) Login(ctx *gin.Context) {
	req := middleware.Payload[schemas.LoginRequest](ctx)

	result, session := handler.AuthService.Login(ctx.Request.Context(), req)
	if session != nil {
		handler.SessionManager.SetSessionCookie(ctx, session)
	}
	utils.WriteActionResult(ctx, result)
}

// Logout revokes the session and clears the cookie, also when the session was already gone.
func (handler *AuthHandler) Logout(ctx *gin.Context) {
	result := handler.AuthService.Logout(ctx.Request.Context(), middleware.SessionFrom(ctx))
	handler.SessionManager.ClearSessionCookie(ctx)
	utils.WriteActionResult(ctx, result)
}

func (handler *AuthHandler) ForgotPassword(ctx *gin.Context) {
	req := middleware.Payload[schemas.ForgotPasswordRequest](ctx)
	utils.WriteActionResult(ctx, handler.AuthService.ForgotPassword(ctx.Request.Context(), req))
}

// VerifyResetToken lets the reset page show the expired state before a password is entered.
func (handler *AuthHandler) VerifyResetToken(ctx *gin.Context) {
	token := ctx.Param(utils.TokenParamKey)

	valid := handler.AuthService.VerifyResetToken(ctx.Request.Context(), token)
	utils.WriteAndLogResponse(ctx, &schemas.TokenValidityDTO{Valid: valid}, http.StatusOK)
}

func (handler *AuthHandler) ResetPassword(ctx *gin.Context) {
	req := middleware.Payload[schemas.ResetPasswordRequest](ctx)
	utils.WriteActionResult(ctx, handler.AuthService.ResetPassword(ctx.Request.Context(), req))
}
