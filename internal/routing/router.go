// Package routing assembles the gin engine: common middleware, the API routes and their guards.
package routing

import (
	"net/http"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jxiaof/next16-demo/internal/handlers"
	"github.com/jxiaof/next16-demo/internal/managers"
	"github.com/jxiaof/next16-demo/internal/middleware"
	"github.com/jxiaof/next16-demo/internal/schemas"
	"github.com/jxiaof/next16-demo/internal/services"
	"github.com/jxiaof/next16-demo/internal/utils"
)

func InitRouter(databaseMgr managers.DatabaseMgr, sessionMgr managers.SessionMgr, authService *services.AuthService, corsOrigins []string) *gin.Engine {
	// Initialize router with logging and recovery middleware
	router := gin.New()
	// Initialize middleware
	setupCommonMiddleware(router, corsOrigins)
	// Setup routes
	setupRoutes(router, databaseMgr, sessionMgr, authService)

	return router
}

func setupCommonMiddleware(router *gin.Engine, corsOrigins []string) {
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(middleware.InjectTrace())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     corsOrigins,
		AllowMethods:     []string{"GET", "PATCH", "POST", "PUT", "OPTIONS"},
		AllowHeaders:     []string{"Accept", "Content-Type", "Origin"},
		ExposeHeaders:    []string{"Content-Length", "Content-Type", "X-Trace-Id"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	router.Use(func(c *gin.Context) {
		c.Header("Content-Type", "application/json")
	})
	router.Use(middleware.SanitizePath())
	router.Use(middleware.LogRequest())
}

func setupRoutes(router *gin.Engine, databaseMgr managers.DatabaseMgr, sessionMgr managers.SessionMgr, authService *services.AuthService) {
	// Set up version route
	router.GET("/", func(c *gin.Context) {
		apiVersion := os.Getenv("PR_NUMBER")
		var pullRequest string

		if apiVersion == "" {
			apiVersion = "main:latest"
		} else {
			pullRequest = "https://github.com/jxiaof/next16-demo/pull/" + apiVersion
			apiVersion = "PR-" + apiVersion
		}
		metadata := &schemas.MetadataDTO{
			ApiVersion:  apiVersion,
			ApiName:     "Next16 Account API",
			PullRequest: pullRequest,
		}
		utils.WriteAndLogResponse(c, metadata, http.StatusOK)
	})

	// Set up health route
	router.GET("/health", func(c *gin.Context) {
		if !databaseMgr.Healthy(c.Request.Context()) {
			c.String(http.StatusInternalServerError, "Database not responding")
			return
		}
		c.Status(http.StatusOK)
	})

	// Set up API routes, every one of them sees the session behind the cookie
	apiRouter := router.Group("/api")
	apiRouter.Use(middleware.LoadSession(sessionMgr, authService.GetSession))
	{
		pageHdl := handlers.NewPageHandler(authService)
		apiRouter.GET("/pages/:"+utils.SlugParamKey, pageHdl.GetPage)
		apiRouter.GET("/console", middleware.RequireSession(), pageHdl.GetConsole)

		authRouter := apiRouter.Group("/auth")
		authHdl := handlers.NewAuthHandler(authService, sessionMgr)
		authRoutes(authRouter, authHdl)

		userRouter := apiRouter.Group("/users")
		userHdl := handlers.NewUserHandler(authService, sessionMgr)
		userRoutes(userRouter, userHdl)
	}
}

func authRoutes(authRouter *gin.RouterGroup, authHdl handlers.AuthHdl) {
	authRouter.POST("/register", middleware.BindAndSanitize[schemas.RegistrationRequest](), authHdl.Register)
	authRouter.POST("/login", middleware.BindAndSanitize[schemas.LoginRequest](), authHdl.Login)
	authRouter.POST("/logout", authHdl.Logout)
	authRouter.POST("/forgot-password", middleware.BindAndSanitize[schemas.ForgotPasswordRequest](), authHdl.ForgotPassword)
	authRouter.GET("/reset-password/:"+utils.TokenParamKey, authHdl.VerifyResetToken)
	authRouter.POST("/reset-password", middleware.BindAndSanitize[schemas.ResetPasswordRequest](), authHdl.ResetPassword)
}

func userRoutes(userRouter *gin.RouterGroup, userHdl handlers.UserHdl) {
	// Anonymous callers get {"user": null}
	userRouter.GET("/me", userHdl.GetCurrentUser)
	// The following routes require a live session
	userRouter.Use(middleware.RequireSession())
	userRouter.PATCH("/me/password", middleware.BindAndSanitize[schemas.ChangePasswordRequest](), userHdl.ChangePassword)
	userRouter.PUT("/me", middleware.BindAndSanitize[schemas.UpdateProfileRequest](), userHdl.UpdateProfile)
}
