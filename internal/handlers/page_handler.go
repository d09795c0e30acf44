package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jxiaof/next16-demo/internal/middleware"
	"github.com/jxiaof/next16-demo/internal/schemas"
	"github.com/jxiaof/next16-demo/internal/services"
	"github.com/jxiaof/next16-demo/internal/utils"
)

var pages = map[string]*schemas.PageDTO{
	"home": {
		Slug:     "home",
		Title:    "Next16",
		Headline: "Build, publish and grow in one place",
		Sections: []string{"Latest articles", "Featured products", "Plans for every team"},
	},
	"pricing": {
		Slug:     "pricing",
		Title:    "Pricing",
		Headline: "Choose the plan that fits you",
		Sections: []string{"Free: ¥0", "Pro: ¥99/month", "Enterprise: contact us"},
	},
	"blog": {
		Slug:     "blog",
		Title:    "Blog",
		Headline: "Latest articles and news",
		Sections: []string{"Article one", "Article two", "Article three"},
	},
	"market": {
		Slug:     "market",
		Title:    "Market",
		Headline: "Browse all products",
		Sections: []string{"Templates", "Components", "Integrations"},
	},
}

type PageHdl interface {
	GetPage(ctx *gin.Context)
	GetConsole(ctx *gin.Context)
}

type PageHandler struct {
	AuthService *services.AuthService
}

func NewPageHandler(authService *services.AuthService) PageHdl {
	return &PageHandler{AuthService: authService}
}

func (handler *PageHandler) GetPage(ctx *gin.Context) {
	page, ok := pages[ctx.Param(utils.SlugParamKey)]
	if !ok {
		utils.LogMessageWithFields(ctx, "info", "Unknown page requested")
		ctx.AbortWithStatusJSON(schemas.PageNotFound.HttpStatus, schemas.Failed(schemas.PageNotFound))
		return
	}
	utils.WriteAndLogResponse(ctx, page, http.StatusOK)
}

// GetConsole is served behind RequireSession.
func (handler *PageHandler) GetConsole(ctx *gin.Context) {
	user := handler.AuthService.GetCurrentUser(ctx.Request.Context(), middleware.SessionFrom(ctx))
	if user == nil {
		ctx.AbortWithStatusJSON(schemas.Unauthorized.HttpStatus, schemas.Failed(schemas.Unauthorized))
		return
	}

	console := &schemas.ConsoleDTO{
		Greeting: "Welcome back, " + user.Username + "!",
		User:     user,
	}
	utils.WriteAndLogResponse(ctx, console, http.StatusOK)
}
