package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/apkmarket/backend/internal/config"
	"github.com/apkmarket/backend/internal/http/handlers"
	"github.com/apkmarket/backend/internal/http/middleware"
	"github.com/apkmarket/backend/internal/models"
	"github.com/apkmarket/backend/internal/service"
)

func SetupRouter(
	cfg *config.Config,
	authHandler *handlers.AuthHandler,
	catalogHandler *handlers.CatalogHandler,
	reviewHandler *handlers.ReviewHandler,
	developerHandler *handlers.DeveloperHandler,
	adminHandler *handlers.AdminHandler,
	wsHandler *handlers.WSHandler,
	healthHandler *handlers.HealthHandler,
	tokenManager *service.TokenManager,
) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))

	r.GET("/health", healthHandler.Health)
	r.StaticFS("/uploads", http.Dir(cfg.UploadsPath))

	api := r.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.Use(middleware.RateLimitMiddleware(cfg.RateLimitLimit, cfg.RateLimitPeriod))
	{
		authGroup.POST("/register", authHandler.RegisterUser)
		authGroup.POST("/login", authHandler.LoginUser)
		authGroup.POST("/developer/register", authHandler.RegisterDeveloper)
		authGroup.POST("/developer/login", authHandler.LoginDeveloper)
		authGroup.POST("/admin/login", authHandler.LoginAdmin)
	}

	// Публичная витрина
	api.GET("/apps", catalogHandler.List)
	api.GET("/apps/:apkId", catalogHandler.Get)
	api.GET("/categories", catalogHandler.ListCategories)
	api.GET("/ws", wsHandler.Handle)

	// Отзывы: автор передаётся в теле запроса, валидация — на стороне сервиса
	api.POST("/reviews", reviewHandler.Create)
	api.GET("/reviews/:id", middleware.UUIDValidator("id"), reviewHandler.ListForApplication)
	api.PATCH("/reviews/:id/helpful", middleware.UUIDValidator("id"), reviewHandler.CastHelpfulVote)

	// Кабинет разработчика
	developerGroup := api.Group("/developer")
	developerGroup.Use(middleware.AuthMiddleware(tokenManager, models.KindDeveloper))
	{
		developerGroup.POST("/apps", developerHandler.Upload)
		developerGroup.GET("/apps", developerHandler.ListMine)
	}

	// Админ-панель
	adminGroup := api.Group("/admin")
	adminGroup.Use(middleware.AuthMiddleware(tokenManager, models.KindAdmin))
	{
		adminGroup.POST("/update-status/:id", middleware.UUIDValidator("id"), adminHandler.UpdateApplicationStatus)
		adminGroup.GET("/apps/pending", adminHandler.ListPendingApplications)
		adminGroup.DELETE("/apps/:id", middleware.UUIDValidator("id"), adminHandler.DeleteApplication)
		adminGroup.GET("/stats", adminHandler.Stats)

		adminGroup.POST("/reviews", reviewHandler.CreateSynthetic)
		adminGroup.PUT("/reviews/:id", middleware.UUIDValidator("id"), reviewHandler.Update)
		adminGroup.DELETE("/reviews/:id", middleware.UUIDValidator("id"), reviewHandler.Delete)

		adminGroup.GET("/developers", adminHandler.ListDevelopers)
		adminGroup.PATCH("/developers/:id/status", middleware.UUIDValidator("id"), adminHandler.UpdateDeveloperStatus)

		adminGroup.POST("/categories", adminHandler.CreateCategory)
		adminGroup.DELETE("/categories/:id", middleware.UUIDValidator("id"), adminHandler.DeleteCategory)
	}

	return r
}
