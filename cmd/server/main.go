package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/apkmarket/backend/internal/config"
	"github.com/apkmarket/backend/internal/db"
	httpHandlers "github.com/apkmarket/backend/internal/http/handlers"
	httpRouter "github.com/apkmarket/backend/internal/http/router"
	"github.com/apkmarket/backend/internal/logger"
	"github.com/apkmarket/backend/internal/mailer"
	"github.com/apkmarket/backend/internal/repository"
	"github.com/apkmarket/backend/internal/service"
	"github.com/apkmarket/backend/internal/storage"
	"github.com/apkmarket/backend/internal/ws"
)

func main() {
	// Готовим контекст для graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("main: ошибка загрузки конфигурации: %v", err)
	}

	// Инициализация логгера
	logLevel := "info"
	if cfg.Env == "development" {
		logLevel = "debug"
		logger.Init(logLevel)
		logger.SetTextFormatter()
	} else {
		logger.Init(logLevel)
	}

	// Подключение к базе и миграции.
	dbConn, err := db.NewPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("main: ошибка подключения к базе: %v", err)
	}
	defer safeClose(dbConn)

	if err := db.RunMigrations(ctx, dbConn, cfg.MigrationsPath); err != nil {
		log.Fatalf("main: ошибка миграций: %v", err)
	}

	// Инициализируем вспомогательные сервисы.
	tokenManager := service.NewTokenManager(cfg.JWTSecret, cfg.AccessTokenTTL)

	uploadStorage, err := storage.NewUploadStorage(cfg.UploadsPath, cfg.MaxUploadSizeMB)
	if err != nil {
		log.Fatalf("main: не удалось подготовить файловое хранилище: %v", err)
	}

	statusMailer := mailer.New(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPFrom)

	// Репозитории.
	userRepo := repository.NewUserRepository(dbConn)
	developerRepo := repository.NewDeveloperRepository(dbConn)
	adminRepo := repository.NewAdminRepository(dbConn)
	applicationRepo := repository.NewApplicationRepository(dbConn)
	reviewRepo := repository.NewReviewRepository(dbConn)
	categoryRepo := repository.NewCategoryRepository(dbConn)

	// Вебсокеты.
	hub := ws.NewHub(ctx)
	go hub.Run()

	// Сервисы.
	authService := service.NewAuthService(userRepo, developerRepo, adminRepo, tokenManager)
	applicationService := service.NewApplicationService(applicationRepo, developerRepo, categoryRepo, statusMailer, hub)
	reviewService := service.NewReviewService(reviewRepo, applicationRepo, hub)
	categoryService := service.NewCategoryService(categoryRepo)

	// HTTP хэндлеры.
	authHandler := httpHandlers.NewAuthHandler(authService)
	catalogHandler := httpHandlers.NewCatalogHandler(applicationService, categoryService)
	reviewHandler := httpHandlers.NewReviewHandler(reviewService)
	developerHandler := httpHandlers.NewDeveloperHandler(applicationService, uploadStorage)
	adminHandler := httpHandlers.NewAdminHandler(applicationService, categoryService, developerRepo)
	wsHandler := httpHandlers.NewWSHandler(hub, tokenManager)
	healthHandler := httpHandlers.NewHealthHandler(dbConn)

	// Роутер.
	engine := httpRouter.SetupRouter(cfg, authHandler, catalogHandler, reviewHandler, developerHandler, adminHandler, wsHandler, healthHandler, tokenManager)

	server := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: engine,
	}

	// Завершаем сервер при получении сигнала.
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("main: ошибка остановки http сервера: %v", err)
		}
	}()

	log.Printf("main: HTTP сервер запущен на порту %s", cfg.HTTPPort)

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("main: сервер завершился с ошибкой: %v", err)
	}
}

// safeClose закрывает соединение с базой.
func safeClose(db *sqlx.DB) {
	if err := db.Close(); err != nil {
		log.Printf("main: ошибка закрытия базы: %v", err)
	}
}
