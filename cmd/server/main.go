package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lmittmann/tint"
	"github.com/redis/go-redis/v9"

	"learnhub/internal/api"
	"learnhub/internal/app/service"
	"learnhub/internal/common/security"
	"learnhub/internal/domain/repository"
	"learnhub/internal/platform/config"
	"learnhub/internal/platform/database"
	"learnhub/internal/platform/mailer"
	"learnhub/internal/platform/ratelimit"
)

func main() {
	// 1. Load Configuration
	cfg := config.Load()

	// 2. Logger: pretty in development, JSON in production.
	var logger *slog.Logger
	if cfg.IsProduction() {
		logger = slog.New(slog.NewJSONHandler(os.Stderr, nil))
	} else {
		logger = slog.New(tint.NewHandler(os.Stderr, &tint.Options{Level: slog.LevelDebug}))
	}
	slog.SetDefault(logger)

	// 3. Database
	db, err := database.Connect(cfg.DBConnStr)
	if err != nil {
		logger.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := database.Migrate(context.Background(), db); err != nil {
		logger.Error("database migration failed", "error", err)
		os.Exit(1)
	}
	logger.Info("database connected")

	// 4. Redis (rate limiting)
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		logger.Error("redis connection failed", "error", err)
		os.Exit(1)
	}
	defer rdb.Close()
	logger.Info("redis connected")

	// 5. Token issuer and mailer
	tokens := security.NewTokenIssuer(cfg.JWTKey, cfg.JWTExp)
	mail := mailer.NewSMTPMailer(cfg)
	limiter := ratelimit.New(rdb, logger, cfg.RateLimitMax, cfg.RateLimitEvery)

	// 6. Repositories
	userRepo := repository.NewPgUserRepository(db)
	testRepo := repository.NewPgTestRepository(db)
	resultRepo := repository.NewPgResultRepository(db)
	courseRepo := repository.NewPgCourseRepository(db)
	bookRepo := repository.NewPgBookRepository(db)

	// 7. Services
	authService := service.NewAuthService(userRepo, tokens, mail, cfg, logger)
	catalogService := service.NewCatalogService(testRepo, courseRepo, bookRepo, db)
	submissionService := service.NewSubmissionService(resultRepo, testRepo, userRepo, logger)
	contactService := service.NewContactService(userRepo, mail, cfg, logger)
	userService := service.NewUserService(userRepo, cfg)

	// 8. Router & HTTP Server
	router := api.NewRouter(cfg, logger, tokens, limiter,
		authService, catalogService, submissionService, contactService, userService)

	server := &http.Server{
		Addr:         ":" + cfg.APIPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// 9. Graceful Shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("server starting", "port", cfg.APIPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	<-stop // Wait for interrupt signal

	logger.Info("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped gracefully")
}
