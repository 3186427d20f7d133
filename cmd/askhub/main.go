package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/askhub/askhub/internal/admin"
	"github.com/askhub/askhub/internal/app"
	"github.com/askhub/askhub/internal/auth"
	"github.com/askhub/askhub/internal/observability"
	"github.com/askhub/askhub/internal/platform/cache"
	"github.com/askhub/askhub/internal/platform/db"
	"github.com/askhub/askhub/internal/qna"
	"github.com/askhub/askhub/internal/shared"
	"github.com/askhub/askhub/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	mailClient := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := mailClient.Close(); err != nil {
			logger.Warn("asynq client close", slog.Any("error", err))
		}
	}()

	tokenCfg := auth.TokenConfig{
		Secret:     []byte(cfg.TokenSecret),
		AccessTTL:  cfg.AccessTokenTTL,
		RefreshTTL: cfg.RefreshTokenTTL,
		VerifyTTL:  cfg.VerifyTokenTTL,
	}

	authRepo := auth.NewRepository(pool)
	authService := auth.NewService(logger, authRepo, auth.NewIssuer(tokenCfg), mailClient, tokenCfg, cfg.BaseURL)
	authHandler := auth.NewHandler(logger, authService)

	qnaRepo := qna.NewRepository(pool)
	qnaService := qna.NewService(qnaRepo)
	qnaHandler := qna.NewHandler(logger, qnaService, authService)

	sessionManager := shared.NewSessionManager(redisClient, "askhub_admin", cfg.SessionTTL, cfg.IsProduction())
	adminHandler := admin.NewHandler(logger, authRepo, qnaRepo, sessionManager)

	metrics := observability.NewMetrics()

	router := app.NewRouter(app.RouterParams{
		Logger:       logger,
		Config:       cfg,
		AuthHandler:  authHandler,
		QnAHandler:   qnaHandler,
		AdminHandler: adminHandler,
		Metrics:      metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("http server listening", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", slog.Any("error", err))
	}
}
