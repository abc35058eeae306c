package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"trackit-api/internal/auth"
	"trackit-api/internal/config"
	"trackit-api/internal/database"
	"trackit-api/internal/logger"
	"trackit-api/internal/mail"
	"trackit-api/internal/routes"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	if err := logger.Init(cfg.LogLevel, cfg.IsDevelopment()); err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	gin.SetMode(cfg.GinMode)
	auth.Configure(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTAudience, cfg.SessionTTL)

	// Init database
	if err := database.InitDB(cfg.DBPath, cfg.DBLogLevel); err != nil {
		logger.Fatal(ctx, "failed to open database", zap.Error(err), zap.String("path", cfg.DBPath))
	}

	if cfg.SMTPHost != "" {
		mail.Set(mail.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.SMTPFrom))
	} else {
		logger.Warnf(ctx, "SMTP_HOST not set, password reset links will only be logged")
		mail.Set(mail.LogMailer{})
	}

	// Setup the routes (public and protected routes)
	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           routes.SetupRoutes(cfg),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Infof(ctx, "server starting on %s (env=%s)", srv.Addr, cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal(ctx, "failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Infof(context.Background(), "shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf(shutdownCtx, "graceful shutdown failed: %v", err)
	}
}
