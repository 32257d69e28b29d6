package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ferretcontrol/internal/auth"
	"ferretcontrol/internal/cache"
	"ferretcontrol/internal/config"
	"ferretcontrol/internal/database"
	"ferretcontrol/internal/mail"
	"ferretcontrol/internal/security"
	"ferretcontrol/internal/server"
	"ferretcontrol/internal/telemetry"

	"github.com/gin-gonic/gin"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger := telemetry.SetupLogger(cfg.LogFormat, cfg.LogLevel)
	gin.SetMode(gin.ReleaseMode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Connect(ctx, cfg.DBDSN)
	if err != nil {
		return err
	}
	err = database.Bootstrap(ctx, db, database.AdminSeed{
		Username: cfg.AdminUsername,
		Password: cfg.AdminPassword,
		Email:    cfg.AdminEmail,
	})
	if err != nil {
		return err
	}

	var lockout security.Lockout = security.NoopLockout{}
	if cfg.RedisURL != "" {
		rdb, err := cache.Connect(ctx, cfg.RedisURL)
		if err != nil {
			return err
		}
		defer rdb.Close()
		lockout = cache.NewRedisLockout(rdb, security.LockoutPolicy{
			Threshold: cfg.LockoutThreshold,
			Window:    cfg.LockoutWindow,
		})
		slog.Info("login lockout enabled", "threshold", cfg.LockoutThreshold, "window", cfg.LockoutWindow)
	} else {
		slog.Warn("REDIS_URL not set, login lockout disabled")
	}
	if !cfg.SMTP.Enabled() {
		slog.Warn("SMTP_HOST not set, password reset emails will fail")
	}

	r := server.NewRouter(cfg, server.Deps{
		DB:      db,
		Tokens:  auth.NewManager(cfg.JWTSecret, cfg.AccessTTL, cfg.RefreshTTL),
		Lockout: lockout,
		Mailer:  mail.NewSMTPMailer(cfg.SMTP),
		Logger:  logger,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("starting server", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
