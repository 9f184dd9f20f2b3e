package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"standy/internal/auth"
	"standy/internal/bootstrap"
	"standy/internal/config"
	cronpkg "standy/internal/cron"
	"standy/internal/middleware"
	"standy/internal/payment"
	"standy/internal/repository"
	"standy/internal/router"
)

func main() {
	// --- Logger ---
	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	// --- Config ---
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	// --- Database ---
	db, err := config.NewDatabase(&cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	if err := bootstrap.MigrateAndSeed(db); err != nil {
		logger.Fatal("Failed to bootstrap database schema", zap.Error(err))
	}

	userRepo := repository.NewUserRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)

	// --- Auth (token store falls back to in-memory without Redis) ---
	tokenStore, tokenErr := auth.NewTokenStore(cfg.Redis.Addr, cfg.Redis.Pass, cfg.Redis.DB)
	if tokenErr != nil {
		logger.Warn("Redis unavailable for token revocation, using in-memory fallback", zap.Error(tokenErr))
	}
	mailer := auth.NewMailer(cfg.Mail, logger)
	authService := auth.NewService(
		userRepo, tokenStore, mailer,
		cfg.JWT.Secret, cfg.JWT.Expiry, cfg.App.BaseURL, logger,
	)

	// --- Payment gateway (chosen once, by configuration) ---
	gateway, err := payment.New(
		cfg.Payment.Provider,
		payment.SipayConfig{
			MerchantKey: cfg.Payment.Sipay.MerchantKey,
			AppKey:      cfg.Payment.Sipay.AppKey,
			AppSecret:   cfg.Payment.Sipay.AppSecret,
			MerchantID:  cfg.Payment.Sipay.MerchantID,
			URL:         cfg.Payment.Sipay.URL,
			ReturnURL:   cfg.App.BaseURL + "/payment-result",
			CancelURL:   cfg.App.BaseURL + "/payment-cancelled",
		},
		payment.IyzicoConfig{
			APIKey:    cfg.Payment.Iyzico.APIKey,
			SecretKey: cfg.Payment.Iyzico.SecretKey,
			BaseURI:   cfg.Payment.Iyzico.BaseURI,
		},
		logger,
	)
	if err != nil {
		logger.Fatal("Failed to configure payment gateway", zap.Error(err))
	}
	logger.Info("Payment gateway configured", zap.String("provider", gateway.Name()))

	// --- Submission dedup (Redis with in-memory fallback) ---
	deduper, dedupeErr := middleware.NewSubmissionDeduper(
		cfg.Redis.Addr,
		cfg.Redis.Pass,
		cfg.Redis.DB,
		10*time.Minute,
	)
	if dedupeErr != nil {
		logger.Warn("Redis unavailable for submission dedup, using in-memory fallback", zap.Error(dedupeErr))
	}

	// --- Echo ---
	e := echo.New()
	e.HideBanner = true
	router.Setup(e, db, authService, gateway, deduper, logger)

	// --- Maintenance scheduler ---
	scheduler := cronpkg.New(userRepo, paymentRepo, logger)
	scheduler.Start()

	// --- Start server ---
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	go func() {
		logger.Info("Starting Standy billing server", zap.String("addr", addr))
		if err := e.Start(addr); err != nil {
			logger.Info("Server stopped", zap.Error(err))
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down...")

	ctx := scheduler.Stop()
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}
