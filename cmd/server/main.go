package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lmittmann/tint"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/ErlanBelekov/campus-marketplace/config"
	"github.com/ErlanBelekov/campus-marketplace/internal/email"
	"github.com/ErlanBelekov/campus-marketplace/internal/filestore"
	"github.com/ErlanBelekov/campus-marketplace/internal/health"
	"github.com/ErlanBelekov/campus-marketplace/internal/infrastructure/postgres"
	ctxlog "github.com/ErlanBelekov/campus-marketplace/internal/log"
	"github.com/ErlanBelekov/campus-marketplace/internal/metrics"
	httptransport "github.com/ErlanBelekov/campus-marketplace/internal/transport/http"
	"github.com/ErlanBelekov/campus-marketplace/internal/transport/http/handler"
	"github.com/ErlanBelekov/campus-marketplace/internal/usecase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger := newLogger(cfg.Env, cfg.SlogLevel())

	if cfg.Env != "local" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		stop()
		log.Fatalf("db: %v", err)
	}
	defer pool.Close()

	if err := postgres.Migrate(ctx, pool); err != nil {
		stop()
		log.Fatalf("migrate: %v", err)
	}

	// Blob storage is created eagerly; a misconfigured store stops startup.
	blobs, err := filestore.Open(ctx, cfg, logger)
	if err != nil {
		stop()
		log.Fatalf("blob storage: %v", err)
	}

	userRepo := postgres.NewUserRepository(pool)
	productRepo := postgres.NewProductRepository(pool)
	orderRepo := postgres.NewOrderRepository(pool)
	otpRepo := postgres.NewOtpRepository(pool)
	tx := postgres.NewTransactor(pool)

	sender := email.NewSender(cfg.Env, cfg.ResendAPIKey, cfg.ResendFrom, logger)

	// Signup
	otpVerifier := usecase.NewOtpVerifier(otpRepo, sender, logger)
	signupUsecase := usecase.NewSignupUsecase(userRepo, otpVerifier, usecase.SignupConfig{
		EmailDomain:        cfg.SignupEmailDomain,
		RequireVerifiedOTP: cfg.SignupRequireVerifiedOTP,
	}, logger)

	// Users, products, orders
	userUsecase := usecase.NewUserUsecase(userRepo, blobs, []byte(cfg.JWTSecret), logger)
	accountUsecase := usecase.NewAccountUsecase(tx, blobs, logger)
	productUsecase := usecase.NewProductUsecase(productRepo, userRepo, blobs, logger)
	orderUsecase := usecase.NewOrderUsecase(tx, userRepo, orderRepo, blobs, logger)

	metrics.Register()
	checker := health.NewChecker(logger, prometheus.DefaultRegisterer).
		Add("postgres", pool).
		Add("storage", blobs)

	srv := http.Server{
		Addr: ":" + cfg.Port,
		Handler: httptransport.NewRouter(logger, httptransport.Handlers{
			Auth:    handler.NewAuthHandler(signupUsecase, userUsecase, logger),
			Users:   handler.NewUserHandler(userUsecase, accountUsecase, logger),
			Product: handler.NewProductHandler(productUsecase, logger),
			Orders:  handler.NewOrderHandler(orderUsecase, logger),
			Health:  handler.NewHealthHandler(checker),
		}, []byte(cfg.JWTSecret)),
		ReadHeaderTimeout: 10 * time.Second,
	}

	metricsSrv := metrics.NewServer(":" + cfg.MetricsPort)

	go func() {
		logger.Info("server started", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server: %v", err)
		}
	}()

	go func() {
		logger.Info("metrics server started", "port", cfg.MetricsPort)
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server", "error", err)
		}
	}()

	<-ctx.Done()
	stop()
	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", "error", err)
	}
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("metrics server shutdown", "error", err)
	}
}

func newLogger(env string, level slog.Level) *slog.Logger {
	var inner slog.Handler
	if env == "local" {
		inner = tint.NewHandler(os.Stdout, &tint.Options{
			Level:      level,
			TimeFormat: time.Kitchen,
		})
	} else {
		inner = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: level,
		})
	}
	return slog.New(ctxlog.NewContextHandler(inner))
}
