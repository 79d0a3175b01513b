package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"

	"github.com/Tail418/nugulmap-api/internal/config"
	"github.com/Tail418/nugulmap-api/internal/handler"
	"github.com/Tail418/nugulmap-api/internal/logger"
	"github.com/Tail418/nugulmap-api/internal/middleware"
	pgRepo "github.com/Tail418/nugulmap-api/internal/repository/postgres"
	"github.com/Tail418/nugulmap-api/internal/service"
	"github.com/Tail418/nugulmap-api/internal/service/identity"
	"github.com/Tail418/nugulmap-api/pkg/auth"
	"github.com/Tail418/nugulmap-api/pkg/database"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "nugulmap-api: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	if !cfg.Log.Development {
		gin.SetMode(gin.ReleaseMode)
	}

	// Connect to PostgreSQL
	db, err := database.NewPostgresDB(cfg.Database.PostgresConnectionString(), database.DefaultPoolConfig(), cfg.Log.Development)
	if err != nil {
		return err
	}
	sqlDB, err := database.GetSQLDB(db)
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	if err := database.MigrateDB(db, cfg.Database.MigrationsPath, log); err != nil {
		return err
	}

	// Redis only backs the login rate limiter
	var redisClient redis.UniversalClient
	if cfg.Redis.Enabled() {
		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		redisClient, err = database.NewUniversalRedisClient(pingCtx, cfg.Redis)
		cancel()
		if err != nil {
			return err
		}
		defer redisClient.Close()
		log.Infow("connected to redis", "mode", cfg.Redis.Mode)
	} else {
		log.Info("redis is not configured, login rate limiting disabled")
	}

	// Outbound calls to identity providers share one client with a bounded timeout.
	providerClient := &http.Client{Timeout: cfg.Kakao.Timeout()}
	registry := identity.NewRegistry(
		identity.NewKakaoProvider(identity.KakaoConfig{
			BaseURL:     cfg.Kakao.BaseURL,
			EmailDomain: cfg.Kakao.EmailDomain,
		}, providerClient, log.Named("kakao")),
	)

	userRepo := pgRepo.NewUserRepo(db)

	jwtService, err := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.Issuer, log.Named("jwt"))
	if err != nil {
		return err
	}

	socialAuth, err := service.NewSocialAuthService(registry, userRepo, jwtService, log.Named("auth"))
	if err != nil {
		return err
	}
	userService := service.NewUserService(userRepo)

	deps := routerDeps{
		authHandler:    handler.NewAuthHandler(socialAuth, log.Named("http")),
		userHandler:    handler.NewUserHandler(userService, log.Named("http")),
		healthHandler:  handler.NewHealthHandler(sqlDB),
		authMiddleware: middleware.NewAuthMiddleware(jwtService, log.Named("http")),
		allowOrigins:   cfg.Server.AllowOrigins,
		logger:         log,
	}
	if gin.Mode() != gin.ReleaseMode {
		deps.trustedProxies = []string{"127.0.0.1", "::1"}
	}
	if redisClient != nil {
		limiter := middleware.NewRateLimiter(redisClient, log.Named("ratelimit"))
		deps.loginLimit = limiter.Limit(middleware.LoginRateLimitConfig(cfg.RateLimit.LoginMaxRequests, cfg.RateLimit.LoginWindowSec))
	}

	// HTTP server with timeouts against slow clients
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      newRouter(deps),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Infow("starting server", "port", cfg.Server.Port, "providers", registry.Names())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-serverErr:
		return fmt.Errorf("server failed: %w", err)
	case sig := <-quit:
		log.Infow("shutting down server", "signal", sig.String())
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Info("server exited properly")
	return nil
}
