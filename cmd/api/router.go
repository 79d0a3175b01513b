package main

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Tail418/nugulmap-api/internal/handler"
	"github.com/Tail418/nugulmap-api/internal/middleware"
)

// routerDeps collects everything the HTTP routes are built from.
type routerDeps struct {
	authHandler    *handler.AuthHandler
	userHandler    *handler.UserHandler
	healthHandler  *handler.HealthHandler
	authMiddleware *middleware.AuthMiddleware
	// loginLimit is nil when Redis is not configured.
	loginLimit     gin.HandlerFunc
	allowOrigins   []string
	trustedProxies []string
	logger         *zap.SugaredLogger
}

func newRouter(deps routerDeps) *gin.Engine {
	router := gin.New()

	if err := router.SetTrustedProxies(deps.trustedProxies); err != nil {
		deps.logger.Warnw("failed to set trusted proxies", "error", err)
	}

	router.Use(
		middleware.RequestID(),
		middleware.RequestLogger(deps.logger),
		gin.Recovery(),
		cors.New(cors.Config{
			AllowOrigins:     deps.allowOrigins,
			AllowMethods:     []string{"GET", "POST", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
			ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}),
	)

	router.GET("/health", deps.healthHandler.Health)

	api := router.Group("/api")
	{
		authGroup := api.Group("/auth")
		loginChain := []gin.HandlerFunc{}
		if deps.loginLimit != nil {
			loginChain = append(loginChain, deps.loginLimit)
		}
		loginChain = append(loginChain, deps.authHandler.SocialLogin)
		authGroup.POST("/login/:provider", loginChain...)

		users := api.Group("/users", deps.authMiddleware.RequireAuth())
		users.GET("/me", deps.userHandler.GetMe)
	}

	return router
}
