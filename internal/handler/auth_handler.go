package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Tail418/nugulmap-api/internal/handler/dto"
	"github.com/Tail418/nugulmap-api/internal/middleware"
	"github.com/Tail418/nugulmap-api/internal/service"
)

// SocialLoginService is the orchestrator the handler delegates to.
type SocialLoginService interface {
	Login(ctx context.Context, provider, accessToken string) (*service.LoginResult, error)
}

// AuthHandler serves social login.
type AuthHandler struct {
	authService SocialLoginService
	logger      *zap.SugaredLogger
}

// NewAuthHandler creates the handler.
func NewAuthHandler(authService SocialLoginService, logger *zap.SugaredLogger) *AuthHandler {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &AuthHandler{
		authService: authService,
		logger:      logger,
	}
}

// SocialLogin handles POST /api/auth/login/:provider.
//
// Only the body shape is checked here; an empty access token is rejected by the
// orchestrator. Every orchestrator failure is answered with 401 and its message.
func (h *AuthHandler) SocialLogin(c *gin.Context) {
	var req dto.SocialLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.Fail("Invalid request data"))
		return
	}

	provider := strings.TrimSpace(c.Param("provider"))
	if provider == "" {
		provider = strings.TrimSpace(req.Provider)
	}

	result, err := h.authService.Login(c.Request.Context(), provider, req.AccessToken)
	if err != nil {
		h.logLoginError(c, provider, err)
		c.JSON(http.StatusUnauthorized, dto.Fail(err.Error()))
		return
	}

	c.JSON(http.StatusOK, dto.OK(dto.NewAuthResponse(result.Token, result.User)))
}

func (h *AuthHandler) logLoginError(c *gin.Context, provider string, err error) {
	fields := []interface{}{"provider", provider, "client_ip", c.ClientIP(), "error", err}
	if requestID := c.GetString(middleware.RequestIDKey); requestID != "" {
		fields = append(fields, "request_id", requestID)
	}
	if errors.Is(err, service.ErrProviderAuthFailed) {
		h.logger.Infow("social login failed", fields...)
		return
	}
	// Persistence or signing trouble: still 401 for the client, but worth an alert.
	h.logger.Errorw("social login failed unexpectedly", fields...)
}
