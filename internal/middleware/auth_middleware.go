package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Tail418/nugulmap-api/internal/handler/dto"
	"github.com/Tail418/nugulmap-api/pkg/auth"
)

// TokenParser verifies session tokens.
type TokenParser interface {
	ParseToken(tokenString string) (*auth.JWTCustomClaims, error)
}

// AuthMiddleware guards routes that require a session token.
type AuthMiddleware struct {
	tokens TokenParser
	logger *zap.SugaredLogger
}

// NewAuthMiddleware creates the middleware.
func NewAuthMiddleware(tokens TokenParser, logger *zap.SugaredLogger) *AuthMiddleware {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &AuthMiddleware{tokens: tokens, logger: logger}
}

// RequireAuth checks the Authorization: Bearer {token} header and puts
// user_id, email and provider into the context.
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.Fail("Authorization header is required"))
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.Fail("Authorization header format must be Bearer {token}"))
			return
		}

		claims, err := m.tokens.ParseToken(strings.TrimSpace(parts[1]))
		if err != nil {
			m.logger.Debugw("rejected session token", "error", err, "request_id", c.GetString(RequestIDKey))
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.Fail("Invalid or expired token"))
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("email", claims.Email)
		c.Set("provider", claims.Provider)
		c.Next()
	}
}
