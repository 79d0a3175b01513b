package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Tail418/nugulmap-api/internal/domain/entity"
	"github.com/Tail418/nugulmap-api/internal/handler/dto"
	apperrors "github.com/Tail418/nugulmap-api/internal/pkg/errors"
)

// UserLookup loads accounts by id.
type UserLookup interface {
	GetByID(ctx context.Context, id uint) (*entity.User, error)
}

// UserHandler serves account endpoints.
type UserHandler struct {
	userService UserLookup
	logger      *zap.SugaredLogger
}

// NewUserHandler creates the handler.
func NewUserHandler(userService UserLookup, logger *zap.SugaredLogger) *UserHandler {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &UserHandler{
		userService: userService,
		logger:      logger,
	}
}

// GetMe returns the account of the session token holder. Requires RequireAuth.
func (h *UserHandler) GetMe(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, dto.Fail("Unauthorized"))
		return
	}

	user, err := h.userService.GetByID(c.Request.Context(), userID.(uint))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, dto.Fail("User not found"))
			return
		}
		h.logger.Errorw("failed to load current user", "user_id", userID, "error", err)
		c.JSON(http.StatusInternalServerError, dto.Fail("Internal server error"))
		return
	}

	c.JSON(http.StatusOK, dto.OK(dto.NewUserResponse(user)))
}
