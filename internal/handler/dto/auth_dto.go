package dto

import (
	"time"

	"github.com/Tail418/nugulmap-api/internal/domain/entity"
)

// SocialLoginRequest is the body of POST /api/auth/login/:provider.
// Provider is optional; the path parameter takes precedence.
type SocialLoginRequest struct {
	AccessToken string `json:"accessToken"`
	Provider    string `json:"provider"`
}

// AuthResponse is the data payload of a successful social login.
type AuthResponse struct {
	Token        string `json:"token"`
	UserID       uint   `json:"userId"`
	Email        string `json:"email"`
	Nickname     string `json:"nickname"`
	ProfileImage string `json:"profileImage"`
}

// UserResponse is the public view of an account.
type UserResponse struct {
	UserID       uint   `json:"userId"`
	Provider     string `json:"provider"`
	Email        string `json:"email"`
	Nickname     string `json:"nickname"`
	ProfileImage string `json:"profileImage"`
	CreatedAt    string `json:"createdAt"`
}

// SuccessEnvelope wraps every successful response.
type SuccessEnvelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data"`
}

// ErrorEnvelope wraps every failed response.
type ErrorEnvelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// NewAuthResponse builds the login payload from the issued token and account.
func NewAuthResponse(token string, user *entity.User) AuthResponse {
	return AuthResponse{
		Token:        token,
		UserID:       user.ID,
		Email:        user.Email,
		Nickname:     user.DisplayName,
		ProfileImage: user.AvatarURL,
	}
}

// NewUserResponse converts an account for clients.
func NewUserResponse(user *entity.User) UserResponse {
	return UserResponse{
		UserID:       user.ID,
		Provider:     user.Provider,
		Email:        user.Email,
		Nickname:     user.DisplayName,
		ProfileImage: user.AvatarURL,
		CreatedAt:    user.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// OK wraps data in a success envelope.
func OK(data interface{}) SuccessEnvelope {
	return SuccessEnvelope{Success: true, Data: data}
}

// Fail builds an error envelope.
func Fail(message string) ErrorEnvelope {
	return ErrorEnvelope{Success: false, Message: message}
}
