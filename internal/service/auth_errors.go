package service

import (
	"errors"
	"fmt"
)

// ErrProviderAuthFailed matches every *AuthError via errors.Is.
var ErrProviderAuthFailed = errors.New("social_login_failed")

// AuthError reports that the external access token could not be turned into a
// profile: unknown provider, unreachable provider, rejected token or a malformed
// response. Callers get one kind of failure and a readable message.
type AuthError struct {
	Provider string
	Err      error
}

func newAuthError(provider string, err error) *AuthError {
	return &AuthError{Provider: provider, Err: err}
}

func (e *AuthError) Error() string {
	if e.Provider == "" {
		return fmt.Sprintf("social login failed: %v", e.Err)
	}
	return fmt.Sprintf("%s login failed: %v", e.Provider, e.Err)
}

func (e *AuthError) Unwrap() error { return e.Err }

func (e *AuthError) Is(target error) bool { return target == ErrProviderAuthFailed }
