package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/Tail418/nugulmap-api/internal/domain/entity"
	"github.com/Tail418/nugulmap-api/internal/domain/repository"
	apperrors "github.com/Tail418/nugulmap-api/internal/pkg/errors"
	"github.com/Tail418/nugulmap-api/internal/service/identity"
)

// resolveTimeout bounds one shared find-or-create.
const resolveTimeout = 10 * time.Second

// TokenIssuer mints session tokens for resolved accounts.
type TokenIssuer interface {
	GenerateToken(user *entity.User) (string, error)
}

// LoginResult is what a successful social login hands back to the caller.
type LoginResult struct {
	Token string
	User  *entity.User
}

// SocialAuthService runs the social login: verify the external token with the
// provider, find or create the local account, issue a session token.
type SocialAuthService struct {
	providers *identity.Registry
	userRepo  repository.UserRepository
	tokens    TokenIssuer
	logger    *zap.SugaredLogger

	// inflight coalesces concurrent resolutions of one external identity within
	// this process. Cross-process races are settled by the unique index.
	inflight singleflight.Group
}

// NewSocialAuthService wires the orchestrator.
func NewSocialAuthService(
	providers *identity.Registry,
	userRepo repository.UserRepository,
	tokens TokenIssuer,
	logger *zap.SugaredLogger,
) (*SocialAuthService, error) {
	if providers == nil {
		return nil, fmt.Errorf("provider registry is required")
	}
	if userRepo == nil {
		return nil, fmt.Errorf("user repository is required")
	}
	if tokens == nil {
		return nil, fmt.Errorf("token issuer is required")
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &SocialAuthService{
		providers: providers,
		userRepo:  userRepo,
		tokens:    tokens,
		logger:    logger,
	}, nil
}

// Login exchanges a provider access token for a local session.
//
// Provider failures (unknown provider, empty token, transport error, non-2xx,
// malformed body, missing id) come back as *AuthError before any repository call.
// Repository and signing errors are returned unchanged.
func (s *SocialAuthService) Login(ctx context.Context, providerName, accessToken string) (*LoginResult, error) {
	provider, err := s.providers.Get(providerName)
	if err != nil {
		return nil, newAuthError(providerName, err)
	}

	ext, err := provider.FetchIdentity(ctx, accessToken)
	if err != nil {
		s.logger.Infow("social login rejected by provider", "provider", provider.Name(), "error", err)
		return nil, newAuthError(provider.Name(), err)
	}
	if ext.ExternalID == "" {
		return nil, newAuthError(provider.Name(), errors.New("provider returned no user id"))
	}
	ext.Provider = provider.Name()

	user, err := s.resolveUser(ctx, *ext, provider.EmailDomain())
	if err != nil {
		return nil, err
	}

	token, err := s.tokens.GenerateToken(user)
	if err != nil {
		return nil, err
	}

	s.logger.Infow("social login succeeded", "provider", user.Provider, "user_id", user.ID)
	return &LoginResult{Token: token, User: user}, nil
}

func (s *SocialAuthService) resolveUser(ctx context.Context, ext entity.ExternalIdentity, emailDomain string) (*entity.User, error) {
	key := ext.Provider + ":" + ext.ExternalID
	ch := s.inflight.DoChan(key, func() (interface{}, error) {
		// The shared lookup outlives whichever caller started it.
		shared, cancel := context.WithTimeout(context.WithoutCancel(ctx), resolveTimeout)
		defer cancel()
		return s.findOrCreate(shared, ext, emailDomain)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*entity.User), nil
	}
}

// findOrCreate inserts an account only when none exists. Stored profile fields are
// never refreshed from the provider.
func (s *SocialAuthService) findOrCreate(ctx context.Context, ext entity.ExternalIdentity, emailDomain string) (*entity.User, error) {
	user, err := s.userRepo.FindByExternalIdentity(ctx, ext.Provider, ext.ExternalID)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}

	user = ext.NewUser(emailDomain)
	if err := s.userRepo.Create(ctx, user); err != nil {
		if !errors.Is(err, apperrors.ErrConflict) {
			return nil, err
		}
		// Another request created the account between our lookup and insert.
		s.logger.Infow("account created concurrently, re-fetching", "provider", ext.Provider, "external_id", ext.ExternalID)
		return s.userRepo.FindByExternalIdentity(ctx, ext.Provider, ext.ExternalID)
	}

	s.logger.Infow("account created", "provider", user.Provider, "user_id", user.ID)
	return user, nil
}
