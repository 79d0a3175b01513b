// Package identity talks to external social-login providers. Providers only turn
// an access token into an entity.ExternalIdentity; account creation and session
// issuance live in the service package.
package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Tail418/nugulmap-api/internal/domain/entity"
)

// ErrProviderRejected wraps every failure to obtain a profile from a provider:
// transport errors, non-2xx responses, malformed payloads and missing ids.
var ErrProviderRejected = errors.New("identity provider rejected token")

// ErrUnknownProvider is returned by Registry.Get for unregistered names.
var ErrUnknownProvider = errors.New("unknown identity provider")

// Provider fetches the profile behind a social-login access token.
type Provider interface {
	// Name returns the provider identifier stored on accounts (e.g. "kakao").
	Name() string
	// EmailDomain is used to synthesize an email when the provider shares none.
	EmailDomain() string
	// FetchIdentity resolves accessToken to a profile. It never retries.
	FetchIdentity(ctx context.Context, accessToken string) (*entity.ExternalIdentity, error)
}

// Registry holds the configured providers by name.
type Registry struct {
	providers map[string]Provider
}

// NewRegistry registers the given providers. Later entries with a duplicate name
// replace earlier ones.
func NewRegistry(list ...Provider) *Registry {
	m := make(map[string]Provider, len(list))
	for _, p := range list {
		m[p.Name()] = p
	}
	return &Registry{providers: m}
}

// Get returns the provider registered under name (case-insensitive).
func (r *Registry) Get(name string) (Provider, error) {
	p, ok := r.providers[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, name)
	}
	return p, nil
}

// Names lists registered provider names.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	return names
}
