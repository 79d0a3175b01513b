package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/Tail418/nugulmap-api/internal/domain/entity"
	apperrors "github.com/Tail418/nugulmap-api/internal/pkg/errors"
)

// MockUserRepository implements repository.UserRepository.
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) FindByExternalIdentity(ctx context.Context, provider, externalID string) (*entity.User, error) {
	args := m.Called(ctx, provider, externalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *MockUserRepository) Create(ctx context.Context, user *entity.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uint) (*entity.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

// MockTokenIssuer implements TokenIssuer.
type MockTokenIssuer struct {
	mock.Mock
}

func (m *MockTokenIssuer) GenerateToken(user *entity.User) (string, error) {
	args := m.Called(user)
	return args.String(0), args.Error(1)
}

// fakeProvider is an identity.Provider driven by a function.
type fakeProvider struct {
	name   string
	domain string
	fetch  func(ctx context.Context, token string) (*entity.ExternalIdentity, error)

	mu    sync.Mutex
	calls int
}

func (p *fakeProvider) Name() string        { return p.name }
func (p *fakeProvider) EmailDomain() string { return p.domain }

func (p *fakeProvider) FetchIdentity(ctx context.Context, token string) (*entity.ExternalIdentity, error) {
	p.mu.Lock()
	p.calls++
	p.mu.Unlock()
	return p.fetch(ctx, token)
}

// memUserRepo is a concurrency-safe store enforcing the (provider, external_id)
// uniqueness the database index provides.
type memUserRepo struct {
	mu     sync.Mutex
	nextID uint
	byKey  map[string]*entity.User
	byID   map[uint]*entity.User

	// findGate, when set, is called at the start of every lookup; an error
	// aborts the lookup.
	findGate func(ctx context.Context) error
	creates  int
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{
		byKey: make(map[string]*entity.User),
		byID:  make(map[uint]*entity.User),
	}
}

func (r *memUserRepo) FindByExternalIdentity(ctx context.Context, provider, externalID string) (*entity.User, error) {
	if r.findGate != nil {
		if err := r.findGate(ctx); err != nil {
			return nil, err
		}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byKey[provider+":"+externalID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *memUserRepo) Create(_ context.Context, user *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.creates++
	key := user.Provider + ":" + user.ExternalID
	if _, ok := r.byKey[key]; ok {
		return fmt.Errorf("%w: %s", apperrors.ErrConflict, key)
	}
	r.nextID++
	user.ID = r.nextID
	user.CreatedAt = time.Now()
	stored := *user
	r.byKey[key] = &stored
	r.byID[user.ID] = &stored
	return nil
}

func (r *memUserRepo) GetByID(_ context.Context, id uint) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *memUserRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byID)
}
