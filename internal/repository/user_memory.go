package repository

import (
	"context"
	"sync"

	"github.com/google/uuid"

	userDomain "github.com/ridecab/service-ride/internal/domain/user"
	"github.com/ridecab/service-ride/internal/platform/apperror"
)

// MemoryUserRepository keeps accounts in process memory. It backs the API
// when no database is configured.
type MemoryUserRepository struct {
	mu      sync.RWMutex
	byID    map[uuid.UUID]*userDomain.User
	byEmail map[string]*userDomain.User
}

// NewMemoryUserRepository creates an empty repository.
func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{
		byID:    make(map[uuid.UUID]*userDomain.User),
		byEmail: make(map[string]*userDomain.User),
	}
}

func (r *MemoryUserRepository) FindByID(_ context.Context, id uuid.UUID) (*userDomain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byID[id]
	if !ok {
		return nil, apperror.NewNotFoundError("User", id.String())
	}
	return u, nil
}

func (r *MemoryUserRepository) FindByEmail(_ context.Context, email string) (*userDomain.User, error) {
	email = userDomain.NormalizeEmail(email)

	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byEmail[email]
	if !ok {
		return nil, apperror.NewNotFoundError("User", email)
	}
	return u, nil
}

func (r *MemoryUserRepository) Save(_ context.Context, u *userDomain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byEmail[u.Email()]; exists {
		return apperror.NewConflictError("User already exists")
	}
	r.byID[u.ID()] = u
	r.byEmail[u.Email()] = u
	return nil
}
