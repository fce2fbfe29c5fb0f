package memory

import (
	"context"
	"sync"

	"wardenbot/internal/core/domain"
	"wardenbot/internal/core/ports"
)

type MemoryIdentityRepository struct {
	handles map[string]domain.AccountID
	mu      sync.RWMutex
}

func NewMemoryIdentityRepository() ports.IdentityRepository {
	return &MemoryIdentityRepository{
		handles: make(map[string]domain.AccountID),
	}
}

func (r *MemoryIdentityRepository) Register(ctx context.Context, handle string, account domain.AccountID) error {
	if handle == "" {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.handles[handle] = account
	return nil
}

func (r *MemoryIdentityRepository) Resolve(ctx context.Context, handle string) (domain.AccountID, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	account, exists := r.handles[handle]
	if !exists {
		return 0, domain.ErrAccountNotFound
	}
	return account, nil
}
