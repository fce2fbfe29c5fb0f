package memory

import (
	"context"
	"sync"

	"wardenbot/internal/core/domain"
	"wardenbot/internal/core/ports"
)

type MemoryCooldownRepository struct {
	records map[domain.GroupID]map[domain.AccountID]*domain.CooldownRecord
	mu      sync.RWMutex
}

func NewMemoryCooldownRepository() ports.CooldownRepository {
	return &MemoryCooldownRepository{
		records: make(map[domain.GroupID]map[domain.AccountID]*domain.CooldownRecord),
	}
}

func (r *MemoryCooldownRepository) Get(ctx context.Context, group domain.GroupID, account domain.AccountID) (*domain.CooldownRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	block, exists := r.records[group]
	if !exists {
		return nil, nil
	}
	rec, exists := block[account]
	if !exists {
		return nil, nil
	}
	cp := *rec
	return &cp, nil
}

func (r *MemoryCooldownRepository) Put(ctx context.Context, group domain.GroupID, groupTitle string, rec *domain.CooldownRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	block, exists := r.records[group]
	if !exists {
		block = make(map[domain.AccountID]*domain.CooldownRecord)
		r.records[group] = block
	}
	cp := *rec
	cp.GroupTitle = groupTitle
	block[rec.Account] = &cp
	return nil
}
