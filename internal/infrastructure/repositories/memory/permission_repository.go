package memory

import (
	"context"
	"sync"

	"wardenbot/internal/core/domain"
	"wardenbot/internal/core/ports"
)

type permissionBlock struct {
	title  string
	admins map[domain.AccountID]*domain.PermissionRecord
}

type MemoryPermissionRepository struct {
	groups map[domain.GroupID]*permissionBlock
	mu     sync.RWMutex
}

func NewMemoryPermissionRepository() ports.PermissionRepository {
	return &MemoryPermissionRepository{
		groups: make(map[domain.GroupID]*permissionBlock),
	}
}

func (r *MemoryPermissionRepository) Upsert(ctx context.Context, group domain.GroupID, groupTitle string, rec *domain.PermissionRecord) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	block, exists := r.groups[group]
	if !exists {
		block = &permissionBlock{
			admins: make(map[domain.AccountID]*domain.PermissionRecord),
		}
		r.groups[group] = block
	}
	if groupTitle != "" {
		block.title = groupTitle
	}

	_, existed := block.admins[rec.Account]
	cp := *rec
	block.admins[rec.Account] = &cp
	return existed, nil
}

func (r *MemoryPermissionRepository) Remove(ctx context.Context, group domain.GroupID, account domain.AccountID) (*domain.PermissionRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	block, exists := r.groups[group]
	if !exists {
		return nil, domain.ErrNotAnAdmin
	}
	rec, exists := block.admins[account]
	if !exists {
		return nil, domain.ErrNotAnAdmin
	}
	delete(block.admins, account)
	return rec, nil
}

func (r *MemoryPermissionRepository) Get(ctx context.Context, group domain.GroupID, account domain.AccountID) (*domain.PermissionRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	block, exists := r.groups[group]
	if !exists {
		return nil, domain.ErrNotAnAdmin
	}
	rec, exists := block.admins[account]
	if !exists {
		return nil, domain.ErrNotAnAdmin
	}
	cp := *rec
	return &cp, nil
}

func (r *MemoryPermissionRepository) List(ctx context.Context, group domain.GroupID) ([]*domain.PermissionRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	block, exists := r.groups[group]
	if !exists {
		return nil, nil
	}

	recs := make([]*domain.PermissionRecord, 0, len(block.admins))
	for _, rec := range block.admins {
		cp := *rec
		recs = append(recs, &cp)
	}
	return recs, nil
}

func (r *MemoryPermissionRepository) GroupTitle(ctx context.Context, group domain.GroupID) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if block, exists := r.groups[group]; exists {
		return block.title, nil
	}
	return "", nil
}
