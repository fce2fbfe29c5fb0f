package file

import (
	"context"
	"strconv"

	"wardenbot/internal/core/domain"
	"wardenbot/internal/core/ports"
)

type permissionGroupDoc struct {
	GroupTitle string                              `json:"group_title,omitempty"`
	Admins     map[string]*domain.PermissionRecord `json:"admins"`
}

// permissionDocument keys the top level by group id, one block per group.
type permissionDocument map[string]*permissionGroupDoc

type FilePermissionRepository struct {
	store *documentStore
}

func NewFilePermissionRepository(dir string) ports.PermissionRepository {
	return &FilePermissionRepository{
		store: newDocumentStore(dir, "admins.json"),
	}
}

func accountKey(a domain.AccountID) string {
	return strconv.FormatInt(int64(a), 10)
}

func (r *FilePermissionRepository) Upsert(ctx context.Context, group domain.GroupID, groupTitle string, rec *domain.PermissionRecord) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	doc := permissionDocument{}
	if err := r.store.load(&doc); err != nil {
		return false, err
	}

	block, exists := doc[string(group)]
	if !exists {
		block = &permissionGroupDoc{
			Admins: make(map[string]*domain.PermissionRecord),
		}
		doc[string(group)] = block
	}
	if groupTitle != "" {
		block.GroupTitle = groupTitle
	}

	key := accountKey(rec.Account)
	_, existed := block.Admins[key]
	cp := *rec
	block.Admins[key] = &cp

	if err := r.store.save(doc); err != nil {
		return false, err
	}
	return existed, nil
}

func (r *FilePermissionRepository) Remove(ctx context.Context, group domain.GroupID, account domain.AccountID) (*domain.PermissionRecord, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	doc := permissionDocument{}
	if err := r.store.load(&doc); err != nil {
		return nil, err
	}

	block, exists := doc[string(group)]
	if !exists {
		return nil, domain.ErrNotAnAdmin
	}
	key := accountKey(account)
	rec, exists := block.Admins[key]
	if !exists {
		return nil, domain.ErrNotAnAdmin
	}
	delete(block.Admins, key)

	if err := r.store.save(doc); err != nil {
		return nil, err
	}
	return rec, nil
}

func (r *FilePermissionRepository) Get(ctx context.Context, group domain.GroupID, account domain.AccountID) (*domain.PermissionRecord, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	doc := permissionDocument{}
	if err := r.store.load(&doc); err != nil {
		return nil, err
	}

	block, exists := doc[string(group)]
	if !exists {
		return nil, domain.ErrNotAnAdmin
	}
	rec, exists := block.Admins[accountKey(account)]
	if !exists {
		return nil, domain.ErrNotAnAdmin
	}
	return rec, nil
}

func (r *FilePermissionRepository) List(ctx context.Context, group domain.GroupID) ([]*domain.PermissionRecord, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	doc := permissionDocument{}
	if err := r.store.load(&doc); err != nil {
		return nil, err
	}

	block, exists := doc[string(group)]
	if !exists {
		return nil, nil
	}
	recs := make([]*domain.PermissionRecord, 0, len(block.Admins))
	for _, rec := range block.Admins {
		recs = append(recs, rec)
	}
	return recs, nil
}

func (r *FilePermissionRepository) GroupTitle(ctx context.Context, group domain.GroupID) (string, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	doc := permissionDocument{}
	if err := r.store.load(&doc); err != nil {
		return "", err
	}
	if block, exists := doc[string(group)]; exists {
		return block.GroupTitle, nil
	}
	return "", nil
}
