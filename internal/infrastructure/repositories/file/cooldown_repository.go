package file

import (
	"context"

	"wardenbot/internal/core/domain"
	"wardenbot/internal/core/ports"
)

type cooldownGroupDoc struct {
	GroupTitle string                            `json:"group_title,omitempty"`
	Admins     map[string]*domain.CooldownRecord `json:"admins"`
}

type cooldownDocument map[string]*cooldownGroupDoc

type FileCooldownRepository struct {
	store *documentStore
}

func NewFileCooldownRepository(dir string) ports.CooldownRepository {
	return &FileCooldownRepository{
		store: newDocumentStore(dir, "cooldowns.json"),
	}
}

func (r *FileCooldownRepository) Get(ctx context.Context, group domain.GroupID, account domain.AccountID) (*domain.CooldownRecord, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	doc := cooldownDocument{}
	if err := r.store.load(&doc); err != nil {
		return nil, err
	}

	block, exists := doc[string(group)]
	if !exists {
		return nil, nil
	}
	rec, exists := block.Admins[accountKey(account)]
	if !exists {
		return nil, nil
	}
	return rec, nil
}

func (r *FileCooldownRepository) Put(ctx context.Context, group domain.GroupID, groupTitle string, rec *domain.CooldownRecord) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	doc := cooldownDocument{}
	if err := r.store.load(&doc); err != nil {
		return err
	}

	block, exists := doc[string(group)]
	if !exists {
		block = &cooldownGroupDoc{
			Admins: make(map[string]*domain.CooldownRecord),
		}
		doc[string(group)] = block
	}
	if groupTitle != "" {
		block.GroupTitle = groupTitle
	}

	cp := *rec
	cp.GroupTitle = groupTitle
	block.Admins[accountKey(rec.Account)] = &cp
	return r.store.save(doc)
}
