package file

import (
	"context"

	"wardenbot/internal/core/domain"
	"wardenbot/internal/core/ports"
)

// identityDocument is the on-disk shape: handle -> account id.
type identityDocument map[string]domain.AccountID

type FileIdentityRepository struct {
	store *documentStore
}

func NewFileIdentityRepository(dir string) ports.IdentityRepository {
	return &FileIdentityRepository{
		store: newDocumentStore(dir, "identities.json"),
	}
}

func (r *FileIdentityRepository) Register(ctx context.Context, handle string, account domain.AccountID) error {
	if handle == "" {
		return nil
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	doc := identityDocument{}
	if err := r.store.load(&doc); err != nil {
		return err
	}
	doc[handle] = account
	return r.store.save(doc)
}

func (r *FileIdentityRepository) Resolve(ctx context.Context, handle string) (domain.AccountID, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	doc := identityDocument{}
	if err := r.store.load(&doc); err != nil {
		return 0, err
	}
	account, exists := doc[handle]
	if !exists {
		return 0, domain.ErrAccountNotFound
	}
	return account, nil
}
