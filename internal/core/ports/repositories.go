package ports

import (
	"context"

	"wardenbot/internal/core/domain"
)

// IdentityRepository is the append-only handle -> account directory.
type IdentityRepository interface {
	// Register upserts the mapping. Registering an empty handle is a no-op.
	Register(ctx context.Context, handle string, account domain.AccountID) error
	// Resolve is an exact, case-sensitive lookup of a handle stored without
	// its leading marker character. Returns domain.ErrAccountNotFound.
	Resolve(ctx context.Context, handle string) (domain.AccountID, error)
}

// PermissionRepository stores per-group admin tier records.
type PermissionRepository interface {
	// Upsert writes the record into the group's block, creating the block
	// (with its denormalized title) when absent. Reports whether an
	// existing record for that account was overwritten.
	Upsert(ctx context.Context, group domain.GroupID, groupTitle string, rec *domain.PermissionRecord) (bool, error)
	// Remove deletes and returns the record, or domain.ErrNotAnAdmin.
	Remove(ctx context.Context, group domain.GroupID, account domain.AccountID) (*domain.PermissionRecord, error)
	// Get returns the record, or domain.ErrNotAnAdmin when absent.
	Get(ctx context.Context, group domain.GroupID, account domain.AccountID) (*domain.PermissionRecord, error)
	// List returns every record of the group, unordered.
	List(ctx context.Context, group domain.GroupID) ([]*domain.PermissionRecord, error)
	// GroupTitle returns the stored title of a group block ("" if none).
	GroupTitle(ctx context.Context, group domain.GroupID) (string, error)
}

// CooldownRepository stores per-group, per-account last-action records.
type CooldownRepository interface {
	// Get returns the record, or nil when the account has none.
	Get(ctx context.Context, group domain.GroupID, account domain.AccountID) (*domain.CooldownRecord, error)
	// Put unconditionally overwrites the record.
	Put(ctx context.Context, group domain.GroupID, groupTitle string, rec *domain.CooldownRecord) error
}
