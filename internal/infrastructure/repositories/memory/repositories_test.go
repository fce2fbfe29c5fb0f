package memory

import (
	"context"
	"testing"
	"time"

	"wardenbot/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryIdentityRepository(t *testing.T) {
	repo := NewMemoryIdentityRepository()
	ctx := context.Background()

	require.NoError(t, repo.Register(ctx, "ann", 100))

	id, err := repo.Resolve(ctx, "ann")
	require.NoError(t, err)
	assert.Equal(t, domain.AccountID(100), id)

	// Lookups are case sensitive.
	_, err = repo.Resolve(ctx, "Ann")
	assert.ErrorIs(t, err, domain.ErrAccountNotFound)

	// Re-registering moves the handle to its latest holder.
	require.NoError(t, repo.Register(ctx, "ann", 200))
	id, err = repo.Resolve(ctx, "ann")
	require.NoError(t, err)
	assert.Equal(t, domain.AccountID(200), id)

	// Empty handles are dropped silently.
	require.NoError(t, repo.Register(ctx, "", 300))
}

func TestMemoryPermissionRepository(t *testing.T) {
	repo := NewMemoryPermissionRepository()
	ctx := context.Background()

	existed, err := repo.Upsert(ctx, "g1", "Chat", &domain.PermissionRecord{Account: 1, Tier: domain.TierDeputyHead})
	require.NoError(t, err)
	assert.False(t, existed)

	existed, err = repo.Upsert(ctx, "g1", "", &domain.PermissionRecord{Account: 1, Tier: domain.TierCoLead})
	require.NoError(t, err)
	assert.True(t, existed)

	rec, err := repo.Get(ctx, "g1", 1)
	require.NoError(t, err)
	assert.Equal(t, domain.TierCoLead, rec.Tier)

	// An empty title on upsert keeps the stored one.
	title, err := repo.GroupTitle(ctx, "g1")
	require.NoError(t, err)
	assert.Equal(t, "Chat", title)

	recs, err := repo.List(ctx, "g1")
	require.NoError(t, err)
	assert.Len(t, recs, 1)

	removed, err := repo.Remove(ctx, "g1", 1)
	require.NoError(t, err)
	assert.Equal(t, domain.TierCoLead, removed.Tier)

	_, err = repo.Get(ctx, "g1", 1)
	assert.ErrorIs(t, err, domain.ErrNotAnAdmin)
	_, err = repo.Remove(ctx, "g1", 1)
	assert.ErrorIs(t, err, domain.ErrNotAnAdmin)
	_, err = repo.Get(ctx, "g2", 1)
	assert.ErrorIs(t, err, domain.ErrNotAnAdmin)
}

func TestMemoryCooldownRepository(t *testing.T) {
	repo := NewMemoryCooldownRepository()
	ctx := context.Background()

	rec, err := repo.Get(ctx, "g1", 1)
	require.NoError(t, err)
	assert.Nil(t, rec)

	t0 := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, repo.Put(ctx, "g1", "Chat", &domain.CooldownRecord{Account: 1, LastAction: t0}))

	rec, err = repo.Get(ctx, "g1", 1)
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, t0, rec.LastAction)

	// Other groups are untouched.
	rec, err = repo.Get(ctx, "g2", 1)
	require.NoError(t, err)
	assert.Nil(t, rec)
}
