package services

import (
	"context"
	"testing"
	"time"

	"wardenbot/internal/core/domain"
	"wardenbot/internal/infrastructure/repositories/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCooldownService_NoRecordMeansReady(t *testing.T) {
	svc := NewCooldownService(memory.NewMemoryCooldownRepository())

	remaining, err := svc.Check(context.Background(), "g1", 1, domain.TierDeputyHead, time.Now())
	require.NoError(t, err)
	assert.Zero(t, remaining)
}

func TestCooldownService_RemainingWindow(t *testing.T) {
	svc := NewCooldownService(memory.NewMemoryCooldownRepository())
	ctx := context.Background()
	t0 := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, svc.Update(ctx, "g1", 1, "Ann", "Chat", t0))

	// Deputy Head window is one minute.
	remaining, err := svc.Check(ctx, "g1", 1, domain.TierDeputyHead, t0.Add(30*time.Second))
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, remaining)

	remaining, err = svc.Check(ctx, "g1", 1, domain.TierDeputyHead, t0.Add(61*time.Second))
	require.NoError(t, err)
	assert.Zero(t, remaining)

	// The co-lead window is three hours from the same record.
	remaining, err = svc.Check(ctx, "g1", 1, domain.TierCoLead, t0.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 2*time.Hour, remaining)
}

func TestCooldownService_TierWithoutWindowSkipsLookup(t *testing.T) {
	svc := NewCooldownService(memory.NewMemoryCooldownRepository())

	remaining, err := svc.Check(context.Background(), "g1", 1, domain.TierNone, time.Now())
	require.NoError(t, err)
	assert.Zero(t, remaining)
}

func TestCooldownService_UpdateOverwrites(t *testing.T) {
	repo := memory.NewMemoryCooldownRepository()
	svc := NewCooldownService(repo)
	ctx := context.Background()
	t0 := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, svc.Update(ctx, "g1", 1, "Ann", "Chat", t0))
	require.NoError(t, svc.Update(ctx, "g1", 1, "Ann", "Chat", t0.Add(time.Hour)))

	rec, err := repo.Get(ctx, "g1", 1)
	require.NoError(t, err)
	assert.Equal(t, t0.Add(time.Hour), rec.LastAction)
}
