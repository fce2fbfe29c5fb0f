package services

import (
	"context"
	"fmt"
	"time"

	"wardenbot/internal/core/domain"
	"wardenbot/internal/core/ports"
)

// cooldownService rate-limits guarded moderation actions per admin tier.
// Check never writes: the moderation engine calls Update only after the
// guarded action succeeded, so a rejected action does not burn a cooldown.
type cooldownService struct {
	repo ports.CooldownRepository
}

func NewCooldownService(repo ports.CooldownRepository) ports.CooldownService {
	return &cooldownService{repo: repo}
}

func (s *cooldownService) Check(ctx context.Context, group domain.GroupID, account domain.AccountID, tier domain.Tier, now time.Time) (time.Duration, error) {
	window := domain.CooldownWindow(tier)
	if window == 0 {
		return 0, nil
	}

	rec, err := s.repo.Get(ctx, group, account)
	if err != nil {
		return 0, fmt.Errorf("failed to read cooldown record: %w", err)
	}
	if rec == nil {
		return 0, nil
	}

	remaining := window - now.Sub(rec.LastAction)
	if remaining <= 0 {
		return 0, nil
	}
	return remaining, nil
}

func (s *cooldownService) Update(ctx context.Context, group domain.GroupID, account domain.AccountID, displayName, groupTitle string, now time.Time) error {
	rec := &domain.CooldownRecord{
		Account:     account,
		DisplayName: displayName,
		GroupTitle:  groupTitle,
		LastAction:  now,
	}
	if err := s.repo.Put(ctx, group, groupTitle, rec); err != nil {
		return fmt.Errorf("failed to write cooldown record: %w", err)
	}
	return nil
}
