package services

import (
	"context"
	"fmt"
	"sort"

	"wardenbot/internal/core/domain"
	"wardenbot/internal/core/ports"

	"go.uber.org/zap"
)

type permissionService struct {
	repo   ports.PermissionRepository
	logger *zap.SugaredLogger
}

func NewPermissionService(repo ports.PermissionRepository, logger *zap.SugaredLogger) ports.PermissionService {
	return &permissionService{
		repo:   repo,
		logger: logger,
	}
}

func (s *permissionService) Grant(ctx context.Context, group domain.GroupID, groupTitle string, account domain.AccountID, handle, tierInput string) (*domain.PermissionRecord, bool, error) {
	tier, err := domain.ParseTier(tierInput)
	if err != nil {
		return nil, false, err
	}

	rec := &domain.PermissionRecord{
		Account: account,
		Handle:  handle,
		Tier:    tier,
	}

	existed, err := s.repo.Upsert(ctx, group, groupTitle, rec)
	if err != nil {
		return nil, false, fmt.Errorf("failed to store permission record: %w", err)
	}

	s.logger.Infow("admin tier granted",
		"group", group,
		"account", account,
		"tier", tier,
		"updated", existed,
	)
	return rec, existed, nil
}

func (s *permissionService) Revoke(ctx context.Context, group domain.GroupID, account domain.AccountID) (*domain.PermissionRecord, error) {
	rec, err := s.repo.Remove(ctx, group, account)
	if err != nil {
		return nil, err
	}

	s.logger.Infow("admin tier revoked",
		"group", group,
		"account", account,
		"tier", rec.Tier,
	)
	return rec, nil
}

func (s *permissionService) TierOf(ctx context.Context, group domain.GroupID, account domain.AccountID) (domain.Tier, error) {
	rec, err := s.repo.Get(ctx, group, account)
	if err == domain.ErrNotAnAdmin {
		return domain.TierNone, nil
	}
	if err != nil {
		return domain.TierNone, err
	}
	return rec.Tier, nil
}

func (s *permissionService) ListByTier(ctx context.Context, group domain.GroupID) ([]domain.TierGroup, string, error) {
	recs, err := s.repo.List(ctx, group)
	if err != nil {
		return nil, "", err
	}
	title, err := s.repo.GroupTitle(ctx, group)
	if err != nil {
		return nil, "", err
	}

	buckets := make(map[domain.Tier][]*domain.PermissionRecord)
	for _, rec := range recs {
		buckets[rec.Tier] = append(buckets[rec.Tier], rec)
	}

	tiers := make([]domain.Tier, 0, len(buckets))
	for tier := range buckets {
		tiers = append(tiers, tier)
	}
	// Highest rank first; unknown legacy tiers (rank 0) trail in a stable
	// lexical order instead of being dropped.
	sort.Slice(tiers, func(i, j int) bool {
		ri, rj := tiers[i].Rank(), tiers[j].Rank()
		if ri != rj {
			return ri > rj
		}
		return tiers[i] < tiers[j]
	})

	groups := make([]domain.TierGroup, 0, len(tiers))
	for _, tier := range tiers {
		members := buckets[tier]
		sort.Slice(members, func(i, j int) bool { return members[i].Account < members[j].Account })
		groups = append(groups, domain.TierGroup{Tier: tier, Members: members})
	}
	return groups, title, nil
}
