package services

import (
	"context"
	"fmt"
	"time"

	"wardenbot/internal/core/domain"
	"wardenbot/internal/core/ports"
	apperrors "wardenbot/pkg/errors"
	"wardenbot/pkg/retry"
	"wardenbot/pkg/syncutil"

	"go.uber.org/zap"
)

type moderationService struct {
	perms      ports.PermissionService
	cooldowns  ports.CooldownService
	roles      ports.RoleLookup
	restrictor ports.Restrictor
	messenger  ports.Messenger
	scheduler  ports.Scheduler
	metrics    ports.MetricsRecorder
	locks      *syncutil.KeyedMutex
	retryCfg   retry.Config
	logger     *zap.SugaredLogger

	now func() time.Time
}

func NewModerationService(
	perms ports.PermissionService,
	cooldowns ports.CooldownService,
	roles ports.RoleLookup,
	restrictor ports.Restrictor,
	messenger ports.Messenger,
	scheduler ports.Scheduler,
	metrics ports.MetricsRecorder,
	locks *syncutil.KeyedMutex,
	logger *zap.SugaredLogger,
) ports.ModerationService {
	return &moderationService{
		perms:      perms,
		cooldowns:  cooldowns,
		roles:      roles,
		restrictor: restrictor,
		messenger:  messenger,
		scheduler:  scheduler,
		metrics:    metrics,
		locks:      locks,
		retryCfg:   retry.DefaultConfig(),
		logger:     logger,
		now:        time.Now,
	}
}

// Restrict authorizes and executes one punitive action. The decision
// sequence short-circuits on the first match: owner-target immunity,
// owner-requester bypass, tier presence, cooldown, then tier-vs-tier rank.
func (s *moderationService) Restrict(ctx context.Context, req *ports.RestrictionRequest) (*ports.RestrictionResult, error) {
	unlock := s.locks.Lock(string(req.Group))
	defer unlock()

	targetIsOwner, err := s.roles.IsOwner(ctx, req.Group, req.Target)
	if err != nil {
		return nil, apperrors.NewExternalActionError(fmt.Errorf("role lookup for target: %w", err))
	}
	if targetIsOwner {
		s.metrics.ModerationRejected("target_owner")
		return nil, domain.ErrCannotTargetOwner
	}

	if !req.RequesterIsOwner {
		requesterTier, err := s.perms.TierOf(ctx, req.Group, req.Requester)
		if err != nil {
			return nil, fmt.Errorf("failed to read requester tier: %w", err)
		}
		if requesterTier == domain.TierNone {
			s.metrics.ModerationRejected("no_tier")
			return nil, domain.ErrInsufficientPrivilege
		}

		remaining, err := s.cooldowns.Check(ctx, req.Group, req.Requester, requesterTier, s.now())
		if err != nil {
			return nil, err
		}
		if remaining > 0 {
			s.metrics.ModerationRejected("cooldown")
			return nil, &domain.CooldownError{Remaining: remaining}
		}

		targetTier, err := s.perms.TierOf(ctx, req.Group, req.Target)
		if err != nil {
			return nil, fmt.Errorf("failed to read target tier: %w", err)
		}
		if requesterTier.Rank() <= targetTier.Rank() {
			s.metrics.ModerationRejected("rank")
			return nil, domain.ErrRankTooLow
		}
	}

	duration, readable := domain.ParseRestrictionDuration(req.Reason)
	reason := req.Reason
	if duration > 0 {
		reason = domain.StripTrailingDurationToken(reason)
		if reason == "" {
			reason = "no reason given"
		}
	}
	if reason == "" {
		return nil, domain.ErrReasonRequired
	}

	if err := retry.Retry(ctx, s.retryCfg, func() error {
		return s.restrictor.Restrict(ctx, req.Group, req.Target, duration)
	}); err != nil {
		s.logger.Errorw("restriction failed",
			"group", req.Group,
			"target", req.Target,
			"error", err,
		)
		return nil, apperrors.NewExternalActionError(err)
	}

	result := &ports.RestrictionResult{
		Reason:   reason,
		Duration: duration,
		Readable: readable,
	}
	if duration > 0 {
		result.Until = s.now().UTC().Add(duration)
		s.scheduleReversal(req.Group, req.Target, duration)
	}

	if err := s.cooldowns.Update(ctx, req.Group, req.Requester, req.RequesterName, req.GroupTitle, s.now()); err != nil {
		// The action already happened; a failed cooldown write must not
		// undo it. The next check simply sees the older timestamp.
		s.logger.Warnw("cooldown update failed", "group", req.Group, "error", err)
	}

	s.announce(ctx, req, result)
	s.metrics.ModerationAction("restrict")
	return result, nil
}

// scheduleReversal arms the deferred unban. It is fire-and-forget:
// reversing an already-lifted restriction is a no-op on the transport side,
// so errors are swallowed.
func (s *moderationService) scheduleReversal(group domain.GroupID, target domain.AccountID, d time.Duration) {
	s.scheduler.After(d, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := s.restrictor.Unrestrict(ctx, group, target); err != nil {
			s.logger.Debugw("deferred reversal failed",
				"group", group,
				"target", target,
				"error", err,
			)
		}
	})
}

func (s *moderationService) announce(ctx context.Context, req *ports.RestrictionRequest, res *ports.RestrictionResult) {
	mention := req.TargetHandle
	if mention == "" {
		mention = fmt.Sprintf("member %d", req.Target)
	} else {
		mention = "@" + mention
	}

	text := fmt.Sprintf("👤 %s was restricted\n👮 by %s\n📝 Reason: %s", mention, req.RequesterName, res.Reason)
	if res.Duration > 0 {
		text += fmt.Sprintf("\n⏳ Term: %s\n🔓 Lifted at: %s", res.Readable, res.Until.Format("2006-01-02 15:04:05 UTC"))
	}
	if err := s.messenger.SendToGroup(ctx, req.Group, text); err != nil {
		s.logger.Warnw("audit message delivery failed", "group", req.Group, "error", err)
	}

	// Best-effort direct notification; failure is swallowed (the target
	// may have never started a private chat with the bot).
	private := fmt.Sprintf("🚫 You were restricted in %s.\n👮 By: %s\n📝 Reason: %s", req.GroupTitle, req.RequesterName, res.Reason)
	if res.Duration > 0 {
		private += fmt.Sprintf("\n⏳ Term: %s", res.Readable)
	}
	if err := s.messenger.SendToAccount(ctx, req.Target, private); err != nil {
		s.logger.Debugw("target notification failed", "target", req.Target, "error", err)
	}
}
