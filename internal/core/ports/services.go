package ports

import (
	"context"
	"time"

	"wardenbot/internal/core/domain"
)

type PermissionService interface {
	// Grant resolves tierInput (digits or tier names) and upserts the
	// record, reporting whether an existing record was overwritten.
	Grant(ctx context.Context, group domain.GroupID, groupTitle string, account domain.AccountID, handle, tierInput string) (*domain.PermissionRecord, bool, error)
	Revoke(ctx context.Context, group domain.GroupID, account domain.AccountID) (*domain.PermissionRecord, error)
	TierOf(ctx context.Context, group domain.GroupID, account domain.AccountID) (domain.Tier, error)
	// ListByTier groups records for display, Deputy Head bucket first;
	// unknown legacy tiers keep their own buckets.
	ListByTier(ctx context.Context, group domain.GroupID) ([]domain.TierGroup, string, error)
}

type CooldownService interface {
	// Check is read-only: it returns the remaining window, or zero when
	// the action may proceed. The write happens via Update only after the
	// guarded action actually succeeded.
	Check(ctx context.Context, group domain.GroupID, account domain.AccountID, tier domain.Tier, now time.Time) (time.Duration, error)
	Update(ctx context.Context, group domain.GroupID, account domain.AccountID, displayName, groupTitle string, now time.Time) error
}

// RestrictionRequest asks the moderation engine to suspend a member.
type RestrictionRequest struct {
	Group            domain.GroupID
	GroupTitle       string
	Requester        domain.AccountID
	RequesterName    string
	RequesterIsOwner bool
	Target           domain.AccountID
	TargetHandle     string
	// Reason is the raw reason text; a trailing duration token such as
	// "1d2h" is parsed out of it.
	Reason string
}

// RestrictionResult reports a permitted, executed action.
type RestrictionResult struct {
	Reason   string
	Duration time.Duration
	// Readable is the human breakdown of the duration ("1 days, 2 hours"),
	// empty for permanent actions.
	Readable string
	Until    time.Time
}

type ModerationService interface {
	Restrict(ctx context.Context, req *RestrictionRequest) (*RestrictionResult, error)
}

// SessionSummary is a read-only view of one live game for ops surfaces.
type SessionSummary struct {
	Group   domain.GroupID   `json:"group"`
	Phase   domain.GamePhase `json:"phase"`
	Host    domain.AccountID `json:"host"`
	Players int              `json:"players"`
	Alive   int              `json:"alive"`
}

type GameService interface {
	CreateLobby(ctx context.Context, group domain.GroupID, host domain.AccountID, hostName string) error
	Join(ctx context.Context, group domain.GroupID, account domain.AccountID, name string) error
	StartGame(ctx context.Context, group domain.GroupID, requester domain.AccountID) error
	EndGame(ctx context.Context, group domain.GroupID, requester domain.AccountID) error
	// PullTrigger resolves one turn: a self pull when target == actor,
	// otherwise a shot at another player.
	PullTrigger(ctx context.Context, group domain.GroupID, actor, target domain.AccountID) error
	Sessions(ctx context.Context) []SessionSummary
}
