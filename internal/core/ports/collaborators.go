package ports

import (
	"context"
	"time"

	"wardenbot/internal/core/domain"
)

// Messenger delivers outbound text. Delivery is fire-and-forget; callers
// log and swallow failures except where a component specifies otherwise.
type Messenger interface {
	SendToGroup(ctx context.Context, group domain.GroupID, text string) error
	SendToAccount(ctx context.Context, account domain.AccountID, text string) error
}

// RoleLookup answers transport-level role questions the core cannot.
type RoleLookup interface {
	IsOwner(ctx context.Context, group domain.GroupID, account domain.AccountID) (bool, error)
}

// Restrictor executes punitive actions on the transport. A zero duration
// means permanent.
type Restrictor interface {
	Restrict(ctx context.Context, group domain.GroupID, account domain.AccountID, d time.Duration) error
	Unrestrict(ctx context.Context, group domain.GroupID, account domain.AccountID) error
}

// Scheduler arms fire-once timers. There is no cancel: callers re-verify
// their arming condition when the timer fires (staleness guard).
type Scheduler interface {
	After(d time.Duration, fn func())
}

// MetricsRecorder receives counters from the core engines.
type MetricsRecorder interface {
	EventDispatched(command string)
	GameStarted()
	GameEnded()
	TriggerPulled(outcome string)
	PlayerEliminated()
	ModerationAction(action string)
	ModerationRejected(reason string)
}
