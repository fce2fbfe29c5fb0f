package domain

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrAccountNotFound = errors.New("account not found")

	ErrInvalidTier           = errors.New("invalid admin tier")
	ErrNotAnAdmin            = errors.New("not an admin")
	ErrCannotTargetOwner     = errors.New("the group owner cannot be targeted")
	ErrInsufficientPrivilege = errors.New("insufficient privilege")
	ErrRankTooLow            = errors.New("rank too low for this target")
	ErrReasonRequired        = errors.New("a reason is required")

	ErrGameAlreadyRunning = errors.New("a game is already running in this group")
	ErrNoSession          = errors.New("no game session in this group")
	ErrNotInLobby         = errors.New("the game is not accepting joins")
	ErrAlreadyJoined      = errors.New("already joined")
	ErrNotHost            = errors.New("only the host may do that")
	ErrNotEnoughPlayers   = errors.New("not enough players")
	ErrNotYourTurn        = errors.New("not your turn")
	ErrTargetNotAlive     = errors.New("target is not alive in this game")
)

// CooldownError rejects a guarded action attempted before the requester's
// per-tier cooldown window elapsed.
type CooldownError struct {
	Remaining time.Duration
}

func (e *CooldownError) Error() string {
	return fmt.Sprintf("on cooldown for another %s", FormatRemaining(e.Remaining))
}
