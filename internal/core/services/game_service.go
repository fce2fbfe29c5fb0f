package services

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"wardenbot/internal/core/domain"
	"wardenbot/internal/core/ports"
	"wardenbot/pkg/syncutil"

	"go.uber.org/zap"
)

// GameConfig tunes the elimination game.
type GameConfig struct {
	TurnTimeout   time.Duration
	MinPlayers    int
	ChamberBlanks int
	ChamberLive   int
}

func DefaultGameConfig() GameConfig {
	return GameConfig{
		TurnTimeout:   60 * time.Second,
		MinPlayers:    2,
		ChamberBlanks: 5,
		ChamberLive:   1,
	}
}

// gameService owns the per-group session registry and the full
// lobby -> active -> resolution state machine. All mutation of one group's
// session happens under that group's keyed lock; the registry map has its
// own mutex so unrelated groups never serialize behind each other.
type gameService struct {
	messenger ports.Messenger
	scheduler ports.Scheduler
	metrics   ports.MetricsRecorder
	locks     *syncutil.KeyedMutex
	cfg       GameConfig
	logger    *zap.SugaredLogger

	mu       sync.RWMutex
	sessions map[domain.GroupID]*domain.GameSession

	shuffle func(n int, swap func(i, j int))
}

func NewGameService(
	messenger ports.Messenger,
	scheduler ports.Scheduler,
	metrics ports.MetricsRecorder,
	locks *syncutil.KeyedMutex,
	cfg GameConfig,
	logger *zap.SugaredLogger,
) ports.GameService {
	return &gameService{
		messenger: messenger,
		scheduler: scheduler,
		metrics:   metrics,
		locks:     locks,
		cfg:       cfg,
		logger:    logger,
		sessions:  make(map[domain.GroupID]*domain.GameSession),
		shuffle:   rand.Shuffle,
	}
}

func (s *gameService) session(group domain.GroupID) *domain.GameSession {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sessions[group]
}

func (s *gameService) putSession(sess *domain.GameSession) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.Group] = sess
}

func (s *gameService) dropSession(group domain.GroupID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, group)
}

func (s *gameService) CreateLobby(ctx context.Context, group domain.GroupID, host domain.AccountID, hostName string) error {
	unlock := s.locks.Lock(string(group))
	defer unlock()

	if s.session(group) != nil {
		return domain.ErrGameAlreadyRunning
	}

	sess := &domain.GameSession{
		Group:        group,
		Phase:        domain.PhaseLobby,
		Host:         host,
		Roster:       []domain.AccountID{host},
		DisplayNames: map[domain.AccountID]string{host: hostName},
		CreatedAt:    time.Now(),
	}
	s.putSession(sess)

	s.logger.Infow("roulette lobby created", "group", group, "host", host)
	s.send(ctx, group, fmt.Sprintf(
		"🎲 %s wants to play Russian roulette!\n\nType !join to enter.\nThe host can start early with !startgame.",
		hostName,
	))
	return nil
}

func (s *gameService) Join(ctx context.Context, group domain.GroupID, account domain.AccountID, name string) error {
	unlock := s.locks.Lock(string(group))
	defer unlock()

	sess := s.session(group)
	if sess == nil {
		return domain.ErrNoSession
	}
	if sess.Phase != domain.PhaseLobby {
		return domain.ErrNotInLobby
	}
	if sess.Joined(account) {
		return domain.ErrAlreadyJoined
	}

	sess.Roster = append(sess.Roster, account)
	sess.DisplayNames[account] = name

	s.send(ctx, group, fmt.Sprintf("✅ %s joined the game!", name))
	return nil
}

func (s *gameService) StartGame(ctx context.Context, group domain.GroupID, requester domain.AccountID) error {
	unlock := s.locks.Lock(string(group))
	defer unlock()

	sess := s.session(group)
	if sess == nil || sess.Phase != domain.PhaseLobby {
		return domain.ErrNoSession
	}
	if sess.Host != requester {
		return domain.ErrNotHost
	}
	if len(sess.Roster) < s.cfg.MinPlayers {
		s.dropSession(group)
		return domain.ErrNotEnoughPlayers
	}

	template := domain.NewChamber(s.cfg.ChamberBlanks, s.cfg.ChamberLive)
	sess.ChamberTemplate = template
	sess.Chamber = s.shuffledChamber(template)

	s.shuffle(len(sess.Roster), func(i, j int) {
		sess.Roster[i], sess.Roster[j] = sess.Roster[j], sess.Roster[i]
	})
	sess.AliveOrder = append([]domain.AccountID(nil), sess.Roster...)
	sess.Eliminated = nil
	sess.TurnIndex = 0
	sess.WaitingOn = 0
	sess.Phase = domain.PhaseActive

	s.metrics.GameStarted()
	s.logger.Infow("roulette started", "group", group, "players", len(sess.Roster))

	s.send(ctx, group, "💥 The game begins!")
	s.announceStatus(ctx, sess)
	s.advanceTurn(ctx, sess)
	return nil
}

func (s *gameService) EndGame(ctx context.Context, group domain.GroupID, requester domain.AccountID) error {
	unlock := s.locks.Lock(string(group))
	defer unlock()

	sess := s.session(group)
	if sess == nil {
		return domain.ErrNoSession
	}
	if sess.Host != requester {
		return domain.ErrNotHost
	}

	wasActive := sess.Phase == domain.PhaseActive
	s.dropSession(group)
	if wasActive {
		s.metrics.GameEnded()
	}
	s.send(ctx, group, "❌ The game was ended by the host.")
	return nil
}

func (s *gameService) PullTrigger(ctx context.Context, group domain.GroupID, actor, target domain.AccountID) error {
	unlock := s.locks.Lock(string(group))
	defer unlock()

	sess := s.session(group)
	if sess == nil || sess.Phase != domain.PhaseActive || sess.WaitingOn != actor {
		return domain.ErrNotYourTurn
	}

	// Disarm before resolving anything: the pending turn timer re-checks
	// WaitingOn on fire, so clearing it here wins the race.
	sess.WaitingOn = 0

	if !sess.Alive(target) {
		// Restore the armed player so the outstanding timer (and the
		// actor's next attempt) still resolve this turn.
		sess.WaitingOn = actor
		return domain.ErrTargetNotAlive
	}

	s.resolvePull(ctx, sess, actor, target)
	return nil
}

// resolvePull consumes one chamber slot. Caller holds the group lock.
func (s *gameService) resolvePull(ctx context.Context, sess *domain.GameSession, actor, target domain.AccountID) {
	outcome := s.popOutcome(sess)
	s.metrics.TriggerPulled(string(outcome))

	selfPull := actor == target

	if outcome == domain.OutcomeBlank {
		if selfPull {
			s.send(ctx, sess.Group, fmt.Sprintf("🔫 %s pulls the trigger — click. Miss!", sess.Name(actor)))
			s.announceStatus(ctx, sess)
			// A survived self-pull grants the same player another go: the
			// turn index does not rotate on this branch.
			s.armTurn(ctx, sess, actor)
			return
		}

		s.send(ctx, sess.Group, fmt.Sprintf("🔫 %s shoots at %s — miss!", sess.Name(actor), sess.Name(target)))
		sess.TurnIndex = (sess.TurnIndex + 1) % len(sess.AliveOrder)
		s.announceStatus(ctx, sess)
		s.advanceTurn(ctx, sess)
		return
	}

	sess.RemoveAlive(target)
	s.metrics.PlayerEliminated()
	// A fired live round empties the scene: rebuild the chamber from the
	// template so the next victim faces the original odds again.
	sess.Chamber = s.shuffledChamber(sess.ChamberTemplate)
	if sess.TurnIndex >= len(sess.AliveOrder) {
		sess.TurnIndex = 0
	}

	if selfPull {
		s.send(ctx, sess.Group, fmt.Sprintf("💥 %s is dead!", sess.Name(actor)))
	} else {
		s.send(ctx, sess.Group, fmt.Sprintf("🔫 %s shoots %s — 💀 dead!", sess.Name(actor), sess.Name(target)))
	}
	s.announceStatus(ctx, sess)
	s.advanceTurn(ctx, sess)
}

// popOutcome takes the front of the draw queue, refilling an exhausted
// chamber from the template first so a pop can never happen on empty.
func (s *gameService) popOutcome(sess *domain.GameSession) domain.Outcome {
	if len(sess.Chamber) == 0 {
		sess.Chamber = s.shuffledChamber(sess.ChamberTemplate)
	}
	outcome := sess.Chamber[0]
	sess.Chamber = sess.Chamber[1:]
	return outcome
}

func (s *gameService) shuffledChamber(template []domain.Outcome) []domain.Outcome {
	chamber := append([]domain.Outcome(nil), template...)
	s.shuffle(len(chamber), func(i, j int) {
		chamber[i], chamber[j] = chamber[j], chamber[i]
	})
	return chamber
}

// advanceTurn either crowns the winner or hands the turn to the player at
// the current index. Caller holds the group lock.
func (s *gameService) advanceTurn(ctx context.Context, sess *domain.GameSession) {
	if len(sess.AliveOrder) == 1 {
		winner := sess.AliveOrder[0]
		s.send(ctx, sess.Group, fmt.Sprintf("🏆 Winner: %s", sess.Name(winner)))
		s.dropSession(sess.Group)
		s.metrics.GameEnded()
		s.logger.Infow("roulette finished", "group", sess.Group, "winner", winner)
		return
	}

	s.armTurn(ctx, sess, sess.AliveOrder[sess.TurnIndex])
}

// armTurn marks the player as waited-on and arms the forced-turn timer.
// The timer is never cancelled; it re-verifies WaitingOn when it fires.
func (s *gameService) armTurn(ctx context.Context, sess *domain.GameSession, player domain.AccountID) {
	sess.WaitingOn = player
	group := sess.Group

	s.send(ctx, group, fmt.Sprintf(
		"🔁 It's %s's turn!\nCommands: !shootme, or !shoot @name (or reply to a message)\n⏳ You have %d seconds.",
		sess.Name(player), int(s.cfg.TurnTimeout.Seconds()),
	))

	s.scheduler.After(s.cfg.TurnTimeout, func() {
		s.onTurnTimeout(group, player)
	})
}

// onTurnTimeout forces a self-pull when the armed player never acted. The
// staleness guard: if WaitingOn moved on (the turn resolved through the
// fast path, or the session is gone) the timer does nothing.
func (s *gameService) onTurnTimeout(group domain.GroupID, player domain.AccountID) {
	unlock := s.locks.Lock(string(group))
	defer unlock()

	sess := s.session(group)
	if sess == nil || sess.Phase != domain.PhaseActive || sess.WaitingOn != player {
		return
	}
	sess.WaitingOn = 0

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	s.send(ctx, group, fmt.Sprintf("⏱ Time is up! %s pulls the trigger on themselves.", sess.Name(player)))
	s.resolvePull(ctx, sess, player, player)
}

func (s *gameService) announceStatus(ctx context.Context, sess *domain.GameSession) {
	blanks, live := sess.CountOutcomes()

	alive := make([]string, 0, len(sess.AliveOrder))
	for _, id := range sess.AliveOrder {
		alive = append(alive, sess.Name(id))
	}
	dead := make([]string, 0, len(sess.Eliminated))
	for _, id := range sess.Eliminated {
		dead = append(dead, sess.Name(id))
	}
	deadList := "—"
	if len(dead) > 0 {
		deadList = strings.Join(dead, ", ")
	}

	s.send(ctx, sess.Group, fmt.Sprintf(
		"💥 Chamber: %d blanks, %d live\n🙂 Alive: %d — %s\n☠️ Dead: %d — %s",
		blanks, live, len(alive), strings.Join(alive, ", "), len(dead), deadList,
	))
}

// send delivers a game announcement; delivery failures are logged and
// swallowed so a flaky transport never corrupts game state.
func (s *gameService) send(ctx context.Context, group domain.GroupID, text string) {
	if err := s.messenger.SendToGroup(ctx, group, text); err != nil {
		s.logger.Warnw("game announcement delivery failed", "group", group, "error", err)
	}
}

// Sessions snapshots every live session for inspection. Session fields are
// only stable under the group's keyed lock, so the registry mutex yields the
// group list and each summary is taken under its own group lock.
func (s *gameService) Sessions(ctx context.Context) []ports.SessionSummary {
	s.mu.RLock()
	groups := make([]domain.GroupID, 0, len(s.sessions))
	for group := range s.sessions {
		groups = append(groups, group)
	}
	s.mu.RUnlock()

	summaries := make([]ports.SessionSummary, 0, len(groups))
	for _, group := range groups {
		unlock := s.locks.Lock(string(group))
		sess := s.session(group)
		if sess == nil {
			// Finished between the snapshot and the lock.
			unlock()
			continue
		}
		summaries = append(summaries, ports.SessionSummary{
			Group:   sess.Group,
			Phase:   sess.Phase,
			Host:    sess.Host,
			Players: len(sess.Roster),
			Alive:   len(sess.AliveOrder),
		})
		unlock()
	}
	return summaries
}
