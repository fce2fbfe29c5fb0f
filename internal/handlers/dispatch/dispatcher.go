package dispatch

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"sync"
	"time"

	"wardenbot/internal/core/domain"
	"wardenbot/internal/core/ports"
	apperrors "wardenbot/pkg/errors"
	"wardenbot/pkg/tracing"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// RandomMuteConfig tunes the surprise-mute easter egg applied to plain
// chat messages.
type RandomMuteConfig struct {
	Enabled  bool
	Chance   float64
	Duration time.Duration
}

// groupLimiterStore stores per-group event rate limiters.
type groupLimiterStore struct {
	mu        sync.Mutex
	limiters  map[domain.GroupID]*rate.Limiter
	rate      rate.Limit
	burstSize int
}

func newGroupLimiterStore(r rate.Limit, burst int) *groupLimiterStore {
	return &groupLimiterStore{
		limiters:  make(map[domain.GroupID]*rate.Limiter),
		rate:      r,
		burstSize: burst,
	}
}

func (s *groupLimiterStore) getLimiter(group domain.GroupID) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()

	limiter, exists := s.limiters[group]
	if !exists {
		limiter = rate.NewLimiter(s.rate, s.burstSize)
		s.limiters[group] = limiter
	}
	return limiter
}

// Dispatcher routes inbound chat events to the engines and maps their
// errors back to user-facing replies.
type Dispatcher struct {
	identities  ports.IdentityRepository
	permissions ports.PermissionService
	moderation  ports.ModerationService
	games       ports.GameService
	messenger   ports.Messenger
	restrictor  ports.Restrictor
	metrics     ports.MetricsRecorder
	logger      *zap.SugaredLogger

	limiters   *groupLimiterStore
	randomMute RandomMuteConfig
	chance     func() float64
}

func NewDispatcher(
	identities ports.IdentityRepository,
	permissions ports.PermissionService,
	moderation ports.ModerationService,
	games ports.GameService,
	messenger ports.Messenger,
	restrictor ports.Restrictor,
	metrics ports.MetricsRecorder,
	logger *zap.SugaredLogger,
) *Dispatcher {
	return &Dispatcher{
		identities:  identities,
		permissions: permissions,
		moderation:  moderation,
		games:       games,
		messenger:   messenger,
		restrictor:  restrictor,
		metrics:     metrics,
		logger:      logger,
		chance:      rand.Float64,
	}
}

// EnableRateLimiting throttles event handling per group.
func (d *Dispatcher) EnableRateLimiting(eventsPerSecond float64, burst int) {
	d.limiters = newGroupLimiterStore(rate.Limit(eventsPerSecond), burst)
}

// EnableRandomMute arms the surprise-mute easter egg.
func (d *Dispatcher) EnableRandomMute(cfg RandomMuteConfig) {
	d.randomMute = cfg
}

// HandleEvent processes one chat event end to end. It never returns an
// error: failures become replies or log lines.
func (d *Dispatcher) HandleEvent(ctx context.Context, event *domain.InboundEvent) {
	ctx, span := tracing.Tracer("dispatch").Start(ctx, "handle_event")
	defer span.End()
	span.SetAttributes(attribute.String("group", string(event.Group)))

	if d.limiters != nil && !d.limiters.getLimiter(event.Group).Allow() {
		d.logger.Debugw("event dropped by rate limiter", "group", event.Group, "actor", event.Actor)
		return
	}

	// Every sighting refreshes the handle directory so later @mentions
	// resolve. Failures are non-fatal.
	if err := d.identities.Register(ctx, event.ActorHandle, event.Actor); err != nil {
		d.logger.Warnw("identity registration failed", "actor", event.Actor, "error", err)
	}

	command, args := splitCommand(event.Text)
	if command == "" {
		d.maybeRandomMute(ctx, event)
		return
	}
	span.SetAttributes(attribute.String("command", command))
	d.metrics.EventDispatched(command)

	var err error
	switch command {
	case "!roulette":
		err = d.games.CreateLobby(ctx, event.Group, event.Actor, actorName(event))
	case "!join":
		err = d.games.Join(ctx, event.Group, event.Actor, actorName(event))
	case "!startgame":
		err = d.games.StartGame(ctx, event.Group, event.Actor)
	case "!endgame":
		err = d.games.EndGame(ctx, event.Group, event.Actor)
	case "!shootme":
		err = d.games.PullTrigger(ctx, event.Group, event.Actor, event.Actor)
	case "!shoot":
		err = d.handleShoot(ctx, event, args)
	case "!ban":
		err = d.handleBan(ctx, event, args)
	case "!add-admin":
		err = d.handleAddAdmin(ctx, event, args)
	case "!remove-admin":
		err = d.handleRemoveAdmin(ctx, event, args)
	case "!list-admins":
		err = d.handleListAdmins(ctx, event)
	default:
		// Unknown bang-words are ordinary chat.
		d.maybeRandomMute(ctx, event)
		return
	}

	if err != nil {
		d.reply(ctx, event.Group, replyFor(err))
	}
}

func (d *Dispatcher) handleShoot(ctx context.Context, event *domain.InboundEvent, args []string) error {
	target, _, err := d.resolveTarget(ctx, event, args)
	if err != nil {
		return err
	}
	return d.games.PullTrigger(ctx, event.Group, event.Actor, target)
}

func (d *Dispatcher) handleBan(ctx context.Context, event *domain.InboundEvent, args []string) error {
	target, handle, err := d.resolveTarget(ctx, event, args)
	if err != nil {
		return err
	}

	reason := strings.TrimSpace(strings.Join(reasonArgs(event, args), " "))
	_, err = d.moderation.Restrict(ctx, &ports.RestrictionRequest{
		Group:            event.Group,
		GroupTitle:       event.GroupTitle,
		Requester:        event.Actor,
		RequesterName:    actorName(event),
		RequesterIsOwner: event.ActorIsOwner,
		Target:           target,
		TargetHandle:     handle,
		Reason:           reason,
	})
	return err
}

func (d *Dispatcher) handleAddAdmin(ctx context.Context, event *domain.InboundEvent, args []string) error {
	if !event.ActorIsOwner {
		return domain.ErrInsufficientPrivilege
	}

	target, handle, err := d.resolveTarget(ctx, event, args)
	if err != nil {
		return err
	}

	tierInput := strings.Join(reasonArgs(event, args), " ")
	rec, wasUpdate, err := d.permissions.Grant(ctx, event.Group, event.GroupTitle, target, handle, tierInput)
	if err != nil {
		return err
	}

	verb := "appointed"
	if wasUpdate {
		verb = "reassigned"
	}
	d.reply(ctx, event.Group, fmt.Sprintf("✅ %s was %s as %s.", mention(rec.Account, rec.Handle), verb, rec.Tier))
	return nil
}

func (d *Dispatcher) handleRemoveAdmin(ctx context.Context, event *domain.InboundEvent, args []string) error {
	if !event.ActorIsOwner {
		return domain.ErrInsufficientPrivilege
	}

	target, _, err := d.resolveTarget(ctx, event, args)
	if err != nil {
		return err
	}

	rec, err := d.permissions.Revoke(ctx, event.Group, target)
	if err != nil {
		return err
	}
	d.reply(ctx, event.Group, fmt.Sprintf("🗑 %s is no longer %s.", mention(rec.Account, rec.Handle), rec.Tier))
	return nil
}

func (d *Dispatcher) handleListAdmins(ctx context.Context, event *domain.InboundEvent) error {
	tiers, title, err := d.permissions.ListByTier(ctx, event.Group)
	if err != nil {
		return err
	}
	if title == "" {
		title = event.GroupTitle
	}

	var b strings.Builder
	fmt.Fprintf(&b, "👮 Admins of %s:\n", title)
	total := 0
	for _, tg := range tiers {
		fmt.Fprintf(&b, "\n%s:\n", tg.Tier)
		for _, rec := range tg.Members {
			fmt.Fprintf(&b, "  • %s\n", mention(rec.Account, rec.Handle))
			total++
		}
	}
	if total == 0 {
		b.Reset()
		fmt.Fprintf(&b, "👮 No admins appointed in %s yet.", title)
	}

	d.reply(ctx, event.Group, b.String())
	return nil
}

// resolveTarget finds the account a command refers to: the replied-to
// member wins, then an @handle from the directory, then a raw numeric id.
func (d *Dispatcher) resolveTarget(ctx context.Context, event *domain.InboundEvent, args []string) (domain.AccountID, string, error) {
	if event.RepliedTo != 0 {
		return event.RepliedTo, event.RepliedToHandle, nil
	}
	if len(args) == 0 {
		return 0, "", domain.ErrAccountNotFound
	}

	ref := args[0]
	if strings.HasPrefix(ref, "@") {
		handle := strings.TrimPrefix(ref, "@")
		id, err := d.identities.Resolve(ctx, handle)
		if err != nil {
			return 0, "", err
		}
		return id, handle, nil
	}

	id, err := strconv.ParseInt(ref, 10, 64)
	if err != nil || id <= 0 {
		return 0, "", domain.ErrAccountNotFound
	}
	return domain.AccountID(id), "", nil
}

// reasonArgs returns the free-text tail of the command: when the target
// came from a reply the whole argument list is text, otherwise the first
// argument was the target reference.
func reasonArgs(event *domain.InboundEvent, args []string) []string {
	if event.RepliedTo != 0 {
		return args
	}
	if len(args) == 0 {
		return nil
	}
	return args[1:]
}

func (d *Dispatcher) maybeRandomMute(ctx context.Context, event *domain.InboundEvent) {
	if !d.randomMute.Enabled || event.ActorIsOwner {
		return
	}
	if d.chance() >= d.randomMute.Chance {
		return
	}

	d.logger.Infow("random mute fired", "group", event.Group, "actor", event.Actor)
	duration := d.randomMute.Duration
	if err := d.restrictor.Restrict(ctx, event.Group, event.Actor, duration); err != nil {
		d.logger.Debugw("random mute failed", "group", event.Group, "actor", event.Actor, "error", err)
		return
	}
	d.reply(ctx, event.Group, fmt.Sprintf("🎰 Unlucky! %s drew the short straw and is muted for %s.",
		actorName(event), domain.FormatRemaining(duration)))
}

func (d *Dispatcher) reply(ctx context.Context, group domain.GroupID, text string) {
	if text == "" {
		return
	}
	if err := d.messenger.SendToGroup(ctx, group, text); err != nil {
		d.logger.Warnw("reply delivery failed", "group", group, "error", err)
	}
}

// replyFor maps engine errors to user-facing text. Unknown errors get a
// generic reply so internals never leak into chat.
func replyFor(err error) string {
	var cooldownErr *domain.CooldownError
	if errors.As(err, &cooldownErr) {
		return fmt.Sprintf("⏳ Not so fast! Try again in %s.", domain.FormatRemaining(cooldownErr.Remaining))
	}

	switch {
	case errors.Is(err, domain.ErrCannotTargetOwner):
		return "🛑 The group owner cannot be targeted."
	case errors.Is(err, domain.ErrInsufficientPrivilege):
		return "🚫 You don't have permission to do that."
	case errors.Is(err, domain.ErrRankTooLow):
		return "⚖️ Your rank is not high enough for that target."
	case errors.Is(err, domain.ErrReasonRequired):
		return "📝 A reason is required. Example: !ban @name spamming 1d"
	case errors.Is(err, domain.ErrAccountNotFound):
		return "🔍 I don't know that member. Reply to their message or use @handle."
	case errors.Is(err, domain.ErrNotAnAdmin):
		return "🤷 That member holds no admin tier."
	case errors.Is(err, domain.ErrInvalidTier):
		return "❓ Unknown tier. Use 1 (Deputy Head) or 2 (Deputy Co-Lead)."
	case errors.Is(err, domain.ErrGameAlreadyRunning):
		return "🎲 A game is already running in this group."
	case errors.Is(err, domain.ErrNoSession):
		return "🎲 There is no game here. Start one with !roulette."
	case errors.Is(err, domain.ErrNotInLobby):
		return "🎲 The game already started, you can't join now."
	case errors.Is(err, domain.ErrAlreadyJoined):
		return "✋ You are already in."
	case errors.Is(err, domain.ErrNotHost):
		return "👑 Only the host can do that."
	case errors.Is(err, domain.ErrNotEnoughPlayers):
		return "😕 Not enough players, the lobby was closed."
	case errors.Is(err, domain.ErrNotYourTurn):
		return "⛔ It's not your turn."
	case errors.Is(err, domain.ErrTargetNotAlive):
		return "💀 That player is not alive in this game."
	}

	if appErr := apperrors.GetAppError(err); appErr != nil && appErr.Code == apperrors.ErrCodeExternalAction {
		return "⚠️ The action could not be executed, try again later."
	}
	return "⚠️ Something went wrong."
}

// splitCommand extracts a leading bang-command and its arguments. Plain
// chat returns an empty command.
func splitCommand(text string) (string, []string) {
	fields := strings.Fields(text)
	if len(fields) == 0 || !strings.HasPrefix(fields[0], "!") {
		return "", nil
	}
	return strings.ToLower(fields[0]), fields[1:]
}

func actorName(event *domain.InboundEvent) string {
	if event.ActorDisplayName != "" {
		return event.ActorDisplayName
	}
	if event.ActorHandle != "" {
		return "@" + event.ActorHandle
	}
	return fmt.Sprintf("member %d", event.Actor)
}

func mention(account domain.AccountID, handle string) string {
	if handle != "" {
		return "@" + handle
	}
	return fmt.Sprintf("member %d", account)
}
