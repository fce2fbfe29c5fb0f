package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"wardenbot/internal/core/domain"
	"wardenbot/internal/core/ports"
	"wardenbot/internal/infrastructure/repositories/memory"
	apperrors "wardenbot/pkg/errors"
	"wardenbot/pkg/retry"
	"wardenbot/pkg/syncutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type moderationFixture struct {
	svc        *moderationService
	perms      ports.PermissionService
	messenger  *fakeMessenger
	scheduler  *fakeScheduler
	roles      *fakeRoleLookup
	restrictor *fakeRestrictor
	now        time.Time
}

func newModerationFixture(t *testing.T) *moderationFixture {
	t.Helper()

	perms := NewPermissionService(memory.NewMemoryPermissionRepository(), testLogger())
	cooldowns := NewCooldownService(memory.NewMemoryCooldownRepository())
	messenger := newFakeMessenger()
	scheduler := &fakeScheduler{}
	roles := &fakeRoleLookup{owners: map[domain.AccountID]bool{}}
	restrictor := &fakeRestrictor{}

	svc := NewModerationService(
		perms, cooldowns, roles, restrictor, messenger,
		scheduler, noopMetrics{}, syncutil.NewKeyedMutex(), testLogger(),
	).(*moderationService)
	svc.retryCfg = retry.Config{Enabled: false}

	f := &moderationFixture{
		svc:        svc,
		perms:      perms,
		messenger:  messenger,
		scheduler:  scheduler,
		roles:      roles,
		restrictor: restrictor,
		now:        time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	svc.now = func() time.Time { return f.now }
	return f
}

func (f *moderationFixture) request(reason string) *ports.RestrictionRequest {
	return &ports.RestrictionRequest{
		Group:         "g1",
		GroupTitle:    "Chat",
		Requester:     1,
		RequesterName: "Ann",
		Target:        2,
		TargetHandle:  "bob",
		Reason:        reason,
	}
}

func (f *moderationFixture) grant(t *testing.T, account domain.AccountID, tier string) {
	t.Helper()
	_, _, err := f.perms.Grant(context.Background(), "g1", "Chat", account, "", tier)
	require.NoError(t, err)
}

func TestModeration_TargetOwnerIsImmune(t *testing.T) {
	f := newModerationFixture(t)
	f.roles.owners[2] = true
	f.grant(t, 1, "1")

	_, err := f.svc.Restrict(context.Background(), f.request("spam"))
	assert.ErrorIs(t, err, domain.ErrCannotTargetOwner)
	assert.Empty(t, f.restrictor.restricts)
}

func TestModeration_NoTierRejected(t *testing.T) {
	f := newModerationFixture(t)

	_, err := f.svc.Restrict(context.Background(), f.request("spam"))
	assert.ErrorIs(t, err, domain.ErrInsufficientPrivilege)
}

func TestModeration_OwnerBypassesAllChecks(t *testing.T) {
	f := newModerationFixture(t)
	req := f.request("spam")
	req.RequesterIsOwner = true

	res, err := f.svc.Restrict(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "spam", res.Reason)
	assert.Zero(t, res.Duration)
	require.Len(t, f.restrictor.restricts, 1)
	assert.Equal(t, time.Duration(0), f.restrictor.restricts[0].duration)
	// Permanent action arms no reversal timer.
	assert.Zero(t, f.scheduler.count())
}

func TestModeration_CooldownRejection(t *testing.T) {
	f := newModerationFixture(t)
	f.grant(t, 1, "1")

	_, err := f.svc.Restrict(context.Background(), f.request("spam"))
	require.NoError(t, err)

	// Thirty seconds into the one-minute Deputy Head window.
	f.now = f.now.Add(30 * time.Second)
	_, err = f.svc.Restrict(context.Background(), f.request("again"))

	var cooldownErr *domain.CooldownError
	require.ErrorAs(t, err, &cooldownErr)
	assert.Equal(t, 30*time.Second, cooldownErr.Remaining)
	assert.Len(t, f.restrictor.restricts, 1)
}

func TestModeration_RejectionDoesNotBurnCooldown(t *testing.T) {
	f := newModerationFixture(t)
	f.grant(t, 1, "1")
	f.grant(t, 2, "1")

	// Equal rank fails, but the requester's window stays untouched.
	_, err := f.svc.Restrict(context.Background(), f.request("spam"))
	assert.ErrorIs(t, err, domain.ErrRankTooLow)

	f.roles.owners[2] = false
	_, err = f.svc.Restrict(context.Background(), &ports.RestrictionRequest{
		Group: "g1", GroupTitle: "Chat",
		Requester: 1, RequesterName: "Ann",
		Target: 3, TargetHandle: "carl",
		Reason: "spam",
	})
	require.NoError(t, err)
}

func TestModeration_RankOrdering(t *testing.T) {
	f := newModerationFixture(t)
	f.grant(t, 1, "2") // Co-Lead
	f.grant(t, 2, "1") // Deputy Head

	_, err := f.svc.Restrict(context.Background(), f.request("spam"))
	assert.ErrorIs(t, err, domain.ErrRankTooLow)

	// The other way around is permitted.
	_, err = f.svc.Restrict(context.Background(), &ports.RestrictionRequest{
		Group: "g1", GroupTitle: "Chat",
		Requester: 2, RequesterName: "Bob",
		Target: 1, TargetHandle: "ann",
		Reason: "abuse",
	})
	require.NoError(t, err)
}

func TestModeration_BoundedActionSchedulesReversal(t *testing.T) {
	f := newModerationFixture(t)
	f.grant(t, 1, "1")

	res, err := f.svc.Restrict(context.Background(), f.request("spam 1d2h"))
	require.NoError(t, err)
	assert.Equal(t, "spam", res.Reason)
	assert.Equal(t, 26*time.Hour, res.Duration)
	assert.Equal(t, "1 days, 2 hours", res.Readable)
	assert.Equal(t, f.now.Add(26*time.Hour), res.Until)

	require.Equal(t, 1, f.scheduler.count())
	f.scheduler.fire(0)
	require.Len(t, f.restrictor.unrestricts, 1)
	assert.Equal(t, domain.AccountID(2), f.restrictor.unrestricts[0].account)
}

func TestModeration_DurationOnlyReasonFallsBack(t *testing.T) {
	f := newModerationFixture(t)
	f.grant(t, 1, "1")

	res, err := f.svc.Restrict(context.Background(), f.request("1h"))
	require.NoError(t, err)
	assert.Equal(t, "no reason given", res.Reason)
	assert.Equal(t, time.Hour, res.Duration)
}

func TestModeration_EmptyReasonRejected(t *testing.T) {
	f := newModerationFixture(t)
	f.grant(t, 1, "1")

	_, err := f.svc.Restrict(context.Background(), f.request(""))
	assert.ErrorIs(t, err, domain.ErrReasonRequired)
	assert.Empty(t, f.restrictor.restricts)
}

func TestModeration_ExecutorFailureSurfaces(t *testing.T) {
	f := newModerationFixture(t)
	f.grant(t, 1, "1")
	f.restrictor.restrictErr = errors.New("transport down")

	_, err := f.svc.Restrict(context.Background(), f.request("spam"))
	appErr := apperrors.GetAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, apperrors.ErrCodeExternalAction, appErr.Code)

	// A failed action burns no cooldown.
	f.restrictor.restrictErr = nil
	_, err = f.svc.Restrict(context.Background(), f.request("spam"))
	require.NoError(t, err)
}

func TestModeration_AnnouncementFailureIsSwallowed(t *testing.T) {
	f := newModerationFixture(t)
	f.grant(t, 1, "1")
	f.messenger.groupErr = errors.New("send failed")
	f.messenger.dmErr = errors.New("dm closed")

	_, err := f.svc.Restrict(context.Background(), f.request("spam"))
	require.NoError(t, err)
	require.Len(t, f.restrictor.restricts, 1)
}
