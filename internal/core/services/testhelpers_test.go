package services

import (
	"context"
	"sync"
	"time"

	"wardenbot/internal/core/domain"

	"go.uber.org/zap"
)

func testLogger() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}

type fakeMessenger struct {
	mu       sync.Mutex
	group    []string
	private  map[domain.AccountID][]string
	groupErr error
	dmErr    error
}

func newFakeMessenger() *fakeMessenger {
	return &fakeMessenger{private: make(map[domain.AccountID][]string)}
}

func (m *fakeMessenger) SendToGroup(ctx context.Context, group domain.GroupID, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.groupErr != nil {
		return m.groupErr
	}
	m.group = append(m.group, text)
	return nil
}

func (m *fakeMessenger) SendToAccount(ctx context.Context, account domain.AccountID, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.dmErr != nil {
		return m.dmErr
	}
	m.private[account] = append(m.private[account], text)
	return nil
}

func (m *fakeMessenger) groupMessages() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.group...)
}

type scheduledCall struct {
	delay time.Duration
	fn    func()
}

// fakeScheduler records armed timers; tests fire them by hand.
type fakeScheduler struct {
	mu    sync.Mutex
	calls []scheduledCall
}

func (s *fakeScheduler) After(d time.Duration, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, scheduledCall{delay: d, fn: fn})
}

func (s *fakeScheduler) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

func (s *fakeScheduler) fire(i int) {
	s.mu.Lock()
	call := s.calls[i]
	s.mu.Unlock()
	call.fn()
}

type fakeRoleLookup struct {
	owners map[domain.AccountID]bool
	err    error
}

func (r *fakeRoleLookup) IsOwner(ctx context.Context, group domain.GroupID, account domain.AccountID) (bool, error) {
	if r.err != nil {
		return false, r.err
	}
	return r.owners[account], nil
}

type restrictCall struct {
	group    domain.GroupID
	account  domain.AccountID
	duration time.Duration
}

type fakeRestrictor struct {
	mu          sync.Mutex
	restricts   []restrictCall
	unrestricts []restrictCall
	restrictErr error
}

func (r *fakeRestrictor) Restrict(ctx context.Context, group domain.GroupID, account domain.AccountID, d time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.restrictErr != nil {
		return r.restrictErr
	}
	r.restricts = append(r.restricts, restrictCall{group: group, account: account, duration: d})
	return nil
}

func (r *fakeRestrictor) Unrestrict(ctx context.Context, group domain.GroupID, account domain.AccountID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.unrestricts = append(r.unrestricts, restrictCall{group: group, account: account})
	return nil
}

type noopMetrics struct{}

func (noopMetrics) EventDispatched(string)    {}
func (noopMetrics) GameStarted()              {}
func (noopMetrics) GameEnded()                {}
func (noopMetrics) TriggerPulled(string)      {}
func (noopMetrics) PlayerEliminated()         {}
func (noopMetrics) ModerationAction(string)   {}
func (noopMetrics) ModerationRejected(string) {}
