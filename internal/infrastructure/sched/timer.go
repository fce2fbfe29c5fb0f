package sched

import (
	"time"

	"wardenbot/internal/core/ports"
)

type timerScheduler struct{}

// NewTimerScheduler returns a Scheduler backed by the runtime timer heap.
// Scheduled callbacks run on their own goroutine and are never cancelled;
// callers are expected to verify their trigger is still relevant when it
// fires.
func NewTimerScheduler() ports.Scheduler {
	return &timerScheduler{}
}

func (s *timerScheduler) After(d time.Duration, fn func()) {
	time.AfterFunc(d, fn)
}
