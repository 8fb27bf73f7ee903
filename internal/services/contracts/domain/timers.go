package domain

import (
	"sync"
	"time"
)

// TimerKind names one scheduled callback belonging to a contract.
type TimerKind string

const (
	// TimerReminderFive fires the five-minutes-left warning.
	TimerReminderFive TimerKind = "reminder_5m"
	// TimerReminderTwo fires the two-minutes-left warning.
	TimerReminderTwo TimerKind = "reminder_2m"
	// TimerExpiry fires the natural end of the join window.
	TimerExpiry TimerKind = "expiry"
)

type timerHandle interface {
	Stop() bool
}

// TimerEngine schedules one-shot callbacks scoped to a contract, plus
// detached callbacks owned by nobody. CancelAll stops every outstanding timer
// for one contract; a callback that already started running may still
// complete, which callers absorb by re-checking store state first.
type TimerEngine struct {
	mu       sync.Mutex
	timers   map[string]map[TimerKind]timerHandle
	detached []timerHandle
	stopped  bool

	// start is replaceable in tests so nothing sleeps for real.
	start func(delay time.Duration, fn func()) timerHandle
}

// NewTimerEngine creates a timer engine backed by runtime timers.
func NewTimerEngine() *TimerEngine {
	return &TimerEngine{
		timers: make(map[string]map[TimerKind]timerHandle),
		start: func(delay time.Duration, fn func()) timerHandle {
			return time.AfterFunc(delay, fn)
		},
	}
}

// Schedule arms one callback for the contract. The callback receives the
// contract identity rather than a captured record; it must re-check the store
// before acting because firing can race cancellation. Scheduling the same
// kind twice replaces the earlier timer.
func (e *TimerEngine) Schedule(contractID string, kind TimerKind, delay time.Duration, fn func(contractID string)) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.stopped {
		return
	}
	byKind, ok := e.timers[contractID]
	if !ok {
		byKind = make(map[TimerKind]timerHandle)
		e.timers[contractID] = byKind
	}
	if previous, ok := byKind[kind]; ok {
		previous.Stop()
	}
	byKind[kind] = e.start(delay, func() {
		e.forget(contractID, kind)
		fn(contractID)
	})
}

// ScheduleDetached arms a callback owned by no contract, used for
// fire-and-forget work like delayed announcement deletion. Detached timers
// are only stopped by Stop.
func (e *TimerEngine) ScheduleDetached(delay time.Duration, fn func()) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.stopped {
		return
	}
	e.detached = append(e.detached, e.start(delay, fn))
}

// CancelAll stops every outstanding timer for the contract. It is safe to
// call repeatedly and for unknown contracts.
func (e *TimerEngine) CancelAll(contractID string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, handle := range e.timers[contractID] {
		handle.Stop()
	}
	delete(e.timers, contractID)
}

// Stop cancels every timer, contract-owned and detached, and refuses new
// schedules. Used at shutdown.
func (e *TimerEngine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.stopped = true
	for contractID, byKind := range e.timers {
		for _, handle := range byKind {
			handle.Stop()
		}
		delete(e.timers, contractID)
	}
	for _, handle := range e.detached {
		handle.Stop()
	}
	e.detached = nil
}

func (e *TimerEngine) forget(contractID string, kind TimerKind) {
	e.mu.Lock()
	defer e.mu.Unlock()

	byKind, ok := e.timers[contractID]
	if !ok {
		return
	}
	delete(byKind, kind)
	if len(byKind) == 0 {
		delete(e.timers, contractID)
	}
}
