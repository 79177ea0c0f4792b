package session

import (
	"sync"
	"time"

	"github.com/malcha/dagu-client/internal/core/domain"
)

// Loader tracks the visible-loading state for one submission at a time.
// The indicator stays up until BOTH the network has settled and the
// minimum display time has elapsed, so a cache-hot answer still shows a
// full loading pass instead of a flicker.
type Loader struct {
	mu          sync.Mutex
	minDuration time.Duration
	state       domain.LoaderState
	timer       *time.Timer

	// gen invalidates the timer of a superseded submission.
	gen uint64

	onChange func(domain.LoaderState)
}

// NewLoader creates a loader. onChange, when non-nil, fires on every
// state transition. A non-positive minDuration disables the floor.
func NewLoader(minDuration time.Duration, onChange func(domain.LoaderState)) *Loader {
	return &Loader{
		minDuration: minDuration,
		onChange:    onChange,
	}
}

// Begin starts a fresh loading pass, superseding any previous one.
func (l *Loader) Begin() {
	l.mu.Lock()
	l.gen++
	gen := l.gen
	if l.timer != nil {
		l.timer.Stop()
		l.timer = nil
	}
	l.state = domain.LoaderState{
		Visible:        true,
		NetworkSettled: false,
		MinTimeElapsed: l.minDuration <= 0,
	}
	if l.minDuration > 0 {
		l.timer = time.AfterFunc(l.minDuration, func() {
			l.elapse(gen)
		})
	}
	notify := l.notifyLocked()
	l.mu.Unlock()
	notify()
}

func (l *Loader) elapse(gen uint64) {
	l.mu.Lock()
	if gen != l.gen {
		l.mu.Unlock()
		return
	}
	l.state.MinTimeElapsed = true
	l.recomputeLocked()
	notify := l.notifyLocked()
	l.mu.Unlock()
	notify()
}

// SettleNetwork records that the submission's request has finished,
// successfully or not.
func (l *Loader) SettleNetwork() {
	l.mu.Lock()
	if l.state.NetworkSettled {
		l.mu.Unlock()
		return
	}
	l.state.NetworkSettled = true
	l.recomputeLocked()
	notify := l.notifyLocked()
	l.mu.Unlock()
	notify()
}

func (l *Loader) recomputeLocked() {
	l.state.Visible = !(l.state.NetworkSettled && l.state.MinTimeElapsed)
}

func (l *Loader) notifyLocked() func() {
	if l.onChange == nil {
		return func() {}
	}
	fn := l.onChange
	state := l.state
	return func() { fn(state) }
}

// State returns the current loader state.
func (l *Loader) State() domain.LoaderState {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// Close stops the pending minimum-duration timer, if any.
func (l *Loader) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.gen++
	if l.timer != nil {
		l.timer.Stop()
		l.timer = nil
	}
}
