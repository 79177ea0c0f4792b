package session

import (
	"testing"
	"time"

	"github.com/malcha/dagu-client/internal/core/domain"
)

func TestLoaderVisibleUntilBothConditionsMet(t *testing.T) {
	l := NewLoader(40*time.Millisecond, nil)
	l.Begin()

	if state := l.State(); !state.Visible {
		t.Fatal("loader hidden right after Begin")
	}

	// Network settles first: the minimum display time still holds it up.
	l.SettleNetwork()
	if state := l.State(); !state.Visible {
		t.Fatal("loader hidden before the minimum display time elapsed")
	}

	waitForLoader(t, l, func(s domain.LoaderState) bool { return !s.Visible })
	state := l.State()
	if !state.NetworkSettled || !state.MinTimeElapsed {
		t.Errorf("state = %+v, want both conditions met", state)
	}
}

func TestLoaderSlowNetworkOutlastsTimer(t *testing.T) {
	l := NewLoader(10*time.Millisecond, nil)
	l.Begin()

	waitForLoader(t, l, func(s domain.LoaderState) bool { return s.MinTimeElapsed })
	if state := l.State(); !state.Visible {
		t.Fatal("loader hidden while the network is still pending")
	}

	l.SettleNetwork()
	if state := l.State(); state.Visible {
		t.Error("loader still visible after both conditions were met")
	}
}

func TestLoaderBeginSupersedesPreviousPass(t *testing.T) {
	l := NewLoader(20*time.Millisecond, nil)
	l.Begin()
	l.SettleNetwork()

	// A new pass resets everything, including a near-expiry timer.
	l.Begin()
	state := l.State()
	if !state.Visible || state.NetworkSettled || state.MinTimeElapsed {
		t.Errorf("state after second Begin = %+v, want a fresh pass", state)
	}

	l.SettleNetwork()
	waitForLoader(t, l, func(s domain.LoaderState) bool { return !s.Visible })
}

func TestLoaderZeroMinDurationNeedsOnlyNetwork(t *testing.T) {
	l := NewLoader(0, nil)
	l.Begin()
	if state := l.State(); !state.MinTimeElapsed {
		t.Fatal("zero floor should elapse immediately")
	}
	l.SettleNetwork()
	if state := l.State(); state.Visible {
		t.Error("loader visible with no floor and a settled network")
	}
}

func waitForLoader(t *testing.T, l *Loader, cond func(domain.LoaderState) bool) {
	t.Helper()
	deadline := time.After(time.Second)
	for !cond(l.State()) {
		select {
		case <-deadline:
			t.Fatalf("condition never met, state = %+v", l.State())
		default:
			time.Sleep(time.Millisecond)
		}
	}
}
