package game

import (
	"time"
)

// AnimationWindow is how long a judged target lingers before removal.
const AnimationWindow = 500 * time.Millisecond

type State uint8

const (
	Pending State = iota // not yet spawned
	Active               // countdown running
	Judged               // result set, animating out
	Removed
)

var stateNames = [...]string{"pending", "active", "judged", "removed"}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "unknown"
}

type Target struct {
	GridX, GridY  int
	SpawnTime     time.Duration
	OriginalDelay time.Duration
	Shape         Shape

	// This is state
	Remaining time.Duration // countdown left, never below zero
	Result    Result        // write-once
	Clicked   bool          // ClickTime is only meaningful when set
	ClickTime time.Duration
	JudgedAt  time.Duration // clock time the result was written
}

func NewTarget(spec TargetSpec) Target {
	return Target{
		GridX:         spec.GridX,
		GridY:         spec.GridY,
		SpawnTime:     spec.Time,
		OriginalDelay: spec.Delay,
		Shape:         spec.Shape,
		Remaining:     spec.Delay,
	}
}

func (t *Target) State() State {
	if t.Result != None {
		return Judged
	}
	return Active
}

// Countdown is the signed time left until zero at the given clock time.
// It goes negative once the target is overdue.
func (t *Target) Countdown(now time.Duration) time.Duration {
	return t.OriginalDelay - (now - t.SpawnTime)
}

// Advance recomputes the remaining delay for the clock time.
func (t *Target) Advance(now time.Duration) {
	r := t.Countdown(now)
	if r < 0 {
		r = 0
	}
	if r > t.OriginalDelay {
		r = t.OriginalDelay
	}
	t.Remaining = r
}

// IsReadyToClick is true while the signed countdown is within ClickWindow
// of zero, on either side.
func (t *Target) IsReadyToClick(now time.Duration) bool {
	c := t.Countdown(now)
	return c <= ClickWindow && c >= -ClickWindow
}

// Progress runs from 0 at spawn to 1 when the countdown hits zero.
func (t *Target) Progress() float64 {
	if t.OriginalDelay <= 0 {
		return 1
	}
	return 1 - float64(t.Remaining)/float64(t.OriginalDelay)
}

// Resolve writes the result once. Any later call is ignored and returns false.
func (t *Target) Resolve(r Result, at time.Duration) bool {
	if t.Result != None || r == None {
		return false
	}
	t.Result = r
	t.JudgedAt = at
	return true
}

// Expired reports whether the post judgement animation has finished.
func (t *Target) Expired(now time.Duration) bool {
	return t.Result != None && now-t.JudgedAt >= AnimationWindow
}
