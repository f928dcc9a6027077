// Package field runs the target lifecycle: spawning from a beatmap, the
// countdown, automatic misses, click judgement and removal.
//
// Everything happens inside Tick, in a fixed order:
//
//  1. spawn targets whose time has come
//  2. advance every countdown
//  3. auto-miss targets that reached zero, unless a queued click addresses
//     their cell in this tick
//  4. judge the queued clicks
//  5. remove targets whose judgement animation has finished
//
// A click that arrives in the same tick a target would be auto-missed wins.
package field

import (
	"time"

	"git.lost.host/meutraa/taimuragu/internal/game"
	"git.lost.host/meutraa/taimuragu/internal/log"
)

// ID addresses a live target. The generation makes handles to removed
// targets go stale instead of pointing at whatever reused the slot.
type ID struct {
	Index int
	Gen   uint32
}

// Event is one judgement, emitted exactly once per target.
type Event struct {
	ID           ID
	GridX, GridY int
	Result       game.Result
	Clicked      bool          // false for automatic misses
	Deviation    time.Duration // signed, negative is early
	At           time.Duration
}

type Click struct {
	GridX, GridY int
}

type slot struct {
	target game.Target
	gen    uint32
	live   bool
}

type Field struct {
	logger *log.Logger
	size   int
	offset time.Duration // input latency, subtracted from click times

	specs []game.TargetSpec
	next  int // first entry not yet spawned

	slots  []slot
	free   []int
	clicks []Click
	now    time.Duration
}

func New(logger *log.Logger, gridSize int, offset time.Duration) *Field {
	if logger == nil {
		logger = log.Discard()
	}
	return &Field{logger: logger, size: gridSize, offset: offset}
}

func (f *Field) GridSize() int {
	return f.size
}

func (f *Field) inGrid(x, y int) bool {
	return x >= 0 && x < f.size && y >= 0 && y < f.size
}

// Load replaces the beatmap and resets all state. Specs that cannot be
// played are dropped with a warning. It returns how many were kept.
func (f *Field) Load(b *game.Beatmap) int {
	f.specs = f.specs[:0]
	for i, spec := range b.Sorted() {
		if !f.inGrid(spec.GridX, spec.GridY) {
			f.logger.Warnf("dropping target %d of %s: cell (%d, %d) is outside the %dx%d grid", i, b.Name, spec.GridX, spec.GridY, f.size, f.size)
			continue
		}
		if spec.Delay < 0 {
			f.logger.Warnf("dropping target %d of %s: negative delay %v", i, b.Name, spec.Delay)
			continue
		}
		f.specs = append(f.specs, spec)
	}
	f.Reset()
	f.logger.Infof("Loaded beat map %s with %d targets", b.Name, len(f.specs))
	return len(f.specs)
}

// Reset removes every target immediately and rewinds to the first spec.
func (f *Field) Reset() {
	f.Rewind(0)
}

// Rewind removes every target and continues spawning from the first entry
// at or after t.
func (f *Field) Rewind(t time.Duration) {
	for i := range f.slots {
		if f.slots[i].live {
			f.remove(i)
		}
	}
	f.clicks = nil
	f.now = t
	f.next = 0
	for f.next < len(f.specs) && f.specs[f.next].Time < t {
		f.next++
	}
}

// Click queues a click for the next tick. Clicks off the grid are ignored.
func (f *Field) Click(x, y int) {
	if !f.inGrid(x, y) {
		return
	}
	f.clicks = append(f.clicks, Click{GridX: x, GridY: y})
}

// ClickAt queues a click at a screen position.
func (f *Field) ClickAt(g Grid, sx, sy float64) {
	if x, y, ok := g.ScreenToCell(sx, sy); ok {
		f.Click(x, y)
	}
}

func (f *Field) alloc(t game.Target) ID {
	var i int
	if n := len(f.free); n > 0 {
		i = f.free[n-1]
		f.free = f.free[:n-1]
	} else {
		f.slots = append(f.slots, slot{})
		i = len(f.slots) - 1
	}
	s := &f.slots[i]
	s.target = t
	s.live = true
	return ID{Index: i, Gen: s.gen}
}

func (f *Field) remove(i int) {
	s := &f.slots[i]
	s.live = false
	s.gen++
	s.target = game.Target{}
	f.free = append(f.free, i)
}

// guard isolates a fault in one target's step. The target is dropped and
// the tick carries on.
func (f *Field) guard(i int, step string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			f.logger.Errorf("dropping target %d after a fault while %s: %v", i, step, r)
			if f.slots[i].live {
				f.remove(i)
			}
		}
	}()
	fn()
}

func (f *Field) id(i int) ID {
	return ID{Index: i, Gen: f.slots[i].gen}
}

func (f *Field) event(i int, clicked bool, deviation time.Duration) Event {
	t := &f.slots[i].target
	return Event{
		ID:        f.id(i),
		GridX:     t.GridX,
		GridY:     t.GridY,
		Result:    t.Result,
		Clicked:   clicked,
		Deviation: deviation,
		At:        t.JudgedAt,
	}
}

// Tick advances every target to now and returns the judgements made.
func (f *Field) Tick(now time.Duration) []Event {
	f.now = now
	clicks := f.clicks
	f.clicks = nil
	events := []Event{}

	// spawn
	for f.next < len(f.specs) && f.specs[f.next].Time <= now {
		id := f.alloc(game.NewTarget(f.specs[f.next]))
		f.logger.Debugf("spawned target %v at (%d, %d) for %v", id, f.specs[f.next].GridX, f.specs[f.next].GridY, now)
		f.next++
	}

	// countdowns
	for i := range f.slots {
		if !f.slots[i].live || f.slots[i].target.Result != game.None {
			continue
		}
		f.guard(i, "counting down", func() {
			f.slots[i].target.Advance(now)
		})
	}

	// automatic misses on the latency shifted clock, skipping cells a click
	// is about to resolve
	at := now - f.offset
	pending := make(map[[2]int]bool, len(clicks))
	for _, c := range clicks {
		pending[[2]int{c.GridX, c.GridY}] = true
	}
	for i := range f.slots {
		s := &f.slots[i]
		if !s.live || s.target.Result != game.None || s.target.Countdown(at) > 0 {
			continue
		}
		if pending[[2]int{s.target.GridX, s.target.GridY}] {
			continue
		}
		f.guard(i, "auto missing", func() {
			if s.target.Resolve(game.Miss, now) {
				events = append(events, f.event(i, false, -s.target.Countdown(at)))
			}
		})
	}

	// clicks
	for _, c := range clicks {
		i, ok := f.findActive(c.GridX, c.GridY)
		if !ok {
			continue
		}
		f.guard(i, "judging a click", func() {
			t := &f.slots[i].target
			deviation := -t.Countdown(at)
			if t.Resolve(game.Judge(deviation), now) {
				t.Clicked = true
				t.ClickTime = at
				events = append(events, f.event(i, true, deviation))
			}
		})
	}

	// removal
	for i := range f.slots {
		if f.slots[i].live && f.slots[i].target.Expired(now) {
			f.remove(i)
		}
	}
	return events
}

// findActive picks the unjudged target at a cell that is due soonest.
func (f *Field) findActive(x, y int) (int, bool) {
	best := -1
	for i := range f.slots {
		s := &f.slots[i]
		if !s.live || s.target.Result != game.None || s.target.GridX != x || s.target.GridY != y {
			continue
		}
		if best < 0 || s.target.SpawnTime+s.target.OriginalDelay < f.slots[best].target.SpawnTime+f.slots[best].target.OriginalDelay {
			best = i
		}
	}
	return best, best >= 0
}

// Target returns a copy of a live target. Stale IDs report false.
func (f *Field) Target(id ID) (game.Target, bool) {
	if id.Index < 0 || id.Index >= len(f.slots) {
		return game.Target{}, false
	}
	s := f.slots[id.Index]
	if !s.live || s.gen != id.Gen {
		return game.Target{}, false
	}
	return s.target, true
}

// State reports Removed for stale IDs.
func (f *Field) State(id ID) game.State {
	t, ok := f.Target(id)
	if !ok {
		return game.Removed
	}
	return t.State()
}

// Each visits live targets in slot order.
func (f *Field) Each(fn func(ID, game.Target)) {
	for i := range f.slots {
		if f.slots[i].live {
			fn(f.id(i), f.slots[i].target)
		}
	}
}

// ActiveCount counts targets still waiting for a judgement.
func (f *Field) ActiveCount() int {
	n := 0
	for i := range f.slots {
		if f.slots[i].live && f.slots[i].target.Result == game.None {
			n++
		}
	}
	return n
}

// Upcoming counts entries that spawn within lookAhead of the last tick.
func (f *Field) Upcoming(lookAhead time.Duration) int {
	n := 0
	for _, spec := range f.specs[f.next:] {
		if spec.Time > f.now+lookAhead {
			break
		}
		n++
	}
	return n
}

// Done is true once every entry has spawned and been removed.
func (f *Field) Done() bool {
	if f.next < len(f.specs) {
		return false
	}
	for i := range f.slots {
		if f.slots[i].live {
			return false
		}
	}
	return true
}
