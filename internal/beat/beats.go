package beat

import (
	"math"
	"sort"
	"time"
)

// MetronomeLength is the span covered by a synthetic metronome track.
const MetronomeLength = 180 * time.Second

// Beats is an ascending list of beat timestamps.
type Beats []time.Duration

// Metronome lays beats at fixed 60/bpm intervals over MetronomeLength.
func Metronome(bpm float64) Beats {
	beats := Beats{}
	if bpm <= 0 || math.IsInf(bpm, 0) || math.IsNaN(bpm) {
		return beats
	}
	interval := 60 / bpm
	limit := MetronomeLength.Seconds()
	for i := 0; ; i++ {
		t := float64(i) * interval
		if t >= limit {
			break
		}
		beats = append(beats, time.Duration(math.Round(t*float64(time.Second))))
	}
	return beats
}

func abs(x time.Duration) time.Duration {
	if x < 0 {
		return -x
	}
	return x
}

// Closest returns the beat nearest to t. On an exact tie the earlier beat
// wins.
func (b Beats) Closest(t time.Duration) (time.Duration, bool) {
	if len(b) == 0 {
		return 0, false
	}
	i := sort.Search(len(b), func(i int) bool { return b[i] >= t })
	if i == 0 {
		return b[0], true
	}
	if i == len(b) {
		return b[len(b)-1], true
	}
	before, after := b[i-1], b[i]
	if abs(t-before) <= abs(after-t) {
		return before, true
	}
	return after, true
}

// InRange keeps beats with start <= beat <= end, in order.
func (b Beats) InRange(start, end time.Duration) Beats {
	out := Beats{}
	lo := sort.Search(len(b), func(i int) bool { return b[i] >= start })
	for _, beat := range b[lo:] {
		if beat > end {
			break
		}
		out = append(out, beat)
	}
	return out
}

// Near reports whether t is within tolerance of its closest beat.
func (b Beats) Near(t, tolerance time.Duration) bool {
	closest, ok := b.Closest(t)
	return ok && abs(t-closest) <= tolerance
}

// Snap moves t onto its closest beat when one is within tolerance.
func (b Beats) Snap(t, tolerance time.Duration) time.Duration {
	closest, ok := b.Closest(t)
	if ok && abs(t-closest) <= tolerance {
		return closest
	}
	return t
}
