package beat

import (
	"testing"
	"time"
)

func seconds(fs ...float64) Beats {
	b := Beats{}
	for _, f := range fs {
		b = append(b, time.Duration(f*float64(time.Second)))
	}
	return b
}

func TestClosest(t *testing.T) {
	beats := seconds(1, 2, 5)
	tests := map[time.Duration]time.Duration{
		3400 * time.Millisecond: 2 * time.Second,
		3600 * time.Millisecond: 5 * time.Second,
		0:                       time.Second,
		time.Minute:             5 * time.Second,
		2 * time.Second:         2 * time.Second,
		// exact tie between 1s and 2s goes to the earlier beat
		1500 * time.Millisecond: time.Second,
		3500 * time.Millisecond: 2 * time.Second,
	}
	for at, expected := range tests {
		got, ok := beats.Closest(at)
		if !ok || got != expected {
			t.Errorf("Closest(%v) = %v, %v, want %v", at, got, ok, expected)
		}
	}
}

func TestClosestEmpty(t *testing.T) {
	if _, ok := (Beats{}).Closest(time.Second); ok {
		t.Fatal("empty beat list has no closest beat")
	}
	if (Beats{}).Near(0, time.Hour) {
		t.Fatal("empty beat list is never near")
	}
}

func TestInRangeIsInclusive(t *testing.T) {
	beats := seconds(1, 2, 3, 4, 5)
	got := beats.InRange(2*time.Second, 4*time.Second)
	expected := seconds(2, 3, 4)
	if len(got) != len(expected) {
		t.Fatalf("InRange = %v, want %v", got, expected)
	}
	for i := range got {
		if got[i] != expected[i] {
			t.Fatalf("InRange = %v, want %v", got, expected)
		}
	}
	if len(beats.InRange(6*time.Second, 7*time.Second)) != 0 {
		t.Fatal("range past the end should be empty")
	}
}

func TestNearAndSnap(t *testing.T) {
	beats := seconds(1, 2)
	if !beats.Near(1100*time.Millisecond, 100*time.Millisecond) {
		t.Error("100ms from a beat is near with 100ms tolerance")
	}
	if beats.Near(1150*time.Millisecond, 100*time.Millisecond) {
		t.Error("150ms from a beat is not near")
	}
	if got := beats.Snap(1950*time.Millisecond, 100*time.Millisecond); got != 2*time.Second {
		t.Errorf("Snap = %v, want 2s", got)
	}
	if got := beats.Snap(1500*time.Millisecond+1, 100*time.Millisecond); got != 1500*time.Millisecond+1 {
		t.Errorf("Snap moved a time that is not near a beat: %v", got)
	}
}

func TestMetronome(t *testing.T) {
	beats := Metronome(120)
	if len(beats) != 360 {
		t.Fatalf("len = %d, want 360", len(beats))
	}
	for i := 1; i < len(beats); i++ {
		if beats[i]-beats[i-1] != 500*time.Millisecond {
			t.Fatalf("interval %v at %d, want 500ms", beats[i]-beats[i-1], i)
		}
	}
	if beats[0] != 0 || beats[len(beats)-1] != 179500*time.Millisecond {
		t.Fatalf("unexpected span %v..%v", beats[0], beats[len(beats)-1])
	}
	if len(Metronome(0)) != 0 || len(Metronome(-10)) != 0 {
		t.Fatal("non positive bpm should produce no beats")
	}
}
