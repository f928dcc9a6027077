package audio

import (
	"errors"
	"testing"
	"time"

	"git.lost.host/meutraa/taimuragu/internal/beat"
)

type fakeHandle struct {
	stopped bool
	volume  float64
}

func (h *fakeHandle) Stop() { h.stopped = true }
func (h *fakeHandle) SetVolume(v float64) { h.volume = v }

type play struct {
	from   time.Duration
	volume float64
}

type fakePlayer struct {
	plays   []play
	handles []*fakeHandle
	err     error
}

func (p *fakePlayer) Play(src *Source, from time.Duration, volume float64) (Handle, error) {
	p.plays = append(p.plays, play{from: from, volume: volume})
	if p.err != nil {
		return nil, p.err
	}
	h := &fakeHandle{volume: volume}
	p.handles = append(p.handles, h)
	return h, nil
}

type wallClock struct {
	t time.Time
}

func (w *wallClock) now() time.Time { return w.t }
func (w *wallClock) advance(d time.Duration) { w.t = w.t.Add(d) }

func newTestClock(length time.Duration) (*Clock, *fakePlayer, *wallClock) {
	player := &fakePlayer{}
	wall := &wallClock{t: time.Unix(1000, 0)}
	c := NewClock(nil, player, nil)
	c.now = wall.now
	c.Load(Silent("test", length))
	return c, player, wall
}

func TestUnloadedClockIsNoop(t *testing.T) {
	player := &fakePlayer{}
	c := NewClock(nil, player, nil)
	c.Play(0)
	c.Seek(time.Second)
	c.Pause()
	c.Tick()
	c.Stop()
	if c.Playing() || c.CurrentTime() != 0 || len(player.plays) != 0 {
		t.Fatal("unloaded clock should ignore transport calls")
	}
	if _, ok := c.ClosestBeat(0); ok {
		t.Fatal("unloaded clock has no beats")
	}
}

func TestTickPublishesElapsedTime(t *testing.T) {
	c, _, wall := newTestClock(10 * time.Second)
	var got []time.Duration
	c.OnTimeUpdate(func(t time.Duration) { got = append(got, t) })

	c.Play(2 * time.Second)
	wall.advance(16 * time.Millisecond)
	c.Tick()
	wall.advance(17 * time.Millisecond)
	c.Tick()

	expected := []time.Duration{2016 * time.Millisecond, 2033 * time.Millisecond}
	if len(got) != len(expected) || got[0] != expected[0] || got[1] != expected[1] {
		t.Fatalf("published %v, want %v", got, expected)
	}
}

func TestPlayTwiceIsNoop(t *testing.T) {
	c, player, _ := newTestClock(10 * time.Second)
	c.Play(0)
	c.Play(time.Second)
	if len(player.plays) != 1 || c.CurrentTime() != 0 {
		t.Fatalf("second play should be ignored, plays=%v", player.plays)
	}
}

func TestPauseKeepsPosition(t *testing.T) {
	c, player, wall := newTestClock(10 * time.Second)
	c.Play(0)
	wall.advance(1500 * time.Millisecond)
	c.Pause()
	if c.Playing() || c.CurrentTime() != 1500*time.Millisecond {
		t.Fatalf("paused at %v, playing=%v", c.CurrentTime(), c.Playing())
	}
	if !player.handles[0].stopped {
		t.Fatal("pause should stop the playback handle")
	}

	wall.advance(time.Hour)
	c.Tick()
	if c.CurrentTime() != 1500*time.Millisecond {
		t.Fatal("a paused clock must not advance")
	}
}

func TestStopRewinds(t *testing.T) {
	c, player, wall := newTestClock(10 * time.Second)
	c.Play(0)
	wall.advance(time.Second)
	c.Tick()
	c.Stop()
	if c.Playing() || c.CurrentTime() != 0 || !player.handles[0].stopped {
		t.Fatal("stop should halt, rewind and release the handle")
	}
}

func TestSeek(t *testing.T) {
	tests := []struct {
		name     string
		playing  bool
		to       time.Duration
		expected time.Duration
	}{
		{name: "past the end while paused", to: time.Minute, expected: 10 * time.Second},
		{name: "negative while paused", to: -time.Second, expected: 0},
		{name: "inside while playing", playing: true, to: 4 * time.Second, expected: 4 * time.Second},
		{name: "past the end while playing", playing: true, to: time.Minute, expected: 10 * time.Second},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, player, _ := newTestClock(10 * time.Second)
			if tt.playing {
				c.Play(time.Second)
			}
			c.Seek(tt.to)
			if c.CurrentTime() != tt.expected {
				t.Fatalf("position %v, want %v", c.CurrentTime(), tt.expected)
			}
			if c.Playing() != tt.playing {
				t.Fatalf("playing = %v, want %v", c.Playing(), tt.playing)
			}
			if tt.playing {
				if len(player.plays) != 2 || player.plays[1].from != tt.expected {
					t.Fatalf("expected playback restarted at %v, got %v", tt.expected, player.plays)
				}
				if !player.handles[0].stopped {
					t.Fatal("the old handle should be released")
				}
			}
		})
	}
}

func TestEndOfTrackFiresOnce(t *testing.T) {
	c, player, wall := newTestClock(time.Second)
	ended := 0
	var last time.Duration
	c.OnEnded(func() { ended++ })
	c.OnTimeUpdate(func(t time.Duration) { last = t })

	c.Play(0)
	wall.advance(900 * time.Millisecond)
	c.Tick()
	if ended != 0 {
		t.Fatal("ended too early")
	}
	wall.advance(200 * time.Millisecond)
	c.Tick()
	c.Tick()
	wall.advance(time.Second)
	c.Tick()

	if ended != 1 {
		t.Fatalf("ended fired %d times, want 1", ended)
	}
	if last != time.Second || c.Playing() {
		t.Fatalf("last published %v, playing=%v", last, c.Playing())
	}
	if !player.handles[0].stopped {
		t.Fatal("handle should be released at the end")
	}

	// a fresh play through may end again
	c.Seek(0)
	c.Play(0)
	wall.advance(2 * time.Second)
	c.Tick()
	if ended != 2 {
		t.Fatalf("ended fired %d times after replay, want 2", ended)
	}
}

func TestPauseDoesNotEnd(t *testing.T) {
	c, _, wall := newTestClock(time.Second)
	ended := false
	c.OnEnded(func() { ended = true })
	c.Play(0)
	wall.advance(100 * time.Millisecond)
	c.Pause()
	c.Stop()
	if ended {
		t.Fatal("pause and stop are not the end of the track")
	}
}

func TestSetVolumeClamps(t *testing.T) {
	c, player, _ := newTestClock(time.Second)
	c.SetVolume(4)
	if c.Volume() != 1 {
		t.Fatalf("volume %v, want 1", c.Volume())
	}
	c.Play(0)
	c.SetVolume(-1)
	if c.Volume() != 0 || player.handles[0].volume != 0 {
		t.Fatalf("volume %v, handle %v", c.Volume(), player.handles[0].volume)
	}
	if player.plays[0].volume != 1 {
		t.Fatal("playback should start at the current volume")
	}
}

func TestPlaybackFailureStillAdvances(t *testing.T) {
	c, player, wall := newTestClock(time.Second)
	player.err = errors.New("no device")
	c.Play(0)
	wall.advance(250 * time.Millisecond)
	c.Tick()
	if !c.Playing() || c.CurrentTime() != 250*time.Millisecond {
		t.Fatalf("clock should run without sound, at %v", c.CurrentTime())
	}
	c.Stop()
}

func TestMetronomeBeats(t *testing.T) {
	c := NewClock(nil, nil, nil)
	wall := &wallClock{t: time.Unix(0, 0)}
	c.now = wall.now
	c.LoadMetronome(120)
	if c.Duration() != beat.MetronomeLength || len(c.Beats()) != 360 {
		t.Fatalf("duration %v, %d beats", c.Duration(), len(c.Beats()))
	}
	c.Play(0)
	wall.advance(1010 * time.Millisecond)
	c.Tick()
	if !c.IsNearBeat(10 * time.Millisecond) {
		t.Fatal("1.01s is near the beat at 1s")
	}
	if c.IsNearBeat(5 * time.Millisecond) {
		t.Fatal("1.01s is not within 5ms of a beat")
	}
	if got := c.BeatsInRange(time.Second, 2*time.Second); len(got) != 3 {
		t.Fatalf("beats in [1s, 2s] = %v", got)
	}
}
