package audio

import (
	"time"

	"git.lost.host/meutraa/taimuragu/internal/beat"
	"git.lost.host/meutraa/taimuragu/internal/log"
)

// Clock owns the playback position of one source. Nothing advances on its
// own: the frame loop calls Tick once per frame, which pushes the current
// time to every subscriber.
type Clock struct {
	logger   *log.Logger
	player   Player
	detector *beat.Detector
	now      func() time.Time

	source *Source
	beats  beat.Beats
	volume float64
	handle Handle

	playing bool
	ended   bool
	offset  time.Duration // position when playback last started
	started time.Time     // wall clock when playback last started
	current time.Duration

	onTime  []func(time.Duration)
	onEnded []func()
}

func NewClock(logger *log.Logger, player Player, detector *beat.Detector) *Clock {
	if logger == nil {
		logger = log.Discard()
	}
	if player == nil {
		player = NopPlayer{}
	}
	if detector == nil {
		detector = beat.NewDetector(beat.DefaultThreshold)
	}
	return &Clock{
		logger:   logger,
		player:   player,
		detector: detector,
		now:      time.Now,
		volume:   0.7,
	}
}

// SetNow replaces the wall clock, for drivers that keep their own time.
func (c *Clock) SetNow(now func() time.Time) {
	c.now = now
}

// OnTimeUpdate registers fn to receive the current time on every tick while
// playing.
func (c *Clock) OnTimeUpdate(fn func(time.Duration)) {
	c.onTime = append(c.onTime, fn)
}

// OnEnded registers fn for the end of the track. It fires once per play
// through.
func (c *Clock) OnEnded(fn func()) {
	c.onEnded = append(c.onEnded, fn)
}

// Load replaces the source, stopping any playback, and analyses its beats.
func (c *Clock) Load(src *Source) {
	c.Stop()
	c.source = src
	started := time.Now()
	c.beats = c.detector.Detect(src.Samples, src.SampleRate)
	c.logger.Infof("Detected %d beats in %s (%v) in %v", len(c.beats), src.Name, src.Duration, time.Since(started))
}

// LoadMetronome replaces the source with a silent track whose beats are
// fixed at the given tempo.
func (c *Clock) LoadMetronome(bpm float64) {
	c.Stop()
	c.source = Silent("metronome", beat.MetronomeLength)
	c.beats = beat.Metronome(bpm)
	c.logger.Infof("Created metronome with %d beats at %v BPM", len(c.beats), bpm)
}

func (c *Clock) Loaded() bool {
	return c.source != nil
}

func (c *Clock) Source() *Source {
	return c.source
}

func (c *Clock) Beats() beat.Beats {
	return c.beats
}

func (c *Clock) Duration() time.Duration {
	if c.source == nil {
		return 0
	}
	return c.source.Duration
}

func (c *Clock) Playing() bool {
	return c.playing
}

func (c *Clock) CurrentTime() time.Duration {
	return c.current
}

func (c *Clock) Volume() float64 {
	return c.volume
}

func (c *Clock) clamp(t time.Duration) time.Duration {
	if t < 0 {
		return 0
	}
	if d := c.Duration(); t > d {
		return d
	}
	return t
}

// Play starts advancing from start. It does nothing without a source or
// while already playing.
func (c *Clock) Play(start time.Duration) {
	if c.source == nil {
		c.logger.Debugf("play: %v", ErrNoActiveSource)
		return
	}
	if c.playing {
		return
	}
	c.release()

	start = c.clamp(start)
	handle, err := c.player.Play(c.source, start, c.volume)
	if nil != err {
		// keep the clock running, the game is still playable without sound
		c.logger.Errorf("unable to start playback of %s: %v", c.source.Name, err)
		handle = nil
	}
	c.handle = handle
	c.playing = true
	c.ended = false
	c.offset = start
	c.current = start
	c.started = c.now()
}

func (c *Clock) elapsed() time.Duration {
	return c.clamp(c.now().Sub(c.started) + c.offset)
}

// Pause halts advancement and keeps the position.
func (c *Clock) Pause() {
	if !c.playing {
		return
	}
	c.current = c.elapsed()
	c.offset = c.current
	c.playing = false
	c.release()
}

// Stop halts advancement, rewinds to zero and drops the playback handle.
func (c *Clock) Stop() {
	c.release()
	c.playing = false
	c.current = 0
	c.offset = 0
}

// Seek clamps t to the track and moves there, keeping the play state.
func (c *Clock) Seek(t time.Duration) {
	if c.source == nil {
		c.logger.Debugf("seek: %v", ErrNoActiveSource)
		return
	}
	wasPlaying := c.playing
	c.Stop()
	t = c.clamp(t)
	c.current = t
	c.offset = t
	if wasPlaying {
		c.Play(t)
	}
}

func (c *Clock) SetVolume(v float64) {
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	c.volume = v
	if c.handle != nil {
		c.handle.SetVolume(v)
	}
}

func (c *Clock) release() {
	if c.handle != nil {
		c.handle.Stop()
		c.handle = nil
	}
}

// Tick publishes the current time. Reaching the end of the track stops the
// clock and fires the end notification.
func (c *Clock) Tick() {
	if !c.playing {
		return
	}
	c.current = c.elapsed()
	for _, fn := range c.onTime {
		fn(c.current)
	}
	if c.current < c.Duration() {
		return
	}
	c.playing = false
	c.offset = c.current
	c.release()
	if !c.ended {
		c.ended = true
		for _, fn := range c.onEnded {
			fn()
		}
	}
}

func (c *Clock) ClosestBeat(t time.Duration) (time.Duration, bool) {
	return c.beats.Closest(t)
}

func (c *Clock) BeatsInRange(start, end time.Duration) beat.Beats {
	return c.beats.InRange(start, end)
}

// IsNearBeat checks the current position against the closest beat.
func (c *Clock) IsNearBeat(tolerance time.Duration) bool {
	return c.beats.Near(c.current, tolerance)
}
