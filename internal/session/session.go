// Package session drives one play session. Each frame the clock publishes
// its time, the field turns it into judgements and the scorer folds those
// into the run stats, always in that order.
package session

import (
	"errors"
	"math/rand"
	"time"

	"git.lost.host/meutraa/taimuragu/internal/audio"
	"git.lost.host/meutraa/taimuragu/internal/field"
	"git.lost.host/meutraa/taimuragu/internal/game"
	"git.lost.host/meutraa/taimuragu/internal/log"
	"git.lost.host/meutraa/taimuragu/internal/parser"
	"git.lost.host/meutraa/taimuragu/internal/score"
)

var ErrNoSong = errors.New("no song loaded")

const demoName = "Auto-generated"

// Events are the outbound notifications for the presentation layer. Any of
// them may be nil.
type Events struct {
	OnTime      func(time.Duration)
	OnJudgement func(field.Event)
	OnScore     func(score.Stats)
	OnRunEnd    func(score.Final)
}

// LoadResult reports a song load. A failed load leaves the previous song in
// place.
type LoadResult struct {
	OK       bool
	Name     string
	Duration time.Duration
	Err      error
}

type Session struct {
	logger *log.Logger
	clock  *audio.Clock
	field  *field.Field
	scorer score.Scorer
	parser parser.Parser
	rng    *rand.Rand
	events Events

	beatmap *game.Beatmap
	pending *game.Beatmap // loaded mid run, applied on the next start
	playing bool
	paused  bool
}

func New(
	logger *log.Logger,
	clock *audio.Clock,
	f *field.Field,
	scorer score.Scorer,
	psr parser.Parser,
	seed int64,
	events Events,
) *Session {
	if logger == nil {
		logger = log.Discard()
	}
	s := &Session{
		logger: logger,
		clock:  clock,
		field:  f,
		scorer: scorer,
		parser: psr,
		rng:    rand.New(rand.NewSource(seed)),
		events: events,
	}
	clock.OnTimeUpdate(s.update)
	clock.OnEnded(s.end)
	return s
}

func (s *Session) Clock() *audio.Clock {
	return s.clock
}

func (s *Session) Field() *field.Field {
	return s.field
}

func (s *Session) Beatmap() *game.Beatmap {
	return s.beatmap
}

func (s *Session) Stats() score.Stats {
	return s.scorer.Stats()
}

func (s *Session) Playing() bool {
	return s.playing
}

func (s *Session) Paused() bool {
	return s.paused
}

// Tick is the single per frame entry point.
func (s *Session) Tick() {
	s.clock.Tick()
}

func (s *Session) update(now time.Duration) {
	if !s.playing || s.paused {
		return
	}
	if s.events.OnTime != nil {
		s.events.OnTime(now)
	}
	for _, e := range s.field.Tick(now) {
		stats := s.scorer.Apply(e.Result, e.Deviation)
		if s.events.OnJudgement != nil {
			s.events.OnJudgement(e)
		}
		if s.events.OnScore != nil {
			s.events.OnScore(stats)
		}
	}
}

func (s *Session) end() {
	if !s.playing {
		return
	}
	s.playing = false
	s.paused = false
	final := s.scorer.Final()
	s.logger.Infof("Game ended: score %d, max combo %d, accuracy %d%%", final.Score, final.MaxCombo, final.Accuracy)
	if s.beatmap != nil {
		if _, err := s.scorer.Save(s.beatmap, final); nil != err {
			if errors.Is(err, score.ErrNoDatabase) {
				s.logger.Debugf("not saving run: %v", err)
			} else {
				s.logger.Errorf("unable to save run: %v", err)
			}
		}
	}
	if s.events.OnRunEnd != nil {
		s.events.OnRunEnd(final)
	}
}

// LoadSong decodes a song file and analyses its beats.
func (s *Session) LoadSong(file string) LoadResult {
	src, err := audio.DecodeFile(file)
	if nil != err {
		s.logger.Errorf("Failed to load audio: %v", err)
		return LoadResult{Name: file, Err: err}
	}
	return s.LoadSource(src)
}

func (s *Session) LoadSource(src *audio.Source) LoadResult {
	s.Stop()
	s.clock.Load(src)
	s.ensureBeatmap()
	return LoadResult{OK: true, Name: src.Name, Duration: src.Duration}
}

// LoadMetronome swaps the song for a silent track at a fixed tempo.
func (s *Session) LoadMetronome(bpm float64) LoadResult {
	s.Stop()
	s.clock.LoadMetronome(bpm)
	s.ensureBeatmap()
	return LoadResult{OK: true, Name: s.clock.Source().Name, Duration: s.clock.Duration()}
}

// LoadBeatmapFile parses a beatmap file. On error the current beatmap stays.
func (s *Session) LoadBeatmapFile(file string) error {
	b, err := s.parser.Parse(file)
	if nil != err {
		s.logger.Errorf("Failed to load map %s: %v", file, err)
		return err
	}
	s.LoadBeatmap(b)
	return nil
}

// LoadBeatmap replaces the beatmap. During a run the swap waits for the
// next start.
func (s *Session) LoadBeatmap(b *game.Beatmap) {
	if s.playing {
		s.logger.Infof("Queued beat map %s for the next run", b.Name)
		s.pending = b
		return
	}
	s.pending = nil
	s.beatmap = b
	s.field.Load(b)
}

func (s *Session) ensureBeatmap() {
	if s.beatmap != nil && s.beatmap.Name != demoName {
		return
	}
	s.LoadBeatmap(s.demoPattern())
}

// demoPattern puts a target on every other beat.
func (s *Session) demoPattern() *game.Beatmap {
	beats := s.clock.Beats()
	size := s.field.GridSize()
	b := &game.Beatmap{Name: demoName}
	for i := 0; i < len(beats); i += 2 {
		shape := game.Circle
		if s.rng.Float64() > 0.5 {
			shape = game.Square
		}
		b.Targets = append(b.Targets, game.TargetSpec{
			GridX: s.rng.Intn(size),
			GridY: s.rng.Intn(size),
			Time:  beats[i],
			Delay: 200*time.Millisecond + time.Duration(s.rng.Int63n(int64(800*time.Millisecond))),
			Shape: shape,
		})
	}
	return b
}

func (s *Session) resetRun() {
	s.scorer.Reset()
	s.field.Reset()
	if s.events.OnScore != nil {
		s.events.OnScore(s.scorer.Stats())
	}
}

// Start begins a fresh run from the top of the song.
func (s *Session) Start() error {
	if !s.clock.Loaded() {
		s.logger.Errorf("start: %v", ErrNoSong)
		return ErrNoSong
	}
	s.clock.Stop()
	if s.pending != nil {
		s.beatmap, s.pending = s.pending, nil
		s.field.Load(s.beatmap)
	}
	s.resetRun()
	s.playing = true
	s.paused = false
	s.clock.Play(0)
	s.logger.Infof("Game started")
	return nil
}

// TogglePause pauses or resumes a run in progress.
func (s *Session) TogglePause() {
	if !s.playing {
		return
	}
	s.paused = !s.paused
	if s.paused {
		s.clock.Pause()
	} else {
		s.clock.Play(s.clock.CurrentTime())
	}
}

// Click forwards a cell click while a run is live.
func (s *Session) Click(x, y int) {
	if !s.playing || s.paused {
		return
	}
	s.field.Click(x, y)
}

// Seek moves the song and the field together. Stats are kept.
func (s *Session) Seek(t time.Duration) {
	s.clock.Seek(t)
	s.field.Rewind(s.clock.CurrentTime())
}

// Stop abandons the run. Its stats are reported but not saved.
func (s *Session) Stop() {
	if s.playing && s.events.OnRunEnd != nil {
		s.events.OnRunEnd(s.scorer.Final())
	}
	s.playing = false
	s.paused = false
	s.clock.Stop()
	s.resetRun()
}
