package main

import (
	"fmt"
	"path/filepath"
	"time"

	"git.lost.host/meutraa/taimuragu/internal/audio"
	"git.lost.host/meutraa/taimuragu/internal/beat"
	"git.lost.host/meutraa/taimuragu/internal/config"
	"git.lost.host/meutraa/taimuragu/internal/field"
	"git.lost.host/meutraa/taimuragu/internal/game"
	"git.lost.host/meutraa/taimuragu/internal/input"
	game_log "git.lost.host/meutraa/taimuragu/internal/log"
	"git.lost.host/meutraa/taimuragu/internal/parser"
	"git.lost.host/meutraa/taimuragu/internal/render"
	"git.lost.host/meutraa/taimuragu/internal/score"
	"git.lost.host/meutraa/taimuragu/internal/session"
	"git.lost.host/meutraa/taimuragu/internal/theme"
	"github.com/eiannone/keyboard"
	"github.com/fsnotify/fsnotify"
)

const (
	seekStep   = 5 * time.Second
	volumeStep = 0.1
	lookAhead  = 5 * time.Second
	cellWidth  = 4 // columns, a cell is half as many rows
	barFrames  = 120
	onBeat     = 50 * time.Millisecond
	panelWidth = 48 // stats on the left, the grid centred in the rest
	panelRows  = 28
)

type Program struct {
	Parser   *parser.DefaultParser
	Scorer   *score.DefaultScorer
	Theme    theme.Theme
	Renderer render.Renderer
	Session  *session.Session

	cfg    *config.Config
	logger *game_log.Logger
	keymap *input.Keymap
	keys   <-chan keyboard.KeyEvent

	watcher *fsnotify.Watcher
	reload  chan struct{}

	columns, rows int
	grid          field.Grid
	sideCol       uint16
	barRow        uint16
	barCentre     int

	startAt time.Time // automatic start after the configured delay
	started bool
	best    *score.History
	final   *score.Final
	status  string
}

func (p *Program) Init(cfg *config.Config, logger *game_log.Logger, r render.Renderer, keys <-chan keyboard.KeyEvent) error {
	// Ensure our Default implementations are used as interfaces
	p.Parser = &parser.DefaultParser{}
	p.Scorer = score.NewScorer(logger)
	p.Theme = &theme.DefaultTheme{}
	p.Renderer = r
	p.cfg = cfg
	p.logger = logger
	p.keys = keys
	p.keymap = input.NewKeymap(cfg.Keys, cfg.GridSize)
	if n := p.keymap.Unbound(); n > 0 {
		logger.Warnf("%d cells have no key, use --keys to bind them", n)
	}

	if err := p.Scorer.Init(cfg.Database); nil != err {
		// playable without history
		logger.Errorf("run history disabled: %v", err)
	}

	clock := audio.NewClock(logger, audio.NewSpeakerPlayer(time.Second/30), beat.NewDetector(cfg.Threshold))
	clock.SetVolume(cfg.Volume)

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	p.Session = session.New(logger, clock, field.New(logger, cfg.GridSize, cfg.Offset), p.Scorer, p.Parser, seed, session.Events{
		OnJudgement: p.onJudgement,
		OnRunEnd:    p.onRunEnd,
	})

	if cfg.Beatmap != "" {
		if err := p.Session.LoadBeatmapFile(cfg.Beatmap); nil != err {
			return fmt.Errorf("unable to load beat map: %w", err)
		}
	}

	var result session.LoadResult
	if cfg.Song != "" {
		result = p.Session.LoadSong(cfg.Song)
	} else {
		result = p.Session.LoadMetronome(cfg.BPM)
	}
	if !result.OK {
		return result.Err
	}
	p.status = fmt.Sprintf("%s (%v)", result.Name, result.Duration.Round(time.Second))
	p.loadBest()

	if cfg.Watch && cfg.Beatmap != "" {
		if err := p.watch(cfg.Beatmap); nil != err {
			logger.Errorf("not watching %s: %v", cfg.Beatmap, err)
		}
	}

	p.startAt = time.Now().Add(cfg.Delay)
	return p.Resize()
}

func (p *Program) Deinit() {
	if p.watcher != nil {
		p.watcher.Close()
	}
	if p.Session != nil {
		p.Session.Stop()
	}
	p.Scorer.Deinit()
}

// watch reloads the beat map whenever its file is written. The directory is
// watched since editors tend to replace files rather than write them.
func (p *Program) watch(file string) error {
	watcher, err := fsnotify.NewWatcher()
	if nil != err {
		return err
	}
	file = filepath.Clean(file)
	if err := watcher.Add(filepath.Dir(file)); nil != err {
		watcher.Close()
		return err
	}
	p.watcher = watcher
	p.reload = make(chan struct{}, 1)

	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != file || event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				p.logger.Debugf("watcher event: %s on %s", event.Op, event.Name)
				select {
				case p.reload <- struct{}{}:
				default:
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				p.logger.Errorf("watcher: %v", err)
			}
		}
	}()
	return nil
}

func (p *Program) loadBest() {
	b := p.Session.Beatmap()
	if b == nil {
		return
	}
	if best, ok := score.Best(p.Scorer.Load(b)); ok {
		p.best = &best
	} else {
		p.best = nil
	}
}

func (p *Program) Resize() error {
	columns, rows, err := p.Renderer.Size()
	if nil != err {
		return err
	}
	if columns == p.columns && rows == p.rows {
		return nil
	}
	p.columns, p.rows = columns, rows
	// Grid units are columns, a row counts as two
	p.grid = field.NewGrid(p.cfg.GridSize, float64(columns-panelWidth), float64(rows*2), cellWidth, 2)
	p.grid.OffsetX += panelWidth
	p.barRow = uint16(p.grid.OffsetY/2) + uint16(p.cfg.GridSize*3) + 1
	centreX, _ := p.grid.CellToScreen(0, 0)
	last, _ := p.grid.CellToScreen(p.cfg.GridSize-1, 0)
	p.barCentre = int((centreX+last)/2) + 1
	p.sideCol = 2
	p.Renderer.Fill(1, 1, "\033[2J")
	return nil
}

func (p *Program) onJudgement(e field.Event) {
	if !e.Clicked {
		return
	}
	// Deviation bar, one column per 5ms
	col := p.barCentre + int(e.Deviation/(5*time.Millisecond))
	if col <= panelWidth || col > p.columns {
		return
	}
	p.Renderer.AddDecoration(uint16(col), p.barRow, p.Theme.RenderResult(e.Result), barFrames)
}

func (p *Program) onRunEnd(final score.Final) {
	p.final = &final
	p.started = false
	p.loadBest()
}

func (p *Program) start() {
	p.final = nil
	if err := p.Session.Start(); nil != err {
		p.status = err.Error()
		return
	}
	p.started = true
}

// Frame handles input, advances the session by one tick and draws it.
func (p *Program) Frame(frame uint64) bool {
	if frame%60 == 0 {
		if err := p.Resize(); nil != err {
			p.logger.Errorf("resize: %v", err)
		}
	}

	for _, e := range p.keymap.Drain(p.keys) {
		switch e.Action {
		case input.Quit:
			return false
		case input.Start:
			p.start()
		case input.Pause:
			p.Session.TogglePause()
		case input.SeekBack:
			p.Session.Seek(p.Session.Clock().CurrentTime() - seekStep)
		case input.SeekForward:
			p.Session.Seek(p.Session.Clock().CurrentTime() + seekStep)
		case input.VolumeUp:
			p.Session.Clock().SetVolume(p.Session.Clock().Volume() + volumeStep)
		case input.VolumeDown:
			p.Session.Clock().SetVolume(p.Session.Clock().Volume() - volumeStep)
		case input.Click:
			p.Session.Click(e.GridX, e.GridY)
		}
	}

	select {
	case <-p.reload:
		if err := p.Session.LoadBeatmapFile(p.cfg.Beatmap); nil == err {
			p.loadBest()
		}
	default:
	}

	if !p.started && p.final == nil && !p.startAt.IsZero() && time.Now().After(p.startAt) {
		p.startAt = time.Time{}
		p.start()
	}

	p.Session.Tick()
	p.Render()
	return true
}

func (p *Program) cellOrigin(x, y int) (uint16, uint16) {
	pitch := p.grid.Cell + p.grid.Padding
	col := p.grid.OffsetX + float64(x)*pitch
	row := (p.grid.OffsetY + float64(y)*pitch) / 2
	return uint16(col) + 1, uint16(row) + 1
}

func (p *Program) Render() {
	p.RenderGrid()
	p.RenderStats()
}

func (p *Program) RenderGrid() {
	size := p.cfg.GridSize
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			col, row := p.cellOrigin(x, y)
			p.Renderer.Fill(row, col, "    ")
			label := ' '
			if r, ok := p.keymap.Key(x, y); ok {
				label = r
			}
			p.Renderer.Fill(row+1, col, "  "+p.Theme.RenderCell(label)+" ")
		}
	}

	now := p.Session.Clock().CurrentTime()
	p.Session.Field().Each(func(_ field.ID, t game.Target) {
		col, row := p.cellOrigin(t.GridX, t.GridY)
		if t.Result != game.None {
			p.Renderer.Fill(row, col+1, p.Theme.RenderResult(t.Result))
			return
		}
		p.Renderer.Fill(row, col+1, p.Theme.RenderTarget(t.Shape, t.OriginalDelay, t.Progress(), t.IsReadyToClick(now)))
		p.Renderer.Fill(row+1, col, fmt.Sprintf("%4.1f", t.Remaining.Seconds()))
	})
}

func (p *Program) RenderStats() {
	stats := p.Session.Stats()
	clock := p.Session.Clock()
	f := p.Session.Field()

	state := "playing"
	switch {
	case p.Session.Paused():
		state = "paused"
	case !p.Session.Playing():
		state = "stopped"
	}

	now := clock.CurrentTime()
	beatMark := " "
	if clock.IsNearBeat(onBeat) {
		beatMark = "●"
	}
	closest := "     -"
	if b, ok := clock.ClosestBeat(now); ok {
		closest = fmt.Sprintf("%+6.2fs", (b - now).Seconds())
	}

	lines := []string{
		fmt.Sprintf("       Song:  %s", p.status),
		fmt.Sprintf("       Time:  %6.1fs / %.1fs  %s", now.Seconds(), clock.Duration().Seconds(), state),
		fmt.Sprintf("       Beat:  %s %s, %d in the next %v", beatMark, closest, len(clock.BeatsInRange(now, now+lookAhead)), lookAhead),
		fmt.Sprintf("     Volume:  %6.0f%%", clock.Volume()*100),
		"",
		fmt.Sprintf("      Score:  %6v", stats.Score),
		fmt.Sprintf("      Combo:  %6v", stats.Combo),
		fmt.Sprintf("  Max Combo:  %6v", stats.MaxCombo),
		fmt.Sprintf("   Accuracy:  %5v%%", stats.Accuracy()),
		"",
	}
	counts := map[game.Result]int{
		game.Perfect: stats.PerfectHits,
		game.Great:   stats.GreatHits,
		game.Good:    stats.GoodHits,
	}
	for _, j := range game.Judgements {
		lines = append(lines, fmt.Sprintf("%11s:  %6v", j.Name, counts[j.Result]))
	}
	lines = append(lines,
		fmt.Sprintf("       Miss:  %6v", stats.MissedHits),
		"",
		fmt.Sprintf("     Active:  %6v", f.ActiveCount()),
		fmt.Sprintf("   Upcoming:  %6v", f.Upcoming(lookAhead)),
	)
	if p.best != nil {
		lines = append(lines, fmt.Sprintf("       Best:  %6v (%v%%)", p.best.Final.Score, p.best.Final.Accuracy))
	}
	if p.final != nil {
		lines = append(lines, "",
			fmt.Sprintf("   Finished:  %v points, %v%%", p.final.Score, p.final.Accuracy),
			fmt.Sprintf("  Deviation:  mean %v, stdev %v", p.final.Mean.Round(time.Millisecond), p.final.Stdev.Round(time.Millisecond)),
			"",
			"  enter to play again, esc to quit")
	}
	for len(lines) < panelRows {
		lines = append(lines, "")
	}
	for i, line := range lines {
		p.Renderer.Fill(uint16(2+i), p.sideCol, fit(line, panelWidth-int(p.sideCol)))
	}
}

// fit pads or cuts a line to exactly width runes.
func fit(line string, width int) string {
	r := []rune(line)
	if len(r) > width {
		return string(r[:width])
	}
	return fmt.Sprintf("%-*s", width, line)
}
