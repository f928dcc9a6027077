package score

import (
	"time"

	"git.lost.host/meutraa/taimuragu/internal/game"
)

type Scorer interface {
	Init(dataSource string) error
	Deinit()

	// Reset clears the run at its start
	Reset()
	// Apply consumes one judgement, in order
	Apply(result game.Result, deviation time.Duration) Stats
	Stats() Stats
	Final() Final

	// Save the final stats of a run against its beatmap
	Save(beatmap *game.Beatmap, final Final) (string, error)
	// Load previous runs of the beatmap, newest first
	Load(beatmap *game.Beatmap) []History
}

// Stats accumulate over one run.
type Stats struct {
	Score       int
	Combo       int
	MaxCombo    int
	PerfectHits int
	GreatHits   int
	GoodHits    int
	MissedHits  int
	TotalHits   int
}

// Accuracy is the rounded percentage of non-miss judgements, 100 before
// anything was judged.
func (s Stats) Accuracy() int {
	if s.TotalHits == 0 {
		return 100
	}
	hits := s.PerfectHits + s.GreatHits + s.GoodHits
	// round half up, like the score screen always has
	return (200*hits + s.TotalHits) / (2 * s.TotalHits)
}

// Final is what a finished run reports.
type Final struct {
	Stats
	Accuracy int
	Mean     time.Duration // signed mean deviation of hits
	Stdev    time.Duration
}

type History struct {
	ID       string
	Sum      string
	Final    Final
	PlayedAt time.Time
}
