package score

import (
	"database/sql"
	"errors"
	"fmt"
	"math"
	"time"

	"git.lost.host/meutraa/taimuragu/internal/game"
	"git.lost.host/meutraa/taimuragu/internal/log"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

var ErrNoDatabase = errors.New("score database not initialised")

type DefaultScorer struct {
	logger *log.Logger
	db     *sql.DB
	stats  Stats

	// running deviation statistics over hits
	hits int
	mean float64
	m2   float64
	now  func() time.Time
}

func NewScorer(logger *log.Logger) *DefaultScorer {
	if logger == nil {
		logger = log.Discard()
	}
	return &DefaultScorer{logger: logger, now: time.Now}
}

const initStatement = `
	create table if not exists runs
	  (
		  id text not null primary key,
		  sum text not null,
		  score integer,
		  max_combo integer,
		  accuracy integer,
		  perfect integer,
		  great integer,
		  good integer,
		  missed integer,
		  total integer,
		  mean_ns integer,
		  stdev_ns integer,
		  played_at datetime
	  );
	create index if not exists runs_sum on runs(sum);
	`

func (s *DefaultScorer) Init(dataSource string) error {
	db, err := sql.Open("sqlite3", dataSource)
	if nil != err {
		return fmt.Errorf("unable to open score database: %w", err)
	}
	// a memory database only lives as long as its one connection
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(initStatement); nil != err {
		db.Close()
		return fmt.Errorf("unable to create score tables: %w", err)
	}
	s.db = db
	return nil
}

func (s *DefaultScorer) Deinit() {
	if nil != s.db {
		s.db.Close()
		s.db = nil
	}
}

func (s *DefaultScorer) Reset() {
	s.stats = Stats{}
	s.hits = 0
	s.mean = 0
	s.m2 = 0
}

func (s *DefaultScorer) Apply(result game.Result, deviation time.Duration) Stats {
	switch result {
	case game.Perfect:
		s.stats.Score += 100
		s.stats.Combo++
		s.stats.PerfectHits++
	case game.Great:
		s.stats.Score += 75
		s.stats.Combo++
		s.stats.GreatHits++
	case game.Good:
		s.stats.Score += 50
		s.stats.Combo++
		s.stats.GoodHits++
	case game.Miss:
		s.stats.Score -= 10
		if s.stats.Score < 0 {
			s.stats.Score = 0
		}
		s.stats.Combo = 0
		s.stats.MissedHits++
	default:
		return s.stats
	}
	s.stats.TotalHits++
	if s.stats.Combo > s.stats.MaxCombo {
		s.stats.MaxCombo = s.stats.Combo
	}

	if result.Hit() {
		s.hits++
		d := float64(deviation)
		delta := d - s.mean
		s.mean += delta / float64(s.hits)
		s.m2 += delta * (d - s.mean)
	}
	return s.stats
}

func (s *DefaultScorer) Stats() Stats {
	return s.stats
}

func (s *DefaultScorer) Final() Final {
	f := Final{Stats: s.stats, Accuracy: s.stats.Accuracy()}
	if s.hits > 0 {
		f.Mean = time.Duration(math.Round(s.mean))
	}
	if s.hits > 1 {
		f.Stdev = time.Duration(math.Round(math.Sqrt(s.m2 / float64(s.hits-1))))
	}
	return f
}

func (s *DefaultScorer) Save(beatmap *game.Beatmap, f Final) (string, error) {
	if nil == s.db {
		return "", ErrNoDatabase
	}
	id := uuid.NewString()
	_, err := s.db.Exec(
		`insert into runs(id, sum, score, max_combo, accuracy, perfect, great, good, missed, total, mean_ns, stdev_ns, played_at)
		values(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, beatmap.Sum(), f.Score, f.MaxCombo, f.Accuracy, f.PerfectHits, f.GreatHits, f.GoodHits,
		f.MissedHits, f.TotalHits, int64(f.Mean), int64(f.Stdev), s.now().UTC(),
	)
	if nil != err {
		return "", fmt.Errorf("unable to save run for %s: %w", beatmap.Name, err)
	}
	s.logger.Infof("Saved run %s for %s: %d points", id, beatmap.Name, f.Score)
	return id, nil
}

func (s *DefaultScorer) Load(beatmap *game.Beatmap) []History {
	histories := []History{}
	if nil == s.db {
		return histories
	}
	rows, err := s.db.Query(
		`select id, sum, score, max_combo, accuracy, perfect, great, good, missed, total, mean_ns, stdev_ns, played_at
		from runs where sum = ? order by played_at desc`, beatmap.Sum())
	if nil != err {
		s.logger.Errorf("unable to load runs for %s: %v", beatmap.Name, err)
		return histories
	}
	defer rows.Close()
	for rows.Next() {
		var h History
		var mean, stdev int64
		if err := rows.Scan(
			&h.ID, &h.Sum, &h.Final.Score, &h.Final.MaxCombo, &h.Final.Accuracy,
			&h.Final.PerfectHits, &h.Final.GreatHits, &h.Final.GoodHits, &h.Final.MissedHits,
			&h.Final.TotalHits, &mean, &stdev, &h.PlayedAt,
		); nil != err {
			s.logger.Errorf("unable to read a run of %s: %v", beatmap.Name, err)
			continue
		}
		h.Final.Mean = time.Duration(mean)
		h.Final.Stdev = time.Duration(stdev)
		histories = append(histories, h)
	}
	if err := rows.Err(); nil != err {
		s.logger.Errorf("unable to iterate runs of %s: %v", beatmap.Name, err)
	}
	return histories
}

// Best returns the highest scoring previous run.
func Best(histories []History) (History, bool) {
	if len(histories) == 0 {
		return History{}, false
	}
	best := histories[0]
	for _, h := range histories[1:] {
		if h.Final.Score > best.Final.Score {
			best = h
		}
	}
	return best, true
}
