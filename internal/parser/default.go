package parser

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"time"

	"git.lost.host/meutraa/taimuragu/internal/game"
)

const (
	defaultName   = "Loaded Map"
	formatVersion = "1.0"
)

type DefaultParser struct{}

// Meta is the editor export information written next to the targets. The
// game never reads it back.
type Meta struct {
	SongName     string
	SongDuration time.Duration
	CreatedAt    time.Time
}

type document struct {
	Name         string          `json:"name"`
	Targets      json.RawMessage `json:"targets"`
	SongName     string          `json:"songName,omitempty"`
	SongDuration float64         `json:"songDuration,omitempty"`
	CreatedAt    string          `json:"createdAt,omitempty"`
	Version      string          `json:"version,omitempty"`
}

type targetDocument struct {
	X     int     `json:"x"`
	Y     int     `json:"y"`
	Time  float64 `json:"time"`  // seconds
	Delay float64 `json:"delay"` // milliseconds, editors sometimes write fractions
	Type  string  `json:"type,omitempty"`
}

func seconds(s float64) time.Duration {
	return time.Duration(math.Round(s * float64(time.Second)))
}

func milliseconds(ms float64) time.Duration {
	return time.Duration(math.Round(ms * float64(time.Millisecond)))
}

func (p *DefaultParser) Parse(file string) (*game.Beatmap, error) {
	f, err := os.Open(file)
	if nil != err {
		return nil, fmt.Errorf("unable to open beatmap %s: %w", file, err)
	}
	defer f.Close()
	return p.Decode(f)
}

func (p *DefaultParser) Decode(r io.Reader) (*game.Beatmap, error) {
	var doc document
	if err := json.NewDecoder(r).Decode(&doc); nil != err {
		return nil, &InvalidBeatmapError{Reason: "malformed document", Err: err}
	}

	raw := bytes.TrimSpace(doc.Targets)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, &InvalidBeatmapError{Reason: "missing target list"}
	}
	var targets []targetDocument
	if err := json.Unmarshal(raw, &targets); nil != err {
		return nil, &InvalidBeatmapError{Reason: "target list is not an array of targets", Err: err}
	}

	name := doc.Name
	if name == "" {
		name = defaultName
	}
	beatmap := &game.Beatmap{
		Name:    name,
		Targets: make([]game.TargetSpec, 0, len(targets)),
	}
	for _, t := range targets {
		beatmap.Targets = append(beatmap.Targets, game.TargetSpec{
			GridX: t.X,
			GridY: t.Y,
			Time:  seconds(t.Time),
			Delay: milliseconds(t.Delay),
			Shape: game.ParseShape(t.Type),
		})
	}
	return beatmap, nil
}

func (p *DefaultParser) Encode(w io.Writer, beatmap *game.Beatmap, meta Meta) error {
	targets := make([]targetDocument, len(beatmap.Targets))
	for i, t := range beatmap.Targets {
		targets[i] = targetDocument{
			X:     t.GridX,
			Y:     t.GridY,
			Time:  t.Time.Seconds(),
			Delay: float64(t.Delay) / float64(time.Millisecond),
			Type:  t.Shape.String(),
		}
	}
	raw, err := json.Marshal(targets)
	if nil != err {
		return err
	}
	createdAt := meta.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	songName := meta.SongName
	if songName == "" {
		songName = "Unknown"
	}
	doc := document{
		Name:         beatmap.Name,
		Targets:      raw,
		SongName:     songName,
		SongDuration: meta.SongDuration.Seconds(),
		CreatedAt:    createdAt.UTC().Format(time.RFC3339),
		Version:      formatVersion,
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

func (p *DefaultParser) Save(file string, beatmap *game.Beatmap, meta Meta) error {
	f, err := os.Create(file)
	if nil != err {
		return fmt.Errorf("unable to create beatmap %s: %w", file, err)
	}
	if err := p.Encode(f, beatmap, meta); nil != err {
		f.Close()
		return fmt.Errorf("unable to write beatmap %s: %w", file, err)
	}
	return f.Close()
}
