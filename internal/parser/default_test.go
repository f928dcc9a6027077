package parser

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"git.lost.host/meutraa/taimuragu/internal/game"
	"git.lost.host/meutraa/taimuragu/internal/testdata"
)

func TestDecode(t *testing.T) {
	p := DefaultParser{}
	beatmap, err := p.Decode(strings.NewReader(testdata.BeatmapJSON))
	if nil != err {
		t.Fatalf("decode: %v", err)
	}
	if beatmap.Name != "Four on the floor" {
		t.Fatalf("name = %q", beatmap.Name)
	}
	if len(beatmap.Targets) != 4 {
		t.Fatalf("targets = %d, want 4", len(beatmap.Targets))
	}
	first := beatmap.Targets[0]
	if first.GridX != 1 || first.GridY != 2 || first.Time != 1500*time.Millisecond || first.Delay != 500*time.Millisecond {
		t.Fatalf("unexpected first target %+v", first)
	}
	if beatmap.Targets[1].Shape != game.Square {
		t.Fatal("second target should be a square")
	}
	// unknown and missing types both fall back to circles
	if beatmap.Targets[2].Shape != game.Circle || beatmap.Targets[3].Shape != game.Circle {
		t.Fatal("unknown types should be circles")
	}
}

func TestDecodeInvalid(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{name: "not json", doc: "this is not a beatmap"},
		{name: "missing targets", doc: `{"name": "empty"}`},
		{name: "null targets", doc: `{"name": "empty", "targets": null}`},
		{name: "targets not a list", doc: `{"name": "empty", "targets": {"x": 1}}`},
		{name: "bad target field", doc: `{"targets": [{"x": "left"}]}`},
	}
	p := DefaultParser{}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := p.Decode(strings.NewReader(tt.doc))
			var invalid *InvalidBeatmapError
			if !errors.As(err, &invalid) {
				t.Fatalf("expected InvalidBeatmapError, got %v", err)
			}
		})
	}
}

func TestDecodeDefaultsName(t *testing.T) {
	p := DefaultParser{}
	beatmap, err := p.Decode(strings.NewReader(`{"targets": []}`))
	if nil != err {
		t.Fatalf("decode: %v", err)
	}
	if beatmap.Name != defaultName || len(beatmap.Targets) != 0 {
		t.Fatalf("unexpected beatmap %+v", beatmap)
	}
}

func TestSaveThenParse(t *testing.T) {
	p := DefaultParser{}
	in := testdata.Beatmap()
	file := filepath.Join(t.TempDir(), "map.json")
	meta := Meta{SongName: "click.wav", SongDuration: 3 * time.Second}
	if err := p.Save(file, in, meta); nil != err {
		t.Fatalf("save: %v", err)
	}
	out, err := p.Parse(file)
	if nil != err {
		t.Fatalf("parse: %v", err)
	}
	if out.Sum() != in.Sum() {
		t.Fatalf("saved beatmap differs\n in: %+v\nout: %+v", in, out)
	}
}

func TestEncodeWritesEditorFields(t *testing.T) {
	var buf bytes.Buffer
	p := DefaultParser{}
	if err := p.Encode(&buf, testdata.Beatmap(), Meta{}); nil != err {
		t.Fatalf("encode: %v", err)
	}
	for _, field := range []string{`"version": "1.0"`, `"songName": "Unknown"`, `"createdAt"`} {
		if !strings.Contains(buf.String(), field) {
			t.Errorf("missing %s in %s", field, buf.String())
		}
	}
}

func TestParseMissingFile(t *testing.T) {
	p := DefaultParser{}
	if _, err := p.Parse(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Fatal("expected an error for a missing file")
	}
}
