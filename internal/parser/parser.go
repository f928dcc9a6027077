package parser

import (
	"io"

	"git.lost.host/meutraa/taimuragu/internal/game"
)

type Parser interface {
	Parse(file string) (*game.Beatmap, error)
	Decode(r io.Reader) (*game.Beatmap, error)
	Save(file string, beatmap *game.Beatmap, meta Meta) error
}
