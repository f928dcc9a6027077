package theme

import (
	"time"

	"git.lost.host/meutraa/taimuragu/internal/game"
)

type Theme interface {
	RenderTarget(shape game.Shape, delay time.Duration, progress float64, ready bool) string
	RenderResult(result game.Result) string
	RenderCell(label rune) string
}
