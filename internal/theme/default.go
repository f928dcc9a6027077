package theme

import (
	"fmt"
	"image/color"
	"time"

	"git.lost.host/meutraa/taimuragu/internal/game"
)

type DefaultTheme struct {
}

// RenderTarget fills the shape as the countdown runs down.
func (t *DefaultTheme) RenderTarget(shape game.Shape, delay time.Duration, progress float64, ready bool) string {
	stages := circleSyms
	if shape == game.Square {
		stages = squareSyms
	}
	c := delayColor(delay)
	if ready {
		c = readyColor
	}
	return paint(c, stages[stage(progress, len(stages))])
}

func (t *DefaultTheme) RenderResult(result game.Result) string {
	c, ok := resultColors[result]
	if !ok {
		return " "
	}
	return paint(c, resultSyms[result])
}

func (t *DefaultTheme) RenderCell(label rune) string {
	return fmt.Sprintf("\033[38;2;%v;%v;%vm%c\033[0m", cellColor.R, cellColor.G, cellColor.B, label)
}

func paint(c color.RGBA, sym string) string {
	return fmt.Sprintf("\033[1;38;2;%v;%v;%vm%v\033[0m", c.R, c.G, c.B, sym)
}

func stage(progress float64, n int) int {
	i := int(progress * float64(n))
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

var (
	circleSyms = [...]string{"◌", "○", "◎", "●"}
	squareSyms = [...]string{"⬚", "□", "▣", "■"}
	resultSyms = map[game.Result]string{
		game.Perfect: "✦",
		game.Great:   "✓",
		game.Good:    "·",
		game.Miss:    "✗",
	}

	cellColor  = color.RGBA{80, 80, 80, 255}
	readyColor = color.RGBA{255, 255, 255, 255}

	// upper bound of the delay in ms to its color
	delayColors = []struct {
		ms    int64
		color color.RGBA
	}{
		{200, color.RGBA{255, 107, 107, 255}}, // short red
		{500, color.RGBA{78, 205, 196, 255}},  // teal
		{1000, color.RGBA{69, 183, 209, 255}}, // blue
	}
	longColor = color.RGBA{150, 206, 180, 255} // green

	resultColors = map[game.Result]color.RGBA{
		game.Perfect: {78, 205, 196, 255},
		game.Great:   {102, 126, 234, 255},
		game.Good:    {150, 206, 180, 255},
		game.Miss:    {255, 107, 107, 255},
	}
)

func delayColor(d time.Duration) color.RGBA {
	for _, c := range delayColors {
		if d.Milliseconds() <= c.ms {
			return c.color
		}
	}
	return longColor
}
