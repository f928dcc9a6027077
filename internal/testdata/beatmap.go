package testdata

import (
	"time"

	"git.lost.host/meutraa/taimuragu/internal/game"
)

const BeatmapJSON = `{
  "name": "Four on the floor",
  "targets": [
    {"x": 1, "y": 2, "time": 1.5, "delay": 500, "type": "circle"},
    {"x": 0, "y": 0, "time": 2.0, "delay": 250, "type": "square"},
    {"x": 5, "y": 5, "time": 2.5, "delay": 1000, "type": "hexagon"},
    {"x": 3, "y": 4, "time": 3.25, "delay": 200}
  ]
}`

func Beatmap() *game.Beatmap {
	return &game.Beatmap{
		Name: "Four on the floor",
		Targets: []game.TargetSpec{
			{GridX: 1, GridY: 2, Time: 1500 * time.Millisecond, Delay: 500 * time.Millisecond, Shape: game.Circle},
			{GridX: 0, GridY: 0, Time: 2 * time.Second, Delay: 250 * time.Millisecond, Shape: game.Square},
			{GridX: 5, GridY: 5, Time: 2500 * time.Millisecond, Delay: time.Second, Shape: game.Circle},
			{GridX: 3, GridY: 4, Time: 3250 * time.Millisecond, Delay: 200 * time.Millisecond, Shape: game.Circle},
		},
	}
}
