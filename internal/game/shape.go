package game

import "strings"

type Shape uint8

const (
	Circle Shape = iota
	Square
)

var ShapeMap = map[string]Shape{
	"circle": Circle,
	"square": Square,
}

func (s Shape) String() string {
	if s == Square {
		return "square"
	}
	return "circle"
}

// ParseShape never fails, unknown or empty names are circles.
func ParseShape(name string) Shape {
	if s, ok := ShapeMap[strings.ToLower(strings.TrimSpace(name))]; ok {
		return s
	}
	return Circle
}
