package game

import (
	"time"
)

// Result is the terminal outcome of a target. The zero value means unjudged.
type Result uint8

const (
	None Result = iota
	Perfect
	Great
	Good
	Miss
)

var resultNames = [...]string{"none", "perfect", "great", "good", "miss"}

func (r Result) String() string {
	if int(r) < len(resultNames) {
		return resultNames[r]
	}
	return "unknown"
}

// Hit is true for every judgement that keeps the combo going.
func (r Result) Hit() bool {
	return r == Perfect || r == Great || r == Good
}

type Judgement struct {
	Time   time.Duration // inclusive upper bound of the absolute deviation
	Result Result
	Name   string
}

// Judgements are ordered from tightest to loosest. Anything past the last
// window is a miss, the click still consumes the target.
var Judgements = []Judgement{
	{Time: 25 * time.Millisecond, Result: Perfect, Name: "Perfect"},
	{Time: 50 * time.Millisecond, Result: Great, Name: "Great"},
	{Time: 100 * time.Millisecond, Result: Good, Name: "Good"},
}

// ClickWindow is the ±range around zero in which a target reads as ready.
const ClickWindow = 50 * time.Millisecond

// Judge maps an absolute timing deviation to a result.
func Judge(accuracy time.Duration) Result {
	if accuracy < 0 {
		accuracy = -accuracy
	}
	for _, j := range Judgements {
		if accuracy <= j.Time {
			return j.Result
		}
	}
	return Miss
}
