package game

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/binary"
	"sort"
	"time"
)

type TargetSpec struct {
	GridX, GridY int
	Time         time.Duration // when the target appears
	Delay        time.Duration // countdown length at spawn
	Shape        Shape
}

// Due is the moment the countdown reaches zero.
func (s TargetSpec) Due() time.Duration {
	return s.Time + s.Delay
}

// Beatmap is read-only once loaded for a session.
type Beatmap struct {
	Name    string
	Targets []TargetSpec
}

// Sorted returns a copy of the targets ordered by spawn time. Targets with
// equal spawn times keep their document order.
func (b *Beatmap) Sorted() []TargetSpec {
	specs := make([]TargetSpec, len(b.Targets))
	copy(specs, b.Targets)
	sort.SliceStable(specs, func(i, j int) bool {
		return specs[i].Time < specs[j].Time
	})
	return specs
}

// Sum identifies a beatmap by content, used as the key for run history.
func (b *Beatmap) Sum() string {
	h := sha256.New()
	h.Write([]byte(b.Name))
	var buf [8]byte
	for _, t := range b.Targets {
		for _, v := range []int64{int64(t.GridX), int64(t.GridY), int64(t.Time), int64(t.Delay), int64(t.Shape)} {
			binary.LittleEndian.PutUint64(buf[:], uint64(v))
			h.Write(buf[:])
		}
	}
	return base64.StdEncoding.EncodeToString(h.Sum(nil))
}
