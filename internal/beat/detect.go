// Package beat finds rhythmic onsets in decoded audio and answers queries
// against the resulting beat list.
package beat

import (
	"time"
)

const (
	DefaultThreshold  = 1.3
	DefaultWindow     = 100 * time.Millisecond
	DefaultHistory    = 43 // ~1 second of windows at a quarter window hop
	DefaultMinSpacing = 100 * time.Millisecond
)

// Detector is an energy based onset detector. It is a one shot batch pass
// over the whole track, run once after decoding.
type Detector struct {
	Threshold  float64       // energy multiple over the trailing average
	Window     time.Duration // analysis window, hop is a quarter of it
	History    int           // windows averaged for the baseline
	MinSpacing time.Duration // accepted beats are strictly further apart
}

func NewDetector(threshold float64) *Detector {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Detector{
		Threshold:  threshold,
		Window:     DefaultWindow,
		History:    DefaultHistory,
		MinSpacing: DefaultMinSpacing,
	}
}

type window struct {
	time   time.Duration
	energy float64
}

// energies returns the mean squared energy of each overlapping window.
func (d *Detector) energies(samples []float64, sampleRate int) []window {
	size := int(int64(sampleRate) * int64(d.Window) / int64(time.Second))
	if size < 1 {
		return nil
	}
	hop := size / 4
	if hop < 1 {
		hop = 1
	}

	// prefix sums of squares, so each window costs two lookups
	prefix := make([]float64, len(samples)+1)
	for i, s := range samples {
		prefix[i+1] = prefix[i] + s*s
	}

	windows := make([]window, 0, len(samples)/hop+1)
	for i := 0; i < len(samples)-size; i += hop {
		windows = append(windows, window{
			time:   time.Duration(int64(i) * int64(time.Second) / int64(sampleRate)),
			energy: (prefix[i+size] - prefix[i]) / float64(size),
		})
	}
	return windows
}

// Detect returns beat times in ascending order, no two within MinSpacing.
func (d *Detector) Detect(samples []float64, sampleRate int) Beats {
	beats := Beats{}
	if sampleRate <= 0 || d.History <= 0 {
		return beats
	}
	windows := d.energies(samples, sampleRate)
	if len(windows) <= d.History {
		return beats
	}

	sum := 0.0
	for _, w := range windows[:d.History] {
		sum += w.energy
	}
	for i := d.History; i < len(windows); i++ {
		avg := sum / float64(d.History)
		current := windows[i]
		if current.energy > d.Threshold*avg {
			if len(beats) == 0 || current.time-beats[len(beats)-1] > d.MinSpacing {
				beats = append(beats, current.time)
			}
		}
		sum += current.energy - windows[i-d.History].energy
	}
	return beats
}
