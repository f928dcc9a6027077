package beat

import (
	"math/rand"
	"testing"
	"time"

	"git.lost.host/meutraa/taimuragu/internal/testdata"
)

const rate = 8000

func TestDetectFindsBursts(t *testing.T) {
	interval := 500 * time.Millisecond
	samples := testdata.Clicks(rate, 6*time.Second, interval, 50*time.Millisecond)
	beats := NewDetector(0).Detect(samples, rate)

	// the first second is history only, after that every burst is a beat
	if len(beats) < 8 {
		t.Fatalf("found %d beats, want at least 8: %v", len(beats), beats)
	}
	for _, b := range beats {
		// windows start up to one window before the burst they contain
		offset := (b + DefaultWindow) % interval
		if offset > DefaultWindow {
			t.Errorf("beat %v is not near a burst", b)
		}
	}
}

func TestDetectMinimumSpacing(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	samples := make([]float64, rate*10)
	for i := range samples {
		samples[i] = (r.Float64()*2 - 1) * r.Float64()
		if r.Intn(50) == 0 {
			samples[i] = 1
		}
	}
	beats := NewDetector(1.01).Detect(samples, rate)
	for i := 1; i < len(beats); i++ {
		if beats[i]-beats[i-1] <= DefaultMinSpacing {
			t.Fatalf("beats %v and %v are too close", beats[i-1], beats[i])
		}
	}
}

func TestDetectShortInput(t *testing.T) {
	d := NewDetector(DefaultThreshold)
	if beats := d.Detect(make([]float64, rate/2), rate); len(beats) != 0 {
		t.Fatalf("half a second cannot fill the history, got %v", beats)
	}
	if beats := d.Detect(nil, 0); len(beats) != 0 {
		t.Fatalf("zero sample rate should produce nothing, got %v", beats)
	}
}

func TestDetectSilence(t *testing.T) {
	if beats := NewDetector(0).Detect(make([]float64, rate*3), rate); len(beats) != 0 {
		t.Fatalf("silence has no beats, got %v", beats)
	}
}

var result Beats

func BenchmarkDetect(b *testing.B) {
	samples := testdata.Clicks(44100, 30*time.Second, 500*time.Millisecond, 50*time.Millisecond)
	d := NewDetector(DefaultThreshold)
	b.ResetTimer()
	for n := 0; n < b.N; n++ {
		result = d.Detect(samples, 44100)
	}
}
