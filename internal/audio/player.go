package audio

import (
	"math"
	"sync"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/effects"
	"github.com/faiface/beep/speaker"
)

// Player starts playback of a source and hands back the only way to stop it.
type Player interface {
	Play(src *Source, from time.Duration, volume float64) (Handle, error)
}

type Handle interface {
	Stop()
	SetVolume(volume float64)
}

// NopPlayer plays nothing. The clock still advances on wall time.
type NopPlayer struct{}

func (NopPlayer) Play(*Source, time.Duration, float64) (Handle, error) {
	return nopHandle{}, nil
}

type nopHandle struct{}

func (nopHandle) Stop() {}
func (nopHandle) SetVolume(float64) {}

// SpeakerPlayer plays through the system speaker. The speaker is
// reinitialised whenever the sample rate changes.
type SpeakerPlayer struct {
	mu         sync.Mutex
	rate       beep.SampleRate
	bufferSize time.Duration
}

func NewSpeakerPlayer(bufferSize time.Duration) *SpeakerPlayer {
	if bufferSize <= 0 {
		bufferSize = time.Second / 60
	}
	return &SpeakerPlayer{bufferSize: bufferSize}
}

func (p *SpeakerPlayer) Play(src *Source, from time.Duration, volume float64) (Handle, error) {
	buffer := src.Buffer()
	if buffer == nil {
		return nopHandle{}, nil
	}
	format := buffer.Format()

	p.mu.Lock()
	if p.rate != format.SampleRate {
		if err := speaker.Init(format.SampleRate, format.SampleRate.N(p.bufferSize)); nil != err {
			p.mu.Unlock()
			return nil, err
		}
		p.rate = format.SampleRate
	}
	p.mu.Unlock()

	start := format.SampleRate.N(from)
	if start > buffer.Len() {
		start = buffer.Len()
	}
	if start < 0 {
		start = 0
	}
	h := &speakerHandle{
		volume: &effects.Volume{Streamer: buffer.Streamer(start, buffer.Len()), Base: 2},
	}
	h.ctrl = &beep.Ctrl{Streamer: h.volume}
	setGain(h.volume, volume)
	speaker.Play(h.ctrl)
	return h, nil
}

type speakerHandle struct {
	ctrl   *beep.Ctrl
	volume *effects.Volume
}

func (h *speakerHandle) Stop() {
	speaker.Lock()
	h.ctrl.Streamer = nil
	speaker.Unlock()
}

func (h *speakerHandle) SetVolume(volume float64) {
	speaker.Lock()
	setGain(h.volume, volume)
	speaker.Unlock()
}

// setGain maps a linear 0..1 volume onto the base 2 exponent beep uses.
func setGain(v *effects.Volume, volume float64) {
	if volume <= 0 {
		v.Silent = true
		return
	}
	v.Silent = false
	v.Volume = math.Log2(volume)
}
