package audio

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/vorbis"
	"github.com/faiface/beep/wav"
)

var (
	ErrUnsupported    = errors.New("unsupported audio format")
	ErrNoActiveSource = errors.New("no audio source loaded")
)

// DecodeError reports audio that could not be turned into samples.
type DecodeError struct {
	Name string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("unable to decode %s: %v", e.Name, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Source is decoded audio. Its samples are never modified after loading,
// the playable buffer of an in memory source is built on first use.
type Source struct {
	Name       string
	SampleRate int
	Samples    []float64 // mono mix in [-1, 1]
	Duration   time.Duration

	buffer *beep.Buffer // nil for sources built in memory
}

func NewSource(name string, sampleRate int, samples []float64) *Source {
	s := &Source{Name: name, SampleRate: sampleRate, Samples: samples}
	if sampleRate > 0 {
		s.Duration = time.Duration(int64(len(samples)) * int64(time.Second) / int64(sampleRate))
	}
	return s
}

// Silent is a source with a length but nothing to play, used by the
// metronome.
func Silent(name string, length time.Duration) *Source {
	return &Source{Name: name, Duration: length}
}

func DecodeFile(file string) (*Source, error) {
	f, err := os.Open(file)
	if nil != err {
		return nil, &DecodeError{Name: file, Err: err}
	}
	return Decode(filepath.Base(file), f)
}

// Decode picks a codec by the extension of name and reads the whole stream.
// rc is closed in every case.
func Decode(name string, rc io.ReadCloser) (*Source, error) {
	var streamer beep.StreamSeekCloser
	var format beep.Format
	var err error
	switch strings.ToLower(filepath.Ext(name)) {
	case ".mp3":
		streamer, format, err = mp3.Decode(rc)
	case ".ogg":
		streamer, format, err = vorbis.Decode(rc)
	case ".wav":
		streamer, format, err = wav.Decode(rc)
	default:
		rc.Close()
		return nil, &DecodeError{Name: name, Err: ErrUnsupported}
	}
	if nil != err {
		rc.Close()
		return nil, &DecodeError{Name: name, Err: err}
	}
	defer streamer.Close()

	buffer := beep.NewBuffer(format)
	buffer.Append(streamer)
	if err := streamer.Err(); nil != err {
		return nil, &DecodeError{Name: name, Err: err}
	}

	samples := make([]float64, 0, buffer.Len())
	s := buffer.Streamer(0, buffer.Len())
	chunk := make([][2]float64, 4096)
	for {
		n, ok := s.Stream(chunk)
		for _, frame := range chunk[:n] {
			samples = append(samples, (frame[0]+frame[1])/2)
		}
		if !ok {
			break
		}
	}

	return &Source{
		Name:       name,
		SampleRate: int(format.SampleRate),
		Samples:    samples,
		Duration:   format.SampleRate.D(buffer.Len()),
		buffer:     buffer,
	}, nil
}

// Buffer returns the playable form of the source, building one from the mono
// samples when the source was not decoded. Silent sources have none.
func (s *Source) Buffer() *beep.Buffer {
	if s.buffer != nil || len(s.Samples) == 0 || s.SampleRate <= 0 {
		return s.buffer
	}
	buffer := beep.NewBuffer(beep.Format{
		SampleRate:  beep.SampleRate(s.SampleRate),
		NumChannels: 1,
		Precision:   2,
	})
	pos := 0
	buffer.Append(beep.StreamerFunc(func(out [][2]float64) (int, bool) {
		if pos >= len(s.Samples) {
			return 0, false
		}
		n := copy2(out, s.Samples[pos:])
		pos += n
		return n, true
	}))
	s.buffer = buffer
	return buffer
}

func copy2(out [][2]float64, mono []float64) int {
	n := len(out)
	if len(mono) < n {
		n = len(mono)
	}
	for i := 0; i < n; i++ {
		out[i][0] = mono[i]
		out[i][1] = mono[i]
	}
	return n
}
