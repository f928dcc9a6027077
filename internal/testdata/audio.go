package testdata

import (
	"bytes"
	"encoding/binary"
	"math"
	"time"
)

// Clicks renders a quiet hum with a loud burst starting at every multiple of
// interval. Bursts last burst long.
func Clicks(sampleRate int, length, interval, burst time.Duration) []float64 {
	n := int(int64(length) * int64(sampleRate) / int64(time.Second))
	samples := make([]float64, n)
	period := int(int64(interval) * int64(sampleRate) / int64(time.Second))
	width := int(int64(burst) * int64(sampleRate) / int64(time.Second))
	for i := range samples {
		samples[i] = 0.01 * math.Sin(2*math.Pi*float64(i)/7)
		if period > 0 && i%period < width {
			// alternate the sign so the burst still has energy at any phase
			if i%2 == 0 {
				samples[i] = 0.9
			} else {
				samples[i] = -0.9
			}
		}
	}
	return samples
}

// WAV encodes mono samples as 16 bit PCM.
func WAV(sampleRate int, samples []float64) []byte {
	var buf bytes.Buffer
	dataSize := uint32(len(samples) * 2)
	buf.WriteString("RIFF")
	binary.Write(&buf, binary.LittleEndian, 36+dataSize)
	buf.WriteString("WAVEfmt ")
	binary.Write(&buf, binary.LittleEndian, uint32(16))
	binary.Write(&buf, binary.LittleEndian, uint16(1)) // PCM
	binary.Write(&buf, binary.LittleEndian, uint16(1)) // mono
	binary.Write(&buf, binary.LittleEndian, uint32(sampleRate))
	binary.Write(&buf, binary.LittleEndian, uint32(sampleRate*2))
	binary.Write(&buf, binary.LittleEndian, uint16(2))  // block align
	binary.Write(&buf, binary.LittleEndian, uint16(16)) // bits per sample
	buf.WriteString("data")
	binary.Write(&buf, binary.LittleEndian, dataSize)
	for _, s := range samples {
		binary.Write(&buf, binary.LittleEndian, int16(math.Round(s*math.MaxInt16)))
	}
	return buf.Bytes()
}
