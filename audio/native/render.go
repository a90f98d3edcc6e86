package native

import (
	"io"
	"math"
	"time"

	"github.com/cwbudde/wav"
	goaudio "github.com/go-audio/audio"
)

// Record advances the host clock by d and returns what the destination
// produced, with step called between blocks so callers can schedule
// triggers and fire timers at the right render time.
func (h *Host) Record(d time.Duration, step func(now time.Duration)) []float32 {
	total := int(d.Seconds() * float64(h.sampleRate))
	out := make([]float32, total)
	for off := 0; off < total; off += BlockSize {
		if step != nil {
			step(time.Duration(float64(off) / float64(h.sampleRate) * float64(time.Second)))
		}
		h.Render(out[off:min(off+BlockSize, total)])
	}
	return out
}

// WriteWAV encodes mono samples as 16-bit PCM.
func WriteWAV(w io.WriteSeeker, samples []float32, sampleRate int) error {
	enc := wav.NewEncoder(w, sampleRate, 16, 1, 1)
	buf := &goaudio.Float32Buffer{
		Format: &goaudio.Format{
			SampleRate:  sampleRate,
			NumChannels: 1,
		},
		Data:           samples,
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		enc.Close()
		return err
	}
	return enc.Close()
}

// Peak returns the largest absolute sample.
func Peak(samples []float32) float64 {
	var p float64
	for _, s := range samples {
		p = math.Max(p, math.Abs(float64(s)))
	}
	return p
}

// RMS returns the root mean square level.
func RMS(samples []float32) float64 {
	if len(samples) == 0 {
		return 0
	}
	var sum float64
	for _, s := range samples {
		v := float64(s)
		sum += v * v
	}
	return math.Sqrt(sum / float64(len(samples)))
}
