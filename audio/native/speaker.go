package native

import (
	"encoding/binary"
	"math"
	"sync"

	"github.com/ebitengine/oto/v3"
)

// Speaker plays a Host in real time through the system audio device.
type Speaker struct {
	host   *Host
	ctx    *oto.Context
	player *oto.Player

	mu      sync.Mutex
	buf     []float32
	started bool
}

// NewSpeaker opens the audio device at the host's sample rate.
func NewSpeaker(h *Host) (*Speaker, error) {
	op := &oto.NewContextOptions{
		SampleRate:   h.SampleRate(),
		ChannelCount: 1,
		Format:       oto.FormatFloat32LE,
	}
	ctx, ready, err := oto.NewContext(op)
	if err != nil {
		return nil, err
	}
	<-ready

	s := &Speaker{host: h, ctx: ctx}
	s.player = ctx.NewPlayer(s)
	return s, nil
}

// Read implements io.Reader for oto.Player.
func (s *Speaker) Read(p []byte) (int, error) {
	n := len(p) / 4
	if cap(s.buf) < n {
		s.buf = make([]float32, n)
	}
	samples := s.buf[:n]
	s.host.Render(samples)
	for i, v := range samples {
		binary.LittleEndian.PutUint32(p[i*4:], math.Float32bits(v))
	}
	return n * 4, nil
}

// Play starts pulling audio from the host.
func (s *Speaker) Play() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		s.player.Play()
		s.started = true
	}
}

// Close stops playback and releases the player.
func (s *Speaker) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.started = false
	if s.player == nil {
		return nil
	}
	err := s.player.Close()
	s.player = nil
	return err
}
