// Package native implements audio.Host in pure Go. Nodes form a pull
// graph rendered block by block, either in real time through a Speaker
// or offline into a WAV file.
package native

import (
	"context"
	"log/slog"
	"sync"

	"github.com/simukka/drumpal/audio"
	"github.com/simukka/drumpal/common"
)

// Defaults for a new Host.
const (
	DefaultSampleRate = 44100
	BlockSize         = 256
)

// Host renders the audio graph in Go.
type Host struct {
	sampleRate int
	log        *slog.Logger

	mu      sync.Mutex
	bpm     float64
	frame   int64 // samples rendered so far
	block   int64
	state   audio.ContextState
	dest    *node
	seed    uint32
	streams int
	live    int
}

// Option configures a Host.
type Option func(*Host)

// WithSampleRate sets the render rate in Hz.
func WithSampleRate(sr int) Option {
	return func(h *Host) { h.sampleRate = sr }
}

// WithBPM sets the tempo used to resolve notation.
func WithBPM(bpm float64) Option {
	return func(h *Host) { h.bpm = bpm }
}

// WithSeed seeds the noise generators so renders are reproducible.
func WithSeed(seed uint32) Option {
	return func(h *Host) { h.seed = seed }
}

// WithLogger sets the logger.
func WithLogger(log *slog.Logger) Option {
	return func(h *Host) { h.log = log }
}

// New creates a suspended host.
func New(opts ...Option) *Host {
	h := &Host{
		sampleRate: DefaultSampleRate,
		log:        slog.Default(),
		bpm:        audio.DefaultConfig().BPM,
		state:      audio.StateSuspended,
		seed:       1,
	}
	for _, opt := range opts {
		opt(h)
	}
	h.dest = &node{host: h, label: "Destination", block: -1}
	return h
}

// stream hands each noisy node its own generator. Callers hold h.mu.
func (h *Host) stream() *common.SeededRNG {
	h.streams++
	return common.NewSeededRNG(common.Derive(h.seed, h.streams))
}

// SampleRate returns the render rate in Hz.
func (h *Host) SampleRate() int { return h.sampleRate }

func (h *Host) NewInstrument(kind audio.InstrumentKind, opts audio.Options) (audio.Instrument, error) {
	if !kind.Known() {
		return nil, audio.NewNodeError("create", string(kind), audio.ErrUnknownInstrument)
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	n := h.newNode(string(kind), newSynth(kind, float64(h.sampleRate), h.stream(), opts))
	n.kind = kind
	return n, nil
}

func (h *Host) NewEffect(kind audio.EffectKind, opts audio.Options) (audio.Node, error) {
	proc := h.newEffect(kind, opts)
	if proc == nil {
		return nil, audio.NewNodeError("create", string(kind), audio.ErrUnknownEffect)
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.newNode(string(kind), proc), nil
}

func (h *Host) NewFilter(opts audio.Options) (audio.Node, error) {
	p := &filterProc{}
	p.f.set(str(opts, "type", "lowpass"), float64(h.sampleRate), num(opts, "frequency", 350), num(opts, "Q", 1))
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.newNode("Filter", p), nil
}

func (h *Host) NewNoise(color string) (audio.Node, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.newNode("Noise", newNoiseProc(h.stream(), color)), nil
}

func (h *Host) NewGain(level float64) (audio.Node, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.newNode("Gain", &gainProc{gain: level}), nil
}

func (h *Host) Destination() audio.Node { return h.dest }

// Now returns the render position in seconds.
func (h *Host) Now() float64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return float64(h.frame) / float64(h.sampleRate)
}

func (h *Host) Seconds(d audio.Duration) (float64, error) {
	if !d.IsNotation() {
		return d.Seconds, nil
	}
	h.mu.Lock()
	bpm := h.bpm
	h.mu.Unlock()
	return audio.ParseNotation(d.Notation, bpm)
}

// SetBPM changes the tempo used to resolve notation.
func (h *Host) SetBPM(bpm float64) {
	h.mu.Lock()
	h.bpm = bpm
	h.mu.Unlock()
}

// Start marks the context running. Rendering needs no user gesture.
func (h *Host) Start(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.state == audio.StateClosed {
		return audio.NewNodeError("start", "context", audio.ErrDisposed)
	}
	h.state = audio.StateRunning
	return nil
}

func (h *Host) State() audio.ContextState {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state
}

// Close stops the context for good.
func (h *Host) Close() {
	h.mu.Lock()
	h.state = audio.StateClosed
	h.mu.Unlock()
}

// Live returns the number of nodes created and not yet disposed.
func (h *Host) Live() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.live
}

// Render fills out with the next len(out) samples of the destination and
// advances the clock. A context that is not running renders silence
// without advancing.
func (h *Host) Render(out []float32) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.state != audio.StateRunning {
		clear(out)
		return
	}
	for off := 0; off < len(out); off += BlockSize {
		size := min(BlockSize, len(out)-off)
		buf := h.dest.pull(h.block, size, h.frame)
		for i, v := range buf {
			out[off+i] = float32(clamp(v, -1, 1))
		}
		h.block++
		h.frame += int64(size)
	}
}
