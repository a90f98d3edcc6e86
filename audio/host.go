package audio

import "context"

// ContextState mirrors the host audio context state. The empty state
// means no context exists yet.
type ContextState string

const (
	StateNone      ContextState = ""
	StateSuspended ContextState = "suspended"
	StateRunning   ContextState = "running"
	StateClosed    ContextState = "closed"
)

// Node is a live, connectable node in the host audio graph.
type Node interface {
	Connect(dst Node) error
	Disconnect() error
	Dispose() error
}

// Instrument is a live synthesizer.
type Instrument interface {
	Node
	Kind() InstrumentKind
	Set(opts Options) error
}

// StrikeForm selects which positional arguments a host passes to its
// attack+release call.
type StrikeForm int

const (
	NoteAndDuration StrikeForm = iota // (note, duration, time)
	DurationOnly                      // (duration, time)
	NoteOnly                          // (note, time)
)

func (f StrikeForm) String() string {
	switch f {
	case NoteAndDuration:
		return "note+duration"
	case DurationOnly:
		return "duration"
	case NoteOnly:
		return "note"
	default:
		return "unknown"
	}
}

// Strike is one attack+release request.
type Strike struct {
	Form     StrikeForm
	Note     string
	Duration Duration
	At       float64 // host clock seconds
}

// Triggerer is implemented by instruments exposing attack+release.
type Triggerer interface {
	TriggerAttackRelease(s Strike) error
}

// Host abstracts the audio synthesis library. Implementations exist for
// Tone.js in the browser (audio/tone), a pure Go renderer (audio/native)
// and a recording host used for inspection and tests (HeadlessHost).
type Host interface {
	NewInstrument(kind InstrumentKind, opts Options) (Instrument, error)
	NewEffect(kind EffectKind, opts Options) (Node, error)
	NewFilter(opts Options) (Node, error)
	NewNoise(color string) (Node, error) // started noise source
	NewGain(level float64) (Node, error)
	Destination() Node

	// Now returns the host clock in seconds.
	Now() float64
	// Seconds resolves a duration, parsing notation with the host's
	// transport tempo.
	Seconds(d Duration) (float64, error)

	// Start resumes or creates the audio context. It may block until the
	// platform allows audio.
	Start(ctx context.Context) error
	State() ContextState
}
