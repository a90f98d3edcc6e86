// Package tone implements audio.Host on top of Tone.js in the browser.
package tone

import (
	"context"
	"errors"

	"github.com/gopherjs/gopherjs/js"
	"github.com/simukka/drumpal/audio"
)

// ErrNoTone is returned when the page did not load Tone.js.
var ErrNoTone = errors.New("Tone.js not loaded")

// instrumentClasses maps each instrument kind to its Tone.js constructor.
var instrumentClasses = map[audio.InstrumentKind]string{
	audio.MembraneSynth: "MembraneSynth",
	audio.NoiseSynth:    "NoiseSynth",
	audio.MetalSynth:    "MetalSynth",
	audio.FMSynth:       "FMSynth",
	audio.AMSynth:       "AMSynth",
	audio.Synth:         "Synth",
	audio.PluckSynth:    "PluckSynth",
}

// effectClasses maps each effect kind to its Tone.js constructor. The
// flag marks LFO-driven effects that must be started after construction.
var effectClasses = map[audio.EffectKind]struct {
	class string
	start bool
}{
	audio.Distortion:       {"Distortion", false},
	audio.Reverb:           {"Reverb", false},
	audio.Chorus:           {"Chorus", true},
	audio.Phaser:           {"Phaser", false},
	audio.PingPongDelay:    {"PingPongDelay", false},
	audio.FeedbackDelay:    {"FeedbackDelay", false},
	audio.BitCrusher:       {"BitCrusher", false},
	audio.AutoFilter:       {"AutoFilter", true},
	audio.FrequencyShifter: {"FrequencyShifter", false},
}

// Host drives the global Tone object.
type Host struct {
	tone *js.Object
	log  *audio.Logger
	dest *node
}

// New binds to window.Tone.
func New(log *audio.Logger) (*Host, error) {
	t := js.Global.Get("Tone")
	if t == nil || t == js.Undefined {
		return nil, ErrNoTone
	}
	if log == nil {
		log = audio.DefaultLogger()
	}
	h := &Host{tone: t, log: log}
	h.dest = &node{obj: t.Call("getDestination"), label: "Destination"}
	return h, nil
}

// construct calls new Tone[class](args...) and turns a thrown exception
// into an error.
func (h *Host) construct(class string, args ...interface{}) (obj *js.Object, err error) {
	defer func() {
		if r := recover(); r != nil {
			obj, err = nil, jsError("create", class, r)
		}
	}()
	ctor := h.tone.Get(class)
	if ctor == js.Undefined {
		return nil, audio.NewNodeError("create", class, errors.New("no such Tone.js class"))
	}
	return ctor.New(args...), nil
}

func (h *Host) NewInstrument(kind audio.InstrumentKind, opts audio.Options) (audio.Instrument, error) {
	class, ok := instrumentClasses[kind]
	if !ok {
		return nil, audio.NewNodeError("create", string(kind), audio.ErrUnknownInstrument)
	}
	obj, err := h.construct(class, toJS(opts))
	if err != nil {
		return nil, err
	}
	return &node{obj: obj, label: class, kind: kind}, nil
}

func (h *Host) NewEffect(kind audio.EffectKind, opts audio.Options) (audio.Node, error) {
	fx, ok := effectClasses[kind]
	if !ok {
		return nil, audio.NewNodeError("create", string(kind), audio.ErrUnknownEffect)
	}
	obj, err := h.construct(fx.class, toJS(opts))
	if err != nil {
		return nil, err
	}
	n := &node{obj: obj, label: fx.class}
	if fx.start {
		if _, err := n.call("start"); err != nil {
			n.Dispose()
			return nil, err
		}
	}
	return n, nil
}

func (h *Host) NewFilter(opts audio.Options) (audio.Node, error) {
	obj, err := h.construct("Filter", toJS(opts))
	if err != nil {
		return nil, err
	}
	return &node{obj: obj, label: "Filter"}, nil
}

func (h *Host) NewNoise(color string) (audio.Node, error) {
	obj, err := h.construct("Noise", color)
	if err != nil {
		return nil, err
	}
	n := &node{obj: obj, label: "Noise"}
	if _, err := n.call("start"); err != nil {
		n.Dispose()
		return nil, err
	}
	return n, nil
}

func (h *Host) NewGain(level float64) (audio.Node, error) {
	obj, err := h.construct("Gain", level)
	if err != nil {
		return nil, err
	}
	return &node{obj: obj, label: "Gain"}, nil
}

func (h *Host) Destination() audio.Node { return h.dest }

func (h *Host) Now() float64 {
	return h.tone.Call("now").Float()
}

// Seconds resolves notation with Tone.Time so the transport tempo is
// honoured.
func (h *Host) Seconds(d audio.Duration) (secs float64, err error) {
	if !d.IsNotation() {
		return d.Seconds, nil
	}
	defer func() {
		if r := recover(); r != nil {
			secs, err = 0, jsError("time", d.Notation, r)
		}
	}()
	return h.tone.Call("Time", d.Notation).Call("toSeconds").Float(), nil
}

// Start resumes the audio context. It waits on the Tone.start promise
// and must run on its own goroutine when reached from a JS callback.
func (h *Host) Start(ctx context.Context) error {
	done := make(chan error, 1)
	promise := h.tone.Call("start")
	promise.Call("then",
		func() { done <- nil },
		func(e *js.Object) { done <- audio.NewNodeError("start", "context", errors.New(e.String())) },
	)
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (h *Host) State() audio.ContextState {
	c := h.tone.Call("getContext")
	if c == nil || c == js.Undefined {
		return audio.StateNone
	}
	return audio.ContextState(c.Get("state").String())
}

// SetVolume sets the master volume (0.0 to 1.0).
func (h *Host) SetVolume(volume float64) {
	if volume < 0 {
		volume = 0
	}
	if volume > 1 {
		volume = 1
	}
	h.dest.obj.Get("volume").Set("value", h.tone.Call("gainToDb", volume))
}

// SetBPM sets the transport tempo used to resolve notation.
func (h *Host) SetBPM(bpm float64) {
	h.tone.Call("getTransport").Get("bpm").Set("value", bpm)
}

// toJS hands options to GopherJS as a plain map so they become a JS
// object literal.
func toJS(opts audio.Options) map[string]interface{} {
	if opts == nil {
		return map[string]interface{}{}
	}
	return map[string]interface{}(opts)
}
