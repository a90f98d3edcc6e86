package audio

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
)

// InstrumentKind names a synthesizer in the host library.
type InstrumentKind string

const (
	MembraneSynth InstrumentKind = "MembraneSynth" // kick / tom
	NoiseSynth    InstrumentKind = "NoiseSynth"    // snare / hat
	MetalSynth    InstrumentKind = "MetalSynth"    // cymbal
	FMSynth       InstrumentKind = "FMSynth"
	AMSynth       InstrumentKind = "AMSynth"
	Synth         InstrumentKind = "Synth"
	PluckSynth    InstrumentKind = "PluckSynth"
)

// Instruments lists every instrument kind a Host must be able to build.
var Instruments = []InstrumentKind{
	MembraneSynth, NoiseSynth, MetalSynth, FMSynth, AMSynth, Synth, PluckSynth,
}

// Known reports whether k is one of the supported instrument kinds.
func (k InstrumentKind) Known() bool {
	for _, known := range Instruments {
		if k == known {
			return true
		}
	}
	return false
}

// EffectKind names an audio effect in the host library.
type EffectKind string

const (
	Distortion       EffectKind = "Distortion"
	Reverb           EffectKind = "Reverb"
	Chorus           EffectKind = "Chorus"
	Phaser           EffectKind = "Phaser"
	PingPongDelay    EffectKind = "PingPongDelay"
	FeedbackDelay    EffectKind = "FeedbackDelay"
	BitCrusher       EffectKind = "BitCrusher"
	AutoFilter       EffectKind = "AutoFilter"
	FrequencyShifter EffectKind = "FrequencyShifter"
)

// Effects lists every effect kind a Host must be able to build.
var Effects = []EffectKind{
	Distortion, Reverb, Chorus, Phaser, PingPongDelay, FeedbackDelay,
	BitCrusher, AutoFilter, FrequencyShifter,
}

// Known reports whether k is one of the supported effect kinds.
func (k EffectKind) Known() bool {
	for _, known := range Effects {
		if k == known {
			return true
		}
	}
	return false
}

// Options is an open parameter map handed verbatim to the host library.
// Values are whatever JSON decoding produces: float64, string, bool,
// nested Options/map[string]any and []any.
type Options map[string]any

// Number returns the numeric value stored under key.
func (o Options) Number(key string) (float64, bool) {
	return number(o[key])
}

// Map returns the nested parameter group stored under key, if any.
func (o Options) Map(key string) Options {
	switch v := o[key].(type) {
	case Options:
		return v
	case map[string]any:
		return Options(v)
	}
	return nil
}

// String returns the string value stored under key.
func (o Options) String(key string) string {
	s, _ := o[key].(string)
	return s
}

// Clone returns a deep copy of the map and every nested map or slice.
func (o Options) Clone() Options {
	if o == nil {
		return nil
	}
	out := make(Options, len(o))
	for k, v := range o {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch v := v.(type) {
	case Options:
		return v.Clone()
	case map[string]any:
		return map[string]any(Options(v).Clone())
	case []any:
		out := make([]any, len(v))
		for i := range v {
			out[i] = cloneValue(v[i])
		}
		return out
	}
	return v
}

// Fingerprint is a stable serialization of the map: keys are sorted at
// every level so structurally equal maps always produce the same string.
func (o Options) Fingerprint() string {
	b, err := json.Marshal(map[string]any(o))
	if err != nil {
		// Non-JSON values (funcs, channels) never come from a descriptor;
		// fall back to fmt so the key is still deterministic.
		return fmt.Sprintf("%v", sortedPairs(o))
	}
	return string(b)
}

func sortedPairs(o Options) []string {
	keys := make([]string, 0, len(o))
	for k := range o {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for i, k := range keys {
		keys[i] = k + "=" + fmt.Sprint(o[k])
	}
	return keys
}

func number(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

// Duration is either a number of seconds or a musical notation string
// such as "8n", "4n." or "1m". The zero value means "not specified".
type Duration struct {
	Seconds  float64
	Notation string
}

// Secs returns a Duration of s seconds.
func Secs(s float64) Duration { return Duration{Seconds: s} }

// Notation returns a Duration expressed in musical notation.
func Notation(n string) Duration { return Duration{Notation: n} }

// IsZero reports whether no duration was given.
func (d Duration) IsZero() bool { return d.Notation == "" && d.Seconds == 0 }

// IsNotation reports whether the duration must be resolved by a Host.
func (d Duration) IsNotation() bool { return d.Notation != "" }

func (d Duration) String() string {
	if d.Notation != "" {
		return d.Notation
	}
	return strconv.FormatFloat(d.Seconds, 'f', -1, 64)
}

func (d Duration) MarshalJSON() ([]byte, error) {
	if d.Notation != "" {
		return json.Marshal(d.Notation)
	}
	return json.Marshal(d.Seconds)
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch v := v.(type) {
	case nil:
		*d = Duration{}
	case float64:
		*d = Secs(v)
	case string:
		// "0.5" is seconds, anything else is notation.
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*d = Secs(f)
		} else {
			*d = Notation(v)
		}
	default:
		return fmt.Errorf("duration: unsupported JSON value %s", b)
	}
	return nil
}

// EffectDescriptor describes one effect in a sound's chain.
type EffectDescriptor struct {
	Type    EffectKind `json:"type"`
	Options Options    `json:"options"`
}

// Clone returns a deep copy of the effect.
func (e EffectDescriptor) Clone() EffectDescriptor {
	return EffectDescriptor{Type: e.Type, Options: e.Options.Clone()}
}

// SoundDescriptor is the serializable description of one sound. It is
// produced by presets or the sound generator and is never mutated by the
// audio runtime.
type SoundDescriptor struct {
	Instrument InstrumentKind     `json:"instrument"`
	Options    Options            `json:"options"`
	Effects    []EffectDescriptor `json:"effects,omitempty"`
	Duration   Duration           `json:"duration,omitzero"`
	Note       string             `json:"note,omitempty"`
}

// Clone returns a deep copy of the descriptor.
func (d *SoundDescriptor) Clone() *SoundDescriptor {
	if d == nil {
		return nil
	}
	out := &SoundDescriptor{
		Instrument: d.Instrument,
		Options:    d.Options.Clone(),
		Duration:   d.Duration,
		Note:       d.Note,
	}
	if d.Effects != nil {
		out.Effects = make([]EffectDescriptor, len(d.Effects))
		for i, e := range d.Effects {
			out.Effects[i] = e.Clone()
		}
	}
	return out
}

// Validate performs the minimal shape check applied to generated sounds:
// an instrument tag and an options map must be present. Unknown tags are
// accepted here; the runtime substitutes or skips them at play time.
func (d *SoundDescriptor) Validate() error {
	if d == nil {
		return fmt.Errorf("%w: nil descriptor", ErrInvalidDescriptor)
	}
	if d.Instrument == "" {
		return fmt.Errorf("%w: missing instrument", ErrInvalidDescriptor)
	}
	if d.Options == nil {
		return fmt.Errorf("%w: missing options", ErrInvalidDescriptor)
	}
	for i, e := range d.Effects {
		if e.Type == "" {
			return fmt.Errorf("%w: effect %d has no type", ErrInvalidDescriptor, i)
		}
	}
	return nil
}

// ParseDescriptor decodes and validates a JSON sound descriptor.
func ParseDescriptor(b []byte) (*SoundDescriptor, error) {
	var d SoundDescriptor
	if err := json.Unmarshal(b, &d); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDescriptor, err)
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return &d, nil
}
