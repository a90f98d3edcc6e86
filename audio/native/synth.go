package native

import (
	"github.com/simukka/drumpal/audio"
	"github.com/simukka/drumpal/common"
)

// Default envelopes, close to the stock Tone.js instruments.
var defaultEnvelopes = map[audio.InstrumentKind]envelope{
	audio.MembraneSynth: {attack: 0.001, decay: 0.4, sustain: 0.01, release: 1.4},
	audio.NoiseSynth:    {attack: 0.005, decay: 0.1, sustain: 0, release: 0.1},
	audio.MetalSynth:    {attack: 0.001, decay: 1.4, sustain: 0, release: 0.2},
	audio.FMSynth:       {attack: 0.01, decay: 0.01, sustain: 1, release: 0.5},
	audio.AMSynth:       {attack: 0.01, decay: 0.01, sustain: 1, release: 0.5},
	audio.Synth:         {attack: 0.005, decay: 0.1, sustain: 0.3, release: 1},
}

type scheduled struct {
	start int64
	v     Voice
}

// synth is the processor behind every instrument node: it turns strikes
// into voices and mixes them in.
type synth struct {
	kind   audio.InstrumentKind
	sr     float64
	rng    *common.SeededRNG
	opts   audio.Options
	detune float64
	volume float64 // linear gain
	voices []scheduled
}

func newSynth(kind audio.InstrumentKind, sr float64, rng *common.SeededRNG, opts audio.Options) *synth {
	s := &synth{kind: kind, sr: sr, rng: rng, opts: audio.Options{}, volume: 1}
	s.set(opts)
	return s
}

// set merges opts into the instrument parameters.
func (s *synth) set(opts audio.Options) {
	for k, v := range opts.Clone() {
		s.opts[k] = v
	}
	s.detune = num(s.opts, "detune", 0)
	s.volume = dbToGain(num(s.opts, "volume", 0))
}

// strike schedules one voice. freq is ignored by unpitched kinds.
func (s *synth) strike(start int64, freq, hold float64) {
	if v := s.voice(freq*audio.CentsRatio(s.detune), hold); v != nil {
		s.voices = append(s.voices, scheduled{start: start, v: v})
	}
}

func (s *synth) voice(freq, hold float64) Voice {
	env := envelopeFrom(s.opts, defaultEnvelopes[s.kind])
	switch s.kind {
	case audio.MembraneSynth:
		return &membraneVoice{
			env: env, sr: s.sr, freq: freq, hold: hold,
			octaves:    num(s.opts, "octaves", 10),
			pitchDecay: num(s.opts, "pitchDecay", 0.05),
		}
	case audio.NoiseSynth:
		color := str(s.opts.Map("noise"), "type", "white")
		return &noiseVoice{env: env, sr: s.sr, hold: hold, src: newNoiseSource(s.rng, color)}
	case audio.MetalSynth:
		f := num(s.opts, "frequency", 200) * audio.CentsRatio(s.detune)
		return &metalVoice{
			env: env, sr: s.sr, hold: hold, freq: f,
			hp: newOnePole(s.sr, num(s.opts, "resonance", 4000)),
		}
	case audio.FMSynth, audio.AMSynth:
		return &fmVoice{
			env: env, sr: s.sr, hold: hold, freq: freq,
			harmonicity: num(s.opts, "harmonicity", 3),
			index:       num(s.opts, "modulationIndex", 10),
			shape:       str(s.opts.Map("oscillator"), "type", "sine"),
			am:          s.kind == audio.AMSynth,
		}
	case audio.PluckSynth:
		return newPluckVoice(s.sr, freq, s.opts, newNoiseSource(s.rng, "white"))
	default:
		return &toneVoice{
			env: env, sr: s.sr, hold: hold, freq: freq,
			shape: str(s.opts.Map("oscillator"), "type", "triangle"),
		}
	}
}

func (s *synth) process(buf []float64, frame int64) {
	if len(s.voices) == 0 {
		return
	}
	end := frame + int64(len(buf))
	kept := s.voices[:0]
	for _, sv := range s.voices {
		if sv.start >= end {
			kept = append(kept, sv)
			continue
		}
		done := false
		for i := max(sv.start-frame, 0); i < int64(len(buf)); i++ {
			v, fin := sv.v.Sample()
			if fin {
				done = true
				break
			}
			buf[i] += v * s.volume
		}
		if !done {
			kept = append(kept, sv)
		}
	}
	clear(s.voices[len(kept):])
	s.voices = kept
}

// active reports the number of voices still sounding or scheduled.
func (s *synth) active() int { return len(s.voices) }
