package native

import (
	"math"

	"github.com/simukka/drumpal/audio"
)

// Voice generates samples in the range [-1,1].
type Voice interface {
	// Sample returns the next sample and whether the voice has finished.
	Sample() (float64, bool)
}

// envelope is an attack/decay/sustain/release amplitude curve.
type envelope struct {
	attack, decay, sustain, release float64 // seconds, except sustain (0-1)
}

func envelopeFrom(opts audio.Options, def envelope) envelope {
	m := opts.Map("envelope")
	return envelope{
		attack:  num(m, "attack", def.attack),
		decay:   num(m, "decay", def.decay),
		sustain: num(m, "sustain", def.sustain),
		release: num(m, "release", def.release),
	}
}

// level returns the amplitude t seconds into a note held for hold
// seconds, and whether the release has finished.
func (e envelope) level(t, hold float64) (float64, bool) {
	held := e.held(math.Min(t, hold))
	if t < hold {
		return held, false
	}
	if e.release <= 0 {
		return 0, true
	}
	r := (t - hold) / e.release
	if r >= 1 {
		return 0, true
	}
	return held * (1 - r), false
}

func (e envelope) held(t float64) float64 {
	switch {
	case t < e.attack:
		return t / e.attack
	case t < e.attack+e.decay:
		return 1 - (1-e.sustain)*(t-e.attack)/e.decay
	default:
		return e.sustain
	}
}

// oscillator renders one cycle shape at phase p (radians).
func oscillator(shape string, p float64) float64 {
	switch shape {
	case "square":
		if math.Sin(p) >= 0 {
			return 1
		}
		return -1
	case "sawtooth":
		x := math.Mod(p, 2*math.Pi) / (2 * math.Pi)
		return 2*x - 1
	case "triangle":
		x := math.Mod(p, 2*math.Pi) / (2 * math.Pi)
		return 4*math.Abs(x-0.5) - 1
	default:
		return math.Sin(p)
	}
}

// membraneVoice is a sine whose pitch falls exponentially from
// freq*octaves to freq over pitchDecay.
type membraneVoice struct {
	env               envelope
	sr, freq, octaves float64
	pitchDecay, hold  float64
	phase             float64
	i                 int
}

func (v *membraneVoice) Sample() (float64, bool) {
	t := float64(v.i) / v.sr
	v.i++
	amp, done := v.env.level(t, v.hold)
	if done {
		return 0, true
	}
	f := v.freq
	if t < v.pitchDecay && v.octaves > 1 {
		start := v.freq * v.octaves
		f = start * math.Pow(v.freq/start, t/v.pitchDecay)
	}
	v.phase += 2 * math.Pi * f / v.sr
	return math.Sin(v.phase) * amp, false
}

// noiseVoice is shaped noise, the snare and hi-hat building block.
type noiseVoice struct {
	env      envelope
	sr, hold float64
	src      *noiseSource
	i        int
}

func (v *noiseVoice) Sample() (float64, bool) {
	t := float64(v.i) / v.sr
	v.i++
	amp, done := v.env.level(t, v.hold)
	if done {
		return 0, true
	}
	return v.src.next() * amp, false
}

// metalRatios are the inharmonic partials of a struck cymbal.
var metalRatios = [...]float64{1.0, 1.483, 1.932, 2.546, 2.630, 3.897}

// metalVoice sums square partials through a high-pass at resonance.
type metalVoice struct {
	env      envelope
	sr, hold float64
	freq     float64
	phases   [len(metalRatios)]float64
	hp       onePole
	i        int
}

func (v *metalVoice) Sample() (float64, bool) {
	t := float64(v.i) / v.sr
	v.i++
	amp, done := v.env.level(t, v.hold)
	if done {
		return 0, true
	}
	var s float64
	for k, r := range metalRatios {
		v.phases[k] += 2 * math.Pi * v.freq * r / v.sr
		s += oscillator("square", v.phases[k])
	}
	s /= float64(len(metalRatios))
	return v.hp.highpass(s) * amp, false
}

// fmVoice is a two-operator frequency-modulation voice. With am set the
// modulator scales the carrier amplitude instead.
type fmVoice struct {
	env         envelope
	sr, hold    float64
	freq        float64
	harmonicity float64
	index       float64
	shape       string
	am          bool
	cp, mp      float64
	i           int
}

func (v *fmVoice) Sample() (float64, bool) {
	t := float64(v.i) / v.sr
	v.i++
	amp, done := v.env.level(t, v.hold)
	if done {
		return 0, true
	}
	mf := v.freq * v.harmonicity
	v.mp += 2 * math.Pi * mf / v.sr
	mod := math.Sin(v.mp)
	if v.am {
		v.cp += 2 * math.Pi * v.freq / v.sr
		return oscillator(v.shape, v.cp) * (0.5 + 0.5*mod) * amp, false
	}
	v.cp += 2 * math.Pi * (v.freq + mod*v.index*mf) / v.sr
	return oscillator(v.shape, v.cp) * amp, false
}

// toneVoice is a single oscillator through an envelope.
type toneVoice struct {
	env      envelope
	sr, hold float64
	freq     float64
	shape    string
	phase    float64
	i        int
}

func (v *toneVoice) Sample() (float64, bool) {
	t := float64(v.i) / v.sr
	v.i++
	amp, done := v.env.level(t, v.hold)
	if done {
		return 0, true
	}
	v.phase += 2 * math.Pi * v.freq / v.sr
	return oscillator(v.shape, v.phase) * amp, false
}

// pluckVoice is a Karplus-Strong string.
type pluckVoice struct {
	line  []float64
	pos   int
	damp  float64 // feedback gain per period
	blend float64 // low-pass blend, from dampening
	left  int     // samples until the voice is cut
}

func newPluckVoice(sr, freq float64, opts audio.Options, src *noiseSource) *pluckVoice {
	n := int(sr / math.Max(freq, 20))
	if n < 2 {
		n = 2
	}
	attack := num(opts, "attackNoise", 1)
	v := &pluckVoice{
		line:  make([]float64, n),
		damp:  0.9 + 0.0999*clamp(num(opts, "resonance", 0.7), 0, 1),
		blend: clamp(num(opts, "dampening", 4000)/sr*2, 0.05, 1),
		left:  int(sr * num(opts, "release", 1)),
	}
	for i := range v.line {
		v.line[i] = src.next() * math.Min(attack, 1)
	}
	return v
}

func (v *pluckVoice) Sample() (float64, bool) {
	if v.left <= 0 {
		return 0, true
	}
	v.left--
	next := (v.pos + 1) % len(v.line)
	out := v.line[v.pos]
	avg := out*(1-v.blend*0.5) + v.line[next]*v.blend*0.5
	v.line[v.pos] = avg * v.damp
	v.pos = next
	return out, false
}
