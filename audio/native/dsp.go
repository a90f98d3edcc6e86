package native

import (
	"math"

	"github.com/simukka/drumpal/audio"
	"github.com/simukka/drumpal/common"
)

// num reads a numeric option, or def when missing.
func num(opts audio.Options, key string, def float64) float64 {
	if v, ok := opts.Number(key); ok {
		return v
	}
	return def
}

// str reads a string option, or def when missing.
func str(opts audio.Options, key, def string) string {
	if s := opts.String(key); s != "" {
		return s
	}
	return def
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// noiseSource produces white, pink or brown noise from a seeded RNG.
type noiseSource struct {
	rng   *common.SeededRNG
	color string
	// Paul Kellet pink filter state
	b0, b1, b2, b3, b4, b5, b6 float64
	brown                      float64
}

func newNoiseSource(rng *common.SeededRNG, color string) *noiseSource {
	return &noiseSource{rng: rng, color: color}
}

func (n *noiseSource) next() float64 {
	white := n.rng.RandomFloat(-1, 1)
	switch n.color {
	case "pink":
		n.b0 = 0.99886*n.b0 + white*0.0555179
		n.b1 = 0.99332*n.b1 + white*0.0750759
		n.b2 = 0.96900*n.b2 + white*0.1538520
		n.b3 = 0.86650*n.b3 + white*0.3104856
		n.b4 = 0.55000*n.b4 + white*0.5329522
		n.b5 = -0.7616*n.b5 - white*0.0168980
		out := n.b0 + n.b1 + n.b2 + n.b3 + n.b4 + n.b5 + n.b6 + white*0.5362
		n.b6 = white * 0.115926
		return out * 0.11
	case "brown":
		n.brown = (n.brown + 0.02*white) / 1.02
		return n.brown * 3.5
	default:
		return white
	}
}

// onePole is a one-pole filter used for the cymbal high-pass.
type onePole struct {
	a    float64
	prev float64
}

func newOnePole(sr, cutoff float64) onePole {
	return onePole{a: math.Exp(-2 * math.Pi * cutoff / sr)}
}

func (f *onePole) lowpass(x float64) float64 {
	f.prev = x*(1-f.a) + f.prev*f.a
	return f.prev
}

func (f *onePole) highpass(x float64) float64 {
	return x - f.lowpass(x)
}

// biquad is an RBJ cookbook second-order section.
type biquad struct {
	b0, b1, b2, a1, a2 float64
	x1, x2, y1, y2     float64
}

// set recomputes coefficients for the given filter type.
func (f *biquad) set(kind string, sr, freq, q float64) {
	freq = clamp(freq, 10, sr/2-1)
	if q <= 0 {
		q = 0.0001
	}
	w := 2 * math.Pi * freq / sr
	alpha := math.Sin(w) / (2 * q)
	cos := math.Cos(w)

	var b0, b1, b2 float64
	switch kind {
	case "highpass":
		b0, b1, b2 = (1+cos)/2, -(1 + cos), (1+cos)/2
	case "bandpass":
		b0, b1, b2 = alpha, 0, -alpha
	case "notch":
		b0, b1, b2 = 1, -2*cos, 1
	default: // lowpass
		b0, b1, b2 = (1-cos)/2, 1-cos, (1-cos)/2
	}
	a0 := 1 + alpha
	f.b0, f.b1, f.b2 = b0/a0, b1/a0, b2/a0
	f.a1, f.a2 = -2*cos/a0, (1-alpha)/a0
}

func (f *biquad) process(x float64) float64 {
	y := f.b0*x + f.b1*f.x1 + f.b2*f.x2 - f.a1*f.y1 - f.a2*f.y2
	f.x2, f.x1 = f.x1, x
	f.y2, f.y1 = f.y1, y
	return y
}

// delayLine is a circular buffer with fractional reads.
type delayLine struct {
	buf []float64
	pos int
}

func newDelayLine(samples int) *delayLine {
	if samples < 1 {
		samples = 1
	}
	return &delayLine{buf: make([]float64, samples)}
}

// read returns the sample d samples ago (fractional, linear).
func (d *delayLine) read(delay float64) float64 {
	n := len(d.buf)
	delay = clamp(delay, 0, float64(n-1))
	i := int(delay)
	frac := delay - float64(i)
	a := d.buf[(d.pos-i+n)%n]
	b := d.buf[(d.pos-i-1+2*n)%n]
	return a*(1-frac) + b*frac
}

func (d *delayLine) write(x float64) {
	d.pos = (d.pos + 1) % len(d.buf)
	d.buf[d.pos] = x
}

// lfo is a sine low-frequency oscillator in [0,1].
type lfo struct {
	phase, step float64
}

func newLFO(sr, freq float64) lfo {
	return lfo{step: 2 * math.Pi * freq / sr}
}

func (l *lfo) next() float64 {
	l.phase += l.step
	if l.phase > 2*math.Pi {
		l.phase -= 2 * math.Pi
	}
	return 0.5 + 0.5*math.Sin(l.phase)
}
