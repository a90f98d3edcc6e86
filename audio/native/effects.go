package native

import (
	"math"

	"github.com/simukka/drumpal/audio"
	"github.com/simukka/drumpal/common"
)

func dbToGain(db float64) float64 {
	return math.Pow(10, db/20)
}

// wetDry mixes a processed signal with the dry input.
type wetDry struct {
	wet float64
	fx  func(x float64) float64
}

func (w *wetDry) process(buf []float64, _ int64) {
	for i, x := range buf {
		buf[i] = x*(1-w.wet) + w.fx(x)*w.wet
	}
}

// timeOption reads a time option given in seconds or notation.
func (h *Host) timeOption(opts audio.Options, key string, def float64) float64 {
	if s := opts.String(key); s != "" {
		if secs, err := h.Seconds(audio.Notation(s)); err == nil {
			return secs
		}
		return def
	}
	return num(opts, key, def)
}

// rateOption reads a frequency option given in Hz or as a notation
// period such as "4n".
func (h *Host) rateOption(opts audio.Options, key string, def float64) float64 {
	if s := opts.String(key); s != "" {
		if secs, err := h.Seconds(audio.Notation(s)); err == nil && secs > 0 {
			return 1 / secs
		}
		return def
	}
	return num(opts, key, def)
}

// newEffect builds the processor for one effect kind.
func (h *Host) newEffect(kind audio.EffectKind, opts audio.Options) processor {
	sr := float64(h.sampleRate)
	wet := func(def float64) float64 { return clamp(num(opts, "wet", def), 0, 1) }

	switch kind {
	case audio.Distortion:
		k := num(opts, "distortion", 0.4) * 100
		deg := math.Pi / 180
		return &wetDry{wet: wet(1), fx: func(x float64) float64 {
			return (3 + k) * x * 20 * deg / (math.Pi + k*math.Abs(x))
		}}

	case audio.BitCrusher:
		step := math.Pow(2, clamp(num(opts, "bits", 4), 1, 16)-1)
		return &wetDry{wet: wet(1), fx: func(x float64) float64 {
			return math.Round(x*step) / step
		}}

	case audio.Reverb:
		return newReverb(sr, h.timeOption(opts, "decay", 1.5), h.timeOption(opts, "preDelay", 0.01), wet(1))

	case audio.FeedbackDelay, audio.PingPongDelay:
		// Mono render: the ping-pong alternation collapses to a plain echo.
		d := h.timeOption(opts, "delayTime", 0.25)
		line := newDelayLine(int(sr*d) + 2)
		fb := clamp(num(opts, "feedback", 0.25), 0, 0.95)
		ds := d * sr
		return &wetDry{wet: wet(0.5), fx: func(x float64) float64 {
			y := line.read(ds)
			line.write(x + y*fb)
			return y
		}}

	case audio.Chorus:
		base := num(opts, "delayTime", 3.5) / 1000 * sr // milliseconds
		depth := clamp(num(opts, "depth", 0.7), 0, 1) * base
		osc := newLFO(sr, h.rateOption(opts, "frequency", 1.5))
		line := newDelayLine(int(base+depth) + 4)
		return &wetDry{wet: wet(0.5), fx: func(x float64) float64 {
			line.write(x)
			return line.read(base + depth*(osc.next()*2-1))
		}}

	case audio.Phaser:
		return newPhaser(sr, opts, wet(0.5))

	case audio.AutoFilter:
		osc := newLFO(sr, h.rateOption(opts, "frequency", 1))
		baseFreq := num(opts, "baseFrequency", 200)
		octaves := num(opts, "octaves", 2.6)
		depth := clamp(num(opts, "depth", 1), 0, 1)
		shape := str(opts.Map("filter"), "type", "lowpass")
		q := num(opts.Map("filter"), "Q", 1)
		var f biquad
		n := 0
		return &wetDry{wet: wet(1), fx: func(x float64) float64 {
			m := osc.next()
			if n%32 == 0 {
				f.set(shape, sr, baseFreq*math.Pow(2, octaves*m*depth), q)
			}
			n++
			return f.process(x)
		}}

	case audio.FrequencyShifter:
		// Ring modulation against the shift frequency.
		osc := newLFO(sr, num(opts, "frequency", 42))
		return &wetDry{wet: wet(1), fx: func(x float64) float64 {
			return x * (osc.next()*2 - 1)
		}}
	}
	return nil
}

// reverb is a Schroeder reverberator: four parallel combs into two
// series all-passes, after a pre-delay.
type reverb struct {
	wet    float64
	pre    *delayLine
	preLen float64
	combs  [4]*delayLine
	gains  [4]float64
	aps    [2]*delayLine
}

var (
	combTimes    = [4]float64{0.0297, 0.0371, 0.0411, 0.0437}
	allpassTimes = [2]float64{0.005, 0.0017}
)

func newReverb(sr, decay, preDelay, wet float64) *reverb {
	if decay <= 0 {
		decay = 0.001
	}
	r := &reverb{wet: wet, preLen: preDelay * sr}
	r.pre = newDelayLine(int(r.preLen) + 2)
	for i, t := range combTimes {
		r.combs[i] = newDelayLine(int(t * sr))
		r.gains[i] = math.Pow(10, -3*t/decay)
	}
	for i, t := range allpassTimes {
		r.aps[i] = newDelayLine(int(t * sr))
	}
	return r
}

func (r *reverb) process(buf []float64, _ int64) {
	for i, x := range buf {
		r.pre.write(x)
		in := r.pre.read(r.preLen)
		var y float64
		for k, c := range r.combs {
			d := c.read(float64(len(c.buf) - 1))
			c.write(in + d*r.gains[k])
			y += d
		}
		y /= 4
		for _, ap := range r.aps {
			d := ap.read(float64(len(ap.buf) - 1))
			v := y + d*0.7
			ap.write(v)
			y = d - 0.7*v
		}
		buf[i] = x*(1-r.wet) + y*r.wet
	}
}

// phaser sweeps a chain of first-order all-passes with an LFO.
type phaser struct {
	wet     float64
	sr      float64
	osc     lfo
	base    float64
	octaves float64
	state   []float64
}

func newPhaser(sr float64, opts audio.Options, wet float64) *phaser {
	stages := int(clamp(num(opts, "stages", 10), 1, 24))
	return &phaser{
		wet:     wet,
		sr:      sr,
		osc:     newLFO(sr, num(opts, "frequency", 0.5)),
		base:    num(opts, "baseFrequency", 350),
		octaves: num(opts, "octaves", 3),
		state:   make([]float64, stages),
	}
}

func (p *phaser) process(buf []float64, _ int64) {
	for i, x := range buf {
		f := p.base * math.Pow(2, p.octaves*p.osc.next())
		t := math.Tan(math.Pi * math.Min(f, p.sr/2-1) / p.sr)
		a := (t - 1) / (t + 1)
		y := x
		for k := range p.state {
			out := a*y + p.state[k]
			p.state[k] = y - a*out
			y = out
		}
		buf[i] = x*(1-p.wet) + y*p.wet
	}
}

// filterProc is a static biquad.
type filterProc struct{ f biquad }

func (p *filterProc) process(buf []float64, _ int64) {
	for i, x := range buf {
		buf[i] = p.f.process(x)
	}
}

// gainProc scales its input.
type gainProc struct{ gain float64 }

func (p *gainProc) process(buf []float64, _ int64) {
	for i := range buf {
		buf[i] *= p.gain
	}
}

// noiseProc is a free-running noise generator.
type noiseProc struct{ src *noiseSource }

func newNoiseProc(rng *common.SeededRNG, color string) *noiseProc {
	return &noiseProc{src: newNoiseSource(rng, color)}
}

func (p *noiseProc) process(buf []float64, _ int64) {
	for i := range buf {
		buf[i] += p.src.next()
	}
}
