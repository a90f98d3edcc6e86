package audio

import (
	"errors"
	"time"
)

// BuildDegradationChain builds the toy speaker pipeline:
//
//	input -> bit crusher -> band-pass -> distortion -> output
//	         noise -> gain ------------^
//
// The noise source is already running when the chain is returned. On
// error every node built so far is disposed.
func BuildDegradationChain(host Host, cfg Config) (chain *SpeakerChain, err error) {
	var built []Node
	defer func() {
		if r := recover(); r != nil {
			err = NewNodeError("create", "speaker", panicError(r))
		}
		if err != nil {
			for _, n := range built {
				Guard(n).Dispose()
			}
			chain = nil
		}
	}()

	add := func(n Node, err error) (Node, error) {
		if err == nil && n != nil {
			built = append(built, n)
		}
		return n, err
	}

	crusher, err := add(host.NewEffect(BitCrusher, Options{"bits": cfg.SpeakerBits}))
	if err != nil {
		return nil, err
	}
	band, err := add(host.NewFilter(Options{
		"type":      "bandpass",
		"frequency": cfg.SpeakerBandCenter,
		"Q":         cfg.SpeakerBandQ,
	}))
	if err != nil {
		return nil, err
	}
	drive, err := add(host.NewEffect(Distortion, Options{"distortion": cfg.SpeakerDrive}))
	if err != nil {
		return nil, err
	}
	hiss, err := add(host.NewNoise(cfg.SpeakerHissColor))
	if err != nil {
		return nil, err
	}
	hissGain, err := add(host.NewGain(cfg.SpeakerHissLevel))
	if err != nil {
		return nil, err
	}

	err = errors.Join(
		hiss.Connect(hissGain),
		hissGain.Connect(drive),
		crusher.Connect(band),
		band.Connect(drive),
	)
	if err != nil {
		return nil, NewNodeError("connect", "speaker", err)
	}

	return &SpeakerChain{
		Input:  crusher,
		Output: drive,
		Nodes:  []Node{crusher, band, drive, hiss, hissGain},
	}, nil
}

// WearDetune returns the detune in cents for a battery level: nothing at
// or above the threshold, then a linear ramp down to MaxDetune at zero.
func WearDetune(level float64, cfg Config) float64 {
	if level >= cfg.WearThreshold || cfg.WearThreshold <= 0 {
		return 0
	}
	if level < 0 {
		level = 0
	}
	return (1 - level/cfg.WearThreshold) * cfg.MaxDetune
}

// detunable lists the instruments with a detune parameter. PluckSynth is
// pitched but has none, so worn batteries leave it in tune.
var detunable = map[InstrumentKind]bool{
	MembraneSynth: true,
	MetalSynth:    true,
	FMSynth:       true,
	AMSynth:       true,
	Synth:         true,
}

// ApplyBatteryWear sets the instrument's detune to base plus the battery
// wear for level. Instruments without pitch are left alone.
func ApplyBatteryWear(inst Instrument, level, base float64, cfg Config) (err error) {
	if !detunable[inst.Kind()] {
		return nil
	}
	defer func() {
		if r := recover(); r != nil {
			err = NewNodeError("set", string(inst.Kind()), panicError(r))
		}
	}()
	return inst.Set(Options{"detune": base + WearDetune(level, cfg)})
}

// Random is a source of uniform numbers in [0, 1). *common.SeededRNG
// implements it.
type Random interface {
	Random() float64
	RandomFloat(min, max float64) float64
	Chance(p float64) bool
}

// Jitter randomly delays triggers to mimic a worn-out toy. It is applied
// by the caller before triggering, never inside the audio graph.
type Jitter struct {
	Chance float64       // Probability that a trigger is delayed
	Max    time.Duration // Upper bound of the delay
	Rand   Random
}

// Delay decides whether the next trigger is late and by how much.
func (j Jitter) Delay() (time.Duration, bool) {
	if j.Rand == nil || j.Chance <= 0 || j.Max <= 0 {
		return 0, false
	}
	if !j.Rand.Chance(j.Chance) {
		return 0, false
	}
	return time.Duration(j.Rand.RandomFloat(0, float64(j.Max))), true
}
