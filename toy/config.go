package toy

import "time"

// Config holds the toy's behavior constants.
type Config struct {
	// Well-loved mode: probability that a hit is late, and the upper bound
	// of the delay.
	JitterChance float64
	MaxJitter    time.Duration

	// BatteryDrain is removed from the battery on every pad hit and
	// metronome tick.
	BatteryDrain float64

	// LowBattery is the level under which the LCD flickers.
	LowBattery float64

	// BPM is the starting tempo.
	BPM float64

	// PlaybackTail keeps the recorder in the playing state after the
	// last note.
	PlaybackTail time.Duration

	// ReferenceBPM is the tempo recordings play back at unscaled.
	ReferenceBPM float64
}

// DefaultConfig returns the toy defaults.
func DefaultConfig() Config {
	return Config{
		JitterChance: 0.2,
		MaxJitter:    200 * time.Millisecond,
		BatteryDrain: 0.1,
		LowBattery:   20,
		BPM:          120,
		PlaybackTail: 500 * time.Millisecond,
		ReferenceBPM: 120,
	}
}
