package audio

import "time"

// Config holds the tunables of the audio runtime.
type Config struct {
	// Lifecycle settings
	ReleaseTail time.Duration // Assumed longest effect tail added to every sound's duration
	CacheLimit  int           // Maximum number of cached instruments

	// Trigger settings
	DefaultDuration float64 // Seconds, used when a descriptor has no duration
	MembraneNote    string  // Note for membrane instruments without a note
	TonalNote       string  // Note for basic/FM/AM synths without a note
	BPM             float64 // Tempo used to resolve notation when the host has none

	// Battery wear settings
	WearThreshold float64 // Battery level below which detune kicks in
	MaxDetune     float64 // Detune in cents at an empty battery

	// Toy speaker chain settings
	SpeakerBits       float64 // Bit crusher depth
	SpeakerBandCenter float64 // Band-pass center frequency (Hz)
	SpeakerBandQ      float64 // Band-pass resonance
	SpeakerDrive      float64 // Distortion amount (0-1)
	SpeakerHissColor  string  // Noise color: white, pink or brown
	SpeakerHissLevel  float64 // Hiss gain mixed before the distortion stage
}

// DefaultConfig returns the stock runtime configuration.
func DefaultConfig() Config {
	return Config{
		ReleaseTail: 2 * time.Second,
		CacheLimit:  50,

		DefaultDuration: 0.2,
		MembraneNote:    "C2",
		TonalNote:       "C4",
		BPM:             120,

		WearThreshold: 20,
		MaxDetune:     -200,

		SpeakerBits:       8,
		SpeakerBandCenter: 4100,
		SpeakerBandQ:      0.7,
		SpeakerDrive:      0.1,
		SpeakerHissColor:  "pink",
		SpeakerHissLevel:  0.1,
	}
}
