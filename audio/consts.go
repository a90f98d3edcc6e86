package audio

// Pitch reference for note parsing
const (
	A4Frequency = 440.0 // Hz
	A4Midi      = 69
)

// Transport resolution used by notation parsing
const (
	BeatsPerMeasure = 4   // 4/4 time
	TicksPerBeat    = 192 // pulses per quarter note
)

// noteOffsets maps natural note letters to semitones above C.
var noteOffsets = map[byte]int{
	'C': 0,
	'D': 2,
	'E': 4,
	'F': 5,
	'G': 7,
	'A': 9,
	'B': 11,
}
