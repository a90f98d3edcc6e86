package audio

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ParseNotation converts a musical time expression into seconds at the
// given tempo. Supported forms:
//
//	"0.25"     seconds
//	"4n" "8t"  note values, optionally dotted ("4n.")
//	"2m"       measures
//	"96i"      ticks
//	"1:2:0"    bars:beats:sixteenths
//	"10hz"     one period of a frequency
func ParseNotation(s string, bpm float64) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("notation: empty")
	}
	if bpm <= 0 {
		return 0, fmt.Errorf("notation: invalid tempo %v", bpm)
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f, nil
	}

	beat := 60 / bpm
	lower := strings.ToLower(s)

	if strings.Contains(lower, ":") {
		parts := strings.Split(lower, ":")
		if len(parts) > 3 {
			return 0, fmt.Errorf("notation: bad transport time %q", s)
		}
		units := []float64{beat * BeatsPerMeasure, beat, beat / 4}
		total := 0.0
		for i, p := range parts {
			if p == "" {
				continue
			}
			v, err := strconv.ParseFloat(p, 64)
			if err != nil {
				return 0, fmt.Errorf("notation: bad transport time %q", s)
			}
			total += v * units[i]
		}
		return total, nil
	}

	if strings.HasSuffix(lower, "hz") {
		f, err := strconv.ParseFloat(strings.TrimSuffix(lower, "hz"), 64)
		if err != nil || f <= 0 {
			return 0, fmt.Errorf("notation: bad frequency %q", s)
		}
		return 1 / f, nil
	}

	dotted := strings.HasSuffix(lower, ".")
	body := strings.TrimSuffix(lower, ".")
	if len(body) < 2 {
		return 0, fmt.Errorf("notation: unrecognized %q", s)
	}
	unit := body[len(body)-1]
	v, err := strconv.ParseFloat(body[:len(body)-1], 64)
	if err != nil || v <= 0 {
		return 0, fmt.Errorf("notation: unrecognized %q", s)
	}

	var secs float64
	switch unit {
	case 'n':
		secs = beat * 4 / v
	case 't':
		secs = beat * 4 / v * 2 / 3
	case 'm':
		secs = beat * BeatsPerMeasure * v
	case 'i':
		secs = beat / TicksPerBeat * v
		if dotted {
			return 0, fmt.Errorf("notation: ticks cannot be dotted: %q", s)
		}
	default:
		return 0, fmt.Errorf("notation: unrecognized %q", s)
	}
	if dotted {
		secs *= 1.5
	}
	return secs, nil
}

// NoteFrequency converts scientific pitch notation ("C4", "F#2", "Bb3")
// to a frequency in Hz. A bare number is taken as Hz.
func NoteFrequency(note string) (float64, error) {
	note = strings.TrimSpace(note)
	if f, err := strconv.ParseFloat(note, 64); err == nil {
		return f, nil
	}
	midi, err := NoteMidi(note)
	if err != nil {
		return 0, err
	}
	return MidiFrequency(float64(midi)), nil
}

// NoteMidi converts scientific pitch notation to a MIDI note number.
func NoteMidi(note string) (int, error) {
	if note == "" {
		return 0, fmt.Errorf("note: empty")
	}
	offset, ok := noteOffsets[strings.ToUpper(note[:1])[0]]
	if !ok {
		return 0, fmt.Errorf("note: bad pitch %q", note)
	}
	i := 1
	for ; i < len(note); i++ {
		if note[i] == '#' {
			offset++
		} else if note[i] == 'b' {
			offset--
		} else {
			break
		}
	}
	oct, err := strconv.Atoi(note[i:])
	if err != nil {
		return 0, fmt.Errorf("note: bad octave in %q", note)
	}
	return (oct+1)*12 + offset, nil
}

// MidiFrequency converts a (fractional) MIDI note number to Hz.
func MidiFrequency(midi float64) float64 {
	return A4Frequency * math.Pow(2, (midi-A4Midi)/12)
}

// CentsRatio converts a detune in cents to a frequency ratio.
func CentsRatio(cents float64) float64 {
	return math.Pow(2, cents/1200)
}
