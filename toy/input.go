package toy

import "strings"

var keyToPad = map[string]string{
	"q": "hihat_closed",
	"w": "hihat_open",
	"e": "cymbal_crash",
	"a": "snare",
	"s": "tom1",
	"d": "clap",
	"c": "fx1",
	" ": "kick",
}

// KeyToPad returns the pad bound to a keyboard key. Letters are matched
// case-insensitively; "space" is accepted as well as " ".
func KeyToPad(key string) (string, bool) {
	if key == "space" {
		key = " "
	}
	id, ok := keyToPad[strings.ToLower(key)]
	return id, ok
}

// NoteToPad maps a General MIDI percussion note to a pad.
func NoteToPad(note uint8) string {
	switch note {
	case 35, 36:
		return "kick"
	case 38, 40:
		return "snare"
	case 42, 44:
		return "hihat_closed"
	case 46:
		return "hihat_open"
	case 41, 43, 45, 47, 48, 50:
		return "tom1"
	case 39:
		return "clap"
	case 49, 52, 55, 57:
		return "cymbal_crash"
	default:
		return "fx1"
	}
}

// Control keys shared by the terminal and browser front ends.
const (
	KeyToySpeaker = "t"
	KeyWellLoved  = "l"
	KeyRecord     = "r"
	KeyPlay       = "p"
	KeyStop       = "x"
	KeyMetronome  = "m"
	KeyEditSlot   = "b"
	KeyMorphDown  = "["
	KeyMorphUp    = "]"
	KeyPreset     = "o"
)

// HandleKey applies one key press: pad keys hit their pad, control keys
// flip switches or drive the recorder. Morph keys act on the last pad
// hit. It reports whether the key was bound.
func (t *Toy) HandleKey(key string) bool {
	if id, ok := KeyToPad(key); ok {
		t.TriggerPad(id)
		return true
	}
	switch strings.ToLower(key) {
	case KeyToySpeaker:
		t.SetToySpeaker(!t.ToySpeaker())
	case KeyWellLoved:
		t.SetWellLoved(!t.WellLoved())
	case KeyRecord:
		t.rec.Record()
	case KeyPlay:
		t.Play()
	case KeyStop:
		t.rec.Stop()
	case KeyMetronome:
		t.metro.Toggle()
	case KeyEditSlot:
		t.ToggleEditing()
	case KeyMorphDown:
		t.NudgeMorph(-MorphStep)
	case KeyMorphUp:
		t.NudgeMorph(MorphStep)
	case KeyPreset:
		t.NextPreset(t.LastPad())
	default:
		return false
	}
	return true
}
