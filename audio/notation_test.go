package audio

import (
	"encoding/json"
	"errors"
	"math"
	"testing"
)

func TestParseNotation(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"0.4", 0.4},
		{"4n", 0.5},
		{"8n", 0.25},
		{"16n", 0.125},
		{"32n", 0.0625},
		{"4n.", 0.75},
		{"8t", 0.25 * 2 / 3},
		{"1m", 2},
		{"2m", 4},
		{"192i", 0.5},
		{"1:0:0", 2},
		{"0:2:2", 1.25},
		{"4hz", 0.25},
	}
	for _, tt := range tests {
		got, err := ParseNotation(tt.in, 120)
		if err != nil {
			t.Errorf("%q: unexpected error %v", tt.in, err)
			continue
		}
		if math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("%q: expected %v, got %v", tt.in, tt.want, got)
		}
	}
}

func TestParseNotation_Invalid(t *testing.T) {
	for _, in := range []string{"", "n", "4x", "abc", "1:2:3:4", "0hz", "4i."} {
		if _, err := ParseNotation(in, 120); err == nil {
			t.Errorf("%q: expected an error", in)
		}
	}
	if _, err := ParseNotation("4n", 0); err == nil {
		t.Error("Expected an error for zero tempo")
	}
}

func TestNoteMidi(t *testing.T) {
	tests := map[string]int{"C4": 60, "A4": 69, "C2": 36, "F#2": 42, "Bb3": 58, "c8": 108, "C-1": 0}
	for note, want := range tests {
		got, err := NoteMidi(note)
		if err != nil || got != want {
			t.Errorf("%s: expected %d, got %d (%v)", note, want, got, err)
		}
	}
	if _, err := NoteMidi("H2"); err == nil {
		t.Error("Expected an error for an unknown pitch")
	}
}

func TestNoteFrequency(t *testing.T) {
	f, err := NoteFrequency("A4")
	if err != nil || f != 440 {
		t.Errorf("Expected 440, got %v (%v)", f, err)
	}
	f, _ = NoteFrequency("A5")
	if math.Abs(f-880) > 1e-9 {
		t.Errorf("Expected 880, got %v", f)
	}
	f, _ = NoteFrequency("220")
	if f != 220 {
		t.Errorf("Expected bare number as Hz, got %v", f)
	}
}

func TestCentsRatio(t *testing.T) {
	if r := CentsRatio(-1200); math.Abs(r-0.5) > 1e-12 {
		t.Errorf("Expected an octave down, got %v", r)
	}
}

func TestDuration_JSON(t *testing.T) {
	tests := []struct {
		in   string
		want Duration
	}{
		{`0.4`, Secs(0.4)},
		{`"8n"`, Notation("8n")},
		{`"0.5"`, Secs(0.5)},
		{`null`, Duration{}},
	}
	for _, tt := range tests {
		var d Duration
		if err := json.Unmarshal([]byte(tt.in), &d); err != nil {
			t.Errorf("%s: unexpected error %v", tt.in, err)
			continue
		}
		if d != tt.want {
			t.Errorf("%s: expected %+v, got %+v", tt.in, tt.want, d)
		}
	}

	var d Duration
	if err := json.Unmarshal([]byte(`true`), &d); err == nil {
		t.Error("Expected an error for a boolean duration")
	}
}

func TestParseDescriptor(t *testing.T) {
	raw := `{
		"instrument": "MembraneSynth",
		"options": {"pitchDecay": 0.05, "octaves": 10},
		"effects": [{"type": "Reverb", "options": {"decay": 2}}],
		"duration": 0.4,
		"note": "C2"
	}`
	d, err := ParseDescriptor([]byte(raw))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if d.Instrument != MembraneSynth || d.Note != "C2" || d.Duration != Secs(0.4) {
		t.Errorf("Unexpected descriptor %+v", d)
	}
	if v, _ := d.Options.Number("octaves"); v != 10 {
		t.Errorf("Expected octaves 10, got %v", v)
	}
	if len(d.Effects) != 1 || d.Effects[0].Type != Reverb {
		t.Errorf("Unexpected effects %+v", d.Effects)
	}

	out, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("Unexpected marshal error: %v", err)
	}
	again, err := ParseDescriptor(out)
	if err != nil || again.Duration != d.Duration {
		t.Errorf("Expected duration to survive encoding, got %+v (%v)", again, err)
	}
}

func TestParseDescriptor_Invalid(t *testing.T) {
	for _, raw := range []string{
		`{`,
		`{"options": {}}`,
		`{"instrument": "Synth"}`,
		`{"instrument": "Synth", "options": {}, "effects": [{"options": {}}]}`,
	} {
		_, err := ParseDescriptor([]byte(raw))
		if !errors.Is(err, ErrInvalidDescriptor) {
			t.Errorf("%s: expected ErrInvalidDescriptor, got %v", raw, err)
		}
	}
}

func TestSoundDescriptor_OmitsZeroDuration(t *testing.T) {
	b, _ := json.Marshal(&SoundDescriptor{Instrument: Synth, Options: Options{}})
	if string(b) != `{"instrument":"Synth","options":{}}` {
		t.Errorf("Unexpected encoding %s", b)
	}
}
