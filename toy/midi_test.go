//go:build !js

package toy

import (
	"testing"

	gomidi "gitlab.com/gomidi/midi/v2"

	"github.com/simukka/drumpal/audio"
)

func TestToy_HandleMIDI(t *testing.T) {
	toy, p, _ := newTestToy()
	if !toy.HandleMIDI(gomidi.NoteOn(9, 38, 100)) {
		t.Fatal("Expected note on to trigger")
	}
	if p.last().Sound.Instrument != audio.NoiseSynth {
		t.Errorf("Expected the snare, got %+v", p.last().Sound)
	}
	if toy.HandleMIDI(gomidi.NoteOn(9, 38, 0)) {
		t.Error("Expected zero velocity to be ignored")
	}
	if toy.HandleMIDI(gomidi.NoteOff(9, 38)) {
		t.Error("Expected note off to be ignored")
	}
}
