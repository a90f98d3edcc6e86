//go:build !js

package toy

import (
	"fmt"

	gomidi "gitlab.com/gomidi/midi/v2"
)

// HandleMIDI triggers the pad for a note-on message. Other messages and
// note-ons with zero velocity are ignored.
func (t *Toy) HandleMIDI(msg gomidi.Message) bool {
	var channel, note, velocity uint8
	if !msg.GetNoteOn(&channel, &note, &velocity) || velocity == 0 {
		return false
	}
	return t.TriggerPad(NoteToPad(note))
}

// MIDIInPorts lists the MIDI input ports of the registered driver.
func MIDIInPorts() []string {
	var names []string
	for _, p := range gomidi.GetInPorts() {
		names = append(names, p.String())
	}
	return names
}

// ListenMIDI plays pads from a MIDI input port. The returned function
// stops listening.
func (t *Toy) ListenMIDI(port string) (func(), error) {
	in, err := gomidi.FindInPort(port)
	if err != nil {
		return nil, fmt.Errorf("find midi port %q: %w", port, err)
	}
	stop, err := gomidi.ListenTo(in, func(msg gomidi.Message, timestampms int32) {
		t.HandleMIDI(msg)
	})
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	t.log.Info("listening for midi", "port", in.String())
	return stop, nil
}
