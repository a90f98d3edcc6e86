// Package kit holds drum pads, built-in sounds, saved kits and share links.
package kit

import "github.com/simukka/drumpal/audio"

// Pad is one button of the toy.
type Pad struct {
	ID     string                 `json:"id"`
	Name   string                 `json:"name"`
	Color  string                 `json:"color"`
	Prompt string                 `json:"soundPrompt"`
	Sound  *audio.SoundDescriptor `json:"toneJsConfig,omitempty"`
	SoundB *audio.SoundDescriptor `json:"toneJsConfigB,omitempty"`
	Morph  float64                `json:"morphValue"`
}

// Clone returns a deep copy of the pad.
func (p Pad) Clone() Pad {
	p.Sound = p.Sound.Clone()
	p.SoundB = p.SoundB.Clone()
	return p
}

// Request builds the audio request for one hit of the pad.
func (p Pad) Request(toySpeaker bool, battery float64) audio.Request {
	return audio.Request{
		Sound:      p.Sound,
		Morph:      p.SoundB,
		Mix:        p.Morph,
		ToySpeaker: toySpeaker,
		Battery:    battery,
	}
}

var defaultPads = []Pad{
	{ID: "kick", Name: "KICK", Color: "bg-red-500", Prompt: "A deep, punchy kick drum sound. 808 style."},
	{ID: "snare", Name: "SNARE", Color: "bg-sky-400", Prompt: "A crisp, snappy snare drum with a short burst of white noise."},
	{ID: "hihat_closed", Name: "C-HAT", Color: "bg-yellow-300", Prompt: "A short, metallic, closed hi-hat sound. Very crisp and tight."},
	{ID: "hihat_open", Name: "O-HAT", Color: "bg-lime-400", Prompt: "A shimmering, metallic open hi-hat sound with a medium decay."},
	{ID: "tom1", Name: "TOM", Color: "bg-orange-400", Prompt: "A high-pitched tom drum sound with a quick attack."},
	{ID: "clap", Name: "CLAP", Color: "bg-fuchsia-500", Prompt: "A classic 80s electronic clap sound, layered and punchy."},
	{ID: "cymbal_crash", Name: "CRASH", Color: "bg-teal-300", Prompt: "A bright crash cymbal sound with a long decay, like a 909."},
	{ID: "fx1", Name: "FX", Color: "bg-indigo-500", Prompt: "A glitchy, digital artifact sound, like a broken video game."},
}

// DefaultPads returns the eight factory pads loaded with the built-in
// presets.
func DefaultPads() []Pad {
	pads := make([]Pad, len(defaultPads))
	for i, p := range defaultPads {
		if preset := PresetByName(p.ID); preset != nil {
			p.Sound = preset.Sound.Clone()
		}
		pads[i] = p
	}
	return pads
}

// Find returns the pad with the given ID.
func Find(pads []Pad, id string) (Pad, bool) {
	for _, p := range pads {
		if p.ID == id {
			return p, true
		}
	}
	return Pad{}, false
}

// ClonePads deep copies a pad list.
func ClonePads(pads []Pad) []Pad {
	if pads == nil {
		return nil
	}
	out := make([]Pad, len(pads))
	for i, p := range pads {
		out[i] = p.Clone()
	}
	return out
}

// Layout is the pad grid, three columns wide. Empty strings are gaps.
var Layout = []string{
	"", "kick", "",
	"snare", "tom1", "clap",
	"hihat_closed", "hihat_open", "cymbal_crash",
	"", "fx1", "",
}

var colorHex = map[string]string{
	"bg-red-500":     "#EF4444",
	"bg-sky-400":     "#38BDF8",
	"bg-yellow-300":  "#FDE047",
	"bg-lime-400":    "#A3E635",
	"bg-orange-400":  "#FB923C",
	"bg-fuchsia-500": "#D946EF",
	"bg-teal-300":    "#5EEAD4",
	"bg-indigo-500":  "#6366F1",
}

// ColorHex returns the hex color for a pad color class, or "" when the
// class is unknown.
func ColorHex(class string) string {
	return colorHex[class]
}
