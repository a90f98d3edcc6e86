package kit

import (
	"sort"

	"github.com/simukka/drumpal/audio"
)

// Preset categories.
const (
	CategoryDrum    = "Drum"
	CategoryCymbal  = "Cymbal"
	CategoryFX      = "FX"
	CategoryUtility = "Utility"
)

// Preset is a named built-in sound.
type Preset struct {
	ID          int    // Preset ID
	Name        string // Lookup name, matches the pad ID it belongs to
	Category    string // Category for grouping (Drum, Cymbal, FX, Utility)
	Description string // What the sound is meant to be
	Sound       *audio.SoundDescriptor
}

// PresetInfo holds preset data for listings.
type PresetInfo struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Category    string `json:"category"`
	Description string `json:"description"`
}

func env(attack, decay, sustain, release float64) audio.Options {
	return audio.Options{"attack": attack, "decay": decay, "sustain": sustain, "release": release}
}

// PresetLibrary is the built-in sound set. Every default pad has an
// entry so a kit plays before anything has been generated.
var PresetLibrary = []*Preset{
	{ID: 0, Name: "kick", Category: CategoryDrum, Description: "Deep 808 style kick",
		Sound: &audio.SoundDescriptor{
			Instrument: audio.MembraneSynth,
			Options: audio.Options{
				"pitchDecay": 0.05,
				"octaves":    10.0,
				"oscillator": audio.Options{"type": "sine"},
				"envelope":   env(0.001, 0.4, 0.01, 1.4),
			},
			Duration: audio.Notation("8n"),
			Note:     "C1",
		}},
	{ID: 1, Name: "snare", Category: CategoryDrum, Description: "Crisp snare, short white noise burst",
		Sound: &audio.SoundDescriptor{
			Instrument: audio.NoiseSynth,
			Options: audio.Options{
				"noise":    audio.Options{"type": "white"},
				"envelope": env(0.001, 0.1, 0, 0.05),
			},
			Duration: audio.Notation("16n"),
		}},
	{ID: 2, Name: "hihat_closed", Category: CategoryCymbal, Description: "Tight closed hi-hat",
		Sound: &audio.SoundDescriptor{
			Instrument: audio.MetalSynth,
			Options: audio.Options{
				"frequency":       200.0,
				"harmonicity":     5.1,
				"modulationIndex": 32.0,
				"resonance":       4000.0,
				"octaves":         1.5,
				"envelope":        env(0.001, 0.05, 0, 0.01),
			},
			Duration: audio.Notation("32n"),
		}},
	{ID: 3, Name: "hihat_open", Category: CategoryCymbal, Description: "Shimmering open hi-hat",
		Sound: &audio.SoundDescriptor{
			Instrument: audio.MetalSynth,
			Options: audio.Options{
				"frequency":       200.0,
				"harmonicity":     5.1,
				"modulationIndex": 32.0,
				"resonance":       4000.0,
				"octaves":         1.5,
				"envelope":        env(0.001, 0.3, 0, 0.2),
			},
			Duration: audio.Notation("8n"),
		}},
	{ID: 4, Name: "tom1", Category: CategoryDrum, Description: "High tom with a quick attack",
		Sound: &audio.SoundDescriptor{
			Instrument: audio.MembraneSynth,
			Options: audio.Options{
				"pitchDecay": 0.02,
				"octaves":    4.0,
				"envelope":   env(0.001, 0.25, 0, 0.3),
			},
			Duration: audio.Notation("8n"),
			Note:     "G2",
		}},
	{ID: 5, Name: "clap", Category: CategoryDrum, Description: "Layered 80s electronic clap",
		Sound: &audio.SoundDescriptor{
			Instrument: audio.NoiseSynth,
			Options: audio.Options{
				"noise":    audio.Options{"type": "pink"},
				"envelope": env(0.005, 0.15, 0, 0.1),
			},
			Effects: []audio.EffectDescriptor{
				{Type: audio.Reverb, Options: audio.Options{"decay": 0.8, "wet": 0.3}},
			},
			Duration: audio.Notation("16n"),
		}},
	{ID: 6, Name: "cymbal_crash", Category: CategoryCymbal, Description: "Bright 909 crash with a long decay",
		Sound: &audio.SoundDescriptor{
			Instrument: audio.MetalSynth,
			Options: audio.Options{
				"frequency":       300.0,
				"harmonicity":     5.1,
				"modulationIndex": 40.0,
				"resonance":       5000.0,
				"octaves":         1.5,
				"envelope":        env(0.001, 1.2, 0, 1.5),
			},
			Duration: audio.Secs(1.2),
		}},
	{ID: 7, Name: "fx1", Category: CategoryFX, Description: "Glitchy broken video game artifact",
		Sound: &audio.SoundDescriptor{
			Instrument: audio.FMSynth,
			Options: audio.Options{
				"harmonicity":     3.01,
				"modulationIndex": 14.0,
				"envelope":        env(0.01, 0.2, 0.2, 0.3),
			},
			Effects: []audio.EffectDescriptor{
				{Type: audio.BitCrusher, Options: audio.Options{"bits": 4.0}},
				{Type: audio.FeedbackDelay, Options: audio.Options{"delayTime": "16n", "feedback": 0.4}},
			},
			Duration: audio.Notation("8n"),
			Note:     "C5",
		}},
	{ID: 8, Name: "metronome", Category: CategoryUtility, Description: "Short high click for the metronome",
		Sound: &audio.SoundDescriptor{
			Instrument: audio.Synth,
			Options: audio.Options{
				"oscillator": audio.Options{"type": "sine"},
				"envelope":   env(0.001, 0.05, 0, 0.1),
			},
			Duration: audio.Notation("32n"),
			Note:     "C8",
		}},
}

// GetPreset returns a preset by ID.
func GetPreset(id int) *Preset {
	if id >= 0 && id < len(PresetLibrary) {
		return PresetLibrary[id]
	}
	return nil
}

// PresetByName returns the preset with the given name, or nil.
func PresetByName(name string) *Preset {
	for _, p := range PresetLibrary {
		if p.Name == name {
			return p
		}
	}
	return nil
}

// PresetsByCategory returns all presets in a category.
func PresetsByCategory(category string) []*Preset {
	var result []*Preset
	for _, p := range PresetLibrary {
		if p.Category == category {
			result = append(result, p)
		}
	}
	return result
}

// AllPresetInfo returns info for every preset, sorted by category then ID.
func AllPresetInfo() []PresetInfo {
	infos := make([]PresetInfo, 0, len(PresetLibrary))
	for _, p := range PresetLibrary {
		infos = append(infos, PresetInfo{ID: p.ID, Name: p.Name, Category: p.Category, Description: p.Description})
	}
	sort.Slice(infos, func(i, j int) bool {
		if infos[i].Category != infos[j].Category {
			return infos[i].Category < infos[j].Category
		}
		return infos[i].ID < infos[j].ID
	})
	return infos
}

// MetronomeTick returns a fresh copy of the metronome click.
func MetronomeTick() *audio.SoundDescriptor {
	return PresetByName("metronome").Sound.Clone()
}
