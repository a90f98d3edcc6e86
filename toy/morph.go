package toy

import (
	"math"
	"strings"

	"github.com/simukka/drumpal/audio"
	"github.com/simukka/drumpal/kit"
)

// Slot names one of a pad's two sounds. A hit blends from A toward B by
// the pad's morph value.
type Slot int

const (
	SlotA Slot = iota
	SlotB
)

func (s Slot) String() string {
	if s == SlotB {
		return "B"
	}
	return "A"
}

// ParseSlot reads "A" or "B" in either case.
func ParseSlot(s string) (Slot, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "A":
		return SlotA, true
	case "B":
		return SlotB, true
	}
	return SlotA, false
}

// MorphStep is how far one key press moves a pad's morph.
const MorphStep = 0.1

// Editing returns the slot new sounds are written to.
func (t *Toy) Editing() Slot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.editing
}

// SetEditing chooses the slot new sounds are written to.
func (t *Toy) SetEditing(s Slot) {
	t.mu.Lock()
	t.editing = s
	t.mu.Unlock()
}

// ToggleEditing flips between A and B and returns the new slot.
func (t *Toy) ToggleEditing() Slot {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.editing == SlotA {
		t.editing = SlotB
	} else {
		t.editing = SlotA
	}
	return t.editing
}

// SetSound stores sound in one of the pad's slots. The prompt is kept
// only for slot A, since it is what a shared kit regenerates from. A nil
// sound in slot B turns morphing off for the pad.
func (t *Toy) SetSound(padID string, slot Slot, prompt string, sound *audio.SoundDescriptor) bool {
	if slot == SlotA && sound == nil {
		return false
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	i := t.padIndex(padID)
	if i < 0 {
		return false
	}
	t.setSlot(i, slot, sound.Clone())
	if slot == SlotA && prompt != "" {
		t.pads[i].Prompt = prompt
	}
	return true
}

// SetMorph sets how far the pad blends from sound A toward sound B,
// clamped to 0..1.
func (t *Toy) SetMorph(padID string, v float64) bool {
	if math.IsNaN(v) {
		return false
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	i := t.padIndex(padID)
	if i < 0 {
		return false
	}
	t.pads[i].Morph = clampMorph(v)
	return true
}

// NudgeMorph moves the last pad's morph by delta and returns the new
// value.
func (t *Toy) NudgeMorph(delta float64) (float64, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	i := t.padIndex(t.lastPad)
	if i < 0 {
		return 0, false
	}
	v := clampMorph(math.Round((t.pads[i].Morph+delta)*100) / 100)
	t.pads[i].Morph = v
	return v, true
}

// NextPreset loads the next built-in drum sound into the pad's editing
// slot and returns the preset name.
func (t *Toy) NextPreset(padID string) (string, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	i := t.padIndex(padID)
	if i < 0 {
		return "", false
	}
	n := len(kit.PresetLibrary)
	for tries := 0; tries < n; tries++ {
		p := kit.PresetLibrary[t.preset%n]
		t.preset++
		if p.Category == kit.CategoryUtility {
			continue
		}
		t.setSlot(i, t.editing, p.Sound.Clone())
		return p.Name, true
	}
	return "", false
}

// Callers hold t.mu.
func (t *Toy) padIndex(id string) int {
	for i := range t.pads {
		if t.pads[i].ID == id {
			return i
		}
	}
	return -1
}

// Callers hold t.mu.
func (t *Toy) setSlot(i int, slot Slot, sound *audio.SoundDescriptor) {
	if slot == SlotB {
		t.pads[i].SoundB = sound
		return
	}
	t.pads[i].Sound = sound
}

func clampMorph(v float64) float64 {
	return math.Min(math.Max(v, 0), 1)
}
