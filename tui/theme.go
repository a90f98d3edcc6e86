package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/simukka/drumpal/kit"
)

// Theme holds the terminal styling constants.
var Theme = struct {
	// LCD panel
	LCDForeground string
	LCDBackground string
	LCDDim        string

	// Pads
	PadText     string
	PadHitText  string
	PadHit      string
	PadFallback string
	PadWidth    int

	// Status
	LowBattery string
	Recording  string
	Playing    string
	Help       string
}{
	// LCD panel - green on black like the toy's screen
	LCDForeground: "#9F0",
	LCDBackground: "#111",
	LCDDim:        "#444",

	PadText:     "#000",
	PadHitText:  "#000",
	PadHit:      "#FFF",
	PadFallback: "#62F",
	PadWidth:    9,

	LowBattery: "#F63",
	Recording:  "#F33",
	Playing:    "#9F0",
	Help:       "#666",
}

// PadColor returns the terminal color for a pad color class.
func PadColor(class string) lipgloss.Color {
	if c := kit.ColorHex(class); c != "" {
		return lipgloss.Color(c)
	}
	return lipgloss.Color(Theme.PadFallback)
}
