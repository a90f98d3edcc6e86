// Package tui is a terminal front end for the drum toy.
package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/simukka/drumpal/kit"
	"github.com/simukka/drumpal/toy"
)

const flashTime = 120 * time.Millisecond

type Model struct {
	Toy      *toy.Toy
	hits     chan string
	flash    string
	quitting bool
}

// HitMsg reports a pad that sounded, from a key, MIDI or playback.
type HitMsg string

type clearFlashMsg struct{ pad string }

// NewModel wires a model to the toy's hit notifications.
func NewModel(t *toy.Toy) Model {
	hits := make(chan string, 16)
	t.OnHit(func(padID string) {
		select {
		case hits <- padID:
		default:
		}
	})
	return Model{Toy: t, hits: hits}
}

func ListenForHits(hits <-chan string) tea.Cmd {
	return func() tea.Msg {
		return HitMsg(<-hits)
	}
}

func (m Model) Init() tea.Cmd {
	return ListenForHits(m.hits)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "esc", "ctrl+c":
			m.quitting = true
			m.Toy.Close()
			return m, tea.Quit

		case "+", "=":
			m.Toy.SetBPM(m.Toy.BPM() + 5)

		case "-", "_":
			m.Toy.SetBPM(m.Toy.BPM() - 5)

		default:
			m.Toy.HandleKey(msg.String())
		}

	case HitMsg:
		m.flash = string(msg)
		pad := m.flash
		return m, tea.Batch(
			ListenForHits(m.hits),
			tea.Tick(flashTime, func(time.Time) tea.Msg { return clearFlashMsg{pad} }),
		)

	case clearFlashMsg:
		if m.flash == msg.pad {
			m.flash = ""
		}
	}

	return m, nil
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	lcdStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(Theme.LCDForeground)).
		Background(lipgloss.Color(Theme.LCDBackground)).
		Padding(0, 1)
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(Theme.Help))

	var out strings.Builder
	out.WriteString("\n")
	out.WriteString(lcdStyle.Render(m.lcd()))
	out.WriteString("\n\n")
	out.WriteString(m.grid())
	out.WriteString("\n\n")
	out.WriteString(dimStyle.Render("qwe asd c space:pads  t:toy  l:loved  r:rec  p:play  x:stop  m:metro  +/-:tempo\nb:edit A/B  o:preset  [/]:morph  esc:quit"))
	return out.String()
}

// lcd renders the status line: last pad, tempo, battery, switches and
// the morph of the last pad.
func (m Model) lcd() string {
	last := "READY"
	morph := 0.0
	if id := m.Toy.LastPad(); id != "" {
		if pad, ok := kit.Find(m.Toy.Pads(), id); ok {
			last = pad.Name
			morph = pad.Morph
		}
	}

	battery := fmt.Sprintf("BAT %3.0f%%", m.Toy.Battery())
	if m.Toy.LowBattery() {
		battery = lipgloss.NewStyle().Foreground(lipgloss.Color(Theme.LowBattery)).Render(battery)
	}

	state := m.Toy.Recorder().State()
	stateText := state.String()
	switch state {
	case toy.Recording:
		stateText = lipgloss.NewStyle().Foreground(lipgloss.Color(Theme.Recording)).Render(stateText)
	case toy.Playing:
		stateText = lipgloss.NewStyle().Foreground(lipgloss.Color(Theme.Playing)).Render(stateText)
	}

	flags := []string{flag("TOY", m.Toy.ToySpeaker()), flag("LOVED", m.Toy.WellLoved()), flag("METRO", m.Toy.Metronome().On())}
	edit := fmt.Sprintf("EDIT %s A%3.0f%%B", m.Toy.Editing(), morph*100)
	return fmt.Sprintf("%-6s  %3.0fbpm  %s  %s  %s  %s", last, m.Toy.BPM(), battery, stateText, strings.Join(flags, " "), edit)
}

func flag(name string, on bool) string {
	if on {
		return name
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(Theme.LCDDim)).Render(name)
}

func (m Model) grid() string {
	pads := m.Toy.Pads()
	blank := lipgloss.NewStyle().Width(Theme.PadWidth + 1).Render("")

	var rows []string
	for i := 0; i < len(kit.Layout); i += 3 {
		var cells []string
		for _, id := range kit.Layout[i : i+3] {
			pad, ok := kit.Find(pads, id)
			if !ok {
				cells = append(cells, blank)
				continue
			}
			cells = append(cells, m.padCell(pad))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (m Model) padCell(pad kit.Pad) string {
	style := lipgloss.NewStyle().
		Width(Theme.PadWidth).
		Align(lipgloss.Center).
		Margin(0, 1, 0, 0).
		Foreground(lipgloss.Color(Theme.PadText)).
		Background(PadColor(pad.Color))
	if pad.ID == m.flash {
		style = style.
			Foreground(lipgloss.Color(Theme.PadHitText)).
			Background(lipgloss.Color(Theme.PadHit))
	}
	label := pad.Name
	if pad.Sound == nil {
		label = "..."
	}
	return style.Render(label)
}

// Run drives the toy from the terminal until the user quits.
func Run(t *toy.Toy) error {
	p := tea.NewProgram(NewModel(t), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
