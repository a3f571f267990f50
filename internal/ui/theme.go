package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Makepad-fr/task-tracker/internal/model"
)

// Theme bundles palette + symbols + box borders.
// All renderers pull from the Printer's theme.
type Theme struct {
	Name string

	Title, Muted, Accent, Success, Error, Pending lipgloss.Style

	Border           lipgloss.Border
	Frame            lipgloss.Style
	SymOK, SymFail   string
	BarFull, BarFree string

	// StatusIcons prefix the status label in tables.
	StatusIcons map[model.Status]string
}

// ThemeNames lists the accepted theme names.
func ThemeNames() []string { return []string{"classic", "neon", "mono"} }

var monoBorder = lipgloss.Border{
	Top: "-", Bottom: "-", Left: "|", Right: "|",
	TopLeft: "+", TopRight: "+", BottomLeft: "+", BottomRight: "+",
	MiddleLeft: "+", MiddleRight: "+", Middle: "+", MiddleTop: "+", MiddleBottom: "+",
}

// NewTheme builds the named theme for a renderer. Unknown names fall back
// to classic.
func NewTheme(name string, r *lipgloss.Renderer) Theme {
	if r == nil {
		r = lipgloss.DefaultRenderer()
	}
	s := r.NewStyle

	switch strings.ToLower(name) {
	case "neon":
		return Theme{
			Name:    "neon",
			Title:   s().Bold(true).Foreground(lipgloss.Color("13")), // bright magenta
			Muted:   s().Faint(true),
			Accent:  s().Foreground(lipgloss.Color("14")),
			Success: s().Foreground(lipgloss.Color("10")),
			Error:   s().Foreground(lipgloss.Color("9")).Bold(true),
			Pending: s().Foreground(lipgloss.Color("11")),
			Border:  lipgloss.RoundedBorder(),
			Frame:   framed(s(), lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("5")),
			SymOK:   "✔", SymFail: "✖",
			BarFull: "█", BarFree: "░",
			StatusIcons: map[model.Status]string{
				model.StatusTodo:       "◻",
				model.StatusInProgress: "◐",
				model.StatusDone:       "◼",
			},
		}
	case "mono":
		plain := s()
		return Theme{
			Name:  "mono",
			Title: plain, Muted: plain, Accent: plain, Success: plain, Error: plain, Pending: plain,
			Border:  monoBorder,
			Frame:   framed(s(), monoBorder),
			SymOK:   "", SymFail: "",
			BarFull: "#", BarFree: ".",
			StatusIcons: map[model.Status]string{
				model.StatusTodo:       "[ ]",
				model.StatusInProgress: "[~]",
				model.StatusDone:       "[x]",
			},
		}
	default: // classic
		return Theme{
			Name:    "classic",
			Title:   s().Bold(true),
			Muted:   s().Faint(true),
			Accent:  s().Foreground(lipgloss.Color("12")),
			Success: s().Foreground(lipgloss.Color("42")),
			Error:   s().Foreground(lipgloss.Color("9")).Bold(true),
			Pending: s().Foreground(lipgloss.Color("214")),
			Border:  lipgloss.NormalBorder(),
			Frame:   framed(s(), lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("8")),
			SymOK:   "✔", SymFail: "✖",
			BarFull: "█", BarFree: "░",
			StatusIcons: map[model.Status]string{
				model.StatusTodo:       "📋",
				model.StatusInProgress: "🔄",
				model.StatusDone:       "✅",
			},
		}
	}
}

func framed(s lipgloss.Style, b lipgloss.Border) lipgloss.Style {
	return s.Border(b).Padding(0, 1)
}

// StatusText is the icon plus label, e.g. "✅ Done".
func (t Theme) StatusText(s model.Status) string {
	icon := t.StatusIcons[s]
	if icon == "" {
		return s.Label()
	}
	return icon + " " + s.Label()
}

// StatusStyle colors a status cell.
func (t Theme) StatusStyle(s model.Status) lipgloss.Style {
	switch s {
	case model.StatusDone:
		return t.Success
	case model.StatusInProgress:
		return t.Pending
	default:
		return t.Muted
	}
}
