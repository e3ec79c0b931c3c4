package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Theme bundles palette + symbols + box border.
// All UI helpers pull from `current`.
type Theme struct {
	Title, Muted, Accent, Success, Error, Pending lipgloss.Style
	Border                                        lipgloss.Border
	BorderColor                                   lipgloss.TerminalColor
	SymOK, SymFail, SymShip, SymPerishable        string
}

var current = classic()

func classic() Theme {
	return Theme{
		Title:   lipgloss.NewStyle().Bold(true),
		Muted:   lipgloss.NewStyle().Faint(true),
		Accent:  lipgloss.NewStyle().Foreground(lipgloss.Color("12")),
		Success: lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		Error:   lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
		Pending: lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		Border:  lipgloss.RoundedBorder(), BorderColor: lipgloss.Color("8"),
		SymOK: "✔", SymFail: "✖", SymShip: "⇪", SymPerishable: "⌛",
	}
}

func SetTheme(name string) {
	switch strings.ToLower(name) {
	case "neon":
		current = Theme{
			Title:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("13")),
			Muted:   lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
			Accent:  lipgloss.NewStyle().Foreground(lipgloss.Color("14")),
			Success: lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
			Error:   lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
			Pending: lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
			Border:  lipgloss.DoubleBorder(), BorderColor: lipgloss.Color("13"),
			SymOK: "✔", SymFail: "✖", SymShip: "⇪", SymPerishable: "⌛",
		}
	case "mono":
		plain := lipgloss.NewStyle()
		current = Theme{
			Title: plain, Muted: plain, Accent: plain, Success: plain, Error: plain, Pending: plain,
			Border: lipgloss.NormalBorder(), BorderColor: lipgloss.NoColor{},
			SymOK: "ok", SymFail: "x", SymShip: "S", SymPerishable: "P",
		}
	default: // classic
		current = classic()
	}
}

// Expose what renderers need
func Current() Theme { return current }
