package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// PanelString frames lines in the current theme's border.
func PanelString(lines []string) string {
	t := Current()
	border := lipgloss.NewStyle().
		Border(t.Border).
		BorderForeground(t.BorderColor).
		Padding(0, 1)
	return border.Render(strings.Join(lines, "\n"))
}

// Panel draws a framed box on Out.
func Panel(lines []string) {
	fmt.Fprintln(Out, PanelString(lines))
}
