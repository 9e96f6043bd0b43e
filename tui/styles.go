package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"loan-simulator/render"
)

var (
	activeTabStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(render.ColorText).
			Background(render.ColorAccent).
			Padding(0, 1)

	tabStyle = lipgloss.NewStyle().
			Foreground(render.ColorTextMuted).
			Padding(0, 1)

	statusStyle = lipgloss.NewStyle().Foreground(render.ColorTextDim)
	mutedStyle  = lipgloss.NewStyle().Foreground(render.ColorTextMuted)
	errorStyle  = lipgloss.NewStyle().Foreground(render.ColorRed)
)

func renderTabBar(active int) string {
	parts := make([]string, len(tabNames))
	for i, name := range tabNames {
		label := string(rune('1'+i)) + " " + name
		if i == active {
			parts[i] = activeTabStyle.Render(label)
		} else {
			parts[i] = tabStyle.Render(label)
		}
	}
	return " " + strings.Join(parts, " ")
}
