package tui

import (
	"github.com/charmbracelet/lipgloss"

	"agentview/internal/session"
)

var (
	// Colors
	colorPrimary   = lipgloss.Color("12")  // bright blue
	colorDim       = lipgloss.Color("240") // gray
	colorHighlight = lipgloss.Color("11")  // bright yellow
	colorBorder    = lipgloss.Color("238") // dark gray

	// Input area
	styleInput = lipgloss.NewStyle().
			Foreground(colorPrimary).
			Bold(true)

	styleInputPrompt = lipgloss.NewStyle().
				Foreground(colorPrimary).
				Bold(true)

	// List items
	styleListSelected = lipgloss.NewStyle().
				Foreground(colorHighlight).
				Bold(true)

	// One color per provider so rows are scannable at a glance.
	providerStyles = map[session.Provider]lipgloss.Style{
		session.ProviderClaude:   lipgloss.NewStyle().Foreground(lipgloss.Color("12")), // blue
		session.ProviderCodex:    lipgloss.NewStyle().Foreground(lipgloss.Color("10")), // green
		session.ProviderGemini:   lipgloss.NewStyle().Foreground(lipgloss.Color("13")), // magenta
		session.ProviderOpenClaw: lipgloss.NewStyle().Foreground(lipgloss.Color("14")), // cyan
		session.ProviderAider:    lipgloss.NewStyle().Foreground(lipgloss.Color("11")), // yellow
		session.ProviderCursor:   lipgloss.NewStyle().Foreground(lipgloss.Color("9")),  // red
	}

	// Panels
	stylePanelBorder = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(colorBorder)

	styleActiveBorder = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(colorPrimary)

	// Status bar
	styleStatusBar = lipgloss.NewStyle().
			Foreground(colorDim).
			Padding(0, 1)
)

func providerLabel(p session.Provider) string {
	if st, ok := providerStyles[p]; ok {
		return st.Render(string(p))
	}
	return string(p)
}
