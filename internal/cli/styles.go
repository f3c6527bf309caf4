package cli

import "github.com/charmbracelet/lipgloss"

var (
	bannerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("229")).
			Background(lipgloss.Color("57")).
			Bold(true).
			Padding(0, 2)

	delayedBannerStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("229")).
				Background(lipgloss.Color("166")).
				Bold(true).
				Padding(0, 2)

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("81")).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("114")) // soft green

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("203")) // coral red

	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))
)
