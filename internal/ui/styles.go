package ui

import "github.com/charmbracelet/lipgloss"

// Interactive screen styles. The palette matches the terminal replay dump
// so both renderings of a game read the same.
var (
	// Chrome
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15"))

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("8")) // Gray - status line

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("8"))

	helpKeyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("15"))

	errorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("9"))

	// Connection states
	connectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("10")) // Green

	connectingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("11")) // Yellow

	disconnectedStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("9")) // Red

	// Player cards
	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("8")).
			Padding(0, 1)

	cardLeaderStyle = cardStyle.
			BorderForeground(lipgloss.Color("11")) // Yellow - leader

	cardTeamStyle = cardStyle.
			BorderForeground(lipgloss.Color("14")) // Cyan - on team

	nameStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15"))

	roleHiddenStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("8"))

	goodRoleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("12")) // Blue - good

	evilRoleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9")) // Red - evil

	thinkingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("13")) // Magenta

	// Speech bubbles
	bubbleStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("8")).
			Padding(0, 1)

	// Score and tracks
	scoreGoodStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("12"))

	scoreEvilStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("9"))

	trackWonStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("10"))

	trackLostStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("9"))

	trackOpenStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("8"))

	phaseStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("13"))

	godStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("208")) // Orange - god mode tag

	// Event feed
	feedTimeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("8"))

	feedSecretStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("208"))

	// History screen
	historyHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("15")).
				Underline(true)

	winGoodStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("12"))

	winEvilStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9"))
)
