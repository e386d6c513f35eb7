package replay

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Phase color scheme - each phase keeps a distinct, consistent color.
var (
	// Structural / metadata
	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("8")) // Gray - metadata

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("8")) // Gray - labels

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("15")) // White - values

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")) // White bold - headers

	// Teams
	goodStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("12")) // Blue - good

	evilStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9")) // Red - evil

	// Night phase - Magenta
	nightStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("13"))

	// Leader and proposals - Yellow
	leaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("11"))

	// Table talk - default white
	speechStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("15"))

	// Outcomes
	approveStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("10")) // Green

	rejectStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9")) // Red

	successStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("10")) // Green bold

	failStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("9")) // Red bold

	// Assassin endgame - Orange
	assassinStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("208"))

	// Timeline
	seqStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("8")).
			Width(4).
			Align(lipgloss.Right)

	roundStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("8")).
			Width(5)

	divider = lipgloss.NewStyle().
		Foreground(lipgloss.Color("8")).
		Render(strings.Repeat("━", 60))
)
