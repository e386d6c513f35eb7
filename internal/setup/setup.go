// Package setup provides the interactive setup wizard for the viewer.
package setup

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/avalonarena/spectate/internal/config"
)

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("99")).
			MarginBottom(1)

	subtitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			MarginBottom(1)

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("170")).
			Bold(true)

	normalStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("82"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39"))
)

// Step represents a setup wizard step
type Step int

const (
	StepWelcome Step = iota
	StepServerHost
	StepServerPort
	StepInterval
	StepGodMode
	StepTap
	StepConfirm
	StepWriteFiles
	StepComplete
)

// Model is the bubbletea model for the setup wizard
type Model struct {
	step      Step
	cfg       *config.Config
	path      string
	cursor    int
	textInput textinput.Model
	err       error
	width     int
	height    int

	// Edit mode - true if loading from an existing config file
	editMode bool

	// Results
	filesWritten []string
}

// New creates a new setup model writing to path.
func New(path string) Model {
	if path == "" {
		path = config.DefaultFile
	}

	ti := textinput.New()
	ti.Focus()
	ti.CharLimit = 256
	ti.Width = 50

	m := Model{
		step:      StepWelcome,
		path:      path,
		textInput: ti,
		cfg:       config.Default(),
	}

	// Try to load the existing configuration so current values pre-fill
	if cfg, err := config.LoadFile(path); err == nil {
		m.cfg = cfg
		m.editMode = true
	}

	return m
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

type filesWrittenMsg struct {
	files []string
}

type errMsg struct {
	error
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case filesWrittenMsg:
		m.filesWritten = msg.files
		m.step = StepComplete
		return m, nil
	case errMsg:
		m.err = msg.error
		m.step = StepComplete
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		// Text input steps capture all keys except ctrl+c and enter
		if m.isTextInputStep() {
			switch msg.String() {
			case "ctrl+c":
				return m, tea.Quit
			case "enter":
				return m.handleEnter()
			default:
				var cmd tea.Cmd
				m.textInput, cmd = m.textInput.Update(msg)
				return m, cmd
			}
		}

		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "q":
			if m.step == StepWelcome || m.step == StepComplete {
				return m, tea.Quit
			}
			// Go back
			if m.step > StepWelcome {
				m.step = m.previousStep()
				m.cursor = 0
			}
			return m, nil

		case "enter":
			return m.handleEnter()

		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
			return m, nil

		case "down", "j":
			if m.cursor < m.maxCursorForStep() {
				m.cursor++
			}
			return m, nil
		}
	}

	return m, nil
}

func (m Model) previousStep() Step {
	if m.step <= StepWelcome {
		return StepWelcome
	}
	return m.step - 1
}

func (m Model) maxCursorForStep() int {
	switch m.step {
	case StepInterval:
		return len(intervalOptions()) - 1
	case StepGodMode:
		return 1
	case StepConfirm:
		return 1
	}
	return 0
}

func (m Model) isTextInputStep() bool {
	switch m.step {
	case StepServerHost, StepServerPort, StepTap:
		return true
	}
	return false
}

func (m Model) handleEnter() (tea.Model, tea.Cmd) {
	switch m.step {
	case StepWelcome:
		m.step = StepServerHost
		m.textInput.SetValue(m.cfg.Server.Host)
		m.textInput.Placeholder = "localhost"
		m.textInput.Focus()

	case StepServerHost:
		host := strings.TrimSpace(m.textInput.Value())
		if host != "" {
			m.cfg.Server.Host = host
		}
		m.err = nil
		m.step = StepServerPort
		m.textInput.SetValue(strconv.Itoa(m.cfg.Server.Port))
		m.textInput.Placeholder = "8080"

	case StepServerPort:
		port, err := strconv.Atoi(strings.TrimSpace(m.textInput.Value()))
		if err != nil || port < 1 || port > 65535 {
			m.err = fmt.Errorf("port must be a number between 1 and 65535")
			return m, nil
		}
		m.cfg.Server.Port = port
		m.err = nil
		m.step = StepInterval
		m.cursor = m.findIntervalIndex()

	case StepInterval:
		options := intervalOptions()
		if m.cursor >= 0 && m.cursor < len(options) {
			m.cfg.Playback.BaseIntervalMs = options[m.cursor].ms
		}
		m.step = StepGodMode
		if m.cfg.UI.GodMode {
			m.cursor = 1
		} else {
			m.cursor = 0
		}

	case StepGodMode:
		m.cfg.UI.GodMode = m.cursor == 1
		m.step = StepTap
		m.textInput.SetValue(m.cfg.Tap.URL)
		m.textInput.Placeholder = "nats://localhost:4222"

	case StepTap:
		url := strings.TrimSpace(m.textInput.Value())
		m.cfg.Tap.URL = url
		m.cfg.Tap.Enabled = url != ""
		m.step = StepConfirm
		m.cursor = 0

	case StepConfirm:
		if m.cursor == 0 {
			m.step = StepWriteFiles
			return m, m.writeFiles()
		}
		// Go back to the first question
		m.step = StepServerHost
		m.textInput.SetValue(m.cfg.Server.Host)

	case StepComplete:
		return m, tea.Quit
	}

	return m, nil
}

// intervalOption is one auto-play pacing choice
type intervalOption struct {
	ms   int
	name string
	desc string
}

func intervalOptions() []intervalOption {
	return []intervalOption{
		{1000, "1.0s", "brisk, for games you have seen before"},
		{1500, "1.5s", "default"},
		{2000, "2.0s", "relaxed"},
		{3000, "3.0s", "spectator commentary pace"},
	}
}

func (m Model) findIntervalIndex() int {
	for i, opt := range intervalOptions() {
		if opt.ms == m.cfg.Playback.BaseIntervalMs {
			return i
		}
	}
	return 1
}

func (m Model) writeFiles() tea.Cmd {
	return func() tea.Msg {
		content := m.generateTOML()
		if err := os.WriteFile(m.path, []byte(content), 0644); err != nil {
			return errMsg{err}
		}
		return filesWrittenMsg{[]string{m.path}}
	}
}

func (m Model) generateTOML() string {
	var sb strings.Builder

	sb.WriteString("# Spectate Configuration\n")
	sb.WriteString("# Generated by: spectate setup\n\n")

	sb.WriteString("[server]\n")
	sb.WriteString(fmt.Sprintf("host = %q\n", m.cfg.Server.Host))
	sb.WriteString(fmt.Sprintf("port = %d\n", m.cfg.Server.Port))
	if m.cfg.Server.URL != "" {
		sb.WriteString(fmt.Sprintf("url = %q\n", m.cfg.Server.URL))
	}
	sb.WriteString("\n")

	sb.WriteString("# Auto-play pacing\n")
	sb.WriteString("[playback]\n")
	sb.WriteString(fmt.Sprintf("base_interval_ms = %d\n", m.cfg.Playback.BaseIntervalMs))
	sb.WriteString(fmt.Sprintf("speech_multiplier = %g\n", m.cfg.Playback.SpeechMultiplier))
	speeds := make([]string, len(m.cfg.Playback.Speeds))
	for i, s := range m.cfg.Playback.Speeds {
		speeds[i] = fmt.Sprintf("%g", s)
	}
	sb.WriteString(fmt.Sprintf("speeds = [%s]\n", strings.Join(speeds, ", ")))
	sb.WriteString("\n")

	sb.WriteString("# Live reconnect backoff\n")
	sb.WriteString("[reconnect]\n")
	sb.WriteString(fmt.Sprintf("base_delay_ms = %d\n", m.cfg.Reconnect.BaseDelayMs))
	sb.WriteString(fmt.Sprintf("max_delay_ms = %d\n", m.cfg.Reconnect.MaxDelayMs))
	sb.WriteString(fmt.Sprintf("factor = %g\n", m.cfg.Reconnect.Factor))
	sb.WriteString("\n")

	sb.WriteString("[ui]\n")
	sb.WriteString(fmt.Sprintf("god_mode = %t\n", m.cfg.UI.GodMode))
	sb.WriteString(fmt.Sprintf("speech_ttl_ms = %d\n", m.cfg.UI.SpeechTTLMs))
	sb.WriteString(fmt.Sprintf("wrap_width = %d\n", m.cfg.UI.WrapWidth))
	sb.WriteString("\n")

	if m.cfg.Tap.URL != "" {
		sb.WriteString("# Republish inbound events to NATS for other tools\n")
		sb.WriteString("[tap]\n")
		sb.WriteString(fmt.Sprintf("enabled = %t\n", m.cfg.Tap.Enabled))
		sb.WriteString(fmt.Sprintf("url = %q\n", m.cfg.Tap.URL))
		sb.WriteString(fmt.Sprintf("subject = %q\n", m.cfg.Tap.Subject))
		sb.WriteString("\n")
	}

	if m.cfg.Roles.Catalog != "" {
		sb.WriteString("# Role catalog override\n")
		sb.WriteString("[roles]\n")
		sb.WriteString(fmt.Sprintf("catalog = %q\n", m.cfg.Roles.Catalog))
		sb.WriteString("\n")
	}

	return sb.String()
}

// View renders the current step
func (m Model) View() string {
	var s strings.Builder

	switch m.step {
	case StepWelcome:
		s.WriteString(m.viewWelcome())
	case StepServerHost:
		s.WriteString(m.viewServerHost())
	case StepServerPort:
		s.WriteString(m.viewServerPort())
	case StepInterval:
		s.WriteString(m.viewInterval())
	case StepGodMode:
		s.WriteString(m.viewGodMode())
	case StepTap:
		s.WriteString(m.viewTap())
	case StepConfirm:
		s.WriteString(m.viewConfirm())
	case StepWriteFiles:
		s.WriteString(m.viewWriting())
	case StepComplete:
		s.WriteString(m.viewComplete())
	}

	return s.String()
}

func (m Model) viewWelcome() string {
	var s strings.Builder
	s.WriteString(titleStyle.Render("Spectate Setup"))
	s.WriteString("\n\n")
	if m.editMode {
		s.WriteString(infoStyle.Render("Found existing configuration: " + m.path))
		s.WriteString("\n\n")
		s.WriteString(normalStyle.Render("This wizard will help you edit your configuration."))
		s.WriteString("\n")
		s.WriteString(normalStyle.Render("Current values will be pre-filled."))
		s.WriteString("\n\n")
	} else {
		s.WriteString(normalStyle.Render("This wizard will help you configure the viewer."))
		s.WriteString("\n\n")
	}
	s.WriteString(dimStyle.Render("Press Enter to continue, q to quit"))
	return s.String()
}

func (m Model) viewServerHost() string {
	var s strings.Builder
	s.WriteString(titleStyle.Render("Game Server") + "\n")
	s.WriteString(subtitleStyle.Render("Host the agent game server listens on") + "\n\n")
	s.WriteString(m.textInput.View() + "\n\n")
	s.WriteString(dimStyle.Render("AVALON_HOST overrides this at run time"))
	return s.String()
}

func (m Model) viewServerPort() string {
	var s strings.Builder
	s.WriteString(titleStyle.Render("Server Port") + "\n")
	s.WriteString(subtitleStyle.Render("Port of the websocket endpoint") + "\n\n")
	s.WriteString(m.textInput.View() + "\n\n")
	if m.err != nil {
		s.WriteString(errorStyle.Render(m.err.Error()) + "\n\n")
	}
	s.WriteString(dimStyle.Render("AVALON_PORT overrides this at run time"))
	return s.String()
}

func (m Model) viewInterval() string {
	var s strings.Builder
	s.WriteString(titleStyle.Render("Playback Pace") + "\n")
	s.WriteString(subtitleStyle.Render("How long auto-play dwells on each step at 1x") + "\n\n")

	for i, opt := range intervalOptions() {
		cursor := "  "
		style := normalStyle
		if i == m.cursor {
			cursor = "> "
			style = selectedStyle
		}
		s.WriteString(cursor + style.Render(opt.name) + " - " + dimStyle.Render(opt.desc) + "\n")
	}

	s.WriteString("\n" + dimStyle.Render("↑/↓ to move, Enter to select, q to go back"))
	return s.String()
}

func (m Model) viewGodMode() string {
	var s strings.Builder
	s.WriteString(titleStyle.Render("Default Visibility") + "\n")
	s.WriteString(subtitleStyle.Render("What the viewer shows before the game ends") + "\n\n")

	options := []struct {
		name string
		desc string
	}{
		{"spectator", "roles and night knowledge stay hidden"},
		{"god mode", "everything revealed from the start"},
	}
	for i, opt := range options {
		cursor := "  "
		style := normalStyle
		if i == m.cursor {
			cursor = "> "
			style = selectedStyle
		}
		s.WriteString(cursor + style.Render(opt.name) + " - " + dimStyle.Render(opt.desc) + "\n")
	}

	s.WriteString("\n" + dimStyle.Render("↑/↓ to move, Enter to select, q to go back"))
	return s.String()
}

func (m Model) viewTap() string {
	var s strings.Builder
	s.WriteString(titleStyle.Render("Event Tap") + "\n")
	s.WriteString(subtitleStyle.Render("NATS URL to republish inbound events to") + "\n\n")
	s.WriteString(m.textInput.View() + "\n\n")
	s.WriteString(dimStyle.Render("Leave empty to disable the tap"))
	return s.String()
}

func (m Model) viewConfirm() string {
	var s strings.Builder
	s.WriteString(titleStyle.Render("Configuration Summary") + "\n\n")

	s.WriteString(normalStyle.Render("Server: ") + selectedStyle.Render(fmt.Sprintf("%s:%d", m.cfg.Server.Host, m.cfg.Server.Port)) + "\n")
	s.WriteString(normalStyle.Render("Pace: ") + selectedStyle.Render(fmt.Sprintf("%dms per step", m.cfg.Playback.BaseIntervalMs)) + "\n")
	visibility := "spectator"
	if m.cfg.UI.GodMode {
		visibility = "god mode"
	}
	s.WriteString(normalStyle.Render("Visibility: ") + selectedStyle.Render(visibility) + "\n")
	if m.cfg.Tap.URL != "" {
		s.WriteString(normalStyle.Render("Tap: ") + selectedStyle.Render(m.cfg.Tap.URL) + "\n")
	} else {
		s.WriteString(normalStyle.Render("Tap: ") + dimStyle.Render("disabled") + "\n")
	}

	s.WriteString("\n" + normalStyle.Render("Files to create:") + "\n")
	s.WriteString(dimStyle.Render("  - "+m.path+"\n"))

	s.WriteString("\n")
	options := []string{"Write configuration", "Go back"}
	for i, opt := range options {
		cursor := "  "
		style := normalStyle
		if i == m.cursor {
			cursor = "> "
			style = selectedStyle
		}
		s.WriteString(cursor + style.Render(opt) + "\n")
	}

	return s.String()
}

func (m Model) viewWriting() string {
	return titleStyle.Render("Writing Files...") + "\n\n" +
		normalStyle.Render("Creating configuration files...")
}

func (m Model) viewComplete() string {
	var s strings.Builder
	if m.err != nil {
		s.WriteString(errorStyle.Render("✗ Setup failed") + "\n\n")
		s.WriteString(normalStyle.Render(m.err.Error()) + "\n\n")
		s.WriteString(dimStyle.Render("Press Enter or q to exit"))
		return s.String()
	}

	s.WriteString(successStyle.Render("✓ Configuration written!") + "\n\n")
	for _, f := range m.filesWritten {
		s.WriteString(normalStyle.Render("  "+f) + "\n")
	}
	s.WriteString("\n")
	s.WriteString(normalStyle.Render("Run 'spectate live' to watch a session, or") + "\n")
	s.WriteString(normalStyle.Render("'spectate replay <file>' to step through a record.") + "\n\n")
	s.WriteString(dimStyle.Render("Press Enter or q to exit"))
	return s.String()
}

// Run starts the setup wizard
func Run(path string) error {
	p := tea.NewProgram(New(path))
	_, err := p.Run()
	return err
}
