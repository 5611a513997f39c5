// ABOUTME: Bubbletea model for player TUI
// ABOUTME: Defines application state and update logic
package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Resonate-Protocol/volumekit/pkg/volume"
)

// VolumeStep is the change applied by the up and down keys
const VolumeStep = 5

// Model represents the TUI state
type Model struct {
	// Track
	title      string
	codec      string
	sampleRate int
	channels   int

	// Playback
	state  string
	volume int
	muted  bool
	phase  string

	// Controller
	graphBuilt bool
	compat     *volume.Compatibility
	lastError  string

	// Remote
	remoteAddr string
	sessions   int

	// Debug
	showDebug bool

	// Dimensions
	width  int
	height int

	controls *Controls
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case StatusMsg:
		m.applyStatus(msg)
	}

	return m, nil
}

// View renders the TUI
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString(m.renderTrack())
	b.WriteString(m.renderControls())
	b.WriteString(m.renderCompatibility())

	if m.showDebug {
		b.WriteString(m.renderDebug())
	}

	b.WriteString(m.renderHelp())

	return b.String()
}

// renderHeader renders playback and remote status
func (m Model) renderHeader() string {
	remote := "off"
	if m.remoteAddr != "" {
		remote = fmt.Sprintf("%s (%d connected)", m.remoteAddr, m.sessions)
	}

	return fmt.Sprintf(`┌─ volplay ────────────────────────────────────────────┐
│ State:  %-45s │
│ Remote: %-45s │
├──────────────────────────────────────────────────────┤
`, truncate(m.state, 45), truncate(remote, 45))
}

// renderTrack renders the loaded file and its format
func (m Model) renderTrack() string {
	if m.title == "" {
		return "│ No track                                             │\n"
	}

	s := fmt.Sprintf("│ Track:  %-45s │\n", truncate(m.title, 45))
	if m.codec != "" {
		format := fmt.Sprintf("%s %dHz %s", m.codec, m.sampleRate, channelName(m.channels))
		s += fmt.Sprintf("│ Format: %-45s │\n", truncate(format, 45))
	}
	return s
}

// renderControls renders the volume bar and routing
func (m Model) renderControls() string {
	muteIcon := ""
	if m.muted {
		muteIcon = " (muted)"
	}

	route := "element"
	if m.graphBuilt {
		route = "gain node"
	}

	volumeLine := fmt.Sprintf("[%s] %d%%%s", renderBar(m.volume, 100, 20), m.volume, muteIcon)

	return fmt.Sprintf("│                                                      │\n"+
		"│ Volume: %-45s │\n"+
		"│ Route:  %-45s │\n",
		volumeLine, route)
}

// renderCompatibility renders the platform capability line
func (m Model) renderCompatibility() string {
	s := "├──────────────────────────────────────────────────────┤\n"
	if m.compat == nil {
		return s
	}

	line := fmt.Sprintf("iOS:%s  Graph:%s  Volume:%s",
		yesNo(m.compat.IsIOS), yesNo(m.compat.WebAudioSupported), yesNo(m.compat.VolumeControlSupported))
	s += fmt.Sprintf("│ %-52s │\n", line)
	if m.lastError != "" {
		s += fmt.Sprintf("│ Error: %-46s │\n", truncate(m.lastError, 46))
	}
	return s
}

// renderHelp renders keyboard shortcuts
func (m Model) renderHelp() string {
	return `│ ↑/↓:Volume  space:Play/Pause  m:Mute  i:Init  q:Quit  │
└──────────────────────────────────────────────────────┘
`
}

// renderDebug renders debug information
func (m Model) renderDebug() string {
	return fmt.Sprintf("│ DEBUG:  phase=%-39s │\n", m.phase)
}

// handleKey handles keyboard input
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		m.controls.quit()
		return m, tea.Quit
	case "up", "+":
		m.volume = clampPercent(m.volume + VolumeStep)
		m.controls.send(Command{Kind: CommandStep, Delta: VolumeStep})
	case "down", "-":
		m.volume = clampPercent(m.volume - VolumeStep)
		m.controls.send(Command{Kind: CommandStep, Delta: -VolumeStep})
	case " ", "p":
		m.controls.send(Command{Kind: CommandTogglePlay})
	case "m":
		m.muted = !m.muted
		m.controls.send(Command{Kind: CommandMute, Muted: m.muted})
	case "i":
		m.controls.send(Command{Kind: CommandInitialize})
	case "d":
		m.showDebug = !m.showDebug
	}

	return m, nil
}

// applyStatus updates model from status message
func (m *Model) applyStatus(msg StatusMsg) {
	if msg.Title != "" {
		m.title = msg.Title
	}
	if msg.Codec != "" {
		m.codec = msg.Codec
		m.sampleRate = msg.SampleRate
		m.channels = msg.Channels
	}
	if msg.State != "" {
		m.state = msg.State
	}
	if msg.Controller != nil {
		m.volume = msg.Controller.Volume
		m.muted = msg.Controller.Muted
		m.graphBuilt = msg.Controller.GraphBuilt
		m.phase = msg.Controller.Phase.String()
	}
	if msg.Compatibility != nil {
		m.compat = msg.Compatibility
	}
	if msg.RemoteAddr != "" {
		m.remoteAddr = msg.RemoteAddr
	}
	if msg.Sessions != nil {
		m.sessions = *msg.Sessions
	}
	if msg.Error != "" {
		m.lastError = msg.Error
	}
}

// StatusMsg updates TUI state. Zero fields are left unchanged.
type StatusMsg struct {
	Title         string
	Codec         string
	SampleRate    int
	Channels      int
	State         string
	Controller    *volume.Status
	Compatibility *volume.Compatibility
	RemoteAddr    string
	Sessions      *int
	Error         string
}

// Utility functions
func renderBar(value, max, width int) string {
	filled := (value * width) / max
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

func clampPercent(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

func truncate(s string, length int) string {
	if len(s) <= length {
		return s
	}
	return s[:length-3] + "..."
}

func channelName(channels int) string {
	if channels == 1 {
		return "Mono"
	}
	return "Stereo"
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
