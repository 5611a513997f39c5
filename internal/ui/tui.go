// ABOUTME: TUI initialization and control
// ABOUTME: Wraps bubbletea program for player UI
package ui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// CommandKind identifies a user request from the TUI
type CommandKind int

const (
	CommandStep CommandKind = iota
	CommandTogglePlay
	CommandMute
	CommandInitialize
)

// Command is a user request for the controller
type Command struct {
	Kind  CommandKind
	Delta int  // CommandStep
	Muted bool // CommandMute
}

// Controls holds channels for TUI to controller communication
type Controls struct {
	Commands chan Command
	Quit     chan struct{}
}

// NewControls creates a new control handler
func NewControls() *Controls {
	return &Controls{
		Commands: make(chan Command, 10),
		Quit:     make(chan struct{}, 1),
	}
}

func (c *Controls) send(cmd Command) {
	if c == nil {
		return
	}
	select {
	case c.Commands <- cmd:
	default:
	}
}

func (c *Controls) quit() {
	if c == nil {
		return
	}
	select {
	case c.Quit <- struct{}{}:
	default:
	}
}

// NewModel creates a new TUI model
func NewModel(controls *Controls) Model {
	return Model{
		volume:   50,
		state:    "idle",
		phase:    "idle",
		controls: controls,
	}
}

// Run creates the TUI program. The caller starts it.
func Run(controls *Controls) (*tea.Program, error) {
	p := tea.NewProgram(NewModel(controls), tea.WithAltScreen())
	return p, nil
}
