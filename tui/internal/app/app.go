package app

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	sdk "chatkit/sdk/chat"
	chatui "chatkit/tui/internal/components/chat"
)

// State represents the application state
type State int

const (
	StateIdle State = iota
	StateStreaming
	StateError
)

// Model is the main application model
type Model struct {
	chat    chatui.Model
	input   textinput.Model
	client  *sdk.Client
	session *sdk.Session
	agentID string
	updates <-chan sdk.Snapshot
	state   State
	width   int
	height  int
	err     error
	ready   bool
}

// New creates a new application model
func New(client *sdk.Client, agentID string) Model {
	ti := textinput.New()
	ti.Placeholder = "Send a message..."
	ti.Prompt = "> "
	ti.Focus()

	return Model{
		chat:    chatui.New(80, 20),
		input:   ti,
		client:  client,
		session: sdk.NewSession(client, agentID),
		agentID: agentID,
		state:   StateIdle,
	}
}

// Init initializes the application
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		m.chat.Init(),
	)
}
