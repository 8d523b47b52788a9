package chat

import (
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	sdk "chatkit/sdk/chat"
)

// WelcomeText is shown before the first message.
const WelcomeText = "Start a conversation.\n\nType a message below and press Enter."

// Model renders a transcript in a scrollable viewport.
type Model struct {
	viewport  viewport.Model
	messages  []sdk.Message
	streaming bool
	width     int
	height    int
}

// New creates a new chat model
func New(width, height int) Model {
	vp := viewport.New(width, height)
	vp.SetContent("")

	return Model{
		viewport: vp,
		width:    width,
		height:   height,
	}
}

func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages for the chat component
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "pgup":
			m.viewport.ViewUp()
		case "pgdown":
			m.viewport.ViewDown()
		}
	}

	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	return m.viewport.View()
}

// SetTranscript replaces the rendered transcript with a fresh snapshot.
// Snapshots are complete, so there is no per-event patching here.
func (m *Model) SetTranscript(messages []sdk.Message, streaming bool) {
	m.messages = messages
	m.streaming = streaming
	m.updateContent()
}

// SetSize updates the chat dimensions
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = height
	m.updateContent()
}

// updateContent rebuilds the viewport content from messages
func (m *Model) updateContent() {
	var content strings.Builder

	for i, msg := range m.messages {
		last := i == len(m.messages)-1
		content.WriteString(renderMessage(msg, m.width, m.streaming && last))
		if !last {
			content.WriteString("\n")
		}
	}

	m.viewport.SetContent(content.String())
	m.viewport.GotoBottom()
}

// Clear clears all messages
func (m *Model) Clear() {
	m.messages = nil
	m.streaming = false
	m.viewport.SetContent("")
}

// IsEmpty returns true if there are no messages
func (m Model) IsEmpty() bool {
	return len(m.messages) == 0
}
