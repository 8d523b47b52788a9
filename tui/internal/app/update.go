package app

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	sdk "chatkit/sdk/chat"
	"chatkit/tui/internal/messages"
)

// Update handles all application messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true

		// Reserve space for: header (1), input (1), status bar (1),
		// padding (2)
		chatHeight := msg.Height - 5
		if chatHeight < 5 {
			chatHeight = 5
		}

		m.chat.SetSize(msg.Width, chatHeight)
		m.input.Width = msg.Width - 4
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			if m.state == StateStreaming {
				// Signal cancellation; the turn finishes through the
				// snapshot channel as usual.
				m.session.Cancel()
				return m, nil
			}
			m.session.Close()
			return m, tea.Quit

		case "enter":
			if m.state == StateIdle && m.input.Value() != "" {
				return m.sendMessage()
			}

		case "ctrl+l":
			// Start over on a fresh thread
			if m.state == StateIdle {
				m.session.Close()
				m.session = sdk.NewSession(m.client, m.agentID)
				m.chat.Clear()
				m.err = nil
			}
			return m, nil
		}

	case messages.SnapshotMsg:
		m.chat.SetTranscript(msg.Snapshot.Messages, msg.Snapshot.Streaming)
		return m, m.waitForSnapshot()

	case messages.TurnDoneMsg:
		m.state = StateIdle
		m.updates = nil
		return m, m.input.Focus()

	case messages.SendFailedMsg:
		m.err = msg.Err
		m.state = StateError
		return m, m.input.Focus()
	}

	// Update child components when idle
	if m.state == StateIdle || m.state == StateError {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		cmds = append(cmds, cmd)
	}

	// Always allow chat scrolling
	var cmd tea.Cmd
	m.chat, cmd = m.chat.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// sendMessage starts a turn with the current input
func (m Model) sendMessage() (tea.Model, tea.Cmd) {
	text := m.input.Value()
	m.input.Reset()
	m.input.Blur()

	updates, err := m.session.Send(context.Background(), text)
	if err != nil {
		return m, func() tea.Msg { return messages.SendFailedMsg{Err: err} }
	}

	m.updates = updates
	m.state = StateStreaming
	m.err = nil
	return m, m.waitForSnapshot()
}

// waitForSnapshot blocks on the snapshot channel and converts what
// arrives into a tea.Msg. A closed channel means the turn is over.
func (m Model) waitForSnapshot() tea.Cmd {
	ch := m.updates
	return func() tea.Msg {
		snap, ok := <-ch
		if !ok {
			return messages.TurnDoneMsg{}
		}
		return messages.SnapshotMsg{Snapshot: snap}
	}
}
