package app

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	chatui "chatkit/tui/internal/components/chat"
	"chatkit/tui/internal/styles"
)

// View renders the application
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	var sections []string

	header := styles.Header.Render("chatkit")
	sections = append(sections, header)

	chatView := m.chat.View()
	if m.chat.IsEmpty() {
		welcomeStyle := lipgloss.NewStyle().
			Foreground(styles.Muted).
			Width(m.width).
			Align(lipgloss.Center).
			Padding(2, 0)
		chatView = welcomeStyle.Render(chatui.WelcomeText)
	}
	sections = append(sections, chatView)

	if m.state == StateStreaming {
		waiting := lipgloss.NewStyle().
			Foreground(styles.Muted).
			Italic(true).
			Padding(0, 1).
			Render("Streaming... (Esc to cancel)")
		sections = append(sections, waiting)
	} else {
		sections = append(sections, m.input.View())
	}

	sections = append(sections, m.renderStatusBar())

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// renderStatusBar renders the status bar at the bottom
func (m Model) renderStatusBar() string {
	var status string
	var statusStyle lipgloss.Style

	switch m.state {
	case StateIdle:
		status = "Ready"
		statusStyle = styles.StatusBar
	case StateStreaming:
		status = "Streaming..."
		statusStyle = styles.StatusBarStreaming
	case StateError:
		status = fmt.Sprintf("Error: %v", m.err)
		statusStyle = styles.StatusBarError
	}

	left := statusStyle.Render(status)
	right := styles.StatusBar.Render("Enter: send • Esc: quit • Ctrl+L: new thread")

	spacerWidth := m.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if spacerWidth < 0 {
		spacerWidth = 0
	}
	spacer := strings.Repeat(" ", spacerWidth)

	return lipgloss.JoinHorizontal(lipgloss.Top, left, spacer, right)
}
