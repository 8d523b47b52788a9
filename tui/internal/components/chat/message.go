package chat

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"

	sdk "chatkit/sdk/chat"
	"chatkit/tui/internal/styles"
)

// renderMessage renders one transcript message with the given width.
// The last assistant message gets a streaming cursor while a turn is
// open.
func renderMessage(msg sdk.Message, width int, streaming bool) string {
	var sb strings.Builder

	switch {
	case msg.IsUser():
		sb.WriteString(styles.UserLabel.Render("You"))
	case msg.IsAssistant():
		sb.WriteString(styles.AssistantLabel.Render("Assistant"))
	}
	sb.WriteString("\n")

	for _, inv := range msg.ToolInvocations {
		sb.WriteString(renderToolInvocation(inv))
		sb.WriteString("\n")
	}

	content := msg.Content
	if msg.IsAssistant() && content != "" {
		rendered, err := renderMarkdown(content, width-4)
		if err == nil {
			content = strings.TrimSpace(rendered)
		}
	}

	if streaming {
		content += styles.StreamingCursor.Render("▊")
	}

	switch {
	case msg.IsUser():
		sb.WriteString(styles.UserMessage.Width(width - 2).Render(content))
	default:
		sb.WriteString(styles.AssistantMessage.Width(width - 2).Render(content))
	}

	return sb.String()
}

func renderToolInvocation(inv sdk.ToolInvocation) string {
	var status string
	switch inv.State {
	case sdk.ToolStateResult:
		status = styles.ToolStatus.Render("✓")
	case sdk.ToolStateCancelled:
		status = styles.ToolCancelled.Render("✗")
	default:
		status = styles.ToolStatus.Render("...")
	}

	name := styles.ToolName.Render(inv.ToolName)

	var detail string
	switch inv.State {
	case sdk.ToolStateResult:
		detail = truncate(inv.Result, 60)
	case sdk.ToolStateCancelled:
		detail = "cancelled"
	default:
		detail = truncate(fmt.Sprintf("%v", inv.Args), 60)
	}

	return styles.ToolLine.Render(fmt.Sprintf("%s %s %s", status, name, detail))
}

// renderMarkdown renders markdown content for the terminal
func renderMarkdown(content string, width int) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return content, err
	}
	return r.Render(content)
}

// truncate truncates a string to the given length
func truncate(s string, maxLen int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
