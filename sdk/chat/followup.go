package chat

import "strings"

const (
	followUpHeader = "Suggested follow-ups:"
	followUpPrefix = "- "
)

// formatFollowUps renders pending suggestions as a delimited block, one
// per line with a fixed prefix, so the rendering layer can parse them back
// out of the content.
func formatFollowUps(pending []string) string {
	var b strings.Builder
	b.WriteString(followUpHeader)
	for _, s := range pending {
		b.WriteString("\n")
		b.WriteString(followUpPrefix)
		b.WriteString(s)
	}
	return b.String()
}

// attachFollowUps appends the pending suggestions to terminal content and
// returns the new content plus the cleared pending set. It is
// deterministic and idempotent: an empty pending set or content that
// already ends with the rendered block leaves the content unchanged.
func attachFollowUps(content string, pending []string) (string, []string) {
	if len(pending) == 0 {
		return content, nil
	}
	block := formatFollowUps(pending)
	if strings.HasSuffix(content, block) {
		return content, nil
	}
	if content == "" {
		return block, nil
	}
	return content + "\n\n" + block, nil
}
