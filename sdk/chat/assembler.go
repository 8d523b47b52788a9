package chat

import "fmt"

// apply folds one stream event into session state. Events arrive in
// order and each is consumed exactly once; full-replacement semantics
// make token deltas safe to discard when a later message event lands.
func (s *Session) apply(ev *Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.open < 0 {
		return
	}
	open := &s.messages[s.open]

	switch ev.Type {
	case EventToken:
		s.builder.WriteString(ev.Content)

	case EventMessage:
		// Tool routing first, then text replacement, in document order.
		if ev.ToolResult != nil {
			s.tracker.observeResult(*ev.ToolResult)
		}
		for _, call := range ev.ToolCalls {
			s.tracker.observeCall(call)
		}
		open.ToolInvocations = s.tracker.invocations

		if ev.HasContent {
			content := ev.Content
			content, s.pending = attachFollowUps(content, s.pending)
			s.builder.Reset()
			s.builder.WriteString(content)
		}

		if len(ev.CustomData) > 0 {
			if open.CustomData == nil {
				open.CustomData = make(map[string]any, len(ev.CustomData))
			}
			for k, v := range ev.CustomData {
				open.CustomData[k] = v
			}
		}

	case EventUpdate:
		if ev.FollowUps != nil {
			// Replaces, never accumulates, the pending set for this turn.
			s.pending = append([]string(nil), ev.FollowUps...)
		}

	case EventError:
		s.builder.Reset()
		s.builder.WriteString(formatBackendError(ev.Content))
	}
}

// applyTransportError renders a transport failure into the open assistant
// message. The turn completes normally from the caller's perspective; the
// error is never surfaced as a Go error past the session boundary.
func (s *Session) applyTransportError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.open < 0 {
		return
	}
	s.logger.Error("stream failed", "error", err)
	s.builder.Reset()
	s.builder.WriteString(fmt.Sprintf("Error: request failed: %v", err))
}

func formatBackendError(content string) string {
	if content == "" {
		content = "the backend reported an error"
	}
	return "Error: " + content
}
