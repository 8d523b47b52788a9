package chat

import (
	"time"
)

// Role identifies who authored a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ToolState is the lifecycle state of a tool invocation.
type ToolState string

const (
	// ToolStateCall means the backend announced the call but no result
	// has arrived yet.
	ToolStateCall ToolState = "call"
	// ToolStateResult means the call completed and Result holds the output.
	ToolStateResult ToolState = "result"
	// ToolStateCancelled means the turn was cancelled while the call was
	// still open. Result holds a synthetic body; Cancelled is set so
	// renderers can tell "declined to run" apart from "ran and failed".
	ToolStateCancelled ToolState = "cancelled"
)

// ToolInvocation is one backend-initiated tool call within a turn.
type ToolInvocation struct {
	ToolCallID string         `json:"toolCallId"`
	ToolName   string         `json:"toolName"`
	Args       map[string]any `json:"args,omitempty"`
	State      ToolState      `json:"state"`
	Result     string         `json:"result,omitempty"`
	Cancelled  bool           `json:"cancelled,omitempty"`
}

// Message is one turn in the conversation.
type Message struct {
	ID              string           `json:"id"`
	Role            Role             `json:"role"`
	Content         string           `json:"content"`
	CreatedAt       time.Time        `json:"createdAt"`
	ToolInvocations []ToolInvocation `json:"toolInvocations,omitempty"`
	CustomData      map[string]any   `json:"customData,omitempty"`
}

// IsUser returns true if this is a user message.
func (m *Message) IsUser() bool {
	return m.Role == RoleUser
}

// IsAssistant returns true if this is an assistant message.
func (m *Message) IsAssistant() bool {
	return m.Role == RoleAssistant
}

// RunID returns the backend run identifier attached at turn finalization,
// or "" if none was carried.
func (m *Message) RunID() string {
	if m.CustomData == nil {
		return ""
	}
	if id, ok := m.CustomData["run_id"].(string); ok {
		return id
	}
	return ""
}

// clone returns a deep copy so callers can hold snapshots without
// observing later mutations.
func (m *Message) clone() Message {
	out := *m
	if m.ToolInvocations != nil {
		out.ToolInvocations = make([]ToolInvocation, len(m.ToolInvocations))
		copy(out.ToolInvocations, m.ToolInvocations)
		for i := range out.ToolInvocations {
			out.ToolInvocations[i].Args = cloneMap(m.ToolInvocations[i].Args)
		}
	}
	out.CustomData = cloneMap(m.CustomData)
	return out
}

func cloneMap(in map[string]any) map[string]any {
	if in == nil {
		return nil
	}
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

// ChatRequest is the request body for the streaming chat endpoint.
type ChatRequest struct {
	Message  string  `json:"message"`
	Model    *string `json:"model,omitempty"`
	ThreadID *string `json:"thread_id,omitempty"`
	UserID   *string `json:"user_id,omitempty"`
	Stream   bool    `json:"stream"`
}

// Metadata describes the agents and models the backend exposes.
type Metadata struct {
	Agents       []string `json:"agents"`
	Models       []string `json:"models"`
	DefaultAgent string   `json:"default_agent"`
	DefaultModel string   `json:"default_model"`
}

// FeedbackRequest is the body for the feedback endpoint.
type FeedbackRequest struct {
	RunID string  `json:"run_id"`
	Key   string  `json:"key"`
	Score float64 `json:"score"`
}

// HistoryResponse is the response of the history endpoint.
type HistoryResponse struct {
	Messages []Message `json:"messages"`
}
