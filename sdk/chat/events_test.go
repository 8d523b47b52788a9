package chat

import (
	"testing"
)

func TestParseEventToken(t *testing.T) {
	ev, err := parseEvent(`{"type":"token","content":"Hel"}`)
	if err != nil {
		t.Fatalf("parseEvent() error = %v", err)
	}
	if ev.Type != EventToken {
		t.Errorf("Type = %v, want token", ev.Type)
	}
	if ev.Content != "Hel" {
		t.Errorf("Content = %q, want %q", ev.Content, "Hel")
	}
}

func TestParseEventDoneSentinel(t *testing.T) {
	ev, err := parseEvent("[DONE]")
	if err != nil {
		t.Fatalf("parseEvent() error = %v", err)
	}
	if ev.Type != EventDone {
		t.Errorf("Type = %v, want done", ev.Type)
	}
}

func TestParseEventMessage(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		check   func(t *testing.T, ev *Event)
	}{
		{
			name:    "plain string content",
			payload: `{"type":"message","content":"Hello there"}`,
			check: func(t *testing.T, ev *Event) {
				if !ev.HasContent || ev.Content != "Hello there" {
					t.Errorf("Content = %q (has=%v)", ev.Content, ev.HasContent)
				}
			},
		},
		{
			name:    "nested content with run id",
			payload: `{"type":"message","content":{"content":"Hello there","run_id":"run-1"}}`,
			check: func(t *testing.T, ev *Event) {
				if !ev.HasContent || ev.Content != "Hello there" {
					t.Errorf("Content = %q (has=%v)", ev.Content, ev.HasContent)
				}
				if ev.CustomData["run_id"] != "run-1" {
					t.Errorf("CustomData = %v", ev.CustomData)
				}
			},
		},
		{
			name:    "additional kwargs",
			payload: `{"type":"message","content":{"content":"ok","additional_kwargs":{"run_id":"run-2","trace":"abc"}}}`,
			check: func(t *testing.T, ev *Event) {
				if ev.CustomData["run_id"] != "run-2" || ev.CustomData["trace"] != "abc" {
					t.Errorf("CustomData = %v", ev.CustomData)
				}
			},
		},
		{
			name:    "tool result envelope by type",
			payload: `{"type":"message","content":{"type":"tool","tool_call_id":"tc-1","name":"search","content":"42 results"}}`,
			check: func(t *testing.T, ev *Event) {
				if ev.ToolResult == nil {
					t.Fatal("expected a tool result")
				}
				if ev.ToolResult.ID != "tc-1" || ev.ToolResult.Name != "search" || ev.ToolResult.Output != "42 results" {
					t.Errorf("ToolResult = %+v", ev.ToolResult)
				}
				if ev.HasContent {
					t.Error("tool result envelope must not carry assistant text")
				}
			},
		},
		{
			name:    "tool result envelope by call id",
			payload: `{"type":"message","content":{"tool_call_id":"tc-2","content":"done"}}`,
			check: func(t *testing.T, ev *Event) {
				if ev.ToolResult == nil || ev.ToolResult.ID != "tc-2" {
					t.Errorf("ToolResult = %+v", ev.ToolResult)
				}
			},
		},
		{
			name:    "tool call announcements",
			payload: `{"type":"message","content":{"tool_calls":[{"id":"tc-3","name":"lookup","args":{"q":"go"}},{"id":"tc-4","name":"fetch"}]}}`,
			check: func(t *testing.T, ev *Event) {
				if len(ev.ToolCalls) != 2 {
					t.Fatalf("ToolCalls = %+v", ev.ToolCalls)
				}
				if ev.ToolCalls[0].ID != "tc-3" || ev.ToolCalls[0].Name != "lookup" {
					t.Errorf("first call = %+v", ev.ToolCalls[0])
				}
				if ev.ToolCalls[0].Args["q"] != "go" {
					t.Errorf("args = %v", ev.ToolCalls[0].Args)
				}
				if ev.HasContent {
					t.Error("announcement-only envelope must not carry text")
				}
			},
		},
		{
			name:    "tool calls alongside text",
			payload: `{"type":"message","content":{"content":"working on it","tool_calls":[{"id":"tc-5","name":"run"}]}}`,
			check: func(t *testing.T, ev *Event) {
				if len(ev.ToolCalls) != 1 || !ev.HasContent || ev.Content != "working on it" {
					t.Errorf("ev = %+v", ev)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev, err := parseEvent(tt.payload)
			if err != nil {
				t.Fatalf("parseEvent() error = %v", err)
			}
			if ev.Type != EventMessage {
				t.Fatalf("Type = %v, want message", ev.Type)
			}
			tt.check(t, ev)
		})
	}
}

func TestParseEventUpdate(t *testing.T) {
	ev, err := parseEvent(`{"type":"update","updates":{"follow_up":["Tell me more","Why?"]}}`)
	if err != nil {
		t.Fatalf("parseEvent() error = %v", err)
	}
	if ev.Type != EventUpdate {
		t.Fatalf("Type = %v, want update", ev.Type)
	}
	if len(ev.FollowUps) != 2 || ev.FollowUps[0] != "Tell me more" {
		t.Errorf("FollowUps = %v", ev.FollowUps)
	}
}

func TestParseEventUpdateByNodeTag(t *testing.T) {
	ev, err := parseEvent(`{"node":"planner","updates":{"follow_up":["Next step"]}}`)
	if err != nil {
		t.Fatalf("parseEvent() error = %v", err)
	}
	if ev.Type != EventUpdate || ev.Node != "planner" {
		t.Errorf("ev = %+v", ev)
	}
	if len(ev.FollowUps) != 1 {
		t.Errorf("FollowUps = %v", ev.FollowUps)
	}
}

func TestParseEventUpdateNonArrayFollowUp(t *testing.T) {
	ev, err := parseEvent(`{"type":"update","updates":{"follow_up":"not-a-list"}}`)
	if err != nil {
		t.Fatalf("parseEvent() error = %v", err)
	}
	if ev.FollowUps != nil {
		t.Errorf("FollowUps = %v, want nil", ev.FollowUps)
	}
}

func TestParseEventError(t *testing.T) {
	ev, err := parseEvent(`{"type":"error","content":"model overloaded"}`)
	if err != nil {
		t.Fatalf("parseEvent() error = %v", err)
	}
	if ev.Type != EventError || ev.Content != "model overloaded" {
		t.Errorf("ev = %+v", ev)
	}
}

func TestParseEventMalformed(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{"truncated json", `{"type":"token","content":`},
		{"unknown type", `{"type":"mystery"}`},
		{"no discriminator", `{"content":"x"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := parseEvent(tt.payload); err == nil {
				t.Error("expected parse error")
			}
		})
	}
}
