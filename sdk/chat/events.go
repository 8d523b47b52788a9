package chat

import (
	"fmt"

	"github.com/tidwall/gjson"
)

// EventType discriminates the decoded stream events.
type EventType string

const (
	EventToken   EventType = "token"
	EventMessage EventType = "message"
	EventUpdate  EventType = "update"
	EventError   EventType = "error"
	EventDone    EventType = "done"
)

// ToolCall is a tool-call announcement carried by a message event.
type ToolCall struct {
	ID   string
	Name string
	Args map[string]any
}

// ToolResult is a tool-result envelope carried by a message event.
type ToolResult struct {
	ID     string
	Name   string
	Output string
}

// Event is the typed, decoded unit produced from one frame payload.
// Use the Type field to determine which of the optional fields are set.
type Event struct {
	Type EventType

	// Token fragment, error description, or message replacement text.
	Content string
	// HasContent is set on message events that carry literal text, so an
	// empty replacement can be told apart from a pure tool envelope.
	HasContent bool

	ToolCalls  []ToolCall
	ToolResult *ToolResult
	CustomData map[string]any

	// Update events
	Node      string
	FollowUps []string

	Raw string
}

// parseEvent parses one frame's payload into exactly one event.
// A malformed payload returns an error; the caller logs and skips it so a
// single bad frame never aborts the stream.
func parseEvent(payload string) (*Event, error) {
	if payload == doneSentinel {
		return &Event{Type: EventDone, Raw: payload}, nil
	}
	if !gjson.Valid(payload) {
		return nil, fmt.Errorf("malformed frame payload")
	}

	doc := gjson.Parse(payload)
	typ := doc.Get("type").String()
	if typ == "" && doc.Get("node").Exists() {
		// Out-of-band state patches may arrive tagged only by node.
		typ = string(EventUpdate)
	}

	switch EventType(typ) {
	case EventToken:
		return &Event{Type: EventToken, Content: doc.Get("content").String(), Raw: payload}, nil

	case EventMessage:
		return parseMessageEvent(doc, payload), nil

	case EventUpdate:
		ev := &Event{Type: EventUpdate, Node: doc.Get("node").String(), Raw: payload}
		if arr := doc.Get("updates.follow_up"); arr.IsArray() {
			for _, v := range arr.Array() {
				ev.FollowUps = append(ev.FollowUps, v.String())
			}
		}
		return ev, nil

	case EventError:
		return &Event{Type: EventError, Content: doc.Get("content").String(), Raw: payload}, nil
	}

	return nil, fmt.Errorf("unknown event type %q", typ)
}

// parseMessageEvent classifies a full-replacement message payload. The
// nested content may be a plain string, a tool-result envelope, or an
// object carrying tool-call announcements and/or literal text plus
// custom data such as the run identifier.
func parseMessageEvent(doc gjson.Result, payload string) *Event {
	ev := &Event{Type: EventMessage, Raw: payload}

	content := doc.Get("content")
	if !content.IsObject() {
		ev.Content = content.String()
		ev.HasContent = content.Exists()
		return ev
	}

	if content.Get("type").String() == "tool" || content.Get("tool_call_id").Exists() {
		ev.ToolResult = &ToolResult{
			ID:     content.Get("tool_call_id").String(),
			Name:   content.Get("name").String(),
			Output: content.Get("content").String(),
		}
		return ev
	}

	if calls := content.Get("tool_calls"); calls.IsArray() {
		for _, call := range calls.Array() {
			tc := ToolCall{
				ID:   call.Get("id").String(),
				Name: call.Get("name").String(),
			}
			if args, ok := call.Get("args").Value().(map[string]any); ok {
				tc.Args = args
			}
			ev.ToolCalls = append(ev.ToolCalls, tc)
		}
	}

	if text := content.Get("content"); text.Type == gjson.String {
		ev.Content = text.String()
		ev.HasContent = true
	}

	if kwargs, ok := content.Get("additional_kwargs").Value().(map[string]any); ok {
		ev.CustomData = kwargs
	}
	if runID := content.Get("run_id"); runID.Exists() {
		if ev.CustomData == nil {
			ev.CustomData = make(map[string]any)
		}
		ev.CustomData["run_id"] = runID.String()
	}

	return ev
}
