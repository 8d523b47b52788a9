package chat

// cancelledResultBody is the synthetic result attached to invocations
// forced out of the call state. Renderers should rely on the Cancelled
// marker rather than this text.
const cancelledResultBody = "Tool call was cancelled before it produced a result."

// toolTracker maintains the lifecycle of the tool invocations of one
// assistant turn: call -> result | cancelled, terminal states final.
type toolTracker struct {
	invocations []ToolInvocation
	index       map[string]int // toolCallID -> position in invocations
}

func newToolTracker() *toolTracker {
	return &toolTracker{index: make(map[string]int)}
}

// observeCall records a call announcement. Announcements for an id that
// already has a record are ignored; transitions only move forward.
func (t *toolTracker) observeCall(call ToolCall) {
	if _, ok := t.index[call.ID]; ok {
		return
	}
	t.index[call.ID] = len(t.invocations)
	t.invocations = append(t.invocations, ToolInvocation{
		ToolCallID: call.ID,
		ToolName:   call.Name,
		Args:       call.Args,
		State:      ToolStateCall,
	})
}

// observeResult attaches a result to the matching open call. A result for
// an unseen id is adopted as a standalone completed record; a result for
// an id already in a terminal state is dropped.
func (t *toolTracker) observeResult(res ToolResult) {
	i, ok := t.index[res.ID]
	if !ok {
		t.index[res.ID] = len(t.invocations)
		t.invocations = append(t.invocations, ToolInvocation{
			ToolCallID: res.ID,
			ToolName:   res.Name,
			State:      ToolStateResult,
			Result:     res.Output,
		})
		return
	}
	if t.invocations[i].State != ToolStateCall {
		return
	}
	t.invocations[i].State = ToolStateResult
	t.invocations[i].Result = res.Output
	if t.invocations[i].ToolName == "" {
		t.invocations[i].ToolName = res.Name
	}
}

// cancelOpen forces every invocation still in the call state to
// cancelled, attaching the synthetic result body and the marker that
// distinguishes "declined to run" from "ran and failed".
func (t *toolTracker) cancelOpen() {
	for i := range t.invocations {
		if t.invocations[i].State == ToolStateCall {
			t.invocations[i].State = ToolStateCancelled
			t.invocations[i].Result = cancelledResultBody
			t.invocations[i].Cancelled = true
		}
	}
}
