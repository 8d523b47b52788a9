package messages

import "chatkit/sdk/chat"

// SnapshotMsg carries one transcript snapshot from the active turn.
type SnapshotMsg struct {
	Snapshot chat.Snapshot
}

// TurnDoneMsg signals that the snapshot channel closed and the turn
// is over.
type TurnDoneMsg struct{}

// SendFailedMsg reports that a turn could not be started.
type SendFailedMsg struct {
	Err error
}
