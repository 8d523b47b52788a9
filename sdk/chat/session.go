package chat

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrBusy is returned by Send while a turn is already in progress.
var ErrBusy = errors.New("chat: a turn is already in progress")

// Snapshot is a read-only copy of conversation state emitted while a
// turn streams. The final snapshot of a turn has Streaming set to false.
type Snapshot struct {
	Messages  []Message
	Streaming bool
}

// Session owns one conversation: the ordered message list, the currently
// open assistant message, pending follow-up suggestions, and the
// cancellation handle for the in-flight request. At most one turn is in
// flight at a time; Send rejects with ErrBusy while one is open.
type Session struct {
	client   *Client
	agentID  string
	threadID string
	logger   *Logger

	mu       sync.Mutex
	messages []Message
	open     int // index of the open assistant message, -1 when none
	builder  strings.Builder
	tracker  *toolTracker
	pending  []string
	cancel   context.CancelFunc
}

// SessionOption configures a session.
type SessionOption func(*Session)

// WithThreadID resumes an existing thread instead of starting a new one.
func WithThreadID(id string) SessionOption {
	return func(s *Session) {
		s.threadID = id
	}
}

// WithSessionLogger overrides the client's logger for this session.
func WithSessionLogger(l *Logger) SessionOption {
	return func(s *Session) {
		s.logger = l
	}
}

// NewSession creates a session bound to one agent and one thread.
func NewSession(client *Client, agentID string, opts ...SessionOption) *Session {
	s := &Session{
		client:   client,
		agentID:  agentID,
		threadID: uuid.NewString(),
		logger:   client.logger,
		open:     -1,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// ThreadID returns the thread identifier this session is bound to.
func (s *Session) ThreadID() string {
	return s.threadID
}

// Messages returns a snapshot of the conversation. The returned slice is
// a deep copy; mutating it never affects the session.
func (s *Session) Messages() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.copyMessagesLocked()
}

// Send appends a user message, opens a new assistant message, and starts
// streaming the backend response. It returns a channel of snapshots the
// caller must drain until it closes. While a turn is open, further Send
// calls fail with ErrBusy without touching the open turn's state.
func (s *Session) Send(ctx context.Context, text string) (<-chan Snapshot, error) {
	s.mu.Lock()
	if s.cancel != nil {
		s.mu.Unlock()
		return nil, ErrBusy
	}

	now := time.Now()
	s.messages = append(s.messages,
		Message{ID: uuid.NewString(), Role: RoleUser, Content: text, CreatedAt: now},
		Message{ID: uuid.NewString(), Role: RoleAssistant, CreatedAt: now},
	)
	s.open = len(s.messages) - 1
	s.builder.Reset()
	s.tracker = newToolTracker()
	s.pending = nil

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.mu.Unlock()

	updates := make(chan Snapshot, 64)
	go s.run(ctx, text, updates)
	return updates, nil
}

// Cancel unwinds the in-flight turn: the transport stops reading further
// bytes, open tool invocations are forced to cancelled, and the open
// assistant message closes in its current state. Calling Cancel with no
// open turn is a no-op.
func (s *Session) Cancel() {
	s.mu.Lock()
	cancel := s.cancel
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}

// Close cancels any in-flight turn and releases the session's
// cancellation handle. The session remains usable for a later Send.
func (s *Session) Close() {
	s.Cancel()
}

// LoadHistory replaces the session's messages with the thread's stored
// history. It fails with ErrBusy while a turn is open.
func (s *Session) LoadHistory(ctx context.Context) error {
	s.mu.Lock()
	if s.cancel != nil {
		s.mu.Unlock()
		return ErrBusy
	}
	s.mu.Unlock()

	msgs, err := s.client.GetHistory(ctx, s.threadID)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return ErrBusy
	}
	s.messages = msgs
	s.open = -1
	return nil
}

// run consumes the frame -> event -> assembler pipeline for one turn.
func (s *Session) run(ctx context.Context, text string, updates chan<- Snapshot) {
	aborted := false
	defer func() {
		s.finishTurn(aborted || ctx.Err() != nil)
		updates <- s.snapshot(false)
		close(updates)
	}()

	// Initial snapshot so callers can render the user message and the
	// empty assistant message immediately.
	s.emit(updates)

	req := &ChatRequest{
		Message:  text,
		Model:    s.client.model,
		ThreadID: &s.threadID,
		UserID:   s.client.userID,
		Stream:   true,
	}

	body, err := s.client.openStream(ctx, s.agentID, req)
	if err != nil {
		aborted = true
		if ctx.Err() == nil {
			s.applyTransportError(err)
		}
		return
	}
	defer body.Close()

	frames := newFrameReader(body)
	for {
		payload, err := frames.Next()
		if err == io.EOF {
			return
		}
		if err != nil {
			aborted = true
			if ctx.Err() == nil {
				s.applyTransportError(err)
			}
			return
		}

		ev, err := parseEvent(payload)
		if err != nil {
			s.logger.Warn("skipping bad frame", "error", err, "payload", payload)
			continue
		}
		if ev.Type == EventDone {
			return
		}

		s.apply(ev)
		s.emit(updates)
	}
}

// emit sends an intermediate snapshot without blocking; when the caller
// falls behind, stale intermediates are dropped in favor of later ones.
// The final snapshot is always delivered.
func (s *Session) emit(updates chan<- Snapshot) {
	select {
	case updates <- s.snapshot(true):
	default:
	}
}

func (s *Session) snapshot(streaming bool) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{Messages: s.copyMessagesLocked(), Streaming: streaming}
}

func (s *Session) copyMessagesLocked() []Message {
	s.syncOpenLocked()
	out := make([]Message, len(s.messages))
	for i := range s.messages {
		out[i] = s.messages[i].clone()
	}
	return out
}

// syncOpenLocked materializes accumulated token content into the open
// assistant message. Tokens accumulate in a builder so per-event cost
// stays amortized constant; the string is built only when observed.
func (s *Session) syncOpenLocked() {
	if s.open >= 0 {
		s.messages[s.open].Content = s.builder.String()
	}
}

// finishTurn closes the open assistant message and releases the
// cancellation handle. When the turn was aborted (cancelled or the
// transport failed), open tool invocations are forced to cancelled first.
// Pending follow-up suggestions still unattached are appended once.
func (s *Session) finishTurn(aborted bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	if s.open < 0 {
		return
	}

	if aborted && s.tracker != nil {
		s.tracker.cancelOpen()
		s.messages[s.open].ToolInvocations = s.tracker.invocations
	}

	content := s.builder.String()
	if !aborted {
		content, s.pending = attachFollowUps(content, s.pending)
	}
	s.messages[s.open].Content = content

	s.open = -1
	s.tracker = nil
	s.builder.Reset()
}
