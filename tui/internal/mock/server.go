// Package mock is a standalone backend that speaks the widget wire
// protocol, for demos and manual testing without a real agent runtime.
package mock

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"chatkit/sdk/chat"
)

type Server struct {
	port int

	mu      sync.Mutex
	history map[string][]chat.Message
}

func NewServer(port int) *Server {
	return &Server{
		port:    port,
		history: make(map[string][]chat.Message),
	}
}

func (s *Server) Start() error {
	mux := http.NewServeMux()
	mux.HandleFunc("/metadata", s.metadataHandler)
	mux.HandleFunc("/feedback", s.feedbackHandler)
	mux.HandleFunc("/history/", s.historyHandler)
	mux.HandleFunc("/agents/", s.chatHandler)

	addr := fmt.Sprintf(":%d", s.port)
	fmt.Printf("Mock backend listening on http://localhost%s\n", addr)
	return http.ListenAndServe(addr, mux)
}

func (s *Server) metadataHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(chat.Metadata{
		Agents:       []string{"default-agent", "research-agent"},
		Models:       []string{"mock-small", "mock-large"},
		DefaultAgent: "default-agent",
		DefaultModel: "mock-small",
	})
}

func (s *Server) feedbackHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req chat.FeedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	fmt.Printf("feedback: run=%s key=%s score=%v\n", req.RunID, req.Key, req.Score)
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(true)
}

func (s *Server) historyHandler(w http.ResponseWriter, r *http.Request) {
	threadID := strings.TrimPrefix(r.URL.Path, "/history/")

	s.mu.Lock()
	msgs := s.history[threadID]
	s.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(chat.HistoryResponse{Messages: msgs})
}

func (s *Server) chatHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req chat.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "SSE not supported", http.StatusInternalServerError)
		return
	}

	response, followUps := s.scriptedResponse(req.Message)

	if strings.Contains(strings.ToLower(req.Message), "search") {
		s.simulateToolUse(w, flusher, r)
	}

	s.streamTokens(w, flusher, r, response)

	if len(followUps) > 0 {
		payload, _ := json.Marshal(map[string]any{
			"type":    "update",
			"updates": map[string]any{"follow_up": followUps},
		})
		sendFrame(w, flusher, string(payload))
	}

	final, _ := json.Marshal(map[string]any{
		"type": "message",
		"content": map[string]any{
			"content": response,
			"run_id":  "mock-run-" + uuid.NewString(),
		},
	})
	sendFrame(w, flusher, string(final))
	sendFrame(w, flusher, "[DONE]")

	s.recordTurn(req, response)
}

// recordTurn keeps an in-memory transcript so the history endpoint has
// something to serve.
func (s *Server) recordTurn(req chat.ChatRequest, response string) {
	if req.ThreadID == nil {
		return
	}
	now := time.Now().UTC()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.history[*req.ThreadID] = append(s.history[*req.ThreadID],
		chat.Message{ID: uuid.NewString(), Role: chat.RoleUser, Content: req.Message, CreatedAt: now},
		chat.Message{ID: uuid.NewString(), Role: chat.RoleAssistant, Content: response, CreatedAt: now},
	)
}

func (s *Server) simulateToolUse(w http.ResponseWriter, flusher http.Flusher, r *http.Request) {
	call, _ := json.Marshal(map[string]any{
		"type": "message",
		"content": map[string]any{
			"tool_calls": []map[string]any{
				{"id": "tc-1", "name": "web_search", "args": map[string]any{"query": "mock query"}},
			},
		},
	})
	sendFrame(w, flusher, string(call))
	sleepUnlessGone(r, 400*time.Millisecond)

	result, _ := json.Marshal(map[string]any{
		"type": "message",
		"content": map[string]any{
			"type":         "tool",
			"tool_call_id": "tc-1",
			"name":         "web_search",
			"content":      "3 results found",
		},
	})
	sendFrame(w, flusher, string(result))
	sleepUnlessGone(r, 100*time.Millisecond)
}

func (s *Server) scriptedResponse(userMessage string) (string, []string) {
	lowerMsg := strings.ToLower(userMessage)

	if strings.Contains(lowerMsg, "hello") || strings.Contains(lowerMsg, "hi") {
		return "Hello! I'm a mock agent. Ask me anything and I'll stream back a canned answer.",
			[]string{"What can you do?", "Search for something"}
	}

	if strings.Contains(lowerMsg, "search") {
		return "I searched the web and found three results. The most relevant one explains the topic in depth.",
			[]string{"Summarize the first result", "Search again"}
	}

	if strings.Contains(lowerMsg, "error") {
		return "You asked for trouble, but the mock backend only fails when the word 'crash' appears.",
			nil
	}

	return "I understand your request. This is a mock response streamed token by token so the widget has something realistic to render.",
		[]string{"Tell me more"}
}

func (s *Server) streamTokens(w http.ResponseWriter, flusher http.Flusher, r *http.Request, response string) {
	batchSize := 3
	runes := []rune(response)

	for i := 0; i < len(runes); i += batchSize {
		end := i + batchSize
		if end > len(runes) {
			end = len(runes)
		}

		payload, _ := json.Marshal(map[string]any{
			"type":    "token",
			"content": string(runes[i:end]),
		})
		sendFrame(w, flusher, string(payload))

		if !sleepUnlessGone(r, 15*time.Millisecond) {
			return
		}
	}
}

// sleepUnlessGone waits for d or until the client disconnects.
func sleepUnlessGone(r *http.Request, d time.Duration) bool {
	select {
	case <-time.After(d):
		return true
	case <-r.Context().Done():
		return false
	}
}

func sendFrame(w http.ResponseWriter, flusher http.Flusher, payload string) {
	fmt.Fprintf(w, "data: %s\n\n", payload)
	flusher.Flush()
}
