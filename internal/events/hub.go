package events

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"

	"go-jobpilot-automation/internal/models"
)

// Event is the versioned JSON envelope published to hub subscribers.
type Event struct {
	Type    string          `json:"type"`
	Version int             `json:"v"`
	At      time.Time       `json:"at"`
	RunID   string          `json:"run_id,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

func makeEvent(runID, typ string, data any) string {
	var raw json.RawMessage
	if data != nil {
		b, _ := json.Marshal(data)
		raw = b
	}
	e := Event{
		Type:    typ,
		Version: 1,
		At:      time.Now().UTC(),
		RunID:   runID,
		Data:    raw,
	}
	b, _ := json.Marshal(e)
	return string(b)
}

// Hub broadcasts event envelopes to any number of subscribers, typically a
// dashboard's SSE handlers. Slow subscribers drop events rather than block
// the queue loop.
type Hub struct {
	mu      sync.Mutex
	clients map[chan string]struct{}
}

func NewHub() *Hub {
	return &Hub{clients: make(map[chan string]struct{})}
}

func (h *Hub) Subscribe() chan string {
	ch := make(chan string, 16)
	h.mu.Lock()
	h.clients[ch] = struct{}{}
	h.mu.Unlock()
	return ch
}

func (h *Hub) Unsubscribe(ch chan string) {
	h.mu.Lock()
	delete(h.clients, ch)
	h.mu.Unlock()
	close(ch)
}

func (h *Hub) Publish(evt string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.clients {
		select {
		case ch <- evt:
		default:
			// drop if slow
		}
	}
}

// Sink adapts the hub into an event sink. Each call to Sink starts a new
// run id so envelopes from separate queue runs stay distinguishable.
func (h *Hub) Sink() *Sink {
	runID := uuid.NewString()
	return &Sink{
		OnLog: func(level, message string) {
			h.Publish(makeEvent(runID, "log", map[string]string{"level": level, "message": message}))
		},
		OnJobFound: func(job models.JobListing) {
			h.Publish(makeEvent(runID, "job_found", job))
		},
		OnApplicationStart: func(job models.JobListing) {
			h.Publish(makeEvent(runID, "application_start", job))
		},
		OnApplicationComplete: func(job models.JobListing, success bool) {
			h.Publish(makeEvent(runID, "application_complete", map[string]any{"job": job, "success": success}))
		},
		OnScreeningQuestion: func(question models.ScreeningQuestion, answer string) {
			h.Publish(makeEvent(runID, "screening_question", map[string]any{"question": question, "answer": answer}))
		},
		OnError: func(err error, job *models.JobListing) {
			h.Publish(makeEvent(runID, "error", map[string]any{"error": err.Error(), "job": job}))
		},
		OnQueueProgress: func(current, total int) {
			h.Publish(makeEvent(runID, "queue_progress", map[string]int{"current": current, "total": total}))
		},
		OnSessionComplete: func(applied, failed int) {
			h.Publish(makeEvent(runID, "session_complete", map[string]int{"applied": applied, "failed": failed}))
		},
	}
}
