// Package session owns the recording state machine and the post-capture
// pipeline: transcribe, optionally interpret as code, insert text.
package session

import (
	"sync"
	"time"
)

// Phase is the orchestrator state.
type Phase int

const (
	Idle Phase = iota
	Recording
	Processing
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Recording:
		return "recording"
	case Processing:
		return "processing"
	}
	return "unknown"
}

// RecordingState is an immutable snapshot; the orchestrator replaces it on
// every transition.
type RecordingState struct {
	IsRecording bool      `json:"isRecording"`
	StartTime   time.Time `json:"startTime,omitempty"`
}

// Transcription is one completed dictation.
type Transcription struct {
	ID         string    `json:"id"`
	Timestamp  time.Time `json:"timestamp"`
	Text       string    `json:"transcription"`
	Duration   float64   `json:"duration"`
	Language   string    `json:"language"`
	Confidence float64   `json:"confidence"`
}

// HistoryLimit is the number of transcriptions kept.
const HistoryLimit = 50

// History is a most-recent-first list of transcriptions capped at HistoryLimit.
type History struct {
	mu    sync.RWMutex
	items []Transcription
}

// NewHistory returns a History seeded with items, which must already be
// most-recent-first.
func NewHistory(items []Transcription) *History {
	h := &History{}
	h.items = append(h.items, items...)
	if len(h.items) > HistoryLimit {
		h.items = h.items[:HistoryLimit]
	}
	return h
}

// Add prepends t, evicting the oldest entry beyond the limit.
func (h *History) Add(t Transcription) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.items = append([]Transcription{t}, h.items...)
	if len(h.items) > HistoryLimit {
		h.items = h.items[:HistoryLimit]
	}
}

// List returns a copy of the entries, most recent first.
func (h *History) List() []Transcription {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]Transcription, len(h.items))
	copy(out, h.items)
	return out
}

func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.items)
}

func (h *History) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.items = nil
}
