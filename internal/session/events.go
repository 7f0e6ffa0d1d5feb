package session

import "github.com/Alijeyrad/gotalk-voicecode/internal/hotkey"

// Event is a lifecycle notification. The set of implementations is closed.
type Event interface {
	isEvent()
}

type (
	// HotkeyTriggered forwards a hotkey engine event as it is handled.
	HotkeyTriggered struct{ Hotkey hotkey.Event }
	// RecordingStarted is sent after audio capture has begun.
	RecordingStarted struct {
		State       RecordingState
		CodeSnippet bool
	}
	// RecordingStopped is sent when capture is being stopped for processing.
	RecordingStopped struct{}
	// Canceled is sent when a recording was discarded.
	Canceled               struct{}
	ProcessingStarted      struct{}
	TranscriptionCompleted struct{ Session Transcription }
	TextInserted           struct {
		Text string
		Code bool
	}
	// ErrorOccurred carries a short user-facing message; Err is a *Error.
	ErrorOccurred struct {
		Err     error
		Message string
	}
	// ProcessingCompleted is sent once the orchestrator is back to Idle.
	ProcessingCompleted struct{}
	HistoryCleared      struct{}
)

func (HotkeyTriggered) isEvent()        {}
func (RecordingStarted) isEvent()       {}
func (RecordingStopped) isEvent()       {}
func (Canceled) isEvent()               {}
func (ProcessingStarted) isEvent()      {}
func (TranscriptionCompleted) isEvent() {}
func (TextInserted) isEvent()           {}
func (ErrorOccurred) isEvent()          {}
func (ProcessingCompleted) isEvent()    {}
func (HistoryCleared) isEvent()         {}

// Observer receives events. It is called from the orchestrator loop and from
// the pipeline goroutine and must be safe for concurrent use.
type Observer func(Event)
