package session

import "context"

// Capture is the audio recorded between StartCapture and StopCapture.
type Capture struct {
	Audio    []byte
	Duration float64 // seconds
}

// Capturer records microphone audio.
type Capturer interface {
	StartCapture(ctx context.Context) error
	StopCapture(ctx context.Context) (Capture, error)
}

// Result is what a Transcriber returns for one audio file.
type Result struct {
	Text       string
	Language   string
	Confidence float64
	Duration   float64 // seconds, 0 if unknown
}

// Transcriber converts an audio file to text.
type Transcriber interface {
	Name() string
	IsConfigured() bool
	TranscribeAudio(ctx context.Context, path, language string) (*Result, error)
	TestConnection(ctx context.Context) bool
}

// Interpreter turns a spoken description into source code.
type Interpreter interface {
	IsConfigured() bool
	InterpretCode(ctx context.Context, text string) (string, error)
}

// InsertMode controls whether inserted text replaces the focused field's
// content or is appended at the cursor.
type InsertMode int

const (
	Append InsertMode = iota
	Replace
)

// Inserter types text into the focused application.
type Inserter interface {
	InsertText(ctx context.Context, text string, mode InsertMode) error
}

// HistoryStore persists the transcription history.
type HistoryStore interface {
	Save(items []Transcription) error
}
