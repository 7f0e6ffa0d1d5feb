package session

import (
	"errors"
	"fmt"
)

// Stage names the pipeline step an Error came from.
type Stage int

const (
	StageConfiguration Stage = iota + 1
	StageCapture
	StageTranscription
	StageInterpretation
	StageInsertion
)

func (s Stage) String() string {
	switch s {
	case StageConfiguration:
		return "configuration"
	case StageCapture:
		return "capture"
	case StageTranscription:
		return "transcription"
	case StageInterpretation:
		return "interpretation"
	case StageInsertion:
		return "insertion"
	}
	return "unknown"
}

// ErrNotConfigured is wrapped by configuration errors.
var ErrNotConfigured = errors.New("provider not configured")

// Error is a pipeline failure tagged with its stage.
type Error struct {
	Stage Stage
	Err   error
}

func (e *Error) Error() string { return fmt.Sprintf("%s: %v", e.Stage, e.Err) }
func (e *Error) Unwrap() error { return e.Err }

func stageErr(s Stage, err error) *Error { return &Error{Stage: s, Err: err} }

// StageOf returns the stage of err, or 0 if err is not an *Error.
func StageOf(err error) Stage {
	var e *Error
	if errors.As(err, &e) {
		return e.Stage
	}
	return 0
}
