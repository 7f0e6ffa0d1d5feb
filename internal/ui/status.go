package ui

import (
	"strings"

	"github.com/Alijeyrad/gotalk-voicecode/internal/session"
)

type indicatorState int

const (
	indHidden     indicatorState = iota
	indRecording                 // pulsing red dot
	indCode                      // pulsing violet square, code snippet recording
	indProcessing                // spinning blue arc
	indDone                      // green flash with preview, then auto-hide
	indError                     // red flash, then auto-hide
)

func (s indicatorState) String() string {
	switch s {
	case indHidden:
		return "hidden"
	case indRecording:
		return "recording"
	case indCode:
		return "code"
	case indProcessing:
		return "processing"
	case indDone:
		return "done"
	case indError:
		return "error"
	}
	return "unknown"
}

// view is what the tray and indicator should show after an event.
type view struct {
	state   indicatorState
	preview string
	// notify is a desktop notification body; empty for none.
	notify string
	// autoHide hides the indicator after a short delay.
	autoHide bool
}

// present maps a session event to the view that follows cur. ok is false for
// events that do not change what is shown.
func present(cur indicatorState, ev session.Event) (v view, ok bool) {
	switch e := ev.(type) {
	case session.RecordingStarted:
		if e.CodeSnippet {
			return view{state: indCode}, true
		}
		return view{state: indRecording}, true
	case session.RecordingStopped, session.ProcessingStarted:
		return view{state: indProcessing}, true
	case session.Canceled:
		return view{state: indHidden}, true
	case session.TextInserted:
		return view{state: indDone, preview: previewText(e.Text, e.Code), autoHide: true}, true
	case session.ErrorOccurred:
		return view{state: indError, notify: e.Message, autoHide: true}, true
	case session.ProcessingCompleted:
		// Nothing was inserted, e.g. auto-insert is off.
		if cur == indProcessing {
			return view{state: indDone, autoHide: true}, true
		}
	}
	return view{}, false
}

// previewText flattens text to one line. Code previews show the first line only.
func previewText(text string, code bool) string {
	text = strings.TrimSpace(text)
	if code {
		if first, _, found := strings.Cut(text, "\n"); found {
			text = strings.TrimSpace(first)
		}
	}
	return strings.Join(strings.Fields(text), " ")
}

// asciiPreview returns the first maxRunes characters of s followed by "..."
// if truncated. Returns "" if s contains any non-ASCII character, since the
// core X11 font cannot render it.
func asciiPreview(s string, maxRunes int) string {
	for _, r := range s {
		if r > 127 {
			return ""
		}
	}
	if len(s) > maxRunes {
		return s[:maxRunes] + "..."
	}
	return s
}
