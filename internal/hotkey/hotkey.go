// Package hotkey turns raw global key events into press/release events for
// the configured start/stop, code-snippet and cancel keys.
package hotkey

import (
	"fmt"
	"strings"
)

// Mode selects how a hotkey drives recording.
type Mode string

const (
	// Toggle starts on one press and stops on the next.
	Toggle Mode = "toggle"
	// PushToTalk records only while the combination is held.
	PushToTalk Mode = "push-to-talk"
)

// Valid reports whether m is a known mode.
func (m Mode) Valid() bool { return m == Toggle || m == PushToTalk }

// Config is one configured key combination.
type Config struct {
	Keys []string `json:"keys"`
	Mode Mode     `json:"mode"`
}

func (c Config) String() string {
	return fmt.Sprintf("%s (%s)", strings.Join(c.Keys, "+"), c.Mode)
}

// Bindings is the full set of hotkeys the engine listens for.
type Bindings struct {
	StartStop   Config
	CodeSnippet Config
	CancelKey   string
}

// Kind identifies an engine event.
type Kind int

const (
	Pressed Kind = iota + 1
	Released
	CodeSnippetPressed
	CodeSnippetReleased
	CancelPressed
)

func (k Kind) String() string {
	switch k {
	case Pressed:
		return "hotkey-pressed"
	case Released:
		return "hotkey-released"
	case CodeSnippetPressed:
		return "code-snippet-hotkey-pressed"
	case CodeSnippetReleased:
		return "code-snippet-hotkey-released"
	case CancelPressed:
		return "cancel-pressed"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Event is emitted on a hotkey transition. Mode is the mode of the hotkey
// that fired; it is empty for CancelPressed.
type Event struct {
	Kind Kind
	Mode Mode
}

// CodeSnippet reports whether the event came from the code-snippet hotkey.
func (e Event) CodeSnippet() bool {
	return e.Kind == CodeSnippetPressed || e.Kind == CodeSnippetReleased
}

func (e Event) String() string {
	if e.Mode == "" {
		return e.Kind.String()
	}
	return e.Kind.String() + "/" + string(e.Mode)
}
