package hotkey

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Alijeyrad/gotalk-voicecode/internal/keys"
)

// Debounce is the minimum interval between two accepted toggle presses of
// the same hotkey.
const Debounce = 100 * time.Millisecond

type edge int

const (
	noEdge edge = iota
	pressEdge
	releaseEdge
)

// binding is the per-hotkey state machine: Inactive <-> Active.
type binding struct {
	combo      keys.Combo
	mode       Mode
	active     bool
	lastToggle time.Time
}

func newBinding(c Config) binding {
	mode := c.Mode
	if !mode.Valid() {
		mode = Toggle
	}
	return binding{combo: keys.Resolve(c.Keys), mode: mode}
}

func (b *binding) step(pressed keys.Set) edge {
	m := keys.Matches(pressed, b.combo)
	switch {
	case m && !b.active:
		b.active = true
		return pressEdge
	case !m && b.active:
		b.active = false
		return releaseEdge
	}
	return noEdge
}

// accept reports whether an edge fires under the binding's mode.
func (b *binding) accept(e edge, now time.Time) bool {
	switch e {
	case pressEdge:
		if b.mode == PushToTalk {
			return true
		}
		if b.lastToggle.IsZero() || now.Sub(b.lastToggle) >= Debounce {
			b.lastToggle = now
			return true
		}
		slog.Debug("toggle press debounced", "hotkey", b.combo.String())
		return false
	case releaseEdge:
		return b.mode == PushToTalk
	}
	return false
}

// Engine tracks pressed keys and emits Events for the registered Bindings.
type Engine struct {
	source Source
	now    func() time.Time
	events chan Event

	mu        sync.Mutex
	pressed   keys.Set
	startStop binding
	snippet   binding
	cancel    keys.Code
	hasCancel bool
	listening bool
	stop      chan struct{}
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock overrides the time source used for toggle debouncing.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithBuffer sets the capacity of the Events channel.
func WithBuffer(n int) Option {
	return func(e *Engine) { e.events = make(chan Event, n) }
}

// NewEngine creates an Engine reading key events from src.
func NewEngine(src Source, opts ...Option) *Engine {
	e := &Engine{
		source:  src,
		now:     time.Now,
		events:  make(chan Event, 64),
		pressed: keys.NewSet(),
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Events returns the channel on which hotkey events are delivered, in the
// order of the physical key transitions that caused them.
func (e *Engine) Events() <-chan Event { return e.events }

// Register installs b, replacing any previous bindings. The OS hook is
// started on the first call only; a failure to start it is returned.
func (e *Engine) Register(b Bindings) error {
	startStop := newBinding(b.StartStop)
	snippet := newBinding(b.CodeSnippet)
	for _, hb := range []binding{startStop, snippet} {
		if !hb.combo.Reachable() && hb.combo.String() != "" {
			slog.Warn("hotkey contains unknown keys and will never fire", "keys", hb.combo.String())
		}
	}
	cancel, hasCancel := keys.Code(0), false
	if b.CancelKey != "" {
		cancel, hasCancel = keys.Lookup(b.CancelKey)
		if !hasCancel {
			slog.Warn("unknown cancel key ignored", "key", b.CancelKey)
		}
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.startStop = startStop
	e.snippet = snippet
	e.cancel, e.hasCancel = cancel, hasCancel

	if !e.listening {
		ch, err := e.source.Start()
		if err != nil {
			return fmt.Errorf("starting key hook: %w", err)
		}
		e.stop = make(chan struct{})
		e.listening = true
		go e.pump(ch, e.stop)
	}

	slog.Info("hotkeys registered",
		"start_stop", b.StartStop.String(),
		"code_snippet", b.CodeSnippet.String(),
		"cancel", b.CancelKey)
	return nil
}

// Unregister stops the OS hook and clears all key and hotkey state.
func (e *Engine) Unregister() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.listening {
		close(e.stop)
		e.source.Stop()
		e.listening = false
	}
	e.pressed.Clear()
	e.startStop = binding{}
	e.snippet = binding{}
	e.hasCancel = false
	slog.Info("hotkeys unregistered")
}

// Listening reports whether the OS hook is installed.
func (e *Engine) Listening() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.listening
}

func (e *Engine) pump(ch <-chan KeyEvent, stop <-chan struct{}) {
	for {
		select {
		case <-stop:
			return
		case ev, ok := <-ch:
			if !ok {
				return
			}
			if ev.Down {
				e.KeyDown(ev.Code)
			} else {
				e.KeyUp(ev.Code)
			}
		}
	}
}

// KeyDown records a key press and evaluates the hotkeys.
func (e *Engine) KeyDown(c keys.Code) {
	e.mu.Lock()
	e.pressed.Add(c)
	out := e.evaluate()
	e.mu.Unlock()
	e.emit(out)
}

// KeyUp records a key release and evaluates the hotkeys.
func (e *Engine) KeyUp(c keys.Code) {
	e.mu.Lock()
	e.pressed.Remove(c)
	out := e.evaluate()
	e.mu.Unlock()
	e.emit(out)
}

// evaluate runs cancel, then code-snippet, then start/stop. The code-snippet
// combination is checked first because start/stop may be a subset of it.
func (e *Engine) evaluate() []Event {
	if e.hasCancel && e.pressed.Has(e.cancel) {
		return []Event{{Kind: CancelPressed}}
	}

	now := e.now()
	var out []Event

	se := e.snippet.step(e.pressed)
	if e.snippet.accept(se, now) {
		kind := CodeSnippetPressed
		if se == releaseEdge {
			kind = CodeSnippetReleased
		}
		out = append(out, Event{Kind: kind, Mode: e.snippet.mode})
	}
	// Keys left over from the code-snippet chord must not read as a fresh
	// start/stop press.
	if e.snippet.active || se == releaseEdge {
		return out
	}

	ss := e.startStop.step(e.pressed)
	if e.startStop.accept(ss, now) {
		kind := Pressed
		if ss == releaseEdge {
			kind = Released
		}
		out = append(out, Event{Kind: kind, Mode: e.startStop.mode})
	}
	return out
}

func (e *Engine) emit(out []Event) {
	for _, ev := range out {
		slog.Debug("hotkey event", "event", ev.String())
		e.events <- ev
	}
}
