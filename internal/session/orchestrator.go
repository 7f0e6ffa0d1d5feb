package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync/atomic"
	"time"

	"github.com/Alijeyrad/gotalk-voicecode/internal/hotkey"
)

// Settings are the user preferences the pipeline reads.
type Settings struct {
	AutoInsert bool
	Language   string // transcription language hint, empty for auto-detect
}

// Options configures an Orchestrator. Capturer and Inserter are required.
type Options struct {
	Capturer    Capturer
	Transcriber Transcriber
	Interpreter Interpreter
	Inserter    Inserter
	Settings    Settings

	// Store, if set, receives the history after every change.
	Store   HistoryStore
	History []Transcription

	Observer Observer
	Timeout  time.Duration // per pipeline run, 0 for none
	TempDir  string
	Now      func() time.Time
}

type providers struct {
	transcriber Transcriber
	interpreter Interpreter
	settings    Settings
}

type op int

const (
	opToggle op = iota
	opStart
	opStop
	opCancel
)

// Orchestrator is the only writer of the recording state. All transitions
// happen on the goroutine running Run.
type Orchestrator struct {
	capturer Capturer
	inserter Inserter
	store    HistoryStore
	observer Observer
	timeout  time.Duration
	tempDir  string
	now      func() time.Time
	history  *History

	cfg   atomic.Pointer[providers]
	state atomic.Pointer[RecordingState]
	ph    atomic.Int32

	cmds chan op
	done chan struct{}

	// Owned by the Run goroutine.
	phase       Phase
	codeSnippet bool
}

// New builds an Orchestrator in the Idle state.
func New(opts Options) (*Orchestrator, error) {
	if opts.Capturer == nil {
		return nil, errors.New("session: capturer is required")
	}
	if opts.Inserter == nil {
		return nil, errors.New("session: inserter is required")
	}
	o := &Orchestrator{
		capturer: opts.Capturer,
		inserter: opts.Inserter,
		store:    opts.Store,
		observer: opts.Observer,
		timeout:  opts.Timeout,
		tempDir:  opts.TempDir,
		now:      opts.Now,
		history:  NewHistory(opts.History),
		cmds:     make(chan op, 16),
		done:     make(chan struct{}, 1),
	}
	if o.observer == nil {
		o.observer = func(Event) {}
	}
	if o.tempDir == "" {
		o.tempDir = os.TempDir()
	}
	if o.now == nil {
		o.now = time.Now
	}
	o.Reconfigure(opts.Transcriber, opts.Interpreter, opts.Settings)
	o.state.Store(&RecordingState{})
	return o, nil
}

// Reconfigure swaps providers and settings. A pipeline already running keeps
// the ones it started with.
func (o *Orchestrator) Reconfigure(t Transcriber, i Interpreter, s Settings) {
	if t == nil {
		t = missing{}
	}
	if i == nil {
		i = missing{}
	}
	o.cfg.Store(&providers{transcriber: t, interpreter: i, settings: s})
}

// State returns the current recording state.
func (o *Orchestrator) State() RecordingState { return *o.state.Load() }

// Phase returns the current phase.
func (o *Orchestrator) Phase() Phase { return Phase(o.ph.Load()) }

// History returns the transcriptions, most recent first.
func (o *Orchestrator) History() []Transcription { return o.history.List() }

// ClearHistory removes every stored transcription.
func (o *Orchestrator) ClearHistory() {
	o.history.Clear()
	o.persist()
	o.observer(HistoryCleared{})
	slog.Info("transcription history cleared")
}

// TestConnection checks the configured transcription provider.
func (o *Orchestrator) TestConnection(ctx context.Context) bool {
	t := o.cfg.Load().transcriber
	slog.Info("testing transcription provider", "provider", t.Name())
	return t.TestConnection(ctx)
}

// Toggle starts a recording when idle and stops it when recording.
func (o *Orchestrator) Toggle() { o.send(opToggle) }

// Start begins a recording if idle.
func (o *Orchestrator) Start() { o.send(opStart) }

// Stop ends the recording and starts processing.
func (o *Orchestrator) Stop() { o.send(opStop) }

// Cancel discards the current recording.
func (o *Orchestrator) Cancel() { o.send(opCancel) }

func (o *Orchestrator) send(c op) {
	select {
	case o.cmds <- c:
	default:
		slog.Warn("session command dropped, queue full")
	}
}

// Run processes hotkey events and commands until ctx is done.
func (o *Orchestrator) Run(ctx context.Context, hotkeys <-chan hotkey.Event) error {
	for {
		select {
		case <-ctx.Done():
			if o.phase == Recording {
				o.discard(context.Background())
			}
			return ctx.Err()
		case ev, ok := <-hotkeys:
			if !ok {
				hotkeys = nil
				continue
			}
			o.observer(HotkeyTriggered{Hotkey: ev})
			o.handleHotkey(ctx, ev)
		case c := <-o.cmds:
			o.handleCommand(ctx, c)
		case <-o.done:
			o.finish()
		}
	}
}

func (o *Orchestrator) handleHotkey(ctx context.Context, ev hotkey.Event) {
	switch ev.Kind {
	case hotkey.Pressed, hotkey.CodeSnippetPressed:
		if ev.Mode == hotkey.PushToTalk {
			if o.phase == Idle {
				o.start(ctx, ev.CodeSnippet())
			} else {
				slog.Debug("push-to-talk press ignored", "phase", o.phase)
			}
			return
		}
		o.toggle(ctx, ev.CodeSnippet())
	case hotkey.Released, hotkey.CodeSnippetReleased:
		if o.phase == Recording {
			o.stop(ctx)
		}
	case hotkey.CancelPressed:
		o.cancel(ctx)
	}
}

func (o *Orchestrator) handleCommand(ctx context.Context, c op) {
	switch c {
	case opToggle:
		o.toggle(ctx, false)
	case opStart:
		o.start(ctx, false)
	case opStop:
		o.stop(ctx)
	case opCancel:
		o.cancel(ctx)
	}
}

func (o *Orchestrator) toggle(ctx context.Context, codeSnippet bool) {
	switch o.phase {
	case Recording:
		o.stop(ctx)
	case Idle:
		o.start(ctx, codeSnippet)
	default:
		slog.Info("toggle ignored while processing")
	}
}

func (o *Orchestrator) start(ctx context.Context, codeSnippet bool) {
	if o.phase != Idle {
		slog.Info("already recording or processing", "phase", o.phase)
		return
	}
	t := o.cfg.Load().transcriber
	if !t.IsConfigured() {
		o.fail(stageErr(StageConfiguration, fmt.Errorf("%s: %w", t.Name(), ErrNotConfigured)))
		return
	}
	if err := o.capturer.StartCapture(ctx); err != nil {
		o.fail(stageErr(StageCapture, err))
		return
	}
	o.codeSnippet = codeSnippet
	st := &RecordingState{IsRecording: true, StartTime: o.now()}
	o.setPhase(Recording, st)
	slog.Info("recording started", "code_snippet", codeSnippet)
	o.observer(RecordingStarted{State: *st, CodeSnippet: codeSnippet})
}

func (o *Orchestrator) stop(ctx context.Context) {
	if o.phase != Recording {
		slog.Info("not recording", "phase", o.phase)
		return
	}
	p := o.cfg.Load()
	run := pipelineRun{
		transcriber: p.transcriber,
		interpreter: p.interpreter,
		settings:    p.settings,
		codeSnippet: o.codeSnippet,
	}
	o.setPhase(Processing, &RecordingState{})
	slog.Info("recording stopped")
	o.observer(RecordingStopped{})

	go func() {
		o.runPipeline(ctx, run)
		o.done <- struct{}{}
	}()
}

// cancel discards the recording without transcribing. Cancel is not
// honoured once processing has begun.
func (o *Orchestrator) cancel(ctx context.Context) {
	if o.phase != Recording {
		slog.Debug("cancel ignored", "phase", o.phase)
		return
	}
	o.discard(ctx)
	slog.Info("recording canceled")
	o.observer(Canceled{})
}

func (o *Orchestrator) discard(ctx context.Context) {
	if _, err := o.capturer.StopCapture(ctx); err != nil {
		slog.Warn("stop capture", "error", err)
	}
	o.codeSnippet = false
	o.setPhase(Idle, &RecordingState{})
}

func (o *Orchestrator) finish() {
	o.codeSnippet = false
	o.setPhase(Idle, &RecordingState{})
	o.observer(ProcessingCompleted{})
}

func (o *Orchestrator) setPhase(p Phase, st *RecordingState) {
	o.phase = p
	o.ph.Store(int32(p))
	o.state.Store(st)
}

func (o *Orchestrator) fail(err error) {
	slog.Error("dictation failed", "stage", StageOf(err).String(), "error", err)
	o.observer(ErrorOccurred{Err: err, Message: userMessage(err)})
}

func (o *Orchestrator) persist() {
	if o.store == nil {
		return
	}
	if err := o.store.Save(o.history.List()); err != nil {
		slog.Error("save history", "error", err)
	}
}

func userMessage(err error) string {
	var se *Error
	if !errors.As(err, &se) {
		return err.Error()
	}
	switch se.Stage {
	case StageConfiguration:
		return "Provider not configured: " + se.Err.Error()
	case StageCapture:
		return "Mic error: " + se.Err.Error()
	case StageTranscription:
		return "Transcription failed: " + se.Err.Error()
	case StageInterpretation:
		return "Code generation failed: " + se.Err.Error()
	case StageInsertion:
		return "Type error: " + se.Err.Error()
	}
	return se.Error()
}

// missing stands in for a provider that has not been set up.
type missing struct{}

func (missing) Name() string       { return "none" }
func (missing) IsConfigured() bool { return false }
func (missing) TestConnection(context.Context) bool {
	return false
}
func (missing) TranscribeAudio(context.Context, string, string) (*Result, error) {
	return nil, ErrNotConfigured
}
func (missing) InterpretCode(context.Context, string) (string, error) {
	return "", ErrNotConfigured
}
