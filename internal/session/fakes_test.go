package session

import (
	"context"
	"errors"
	"os"
	"sync"
)

var wavHeader = []byte("RIFF\x24\x00\x00\x00WAVEfmt ")

type fakeCapturer struct {
	mu       sync.Mutex
	starts   int
	stops    int
	startErr error
	stopErr  error
}

func (f *fakeCapturer) StartCapture(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.startErr != nil {
		return f.startErr
	}
	f.starts++
	return nil
}

func (f *fakeCapturer) StopCapture(context.Context) (Capture, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stops++
	if f.stopErr != nil {
		return Capture{}, f.stopErr
	}
	return Capture{Audio: wavHeader, Duration: 1.5}, nil
}

func (f *fakeCapturer) counts() (int, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.starts, f.stops
}

type fakeTranscriber struct {
	mu         sync.Mutex
	configured bool
	text       string
	err        error
	block      chan struct{}
	paths      []string
	existed    []bool
}

func (f *fakeTranscriber) Name() string { return "fake" }

func (f *fakeTranscriber) IsConfigured() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.configured
}

func (f *fakeTranscriber) setConfigured(v bool) {
	f.mu.Lock()
	f.configured = v
	f.mu.Unlock()
}

func (f *fakeTranscriber) TranscribeAudio(_ context.Context, path, language string) (*Result, error) {
	f.mu.Lock()
	block := f.block
	_, statErr := os.Stat(path)
	f.paths = append(f.paths, path)
	f.existed = append(f.existed, statErr == nil)
	text, err := f.text, f.err
	f.mu.Unlock()

	if block != nil {
		<-block
	}
	if err != nil {
		return nil, err
	}
	return &Result{Text: text, Language: "en"}, nil
}

func (f *fakeTranscriber) TestConnection(context.Context) bool { return f.IsConfigured() }

func (f *fakeTranscriber) calls() ([]string, []bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.paths...), append([]bool(nil), f.existed...)
}

type fakeInterpreter struct {
	mu     sync.Mutex
	code   string
	err    error
	inputs []string
}

func (f *fakeInterpreter) IsConfigured() bool { return true }

func (f *fakeInterpreter) InterpretCode(_ context.Context, text string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inputs = append(f.inputs, text)
	if f.err != nil {
		return "", f.err
	}
	return f.code, nil
}

func (f *fakeInterpreter) seen() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.inputs...)
}

type fakeInserter struct {
	mu    sync.Mutex
	texts []string
	err   error
}

func (f *fakeInserter) InsertText(_ context.Context, text string, _ InsertMode) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.texts = append(f.texts, text)
	return nil
}

func (f *fakeInserter) inserted() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.texts...)
}

type fakeStore struct {
	mu    sync.Mutex
	saves [][]Transcription
	err   error
}

func (f *fakeStore) Save(items []Transcription) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saves = append(f.saves, items)
	return f.err
}

func (f *fakeStore) last() []Transcription {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.saves) == 0 {
		return nil
	}
	return f.saves[len(f.saves)-1]
}

var errBoom = errors.New("boom")
