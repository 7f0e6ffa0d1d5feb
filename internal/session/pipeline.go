package session

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// defaultConfidence is recorded when the provider does not report one.
const defaultConfidence = 0.95

type pipelineRun struct {
	transcriber Transcriber
	interpreter Interpreter
	settings    Settings
	codeSnippet bool
}

func (o *Orchestrator) runPipeline(ctx context.Context, r pipelineRun) {
	if o.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}
	o.observer(ProcessingStarted{})
	if err := o.process(ctx, r); err != nil {
		o.fail(err)
	}
}

func (o *Orchestrator) process(ctx context.Context, r pipelineRun) error {
	capture, err := o.capturer.StopCapture(ctx)
	if err != nil {
		return stageErr(StageCapture, fmt.Errorf("stopping capture: %w", err))
	}
	if len(capture.Audio) == 0 {
		return stageErr(StageCapture, errors.New("no audio captured"))
	}

	path, err := o.writeTemp(capture.Audio)
	if err != nil {
		return stageErr(StageCapture, fmt.Errorf("saving audio: %w", err))
	}
	defer removeTemp(path)

	if !r.transcriber.IsConfigured() {
		return stageErr(StageConfiguration, fmt.Errorf("%s: %w", r.transcriber.Name(), ErrNotConfigured))
	}
	res, err := r.transcriber.TranscribeAudio(ctx, path, r.settings.Language)
	if err != nil {
		return stageErr(StageTranscription, err)
	}

	t := Transcription{
		ID:         uuid.NewString(),
		Timestamp:  o.now(),
		Text:       res.Text,
		Duration:   res.Duration,
		Language:   res.Language,
		Confidence: res.Confidence,
	}
	if t.Duration == 0 {
		t.Duration = capture.Duration
	}
	if t.Language == "" {
		t.Language = r.settings.Language
	}
	if t.Confidence == 0 {
		t.Confidence = defaultConfidence
	}
	o.history.Add(t)
	o.persist()
	slog.Info("transcription completed", "provider", r.transcriber.Name(), "chars", len(t.Text), "duration", t.Duration)
	o.observer(TranscriptionCompleted{Session: t})

	if r.codeSnippet {
		if !r.interpreter.IsConfigured() {
			return stageErr(StageInterpretation, ErrNotConfigured)
		}
		code, err := r.interpreter.InterpretCode(ctx, t.Text)
		if err != nil {
			return stageErr(StageInterpretation, err)
		}
		return o.insert(ctx, code, true)
	}
	if r.settings.AutoInsert {
		return o.insert(ctx, t.Text, false)
	}
	return nil
}

func (o *Orchestrator) insert(ctx context.Context, text string, code bool) error {
	if strings.TrimSpace(text) == "" {
		slog.Debug("nothing to insert")
		return nil
	}
	if err := o.inserter.InsertText(ctx, text, Append); err != nil {
		return stageErr(StageInsertion, err)
	}
	o.observer(TextInserted{Text: text, Code: code})
	return nil
}

func (o *Orchestrator) writeTemp(audio []byte) (string, error) {
	path := filepath.Join(o.tempDir, "gotalk_audio_"+uuid.NewString()+audioExt(audio))
	if err := os.WriteFile(path, audio, 0o600); err != nil {
		return "", err
	}
	return path, nil
}

func removeTemp(path string) {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("remove temp audio", "path", path, "error", err)
	}
}

// audioExt picks a file extension from the container magic bytes.
func audioExt(b []byte) string {
	switch {
	case bytes.HasPrefix(b, []byte("RIFF")):
		return ".wav"
	case bytes.HasPrefix(b, []byte{0x1A, 0x45, 0xDF, 0xA3}):
		return ".webm"
	case len(b) >= 8 && string(b[4:8]) == "ftyp":
		return ".m4a"
	case bytes.HasPrefix(b, []byte("OggS")):
		return ".ogg"
	case bytes.HasPrefix(b, []byte("fLaC")):
		return ".flac"
	}
	return ".wav"
}
