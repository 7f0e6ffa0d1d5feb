package speech

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"os"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/Alijeyrad/gotalk-voicecode/internal/session"
)

const (
	GroqBaseURL = "https://api.groq.com/openai/v1"

	defaultGroqModel   = "whisper-large-v3"
	defaultOpenAIModel = openai.Whisper1

	// maxUploadBytes is the API limit for one audio file.
	maxUploadBytes = 25 << 20
)

// Whisper transcribes through an OpenAI-compatible /audio/transcriptions
// endpoint.
type Whisper struct {
	name   string
	model  string
	apiKey string
	client *openai.Client
}

var _ session.Transcriber = (*Whisper)(nil)

// NewGroq returns a Whisper client for Groq.
func NewGroq(opts Options) *Whisper {
	if opts.BaseURL == "" {
		opts.BaseURL = GroqBaseURL
	}
	if opts.Model == "" {
		opts.Model = defaultGroqModel
	}
	return newWhisper("groq", opts)
}

// NewOpenAI returns a Whisper client for OpenAI or another compatible server.
func NewOpenAI(opts Options) *Whisper {
	if opts.Model == "" {
		opts.Model = defaultOpenAIModel
	}
	return newWhisper("openai", opts)
}

func newWhisper(name string, opts Options) *Whisper {
	cfg := openai.DefaultConfig(opts.APIKey)
	if opts.BaseURL != "" {
		cfg.BaseURL = strings.TrimRight(opts.BaseURL, "/")
	}
	return &Whisper{
		name:   name,
		model:  opts.Model,
		apiKey: opts.APIKey,
		client: openai.NewClientWithConfig(cfg),
	}
}

func (w *Whisper) Name() string { return w.name + " (" + w.model + ")" }

func (w *Whisper) IsConfigured() bool { return w.apiKey != "" }

// TranscribeAudio uploads the file at path. An empty language lets the
// service detect it.
func (w *Whisper) TranscribeAudio(ctx context.Context, path, language string) (*session.Result, error) {
	if !w.IsConfigured() {
		return nil, session.ErrNotConfigured
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("audio file: %w", err)
	}
	if info.Size() > maxUploadBytes {
		return nil, fmt.Errorf("audio file is %d bytes, limit is %d", info.Size(), maxUploadBytes)
	}

	slog.Debug("transcribing", "provider", w.name, "model", w.model, "bytes", info.Size(), "language", language)
	resp, err := w.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:       w.model,
		FilePath:    path,
		Format:      openai.AudioResponseFormatVerboseJSON,
		Language:    strings.TrimSpace(language),
		Temperature: 0,
	})
	if err != nil {
		return nil, w.describe(err)
	}

	res := &session.Result{
		Text:     strings.TrimSpace(resp.Text),
		Language: resp.Language,
		Duration: resp.Duration,
	}
	if res.Language == "" {
		res.Language = language
	}
	if len(resp.Segments) > 0 {
		var sum float64
		for _, s := range resp.Segments {
			sum += math.Exp(s.AvgLogprob)
		}
		res.Confidence = sum / float64(len(resp.Segments))
	}
	return res, nil
}

// TestConnection lists models to check the key and endpoint.
func (w *Whisper) TestConnection(ctx context.Context) bool {
	if !w.IsConfigured() {
		return false
	}
	if _, err := w.client.ListModels(ctx); err != nil {
		slog.Warn("connection test failed", "provider", w.name, "error", w.describe(err))
		return false
	}
	return true
}

func (w *Whisper) describe(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.HTTPStatusCode {
		case http.StatusUnauthorized:
			return fmt.Errorf("%s: invalid API key: %w", w.name, err)
		case http.StatusTooManyRequests:
			return fmt.Errorf("%s: rate limit exceeded: %w", w.name, err)
		case http.StatusRequestEntityTooLarge:
			return fmt.Errorf("%s: audio file too large: %w", w.name, err)
		}
	}
	return fmt.Errorf("%s: %w", w.name, err)
}
