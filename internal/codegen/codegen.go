// Package codegen turns spoken descriptions into code with an LLM.
package codegen

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Alijeyrad/gotalk-voicecode/internal/session"
)

// Completer performs a single chat completion.
type Completer interface {
	Name() string
	Configured() bool
	Complete(ctx context.Context, system, user string) (string, error)
}

// Options configure a Completer.
type Options struct {
	APIKey  string
	Model   string
	BaseURL string
}

// Provider names accepted by New.
const (
	ProviderGroq      = "groq"
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

// New returns an Interpreter backed by provider.
func New(provider string, opts Options) (*Interpreter, error) {
	var c Completer
	switch provider {
	case ProviderGroq, "":
		c = NewGroqCompleter(opts)
	case ProviderOpenAI:
		c = NewOpenAICompleter(opts)
	case ProviderAnthropic:
		c = NewAnthropicCompleter(opts)
	default:
		return nil, fmt.Errorf("unknown code generation provider %q", provider)
	}
	return NewInterpreter(c), nil
}

// Interpreter implements session.Interpreter. A leading keyword such as
// "python" or "command" picks the target language; JavaScript is the default.
type Interpreter struct {
	completer Completer
}

var _ session.Interpreter = (*Interpreter)(nil)

func NewInterpreter(c Completer) *Interpreter {
	return &Interpreter{completer: c}
}

func (i *Interpreter) IsConfigured() bool { return i.completer.Configured() }

// InterpretCode returns code for text. Text without programming intent is
// returned unchanged by the model.
func (i *Interpreter) InterpretCode(ctx context.Context, text string) (string, error) {
	if !i.IsConfigured() {
		return "", session.ErrNotConfigured
	}
	lang, body := Detect(text)
	if body == "" {
		return "", nil
	}
	slog.Debug("interpreting", "language", lang, "completer", i.completer.Name())

	out, err := i.completer.Complete(ctx, lang.prompt(), body)
	if err != nil {
		return "", fmt.Errorf("%s: %w", i.completer.Name(), err)
	}
	code := StripFences(out)
	if code == "" {
		return body, nil
	}
	return code, nil
}

// StripFences removes a surrounding markdown code block, which models add
// despite being told not to.
func StripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	// Drop the info string ("```python").
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	} else {
		s = ""
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
