// Package speech provides the transcription back ends: Whisper-compatible
// HTTP APIs (Groq, OpenAI) and Google Cloud Speech-to-Text.
package speech

import (
	"fmt"

	"github.com/Alijeyrad/gotalk-voicecode/internal/session"
)

// Provider names accepted by New.
const (
	ProviderGroq        = "groq"
	ProviderOpenAI      = "openai"
	ProviderGoogleCloud = "google-cloud"
)

// Options configure a transcriber. Unused fields are ignored by providers
// that do not need them.
type Options struct {
	APIKey  string
	Model   string
	BaseURL string
}

// New returns the transcriber for provider.
func New(provider string, opts Options) (session.Transcriber, error) {
	switch provider {
	case ProviderGroq, "":
		return NewGroq(opts), nil
	case ProviderOpenAI:
		return NewOpenAI(opts), nil
	case ProviderGoogleCloud:
		return NewCloud(), nil
	}
	return nil, fmt.Errorf("unknown transcription provider %q", provider)
}
