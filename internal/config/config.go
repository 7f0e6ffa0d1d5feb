package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/Alijeyrad/gotalk-voicecode/internal/hotkey"
)

// Provider selects a remote API and the credentials used for it.
type Provider struct {
	// Provider is "groq", "openai" or "google-cloud" for transcription and
	// "groq", "openai" or "anthropic" for code generation.
	Provider string `json:"provider"`

	// APIKey is sent as a bearer token. When blank the provider's usual
	// environment variable is used (GROQ_API_KEY, OPENAI_API_KEY, ANTHROPIC_API_KEY).
	APIKey string `json:"api_key,omitempty"`

	// Model overrides the provider's default model.
	Model string `json:"model,omitempty"`

	// BaseURL points an OpenAI-compatible client at a different endpoint.
	BaseURL string `json:"base_url,omitempty"`
}

type Config struct {
	// StartStop is the dictation hotkey, e.g. {"keys":["Control","Meta"],"mode":"toggle"}.
	StartStop hotkey.Config `json:"start_stop"`

	// CodeSnippet records speech that is turned into code before insertion.
	// It may be a superset of StartStop.
	CodeSnippet hotkey.Config `json:"code_snippet"`

	// CancelKey discards the current recording.
	CancelKey string `json:"cancel_key"`

	// AutoInsert types the transcript at the cursor when processing finishes.
	AutoInsert bool `json:"auto_insert"`

	// UseClipboardInsertion pastes through the clipboard instead of typing
	// key by key. Falls back to typing if pasting fails.
	UseClipboardInsertion bool `json:"use_clipboard_insertion"`

	// Language is the ISO-639-1 hint sent to the transcriber, e.g. "en".
	// Leave blank to auto-detect.
	Language string `json:"language"`

	// Timeout is the maximum time in seconds spent processing one recording.
	Timeout int `json:"timeout"`

	Transcription Provider `json:"transcription"`
	Interpreter   Provider `json:"interpreter"`

	// EnablePunctuation replaces spoken punctuation ("comma", "period") with symbols.
	EnablePunctuation bool `json:"enable_punctuation"`
}

var (
	defaultStartStop   = hotkey.Config{Keys: []string{"Control", "Meta"}, Mode: hotkey.Toggle}
	defaultCodeSnippet = hotkey.Config{Keys: []string{"Control", "Shift", "Meta"}, Mode: hotkey.Toggle}
)

func Default() *Config {
	return &Config{
		StartStop:             cloneHotkey(defaultStartStop),
		CodeSnippet:           cloneHotkey(defaultCodeSnippet),
		CancelKey:             "Escape",
		AutoInsert:            true,
		UseClipboardInsertion: true,
		Timeout:               60,
		Transcription:         Provider{Provider: "groq"},
		Interpreter:           Provider{Provider: "groq"},
		EnablePunctuation:     true,
	}
}

// Dir is the directory holding config.json and history.json.
func Dir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "gotalk-voicecode")
}

// Path is the default config file location.
func Path() string {
	return filepath.Join(Dir(), "config.json")
}

func Load() (*Config, error) {
	return LoadFrom(Path())
}

// LoadFrom reads the config at path. A missing file yields the defaults.
func LoadFrom(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	cfg.clamp()
	return cfg, nil
}

// Clamp loaded values to valid ranges.
func (c *Config) clamp() {
	if len(c.StartStop.Keys) == 0 {
		c.StartStop.Keys = cloneHotkey(defaultStartStop).Keys
	}
	if !c.StartStop.Mode.Valid() {
		c.StartStop.Mode = hotkey.Toggle
	}
	if len(c.CodeSnippet.Keys) == 0 {
		c.CodeSnippet.Keys = cloneHotkey(defaultCodeSnippet).Keys
	}
	if !c.CodeSnippet.Mode.Valid() {
		c.CodeSnippet.Mode = hotkey.Toggle
	}
	if strings.TrimSpace(c.CancelKey) == "" {
		c.CancelKey = "Escape"
	}
	if c.Timeout < 5 {
		c.Timeout = 60
	}
	if c.Transcription.Provider == "" {
		c.Transcription.Provider = "groq"
	}
	if c.Interpreter.Provider == "" {
		c.Interpreter.Provider = "groq"
	}
}

// Bindings returns the hotkey engine registration for this config.
func (c *Config) Bindings() hotkey.Bindings {
	return hotkey.Bindings{
		StartStop:   c.StartStop,
		CodeSnippet: c.CodeSnippet,
		CancelKey:   c.CancelKey,
	}
}

// TranscriptionKey returns the configured key or the provider's env var.
func (c *Config) TranscriptionKey() string {
	return apiKey(c.Transcription)
}

// InterpreterKey returns the configured key or the provider's env var.
func (c *Config) InterpreterKey() string {
	return apiKey(c.Interpreter)
}

func apiKey(p Provider) string {
	if p.APIKey != "" {
		return p.APIKey
	}
	switch p.Provider {
	case "groq":
		return os.Getenv("GROQ_API_KEY")
	case "openai":
		return os.Getenv("OPENAI_API_KEY")
	case "anthropic":
		return os.Getenv("ANTHROPIC_API_KEY")
	}
	return ""
}

func (c *Config) Save() error {
	return c.SaveTo(Path())
}

func (c *Config) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	// The file may hold API keys.
	return os.WriteFile(path, data, 0600)
}

func cloneHotkey(h hotkey.Config) hotkey.Config {
	h.Keys = append([]string(nil), h.Keys...)
	return h
}
