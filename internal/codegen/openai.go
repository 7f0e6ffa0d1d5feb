package codegen

import (
	"context"
	"errors"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

const (
	groqBaseURL      = "https://api.groq.com/openai/v1"
	defaultGroqModel = "moonshotai/kimi-k2-instruct-0905"
	defaultGPTModel  = openai.GPT4oMini

	temperature = 0.6
	maxTokens   = 4096
)

// OpenAICompleter talks to an OpenAI-compatible chat completions API.
type OpenAICompleter struct {
	name   string
	model  string
	apiKey string
	client *openai.Client
}

// NewGroqCompleter returns a completer for Groq.
func NewGroqCompleter(opts Options) *OpenAICompleter {
	if opts.BaseURL == "" {
		opts.BaseURL = groqBaseURL
	}
	if opts.Model == "" {
		opts.Model = defaultGroqModel
	}
	return newOpenAICompleter("groq", opts)
}

// NewOpenAICompleter returns a completer for OpenAI or a compatible server.
func NewOpenAICompleter(opts Options) *OpenAICompleter {
	if opts.Model == "" {
		opts.Model = defaultGPTModel
	}
	return newOpenAICompleter("openai", opts)
}

func newOpenAICompleter(name string, opts Options) *OpenAICompleter {
	cfg := openai.DefaultConfig(opts.APIKey)
	if opts.BaseURL != "" {
		cfg.BaseURL = strings.TrimRight(opts.BaseURL, "/")
	}
	return &OpenAICompleter{
		name:   name,
		model:  opts.Model,
		apiKey: opts.APIKey,
		client: openai.NewClientWithConfig(cfg),
	}
}

func (c *OpenAICompleter) Name() string     { return c.name }
func (c *OpenAICompleter) Configured() bool { return c.apiKey != "" }

func (c *OpenAICompleter) Complete(ctx context.Context, system, user string) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		Temperature: temperature,
		MaxTokens:   maxTokens,
		TopP:        1,
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("empty response")
	}
	return resp.Choices[0].Message.Content, nil
}
