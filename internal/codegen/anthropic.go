package codegen

import (
	"context"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const defaultClaudeModel = "claude-sonnet-4-20250514"

// AnthropicCompleter uses the Anthropic Messages API.
type AnthropicCompleter struct {
	model  string
	apiKey string
	client anthropic.Client
}

func NewAnthropicCompleter(opts Options) *AnthropicCompleter {
	if opts.Model == "" {
		opts.Model = defaultClaudeModel
	}
	reqOpts := []option.RequestOption{option.WithAPIKey(opts.APIKey)}
	if opts.BaseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(opts.BaseURL))
	}
	return &AnthropicCompleter{
		model:  opts.Model,
		apiKey: opts.APIKey,
		client: anthropic.NewClient(reqOpts...),
	}
}

func (c *AnthropicCompleter) Name() string     { return "anthropic" }
func (c *AnthropicCompleter) Configured() bool { return c.apiKey != "" }

func (c *AnthropicCompleter) Complete(ctx context.Context, system, user string) (string, error) {
	resp, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(c.model),
		MaxTokens:   maxTokens,
		System:      []anthropic.TextBlockParam{{Text: system}},
		Messages:    []anthropic.MessageParam{anthropic.NewUserMessage(anthropic.NewTextBlock(user))},
		Temperature: anthropic.Float(temperature),
	})
	if err != nil {
		return "", err
	}
	var b strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	return b.String(), nil
}
