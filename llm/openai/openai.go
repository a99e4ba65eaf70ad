// Package openai answers conversations with the OpenAI Chat Completions API.
package openai

import (
	"context"
	"errors"
	"fmt"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/tsawler/pagevisuals/llm"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gpt-4o"

var _ llm.Completer = (*Completer)(nil)

// Completer sends whole conversations to Chat Completions.
type Completer struct {
	client openai.Client
	model  string
}

// Option configures a Completer.
type Option func(*[]option.RequestOption)

// WithBaseURL points the client at another endpoint.
func WithBaseURL(url string) Option {
	return func(o *[]option.RequestOption) { *o = append(*o, option.WithBaseURL(url)) }
}

// WithMaxRetries sets how often failed requests are retried.
func WithMaxRetries(n int) Option {
	return func(o *[]option.RequestOption) { *o = append(*o, option.WithMaxRetries(n)) }
}

// New returns a completer for model authenticated with apiKey.
func New(apiKey, model string, options ...Option) *Completer {
	if model == "" {
		model = DefaultModel
	}
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	for _, o := range options {
		o(&opts)
	}
	return &Completer{client: openai.NewClient(opts...), model: model}
}

// Model returns the model name requests are sent to.
func (c *Completer) Model() string { return c.model }

func (c *Completer) Complete(ctx context.Context, messages []llm.Message) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(c.model),
		Messages:    convertMessages(messages),
		Temperature: openai.Float(llm.Temperature),
	}
	completion, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("openai: %w", err)
	}
	if len(completion.Choices) == 0 {
		return "", errors.New("openai: response has no choices")
	}
	return completion.Choices[0].Message.Content, nil
}

func convertMessages(messages []llm.Message) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages))
	for _, m := range messages {
		switch m.Role {
		case llm.RoleSystem:
			out = append(out, openai.SystemMessage(m.Text()))
		case llm.RoleAssistant:
			out = append(out, openai.AssistantMessage(m.Text()))
		default:
			if len(m.Content) == 1 && m.Content[0].Type == llm.PartText {
				out = append(out, openai.UserMessage(m.Content[0].Text))
				continue
			}
			parts := make([]openai.ChatCompletionContentPartUnionParam, 0, len(m.Content))
			for _, p := range m.Content {
				switch {
				case p.Type == llm.PartImage && p.ImageURL != nil:
					parts = append(parts, openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{
						URL:    p.ImageURL.URL,
						Detail: p.ImageURL.Detail,
					}))
				case p.Type == llm.PartText:
					parts = append(parts, openai.TextContentPart(p.Text))
				}
			}
			out = append(out, openai.UserMessage(parts))
		}
	}
	return out
}
