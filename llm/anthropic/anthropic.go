// Package anthropic answers conversations with the Anthropic Messages API.
package anthropic

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/tsawler/pagevisuals/llm"
	"github.com/tsawler/pagevisuals/model"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "claude-sonnet-4-5"

// maxTokens bounds each answer.
const maxTokens = 4096

var _ llm.Completer = (*Completer)(nil)

// Completer sends whole conversations to the Messages API. System messages
// become the request's system prompt.
type Completer struct {
	client anthropic.Client
	model    string
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
	return &Completer{client: anthropic.NewClient(opts...), model: model}
}

// Model returns the model name requests are sent to.
func (c *Completer) Model() string { return c.model }

func (c *Completer) Complete(ctx context.Context, messages []llm.Message) (string, error) {
	req, err := c.convertRequest(messages)
	if err != nil {
		return "", err
	}
	msg, err := c.client.Messages.New(ctx, *req)
	if err != nil {
		return "", fmt.Errorf("anthropic: %w", err)
	}

	var b strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	return b.String(), nil
}

func (c *Completer) convertRequest(input []llm.Message) (*anthropic.MessageNewParams, error) {
	req := &anthropic.MessageNewParams{
		Model:       anthropic.Model(c.model),
		MaxTokens:   maxTokens,
		Temperature: anthropic.Float(llm.Temperature),
	}

	var system []anthropic.TextBlockParam
	for _, m := range input {
		switch m.Role {
		case llm.RoleSystem:
			if text := m.Text(); text != "" {
				system = append(system, anthropic.TextBlockParam{Text: text})
			}

		case llm.RoleAssistant:
			req.Messages = append(req.Messages, anthropic.NewAssistantMessage(anthropic.NewTextBlock(m.Text())))

		default:
			var blocks []anthropic.ContentBlockParamUnion
			for _, p := range m.Content {
				switch p.Type {
				case llm.PartText:
					if p.Text != "" {
						blocks = append(blocks, anthropic.NewTextBlock(p.Text))
					}
				case llm.PartImage:
					block, err := imageBlock(p.ImageURL)
					if err != nil {
						return nil, err
					}
					blocks = append(blocks, block)
				}
			}
			req.Messages = append(req.Messages, anthropic.NewUserMessage(blocks...))
		}
	}
	if len(system) > 0 {
		req.System = system
	}
	return req, nil
}

func imageBlock(img *llm.ImageURL) (anthropic.ContentBlockParamUnion, error) {
	if img == nil {
		return anthropic.ContentBlockParamUnion{}, errors.New("anthropic: image part without url")
	}
	blob, err := model.ParseDataURI(img.URL)
	if err != nil {
		return anthropic.ContentBlockParamUnion{}, fmt.Errorf("anthropic: %w", err)
	}
	switch blob.MIME {
	case "image/jpeg", "image/png", "image/gif", "image/webp":
	default:
		return anthropic.ContentBlockParamUnion{}, fmt.Errorf("anthropic: unsupported image type %s", blob.MIME)
	}
	return anthropic.NewImageBlockBase64(blob.MIME, base64.StdEncoding.EncodeToString(blob.Data)), nil
}
