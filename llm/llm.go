// Package llm holds the message model shared by the completion providers
// and a Conversation that keeps history across questions.
package llm

import (
	"context"
	"errors"
	"fmt"
)

// Role of a message author.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// PartType tells text parts from image parts.
type PartType string

const (
	PartText  PartType = "text"
	PartImage PartType = "image_url"
)

// DetailAuto lets the provider pick the image resolution.
const DetailAuto = "auto"

// Part is either text or an image in a message.
type Part struct {
	Type     PartType  `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *ImageURL `json:"image_url,omitempty"`
}

// ImageURL is a data URI (or remote URL) with a detail hint.
type ImageURL struct {
	URL    string `json:"url"`
	Detail string `json:"detail,omitempty"`
}

// TextPart returns a text part.
func TextPart(text string) Part {
	return Part{Type: PartText, Text: text}
}

// ImagePart returns an image part for a data URI.
func ImagePart(url, detail string) Part {
	return Part{Type: PartImage, ImageURL: &ImageURL{URL: url, Detail: detail}}
}

// Message is one turn of a conversation.
type Message struct {
	Role    Role   `json:"role"`
	Content []Part `json:"content"`
}

// Text concatenates the message's text parts.
func (m Message) Text() string {
	var s string
	for _, p := range m.Content {
		if p.Type == PartText {
			s += p.Text
		}
	}
	return s
}

// Completer answers a conversation with the assistant's next message.
type Completer interface {
	Complete(ctx context.Context, messages []Message) (string, error)
}

// ErrEmptyQuestion is returned by Ask for a blank question.
var ErrEmptyQuestion = errors.New("empty question")

// Conversation sends questions to a Completer and keeps the history. The
// first question is sent with the parts produced by seed, so the document
// context goes out once; later questions are sent as plain text.
type Conversation struct {
	completer Completer
	seed      func(question string) []Part
	messages  []Message
	seeded    bool
}

// NewConversation starts a conversation with a system prompt. seed may be
// nil, in which case every question is sent as plain text.
func NewConversation(c Completer, system string, seed func(question string) []Part) *Conversation {
	conv := &Conversation{completer: c, seed: seed}
	if system != "" {
		conv.messages = append(conv.messages, Message{Role: RoleSystem, Content: []Part{TextPart(system)}})
	}
	return conv
}

// Ask sends question and records the answer. On error the history is left
// as it was before the call.
func (c *Conversation) Ask(ctx context.Context, question string) (string, error) {
	if question == "" {
		return "", ErrEmptyQuestion
	}

	parts := []Part{TextPart(question)}
	seeding := !c.seeded && c.seed != nil
	if seeding {
		parts = c.seed(question)
	}

	before := len(c.messages)
	c.messages = append(c.messages, Message{Role: RoleUser, Content: parts})
	answer, err := c.completer.Complete(ctx, c.messages)
	if err != nil {
		c.messages = c.messages[:before]
		return "", fmt.Errorf("complete: %w", err)
	}
	c.messages = append(c.messages, Message{Role: RoleAssistant, Content: []Part{TextPart(answer)}})
	if seeding {
		c.seeded = true
	}
	return answer, nil
}

// History returns a copy of the messages exchanged so far.
func (c *Conversation) History() []Message {
	return append([]Message(nil), c.messages...)
}
