package llm

import (
	"context"
	"errors"
)

const (
	RoleSystem = "system"
	RoleUser   = "user"
)

// Message is one chat turn.
type Message struct {
	Role    string
	Content string
}

// Options tune a single completion request. A zero Model falls back to the
// client's configured default.
type Options struct {
	Temperature float32
	MaxTokens   int
	Model       string
}

// ErrModelNotConfigured means neither the request nor the client named a
// model. Callers must treat it as a configuration fault, not a network one.
var ErrModelNotConfigured = errors.New("llm: model not configured")

// Client is the interface for chat-completion providers
type Client interface {
	// ChatCompletion sends the messages and returns the first choice's
	// content.
	ChatCompletion(ctx context.Context, messages []Message, opts Options) (string, error)
}
