package ai

import (
	"context"
	"errors"
)

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is a single turn handed to a completion provider.
type Message struct {
	Role    string
	Content string
}

// Provider generates one assistant reply for a message sequence.
type Provider interface {
	Chat(ctx context.Context, messages []Message) (string, error)
}

// ErrMissingCredential is returned by providers that require an API
// key before any network I/O is attempted. Callers surface it as a
// temporary-unavailability fallback rather than a hard error.
var ErrMissingCredential = errors.New("ai: api credential not configured")
