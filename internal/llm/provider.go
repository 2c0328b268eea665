package llm

import (
	"context"
	"strings"
)

// Message roles understood by every provider
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one role-tagged entry of a completion request
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request contains completion parameters
type Request struct {
	Messages    []Message
	Model       string
	Temperature *float64
	MaxTokens   int
}

// Response contains LLM generation result
type Response struct {
	Content    string
	Model      string
	TokensUsed int
	LatencyMs  int64
}

// StreamFunc receives each text increment of a streamed completion, in
// arrival order. Returning an error stops the stream.
type StreamFunc func(ctx context.Context, chunk string) error

// Provider defines the interface for LLM providers
type Provider interface {
	// Name returns the provider identifier
	Name() string

	// AvailableModels returns list of supported models
	AvailableModels() []string

	// DefaultModel returns the default model
	DefaultModel() string

	// IsConfigured checks if provider has valid credentials
	IsConfigured() bool

	// Validate checks the credentials against the remote service
	Validate(ctx context.Context) error

	// Complete returns one non-streamed response
	Complete(ctx context.Context, req Request) (*Response, error)

	// Stream delivers the response incrementally to fn and returns the
	// assembled result once the stream ends
	Stream(ctx context.Context, req Request, fn StreamFunc) (*Response, error)
}

// ProviderFactory creates a provider instance from per-session settings such
// as a user supplied "api_key" and "model".
type ProviderFactory func(config map[string]any) (Provider, error)

// Temperature returns a pointer usable as Request.Temperature
func Temperature(t float64) *float64 {
	return &t
}

// SplitSystem separates system messages from the conversation for providers
// that take the system instruction out of band.
func SplitSystem(messages []Message) (string, []Message) {
	var system []string
	rest := make([]Message, 0, len(messages))
	for _, m := range messages {
		if m.Role == RoleSystem {
			system = append(system, m.Content)
			continue
		}
		rest = append(rest, m)
	}
	return strings.Join(system, "\n\n"), rest
}

// ContinuationPrompt is the user turn appended when a conversation ends with
// an assistant message, for providers that must be prompted by the user
const ContinuationPrompt = "Please continue."

// EndWithUserTurn returns messages ending in a user turn. A trailing
// assistant message stays in place with its role and a continuation prompt
// follows it.
func EndWithUserTurn(messages []Message) []Message {
	if len(messages) == 0 || messages[len(messages)-1].Role == RoleUser {
		return messages
	}
	out := make([]Message, len(messages), len(messages)+1)
	copy(out, messages)
	return append(out, Message{Role: RoleUser, Content: ContinuationPrompt})
}

// ConfigString reads a string value from a factory config map
func ConfigString(config map[string]any, key string) string {
	if v, ok := config[key].(string); ok {
		return v
	}
	return ""
}
