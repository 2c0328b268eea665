package anthropic

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/Rrens/tutor-chat/internal/llm"
)

const defaultMaxTokens = 4096

// Provider implements llm.Provider for Anthropic
type Provider struct {
	apiKey       string
	defaultModel string
	client       anthropic.Client
}

// NewProvider creates a new Anthropic provider
func NewProvider(apiKey, defaultModel string) *Provider {
	if defaultModel == "" {
		defaultModel = string(anthropic.ModelClaude4Sonnet20250514)
	}
	return &Provider{
		apiKey:       apiKey,
		defaultModel: defaultModel,
		client: anthropic.NewClient(
			option.WithAPIKey(apiKey),
			option.WithRequestTimeout(120*time.Second),
		),
	}
}

// Factory builds a provider from per-session settings
func Factory(base *Provider) llm.ProviderFactory {
	return func(config map[string]any) (llm.Provider, error) {
		apiKey := llm.ConfigString(config, "api_key")
		if apiKey == "" {
			apiKey = base.apiKey
		}
		if apiKey == "" {
			return nil, fmt.Errorf("anthropic api key is required")
		}
		model := llm.ConfigString(config, "model")
		if model == "" {
			model = base.defaultModel
		}
		return NewProvider(apiKey, model), nil
	}
}

// Name returns the provider identifier
func (p *Provider) Name() string {
	return "anthropic"
}

// AvailableModels returns list of supported models
func (p *Provider) AvailableModels() []string {
	return []string{
		string(anthropic.ModelClaude4Sonnet20250514),
		"claude-opus-4-20250514",
		"claude-3-7-sonnet-latest",
		"claude-3-5-haiku-latest",
	}
}

// DefaultModel returns the default model
func (p *Provider) DefaultModel() string {
	return p.defaultModel
}

// IsConfigured checks if provider has valid credentials
func (p *Provider) IsConfigured() bool {
	return p.apiKey != ""
}

// Validate lists models with the configured key
func (p *Provider) Validate(ctx context.Context) error {
	if _, err := p.client.Models.List(ctx, anthropic.ModelListParams{}); err != nil {
		return fmt.Errorf("anthropic validation failed: %w", err)
	}
	return nil
}

// Complete returns one non-streamed response
func (p *Provider) Complete(ctx context.Context, req llm.Request) (*llm.Response, error) {
	params := p.buildParams(req)

	start := time.Now()
	msg, err := p.client.Messages.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("anthropic generation error: %w", err)
	}

	var sb strings.Builder
	for _, block := range msg.Content {
		if text, ok := block.AsAny().(anthropic.TextBlock); ok {
			sb.WriteString(text.Text)
		}
	}

	if sb.Len() == 0 {
		return nil, fmt.Errorf("no response from Anthropic")
	}

	return &llm.Response{
		Content:    sb.String(),
		Model:      string(params.Model),
		TokensUsed: int(msg.Usage.InputTokens + msg.Usage.OutputTokens),
		LatencyMs:  time.Since(start).Milliseconds(),
	}, nil
}

// Stream delivers text deltas to fn as they arrive
func (p *Provider) Stream(ctx context.Context, req llm.Request, fn llm.StreamFunc) (*llm.Response, error) {
	params := p.buildParams(req)

	start := time.Now()
	stream := p.client.Messages.NewStreaming(ctx, params)
	defer stream.Close()

	var sb strings.Builder
	for stream.Next() {
		event := stream.Current()
		delta, ok := event.AsAny().(anthropic.ContentBlockDeltaEvent)
		if !ok {
			continue
		}
		text, ok := delta.Delta.AsAny().(anthropic.TextDelta)
		if !ok || text.Text == "" {
			continue
		}
		sb.WriteString(text.Text)
		if err := fn(ctx, text.Text); err != nil {
			return nil, err
		}
	}
	if err := stream.Err(); err != nil {
		return nil, fmt.Errorf("anthropic stream error: %w", err)
	}

	return &llm.Response{
		Content:   sb.String(),
		Model:     string(params.Model),
		LatencyMs: time.Since(start).Milliseconds(),
	}, nil
}

func (p *Provider) buildParams(req llm.Request) anthropic.MessageNewParams {
	model := req.Model
	if model == "" {
		model = p.defaultModel
	}
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	system, rest := llm.SplitSystem(req.Messages)

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(model),
		MaxTokens: int64(maxTokens),
		Messages:  toMessageParams(llm.EndWithUserTurn(rest)),
	}
	if system != "" {
		params.System = []anthropic.TextBlockParam{{Text: system}}
	}
	if req.Temperature != nil {
		params.Temperature = anthropic.Float(*req.Temperature)
	}
	return params
}

func toMessageParams(messages []llm.Message) []anthropic.MessageParam {
	out := make([]anthropic.MessageParam, 0, len(messages))
	for _, m := range messages {
		block := anthropic.NewTextBlock(m.Content)
		if m.Role == llm.RoleAssistant {
			out = append(out, anthropic.NewAssistantMessage(block))
			continue
		}
		out = append(out, anthropic.NewUserMessage(block))
	}
	return out
}
