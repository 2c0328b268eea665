package openai

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/tmc/langchaingo/llms"
	lcopenai "github.com/tmc/langchaingo/llms/openai"

	"github.com/Rrens/tutor-chat/internal/llm"
)

const defaultBaseURL = "https://api.openai.com/v1"

// Options configures an OpenAI compatible provider
type Options struct {
	Name         string
	APIKey       string
	DefaultModel string
	BaseURL      string
	Models       []string
}

// Provider implements llm.Provider for OpenAI and API compatible services
type Provider struct {
	name         string
	apiKey       string
	defaultModel string
	baseURL      string
	models       []string
	client       *http.Client
}

// NewProvider creates a new OpenAI provider
func NewProvider(apiKey, defaultModel string) *Provider {
	return NewCompatible(Options{
		Name:         "openai",
		APIKey:       apiKey,
		DefaultModel: defaultModel,
		BaseURL:      defaultBaseURL,
	})
}

// NewCompatible creates a provider for any service exposing the OpenAI chat
// completions API
func NewCompatible(opts Options) *Provider {
	if opts.Name == "" {
		opts.Name = "openai"
	}
	if opts.DefaultModel == "" {
		opts.DefaultModel = "gpt-4o-mini"
	}
	if opts.BaseURL == "" {
		opts.BaseURL = defaultBaseURL
	}
	if len(opts.Models) == 0 {
		opts.Models = []string{
			"gpt-4o",
			"gpt-4o-mini",
			"gpt-4-turbo",
			"gpt-4",
			"gpt-3.5-turbo",
		}
	}
	return &Provider{
		name:         opts.Name,
		apiKey:       opts.APIKey,
		defaultModel: opts.DefaultModel,
		baseURL:      opts.BaseURL,
		models:       opts.Models,
		client:       &http.Client{Timeout: 30 * time.Second},
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
			return nil, fmt.Errorf("%s api key is required", base.name)
		}
		model := llm.ConfigString(config, "model")
		if model == "" {
			model = base.defaultModel
		}
		return NewCompatible(Options{
			Name:         base.name,
			APIKey:       apiKey,
			DefaultModel: model,
			BaseURL:      base.baseURL,
			Models:       base.models,
		}), nil
	}
}

// Name returns the provider identifier
func (p *Provider) Name() string {
	return p.name
}

// AvailableModels returns list of supported models
func (p *Provider) AvailableModels() []string {
	return p.models
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
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/models", nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s returned status %d", p.name, resp.StatusCode)
	}
	return nil
}

// Complete returns one non-streamed response
func (p *Provider) Complete(ctx context.Context, req llm.Request) (*llm.Response, error) {
	return p.generate(ctx, req, nil)
}

// Stream delivers the response incrementally to fn
func (p *Provider) Stream(ctx context.Context, req llm.Request, fn llm.StreamFunc) (*llm.Response, error) {
	return p.generate(ctx, req, fn)
}

func (p *Provider) generate(ctx context.Context, req llm.Request, fn llm.StreamFunc) (*llm.Response, error) {
	model := req.Model
	if model == "" {
		model = p.defaultModel
	}

	client, err := lcopenai.New(
		lcopenai.WithToken(p.apiKey),
		lcopenai.WithModel(model),
		lcopenai.WithBaseURL(p.baseURL),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s client: %w", p.name, err)
	}

	opts := []llms.CallOption{llms.WithModel(model)}
	if req.Temperature != nil {
		opts = append(opts, llms.WithTemperature(*req.Temperature))
	}
	if req.MaxTokens > 0 {
		opts = append(opts, llms.WithMaxTokens(req.MaxTokens))
	}
	if fn != nil {
		opts = append(opts, llms.WithStreamingFunc(func(ctx context.Context, chunk []byte) error {
			if len(chunk) == 0 {
				return nil
			}
			return fn(ctx, string(chunk))
		}))
	}

	start := time.Now()
	resp, err := client.GenerateContent(ctx, toMessageContent(req.Messages), opts...)
	if err != nil {
		return nil, fmt.Errorf("%s generation error: %w", p.name, err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response from %s", p.name)
	}

	choice := resp.Choices[0]
	tokens, _ := choice.GenerationInfo["TotalTokens"].(int)

	return &llm.Response{
		Content:    choice.Content,
		Model:      model,
		TokensUsed: tokens,
		LatencyMs:  time.Since(start).Milliseconds(),
	}, nil
}

func toMessageContent(messages []llm.Message) []llms.MessageContent {
	out := make([]llms.MessageContent, 0, len(messages))
	for _, m := range messages {
		var msgType llms.ChatMessageType
		switch m.Role {
		case llm.RoleSystem:
			msgType = llms.ChatMessageTypeSystem
		case llm.RoleAssistant:
			msgType = llms.ChatMessageTypeAI
		default:
			msgType = llms.ChatMessageTypeHuman
		}
		out = append(out, llms.TextParts(msgType, m.Content))
	}
	return out
}
