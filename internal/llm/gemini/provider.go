package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"github.com/Rrens/tutor-chat/internal/llm"
)

type Provider struct {
	apiKey string
	model  string
}

func NewProvider(apiKey, model string) *Provider {
	return &Provider{
		apiKey: apiKey,
		model:  model,
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
			return nil, fmt.Errorf("gemini api key is required")
		}
		model := llm.ConfigString(config, "model")
		if model == "" {
			model = base.model
		}
		return NewProvider(apiKey, model), nil
	}
}

func (p *Provider) Name() string {
	return "gemini"
}

func (p *Provider) AvailableModels() []string {
	return []string{
		"gemini-2.5-flash",
		"gemini-2.5-pro",
		"gemini-1.5-flash",
		"gemini-1.5-pro",
	}
}

func (p *Provider) DefaultModel() string {
	if p.model != "" {
		return p.model
	}
	return "gemini-2.5-flash"
}

func (p *Provider) IsConfigured() bool {
	return p.apiKey != ""
}

func (p *Provider) Validate(ctx context.Context) error {
	client, err := p.newClient(ctx)
	if err != nil {
		return err
	}
	defer client.Close()

	it := client.ListModels(ctx)
	if _, err := it.Next(); err != nil && !errors.Is(err, iterator.Done) {
		return fmt.Errorf("gemini validation failed: %w", err)
	}
	return nil
}

func (p *Provider) Complete(ctx context.Context, req llm.Request) (*llm.Response, error) {
	client, err := p.newClient(ctx)
	if err != nil {
		return nil, err
	}
	defer client.Close()

	model := p.modelFor(req)
	cs, last := p.startChat(client, model, req)

	start := time.Now()
	resp, err := cs.SendMessage(ctx, genai.Text(last))
	latency := time.Since(start).Milliseconds()
	if err != nil {
		return nil, fmt.Errorf("gemini generation error: %w", err)
	}

	output := textOf(resp)
	if output == "" {
		return nil, fmt.Errorf("empty response from gemini")
	}

	tokensUsed := 0
	if resp.UsageMetadata != nil {
		tokensUsed = int(resp.UsageMetadata.TotalTokenCount)
	}

	return &llm.Response{
		Content:    output,
		Model:      model,
		TokensUsed: tokensUsed,
		LatencyMs:  latency,
	}, nil
}

func (p *Provider) Stream(ctx context.Context, req llm.Request, fn llm.StreamFunc) (*llm.Response, error) {
	client, err := p.newClient(ctx)
	if err != nil {
		return nil, err
	}
	defer client.Close()

	model := p.modelFor(req)
	cs, last := p.startChat(client, model, req)

	start := time.Now()
	it := cs.SendMessageStream(ctx, genai.Text(last))

	var sb strings.Builder
	tokensUsed := 0
	for {
		resp, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("gemini stream error: %w", err)
		}
		if resp.UsageMetadata != nil {
			tokensUsed = int(resp.UsageMetadata.TotalTokenCount)
		}
		chunk := textOf(resp)
		if chunk == "" {
			continue
		}
		sb.WriteString(chunk)
		if err := fn(ctx, chunk); err != nil {
			return nil, err
		}
	}

	return &llm.Response{
		Content:    sb.String(),
		Model:      model,
		TokensUsed: tokensUsed,
		LatencyMs:  time.Since(start).Milliseconds(),
	}, nil
}

func (p *Provider) newClient(ctx context.Context) (*genai.Client, error) {
	if !p.IsConfigured() {
		return nil, fmt.Errorf("gemini provider is not configured (missing API key)")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(p.apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return client, nil
}

func (p *Provider) modelFor(req llm.Request) string {
	if req.Model != "" {
		return req.Model
	}
	return p.DefaultModel()
}

// startChat loads every message but the final user turn into the chat
// history and returns that turn's text for sending
func (p *Provider) startChat(client *genai.Client, model string, req llm.Request) (*genai.ChatSession, string) {
	generativeModel := client.GenerativeModel(model)
	if req.Temperature != nil {
		generativeModel.SetTemperature(float32(*req.Temperature))
	}
	if req.MaxTokens > 0 {
		generativeModel.SetMaxOutputTokens(int32(req.MaxTokens))
	}

	system, rest := llm.SplitSystem(req.Messages)
	if system != "" {
		generativeModel.SystemInstruction = genai.NewUserContent(genai.Text(system))
	}

	cs := generativeModel.StartChat()
	history, last := splitLast(llm.EndWithUserTurn(rest))
	cs.History = toContents(history)
	return cs, last
}

func splitLast(messages []llm.Message) ([]llm.Message, string) {
	if len(messages) == 0 {
		return nil, ""
	}
	n := len(messages) - 1
	return messages[:n], messages[n].Content
}

func toContents(messages []llm.Message) []*genai.Content {
	out := make([]*genai.Content, 0, len(messages))
	for _, m := range messages {
		role := "user"
		if m.Role == llm.RoleAssistant {
			role = "model"
		}
		out = append(out, &genai.Content{
			Role:  role,
			Parts: []genai.Part{genai.Text(m.Content)},
		})
	}
	return out
}

func textOf(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	return sb.String()
}
