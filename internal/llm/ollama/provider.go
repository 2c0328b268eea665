package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Rrens/tutor-chat/internal/llm"
)

// Provider implements llm.Provider for Ollama
type Provider struct {
	host         string
	defaultModel string
	client       *http.Client
}

// NewProvider creates a new Ollama provider
func NewProvider(host, defaultModel string) *Provider {
	if defaultModel == "" {
		defaultModel = "llama3.1"
	}
	return &Provider{
		host:         strings.TrimRight(host, "/"),
		defaultModel: defaultModel,
		client:       &http.Client{Timeout: 300 * time.Second},
	}
}

// Factory builds a provider for a session choosing its own model. Ollama
// needs no key, so only "model" is read.
func Factory(host, defaultModel string) llm.ProviderFactory {
	return func(config map[string]any) (llm.Provider, error) {
		model := llm.ConfigString(config, "model")
		if model == "" {
			model = defaultModel
		}
		return NewProvider(host, model), nil
	}
}

// Name returns the provider identifier
func (p *Provider) Name() string {
	return "ollama"
}

// AvailableModels returns list of supported models
func (p *Provider) AvailableModels() []string {
	return []string{
		"llama3",
		"llama3.1",
		"llama3.2",
		"mistral",
		"mixtral",
		"phi3",
		"qwen2",
		"gemma2",
	}
}

// DefaultModel returns the default model
func (p *Provider) DefaultModel() string {
	return p.defaultModel
}

// IsConfigured checks if provider has valid credentials
func (p *Provider) IsConfigured() bool {
	return p.host != ""
}

type chatRequest struct {
	Model    string         `json:"model"`
	Messages []llm.Message  `json:"messages"`
	Stream   bool           `json:"stream"`
	Options  map[string]any `json:"options,omitempty"`
}

type chatResponse struct {
	Message struct {
		Content string `json:"content"`
	} `json:"message"`
	Done            bool   `json:"done"`
	EvalCount       int    `json:"eval_count"`
	PromptEvalCount int    `json:"prompt_eval_count"`
	Error           string `json:"error"`
}

// Validate checks that the Ollama daemon is reachable
func (p *Provider) Validate(ctx context.Context) error {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, p.host+"/api/tags", nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ollama returned status %d", resp.StatusCode)
	}
	return nil
}

// Complete returns one non-streamed response
func (p *Provider) Complete(ctx context.Context, req llm.Request) (*llm.Response, error) {
	model := p.modelFor(req)

	start := time.Now()
	body, err := p.post(ctx, p.buildRequest(req, model, false))
	if err != nil {
		return nil, err
	}
	defer body.Close()

	var chatResp chatResponse
	if err := json.NewDecoder(body).Decode(&chatResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if chatResp.Error != "" {
		return nil, fmt.Errorf("ollama error: %s", chatResp.Error)
	}

	return &llm.Response{
		Content:    chatResp.Message.Content,
		Model:      model,
		TokensUsed: chatResp.EvalCount + chatResp.PromptEvalCount,
		LatencyMs:  time.Since(start).Milliseconds(),
	}, nil
}

// Stream reads the newline delimited JSON chunks Ollama emits
func (p *Provider) Stream(ctx context.Context, req llm.Request, fn llm.StreamFunc) (*llm.Response, error) {
	model := p.modelFor(req)

	start := time.Now()
	body, err := p.post(ctx, p.buildRequest(req, model, true))
	if err != nil {
		return nil, err
	}
	defer body.Close()

	var sb strings.Builder
	tokens := 0
	dec := json.NewDecoder(body)
	for {
		var chunk chatResponse
		if err := dec.Decode(&chunk); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("failed to decode stream chunk: %w", err)
		}
		if chunk.Error != "" {
			return nil, fmt.Errorf("ollama error: %s", chunk.Error)
		}
		if text := chunk.Message.Content; text != "" {
			sb.WriteString(text)
			if err := fn(ctx, text); err != nil {
				return nil, err
			}
		}
		if chunk.Done {
			tokens = chunk.EvalCount + chunk.PromptEvalCount
			break
		}
	}

	return &llm.Response{
		Content:    sb.String(),
		Model:      model,
		TokensUsed: tokens,
		LatencyMs:  time.Since(start).Milliseconds(),
	}, nil
}

func (p *Provider) modelFor(req llm.Request) string {
	if req.Model != "" {
		return req.Model
	}
	return p.defaultModel
}

func (p *Provider) buildRequest(req llm.Request, model string, stream bool) chatRequest {
	options := map[string]any{}
	if req.Temperature != nil {
		options["temperature"] = *req.Temperature
	}
	if req.MaxTokens > 0 {
		options["num_predict"] = req.MaxTokens
	}
	return chatRequest{
		Model:    model,
		Messages: req.Messages,
		Stream:   stream,
		Options:  options,
	}
}

func (p *Provider) post(ctx context.Context, chatReq chatRequest) (io.ReadCloser, error) {
	body, err := json.Marshal(chatReq)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.host+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("ollama returned status %d", resp.StatusCode)
	}
	return resp.Body, nil
}
