package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/sandevgo/carebot/internal/core"
)

// Sampling is applied to every chat completion. Zero values leave the
// provider's defaults in place.
type Sampling struct {
	Temperature float64
	MaxTokens   int
}

func (s Sampling) apply(payload map[string]any) {
	if s.Temperature > 0 {
		payload["temperature"] = s.Temperature
	}
	if s.MaxTokens > 0 {
		payload["max_tokens"] = s.MaxTokens
	}
}

// endpoint holds the fixed details of a hosted OpenAI-compatible API.
type endpoint struct {
	baseURL    string
	chatPath   string
	modelsPath string
	headers    map[string]string
}

var (
	openAIEndpoint = endpoint{baseURL: "https://api.openai.com"}
	geminiEndpoint = endpoint{
		baseURL:    "https://generativelanguage.googleapis.com/v1beta/openai",
		chatPath:   "/chat/completions",
		modelsPath: "/models",
	}
	openRouterEndpoint = endpoint{
		baseURL: "https://openrouter.ai/api",
		headers: map[string]string{
			"HTTP-Referer": core.RepositoryURL,
			"X-Title":      core.AppName,
		},
	}
)

func newBearer(ep endpoint, apiKey, model string, s Sampling) *OpenAICompatible {
	return NewOpenAICompatible(OpenAICompatibleConfig{
		BaseURL:      ep.baseURL,
		APIKey:       apiKey,
		Model:        model,
		AuthHeader:   "Authorization",
		AuthPrefix:   "Bearer ",
		ChatPath:     ep.chatPath,
		ModelsPath:   ep.modelsPath,
		ExtraHeaders: ep.headers,
		Sampling:     s,
	})
}

type OpenRouter struct {
	*OpenAICompatible
}

func NewOpenRouter(apiKey, model string, s Sampling) *OpenRouter {
	return &OpenRouter{OpenAICompatible: newBearer(openRouterEndpoint, apiKey, model, s)}
}

// Models returns the richer OpenRouter listing, which carries context lengths.
func (o *OpenRouter) Models(ctx context.Context) ([]core.Model, error) {
	resp, err := o.doRequest(ctx, http.MethodGet, "/v1/models", nil, o.headers())
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := readOK(resp)
	if err != nil {
		return nil, fmt.Errorf("fetch models: %w", err)
	}

	var result struct {
		Data []core.Model `json:"data"`
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return result.Data, nil
}
