package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/sandevgo/carebot/internal/core"
)

// OpenAIEmbedder calls an OpenAI compatible /v1/embeddings endpoint (OpenAI, Ollama, vLLM).
type OpenAIEmbedder struct {
	baseProvider
	dim int
	// sendDimensions asks the server to shorten vectors; only OpenAI v3 models honour it.
	sendDimensions bool
}

func NewOpenAIEmbedder(baseURL, apiKey, model string, dim int, sendDimensions bool) *OpenAIEmbedder {
	return &OpenAIEmbedder{
		baseProvider:   newBaseProvider(baseURL, apiKey, model),
		dim:            dim,
		sendDimensions: sendDimensions,
	}
}

func (e *OpenAIEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	payload := map[string]any{
		"model": e.model,
		"input": text,
	}
	if e.sendDimensions {
		payload["dimensions"] = e.dim
	}

	headers := map[string]string{}
	if e.apiKey != "" {
		headers["Authorization"] = "Bearer " + e.apiKey
	}

	resp, err := e.doRequest(ctx, http.MethodPost, "/v1/embeddings", payload, headers)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := readOK(resp)
	if err != nil {
		return nil, err
	}

	var result struct {
		Data []struct {
			Embedding []float32 `json:"embedding"`
		} `json:"data"`
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	if len(result.Data) == 0 {
		return nil, fmt.Errorf("empty embedding response")
	}

	vec := result.Data[0].Embedding
	if len(vec) != e.dim {
		return nil, fmt.Errorf("%w: embedder returned %d values, want %d", core.ErrDimensionMismatch, len(vec), e.dim)
	}
	return vec, nil
}

func (e *OpenAIEmbedder) Dimension() int {
	return e.dim
}
