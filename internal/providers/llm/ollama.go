package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/sandevgo/carebot/internal/core"
)

// Ollama speaks the OpenAI-compatible chat API but lists models through its
// native tags endpoint.
type Ollama struct {
	*OpenAICompatible
}

func NewOllama(baseURL, apiKey, model string, s Sampling) *Ollama {
	return &Ollama{OpenAICompatible: newBearer(endpoint{baseURL: baseURL}, apiKey, model, s)}
}

type ollamaTags struct {
	Models []struct {
		Name string `json:"name"`
	} `json:"models"`
}

func (o *Ollama) Models(ctx context.Context) ([]core.Model, error) {
	resp, err := o.doRequest(ctx, http.MethodGet, "/api/tags", nil, o.headers())
	if err != nil {
		return nil, fmt.Errorf("ollama not available: %w", err)
	}
	defer resp.Body.Close()

	data, err := readOK(resp)
	if err != nil {
		return nil, err
	}

	var tags ollamaTags
	if err := json.Unmarshal(data, &tags); err != nil {
		return nil, fmt.Errorf("decode ollama tags: %w", err)
	}

	models := make([]core.Model, 0, len(tags.Models))
	for _, m := range tags.Models {
		models = append(models, core.Model{ID: m.Name, Name: m.Name})
	}
	return models, nil
}
