package core

import "context"

// AIProvider is the generation collaborator.
type AIProvider interface {
	Chat(ctx context.Context, history []Message) (Message, error)
}

type Model struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	ContextLength int    `json:"context_length,omitempty"`
}

// ModelLister is implemented by providers that can enumerate their models.
type ModelLister interface {
	Models(ctx context.Context) ([]Model, error)
}

// Embedder must be deterministic for identical input and always return Dimension() values.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Dimension() int
}

type SeverityClassifier interface {
	Classify(text string) SeverityTag
}

type GreetingDetector interface {
	// Similarity returns the best cosine similarity of text against the greeting set.
	Similarity(ctx context.Context, text string) (float32, error)
	Threshold() float32
}

// ChatHandler answers one inbound turn. Transports depend on this only.
type ChatHandler interface {
	Handle(ctx context.Context, req Request) (Reply, error)
}
