// Package greeting decides whether a message is just a hello.
package greeting

import (
	"context"
	"fmt"
	"strconv"

	"github.com/philippgille/chromem-go"
	"github.com/sandevgo/carebot/internal/core"
	"github.com/sandevgo/carebot/pkg/log"
)

const DefaultThreshold = 0.65

var DefaultPhrases = []string{
	"hello",
	"hi",
	"hey",
	"hello there",
	"hi there",
	"hey there",
	"good morning",
	"good afternoon",
	"good evening",
	"howdy",
	"greetings",
	"what's up",
	"how are you",
	"yo",
}

// Detector scores messages by cosine similarity against a fixed phrase set
// indexed in an in-memory chromem collection.
type Detector struct {
	embedder  core.Embedder
	col       *chromem.Collection
	threshold float32
}

func NewDetector(ctx context.Context, embedder core.Embedder, phrases []string, threshold float32) (*Detector, error) {
	if len(phrases) == 0 {
		phrases = DefaultPhrases
	}
	if threshold <= 0 {
		threshold = DefaultThreshold
	}

	db := chromem.NewDB()
	col, err := db.CreateCollection("greetings", nil, func(ctx context.Context, text string) ([]float32, error) {
		return embedder.Embed(ctx, text)
	})
	if err != nil {
		return nil, fmt.Errorf("create greeting collection: %w", err)
	}

	docs := make([]chromem.Document, 0, len(phrases))
	for i, p := range phrases {
		vec, err := embedder.Embed(ctx, p)
		if err != nil {
			return nil, fmt.Errorf("embed greeting %q: %w", p, err)
		}
		if isZero(vec) {
			continue
		}
		docs = append(docs, chromem.Document{
			ID:        strconv.Itoa(i),
			Content:   p,
			Embedding: vec,
		})
	}
	if len(docs) == 0 {
		return nil, fmt.Errorf("no usable greeting phrases")
	}

	if err := col.AddDocuments(ctx, docs, 1); err != nil {
		return nil, fmt.Errorf("index greetings: %w", err)
	}

	log.FromCtx(ctx).Debug().Int("phrases", len(docs)).Msg("greeting index ready")

	return &Detector{embedder: embedder, col: col, threshold: threshold}, nil
}

// Similarity is the best cosine similarity between text and any greeting phrase.
func (d *Detector) Similarity(ctx context.Context, text string) (float32, error) {
	vec, err := d.embedder.Embed(ctx, text)
	if err != nil {
		return 0, fmt.Errorf("embed message: %w", err)
	}
	// chromem normalizes queries; a zero vector would come back as NaN.
	if isZero(vec) {
		return 0, nil
	}

	res, err := d.col.QueryEmbedding(ctx, vec, 1, nil, nil)
	if err != nil {
		return 0, fmt.Errorf("query greetings: %w", err)
	}
	if len(res) == 0 {
		return 0, nil
	}
	return res[0].Similarity, nil
}

func (d *Detector) Threshold() float32 {
	return d.threshold
}

// IsGreeting reports whether the similarity exceeds the threshold.
func (d *Detector) IsGreeting(ctx context.Context, text string) (bool, error) {
	sim, err := d.Similarity(ctx, text)
	if err != nil {
		return false, err
	}
	return sim > d.threshold, nil
}

func isZero(vec []float32) bool {
	for _, v := range vec {
		if v != 0 {
			return false
		}
	}
	return true
}
