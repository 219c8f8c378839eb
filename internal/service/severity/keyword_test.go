package severity

import (
	"testing"

	"github.com/sandevgo/carebot/internal/config"
	"github.com/sandevgo/carebot/internal/core"
	"github.com/stretchr/testify/assert"
)

func TestKeywordClassifier_Classify(t *testing.T) {
	c := NewKeywordClassifier(config.DefaultSeverityConfig())

	tests := []struct {
		input string
		want  core.SeverityTag
	}{
		{"I feel hopeless today", core.SeverityTag{Category: "distress", Keyword: "hopeless"}},
		{"There was an ACCIDENT at work", core.SeverityTag{Category: "emergency", Keyword: "accident"}},
		{"dealing with a family issue", core.SeverityTag{Category: "stress", Keyword: "family issue"}},
		{"I'm sad and I want to end it all", core.SeverityTag{Category: "crisis", Keyword: "end it all"}},
		{"had a great lunch", core.SeverityTag{}},
		{"", core.SeverityTag{}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := c.Classify(tt.input)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.want.Category != "", got.Serious())
		})
	}
}

func TestKeywordClassifier_CustomConfig(t *testing.T) {
	c := NewKeywordClassifier(&config.SeverityConfig{Categories: []config.SeverityCategory{
		{Name: "grief", Keywords: []string{"  Funeral "}},
	}})

	assert.Equal(t, core.SeverityTag{Category: "grief", Keyword: "funeral"}, c.Classify("the funeral is tomorrow"))
	assert.False(t, c.Classify("I feel sad").Serious())
}
