// Package severity decides whether a message raises a serious issue.
package severity

import (
	"strings"

	"github.com/sandevgo/carebot/internal/config"
	"github.com/sandevgo/carebot/internal/core"
)

type category struct {
	name     string
	keywords []string
}

// KeywordClassifier matches lower-cased keywords as substrings. The first category
// with a hit wins, so configuration order is priority order.
type KeywordClassifier struct {
	categories []category
}

func NewKeywordClassifier(cfg *config.SeverityConfig) *KeywordClassifier {
	c := &KeywordClassifier{}
	for _, cat := range cfg.Categories {
		kws := make([]string, 0, len(cat.Keywords))
		for _, kw := range cat.Keywords {
			if kw = strings.ToLower(strings.TrimSpace(kw)); kw != "" {
				kws = append(kws, kw)
			}
		}
		c.categories = append(c.categories, category{name: cat.Name, keywords: kws})
	}
	return c
}

func (c *KeywordClassifier) Classify(text string) core.SeverityTag {
	lower := strings.ToLower(text)
	for _, cat := range c.categories {
		for _, kw := range cat.keywords {
			if strings.Contains(lower, kw) {
				return core.SeverityTag{Category: cat.name, Keyword: kw}
			}
		}
	}
	return core.SeverityTag{}
}
