package memory

import (
	"sync"
	"unicode/utf8"

	"github.com/pkoukk/tiktoken-go"
	"github.com/sandevgo/carebot/internal/core"
)

var (
	tk     *tiktoken.Tiktoken
	tkErr  error
	tkOnce sync.Once
)

func getTokenizer() (*tiktoken.Tiktoken, error) {
	tkOnce.Do(func() {
		tk, tkErr = tiktoken.GetEncoding("cl100k_base")
	})
	return tk, tkErr
}

// countTokens uses cl100k and falls back to a rough four-runes-per-token estimate
// when the encoding cannot be loaded.
func countTokens(text string) int {
	if enc, err := getTokenizer(); err == nil {
		return len(enc.Encode(text, nil, nil))
	}
	return (utf8.RuneCountInString(text) + 3) / 4
}

func countMessages(msgs []core.Message, count func(string) int) int {
	total := 0
	for _, m := range msgs {
		total += count(m.Content)
	}
	return total
}

// fitBudget drops the oldest history entries, then the least similar past messages,
// until the rendered prompt fits. The current message is never dropped.
func fitBudget(b core.ContextBundle, limit int, count func(string) int, render func(core.ContextBundle) []core.Message) []core.Message {
	msgs := render(b)
	if limit <= 0 {
		return msgs
	}

	for countMessages(msgs, count) > limit {
		switch {
		case len(b.RecentHistory) > 0:
			b.RecentHistory = b.RecentHistory[:len(b.RecentHistory)-1]
		case len(b.PastMessages) > 0:
			b.PastMessages = b.PastMessages[:len(b.PastMessages)-1]
		default:
			return msgs
		}
		msgs = render(b)
	}
	return msgs
}
