package conv

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarkdownToTelegramHTML(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "empty input", input: "", expected: ""},
		{name: "plain text", input: "Hello world", expected: "Hello world\n"},
		{name: "bold text", input: "**bold**", expected: "<strong>bold</strong>\n"},
		{name: "italic text", input: "*italic*", expected: "<em>italic</em>\n"},
		{name: "inline code", input: "`code`", expected: "<code>code</code>\n"},
		{name: "header tags stripped", input: "# Info", expected: "Info\n"},
		{name: "script tags sanitized", input: "<script>alert('xss')</script>", expected: "\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, MarkdownToTelegramHTML([]byte(tt.input)))
		})
	}
}

func TestLooksLikeHTML(t *testing.T) {
	assert.True(t, LooksLikeHTML("<!DOCTYPE html><table><tr><td>x</td></tr></table>"))
	assert.True(t, LooksLikeHTML("Here you go:\n<TABLE>"))
	assert.False(t, LooksLikeHTML("Take a short walk at 5pm **today**"))
}

func TestHTMLToText_Table(t *testing.T) {
	in := "```html\n<table><tr><th>Time</th><th>Activity</th></tr><tr><td>07:00 AM</td><td>Wake up</td></tr></table>\n```"

	text, err := HTMLToText(in)
	require.NoError(t, err)
	assert.Contains(t, text, "07:00 AM")
	assert.Contains(t, text, "Wake up")
	assert.NotContains(t, text, "<td>")
	assert.NotContains(t, text, "```")
}

func TestReplyToTelegramHTML(t *testing.T) {
	got := ReplyToTelegramHTML("<table><tr><td>Lunch & rest</td></tr></table>")
	assert.Contains(t, got, "<pre>")
	assert.Contains(t, got, "Lunch &amp; rest")

	assert.Equal(t, "<strong>hi</strong>", ReplyToTelegramHTML("**hi**"))
}
