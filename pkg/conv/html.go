package conv

import (
	"strings"

	"github.com/inbucket/html2text"
)

var htmlMarkers = []string{"<table", "<!doctype", "<html", "<tr", "<div", "<p>"}

// LooksLikeHTML reports whether the generator answered with markup rather than prose.
func LooksLikeHTML(s string) bool {
	lower := strings.ToLower(s)
	for _, m := range htmlMarkers {
		if strings.Contains(lower, m) {
			return true
		}
	}
	return false
}

// HTMLToText flattens HTML for plain-text transports (terminal, telegram <pre>).
func HTMLToText(s string) (string, error) {
	text, err := html2text.FromString(stripFences(s), html2text.Options{
		OmitLinks:    false,
		PrettyTables: true,
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

// stripFences removes ```html fences models like to wrap markup in.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	if nl := strings.IndexByte(s, '\n'); nl != -1 {
		s = s[nl+1:]
	}
	return strings.TrimSuffix(strings.TrimSpace(s), "```")
}
