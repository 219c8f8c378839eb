// Package conv converts generated replies between the formats each transport accepts.
package conv

import (
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	"github.com/microcosm-cc/bluemonday"
)

var (
	extensions = parser.CommonExtensions | parser.NoEmptyLineBeforeBlock
	htmlFlags  = html.CommonFlags | html.HrefTargetBlank
	tgPolicy   = bluemonday.NewPolicy()
)

func init() {
	// Allowed tags https://core.telegram.org/bots/api#html-style
	tgPolicy.AllowElements("b", "strong", "i", "em", "u", "ins", "s", "strike", "del", "code", "pre", "blockquote")
	tgPolicy.AllowAttrs("href").OnElements("a")
	tgPolicy.AllowAttrs("class").OnElements("code")
}

func MarkdownToTelegramHTML(md []byte) string {
	p := parser.NewWithExtensions(extensions)
	renderer := html.NewRenderer(html.RendererOptions{Flags: htmlFlags})
	unsafeHTML := markdown.Render(p.Parse(md), renderer)

	return string(tgPolicy.SanitizeBytes(unsafeHTML))
}

// ReplyToTelegramHTML renders a generated reply for telegram. Routine schedules come
// back as HTML tables, which telegram cannot display, so they are flattened to text
// and shown preformatted.
func ReplyToTelegramHTML(reply string) string {
	if LooksLikeHTML(reply) {
		text, err := HTMLToText(reply)
		if err == nil {
			return "<pre>" + escapeTelegram(text) + "</pre>"
		}
	}
	return strings.TrimSpace(MarkdownToTelegramHTML([]byte(reply)))
}

func escapeTelegram(s string) string {
	r := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	return r.Replace(s)
}
