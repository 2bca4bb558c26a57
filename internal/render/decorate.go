package render

import (
	"bytes"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	chromaStyles "github.com/alecthomas/chroma/v2/styles"
	"github.com/charmbracelet/glamour"
)

// Decorator adds terminal styling to region text at view time. The region text itself is never
// modified.
type Decorator struct {
	markdown  *glamour.TermRenderer
	highlight bool
}

// NewDecorator builds a decorator. wrap is the markdown word-wrap width; zero disables markdown.
func NewDecorator(wrap int, highlightJSON bool) *Decorator {
	d := &Decorator{highlight: highlightJSON}
	if wrap > 0 {
		r, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(wrap),
		)
		if err == nil {
			d.markdown = r
		}
	}
	return d
}

// Markdown renders chat text as markdown, falling back to the plain text.
func (d *Decorator) Markdown(text string) string {
	if d == nil || d.markdown == nil || strings.HasPrefix(text, ErrorPrefix) {
		return text
	}
	out, err := d.markdown.Render(text)
	if err != nil {
		return text
	}
	return strings.TrimRight(out, "\n")
}

// JSON syntax-highlights pretty-printed JSON. Anything that does not look like JSON is returned
// unchanged.
func (d *Decorator) JSON(text string) string {
	if d == nil || !d.highlight {
		return text
	}
	trimmed := strings.TrimSpace(text)
	if trimmed == "" || (trimmed[0] != '{' && trimmed[0] != '[') {
		return text
	}
	lexer := lexers.Get("json")
	if lexer == nil {
		return text
	}
	lexer = chroma.Coalesce(lexer)
	style := chromaStyles.Get("monokai")
	if style == nil {
		style = chromaStyles.Fallback
	}
	formatter := formatters.Get("terminal256")
	if formatter == nil {
		formatter = formatters.Fallback
	}
	iterator, err := lexer.Tokenise(nil, text)
	if err != nil {
		return text
	}
	var buf bytes.Buffer
	if err := formatter.Format(&buf, style, iterator); err != nil {
		return text
	}
	return buf.String()
}
