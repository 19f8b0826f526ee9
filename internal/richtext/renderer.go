// Package richtext turns stored banner bodies into sanitized markup. Each
// text format maps to a rendering pipeline; everything that leaves this
// package has been through bluemonday.
package richtext

import (
	"bytes"
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"go.uber.org/zap"
)

// Known text formats.
const (
	FormatPlainText = "plain_text"
	FormatBasicHTML = "basic_html"
	FormatFullHTML  = "full_html"
	FormatMarkdown  = "markdown"
)

// Renderer renders body values according to their text format.
type Renderer struct {
	logger        *zap.Logger
	defaultFormat string
	markdown      goldmark.Markdown
	basicPolicy   *bluemonday.Policy
	fullPolicy    *bluemonday.Policy
}

// New constructs a Renderer. Unknown formats fall back to the pipeline of
// defaultFormat.
func New(logger *zap.Logger, defaultFormat string) *Renderer {
	full := bluemonday.UGCPolicy()
	full.AllowAttrs("class").Globally()
	full.AllowElements("figure", "figcaption")

	return &Renderer{
		logger:        logger,
		defaultFormat: defaultFormat,
		markdown: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
		),
		basicPolicy: bluemonday.UGCPolicy(),
		fullPolicy:  full,
	}
}

// Render converts value to sanitized markup according to format. It never
// fails: a markdown conversion error degrades to the escaped source text.
func (r *Renderer) Render(value, format string) string {
	if value == "" {
		return ""
	}
	if format == "" {
		format = r.defaultFormat
	}

	switch format {
	case FormatPlainText:
		return renderPlain(value)
	case FormatBasicHTML:
		return r.basicPolicy.Sanitize(value)
	case FormatFullHTML:
		return r.fullPolicy.Sanitize(value)
	case FormatMarkdown:
		var buf bytes.Buffer
		if err := r.markdown.Convert([]byte(value), &buf); err != nil {
			if r.logger != nil {
				r.logger.Warn("markdown conversion failed", zap.Error(err))
			}
			return renderPlain(value)
		}
		return r.basicPolicy.Sanitize(buf.String())
	default:
		if r.logger != nil {
			r.logger.Warn("unknown text format, using default",
				zap.String("format", format),
				zap.String("default", r.defaultFormat))
		}
		if r.defaultFormat != format {
			return r.Render(value, r.defaultFormat)
		}
		return renderPlain(value)
	}
}

// renderPlain escapes the value and converts line breaks to <br>.
func renderPlain(value string) string {
	escaped := html.EscapeString(value)
	escaped = strings.ReplaceAll(escaped, "\r\n", "\n")
	return strings.ReplaceAll(escaped, "\n", "<br>\n")
}
