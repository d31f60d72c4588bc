// Package render turns note plaintext into previewable HTML.
package render

import (
	"bytes"
	"html"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	gmhtml "github.com/yuin/goldmark/renderer/html"
)

// The note preview policy is UGC plus GFM task-list checkboxes and heading
// anchors. External links open in a new tab.
var (
	noteMarkdown = goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
		goldmark.WithRendererOptions(gmhtml.WithUnsafe()),
	)
	notePolicy = newNotePolicy()
)

var anchorID = regexp.MustCompile(`^[\p{L}\p{N}_-]+$`)

func newNotePolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowAttrs("type").Matching(regexp.MustCompile(`^checkbox$`)).OnElements("input")
	p.AllowAttrs("checked", "disabled").OnElements("input")
	p.AllowAttrs("id").Matching(anchorID).OnElements("h1", "h2", "h3", "h4", "h5", "h6")
	p.AddTargetBlankToFullyQualifiedLinks(true)
	return p
}

// Markdown converts a markdown note body to sanitized HTML.
// Returns empty string for empty input.
func Markdown(src string) string {
	if src == "" {
		return ""
	}

	var buf bytes.Buffer
	if err := noteMarkdown.Convert([]byte(src), &buf); err != nil {
		return notePolicy.Sanitize(src)
	}

	return notePolicy.Sanitize(buf.String())
}

// Document wraps rendered note HTML in a minimal standalone page.
func Document(title, body string) string {
	var b strings.Builder
	b.Grow(len(body) + 256)
	b.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n<title>")
	b.WriteString(html.EscapeString(title))
	b.WriteString("</title>\n</head>\n<body>\n")
	b.WriteString(Markdown(body))
	b.WriteString("</body>\n</html>\n")
	return b.String()
}
