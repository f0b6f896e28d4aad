// Package htmlsanitize cleans rich-text bodies (challenge descriptions,
// translations, feedback) before they are stored.
package htmlsanitize

import (
	"html"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	policyOnce sync.Once
	policy     *bluemonday.Policy
)

// Translations are mostly technical documentation, so on top of the UGC
// baseline we keep tables with their layout attributes and inline marks.
func get() *bluemonday.Policy {
	policyOnce.Do(func() {
		p := bluemonday.UGCPolicy()
		p.AllowElements("u", "s", "sub", "sup", "mark", "hr", "br")
		p.AllowAttrs("colspan", "rowspan").Matching(bluemonday.Integer).OnElements("td", "th")
		p.AllowAttrs("class").Matching(bluemonday.SpaceSeparatedTokens).
			OnElements("table", "thead", "tbody", "tr", "td", "th", "pre")
		p.AllowStyles("width", "text-align").OnElements("table", "td", "th")
		policy = p
	})
	return policy
}

// Sanitize removes scripts, event handlers, forms, frames and unsafe URLs
// while keeping formatting markup.
func Sanitize(s string) string {
	if s == "" {
		return ""
	}
	return get().Sanitize(s)
}

// IsPlainText reports whether s contains no markup.
func IsPlainText(s string) bool {
	return !(strings.Contains(s, "<") && strings.Contains(s, ">"))
}

// PlainTextToHTML escapes s and wraps it in a paragraph, turning newlines
// into <br>.
func PlainTextToHTML(s string) string {
	if s == "" {
		return ""
	}
	escaped := html.EscapeString(s)
	escaped = strings.ReplaceAll(escaped, "\r\n", "\n")
	return "<p>" + strings.ReplaceAll(escaped, "\n", "<br>") + "</p>"
}

// Body prepares a user-supplied body for storage: plain text is converted to
// a paragraph, markup is sanitized. Surrounding whitespace is dropped.
func Body(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if IsPlainText(s) {
		return PlainTextToHTML(s)
	}
	return Sanitize(s)
}

// Text strips all markup from s, for single-line fields such as titles.
// Entities are decoded so "A & B" is stored as typed.
func Text(s string) string {
	return strings.TrimSpace(html.UnescapeString(bluemonday.StrictPolicy().Sanitize(s)))
}
