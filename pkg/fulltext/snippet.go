// CLAUDE:SUMMARY Builds HTML-escaped snippet windows around match ranges with highlighted matches.
package fulltext

import (
	"html"
	"strings"
	"unicode/utf8"
)

// Highlight markup and truncation marker used in snippets.
const (
	MarkOpen  = "<mark>"
	MarkClose = "</mark>"
	Ellipsis  = "\u2026"
)

// Snippet returns the window of text around r extended by contextWidth bytes
// on each side (clamped to the text, widened to rune boundaries). The window
// is HTML-escaped and every occurrence of m inside it is wrapped in
// <mark>...</mark>. An ellipsis marks a side where the window stops short of
// the text boundary.
func (m *Matcher) Snippet(text string, r Range, contextWidth int) string {
	start, end := snippetWindow(text, r, contextWidth)
	return renderSnippet(text, start, end, m.Find(text[start:end], 0))
}

func snippetWindow(text string, r Range, contextWidth int) (int, int) {
	if contextWidth < 0 {
		contextWidth = 0
	}
	start := max(0, min(r.Start, len(text))-contextWidth)
	end := min(len(text), max(r.End, 0)+contextWidth)
	for start > 0 && !utf8.RuneStart(text[start]) {
		start--
	}
	for end < len(text) && !utf8.RuneStart(text[end]) {
		end++
	}
	return start, end
}

// renderSnippet escapes text[start:end] and highlights marks, given relative
// to start.
func renderSnippet(text string, start, end int, marks []Range) string {
	window := text[start:end]

	var b strings.Builder
	if start > 0 {
		b.WriteString(Ellipsis)
	}
	cur := 0
	for _, mk := range MergeRanges(marks, 0) {
		if mk.Start < cur || mk.End > len(window) {
			continue
		}
		b.WriteString(html.EscapeString(window[cur:mk.Start]))
		b.WriteString(MarkOpen)
		b.WriteString(html.EscapeString(window[mk.Start:mk.End]))
		b.WriteString(MarkClose)
		cur = mk.End
	}
	b.WriteString(html.EscapeString(window[cur:]))
	if end < len(text) {
		b.WriteString(Ellipsis)
	}
	return b.String()
}

// LeadSnippet returns the escaped first limit bytes of text, cut at a rune
// boundary and followed by an ellipsis when text is longer.
func LeadSnippet(text string, limit int) string {
	if limit <= 0 || len(text) <= limit {
		return html.EscapeString(text)
	}
	end := limit
	for end > 0 && !utf8.RuneStart(text[end]) {
		end--
	}
	return html.EscapeString(strings.TrimRight(text[:end], " ")) + Ellipsis
}
