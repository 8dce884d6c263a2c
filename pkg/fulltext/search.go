// CLAUDE:SUMMARY Document-level and occurrence-level search over a Corpus with per-document and global caps.
package fulltext

import (
	"net/url"
	"strings"

	"github.com/hazyhaar/pacm-search/pkg/catalog"
)

// Options bounds and tunes a search.
type Options struct {
	Adjacency      int             `yaml:"adjacency" json:"adjacency"`
	PerDocumentCap int             `yaml:"per_document_cap" json:"per_document_cap"`
	GlobalCap      int             `yaml:"global_cap" json:"global_cap"`
	ContextWidth   int             `yaml:"context_width" json:"context_width"`
	MaxSnippets    int             `yaml:"max_snippets" json:"max_snippets"`
	MaxDocuments   int             `yaml:"max_documents" json:"max_documents"`
	LeadSnippet    int             `yaml:"lead_snippet" json:"lead_snippet"`
	MultiWord      MultiWordPolicy `yaml:"-" json:"-"`
}

// DefaultOptions returns the search defaults.
func DefaultOptions() Options {
	return Options{
		Adjacency:      20,
		PerDocumentCap: 200,
		GlobalCap:      2000,
		ContextWidth:   90,
		MaxSnippets:    3,
		MaxDocuments:   400,
		LeadSnippet:    240,
	}
}

// DocumentHit is one matching document.
type DocumentHit struct {
	URL             string   `json:"url"`
	ViewURL         string   `json:"view_url"`
	Title           string   `json:"title"`
	Symbol          string   `json:"symbol"`
	CanonicalSymbol string   `json:"canonical_symbol,omitempty"`
	Section         string   `json:"section,omitempty"`
	Subsection      string   `json:"subsection,omitempty"`
	Type            string   `json:"type,omitempty"`
	Date            string   `json:"date,omitempty"`
	Snippets        []string `json:"snippets,omitempty"`
	MatchCount      int      `json:"match_count"`
	Score           float64  `json:"score"`
	Rank            int      `json:"rank"`
}

// DocumentResults is the answer to SearchDocuments.
type DocumentResults struct {
	Query     ParsedQuery   `json:"query"`
	Mode      string        `json:"mode"`
	FullText  bool          `json:"fulltext"`
	Total     int           `json:"total"`
	Truncated bool          `json:"truncated"`
	Documents []DocumentHit `json:"documents"`
}

// Occurrence is one merged match region in one document.
type Occurrence struct {
	URL     string  `json:"url"`
	ViewURL string  `json:"view_url"`
	Title   string  `json:"title"`
	Symbol  string  `json:"symbol"`
	Section string  `json:"section,omitempty"`
	Start   int     `json:"start"`
	End     int     `json:"end"`
	Snippet string  `json:"snippet"`
	Score   float64 `json:"score"`
	Rank    int     `json:"rank"`
}

// OccurrenceResults is the answer to SearchOccurrences.
type OccurrenceResults struct {
	Query       ParsedQuery  `json:"query"`
	Mode        string       `json:"mode"`
	Total       int          `json:"total"`
	Truncated   bool         `json:"truncated"`
	Occurrences []Occurrence `json:"occurrences"`
}

// FilterCatalogue returns the catalogue records whose metadata satisfies raw,
// in catalogue order. An empty query lists the whole catalogue.
func (c *Corpus) FilterCatalogue(raw string, opts Options) []catalog.Record {
	meta := Compile(raw, CompileOptions{MultiWord: opts.MultiWord, Normalize: catalog.Normalize})
	var out []catalog.Record
	for _, d := range c.docs {
		if d.catalogued && meta.Matches(d.meta) {
			out = append(out, d.Record)
		}
	}
	return out
}

// SearchDocuments matches raw against every document's metadata and, when
// fullText is set, its text. Both are compared in normalized form. A document
// is a hit when all query tokens occur in its metadata or all occur in its
// text. Hits are ranked and limited to MaxDocuments. An empty query lists
// every catalogued document unranked when fullText is off and matches nothing
// when it is on. Truncated is set when any cap cut the results short.
func (c *Corpus) SearchDocuments(raw string, fullText bool, opts Options) *DocumentResults {
	m := Compile(raw, CompileOptions{MultiWord: opts.MultiWord, Normalize: catalog.Normalize})
	res := &DocumentResults{Query: m.Query(), Mode: m.Mode().String(), FullText: fullText}

	if m.Empty() {
		if !fullText {
			for _, d := range c.docs {
				if d.catalogued {
					res.Documents = append(res.Documents, newDocumentHit(d, ""))
				}
			}
			for i := range res.Documents {
				res.Documents[i].Rank = i + 1
			}
			res.Total = len(res.Documents)
		}
		return res
	}

	words := m.Words()
	budget := opts.GlobalCap
	for _, d := range c.docs {
		metaRanges := m.Locate(d.meta, 0, opts.PerDocumentCap)

		var textRanges []Range
		if fullText && d.HasText() && d.grams.mayContain(words) {
			var capped bool
			limit := capFor(opts.PerDocumentCap, budget, opts.GlobalCap > 0)
			textRanges, capped = m.locateCapped(d.norm, opts.Adjacency, limit)
			if capped {
				res.Truncated = true
			}
		}
		if len(metaRanges) == 0 && len(textRanges) == 0 {
			continue
		}

		hit := newDocumentHit(d, raw)
		hit.MatchCount = len(metaRanges) + len(textRanges)
		for _, r := range metaRanges {
			hit.Score += r.Score
		}
		for i, r := range textRanges {
			hit.Score += r.Score
			if i < opts.MaxSnippets {
				hit.Snippets = append(hit.Snippets, d.snippet(m, r, opts.ContextWidth))
			}
		}
		if len(hit.Snippets) == 0 && fullText && d.HasText() {
			hit.Snippets = []string{LeadSnippet(d.Text, opts.LeadSnippet)}
		}
		res.Documents = append(res.Documents, hit)

		if opts.GlobalCap > 0 {
			budget -= len(textRanges)
			if budget <= 0 {
				res.Truncated = true
				break
			}
		}
	}

	RankDocuments(res.Documents)
	res.Total = len(res.Documents)
	if opts.MaxDocuments > 0 && len(res.Documents) > opts.MaxDocuments {
		res.Documents = res.Documents[:opts.MaxDocuments]
		res.Truncated = true
	}
	return res
}

// SearchOccurrences lists every merged match region in document text, each
// with its own snippet. Start and End are byte offsets in the document's
// cleaned text. An empty query matches nothing.
func (c *Corpus) SearchOccurrences(raw string, opts Options) *OccurrenceResults {
	m := Compile(raw, CompileOptions{MultiWord: opts.MultiWord, Normalize: catalog.Normalize})
	res := &OccurrenceResults{Query: m.Query(), Mode: m.Mode().String()}
	if m.Empty() {
		return res
	}

	words := m.Words()
	budget := opts.GlobalCap
	for _, d := range c.docs {
		if !d.HasText() || !d.grams.mayContain(words) {
			continue
		}
		ranges, capped := m.locateCapped(d.norm, opts.Adjacency, capFor(opts.PerDocumentCap, budget, opts.GlobalCap > 0))
		if capped {
			res.Truncated = true
		}
		view := ViewURL(d.URL, raw)
		for _, r := range ranges {
			src := d.source(r)
			res.Occurrences = append(res.Occurrences, Occurrence{
				URL:     d.URL,
				ViewURL: view,
				Title:   d.Title,
				Symbol:  d.Symbol,
				Section: d.Section,
				Start:   src.Start,
				End:     src.End,
				Snippet: d.snippet(m, r, opts.ContextWidth),
				Score:   r.Score,
			})
		}
		if opts.GlobalCap > 0 {
			budget -= len(ranges)
			if budget <= 0 {
				res.Truncated = true
				break
			}
		}
	}

	RankOccurrences(res.Occurrences)
	res.Total = len(res.Occurrences)
	return res
}

// capFor is the range limit for the next document: the per-document cap,
// lowered to what is left of the global budget.
func capFor(perDoc, budget int, global bool) int {
	if !global {
		return perDoc
	}
	if perDoc <= 0 || budget < perDoc {
		return budget
	}
	return perDoc
}

func newDocumentHit(d *Document, query string) DocumentHit {
	return DocumentHit{
		URL:             d.URL,
		ViewURL:         ViewURL(d.URL, query),
		Title:           d.Title,
		Symbol:          d.Symbol,
		CanonicalSymbol: d.CanonicalSymbol,
		Section:         d.Section,
		Subsection:      d.Subsection,
		Type:            d.Type,
		Date:            d.Date,
	}
}

// ViewURL returns link with a "search=" fragment parameter carrying query
// when link points at a PDF, so viewers open with the terms highlighted. An
// existing fragment is kept. Other links and empty queries are unchanged.
func ViewURL(link, query string) string {
	q := strings.TrimSpace(strings.ReplaceAll(query, `"`, ""))
	if q == "" || link == "" {
		return link
	}
	base, frag, _ := strings.Cut(link, "#")
	path := base
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	if !strings.HasSuffix(strings.ToLower(path), ".pdf") {
		return link
	}
	param := "search=" + strings.ReplaceAll(url.QueryEscape(q), "+", "%20")
	if frag != "" {
		return base + "#" + frag + "&" + param
	}
	return base + "#" + param
}
