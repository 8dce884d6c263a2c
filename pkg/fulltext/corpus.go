// CLAUDE:SUMMARY Immutable search corpus: catalogue records joined to cleaned full text, prepared in parallel and fingerprinted.
package fulltext

import (
	"context"
	"runtime"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/cespare/xxhash/v2"
	"golang.org/x/sync/errgroup"

	"github.com/hazyhaar/pacm-search/pkg/catalog"
)

// Document is one searchable document: its catalogue record and, when the
// full-text feed has it, its cleaned text.
type Document struct {
	catalog.Record
	Text string

	catalogued bool
	meta       string
	// norm is catalog.Normalize(Text); offs maps each of its bytes back to
	// Text. Text matching runs on norm.
	norm  string
	offs  []int32
	grams *gramFilter
}

// HasText reports whether the document has full text.
func (d *Document) HasText() bool { return d.Text != "" }

// Catalogued reports whether the document comes from the catalogue feed, as
// opposed to a full-text record with no catalogue row.
func (d *Document) Catalogued() bool { return d.catalogued }

// metaSeparator keeps phrases from matching across metadata fields.
const metaSeparator = " | "

// Corpus is an immutable snapshot of the searchable documents. It is safe for
// concurrent use; a new snapshot replaces it wholesale.
type Corpus struct {
	docs    []*Document
	byURL   map[string]*Document
	version uint64
}

// BuildOptions configures NewCorpus.
type BuildOptions struct {
	Canonicalizer *catalog.Canonicalizer // nil = catalog.DefaultCanonicalizer
	Parallelism   int                    // <= 0 = GOMAXPROCS
}

// NewCorpus joins deduplicated catalogue records to text records by URL
// (exact, then with the fragment stripped) and prepares every document for
// search. Text records matching no catalogue row become documents of their
// own, after the catalogue, in feed order.
func NewCorpus(ctx context.Context, records []catalog.Record, texts []catalog.TextRecord, opts BuildOptions) (*Corpus, error) {
	canon := opts.Canonicalizer
	if canon == nil {
		canon = catalog.DefaultCanonicalizer()
	}

	byURL := make(map[string]int, len(texts))
	byBase := make(map[string]int, len(texts))
	for i, t := range texts {
		if _, ok := byURL[t.URL]; !ok {
			byURL[t.URL] = i
		}
		if base := catalog.StripFragment(t.URL); base != "" {
			if _, ok := byBase[base]; !ok {
				byBase[base] = i
			}
		}
	}

	raw := make([]string, 0, len(records)+len(texts))
	docs := make([]*Document, 0, len(records)+len(texts))
	used := make(map[int]bool, len(texts))
	for _, r := range records {
		if r.CanonicalSymbol == "" {
			r.CanonicalSymbol = canon.Canonicalize(r.Symbol)
		}
		i, ok := byURL[r.URL]
		if !ok {
			i, ok = byBase[catalog.StripFragment(r.URL)]
		}
		text := ""
		if ok {
			used[i] = true
			text = texts[i].Text
		}
		docs = append(docs, &Document{Record: r, catalogued: true})
		raw = append(raw, text)
	}
	for i, t := range texts {
		if used[i] {
			continue
		}
		if j := byURL[t.URL]; j != i {
			continue
		}
		docs = append(docs, &Document{Record: catalog.Record{
			Title:           t.Title,
			URL:             t.URL,
			Symbol:          t.Symbol,
			CanonicalSymbol: canon.Canonicalize(t.Symbol),
			Section:         t.Section,
			Subsection:      t.Subsection,
		}})
		raw = append(raw, t.Text)
	}

	par := opts.Parallelism
	if par <= 0 {
		par = runtime.GOMAXPROCS(0)
	}
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(par)
	for i, d := range docs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			d.Text = catalog.SoftClean(raw[i])
			d.meta = metadataText(&d.Record)
			d.norm, d.offs = catalog.NormalizeOffsets(d.Text)
			if d.norm != "" {
				d.grams = newGramFilter(d.norm)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	c := &Corpus{docs: docs, byURL: make(map[string]*Document, len(docs))}
	h := xxhash.New()
	for _, d := range docs {
		if _, ok := c.byURL[d.URL]; !ok {
			c.byURL[d.URL] = d
		}
		for _, s := range []string{d.URL, d.Title, d.Symbol, d.Date, d.Version, d.Text} {
			h.WriteString(s)
			h.Write([]byte{0})
		}
	}
	c.version = h.Sum64()
	return c, nil
}

// source maps a range of the normalized text back to Text, extending the end
// over combining marks the normalizer dropped.
func (d *Document) source(r Range) Range {
	out := Range{Start: int(d.offs[r.Start]), Score: r.Score}
	last := int(d.offs[max(r.End-1, r.Start)])
	_, size := utf8.DecodeRuneInString(d.Text[last:])
	out.End = last + size
	for out.End < len(d.Text) {
		c, size := utf8.DecodeRuneInString(d.Text[out.End:])
		if !unicode.Is(unicode.Mn, c) {
			break
		}
		out.End += size
	}
	return out
}

// snippet is Matcher.Snippet for a range r of the normalized text: the
// window is cut from Text and highlights are matched in the normalized form.
func (d *Document) snippet(m *Matcher, r Range, contextWidth int) string {
	start, end := snippetWindow(d.Text, d.source(r), contextWidth)
	n := len(d.norm)
	ns := sort.Search(n, func(i int) bool { return int(d.offs[i]) >= start })
	ne := sort.Search(n, func(i int) bool { return int(d.offs[i]) >= end })
	var marks []Range
	for _, mk := range m.Find(d.norm[ns:ne], 0) {
		src := d.source(Range{Start: ns + mk.Start, End: ns + mk.End})
		marks = append(marks, Range{Start: src.Start - start, End: min(src.End, end) - start})
	}
	return renderSnippet(d.Text, start, end, marks)
}

func metadataText(r *catalog.Record) string {
	fields := make([]string, 0, 3)
	for _, f := range []string{r.Title, r.Symbol, r.CanonicalSymbol} {
		if n := catalog.Normalize(f); n != "" {
			fields = append(fields, n)
		}
	}
	return strings.Join(fields, metaSeparator)
}

// Len returns the number of documents.
func (c *Corpus) Len() int { return len(c.docs) }

// Version is a fingerprint of the corpus content. Two corpora built from the
// same feeds have the same version.
func (c *Corpus) Version() uint64 { return c.version }

// TextCount returns the number of documents with full text.
func (c *Corpus) TextCount() int {
	n := 0
	for _, d := range c.docs {
		if d.HasText() {
			n++
		}
	}
	return n
}

// Document returns the document with the given URL.
func (c *Corpus) Document(url string) (*Document, bool) {
	d, ok := c.byURL[url]
	return d, ok
}

// Catalogue returns the catalogue records in catalogue order.
func (c *Corpus) Catalogue() []catalog.Record {
	out := make([]catalog.Record, 0, len(c.docs))
	for _, d := range c.docs {
		if d.catalogued {
			out = append(out, d.Record)
		}
	}
	return out
}
