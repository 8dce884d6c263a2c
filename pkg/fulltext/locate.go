// CLAUDE:SUMMARY Compiles parsed queries into case-insensitive matchers and locates, caps and merges match ranges.
package fulltext

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// Mode is how a compiled query matches text.
type Mode int

const (
	// ModeTerms requires every token (term or quoted sub-phrase) to occur
	// somewhere in the text, in any order.
	ModeTerms Mode = iota
	// ModePhrase requires the words to occur consecutively, separated by any
	// run of whitespace.
	ModePhrase
)

func (m Mode) String() string {
	if m == ModePhrase {
		return "phrase"
	}
	return "terms"
}

// MultiWordPolicy decides how an unquoted query of several words matches.
type MultiWordPolicy int

const (
	// MultiWordAND matches each word independently.
	MultiWordAND MultiWordPolicy = iota
	// MultiWordPhrase treats the words as one phrase, as if quoted.
	MultiWordPhrase
)

// ParseMultiWordPolicy maps "and" (or "") and "phrase" to a policy.
func ParseMultiWordPolicy(s string) (MultiWordPolicy, error) {
	switch s {
	case "", "and":
		return MultiWordAND, nil
	case "phrase":
		return MultiWordPhrase, nil
	default:
		return MultiWordAND, fmt.Errorf("unknown multi-word policy %q (want and or phrase)", s)
	}
}

func (p MultiWordPolicy) String() string {
	if p == MultiWordPhrase {
		return "phrase"
	}
	return "and"
}

// Range is a half-open byte interval [Start, End) of a match. Score is the
// weight of the matches it covers; merged ranges carry the sum.
type Range struct {
	Start int     `json:"start"`
	End   int     `json:"end"`
	Score float64 `json:"score"`
}

// CompileOptions configures Compile.
type CompileOptions struct {
	MultiWord MultiWordPolicy
	// Normalize is applied to every token before it is compiled. Use it when
	// the searched text has been normalized the same way. nil keeps tokens
	// verbatim.
	Normalize func(string) string
}

type token struct {
	words  []string
	re     *regexp.Regexp
	weight float64
}

// Matcher is a compiled query. It is immutable and safe for concurrent use.
type Matcher struct {
	query  ParsedQuery
	mode   Mode
	tokens []token
}

// Compile parses raw and builds its matcher. A query wholly wrapped in quotes
// is a phrase; otherwise every term and quoted sub-phrase must match.
func Compile(raw string, opts CompileOptions) *Matcher {
	q := ParseQuery(raw)
	m := &Matcher{query: q, mode: ModeTerms}

	var texts []string
	switch {
	case q.Quoted:
		m.mode = ModePhrase
		texts = q.Phrases
	case q.IsSinglePhrase && opts.MultiWord == MultiWordPhrase:
		m.mode = ModePhrase
		texts = []string{strings.Join(q.Terms, " ")}
	default:
		texts = append(append(texts, q.Phrases...), q.Terms...)
	}

	seen := make(map[string]bool, len(texts))
	for _, t := range texts {
		if opts.Normalize != nil {
			t = opts.Normalize(t)
		}
		words := strings.Fields(t)
		if len(words) == 0 {
			continue
		}
		key := strings.ToLower(strings.Join(words, " "))
		if seen[key] {
			continue
		}
		seen[key] = true
		m.tokens = append(m.tokens, newToken(words, m.mode == ModePhrase))
	}
	return m
}

func newToken(words []string, phrase bool) token {
	quoted := make([]string, len(words))
	for i, w := range words {
		quoted[i] = regexp.QuoteMeta(w)
	}
	weight := 1.0
	if phrase || len(words) > 1 {
		weight = float64(1 + len(words))
	}
	return token{
		words:  words,
		re:     regexp.MustCompile(`(?i)` + strings.Join(quoted, `\s+`)),
		weight: weight,
	}
}

// Query returns the parsed query the matcher was built from.
func (m *Matcher) Query() ParsedQuery { return m.query }

// Mode returns the matching mode.
func (m *Matcher) Mode() Mode { return m.mode }

// Empty reports whether the matcher has nothing to look for.
func (m *Matcher) Empty() bool { return len(m.tokens) == 0 }

// Words returns every word the matcher looks for.
func (m *Matcher) Words() []string {
	var out []string
	for _, t := range m.tokens {
		out = append(out, t.words...)
	}
	return out
}

// Matches reports whether text satisfies the query. An empty matcher matches
// everything.
func (m *Matcher) Matches(text string) bool {
	for _, t := range m.tokens {
		if !t.re.MatchString(text) {
			return false
		}
	}
	return true
}

// Find returns the unmerged ranges of every token occurrence in text, ordered
// by start then end, truncated to limit when limit > 0. It does not check
// that all tokens occur.
func (m *Matcher) Find(text string, limit int) []Range {
	n := -1
	if limit > 0 {
		n = limit
	}
	var out []Range
	for _, t := range m.tokens {
		for _, loc := range t.re.FindAllStringIndex(text, n) {
			if loc[1] <= loc[0] {
				continue
			}
			out = append(out, Range{Start: loc[0], End: loc[1], Score: t.weight})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Start != out[j].Start {
			return out[i].Start < out[j].Start
		}
		return out[i].End < out[j].End
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// Locate returns the merged match ranges of a matching text: at most limit
// raw matches are collected (limit <= 0 means no cap), then ranges closer
// than adjacency bytes are merged. A text that does not satisfy the query
// yields nil.
func (m *Matcher) Locate(text string, adjacency, limit int) []Range {
	ranges, _ := m.locateCapped(text, adjacency, limit)
	return ranges
}

// locateCapped is Locate that also reports whether limit cut the raw matches
// short.
func (m *Matcher) locateCapped(text string, adjacency, limit int) ([]Range, bool) {
	if m.Empty() || !m.Matches(text) {
		return nil, false
	}
	if limit <= 0 {
		return MergeRanges(m.Find(text, 0), adjacency), false
	}
	found := m.Find(text, limit+1)
	capped := len(found) > limit
	if capped {
		found = found[:limit]
	}
	return MergeRanges(found, adjacency), capped
}

// Matches is a convenience for Compile(query).Matches(text) with default
// options.
func Matches(text, query string) bool {
	return Compile(query, CompileOptions{}).Matches(text)
}

// Locate is a convenience for Compile(query).Locate with default options.
func Locate(text, query string, adjacency, limit int) []Range {
	return Compile(query, CompileOptions{}).Locate(text, adjacency, limit)
}

// MergeRanges sorts ranges by start and merges every range whose gap to the
// previous merged range is at most adjacency bytes (overlaps always merge).
// Scores of merged ranges are summed. The input is not modified.
func MergeRanges(ranges []Range, adjacency int) []Range {
	if len(ranges) == 0 {
		return nil
	}
	if adjacency < 0 {
		adjacency = 0
	}
	sorted := make([]Range, len(ranges))
	copy(sorted, ranges)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Start != sorted[j].Start {
			return sorted[i].Start < sorted[j].Start
		}
		return sorted[i].End < sorted[j].End
	})

	out := []Range{sorted[0]}
	for _, r := range sorted[1:] {
		cur := &out[len(out)-1]
		if r.Start-cur.End <= adjacency {
			if r.End > cur.End {
				cur.End = r.End
			}
			cur.Score += r.Score
			continue
		}
		out = append(out, r)
	}
	return out
}
