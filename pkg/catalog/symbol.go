// CLAUDE:SUMMARY Ordered symbol grammars that extract a stable canonical identifier from published document symbols.
package catalog

import (
	"fmt"
	"regexp"
	"strings"
)

// GrammarSpec is one recognized symbol grammar. Grammars are tried in order
// and the first match wins.
type GrammarSpec struct {
	Name  string `yaml:"name" json:"name"`
	Regex string `yaml:"regex" json:"regex"`
}

// DefaultGrammars are the registry identifier formats found in the Article 6.4
// catalogue: CMA decisions, Supervisory Body standards and procedures, and UN
// document symbols.
var DefaultGrammars = []GrammarSpec{
	{Name: "cma_decision", Regex: `(?i)\d+/CMA\.\d`},
	{Name: "a64_document", Regex: `(?i)A6\.4-[A-Z]+(?:-[A-Z]+)*-\d{3}`},
	{Name: "un_symbol", Regex: `(?i)FCCC/PA/CMA/\d{4}/[\w./-]+`},
}

type grammar struct {
	name string
	re   *regexp.Regexp
}

// Canonicalizer extracts canonical symbols. It is immutable and safe for
// concurrent use.
type Canonicalizer struct {
	grammars []grammar
}

// NewCanonicalizer compiles specs in order. An empty list yields a
// canonicalizer that only trims.
func NewCanonicalizer(specs []GrammarSpec) (*Canonicalizer, error) {
	c := &Canonicalizer{grammars: make([]grammar, 0, len(specs))}
	for _, spec := range specs {
		re, err := regexp.Compile(spec.Regex)
		if err != nil {
			return nil, fmt.Errorf("grammar %q: %w", spec.Name, err)
		}
		if re.MatchString("") {
			return nil, fmt.Errorf("grammar %q: matches the empty string", spec.Name)
		}
		c.grammars = append(c.grammars, grammar{name: spec.Name, re: re})
	}
	return c, nil
}

var defaultCanonicalizer = mustCanonicalizer(DefaultGrammars)

func mustCanonicalizer(specs []GrammarSpec) *Canonicalizer {
	c, err := NewCanonicalizer(specs)
	if err != nil {
		panic(err)
	}
	return c
}

// DefaultCanonicalizer returns the canonicalizer built from DefaultGrammars.
func DefaultCanonicalizer() *Canonicalizer {
	return defaultCanonicalizer
}

// dashes folds typographic dashes that publishers substitute for '-'.
var dashes = strings.NewReplacer(
	"\u2010", "-", "\u2011", "-", "\u2012", "-", "\u2013", "-",
	"\u2014", "-", "\u2015", "-", "\u2212", "-",
)

// Canonicalize returns the first grammar match in raw, verbatim, or the
// trimmed input when no grammar matches. Empty input yields "".
func (c *Canonicalizer) Canonicalize(raw string) string {
	s := strings.TrimSpace(dashes.Replace(raw))
	if s == "" {
		return ""
	}
	for _, g := range c.grammars {
		if m := g.re.FindString(s); m != "" {
			return m
		}
	}
	return s
}

// Grammar reports which grammar recognized raw, if any.
func (c *Canonicalizer) Grammar(raw string) (string, bool) {
	s := dashes.Replace(raw)
	for _, g := range c.grammars {
		if g.re.MatchString(s) {
			return g.name, true
		}
	}
	return "", false
}

// Key is the deduplication key of r: its canonical symbol, or its URL with
// any fragment removed. Empty when r has neither.
func (c *Canonicalizer) Key(r *Record) string {
	if k := c.Canonicalize(r.Symbol); k != "" {
		return k
	}
	return StripFragment(r.URL)
}

// StripFragment removes everything from the first '#'.
func StripFragment(url string) string {
	if i := strings.IndexByte(url, '#'); i >= 0 {
		url = url[:i]
	}
	return strings.TrimSpace(url)
}
