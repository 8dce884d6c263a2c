package fulltext

import (
	"unicode"
	"unicode/utf8"

	"github.com/bits-and-blooms/bloom/v3"
)

// gramFilter records the case-folded rune trigrams of a text. A word whose
// trigrams are not all present cannot occur in the text, so the exact
// matcher is skipped.
type gramFilter struct {
	f *bloom.BloomFilter
}

const gramFalsePositive = 0.01

func newGramFilter(text string) *gramFilter {
	n := utf8.RuneCountInString(text) - 2
	g := &gramFilter{f: bloom.NewWithEstimates(uint(max(n, 1)), gramFalsePositive)}
	eachGram(text, func(gram []byte) bool {
		g.f.Add(gram)
		return true
	})
	return g
}

// mayContain reports whether every word of at least three runes could be in
// the text. Shorter words are not filtered.
func (g *gramFilter) mayContain(words []string) bool {
	if g == nil {
		return true
	}
	for _, w := range words {
		ok := true
		eachGram(w, func(gram []byte) bool {
			ok = g.f.Test(gram)
			return ok
		})
		if !ok {
			return false
		}
	}
	return true
}

// eachGram calls fn with the folded encoding of every rune trigram in s until
// fn returns false.
func eachGram(s string, fn func([]byte) bool) {
	var win [3]rune
	n := 0
	buf := make([]byte, 0, 3*utf8.UTFMax)
	for _, r := range s {
		win[0], win[1], win[2] = win[1], win[2], foldRune(r)
		if n++; n < 3 {
			continue
		}
		buf = buf[:0]
		for _, c := range win {
			buf = utf8.AppendRune(buf, c)
		}
		if !fn(buf) {
			return
		}
	}
}

// foldRune maps r to the smallest rune of its simple case-folding orbit, the
// same equivalence the (?i) matcher uses.
func foldRune(r rune) rune {
	low := r
	for f := unicode.SimpleFold(r); f != r; f = unicode.SimpleFold(f) {
		if f < low {
			low = f
		}
	}
	return low
}
