// CLAUDE:SUMMARY Comparison form of catalogue strings (NFKD, case fold, punctuation strip) and soft cleaning of extracted document text.
package catalog

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const softHyphen = '\u00ad'

// decompose splits compatibility characters (ligatures, full-width forms) and
// drops the combining marks NFKD leaves behind.
var decompose = transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)))

// Normalize returns the comparison form of s: lower-cased, NFKD-decomposed,
// every rune other than letters, digits, '_', '.', '-' and whitespace replaced
// by a space, whitespace runs collapsed and trimmed.
// Normalize(Normalize(s)) == Normalize(s).
func Normalize(s string) string {
	out, _ := normalize(s, false)
	return out
}

// NormalizeOffsets returns Normalize(s) and, for every byte of the result,
// the byte offset in s of the rune that produced it. The offsets slice has
// one extra trailing entry holding len(s).
func NormalizeOffsets(s string) (string, []int32) {
	return normalize(s, true)
}

// normalize folds s one rune at a time so that every output byte can be
// traced back to its source rune.
func normalize(s string, track bool) (string, []int32) {
	if s == "" {
		if track {
			return "", []int32{0}
		}
		return "", nil
	}
	var b strings.Builder
	b.Grow(len(s))
	var offs []int32
	if track {
		offs = make([]int32, 0, len(s)+1)
	}
	pendingSpace := false
	emit := func(r rune, at int) {
		r = unicode.ToLower(r)
		if !isWordRune(r) {
			pendingSpace = b.Len() > 0
			return
		}
		if pendingSpace {
			b.WriteByte(' ')
			if track {
				offs = append(offs, int32(at))
			}
			pendingSpace = false
		}
		n, _ := b.WriteRune(r)
		if track {
			for ; n > 0; n-- {
				offs = append(offs, int32(at))
			}
		}
	}
	for i, r := range s {
		if r < utf8.RuneSelf {
			emit(r, i)
			continue
		}
		folded, _, _ := transform.String(decompose, string(unicode.ToLower(r)))
		for _, fr := range folded {
			emit(fr, i)
		}
	}
	if track {
		offs = append(offs, int32(len(s)))
	}
	return b.String(), offs
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '.' || r == '-'
}

// SoftClean removes line-wrap artifacts from extracted document text: soft
// hyphens are dropped, a hyphen ending a line is joined with the next line,
// and remaining line breaks and whitespace runs collapse to one space.
// Offsets computed on the result are only meaningful against the result.
func SoftClean(s string) string {
	if s == "" {
		return ""
	}
	src := []rune(s)

	var b strings.Builder
	b.Grow(len(s))
	pendingSpace := false
	for i := 0; i < len(src); i++ {
		r := src[i]
		switch {
		case r == softHyphen:
			continue
		case r == '-' && followsLineBreak(src, i+1):
			// Skip horizontal space, the break itself and the next line's indent.
			i = skipSpace(src, i+1) - 1
			continue
		case unicode.IsSpace(r):
			pendingSpace = b.Len() > 0
			continue
		}
		if pendingSpace {
			b.WriteByte(' ')
			pendingSpace = false
		}
		b.WriteRune(r)
	}
	return b.String()
}

// followsLineBreak reports whether src[i:] is optional horizontal space
// followed by a line break.
func followsLineBreak(src []rune, i int) bool {
	for ; i < len(src); i++ {
		switch src[i] {
		case '\n', '\r', '\u2028', '\u2029':
			return true
		case ' ', '\t':
			continue
		default:
			return false
		}
	}
	return false
}

func skipSpace(src []rune, i int) int {
	for i < len(src) && (unicode.IsSpace(src[i]) || src[i] == softHyphen) {
		i++
	}
	return i
}
