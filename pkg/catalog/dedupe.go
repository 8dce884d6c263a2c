// CLAUDE:SUMMARY Order-preserving catalogue deduplication by canonical key, keeping the most metadata-complete record.
package catalog

import "fmt"

// TiePolicy decides which record survives when two duplicates are equally
// complete.
type TiePolicy int

const (
	// KeepFirst keeps the earlier-seen record on a tie.
	KeepFirst TiePolicy = iota
	// KeepLast lets the later record replace the kept one on a tie.
	KeepLast
)

// ParseTiePolicy maps "first" (or "") and "last" to a TiePolicy.
func ParseTiePolicy(s string) (TiePolicy, error) {
	switch s {
	case "", "first":
		return KeepFirst, nil
	case "last":
		return KeepLast, nil
	default:
		return KeepFirst, fmt.Errorf("unknown tie policy %q (want first or last)", s)
	}
}

func (p TiePolicy) String() string {
	if p == KeepLast {
		return "last"
	}
	return "first"
}

// DedupeOptions configures Dedupe.
type DedupeOptions struct {
	Canonicalizer *Canonicalizer // nil = DefaultCanonicalizer
	Tie           TiePolicy
}

// Dedupe merges records sharing a canonical key. The output keeps the
// position of each key's first appearance; a later duplicate replaces the
// kept record in place only when it is strictly more complete (or equally
// complete under KeepLast). Records without any key are always kept.
// Emitted records have CanonicalSymbol set; the input is not modified.
func Dedupe(records []Record, opts DedupeOptions) []Record {
	canon := opts.Canonicalizer
	if canon == nil {
		canon = DefaultCanonicalizer()
	}

	out := make([]Record, 0, len(records))
	index := make(map[string]int, len(records))
	for _, r := range records {
		r.CanonicalSymbol = canon.Canonicalize(r.Symbol)
		key := r.CanonicalSymbol
		if key == "" {
			key = StripFragment(r.URL)
		}
		if key == "" {
			out = append(out, r)
			continue
		}

		i, seen := index[key]
		if !seen {
			index[key] = len(out)
			out = append(out, r)
			continue
		}
		incoming, kept := r.Completeness(), out[i].Completeness()
		if incoming > kept || (incoming == kept && opts.Tie == KeepLast) {
			out[i] = r
		}
	}
	return out
}
