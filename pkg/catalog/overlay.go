// CLAUDE:SUMMARY Merges an overlay feed (e.g. meeting reports) into the catalogue by URL or symbol.
package catalog

import "strings"

// Overlay describes how overlay records are folded into a catalogue.
type Overlay struct {
	// Section is forced onto every overlay record. Empty keeps the record's own.
	Section string `yaml:"section" json:"section,omitempty"`
}

// NormalizeOverlaySymbol folds typographic dashes and upper-cases s.
func NormalizeOverlaySymbol(s string) string {
	return strings.ToUpper(strings.TrimSpace(dashes.Replace(s)))
}

// MergeOverlay replaces catalogue rows that an overlay record matches (by URL,
// then by symbol) with the merge of both, overlay fields winning when
// non-empty and subsections dropped. Overlay records matching no row are
// appended in overlay order. Neither input is modified.
func MergeOverlay(base, overlay []Record, ov Overlay) []Record {
	clean := make([]Record, len(overlay))
	for i, r := range overlay {
		r.Symbol = NormalizeOverlaySymbol(r.Symbol)
		if ov.Section != "" {
			r.Section = ov.Section
		}
		r.Subsection = ""
		clean[i] = r
	}

	byURL := make(map[string]int, len(clean))
	bySymbol := make(map[string]int, len(clean))
	for i, r := range clean {
		if r.URL != "" {
			if _, ok := byURL[r.URL]; !ok {
				byURL[r.URL] = i
			}
		}
		if r.Symbol != "" {
			if _, ok := bySymbol[r.Symbol]; !ok {
				bySymbol[r.Symbol] = i
			}
		}
	}

	baseSymbols := make(map[string]bool, len(base))
	for _, r := range base {
		if s := NormalizeOverlaySymbol(r.Symbol); s != "" {
			baseSymbols[s] = true
		}
	}

	used := make([]bool, len(clean))
	out := make([]Record, 0, len(base)+len(clean))
	for _, row := range base {
		i, ok := byURL[row.URL]
		if !ok || row.URL == "" {
			i, ok = bySymbol[NormalizeOverlaySymbol(row.Symbol)]
			ok = ok && row.Symbol != ""
		}
		if !ok {
			out = append(out, row)
			continue
		}
		used[i] = true
		merged := overlayFields(row, clean[i])
		merged.Subsection = ""
		out = append(out, merged)
	}

	for i, r := range clean {
		if used[i] || (r.Symbol != "" && baseSymbols[r.Symbol]) {
			continue
		}
		out = append(out, r)
	}
	return out
}

func overlayFields(dst, src Record) Record {
	set := func(d *string, s string) {
		if s != "" {
			*d = s
		}
	}
	set(&dst.Title, src.Title)
	set(&dst.URL, src.URL)
	set(&dst.Symbol, src.Symbol)
	set(&dst.Version, src.Version)
	set(&dst.Date, src.Date)
	set(&dst.Type, src.Type)
	set(&dst.Section, src.Section)
	set(&dst.Notes, src.Notes)
	return dst
}
