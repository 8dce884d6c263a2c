// CLAUDE:SUMMARY Audits a catalogue against a list of required symbols and their expected titles, and tallies symbols per grammar.
package catalog

import (
	"sort"
	"strings"
)

// Mismatch is a required symbol present under an unexpected title.
type Mismatch struct {
	Symbol string `json:"symbol" yaml:"symbol"`
	Found  string `json:"found" yaml:"found"`
	Want   string `json:"want" yaml:"want"`
}

// AuditReport lists required symbols that are missing or mistitled.
type AuditReport struct {
	Total      int        `json:"total"`
	Missing    []string   `json:"missing"`
	Mismatched []Mismatch `json:"mismatched"`
	// Grammars counts catalogue symbols per recognizing grammar.
	Grammars map[string]int `json:"grammars,omitempty"`
}

// UnrecognizedGrammar is the CountGrammars key for symbols no grammar
// recognizes.
const UnrecognizedGrammar = "unrecognized"

// OK reports whether every required symbol is present with its expected title.
func (a *AuditReport) OK() bool {
	return len(a.Missing) == 0 && len(a.Mismatched) == 0
}

// Audit checks records against required, a map of raw symbol to expected
// title. Symbols compare after trimming; results are sorted by symbol.
func Audit(records []Record, required map[string]string) *AuditReport {
	bySymbol := make(map[string]*Record, len(records))
	for i := range records {
		if s := strings.TrimSpace(records[i].Symbol); s != "" {
			bySymbol[s] = &records[i]
		}
	}

	symbols := make([]string, 0, len(required))
	for s := range required {
		symbols = append(symbols, s)
	}
	sort.Strings(symbols)

	report := &AuditReport{Total: len(records), Missing: []string{}, Mismatched: []Mismatch{}}
	for _, s := range symbols {
		r, ok := bySymbol[s]
		if !ok {
			report.Missing = append(report.Missing, s)
			continue
		}
		if want := required[s]; r.Title != want {
			report.Mismatched = append(report.Mismatched, Mismatch{Symbol: s, Found: r.Title, Want: want})
		}
	}
	return report
}

// CountGrammars counts, per grammar name, the records whose symbol c
// recognizes. Records without a symbol are skipped.
func CountGrammars(records []Record, c *Canonicalizer) map[string]int {
	counts := make(map[string]int)
	for i := range records {
		if strings.TrimSpace(records[i].Symbol) == "" {
			continue
		}
		name, ok := c.Grammar(records[i].Symbol)
		if !ok {
			name = UnrecognizedGrammar
		}
		counts[name]++
	}
	return counts
}
