package catalog

import "testing"

func TestCanonicalize(t *testing.T) {
	c := DefaultCanonicalizer()
	tests := []struct {
		input, want string
	}{
		{"A6.4-PROC-GOV-001", "A6.4-PROC-GOV-001"},
		{"Ref. A6.4-PROC-GOV-001 (ver. 02.0)", "A6.4-PROC-GOV-001"},
		{"a6.4-stan-meth-002", "a6.4-stan-meth-002"},
		{"A6.4–PROC–GOV–001", "A6.4-PROC-GOV-001"},
		{"Decision 3/CMA.3, annex", "3/CMA.3"},
		{"FCCC/PA/CMA/2022/6/Add.1", "FCCC/PA/CMA/2022/6/Add.1"},
		{"see FCCC/PA/CMA/2024/2", "FCCC/PA/CMA/2024/2"},
		{"  SBM 012 report  ", "SBM 012 report"},
		{"", ""},
		{"   ", ""},
		{"((([[[", "((([[["},
	}
	for _, tt := range tests {
		got := c.Canonicalize(tt.input)
		if got != tt.want {
			t.Errorf("Canonicalize(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestCanonicalize_GrammarOrder(t *testing.T) {
	// The CMA decision grammar is listed first and wins over the UN symbol.
	c := DefaultCanonicalizer()
	got := c.Canonicalize("5/CMA.6 in FCCC/PA/CMA/2024/17/Add.1")
	if got != "5/CMA.6" {
		t.Errorf("Canonicalize = %q, want 5/CMA.6", got)
	}
	name, ok := c.Grammar("FCCC/PA/CMA/2024/17/Add.1")
	if !ok || name != "un_symbol" {
		t.Errorf("Grammar = %q, %v, want un_symbol, true", name, ok)
	}
	if _, ok := c.Grammar("no symbol here"); ok {
		t.Error("Grammar matched plain text")
	}
}

func TestNewCanonicalizer_Errors(t *testing.T) {
	if _, err := NewCanonicalizer([]GrammarSpec{{Name: "bad", Regex: `(`}}); err == nil {
		t.Error("expected error for invalid regex")
	}
	if _, err := NewCanonicalizer([]GrammarSpec{{Name: "empty", Regex: `x*`}}); err == nil {
		t.Error("expected error for grammar matching the empty string")
	}
	c, err := NewCanonicalizer(nil)
	if err != nil {
		t.Fatalf("NewCanonicalizer(nil): %v", err)
	}
	if got := c.Canonicalize("  A6.4-PROC-GOV-001 "); got != "A6.4-PROC-GOV-001" {
		t.Errorf("trim-only Canonicalize = %q", got)
	}
}

func TestKey(t *testing.T) {
	c := DefaultCanonicalizer()
	tests := []struct {
		rec  Record
		want string
	}{
		{Record{Symbol: "A6.4-PROC-GOV-001", URL: "https://x/a.pdf"}, "A6.4-PROC-GOV-001"},
		{Record{URL: "https://x/cma.pdf#5CMA6"}, "https://x/cma.pdf"},
		{Record{URL: "https://x/b.pdf"}, "https://x/b.pdf"},
		{Record{}, ""},
	}
	for _, tt := range tests {
		if got := c.Key(&tt.rec); got != tt.want {
			t.Errorf("Key(%+v) = %q, want %q", tt.rec, got, tt.want)
		}
	}
}
