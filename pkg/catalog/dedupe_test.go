package catalog

import "testing"

func TestDedupe_KeepsMostComplete(t *testing.T) {
	records := []Record{
		{Title: "Governance procedure", Symbol: "A6.4-PROC-GOV-001", URL: "https://x/gov-v1.pdf"},
		{Title: "Other", Symbol: "A6.4-STAN-METH-001", URL: "https://x/meth.pdf"},
		{Title: "Governance procedure (v2)", Symbol: "Ref. A6.4-PROC-GOV-001", URL: "https://x/gov-v2.pdf", Date: "2024-05-01"},
	}
	out := Dedupe(records, DedupeOptions{})
	if len(out) != 2 {
		t.Fatalf("len = %d, want 2", len(out))
	}
	if out[0].URL != "https://x/gov-v2.pdf" {
		t.Errorf("kept %q, want the dated record", out[0].URL)
	}
	if out[0].CanonicalSymbol != "A6.4-PROC-GOV-001" {
		t.Errorf("CanonicalSymbol = %q", out[0].CanonicalSymbol)
	}
	if out[1].Title != "Other" {
		t.Errorf("position of first appearance not preserved: %q", out[1].Title)
	}
}

func TestDedupe_TiePolicy(t *testing.T) {
	records := []Record{
		{Title: "first", Symbol: "3/CMA.3", Date: "2021"},
		{Title: "second", Symbol: "Decision 3/CMA.3", Date: "2022"},
	}
	if out := Dedupe(records, DedupeOptions{Tie: KeepFirst}); len(out) != 1 || out[0].Title != "first" {
		t.Errorf("KeepFirst kept %+v", out)
	}
	if out := Dedupe(records, DedupeOptions{Tie: KeepLast}); len(out) != 1 || out[0].Title != "second" {
		t.Errorf("KeepLast kept %+v", out)
	}
}

func TestDedupe_LessCompleteDoesNotReplace(t *testing.T) {
	records := []Record{
		{Title: "full", Symbol: "3/CMA.3", Date: "2021", Version: "01.0", Type: "CMA decision"},
		{Title: "sparse", Symbol: "3/CMA.3", Date: "2021"},
	}
	out := Dedupe(records, DedupeOptions{Tie: KeepLast})
	if len(out) != 1 || out[0].Title != "full" {
		t.Errorf("kept %+v, want full", out)
	}
}

func TestDedupe_URLFallbackAndKeyless(t *testing.T) {
	records := []Record{
		{Title: "a", URL: "https://x/a.pdf#page=2"},
		{Title: "a again", URL: "https://x/a.pdf", Section: "S"},
		{Title: "no key 1"},
		{Title: "no key 2"},
		{Title: "5", URL: "https://x/cma.pdf#5CMA6", Symbol: "5/CMA.6"},
		{Title: "6", URL: "https://x/cma.pdf#6CMA6", Symbol: "6/CMA.6"},
	}
	out := Dedupe(records, DedupeOptions{})
	titles := make([]string, len(out))
	for i, r := range out {
		titles[i] = r.Title
	}
	want := []string{"a again", "no key 1", "no key 2", "5", "6"}
	if len(titles) != len(want) {
		t.Fatalf("titles = %v, want %v", titles, want)
	}
	for i := range want {
		if titles[i] != want[i] {
			t.Errorf("titles[%d] = %q, want %q", i, titles[i], want[i])
		}
	}
}

func TestDedupe_UniqueKeysNeverDropped(t *testing.T) {
	var records []Record
	for _, s := range []string{"1/CMA.3", "2/CMA.3", "A6.4-PROC-GOV-001", "A6.4-PROC-GOV-002", "FCCC/PA/CMA/2022/6"} {
		records = append(records, Record{Symbol: s})
	}
	if out := Dedupe(records, DedupeOptions{}); len(out) != len(records) {
		t.Errorf("len = %d, want %d", len(out), len(records))
	}
	if records[0].CanonicalSymbol != "" {
		t.Error("Dedupe modified its input")
	}
}

func TestParseTiePolicy(t *testing.T) {
	for in, want := range map[string]TiePolicy{"": KeepFirst, "first": KeepFirst, "last": KeepLast} {
		got, err := ParseTiePolicy(in)
		if err != nil || got != want {
			t.Errorf("ParseTiePolicy(%q) = %v, %v, want %v", in, got, err, want)
		}
	}
	if _, err := ParseTiePolicy("best"); err == nil {
		t.Error("expected error for unknown policy")
	}
}

func TestCompleteness(t *testing.T) {
	r := Record{Date: "2024", Version: " ", Type: "Standard", Section: "S", Notes: "ignored"}
	if got := r.Completeness(); got != 3 {
		t.Errorf("Completeness = %d, want 3", got)
	}
}
