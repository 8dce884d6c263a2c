package catalog

import "testing"

func TestMergeOverlay(t *testing.T) {
	base := []Record{
		{Title: "SBM 001 report", URL: "https://x/sbm001.pdf", Symbol: "", Notes: "scraped", Subsection: "2023"},
		{Title: "Standard", URL: "https://x/std.pdf", Symbol: "A6.4-STAN-METH-001"},
		{Title: "SBM 002 (old link)", URL: "https://x/old.pdf", Symbol: "A6.4-SB002"},
	}
	overlay := []Record{
		{Title: "Meeting report SBM 001", URL: "https://x/sbm001.pdf", Symbol: "a6.4–sb001", Date: "2023-01-20"},
		{Title: "Meeting report SBM 002", URL: "https://x/sbm002.pdf", Symbol: "A6.4-SB002", Subsection: "x"},
		{Title: "Meeting report SBM 003", URL: "https://x/sbm003.pdf", Symbol: "A6.4-SB003"},
	}
	out := MergeOverlay(base, overlay, Overlay{Section: "Meeting reports of the Supervisory Body"})

	if len(out) != 4 {
		t.Fatalf("len = %d, want 4: %+v", len(out), out)
	}
	first := out[0]
	if first.Title != "Meeting report SBM 001" || first.Notes != "scraped" || first.Subsection != "" {
		t.Errorf("merged by URL = %+v", first)
	}
	if first.Symbol != "A6.4-SB001" {
		t.Errorf("overlay symbol = %q, want A6.4-SB001", first.Symbol)
	}
	if first.Section != "Meeting reports of the Supervisory Body" {
		t.Errorf("section = %q", first.Section)
	}
	if out[1].Title != "Standard" {
		t.Errorf("unmatched base row changed: %+v", out[1])
	}
	if out[2].URL != "https://x/sbm002.pdf" || out[2].Title != "Meeting report SBM 002" {
		t.Errorf("merged by symbol = %+v", out[2])
	}
	if out[3].Symbol != "A6.4-SB003" || out[3].Subsection != "" {
		t.Errorf("appended overlay row = %+v", out[3])
	}
	if base[0].Title != "SBM 001 report" || overlay[0].Symbol != "a6.4–sb001" {
		t.Error("MergeOverlay modified its inputs")
	}
}

func TestMergeOverlay_Empty(t *testing.T) {
	base := []Record{{Title: "a", URL: "u"}}
	if out := MergeOverlay(base, nil, Overlay{}); len(out) != 1 || out[0].Title != "a" {
		t.Errorf("MergeOverlay(base, nil) = %+v", out)
	}
	if out := MergeOverlay(nil, base, Overlay{}); len(out) != 1 {
		t.Errorf("MergeOverlay(nil, overlay) = %+v", out)
	}
}
