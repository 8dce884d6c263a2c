package main

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hazyhaar/pacm-search/pkg/catalog"
	"github.com/hazyhaar/pacm-search/pkg/fulltext"
)

func TestLoadConfig_Missing(t *testing.T) {
	cfg, found, err := loadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if found {
		t.Error("found = true for a missing file")
	}
	if cfg.Addr != ":8420" || cfg.DataDir != "data" {
		t.Errorf("defaults not applied: %+v", cfg)
	}
	opts, err := cfg.SearchOptions()
	if err != nil {
		t.Fatal(err)
	}
	if opts != fulltext.DefaultOptions() {
		t.Errorf("search options = %+v, want defaults", opts)
	}
}

func TestLoadConfig_Overrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	os.WriteFile(path, []byte(`addr: ":9000"
log_level: debug
watch: true
check_interval: 6h
search:
  adjacency: 5
  max_snippets: 1
  multi_word: phrase
dedupe:
  tie: last
grammars:
  - name: decision
    regex: '\d+/CMA\.\d'
audit:
  "FCCC/PA/CMA/2024/2": "Annual report"
`), 0o644)

	cfg, found, err := loadConfig(path)
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if !found || cfg.Addr != ":9000" || !cfg.Watch || cfg.CheckInterval != 6*time.Hour {
		t.Errorf("cfg = %+v", cfg)
	}

	opts, _ := cfg.SearchOptions()
	if opts.Adjacency != 5 || opts.MaxSnippets != 1 || opts.MultiWord != fulltext.MultiWordPhrase {
		t.Errorf("search = %+v", opts)
	}
	if opts.PerDocumentCap != fulltext.DefaultOptions().PerDocumentCap {
		t.Errorf("unset search fields should keep defaults, PerDocumentCap = %d", opts.PerDocumentCap)
	}

	dd, _ := cfg.DedupeOptions()
	if dd.Tie != catalog.KeepLast {
		t.Errorf("tie = %v, want last", dd.Tie)
	}
	if got := dd.Canonicalizer.Canonicalize("A6.4-STAN-METH-001"); got != "A6.4-STAN-METH-001" {
		t.Errorf("custom grammars: Canonicalize = %q", got)
	}
	if _, ok := dd.Canonicalizer.Grammar("A6.4-STAN-METH-001"); ok {
		t.Error("custom grammars should replace the defaults")
	}

	if lvl, _ := cfg.Level(); lvl != slog.LevelDebug {
		t.Errorf("level = %v, want debug", lvl)
	}
	if req := cfg.AuditRequired(); len(req) != 1 {
		t.Errorf("audit = %v", req)
	}
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"tie", "dedupe:\n  tie: newest\n"},
		{"multi word", "search:\n  multi_word: or\n"},
		{"grammar", "grammars:\n  - name: bad\n    regex: '('\n"},
		{"level", "log_level: loud\n"},
		{"yaml", "addr: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			os.WriteFile(path, []byte(tt.body), 0o644)
			if _, _, err := loadConfig(path); err == nil {
				t.Error("loadConfig succeeded, want error")
			}
		})
	}
}

func TestAuditRequired_Default(t *testing.T) {
	cfg := defaultConfig()
	if got := cfg.AuditRequired(); len(got) != 6 {
		t.Errorf("default audit has %d symbols, want 6", len(got))
	}
}
