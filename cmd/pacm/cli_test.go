package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
}

// setup writes a data directory and a config pointing at it, and returns
// the config path.
func setup(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	data := filepath.Join(root, "data")

	writeFile(t, filepath.Join(data, "catalogue", "manifest.yaml"), "id: a64-catalogue\nkind: catalogue\n")
	writeFile(t, filepath.Join(data, "catalogue", "data.json"), `[
  {"title": "Standard: baselines", "url": "https://x/base.pdf", "symbol": "A6.4-STAN-METH-001", "section": "Standards"},
  {"title": "Annual report (reporting period 18 Nov. 2023 - 18 Jul. 2024)", "url": "https://x/ar.pdf", "symbol": "FCCC/PA/CMA/2024/2", "section": "Reports"}
]`)
	writeFile(t, filepath.Join(data, "text", "manifest.yaml"), "id: a64-fulltext\nkind: fulltext\n")
	writeFile(t, filepath.Join(data, "text", "data.json"), `[
  {"url": "https://x/base.pdf", "text": "Baselines shall be below business as usual & net zero aligned."}
]`)

	cfg := filepath.Join(root, "config.yaml")
	writeFile(t, cfg, "data_dir: "+data+"\nsources_db: "+filepath.Join(root, "sources.db")+"\nlog_level: error\n")
	return cfg
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	err := NewMain().Run(context.Background(), args, &stdout, &stderr)
	return stdout.String(), err
}

func TestHelpShowsAllCommands(t *testing.T) {
	out, err := run(t, "--help")
	if err != nil {
		t.Fatalf("--help: %v", err)
	}
	for _, cmd := range []string{"serve", "search", "catalogue", "import", "sources", "check", "audit", "mcp", "remote"} {
		if !strings.Contains(out, cmd) {
			t.Errorf("help lacks %q", cmd)
		}
	}
}

func TestNoCommand(t *testing.T) {
	if _, err := run(t); err == nil {
		t.Error("running without a command should fail")
	}
}

func TestSearch(t *testing.T) {
	cfg := setup(t)

	out, err := run(t, "--config", cfg, "search", "--fulltext", `"net zero"`)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	for _, want := range []string{"1 documents (phrase)", "A6.4-STAN-METH-001", "[net zero]", "usual & [net zero]", "#search=net%20zero"} {
		if !strings.Contains(out, want) {
			t.Errorf("output lacks %q:\n%s", want, out)
		}
	}

	out, err = run(t, "--config", cfg, "search", "--occurrences", "baselines")
	if err != nil {
		t.Fatalf("search --occurrences: %v", err)
	}
	if !strings.HasPrefix(out, "1 occurrences") {
		t.Errorf("occurrences output:\n%s", out)
	}
}

func TestCatalogue(t *testing.T) {
	cfg := setup(t)
	out, err := run(t, "--config", cfg, "catalogue")
	if err != nil {
		t.Fatalf("catalogue: %v", err)
	}
	if !strings.Contains(out, "Reports\n") || !strings.Contains(out, "Standards\n") || !strings.HasSuffix(out, "2 records\n") {
		t.Errorf("catalogue output:\n%s", out)
	}
	if strings.Index(out, "Reports") > strings.Index(out, "Standards") {
		t.Error("sections should be sorted")
	}
}

func TestAudit(t *testing.T) {
	cfg := setup(t)

	out, err := run(t, "--config", cfg, "audit")
	if err == nil {
		t.Fatal("default audit should fail: five required reports are missing")
	}
	if !strings.Contains(out, "FCCC/PA/CMA/2022/6") || strings.Contains(out, " - FCCC/PA/CMA/2024/2\n") {
		t.Errorf("audit output:\n%s", out)
	}

	req := filepath.Join(t.TempDir(), "required.yaml")
	writeFile(t, req, `"FCCC/PA/CMA/2024/2": "Annual report (reporting period 18 Nov. 2023 - 18 Jul. 2024)"`+"\n")
	out, err = run(t, "--config", cfg, "audit", "--required", req)
	if err != nil {
		t.Fatalf("audit --required: %v\n%s", err, out)
	}
	if !strings.Contains(out, "All 1 required symbols present") || !strings.Contains(out, "  a64_document: 1\n  un_symbol: 1\n") {
		t.Errorf("audit output:\n%s", out)
	}
}

func TestSources(t *testing.T) {
	cfg := setup(t)

	out, err := run(t, "--config", cfg, "sources", "set", "a64-rules", "https://mirror.example/rules.html")
	if err != nil {
		t.Fatalf("sources set: %v", err)
	}
	out, err = run(t, "--config", cfg, "sources", "list")
	if err != nil {
		t.Fatalf("sources list: %v", err)
	}
	if !strings.Contains(out, "https://mirror.example/rules.html") || !strings.Contains(out, "a64-fulltext-json") {
		t.Errorf("sources list:\n%s", out)
	}

	if _, err := run(t, "--config", cfg, "sources", "set", "nope", "https://x"); err == nil {
		t.Error("setting an unknown adapter should fail")
	}
}

func TestImport_NeedsSource(t *testing.T) {
	cfg := setup(t)
	if _, err := run(t, "--config", cfg, "import"); err == nil {
		t.Error("import without adapters should fail")
	}
}

func TestDataDirFlag(t *testing.T) {
	cfg := setup(t)
	if _, err := run(t, "--config", cfg, "--data-dir", filepath.Join(t.TempDir(), "missing"), "catalogue"); err == nil {
		t.Error("catalogue over a missing data dir should fail")
	}
}
