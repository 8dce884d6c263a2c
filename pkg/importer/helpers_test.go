package importer

import (
	"archive/zip"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hazyhaar/pacm-search/pkg/catalog"
	"github.com/hazyhaar/pacm-search/pkg/library"
)

func TestMain(m *testing.M) {
	retryBase = time.Millisecond
	SetRateLimit(0)
	os.Exit(m.Run())
}

func TestDownloadFile(t *testing.T) {
	content := "hello world"
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") != UserAgent {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		w.Write([]byte(content))
	}))
	defer ts.Close()

	dest := filepath.Join(t.TempDir(), "test.txt")
	if err := downloadFile(context.Background(), ts.URL, dest); err != nil {
		t.Fatalf("downloadFile: %v", err)
	}

	data, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(data) != content {
		t.Errorf("content = %q, want %q", string(data), content)
	}
}

func TestDownloadBytes_Retry(t *testing.T) {
	attempts := 0
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte("ok"))
	}))
	defer ts.Close()

	data, err := downloadBytes(context.Background(), ts.URL)
	if err != nil {
		t.Fatalf("downloadBytes with retries: %v", err)
	}
	if string(data) != "ok" {
		t.Errorf("data = %q, want ok", data)
	}
	if attempts != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}
}

func TestDownloadFile_AllFail(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer ts.Close()

	dest := filepath.Join(t.TempDir(), "fail.txt")
	err := downloadFile(context.Background(), ts.URL, dest)
	if err == nil {
		t.Error("expected error after all retries exhausted")
	}
}

func TestHostLimiter_Canceled(t *testing.T) {
	h := newHostLimiter(0.001)
	ctx, cancel := context.WithCancel(context.Background())
	if err := h.wait(ctx, "https://unfccc.int/a"); err != nil {
		t.Fatalf("first wait: %v", err)
	}
	cancel()
	if err := h.wait(ctx, "https://unfccc.int/b"); err == nil {
		t.Error("second wait on the same host should fail once ctx is canceled")
	}
	if err := h.wait(context.Background(), "https://other.example/a"); err != nil {
		t.Errorf("other host should have its own bucket: %v", err)
	}
}

func TestUnzipFile(t *testing.T) {
	dir := t.TempDir()
	zipPath := filepath.Join(dir, "feed.zip")
	f, err := os.Create(zipPath)
	if err != nil {
		t.Fatal(err)
	}
	zw := zip.NewWriter(f)
	w, _ := zw.Create("nested/search_index.json")
	w.Write([]byte(`[]`))
	zw.Close()
	f.Close()

	paths, err := unzipFile(zipPath, dir)
	if err != nil {
		t.Fatalf("unzipFile: %v", err)
	}
	if len(paths) != 1 || filepath.Base(paths[0]) != "search_index.json" {
		t.Errorf("paths = %v", paths)
	}
}

func TestWriteFeed(t *testing.T) {
	dir := t.TempDir()
	m := &library.Manifest{
		ID:      "a64-catalogue",
		Version: "2026-02",
		Kind:    library.KindCatalogue,
		Source:  "test",
		License: "CC0",
	}
	records := []catalog.Record{{Title: "Standard", URL: "https://x/s.pdf", Symbol: "A6.4-STAN-METH-001"}}

	if err := writeFeed(dir, m, records, nil); err != nil {
		t.Fatalf("writeFeed: %v", err)
	}

	feed, err := library.LoadFeed(filepath.Join(dir, "a64-catalogue"))
	if err != nil {
		t.Fatalf("LoadFeed: %v", err)
	}
	if feed.Manifest.ID != "a64-catalogue" {
		t.Errorf("ID = %q, want a64-catalogue", feed.Manifest.ID)
	}
	if feed.Manifest.DataFile != library.GobFile {
		t.Errorf("DataFile = %q, want %s", feed.Manifest.DataFile, library.GobFile)
	}
	if len(feed.Records) != 1 || feed.Records[0].Symbol != "A6.4-STAN-METH-001" {
		t.Errorf("Records = %+v", feed.Records)
	}
}
