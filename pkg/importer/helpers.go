// CLAUDE:SUMMARY Shared import utilities: polite HTTP download with per-host rate limit and retries, ZIP extraction, feed writer.
package importer

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/hazyhaar/pacm-search/pkg/catalog"
	"github.com/hazyhaar/pacm-search/pkg/library"
)

// UserAgent identifies the importer to publishers.
const UserAgent = "pacm-search/1.0 (+catalogue importer)"

// hostLimiter rate-limits requests per host with a token bucket each.
type hostLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	rps      float64
}

func newHostLimiter(rps float64) *hostLimiter {
	return &hostLimiter{limiters: make(map[string]*rate.Limiter), rps: rps}
}

func (h *hostLimiter) wait(ctx context.Context, rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("parse url: %w", err)
	}
	h.mu.Lock()
	l, ok := h.limiters[u.Host]
	if !ok {
		l = rate.NewLimiter(rate.Limit(h.rps), 1)
		h.limiters[u.Host] = l
	}
	h.mu.Unlock()
	return l.Wait(ctx)
}

var (
	limiterMu sync.RWMutex
	limiter   = newHostLimiter(2)
)

// SetRateLimit sets the per-host request rate used by all adapters.
// rps <= 0 disables limiting.
func SetRateLimit(rps float64) {
	if rps <= 0 {
		rps = float64(rate.Inf)
	}
	limiterMu.Lock()
	limiter = newHostLimiter(rps)
	limiterMu.Unlock()
}

func currentLimiter() *hostLimiter {
	limiterMu.RLock()
	defer limiterMu.RUnlock()
	return limiter
}

// retryBase is the first retry delay; it doubles on every attempt.
var retryBase = time.Second

// fetch GETs url into w with retries and timeout.
func fetch(ctx context.Context, url string, w func() (io.WriteCloser, error)) error {
	client := &http.Client{Timeout: 10 * time.Minute}

	var lastErr error
	for attempt := 0; attempt < 3; attempt++ {
		if attempt > 0 {
			backoff := retryBase << uint(attempt)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
		}
		if err := currentLimiter().wait(ctx, url); err != nil {
			return err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("User-Agent", UserAgent)

		resp, err := client.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			lastErr = fmt.Errorf("HTTP %d for %s", resp.StatusCode, url)
			continue
		}

		out, err := w()
		if err != nil {
			resp.Body.Close()
			return err
		}

		_, copyErr := io.Copy(out, resp.Body)
		resp.Body.Close()
		closeErr := out.Close()

		if copyErr != nil {
			lastErr = copyErr
			continue
		}
		if closeErr != nil {
			return closeErr
		}
		return nil
	}
	return fmt.Errorf("download %s failed after 3 attempts: %w", url, lastErr)
}

// downloadFile downloads url to dest.
func downloadFile(ctx context.Context, url, dest string) error {
	return fetch(ctx, url, func() (io.WriteCloser, error) {
		f, err := os.Create(dest)
		if err != nil {
			return nil, fmt.Errorf("create file: %w", err)
		}
		return f, nil
	})
}

type bufferCloser struct{ *bytes.Buffer }

func (bufferCloser) Close() error { return nil }

// downloadBytes downloads url into memory.
func downloadBytes(ctx context.Context, url string) ([]byte, error) {
	var buf bytes.Buffer
	err := fetch(ctx, url, func() (io.WriteCloser, error) {
		buf.Reset()
		return bufferCloser{&buf}, nil
	})
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// unzipFile extracts a ZIP archive to destDir and returns the list of extracted file paths.
func unzipFile(src, destDir string) ([]string, error) {
	r, err := zip.OpenReader(src)
	if err != nil {
		return nil, fmt.Errorf("open zip: %w", err)
	}
	defer r.Close()

	var paths []string
	for _, f := range r.File {
		if f.FileInfo().IsDir() {
			continue
		}

		destPath := filepath.Join(destDir, filepath.Base(f.Name))
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("open zip entry %s: %w", f.Name, err)
		}

		out, err := os.Create(destPath)
		if err != nil {
			rc.Close()
			return nil, fmt.Errorf("create %s: %w", destPath, err)
		}

		if _, err := io.Copy(out, rc); err != nil {
			rc.Close()
			out.Close()
			return nil, fmt.Errorf("extract %s: %w", f.Name, err)
		}
		rc.Close()
		out.Close()
		paths = append(paths, destPath)
	}
	return paths, nil
}

// writeFeed writes records or texts as data.gob plus manifest.yaml into
// outputDir/m.ID.
func writeFeed(outputDir string, m *library.Manifest, records []catalog.Record, texts []catalog.TextRecord) error {
	dir := filepath.Join(outputDir, m.ID)
	if err := ensureDir(dir); err != nil {
		return err
	}
	if err := library.SaveGob(filepath.Join(dir, library.GobFile), records, texts); err != nil {
		return fmt.Errorf("save gob: %w", err)
	}
	m.DataFile = library.GobFile
	return library.WriteManifest(m, filepath.Join(dir, "manifest.yaml"))
}

// ensureDir creates a directory if it doesn't exist.
func ensureDir(path string) error {
	return os.MkdirAll(path, 0o755)
}
