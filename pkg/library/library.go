// CLAUDE:SUMMARY Library loads every feed directory, builds the canonical catalogue and search corpus, and swaps it wholesale on reload.
package library

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/hazyhaar/pacm-search/pkg/catalog"
	"github.com/hazyhaar/pacm-search/pkg/fulltext"
)

// ErrNotLoaded is returned by accessors before the first successful Load.
var ErrNotLoaded = errors.New("library not loaded")

// Options configures a Library.
type Options struct {
	Dedupe      catalog.DedupeOptions
	Parallelism int
	Logger      *slog.Logger
}

// FeedInfo is the public metadata of a loaded feed.
type FeedInfo struct {
	ID        string `json:"id"`
	Kind      string `json:"kind"`
	Version   string `json:"version"`
	Source    string `json:"source"`
	SourceURL string `json:"source_url,omitempty"`
	License   string `json:"license"`
	Records   int    `json:"records"`
}

// Snapshot is one immutable load of the data directory.
type Snapshot struct {
	Corpus   *fulltext.Corpus
	Feeds    []FeedInfo
	LoadedAt time.Time
}

// Library holds the current snapshot of a data directory.
type Library struct {
	// loadMu serializes loads so the last one to read the disk is the one
	// that stays.
	loadMu sync.Mutex
	mu     sync.RWMutex
	snap   *Snapshot
	dir    string
	opts   Options
	logger *slog.Logger
}

// New creates an empty library over dir. Call Load before searching.
func New(dir string, opts Options) *Library {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Library{dir: dir, opts: opts, logger: logger}
}

// Dir returns the data directory.
func (l *Library) Dir() string { return l.dir }

// Load reads every feed directory under the data directory and replaces the
// current snapshot. On error the previous snapshot stays in place. Concurrent
// calls run one at a time.
func (l *Library) Load(ctx context.Context) error {
	l.loadMu.Lock()
	defer l.loadMu.Unlock()

	start := time.Now()
	feeds, err := LoadFeeds(l.dir)
	if err != nil {
		return err
	}
	corpus, err := Build(ctx, feeds, l.opts)
	if err != nil {
		return err
	}

	snap := &Snapshot{Corpus: corpus, LoadedAt: time.Now()}
	for _, f := range feeds {
		snap.Feeds = append(snap.Feeds, FeedInfo{
			ID:        f.Manifest.ID,
			Kind:      f.Manifest.Kind,
			Version:   f.Manifest.Version,
			Source:    f.Manifest.Source,
			SourceURL: f.Manifest.SourceURL,
			License:   f.Manifest.License,
			Records:   f.Len(),
		})
	}

	l.mu.Lock()
	l.snap = snap
	l.mu.Unlock()

	l.logger.Info("library loaded",
		"feeds", len(feeds),
		"documents", corpus.Len(),
		"texts", corpus.TextCount(),
		"version", fmt.Sprintf("%016x", corpus.Version()),
		"elapsed", time.Since(start).Round(time.Millisecond))
	return nil
}

// Reload reloads the data directory (hot reload).
func (l *Library) Reload(ctx context.Context) error {
	return l.Load(ctx)
}

// Snapshot returns the current snapshot.
func (l *Library) Snapshot() (*Snapshot, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.snap == nil {
		return nil, ErrNotLoaded
	}
	return l.snap, nil
}

// Corpus returns the current search corpus.
func (l *Library) Corpus() (*fulltext.Corpus, error) {
	s, err := l.Snapshot()
	if err != nil {
		return nil, err
	}
	return s.Corpus, nil
}

// LoadFeeds loads every subdirectory of dir holding a manifest.yaml, in
// directory name order.
func LoadFeeds(dir string) ([]*Feed, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read data dir %s: %w", dir, err)
	}
	var feeds []*Feed
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		sub := filepath.Join(dir, entry.Name())
		if _, err := os.Stat(filepath.Join(sub, "manifest.yaml")); err != nil {
			continue
		}
		f, err := LoadFeed(sub)
		if err != nil {
			return nil, fmt.Errorf("load feed %s: %w", entry.Name(), err)
		}
		feeds = append(feeds, f)
	}
	return feeds, nil
}

// Build combines feeds into a corpus: catalogue feeds are concatenated,
// overlay feeds merged over them, the result deduplicated and joined to the
// full-text feeds.
func Build(ctx context.Context, feeds []*Feed, opts Options) (*fulltext.Corpus, error) {
	var records []catalog.Record
	var texts []catalog.TextRecord
	for _, f := range feeds {
		switch f.Manifest.Kind {
		case KindCatalogue:
			records = append(records, f.Records...)
		case KindFullText:
			texts = append(texts, f.Texts...)
		}
	}
	for _, f := range feeds {
		if f.Manifest.Kind == KindOverlay {
			records = catalog.MergeOverlay(records, f.Records, f.Manifest.Overlay)
		}
	}

	deduped := catalog.Dedupe(records, opts.Dedupe)
	corpus, err := fulltext.NewCorpus(ctx, deduped, texts, fulltext.BuildOptions{
		Canonicalizer: opts.Dedupe.Canonicalizer,
		Parallelism:   opts.Parallelism,
	})
	if err != nil {
		return nil, fmt.Errorf("build corpus: %w", err)
	}
	return corpus, nil
}
