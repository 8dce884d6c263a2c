// CLAUDE:SUMMARY Import adapters for published JSON feeds: catalogue, full-text index and meeting-report overlay.
package importer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hazyhaar/pacm-search/pkg/catalog"
	"github.com/hazyhaar/pacm-search/pkg/library"
)

func init() {
	Register(&jsonFeedAdapter{
		id:      "a64-catalogue-json",
		feedID:  "a64-catalogue",
		kind:    library.KindCatalogue,
		desc:    "Article 6.4 catalogue published as JSON",
		url:     "https://pacm.example.org/data/a64_catalogue.json",
		license: "UNFCCC terms of use",
	})
	Register(&jsonFeedAdapter{
		id:      "a64-fulltext-json",
		feedID:  "a64-fulltext",
		kind:    library.KindFullText,
		desc:    "Extracted full text of Article 6.4 documents (JSON, optionally zipped)",
		url:     "https://pacm.example.org/data/search_index.json",
		license: "UNFCCC terms of use",
	})
	Register(&jsonFeedAdapter{
		id:      "a64-meetings-json",
		feedID:  "a64-meetings",
		kind:    library.KindOverlay,
		desc:    "Supervisory Body meeting reports merged over the catalogue",
		url:     "https://pacm.example.org/data/meetings.json",
		license: "UNFCCC terms of use",
		section: "Meeting reports of the Supervisory Body",
	})
}

// jsonFeedAdapter imports a JSON feed as-is. Full-text feeds may be served
// zipped; the first .json entry of the archive is used.
type jsonFeedAdapter struct {
	id, feedID, kind, desc, url, license string
	section                              string
}

func (a *jsonFeedAdapter) ID() string          { return a.id }
func (a *jsonFeedAdapter) FeedID() string      { return a.feedID }
func (a *jsonFeedAdapter) Kind() string        { return a.kind }
func (a *jsonFeedAdapter) Description() string { return a.desc }
func (a *jsonFeedAdapter) DefaultURL() string  { return a.url }
func (a *jsonFeedAdapter) License() string     { return a.license }

func (a *jsonFeedAdapter) Import(ctx context.Context, sourceURL, outputDir string) (int, error) {
	data, err := a.download(ctx, sourceURL, outputDir)
	if err != nil {
		return 0, err
	}

	m := &library.Manifest{
		ID:        a.feedID,
		Version:   time.Now().UTC().Format("2006-01-02"),
		Kind:      a.kind,
		Source:    a.desc,
		SourceURL: sourceURL,
		License:   a.license,
	}
	m.Overlay.Section = a.section

	var (
		records []catalog.Record
		texts   []catalog.TextRecord
	)
	if a.kind == library.KindFullText {
		texts, err = catalog.DecodeTextFeed(data)
	} else {
		records, err = catalog.DecodeCatalogFeed(data)
	}
	if err != nil {
		return 0, fmt.Errorf("parse: %w", err)
	}

	if err := writeFeed(outputDir, m, records, texts); err != nil {
		return 0, err
	}
	return len(records) + len(texts), nil
}

func (a *jsonFeedAdapter) download(ctx context.Context, sourceURL, outputDir string) ([]byte, error) {
	path := strings.ToLower(strings.SplitN(sourceURL, "?", 2)[0])
	if !strings.HasSuffix(path, ".zip") {
		data, err := downloadBytes(ctx, sourceURL)
		if err != nil {
			return nil, fmt.Errorf("download: %w", err)
		}
		return data, nil
	}

	dlDir := filepath.Join(outputDir, "_download-"+a.id)
	if err := ensureDir(dlDir); err != nil {
		return nil, err
	}
	defer os.RemoveAll(dlDir)

	zipPath := filepath.Join(dlDir, "feed.zip")
	if err := downloadFile(ctx, sourceURL, zipPath); err != nil {
		return nil, fmt.Errorf("download: %w", err)
	}
	files, err := unzipFile(zipPath, dlDir)
	if err != nil {
		return nil, fmt.Errorf("unzip: %w", err)
	}
	for _, f := range files {
		if strings.HasSuffix(strings.ToLower(f), ".json") {
			return os.ReadFile(f)
		}
	}
	return nil, fmt.Errorf("no JSON found in ZIP")
}
