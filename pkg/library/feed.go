// CLAUDE:SUMMARY Loads one feed directory (gob snapshot, JSON or CSV) into catalogue or full-text records.
package library

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"

	"github.com/hazyhaar/pacm-search/pkg/catalog"
)

// Feed is one loaded feed directory.
type Feed struct {
	Manifest *Manifest
	Records  []catalog.Record     // catalogue and overlay feeds
	Texts    []catalog.TextRecord // full-text feeds
}

// Len returns the number of records in the feed.
func (f *Feed) Len() int { return len(f.Records) + len(f.Texts) }

// LoadFeed reads dir/manifest.yaml and the feed data: data.gob when present,
// otherwise the manifest's data file as JSON or CSV.
func LoadFeed(dir string) (*Feed, error) {
	m, err := LoadManifest(filepath.Join(dir, "manifest.yaml"))
	if err != nil {
		return nil, err
	}
	feed := &Feed{Manifest: m}

	gobPath := filepath.Join(dir, GobFile)
	if _, err := os.Stat(gobPath); err == nil {
		p, err := loadGob(gobPath)
		if err != nil {
			return nil, fmt.Errorf("feed %s: %w", m.ID, err)
		}
		feed.Records, feed.Texts = p.Records, p.Texts
		return feed, nil
	}

	dataPath := filepath.Join(dir, m.DataFile)
	switch formatType(m) {
	case "json":
		err = feed.loadJSON(dataPath)
	case "csv":
		err = feed.loadCSV(dataPath)
	default:
		err = fmt.Errorf("unsupported format %q", formatType(m))
	}
	if err != nil {
		return nil, fmt.Errorf("feed %s: %w", m.ID, err)
	}
	return feed, nil
}

func formatType(m *Manifest) string {
	if m.Format.Type != "" {
		return strings.ToLower(m.Format.Type)
	}
	switch strings.ToLower(filepath.Ext(m.DataFile)) {
	case ".csv", ".tsv":
		return "csv"
	default:
		return "json"
	}
}

func (f *Feed) loadJSON(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read data file: %w", err)
	}
	if f.Manifest.Kind == KindFullText {
		f.Texts, err = catalog.DecodeTextFeed(data)
	} else {
		f.Records, err = catalog.DecodeCatalogFeed(data)
	}
	return err
}

// defaultColumns maps record fields to themselves when the manifest declares
// no column mapping.
var defaultColumns = []string{"title", "url", "symbol", "version", "date", "type", "section", "subsection", "notes", "text"}

func (f *Feed) loadCSV(path string) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open data file: %w", err)
	}
	defer file.Close()

	// Transcode non-UTF-8 encodings declared in the manifest.
	var reader io.Reader = file
	if enc := f.Manifest.Format.Encoding; enc != "" && !isUTF8(enc) {
		e, err := htmlindex.Get(enc)
		if err != nil {
			return fmt.Errorf("unsupported encoding %q: %w", enc, err)
		}
		reader = transform.NewReader(file, e.NewDecoder())
	}

	r := csv.NewReader(reader)
	if delim := f.Manifest.Format.Delimiter; delim != "" {
		r.Comma = []rune(delim)[0]
	}
	r.LazyQuotes = true
	r.TrimLeadingSpace = true
	r.FieldsPerRecord = -1

	if !f.Manifest.Format.HasHeader {
		return fmt.Errorf("csv feeds need a header row")
	}
	header, err := r.Read()
	if err != nil {
		return fmt.Errorf("read header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(strings.TrimPrefix(header[i], "\ufeff"))
	}

	cols := f.Manifest.Columns
	if len(cols) == 0 {
		for _, name := range defaultColumns {
			cols = append(cols, ColumnSpec{Field: name, Column: name})
		}
	}
	idx := make(map[string]int, len(cols))
	for _, c := range cols {
		for i, h := range header {
			if strings.EqualFold(h, c.Column) {
				idx[c.Field] = i
				break
			}
		}
	}
	if _, ok := idx["url"]; !ok {
		return fmt.Errorf("url column not found in header %v", header)
	}

	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("read row: %w", err)
		}
		get := func(field string) string {
			if i, ok := idx[field]; ok && i < len(row) {
				return strings.TrimSpace(row[i])
			}
			return ""
		}

		if f.Manifest.Kind == KindFullText {
			t := catalog.TextRecord{
				URL:        get("url"),
				Title:      get("title"),
				Symbol:     get("symbol"),
				Section:    get("section"),
				Subsection: get("subsection"),
				Text:       get("text"),
			}
			if t.URL != "" && t.Text != "" {
				f.Texts = append(f.Texts, t)
			}
			continue
		}
		f.Records = append(f.Records, catalog.Record{
			Title:      get("title"),
			URL:        get("url"),
			Symbol:     get("symbol"),
			Version:    get("version"),
			Date:       get("date"),
			Type:       get("type"),
			Section:    get("section"),
			Subsection: get("subsection"),
			Notes:      get("notes"),
		})
	}
	return nil
}

func isUTF8(enc string) bool {
	e := strings.ToLower(strings.ReplaceAll(enc, "-", ""))
	return e == "utf8" || e == ""
}
