// CLAUDE:SUMMARY Catalogue and full-text feed records, completeness scoring, and lenient JSON decoding of full-text feeds.
package catalog

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Record is one logical document in the catalogue.
type Record struct {
	Title           string `json:"title" yaml:"title"`
	URL             string `json:"url" yaml:"url"`
	Symbol          string `json:"symbol" yaml:"symbol"`
	CanonicalSymbol string `json:"canonical_symbol,omitempty" yaml:"canonical_symbol,omitempty"`
	Version         string `json:"version" yaml:"version"`
	Date            string `json:"date" yaml:"date"`
	Type            string `json:"type" yaml:"type"`
	Section         string `json:"section" yaml:"section"`
	Subsection      string `json:"subsection" yaml:"subsection"`
	Notes           string `json:"notes" yaml:"notes"`
}

// Completeness counts the non-empty secondary fields. Only used to arbitrate
// between duplicates.
func (r *Record) Completeness() int {
	n := 0
	for _, v := range []string{r.Date, r.Version, r.Type, r.Section, r.Subsection} {
		if strings.TrimSpace(v) != "" {
			n++
		}
	}
	return n
}

// TextRecord is the extracted full text of one document, joined to the
// catalogue by URL.
type TextRecord struct {
	URL        string `json:"url"`
	Title      string `json:"title"`
	Symbol     string `json:"symbol"`
	Section    string `json:"section"`
	Subsection string `json:"subsection"`
	Text       string `json:"text"`
}

// Field aliases accepted in full-text feeds produced by older index builders.
var (
	urlKeys        = []string{"url", "link", "u", "href", "location"}
	titleKeys      = []string{"title", "doc_title", "ti", "name"}
	symbolKeys     = []string{"symbol", "sy", "doc_symbol"}
	sectionKeys    = []string{"section", "sec"}
	subsectionKeys = []string{"subsection", "sub"}
	textKeys       = []string{"text", "content", "body", "c", "txt", "doc_text", "text_content"}
)

// UnmarshalJSON accepts the aliased keys above. Text may be a string, an array
// of strings (joined with spaces) or any other JSON value (kept as raw JSON).
func (t *TextRecord) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decode text record: %w", err)
	}
	*t = TextRecord{
		URL:        pickString(raw, urlKeys),
		Title:      pickString(raw, titleKeys),
		Symbol:     pickString(raw, symbolKeys),
		Section:    pickString(raw, sectionKeys),
		Subsection: pickString(raw, subsectionKeys),
		Text:       pickText(raw, textKeys),
	}
	return nil
}

func pick(raw map[string]json.RawMessage, keys []string) (json.RawMessage, bool) {
	for _, k := range keys {
		if v, ok := raw[k]; ok && string(v) != "null" {
			return v, true
		}
	}
	return nil, false
}

func pickString(raw map[string]json.RawMessage, keys []string) string {
	v, ok := pick(raw, keys)
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(v, &s); err == nil {
		return s
	}
	return strings.Trim(string(v), `"`)
}

func pickText(raw map[string]json.RawMessage, keys []string) string {
	v, ok := pick(raw, keys)
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(v, &s); err == nil {
		return s
	}
	var parts []string
	if err := json.Unmarshal(v, &parts); err == nil {
		return strings.Join(parts, " ")
	}
	return string(v)
}

// DecodeTextFeed decodes a full-text feed: either a JSON array of records or
// an object wrapping one under "records", "docs" or "items". Records lacking
// a URL or text are dropped.
func DecodeTextFeed(data []byte) ([]TextRecord, error) {
	var records []TextRecord
	if err := json.Unmarshal(data, &records); err != nil {
		var wrapper struct {
			Records []TextRecord `json:"records"`
			Docs    []TextRecord `json:"docs"`
			Items   []TextRecord `json:"items"`
		}
		if werr := json.Unmarshal(data, &wrapper); werr != nil {
			return nil, fmt.Errorf("decode text feed: %w", err)
		}
		switch {
		case wrapper.Records != nil:
			records = wrapper.Records
		case wrapper.Docs != nil:
			records = wrapper.Docs
		default:
			records = wrapper.Items
		}
	}

	out := records[:0]
	for _, r := range records {
		if r.URL == "" || r.Text == "" {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

// DecodeCatalogFeed decodes a catalogue feed (a JSON array of records).
// Absent fields decode as empty strings.
func DecodeCatalogFeed(data []byte) ([]Record, error) {
	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decode catalogue feed: %w", err)
	}
	return records, nil
}
