// CLAUDE:SUMMARY Feed manifest YAML schema: feed kind, data file format, CSV column mapping and overlay rules.
package library

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/hazyhaar/pacm-search/pkg/catalog"
)

// Feed kinds.
const (
	KindCatalogue = "catalogue"
	KindFullText  = "fulltext"
	KindOverlay   = "overlay"
)

// Manifest describes a feed directory: what the data is and how to read it.
type Manifest struct {
	ID        string          `yaml:"id" json:"id"`
	Version   string          `yaml:"version" json:"version"`
	Kind      string          `yaml:"kind" json:"kind"`
	Source    string          `yaml:"source" json:"source"`
	SourceURL string          `yaml:"source_url" json:"source_url,omitempty"`
	License   string          `yaml:"license" json:"license"`
	DataFile  string          `yaml:"data_file" json:"data_file"`
	Format    FormatSpec      `yaml:"format" json:"-"`
	Columns   []ColumnSpec    `yaml:"columns" json:"-"`
	Overlay   catalog.Overlay `yaml:"overlay" json:"overlay,omitempty"`
}

// FormatSpec describes the data file layout. Type is inferred from the data
// file extension when empty.
type FormatSpec struct {
	Type      string `yaml:"type"`
	Delimiter string `yaml:"delimiter"`
	Encoding  string `yaml:"encoding"`
	HasHeader bool   `yaml:"has_header"`
}

// ColumnSpec maps a record field (title, url, symbol, ...) to a CSV header.
type ColumnSpec struct {
	Field  string `yaml:"field"`
	Column string `yaml:"column"`
}

// LoadManifest reads and validates a manifest.yaml file.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest %s: %w", path, err)
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest %s: %w", path, err)
	}
	if m.ID == "" {
		return nil, fmt.Errorf("manifest %s: missing id", path)
	}
	switch m.Kind {
	case "":
		m.Kind = KindCatalogue
	case KindCatalogue, KindFullText, KindOverlay:
	default:
		return nil, fmt.Errorf("manifest %s: unknown kind %q", path, m.Kind)
	}
	if m.DataFile == "" {
		m.DataFile = "data.json"
	}
	return &m, nil
}

// WriteManifest writes m as YAML to path.
func WriteManifest(m *Manifest, path string) error {
	data, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write manifest %s: %w", path, err)
	}
	return nil
}
