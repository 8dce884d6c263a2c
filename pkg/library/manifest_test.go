package library

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadManifest(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name    string
		yaml    string
		kind    string
		data    string
		wantErr bool
	}{
		{"defaults", "id: x\n", KindCatalogue, "data.json", false},
		{"fulltext", "id: x\nkind: fulltext\ndata_file: corpus.json\n", KindFullText, "corpus.json", false},
		{"missing id", "kind: overlay\n", "", "", true},
		{"bad kind", "id: x\nkind: video\n", "", "", true},
		{"bad yaml", "id: [\n", "", "", true},
	}
	for _, tt := range tests {
		path := filepath.Join(dir, tt.name+".yaml")
		if err := os.WriteFile(path, []byte(tt.yaml), 0o644); err != nil {
			t.Fatal(err)
		}
		m, err := LoadManifest(path)
		if tt.wantErr {
			if err == nil {
				t.Errorf("%s: expected error", tt.name)
			}
			continue
		}
		if err != nil {
			t.Errorf("%s: %v", tt.name, err)
			continue
		}
		if m.Kind != tt.kind || m.DataFile != tt.data {
			t.Errorf("%s: kind=%q data_file=%q, want %q %q", tt.name, m.Kind, m.DataFile, tt.kind, tt.data)
		}
	}
}

func TestWriteManifest_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "manifest.yaml")
	in := &Manifest{ID: "meetings", Kind: KindOverlay, DataFile: "data.json"}
	in.Overlay.Section = "Meeting reports"
	if err := WriteManifest(in, path); err != nil {
		t.Fatal(err)
	}
	out, err := LoadManifest(path)
	if err != nil {
		t.Fatal(err)
	}
	if out.Overlay.Section != "Meeting reports" || out.Kind != KindOverlay {
		t.Errorf("round trip = %+v", out)
	}
}
