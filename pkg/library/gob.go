package library

import (
	"encoding/gob"
	"fmt"
	"os"

	"github.com/hazyhaar/pacm-search/pkg/catalog"
)

// GobFile is the name of the pre-decoded feed snapshot inside a feed directory.
// It takes priority over the manifest's data file.
const GobFile = "data.gob"

type gobPayload struct {
	Records []catalog.Record
	Texts   []catalog.TextRecord
}

// SaveGob writes records and texts to a gob-encoded file at path.
func SaveGob(path string, records []catalog.Record, texts []catalog.TextRecord) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create gob file: %w", err)
	}
	defer f.Close()

	if err := gob.NewEncoder(f).Encode(gobPayload{Records: records, Texts: texts}); err != nil {
		return fmt.Errorf("encode gob: %w", err)
	}
	return nil
}

func loadGob(path string) (gobPayload, error) {
	var p gobPayload
	f, err := os.Open(path)
	if err != nil {
		return p, fmt.Errorf("open gob file: %w", err)
	}
	defer f.Close()

	if err := gob.NewDecoder(f).Decode(&p); err != nil {
		return p, fmt.Errorf("decode gob: %w", err)
	}
	return p, nil
}
