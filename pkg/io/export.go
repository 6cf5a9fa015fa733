package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/utxoscope/pkg/entity"
)

type recordFile struct {
	Records []entity.Record `json:"records"`
}

// WriteRecords encodes records as JSON and writes them to w.
// The output can be re-imported with [ReadRecords] for round-trip processing.
func WriteRecords(records []entity.Record, w io.Writer) error {
	out := recordFile{Records: records}
	if out.Records == nil {
		out.Records = []entity.Record{}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ExportRecords writes records to a JSON file at path.
// This is a convenience wrapper around [WriteRecords] for file-based output.
func ExportRecords(records []entity.Record, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteRecords(records, f)
}
