package analysis

import (
	"encoding/json"
	"fmt"
	"io"

	"datasense/domain/dataset"
)

// Export is the file form of an analysis. Unlike the API form it carries the rows, so an
// imported analysis can still render chart previews.
type Export struct {
	Analysis *Analysis       `json:"analysis"`
	Rows     []dataset.RawRow `json:"rows"`
}

// WriteExport writes a as indented JSON
func WriteExport(w io.Writer, a *Analysis) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(Export{Analysis: a, Rows: a.Rows})
}

// ReadExport reads an analysis written by WriteExport
func ReadExport(r io.Reader) (*Analysis, error) {
	var e Export
	if err := json.NewDecoder(r).Decode(&e); err != nil {
		return nil, fmt.Errorf("decode export: %w", err)
	}
	if e.Analysis == nil || e.Analysis.ID == "" {
		return nil, fmt.Errorf("export has no analysis")
	}
	e.Analysis.Rows = e.Rows
	return e.Analysis, nil
}
