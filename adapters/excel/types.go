package excel

import "datasense/domain/dataset"

// ParsedData is the typed row-set produced by the parsing boundary
type ParsedData struct {
	Columns   []string         // Column headers, trimmed and de-duplicated
	Rows      []dataset.RawRow // Data rows, capped at the configured maximum
	Sheet     string           // Sheet that was read (XLSX only)
	TotalRows int              // Data rows in the source before capping
	Truncated bool             // True when rows were dropped by the cap
}

// File types accepted by the reader
const (
	FileTypeCSV  = "csv"
	FileTypeXLSX = "xlsx"
)
