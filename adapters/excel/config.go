package excel

// ReaderConfig holds limits and options for reading uploads
type ReaderConfig struct {
	MaxRows      int    `json:"max_rows"`       // Data rows kept; extra rows are counted but dropped
	MaxFileBytes int64  `json:"max_file_bytes"` // Uploads above this size are rejected
	Sheet        string `json:"sheet"`          // XLSX sheet to read; empty means the first sheet
}

// DefaultReaderConfig returns the upload limits used by the hosted product
func DefaultReaderConfig() ReaderConfig {
	return ReaderConfig{
		MaxRows:      5000,
		MaxFileBytes: 10 << 20,
	}
}
