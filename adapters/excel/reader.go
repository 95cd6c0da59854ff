package excel

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"datasense/domain/dataset"
	apperrors "datasense/internal/errors"
	"datasense/internal/schema"
)

// Excel stores dates as day serials; these bound the serials accepted for date-named
// columns (1970-01-01 through 2099-12-31)
const (
	minDateSerial = 25569
	maxDateSerial = 73050
)

// DataReader reads CSV and XLSX uploads into typed rows
type DataReader struct {
	name     string
	fileType string
	config   ReaderConfig
}

// DetectFileType maps a file name to a supported type. Legacy .xls workbooks are rejected.
func DetectFileType(name string) (string, error) {
	ext := strings.ToLower(filepath.Ext(name))
	switch ext {
	case ".csv", ".tsv", ".txt":
		return FileTypeCSV, nil
	case ".xlsx", ".xlsm":
		return FileTypeXLSX, nil
	}
	return "", apperrors.UnsupportedFormat(ext)
}

// NewDataReader creates a reader for the named file. The name only decides the format.
func NewDataReader(name string, config ReaderConfig) (*DataReader, error) {
	fileType, err := DetectFileType(name)
	if err != nil {
		return nil, err
	}
	return &DataReader{name: name, fileType: fileType, config: config}, nil
}

// ReadFile opens path and parses it
func (r *DataReader) ReadFile(path string) (*ParsedData, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, apperrors.Wrapf(apperrors.InvalidInput(err.Error()), "%s file not found: %s", strings.ToUpper(r.fileType), path)
	}
	if r.config.MaxFileBytes > 0 && info.Size() > r.config.MaxFileBytes {
		return nil, apperrors.FileTooLarge(info.Size(), r.config.MaxFileBytes)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, apperrors.Wrapf(err, "failed to open %s", path)
	}
	defer f.Close()
	return r.Read(f)
}

// Read parses an upload body. The body is buffered up to the size limit.
func (r *DataReader) Read(src io.Reader) (*ParsedData, error) {
	log.Printf("[DataReader] Starting to read %s upload: %s", r.fileType, r.name)

	limit := r.config.MaxFileBytes
	if limit > 0 {
		src = io.LimitReader(src, limit+1)
	}
	body, err := io.ReadAll(src)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to read upload")
	}
	if limit > 0 && int64(len(body)) > limit {
		return nil, apperrors.FileTooLarge(int64(len(body)), limit)
	}

	switch r.fileType {
	case FileTypeCSV:
		return r.readCSVData(body)
	case FileTypeXLSX:
		return r.readExcelData(body)
	}
	return nil, apperrors.UnsupportedFormat(r.fileType)
}

// readExcelData reads the configured sheet, or the first one, keeping native cell types
func (r *DataReader) readExcelData(body []byte) (*ParsedData, error) {
	startTime := time.Now()
	f, err := excelize.OpenReader(bytes.NewReader(body))
	if err != nil {
		return nil, apperrors.ParseError("failed to open Excel workbook", err)
	}
	defer f.Close()
	log.Printf("[DataReader] Excel workbook opened in %.2fms", float64(time.Since(startTime).Nanoseconds())/1e6)

	sheet := r.config.Sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, apperrors.ParseError("workbook has no sheets", nil)
		}
		sheet = sheets[0]
	} else if idx, err := f.GetSheetIndex(sheet); err != nil || idx < 0 {
		return nil, apperrors.InvalidInput(fmt.Sprintf("sheet %q not found", sheet))
	}

	readStart := time.Now()
	formatted, err := f.GetRows(sheet)
	if err != nil {
		return nil, apperrors.ParseError(fmt.Sprintf("failed to read sheet %s", sheet), err)
	}
	raw, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, apperrors.ParseError(fmt.Sprintf("failed to read sheet %s", sheet), err)
	}
	log.Printf("[DataReader] %s read in %.2fms (%d rows)", sheet, float64(time.Since(readStart).Nanoseconds())/1e6, len(formatted))

	if len(formatted) < 2 {
		return nil, apperrors.InvalidInput("Excel sheet must have at least a header row and one data row")
	}

	headers := normalizeHeaders(formatted[0])
	data, err := r.processRows(headers, len(formatted)-1, func(i, j int) dataset.Value {
		return excelCell(headers[j], cellAt(formatted, i+1, j), cellAt(raw, i+1, j))
	}, func(i int) int {
		return max(len(formatted[i+1]), rowLen(raw, i+1))
	})
	if err != nil {
		return nil, err
	}
	data.Sheet = sheet
	return data, nil
}

func cellAt(rows [][]string, i, j int) string {
	if i >= len(rows) || j >= len(rows[i]) {
		return ""
	}
	return strings.TrimSpace(rows[i][j])
}

func rowLen(rows [][]string, i int) int {
	if i >= len(rows) {
		return 0
	}
	return len(rows[i])
}

// excelCell builds a typed cell from the formatted and raw text of one Excel cell.
// A number shown with a date format is converted from its day serial; so is an
// integral serial in a column whose header mentions a date.
func excelCell(header, formatted, raw string) dataset.Value {
	if raw == "" {
		return dataset.NewText(formatted)
	}
	serial, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return dataset.NewText(formatted)
	}

	if formatted != raw {
		if _, isDate := schema.ParseDate(formatted); isDate {
			if t, err := excelize.ExcelDateToTime(serial, false); err == nil {
				return dataset.NewDate(t)
			}
		}
	}
	if looksLikeDateColumn(header) && serial == math.Trunc(serial) && serial >= minDateSerial && serial <= maxDateSerial {
		if t, err := excelize.ExcelDateToTime(serial, false); err == nil {
			return dataset.NewDate(t)
		}
	}

	if serial == math.Trunc(serial) && math.Abs(serial) < 1<<53 {
		return dataset.NewInt(int64(serial))
	}
	return dataset.NewFloat(serial)
}

func looksLikeDateColumn(header string) bool {
	lower := strings.ToLower(header)
	return strings.Contains(lower, "date") || strings.HasSuffix(lower, "_at") || strings.HasSuffix(lower, " day")
}

// readCSVData reads delimited text, sniffing the delimiter from the header line
func (r *DataReader) readCSVData(body []byte) (*ParsedData, error) {
	body = bytes.TrimPrefix(body, []byte("\xef\xbb\xbf"))

	reader := csv.NewReader(bytes.NewReader(body))
	reader.Comma = sniffDelimiter(r.name, body)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	readStart := time.Now()
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, apperrors.ParseError("failed to read CSV file", err)
	}
	log.Printf("[DataReader] CSV file read in %.2fms (%d rows)", float64(time.Since(readStart).Nanoseconds())/1e6, len(rows))

	if len(rows) < 2 {
		return nil, apperrors.InvalidInput("CSV file must have at least a header row and one data row")
	}

	headers := normalizeHeaders(rows[0])
	return r.processRows(headers, len(rows)-1, func(i, j int) dataset.Value {
		return dataset.NewText(cellAt(rows, i+1, j))
	}, func(i int) int {
		return len(rows[i+1])
	})
}

// sniffDelimiter picks the most frequent of comma, semicolon and tab on the header line
func sniffDelimiter(name string, body []byte) rune {
	if strings.HasSuffix(strings.ToLower(name), ".tsv") {
		return '\t'
	}
	scanner := bufio.NewScanner(bytes.NewReader(body))
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	if !scanner.Scan() {
		return ','
	}
	header := scanner.Text()

	best, bestCount := ',', 0
	for _, d := range []rune{',', ';', '\t'} {
		count := 0
		inQuotes := false
		for _, c := range header {
			switch {
			case c == '"':
				inQuotes = !inQuotes
			case c == d && !inQuotes:
				count++
			}
		}
		if count > bestCount {
			best, bestCount = d, count
		}
	}
	return best
}

// normalizeHeaders trims names, fills blanks with column_N and suffixes duplicates. A suffix
// is skipped when another header already uses that name.
func normalizeHeaders(row []string) []string {
	headers := make([]string, len(row))
	taken := make(map[string]bool, len(row))
	for _, h := range row {
		taken[strings.TrimSpace(h)] = true
	}

	used := make(map[string]bool, len(row))
	for i, h := range row {
		name := strings.TrimSpace(h)
		generated := name == ""
		if generated {
			name = fmt.Sprintf("column_%d", i+1)
		}
		if used[name] || (generated && taken[name]) {
			base := name
			for n := 2; ; n++ {
				name = fmt.Sprintf("%s_%d", base, n)
				if !used[name] && !taken[name] {
					break
				}
			}
		}
		used[name] = true
		headers[i] = name
	}
	return headers
}

// processRows turns positional cells into keyed rows. Blank rows are skipped and rows past
// the cap are counted but not kept.
func (r *DataReader) processRows(headers []string, n int, cell func(i, j int) dataset.Value, width func(i int) int) (*ParsedData, error) {
	if len(headers) == 0 {
		return nil, apperrors.InvalidInput("file has no columns")
	}

	data := &ParsedData{Columns: headers}
	for i := 0; i < n; i++ {
		if width(i) == 0 {
			continue
		}
		row := make(dataset.RawRow, len(headers))
		blank := true
		for j, h := range headers {
			v := cell(i, j)
			if !v.IsNull() {
				blank = false
			}
			row[h] = v
		}
		if blank {
			continue
		}

		data.TotalRows++
		if r.config.MaxRows > 0 && len(data.Rows) >= r.config.MaxRows {
			data.Truncated = true
			continue
		}
		data.Rows = append(data.Rows, row)
	}

	if len(data.Rows) == 0 {
		return nil, apperrors.InvalidInput("file contains no data rows")
	}
	if data.Truncated {
		log.Printf("[DataReader] %s capped at %d of %d rows", r.name, len(data.Rows), data.TotalRows)
	}
	log.Printf("[DataReader] %s file processed (%d columns, %d rows)",
		strings.ToUpper(r.fileType), len(headers), len(data.Rows))
	return data, nil
}
