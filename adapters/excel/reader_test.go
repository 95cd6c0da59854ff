package excel

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	apperrors "datasense/internal/errors"
)

func newReader(t *testing.T, name string, cfg ReaderConfig) *DataReader {
	t.Helper()
	r, err := NewDataReader(name, cfg)
	require.NoError(t, err)
	return r
}

func TestDetectFileType(t *testing.T) {
	tests := []struct {
		name string
		want string
		code string
	}{
		{"sales.csv", FileTypeCSV, ""},
		{"SALES.TSV", FileTypeCSV, ""},
		{"book.xlsx", FileTypeXLSX, ""},
		{"legacy.xls", "", apperrors.CodeUnsupportedFormat},
		{"notes.pdf", "", apperrors.CodeUnsupportedFormat},
	}
	for _, tt := range tests {
		got, err := DetectFileType(tt.name)
		if tt.code != "" {
			assert.Equal(t, tt.code, apperrors.GetCode(err), tt.name)
			continue
		}
		require.NoError(t, err, tt.name)
		assert.Equal(t, tt.want, got, tt.name)
	}
}

func TestReadCSV(t *testing.T) {
	body := "\xef\xbb\xbf name ;score;;score\nAnn;7;x;1\n;;;\nBob; 9 ;;2\n"
	data, err := newReader(t, "survey.csv", DefaultReaderConfig()).Read(strings.NewReader(body))
	require.NoError(t, err)

	assert.Equal(t, []string{"name", "score", "column_3", "score_2"}, data.Columns)
	require.Len(t, data.Rows, 2)
	assert.Equal(t, 2, data.TotalRows)
	assert.False(t, data.Truncated)

	name, ok := data.Rows[0]["name"].Text()
	require.True(t, ok)
	assert.Equal(t, "Ann", name)

	score, ok := data.Rows[1]["score"].Text()
	require.True(t, ok)
	assert.Equal(t, "9", score)
	assert.True(t, data.Rows[1]["column_3"].IsNull())
}

func TestReadCSVRaggedRows(t *testing.T) {
	body := "a,b,c\n1,2\n4,5,6,7\n"
	data, err := newReader(t, "r.csv", DefaultReaderConfig()).Read(strings.NewReader(body))
	require.NoError(t, err)
	require.Len(t, data.Rows, 2)
	assert.True(t, data.Rows[0]["c"].IsNull())
	assert.Len(t, data.Rows[1], 3)
}

func TestReadCSVRowCap(t *testing.T) {
	var b strings.Builder
	b.WriteString("n\n")
	for i := 0; i < 12; i++ {
		b.WriteString("1\n")
	}
	cfg := DefaultReaderConfig()
	cfg.MaxRows = 10
	data, err := newReader(t, "cap.csv", cfg).Read(strings.NewReader(b.String()))
	require.NoError(t, err)
	assert.Len(t, data.Rows, 10)
	assert.Equal(t, 12, data.TotalRows)
	assert.True(t, data.Truncated)
}

func TestReadRejectsOversizeAndEmpty(t *testing.T) {
	cfg := DefaultReaderConfig()
	cfg.MaxFileBytes = 8
	_, err := newReader(t, "big.csv", cfg).Read(strings.NewReader("a,b\n1,2\n3,4\n"))
	assert.Equal(t, apperrors.CodeFileTooLarge, apperrors.GetCode(err))

	_, err = newReader(t, "empty.csv", DefaultReaderConfig()).Read(strings.NewReader("a,b\n"))
	assert.Equal(t, apperrors.CodeInvalidInput, apperrors.GetCode(err))
}

func TestNormalizeHeaders(t *testing.T) {
	tests := []struct {
		in   []string
		want []string
	}{
		{[]string{"a", "a_2", "a"}, []string{"a", "a_2", "a_3"}},
		{[]string{"a", "a", "a_2"}, []string{"a", "a_3", "a_2"}},
		{[]string{"", "column_1"}, []string{"column_1_2", "column_1"}},
		{[]string{" x ", "x", "x"}, []string{"x", "x_2", "x_3"}},
	}
	for _, tt := range tests {
		got := normalizeHeaders(tt.in)
		assert.Equal(t, tt.want, got, "%q", tt.in)
	}
}

func TestReadCSVDuplicateHeaderKeepsColumns(t *testing.T) {
	body := "a,a_2,a\n1,10,7\n2,20,8\n"
	data, err := newReader(t, "dup.csv", DefaultReaderConfig()).Read(strings.NewReader(body))
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "a_2", "a_3"}, data.Columns)

	require.Len(t, data.Rows, 2)
	require.Len(t, data.Rows[0], 3)
	second, ok := data.Rows[0]["a_2"].Text()
	require.True(t, ok)
	assert.Equal(t, "10", second)
	third, ok := data.Rows[0]["a_3"].Text()
	require.True(t, ok)
	assert.Equal(t, "7", third)
}

func TestSniffDelimiter(t *testing.T) {
	assert.Equal(t, ';', sniffDelimiter("x.csv", []byte("a;b;c\n1;2;3")))
	assert.Equal(t, '\t', sniffDelimiter("x.csv", []byte("a\tb\n")))
	assert.Equal(t, ',', sniffDelimiter("x.csv", []byte(`"a;b",c`)))
	assert.Equal(t, '\t', sniffDelimiter("x.tsv", []byte("a,b")))
	assert.Equal(t, ',', sniffDelimiter("x.csv", nil))
}

func workbook(t *testing.T, sheet string, rows [][]interface{}) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	if sheet != "Sheet1" {
		_, err := f.NewSheet(sheet)
		require.NoError(t, err)
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func TestReadExcelTypedCells(t *testing.T) {
	body := workbook(t, "Sheet1", [][]interface{}{
		{"Region", "Units", "Price", "Order Date"},
		{"north", 3, 2.5, 45296},
		{"south", 5, 4.25, 45297},
	})

	data, err := newReader(t, "orders.xlsx", DefaultReaderConfig()).Read(bytes.NewReader(body))
	require.NoError(t, err)
	assert.Equal(t, "Sheet1", data.Sheet)
	assert.Equal(t, []string{"Region", "Units", "Price", "Order Date"}, data.Columns)
	require.Len(t, data.Rows, 2)

	units, ok := data.Rows[0]["Units"].Int()
	require.True(t, ok)
	assert.Equal(t, int64(3), units)

	price, ok := data.Rows[1]["Price"].Float()
	require.True(t, ok)
	assert.Equal(t, 4.25, price)

	day, ok := data.Rows[0]["Order Date"].Date()
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC), day)
}

func TestReadExcelNamedSheet(t *testing.T) {
	body := workbook(t, "Data", [][]interface{}{{"a"}, {"x"}})

	cfg := DefaultReaderConfig()
	cfg.Sheet = "Data"
	data, err := newReader(t, "b.xlsx", cfg).Read(bytes.NewReader(body))
	require.NoError(t, err)
	assert.Equal(t, "Data", data.Sheet)

	cfg.Sheet = "Missing"
	_, err = newReader(t, "b.xlsx", cfg).Read(bytes.NewReader(body))
	assert.Equal(t, apperrors.CodeInvalidInput, apperrors.GetCode(err))
}

func TestReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "d.csv")
	require.NoError(t, os.WriteFile(path, []byte("a\n1\n"), 0o600))

	data, err := newReader(t, path, DefaultReaderConfig()).ReadFile(path)
	require.NoError(t, err)
	assert.Len(t, data.Rows, 1)

	_, err = newReader(t, path, DefaultReaderConfig()).ReadFile(filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)
}
