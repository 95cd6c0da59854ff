package dataset

import (
	"time"

	"datasense/domain/core"
)

// RawRow maps a column name to a cell
type RawRow map[string]Value

// ColumnType is the semantic type inferred for a column
type ColumnType string

const (
	TypeInteger ColumnType = "integer"
	TypeFloat   ColumnType = "float"
	TypeString  ColumnType = "string"
	TypeDate    ColumnType = "date"
	TypeBoolean ColumnType = "boolean"
)

// IsNumeric returns true for integer and float columns
func (t ColumnType) IsNumeric() bool {
	return t == TypeInteger || t == TypeFloat
}

// IsCategorical returns true for string and boolean columns
func (t ColumnType) IsCategorical() bool {
	return t == TypeString || t == TypeBoolean
}

// ColumnStatistics is a per-column summary. Exactly one of the typed sections is set for a
// column with at least one valid value; an all-missing column carries only the counts.
type ColumnStatistics struct {
	Type      ColumnType    `json:"type"`
	Count     int           `json:"count"`
	NullCount int           `json:"nullCount"`
	Numeric   *NumericStats `json:"numeric,omitempty"`
	String    *StringStats  `json:"string,omitempty"`
	Date      *DateStats    `json:"date,omitempty"`
	Boolean   *BooleanStats `json:"boolean,omitempty"`
}

// IsEmpty reports whether the column had no valid values
func (s ColumnStatistics) IsEmpty() bool {
	return s.Count == 0
}

// UniqueCount returns the distinct-value count of whichever section is populated.
func (s ColumnStatistics) UniqueCount() int {
	switch {
	case s.Numeric != nil:
		return s.Numeric.UniqueCount
	case s.String != nil:
		return s.String.UniqueCount
	case s.Date != nil:
		return s.Date.UniqueCount
	case s.Boolean != nil:
		n := 0
		if s.Boolean.TrueCount > 0 {
			n++
		}
		if s.Boolean.FalseCount > 0 {
			n++
		}
		return n
	}
	return 0
}

// NumericStats summarizes integer and float columns
type NumericStats struct {
	Min         float64 `json:"min"`
	Max         float64 `json:"max"`
	Mean        float64 `json:"mean"`
	Median      float64 `json:"median"`
	StdDev      float64 `json:"stdDev"`
	Sum         float64 `json:"sum"`
	UniqueCount int     `json:"uniqueCount"`
}

// StringStats summarizes text columns
type StringStats struct {
	UniqueCount int        `json:"uniqueCount"`
	MaxLength   int        `json:"maxLength"`
	MinLength   int        `json:"minLength"`
	TopValues   []TopValue `json:"topValues"`
}

// TopValue is one entry of a frequency table
type TopValue struct {
	Value      string  `json:"value"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// DateStats summarizes date columns
type DateStats struct {
	Earliest    time.Time `json:"earliest"`
	Latest      time.Time `json:"latest"`
	UniqueCount int       `json:"uniqueCount"`
}

// BooleanStats summarizes boolean columns
type BooleanStats struct {
	TrueCount      int     `json:"trueCount"`
	FalseCount     int     `json:"falseCount"`
	TruePercentage float64 `json:"truePercentage"`
}

// Dataset is a typed, profiled upload. It is built once by New and must be treated as
// read-only afterwards.
type Dataset struct {
	ID          core.DatasetID              `json:"id"`
	Name        string                      `json:"name"`
	Rows        []RawRow                    `json:"rows"`
	ColumnNames []string                    `json:"columnNames"`
	ColumnTypes map[string]ColumnType       `json:"columnTypes"`
	ColumnStats map[string]ColumnStatistics `json:"columnStats"`
	RowCount    int                         `json:"rowCount"`
}

// New assembles a dataset, copying the column slice and maps so later changes by the caller
// cannot leak in.
func New(name string, rows []RawRow, columns []string, types map[string]ColumnType, stats map[string]ColumnStatistics) *Dataset {
	cols := append([]string(nil), columns...)
	t := make(map[string]ColumnType, len(types))
	for k, v := range types {
		t[k] = v
	}
	s := make(map[string]ColumnStatistics, len(stats))
	for k, v := range stats {
		s[k] = v
	}
	return &Dataset{
		ID:          core.NewDatasetID(),
		Name:        name,
		Rows:        rows,
		ColumnNames: cols,
		ColumnTypes: t,
		ColumnStats: s,
		RowCount:    len(rows),
	}
}

// ColumnsOfType lists column names of the given type in column order.
func (d *Dataset) ColumnsOfType(match func(ColumnType) bool) []string {
	var out []string
	for _, name := range d.ColumnNames {
		if match(d.ColumnTypes[name]) {
			out = append(out, name)
		}
	}
	return out
}

// Profile is the schema and statistics view handed to persistence and the UI.
type Profile struct {
	Columns  []string                    `json:"columns"`
	Types    map[string]ColumnType       `json:"types"`
	Stats    map[string]ColumnStatistics `json:"stats"`
	RowCount int                         `json:"rowCount"`
}

// Profile returns the schema/statistics projection of the dataset
func (d *Dataset) Profile() Profile {
	return Profile{
		Columns:  d.ColumnNames,
		Types:    d.ColumnTypes,
		Stats:    d.ColumnStats,
		RowCount: d.RowCount,
	}
}
