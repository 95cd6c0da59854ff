// Package schema infers a semantic type per column from a sample of raw cells and coerces
// rows into that type.
package schema

import (
	"datasense/domain/dataset"
)

// SampleSize is the number of non-empty cells inspected per column
const SampleSize = 100

// InferTypes assigns a ColumnType to every column. Each column is classified from its first
// SampleSize non-empty cells: boolean literals win first, then dates, then numbers, and
// anything else is a string. A column with no usable sample is a string.
func InferTypes(rows []dataset.RawRow, columns []string) map[string]dataset.ColumnType {
	types := make(map[string]dataset.ColumnType, len(columns))
	for _, col := range columns {
		types[col] = inferColumn(sample(rows, col))
	}
	return types
}

func sample(rows []dataset.RawRow, col string) []dataset.Value {
	out := make([]dataset.Value, 0, SampleSize)
	for _, row := range rows {
		v, ok := row[col]
		if !ok || v.IsNull() || cellText(v) == "" {
			continue
		}
		out = append(out, v)
		if len(out) == SampleSize {
			break
		}
	}
	return out
}

func inferColumn(values []dataset.Value) dataset.ColumnType {
	if len(values) == 0 {
		return dataset.TypeString
	}

	if all(values, func(v dataset.Value) bool {
		if v.Kind() == dataset.KindBool {
			return true
		}
		return IsBooleanLiteral(cellText(v))
	}) {
		return dataset.TypeBoolean
	}

	if all(values, func(v dataset.Value) bool {
		if v.Kind() == dataset.KindDate {
			return true
		}
		_, ok := ParseDate(cellText(v))
		return ok
	}) {
		return dataset.TypeDate
	}

	fractional := false
	if all(values, func(v dataset.Value) bool {
		f, ok := NumberOf(v)
		if !ok {
			return false
		}
		if hasFraction(cellText(v), f) {
			fractional = true
		}
		return true
	}) {
		if fractional {
			return dataset.TypeFloat
		}
		return dataset.TypeInteger
	}

	return dataset.TypeString
}

func all(values []dataset.Value, pred func(dataset.Value) bool) bool {
	for _, v := range values {
		if !pred(v) {
			return false
		}
	}
	return true
}

// CoerceRows returns new rows whose cells carry the representation of their column's
// inferred type. Every listed column is present in every output row; cells that cannot be
// read as the column type become Null.
func CoerceRows(rows []dataset.RawRow, columns []string, types map[string]dataset.ColumnType) []dataset.RawRow {
	out := make([]dataset.RawRow, len(rows))
	for i, row := range rows {
		coerced := make(dataset.RawRow, len(columns))
		for _, col := range columns {
			coerced[col] = Coerce(row[col], types[col])
		}
		out[i] = coerced
	}
	return out
}
