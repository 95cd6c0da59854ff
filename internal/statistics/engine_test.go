package statistics

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"datasense/domain/dataset"
)

func column(col string, values ...dataset.Value) []dataset.RawRow {
	rows := make([]dataset.RawRow, len(values))
	for i, v := range values {
		rows[i] = dataset.RawRow{col: v}
	}
	return rows
}

func TestNumericStats(t *testing.T) {
	rows := column("x",
		dataset.NewInt(1), dataset.NewInt(2), dataset.NewInt(3), dataset.NewInt(4), dataset.NewInt(5),
	)
	out := ComputeStats(rows, []string{"x"}, map[string]dataset.ColumnType{"x": dataset.TypeInteger})

	s := out["x"]
	require.NotNil(t, s.Numeric)
	assert.Equal(t, 5, s.Count)
	assert.Equal(t, 0, s.NullCount)
	assert.Equal(t, 3.0, s.Numeric.Mean)
	assert.Equal(t, 3.0, s.Numeric.Median)
	assert.Equal(t, 1.41, s.Numeric.StdDev)
	assert.Equal(t, 15.0, s.Numeric.Sum)
	assert.Equal(t, 1.0, s.Numeric.Min)
	assert.Equal(t, 5.0, s.Numeric.Max)
	assert.Equal(t, 5, s.Numeric.UniqueCount)
}

func TestNumericStatsRoundsRange(t *testing.T) {
	rows := column("x", dataset.NewFloat(0.123456), dataset.NewFloat(1.98765), dataset.NewFloat(1.06))
	out := ComputeStats(rows, []string{"x"}, map[string]dataset.ColumnType{"x": dataset.TypeFloat})

	s := out["x"]
	require.NotNil(t, s.Numeric)
	assert.Equal(t, 0.12, s.Numeric.Min)
	assert.Equal(t, 1.99, s.Numeric.Max)
}

func TestNumericStatsEvenMedianAndNulls(t *testing.T) {
	rows := column("x",
		dataset.NewText("4"), dataset.NewNull(), dataset.NewText("1"), dataset.NewText("oops"), dataset.NewFloat(2.5), dataset.NewInt(10),
	)
	out := ComputeStats(rows, []string{"x"}, map[string]dataset.ColumnType{"x": dataset.TypeFloat})

	s := out["x"]
	require.NotNil(t, s.Numeric)
	assert.Equal(t, 4, s.Count)
	assert.Equal(t, 2, s.NullCount)
	assert.Equal(t, 3.25, s.Numeric.Median)
}

func TestCountsAlwaysCoverRows(t *testing.T) {
	day := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rows := []dataset.RawRow{
		{"n": dataset.NewInt(1), "s": dataset.NewText("a"), "d": dataset.NewDate(day), "b": dataset.NewBool(true)},
		{"n": dataset.NewText("x"), "s": dataset.NewNull(), "d": dataset.NewText("garbage"), "b": dataset.NewText("maybe")},
		{},
	}
	columns := []string{"n", "s", "d", "b"}
	types := map[string]dataset.ColumnType{
		"n": dataset.TypeInteger,
		"s": dataset.TypeString,
		"d": dataset.TypeDate,
		"b": dataset.TypeBoolean,
	}

	out := ComputeStats(rows, columns, types)
	for _, col := range columns {
		assert.Equal(t, len(rows), out[col].Count+out[col].NullCount, col)
		assert.Equal(t, 1, out[col].Count, col)
	}
}

func TestComputeStatsIsDeterministic(t *testing.T) {
	rows := column("s",
		dataset.NewText("b"), dataset.NewText("a"), dataset.NewText("b"), dataset.NewText("c"),
	)
	types := map[string]dataset.ColumnType{"s": dataset.TypeString}
	first := ComputeStats(rows, []string{"s"}, types)
	second := ComputeStats(rows, []string{"s"}, types)
	assert.Equal(t, first, second)
}

func TestAllMissingColumnIsStub(t *testing.T) {
	rows := column("x", dataset.NewNull(), dataset.NewNull(), dataset.NewNull())
	for _, ct := range []dataset.ColumnType{dataset.TypeInteger, dataset.TypeString, dataset.TypeDate, dataset.TypeBoolean} {
		out := ComputeStats(rows, []string{"x"}, map[string]dataset.ColumnType{"x": ct})
		s := out["x"]
		assert.Equal(t, ct, s.Type)
		assert.Equal(t, 0, s.Count)
		assert.Equal(t, 3, s.NullCount)
		assert.True(t, s.IsEmpty())
		assert.Nil(t, s.Numeric)
		assert.Nil(t, s.String)
		assert.Nil(t, s.Date)
		assert.Nil(t, s.Boolean)
	}
}

func TestStringTopValues(t *testing.T) {
	long := strings.Repeat("z", 60)
	rows := column("s",
		dataset.NewText("b"), dataset.NewText("a"), dataset.NewText("a"), dataset.NewText("b"),
		dataset.NewText("c"), dataset.NewText(long), dataset.NewText("d"), dataset.NewText("e"),
	)
	out := ComputeStats(rows, []string{"s"}, map[string]dataset.ColumnType{"s": dataset.TypeString})

	s := out["s"].String
	require.NotNil(t, s)
	assert.Equal(t, 6, s.UniqueCount)
	assert.Equal(t, 60, s.MaxLength)
	assert.Equal(t, 1, s.MinLength)
	require.Len(t, s.TopValues, TopValueLimit)

	// ties keep first-seen order
	assert.Equal(t, "b", s.TopValues[0].Value)
	assert.Equal(t, 2, s.TopValues[0].Count)
	assert.Equal(t, 25.0, s.TopValues[0].Percentage)
	assert.Equal(t, "a", s.TopValues[1].Value)
	assert.Equal(t, "c", s.TopValues[2].Value)
	assert.Equal(t, strings.Repeat("z", 50)+"...", s.TopValues[3].Value)
	assert.Equal(t, "d", s.TopValues[4].Value)
}

func TestDateStats(t *testing.T) {
	rows := column("d",
		dataset.NewText("2024-03-01"), dataset.NewText("2024-01-15"), dataset.NewText("2024-03-01"), dataset.NewNull(),
	)
	out := ComputeStats(rows, []string{"d"}, map[string]dataset.ColumnType{"d": dataset.TypeDate})

	s := out["d"]
	require.NotNil(t, s.Date)
	assert.Equal(t, 3, s.Count)
	assert.Equal(t, 1, s.NullCount)
	assert.Equal(t, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), s.Date.Earliest)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), s.Date.Latest)
	assert.Equal(t, 2, s.Date.UniqueCount)
}

func TestBooleanStats(t *testing.T) {
	rows := column("b",
		dataset.NewText("yes"), dataset.NewText("no"), dataset.NewBool(true), dataset.NewInt(0), dataset.NewText("Y"), dataset.NewNull(),
	)
	out := ComputeStats(rows, []string{"b"}, map[string]dataset.ColumnType{"b": dataset.TypeBoolean})

	s := out["b"]
	require.NotNil(t, s.Boolean)
	assert.Equal(t, 3, s.Boolean.TrueCount)
	assert.Equal(t, 2, s.Boolean.FalseCount)
	assert.Equal(t, 60.0, s.Boolean.TruePercentage)
	assert.Equal(t, 1, s.NullCount)
}

func TestRound(t *testing.T) {
	assert.Equal(t, 1.41, Round(1.41421356, 2))
	assert.Equal(t, 33.3, Round(33.333, 1))
	assert.Equal(t, -3.0, Round(-2.5, 0))
}
