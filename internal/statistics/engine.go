// Package statistics computes per-column descriptive statistics for a typed dataset.
package statistics

import (
	"math"
	"sort"
	"time"
	"unicode/utf8"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/floats"

	"datasense/domain/dataset"
	"datasense/internal/schema"
)

const (
	// TopValueLimit is the number of most frequent strings reported per column
	TopValueLimit = 5
	// TopValueDisplayLength is the rune length after which a top value is truncated
	TopValueDisplayLength = 50
)

// Round rounds v to the given number of decimal places, half away from zero.
func Round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

// ComputeStats builds a ColumnStatistics for every listed column. Cells that cannot be read
// as the column's type count as missing, so Count+NullCount always equals len(rows).
func ComputeStats(rows []dataset.RawRow, columns []string, types map[string]dataset.ColumnType) map[string]dataset.ColumnStatistics {
	out := make(map[string]dataset.ColumnStatistics, len(columns))
	for _, col := range columns {
		t, ok := types[col]
		if !ok {
			t = dataset.TypeString
		}
		out[col] = computeColumn(rows, col, t)
	}
	return out
}

func computeColumn(rows []dataset.RawRow, col string, t dataset.ColumnType) dataset.ColumnStatistics {
	result := dataset.ColumnStatistics{Type: t}
	total := len(rows)

	switch t {
	case dataset.TypeInteger, dataset.TypeFloat:
		values := make([]float64, 0, total)
		for _, row := range rows {
			if f, ok := schema.NumberOf(row[col]); ok {
				values = append(values, f)
			}
		}
		result.Count = len(values)
		result.Numeric = numericStats(values)

	case dataset.TypeDate:
		values := make([]time.Time, 0, total)
		for _, row := range rows {
			if d, ok := schema.DateOf(row[col]); ok {
				values = append(values, d)
			}
		}
		result.Count = len(values)
		result.Date = dateStats(values)

	case dataset.TypeBoolean:
		trueCount, falseCount := 0, 0
		for _, row := range rows {
			b, ok := schema.BoolOf(row[col])
			if !ok {
				continue
			}
			if b {
				trueCount++
			} else {
				falseCount++
			}
		}
		result.Count = trueCount + falseCount
		if result.Count > 0 {
			result.Boolean = &dataset.BooleanStats{
				TrueCount:      trueCount,
				FalseCount:     falseCount,
				TruePercentage: Round(float64(trueCount)/float64(result.Count)*100, 1),
			}
		}

	default:
		values := make([]string, 0, total)
		for _, row := range rows {
			if s, ok := schema.TextOf(row[col]); ok {
				values = append(values, s)
			}
		}
		result.Count = len(values)
		result.String = stringStats(values)
	}

	result.NullCount = total - result.Count
	return result
}

func numericStats(values []float64) *dataset.NumericStats {
	if len(values) == 0 {
		return nil
	}

	// errors are only returned for empty input, which is excluded above
	mean, _ := stats.Mean(values)
	median, _ := stats.Median(values)
	stdDev, _ := stats.StandardDeviationPopulation(values)
	min, _ := stats.Min(values)
	max, _ := stats.Max(values)

	unique := make(map[float64]struct{}, len(values))
	for _, v := range values {
		unique[v] = struct{}{}
	}

	return &dataset.NumericStats{
		Min:         Round(min, 2),
		Max:         Round(max, 2),
		Mean:        Round(mean, 2),
		Median:      Round(median, 2),
		StdDev:      Round(stdDev, 2),
		Sum:         Round(floats.Sum(values), 2),
		UniqueCount: len(unique),
	}
}

func dateStats(values []time.Time) *dataset.DateStats {
	if len(values) == 0 {
		return nil
	}
	earliest, latest := values[0], values[0]
	days := make(map[string]struct{}, len(values))
	for _, d := range values {
		if d.Before(earliest) {
			earliest = d
		}
		if d.After(latest) {
			latest = d
		}
		days[d.Format(dataset.ISODate)] = struct{}{}
	}
	return &dataset.DateStats{
		Earliest:    earliest,
		Latest:      latest,
		UniqueCount: len(days),
	}
}

func stringStats(values []string) *dataset.StringStats {
	if len(values) == 0 {
		return nil
	}

	counts := make(map[string]int, len(values))
	var order []string
	minLen, maxLen := math.MaxInt, 0
	for _, s := range values {
		if _, seen := counts[s]; !seen {
			order = append(order, s)
		}
		counts[s]++
		n := utf8.RuneCountInString(s)
		if n < minLen {
			minLen = n
		}
		if n > maxLen {
			maxLen = n
		}
	}

	// stable sort keeps first-seen order among equal counts
	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})
	if len(order) > TopValueLimit {
		order = order[:TopValueLimit]
	}

	top := make([]dataset.TopValue, 0, len(order))
	for _, s := range order {
		top = append(top, dataset.TopValue{
			Value:      truncate(s, TopValueDisplayLength),
			Count:      counts[s],
			Percentage: Round(float64(counts[s])/float64(len(values))*100, 2),
		})
	}

	return &dataset.StringStats{
		UniqueCount: len(counts),
		MaxLength:   maxLen,
		MinLength:   minLen,
		TopValues:   top,
	}
}

func truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	return string([]rune(s)[:limit]) + "..."
}
