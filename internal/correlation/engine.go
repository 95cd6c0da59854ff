// Package correlation detects numeric, thematic and sentiment correlations in a profiled
// dataset and derives insights from them.
package correlation

import (
	"fmt"
	"math"
	"strings"
	"unicode"
	"unicode/utf8"

	"gonum.org/v1/gonum/stat"

	corr "datasense/domain/correlation"
	"datasense/domain/dataset"
	"datasense/domain/document"
	"datasense/internal/schema"
	"datasense/internal/statistics"
)

// Options holds the reporting thresholds
type Options struct {
	// NumericThreshold is the |r| a numeric pair must exceed to be reported
	NumericThreshold float64
	// ThemeThreshold is the match percentage a theme must exceed to be reported
	ThemeThreshold float64
	// TextSampleSize is how many non-empty cells decide whether a string column is free text
	TextSampleSize int
	// TextMinAverageLength is the average length a sampled string column must exceed
	TextMinAverageLength float64
}

// DefaultOptions returns the standard thresholds
func DefaultOptions() Options {
	return Options{
		NumericThreshold:     0.3,
		ThemeThreshold:       10,
		TextSampleSize:       10,
		TextMinAverageLength: 10,
	}
}

// Engine runs correlation detection with a fixed set of options. It holds no mutable state
// and is safe for concurrent use.
type Engine struct {
	opts Options
}

// NewEngine creates an engine; zero-valued options fall back to the defaults
func NewEngine(opts Options) *Engine {
	def := DefaultOptions()
	if opts.NumericThreshold <= 0 {
		opts.NumericThreshold = def.NumericThreshold
	}
	if opts.ThemeThreshold <= 0 {
		opts.ThemeThreshold = def.ThemeThreshold
	}
	if opts.TextSampleSize <= 0 {
		opts.TextSampleSize = def.TextSampleSize
	}
	if opts.TextMinAverageLength <= 0 {
		opts.TextMinAverageLength = def.TextMinAverageLength
	}
	return &Engine{opts: opts}
}

// Analyze runs the default engine
func Analyze(ds *dataset.Dataset, doc *document.Document) corr.Result {
	return NewEngine(DefaultOptions()).Analyze(ds, doc)
}

// Analyze finds correlations in ds, optionally against a document, and derives insights.
// A nil document limits the run to numeric correlations.
func (e *Engine) Analyze(ds *dataset.Dataset, doc *document.Document) corr.Result {
	correlations := e.numeric(ds)
	if doc != nil {
		correlations = append(correlations, e.thematic(ds, doc)...)
		correlations = append(correlations, e.sentiment(ds, doc)...)
	}
	if correlations == nil {
		correlations = []corr.Correlation{}
	}
	return corr.Result{
		Correlations: correlations,
		Insights:     Insights(correlations),
	}
}

func (e *Engine) numeric(ds *dataset.Dataset) []corr.Correlation {
	var columns []string
	for _, col := range ds.ColumnsOfType(dataset.ColumnType.IsNumeric) {
		if st, ok := ds.ColumnStats[col]; ok && st.IsEmpty() {
			continue
		}
		columns = append(columns, col)
	}

	var out []corr.Correlation
	for i := 0; i < len(columns); i++ {
		for j := i + 1; j < len(columns); j++ {
			x, y := pairedValues(ds.Rows, columns[i], columns[j])
			r, ok := Pearson(x, y)
			if !ok || math.Abs(r) <= e.opts.NumericThreshold {
				continue
			}
			out = append(out, numericCorrelation(columns[i], columns[j], r))
		}
	}
	return out
}

func pairedValues(rows []dataset.RawRow, a, b string) ([]float64, []float64) {
	x := make([]float64, 0, len(rows))
	y := make([]float64, 0, len(rows))
	for _, row := range rows {
		xv, okX := schema.NumberOf(row[a])
		yv, okY := schema.NumberOf(row[b])
		if okX && okY {
			x = append(x, xv)
			y = append(y, yv)
		}
	}
	return x, y
}

func numericCorrelation(a, b string, r float64) corr.Correlation {
	abs := math.Abs(r)
	strength := corr.StrengthWeak
	switch {
	case abs > 0.7:
		strength = corr.StrengthStrong
	case abs > 0.5:
		strength = corr.StrengthModerate
	}
	direction := corr.DirectionNegative
	if r > 0 {
		direction = corr.DirectionPositive
	}

	coefficient := statistics.Round(r, 2)
	return corr.Correlation{
		Type:        corr.TypeNumeric,
		Column1:     a,
		Column2:     b,
		Coefficient: &coefficient,
		Strength:    strength,
		Direction:   direction,
		Description: fmt.Sprintf("%s %s correlation between %s and %s (r = %.2f)",
			capitalize(string(strength)), direction, a, b, coefficient),
	}
}

func (e *Engine) thematic(ds *dataset.Dataset, doc *document.Document) []corr.Correlation {
	if len(doc.Themes) == 0 || ds.RowCount == 0 {
		return nil
	}
	textColumns := e.freeTextColumns(ds)
	if len(textColumns) == 0 {
		return nil
	}

	var out []corr.Correlation
	for _, theme := range doc.Themes {
		tokens := ThemeTokens(theme.Name)
		if len(tokens) == 0 {
			continue
		}
		for _, col := range textColumns {
			matching := 0
			for _, row := range ds.Rows {
				text, ok := schema.TextOf(row[col])
				if !ok {
					continue
				}
				lower := strings.ToLower(text)
				for _, tok := range tokens {
					if strings.Contains(lower, tok) {
						matching++
						break
					}
				}
			}

			pct := float64(matching) / float64(ds.RowCount) * 100
			if pct <= e.opts.ThemeThreshold {
				continue
			}
			strength := corr.StrengthWeak
			switch {
			case pct > 50:
				strength = corr.StrengthStrong
			case pct > 25:
				strength = corr.StrengthModerate
			}
			match := statistics.Round(pct, 2)
			out = append(out, corr.Correlation{
				Type:            corr.TypeThematic,
				Column1:         col,
				Theme:           theme.Name,
				MatchPercentage: &match,
				Strength:        strength,
				Description: fmt.Sprintf("Theme %q appears in %.1f%% of %s entries",
					theme.Name, pct, col),
			})
		}
	}
	return out
}

// freeTextColumns lists string columns whose first sampled values are long enough to carry prose
func (e *Engine) freeTextColumns(ds *dataset.Dataset) []string {
	var out []string
	for _, col := range ds.ColumnsOfType(func(t dataset.ColumnType) bool { return t == dataset.TypeString }) {
		total, n := 0, 0
		for _, row := range ds.Rows {
			text, ok := schema.TextOf(row[col])
			if !ok {
				continue
			}
			total += utf8.RuneCountInString(text)
			n++
			if n == e.opts.TextSampleSize {
				break
			}
		}
		if n > 0 && float64(total)/float64(n) > e.opts.TextMinAverageLength {
			out = append(out, col)
		}
	}
	return out
}

var themeStopWords = map[string]bool{
	"the": true, "and": true, "for": true, "with": true, "from": true, "into": true,
	"about": true, "over": true, "that": true, "this": true, "are": true, "was": true,
}

// ThemeTokens splits a theme name into lowercase keywords. Tokens shorter than three
// characters and common stop words are dropped; if nothing survives the whole lowercased
// name is used.
func ThemeTokens(name string) []string {
	fields := strings.FieldsFunc(strings.ToLower(name), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	var out []string
	for _, f := range fields {
		if utf8.RuneCountInString(f) < 3 || themeStopWords[f] {
			continue
		}
		out = append(out, f)
	}
	if len(out) == 0 {
		if whole := strings.TrimSpace(strings.ToLower(name)); whole != "" {
			out = append(out, whole)
		}
	}
	return out
}

var sentimentColumnHints = []string{"rating", "score", "satisfaction", "nps"}

func (e *Engine) sentiment(ds *dataset.Dataset, doc *document.Document) []corr.Correlation {
	if doc.Sentiment == nil {
		return nil
	}
	var out []corr.Correlation
	for _, col := range ds.ColumnsOfType(dataset.ColumnType.IsNumeric) {
		if !isSentimentColumn(col) {
			continue
		}
		values := make([]float64, 0, len(ds.Rows))
		for _, row := range ds.Rows {
			if f, ok := schema.NumberOf(row[col]); ok {
				values = append(values, f)
			}
		}
		if len(values) == 0 {
			continue
		}

		mean := stat.Mean(values, nil)
		label := ClassifyScale(mean)
		if label != doc.Sentiment.Overall {
			continue
		}
		out = append(out, corr.Correlation{
			Type:      corr.TypeSentiment,
			Column1:   col,
			Strength:  corr.StrengthModerate,
			Alignment: corr.AlignmentAligned,
			Description: fmt.Sprintf("Average %s of %.2f reads as %s, matching the document's %s sentiment",
				col, mean, label, doc.Sentiment.Overall),
		})
	}
	return out
}

func isSentimentColumn(name string) bool {
	lower := strings.ToLower(name)
	for _, hint := range sentimentColumnHints {
		if strings.Contains(lower, hint) {
			return true
		}
	}
	return false
}

// ClassifyScale maps a mean on a 0-10 scale to a sentiment label
func ClassifyScale(mean float64) document.SentimentLabel {
	switch {
	case mean > 7:
		return document.SentimentPositive
	case mean < 4:
		return document.SentimentNegative
	default:
		return document.SentimentNeutral
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
