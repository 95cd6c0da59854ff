// Package chart recommends chart configurations for a profiled dataset.
package chart

import (
	"fmt"
	"strings"

	model "datasense/domain/chart"
	"datasense/domain/dataset"
)

// Rule proposes charts for a set of columns. Rules are independent: each sees the full
// column list and may return any number of recommendations.
type Rule struct {
	Name  string
	Apply func(columns []model.ColumnMetadata, rowCount int) []model.Recommendation
}

// DefaultRules returns the built-in rules in evaluation order
func DefaultRules() []Rule {
	return []Rule{
		{Name: "time_series", Apply: timeSeriesRule},
		{Name: "category_comparison", Apply: categoryComparisonRule},
		{Name: "composition", Apply: compositionRule},
		{Name: "relationship", Apply: relationshipRule},
		{Name: "distribution", Apply: distributionRule},
	}
}

type buckets struct {
	numeric     []model.ColumnMetadata
	categorical []model.ColumnMetadata
	dates       []model.ColumnMetadata
}

func partition(columns []model.ColumnMetadata) buckets {
	var b buckets
	for _, c := range columns {
		switch {
		case c.Type.IsNumeric():
			b.numeric = append(b.numeric, c)
		case c.Type.IsCategorical():
			b.categorical = append(b.categorical, c)
		case c.Type == dataset.TypeDate:
			b.dates = append(b.dates, c)
		}
	}
	return b
}

func names(columns []model.ColumnMetadata, limit int) []string {
	if len(columns) > limit {
		columns = columns[:limit]
	}
	out := make([]string, len(columns))
	for i, c := range columns {
		out[i] = c.Name
	}
	return out
}

func recommendation(cfg model.Config, priority int) model.Recommendation {
	return model.Recommendation{Config: cfg, Priority: priority, Reasoning: cfg.Reasoning}
}

func timeSeriesRule(columns []model.ColumnMetadata, _ int) []model.Recommendation {
	b := partition(columns)
	if len(b.dates) == 0 || len(b.numeric) == 0 {
		return nil
	}
	date, metric := b.dates[0], b.numeric[0]

	out := []model.Recommendation{recommendation(model.Config{
		Type:        model.TypeLine,
		Title:       fmt.Sprintf("%s over time", metric.Name),
		XAxis:       date.Name,
		YAxis:       []string{metric.Name},
		Aggregation: model.AggNone,
		Confidence:  0.95,
		Reasoning:   fmt.Sprintf("%s is a date column, so %s can be tracked as a trend.", date.Name, metric.Name),
	}, 5)}

	if len(b.numeric) > 1 {
		series := names(b.numeric, 3)
		out = append(out, recommendation(model.Config{
			Type:        model.TypeLine,
			Variant:     model.VariantMultiLine,
			Title:       fmt.Sprintf("%s over time", strings.Join(series, ", ")),
			XAxis:       date.Name,
			YAxis:       series,
			Aggregation: model.AggNone,
			Confidence:  0.9,
			Reasoning:   fmt.Sprintf("Compare %d metrics along %s.", len(series), date.Name),
		}, 4))
	}
	return out
}

// pickCategory prefers a low-cardinality column and falls back to a wider one
func pickCategory(categorical []model.ColumnMetadata) (model.ColumnMetadata, bool) {
	for _, limit := range []int{15, 30} {
		for _, c := range categorical {
			if u := c.Unique(); u >= 1 && u <= limit {
				return c, true
			}
		}
	}
	return model.ColumnMetadata{}, false
}

func categoryComparisonRule(columns []model.ColumnMetadata, rowCount int) []model.Recommendation {
	b := partition(columns)
	if len(b.numeric) == 0 {
		return nil
	}
	category, ok := pickCategory(b.categorical)
	if !ok {
		return nil
	}
	metric := b.numeric[0]
	unique := category.Unique()

	agg := model.AggNone
	if unique < rowCount {
		agg = model.AggSum
	}

	out := []model.Recommendation{recommendation(model.Config{
		Type:        model.TypeBar,
		Title:       fmt.Sprintf("%s by %s", metric.Name, category.Name),
		XAxis:       category.Name,
		YAxis:       []string{metric.Name},
		Aggregation: agg,
		ShowLabels:  unique <= 10,
		Confidence:  0.9,
		Reasoning:   fmt.Sprintf("%s has %d categories, a good fit for comparing %s.", category.Name, unique, metric.Name),
	}, 5)}

	if len(b.numeric) > 1 {
		series := names(b.numeric, 3)
		out = append(out, recommendation(model.Config{
			Type:        model.TypeBar,
			Variant:     model.VariantStacked,
			Title:       fmt.Sprintf("%s by %s", strings.Join(series, " + "), category.Name),
			XAxis:       category.Name,
			YAxis:       series,
			Aggregation: agg,
			Confidence:  0.85,
			Reasoning:   fmt.Sprintf("Stack %d metrics to see how each %s is composed.", len(series), category.Name),
		}, 3))
	}
	return out
}

func compositionRule(columns []model.ColumnMetadata, _ int) []model.Recommendation {
	b := partition(columns)
	var category *model.ColumnMetadata
	for i := range b.categorical {
		if u := b.categorical[i].Unique(); u >= 2 && u <= 8 {
			category = &b.categorical[i]
			break
		}
	}
	if category == nil {
		return nil
	}

	agg := model.AggCount
	var y []string
	subject := "records"
	if len(b.numeric) > 0 {
		agg = model.AggSum
		y = []string{b.numeric[0].Name}
		subject = b.numeric[0].Name
	}

	pie := model.Config{
		Type:        model.TypePie,
		Title:       fmt.Sprintf("Share of %s by %s", subject, category.Name),
		XAxis:       category.Name,
		YAxis:       y,
		Aggregation: agg,
		ShowLabels:  true,
		Confidence:  0.8,
		Reasoning:   fmt.Sprintf("%s has %d categories, few enough to read as proportions.", category.Name, category.Unique()),
	}
	donut := pie
	donut.YAxis = append([]string(nil), y...)
	donut.Variant = model.VariantDonut
	donut.Confidence = 0.75

	return []model.Recommendation{recommendation(pie, 3), recommendation(donut, 2)}
}

func relationshipRule(columns []model.ColumnMetadata, _ int) []model.Recommendation {
	b := partition(columns)
	if len(b.numeric) < 2 {
		return nil
	}
	x, y := b.numeric[0], b.numeric[1]
	return []model.Recommendation{recommendation(model.Config{
		Type:        model.TypeScatter,
		Title:       fmt.Sprintf("%s vs %s", y.Name, x.Name),
		XAxis:       x.Name,
		YAxis:       []string{y.Name},
		Aggregation: model.AggNone,
		Confidence:  0.85,
		Reasoning:   fmt.Sprintf("Plot %s against %s to reveal a relationship.", y.Name, x.Name),
	}, 4)}
}

func distributionRule(columns []model.ColumnMetadata, _ int) []model.Recommendation {
	b := partition(columns)
	if len(b.numeric) == 0 || len(b.categorical) > 0 || len(b.dates) > 0 {
		return nil
	}
	metric := b.numeric[0]
	return []model.Recommendation{recommendation(model.Config{
		Type:        model.TypeHistogram,
		Variant:     model.VariantDistribution,
		Title:       fmt.Sprintf("Distribution of %s", metric.Name),
		XAxis:       metric.Name,
		YAxis:       []string{metric.Name},
		Aggregation: model.AggCount,
		Confidence:  0.7,
		Reasoning:   fmt.Sprintf("Only numeric columns are present; a histogram shows how %s is spread.", metric.Name),
	}, 2)}
}
