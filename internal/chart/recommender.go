package chart

import (
	"fmt"
	"sort"

	model "datasense/domain/chart"
	"datasense/domain/dataset"
)

// AnalyzeColumns projects column statistics into the metadata the rules work on
func AnalyzeColumns(columns []string, types map[string]dataset.ColumnType, stats map[string]dataset.ColumnStatistics) []model.ColumnMetadata {
	out := make([]model.ColumnMetadata, 0, len(columns))
	for _, name := range columns {
		meta := model.ColumnMetadata{Name: name, Type: types[name]}
		if meta.Type == "" {
			meta.Type = dataset.TypeString
		}

		if st, ok := stats[name]; ok {
			unique := st.UniqueCount()
			nulls := st.NullCount
			meta.UniqueCount = &unique
			meta.NullCount = &nulls
			if n := st.Numeric; n != nil {
				min, max, mean, median := n.Min, n.Max, n.Mean, n.Median
				meta.Min, meta.Max, meta.Mean, meta.Median = &min, &max, &mean, &median
			}
		}
		out = append(out, meta)
	}
	return out
}

// Recommender runs an ordered list of rules and ranks what they propose
type Recommender struct {
	rules []Rule
}

// NewRecommender creates a recommender; with no rules the defaults are used
func NewRecommender(rules ...Rule) *Recommender {
	if len(rules) == 0 {
		rules = DefaultRules()
	}
	return &Recommender{rules: rules}
}

// Recommend evaluates every rule and returns the union sorted by priority, then
// confidence, both descending. Equal entries keep rule order.
func (r *Recommender) Recommend(columns []model.ColumnMetadata, datasetName string, rowCount int) []model.Recommendation {
	out := []model.Recommendation{}
	for _, rule := range r.rules {
		for _, rec := range rule.Apply(columns, rowCount) {
			if datasetName != "" {
				rec.Reasoning = fmt.Sprintf("%s (%s, %d rows)", rec.Reasoning, datasetName, rowCount)
				rec.Config.Reasoning = rec.Reasoning
			}
			out = append(out, rec)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Priority != out[j].Priority {
			return out[i].Priority > out[j].Priority
		}
		return out[i].Config.Confidence > out[j].Config.Confidence
	})
	return out
}

// RecommendCharts runs the default rules
func RecommendCharts(columns []model.ColumnMetadata, datasetName string, rowCount int) []model.Recommendation {
	return NewRecommender().Recommend(columns, datasetName, rowCount)
}
