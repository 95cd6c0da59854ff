package correlation

import (
	"fmt"
	"strings"

	corr "datasense/domain/correlation"
)

// Insights derives rule-based insights from a finished correlation list. Each rule fires
// independently and the output order is always pattern, opportunity, risk.
func Insights(correlations []corr.Correlation) []corr.Insight {
	var strong, thematic, negative []int
	for i, c := range correlations {
		if c.Strength == corr.StrengthStrong {
			strong = append(strong, i)
		}
		if c.Type == corr.TypeThematic {
			thematic = append(thematic, i)
		}
		if c.Direction == corr.DirectionNegative {
			negative = append(negative, i)
		}
	}

	insights := []corr.Insight{}
	if len(strong) > 0 {
		insights = append(insights, corr.Insight{
			Type:                corr.InsightPattern,
			Title:               "Strong relationships detected",
			Description:         fmt.Sprintf("Found %d strong %s in the data worth investigating.", len(strong), plural(len(strong), "correlation", "correlations")),
			Confidence:          0.8,
			RelatedCorrelations: strong,
		})
	}
	if len(thematic) > 0 {
		insights = append(insights, corr.Insight{
			Type:                corr.InsightOpportunity,
			Title:               "Document themes reflected in the data",
			Description:         fmt.Sprintf("Themes from the document appear in the dataset: %s.", themeList(correlations, thematic)),
			Confidence:          0.7,
			RelatedCorrelations: thematic,
		})
	}
	if len(negative) > 0 {
		insights = append(insights, corr.Insight{
			Type:                corr.InsightRisk,
			Title:               "Inverse relationships to monitor",
			Description:         fmt.Sprintf("%d %s move in opposite directions; rising values in one metric coincide with falling values in another.", len(negative), plural(len(negative), "pair", "pairs")),
			Confidence:          0.75,
			RelatedCorrelations: negative,
		})
	}
	return insights
}

func themeList(correlations []corr.Correlation, idx []int) string {
	seen := make(map[string]bool, len(idx))
	var names []string
	for _, i := range idx {
		name := correlations[i].Theme
		if seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	return strings.Join(names, ", ")
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
