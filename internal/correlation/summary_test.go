package correlation

import (
	"testing"

	"github.com/stretchr/testify/assert"

	corr "datasense/domain/correlation"
	"datasense/domain/document"
)

func TestSummary(t *testing.T) {
	coef := 0.92
	result := corr.Result{
		Correlations: []corr.Correlation{{
			Type: corr.TypeNumeric, Column1: "age", Column2: "spend", Coefficient: &coef,
			Strength: corr.StrengthStrong, Direction: corr.DirectionPositive,
			Description: "Strong positive correlation between age and spend (r = 0.92)",
		}},
	}
	result.Insights = Insights(result.Correlations)
	doc := &document.Document{
		Themes:    []document.Theme{{Name: "Pricing"}},
		Sentiment: &document.Sentiment{Overall: document.SentimentNeutral},
		Summary:   "Customers talk about price.",
	}

	md := Summary(result, doc)
	assert.Contains(t, md, "## Correlations")
	assert.Contains(t, md, "r=0.92")
	assert.Contains(t, md, "Strong relationships detected")
	assert.Contains(t, md, "- Themes: Pricing")

	out := SummaryHTML(result, doc)
	assert.Contains(t, out, "<h2")
	assert.Contains(t, out, "<strong>numeric</strong>")
}

func TestSummaryEmpty(t *testing.T) {
	md := Summary(corr.Result{}, nil)
	assert.Contains(t, md, "No correlations above the reporting thresholds.")
	assert.NotContains(t, md, "## Document")
}
