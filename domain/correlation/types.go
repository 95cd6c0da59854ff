package correlation

// Type identifies which detector produced a correlation
type Type string

const (
	TypeNumeric   Type = "numeric"
	TypeThematic  Type = "thematic"
	TypeSentiment Type = "sentiment"
)

// Strength is the qualitative bucket derived from |r| or a match percentage
type Strength string

const (
	StrengthWeak     Strength = "weak"
	StrengthModerate Strength = "moderate"
	StrengthStrong   Strength = "strong"
)

// Direction is the sign of a Pearson coefficient
type Direction string

const (
	DirectionPositive Direction = "positive"
	DirectionNegative Direction = "negative"
)

// Alignment says whether a dataset-side sentiment classification agrees with the
// document's overall sentiment. It is deliberately separate from Direction.
type Alignment string

const (
	AlignmentAligned Alignment = "aligned"
	AlignmentOpposed Alignment = "opposed"
)

// Correlation is one detected relationship. Which optional fields are set depends on Type:
// numeric sets Column1, Column2, Coefficient and Direction; thematic sets Column1, Theme and
// MatchPercentage; sentiment sets Column1 and Alignment.
type Correlation struct {
	Type            Type      `json:"type"`
	Column1         string    `json:"column1,omitempty"`
	Column2         string    `json:"column2,omitempty"`
	Theme           string    `json:"theme,omitempty"`
	Coefficient     *float64  `json:"coefficient,omitempty"`
	MatchPercentage *float64  `json:"matchPercentage,omitempty"`
	Strength        Strength  `json:"strength"`
	Direction       Direction `json:"direction,omitempty"`
	Alignment       Alignment `json:"alignment,omitempty"`
	Description     string    `json:"description"`
}

// InsightType classifies an insight
type InsightType string

const (
	InsightOpportunity InsightType = "opportunity"
	InsightRisk        InsightType = "risk"
	InsightTrend       InsightType = "trend"
	InsightPattern     InsightType = "pattern"
)

// Insight is a rule-based aggregation over a completed correlation list.
// RelatedCorrelations holds indexes into that list.
type Insight struct {
	Type                InsightType `json:"type"`
	Title               string      `json:"title"`
	Description         string      `json:"description"`
	Confidence          float64     `json:"confidence"`
	RelatedCorrelations []int       `json:"relatedCorrelations"`
}

// Result is the output of one analysis run
type Result struct {
	Correlations []Correlation `json:"correlations"`
	Insights     []Insight     `json:"insights"`
}
