package chart

import "datasense/domain/dataset"

// Type is a chart kind
type Type string

const (
	TypeLine      Type = "line"
	TypeBar       Type = "bar"
	TypePie       Type = "pie"
	TypeScatter   Type = "scatter"
	TypeArea      Type = "area"
	TypeHistogram Type = "histogram"
)

// Aggregation is the reduction applied to grouped values before charting
type Aggregation string

const (
	AggNone  Aggregation = "none"
	AggSum   Aggregation = "sum"
	AggAvg   Aggregation = "avg"
	AggCount Aggregation = "count"
	AggMin   Aggregation = "min"
	AggMax   Aggregation = "max"
)

// Variant refines a chart type for rendering
type Variant string

const (
	VariantNone         Variant = ""
	VariantMultiLine    Variant = "multi_line"
	VariantStacked      Variant = "stacked"
	VariantDonut        Variant = "donut"
	VariantDistribution Variant = "distribution"
)

// Config describes a single chart
type Config struct {
	Type        Type        `json:"type"`
	Title       string      `json:"title"`
	XAxis       string      `json:"xAxis"`
	YAxis       []string    `json:"yAxis"`
	Aggregation Aggregation `json:"aggregation"`
	Variant     Variant     `json:"variant,omitempty"`
	ShowLabels  bool        `json:"showLabels"`
	Confidence  float64     `json:"confidence"`
	Reasoning   string      `json:"reasoning"`
}

// Recommendation wraps a chart config with its rank
type Recommendation struct {
	Config    Config `json:"config"`
	Priority  int    `json:"priority"`
	Reasoning string `json:"reasoning"`
}

// ColumnMetadata is the recommender's projection of a column's statistics.
// Optional fields are nil when the statistic does not apply to the column type.
type ColumnMetadata struct {
	Name        string             `json:"name"`
	Type        dataset.ColumnType `json:"type"`
	UniqueCount *int               `json:"uniqueCount,omitempty"`
	Min         *float64           `json:"min,omitempty"`
	Max         *float64           `json:"max,omitempty"`
	Mean        *float64           `json:"mean,omitempty"`
	Median      *float64           `json:"median,omitempty"`
	NullCount   *int               `json:"nullCount,omitempty"`
}

// Unique returns the distinct-value count, or -1 when unknown.
func (c ColumnMetadata) Unique() int {
	if c.UniqueCount == nil {
		return -1
	}
	return *c.UniqueCount
}

// FieldError is one validation failure
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationResult is returned by explicit config validation
type ValidationResult struct {
	Valid  bool         `json:"valid"`
	Errors []FieldError `json:"errors"`
}
