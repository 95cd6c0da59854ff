package document

import "math"

// SentimentLabel is the overall polarity of a document
type SentimentLabel string

const (
	SentimentPositive SentimentLabel = "positive"
	SentimentNegative SentimentLabel = "negative"
	SentimentNeutral  SentimentLabel = "neutral"
)

// Valid reports whether the label is one of the three known polarities
func (l SentimentLabel) Valid() bool {
	return l == SentimentPositive || l == SentimentNegative || l == SentimentNeutral
}

// Theme is a named qualitative topic extracted from the document text
type Theme struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Relevance   float64 `json:"relevance"`
}

// Breakdown is the share of positive, neutral and negative content; the shares sum to 1.
type Breakdown struct {
	Positive float64 `json:"positive"`
	Neutral  float64 `json:"neutral"`
	Negative float64 `json:"negative"`
}

// Sentiment is the document-level sentiment annotation
type Sentiment struct {
	Overall   SentimentLabel `json:"overall"`
	Score     float64        `json:"score"`
	Breakdown Breakdown      `json:"breakdown"`
}

// Source records which extraction strategy produced the annotations
type Source string

const (
	SourceRemote    Source = "remote"
	SourceHeuristic Source = "heuristic"
)

// Document is a qualitative upload together with its externally produced annotations.
// The analysis engine reads it and never recomputes themes or sentiment.
type Document struct {
	Content   string     `json:"content"`
	Themes    []Theme    `json:"themes"`
	Sentiment *Sentiment `json:"sentiment,omitempty"`
	Keywords  []string   `json:"keywords"`
	Summary   string     `json:"summary"`
	Source    Source     `json:"source"`
}

// NeutralSentiment is the sentiment used when nothing better is known.
func NeutralSentiment() *Sentiment {
	return &Sentiment{
		Overall:   SentimentNeutral,
		Score:     0,
		Breakdown: Breakdown{Neutral: 1},
	}
}

// Normalize repairs annotations coming back from a collaborator: relevance is clamped to
// [0,1], an unknown overall label becomes neutral and a breakdown that does not sum to 1 is
// rescaled (or reset to all-neutral when it sums to zero).
func (d *Document) Normalize() {
	for i := range d.Themes {
		d.Themes[i].Relevance = clamp01(d.Themes[i].Relevance)
	}
	if d.Sentiment == nil {
		return
	}
	if !d.Sentiment.Overall.Valid() {
		d.Sentiment.Overall = SentimentNeutral
	}
	b := &d.Sentiment.Breakdown
	b.Positive, b.Neutral, b.Negative = math.Max(b.Positive, 0), math.Max(b.Neutral, 0), math.Max(b.Negative, 0)
	total := b.Positive + b.Neutral + b.Negative
	switch {
	case total == 0:
		*b = Breakdown{Neutral: 1}
	case math.Abs(total-1) > 1e-9:
		b.Positive /= total
		b.Neutral /= total
		b.Negative /= total
	}
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
