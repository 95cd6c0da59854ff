package heuristic

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"datasense/domain/document"
)

const review = "The delivery was fast and the staff were friendly. Delivery times improved. " +
	"Pricing is expensive. Staff helpful!"

func TestAnalyzeDocumentKeywordsAndThemes(t *testing.T) {
	doc, err := NewAnalyzer().AnalyzeDocument(context.Background(), review)
	require.NoError(t, err)

	assert.Equal(t, document.SourceHeuristic, doc.Source)
	assert.Equal(t, review, doc.Content)
	assert.Equal(t, []string{
		"delivery", "staff", "fast", "friendly", "times", "improved", "pricing", "expensive", "helpful",
	}, doc.Keywords)

	require.Len(t, doc.Themes, MaxThemes)
	assert.Equal(t, "Delivery", doc.Themes[0].Name)
	assert.Equal(t, 1.0, doc.Themes[0].Relevance)
	assert.Equal(t, "Staff", doc.Themes[1].Name)
	assert.Equal(t, 0.5, doc.Themes[2].Relevance)
	assert.Equal(t, "Mentioned 2 times in the document", doc.Themes[0].Description)
}

func TestAnalyzeDocumentSentiment(t *testing.T) {
	doc, err := NewAnalyzer().AnalyzeDocument(context.Background(), review)
	require.NoError(t, err)
	require.NotNil(t, doc.Sentiment)

	assert.Equal(t, document.SentimentPositive, doc.Sentiment.Overall)
	assert.Equal(t, 0.6, doc.Sentiment.Score)
	b := doc.Sentiment.Breakdown
	assert.InDelta(t, 1.0, b.Positive+b.Neutral+b.Negative, 1e-9)
	assert.InDelta(t, 4.0/17, b.Positive, 1e-9)
}

func TestAnalyzeDocumentNegativeAndNeutral(t *testing.T) {
	doc, err := NewAnalyzer().AnalyzeDocument(context.Background(), "Support was slow and rude. The app is broken.")
	require.NoError(t, err)
	assert.Equal(t, document.SentimentNegative, doc.Sentiment.Overall)
	assert.Equal(t, -1.0, doc.Sentiment.Score)

	doc, err = NewAnalyzer().AnalyzeDocument(context.Background(), "Quarterly report for the northern region.")
	require.NoError(t, err)
	assert.Equal(t, document.NeutralSentiment(), doc.Sentiment)
}

func TestAnalyzeDocumentEmpty(t *testing.T) {
	doc, err := NewAnalyzer().AnalyzeDocument(context.Background(), "   ")
	require.NoError(t, err)
	assert.NotNil(t, doc.Keywords)
	assert.Empty(t, doc.Keywords)
	assert.Empty(t, doc.Themes)
	assert.Equal(t, "", doc.Summary)
	assert.Equal(t, document.SentimentNeutral, doc.Sentiment.Overall)
}

func TestSummarize(t *testing.T) {
	assert.Equal(t,
		"The delivery was fast and the staff were friendly. Delivery times improved. Pricing is expensive.",
		Summarize(review, 3))
	assert.Equal(t, "No terminal punctuation here", Summarize("No terminal\n punctuation   here", 3))
}

func TestTokenize(t *testing.T) {
	assert.Equal(t, []string{"café", "prices", "rose", "12"}, Tokenize("Café prices rose 12%!"))
}
