package heuristic

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"unicode"

	"datasense/domain/document"
)

const (
	// MaxKeywords is the number of keywords kept per document
	MaxKeywords = 10
	// MaxThemes is the number of top keywords promoted to themes
	MaxThemes = 5
	// SummarySentences is the length of the extractive summary
	SummarySentences = 3
	// minTokenLength drops short function words the stop list misses
	minTokenLength = 3
	// polarityCutoff is the |score| above which a document stops being neutral
	polarityCutoff = 0.2
)

// Analyzer extracts document annotations with word counts and a small sentiment lexicon.
// It needs no network and never fails.
type Analyzer struct{}

// NewAnalyzer creates a new heuristic document analyzer
func NewAnalyzer() *Analyzer {
	return &Analyzer{}
}

// AnalyzeDocument builds keywords, themes, sentiment and a summary from text
func (a *Analyzer) AnalyzeDocument(ctx context.Context, text string) (*document.Document, error) {
	tokens := Tokenize(text)
	counts := countTokens(tokens)

	doc := &document.Document{
		Content:   text,
		Keywords:  keywords(counts, MaxKeywords),
		Themes:    themes(counts, MaxThemes),
		Sentiment: lexiconSentiment(tokens),
		Summary:   Summarize(text, SummarySentences),
		Source:    document.SourceHeuristic,
	}
	doc.Normalize()
	return doc, nil
}

// Tokenize lowercases text and splits it on anything that is not a letter or digit
func Tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

type tokenCount struct {
	word  string
	count int
	first int
}

// countTokens counts content words, remembering first-seen order for stable ranking
func countTokens(tokens []string) []tokenCount {
	index := make(map[string]int)
	var counts []tokenCount
	for _, tok := range tokens {
		if !isContentWord(tok) {
			continue
		}
		if i, ok := index[tok]; ok {
			counts[i].count++
			continue
		}
		index[tok] = len(counts)
		counts = append(counts, tokenCount{word: tok, count: 1, first: len(counts)})
	}
	sort.SliceStable(counts, func(i, j int) bool {
		if counts[i].count != counts[j].count {
			return counts[i].count > counts[j].count
		}
		return counts[i].first < counts[j].first
	})
	return counts
}

func isContentWord(tok string) bool {
	if len([]rune(tok)) < minTokenLength || stopWords[tok] {
		return false
	}
	for _, r := range tok {
		if !unicode.IsDigit(r) {
			return true
		}
	}
	return false
}

func keywords(counts []tokenCount, limit int) []string {
	out := make([]string, 0, limit)
	for _, c := range counts {
		if len(out) == limit {
			break
		}
		out = append(out, c.word)
	}
	return out
}

// themes promotes the most frequent words. Relevance is frequency relative to the top word.
func themes(counts []tokenCount, limit int) []document.Theme {
	out := make([]document.Theme, 0, limit)
	if len(counts) == 0 {
		return out
	}
	top := float64(counts[0].count)
	for _, c := range counts {
		if len(out) == limit {
			break
		}
		out = append(out, document.Theme{
			Name:        titleCase(c.word),
			Description: fmt.Sprintf("Mentioned %d %s in the document", c.count, pluralTimes(c.count)),
			Relevance:   math.Round(float64(c.count)/top*100) / 100,
		})
	}
	return out
}

func pluralTimes(n int) string {
	if n == 1 {
		return "time"
	}
	return "times"
}

func titleCase(s string) string {
	r := []rune(s)
	if len(r) == 0 {
		return s
	}
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}

// lexiconSentiment scores (positive - negative) / (positive + negative) over lexicon hits.
// A document with no hits is neutral.
func lexiconSentiment(tokens []string) *document.Sentiment {
	var pos, neg int
	for _, tok := range tokens {
		switch {
		case positiveWords[tok]:
			pos++
		case negativeWords[tok]:
			neg++
		}
	}
	if pos+neg == 0 {
		return document.NeutralSentiment()
	}

	score := float64(pos-neg) / float64(pos+neg)
	overall := document.SentimentNeutral
	switch {
	case score > polarityCutoff:
		overall = document.SentimentPositive
	case score < -polarityCutoff:
		overall = document.SentimentNegative
	}

	total := float64(len(tokens))
	return &document.Sentiment{
		Overall: overall,
		Score:   math.Round(score*100) / 100,
		Breakdown: document.Breakdown{
			Positive: float64(pos) / total,
			Negative: float64(neg) / total,
			Neutral:  float64(len(tokens)-pos-neg) / total,
		},
	}
}

// Summarize returns the first n sentences of text, whitespace collapsed
func Summarize(text string, n int) string {
	words := strings.Fields(text)
	var b strings.Builder
	sentences := 0
	for _, w := range words {
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(w)
		if strings.HasSuffix(w, ".") || strings.HasSuffix(w, "!") || strings.HasSuffix(w, "?") {
			sentences++
			if sentences == n {
				break
			}
		}
	}
	return b.String()
}
