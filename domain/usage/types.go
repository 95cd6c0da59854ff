package usage

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

// Operation types for categorization
const (
	OpDocumentAnalysis = "document_analysis"
	OpNarrative        = "narrative"
)

// Record represents a single LLM API call's token usage
type Record struct {
	ID               uuid.UUID `json:"id" db:"id"`
	Provider         string    `json:"provider" db:"provider"` // 'openai', 'anthropic'
	Model            string    `json:"model" db:"model"`
	Operation        string    `json:"operation" db:"operation"`
	PromptTokens     int       `json:"promptTokens" db:"prompt_tokens"`
	CompletionTokens int       `json:"completionTokens" db:"completion_tokens"`
	TotalTokens      int       `json:"totalTokens" db:"total_tokens"`
	CreatedAt        time.Time `json:"createdAt" db:"created_at"`
}

// ModelUsage represents usage aggregated by provider and model
type ModelUsage struct {
	Provider         string `json:"provider" db:"provider"`
	Model            string `json:"model" db:"model"`
	RequestCount     int    `json:"requestCount" db:"request_count"`
	PromptTokens     int    `json:"promptTokens" db:"prompt_tokens"`
	CompletionTokens int    `json:"completionTokens" db:"completion_tokens"`
	TotalTokens      int    `json:"totalTokens" db:"total_tokens"`
}

// Summary aggregates usage since a point in time
type Summary struct {
	Since        time.Time    `json:"since"`
	RequestCount int          `json:"requestCount"`
	TotalTokens  int          `json:"totalTokens"`
	ByModel      []ModelUsage `json:"byModel"`
}

// Summarize aggregates records created at or after since. ByModel is ordered by total tokens,
// largest first.
func Summarize(records []Record, since time.Time) *Summary {
	s := &Summary{Since: since, ByModel: []ModelUsage{}}
	index := make(map[[2]string]int)
	for _, r := range records {
		if r.CreatedAt.Before(since) {
			continue
		}
		s.RequestCount++
		s.TotalTokens += r.TotalTokens

		key := [2]string{r.Provider, r.Model}
		i, ok := index[key]
		if !ok {
			i = len(s.ByModel)
			index[key] = i
			s.ByModel = append(s.ByModel, ModelUsage{Provider: r.Provider, Model: r.Model})
		}
		m := &s.ByModel[i]
		m.RequestCount++
		m.PromptTokens += r.PromptTokens
		m.CompletionTokens += r.CompletionTokens
		m.TotalTokens += r.TotalTokens
	}
	sort.SliceStable(s.ByModel, func(i, j int) bool {
		return s.ByModel[i].TotalTokens > s.ByModel[j].TotalTokens
	})
	return s
}
