package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"datasense/adapters/llm/heuristic"
	"datasense/domain/document"
	"datasense/domain/usage"
	"datasense/ports"
)

func testConfig() Config {
	return Config{Provider: ProviderOpenAI, Model: "gpt-test", MaxTokens: 512, FallbackToHeuristic: true}
}

func TestRemoteAnalyzerParsesReply(t *testing.T) {
	mock := &MockLLMClient{}
	doc, err := NewRemoteAnalyzer(testConfig(), mock, nil).AnalyzeDocument(context.Background(), "Shipping was quick.")
	require.NoError(t, err)

	assert.Equal(t, document.SourceRemote, doc.Source)
	assert.Equal(t, "Shipping was quick.", doc.Content)
	require.Len(t, doc.Themes, 1)
	assert.Equal(t, "Delivery Speed", doc.Themes[0].Name)
	assert.Equal(t, document.SentimentPositive, doc.Sentiment.Overall)
	assert.Equal(t, []string{"delivery", "speed"}, doc.Keywords)
	assert.Equal(t, analysisSystemPrompt, mock.LastSystem)
	assert.Contains(t, mock.LastPrompt, "Shipping was quick.")
}

func TestRemoteAnalyzerNormalizesReply(t *testing.T) {
	mock := &MockLLMClient{Response: "```json\n" + `{
		"themes": [{"name": "Price", "description": "", "relevance": 1.7}],
		"sentiment": {"overall": "mixed", "score": 0.1, "breakdown": {"positive": 2, "neutral": 1, "negative": 1}}
	}` + "\n```"}
	doc, err := NewRemoteAnalyzer(testConfig(), mock, nil).AnalyzeDocument(context.Background(), "text")
	require.NoError(t, err)

	assert.Equal(t, 1.0, doc.Themes[0].Relevance)
	assert.Equal(t, document.SentimentNeutral, doc.Sentiment.Overall)
	assert.InDelta(t, 0.5, doc.Sentiment.Breakdown.Positive, 1e-9)
	assert.NotNil(t, doc.Keywords)
}

func TestRemoteAnalyzerRejectsBadReplies(t *testing.T) {
	tests := []struct {
		name     string
		response string
	}{
		{"prose", "I cannot help with that."},
		{"broken json", `{"themes": [`},
		{"unnamed theme", `{"themes": [{"name": " ", "relevance": 0.5}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRemoteAnalyzer(testConfig(), &MockLLMClient{Response: tt.response}, nil).
				AnalyzeDocument(context.Background(), "text")
			assert.Error(t, err)
		})
	}

	_, err := NewRemoteAnalyzer(testConfig(), &MockLLMClient{}, nil).AnalyzeDocument(context.Background(), "  ")
	assert.Error(t, err)
}

func TestFallbackAnalyzerSwallowsPrimaryError(t *testing.T) {
	mock := &MockLLMClient{Error: errors.New("upstream 503")}
	analyzer := NewFallbackAnalyzer(NewRemoteAnalyzer(testConfig(), mock, nil), heuristic.NewAnalyzer())

	doc, err := analyzer.AnalyzeDocument(context.Background(), "Great service, friendly staff.")
	require.NoError(t, err)
	assert.Equal(t, document.SourceHeuristic, doc.Source)
	assert.Equal(t, 1, mock.Calls)
}

func TestFallbackAnalyzerPrefersPrimary(t *testing.T) {
	analyzer := NewFallbackAnalyzer(NewRemoteAnalyzer(testConfig(), &MockLLMClient{}, nil), heuristic.NewAnalyzer())
	doc, err := analyzer.AnalyzeDocument(context.Background(), "text")
	require.NoError(t, err)
	assert.Equal(t, document.SourceRemote, doc.Source)
}

func TestNewDocumentAnalyzer(t *testing.T) {
	cfg := testConfig()
	cfg.Provider = ProviderHeuristic
	a, err := NewDocumentAnalyzer(cfg, heuristic.NewAnalyzer(), nil)
	require.NoError(t, err)
	doc, err := a.AnalyzeDocument(context.Background(), "hello world")
	require.NoError(t, err)
	assert.Equal(t, document.SourceHeuristic, doc.Source)

	// missing key degrades to the heuristic when fallback is enabled
	cfg.Provider = ProviderOpenAI
	_, err = NewDocumentAnalyzer(cfg, heuristic.NewAnalyzer(), nil)
	require.NoError(t, err)

	cfg.FallbackToHeuristic = false
	_, err = NewDocumentAnalyzer(cfg, heuristic.NewAnalyzer(), nil)
	assert.Error(t, err)

	cfg.Provider = "bogus"
	cfg.APIKey = "k"
	_, err = NewClient(cfg)
	assert.Error(t, err)
}

func TestNarrator(t *testing.T) {
	mock := &MockLLMClient{Response: "  Sales rise with ad spend.  "}
	text, err := NewNarrator(testConfig(), mock, nil).Narrate(context.Background(), "## Correlations")
	require.NoError(t, err)
	assert.Equal(t, "Sales rise with ad spend.", text)
	assert.Contains(t, mock.LastPrompt, "## Correlations")

	_, err = NewNarrator(testConfig(), mock, nil).Narrate(context.Background(), "")
	assert.Error(t, err)
}

func TestOpenAIClientChatCompletion(t *testing.T) {
	var got struct {
		Model    string `json:"model"`
		Messages []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"hi"}}],"usage":{"prompt_tokens":7,"completion_tokens":1,"total_tokens":8}}`))
	}))
	defer srv.Close()

	client, err := NewClient(Config{Provider: ProviderOpenAI, APIKey: "sk-test", BaseURL: srv.URL + "/"})
	require.NoError(t, err)

	resp, err := client.ChatCompletionWithUsage(context.Background(), "gpt-test", "", "ping", 0)
	require.NoError(t, err)
	assert.Equal(t, "hi", resp.Content)
	assert.Equal(t, 8, resp.Usage.TotalTokens)
	assert.Equal(t, "gpt-test", got.Model)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, defaultSystemPrompt, got.Messages[0].Content)
	assert.Equal(t, "ping", got.Messages[1].Content)
}

func TestOpenAIClientHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client, err := NewClient(Config{APIKey: "k", BaseURL: srv.URL})
	require.NoError(t, err)
	_, err = client.ChatCompletion(context.Background(), "m", "", "p", 10)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")

	_, err = client.ChatCompletion(context.Background(), " ", "", "p", 10)
	assert.Error(t, err)
}

func TestTruncateUTF8(t *testing.T) {
	assert.Equal(t, "ab", truncateUTF8("abé", 3))
	assert.Equal(t, "abé", truncateUTF8("abé", 4))
}

type captureRecorder struct {
	operations []string
	models     []string
}

func (r *captureRecorder) RecordUsage(ctx context.Context, operation string, u *ports.UsageData) {
	r.operations = append(r.operations, operation)
	r.models = append(r.models, u.Model)
}

func TestUsageIsRecorded(t *testing.T) {
	rec := &captureRecorder{}
	mock := &MockLLMClient{}

	_, err := NewRemoteAnalyzer(testConfig(), mock, rec).AnalyzeDocument(context.Background(), "Shipping was quick.")
	require.NoError(t, err)

	mock.Response = "A short story."
	_, err = NewNarrator(testConfig(), mock, rec).Narrate(context.Background(), "## Correlations")
	require.NoError(t, err)

	assert.Equal(t, []string{usage.OpDocumentAnalysis, usage.OpNarrative}, rec.operations)
	assert.Equal(t, []string{"gpt-test", "gpt-test"}, rec.models)
}
