package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"datasense/domain/document"
	"datasense/domain/usage"
	"datasense/internal/metrics"
	"datasense/ports"
)

// maxDocumentChars bounds the text sent to the model
const maxDocumentChars = 24000

const analysisSystemPrompt = "You analyze business documents. Respond with a single JSON object and nothing else."

const analysisPrompt = `Analyze the document below and return JSON with exactly this shape:
{
  "themes": [{"name": string, "description": string, "relevance": number between 0 and 1}],
  "sentiment": {"overall": "positive"|"negative"|"neutral", "score": number between -1 and 1,
                "breakdown": {"positive": number, "neutral": number, "negative": number}},
  "keywords": [string],
  "summary": string
}
Return at most 8 themes and 10 keywords. Breakdown shares must sum to 1.

DOCUMENT:
%s`

// RemoteAnalyzer asks an LLM for document annotations as strict JSON
type RemoteAnalyzer struct {
	config   Config
	client   ports.LLMClient
	recorder ports.UsageRecorder
}

// NewRemoteAnalyzer creates a document analyzer backed by the given client. recorder may be nil.
func NewRemoteAnalyzer(config Config, client ports.LLMClient, recorder ports.UsageRecorder) *RemoteAnalyzer {
	return &RemoteAnalyzer{config: config, client: client, recorder: recorder}
}

type documentPayload struct {
	Themes    []document.Theme    `json:"themes"`
	Sentiment *document.Sentiment `json:"sentiment"`
	Keywords  []string            `json:"keywords"`
	Summary   string              `json:"summary"`
}

// AnalyzeDocument sends the text to the model and validates the reply
func (a *RemoteAnalyzer) AnalyzeDocument(ctx context.Context, text string) (*document.Document, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("document is empty")
	}

	body := text
	if len(body) > maxDocumentChars {
		body = truncateUTF8(body, maxDocumentChars)
	}

	start := time.Now()
	resp, err := a.client.ChatCompletionWithUsage(ctx, a.config.Model, analysisSystemPrompt, fmt.Sprintf(analysisPrompt, body), a.config.MaxTokens)
	if err != nil {
		return nil, fmt.Errorf("document analysis request: %w", err)
	}
	recordUsage(ctx, a.recorder, usage.OpDocumentAnalysis, resp.Usage)
	log.Printf("[RemoteAnalyzer] %s replied in %.2fms", a.config.Model, float64(time.Since(start).Nanoseconds())/1e6)

	payload, err := parsePayload(resp.Content)
	if err != nil {
		return nil, err
	}

	doc := &document.Document{
		Content:   text,
		Themes:    payload.Themes,
		Sentiment: payload.Sentiment,
		Keywords:  payload.Keywords,
		Summary:   strings.TrimSpace(payload.Summary),
		Source:    document.SourceRemote,
	}
	if doc.Themes == nil {
		doc.Themes = []document.Theme{}
	}
	if doc.Keywords == nil {
		doc.Keywords = []string{}
	}
	if doc.Sentiment == nil {
		doc.Sentiment = document.NeutralSentiment()
	}
	doc.Normalize()
	return doc, nil
}

// parsePayload extracts the JSON object from a reply, tolerating code fences and prose
// around it
func parsePayload(content string) (*documentPayload, error) {
	raw := extractJSONObject(content)
	if raw == "" {
		return nil, fmt.Errorf("document analysis reply contains no JSON object")
	}
	var payload documentPayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return nil, fmt.Errorf("unmarshal document analysis: %w", err)
	}
	for i, th := range payload.Themes {
		if strings.TrimSpace(th.Name) == "" {
			return nil, fmt.Errorf("theme %d has no name", i)
		}
	}
	return &payload, nil
}

func extractJSONObject(s string) string {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return ""
	}
	return s[start : end+1]
}

func truncateUTF8(s string, limit int) string {
	for limit > 0 && limit < len(s) && !isRuneStart(s[limit]) {
		limit--
	}
	return s[:limit]
}

func isRuneStart(b byte) bool {
	return b&0xC0 != 0x80
}

func recordUsage(ctx context.Context, recorder ports.UsageRecorder, operation string, u *ports.UsageData) {
	if u == nil {
		return
	}
	metrics.ObserveTokens(u.Provider, u.PromptTokens, u.CompletionTokens)
	if recorder != nil {
		recorder.RecordUsage(ctx, operation, u)
	}
}

// FallbackAnalyzer tries the primary analyzer and substitutes the fallback when it fails.
// The primary error is logged and never returned.
type FallbackAnalyzer struct {
	primary  ports.DocumentAnalyzer
	fallback ports.DocumentAnalyzer
}

// NewFallbackAnalyzer composes two analyzers. A nil primary always uses the fallback.
func NewFallbackAnalyzer(primary, fallback ports.DocumentAnalyzer) *FallbackAnalyzer {
	return &FallbackAnalyzer{primary: primary, fallback: fallback}
}

func (f *FallbackAnalyzer) AnalyzeDocument(ctx context.Context, text string) (*document.Document, error) {
	if f.primary != nil {
		doc, err := f.primary.AnalyzeDocument(ctx, text)
		if err == nil {
			metrics.ObserveDocument(string(doc.Source))
			return doc, nil
		}
		log.Printf("[FallbackAnalyzer] primary analyzer failed, using fallback: %v", err)
		metrics.ObserveFallback()
	}
	doc, err := f.fallback.AnalyzeDocument(ctx, text)
	if err != nil {
		return nil, err
	}
	metrics.ObserveDocument(string(doc.Source))
	return doc, nil
}

// NewDocumentAnalyzer builds the analyzer chain for a config: heuristic only, or a remote
// provider with the heuristic behind it when FallbackToHeuristic is set.
func NewDocumentAnalyzer(config Config, heuristic ports.DocumentAnalyzer, recorder ports.UsageRecorder) (ports.DocumentAnalyzer, error) {
	if config.Provider == ProviderHeuristic {
		return NewFallbackAnalyzer(nil, heuristic), nil
	}
	client, err := NewClient(config)
	if err != nil {
		if config.FallbackToHeuristic {
			log.Printf("[LLM] %v; document analysis will use the heuristic analyzer", err)
			return NewFallbackAnalyzer(nil, heuristic), nil
		}
		return nil, fmt.Errorf("failed to create LLM client: %w", err)
	}
	remote := NewRemoteAnalyzer(config, client, recorder)
	if !config.FallbackToHeuristic {
		return remote, nil
	}
	return NewFallbackAnalyzer(remote, heuristic), nil
}
