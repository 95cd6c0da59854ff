package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	// OutcomeSuccess labels analyses that completed.
	OutcomeSuccess = "success"
	// OutcomeError labels analyses rejected at the parsing boundary or failed in persistence.
	OutcomeError = "error"
)

var (
	analysesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "datasense",
			Name:      "analyses_total",
			Help:      "Total number of upload analyses, partitioned by outcome.",
		},
		[]string{"outcome"},
	)

	analysisDurationSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "datasense",
			Name:      "analysis_seconds",
			Help:      "End-to-end analysis latency in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 4, 8, 16},
		},
	)

	rowsAnalyzed = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "datasense",
			Name:      "rows_analyzed",
			Help:      "Rows kept per analyzed upload.",
			Buckets:   prometheus.ExponentialBuckets(10, 2, 10),
		},
	)

	documentAnalysesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "datasense",
			Name:      "document_analyses_total",
			Help:      "Document analyses partitioned by the strategy that produced the result.",
		},
		[]string{"source"},
	)

	documentFallbacksTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "datasense",
			Name:      "document_fallbacks_total",
			Help:      "Remote document analyses that failed and were replaced by the heuristic.",
		},
	)

	llmTokensTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "datasense",
			Name:      "llm_tokens_total",
			Help:      "Tokens consumed by LLM calls, partitioned by provider and direction.",
		},
		[]string{"provider", "direction"},
	)
)

// Register attaches datasense collectors to the supplied Prometheus registerer.
func Register(reg prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		analysesTotal,
		analysisDurationSeconds,
		rowsAnalyzed,
		documentAnalysesTotal,
		documentFallbacksTotal,
		llmTokensTotal,
	}

	for _, collector := range collectors {
		if err := reg.Register(collector); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); ok {
				continue
			}
			return err
		}
	}
	return nil
}

// ObserveAnalysis records an analysis duration, outcome label and row count.
func ObserveAnalysis(duration time.Duration, outcome string, rows int) {
	label := outcome
	if label != OutcomeError {
		label = OutcomeSuccess
	}
	analysesTotal.WithLabelValues(label).Inc()
	if duration < 0 {
		duration = 0
	}
	analysisDurationSeconds.Observe(duration.Seconds())
	if label == OutcomeSuccess {
		rowsAnalyzed.Observe(float64(rows))
	}
}

// ObserveDocument counts a document analysis by the source that produced it
func ObserveDocument(source string) {
	documentAnalysesTotal.WithLabelValues(source).Inc()
}

// ObserveFallback counts a remote extraction replaced by the heuristic
func ObserveFallback() {
	documentFallbacksTotal.Inc()
}

// ObserveTokens adds prompt and completion token usage for a provider
func ObserveTokens(provider string, prompt, completion int) {
	if prompt > 0 {
		llmTokensTotal.WithLabelValues(provider, "prompt").Add(float64(prompt))
	}
	if completion > 0 {
		llmTokensTotal.WithLabelValues(provider, "completion").Add(float64(completion))
	}
}
