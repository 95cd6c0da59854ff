package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	m := &dto.Metric{}
	require.NoError(t, c.Write(m))
	return m.GetCounter().GetValue()
}

func TestRegisterIsIdempotent(t *testing.T) {
	reg := prometheus.NewRegistry()
	require.NoError(t, Register(reg))
	require.NoError(t, Register(reg))
}

func TestObserveAnalysisNormalizesOutcome(t *testing.T) {
	before := counterValue(t, analysesTotal.WithLabelValues(OutcomeSuccess))
	ObserveAnalysis(-time.Second, "weird", 42)
	assert.Equal(t, before+1, counterValue(t, analysesTotal.WithLabelValues(OutcomeSuccess)))

	errBefore := counterValue(t, analysesTotal.WithLabelValues(OutcomeError))
	ObserveAnalysis(time.Millisecond, OutcomeError, 0)
	assert.Equal(t, errBefore+1, counterValue(t, analysesTotal.WithLabelValues(OutcomeError)))
}

func TestObserveTokensSkipsZero(t *testing.T) {
	ObserveTokens("test", 0, 5)
	assert.Equal(t, 5.0, counterValue(t, llmTokensTotal.WithLabelValues("test", "completion")))
	assert.Equal(t, 0.0, counterValue(t, llmTokensTotal.WithLabelValues("test", "prompt")))
}
