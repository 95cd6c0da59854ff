package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"datasense/domain/usage"
)

func TestLLMUsageRepository(t *testing.T) {
	repo := NewLLMUsageRepository()
	ctx := context.Background()
	now := time.Now().UTC()

	require.NoError(t, repo.RecordUsage(ctx, &usage.Record{Provider: "openai", Model: "m", TotalTokens: 7, CreatedAt: now}))
	require.NoError(t, repo.RecordUsage(ctx, &usage.Record{Provider: "openai", Model: "m", TotalTokens: 3, CreatedAt: now.Add(-48 * time.Hour)}))
	assert.Error(t, repo.RecordUsage(ctx, nil))

	sum, err := repo.Summary(ctx, now.Add(-time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, sum.RequestCount)
	assert.Equal(t, 7, sum.TotalTokens)
}
