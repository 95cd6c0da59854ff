package container

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"datasense/adapters/memory"
	"datasense/internal/config"
)

func TestNewRequiresConfig(t *testing.T) {
	_, err := New(nil)
	assert.Error(t, err)
}

func TestInitWithDefaults(t *testing.T) {
	c, err := New(config.Default())
	require.NoError(t, err)
	require.NoError(t, c.Init(context.Background()))

	assert.Nil(t, c.DB)
	assert.IsType(t, &memory.AnalysisRepository{}, c.AnalysisRepo)
	assert.NotNil(t, c.Analyzer)
	assert.Nil(t, c.Narrator)
	assert.NotNil(t, c.Service)
	assert.NotNil(t, c.Usage)
	assert.NoError(t, c.HealthCheck(context.Background()))
	assert.NoError(t, c.Shutdown(context.Background()))
}

func TestInitWithNarrative(t *testing.T) {
	cfg := config.Default()
	cfg.AI.Provider = "openai"
	cfg.AI.OpenAIKey = "sk-test"
	cfg.AI.Narrative = true

	c, err := New(cfg)
	require.NoError(t, err)
	require.NoError(t, c.Init(context.Background()))
	assert.NotNil(t, c.Narrator)
	assert.Equal(t, "sk-test", c.LLMConfig().APIKey)
}

func TestReaderConfigFollowsLimits(t *testing.T) {
	cfg := config.Default()
	cfg.Limits.MaxRows = 12
	cfg.Limits.MaxFileBytes = 2048

	c, err := New(cfg)
	require.NoError(t, err)
	rc := c.ReaderConfig()
	assert.Equal(t, 12, rc.MaxRows)
	assert.Equal(t, int64(2048), rc.MaxFileBytes)
}
