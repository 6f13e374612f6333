package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rotemx/RAG-sub001/ai"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, ai.ProviderOpenAI, cfg.Provider)
	assert.Equal(t, BackendBadger, cfg.Index.Backend)
	assert.NotEmpty(t, cfg.Index.Path)
	assert.True(t, cfg.Cache.Enabled)
	assert.Equal(t, 5*time.Minute, time.Duration(cfg.Cache.TTL))
	assert.NoError(t, cfg.Validate())
}

func TestAIConfigMapping(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Provider = ai.ProviderAnthropic
	cfg.APIKey = "sk-ant-test"
	cfg.Embedding.Host = "http://embedder:8080"
	cfg.Embedding.Model = "text-embedding-3-large"
	cfg.Generation.Model = "claude-sonnet-4-5"
	cfg.Generation.InputCostPer1M = 3.0
	cfg.Generation.OutputCostPer1M = 15.0

	aiCfg := cfg.AIConfig()
	assert.Equal(t, ai.ProviderAnthropic, aiCfg.Provider)
	assert.Equal(t, "sk-ant-test", aiCfg.APIKey)
	assert.Equal(t, "http://embedder:8080", aiCfg.EmbeddingHost)
	assert.Equal(t, "text-embedding-3-large", aiCfg.EmbeddingModel)
	assert.Equal(t, "claude-sonnet-4-5", aiCfg.GenerationModel)
	assert.Equal(t, 3.0, aiCfg.InputCostPer1M)
	assert.Equal(t, 15.0, aiCfg.OutputCostPer1M)
	require.NoError(t, aiCfg.Validate())
}

func TestRAGConfigMapping(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Pipeline.TopK = 7
	cfg.Pipeline.ScoreThreshold = 0.4
	cfg.Pipeline.MaxContextTokens = 2000
	cfg.Pipeline.SystemTemplate = "You are a statutes librarian."
	cfg.Cache.Enabled = true
	cfg.Cache.TTL = Duration(2 * time.Minute)
	cfg.Cache.MaxSize = 50
	cfg.Latency.LogSummaries = true
	cfg.Latency.GenerationWarnMs = 4000

	ragCfg := cfg.RAGConfig()
	assert.Equal(t, 7, ragCfg.DefaultTopK)
	assert.Equal(t, float32(0.4), ragCfg.DefaultScoreThreshold)
	assert.Equal(t, 2000, ragCfg.MaxContextTokens)
	assert.Equal(t, "You are a statutes librarian.", ragCfg.SystemTemplate)
	assert.True(t, ragCfg.EnableCache)
	assert.Equal(t, 2*time.Minute, ragCfg.CacheTTL)
	assert.Equal(t, 50, ragCfg.CacheMaxSize)
	assert.True(t, ragCfg.RetrievalParamsInCacheKey)
	assert.True(t, ragCfg.EnableLatencyLogging)
	assert.Equal(t, 4000.0, ragCfg.Thresholds.GenerationWarnMs)
}
