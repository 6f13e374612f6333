package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.NotNil(t, cfg)
	assert.Equal(t, ProviderOpenAI, cfg.Provider)
	assert.Equal(t, "http://localhost:11434/v1", cfg.EmbeddingHost)
	assert.Equal(t, "http://localhost:11434/v1", cfg.GenerationHost)
	assert.Equal(t, "embeddinggemma", cfg.EmbeddingModel)
	assert.Equal(t, "qwen2.5:7b", cfg.GenerationModel)
	assert.Zero(t, cfg.InputCostPer1M)
	assert.Zero(t, cfg.OutputCostPer1M)
}

func TestNewConfig(t *testing.T) {
	t.Run("with no options", func(t *testing.T) {
		cfg := NewConfig()

		assert.NotNil(t, cfg)
		// Should have default values
		assert.Equal(t, "http://localhost:11434/v1", cfg.EmbeddingHost)
		assert.Equal(t, ProviderOpenAI, cfg.Provider)
	})

	t.Run("with custom host", func(t *testing.T) {
		cfg := NewConfig(WithHost("http://custom:8080/v1"))

		assert.Equal(t, "http://custom:8080/v1", cfg.EmbeddingHost)
		assert.Equal(t, "http://custom:8080/v1", cfg.GenerationHost)
	})

	t.Run("with separate hosts", func(t *testing.T) {
		cfg := NewConfig(
			WithEmbeddingHost("http://embed:8080/v1"),
			WithGenerationHost("http://generate:9090/v1"),
		)

		assert.Equal(t, "http://embed:8080/v1", cfg.EmbeddingHost)
		assert.Equal(t, "http://generate:9090/v1", cfg.GenerationHost)
	})

	t.Run("with custom models", func(t *testing.T) {
		cfg := NewConfig(
			WithEmbeddingModel("text-embedding-3-small"),
			WithGenerationModel("gpt-4o-mini"),
		)

		assert.Equal(t, "text-embedding-3-small", cfg.EmbeddingModel)
		assert.Equal(t, "gpt-4o-mini", cfg.GenerationModel)
	})

	t.Run("with provider and key", func(t *testing.T) {
		cfg := NewConfig(
			WithProvider(ProviderAnthropic),
			WithAPIKey("sk-test"),
		)

		assert.Equal(t, ProviderAnthropic, cfg.Provider)
		assert.Equal(t, "sk-test", cfg.APIKey)
	})

	t.Run("with pricing", func(t *testing.T) {
		cfg := NewConfig(WithPricing(0.15, 0.6))

		assert.Equal(t, 0.15, cfg.InputCostPer1M)
		assert.Equal(t, 0.6, cfg.OutputCostPer1M)
	})
}

func TestConfigNormalize(t *testing.T) {
	t.Run("adds v1 suffix", func(t *testing.T) {
		cfg := NewConfig(WithHost("http://localhost:11434"))
		cfg.Normalize()

		assert.Equal(t, "http://localhost:11434/v1", cfg.EmbeddingHost)
		assert.Equal(t, "http://localhost:11434/v1", cfg.GenerationHost)
	})

	t.Run("strips trailing slash first", func(t *testing.T) {
		cfg := NewConfig(WithHost("http://localhost:11434/"))
		cfg.Normalize()

		assert.Equal(t, "http://localhost:11434/v1", cfg.EmbeddingHost)
	})

	t.Run("leaves v1 hosts untouched", func(t *testing.T) {
		cfg := NewConfig(WithHost("http://localhost:11434/v1"))
		cfg.Normalize()

		assert.Equal(t, "http://localhost:11434/v1", cfg.EmbeddingHost)
	})

	t.Run("does not touch generation host for hosted providers", func(t *testing.T) {
		cfg := NewConfig(
			WithProvider(ProviderAnthropic),
			WithGenerationHost("https://api.anthropic.com"),
		)
		cfg.Normalize()

		assert.Equal(t, "https://api.anthropic.com", cfg.GenerationHost)
	})
}

func TestConfigValidate(t *testing.T) {
	t.Run("valid default", func(t *testing.T) {
		cfg := DefaultConfig()
		require.NoError(t, cfg.Validate())
	})

	t.Run("missing embedding host", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.EmbeddingHost = ""
		assert.Error(t, cfg.Validate())
	})

	t.Run("missing embedding model", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.EmbeddingModel = ""
		assert.Error(t, cfg.Validate())
	})

	t.Run("missing generation model", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.GenerationModel = ""
		assert.Error(t, cfg.Validate())
	})

	t.Run("openai requires generation host", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.GenerationHost = ""
		assert.Error(t, cfg.Validate())
	})

	t.Run("hosted provider requires api key", func(t *testing.T) {
		cfg := NewConfig(WithProvider(ProviderAnthropic), WithGenerationModel("claude-sonnet-4-5"))
		assert.Error(t, cfg.Validate())

		cfg.APIKey = "sk-test"
		assert.NoError(t, cfg.Validate())
	})

	t.Run("unknown provider", func(t *testing.T) {
		cfg := NewConfig(WithProvider("bedrock"))
		assert.Error(t, cfg.Validate())
	})

	t.Run("negative pricing", func(t *testing.T) {
		cfg := NewConfig(WithPricing(-1, 0))
		assert.Error(t, cfg.Validate())
	})

	t.Run("validate normalizes hosts", func(t *testing.T) {
		cfg := NewConfig(WithHost("http://localhost:11434"))
		require.NoError(t, cfg.Validate())
		assert.Equal(t, "http://localhost:11434/v1", cfg.EmbeddingHost)
	})
}
