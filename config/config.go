// Copyright 2025 the lawrag authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package config loads the on-disk YAML configuration and maps it onto
// the option sets the other packages consume. Values support ${VAR} and
// ${VAR:default} environment expansion.
package config

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/rotemx/RAG-sub001/ai"
	"github.com/rotemx/RAG-sub001/latency"
	"github.com/rotemx/RAG-sub001/rag"
)

// Index backends.
const (
	BackendBadger = "badger"
	BackendMilvus = "milvus"
)

// Config is the on-disk application configuration. Fields left out of
// the YAML file keep the values from DefaultConfig.
type Config struct {
	// Provider selects the generation backend: "openai", "anthropic"
	// or "googleai".
	Provider string `yaml:"provider"`

	// APIKey authenticates against hosted providers. Usually supplied
	// through env expansion, e.g. "${OPENAI_API_KEY}".
	APIKey string `yaml:"api_key"`

	Embedding  EmbeddingConfig  `yaml:"embedding"`
	Generation GenerationConfig `yaml:"generation"`
	Index      IndexConfig      `yaml:"index"`
	Pipeline   PipelineConfig   `yaml:"pipeline"`
	Cache      CacheConfig      `yaml:"cache"`
	Latency    LatencyConfig    `yaml:"latency"`
	Ingest     IngestConfig     `yaml:"ingest"`
}

// EmbeddingConfig selects the embedding service and model.
type EmbeddingConfig struct {
	Host  string `yaml:"host"`
	Model string `yaml:"model"`

	// CacheEntries bounds the in-process query embedding cache.
	// Zero disables it.
	CacheEntries int `yaml:"cache_entries"`
}

// GenerationConfig selects the completion service and model.
type GenerationConfig struct {
	Host            string  `yaml:"host"`
	Model           string  `yaml:"model"`
	InputCostPer1M  float64 `yaml:"input_cost_per_1m"`
	OutputCostPer1M float64 `yaml:"output_cost_per_1m"`
}

// IndexConfig selects and configures the vector index backend.
type IndexConfig struct {
	// Backend is "badger" (embedded, default) or "milvus" (remote).
	Backend string       `yaml:"backend"`
	Path    string       `yaml:"path"` // badger data directory
	Milvus  MilvusConfig `yaml:"milvus"`
}

// MilvusConfig holds connection settings for a remote Milvus index.
type MilvusConfig struct {
	Address    string `yaml:"address"`
	Username   string `yaml:"username"`
	Password   string `yaml:"password"`
	DBName     string `yaml:"db_name"`
	Collection string `yaml:"collection"`
	Dimensions int    `yaml:"dimensions"`
}

// PipelineConfig holds query pipeline defaults.
type PipelineConfig struct {
	TopK             int     `yaml:"top_k"`
	ScoreThreshold   float32 `yaml:"score_threshold"`
	MaxContextTokens int     `yaml:"max_context_tokens"`
	SystemTemplate   string  `yaml:"system_template"`
}

// CacheConfig holds response cache settings.
type CacheConfig struct {
	Enabled              bool     `yaml:"enabled"`
	TTL                  Duration `yaml:"ttl"`
	MaxSize              int      `yaml:"max_size"`
	RetrievalParamsInKey bool     `yaml:"retrieval_params_in_key"`
}

// LatencyConfig holds per-request latency reporting settings.
// Zero thresholds disable the corresponding check.
type LatencyConfig struct {
	LogSummaries     bool    `yaml:"log_summaries"`
	EmbeddingWarnMs  float64 `yaml:"embedding_warn_ms"`
	RetrievalWarnMs  float64 `yaml:"retrieval_warn_ms"`
	GenerationWarnMs float64 `yaml:"generation_warn_ms"`
	TotalWarnMs      float64 `yaml:"total_warn_ms"`
	TotalErrorMs     float64 `yaml:"total_error_ms"`
}

// IngestConfig holds ingestion pipeline settings.
type IngestConfig struct {
	PoolSize       int `yaml:"pool_size"`
	EmbedBatchSize int `yaml:"embed_batch_size"`
}

// Duration is a time.Duration that unmarshals from YAML scalars in Go
// duration syntax, e.g. "5m" or "1h30m".
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := time.ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", value.Value, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// DefaultConfig returns the stock configuration: a local
// OpenAI-compatible service, an embedded badger index and response
// caching on.
func DefaultConfig() *Config {
	host := "http://localhost:11434"
	return &Config{
		Provider: ai.ProviderOpenAI,
		Embedding: EmbeddingConfig{
			Host:         host,
			Model:        "embeddinggemma",
			CacheEntries: 512,
		},
		Generation: GenerationConfig{
			Host:  host,
			Model: "qwen2.5:7b",
		},
		Index: IndexConfig{
			Backend: BackendBadger,
			Path:    "./lawrag_db",
		},
		Pipeline: PipelineConfig{
			TopK:             rag.DefaultTopK,
			MaxContextTokens: rag.DefaultMaxContextTokens,
		},
		Cache: CacheConfig{
			Enabled:              true,
			TTL:                  Duration(rag.DefaultCacheTTL),
			MaxSize:              rag.DefaultCacheMaxSize,
			RetrievalParamsInKey: true,
		},
	}
}

// Validate checks the configuration for settings that cannot work.
func (c *Config) Validate() error {
	switch c.Provider {
	case ai.ProviderOpenAI, ai.ProviderAnthropic, ai.ProviderGoogleAI:
	default:
		return fmt.Errorf("config: provider must be one of openai, anthropic, googleai, got %q", c.Provider)
	}

	switch c.Index.Backend {
	case BackendBadger:
		if c.Index.Path == "" {
			return fmt.Errorf("config: index.path is required for the badger backend")
		}
	case BackendMilvus:
		if c.Index.Milvus.Address == "" {
			return fmt.Errorf("config: index.milvus.address is required for the milvus backend")
		}
	default:
		return fmt.Errorf("config: index.backend must be badger or milvus, got %q", c.Index.Backend)
	}

	return c.AIConfig().Validate()
}

// AIConfig maps the file settings onto the ai package configuration.
func (c *Config) AIConfig() *ai.Config {
	return ai.NewConfig(
		ai.WithProvider(c.Provider),
		ai.WithAPIKey(c.APIKey),
		ai.WithEmbeddingHost(c.Embedding.Host),
		ai.WithEmbeddingModel(c.Embedding.Model),
		ai.WithGenerationHost(c.Generation.Host),
		ai.WithGenerationModel(c.Generation.Model),
		ai.WithPricing(c.Generation.InputCostPer1M, c.Generation.OutputCostPer1M),
	)
}

// RAGConfig maps the file settings onto the pipeline configuration.
func (c *Config) RAGConfig() *rag.Config {
	return &rag.Config{
		DefaultTopK:               c.Pipeline.TopK,
		DefaultScoreThreshold:     c.Pipeline.ScoreThreshold,
		MaxContextTokens:          c.Pipeline.MaxContextTokens,
		SystemTemplate:            c.Pipeline.SystemTemplate,
		EnableCache:               c.Cache.Enabled,
		CacheTTL:                  time.Duration(c.Cache.TTL),
		CacheMaxSize:              c.Cache.MaxSize,
		RetrievalParamsInCacheKey: c.Cache.RetrievalParamsInKey,
		EnableLatencyLogging:      c.Latency.LogSummaries,
		Thresholds: latency.Thresholds{
			EmbeddingWarnMs:  c.Latency.EmbeddingWarnMs,
			RetrievalWarnMs:  c.Latency.RetrievalWarnMs,
			GenerationWarnMs: c.Latency.GenerationWarnMs,
			TotalWarnMs:      c.Latency.TotalWarnMs,
			TotalErrorMs:     c.Latency.TotalErrorMs,
		},
	}
}
