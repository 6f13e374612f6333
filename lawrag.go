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


// Package lawrag assembles the retrieval-augmented generation stack for
// legal document corpora: embedding and generation providers, a vector
// index backend and the query pipeline, wired from one configuration.
package lawrag

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/rotemx/RAG-sub001/ai"
	"github.com/rotemx/RAG-sub001/ai/anthropic"
	"github.com/rotemx/RAG-sub001/ai/googleai"
	"github.com/rotemx/RAG-sub001/ai/openai"
	"github.com/rotemx/RAG-sub001/config"
	"github.com/rotemx/RAG-sub001/index"
	"github.com/rotemx/RAG-sub001/index/badger"
	"github.com/rotemx/RAG-sub001/index/milvus"
	"github.com/rotemx/RAG-sub001/ingest"
	"github.com/rotemx/RAG-sub001/rag"
	"github.com/rotemx/RAG-sub001/reindex"
	"github.com/rotemx/RAG-sub001/telemetry"
)

// ErrChunkStoreRequired is returned by maintenance factories when the
// configured index backend cannot enumerate its contents.
var ErrChunkStoreRequired = errors.New("index backend does not support chunk enumeration")

// App holds the assembled components behind one configuration.
type App struct {
	cfg       *config.Config
	index     index.VectorIndex
	embedder  ai.Embedder
	generator ai.Generator
	pipeline  *rag.Pipeline
	metrics   *telemetry.Metrics
	logger    *slog.Logger
}

// Option configures an App.
type Option func(*appOptions)

type appOptions struct {
	logger   *slog.Logger
	registry prometheus.Registerer
}

// WithLogger sets the logger components derive theirs from.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *appOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithTelemetry registers Prometheus metrics on reg and attaches the
// pipeline monitor and cache observer feeding them.
func WithTelemetry(reg prometheus.Registerer) Option {
	return func(o *appOptions) {
		o.registry = reg
	}
}

// Open assembles the providers, index backend and query pipeline from
// cfg. It does not contact any service; call Initialize before querying.
func Open(ctx context.Context, cfg *config.Config, opts ...Option) (*App, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	options := &appOptions{logger: slog.Default()}
	for _, opt := range opts {
		opt(options)
	}

	aiCfg := cfg.AIConfig()
	if err := aiCfg.Validate(); err != nil {
		return nil, err
	}

	embedder, err := openai.NewEmbedder(aiCfg)
	if err != nil {
		return nil, err
	}
	if cfg.Embedding.CacheEntries > 0 {
		embedder = ai.NewCachedEmbedder(embedder, cfg.Embedding.CacheEntries)
	}

	generator, err := newGenerator(ctx, aiCfg)
	if err != nil {
		return nil, err
	}

	idx, err := openIndex(ctx, cfg)
	if err != nil {
		return nil, err
	}

	ragOpts := []rag.Option{
		rag.WithConfig(cfg.RAGConfig()),
		rag.WithLogger(options.logger.With("component", "pipeline")),
	}

	var metrics *telemetry.Metrics
	if options.registry != nil {
		metrics = telemetry.NewMetrics(options.registry)
		monitor := telemetry.NewPipelineMonitor(metrics, aiCfg.Provider, aiCfg.GenerationModel)
		ragOpts = append(ragOpts,
			rag.WithMonitor(monitor),
			rag.WithCacheObserver(metrics.CacheObserver()),
		)
	}

	pipeline, err := rag.New(embedder, idx, generator, ragOpts...)
	if err != nil {
		idx.Close()
		return nil, err
	}

	return &App{
		cfg:       cfg,
		index:     idx,
		embedder:  embedder,
		generator: generator,
		pipeline:  pipeline,
		metrics:   metrics,
		logger:    options.logger,
	}, nil
}

// Initialize verifies the embedding service and index are ready.
func (a *App) Initialize(ctx context.Context) error {
	return a.pipeline.Initialize(ctx)
}

// Close releases the pipeline and the index backend.
func (a *App) Close() error {
	return a.pipeline.Close()
}

// Pipeline returns the query pipeline.
func (a *App) Pipeline() *rag.Pipeline {
	return a.pipeline
}

// Index returns the vector index backend.
func (a *App) Index() index.VectorIndex {
	return a.index
}

// Store returns the index as a ChunkStore when the backend supports
// enumeration. The embedded badger backend does; remote backends do not.
func (a *App) Store() (index.ChunkStore, bool) {
	store, ok := a.index.(index.ChunkStore)
	return store, ok
}

// Metrics returns the Prometheus metrics, or nil when telemetry is off.
func (a *App) Metrics() *telemetry.Metrics {
	return a.metrics
}

// NewIngestPipeline creates an ingestion pipeline over the app's index
// and embedder, preconfigured from the file settings.
func (a *App) NewIngestPipeline(opts ...ingest.Option) (*ingest.Pipeline, error) {
	base := []ingest.Option{
		ingest.WithEmbedModel(a.cfg.Embedding.Model),
		ingest.WithLogger(a.logger.With("component", "ingest")),
	}
	if a.cfg.Ingest.PoolSize > 0 {
		base = append(base, ingest.WithPoolSize(a.cfg.Ingest.PoolSize))
	}
	if a.cfg.Ingest.EmbedBatchSize > 0 {
		base = append(base, ingest.WithEmbedBatchSize(a.cfg.Ingest.EmbedBatchSize))
	}
	return ingest.NewPipeline(a.index, a.embedder, append(base, opts...)...)
}

// NewReindexer creates a reindexer over the app's store and embedder.
// rcfg nil uses reindex defaults; the embedding model from the file
// settings is recorded unless rcfg names another.
func (a *App) NewReindexer(rcfg *reindex.Config, progress io.Writer) (*reindex.Reindexer, error) {
	store, ok := a.Store()
	if !ok {
		return nil, ErrChunkStoreRequired
	}

	if rcfg == nil {
		rcfg = reindex.DefaultConfig()
	}
	if rcfg.EmbedModel == "" {
		rcfg.EmbedModel = a.cfg.Embedding.Model
	}
	return reindex.NewReindexer(store, a.embedder, rcfg, progress), nil
}

func newGenerator(ctx context.Context, cfg *ai.Config) (ai.Generator, error) {
	switch cfg.Provider {
	case ai.ProviderAnthropic:
		return anthropic.NewGenerator(cfg)
	case ai.ProviderGoogleAI:
		return googleai.NewGenerator(ctx, cfg)
	default:
		return openai.NewGenerator(cfg)
	}
}

func openIndex(ctx context.Context, cfg *config.Config) (index.VectorIndex, error) {
	switch cfg.Index.Backend {
	case config.BackendMilvus:
		return milvus.Open(ctx, milvus.Config{
			Address:    cfg.Index.Milvus.Address,
			Username:   cfg.Index.Milvus.Username,
			Password:   cfg.Index.Milvus.Password,
			DBName:     cfg.Index.Milvus.DBName,
			Collection: cfg.Index.Milvus.Collection,
			Dimensions: cfg.Index.Milvus.Dimensions,
		})
	default:
		return badger.Open(cfg.Index.Path)
	}
}
