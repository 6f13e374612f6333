package rag

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/rotemx/RAG-sub001/ai"
	"github.com/rotemx/RAG-sub001/cache"
	"github.com/rotemx/RAG-sub001/core"
	"github.com/rotemx/RAG-sub001/index"
	"github.com/rotemx/RAG-sub001/latency"
	"github.com/rotemx/RAG-sub001/prompt"
)

// Pipeline orchestrates retrieval-augmented answering: embed the query,
// search the index, build a grounded prompt, generate, and cache. All
// methods are safe for concurrent use once Initialize has completed.
type Pipeline struct {
	embedder  ai.Embedder
	index     index.VectorIndex
	generator ai.Generator
	builder   *prompt.Builder
	cache     *cache.ResponseCache

	config        *Config
	cacheObserver cache.Observer
	monitor       Monitor
	logger        *slog.Logger
	initialized   atomic.Bool
}

// New creates a pipeline over the given collaborators. Nil collaborators
// are configuration errors.
func New(embedder ai.Embedder, idx index.VectorIndex, generator ai.Generator, opts ...Option) (*Pipeline, error) {
	if embedder == nil {
		return nil, &Error{Code: CodeInvalidConfig, Message: "pipeline construction failed", Cause: ErrEmbedderRequired}
	}
	if idx == nil {
		return nil, &Error{Code: CodeInvalidConfig, Message: "pipeline construction failed", Cause: ErrIndexRequired}
	}
	if generator == nil {
		return nil, &Error{Code: CodeInvalidConfig, Message: "pipeline construction failed", Cause: ErrGeneratorRequired}
	}

	p := &Pipeline{
		embedder:  embedder,
		index:     idx,
		generator: generator,
		config:    DefaultConfig(),
		monitor:   &noopMonitor{},
		logger:    slog.Default().With("component", "pipeline"),
	}

	for _, opt := range opts {
		if err := opt(p); err != nil {
			return nil, err
		}
	}
	p.config.normalize()

	builderOpts := []prompt.Option{prompt.WithMaxContextTokens(p.config.MaxContextTokens)}
	if p.config.SystemTemplate != "" {
		builderOpts = append(builderOpts, prompt.WithSystemTemplate(p.config.SystemTemplate))
	}
	p.builder = prompt.NewBuilder(builderOpts...)

	if p.config.EnableCache {
		cacheOpts := []cache.Option{
			cache.WithMaxSize(p.config.CacheMaxSize),
			cache.WithTTL(p.config.CacheTTL),
			cache.WithRetrievalParamsInKey(p.config.RetrievalParamsInCacheKey),
		}
		if p.cacheObserver != nil {
			cacheOpts = append(cacheOpts, cache.WithObserver(p.cacheObserver))
		}
		p.cache = cache.NewResponseCache(cacheOpts...)
	}

	return p, nil
}

// Initialize readies the collaborators: the embedder connects to its
// service and the index confirms its collection exists. Queries are
// rejected until this completes.
func (p *Pipeline) Initialize(ctx context.Context) error {
	if err := p.embedder.Initialize(ctx); err != nil {
		return wrapError(CodeEmbeddingError, "embedder initialization failed", err, nil)
	}

	exists, err := p.index.CollectionExists(ctx)
	if err != nil {
		return wrapError(CodeRetrievalError, "index availability check failed", err, nil)
	}
	if !exists {
		return &Error{Code: CodeInvalidConfig, Message: "index collection does not exist"}
	}

	p.initialized.Store(true)
	p.logger.Info("pipeline initialized",
		"provider", p.generator.Provider(),
		"model", p.generator.Model(),
		"cache", p.cache != nil)
	return nil
}

// Query runs the full pipeline for one input and returns the completed
// answer. Every error carries a taxonomy code.
func (p *Pipeline) Query(ctx context.Context, input *core.QueryInput) (*core.PipelineResponse, error) {
	requestId := newRequestID()
	tracker := latency.NewTracker(requestId)
	p.monitor.Start(requestId, queryText(input))

	if !p.initialized.Load() {
		return nil, p.fail(requestId, wrapError(CodeNotInitialized, "query rejected",
			ErrNotInitialized, queryMetadata(requestId, queryText(input))))
	}
	if err := core.ValidateQueryInput(input); err != nil {
		return nil, p.fail(requestId, wrapError(CodeInvalidConfig, "invalid query input",
			err, queryMetadata(requestId, queryText(input))))
	}

	effective, genOpts := p.applyDefaults(input)
	cacheable := p.cache != nil && !effective.Conversational()
	if cacheable {
		tracker.StartPhase(latency.PhaseCacheLookup)
		cached, ok := p.cache.Get(effective)
		lookupMs := tracker.EndPhase(latency.PhaseCacheLookup)
		if ok {
			return p.finishCached(requestId, tracker, lookupMs, cached), nil
		}
	}

	response, err := p.execute(ctx, requestId, tracker, effective, genOpts)
	if err != nil {
		return nil, p.fail(requestId, err)
	}

	if cacheable {
		p.cache.Set(effective, response)
	}
	p.monitor.Finish(requestId, response)
	p.observeSummary(tracker.Summary())
	return response, nil
}

// execute runs the embed, retrieve, prompt and generate phases.
func (p *Pipeline) execute(ctx context.Context, requestId string, tracker *latency.Tracker, input *core.QueryInput, genOpts core.GenerationOptions) (*core.PipelineResponse, error) {
	metadata := queryMetadata(requestId, input.Query)

	if err := ctx.Err(); err != nil {
		return nil, wrapError(CodeEmbeddingError, "query embedding canceled", err, metadata)
	}
	tracker.StartPhase(latency.PhaseEmbedding)
	embedRes, err := p.embedder.EmbedQuery(ctx, input.Query)
	if err != nil {
		tracker.EndPhase(latency.PhaseEmbedding)
		return nil, wrapError(CodeEmbeddingError, "query embedding failed", err, metadata)
	}
	if embedRes.Cached {
		tracker.MarkCached(latency.PhaseEmbedding)
	} else {
		tracker.EndPhase(latency.PhaseEmbedding)
	}
	p.monitor.AfterEmbedding(requestId, embedRes.Cached)

	if err := ctx.Err(); err != nil {
		return nil, wrapError(CodeRetrievalError, "retrieval canceled", err, metadata)
	}
	tracker.StartPhase(latency.PhaseRetrieval)
	passages, err := p.index.Search(ctx, embedRes.Vector, index.SearchParams{
		Limit:          input.TopK,
		ScoreThreshold: input.ScoreThreshold,
		Filter:         input.Filter,
	})
	tracker.EndPhase(latency.PhaseRetrieval)
	if err != nil {
		return nil, wrapError(CodeRetrievalError, "passage retrieval failed", err, metadata)
	}
	if len(passages) == 0 {
		return nil, wrapError(CodeNoResults, "query matched no passages", ErrNoResults, metadata)
	}
	p.monitor.AfterRetrieval(requestId, passages)

	tracker.StartPhase(latency.PhasePromptBuild)
	built := p.builder.Build(input.Query, passages, input.ConversationHistory, p.config.MaxContextTokens)
	tracker.EndPhase(latency.PhasePromptBuild)
	p.monitor.AfterPromptBuild(requestId, built)

	if err := ctx.Err(); err != nil {
		return nil, wrapError(CodeGenerationError, "generation canceled", err, metadata)
	}
	tracker.StartPhase(latency.PhaseGeneration)
	completion, err := p.generator.Complete(ctx, promptMessages(built), genOpts)
	tracker.EndPhase(latency.PhaseGeneration)
	if err != nil {
		return nil, wrapError(CodeGenerationError, "answer generation failed", err, metadata)
	}

	tracker.Complete()
	return &core.PipelineResponse{
		Answer:            completion.Content,
		Citations:         core.CitationsFromPassages(passages),
		RetrievedPassages: passages,
		Metrics:           p.buildMetrics(tracker.Summary(), len(passages), embedRes.Cached, completion.Usage),
		Model:             completion.Model,
		Provider:          p.generator.Provider(),
		RequestId:         requestId,
	}, nil
}

// finishCached serves a response straight from the cache. Its metrics
// reflect only the lookup; the embedding phase reports cached.
func (p *Pipeline) finishCached(requestId string, tracker *latency.Tracker, lookupMs float64, cached *core.PipelineResponse) *core.PipelineResponse {
	tracker.Complete()
	summary := tracker.Summary()

	cached.RequestId = requestId
	cached.Metrics = core.Metrics{
		TotalMs:         summary.TotalMs,
		CacheLookupMs:   lookupMs,
		ChunksRetrieved: len(cached.RetrievedPassages),
		EmbeddingCached: true,
	}

	p.monitor.CacheHit(requestId)
	p.monitor.Finish(requestId, cached)
	p.observeSummary(summary)
	return cached
}

// CacheStats returns response cache counters, zeros when caching is off.
func (p *Pipeline) CacheStats() cache.Stats {
	if p.cache == nil {
		return cache.Stats{}
	}
	return p.cache.Stats()
}

// Close releases the vector index. The pipeline must not be used after.
func (p *Pipeline) Close() error {
	p.initialized.Store(false)
	return p.index.Close()
}

// applyDefaults fills unset retrieval knobs from the config on a copy,
// leaving the caller's input untouched.
func (p *Pipeline) applyDefaults(input *core.QueryInput) (*core.QueryInput, core.GenerationOptions) {
	effective := *input
	if effective.TopK <= 0 {
		effective.TopK = p.config.DefaultTopK
	}
	if effective.ScoreThreshold == 0 {
		effective.ScoreThreshold = p.config.DefaultScoreThreshold
	}

	genOpts := core.GenerationOptions{}
	if effective.CompletionOptions != nil {
		genOpts = *effective.CompletionOptions
	}
	return &effective, genOpts
}

func (p *Pipeline) fail(requestId string, err error) error {
	p.monitor.Failed(requestId, err)
	p.logger.Error("query failed", "requestId", requestId, "code", CodeOf(err), "err", err)
	return err
}

func (p *Pipeline) buildMetrics(summary latency.Summary, chunks int, embeddingCached bool, usage core.Usage) core.Metrics {
	return core.Metrics{
		TotalMs:         summary.TotalMs,
		EmbeddingMs:     summary.Phases[latency.PhaseEmbedding],
		RetrievalMs:     summary.Phases[latency.PhaseRetrieval],
		PromptMs:        summary.Phases[latency.PhasePromptBuild],
		GenerationMs:    summary.Phases[latency.PhaseGeneration],
		CacheLookupMs:   summary.Phases[latency.PhaseCacheLookup],
		ChunksRetrieved: chunks,
		EmbeddingCached: embeddingCached,
		InputTokens:     usage.InputTokens,
		OutputTokens:    usage.OutputTokens,
		EstimatedCost:   p.generator.CalculateCost(usage),
	}
}

// observeSummary logs the latency summary and flags threshold
// violations. It runs after the response is already decided so
// instrumentation can never mask a pipeline outcome.
func (p *Pipeline) observeSummary(summary latency.Summary) {
	if p.config.EnableLatencyLogging {
		p.logger.Info("request latency",
			"requestId", summary.RequestId,
			"totalMs", summary.TotalMs,
			"embeddingMs", summary.Phases[latency.PhaseEmbedding],
			"retrievalMs", summary.Phases[latency.PhaseRetrieval],
			"promptMs", summary.Phases[latency.PhasePromptBuild],
			"generationMs", summary.Phases[latency.PhaseGeneration],
			"cacheLookupMs", summary.Phases[latency.PhaseCacheLookup])
	}

	report := latency.CheckThresholds(summary, p.config.Thresholds)
	for _, violation := range report.Violations {
		attrs := []any{
			"requestId", summary.RequestId,
			"phase", violation.Phase,
			"durationMs", violation.DurationMs,
			"thresholdMs", violation.ThresholdMs,
		}
		if violation.Level == latency.LevelError {
			p.logger.Error("latency threshold exceeded", attrs...)
		} else {
			p.logger.Warn("latency threshold exceeded", attrs...)
		}
	}
}

// newRequestID builds ids like rag-1748779200000-a1b2c3d4.
func newRequestID() string {
	return fmt.Sprintf("rag-%d-%s", time.Now().UnixMilli(), uuid.NewString()[:8])
}

func promptMessages(built *core.BuiltPrompt) []core.Message {
	return []core.Message{
		{Role: core.RoleSystem, Content: built.SystemMessage},
		{Role: core.RoleUser, Content: built.UserMessage},
	}
}

func queryText(input *core.QueryInput) string {
	if input == nil {
		return ""
	}
	return input.Query
}
