package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/rotemx/RAG-sub001/ai"
	"github.com/rotemx/RAG-sub001/core"
	"github.com/rotemx/RAG-sub001/index"
)

const defaultEmbedBatchSize = 32

// Pipeline ingests documents into the vector index: extract text, split
// into sections, embed in batches and upsert. Sources are processed
// concurrently on a worker pool.
type Pipeline struct {
	index      index.VectorIndex
	embedder   ai.Embedder
	extractor  TextExtractor
	splitter   SectionSplitter
	pool       *ants.Pool
	batchSize  int
	embedModel string
	logger     *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithPoolSize sets the worker pool size for concurrent sources.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}
		if p.pool != nil {
			p.pool.Release()
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		p.pool = pool
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// WithExtractor replaces the default plain-text extractor.
func WithExtractor(extractor TextExtractor) Option {
	return func(p *Pipeline) error {
		if extractor != nil {
			p.extractor = extractor
		}
		return nil
	}
}

// WithSplitter replaces the default paragraph splitter.
func WithSplitter(splitter SectionSplitter) Option {
	return func(p *Pipeline) error {
		if splitter != nil {
			p.splitter = splitter
		}
		return nil
	}
}

// WithEmbedBatchSize sets how many section texts go into one embedding
// call. Default is 32.
func WithEmbedBatchSize(size int) Option {
	return func(p *Pipeline) error {
		if size > 0 {
			p.batchSize = size
		}
		return nil
	}
}

// WithEmbedModel records the embedding model name in the index metadata
// after a successful run, so a later model change can be detected.
func WithEmbedModel(model string) Option {
	return func(p *Pipeline) error {
		p.embedModel = model
		return nil
	}
}

// NewPipeline creates an ingestion pipeline over the given index and
// embedder.
func NewPipeline(idx index.VectorIndex, embedder ai.Embedder, opts ...Option) (*Pipeline, error) {
	if idx == nil {
		return nil, ErrIndexRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		index:     idx,
		embedder:  embedder,
		extractor: &PlainTextExtractor{},
		splitter:  &ParagraphSplitter{},
		pool:      pool,
		batchSize: defaultEmbedBatchSize,
		logger:    slog.Default().With("component", "ingest"),
	}

	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			p.Release()
			return nil, optErr
		}
	}

	return p, nil
}

// IngestOptions holds optional parameters for one ingestion run.
type IngestOptions struct {
	// Replace removes a source's existing chunks before upserting, so
	// sections deleted from the document disappear from the index.
	// Requires a backend that can enumerate by source.
	Replace bool

	// Attributes are merged into every chunk's attributes, overriding
	// per-source values on key collisions.
	Attributes map[string]string

	// Timestamp overrides the insertion time. Zero means now.
	Timestamp time.Time
}

// Result summarizes one ingestion run.
type Result struct {
	SourcesProcessed int
	ChunksUpserted   int
	Failures         []SourceError
}

// SourceError records one source that failed to ingest.
type SourceError struct {
	SourceId string
	Err      error
}

func (e SourceError) Error() string {
	return fmt.Sprintf("%s: %v", e.SourceId, e.Err)
}

func (e SourceError) Unwrap() error {
	return e.Err
}

// Ingest processes the sources and reports what happened. A failing
// source is recorded in the result and does not abort the others.
func (p *Pipeline) Ingest(ctx context.Context, sources []Source, opts *IngestOptions) (*Result, error) {
	if opts == nil {
		opts = &IngestOptions{}
	}

	result := &Result{}
	if len(sources) == 0 {
		return result, nil
	}

	timestamp := opts.Timestamp
	if timestamp.IsZero() {
		timestamp = time.Now().UTC()
	}

	var (
		wg         sync.WaitGroup
		mu         sync.Mutex
		dimensions int
	)
	for i := range sources {
		source := &sources[i]
		wg.Add(1)
		submitErr := p.pool.Submit(func() {
			defer wg.Done()
			upserted, dims, err := p.ingestSource(ctx, source, opts, timestamp)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				result.Failures = append(result.Failures, SourceError{SourceId: source.Id, Err: err})
				p.logger.Error("source ingestion failed", "sourceId", source.Id, "err", err)
				return
			}
			result.SourcesProcessed++
			result.ChunksUpserted += upserted
			if dims > 0 {
				dimensions = dims
			}
		})
		if submitErr != nil {
			wg.Done()
			mu.Lock()
			result.Failures = append(result.Failures, SourceError{SourceId: source.Id, Err: submitErr})
			mu.Unlock()
		}
	}
	wg.Wait()

	if result.ChunksUpserted > 0 {
		p.recordMeta(ctx, dimensions)
	}
	return result, ctx.Err()
}

// ingestSource runs the extract, split, embed and upsert stages for one
// source. Returns the chunk count and the embedding dimensionality.
func (p *Pipeline) ingestSource(ctx context.Context, source *Source, opts *IngestOptions, timestamp time.Time) (int, int, error) {
	if source.Id == "" {
		return 0, 0, ErrSourceIdRequired
	}
	if err := ctx.Err(); err != nil {
		return 0, 0, err
	}

	text, err := p.extractor.Extract(source)
	if err != nil {
		return 0, 0, fmt.Errorf("extract: %w", err)
	}

	sections := p.splitter.Split(text)
	if len(sections) == 0 {
		return 0, 0, ErrNoSections
	}

	chunks := buildChunks(source, sections, opts.Attributes, timestamp)
	if err := p.embedChunks(ctx, chunks); err != nil {
		return 0, 0, err
	}

	if opts.Replace {
		if store, ok := p.index.(index.ChunkStore); ok {
			removed, err := store.DeleteBySource(ctx, source.Id)
			if err != nil {
				return 0, 0, fmt.Errorf("replace: %w", err)
			}
			if removed > 0 {
				p.logger.Debug("replaced source chunks", "sourceId", source.Id, "removed", removed)
			}
		} else {
			p.logger.Warn("replace unsupported by index backend", "sourceId", source.Id)
		}
	}

	if err := p.index.Upsert(ctx, chunks...); err != nil {
		return 0, 0, fmt.Errorf("upsert: %w", err)
	}

	p.logger.Info("source ingested", "sourceId", source.Id, "chunks", len(chunks))
	return len(chunks), len(chunks[0].Vector), nil
}

// buildChunks keys each chunk by source, section ref and text so that
// re-ingesting an unchanged source is idempotent.
func buildChunks(source *Source, sections []Section, extra map[string]string, timestamp time.Time) []*core.DocChunk {
	name := source.Name
	if name == "" {
		name = source.Id
	}

	chunks := make([]*core.DocChunk, len(sections))
	for i, section := range sections {
		chunks[i] = &core.DocChunk{
			Id:         core.IDFromContent(source.Id + "\x00" + section.Ref + "\x00" + section.Text),
			Content:    section.Text,
			SourceId:   source.Id,
			SourceName: name,
			SectionRef: section.Ref,
			Attributes: mergeAttributes(source.Attributes, extra),
			InsertedAt: timestamp,
			UpdatedAt:  timestamp,
		}
	}
	return chunks
}

func mergeAttributes(base, extra map[string]string) map[string]string {
	if len(base) == 0 && len(extra) == 0 {
		return nil
	}
	merged := make(map[string]string, len(base)+len(extra))
	for k, v := range base {
		merged[k] = v
	}
	for k, v := range extra {
		merged[k] = v
	}
	return merged
}

// embedChunks fills chunk vectors in batches. Vectors are normalized so
// the index's dot product behaves as cosine similarity.
func (p *Pipeline) embedChunks(ctx context.Context, chunks []*core.DocChunk) error {
	for start := 0; start < len(chunks); start += p.batchSize {
		end := min(start+p.batchSize, len(chunks))
		batch := chunks[start:end]

		texts := make([]string, len(batch))
		for i, chunk := range batch {
			texts[i] = chunk.Content
		}

		vectors, err := p.embedder.EmbedTexts(ctx, texts)
		if err != nil {
			return fmt.Errorf("embed: %w", err)
		}
		if len(vectors) != len(batch) {
			return fmt.Errorf("embedding result mismatch: expected %d, received %d", len(batch), len(vectors))
		}

		for i, vector := range vectors {
			batch[i].Vector = index.NormalizeVector(vector)
		}
	}
	return nil
}

// recordMeta stamps the store with the embedding model so a later model
// change can be detected and reindexed.
func (p *Pipeline) recordMeta(ctx context.Context, dimensions int) {
	store, ok := p.index.(index.ChunkStore)
	if !ok || p.embedModel == "" || dimensions == 0 {
		return
	}

	meta := &core.IndexMeta{
		EmbedModel: p.embedModel,
		Dimensions: dimensions,
		UpdatedAt:  time.Now().UTC(),
	}
	if err := store.SetMeta(ctx, meta); err != nil {
		p.logger.Error("error recording index metadata", "err", err)
	}
}

// Release frees the worker pool. The pipeline must not be used after.
func (p *Pipeline) Release() {
	if p.pool != nil {
		p.pool.Release()
	}
}
