package badger

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"slices"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"
	"github.com/rotemx/RAG-sub001/core"
	"github.com/rotemx/RAG-sub001/index"
)

// Index is an embedded vector index backed by BadgerDB. Search is a
// brute-force cosine scan over all stored chunks, which is adequate for
// corpora that fit on one machine.
type Index struct {
	db     *badger.DB
	logger *slog.Logger
}

var _ index.ChunkStore = (*Index)(nil)

// badgerLoggerAdapter adapts slog.Logger to badger.Logger interface.
type badgerLoggerAdapter struct {
	logger *slog.Logger
}

var _ badger.Logger = (*badgerLoggerAdapter)(nil)

func (bl *badgerLoggerAdapter) Errorf(msg string, items ...any) {
	bl.logger.Error(fmt.Sprintf(msg, items...))
}

func (bl *badgerLoggerAdapter) Warningf(msg string, items ...any) {
	bl.logger.Warn(fmt.Sprintf(msg, items...))
}

func (bl *badgerLoggerAdapter) Infof(msg string, items ...any) {
	bl.logger.Info(fmt.Sprintf(msg, items...))
}

func (bl *badgerLoggerAdapter) Debugf(msg string, items ...any) {
	bl.logger.Debug(fmt.Sprintf(msg, items...))
}

// Open opens an embedded index at the specified path.
// Creates the directory if it doesn't exist.
func Open(filePath string) (index.ChunkStore, error) {
	return openIndex(filePath, false)
}

func openIndex(filePath string, inMemory bool) (*Index, error) {
	var opts badger.Options

	if inMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		// Ensure directory exists
		info, err := os.Stat(filePath)
		if err != nil {
			if os.IsNotExist(err) {
				if err := os.MkdirAll(filePath, 0755); err != nil {
					return nil, err
				}
				info, err = os.Stat(filePath)
				if err != nil {
					return nil, err
				}
			} else {
				return nil, err
			}
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("%s is not a directory", filePath)
		}
		opts = badger.DefaultOptions(filePath)
	}

	opts.Logger = &badgerLoggerAdapter{logger: slog.Default()}
	opts.Compression = options.None

	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}

	return &Index{
		db:     db,
		logger: slog.Default().With("component", "index"),
	}, nil
}

// Close closes the BadgerDB database.
func (x *Index) Close() error {
	return x.db.Close()
}

// WithTx executes a function within a BadgerDB transaction.
// If isWrite is true, creates a read-write transaction.
// The transaction is automatically discarded if fn returns an error.
func (x *Index) WithTx(fn func(tx *badger.Txn) error, isWrite bool) error {
	tx := x.db.NewTransaction(isWrite)
	defer tx.Discard()
	return fn(tx)
}

// CollectionExists reports whether the index is open and queryable.
// An embedded index always has its single collection once opened.
func (x *Index) CollectionExists(ctx context.Context) (bool, error) {
	return !x.db.IsClosed(), nil
}

// Search scans all stored chunks, scoring each against the query vector.
// Scores assume unit-length stored vectors, so the query vector is
// normalized before the scan.
func (x *Index) Search(ctx context.Context, vector []float32, params index.SearchParams) ([]core.RetrievedPassage, error) {
	if len(vector) == 0 {
		return nil, index.ErrEmptyVector
	}

	meta, err := x.Meta(ctx)
	if err != nil {
		return nil, err
	}
	if meta != nil && meta.Dimensions > 0 && meta.Dimensions != len(vector) {
		return nil, fmt.Errorf("%w: query has %d dimensions, index has %d",
			index.ErrDimensionMismatch, len(vector), meta.Dimensions)
	}

	query := index.NormalizeVector(vector)

	var results []core.RetrievedPassage
	err = x.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(chunkPrefix)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			item := iter.Item()

			// Skip the source index keys sharing the prefix
			if bytes.HasPrefix(item.Key(), []byte(chunkSourcePrefix)) {
				continue
			}

			var chunk *core.DocChunk
			err := item.Value(func(val []byte) error {
				var err error
				chunk, err = index.UnmarshalChunk(val)
				return err
			})
			if err != nil {
				return err
			}
			if chunk == nil || len(chunk.Vector) == 0 {
				continue
			}

			if !matchesFilter(chunk.Attributes, params.Filter) {
				continue
			}

			score := dotProduct(query, chunk.Vector)
			if score < params.ScoreThreshold {
				continue
			}

			results = append(results, core.RetrievedPassage{
				Id:         chunk.Id,
				Content:    chunk.Content,
				Score:      score,
				SourceId:   chunk.SourceId,
				SourceName: chunk.SourceName,
				SectionRef: chunk.SectionRef,
				Attributes: chunk.Attributes,
			})
		}

		return nil
	}, false)

	if err != nil {
		return nil, err
	}

	// Sort by score descending
	slices.SortFunc(results, func(a, b core.RetrievedPassage) int {
		if a.Score > b.Score {
			return -1
		}
		if a.Score < b.Score {
			return 1
		}
		return 0
	})

	if params.Limit > 0 && len(results) > params.Limit {
		results = results[:params.Limit]
	}

	return results, nil
}

// Upsert inserts or replaces chunks by ID, maintaining the source index.
func (x *Index) Upsert(ctx context.Context, chunks ...*core.DocChunk) error {
	if len(chunks) == 0 {
		return nil
	}

	for _, chunk := range chunks {
		if err := core.ValidateChunk(chunk); err != nil {
			return err
		}
		if len(chunk.Vector) == 0 {
			return fmt.Errorf("%w: chunk %d", index.ErrMissingVector, chunk.Id)
		}
	}

	return x.WithTx(func(tx *badger.Txn) error {
		for _, chunk := range chunks {
			if err := tx.Set(makeChunkKey(chunk.Id), index.MarshalChunk(chunk)); err != nil {
				return err
			}
			if err := tx.Set(makeChunkSourceKey(chunk.SourceId, chunk.Id), index.MarshalID(chunk.Id)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// Delete removes chunks by their IDs. Missing IDs are not an error.
func (x *Index) Delete(ctx context.Context, ids ...core.ID) error {
	if len(ids) == 0 {
		return nil
	}

	return x.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			key := makeChunkKey(id)
			item, err := tx.Get(key)
			if err != nil {
				if err == badger.ErrKeyNotFound {
					continue
				}
				return err
			}

			var chunk *core.DocChunk
			if err := item.Value(func(val []byte) error {
				var err error
				chunk, err = index.UnmarshalChunk(val)
				return err
			}); err != nil {
				return err
			}

			if err := tx.Delete(key); err != nil {
				return err
			}
			if chunk != nil {
				if err := tx.Delete(makeChunkSourceKey(chunk.SourceId, chunk.Id)); err != nil {
					return err
				}
			}
		}
		return tx.Commit()
	}, true)
}

// Count returns the number of stored chunks.
func (x *Index) Count(ctx context.Context) (int, error) {
	count := 0
	err := x.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(chunkPrefix)
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			if bytes.HasPrefix(iter.Item().Key(), []byte(chunkSourcePrefix)) {
				continue
			}
			count++
		}
		return nil
	}, false)

	return count, err
}

// AllChunks returns every stored chunk. Order is unspecified.
func (x *Index) AllChunks(ctx context.Context) ([]*core.DocChunk, error) {
	var chunks []*core.DocChunk
	err := x.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(chunkPrefix)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			item := iter.Item()
			if bytes.HasPrefix(item.Key(), []byte(chunkSourcePrefix)) {
				continue
			}

			var chunk *core.DocChunk
			err := item.Value(func(val []byte) error {
				var err error
				chunk, err = index.UnmarshalChunk(val)
				return err
			})
			if err != nil {
				return err
			}
			if chunk != nil {
				chunks = append(chunks, chunk)
			}
		}
		return nil
	}, false)

	if err != nil {
		return nil, err
	}
	return chunks, nil
}

// DeleteBySource removes all chunks ingested from the given source.
func (x *Index) DeleteBySource(ctx context.Context, sourceId string) (int, error) {
	var ids []core.ID
	err := x.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makePartialChunkSourceKey(sourceId)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			// Read the ID from the index
			var id core.ID
			if err := iter.Item().Value(func(val []byte) error {
				var err error
				id, err = index.UnmarshalID(val)
				return err
			}); err != nil {
				return err
			}
			ids = append(ids, id)
		}
		return nil
	}, false)
	if err != nil {
		return 0, err
	}

	if err := x.Delete(ctx, ids...); err != nil {
		return 0, err
	}
	return len(ids), nil
}

// Meta returns the index metadata, or nil if none has been recorded.
func (x *Index) Meta(ctx context.Context) (*core.IndexMeta, error) {
	var meta *core.IndexMeta
	err := x.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get([]byte(indexMetaKey))
		if err != nil {
			if err == badger.ErrKeyNotFound {
				return nil
			}
			return err
		}

		return item.Value(func(val []byte) error {
			var unmarshalErr error
			meta, unmarshalErr = index.UnmarshalMeta(val)
			return unmarshalErr
		})
	}, false)

	return meta, err
}

// SetMeta records which embedding model produced the stored vectors.
func (x *Index) SetMeta(ctx context.Context, meta *core.IndexMeta) error {
	return x.WithTx(func(tx *badger.Txn) error {
		if err := tx.Set([]byte(indexMetaKey), index.MarshalMeta(meta)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// matchesFilter reports whether chunk attributes satisfy the filter.
// Every filter key with a non-empty value list must match; keys with
// empty value lists are ignored, same as absent keys.
func matchesFilter(attrs map[string]string, filter core.AttributeFilter) bool {
	if len(filter) == 0 {
		return true
	}

	for key, allowed := range filter {
		if len(allowed) == 0 {
			continue
		}
		value, ok := attrs[key]
		if !ok {
			return false
		}
		if !slices.Contains(allowed, value) {
			return false
		}
	}
	return true
}

// dotProduct calculates the dot product of two vectors.
func dotProduct(a, b []float32) float32 {
	var sum float32
	minLen := len(a)
	if len(b) < minLen {
		minLen = len(b)
	}
	for i := 0; i < minLen; i++ {
		sum += a[i] * b[i]
	}
	return sum
}
