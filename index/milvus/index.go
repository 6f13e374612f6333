// Package milvus provides a Milvus-backed implementation of index.VectorIndex
// for deployments serving larger corpora than the embedded badger index
// comfortably holds.
package milvus

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strconv"
	"strings"

	mclient "github.com/milvus-io/milvus-sdk-go/v2/client"
	"github.com/milvus-io/milvus-sdk-go/v2/entity"

	"github.com/rotemx/RAG-sub001/core"
	"github.com/rotemx/RAG-sub001/index"
)

const (
	vectorField  = "vector"
	defaultTopK  = 10
	searchLevel  = 1
	maxPassageSz = "8192"
)

// Config holds connection and collection settings for a Milvus index.
type Config struct {
	Address    string
	Username   string
	Password   string
	DBName     string
	Collection string

	// Dimensions is the vector width of the collection. Required when
	// the collection does not exist yet.
	Dimensions int
}

// Index implements index.VectorIndex against a Milvus collection.
type Index struct {
	cli        mclient.Client
	collection string
	dimensions int
	logger     *slog.Logger
}

var _ index.VectorIndex = (*Index)(nil)

// Open connects to Milvus and ensures the collection exists and is loaded.
//
// Returns index.VectorIndex interface to enforce abstraction.
func Open(ctx context.Context, config Config) (index.VectorIndex, error) {
	if config.Collection == "" {
		config.Collection = "law_chunks"
	}

	cli, err := mclient.NewClient(ctx, mclient.Config{
		Address:  strings.TrimSpace(config.Address),
		Username: strings.TrimSpace(config.Username),
		Password: config.Password,
		DBName:   strings.TrimSpace(config.DBName),
	})
	if err != nil {
		return nil, fmt.Errorf("milvus: connect: %w", err)
	}

	idx := &Index{
		cli:        cli,
		collection: config.Collection,
		dimensions: config.Dimensions,
		logger:     slog.Default().With("component", "milvus-index"),
	}

	if err := idx.ensureCollection(ctx); err != nil {
		_ = cli.Close()
		return nil, err
	}

	return idx, nil
}

// Close releases the client connection.
func (idx *Index) Close() error {
	return idx.cli.Close()
}

// CollectionExists reports whether the collection is present on the server.
func (idx *Index) CollectionExists(ctx context.Context) (bool, error) {
	return idx.cli.HasCollection(ctx, idx.collection)
}

// Search performs a cosine similarity search over the collection.
// Attribute filters are pushed down as a Milvus boolean expression.
func (idx *Index) Search(ctx context.Context, vector []float32, params index.SearchParams) ([]core.RetrievedPassage, error) {
	if len(vector) == 0 {
		return nil, index.ErrEmptyVector
	}
	if idx.dimensions > 0 && len(vector) != idx.dimensions {
		return nil, fmt.Errorf("%w: index holds %d-dimensional vectors, query has %d",
			index.ErrDimensionMismatch, idx.dimensions, len(vector))
	}

	topK := params.Limit
	if topK <= 0 {
		topK = defaultTopK
	}

	sp, err := entity.NewIndexAUTOINDEXSearchParam(searchLevel)
	if err != nil {
		return nil, err
	}

	results, err := idx.cli.Search(
		ctx,
		idx.collection,
		nil,
		filterExpr(params.Filter),
		[]string{"id", "content", "source_id", "source_name", "section_ref", "attributes"},
		[]entity.Vector{entity.FloatVector(vector)},
		vectorField,
		entity.COSINE,
		topK,
		sp,
	)
	if err != nil {
		idx.logger.Error("search failed", "collection", idx.collection, "err", err)
		return nil, err
	}

	var passages []core.RetrievedPassage
	for _, result := range results {
		if result.Err != nil {
			return nil, result.Err
		}

		getCol := func(name string) entity.Column {
			for _, col := range result.Fields {
				if col.Name() == name {
					return col
				}
			}
			return nil
		}

		contentCol := getCol("content")
		sourceIDCol := getCol("source_id")
		sourceNameCol := getCol("source_name")
		sectionRefCol := getCol("section_ref")
		attributesCol := getCol("attributes")

		for i := 0; i < result.ResultCount; i++ {
			score := result.Scores[i]
			if score < params.ScoreThreshold {
				continue
			}

			id, err := result.IDs.GetAsInt64(i)
			if err != nil {
				return nil, err
			}

			passage := core.RetrievedPassage{
				Id:    core.ID(id),
				Score: score,
			}
			if contentCol != nil {
				passage.Content, _ = contentCol.GetAsString(i)
			}
			if sourceIDCol != nil {
				passage.SourceId, _ = sourceIDCol.GetAsString(i)
			}
			if sourceNameCol != nil {
				passage.SourceName, _ = sourceNameCol.GetAsString(i)
			}
			if sectionRefCol != nil {
				passage.SectionRef, _ = sectionRefCol.GetAsString(i)
			}
			if attributesCol != nil {
				if raw, err := attributesCol.Get(i); err == nil {
					if bytes, ok := raw.([]byte); ok && len(bytes) > 0 {
						var attributes map[string]string
						if json.Unmarshal(bytes, &attributes) == nil {
							passage.Attributes = attributes
						}
					}
				}
			}

			passages = append(passages, passage)
		}
	}

	return passages, nil
}

// Upsert inserts or replaces chunks in the collection.
func (idx *Index) Upsert(ctx context.Context, chunks ...*core.DocChunk) error {
	if len(chunks) == 0 {
		return nil
	}

	ids := make([]int64, 0, len(chunks))
	vectors := make([][]float32, 0, len(chunks))
	contents := make([]string, 0, len(chunks))
	sourceIDs := make([]string, 0, len(chunks))
	sourceNames := make([]string, 0, len(chunks))
	sectionRefs := make([]string, 0, len(chunks))
	attributes := make([][]byte, 0, len(chunks))

	for _, chunk := range chunks {
		if err := core.ValidateChunk(chunk); err != nil {
			return err
		}
		if len(chunk.Vector) == 0 {
			return fmt.Errorf("%w: chunk %d", index.ErrMissingVector, chunk.Id)
		}
		if idx.dimensions > 0 && len(chunk.Vector) != idx.dimensions {
			return fmt.Errorf("%w: collection holds %d-dimensional vectors, chunk %d has %d",
				index.ErrDimensionMismatch, idx.dimensions, chunk.Id, len(chunk.Vector))
		}

		attrs := []byte("{}")
		if len(chunk.Attributes) > 0 {
			encoded, err := json.Marshal(chunk.Attributes)
			if err != nil {
				return fmt.Errorf("%w: %w", index.ErrSerializationFailed, err)
			}
			attrs = encoded
		}

		ids = append(ids, int64(chunk.Id))
		vectors = append(vectors, chunk.Vector)
		contents = append(contents, chunk.Content)
		sourceIDs = append(sourceIDs, chunk.SourceId)
		sourceNames = append(sourceNames, chunk.SourceName)
		sectionRefs = append(sectionRefs, chunk.SectionRef)
		attributes = append(attributes, attrs)
	}

	_, err := idx.cli.Upsert(
		ctx,
		idx.collection,
		"",
		entity.NewColumnInt64("id", ids),
		entity.NewColumnFloatVector(vectorField, len(vectors[0]), vectors),
		entity.NewColumnVarChar("content", contents),
		entity.NewColumnVarChar("source_id", sourceIDs),
		entity.NewColumnVarChar("source_name", sourceNames),
		entity.NewColumnVarChar("section_ref", sectionRefs),
		entity.NewColumnJSONBytes("attributes", attributes),
	)
	if err != nil {
		idx.logger.Error("upsert failed", "collection", idx.collection, "count", len(chunks), "err", err)
	}
	return err
}

// Delete removes chunks by ID. Missing IDs are not an error.
func (idx *Index) Delete(ctx context.Context, ids ...core.ID) error {
	if len(ids) == 0 {
		return nil
	}

	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, strconv.FormatInt(int64(id), 10))
	}
	expr := fmt.Sprintf("id in [%s]", strings.Join(parts, ","))

	return idx.cli.Delete(ctx, idx.collection, "", expr)
}

// Count returns the number of stored chunks.
func (idx *Index) Count(ctx context.Context) (int, error) {
	stats, err := idx.cli.GetCollectionStatistics(ctx, idx.collection)
	if err != nil {
		return 0, err
	}

	rows, err := strconv.Atoi(stats["row_count"])
	if err != nil {
		return 0, fmt.Errorf("milvus: unexpected row_count %q: %w", stats["row_count"], err)
	}
	return rows, nil
}

// filterExpr translates an attribute filter into a Milvus boolean
// expression over the JSON attributes field. Keys with no allowed
// values are ignored, matching the badger backend. Keys are sorted so
// the same filter always produces the same expression.
func filterExpr(filter core.AttributeFilter) string {
	if len(filter) == 0 {
		return ""
	}

	var clauses []string
	for _, key := range slices.Sorted(maps.Keys(filter)) {
		allowed := filter[key]
		if len(allowed) == 0 {
			continue
		}
		quoted := make([]string, 0, len(allowed))
		for _, value := range allowed {
			quoted = append(quoted, strconv.Quote(value))
		}
		clauses = append(clauses, fmt.Sprintf("attributes[%s] in [%s]",
			strconv.Quote(key), strings.Join(quoted, ",")))
	}

	return strings.Join(clauses, " and ")
}
