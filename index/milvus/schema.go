package milvus

import (
	"context"
	"fmt"

	"github.com/milvus-io/milvus-sdk-go/v2/entity"
)

// ensureCollection creates the collection and its vector index on first
// use, then loads it for searching.
func (idx *Index) ensureCollection(ctx context.Context) error {
	exists, err := idx.cli.HasCollection(ctx, idx.collection)
	if err != nil {
		return fmt.Errorf("milvus: check collection: %w", err)
	}

	if !exists {
		if idx.dimensions <= 0 {
			return fmt.Errorf("milvus: collection %q does not exist and no dimensions were configured", idx.collection)
		}

		schema := &entity.Schema{
			CollectionName: idx.collection,
			Description:    "lawrag document chunks",
			Fields: []*entity.Field{
				{
					Name:       "id",
					DataType:   entity.FieldTypeInt64,
					PrimaryKey: true,
				},
				{
					Name:       vectorField,
					DataType:   entity.FieldTypeFloatVector,
					TypeParams: map[string]string{entity.TypeParamDim: fmt.Sprintf("%d", idx.dimensions)},
				},
				{
					Name:       "content",
					DataType:   entity.FieldTypeVarChar,
					TypeParams: map[string]string{"max_length": maxPassageSz},
				},
				{
					Name:       "source_id",
					DataType:   entity.FieldTypeVarChar,
					TypeParams: map[string]string{"max_length": "256"},
				},
				{
					Name:       "source_name",
					DataType:   entity.FieldTypeVarChar,
					TypeParams: map[string]string{"max_length": "512"},
				},
				{
					Name:       "section_ref",
					DataType:   entity.FieldTypeVarChar,
					TypeParams: map[string]string{"max_length": "256"},
				},
				{
					Name:     "attributes",
					DataType: entity.FieldTypeJSON,
				},
			},
		}

		if err := idx.cli.CreateCollection(ctx, schema, entity.DefaultShardNumber); err != nil {
			return fmt.Errorf("milvus: create collection: %w", err)
		}

		vectorIndex, err := entity.NewIndexAUTOINDEX(entity.COSINE)
		if err != nil {
			return err
		}
		if err := idx.cli.CreateIndex(ctx, idx.collection, vectorField, vectorIndex, false); err != nil {
			return fmt.Errorf("milvus: create index: %w", err)
		}

		idx.logger.Info("created collection", "collection", idx.collection, "dimensions", idx.dimensions)
	}

	if err := idx.cli.LoadCollection(ctx, idx.collection, false); err != nil {
		return fmt.Errorf("milvus: load collection: %w", err)
	}

	return nil
}
