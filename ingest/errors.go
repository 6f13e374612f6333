package ingest

import "errors"

var (
	// ErrIndexRequired is returned when a vector index is not provided.
	ErrIndexRequired = errors.New("vector index required")

	// ErrEmbedderRequired is returned when an embedder is not provided.
	ErrEmbedderRequired = errors.New("embedder required")

	// ErrSourceIdRequired is returned for a source with an empty id.
	ErrSourceIdRequired = errors.New("source id required")

	// ErrUnsupportedFormat is returned for documents the extractor cannot read.
	ErrUnsupportedFormat = errors.New("unsupported document format")

	// ErrNoSections is returned when a document splits into nothing indexable.
	ErrNoSections = errors.New("no indexable sections")
)
