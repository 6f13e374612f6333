// Package reindex re-embeds every chunk stored in the index, typically
// after switching to a new embedding model.
//
// This package supports batch processing of stored chunks, progress
// tracking, retry logic with exponential backoff, and vector
// normalization to ensure compatibility with cosine similarity search.
// After a successful run the index metadata records the model that
// produced the vectors.
package reindex
