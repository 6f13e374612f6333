// Package ingest turns source documents into embedded, indexed chunks.
//
// The Pipeline type runs the ingestion workflow for each source:
//   - Extracting plain text (TextExtractor)
//   - Splitting it into sections (SectionSplitter)
//   - Embedding section texts in batches
//   - Upserting the resulting chunks into the vector index
//
// Sources are processed concurrently on a worker pool. A failing source
// is recorded in the run's Result and does not abort the others.
package ingest
