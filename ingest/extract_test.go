package ingest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractInlineContent(t *testing.T) {
	extractor := &PlainTextExtractor{}

	text, err := extractor.Extract(&Source{Id: "inline", Content: []byte("﻿Some text.")})
	require.NoError(t, err)
	assert.Equal(t, "Some text.", text)
}

func TestExtractFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "statute.txt")
	require.NoError(t, os.WriteFile(path, []byte("Section 1.\n\nSection 2."), 0o644))

	extractor := &PlainTextExtractor{}
	text, err := extractor.Extract(&Source{Id: path, Path: path})
	require.NoError(t, err)
	assert.Equal(t, "Section 1.\n\nSection 2.", text)
}

func TestExtractUnsupportedFormat(t *testing.T) {
	extractor := &PlainTextExtractor{}

	_, err := extractor.Extract(&Source{Id: "doc", Path: "filing.pdf"})
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestExtractMissingFile(t *testing.T) {
	extractor := &PlainTextExtractor{}

	_, err := extractor.Extract(&Source{Id: "doc", Path: filepath.Join(t.TempDir(), "absent.txt")})
	assert.Error(t, err)
}

func TestFileSource(t *testing.T) {
	source := FileSource("/corpus/foil/article-6.md", map[string]string{"doc_type": "statute"})

	assert.Equal(t, "/corpus/foil/article-6.md", source.Id)
	assert.Equal(t, "article-6.md", source.Name)
	assert.Equal(t, "/corpus/foil/article-6.md", source.Path)
	assert.Equal(t, "statute", source.Attributes["doc_type"])
}
