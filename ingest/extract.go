package ingest

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Source is one document to ingest.
type Source struct {
	// Id is the stable identifier chunks are keyed under, e.g. a file
	// path or a citation string. Required.
	Id string

	// Name is the human-readable name surfaced in citations.
	// Defaults to Id.
	Name string

	// Path is a file to read. Ignored when Content is set.
	Path string

	// Content is the raw document text. Takes precedence over Path.
	Content []byte

	// Attributes are stamped on every chunk of this source and become
	// filterable at query time, e.g. doc_type or jurisdiction.
	Attributes map[string]string
}

// FileSource builds a Source from a path, using the path as the id and
// the base name as the display name.
func FileSource(path string, attributes map[string]string) Source {
	return Source{
		Id:         path,
		Name:       filepath.Base(path),
		Path:       path,
		Attributes: attributes,
	}
}

// TextExtractor turns a raw source into plain text.
type TextExtractor interface {
	// Extract returns the text content of the source.
	Extract(source *Source) (string, error)
}

// PlainTextExtractor reads UTF-8 text documents. Only .txt and .md
// files are accepted when extracting from a path; inline content is
// taken as-is.
type PlainTextExtractor struct{}

var _ TextExtractor = (*PlainTextExtractor)(nil)

// Extract returns the document text, dropping a leading byte order mark.
func (e *PlainTextExtractor) Extract(source *Source) (string, error) {
	if source.Content != nil {
		return strings.TrimPrefix(string(source.Content), "﻿"), nil
	}

	switch strings.ToLower(filepath.Ext(source.Path)) {
	case ".txt", ".md", ".markdown":
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, source.Path)
	}

	data, err := os.ReadFile(source.Path)
	if err != nil {
		return "", err
	}
	return strings.TrimPrefix(string(data), "﻿"), nil
}
