package ingest

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitParagraphs(t *testing.T) {
	splitter := &ParagraphSplitter{}

	sections := splitter.Split("First paragraph.\n\nSecond paragraph\nspanning two lines.\n\nThird.")

	require.Len(t, sections, 3)
	assert.Equal(t, "¶ 1", sections[0].Ref)
	assert.Equal(t, "First paragraph.", sections[0].Text)
	assert.Equal(t, "¶ 2", sections[1].Ref)
	assert.Equal(t, "Second paragraph\nspanning two lines.", sections[1].Text)
	assert.Equal(t, "¶ 3", sections[2].Ref)
}

func TestSplitHeadings(t *testing.T) {
	splitter := &ParagraphSplitter{}
	text := strings.Join([]string{
		"Preamble text.",
		"# Definitions",
		"Agency means any state or municipal department.",
		"Record means any information kept by an agency.",
		"## Scope",
		"This article applies to all agency records.",
	}, "\n\n")

	sections := splitter.Split(text)

	require.Len(t, sections, 4)
	assert.Equal(t, "¶ 1", sections[0].Ref)
	assert.Equal(t, "Definitions ¶ 1", sections[1].Ref)
	assert.Equal(t, "Definitions ¶ 2", sections[2].Ref)
	assert.Equal(t, "Scope ¶ 1", sections[3].Ref)

	// Headings label sections but are not sections themselves.
	for _, section := range sections {
		assert.NotContains(t, section.Text, "#")
	}
}

func TestSplitBlankLinesWithWhitespace(t *testing.T) {
	splitter := &ParagraphSplitter{}

	sections := splitter.Split("First.\n \t \nSecond.")

	require.Len(t, sections, 2)
	assert.Equal(t, "First.", sections[0].Text)
	assert.Equal(t, "Second.", sections[1].Text)
}

func TestSplitCRLF(t *testing.T) {
	splitter := &ParagraphSplitter{}

	sections := splitter.Split("First.\r\n\r\nSecond.")

	require.Len(t, sections, 2)
	assert.Equal(t, "Second.", sections[1].Text)
}

func TestSplitEmpty(t *testing.T) {
	splitter := &ParagraphSplitter{}

	assert.Empty(t, splitter.Split(""))
	assert.Empty(t, splitter.Split("\n\n  \n\n"))
	assert.Empty(t, splitter.Split("# Only a heading"))
}

func TestSplitClampsLongHeading(t *testing.T) {
	splitter := &ParagraphSplitter{}
	heading := strings.Repeat("x", 200)

	sections := splitter.Split("# " + heading + "\n\nBody.")

	require.Len(t, sections, 1)
	assert.Equal(t, strings.Repeat("x", 80)+" ¶ 1", sections[0].Ref)
}

func TestSplitDeterministic(t *testing.T) {
	splitter := &ParagraphSplitter{}
	text := "# Part One\n\nAlpha.\n\nBeta.\n\n# Part Two\n\nGamma."

	first := splitter.Split(text)
	second := splitter.Split(text)
	assert.Equal(t, first, second)
}
