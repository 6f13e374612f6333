package ingest

import (
	"fmt"
	"regexp"
	"strings"
)

// Section is one contiguous piece of a document, the unit that becomes
// an indexed chunk.
type Section struct {
	Ref  string
	Text string
}

// SectionSplitter divides document text into sections.
type SectionSplitter interface {
	Split(text string) []Section
}

// ParagraphSplitter splits on blank lines. Markdown headings are not
// emitted as sections themselves; they label the paragraphs that
// follow, so refs read like "Definitions ¶ 2". Without headings refs
// are plain "¶ n".
type ParagraphSplitter struct{}

var _ SectionSplitter = (*ParagraphSplitter)(nil)

var (
	blankLinePattern = regexp.MustCompile(`\n[ \t]*\n`)
	headingPattern   = regexp.MustCompile(`^#{1,6}\s+(.+)$`)
)

const maxHeadingRunes = 80

// Split divides the text into paragraph sections with stable refs.
func (s *ParagraphSplitter) Split(text string) []Section {
	text = strings.ReplaceAll(text, "\r\n", "\n")

	var sections []Section
	heading := ""
	ordinal := 0

	for _, block := range blankLinePattern.Split(text, -1) {
		block = strings.TrimSpace(block)
		if block == "" {
			continue
		}
		if m := headingPattern.FindStringSubmatch(block); m != nil {
			heading = clampHeading(strings.TrimSpace(m[1]))
			ordinal = 0
			continue
		}
		ordinal++
		sections = append(sections, Section{Ref: sectionRef(heading, ordinal), Text: block})
	}
	return sections
}

func sectionRef(heading string, ordinal int) string {
	if heading == "" {
		return fmt.Sprintf("¶ %d", ordinal)
	}
	return fmt.Sprintf("%s ¶ %d", heading, ordinal)
}

func clampHeading(heading string) string {
	runes := []rune(heading)
	if len(runes) <= maxHeadingRunes {
		return heading
	}
	return string(runes[:maxHeadingRunes])
}
