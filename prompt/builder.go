// Package prompt renders retrieved passages, conversation history and
// the user's question into a system and user message pair under a token
// budget.
package prompt

import (
	"strings"

	"github.com/rotemx/RAG-sub001/core"
)

// DefaultMaxContextTokens bounds passage content when no budget is given.
const DefaultMaxContextTokens = 3000

// Option customizes a Builder.
type Option func(*Builder)

// WithMaxContextTokens sets the default passage budget used when Build
// is called without one.
func WithMaxContextTokens(tokens int) Option {
	return func(b *Builder) {
		b.maxContextTokens = tokens
	}
}

// WithSystemTemplate replaces the default system message.
func WithSystemTemplate(template string) Option {
	return func(b *Builder) {
		b.systemTemplate = template
	}
}

// Builder deterministically constructs prompts. The same inputs always
// produce the same BuiltPrompt.
type Builder struct {
	maxContextTokens int
	systemTemplate   string
}

// NewBuilder creates a prompt builder.
func NewBuilder(opts ...Option) *Builder {
	b := &Builder{
		maxContextTokens: DefaultMaxContextTokens,
		systemTemplate:   defaultSystemTemplate,
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.maxContextTokens <= 0 {
		b.maxContextTokens = DefaultMaxContextTokens
	}
	return b
}

// Build renders the prompt. Passages are included greedily in the order
// given until the next one would exceed maxContextTokens; the first
// passage is always included regardless of budget so the prompt never
// goes out empty. Truncated is set only when a later passage was
// excluded. History is rendered as a transcript before the question and
// does not count against the budget. A maxContextTokens <= 0 falls back
// to the builder default.
func (b *Builder) Build(query string, passages []core.RetrievedPassage, history []core.Message, maxContextTokens int) *core.BuiltPrompt {
	budget := maxContextTokens
	if budget <= 0 {
		budget = b.maxContextTokens
	}

	var blocks []string
	used := 0
	truncated := false
	for _, passage := range passages {
		cost := EstimateTokens(passage.Content)
		if len(blocks) > 0 && used+cost > budget {
			truncated = true
			break
		}
		blocks = append(blocks, renderPassage(len(blocks)+1, passage))
		used += cost
	}

	userMessage := renderUserMessage(query, blocks, history)

	return &core.BuiltPrompt{
		SystemMessage:    b.systemTemplate,
		UserMessage:      userMessage,
		PassagesIncluded: len(blocks),
		EstimatedTokens:  EstimateTokens(b.systemTemplate) + EstimateTokens(userMessage),
		Truncated:        truncated,
	}
}

// EstimateTokens approximates the token count of text with a 4
// characters per token heuristic, rounding up. It is deliberately
// tokenizer-free so prompt sizing is reproducible without a model load.
func EstimateTokens(text string) int {
	return (len(text) + 3) / 4
}

func renderUserMessage(query string, blocks []string, history []core.Message) string {
	var sb strings.Builder

	if len(blocks) > 0 {
		sb.WriteString("Reference passages:\n\n")
		sb.WriteString(strings.Join(blocks, "\n\n"))
		sb.WriteString("\n\n")
	}
	if len(history) > 0 {
		sb.WriteString(renderHistory(history))
		sb.WriteString("\n")
	}
	sb.WriteString("Question: ")
	sb.WriteString(query)

	return sb.String()
}
