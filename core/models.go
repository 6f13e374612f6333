package core

//go:generate go run ../cmd/musgen

import (
	"encoding/binary"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for stored document chunks.
// It is generated using content-based hashing so that re-ingesting
// identical text produces identical IDs.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// Role identifies the author of a conversation message.
type Role int

const (
	// RoleUser represents the human asking questions.
	RoleUser Role = iota + 1
	// RoleAssistant represents the model's side of the conversation.
	RoleAssistant
	// RoleSystem represents system instructions.
	RoleSystem
)

// String returns the lowercase wire name of the role.
func (r Role) String() string {
	switch r {
	case RoleUser:
		return "user"
	case RoleAssistant:
		return "assistant"
	case RoleSystem:
		return "system"
	default:
		return "unknown"
	}
}

// Message is a single turn in a conversation. Prior turns accompany a
// query as conversation history; the same type carries prompts to the
// generation backend.
type Message struct {
	Role    Role
	Content string
}

// AttributeFilter restricts retrieval to chunks whose attributes match.
// Each key maps to the list of acceptable values for that attribute:
// a chunk matches when, for every key, its value is in the list.
type AttributeFilter map[string][]string

// GenerationOptions tune a single completion call.
type GenerationOptions struct {
	Temperature float64
	MaxTokens   int
}

// QueryInput describes one pipeline request. It is treated as immutable
// once issued. A non-empty ConversationHistory makes the answer
// context-dependent, which disables response caching for the request.
type QueryInput struct {
	Query               string
	TopK                int     // 0 means use the pipeline default
	ScoreThreshold      float32 // 0 means no minimum score
	Filter              AttributeFilter
	ConversationHistory []Message
	CompletionOptions   *GenerationOptions
}

// Conversational reports whether the input carries prior turns.
func (q *QueryInput) Conversational() bool {
	return len(q.ConversationHistory) > 0
}

// DocChunk is the stored unit of the corpus: one section of a source
// document together with its embedding vector and attributes.
type DocChunk struct {
	Id         ID
	Content    string
	SourceId   string
	SourceName string
	SectionRef string            // e.g. "§ 9(a)" or a heading path
	Attributes map[string]string // filterable attributes (e.g. "doc_type", "year")
	Vector     []float32         // embedding, populated during ingestion
	InsertedAt time.Time
	UpdatedAt  time.Time
}

// RetrievedPassage is a scored chunk returned by the vector index,
// ordered by descending score within a result set. It is read-only
// once produced and owned by the request that retrieved it.
type RetrievedPassage struct {
	Id         ID
	Content    string
	Score      float32
	SourceId   string
	SourceName string
	SectionRef string
	Attributes map[string]string
}

// Citation is a source-attributed reference derived from the passages
// behind an answer. Passages are deduplicated by source, keeping the
// highest-scoring passage per source.
type Citation struct {
	SourceId   string
	SourceName string
	SectionRef string
	Score      float32
}

// BuiltPrompt is a rendered system+user message pair, derived from a
// query and retrieved passages. Never mutated after construction.
type BuiltPrompt struct {
	SystemMessage    string
	UserMessage      string
	PassagesIncluded int
	EstimatedTokens  int
	Truncated        bool
}

// Usage reports token consumption of one generation call.
type Usage struct {
	InputTokens  int
	OutputTokens int
}

// IndexMeta records which embedding model produced the vectors in a
// local index. Queries embedded with a different model are meaningless
// against those vectors, so the index rejects mismatched dimensions.
type IndexMeta struct {
	EmbedModel string
	Dimensions int
	UpdatedAt  time.Time
}

// Metrics captures per-request timing and accounting. Durations are in
// milliseconds; a served-from-cache response reports only CacheLookupMs.
type Metrics struct {
	TotalMs         float64
	EmbeddingMs     float64
	RetrievalMs     float64
	PromptMs        float64
	GenerationMs    float64
	CacheLookupMs   float64
	ChunksRetrieved int
	EmbeddingCached bool
	InputTokens     int
	OutputTokens    int
	EstimatedCost   float64
}

// PipelineResponse is the completed answer to one query.
type PipelineResponse struct {
	Answer            string
	Citations         []Citation
	RetrievedPassages []RetrievedPassage
	Metrics           Metrics
	Model             string
	Provider          string
	RequestId         string
}

// Clone returns a deep copy of the response. The response cache hands
// out clones so callers can never mutate cached state through a held
// reference.
func (r *PipelineResponse) Clone() *PipelineResponse {
	if r == nil {
		return nil
	}
	out := *r
	if r.Citations != nil {
		out.Citations = make([]Citation, len(r.Citations))
		copy(out.Citations, r.Citations)
	}
	if r.RetrievedPassages != nil {
		out.RetrievedPassages = make([]RetrievedPassage, len(r.RetrievedPassages))
		for i, p := range r.RetrievedPassages {
			out.RetrievedPassages[i] = p
			if p.Attributes != nil {
				attrs := make(map[string]string, len(p.Attributes))
				for k, v := range p.Attributes {
					attrs[k] = v
				}
				out.RetrievedPassages[i].Attributes = attrs
			}
		}
	}
	return &out
}
