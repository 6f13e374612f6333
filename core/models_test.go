package core

import (
	"testing"
)

func TestIDFromContent(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		wantSame bool
	}{
		{
			name:     "same content produces same ID",
			content:  "test content",
			wantSame: true,
		},
		{
			name:     "empty string",
			content:  "",
			wantSame: true,
		},
		{
			name:     "long content",
			content:  "Every person has the right to obtain information from a public authority in accordance with this law",
			wantSame: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id1 := IDFromContent(tt.content)
			id2 := IDFromContent(tt.content)

			if tt.wantSame && id1 != id2 {
				t.Errorf("IDFromContent() produced different IDs for same content: %d vs %d", id1, id2)
			}
		})
	}
}

func TestIDFromContent_Different(t *testing.T) {
	id1 := IDFromContent("content1")
	id2 := IDFromContent("content2")

	if id1 == id2 {
		t.Errorf("IDFromContent() produced same ID for different content")
	}
}

func TestRole_String(t *testing.T) {
	tests := []struct {
		role Role
		want string
	}{
		{RoleUser, "user"},
		{RoleAssistant, "assistant"},
		{RoleSystem, "system"},
		{Role(0), "unknown"},
		{Role(99), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.role.String(); got != tt.want {
			t.Errorf("Role(%d).String() = %q, want %q", tt.role, got, tt.want)
		}
	}
}

func TestQueryInput_Conversational(t *testing.T) {
	plain := &QueryInput{Query: "what is the freedom of information law?"}
	if plain.Conversational() {
		t.Error("query without history reported as conversational")
	}

	followUp := &QueryInput{
		Query: "and what are the exceptions?",
		ConversationHistory: []Message{
			{Role: RoleUser, Content: "what is the freedom of information law?"},
			{Role: RoleAssistant, Content: "It grants every citizen the right to obtain information."},
		},
	}
	if !followUp.Conversational() {
		t.Error("query with history not reported as conversational")
	}
}

func TestPipelineResponse_Clone(t *testing.T) {
	orig := &PipelineResponse{
		Answer: "The law grants access to records held by public authorities.",
		Citations: []Citation{
			{SourceId: "foi-1998", SourceName: "Freedom of Information Law", Score: 0.91},
		},
		RetrievedPassages: []RetrievedPassage{
			{
				Id:         IDFromContent("passage"),
				Content:    "passage",
				Score:      0.91,
				SourceId:   "foi-1998",
				Attributes: map[string]string{"doc_type": "statute"},
			},
		},
		Metrics:   Metrics{TotalMs: 120, ChunksRetrieved: 1},
		Model:     "gpt-4o-mini",
		Provider:  "openai",
		RequestId: "rag-1-abc",
	}

	clone := orig.Clone()
	if clone == orig {
		t.Fatal("Clone() returned the same pointer")
	}

	clone.Answer = "mutated"
	clone.Citations[0].Score = 0
	clone.RetrievedPassages[0].Content = "mutated"
	clone.RetrievedPassages[0].Attributes["doc_type"] = "mutated"
	clone.Metrics.TotalMs = 0

	if orig.Answer != "The law grants access to records held by public authorities." {
		t.Error("mutating clone changed original answer")
	}
	if orig.Citations[0].Score != 0.91 {
		t.Error("mutating clone changed original citations")
	}
	if orig.RetrievedPassages[0].Content != "passage" {
		t.Error("mutating clone changed original passages")
	}
	if orig.RetrievedPassages[0].Attributes["doc_type"] != "statute" {
		t.Error("mutating clone changed original passage attributes")
	}
	if orig.Metrics.TotalMs != 120 {
		t.Error("mutating clone changed original metrics")
	}
}

func TestPipelineResponse_CloneNil(t *testing.T) {
	var r *PipelineResponse
	if r.Clone() != nil {
		t.Error("Clone() of nil response should be nil")
	}
}
