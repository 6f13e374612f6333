package core

import (
	"testing"
)

func TestCitationsFromPassages(t *testing.T) {
	passages := []RetrievedPassage{
		{Id: 1, Content: "a", Score: 0.9, SourceId: "foi-1998", SourceName: "Freedom of Information Law", SectionRef: "§ 1"},
		{Id: 2, Content: "b", Score: 0.8, SourceId: "privacy-1981", SourceName: "Privacy Protection Law", SectionRef: "§ 2"},
		{Id: 3, Content: "c", Score: 0.7, SourceId: "foi-1998", SourceName: "Freedom of Information Law", SectionRef: "§ 9"},
	}

	citations := CitationsFromPassages(passages)

	if len(citations) != 2 {
		t.Fatalf("expected 2 citations after dedup, got %d", len(citations))
	}
	if len(citations) > len(passages) {
		t.Fatalf("citations (%d) exceed passages (%d)", len(citations), len(passages))
	}

	// First appearance order is preserved.
	if citations[0].SourceId != "foi-1998" || citations[1].SourceId != "privacy-1981" {
		t.Errorf("unexpected citation order: %v", citations)
	}

	// The highest-scoring passage wins per source.
	if citations[0].Score != 0.9 || citations[0].SectionRef != "§ 1" {
		t.Errorf("expected highest-scoring foi-1998 passage, got %+v", citations[0])
	}
}

func TestCitationsFromPassages_LaterHigherScore(t *testing.T) {
	// Callers normally pass score-ordered passages, but dedup must not
	// depend on it.
	passages := []RetrievedPassage{
		{Id: 1, Score: 0.5, SourceId: "foi-1998", SectionRef: "§ 1"},
		{Id: 2, Score: 0.9, SourceId: "foi-1998", SectionRef: "§ 9"},
	}

	citations := CitationsFromPassages(passages)

	if len(citations) != 1 {
		t.Fatalf("expected 1 citation, got %d", len(citations))
	}
	if citations[0].Score != 0.9 || citations[0].SectionRef != "§ 9" {
		t.Errorf("expected the later, higher-scoring passage to win, got %+v", citations[0])
	}
}

func TestCitationsFromPassages_Empty(t *testing.T) {
	if got := CitationsFromPassages(nil); got != nil {
		t.Errorf("expected nil citations for no passages, got %v", got)
	}
}
