package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rotemx/RAG-sub001/core"
)

func TestNormalizeQuery(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  string
	}{
		{"already normal", "what is fair use", "what is fair use"},
		{"mixed case", "What IS Fair Use", "what is fair use"},
		{"surrounding whitespace", "  what is fair use\n", "what is fair use"},
		{"internal whitespace", "what   is\tfair  use", "what is fair use"},
		{"empty", "", ""},
		{"only whitespace", " \t\n ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeQuery(tt.query))
		})
	}
}

func TestFingerprintNormalizesQuery(t *testing.T) {
	a := Fingerprint(&core.QueryInput{Query: "  What IS the  rule? "}, false)
	b := Fingerprint(&core.QueryInput{Query: "what is the rule?"}, false)
	assert.Equal(t, a, b)

	c := Fingerprint(&core.QueryInput{Query: "what is the other rule?"}, false)
	assert.NotEqual(t, a, c)
}

func TestFingerprintFilterOrderInvariance(t *testing.T) {
	a := Fingerprint(&core.QueryInput{
		Query: "notice requirements",
		TopK:  5,
		Filter: core.AttributeFilter{
			"doc_type":     {"statute", "regulation"},
			"jurisdiction": {"federal"},
		},
	}, true)
	b := Fingerprint(&core.QueryInput{
		Query: "notice requirements",
		TopK:  5,
		Filter: core.AttributeFilter{
			"jurisdiction": {"federal"},
			"doc_type":     {"regulation", "statute"},
		},
	}, true)

	assert.Equal(t, a, b)
}

func TestFingerprintRetrievalParams(t *testing.T) {
	base := &core.QueryInput{Query: "notice requirements", TopK: 5}
	other := &core.QueryInput{Query: "notice requirements", TopK: 10}

	assert.NotEqual(t, Fingerprint(base, true), Fingerprint(other, true),
		"different TopK should key separately when params are included")
	assert.Equal(t, Fingerprint(base, false), Fingerprint(other, false),
		"params should be ignored when not included")

	filtered := &core.QueryInput{
		Query:  "notice requirements",
		TopK:   5,
		Filter: core.AttributeFilter{"doc_type": {"statute"}},
	}
	assert.NotEqual(t, Fingerprint(base, true), Fingerprint(filtered, true))
}

func TestFingerprintIgnoresEmptyFilterValues(t *testing.T) {
	bare := &core.QueryInput{Query: "q", TopK: 5}
	emptyValues := &core.QueryInput{
		Query:  "q",
		TopK:   5,
		Filter: core.AttributeFilter{"doc_type": {}},
	}

	assert.Equal(t, Fingerprint(bare, true), Fingerprint(emptyValues, true))
}

func TestFingerprintNilInput(t *testing.T) {
	assert.NotPanics(t, func() {
		Fingerprint(&core.QueryInput{}, true)
	})
}
