package milvus

import (
	"testing"

	"github.com/rotemx/RAG-sub001/core"
)

func TestFilterExpr(t *testing.T) {
	tests := []struct {
		name   string
		filter core.AttributeFilter
		want   string
	}{
		{
			name:   "nil filter",
			filter: nil,
			want:   "",
		},
		{
			name:   "single value",
			filter: core.AttributeFilter{"doc_type": {"statute"}},
			want:   `attributes["doc_type"] in ["statute"]`,
		},
		{
			name:   "multiple values",
			filter: core.AttributeFilter{"doc_type": {"statute", "regulation"}},
			want:   `attributes["doc_type"] in ["statute","regulation"]`,
		},
		{
			name: "multiple keys sorted",
			filter: core.AttributeFilter{
				"jurisdiction": {"federal"},
				"doc_type":     {"statute"},
			},
			want: `attributes["doc_type"] in ["statute"] and attributes["jurisdiction"] in ["federal"]`,
		},
		{
			name: "empty value list ignored",
			filter: core.AttributeFilter{
				"doc_type":     {},
				"jurisdiction": {"state"},
			},
			want: `attributes["jurisdiction"] in ["state"]`,
		},
		{
			name:   "values are quoted",
			filter: core.AttributeFilter{"title": {`the "short" act`}},
			want:   `attributes["title"] in ["the \"short\" act"]`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := filterExpr(tt.filter); got != tt.want {
				t.Errorf("filterExpr() = %q, want %q", got, tt.want)
			}
		})
	}
}
