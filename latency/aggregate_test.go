package latency

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAggregateEmpty(t *testing.T) {
	report := Aggregate(nil)

	assert.Equal(t, 0, report.Count)
	assert.Empty(t, report.Phases)
	assert.Equal(t, 0.0, report.TotalAvgMs)
}

func TestAggregate(t *testing.T) {
	summaries := []Summary{
		{
			Phases:  map[Phase]float64{PhaseEmbedding: 10, PhaseGeneration: 100},
			TotalMs: 120,
		},
		{
			Phases:       map[Phase]float64{PhaseEmbedding: 0, PhaseGeneration: 200},
			CachedPhases: map[Phase]bool{PhaseEmbedding: true},
			TotalMs:      210,
		},
		{
			Phases:  map[Phase]float64{PhaseGeneration: 300},
			TotalMs: 330,
		},
	}

	report := Aggregate(summaries)

	assert.Equal(t, 3, report.Count)
	assert.Equal(t, 120.0, report.TotalMinMs)
	assert.Equal(t, 220.0, report.TotalAvgMs)
	assert.Equal(t, 330.0, report.TotalMaxMs)

	// Embedding appears in two summaries (one cached at 0ms).
	embedding := report.Phases[PhaseEmbedding]
	assert.Equal(t, 5.0, embedding.AvgMs)
	assert.InDelta(t, 1.0/3.0, embedding.CachedRate, 1e-9)

	generation := report.Phases[PhaseGeneration]
	assert.Equal(t, 200.0, generation.AvgMs)
	assert.Equal(t, 0.0, generation.CachedRate)
}

func TestAggregateOrderIndependent(t *testing.T) {
	a := Summary{Phases: map[Phase]float64{PhaseEmbedding: 10}, TotalMs: 50}
	b := Summary{Phases: map[Phase]float64{PhaseEmbedding: 30}, TotalMs: 90}
	c := Summary{Phases: map[Phase]float64{PhaseRetrieval: 20}, TotalMs: 40}

	assert.Equal(t,
		Aggregate([]Summary{a, b, c}),
		Aggregate([]Summary{c, b, a}))
}
