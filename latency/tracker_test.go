package latency

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type testClock struct {
	current time.Time
}

func newTestClock() *testClock {
	return &testClock{current: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	return c.current
}

func (c *testClock) Advance(d time.Duration) {
	c.current = c.current.Add(d)
}

func TestTrackerPhases(t *testing.T) {
	clock := newTestClock()
	tracker := NewTracker("rag-1", WithClock(clock.Now))

	tracker.StartPhase(PhaseEmbedding)
	clock.Advance(30 * time.Millisecond)
	elapsed := tracker.EndPhase(PhaseEmbedding)
	assert.Equal(t, 30.0, elapsed)

	tracker.StartPhase(PhaseRetrieval)
	clock.Advance(20 * time.Millisecond)
	tracker.EndPhase(PhaseRetrieval)

	clock.Advance(50 * time.Millisecond)
	tracker.Complete()

	summary := tracker.Summary()
	assert.Equal(t, "rag-1", summary.RequestId)
	assert.Equal(t, 30.0, summary.Phases[PhaseEmbedding])
	assert.Equal(t, 20.0, summary.Phases[PhaseRetrieval])
	assert.Equal(t, 100.0, summary.TotalMs)
	assert.False(t, summary.CompletedAt.IsZero())
}

func TestEndPhaseNeverStarted(t *testing.T) {
	tracker := NewTracker("rag-1")

	assert.Equal(t, 0.0, tracker.EndPhase(PhaseGeneration))

	summary := tracker.Summary()
	_, ok := summary.Phases[PhaseGeneration]
	assert.False(t, ok, "a never-started phase should not appear in the summary")
}

func TestStartPhaseRestartOverwrites(t *testing.T) {
	clock := newTestClock()
	tracker := NewTracker("rag-1", WithClock(clock.Now))

	tracker.StartPhase(PhaseEmbedding)
	clock.Advance(10 * time.Millisecond)
	tracker.StartPhase(PhaseEmbedding)
	clock.Advance(5 * time.Millisecond)

	assert.Equal(t, 5.0, tracker.EndPhase(PhaseEmbedding))
}

func TestMarkCached(t *testing.T) {
	clock := newTestClock()
	tracker := NewTracker("rag-1", WithClock(clock.Now))

	tracker.StartPhase(PhaseEmbedding)
	clock.Advance(10 * time.Millisecond)
	tracker.MarkCached(PhaseEmbedding)
	tracker.MarkCached(PhaseCacheLookup)

	summary := tracker.Summary()
	assert.Equal(t, 0.0, summary.Phases[PhaseEmbedding])
	assert.True(t, summary.Cached(PhaseEmbedding))
	assert.Equal(t, 0.0, summary.Phases[PhaseCacheLookup])
	assert.True(t, summary.Cached(PhaseCacheLookup))
	assert.False(t, summary.Cached(PhaseRetrieval))
}

func TestCompleteIdempotent(t *testing.T) {
	clock := newTestClock()
	tracker := NewTracker("rag-1", WithClock(clock.Now))

	clock.Advance(40 * time.Millisecond)
	tracker.Complete()
	clock.Advance(100 * time.Millisecond)
	tracker.Complete()

	assert.Equal(t, 40.0, tracker.Summary().TotalMs)
}

func TestSummaryInFlight(t *testing.T) {
	clock := newTestClock()
	tracker := NewTracker("rag-1", WithClock(clock.Now))

	tracker.StartPhase(PhaseGeneration)
	clock.Advance(10 * time.Millisecond)

	summary := tracker.Summary()
	assert.Equal(t, 10.0, summary.Phases[PhaseGeneration])
	assert.Equal(t, 10.0, summary.TotalMs)
	assert.True(t, summary.CompletedAt.IsZero())

	// The snapshot must not end the phase.
	clock.Advance(10 * time.Millisecond)
	assert.Equal(t, 20.0, tracker.EndPhase(PhaseGeneration))
}

func TestNegativeDurationsClamped(t *testing.T) {
	clock := newTestClock()
	tracker := NewTracker("rag-1", WithClock(clock.Now))

	tracker.StartPhase(PhaseEmbedding)
	clock.Advance(-time.Second)

	assert.Equal(t, 0.0, tracker.EndPhase(PhaseEmbedding))
	assert.Equal(t, 0.0, tracker.Summary().TotalMs)
}
