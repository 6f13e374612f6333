package latency

import (
	"maps"
	"sync"
	"time"
)

// Phase names one timed stage of a pipeline request.
type Phase string

const (
	PhaseCacheLookup Phase = "cache-lookup"
	PhaseEmbedding   Phase = "embedding"
	PhaseRetrieval   Phase = "retrieval"
	PhasePromptBuild Phase = "prompt-build"
	PhaseGeneration  Phase = "generation"

	// PhaseTotal is a pseudo-phase used in threshold violations for the
	// whole request.
	PhaseTotal Phase = "total"
)

// Summary is a snapshot of one request's timings. Durations are in
// milliseconds and never negative.
type Summary struct {
	RequestId    string
	Phases       map[Phase]float64
	CachedPhases map[Phase]bool
	StartedAt    time.Time
	CompletedAt  time.Time
	TotalMs      float64
}

// Cached reports whether the phase was served from a cache.
func (s Summary) Cached(phase Phase) bool {
	return s.CachedPhases[phase]
}

// Option customizes a Tracker.
type Option func(*Tracker)

// WithClock overrides the time source for deterministic tests.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) {
		t.now = now
	}
}

// Tracker times the phases of a single request. Starting a phase twice
// overwrites its start time; ending a phase that never started reports
// zero. The zero duration of a cached phase is recorded by MarkCached.
type Tracker struct {
	mu          sync.Mutex
	requestId   string
	now         func() time.Time
	startedAt   time.Time
	completedAt time.Time
	running     map[Phase]time.Time
	elapsed     map[Phase]float64
	cached      map[Phase]bool
}

// NewTracker starts tracking a request.
func NewTracker(requestId string, opts ...Option) *Tracker {
	t := &Tracker{
		requestId: requestId,
		now:       time.Now,
		running:   make(map[Phase]time.Time),
		elapsed:   make(map[Phase]float64),
		cached:    make(map[Phase]bool),
	}
	for _, opt := range opts {
		opt(t)
	}
	t.startedAt = t.now()
	return t
}

// StartPhase marks the phase as running from now.
func (t *Tracker) StartPhase(phase Phase) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.running[phase] = t.now()
}

// EndPhase stops the phase and returns its elapsed milliseconds.
// Ending a phase that is not running returns 0 and changes nothing.
func (t *Tracker) EndPhase(phase Phase) float64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	startedAt, ok := t.running[phase]
	if !ok {
		return 0
	}
	delete(t.running, phase)

	elapsed := clampMs(t.now().Sub(startedAt))
	t.elapsed[phase] = elapsed
	return elapsed
}

// MarkCached records that the phase was served from a cache. Its
// duration is forced to zero whether or not it was running.
func (t *Tracker) MarkCached(phase Phase) {
	t.mu.Lock()
	defer t.mu.Unlock()

	delete(t.running, phase)
	t.elapsed[phase] = 0
	t.cached[phase] = true
}

// Complete stamps the request end time. Later calls are no-ops.
func (t *Tracker) Complete() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.completedAt.IsZero() {
		t.completedAt = t.now()
	}
}

// Summary snapshots the tracker without finalizing it. Phases still
// running report their in-flight elapsed time.
func (t *Tracker) Summary() Summary {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()

	phases := make(map[Phase]float64, len(t.elapsed)+len(t.running))
	maps.Copy(phases, t.elapsed)
	for phase, startedAt := range t.running {
		phases[phase] = clampMs(now.Sub(startedAt))
	}

	end := t.completedAt
	if end.IsZero() {
		end = now
	}

	return Summary{
		RequestId:    t.requestId,
		Phases:       phases,
		CachedPhases: maps.Clone(t.cached),
		StartedAt:    t.startedAt,
		CompletedAt:  t.completedAt,
		TotalMs:      clampMs(end.Sub(t.startedAt)),
	}
}

func clampMs(d time.Duration) float64 {
	if d < 0 {
		return 0
	}
	return float64(d) / float64(time.Millisecond)
}
