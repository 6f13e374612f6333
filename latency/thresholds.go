package latency

// Level grades a threshold violation.
type Level string

const (
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

// Thresholds configures per-phase and total latency limits in
// milliseconds. A zero threshold disables that check.
type Thresholds struct {
	EmbeddingWarnMs  float64
	RetrievalWarnMs  float64
	GenerationWarnMs float64
	TotalWarnMs      float64
	TotalErrorMs     float64
}

// Violation reports one phase that ran longer than its threshold.
type Violation struct {
	Phase       Phase
	DurationMs  float64
	ThresholdMs float64
	Level       Level
}

// ThresholdReport is the outcome of checking one summary.
type ThresholdReport struct {
	Exceeded   bool
	Violations []Violation
}

// CheckThresholds compares a summary against the thresholds. Phases
// marked cached are skipped. The total is graded error when it exceeds
// TotalErrorMs, warn when it only exceeds TotalWarnMs.
func CheckThresholds(summary Summary, thresholds Thresholds) ThresholdReport {
	var report ThresholdReport

	phaseChecks := []struct {
		phase       Phase
		thresholdMs float64
	}{
		{PhaseEmbedding, thresholds.EmbeddingWarnMs},
		{PhaseRetrieval, thresholds.RetrievalWarnMs},
		{PhaseGeneration, thresholds.GenerationWarnMs},
	}

	for _, check := range phaseChecks {
		if check.thresholdMs <= 0 || summary.Cached(check.phase) {
			continue
		}
		duration, ok := summary.Phases[check.phase]
		if !ok || duration <= check.thresholdMs {
			continue
		}
		report.Violations = append(report.Violations, Violation{
			Phase:       check.phase,
			DurationMs:  duration,
			ThresholdMs: check.thresholdMs,
			Level:       LevelWarn,
		})
	}

	switch {
	case thresholds.TotalErrorMs > 0 && summary.TotalMs > thresholds.TotalErrorMs:
		report.Violations = append(report.Violations, Violation{
			Phase:       PhaseTotal,
			DurationMs:  summary.TotalMs,
			ThresholdMs: thresholds.TotalErrorMs,
			Level:       LevelError,
		})
	case thresholds.TotalWarnMs > 0 && summary.TotalMs > thresholds.TotalWarnMs:
		report.Violations = append(report.Violations, Violation{
			Phase:       PhaseTotal,
			DurationMs:  summary.TotalMs,
			ThresholdMs: thresholds.TotalWarnMs,
			Level:       LevelWarn,
		})
	}

	report.Exceeded = len(report.Violations) > 0
	return report
}
