package latency

// PhaseStats aggregates one phase across a batch of summaries.
type PhaseStats struct {
	// AvgMs averages the phase duration over the summaries that
	// recorded the phase at all.
	AvgMs float64

	// CachedRate is the fraction of all summaries that served this
	// phase from a cache.
	CachedRate float64
}

// AggregateReport reduces a batch of summaries.
type AggregateReport struct {
	Count      int
	Phases     map[Phase]PhaseStats
	TotalMinMs float64
	TotalAvgMs float64
	TotalMaxMs float64
}

// Aggregate reduces summaries to per-phase averages and cache-hit rates
// plus total min/avg/max. The result does not depend on input order.
func Aggregate(summaries []Summary) AggregateReport {
	report := AggregateReport{
		Count:  len(summaries),
		Phases: make(map[Phase]PhaseStats),
	}
	if len(summaries) == 0 {
		return report
	}

	sums := make(map[Phase]float64)
	counts := make(map[Phase]int)
	cachedCounts := make(map[Phase]int)

	var totalSum float64
	for i, summary := range summaries {
		for phase, duration := range summary.Phases {
			sums[phase] += duration
			counts[phase]++
		}
		for phase, cached := range summary.CachedPhases {
			if cached {
				cachedCounts[phase]++
			}
		}

		totalSum += summary.TotalMs
		if i == 0 || summary.TotalMs < report.TotalMinMs {
			report.TotalMinMs = summary.TotalMs
		}
		if summary.TotalMs > report.TotalMaxMs {
			report.TotalMaxMs = summary.TotalMs
		}
	}
	report.TotalAvgMs = totalSum / float64(len(summaries))

	for phase, count := range counts {
		report.Phases[phase] = PhaseStats{
			AvgMs:      sums[phase] / float64(count),
			CachedRate: float64(cachedCounts[phase]) / float64(len(summaries)),
		}
	}
	// A phase can be cached in every summary without ever being timed.
	for phase, cached := range cachedCounts {
		if _, ok := report.Phases[phase]; !ok {
			report.Phases[phase] = PhaseStats{
				CachedRate: float64(cached) / float64(len(summaries)),
			}
		}
	}

	return report
}
