package trace

// TraceSummary aggregates statistics from a MatchTrace.
type TraceSummary struct {
	BestClusterDecisions int
	UnmatchedTruthHits   int
	AmbiguousTruthHits   int // more than one candidate cluster
	MaxParticleDecisions int
	MergedClusters       int // more than one candidate particle
	MeanParticleMargin   float64
	MinParticleMargin    float64
	ClustersPerEvent     map[int]int // event → best-cluster decisions
}

// Summarize computes aggregate statistics from a MatchTrace.
// Safe for nil or empty traces (returns zero-value fields).
func Summarize(mt *MatchTrace) *TraceSummary {
	summary := &TraceSummary{
		ClustersPerEvent: make(map[int]int),
	}
	if mt == nil {
		return summary
	}

	summary.BestClusterDecisions = len(mt.BestClusters)
	for _, r := range mt.BestClusters {
		summary.ClustersPerEvent[r.Event]++
		if !r.Found {
			summary.UnmatchedTruthHits++
		}
		if len(r.Candidates) > 1 {
			summary.AmbiguousTruthHits++
		}
	}

	summary.MaxParticleDecisions = len(mt.MaxParticles)
	merged := 0
	total := 0.0
	for _, r := range mt.MaxParticles {
		if len(r.Candidates) < 2 {
			continue
		}
		m := r.Margin()
		if merged == 0 || m < summary.MinParticleMargin {
			summary.MinParticleMargin = m
		}
		total += m
		merged++
	}
	summary.MergedClusters = merged
	if merged > 0 {
		summary.MeanParticleMargin = total / float64(merged)
	}
	return summary
}
