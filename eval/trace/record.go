// Package trace records match decisions for offline inspection of the
// evaluator. It has no dependency on eval; records hold identifiers only.
package trace

// Candidate is one scored option considered by a selection.
type Candidate struct {
	ID     uint64
	Energy float64
}

// BestClusterRecord captures the choice of best cluster for a truth hit.
// Candidates are in the order they were examined.
type BestClusterRecord struct {
	Event      int
	TruthHitID uint64
	Found      bool
	ClusterID  uint64 // valid when Found
	Energy     float64
	Candidates []Candidate
}

// MaxParticleRecord captures the choice of dominant particle for a cluster.
type MaxParticleRecord struct {
	Event      int
	ClusterID  uint64
	Found      bool
	TrackID    int // valid when Found
	Energy     float64
	Candidates []Candidate // Candidate.ID holds the track ID
}

// Margin is the chosen energy minus the best runner-up; 0 with fewer than two
// candidates.
func (r BestClusterRecord) Margin() float64 {
	return margin(r.Found, r.Energy, r.Candidates, r.ClusterID)
}

// Margin is the chosen energy minus the best runner-up; 0 with fewer than two
// candidates.
func (r MaxParticleRecord) Margin() float64 {
	return margin(r.Found, r.Energy, r.Candidates, uint64(r.TrackID))
}

func margin(found bool, chosen float64, cands []Candidate, chosenID uint64) float64 {
	if !found || len(cands) < 2 {
		return 0
	}
	runnerUp := 0.0
	seen, skipped := false, false
	for _, c := range cands {
		// Only the chosen entry is skipped; aliases sharing its ID still compete.
		if !skipped && c.ID == chosenID && c.Energy == chosen {
			skipped = true
			continue
		}
		if !seen || c.Energy > runnerUp {
			runnerUp = c.Energy
			seen = true
		}
	}
	if !seen {
		return 0
	}
	return chosen - runnerUp
}
