// Package report aggregates truth-matching quality across events.
package report

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/svtx-eval/clustereval/eval"
	"github.com/svtx-eval/clustereval/eval/event"
)

// Report is the run-level summary written by the CLI.
type Report struct {
	Events    int `json:"events"`
	Clusters  int `json:"clusters"`
	TruthHits int `json:"truth_hits"`
	Particles int `json:"particles"`

	// Clusters whose dominant particle could be determined.
	MatchedClusters int `json:"matched_clusters"`
	// Truth hits with a best cluster.
	MatchedTruthHits int     `json:"matched_truth_hits"`
	HitEfficiency    float64 `json:"hit_efficiency"`
	// Truth hits whose cluster lies outside the z window. Only counted when
	// window checking is on.
	WindowMisses int `json:"window_misses"`

	// Dominant-particle energy over total truth energy, per cluster.
	Purity Distribution `json:"purity"`
	// Clusters per particle.
	ClustersPerParticle Distribution `json:"clusters_per_particle"`
	// Best-cluster energy per matched truth hit.
	BestClusterEnergy Distribution `json:"best_cluster_energy"`

	Errors        int     `json:"errors"`
	CacheHitRatio float64 `json:"cache_hit_ratio,omitempty"`
}

// Accumulator walks events through a ClusterEval and collects the values
// that make up a Report.
type Accumulator struct {
	CheckWindow bool

	r                   Report
	purity              []float64
	clustersPerParticle []float64
	bestEnergy          []float64
}

// NewAccumulator returns an empty Accumulator.
func NewAccumulator(checkWindow bool) *Accumulator {
	return &Accumulator{CheckWindow: checkWindow}
}

// Observe runs every query over ev. ce must already be bound to ev.
func (a *Accumulator) Observe(ce *eval.ClusterEval, ev *event.Event) error {
	a.r.Events++

	for _, c := range ev.Clusters.Clusters() {
		a.r.Clusters++
		hits, err := ce.TruthHitsOf(c)
		if err != nil {
			return fmt.Errorf("event %d: %w", ev.ID, err)
		}
		if _, err := ce.MaxTruthHitByEnergy(c); err != nil {
			return fmt.Errorf("event %d: %w", ev.ID, err)
		}
		p, err := ce.MaxTruthParticleByEnergy(c)
		if err != nil {
			return fmt.Errorf("event %d: %w", ev.ID, err)
		}
		if p == nil {
			continue
		}
		a.r.MatchedClusters++
		total := 0.0
		for h := range hits.All() {
			total += h.Edep
		}
		e, err := ce.ParticleEnergy(c, p)
		if err != nil {
			return fmt.Errorf("event %d: %w", ev.ID, err)
		}
		if total > 0 {
			a.purity = append(a.purity, e/total)
		}
	}

	for _, h := range ev.Truth.TruthHits() {
		a.r.TruthHits++
		best, err := ce.BestClusterFrom(h)
		if err != nil {
			return fmt.Errorf("event %d: %w", ev.ID, err)
		}
		if best != nil {
			a.r.MatchedTruthHits++
			e, err := ce.TruthHitEnergy(best, h)
			if err != nil {
				return fmt.Errorf("event %d: %w", ev.ID, err)
			}
			a.bestEnergy = append(a.bestEnergy, e)
		}
		if a.CheckWindow {
			missed, err := ce.WindowMisses(h)
			if err != nil {
				return fmt.Errorf("event %d: %w", ev.ID, err)
			}
			a.r.WindowMisses += missed.Len()
		}
	}

	for _, p := range ev.Truth.Particles() {
		a.r.Particles++
		clusters, err := ce.ClustersFromParticle(p)
		if err != nil {
			return fmt.Errorf("event %d: %w", ev.ID, err)
		}
		a.clustersPerParticle = append(a.clustersPerParticle, float64(clusters.Len()))
	}
	return nil
}

// Finish computes distributions and returns the Report.
func (a *Accumulator) Finish(errors int, cacheHitRatio float64) *Report {
	r := a.r
	r.Errors = errors
	r.CacheHitRatio = cacheHitRatio
	if r.TruthHits > 0 {
		r.HitEfficiency = float64(r.MatchedTruthHits) / float64(r.TruthHits)
	}
	r.Purity = NewDistribution(a.purity)
	r.ClustersPerParticle = NewDistribution(a.clustersPerParticle)
	r.BestClusterEnergy = NewDistribution(a.bestEnergy)
	return &r
}

// Write prints the report as indented JSON under a header.
func (r *Report) Write(w io.Writer) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("marshalling report: %w", err)
	}
	if _, err := fmt.Fprintf(w, "=== Cluster Evaluation ===\n%s\n", data); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	return nil
}
