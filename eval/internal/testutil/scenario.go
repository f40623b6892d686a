// Package testutil provides shared synthetic events and assertion helpers for
// the eval test packages.
package testutil

import (
	"math"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/svtx-eval/clustereval/eval"
	"github.com/svtx-eval/clustereval/eval/event"
)

// Scenario is the reference two-cluster event:
//
//	Cluster1 (layer 3, z=10.0) ← H1 (z=10.1, 5.0, A), H2 (z=10.2, 3.0, B)
//	Cluster2 (layer 3, z=20.0) ← H3 (z=25.0, 8.0, A)
type Scenario struct {
	Event      *event.Event
	Cluster1   *eval.Cluster
	Cluster2   *eval.Cluster
	H1, H2, H3 *eval.TruthHit
	ParticleA  *eval.TruthParticle
	ParticleB  *eval.TruthParticle
}

// NewScenario builds the reference event with the given event ID.
func NewScenario(id int) *Scenario {
	s := &Scenario{Event: event.New(id)}
	s.ParticleA = &eval.TruthParticle{TrackID: 1, PID: 211}
	s.ParticleB = &eval.TruthParticle{TrackID: 2, PID: -211}
	s.Event.Truth.AddParticle(s.ParticleA)
	s.Event.Truth.AddParticle(s.ParticleB)

	s.H1 = &eval.TruthHit{ID: 1, TrackID: 1, Layer: 3, Edep: 5.0, Z: 10.1}
	s.H2 = &eval.TruthHit{ID: 2, TrackID: 2, Layer: 3, Edep: 3.0, Z: 10.2}
	s.H3 = &eval.TruthHit{ID: 3, TrackID: 1, Layer: 3, Edep: 8.0, Z: 25.0}
	for _, h := range []*eval.TruthHit{s.H1, s.H2, s.H3} {
		s.Event.Truth.AddTruthHit(h)
	}

	s.Event.Hits.Insert(&eval.DetectorHit{ID: 101, Layer: 3}, 1)
	s.Event.Hits.Insert(&eval.DetectorHit{ID: 102, Layer: 3}, 2)
	s.Event.Hits.Insert(&eval.DetectorHit{ID: 103, Layer: 3}, 3)

	s.Cluster1 = &eval.Cluster{ID: 1, Layer: 3, Z: 10.0, Hits: []uint64{101, 102}}
	s.Cluster2 = &eval.Cluster{ID: 2, Layer: 3, Z: 20.0, Hits: []uint64{103}}
	s.Event.Clusters.Insert(s.Cluster1)
	s.Event.Clusters.Insert(s.Cluster2)
	return s
}

// NewEval returns a ClusterEval and resolver bound to s.Event.
func (s *Scenario) NewEval(cfg eval.Config, opts ...eval.Option) *eval.ClusterEval {
	return eval.NewClusterEval(s.Event, event.NewHitEval(s.Event), cfg, opts...)
}

// AssertFloat64Equal compares two float64 values with relative tolerance.
func AssertFloat64Equal(t *testing.T, name string, want, got, relTol float64) {
	t.Helper()
	if want == 0 && got == 0 {
		return
	}
	diff := math.Abs(want - got)
	maxVal := math.Max(math.Abs(want), math.Abs(got))
	if diff/maxVal > relTol {
		t.Errorf("%s: got %v, want %v (diff=%v, relDiff=%v)", name, got, want, diff, diff/maxVal)
	}
}

// ScenarioFile returns the path of testdata/scenario.yaml, resolved relative to
// this source file: eval/internal/testutil/ → testdata/.
func ScenarioFile(t *testing.T) string {
	t.Helper()
	_, thisFile, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("Failed to get current file path")
	}
	return filepath.Join(filepath.Dir(thisFile), "..", "..", "..", "testdata", "scenario.yaml")
}
