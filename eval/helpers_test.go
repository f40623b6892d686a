package eval_test

import (
	"fmt"

	"github.com/svtx-eval/clustereval/eval"
)

// fakeResolver maps detector hit IDs straight to truth hits.
type fakeResolver struct {
	links  map[uint64][]*eval.TruthHit
	resets int
}

func newFakeResolver() *fakeResolver {
	return &fakeResolver{links: make(map[uint64][]*eval.TruthHit)}
}

func (r *fakeResolver) TruthHits(hit *eval.DetectorHit) ([]*eval.TruthHit, error) {
	hits, ok := r.links[hit.ID]
	if !ok {
		return nil, fmt.Errorf("no links for detector hit %d", hit.ID)
	}
	return hits, nil
}

func (r *fakeResolver) Particle(hit *eval.TruthHit) (*eval.TruthParticle, error) {
	return &eval.TruthParticle{TrackID: hit.TrackID}, nil
}

func (r *fakeResolver) SameParticle(a, b *eval.TruthParticle) bool {
	return a.TrackID == b.TrackID
}

func (r *fakeResolver) IsFromParticle(hit *eval.TruthHit, p *eval.TruthParticle) bool {
	return hit.TrackID == p.TrackID
}

func (r *fakeResolver) NextEvent(eval.EventSource) { r.resets++ }

// fakeSource serves fixed stores under the standard names.
type fakeSource struct {
	clusters fakeClusters
	hits     fakeHits
}

type fakeClusters []*eval.Cluster

func (f fakeClusters) Clusters() []*eval.Cluster { return f }

type fakeHits map[uint64]*eval.DetectorHit

func (f fakeHits) Hit(id uint64) (*eval.DetectorHit, bool) {
	h, ok := f[id]
	return h, ok
}

type fakeTruth struct{}

func (fakeTruth) Particle(int) (*eval.TruthParticle, bool) { return nil, false }
func (fakeTruth) TruthHit(uint64) (*eval.TruthHit, bool)   { return nil, false }

func newFakeSource(clusters []*eval.Cluster, hitIDs ...uint64) *fakeSource {
	src := &fakeSource{clusters: clusters, hits: fakeHits{}}
	for _, id := range hitIDs {
		src.hits[id] = &eval.DetectorHit{ID: id}
	}
	return src
}

func (s *fakeSource) Lookup(name string) (any, bool) {
	switch name {
	case eval.ClusterStoreName:
		return s.clusters, true
	case eval.HitStoreName:
		return s.hits, true
	case eval.TruthStoreName:
		return fakeTruth{}, true
	}
	return nil, false
}
