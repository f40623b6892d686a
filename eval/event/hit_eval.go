package event

import (
	"fmt"

	"github.com/svtx-eval/clustereval/eval"
)

// HitEval resolves detector hits to truth records using the HitMap links and
// the TruthInfo of the bound event. Resolutions are memoized per event.
type HitEval struct {
	hits  *HitMap
	truth *TruthInfo

	cache map[*eval.DetectorHit][]*eval.TruthHit
	errs  map[*eval.DetectorHit]error
}

// NewHitEval returns a resolver bound to src.
func NewHitEval(src eval.EventSource) *HitEval {
	he := &HitEval{}
	he.NextEvent(src)
	return he
}

// NextEvent implements eval.TruthResolver.
func (he *HitEval) NextEvent(src eval.EventSource) {
	he.cache = make(map[*eval.DetectorHit][]*eval.TruthHit)
	he.errs = make(map[*eval.DetectorHit]error)
	he.hits, he.truth = nil, nil
	if src == nil {
		return
	}
	if v, ok := src.Lookup(eval.HitStoreName); ok {
		he.hits, _ = v.(*HitMap)
	}
	if v, ok := src.Lookup(eval.TruthStoreName); ok {
		he.truth, _ = v.(*TruthInfo)
	}
}

// TruthHits implements eval.TruthResolver. Linked truth hits missing from the
// truth store are reported in the error; the rest are still returned.
func (he *HitEval) TruthHits(hit *eval.DetectorHit) ([]*eval.TruthHit, error) {
	if hit == nil {
		return nil, fmt.Errorf("nil detector hit")
	}
	if hits, ok := he.cache[hit]; ok {
		return hits, he.errs[hit]
	}
	if he.hits == nil || he.truth == nil {
		return nil, fmt.Errorf("detector hit %d: hit eval not bound to an event", hit.ID)
	}

	ids, ok := he.hits.TruthHitIDs(hit.ID)
	if !ok {
		err := fmt.Errorf("detector hit %d has no truth links", hit.ID)
		he.cache[hit], he.errs[hit] = nil, err
		return nil, err
	}
	var (
		out     []*eval.TruthHit
		missing []uint64
	)
	for _, id := range ids {
		g4hit, ok := he.truth.TruthHit(id)
		if !ok {
			missing = append(missing, id)
			continue
		}
		out = append(out, g4hit)
	}
	var err error
	if len(missing) > 0 {
		err = fmt.Errorf("detector hit %d: truth hits %v not found", hit.ID, missing)
	}
	he.cache[hit], he.errs[hit] = out, err
	return out, err
}

// Particle implements eval.TruthResolver.
func (he *HitEval) Particle(hit *eval.TruthHit) (*eval.TruthParticle, error) {
	if hit == nil {
		return nil, fmt.Errorf("nil truth hit")
	}
	if he.truth == nil {
		return nil, fmt.Errorf("truth hit %d: hit eval not bound to an event", hit.ID)
	}
	p, ok := he.truth.Particle(hit.TrackID)
	if !ok {
		return nil, fmt.Errorf("truth hit %d: particle %d not found", hit.ID, hit.TrackID)
	}
	return p, nil
}

// SameParticle implements eval.TruthResolver. Records with equal track IDs
// denote the same particle.
func (he *HitEval) SameParticle(a, b *eval.TruthParticle) bool {
	if a == nil || b == nil {
		return false
	}
	return a.TrackID == b.TrackID
}

// IsFromParticle implements eval.TruthResolver.
func (he *HitEval) IsFromParticle(hit *eval.TruthHit, p *eval.TruthParticle) bool {
	if hit == nil || p == nil {
		return false
	}
	return hit.TrackID == p.TrackID
}

var _ eval.TruthResolver = (*HitEval)(nil)
