package eval

import "github.com/sirupsen/logrus"

// Names of the per-event stores resolved from an EventSource.
const (
	ClusterStoreName = "SvtxClusterMap"
	HitStoreName     = "SvtxHitMap"
	TruthStoreName   = "G4TruthInfo"
)

// EventSource resolves named per-event data objects.
type EventSource interface {
	Lookup(name string) (any, bool)
}

// ClusterStore holds the reconstructed clusters of an event.
type ClusterStore interface {
	// Clusters returns every cluster, ordered by ID.
	Clusters() []*Cluster
}

// HitStore holds the detector hits referenced by clusters.
type HitStore interface {
	Hit(id uint64) (*DetectorHit, bool)
}

// TruthStore holds the simulated particles and energy deposits of an event.
type TruthStore interface {
	Particle(trackID int) (*TruthParticle, bool)
	TruthHit(id uint64) (*TruthHit, bool)
}

// TruthResolver maps detector hits to truth records. ClusterEval depends only
// on this contract, not on how resolution is done.
type TruthResolver interface {
	// TruthHits returns the truth hits behind a detector hit.
	TruthHits(hit *DetectorHit) ([]*TruthHit, error)
	// Particle returns the particle that left a truth hit.
	Particle(hit *TruthHit) (*TruthParticle, error)
	// SameParticle reports whether two records denote the same physical particle.
	SameParticle(a, b *TruthParticle) bool
	// IsFromParticle reports whether a truth hit was left by particle p.
	IsFromParticle(hit *TruthHit, p *TruthParticle) bool
	// NextEvent drops per-event state and rebinds to src.
	NextEvent(src EventSource)
}

// eventContext owns everything scoped to one event. A new one is built for
// every event; nothing carries over.
type eventContext struct {
	clusters ClusterStore
	hits     HitStore
	truth    TruthStore

	index *layerIndex
	cache *resultCache
}

// newEventContext resolves the named stores from src. A nil or incomplete src
// yields an unbound context on which every query fails with MissingContext.
func newEventContext(src EventSource, cfg Config) *eventContext {
	ec := &eventContext{cache: newResultCache(cfg.CacheEnabled)}
	if src == nil {
		return ec
	}
	ec.clusters = lookupStore[ClusterStore](src, ClusterStoreName)
	ec.hits = lookupStore[HitStore](src, HitStoreName)
	ec.truth = lookupStore[TruthStore](src, TruthStoreName)
	return ec
}

func lookupStore[T any](src EventSource, name string) T {
	var zero T
	v, ok := src.Lookup(name)
	if !ok {
		logrus.Debugf("event store %s not found", name)
		return zero
	}
	store, ok := v.(T)
	if !ok {
		logrus.Debugf("event store %s has unexpected type %T", name, v)
		return zero
	}
	return store
}

func (ec *eventContext) bound() bool {
	return ec.clusters != nil && ec.hits != nil && ec.truth != nil
}
