package eval

// memo stores query results for the current event.
type memo[K comparable, V any] interface {
	Get(key K) (V, bool)
	Put(key K, val V)
	Len() int
}

type mapMemo[K comparable, V any] struct {
	m map[K]V
}

func newMapMemo[K comparable, V any]() *mapMemo[K, V] {
	return &mapMemo[K, V]{m: make(map[K]V)}
}

func (c *mapMemo[K, V]) Get(key K) (V, bool) {
	v, ok := c.m[key]
	return v, ok
}

// Put keeps the first value stored for a key; an entry is authoritative for
// the rest of the event.
func (c *mapMemo[K, V]) Put(key K, val V) {
	if _, ok := c.m[key]; ok {
		return
	}
	c.m[key] = val
}

func (c *mapMemo[K, V]) Len() int { return len(c.m) }

// nopMemo never stores anything.
type nopMemo[K comparable, V any] struct{}

func (nopMemo[K, V]) Get(K) (v V, ok bool) { return v, false }
func (nopMemo[K, V]) Put(K, V)             {}
func (nopMemo[K, V]) Len() int             { return 0 }

func newMemo[K comparable, V any](enabled bool) memo[K, V] {
	if enabled {
		return newMapMemo[K, V]()
	}
	return nopMemo[K, V]{}
}

type clusterParticle struct {
	c *Cluster
	p *TruthParticle
}

type clusterHit struct {
	c *Cluster
	h *TruthHit
}

// resultCache is the set of per-event memo tables, one per query shape.
type resultCache struct {
	truthHits       memo[*Cluster, *TruthHitSet]
	maxTruthHit     memo[*Cluster, *TruthHit]
	particles       memo[*Cluster, *ParticleSet]
	maxParticle     memo[*Cluster, *TruthParticle]
	clustersFromP   memo[*TruthParticle, *ClusterSet]
	clustersFromHit memo[*TruthHit, *ClusterSet]
	bestCluster     memo[*TruthHit, *Cluster]
	particleEnergy  memo[clusterParticle, float64]
	truthHitEnergy  memo[clusterHit, float64]
}

func newResultCache(enabled bool) *resultCache {
	return &resultCache{
		truthHits:       newMemo[*Cluster, *TruthHitSet](enabled),
		maxTruthHit:     newMemo[*Cluster, *TruthHit](enabled),
		particles:       newMemo[*Cluster, *ParticleSet](enabled),
		maxParticle:     newMemo[*Cluster, *TruthParticle](enabled),
		clustersFromP:   newMemo[*TruthParticle, *ClusterSet](enabled),
		clustersFromHit: newMemo[*TruthHit, *ClusterSet](enabled),
		bestCluster:     newMemo[*TruthHit, *Cluster](enabled),
		particleEnergy:  newMemo[clusterParticle, float64](enabled),
		truthHitEnergy:  newMemo[clusterHit, float64](enabled),
	}
}

// entries returns the total number of memoized results.
func (rc *resultCache) entries() int {
	return rc.truthHits.Len() + rc.maxTruthHit.Len() + rc.particles.Len() +
		rc.maxParticle.Len() + rc.clustersFromP.Len() + rc.clustersFromHit.Len() +
		rc.bestCluster.Len() + rc.particleEnergy.Len() + rc.truthHitEnergy.Len()
}
