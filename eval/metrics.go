package eval

// Query names used for cache accounting.
const (
	QueryTruthHits       = "truth_hits"
	QueryMaxTruthHit     = "max_truth_hit"
	QueryParticles       = "truth_particles"
	QueryMaxParticle     = "max_truth_particle"
	QueryClustersFromP   = "clusters_from_particle"
	QueryClustersFromHit = "clusters_from_truth_hit"
	QueryBestCluster     = "best_cluster"
	QueryParticleEnergy  = "particle_energy"
	QueryTruthHitEnergy  = "truth_hit_energy"
)

// Metrics receives evaluator instrumentation. Implementations must be cheap;
// they are called on every query.
type Metrics interface {
	// CacheLookup records a memo lookup for query. Not called when caching is off.
	CacheLookup(query string, hit bool)
	// Error records one counted evaluation error.
	Error(kind ErrorKind)
	// IndexBuilt records a spatial index build over n clusters.
	IndexBuilt(n int)
	// EventStarted records an event transition.
	EventStarted()
}

type nopMetrics struct{}

func (nopMetrics) CacheLookup(string, bool) {}
func (nopMetrics) Error(ErrorKind)          {}
func (nopMetrics) IndexBuilt(int)           {}
func (nopMetrics) EventStarted()            {}

// NopMetrics returns a Metrics that discards everything.
func NopMetrics() Metrics { return nopMetrics{} }
