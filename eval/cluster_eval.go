package eval

import (
	"fmt"
	"math"

	"github.com/sirupsen/logrus"

	"github.com/svtx-eval/clustereval/eval/trace"
)

// ClusterEval answers truth-matching queries for the clusters of the current
// event. It is not safe for concurrent use.
//
// Every query returns a usable sentinel on failure (empty set, nil, or NaN)
// together with a non-nil error, and counts the failure in Errors. In strict
// mode missing stores and nil arguments panic instead.
type ClusterEval struct {
	cfg      Config
	resolver TruthResolver
	metrics  Metrics
	trace    *trace.MatchTrace

	ev     *eventContext
	event  int
	errors int
}

// Option configures a ClusterEval.
type Option func(*ClusterEval)

// WithMetrics routes instrumentation to m.
func WithMetrics(m Metrics) Option {
	return func(e *ClusterEval) { e.metrics = m }
}

// WithTrace records selection decisions into mt. A nil mt disables tracing.
func WithTrace(mt *trace.MatchTrace) Option {
	return func(e *ClusterEval) { e.trace = mt }
}

// NewClusterEval binds an evaluator to the first event in src.
func NewClusterEval(src EventSource, resolver TruthResolver, cfg Config, opts ...Option) *ClusterEval {
	e := &ClusterEval{
		cfg:      cfg,
		resolver: resolver,
		metrics:  NopMetrics(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.bind(src)
	return e
}

// NextEvent discards every cached result and the spatial index, resets the
// resolver, and rebinds to the stores of src.
func (e *ClusterEval) NextEvent(src EventSource) {
	e.event++
	if e.resolver != nil {
		e.resolver.NextEvent(src)
	}
	e.bind(src)
}

func (e *ClusterEval) bind(src EventSource) {
	e.ev = newEventContext(src, e.cfg)
	e.metrics.EventStarted()
	logrus.Debugf("cluster eval bound to event %d (stores bound=%v)", e.event, e.ev.bound())
}

// Errors returns the number of errors counted since construction.
func (e *ClusterEval) Errors() int { return e.errors }

// Config returns the evaluator configuration.
func (e *ClusterEval) Config() Config { return e.cfg }

// CacheEntries returns the number of results memoized for the current event.
func (e *ClusterEval) CacheEntries() int { return e.ev.cache.entries() }

// Close reports the accumulated error count according to verbosity.
func (e *ClusterEval) Close() {
	if e.cfg.Verbosity <= 0 {
		return
	}
	if e.errors > 0 {
		logrus.Warnf("ClusterEval: error count: %d", e.errors)
	} else if e.cfg.Verbosity > 1 {
		logrus.Infof("ClusterEval: error count: %d", e.errors)
	}
}

func (e *ClusterEval) fail(op string, kind ErrorKind, detail string) error {
	e.errors++
	e.metrics.Error(kind)
	err := &EvalError{Kind: kind, Op: op, Detail: detail}
	if e.cfg.Strict && kind != UnresolvedReference {
		logrus.Panicf("%v", err)
	}
	return err
}

// unresolved counts a skipped element. It never escalates.
func (e *ClusterEval) unresolved(op, detail string) {
	_ = e.fail(op, UnresolvedReference, detail)
	logrus.Debugf("%s: skipping unresolved %s", op, detail)
}

// precheck enforces bound stores and present arguments.
func (e *ClusterEval) precheck(op string, present ...bool) error {
	if e.resolver == nil || !e.ev.bound() {
		return e.fail(op, MissingContext, "")
	}
	for i, ok := range present {
		if !ok {
			return e.fail(op, InvalidArgument, fmt.Sprintf("argument %d", i))
		}
	}
	return nil
}

func lookup[K comparable, V any](e *ClusterEval, m memo[K, V], query string, key K) (V, bool) {
	if !e.cfg.CacheEnabled {
		var zero V
		return zero, false
	}
	v, ok := m.Get(key)
	e.metrics.CacheLookup(query, ok)
	return v, ok
}

// TruthHitsOf returns the union of truth hits behind every detector hit of c.
// Detector hits that cannot be resolved are skipped and counted.
func (e *ClusterEval) TruthHitsOf(c *Cluster) (*TruthHitSet, error) {
	if err := e.precheck("TruthHitsOf", c != nil); err != nil {
		return NewTruthHitSet(), err
	}
	return e.truthHitsOf(c), nil
}

func (e *ClusterEval) truthHitsOf(c *Cluster) *TruthHitSet {
	cache := e.ev.cache.truthHits
	if hits, ok := lookup(e, cache, QueryTruthHits, c); ok {
		return hits
	}

	hits := NewTruthHitSet()
	for _, key := range c.Hits {
		hit, ok := e.ev.hits.Hit(key)
		if !ok || hit == nil {
			e.unresolved("TruthHitsOf", fmt.Sprintf("detector hit %d of cluster %d", key, c.ID))
			continue
		}
		g4hits, err := e.resolver.TruthHits(hit)
		if err != nil {
			e.unresolved("TruthHitsOf", err.Error())
		}
		for _, h := range g4hits {
			hits.add(h)
		}
	}

	cache.Put(c, hits)
	return hits
}

// MaxTruthHitByEnergy returns the truth hit of c with the largest deposited
// energy. Ties keep the first hit in ID order. Nil when c has no truth hits.
func (e *ClusterEval) MaxTruthHitByEnergy(c *Cluster) (*TruthHit, error) {
	if err := e.precheck("MaxTruthHitByEnergy", c != nil); err != nil {
		return nil, err
	}
	cache := e.ev.cache.maxTruthHit
	if h, ok := lookup(e, cache, QueryMaxTruthHit, c); ok {
		return h, nil
	}

	var maxHit *TruthHit
	maxE := -math.MaxFloat64
	for h := range e.truthHitsOf(c).All() {
		if h.Edep > maxE {
			maxE = h.Edep
			maxHit = h
		}
	}

	cache.Put(c, maxHit)
	return maxHit, nil
}

// TruthParticlesOf returns the particles that left the truth hits of c.
// Truth hits without a resolvable particle are skipped and counted.
func (e *ClusterEval) TruthParticlesOf(c *Cluster) (*ParticleSet, error) {
	if err := e.precheck("TruthParticlesOf", c != nil); err != nil {
		return NewParticleSet(), err
	}
	return e.truthParticlesOf(c), nil
}

func (e *ClusterEval) truthParticlesOf(c *Cluster) *ParticleSet {
	cache := e.ev.cache.particles
	if ps, ok := lookup(e, cache, QueryParticles, c); ok {
		return ps
	}

	particles := NewParticleSet()
	for h := range e.truthHitsOf(c).All() {
		p, err := e.resolver.Particle(h)
		if err != nil || p == nil {
			e.unresolved("TruthParticlesOf", fmt.Sprintf("particle of truth hit %d", h.ID))
			continue
		}
		particles.add(p)
	}

	cache.Put(c, particles)
	return particles
}

// MaxTruthParticleByEnergy returns the particle with the largest energy
// contribution to c. Ties keep the first particle in track ID order.
func (e *ClusterEval) MaxTruthParticleByEnergy(c *Cluster) (*TruthParticle, error) {
	if err := e.precheck("MaxTruthParticleByEnergy", c != nil); err != nil {
		return nil, err
	}
	cache := e.ev.cache.maxParticle
	if p, ok := lookup(e, cache, QueryMaxParticle, c); ok {
		return p, nil
	}

	var maxP *TruthParticle
	maxE := -math.MaxFloat64
	var cands []trace.Candidate
	for p := range e.truthParticlesOf(c).All() {
		energy := e.particleEnergy(c, p)
		if e.trace != nil {
			cands = append(cands, trace.Candidate{ID: uint64(p.TrackID), Energy: energy})
		}
		if energy > maxE {
			maxE = energy
			maxP = p
		}
	}

	if e.trace != nil {
		rec := trace.MaxParticleRecord{Event: e.event, ClusterID: c.ID, Candidates: cands}
		if maxP != nil {
			rec.Found, rec.TrackID, rec.Energy = true, maxP.TrackID, maxE
		}
		e.trace.RecordMaxParticle(rec)
	}

	cache.Put(c, maxP)
	return maxP, nil
}

// ClustersFromParticle scans every cluster of the event and returns those with
// a truth particle that is the same particle as p.
func (e *ClusterEval) ClustersFromParticle(p *TruthParticle) (*ClusterSet, error) {
	if err := e.precheck("ClustersFromParticle", p != nil); err != nil {
		return NewClusterSet(), err
	}
	cache := e.ev.cache.clustersFromP
	if cs, ok := lookup(e, cache, QueryClustersFromP, p); ok {
		return cs, nil
	}

	clusters := NewClusterSet()
	for _, c := range e.ev.clusters.Clusters() {
		if c == nil {
			continue
		}
		for candidate := range e.truthParticlesOf(c).All() {
			if e.resolver.SameParticle(candidate, p) {
				clusters.add(c)
				break
			}
		}
	}

	cache.Put(p, clusters)
	return clusters, nil
}

// ClustersFromTruthHit returns the clusters on h's layer, within ZWindow of
// h.Z, that contain h. Matching clusters outside the window are not found;
// see WindowMisses.
func (e *ClusterEval) ClustersFromTruthHit(h *TruthHit) (*ClusterSet, error) {
	if err := e.precheck("ClustersFromTruthHit", h != nil); err != nil {
		return NewClusterSet(), err
	}
	cache := e.ev.cache.clustersFromHit
	if cs, ok := lookup(e, cache, QueryClustersFromHit, h); ok {
		return cs, nil
	}

	clusters := NewClusterSet()
	for _, c := range e.layerIndex().window(h.Layer, h.Z-e.cfg.ZWindow, h.Z+e.cfg.ZWindow) {
		if c.Layer != h.Layer {
			continue
		}
		if containsTruthHit(e.truthHitsOf(c), h) {
			clusters.add(c)
		}
	}

	cache.Put(h, clusters)
	return clusters, nil
}

func containsTruthHit(hits *TruthHitSet, h *TruthHit) bool {
	for candidate := range hits.All() {
		if candidate.ID == h.ID {
			return true
		}
	}
	return false
}

func (e *ClusterEval) layerIndex() *layerIndex {
	if e.ev.index == nil {
		clusters := e.ev.clusters.Clusters()
		e.ev.index = buildLayerIndex(clusters, e.cfg.Layers)
		e.metrics.IndexBuilt(len(clusters))
	}
	return e.ev.index
}

// WindowMisses returns the clusters that contain h but lie outside the z
// window, found by a full scan of h's layer. Results are not cached.
func (e *ClusterEval) WindowMisses(h *TruthHit) (*ClusterSet, error) {
	if err := e.precheck("WindowMisses", h != nil); err != nil {
		return NewClusterSet(), err
	}
	missed := NewClusterSet()
	for _, c := range e.layerIndex().bucket(h.Layer) {
		if math.Abs(c.Z-h.Z) <= e.cfg.ZWindow {
			continue
		}
		if containsTruthHit(e.truthHitsOf(c), h) {
			missed.add(c)
		}
	}
	return missed, nil
}

// BestClusterFrom returns the cluster with the largest energy contribution
// from h. A cluster must contribute strictly positive energy to qualify; ties
// keep the first cluster in ID order. Nil when no cluster qualifies.
func (e *ClusterEval) BestClusterFrom(h *TruthHit) (*Cluster, error) {
	if err := e.precheck("BestClusterFrom", h != nil); err != nil {
		return nil, err
	}
	cache := e.ev.cache.bestCluster
	if c, ok := lookup(e, cache, QueryBestCluster, h); ok {
		return c, nil
	}

	clusters, _ := e.ClustersFromTruthHit(h)
	var best *Cluster
	bestE := 0.0
	var cands []trace.Candidate
	for c := range clusters.All() {
		energy := e.truthHitEnergy(c, h)
		if e.trace != nil {
			cands = append(cands, trace.Candidate{ID: c.ID, Energy: energy})
		}
		if energy > bestE {
			best = c
			bestE = energy
		}
	}

	if e.trace != nil {
		rec := trace.BestClusterRecord{Event: e.event, TruthHitID: h.ID, Candidates: cands}
		if best != nil {
			rec.Found, rec.ClusterID, rec.Energy = true, best.ID, bestE
		}
		e.trace.RecordBestCluster(rec)
	}

	cache.Put(h, best)
	return best, nil
}

// ParticleEnergy returns the energy deposited in c by particle p: the sum of
// Edep over the truth hits of c that the resolver attributes to p.
func (e *ClusterEval) ParticleEnergy(c *Cluster, p *TruthParticle) (float64, error) {
	if err := e.precheck("ParticleEnergy", c != nil, p != nil); err != nil {
		return math.NaN(), err
	}
	return e.particleEnergy(c, p), nil
}

func (e *ClusterEval) particleEnergy(c *Cluster, p *TruthParticle) float64 {
	cache := e.ev.cache.particleEnergy
	key := clusterParticle{c, p}
	if v, ok := lookup(e, cache, QueryParticleEnergy, key); ok {
		return v
	}

	energy := 0.0
	for h := range e.truthHitsOf(c).All() {
		if e.resolver.IsFromParticle(h, p) {
			energy += h.Edep
		}
	}

	cache.Put(key, energy)
	return energy
}

// TruthHitEnergy returns the energy in c from truth hits sharing h's ID.
// Normally this is h.Edep or 0; duplicate IDs are summed.
func (e *ClusterEval) TruthHitEnergy(c *Cluster, h *TruthHit) (float64, error) {
	if err := e.precheck("TruthHitEnergy", c != nil, h != nil); err != nil {
		return math.NaN(), err
	}
	return e.truthHitEnergy(c, h), nil
}

func (e *ClusterEval) truthHitEnergy(c *Cluster, h *TruthHit) float64 {
	cache := e.ev.cache.truthHitEnergy
	key := clusterHit{c, h}
	if v, ok := lookup(e, cache, QueryTruthHitEnergy, key); ok {
		return v
	}

	energy := 0.0
	for candidate := range e.truthHitsOf(c).All() {
		if candidate.ID != h.ID {
			continue
		}
		energy += candidate.Edep
	}

	cache.Put(key, energy)
	return energy
}
