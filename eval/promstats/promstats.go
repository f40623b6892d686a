// Package promstats exports ClusterEval instrumentation as Prometheus metrics.
package promstats

import (
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"github.com/svtx-eval/clustereval/eval"
)

// Stats implements eval.Metrics with Prometheus collectors.
type Stats struct {
	cacheLookups *prometheus.CounterVec
	errors       *prometheus.CounterVec
	indexBuilds  prometheus.Counter
	indexedSize  prometheus.Histogram
	events       prometheus.Counter
}

// New creates Stats and registers its collectors on reg.
func New(reg prometheus.Registerer) *Stats {
	s := &Stats{
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "clustereval_cache_lookups_total",
			Help: "Memo lookups by query and outcome",
		}, []string{"query", "result"}),

		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "clustereval_errors_total",
			Help: "Counted evaluation errors by kind",
		}, []string{"kind"}),

		indexBuilds: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "clustereval_index_builds_total",
			Help: "Spatial index builds",
		}),

		indexedSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "clustereval_index_clusters",
			Help:    "Clusters per spatial index build",
			Buckets: prometheus.ExponentialBuckets(1, 4, 8),
		}),

		events: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "clustereval_events_total",
			Help: "Events bound to the evaluator",
		}),
	}

	reg.MustRegister(
		s.cacheLookups,
		s.errors,
		s.indexBuilds,
		s.indexedSize,
		s.events,
	)
	return s
}

// CacheLookup implements eval.Metrics.
func (s *Stats) CacheLookup(query string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	s.cacheLookups.WithLabelValues(query, result).Inc()
}

// Error implements eval.Metrics.
func (s *Stats) Error(kind eval.ErrorKind) {
	s.errors.WithLabelValues(string(kind)).Inc()
}

// IndexBuilt implements eval.Metrics.
func (s *Stats) IndexBuilt(n int) {
	s.indexBuilds.Inc()
	s.indexedSize.Observe(float64(n))
}

// EventStarted implements eval.Metrics.
func (s *Stats) EventStarted() { s.events.Inc() }

// CacheHitRatio returns hits / (hits + misses) over all queries, or 0 with no lookups.
func (s *Stats) CacheHitRatio() float64 {
	var hits, total float64
	ch := make(chan prometheus.Metric)
	go func() {
		s.cacheLookups.Collect(ch)
		close(ch)
	}()
	for m := range ch {
		var pb dto.Metric
		if err := m.Write(&pb); err != nil {
			continue
		}
		v := pb.GetCounter().GetValue()
		total += v
		for _, lp := range pb.GetLabel() {
			if lp.GetName() == "result" && lp.GetValue() == "hit" {
				hits += v
			}
		}
	}
	if total == 0 {
		return 0
	}
	return hits / total
}

var _ eval.Metrics = (*Stats)(nil)
