// Package event holds in-memory per-event stores, the hit-level truth
// resolver built on them, and the YAML event-file loader.
package event

import (
	"sort"

	"github.com/svtx-eval/clustereval/eval"
)

// ClusterMap is the reconstructed-cluster store of an event.
type ClusterMap struct {
	clusters map[uint64]*eval.Cluster
	sorted   []*eval.Cluster
}

// NewClusterMap returns an empty cluster store.
func NewClusterMap() *ClusterMap {
	return &ClusterMap{clusters: make(map[uint64]*eval.Cluster)}
}

// Insert adds or replaces the cluster with c.ID.
func (m *ClusterMap) Insert(c *eval.Cluster) {
	m.clusters[c.ID] = c
	m.sorted = nil
}

// Get returns the cluster with the given ID.
func (m *ClusterMap) Get(id uint64) (*eval.Cluster, bool) {
	c, ok := m.clusters[id]
	return c, ok
}

// Len returns the number of clusters.
func (m *ClusterMap) Len() int { return len(m.clusters) }

// Clusters returns every cluster ordered by ID. The slice is a copy; the
// sorted order itself is cached until the next Insert.
func (m *ClusterMap) Clusters() []*eval.Cluster {
	if m.sorted == nil {
		m.sorted = make([]*eval.Cluster, 0, len(m.clusters))
		for _, c := range m.clusters {
			m.sorted = append(m.sorted, c)
		}
		sort.Slice(m.sorted, func(i, j int) bool { return m.sorted[i].ID < m.sorted[j].ID })
	}
	return append([]*eval.Cluster(nil), m.sorted...)
}

// HitMap is the detector-hit store of an event, including the links from each
// detector hit to the truth hits that produced it.
type HitMap struct {
	hits  map[uint64]*eval.DetectorHit
	links map[uint64][]uint64
}

// NewHitMap returns an empty hit store.
func NewHitMap() *HitMap {
	return &HitMap{
		hits:  make(map[uint64]*eval.DetectorHit),
		links: make(map[uint64][]uint64),
	}
}

// Insert adds a detector hit and the IDs of its truth hits.
func (m *HitMap) Insert(h *eval.DetectorHit, truthHitIDs ...uint64) {
	m.hits[h.ID] = h
	m.links[h.ID] = append([]uint64(nil), truthHitIDs...)
}

// Hit implements eval.HitStore.
func (m *HitMap) Hit(id uint64) (*eval.DetectorHit, bool) {
	h, ok := m.hits[id]
	return h, ok
}

// TruthHitIDs returns the truth hit IDs linked to a detector hit.
func (m *HitMap) TruthHitIDs(id uint64) ([]uint64, bool) {
	ids, ok := m.links[id]
	return ids, ok
}

// Len returns the number of detector hits.
func (m *HitMap) Len() int { return len(m.hits) }

// TruthInfo is the truth store of an event: particles and energy deposits.
type TruthInfo struct {
	particles map[int]*eval.TruthParticle
	hits      map[uint64]*eval.TruthHit
}

// NewTruthInfo returns an empty truth store.
func NewTruthInfo() *TruthInfo {
	return &TruthInfo{
		particles: make(map[int]*eval.TruthParticle),
		hits:      make(map[uint64]*eval.TruthHit),
	}
}

// AddParticle adds or replaces the particle with p.TrackID.
func (t *TruthInfo) AddParticle(p *eval.TruthParticle) { t.particles[p.TrackID] = p }

// AddTruthHit adds or replaces the truth hit with h.ID.
func (t *TruthInfo) AddTruthHit(h *eval.TruthHit) { t.hits[h.ID] = h }

// Particle implements eval.TruthStore.
func (t *TruthInfo) Particle(trackID int) (*eval.TruthParticle, bool) {
	p, ok := t.particles[trackID]
	return p, ok
}

// TruthHit implements eval.TruthStore.
func (t *TruthInfo) TruthHit(id uint64) (*eval.TruthHit, bool) {
	h, ok := t.hits[id]
	return h, ok
}

// Particles returns every particle ordered by track ID.
func (t *TruthInfo) Particles() []*eval.TruthParticle {
	out := make([]*eval.TruthParticle, 0, len(t.particles))
	for _, p := range t.particles {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TrackID < out[j].TrackID })
	return out
}

// TruthHits returns every truth hit ordered by ID.
func (t *TruthInfo) TruthHits() []*eval.TruthHit {
	out := make([]*eval.TruthHit, 0, len(t.hits))
	for _, h := range t.hits {
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Event bundles the three stores of one event and resolves them by name.
// A nil store is reported as missing.
type Event struct {
	ID       int
	Clusters *ClusterMap
	Hits     *HitMap
	Truth    *TruthInfo
}

// New returns an event with empty stores.
func New(id int) *Event {
	return &Event{
		ID:       id,
		Clusters: NewClusterMap(),
		Hits:     NewHitMap(),
		Truth:    NewTruthInfo(),
	}
}

// Lookup implements eval.EventSource.
func (ev *Event) Lookup(name string) (any, bool) {
	switch name {
	case eval.ClusterStoreName:
		if ev.Clusters != nil {
			return ev.Clusters, true
		}
	case eval.HitStoreName:
		if ev.Hits != nil {
			return ev.Hits, true
		}
	case eval.TruthStoreName:
		if ev.Truth != nil {
			return ev.Truth, true
		}
	}
	return nil, false
}

var (
	_ eval.ClusterStore = (*ClusterMap)(nil)
	_ eval.HitStore     = (*HitMap)(nil)
	_ eval.TruthStore   = (*TruthInfo)(nil)
	_ eval.EventSource  = (*Event)(nil)
)
