package eval

import (
	"cmp"
	"iter"
	"sort"
)

// orderedSet holds distinct references ordered by an identifier key. Membership
// is by reference, so two records sharing an identifier are both kept, in
// insertion order.
type orderedSet[T any, K cmp.Ordered] struct {
	items []*T
	index map[*T]struct{}
	key   func(*T) K
}

func newOrderedSet[T any, K cmp.Ordered](key func(*T) K) orderedSet[T, K] {
	return orderedSet[T, K]{index: make(map[*T]struct{}), key: key}
}

func (s *orderedSet[T, K]) add(v *T) bool {
	if v == nil {
		return false
	}
	if _, ok := s.index[v]; ok {
		return false
	}
	k := s.key(v)
	pos := sort.Search(len(s.items), func(i int) bool { return s.key(s.items[i]) > k })
	s.items = append(s.items, nil)
	copy(s.items[pos+1:], s.items[pos:])
	s.items[pos] = v
	s.index[v] = struct{}{}
	return true
}

// Len returns the number of elements.
func (s *orderedSet[T, K]) Len() int { return len(s.items) }

// Contains reports whether v itself (not an equal record) is in the set.
func (s *orderedSet[T, K]) Contains(v *T) bool {
	_, ok := s.index[v]
	return ok
}

// Items returns the elements in iteration order. The slice is a copy.
func (s *orderedSet[T, K]) Items() []*T {
	out := make([]*T, len(s.items))
	copy(out, s.items)
	return out
}

// All iterates the elements in order.
func (s *orderedSet[T, K]) All() iter.Seq[*T] {
	return func(yield func(*T) bool) {
		for _, v := range s.items {
			if !yield(v) {
				return
			}
		}
	}
}

// TruthHitSet is an ordered set of truth hits, iterated by hit ID.
type TruthHitSet struct {
	orderedSet[TruthHit, uint64]
}

// NewTruthHitSet returns a set holding hits.
func NewTruthHitSet(hits ...*TruthHit) *TruthHitSet {
	s := &TruthHitSet{newOrderedSet(func(h *TruthHit) uint64 { return h.ID })}
	for _, h := range hits {
		s.add(h)
	}
	return s
}

// ParticleSet is an ordered set of truth particles, iterated by track ID.
type ParticleSet struct {
	orderedSet[TruthParticle, int]
}

// NewParticleSet returns a set holding particles.
func NewParticleSet(particles ...*TruthParticle) *ParticleSet {
	s := &ParticleSet{newOrderedSet(func(p *TruthParticle) int { return p.TrackID })}
	for _, p := range particles {
		s.add(p)
	}
	return s
}

// ClusterSet is an ordered set of clusters, iterated by cluster ID.
type ClusterSet struct {
	orderedSet[Cluster, uint64]
}

// NewClusterSet returns a set holding clusters.
func NewClusterSet(clusters ...*Cluster) *ClusterSet {
	s := &ClusterSet{newOrderedSet(func(c *Cluster) uint64 { return c.ID })}
	for _, c := range clusters {
		s.add(c)
	}
	return s
}
