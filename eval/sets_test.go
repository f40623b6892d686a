package eval

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTruthHitSet_OrdersByIDThenInsertion(t *testing.T) {
	// GIVEN hits inserted out of order, two sharing an ID
	a := &TruthHit{ID: 5}
	b := &TruthHit{ID: 2}
	c := &TruthHit{ID: 5}
	d := &TruthHit{ID: 9}

	// WHEN they are added to a set
	s := NewTruthHitSet(a, b, c, d)

	// THEN iteration is by ID, equal IDs in insertion order
	assert.Equal(t, []*TruthHit{b, a, c, d}, s.Items())
	assert.Same(t, a, s.Items()[1])
	assert.Same(t, c, s.Items()[2])
}

func TestTruthHitSet_DeduplicatesByReference(t *testing.T) {
	h := &TruthHit{ID: 1}
	s := NewTruthHitSet(h, h, nil)

	assert.Equal(t, 1, s.Len())
	assert.True(t, s.Contains(h))
	assert.False(t, s.Contains(&TruthHit{ID: 1}), "membership is by reference")
}

func TestClusterSet_ItemsIsACopy(t *testing.T) {
	s := NewClusterSet(&Cluster{ID: 2}, &Cluster{ID: 1})
	items := s.Items()
	items[0] = nil

	assert.Equal(t, uint64(1), s.Items()[0].ID)
}

func TestParticleSet_AllStopsEarly(t *testing.T) {
	s := NewParticleSet(&TruthParticle{TrackID: 3}, &TruthParticle{TrackID: 1}, &TruthParticle{TrackID: 2})
	var seen []int
	for p := range s.All() {
		seen = append(seen, p.TrackID)
		if len(seen) == 2 {
			break
		}
	}
	assert.Equal(t, []int{1, 2}, seen)
}
