package eval

import (
	"sort"

	"github.com/sirupsen/logrus"
)

// layerIndex buckets the clusters of an event by layer, each bucket sorted by
// z and then cluster ID. Clusters are immutable within an event, so the index
// is built once and never updated.
type layerIndex struct {
	buckets map[uint][]*Cluster
}

// buildLayerIndex pre-allocates empty buckets for layers [0, layers) so that a
// lookup on a known but empty layer yields an empty bucket.
func buildLayerIndex(clusters []*Cluster, layers uint) *layerIndex {
	idx := &layerIndex{buckets: make(map[uint][]*Cluster, layers)}
	for l := uint(0); l < layers; l++ {
		idx.buckets[l] = []*Cluster{}
	}
	for _, c := range clusters {
		if c == nil {
			continue
		}
		idx.buckets[c.Layer] = append(idx.buckets[c.Layer], c)
	}
	for _, b := range idx.buckets {
		sort.SliceStable(b, func(i, j int) bool {
			if b[i].Z != b[j].Z {
				return b[i].Z < b[j].Z
			}
			return b[i].ID < b[j].ID
		})
	}
	logrus.Debugf("built cluster layer index: %d clusters in %d layers", len(clusters), len(idx.buckets))
	return idx
}

// bucket returns the clusters on a layer in z order. Unknown layers yield nil.
func (idx *layerIndex) bucket(layer uint) []*Cluster {
	return idx.buckets[layer]
}

// window returns the clusters on layer with lo <= Z <= hi, in z order.
func (idx *layerIndex) window(layer uint, lo, hi float64) []*Cluster {
	b := idx.buckets[layer]
	start := sort.Search(len(b), func(i int) bool { return b[i].Z >= lo })
	end := sort.Search(len(b), func(i int) bool { return b[i].Z > hi })
	if start >= end {
		return nil
	}
	return b[start:end]
}
