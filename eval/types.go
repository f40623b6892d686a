package eval

import "fmt"

// TruthHit is a simulated energy deposit in one detector layer.
type TruthHit struct {
	ID      uint64
	TrackID int // originating particle
	Layer   uint
	Edep    float64
	Z       float64 // exit-point z, used for spatial windowing
}

func (h *TruthHit) String() string {
	return fmt.Sprintf("g4hit(%d, layer=%d, edep=%g)", h.ID, h.Layer, h.Edep)
}

// TruthParticle is a simulated particle. Several records may alias the same
// physical particle; compare them with TruthResolver.SameParticle.
type TruthParticle struct {
	TrackID   int
	PrimaryID int
	PID       int
}

func (p *TruthParticle) String() string {
	return fmt.Sprintf("particle(%d, pid=%d)", p.TrackID, p.PID)
}

// DetectorHit is a digitized hit referenced by a Cluster.
type DetectorHit struct {
	ID    uint64
	Layer uint
}

// Cluster is a reconstructed position measurement built from one or more
// detector hits. Clusters are read-only for the lifetime of an event.
type Cluster struct {
	ID    uint64
	Layer uint
	Z     float64
	Hits  []uint64 // DetectorHit keys, in reconstruction order
}

func (c *Cluster) String() string {
	return fmt.Sprintf("cluster(%d, layer=%d, z=%g)", c.ID, c.Layer, c.Z)
}
