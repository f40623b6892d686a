package event

import (
	"bytes"
	"fmt"
	"math"
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/svtx-eval/clustereval/eval"
)

// File is the top-level YAML event file.
type File struct {
	Events []Spec `yaml:"events"`
}

// Spec describes one event.
type Spec struct {
	ID           int               `yaml:"id"`
	Particles    []ParticleSpec    `yaml:"particles"`
	TruthHits    []TruthHitSpec    `yaml:"truth_hits"`
	DetectorHits []DetectorHitSpec `yaml:"detector_hits"`
	Clusters     []ClusterSpec     `yaml:"clusters"`
}

// ParticleSpec describes a truth particle.
type ParticleSpec struct {
	TrackID   int `yaml:"track_id"`
	PrimaryID int `yaml:"primary_id,omitempty"`
	PID       int `yaml:"pid,omitempty"`
}

// TruthHitSpec describes a truth energy deposit.
type TruthHitSpec struct {
	ID      uint64  `yaml:"id"`
	TrackID int     `yaml:"track_id"`
	Layer   uint    `yaml:"layer"`
	Edep    float64 `yaml:"edep"`
	Z       float64 `yaml:"z"`
}

// DetectorHitSpec describes a detector hit and its truth links.
type DetectorHitSpec struct {
	ID        uint64   `yaml:"id"`
	Layer     uint     `yaml:"layer"`
	TruthHits []uint64 `yaml:"truth_hits"`
}

// ClusterSpec describes a reconstructed cluster.
type ClusterSpec struct {
	ID    uint64   `yaml:"id"`
	Layer uint     `yaml:"layer"`
	Z     float64  `yaml:"z"`
	Hits  []uint64 `yaml:"hits"`
}

// LoadFile reads and builds every event in a YAML event file.
// Uses strict parsing: unrecognized keys are rejected.
func LoadFile(path string) ([]*Event, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading event file: %w", err)
	}
	return Parse(data)
}

// Parse builds events from YAML bytes.
func Parse(data []byte) ([]*Event, error) {
	var f File
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&f); err != nil {
		return nil, fmt.Errorf("parsing event file: %w", err)
	}
	events := make([]*Event, 0, len(f.Events))
	seen := make(map[int]bool, len(f.Events))
	for i := range f.Events {
		s := &f.Events[i]
		if seen[s.ID] {
			return nil, fmt.Errorf("event[%d]: duplicate event id %d", i, s.ID)
		}
		seen[s.ID] = true
		ev, err := s.Build()
		if err != nil {
			return nil, fmt.Errorf("event[%d]: %w", i, err)
		}
		events = append(events, ev)
	}
	return events, nil
}

// Build validates the spec and constructs its stores. Dangling references
// (a cluster naming an unknown detector hit, a truth hit naming an unknown
// particle) are kept and logged: the evaluator counts them as unresolved.
func (s *Spec) Build() (*Event, error) {
	ev := New(s.ID)

	for i, p := range s.Particles {
		if _, dup := ev.Truth.Particle(p.TrackID); dup {
			return nil, fmt.Errorf("particles[%d]: duplicate track_id %d", i, p.TrackID)
		}
		ev.Truth.AddParticle(&eval.TruthParticle{TrackID: p.TrackID, PrimaryID: p.PrimaryID, PID: p.PID})
	}

	for i, h := range s.TruthHits {
		if _, dup := ev.Truth.TruthHit(h.ID); dup {
			return nil, fmt.Errorf("truth_hits[%d]: duplicate id %d", i, h.ID)
		}
		if err := validateFinite(fmt.Sprintf("truth_hits[%d].z", i), h.Z); err != nil {
			return nil, err
		}
		if err := validateFinite(fmt.Sprintf("truth_hits[%d].edep", i), h.Edep); err != nil {
			return nil, err
		}
		if h.Edep < 0 {
			return nil, fmt.Errorf("truth_hits[%d].edep must be non-negative, got %f", i, h.Edep)
		}
		if _, ok := ev.Truth.Particle(h.TrackID); !ok {
			logrus.Debugf("event %d: truth hit %d references unknown particle %d", s.ID, h.ID, h.TrackID)
		}
		ev.Truth.AddTruthHit(&eval.TruthHit{ID: h.ID, TrackID: h.TrackID, Layer: h.Layer, Edep: h.Edep, Z: h.Z})
	}

	for i, d := range s.DetectorHits {
		if _, dup := ev.Hits.Hit(d.ID); dup {
			return nil, fmt.Errorf("detector_hits[%d]: duplicate id %d", i, d.ID)
		}
		ev.Hits.Insert(&eval.DetectorHit{ID: d.ID, Layer: d.Layer}, d.TruthHits...)
	}

	for i, c := range s.Clusters {
		if _, dup := ev.Clusters.Get(c.ID); dup {
			return nil, fmt.Errorf("clusters[%d]: duplicate id %d", i, c.ID)
		}
		if err := validateFinite(fmt.Sprintf("clusters[%d].z", i), c.Z); err != nil {
			return nil, err
		}
		for _, key := range c.Hits {
			if _, ok := ev.Hits.Hit(key); !ok {
				logrus.Debugf("event %d: cluster %d references unknown detector hit %d", s.ID, c.ID, key)
			}
		}
		ev.Clusters.Insert(&eval.Cluster{ID: c.ID, Layer: c.Layer, Z: c.Z, Hits: append([]uint64(nil), c.Hits...)})
	}
	return ev, nil
}

func validateFinite(name string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("%s must be a finite number, got %f", name, v)
	}
	return nil
}
