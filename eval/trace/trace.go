package trace

// TraceLevel controls the verbosity of decision tracing.
type TraceLevel string

const (
	// TraceLevelNone disables tracing.
	TraceLevelNone TraceLevel = "none"
	// TraceLevelDecisions captures every best-cluster and max-particle selection.
	TraceLevelDecisions TraceLevel = "decisions"
)

var validTraceLevels = map[TraceLevel]bool{
	TraceLevelNone:      true,
	TraceLevelDecisions: true,
	"":                  true, // empty defaults to none
}

// IsValidTraceLevel returns true if the given level string is a recognized trace level.
func IsValidTraceLevel(level string) bool {
	return validTraceLevels[TraceLevel(level)]
}

// MatchTrace collects selection records across events.
type MatchTrace struct {
	Level        TraceLevel
	BestClusters []BestClusterRecord
	MaxParticles []MaxParticleRecord
}

// NewMatchTrace creates a MatchTrace ready for recording. It returns nil for
// TraceLevelNone so callers can skip recording with a nil check.
func NewMatchTrace(level TraceLevel) *MatchTrace {
	if level == TraceLevelNone || level == "" {
		return nil
	}
	return &MatchTrace{
		Level:        level,
		BestClusters: make([]BestClusterRecord, 0),
		MaxParticles: make([]MaxParticleRecord, 0),
	}
}

// RecordBestCluster appends a best-cluster decision.
func (mt *MatchTrace) RecordBestCluster(record BestClusterRecord) {
	mt.BestClusters = append(mt.BestClusters, record)
}

// RecordMaxParticle appends a max-particle decision.
func (mt *MatchTrace) RecordMaxParticle(record MaxParticleRecord) {
	mt.MaxParticles = append(mt.MaxParticles, record)
}
