package eval

import (
	"bytes"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/svtx-eval/clustereval/eval/trace"
)

// DefaultZWindow is the half-width, in position units, of the z window used by
// ClustersFromTruthHit. A truth hit whose matching cluster lies further away in
// z is not found.
const DefaultZWindow = 5.0

// DefaultLayers is the number of tracker layers given pre-allocated index buckets.
const DefaultLayers = 47

// Config holds evaluator options, loadable from YAML.
type Config struct {
	Strict       bool    `yaml:"strict"`        // panic on missing context or nil arguments
	Verbosity    int     `yaml:"verbosity"`     // >0 reports errors at Close, >1 always reports
	CacheEnabled bool    `yaml:"cache_enabled"` // memoize queries within an event
	ZWindow      float64 `yaml:"z_window"`
	Layers       uint    `yaml:"layers"`
	Trace        string  `yaml:"trace"`
}

// DefaultConfig returns the evaluator defaults.
func DefaultConfig() Config {
	return Config{
		Verbosity:    1,
		CacheEnabled: true,
		ZWindow:      DefaultZWindow,
		Layers:       DefaultLayers,
		Trace:        string(trace.TraceLevelNone),
	}
}

// LoadConfig reads a YAML config file over DefaultConfig. Unknown keys are
// rejected so typos surface as errors.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading eval config: %w", err)
	}
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("parsing eval config: %w", err)
	}
	return cfg, nil
}

// Validate checks option ranges.
func (c Config) Validate() error {
	if math.IsNaN(c.ZWindow) || math.IsInf(c.ZWindow, 0) {
		return fmt.Errorf("z_window must be a finite number, got %f", c.ZWindow)
	}
	if c.ZWindow < 0 {
		return fmt.Errorf("z_window must be non-negative, got %f", c.ZWindow)
	}
	if c.Layers == 0 {
		return fmt.Errorf("layers must be positive")
	}
	if c.Verbosity < 0 {
		return fmt.Errorf("verbosity must be non-negative, got %d", c.Verbosity)
	}
	if !trace.IsValidTraceLevel(c.Trace) {
		return fmt.Errorf("unknown trace level %q; valid: none, decisions", c.Trace)
	}
	return nil
}
