package tableau

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config bundles the reasoning flags spec.md §6 names ("Setting
// reasoning flags: absorption order string, ToDo priority string,
// verbose toggle, test-timeout (seconds), lazy vs eager blocking,
// semantic-branching, backjumping, anywhere-blocking"), loadable from
// YAML to match the retrieval pack's configuration convention
// (theRebelliousNerd-codenerd and the nomad CLI both configure this
// way; see SPEC_FULL.md §3).
type Config struct {
	// AbsorptionOrder is the rewrite-letter order absorption.go applies
	// until fixed point (default matches spec §4.3's recommendation).
	AbsorptionOrder string `yaml:"absorptionOrder"`

	// ToDoPriority is the six/seven-letter regular-class order todo.go
	// scans after the always-first ID/NN classes.
	ToDoPriority string `yaml:"todoPriority"`

	// Verbose turns on development-mode zap logging.
	Verbose bool `yaml:"verbose"`

	// TestTimeout bounds a single SAT test; zero disables the timeout.
	TestTimeout time.Duration `yaml:"testTimeout"`

	// LazyBlocking is loaded and stored but not read by the engine: the
	// blocking status of a node is checked once, right after a generating
	// rule creates it (rules.go's tacticExists/tacticAtLeast), whatever
	// this flag says.
	LazyBlocking bool `yaml:"lazyBlocking"`

	// SemanticBranching is loaded and stored but not read by the engine:
	// a failed disjunct's negation is not added to the node's label when
	// the next disjunct is tried.
	SemanticBranching bool `yaml:"semanticBranching"`

	// Backjumping toggles dependency-directed backjumping; when false,
	// the engine always restores to the immediately preceding branch
	// point (chronological backtracking) regardless of clashSet.
	Backjumping bool `yaml:"backjumping"`

	// AnywhereBlocking selects anywhere-blocking (scan every earlier
	// node) over ancestor-only blocking. Fairness (NN-rule interaction,
	// spec §9 open question) forces ancestor-blocking regardless of this
	// flag whenever the ontology uses nominals.
	AnywhereBlocking bool `yaml:"anywhereBlocking"`
}

// DefaultConfig returns the recommended flag set named throughout
// spec.md (absorption order "BTESCNFRS" with the Split rule applied
// last, ToDo priority "IAOEFLG", LazyBlocking off, backjumping and
// SemanticBranching on, ancestor blocking).
func DefaultConfig() *Config {
	return &Config{
		AbsorptionOrder:   "BTESCNFRS",
		ToDoPriority:      DefaultPriority,
		TestTimeout:       0,
		LazyBlocking:      false,
		SemanticBranching: true,
		Backjumping:       true,
		AnywhereBlocking:  false,
	}
}

// LoadConfig reads a YAML config file, starting from DefaultConfig for
// any field the file omits.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
