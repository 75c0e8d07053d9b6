package sim

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/nsfx-go/nsfx/sim/random"
	"github.com/nsfx-go/nsfx/sim/trace"
	"github.com/nsfx-go/nsfx/sim/traffic"
)

// Scenario describes one simulation run, loadable from a YAML file.
// Empty strings select defaults: the list scheduler, the xoroshiro128**
// engine and no packet tracing.
type Scenario struct {
	Name      string             `yaml:"name,omitempty"`
	Seed      int64              `yaml:"seed"`
	Engine    string             `yaml:"engine,omitempty"`
	Scheduler string             `yaml:"scheduler,omitempty"`
	Until     time.Duration      `yaml:"until,omitempty"` // 0 runs until no event is pending
	Trace     string             `yaml:"trace,omitempty"`
	Flows     []traffic.FlowSpec `yaml:"flows"`
}

// ValidSchedulers is the set of recognized scheduler names.
var ValidSchedulers = map[string]bool{"": true, "list": true, "heap": true}

// DefaultScheduler is used when a scenario names none.
const DefaultScheduler = "list"

// LoadScenario reads and parses a YAML scenario file.
// Uses strict parsing: unrecognized keys (typos) are rejected.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scenario: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses a YAML scenario.
func ParseScenario(data []byte) (*Scenario, error) {
	var sc Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&sc); err != nil {
		return nil, fmt.Errorf("parsing scenario: %w", err)
	}
	return &sc, nil
}

// Validate checks that all names and parameter ranges in the scenario are valid.
func (s *Scenario) Validate() error {
	if !ValidSchedulers[s.Scheduler] {
		return fmt.Errorf("unknown scheduler %q", s.Scheduler)
	}
	if !random.ValidEngines[s.Engine] {
		return fmt.Errorf("unknown engine %q", s.Engine)
	}
	if !trace.IsValidTraceLevel(s.Trace) {
		return fmt.Errorf("unknown trace level %q", s.Trace)
	}
	if s.Until < 0 {
		return fmt.Errorf("until must be non-negative, got %v", s.Until)
	}
	if len(s.Flows) == 0 {
		return fmt.Errorf("at least one flow required")
	}
	for i, f := range s.Flows {
		if err := f.Validate(); err != nil {
			if f.Name != "" {
				return fmt.Errorf("flows[%d] (%s): %w", i, f.Name, err)
			}
			return fmt.Errorf("flows[%d]: %w", i, err)
		}
	}
	return nil
}

// SchedulerName returns the effective scheduler kind.
func (s *Scenario) SchedulerName() string {
	if s.Scheduler == "" {
		return DefaultScheduler
	}
	return s.Scheduler
}

// EngineName returns the effective engine name.
func (s *Scenario) EngineName() string {
	if s.Engine == "" {
		return "xoroshiro128starstar"
	}
	return s.Engine
}
