package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/phasekit/phase/internal/engine"
)

// Scenario defines a scripted machine run.
type Scenario struct {
	// Name uniquely identifies this scenario. Used as the golden file name.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Machine is the path to the CUE machine definition.
	// Relative paths resolve against the scenario file location.
	Machine string `yaml:"machine"`

	// Ticks is the flush-by-flush script. Each entry is one tick.
	Ticks []TickStep `yaml:"ticks"`

	// RunToken is an optional fixed run token for journal recording.
	// If empty, recording generates one.
	RunToken string `yaml:"run_token,omitempty"`
}

// TickStep scripts one tick: stage writes, clears and triggers, flush once,
// then check expectations.
type TickStep struct {
	// Writes maps state keys to values staged via SetNext before the flush.
	Writes map[string]string `yaml:"writes,omitempty"`

	// Clears lists state keys whose next value is staged absent.
	Clears []string `yaml:"clears,omitempty"`

	// Triggers maps state keys to a trigger name: refresh, insert or remove.
	Triggers map[string]string `yaml:"triggers,omitempty"`

	// Expect maps state keys to the transition expected at this tick's
	// flush. Keys not listed are not checked.
	Expect map[string]ExpectClause `yaml:"expect,omitempty"`
}

// ExpectClause specifies the expected transition for one state.
// Old and New are subset checks: omitted fields are not compared.
type ExpectClause struct {
	// Kind is the expected transition kind (required):
	// enter, exit, transition, refresh or unchanged.
	Kind string `yaml:"kind"`

	// Old is the expected value before the flush.
	Old *string `yaml:"old,omitempty"`

	// New is the expected value after the flush.
	New *string `yaml:"new,omitempty"`
}

// LoadScenario reads and parses a scenario YAML file, resolving the machine
// path relative to the scenario file. Returns an error if the file is
// malformed, contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if scenario.Machine != "" && !filepath.IsAbs(scenario.Machine) {
		scenario.Machine = filepath.Join(filepath.Dir(path), scenario.Machine)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if s.Machine == "" {
		return fmt.Errorf("machine is required")
	}
	if _, err := os.Stat(s.Machine); os.IsNotExist(err) {
		return fmt.Errorf("machine file not found: %s", s.Machine)
	}

	if len(s.Ticks) == 0 {
		return fmt.Errorf("ticks list is required and must be non-empty")
	}

	for i, tick := range s.Ticks {
		for key, trigger := range tick.Triggers {
			if _, ok := engine.TriggerFromString(trigger); !ok {
				return fmt.Errorf("ticks[%d].triggers.%s: unknown trigger %q", i, key, trigger)
			}
		}
		for key, expect := range tick.Expect {
			if expect.Kind == "" {
				return fmt.Errorf("ticks[%d].expect.%s: kind is required", i, key)
			}
			if _, ok := engine.KindFromString(expect.Kind); !ok {
				return fmt.Errorf("ticks[%d].expect.%s: unknown kind %q", i, key, expect.Kind)
			}
		}
	}

	return nil
}
