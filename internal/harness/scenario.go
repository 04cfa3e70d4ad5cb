package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Scenario is one query case loaded from YAML.
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Fixture     string         `yaml:"fixture"`
	Criteria    map[string]any `yaml:"criteria"`
	Expect      Expect         `yaml:"expect"`
}

// Expect lists what a scenario checks. Unset fields are not checked.
type Expect struct {
	IDs          []int64  `yaml:"ids"`
	Count        *int64   `yaml:"count"`
	First        *int64   `yaml:"first"`
	Conditions   []string `yaml:"conditions"`
	ShortCircuit *bool    `yaml:"shortCircuit"`
	Error        string   `yaml:"error"`
}

func (e Expect) empty() bool {
	return e.IDs == nil && e.Count == nil && e.First == nil &&
		e.Conditions == nil && e.ShortCircuit == nil && e.Error == ""
}

// Error kinds a scenario can expect.
const (
	ErrUnknownCriterion       = "unknown_criterion"
	ErrInvalidValue           = "invalid_value"
	ErrExecutionFailure       = "execution_failure"
	ErrMaterializationFailure = "materialization_failure"
)

var errorKinds = map[string]bool{
	ErrUnknownCriterion:       true,
	ErrInvalidValue:           true,
	ErrExecutionFailure:       true,
	ErrMaterializationFailure: true,
}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
// A relative fixture path is resolved against the file's directory.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // catches "expects:" vs "expect:"
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if scenario.Fixture != "" && !filepath.IsAbs(scenario.Fixture) {
		scenario.Fixture = filepath.Join(filepath.Dir(path), scenario.Fixture)
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
	if s.Fixture != "" {
		if _, err := os.Stat(s.Fixture); os.IsNotExist(err) {
			return fmt.Errorf("fixture file not found: %s", s.Fixture)
		}
	}
	if s.Criteria == nil {
		s.Criteria = map[string]any{}
	}

	e := s.Expect
	if e.empty() {
		return fmt.Errorf("expect must check at least one thing")
	}
	if e.Error != "" {
		if !errorKinds[e.Error] {
			return fmt.Errorf("expect.error: unknown error kind %q", e.Error)
		}
		if e.IDs != nil || e.Count != nil || e.First != nil {
			return fmt.Errorf("expect.error cannot be combined with ids, count or first")
		}
	}
	if e.Count != nil && *e.Count < 0 {
		return fmt.Errorf("expect.count must be non-negative")
	}
	return nil
}
