package config

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"dxsim/domain/diagnostic"
	"dxsim/internal/errors"
	"dxsim/internal/validation"

	"gopkg.in/yaml.v3"
)

// Scenario is a saved run description, loaded from YAML.
//
//	population_size: 1000
//	conditions:
//	  flu: 0.12
//	  asthma: 0.05
//	test_condition: flu
//	sensitivity: 0.9
//	specificity: 0.8
//	seed: 42
//	replicates: 500
type Scenario struct {
	PopulationSize int                `yaml:"population_size" json:"population_size"`
	Conditions     map[string]float64 `yaml:"conditions" json:"conditions" validate:"required,min=1,dive,keys,required,endkeys"`
	TestCondition  string             `yaml:"test_condition" json:"test_condition" validate:"required"`
	Sensitivity    float64            `yaml:"sensitivity" json:"sensitivity" validate:"probability"`
	Specificity    float64            `yaml:"specificity" json:"specificity" validate:"probability"`
	Seed           uint64             `yaml:"seed,omitempty" json:"seed,omitempty"`
	Replicates     int                `yaml:"replicates,omitempty" json:"replicates,omitempty" validate:"omitempty,min=1,max=10000"`
}

// PopulationConfig returns the generator input the scenario describes.
// Population-level rules (size floor, rare conditions) are left to the
// generator so that its messages reach the caller unchanged.
func (s Scenario) PopulationConfig() diagnostic.PopulationConfig {
	return diagnostic.PopulationConfig{
		Size:       s.PopulationSize,
		Conditions: s.Conditions,
	}.Clone()
}

// LoadScenario reads and validates a YAML scenario file
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read scenario %s", path)
	}
	return ParseScenario(bytes.NewReader(data))
}

// ParseScenario decodes a scenario, rejecting unknown keys
func ParseScenario(r io.Reader) (*Scenario, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var s Scenario
	if err := dec.Decode(&s); err != nil {
		if err == io.EOF {
			return nil, errors.InvalidInput("scenario is empty")
		}
		return nil, errors.WithCode(err, errors.CodeInvalidInput, fmt.Sprintf("invalid scenario: %v", err))
	}
	if err := validation.Struct(s); err != nil {
		return nil, err
	}
	return &s, nil
}

// MarshalScenario renders s back to YAML
func MarshalScenario(s Scenario) ([]byte, error) {
	return yaml.Marshal(s)
}
