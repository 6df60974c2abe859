package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v2"
)

// Step outcomes understood in scenario files.
const (
	StepPass  = "pass"
	StepAbort = "abort"
	StepFail  = "fail" // non-retryable failure
	// "fail:<kind>" fails with an error matching the named kind.
)

// Scenario scripts the outcome of every attempt of a simulated run.
type Scenario struct {
	Method string          `yaml:"method"`
	Policy PolicyConfig    `yaml:"policy"`
	Tuples []ScenarioTuple `yaml:"tuples"`
}

// ScenarioTuple is one tuple and the outcome of each attempt. Attempts past
// the end of Outcomes pass.
type ScenarioTuple struct {
	Args     []any    `yaml:"args"`
	Outcomes []string `yaml:"outcomes"`
}

// LoadScenario reads a scenario file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	var sc Scenario
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &sc); err != nil {
		return nil, fmt.Errorf("failed to parse scenario file: %w", err)
	}
	if sc.Method == "" {
		sc.Method = "Simulated"
	}
	for i, tup := range sc.Tuples {
		for _, step := range tup.Outcomes {
			if err := validateStep(step); err != nil {
				return nil, fmt.Errorf("tuple %d: %w", i, err)
			}
		}
	}
	sc.Policy.applyDefaults()
	return &sc, nil
}

func validateStep(step string) error {
	switch {
	case step == StepPass, step == StepAbort, step == StepFail:
		return nil
	case strings.HasPrefix(step, StepFail+":") && len(step) > len(StepFail)+1:
		return nil
	}
	return fmt.Errorf("unknown outcome %q", step)
}

// Args returns the argument lists of the scenario in order.
func (sc *Scenario) Args() [][]any {
	out := make([][]any, len(sc.Tuples))
	for i, tup := range sc.Tuples {
		out[i] = tup.Args
	}
	return out
}
