package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/ceranco/intcode/internal/intcode"
)

// Scenario is one Intcode run with its expected outcome.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Program is the program text. Exactly one of Program and ProgramFile
	// is set.
	Program string `yaml:"program,omitempty"`

	// ProgramFile is a path to the program, relative to the scenario file.
	ProgramFile string `yaml:"program_file,omitempty"`

	// Noun and Verb are written to addresses 1 and 2 before the run.
	Noun *int64 `yaml:"noun,omitempty"`
	Verb *int64 `yaml:"verb,omitempty"`

	// Input is fed to the machine; the stream is closed after it.
	Input []int64 `yaml:"input,omitempty"`

	// Expect checks a single-machine run. Exactly one of Expect and
	// Network is set.
	Expect *Expect `yaml:"expect,omitempty"`

	// Network runs an amplifier search instead.
	Network *NetworkCase `yaml:"network,omitempty"`
}

// Expect is the expected outcome of a single-machine run.
type Expect struct {
	Output   []int64           `yaml:"output,omitempty"`
	Memory   []int64           `yaml:"memory,omitempty"`
	MemoryAt map[int]int64     `yaml:"memory_at,omitempty"`
	Fault    intcode.FaultCode `yaml:"fault,omitempty"`
}

// NetworkCase is an amplifier search and its expected best result.
type NetworkCase struct {
	Stages       int     `yaml:"stages"`
	Feedback     bool    `yaml:"feedback,omitempty"`
	Workers      int     `yaml:"workers,omitempty"`
	ExpectOutput *int64  `yaml:"expect_output,omitempty"`
	ExpectPhases []int64 `yaml:"expect_phases,omitempty"`
}

// Image parses the scenario's program.
func (s *Scenario) Image() (intcode.Memory, error) {
	if s.ProgramFile != "" {
		return intcode.Load(s.ProgramFile)
	}
	return intcode.Parse(s.Program)
}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed, contains
// unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	scenario, err := ParseScenario(data)
	if err != nil {
		return nil, err
	}

	if scenario.ProgramFile != "" && !filepath.IsAbs(scenario.ProgramFile) {
		scenario.ProgramFile = filepath.Join(filepath.Dir(path), scenario.ProgramFile)
	}
	return scenario, nil
}

// ParseScenario parses scenario YAML. A program_file is left as written.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
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

	switch {
	case s.Program == "" && s.ProgramFile == "":
		return fmt.Errorf("one of program or program_file is required")
	case s.Program != "" && s.ProgramFile != "":
		return fmt.Errorf("program and program_file are mutually exclusive")
	}

	switch {
	case s.Expect == nil && s.Network == nil:
		return fmt.Errorf("one of expect or network is required")
	case s.Expect != nil && s.Network != nil:
		return fmt.Errorf("expect and network are mutually exclusive")
	}

	if n := s.Network; n != nil {
		if n.Stages < 1 {
			return fmt.Errorf("network.stages must be at least 1")
		}
		if n.Workers < 0 {
			return fmt.Errorf("network.workers must be non-negative")
		}
		if n.ExpectPhases != nil && len(n.ExpectPhases) != n.Stages {
			return fmt.Errorf("network.expect_phases has %d values, want %d", len(n.ExpectPhases), n.Stages)
		}
		if s.Noun != nil || s.Verb != nil || len(s.Input) > 0 {
			return fmt.Errorf("noun, verb and input do not apply to network scenarios")
		}
	}

	if e := s.Expect; e != nil {
		for addr := range e.MemoryAt {
			if addr < 0 {
				return fmt.Errorf("expect.memory_at: negative address %d", addr)
			}
		}
	}
	return nil
}
