// Package harness runs Intcode scenarios described in YAML.
//
// # Scenario Format
//
// A scenario runs one program either on a single machine:
//
//	name: equal_to_eight
//	description: "Position-mode comparison against 8"
//	program: "3,9,8,9,10,9,4,9,99,-1,8"
//	input: [8]
//	expect:
//	  output: [1]
//
// or as an amplifier network search:
//
//	name: chain_search
//	description: "Best phase order for a five-stage chain"
//	program_file: programs/amp.txt
//	network:
//	  stages: 5
//	  expect_output: 43210
//	  expect_phases: [4, 3, 2, 1, 0]
//
// program_file is resolved relative to the scenario file. noun and verb,
// when given, are written to addresses 1 and 2 before the run.
//
// # Expectations
//
//   - output: the exact sequence of values written
//   - memory: a prefix of the final memory
//   - memory_at: individual addresses of the final memory
//   - fault: the fault code the run must end with
//
// A run that faults without an expected fault fails the scenario.
//
// # Golden Traces
//
// RunWithGolden compares the run's trace against
// testdata/golden/<name>.golden. Regenerate with:
//
//	go test ./internal/harness -update
package harness
