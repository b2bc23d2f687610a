package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/ceranco/intcode/internal/amplifier"
	"github.com/ceranco/intcode/internal/intcode"
	"github.com/ceranco/intcode/internal/stream"
)

// Harness executes scenarios.
type Harness struct {
	logger *slog.Logger
}

// New creates a harness. A nil logger discards output.
func New(logger *slog.Logger) *Harness {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Harness{logger: logger}
}

// Run executes a scenario with a quiet harness.
func Run(scenario *Scenario) (*Result, error) {
	return New(nil).Run(context.Background(), scenario)
}

// Run executes a scenario and checks its expectations.
//
// The returned error is reserved for scenarios that cannot run at all,
// such as an unparsable program. Failed expectations are reported in
// Result.Errors.
func (h *Harness) Run(ctx context.Context, scenario *Scenario) (*Result, error) {
	image, err := scenario.Image()
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", scenario.Name, err)
	}

	result := NewResult(scenario.Name)
	if scenario.Network != nil {
		err = h.runNetwork(ctx, scenario, image, result)
	} else {
		err = h.runMachine(ctx, scenario, image, result)
	}
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", scenario.Name, err)
	}

	h.logger.Info("scenario finished",
		"scenario", scenario.Name,
		"pass", result.Pass,
		"errors", len(result.Errors),
	)
	return result, nil
}

func (h *Harness) runMachine(ctx context.Context, s *Scenario, image intcode.Memory, result *Result) error {
	in := stream.NewChannel(s.Input...)
	_ = in.Close()
	out := stream.NewChannel()

	m := intcode.New(image, in, out, intcode.WithLogger(h.logger), intcode.WithName(s.Name))
	if s.Noun != nil || s.Verb != nil {
		mem := m.Memory()
		noun, verb := valueOr(s.Noun, mem, 1), valueOr(s.Verb, mem, 2)
		if err := m.Set(noun, verb); err != nil {
			return err
		}
	}

	mem, runErr := m.RunOnce(ctx)
	_ = out.Close()

	exp := s.Expect
	result.Trace.State = m.State().String()
	result.Trace.Outputs = out.Values()
	if runErr != nil {
		result.Trace.Fault = string(intcode.FaultCodeOf(runErr))
	}
	if n := len(exp.Memory); n > 0 {
		result.Trace.Memory = slices.Clone(mem[:min(n, len(mem))])
	}

	switch {
	case runErr != nil && exp.Fault == "":
		result.AddError(fmt.Sprintf("unexpected fault: %v", runErr))
	case exp.Fault != "" && intcode.FaultCodeOf(runErr) != exp.Fault:
		result.AddError(fmt.Sprintf("fault: got %q, want %q", intcode.FaultCodeOf(runErr), exp.Fault))
	}

	if exp.Output != nil && !slices.Equal(result.Trace.Outputs, exp.Output) {
		result.AddError(fmt.Sprintf("output: got %v, want %v", result.Trace.Outputs, exp.Output))
	}
	if exp.Memory != nil && !slices.Equal(result.Trace.Memory, exp.Memory) {
		result.AddError(fmt.Sprintf("memory prefix: got %v, want %v", result.Trace.Memory, exp.Memory))
	}

	addrs := make([]int, 0, len(exp.MemoryAt))
	for addr := range exp.MemoryAt {
		addrs = append(addrs, addr)
	}
	slices.Sort(addrs)
	for _, addr := range addrs {
		want := exp.MemoryAt[addr]
		if addr >= len(mem) {
			result.AddError(fmt.Sprintf("memory[%d]: out of range (size %d)", addr, len(mem)))
			continue
		}
		if mem[addr] != want {
			result.AddError(fmt.Sprintf("memory[%d]: got %d, want %d", addr, mem[addr], want))
		}
	}
	return nil
}

func (h *Harness) runNetwork(ctx context.Context, s *Scenario, image intcode.Memory, result *Result) error {
	n := s.Network
	res, err := amplifier.Search(ctx, image, n.Stages, n.Feedback,
		amplifier.WithWorkers(n.Workers),
		amplifier.WithLogger(h.logger),
	)
	result.Trace.State = "searched"
	if res == nil {
		return err
	}
	if err != nil {
		result.AddError(fmt.Sprintf("search: %v", err))
		return nil
	}

	result.Trace.Best = &Best{
		Output:    res.Output,
		Phases:    res.Phases,
		Evaluated: res.Evaluated,
		Faulted:   len(res.Faults),
	}

	if n.ExpectOutput != nil && res.Output != *n.ExpectOutput {
		result.AddError(fmt.Sprintf("best output: got %d, want %d", res.Output, *n.ExpectOutput))
	}
	if n.ExpectPhases != nil && !slices.Equal(res.Phases, n.ExpectPhases) {
		result.AddError(fmt.Sprintf("best phases: got %v, want %v", res.Phases, n.ExpectPhases))
	}
	return nil
}

// valueOr returns *v, or mem[addr] when v is nil.
func valueOr(v *int64, mem intcode.Memory, addr int) int64 {
	if v != nil {
		return *v
	}
	if addr < len(mem) {
		return mem[addr]
	}
	return 0
}
