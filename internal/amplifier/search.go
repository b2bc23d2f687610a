package amplifier

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/ceranco/intcode/internal/intcode"
)

// Evaluation is the outcome of running the network with one permutation.
type Evaluation struct {
	// Seq is the permutation's position in enumeration order, from 0.
	Seq int

	// Phases is the permutation.
	Phases []int64

	// Output is the network's result; meaningful only when Err is nil.
	Output int64

	// Err is the reason the evaluation was aborted, usually a *NetworkFault.
	Err error
}

// Result is the outcome of a Search.
type Result struct {
	// Output is the largest network output observed.
	Output int64

	// Phases is the first permutation, in enumeration order, that produced
	// Output.
	Phases []int64

	// Evaluated is the number of permutations run.
	Evaluated int

	// Faults holds every permutation that was aborted, in enumeration order.
	Faults []*NetworkFault
}

// Search runs program on a network of the given number of stages for every
// permutation of the topology's phase range and returns the largest output.
//
// Permutations that fault are recorded in Result.Faults and do not stop the
// search. If no permutation produces an output, Search returns an error
// wrapping ErrNoResult and every fault.
func Search(ctx context.Context, program intcode.Memory, stages int, feedback bool, opts ...Option) (*Result, error) {
	topo, err := NewTopology(stages, feedback)
	if err != nil {
		return nil, err
	}
	return SearchTopology(ctx, program, topo, opts...)
}

// SearchTopology is Search over an explicit topology.
func SearchTopology(ctx context.Context, program intcode.Memory, topo Topology, opts ...Option) (*Result, error) {
	cfg := newOptions(opts)
	net, err := NewNetwork(program, topo, WithLogger(cfg.logger))
	if err != nil {
		return nil, err
	}

	values := topo.PhaseRange()
	cfg.logger.Info("search starting",
		"stages", topo.Stages(),
		"feedback", topo.Feedback(),
		"permutations", Factorial(len(values)),
		"workers", cfg.workers,
	)
	start := time.Now()

	res := &Result{}
	found := false
	accept := func(ev Evaluation) {
		res.Evaluated++
		if ev.Err != nil {
			var nf *NetworkFault
			if !errors.As(ev.Err, &nf) {
				nf = &NetworkFault{Phases: ev.Phases, Stage: -1, Err: ev.Err}
			}
			res.Faults = append(res.Faults, nf)
		} else if !found || ev.Output > res.Output {
			found = true
			res.Output = ev.Output
			res.Phases = slices.Clone(ev.Phases)
		}
		cfg.logger.Debug("permutation evaluated",
			"seq", ev.Seq,
			"phases", ev.Phases,
			"output", ev.Output,
			"error", ev.Err,
		)
		if cfg.observer != nil {
			cfg.observer(ev)
		}
	}

	evaluate(ctx, net, values, cfg.workers, accept)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	cfg.logger.Info("search finished",
		"evaluated", res.Evaluated,
		"faulted", len(res.Faults),
		"output", res.Output,
		"phases", res.Phases,
		"elapsed", time.Since(start),
	)

	if !found {
		errs := make([]error, 0, len(res.Faults)+1)
		errs = append(errs, ErrNoResult)
		for _, f := range res.Faults {
			errs = append(errs, f)
		}
		return res, fmt.Errorf("search: %w", errors.Join(errs...))
	}
	return res, nil
}

// evaluate runs every permutation of values on a pool of workers and hands
// each evaluation to accept in enumeration order.
func evaluate(ctx context.Context, net *Network, values []int64, workers int, accept func(Evaluation)) {
	type job struct {
		seq    int
		phases []int64
	}
	jobs := make(chan job, workers*2)
	results := make(chan Evaluation, workers*2)

	// Workers
	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for j := range jobs {
				out, err := net.Evaluate(ctx, j.phases)
				select {
				case results <- Evaluation{Seq: j.seq, Phases: j.phases, Output: out, Err: err}:
				case <-ctx.Done():
					return
				}
			}
		}()
	}

	// Feed work
	go func() {
		defer close(jobs)
		seq := 0
		for p := range Permutations(values) {
			select {
			case jobs <- job{seq: seq, phases: p}:
			case <-ctx.Done():
				return
			}
			seq++
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	// Collect, re-establishing enumeration order.
	pending := make(map[int]Evaluation)
	next := 0
	for ev := range results {
		pending[ev.Seq] = ev
		for {
			e, ok := pending[next]
			if !ok {
				break
			}
			delete(pending, next)
			next++
			accept(e)
		}
	}
}
