package amplifier

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/ceranco/intcode/internal/intcode"
	"github.com/ceranco/intcode/internal/stream"
)

// DriveValue is pushed onto stage 0's input after its phase setting.
const DriveValue = 0

// Network runs one program on every stage of a topology.
//
// A Network is safe for concurrent use: each Evaluate builds its own streams
// and machines over a fresh clone of the program.
type Network struct {
	program intcode.Memory
	topo    Topology
	logger  *slog.Logger
}

// NewNetwork creates a network running program on every stage of topo.
// The program is copied.
func NewNetwork(program intcode.Memory, topo Topology, opts ...Option) (*Network, error) {
	if len(program) == 0 {
		return nil, fmt.Errorf("empty program")
	}
	if topo.Stages() < 1 {
		return nil, fmt.Errorf("topology has no stages")
	}

	cfg := newOptions(opts)
	return &Network{
		program: program.Clone(),
		topo:    topo,
		logger:  cfg.logger,
	}, nil
}

// Topology returns the network's wiring.
func (n *Network) Topology() Topology {
	return n.topo
}

// Evaluate runs the network once with the given phase settings and returns
// the last value the final stage wrote.
//
// Each stage's input stream is seeded with its phase, and stage 0's with
// DriveValue after it. A cyclic topology runs one goroutine per stage; an
// open one runs its stages one after another in dependency order.
//
// A stage that halts has its output stream closed, so a downstream stage
// that asks for more input than will ever arrive faults with
// INPUT_EXHAUSTED. In a cyclic topology the first fault cancels the
// remaining stages.
func (n *Network) Evaluate(ctx context.Context, phases []int64) (int64, error) {
	stages := n.topo.Stages()
	if len(phases) != stages {
		return 0, fmt.Errorf("want %d phase settings, got %d", stages, len(phases))
	}
	phases = slices.Clone(phases)

	inputs := make([]*stream.Channel, stages)
	for i := range inputs {
		inputs[i] = stream.NewChannel(phases[i])
	}
	if err := inputs[0].Push(DriveValue); err != nil {
		return 0, err
	}

	terminal := stream.NewChannel()
	outputs := make([]*stream.Channel, stages)
	machines := make([]*intcode.Machine, stages)
	fed := make([]bool, stages)
	for _, e := range n.topo.Edges() {
		if e.To == External {
			outputs[e.From] = terminal
		} else {
			outputs[e.From] = inputs[e.To]
			fed[e.To] = true
		}
		machines[e.From] = intcode.New(n.program.Clone(), inputs[e.From], outputs[e.From],
			intcode.WithLogger(n.logger),
			intcode.WithName(fmt.Sprintf("stage-%d", e.From)),
		)
	}
	// Inputs no stage writes to hold only their seeds.
	for i, ok := range fed {
		if !ok {
			_ = inputs[i].Close()
		}
	}

	// In a ring the final stage writes to stage 0's input, which already
	// holds that stage's seeds.
	result := outputs[stages-1]
	seeded := result.Pushed()

	var err error
	if n.topo.HasCycle() {
		err = runConcurrent(ctx, machines, outputs, phases)
	} else {
		err = n.runSequential(ctx, machines, outputs, phases)
	}
	if err != nil {
		return 0, err
	}

	if result.Pushed() == seeded {
		return 0, &NetworkFault{Phases: phases, Stage: stages - 1, Err: ErrNoOutput}
	}
	last, _ := result.Last()
	n.logger.Debug("network evaluated",
		"phases", phases,
		"output", last,
		"unread", result.Len(),
	)
	return last, nil
}

func (n *Network) runSequential(ctx context.Context, machines []*intcode.Machine, outputs []*stream.Channel, phases []int64) error {
	order, err := n.topo.Order()
	if err != nil {
		return err
	}

	for _, i := range order {
		_, runErr := machines[i].RunOnce(ctx)
		_ = outputs[i].Close()
		if runErr != nil {
			return &NetworkFault{Phases: phases, Stage: i, Err: runErr}
		}
	}
	return nil
}

func runConcurrent(ctx context.Context, machines []*intcode.Machine, outputs []*stream.Channel, phases []int64) error {
	g, gctx := errgroup.WithContext(ctx)
	for i, m := range machines {
		g.Go(func() error {
			if _, err := m.RunOnce(gctx); err != nil {
				return &NetworkFault{Phases: phases, Stage: i, Err: err}
			}
			return outputs[i].Close()
		})
	}
	return g.Wait()
}

type options struct {
	workers  int
	observer func(Evaluation)
	logger   *slog.Logger
}

// Option configures a Network or a Search.
type Option func(*options)

// WithWorkers evaluates up to n permutations at once during a Search.
// Values below 1 mean 1.
func WithWorkers(n int) Option {
	return func(o *options) { o.workers = max(n, 1) }
}

// WithObserver calls fn with every evaluation of a Search, in enumeration
// order, from the goroutine that called Search.
func WithObserver(fn func(Evaluation)) Option {
	return func(o *options) { o.observer = fn }
}

// WithLogger sets the logger for the network, its machines and searches.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

func newOptions(opts []Option) options {
	o := options{
		workers: 1,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
