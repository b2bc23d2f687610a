package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ceranco/intcode/internal/amplifier"
	"github.com/ceranco/intcode/internal/config"
	"github.com/ceranco/intcode/internal/intcode"
	"github.com/ceranco/intcode/internal/store"
)

// AmplifyOptions holds flags for the amplify command.
type AmplifyOptions struct {
	*RootOptions
	Stages   int
	Feedback bool
	Workers  int
	Config   string
	Database string

	// IDGenerator overrides the search ID generator (for testing).
	IDGenerator store.IDGenerator
}

// AmplifyResult is the JSON payload of the amplify command.
type AmplifyResult struct {
	SearchID  string  `json:"search_id,omitempty"`
	Output    int64   `json:"output"`
	Phases    []int64 `json:"phases"`
	Stages    int     `json:"stages"`
	Feedback  bool    `json:"feedback"`
	Evaluated int     `json:"evaluated"`
	Faulted   int     `json:"faulted"`
}

// NewAmplifyCommand creates the amplify command.
func NewAmplifyCommand(rootOpts *RootOptions) *cobra.Command {
	return newAmplifyCommand(&AmplifyOptions{RootOptions: rootOpts})
}

func newAmplifyCommand(opts *AmplifyOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "amplify [program]",
		Short: "Search amplifier phase settings",
		Long: `Run the program on a chain of amplifier stages for every permutation of
phase settings and print the largest output.

Without --feedback the stages form an open chain with phases 0..n-1. With
--feedback the last stage feeds the first and phases are n..2n-1.

Settings may come from a CUE file (--config); flags given explicitly
override it. With --db every evaluation is recorded in a SQLite database.

Examples:
  intcode amplify day7.txt
  intcode amplify day7.txt --feedback --workers 8
  intcode amplify --config network.cue --db history.db`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			program := ""
			if len(args) == 1 {
				program = args[0]
			}
			return runAmplify(opts, program, cmd)
		},
	}

	cmd.Flags().IntVar(&opts.Stages, "stages", 5, "number of amplifier stages")
	cmd.Flags().BoolVarP(&opts.Feedback, "feedback", "f", false, "wire the last stage back into the first")
	cmd.Flags().IntVar(&opts.Workers, "workers", 1, "permutations evaluated at once")
	cmd.Flags().StringVar(&opts.Config, "config", "", "CUE network configuration file")
	cmd.Flags().StringVar(&opts.Database, "db", "", "record the search in this SQLite database")

	return cmd
}

func runAmplify(opts *AmplifyOptions, program string, cmd *cobra.Command) error {
	f := newFormatter(opts.RootOptions, cmd)
	logger := f.Logger()

	net, err := resolveNetwork(opts, program, cmd)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeConfig, "invalid network configuration", err)
	}

	image, err := loadProgram(f, net.ProgramPath())
	if err != nil {
		return err
	}

	ctx, cancel := signalContext(cmd)
	defer cancel()

	searchOpts := []amplifier.Option{
		amplifier.WithWorkers(net.Workers),
		amplifier.WithLogger(logger),
	}

	var rec *recorder
	if path := net.DBPath(); path != "" {
		rec, err = startRecording(ctx, path, image, net, opts.IDGenerator, logger)
		if err != nil {
			return f.Fail(ExitCommandError, ErrCodeStore, "failed to record search", err)
		}
		defer rec.close()
		searchOpts = append(searchOpts, amplifier.WithObserver(rec.observe))
	}

	res, searchErr := amplifier.Search(ctx, image, net.Stages, net.Feedback, searchOpts...)

	if rec != nil {
		if err := rec.finish(ctx, res, searchErr); err != nil {
			return f.Fail(ExitCommandError, ErrCodeStore, "failed to record search", err)
		}
	}

	switch {
	case errors.Is(searchErr, amplifier.ErrNoResult):
		return f.Fail(ExitFailure, ErrCodeNoResult, "every permutation faulted", searchErr)
	case searchErr != nil:
		return f.Fail(ExitFailure, ErrCodeGeneric, "search failed", searchErr)
	}

	out := AmplifyResult{
		Output:    res.Output,
		Phases:    res.Phases,
		Stages:    net.Stages,
		Feedback:  net.Feedback,
		Evaluated: res.Evaluated,
		Faulted:   len(res.Faults),
	}
	if rec != nil {
		out.SearchID = rec.id
	}
	return f.Success(out, formatAmplify(out))
}

// resolveNetwork merges the config file, if any, with explicitly set flags.
func resolveNetwork(opts *AmplifyOptions, program string, cmd *cobra.Command) (*config.Network, error) {
	net := &config.Network{
		Stages:   opts.Stages,
		Feedback: opts.Feedback,
		Workers:  opts.Workers,
		DB:       opts.Database,
	}
	if opts.Config != "" {
		loaded, err := config.Load(opts.Config)
		if err != nil {
			return nil, err
		}
		net = loaded
		flags := cmd.Flags()
		if flags.Changed("stages") {
			net.Stages = opts.Stages
		}
		if flags.Changed("feedback") {
			net.Feedback = opts.Feedback
		}
		if flags.Changed("workers") {
			net.Workers = opts.Workers
		}
		if flags.Changed("db") {
			net.DB = opts.Database
		}
	}

	// Paths given on the command line are relative to the working
	// directory, not the config file.
	if program != "" {
		net.Program = program
		if net.Dir != "" {
			net.Program = absOrSelf(program)
		}
	}
	if opts.Config != "" && cmd.Flags().Changed("db") {
		net.DB = absOrSelf(opts.Database)
	}

	switch {
	case net.Program == "":
		return nil, errors.New("a program is required, as an argument or in --config")
	case net.Stages < 1:
		return nil, fmt.Errorf("stages must be at least 1, got %d", net.Stages)
	case net.Workers < 1:
		return nil, fmt.Errorf("workers must be at least 1, got %d", net.Workers)
	}
	return net, nil
}

func formatAmplify(r AmplifyResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d\n", r.Output)
	fmt.Fprintf(&b, "phases %s (%d evaluated, %d faulted)\n", joinPhases(r.Phases), r.Evaluated, r.Faulted)
	if r.SearchID != "" {
		fmt.Fprintf(&b, "recorded as %s\n", r.SearchID)
	}
	return b.String()
}

// recorder writes a search and its evaluations to the store.
type recorder struct {
	st     *store.Store
	id     string
	ctx    context.Context
	logger *slog.Logger
	err    error
}

func startRecording(ctx context.Context, path string, image intcode.Memory, net *config.Network, ids store.IDGenerator, logger *slog.Logger) (*recorder, error) {
	var storeOpts []store.Option
	if ids != nil {
		storeOpts = append(storeOpts, store.WithIDGenerator(ids))
	}
	st, err := store.Open(path, storeOpts...)
	if err != nil {
		return nil, err
	}

	id, err := st.BeginSearch(ctx, store.SearchParams{
		ProgramHash: image.Hash(),
		ProgramLen:  len(image),
		Stages:      net.Stages,
		Feedback:    net.Feedback,
		Workers:     net.Workers,
	})
	if err != nil {
		st.Close()
		return nil, err
	}
	logger.Info("recording search", "id", id, "db", path)

	return &recorder{st: st, id: id, ctx: ctx, logger: logger}, nil
}

// observe records one evaluation. After the first write error the
// remaining evaluations are skipped and finish reports the error.
func (r *recorder) observe(ev amplifier.Evaluation) {
	if r.err != nil {
		return
	}
	rec := store.Evaluation{SearchID: r.id, Seq: ev.Seq, Phases: ev.Phases}
	if ev.Err != nil {
		rec.Fault = ev.Err.Error()
	} else {
		out := ev.Output
		rec.Output = &out
	}
	if err := r.st.WriteEvaluation(r.ctx, rec); err != nil {
		r.err = err
		r.logger.Error("failed to record evaluation", "seq", ev.Seq, "error", err)
	}
}

func (r *recorder) finish(ctx context.Context, res *amplifier.Result, searchErr error) error {
	if r.err != nil {
		return r.err
	}
	if res == nil {
		// Canceled or invalid: the search stays "running".
		return nil
	}

	outcome := store.SearchOutcome{
		Evaluated: res.Evaluated,
		Faulted:   len(res.Faults),
		Status:    store.StatusComplete,
	}
	if searchErr != nil {
		outcome.Status = store.StatusFailed
	} else {
		best := res.Output
		outcome.BestOutput = &best
		outcome.BestPhases = res.Phases
	}
	return r.st.CompleteSearch(ctx, r.id, outcome)
}

func (r *recorder) close() {
	if err := r.st.Close(); err != nil {
		r.logger.Error("error closing database", "error", err)
	}
}

// absOrSelf returns the absolute form of p, or p itself if that fails.
func absOrSelf(p string) string {
	abs, err := filepath.Abs(p)
	if err != nil {
		return p
	}
	return abs
}
