package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ceranco/intcode/internal/intcode"
	"github.com/ceranco/intcode/internal/stream"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Noun   int64
	Verb   int64
	Alarm  bool
	Input  []int64
	Prompt string
}

// RunResult is the JSON payload of the run command.
type RunResult struct {
	Memory0 int64   `json:"memory0"`
	Outputs []int64 `json:"outputs,omitempty"`
	Steps   int64   `json:"steps"`
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run <program>",
		Short: "Run a program",
		Long: `Run an Intcode program until it halts and print the value at address 0.

Input instructions read one integer per line from stdin and output
instructions print one integer per line, unless --input supplies the
input up front. With --noun and --verb, addresses 1 and 2 are set before
the run; --alarm restores the "1202 program alarm" state (noun 12, verb 2).

Examples:
  intcode run day2.txt --alarm
  intcode run day5.txt --input 5
  echo 1 | intcode run day5.txt`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProgram(opts, args[0], cmd)
		},
	}

	cmd.Flags().Int64Var(&opts.Noun, "noun", 0, "value written to address 1")
	cmd.Flags().Int64Var(&opts.Verb, "verb", 0, "value written to address 2")
	cmd.Flags().BoolVar(&opts.Alarm, "alarm", false, "set noun 12 and verb 2")
	cmd.Flags().Int64SliceVar(&opts.Input, "input", nil, "input values instead of stdin")
	cmd.Flags().StringVar(&opts.Prompt, "prompt", "", "prompt written before each stdin read")
	cmd.MarkFlagsMutuallyExclusive("alarm", "noun")
	cmd.MarkFlagsMutuallyExclusive("alarm", "verb")

	return cmd
}

func runProgram(opts *RunOptions, path string, cmd *cobra.Command) error {
	f := newFormatter(opts.RootOptions, cmd)
	logger := f.Logger()

	image, err := loadProgram(f, path)
	if err != nil {
		return err
	}

	// Outputs are streamed as they happen in text mode; JSON collects them.
	var (
		in      stream.Stream
		out     stream.Stream
		collect *stream.Channel
	)
	consoleOut := cmd.OutOrStdout()
	if opts.Format == "json" {
		consoleOut = cmd.ErrOrStderr()
	}
	console := stream.NewConsole(cmd.InOrStdin(), consoleOut, stream.WithPrompt(opts.Prompt))
	if cmd.Flags().Changed("input") {
		ch := stream.NewChannel(opts.Input...)
		_ = ch.Close()
		in = ch
	} else {
		in = console
	}
	if opts.Format == "json" {
		collect = stream.NewChannel()
		out = collect
	} else {
		out = console
	}

	m := intcode.New(image, in, out, intcode.WithLogger(logger), intcode.WithName(path))

	noun, verb, set := opts.Noun, opts.Verb, false
	if opts.Alarm {
		noun, verb, set = intcode.AlarmNoun, intcode.AlarmVerb, true
	}
	if cmd.Flags().Changed("noun") || cmd.Flags().Changed("verb") {
		mem := m.Memory()
		if !cmd.Flags().Changed("noun") && len(mem) > 1 {
			noun = mem[1]
		}
		if !cmd.Flags().Changed("verb") && len(mem) > 2 {
			verb = mem[2]
		}
		set = true
	}
	if set {
		if err := m.Set(noun, verb); err != nil {
			return f.Fail(ExitCommandError, ErrCodeGeneric, "program too short for noun and verb", err)
		}
	}

	ctx, cancel := signalContext(cmd)
	defer cancel()

	logger.Debug("running program", "path", path, "size", len(image))
	mem, err := m.RunOnce(ctx)
	if err != nil {
		return f.Fail(ExitFailure, ErrCodeFault, faultMessage(err), err)
	}

	res := RunResult{Memory0: mem[0], Steps: m.Steps()}
	if collect != nil {
		res.Outputs = collect.Drain()
	}
	return f.Success(res, fmt.Sprintf("%d\n", res.Memory0))
}

func faultMessage(err error) string {
	var fe *intcode.FaultError
	if errors.As(err, &fe) {
		return fmt.Sprintf("program faulted at pc %d: %s", fe.PC, strings.ToLower(strings.ReplaceAll(string(fe.Code), "_", " ")))
	}
	return "program faulted"
}
