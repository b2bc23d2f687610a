package cli

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/ceranco/intcode/internal/intcode"
)

// ReverseResult is the JSON payload of the reverse command.
type ReverseResult struct {
	Noun   int64 `json:"noun"`
	Verb   int64 `json:"verb"`
	Answer int64 `json:"answer"`
}

// NewReverseCommand creates the reverse command.
func NewReverseCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reverse <program> <output>",
		Short: "Find the noun and verb that produce an output",
		Long: `Search nouns and verbs in 0..99 for the pair that leaves <output> at
address 0, and print the pair with 100*noun+verb.

Example:
  intcode reverse day2.txt 19690720`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReverse(rootOpts, args[0], args[1], cmd)
		},
	}
	return cmd
}

func runReverse(opts *RootOptions, path, target string, cmd *cobra.Command) error {
	f := newFormatter(opts, cmd)

	want, err := strconv.ParseInt(target, 10, 64)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeParse, fmt.Sprintf("output must be an integer, got %q", target), err)
	}

	image, err := loadProgram(f, path)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext(cmd)
	defer cancel()

	noun, verb, err := intcode.FindNounVerb(ctx, image, want)
	switch {
	case errors.Is(err, intcode.ErrNotFound):
		return f.Fail(ExitFailure, ErrCodeNoResult, fmt.Sprintf("no noun and verb produce %d", want), err)
	case err != nil:
		return f.Fail(ExitFailure, ErrCodeGeneric, "reverse search failed", err)
	}

	res := ReverseResult{Noun: noun, Verb: verb, Answer: 100*noun + verb}
	return f.Success(res, fmt.Sprintf("noun=%d verb=%d answer=%d\n", res.Noun, res.Verb, res.Answer))
}
