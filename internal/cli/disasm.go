package cli

import (
	"bytes"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ceranco/intcode/internal/intcode"
)

// DisasmResult is the JSON payload of the disasm command.
type DisasmResult struct {
	Lines []string `json:"lines"`
}

// NewDisasmCommand creates the disasm command.
func NewDisasmCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "disasm <program>",
		Short: "Disassemble a program",
		Long: `Print a linear disassembly of a program, one instruction per line.

Immediate parameters are written as #v and position parameters as [a].
Cells that do not decode are printed as data.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDisasm(rootOpts, args[0], cmd)
		},
	}
	return cmd
}

func runDisasm(opts *RootOptions, path string, cmd *cobra.Command) error {
	f := newFormatter(opts, cmd)

	image, err := loadProgram(f, path)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := intcode.Disassemble(&buf, image); err != nil {
		return f.Fail(ExitFailure, ErrCodeGeneric, "disassembly failed", err)
	}

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	return f.Success(DisasmResult{Lines: lines}, buf.String())
}
