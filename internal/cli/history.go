package cli

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ceranco/intcode/internal/store"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Database string
	Limit    int
	ID       string
}

// HistoryEntry is one search in the history command's JSON payload.
type HistoryEntry struct {
	ID          string  `json:"id"`
	ProgramHash string  `json:"program_hash"`
	Stages      int     `json:"stages"`
	Feedback    bool    `json:"feedback"`
	Workers     int     `json:"workers"`
	Status      string  `json:"status"`
	Output      *int64  `json:"output,omitempty"`
	Phases      []int64 `json:"phases,omitempty"`
	Evaluated   int     `json:"evaluated"`
	Faulted     int     `json:"faulted"`
}

// EvaluationEntry is one permutation in the history command's JSON payload.
type EvaluationEntry struct {
	Seq    int     `json:"seq"`
	Phases []int64 `json:"phases"`
	Output *int64  `json:"output,omitempty"`
	Fault  string  `json:"fault,omitempty"`
}

// SearchDetail is the history command's JSON payload with --id.
type SearchDetail struct {
	Search      HistoryEntry      `json:"search"`
	Evaluations []EvaluationEntry `json:"evaluations"`
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded amplifier searches",
		Long: `List the searches recorded by "intcode amplify --db", newest first.
With --id, list every permutation evaluated by one search instead.

Examples:
  intcode history --db history.db --limit 5
  intcode history --db history.db --id <search-id>`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	cmd.Flags().IntVar(&opts.Limit, "limit", 20, "maximum number of searches (0 for all)")
	cmd.Flags().StringVar(&opts.ID, "id", "", "show the evaluations of this search")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runHistory(opts *HistoryOptions, cmd *cobra.Command) error {
	f := newFormatter(opts.RootOptions, cmd)

	st, err := store.Open(opts.Database)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeStore, "failed to open database", err)
	}
	defer st.Close()

	if opts.ID != "" {
		return showSearch(f, st, opts.ID, cmd)
	}

	searches, err := st.ListSearches(cmd.Context(), opts.Limit)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeStore, "failed to read searches", err)
	}

	entries := make([]HistoryEntry, len(searches))
	for i, s := range searches {
		entries[i] = historyEntry(s)
	}
	return f.Success(entries, formatHistory(entries))
}

func showSearch(f *OutputFormatter, st *store.Store, id string, cmd *cobra.Command) error {
	ctx := cmd.Context()

	s, err := st.ReadSearch(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return f.Fail(ExitCommandError, ErrCodeNotFound, fmt.Sprintf("search not found: %s", id), err)
	}
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeStore, "failed to read search", err)
	}

	evals, err := st.ReadEvaluations(ctx, id)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeStore, "failed to read evaluations", err)
	}

	detail := SearchDetail{
		Search:      historyEntry(s),
		Evaluations: make([]EvaluationEntry, len(evals)),
	}
	for i, ev := range evals {
		detail.Evaluations[i] = EvaluationEntry{
			Seq:    ev.Seq,
			Phases: ev.Phases,
			Output: ev.Output,
			Fault:  ev.Fault,
		}
	}
	return f.Success(detail, formatSearchDetail(detail))
}

func historyEntry(s store.Search) HistoryEntry {
	return HistoryEntry{
		ID:          s.ID,
		ProgramHash: s.ProgramHash,
		Stages:      s.Stages,
		Feedback:    s.Feedback,
		Workers:     s.Workers,
		Status:      string(s.Status),
		Output:      s.BestOutput,
		Phases:      s.BestPhases,
		Evaluated:   s.Evaluated,
		Faulted:     s.Faulted,
	}
}

func formatSearchDetail(d SearchDetail) string {
	var b strings.Builder
	b.WriteString(formatHistory([]HistoryEntry{d.Search}))
	b.WriteString("\n")

	tw := tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SEQ\tPHASES\tOUTPUT\tFAULT")
	for _, ev := range d.Evaluations {
		output, fault := "-", "-"
		if ev.Output != nil {
			output = fmt.Sprint(*ev.Output)
		}
		if ev.Fault != "" {
			fault = ev.Fault
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", ev.Seq, joinPhases(ev.Phases), output, fault)
	}
	_ = tw.Flush()
	return b.String()
}

func formatHistory(entries []HistoryEntry) string {
	if len(entries) == 0 {
		return "No searches recorded.\n"
	}

	var b strings.Builder
	tw := tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tPROGRAM\tSTAGES\tMODE\tSTATUS\tOUTPUT\tPHASES\tEVALUATED\tFAULTED")
	for _, e := range entries {
		mode := "chain"
		if e.Feedback {
			mode = "feedback"
		}
		output, phases := "-", "-"
		if e.Output != nil {
			output = fmt.Sprint(*e.Output)
		}
		if len(e.Phases) > 0 {
			phases = joinPhases(e.Phases)
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\t%s\t%s\t%d\t%d\n",
			e.ID, shortHash(e.ProgramHash), e.Stages, mode, e.Status, output, phases, e.Evaluated, e.Faulted)
	}
	_ = tw.Flush()
	return b.String()
}

func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}

func joinPhases(phases []int64) string {
	parts := make([]string, len(phases))
	for i, p := range phases {
		parts[i] = fmt.Sprint(p)
	}
	return strings.Join(parts, ",")
}
