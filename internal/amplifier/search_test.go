package amplifier

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ceranco/intcode/internal/intcode"
)

func TestSearch_Chain(t *testing.T) {
	tests := []struct {
		name    string
		program intcode.Memory
		output  int64
		phases  []int64
	}{
		{"digits", chainProgram, 43210, []int64{4, 3, 2, 1, 0}},
		{"reversed digits", chainProgram2, 54321, []int64{0, 1, 2, 3, 4}},
		{"mixed", chainProgram3, 65210, []int64{1, 0, 4, 3, 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Search(context.Background(), tt.program, 5, false)
			require.NoError(t, err)
			assert.Equal(t, tt.output, res.Output)
			assert.Equal(t, tt.phases, res.Phases)
			assert.Equal(t, 120, res.Evaluated)
			assert.Empty(t, res.Faults)
		})
	}
}

func TestSearch_Feedback(t *testing.T) {
	tests := []struct {
		name    string
		program intcode.Memory
		output  int64
		phases  []int64
	}{
		{"doubling", feedbackProgram, 139629729, []int64{9, 8, 7, 6, 5}},
		{"branching", feedbackProgram2, 18216, []int64{9, 7, 8, 5, 6}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Search(context.Background(), tt.program, 5, true)
			require.NoError(t, err)
			assert.Equal(t, tt.output, res.Output)
			assert.Equal(t, tt.phases, res.Phases)
			assert.Equal(t, 120, res.Evaluated)
		})
	}
}

func TestSearch_WorkersDoNotChangeResult(t *testing.T) {
	serial, err := Search(context.Background(), feedbackProgram, 5, true)
	require.NoError(t, err)

	for _, workers := range []int{2, 4, 16} {
		var seqs []int
		parallel, err := Search(context.Background(), feedbackProgram, 5, true,
			WithWorkers(workers),
			WithObserver(func(ev Evaluation) { seqs = append(seqs, ev.Seq) }),
		)
		require.NoError(t, err)
		assert.Equal(t, serial, parallel, "workers=%d", workers)

		require.Len(t, seqs, 120)
		for i, s := range seqs {
			assert.Equal(t, i, s, "observer must see enumeration order")
		}
	}
}

func TestSearch_FaultedPermutationsAreSkipped(t *testing.T) {
	var evals []Evaluation
	res, err := Search(context.Background(), faultOnMatchProgram, 2, false,
		WithObserver(func(ev Evaluation) { evals = append(evals, ev) }),
	)
	require.NoError(t, err)

	assert.Equal(t, int64(1), res.Output)
	assert.Equal(t, []int64{1, 0}, res.Phases)
	assert.Equal(t, 2, res.Evaluated)

	require.Len(t, res.Faults, 1)
	assert.Equal(t, []int64{0, 1}, res.Faults[0].Phases)
	assert.Equal(t, 0, res.Faults[0].Stage)
	assert.True(t, intcode.IsUnknownOpcode(res.Faults[0]))

	require.Len(t, evals, 2)
	assert.Error(t, evals[0].Err)
	assert.NoError(t, evals[1].Err)
}

func TestSearch_AllFaulted(t *testing.T) {
	res, err := Search(context.Background(), intcode.Memory{42}, 3, false)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoResult)
	assert.True(t, intcode.IsUnknownOpcode(err))

	require.NotNil(t, res)
	assert.Len(t, res.Faults, 6)
	assert.Equal(t, 6, res.Evaluated)
}

func TestSearch_SilentRingHasNoResult(t *testing.T) {
	// Every stage reads its phase and halts without writing anything.
	res, err := Search(context.Background(), intcode.Memory{3, 0, 99}, 3, true)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoResult)
	assert.ErrorIs(t, err, ErrNoOutput)

	require.NotNil(t, res)
	assert.Equal(t, 6, res.Evaluated)
	assert.Nil(t, res.Phases)
	require.Len(t, res.Faults, 6)
	for _, f := range res.Faults {
		assert.ErrorIs(t, f, ErrNoOutput)
	}
}

func TestSearch_TiesKeepFirstPermutation(t *testing.T) {
	// Outputs its input unchanged, so every permutation yields 0.
	echo := intcode.Memory{3, 9, 3, 10, 4, 10, 99, 0, 0, 0, 0}

	res, err := Search(context.Background(), echo, 3, false)
	require.NoError(t, err)
	assert.Equal(t, int64(0), res.Output)
	assert.Equal(t, []int64{0, 1, 2}, res.Phases)
}

func TestSearch_InvalidStages(t *testing.T) {
	_, err := Search(context.Background(), chainProgram, 0, false)
	assert.Error(t, err)
}

func TestSearch_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Search(ctx, feedbackProgram, 5, true, WithWorkers(4))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSearch_LogsSummary(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelInfo}))

	_, err := Search(context.Background(), chainProgram, 3, false, WithLogger(logger))
	require.NoError(t, err)

	assert.Contains(t, buf.String(), "search starting")
	assert.Contains(t, buf.String(), "search finished")
	assert.NotContains(t, buf.String(), "permutation evaluated", "per-permutation logs are debug only")
}
