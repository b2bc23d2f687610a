package amplifier

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ceranco/intcode/internal/intcode"
)

var (
	// chainProgram outputs 10*input + phase.
	chainProgram = intcode.Memory{3, 15, 3, 16, 1002, 16, 10, 16, 1, 16, 15, 15, 4, 15, 99, 0, 0}

	chainProgram2 = intcode.Memory{
		3, 23, 3, 24, 1002, 24, 10, 24, 1002, 23, -1, 23, 101, 5, 23, 23, 1, 24, 23, 23, 4, 23, 99, 0, 0,
	}

	chainProgram3 = intcode.Memory{
		3, 31, 3, 32, 1002, 32, 10, 32, 1001, 31, -2, 31, 1007, 31, 0, 33,
		1002, 33, 7, 33, 1, 33, 31, 31, 1, 32, 31, 31, 4, 31, 99, 0, 0, 0,
	}

	feedbackProgram = intcode.Memory{
		3, 26, 1001, 26, -4, 26, 3, 27, 1002, 27, 2, 27, 1, 27, 26,
		27, 4, 27, 1001, 28, -1, 28, 1005, 28, 6, 99, 0, 0, 5,
	}

	feedbackProgram2 = intcode.Memory{
		3, 52, 1001, 52, -5, 52, 3, 53, 1, 52, 56, 54, 1007, 54, 5, 55, 1005, 55, 26, 1001, 54,
		-5, 54, 1105, 1, 12, 1, 53, 54, 53, 1008, 54, 0, 55, 1001, 55, 1, 55, 2, 53, 55, 53, 4,
		53, 1001, 56, -1, 56, 1005, 56, 6, 99, 0, 0, 0, 0, 10,
	}

	// faultOnMatchProgram outputs phase+input, but jumps to an unknown
	// opcode when phase == input.
	faultOnMatchProgram = intcode.Memory{
		3, 30, 3, 31, 8, 30, 31, 32, 1005, 32, 20, 1, 30, 31, 33, 4, 33, 99, 0, 0,
		77, 0, 0, 0, 0, 0, 0, 0, 0, 0,
		0, 0, 0, 0,
	}

	// faultOnThreeProgram faults when its phase is 3 and otherwise reads
	// its input twice without ever writing.
	faultOnThreeProgram = intcode.Memory{
		3, 20, 1008, 20, 3, 21, 1005, 21, 18, 3, 22, 3, 22, 99, 0, 0, 0, 0,
		77, 0, 0, 0, 0,
	}

	// readThree reads three values and halts without output.
	readThree = intcode.Memory{3, 0, 3, 0, 3, 0, 99}
)

func newNetwork(t *testing.T, program intcode.Memory, stages int, feedback bool) *Network {
	t.Helper()
	topo, err := NewTopology(stages, feedback)
	require.NoError(t, err)
	net, err := NewNetwork(program, topo)
	require.NoError(t, err)
	return net
}

func TestNetwork_EvaluateChain(t *testing.T) {
	net := newNetwork(t, chainProgram, 5, false)

	out, err := net.Evaluate(context.Background(), []int64{4, 3, 2, 1, 0})
	require.NoError(t, err)
	assert.Equal(t, int64(43210), out)

	out, err = net.Evaluate(context.Background(), []int64{0, 1, 2, 3, 4})
	require.NoError(t, err)
	assert.Equal(t, int64(1234), out)
}

func TestNetwork_EvaluateFeedback(t *testing.T) {
	net := newNetwork(t, feedbackProgram, 5, true)

	out, err := net.Evaluate(context.Background(), []int64{9, 8, 7, 6, 5})
	require.NoError(t, err)
	assert.Equal(t, int64(139629729), out)
}

func TestNetwork_EvaluateIsRepeatable(t *testing.T) {
	net := newNetwork(t, feedbackProgram2, 5, true)

	for i := 0; i < 3; i++ {
		out, err := net.Evaluate(context.Background(), []int64{9, 7, 8, 5, 6})
		require.NoError(t, err)
		assert.Equal(t, int64(18216), out)
	}
}

func TestNetwork_WrongPhaseCount(t *testing.T) {
	net := newNetwork(t, chainProgram, 5, false)

	_, err := net.Evaluate(context.Background(), []int64{0, 1})
	require.Error(t, err)
	assert.False(t, IsNetworkFault(err))
}

func TestNetwork_StageFault(t *testing.T) {
	net := newNetwork(t, faultOnMatchProgram, 2, false)

	_, err := net.Evaluate(context.Background(), []int64{0, 1})
	require.Error(t, err)

	var nf *NetworkFault
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, 0, nf.Stage)
	assert.Equal(t, []int64{0, 1}, nf.Phases)
	assert.True(t, intcode.IsUnknownOpcode(err))

	out, err := net.Evaluate(context.Background(), []int64{1, 0})
	require.NoError(t, err)
	assert.Equal(t, int64(1), out)
}

func TestNetwork_ChainInputExhausted(t *testing.T) {
	net := newNetwork(t, readThree, 1, false)

	_, err := net.Evaluate(context.Background(), []int64{0})
	require.Error(t, err)
	assert.True(t, intcode.IsInputExhausted(err), "seeded input must be closed: %v", err)
}

func TestNetwork_NoOutput(t *testing.T) {
	tests := []struct {
		name     string
		program  intcode.Memory
		phases   []int64
		feedback bool
	}{
		{"single chain stage", intcode.Memory{3, 0, 3, 0, 99}, []int64{1}, false},
		{"single ring stage", intcode.Memory{3, 0, 3, 0, 99}, []int64{1}, true},
		{"chain of silent stages", intcode.Memory{3, 0, 99}, []int64{0, 1, 2}, false},
		{"ring of silent stages", intcode.Memory{3, 0, 99}, []int64{3, 4, 5}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			net := newNetwork(t, tt.program, len(tt.phases), tt.feedback)

			out, err := net.Evaluate(context.Background(), tt.phases)
			require.Error(t, err, "seed values must not count as output, got %d", out)
			assert.ErrorIs(t, err, ErrNoOutput)

			var nf *NetworkFault
			require.ErrorAs(t, err, &nf)
			assert.Equal(t, len(tt.phases)-1, nf.Stage)
		})
	}
}

func TestNetwork_FeedbackFaultCancelsSiblings(t *testing.T) {
	net := newNetwork(t, faultOnThreeProgram, 2, true)

	done := make(chan error, 1)
	go func() {
		_, err := net.Evaluate(context.Background(), []int64{2, 3})
		done <- err
	}()

	select {
	case err := <-done:
		var nf *NetworkFault
		require.ErrorAs(t, err, &nf)
		assert.Equal(t, 1, nf.Stage)
		assert.True(t, intcode.IsUnknownOpcode(err))
	case <-time.After(2 * time.Second):
		t.Fatal("faulted stage left its sibling blocked")
	}
}

func TestNetwork_DeadlockedRingEndsWithContext(t *testing.T) {
	net := newNetwork(t, readThree, 2, true)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := net.Evaluate(ctx, []int64{2, 3})
	require.Error(t, err, "a deadlocked ring must never report success")
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestNewNetwork_Errors(t *testing.T) {
	topo, err := Chain(2)
	require.NoError(t, err)

	_, err = NewNetwork(nil, topo)
	assert.Error(t, err)

	_, err = NewNetwork(chainProgram, Topology{})
	assert.Error(t, err)
}

func TestNewNetwork_CopiesProgram(t *testing.T) {
	program := chainProgram.Clone()
	net := newNetwork(t, program, 5, false)
	program[0] = 99

	out, err := net.Evaluate(context.Background(), []int64{4, 3, 2, 1, 0})
	require.NoError(t, err)
	assert.Equal(t, int64(43210), out)
}
