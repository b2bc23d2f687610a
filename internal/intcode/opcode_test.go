package intcode

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode_ModeDigits(t *testing.T) {
	ins, err := Decode(1002)
	require.NoError(t, err)

	assert.Equal(t, OpMultiply, ins.Op)
	assert.Equal(t, Position, ins.Modes[0])
	assert.Equal(t, Immediate, ins.Modes[1])
	assert.True(t, ins.Writes(), "destination is always a position-mode write")
}

func TestDecode_AllOpcodes(t *testing.T) {
	tests := []struct {
		raw   int64
		op    Op
		width int
		reads int
	}{
		{1, OpAdd, 4, 2},
		{2, OpMultiply, 4, 2},
		{3, OpInput, 2, 0},
		{4, OpOutput, 2, 1},
		{5, OpJumpIfTrue, 3, 2},
		{6, OpJumpIfFalse, 3, 2},
		{7, OpLessThan, 4, 2},
		{8, OpEquals, 4, 2},
		{99, OpTerminate, 1, 0},
	}

	for _, tt := range tests {
		t.Run(tt.op.String(), func(t *testing.T) {
			ins, err := Decode(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.op, ins.Op)
			assert.Equal(t, tt.width, ins.Width())
			assert.Equal(t, tt.reads, ins.Reads())
			assert.Equal(t, [maxReads]Mode{Position, Position}, ins.Modes, "missing digits default to position")
		})
	}
}

func TestDecode_ImmediateModes(t *testing.T) {
	ins, err := Decode(1101)
	require.NoError(t, err)
	assert.Equal(t, OpAdd, ins.Op)
	assert.Equal(t, [maxReads]Mode{Immediate, Immediate}, ins.Modes)

	ins, err = Decode(104)
	require.NoError(t, err)
	assert.Equal(t, OpOutput, ins.Op)
	assert.Equal(t, Immediate, ins.Modes[0])
}

func TestDecode_IgnoresDestinationDigit(t *testing.T) {
	ins, err := Decode(11101)
	require.NoError(t, err)
	assert.Equal(t, OpAdd, ins.Op)
	assert.Equal(t, [maxReads]Mode{Immediate, Immediate}, ins.Modes)
}

func TestDecode_UnknownOpcode(t *testing.T) {
	for _, raw := range []int64{0, 9, 42, 98, 100, -1, -99, 201, 1201} {
		_, err := Decode(raw)
		require.Error(t, err, "raw %d", raw)
		assert.True(t, IsUnknownOpcode(err), "raw %d", raw)

		var fe *FaultError
		require.ErrorAs(t, err, &fe)
		assert.Equal(t, raw, fe.Value)
	}
}

func TestInstruction_RoundTrip(t *testing.T) {
	for op := range ops {
		ins := Instruction{Op: op}
		combos := 1 << ins.Reads()
		for bits := 0; bits < combos; bits++ {
			for k := 0; k < ins.Reads(); k++ {
				ins.Modes[k] = Mode((bits >> k) & 1)
			}

			got, err := Decode(ins.Encode())
			require.NoError(t, err, "encode %v = %d", ins, ins.Encode())
			assert.Equal(t, ins, got)
		}
	}
}

func TestInstruction_String(t *testing.T) {
	tests := []struct {
		raw  int64
		want string
	}{
		{1002, "mul a #b ->c"},
		{3, "in ->a"},
		{104, "out #a"},
		{1105, "jnz #a #b"},
		{99, "hlt"},
	}
	for _, tt := range tests {
		ins, err := Decode(tt.raw)
		require.NoError(t, err)
		assert.Equal(t, tt.want, ins.String())
	}
}

func TestOp_String(t *testing.T) {
	assert.Equal(t, "add", OpAdd.String())
	assert.Equal(t, "op(42)", Op(42).String())
	assert.True(t, OpEquals.Valid())
	assert.False(t, Op(42).Valid())
}
