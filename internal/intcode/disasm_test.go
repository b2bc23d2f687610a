package intcode

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDisassemble(t *testing.T) {
	buf := &bytes.Buffer{}
	require.NoError(t, Disassemble(buf, Memory{1002, 4, 3, 4, 33}))

	assert.Equal(t, "0000  mul [4], #3, [4]\n0004  data 33\n", buf.String())
}

func TestDisassemble_IO(t *testing.T) {
	buf := &bytes.Buffer{}
	require.NoError(t, Disassemble(buf, Memory{3, 0, 104, 7, 99}))

	assert.Equal(t, "0000  in [0]\n0002  out #7\n0004  hlt\n", buf.String())
}

func TestDisassemble_TruncatedInstruction(t *testing.T) {
	buf := &bytes.Buffer{}
	require.NoError(t, Disassemble(buf, Memory{1, 0}))

	assert.Equal(t, "0000  data 1\n0001  data 0\n", buf.String())
}
