package intcode

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	mem, err := Parse("1,9,10,3,2,3,11,0,99,30,40,50\n")
	require.NoError(t, err)
	assert.Equal(t, Memory{1, 9, 10, 3, 2, 3, 11, 0, 99, 30, 40, 50}, mem)
}

func TestParse_Negative(t *testing.T) {
	mem, err := Parse("1101,100,-1,4,0")
	require.NoError(t, err)
	assert.Equal(t, Memory{1101, 100, -1, 4, 0}, mem)
}

func TestParse_Errors(t *testing.T) {
	_, err := Parse("")
	assert.Error(t, err)

	_, err = Parse("  \n")
	assert.Error(t, err)

	_, err = Parse("1,2,x,4")
	require.Error(t, err)
	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, 2, pe.Index)
	assert.Equal(t, "x", pe.Text)

	_, err = Parse("1,,2")
	assert.Error(t, err)
}

func TestMemory_CloneDoesNotAlias(t *testing.T) {
	mem := Memory{1, 2, 3}
	c := mem.Clone()
	c[0] = 99
	assert.Equal(t, int64(1), mem[0])
	assert.Nil(t, Memory(nil).Clone())
}

func TestMemory_StringAndHash(t *testing.T) {
	mem := Memory{1, -2, 3}
	assert.Equal(t, "1,-2,3", mem.String())
	assert.Len(t, mem.Hash(), 64)
	assert.Equal(t, mem.Hash(), Memory{1, -2, 3}.Hash())
	assert.NotEqual(t, mem.Hash(), Memory{1, 2, 3}.Hash())
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "program.txt")
	require.NoError(t, os.WriteFile(path, []byte("1,0,0,0,99\n"), 0644))

	mem, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, Memory{1, 0, 0, 0, 99}, mem)
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(filepath.Join(dir, "missing.txt"))
	assert.Error(t, err)

	_, err = Load(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "is a directory")

	bad := filepath.Join(dir, "bad.txt")
	require.NoError(t, os.WriteFile(bad, []byte("1,two,3"), 0644))
	_, err = Load(bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "malformed integer")
}
