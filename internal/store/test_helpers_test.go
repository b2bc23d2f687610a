package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ceranco/intcode/internal/testutil"
)

// createTestStore creates a new store in a temp dir with predictable IDs.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path, WithIDGenerator(testutil.NewFixedIDGenerator("search")))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func testParams() SearchParams {
	return SearchParams{
		ProgramHash: "abc123",
		ProgramLen:  17,
		Stages:      5,
		Feedback:    false,
		Workers:     2,
	}
}

func ptr(v int64) *int64 {
	return &v
}
