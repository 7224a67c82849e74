package reslib

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// stageFiles returns a Stage holding files.
func stageFiles(tb testing.TB, files map[string][]byte) *Stage {
	tb.Helper()
	s := NewStage()
	for p, data := range files {
		require.NoError(tb, s.StageBytes(p, data))
	}
	return s
}

// createTestArchive flushes files to a new archive in a temp dir and returns
// its path.
func createTestArchive(tb testing.TB, files map[string][]byte, tier Tier) string {
	tb.Helper()
	path := filepath.Join(tb.TempDir(), "test.rlib")
	_, err := FlushFile(context.Background(), stageFiles(tb, files), path, tier)
	require.NoError(tb, err)
	return path
}

// openTestArchive creates an archive and opens it, closing it on cleanup.
func openTestArchive(tb testing.TB, files map[string][]byte, tier Tier) *Reader {
	tb.Helper()
	r, err := Open(createTestArchive(tb, files, tier))
	require.NoError(tb, err)
	tb.Cleanup(func() { r.Close() })
	return r
}
