package timing

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var catchupNow = time.Date(2026, time.September, 1, 9, 0, 0, 0, time.UTC)

func TestNewCatchUp_LoadsDatesAndAddsToday(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catchup.txt")
	require.NoError(t, os.WriteFile(path, []byte("2026-08-30\n2026-08-31\n"), 0o600))

	c, err := NewCatchUp(path, catchupNow)
	require.NoError(t, err)

	require.True(t, c.Contains("2026-08-30"))
	require.True(t, c.Contains("2026-08-31"))
	require.True(t, c.Contains("2026-09-01"), "today is always added")
	require.Equal(t, []string{"2026-08-30", "2026-08-31", "2026-09-01"}, c.Dates())
}

func TestNewCatchUp_MissingFileIsEmptySetPlusToday(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catchup.txt")

	c, err := NewCatchUp(path, catchupNow)
	require.NoError(t, err)
	require.Equal(t, []string{"2026-09-01"}, c.Dates())
}

func TestNewCatchUp_DropsUnparseableLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catchup.txt")
	require.NoError(t, os.WriteFile(path, []byte("2026-08-30\nnot a date\n31/08/2026\n\n"), 0o600))

	c, err := NewCatchUp(path, catchupNow)
	require.NoError(t, err)
	require.Equal(t, []string{"2026-08-30", "2026-09-01"}, c.Dates())
}

func TestCatchUp_SetDonePersistsRemoval(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catchup.txt")
	require.NoError(t, os.WriteFile(path, []byte("2026-08-30\n"), 0o600))

	c, err := NewCatchUp(path, catchupNow)
	require.NoError(t, err)

	c.SetDone("2026-08-30")
	require.False(t, c.Contains("2026-08-30"))
	require.NoError(t, c.Close())

	// The write-back must not contain the confirmed date, and must survive
	// a fresh load.
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NotContains(t, string(data), "2026-08-30")

	c2, err := NewCatchUp(path, catchupNow)
	require.NoError(t, err)
	require.False(t, c2.Contains("2026-08-30"))
	require.True(t, c2.Contains("2026-09-01"))
}

func TestCatchUp_CheckpointsWithoutClose(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catchup.txt")

	c, err := NewCatchUp(path, catchupNow)
	require.NoError(t, err)
	c.Ensure("2026-09-02")

	// No Close: the mutation must already be on disk.
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), "2026-09-02")
}
