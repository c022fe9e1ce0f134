package stamp

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "stamps.db")
	s, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStampCreateThenStaleFalseWithinWindow(t *testing.T) {
	s := openTestStore(t)
	s.StampCreate("archive.tar")

	stale, err := s.Stale("archive.tar", time.Hour)
	require.NoError(t, err)
	require.False(t, stale)
}

func TestStaleTrueAfterWindowElapses(t *testing.T) {
	s := openTestStore(t)
	s.StampCreate("archive.tar")

	stale, err := s.Stale("archive.tar", -time.Second)
	require.NoError(t, err)
	require.True(t, stale)
}

func TestUnstampedNameIsNeverStale(t *testing.T) {
	s := openTestStore(t)

	stale, err := s.Stale("never-touched", time.Nanosecond)
	require.NoError(t, err)
	require.False(t, stale)
}

func TestRMStampClearsEntry(t *testing.T) {
	s := openTestStore(t)
	s.StampCreate("a")
	s.RMStamp("a")

	stale, err := s.Stale("a", -time.Second)
	require.NoError(t, err)
	require.False(t, stale, "rmstamp must make a superblock look currently open, not stale")
}
