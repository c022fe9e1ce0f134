package vfscore

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirUpToDateRespectsTimestamp(t *testing.T) {
	c := newTestClass(t, Hooks{})
	sb := newTestSuper(t, c, "s")
	dir := c.GenerateEntry(sb, sb.Root, "d", os.ModeDir|0o755).Inode
	dir.Timestamp = time.Now().Add(time.Minute)

	assert.True(t, c.DirUpToDate(dir))

	dir.Timestamp = time.Now().Add(-time.Minute)
	assert.False(t, c.DirUpToDate(dir))
}

func TestDirUpToDateFlushForcesStaleOnce(t *testing.T) {
	c := newTestClass(t, Hooks{})
	sb := newTestSuper(t, c, "s")
	dir := c.GenerateEntry(sb, sb.Root, "d", os.ModeDir|0o755).Inode
	dir.Timestamp = time.Now().Add(time.Minute)

	c.SetFlush()
	assert.False(t, c.DirUpToDate(dir), "flush forces one stale report")
	assert.True(t, c.DirUpToDate(dir), "flush consumed, falls back to timestamp")
}

func TestDirUpToDateHookOverridesDefault(t *testing.T) {
	called := false
	c := newTestClass(t, Hooks{
		DirUpToDate: func(i *Inode) bool {
			called = true
			return false
		},
	})
	sb := newTestSuper(t, c, "s")
	dir := c.GenerateEntry(sb, sb.Root, "d", os.ModeDir|0o755).Inode
	dir.Timestamp = time.Now().Add(time.Minute)

	assert.False(t, c.DirUpToDate(dir))
	assert.True(t, called)
}

func TestInvalidateReplacesRootWithFreshEmptyDir(t *testing.T) {
	c := newTestClass(t, Hooks{})
	sb := newTestSuper(t, c, "s")
	oldRoot := sb.Root
	c.GenerateEntry(sb, sb.Root, "a", 0o644)

	c.Invalidate(sb)
	assert.NotSame(t, oldRoot, sb.Root)
	assert.Empty(t, sb.Root.Children)
	assert.Equal(t, 1, sb.InoUsage())
}

func TestInvalidateNoopWhenWantStale(t *testing.T) {
	c := newTestClass(t, Hooks{})
	sb := newTestSuper(t, c, "s")
	sb.WantStale = true
	root := sb.Root

	c.Invalidate(sb)
	assert.Same(t, root, sb.Root)
}

func TestSetStaleClearingInvalidates(t *testing.T) {
	c := newTestClass(t, Hooks{})
	sb := newTestSuper(t, c, "s")
	root := sb.Root

	c.SetStale(sb, true)
	c.Invalidate(sb)
	assert.Same(t, root, sb.Root)

	c.SetStale(sb, false)
	assert.NotSame(t, root, sb.Root)
	require.False(t, sb.WantStale)
}
