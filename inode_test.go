package vfscore

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClass(t *testing.T, hooks Hooks) *Class {
	t.Helper()
	if hooks.ArchiveSame == nil {
		hooks.ArchiveSame = func(sb *Superblock, name, op string, cookie interface{}) MatchResult {
			if sb.Name == name {
				return MatchSame
			}
			return MatchOther
		}
	}
	if hooks.OpenArchive == nil {
		hooks.OpenArchive = func(sb *Superblock, name, op string) error {
			sb.Name = name
			return nil
		}
	}
	return NewClass("test", 0, hooks, DefaultConfig(), 7, nil)
}

func newTestSuper(t *testing.T, c *Class, name string) *Superblock {
	t.Helper()
	sb := &Superblock{Class: c, Name: name}
	sb.Root = c.emptyRoot(sb)
	return sb
}

func TestDefaultStatAppliesUmask(t *testing.T) {
	c := newTestClass(t, Hooks{})
	c.Cfg.Umask = 0o022
	st := c.DefaultStat(0o777)
	assert.EqualValues(t, 0o755, st.Mode&0o777)
	assert.EqualValues(t, 7, st.Rdev)
}

func TestNewInodeIncrementsCounters(t *testing.T) {
	c := newTestClass(t, Hooks{})
	sb := newTestSuper(t, c, "s")
	before := c.Counters.TotalInodes()

	i := c.NewInode(sb, c.DefaultStat(0o644))
	assert.Equal(t, before+1, c.Counters.TotalInodes(), "before already counts the root; the new inode adds one")
	assert.Equal(t, 2, sb.InoUsage())
	assert.Zero(t, i.Nlink())
}

func TestFreeInodeCascadesChildren(t *testing.T) {
	c := newTestClass(t, Hooks{})
	sb := newTestSuper(t, c, "s")

	dir := c.GenerateEntry(sb, sb.Root, "d", os.ModeDir|0o755).Inode
	c.GenerateEntry(sb, dir, "a", 0o644)
	c.GenerateEntry(sb, dir, "b", 0o644)
	assert.Equal(t, 4, sb.InoUsage(), "root + d + a + b")

	c.freeInode(dir)
	assert.Equal(t, 1, sb.InoUsage(), "only root remains")
	assert.Empty(t, dir.Children)
}

func TestFreeInodeSharedLinkJustDecrements(t *testing.T) {
	c := newTestClass(t, Hooks{})
	sb := newTestSuper(t, c, "s")

	i := c.NewInode(sb, c.DefaultStat(0o644))
	e1 := c.NewEntry("one", i)
	c.InsertEntry(sb.Root, e1)
	e2 := c.NewEntry("two", i)
	c.InsertEntry(sb.Root, e2)
	require.Equal(t, 2, i.Nlink())

	c.freeInode(i)
	assert.Equal(t, 1, i.Nlink())
	assert.Equal(t, 2, sb.InoUsage(), "inode still alive, only the link count dropped")
}

func TestFreeInodeRemovesLocalFile(t *testing.T) {
	c := newTestClass(t, Hooks{})
	sb := newTestSuper(t, c, "s")

	f, err := os.CreateTemp("", "vfscore-inode-test-*")
	require.NoError(t, err)
	f.Close()

	e := c.GenerateEntry(sb, sb.Root, "scratch", 0o644)
	e.Inode.Localname = f.Name()

	c.freeInode(e.Inode)
	_, statErr := os.Stat(f.Name())
	assert.True(t, os.IsNotExist(statErr))
}

func TestIsDirIsSymlink(t *testing.T) {
	c := newTestClass(t, Hooks{})
	sb := newTestSuper(t, c, "s")

	dir := c.GenerateEntry(sb, sb.Root, "d", os.ModeDir|0o755).Inode
	assert.True(t, dir.IsDir())
	assert.False(t, dir.IsSymlink())

	link := c.GenerateEntry(sb, sb.Root, "l", os.ModeSymlink|0o777).Inode
	assert.True(t, link.IsSymlink())
	assert.False(t, link.IsDir())
}
