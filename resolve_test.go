package vfscore

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanonicalPathDropsDotAndCollapsesSlashes(t *testing.T) {
	assert.Equal(t, "a/b", canonicalPath("./a//./b/"))
	assert.Equal(t, "../a", canonicalPath("../a"))
	assert.Equal(t, "", canonicalPath("."))
}

func TestSplitSegment(t *testing.T) {
	seg, rest := splitSegment("a/b/c")
	assert.Equal(t, "a", seg)
	assert.Equal(t, "b/c", rest)

	seg, rest = splitSegment("leaf")
	assert.Equal(t, "leaf", seg)
	assert.Equal(t, "", rest)

	seg, rest = splitSegment("")
	assert.Equal(t, "", seg)
	assert.Equal(t, "", rest)
}

func TestSplitPath(t *testing.T) {
	dir, name := splitPath("a/b/c")
	assert.Equal(t, "a/b", dir)
	assert.Equal(t, "c", name)

	dir, name = splitPath("leaf")
	assert.Equal(t, "", dir)
	assert.Equal(t, "leaf", name)
}

func TestFindChildExactMatch(t *testing.T) {
	c := newTestClass(t, Hooks{})
	sb := newTestSuper(t, c, "s")
	e := c.GenerateEntry(sb, sb.Root, "ab", 0o644)
	c.GenerateEntry(sb, sb.Root, "abc", 0o644)

	assert.Same(t, e, findChild(sb.Root, "ab"))
	assert.Nil(t, findChild(sb.Root, "zz"))
}

func TestFullPathWalksBackpointerChain(t *testing.T) {
	c := newTestClass(t, Hooks{})
	sb := newTestSuper(t, c, "s")
	dir := c.GenerateEntry(sb, sb.Root, "a", os.ModeDir|0o755).Inode
	leaf := c.GenerateEntry(sb, dir, "b", 0o644)

	assert.Equal(t, "a/b", fullPath(leaf.Inode))
	assert.Equal(t, "", fullPath(sb.Root))
}
