package vfscore

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindSuperblockRequiresHooks(t *testing.T) {
	c := NewClass("bare", 0, Hooks{}, DefaultConfig(), 0, nil)
	assert.Panics(t, func() {
		_, _ = c.FindSuperblock(context.Background(), "x", "open")
	})
}

func TestFindSuperblockReusesOnMatchSame(t *testing.T) {
	opens := 0
	var class *Class
	hooks := Hooks{
		OpenArchive: func(sb *Superblock, name, op string) error {
			opens++
			sb.Name = name
			sb.Root = class.emptyRoot(sb)
			return nil
		},
	}
	class = newTestClass(t, hooks)

	ctx := context.Background()
	sb1, err := class.FindSuperblock(ctx, "a", "open")
	require.NoError(t, err)
	sb2, err := class.FindSuperblock(ctx, "a", "open")
	require.NoError(t, err)
	assert.Same(t, sb1, sb2)
	assert.Equal(t, 1, opens)
}

func TestFindSuperblockFlagNoOpenFails(t *testing.T) {
	class := NewClass("noopen", FlagNoOpen, Hooks{
		ArchiveSame: func(sb *Superblock, name, op string, cookie interface{}) MatchResult { return MatchOther },
		OpenArchive: func(sb *Superblock, name, op string) error { return nil },
	}, DefaultConfig(), 0, nil)

	_, err := class.FindSuperblock(context.Background(), "x", "open")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrIO)
}

func TestOpenArchiveMustFillNameAndRoot(t *testing.T) {
	class := NewClass("incomplete", 0, Hooks{
		ArchiveSame: func(sb *Superblock, name, op string, cookie interface{}) MatchResult { return MatchOther },
		OpenArchive: func(sb *Superblock, name, op string) error { return nil },
	}, DefaultConfig(), 0, nil)

	assert.Panics(t, func() {
		_, _ = class.FindSuperblock(context.Background(), "x", "open")
	})
}

func TestFreeSuperblockRemovesFromRegistryAndClearsStamp(t *testing.T) {
	rm := 0
	var class *Class
	class = newTestClass(t, Hooks{
		OpenArchive: func(sb *Superblock, name, op string) error {
			sb.Name = name
			sb.Root = class.emptyRoot(sb)
			return nil
		},
	})
	class.Stamp = fakeStamper{rm: &rm}

	sb, err := class.FindSuperblock(context.Background(), "x", "open")
	require.NoError(t, err)
	class.FreeSuperblock(sb)

	assert.Nil(t, sb.Root)
	assert.Equal(t, 1, rm)

	names := map[string]bool{}
	class.FillNames("p", func(n string) { names[n] = true })
	assert.Empty(t, names)
}

func TestFillNamesFormatsNameHashPrefix(t *testing.T) {
	var class *Class
	class = newTestClass(t, Hooks{
		OpenArchive: func(sb *Superblock, name, op string) error {
			sb.Name = name
			sb.Root = class.emptyRoot(sb)
			return nil
		},
	})
	_, err := class.FindSuperblock(context.Background(), "archive.tar", "open")
	require.NoError(t, err)

	var got []string
	class.FillNames("cache", func(n string) { got = append(got, n) })
	require.Len(t, got, 1)
	assert.Equal(t, "archive.tar#cache/", got[0])
}

type fakeStamper struct {
	rm *int
}

func (fakeStamper) StampCreate(string) {}
func (f fakeStamper) RMStamp(string)   { *f.rm++ }

func TestEmptyRootIsDirectory(t *testing.T) {
	c := newTestClass(t, Hooks{})
	sb := &Superblock{Class: c}
	sb.Root = c.emptyRoot(sb)
	assert.True(t, sb.Root.IsDir())
	assert.EqualValues(t, os.ModeDir|0o755, sb.Root.Stat.Mode)
}
