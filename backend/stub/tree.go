// Package stub provides minimal in-memory BackendClass implementations
// used by this module's own tests, matching spec.md §8's "each scenario
// assumes a minimal stub backend". They are test fixtures, not production
// backends — concrete archive/wire-protocol drivers are explicitly out of
// scope (spec.md §1).
package stub

import (
	"os"

	"github.com/pkg/errors"
	"github.com/vfscore/corefs"
)

// Builder populates sb's (already-empty) root once OpenArchive has created
// it, using class to call GenerateEntry/ResolveTree etc.
type Builder func(class *vfscore.Class, sb *vfscore.Superblock)

// NewTreeClass returns an archive-like (tree-mode resolver) Class whose
// OpenArchive hook looks up name in builders and fills a fresh empty root
// before running it. A second FindSuperblock call with the same name
// reuses the existing superblock (ArchiveSame returns MatchSame on name
// equality), matching spec §8 scenario S6.
func NewTreeClass(builders map[string]Builder, cfg vfscore.Config) *vfscore.Class {
	var class *vfscore.Class
	hooks := vfscore.Hooks{
		ArchiveSame: func(sb *vfscore.Superblock, name, op string, cookie interface{}) vfscore.MatchResult {
			if sb.Name == name {
				return vfscore.MatchSame
			}
			return vfscore.MatchOther
		},
		OpenArchive: func(sb *vfscore.Superblock, name, op string) error {
			build, ok := builders[name]
			if !ok {
				return errors.Errorf("stub: no fixture registered for %q", name)
			}
			sb.Name = name
			sb.Root = class.NewInode(sb, class.DefaultStat(os.ModeDir|0o755))
			build(class, sb)
			return nil
		},
	}
	class = vfscore.NewClass("stub-tree", 0, hooks, cfg, 1, nil)
	return class
}

// PutFile seeds path (with intermediate directories auto-created) with
// body, backing it with a real scratch file so Handle.Read follows the
// ordinary local-fd path of spec §4.E rather than requiring a LinearRead
// hook — archive-like backends extract members eagerly.
func PutFile(c *vfscore.Class, sb *vfscore.Superblock, path string, body []byte) {
	e, err := c.ResolveTree(sb, sb.Root, path, c.Cfg.FollowMax, vfscore.FlagMkFile|vfscore.FlagMkDir)
	if err != nil {
		panic(err)
	}
	f, err := os.CreateTemp("", "stub-*")
	if err != nil {
		panic(err)
	}
	if _, err := f.Write(body); err != nil {
		panic(err)
	}
	_ = f.Close()
	e.Inode.Localname = f.Name()
	e.Inode.Stat.Size = int64(len(body))
}

// PutSymlink seeds path as a symlink pointing at target.
func PutSymlink(c *vfscore.Class, sb *vfscore.Superblock, path, target string) {
	e, err := c.ResolveTree(sb, sb.Root, path, c.Cfg.FollowMax, vfscore.FlagMkFile|vfscore.FlagMkDir)
	if err != nil {
		panic(err)
	}
	e.Inode.Stat.Mode = os.ModeSymlink | 0o777
	e.Inode.Linkname = target
}
