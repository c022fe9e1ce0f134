package vfscore

import (
	"os"
	"strings"
)

// ResolveTree walks a complete in-memory tree segment by segment,
// following symlinks with loop protection, per spec §4.C. It is used when
// the class is not FlagRemote.
//
// follow bounds remaining symlink-follow depth; pass c.Cfg.FollowMax for a
// fresh top-level call.
//
// Open Question (a) (DESIGN.md): if an intermediate segment's symlink
// resolution fails, this returns (nil, err) even though a valid entry had
// already been located earlier in the walk. That is preserved verbatim,
// not "fixed".
func (c *Class) ResolveTree(sb *Superblock, start *Inode, path string, follow int, flags ResolveFlags) (*Entry, error) {
	p := canonicalPath(path)
	dir := start
	var cur *Entry

	for {
		seg, rest := splitSegment(p)
		if seg == "" {
			return cur, nil
		}
		p = rest
		isFinal := rest == ""

		if seg == ".." {
			if dir.Ent != nil && dir.Ent.Parent != nil {
				dir = dir.Ent.Parent
			}
			cur = dir.Ent
			if isFinal {
				return cur, nil
			}
			continue
		}

		e := findChild(dir, seg)
		if e == nil {
			switch {
			case isFinal && flags&FlagMkFile != 0:
				e = c.GenerateEntry(sb, dir, seg, 0o644)
			case isFinal && flags&FlagMkDir != 0:
				e = c.GenerateEntry(sb, dir, seg, os.ModeDir|0o755)
			case !isFinal && flags&FlagMkDir != 0:
				// Auto-vivify a missing intermediate directory. FlagMkFile
				// alone never does this: a regular file cannot stand in
				// for a path component that still has segments after it.
				e = c.GenerateEntry(sb, dir, seg, os.ModeDir|0o755)
			default:
				return nil, pathErr("resolve", path, ErrNotExist)
			}
		}
		cur = e

		followThis := !isFinal || flags&FlagFollow != 0
		if e.Inode.IsSymlink() && followThis {
			if follow <= 0 {
				return nil, pathErr("resolve", path, ErrLoop)
			}
			target := e.Inode.Linkname
			if !strings.HasPrefix(target, sep) {
				target = fullPath(dir) + sep + target
			}
			resolved, err := c.ResolveTree(sb, sb.Root, target, follow-1, flags)
			if err != nil {
				return nil, err
			}
			cur = resolved
			if isFinal {
				return cur, nil
			}
			if resolved == nil || !resolved.Inode.IsDir() {
				return nil, pathErr("resolve", path, ErrNotDir)
			}
			dir = resolved.Inode
			continue
		}

		if isFinal {
			return cur, nil
		}
		if !e.Inode.IsDir() {
			return nil, pathErr("resolve", path, ErrNotDir)
		}
		dir = e.Inode
	}
}
