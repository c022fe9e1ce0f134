package vfscore

import "os"

// ResolveLinear resolves against a flat root whose children are
// fully-qualified directory-fingerprint entries, per spec §4.D. It is used
// when the class is FlagRemote.
//
// root must be exactly sb.Root; passing any other inode is an invariant
// violation (spec §4.D "Assertion... this prevents subtree caches from
// being confused for fingerprint roots").
func (c *Class) ResolveLinear(sb *Superblock, root *Inode, path string, flags ResolveFlags) (*Entry, error) {
	if root != sb.Root {
		badBackend("ResolveLinear: root is not the superblock root")
	}
	p := canonicalPath(path)

	if flags&FlagDir == 0 {
		dir, name := splitPath(p)
		dirEntry, err := c.ResolveLinear(sb, root, dir, flags|FlagDir)
		if err != nil {
			return nil, err
		}
		if name == "" {
			return dirEntry, nil
		}
		return c.ResolveTree(sb, dirEntry.Inode, name, c.Cfg.FollowMax, flags)
	}

	if e := findChild(root, p); e != nil {
		if c.DirUpToDate(e.Inode) {
			return e, nil
		}
		c.Log.Debugf("vfscore: directory %q expired, reloading", p)
		c.freeEntry(e)
	}

	inode := c.NewInode(sb, c.DefaultStat(os.ModeDir|0o755))
	var e *Entry
	if p == "" {
		// The session's top directory is fingerprinted by the empty path,
		// which NewEntry rejects as a name, so its entry is built here.
		e = &Entry{Name: p, Inode: inode}
		inode.Ent = e
		if c.Hooks.InitEntry != nil {
			c.Hooks.InitEntry(e)
		}
	} else {
		e = c.NewEntry(p, inode)
	}
	if c.Hooks.DirLoad == nil {
		badBackend("ResolveLinear: DirLoad is required for a FlagRemote class")
	}
	if err := c.Hooks.DirLoad(inode, p); err != nil {
		c.freeInode(inode)
		return nil, pathErr("resolve", p, err)
	}
	inode.Timestamp = nowFunc().Add(c.Cfg.DefaultTTL)
	c.InsertEntry(root, e)
	return e, nil
}
