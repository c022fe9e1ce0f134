package vfscore

// DirUpToDate implements spec §4.G "dir_uptodate": if the class-wide flush
// flag is set, clear it and report stale; otherwise fresh iff now is
// strictly before the inode's stamped Timestamp ("now + ttl").
//
// A backend supplying Hooks.DirUpToDate replaces the timestamp comparison;
// a pending flush is still consumed and reported as stale before the hook
// is consulted.
func (c *Class) DirUpToDate(i *Inode) bool {
	if c.consumeFlush() {
		return false
	}
	if c.Hooks.DirUpToDate != nil {
		return c.Hooks.DirUpToDate(i)
	}
	return nowFunc().Before(i.Timestamp)
}

// Invalidate implements spec §4.G: if WantStale is false, free the root
// inode (cascading) and install a fresh empty directory root; if
// WantStale is true, do nothing, preserving a snapshot of an endpoint
// known to be offline.
func (c *Class) Invalidate(sb *Superblock) {
	if sb.WantStale {
		return
	}
	if sb.Root != nil {
		c.freeInode(sb.Root)
	}
	sb.Root = c.emptyRoot(sb)
	c.Log.Infof("vfscore: invalidated superblock %q", sb.Name)
}

// SetStale implements setctl(STALE_DATA, arg) from spec §4.F: set
// Superblock.WantStale; when clearing it, also invalidate.
func (c *Class) SetStale(sb *Superblock, wantStale bool) {
	sb.WantStale = wantStale
	if !wantStale {
		c.Invalidate(sb)
	}
}
