package vfscore

import (
	"os"
	"time"
)

// Stat is the POSIX stat-shaped metadata carried by an Inode (spec §3).
type Stat struct {
	Mode  os.FileMode
	Uid   uint32
	Gid   uint32
	Size  int64
	Mtime time.Time
	Atime time.Time
	Ctime time.Time
	Rdev  uint64
}

// Inode represents a file, directory or symlink (spec §3 "Inode").
//
// nlink is not a field the caller sets directly: InsertEntry, freeEntry and
// freeInode keep it equal to the number of entries referring to the inode
// (§3 invariant), and Open and Opendir each add one more for as long as
// their handle is open.
type Inode struct {
	Super *Superblock
	Ino   uint64
	Dev   uint64
	Stat  Stat

	// Linkname is the symlink target; only meaningful when Stat.Mode has
	// the symlink bit set.
	Linkname string
	// Localname is the path to a scratch file backing a writable or
	// cached body (§3, §4.E); unlinked when the inode is freed.
	Localname string

	// Children holds this directory's entries in insertion order (§4.A
	// insert_entry: "forms part of readdir's contract"). Always empty for
	// non-directories (§3 invariant).
	Children []*Entry

	// Ent is the weak back-pointer to the entry that canonically names
	// this inode (§3, §9): never ownership, cleared by freeEntry before
	// the entry itself is released.
	Ent *Entry

	// Timestamp is the wall-clock freshness deadline used by the linear
	// resolver (§4.D) and DirUpToDate (§4.G): "backends set timestamp =
	// now + ttl".
	Timestamp time.Time

	// Payload is the opaque per-backend slot (§3).
	Payload interface{}

	nlink int
}

// Nlink returns the current hard-link count.
func (i *Inode) Nlink() int { return i.nlink }

// IsDir reports whether this inode is a directory.
func (i *Inode) IsDir() bool { return i.Stat.Mode&os.ModeDir != 0 }

// IsSymlink reports whether this inode is a symlink.
func (i *Inode) IsSymlink() bool { return i.Stat.Mode&os.ModeSymlink != 0 }

// DefaultStat builds a Stat with the current time and mode &^ umask, per
// spec §4.A "default_stat(mode)".
func (c *Class) DefaultStat(mode os.FileMode) Stat {
	now := time.Now()
	return Stat{
		Mode:  mode &^ c.Cfg.Umask,
		Uid:   uint32(os.Getuid()),
		Gid:   uint32(os.Getgid()),
		Mtime: now,
		Atime: now,
		Ctime: now,
		Rdev:  c.rdev,
	}
}

// NewInode allocates an inode with nlink=0, stamping a unique, monotonic
// Ino from the class counter and incrementing InoUsage/TotalInodes (spec
// §4.A "new_inode"). It never returns nil: a nil super is an invariant
// violation and panics.
func (c *Class) NewInode(sb *Superblock, stat Stat) *Inode {
	if sb == nil {
		badBackend("NewInode: nil superblock")
	}
	stat.Rdev = c.rdev
	i := &Inode{
		Super: sb,
		Ino:   c.nextIno(),
		Dev:   c.rdev,
		Stat:  stat,
	}
	sb.incInoUsage()
	c.Counters.incInode()
	if c.Hooks.InitInode != nil {
		c.Hooks.InitInode(i)
	}
	return i
}

// freeInode implements spec §4.A "free_inode": hard links decrement and
// return; the last link cascades into freeing the child entry sequence,
// then the backend hook, then the linkname/localname, then the counters.
//
// Cascading delete walks by repeatedly freeing Children[0] until empty,
// per spec's explicit design decision — robust against re-entrant
// mutation from a backend's FreeInode hook appending/removing children.
func (c *Class) freeInode(i *Inode) {
	if i == nil {
		badBackend("freeInode: nil inode")
	}
	if i.nlink > 1 {
		i.nlink--
		return
	}
	for len(i.Children) > 0 {
		c.freeEntry(i.Children[0])
	}
	if c.Hooks.FreeInode != nil {
		c.Hooks.FreeInode(i)
	}
	i.Linkname = ""
	if i.Localname != "" {
		_ = os.Remove(i.Localname)
		i.Localname = ""
	}
	i.Super.decInoUsage()
	c.Counters.decInode()
	i.nlink = 0
}
