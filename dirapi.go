package vfscore

import (
	"context"
	"os"
)

// Dirent is the shell yielded by DirHandle.Readdir (spec §4.F "readdir").
// Unlike the source's process-static buffer, it is owned by the iterator
// (§9 open question (b)), safe for concurrent iterators over different
// handles.
type Dirent struct {
	Name string
}

// DirHandle is an opendir/readdir/closedir iterator (spec §4.F).
type DirHandle struct {
	Class *Class
	Super *Superblock
	Inode *Inode
	pos   int
}

// resolveInode resolves path to its inode, falling back to start when the
// resolver returns a nil entry with no error — spec §4.C step 2: "if
// empty, return the most recent entry (the directory itself at start →
// null)" — a null entry means "the starting directory", not "not found".
func (c *Class) resolveInode(sb *Superblock, start *Inode, path string, flags ResolveFlags) (*Inode, error) {
	var e *Entry
	var err error
	if c.IsRemote() {
		e, err = c.ResolveLinear(sb, sb.Root, path, flags)
	} else {
		e, err = c.ResolveTree(sb, start, path, c.Cfg.FollowMax, flags)
	}
	if err != nil {
		return nil, err
	}
	if e == nil {
		return start, nil
	}
	return e.Inode, nil
}

// Opendir implements spec §4.F "opendir(path)": resolves with
// FlagDir|FlagFollow, requires a directory, pins it by incrementing nlink
// for the iterator's lifetime, and returns an iterator at the first
// child.
func (c *Class) Opendir(ctx context.Context, sb *Superblock, start *Inode, path string) (*DirHandle, error) {
	inode, err := c.resolveInode(sb, start, path, FlagDir|FlagFollow)
	if err != nil {
		return nil, err
	}
	if !inode.IsDir() {
		return nil, pathErr("opendir", path, ErrNotDir)
	}
	inode.nlink++
	return &DirHandle{Class: c, Super: sb, Inode: inode}, nil
}

// Readdir implements spec §4.F "readdir(h)": yields the current entry's
// name and advances the cursor; returns nil past end.
func (h *DirHandle) Readdir() *Dirent {
	if h.pos >= len(h.Inode.Children) {
		return nil
	}
	e := h.Inode.Children[h.pos]
	h.pos++
	return &Dirent{Name: e.Name}
}

// Closedir implements spec §4.F "closedir(h)": releases the inode (undoing
// Opendir's pin).
func (c *Class) Closedir(h *DirHandle) {
	c.freeInode(h.Inode)
}

// Chdir implements spec §4.F "chdir(path)": exactly Opendir + Closedir.
func (c *Class) Chdir(ctx context.Context, sb *Superblock, start *Inode, path string) error {
	h, err := c.Opendir(ctx, sb, start, path)
	if err != nil {
		return err
	}
	c.Closedir(h)
	return nil
}

func (c *Class) stat(sb *Superblock, start *Inode, path string, follow ResolveFlags) (Stat, error) {
	inode, err := c.resolveInode(sb, start, path, follow)
	if err != nil {
		return Stat{}, err
	}
	return inode.Stat, nil
}

// Stat implements spec §4.F "stat": follows symlinks.
func (c *Class) Stat(sb *Superblock, start *Inode, path string) (Stat, error) {
	return c.stat(sb, start, path, FlagFollow)
}

// Lstat implements spec §4.F "lstat": does not follow the final symlink.
func (c *Class) Lstat(sb *Superblock, start *Inode, path string) (Stat, error) {
	return c.stat(sb, start, path, 0)
}

// Fstat implements spec §4.F "fstat": copies the handle's inode Stat.
func (h *Handle) Fstat() Stat { return h.Inode.Stat }

// Readlink implements spec §4.F "readlink(path, buf, size)".
func (c *Class) Readlink(sb *Superblock, start *Inode, path string, size int) ([]byte, error) {
	inode, err := c.resolveInode(sb, start, path, 0)
	if err != nil {
		return nil, err
	}
	if !inode.IsSymlink() {
		return nil, pathErr("readlink", path, ErrInvalid)
	}
	if inode.Linkname == "" {
		return nil, pathErr("readlink", path, ErrFault)
	}
	link := inode.Linkname
	if size < len(link) {
		return []byte(link[:size]), nil
	}
	return []byte(link), nil
}

// CtlOp names a setctl operation (spec §4.F "setctl(op, arg)").
type CtlOp int

const (
	CtlStaleData CtlOp = iota
	CtlLogfile
	CtlFlush
)

// Setctl implements spec §4.F "setctl(op, arg)".
func (c *Class) Setctl(sb *Superblock, start *Inode, path string, op CtlOp, arg interface{}) error {
	switch op {
	case CtlStaleData:
		want, _ := arg.(bool)
		inode, err := c.resolveInode(sb, start, path, FlagFollow)
		if err != nil {
			return err
		}
		c.SetStale(inode.Super, want)
		return nil
	case CtlLogfile:
		p, _ := arg.(string)
		return c.SetLogFile(p)
	case CtlFlush:
		c.SetFlush()
		return nil
	default:
		return pathErr("setctl", path, ErrInvalid)
	}
}

// GetID implements spec §4.F "getid": returns the given superblock as the
// mount's identifier without opening a handle; it does not resolve a path.
// Since the core tracks handle lifetime via
// fd_usage directly, NothingIsOpen always reports true, per spec.
func (c *Class) GetID(sb *Superblock) *Superblock { return sb }

// NothingIsOpen implements spec §4.F "nothingisopen(id)".
func (c *Class) NothingIsOpen(*Superblock) bool { return true }

// FreeID implements spec §4.F "free(id)": tears the superblock down.
func (c *Class) FreeID(sb *Superblock) { c.FreeSuperblock(sb) }

// GetLocalCopy implements spec §4.F "getlocalcopy(path)": opens the file
// read-only and, if the inode has a localname, returns a duplicate of that
// path string; only meaningful for FlagRemote classes (§4.H "Installs
// getlocalcopy/ungetlocalcopy only for REMOTE").
func (c *Class) GetLocalCopy(ctx context.Context, sb *Superblock, start *Inode, path string) (string, error) {
	if !c.IsRemote() {
		badBackend("GetLocalCopy: only valid for a FlagRemote class")
	}
	h, err := c.Open(ctx, sb, start, path, os.O_RDONLY, 0)
	if err != nil {
		return "", err
	}
	defer h.Close()
	if h.Inode.Localname == "" {
		return "", nil
	}
	return h.Inode.Localname, nil
}

// UngetLocalCopy implements spec §4.F "ungetlocalcopy": a no-op, since the
// cache owns the scratch file.
func (c *Class) UngetLocalCopy(string) {}
