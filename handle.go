package vfscore

import (
	"context"
	"io"
	"os"

	"github.com/pkg/errors"
)

// LinearState is the four-state variant spec §4.E/§9 calls for explicitly,
// replacing "the source's integer flag with exhaustive case analysis".
type LinearState int

const (
	LinearInactive LinearState = iota
	LinearPreopen
	LinearOpen
	LinearClosed
)

// Handle is an open file descriptor: owning inode, current offset, an
// optional local scratch file, a dirty flag, and linear-read state (§4.E).
type Handle struct {
	Class  *Class
	Super  *Superblock
	Inode  *Inode
	Entry  *Entry
	offset int64
	local  *os.File
	changed bool
	linear  LinearState
}

// Offset returns the handle's current byte position.
func (h *Handle) Offset() int64 { return h.offset }

// Open implements spec §4.E "open(path, flags, mode)".
func (c *Class) Open(ctx context.Context, sb *Superblock, dir *Inode, path string, flags int, mode os.FileMode) (*Handle, error) {
	resolve := func(rflags ResolveFlags) (*Entry, error) {
		if c.IsRemote() {
			return c.ResolveLinear(sb, sb.Root, path, rflags)
		}
		return c.ResolveTree(sb, dir, path, c.Cfg.FollowMax, rflags)
	}

	e, err := resolve(FlagFollow)
	notFound := errors.Is(err, ErrNotExist) || (err == nil && e == nil)
	if err != nil && !notFound {
		return nil, err
	}

	if e != nil && flags&(os.O_CREATE|os.O_EXCL) == os.O_CREATE|os.O_EXCL {
		return nil, pathErr("open", path, ErrExist)
	}

	var created bool
	if e == nil {
		if flags&os.O_CREATE == 0 {
			return nil, pathErr("open", path, ErrNotExist)
		}
		if c.ReadOnly() {
			return nil, pathErr("open", path, ErrIO)
		}
		parentPath, name := splitPath(path)
		parentEntry, perr := resolveDir(c, sb, dir, parentPath)
		if perr != nil {
			return nil, perr
		}
		e = c.GenerateEntry(sb, parentEntry, name, mode&^os.ModeDir)
		created = true
	}

	if e.Inode.IsDir() {
		return nil, pathErr("open", path, ErrIsDir)
	}

	h := &Handle{Class: c, Super: sb, Inode: e.Inode, Entry: e}

	if created {
		f, ferr := os.CreateTemp("", c.Name+"-*")
		if ferr != nil {
			c.freeEntry(e)
			return nil, pathErr("open", path, ferr)
		}
		e.Inode.Localname = f.Name()
		h.local = f
		h.changed = true
	}

	if flags&os.O_TRUNC != 0 {
		h.changed = true
	}

	useLinear := c.Hooks.LinearStart != nil && !created
	if useLinear {
		h.linear = LinearPreopen
	} else if c.Hooks.FHOpen != nil {
		if err := c.Hooks.FHOpen(h, flags, mode); err != nil {
			c.releaseOnOpenFailure(h)
			return nil, pathErr("open", path, err)
		}
	}

	if !useLinear && h.local == nil && e.Inode.Localname != "" {
		localFlags := flags &^ (os.O_CREATE | os.O_EXCL)
		f, ferr := os.OpenFile(e.Inode.Localname, localFlags, mode)
		if ferr != nil {
			c.releaseOnOpenFailure(h)
			return nil, pathErr("open", path, ferr)
		}
		h.local = f
	}

	c.Stamp.RMStamp(sb.Name)
	sb.fdUsage++
	e.Inode.nlink++
	return h, nil
}

// resolveDir resolves parentPath to the directory inode used as an
// open(O_CREAT)'s insertion point.
func resolveDir(c *Class, sb *Superblock, start *Inode, parentPath string) (*Inode, error) {
	if parentPath == "" {
		if c.IsRemote() {
			e, err := c.ResolveLinear(sb, sb.Root, "", FlagDir)
			if err != nil {
				return nil, err
			}
			return e.Inode, nil
		}
		return start, nil
	}
	var e *Entry
	var err error
	if c.IsRemote() {
		e, err = c.ResolveLinear(sb, sb.Root, parentPath, FlagDir)
	} else {
		e, err = c.ResolveTree(sb, start, parentPath, c.Cfg.FollowMax, FlagFollow|FlagMkDir)
	}
	if err != nil {
		return nil, err
	}
	if !e.Inode.IsDir() {
		return nil, pathErr("open", parentPath, ErrNotDir)
	}
	return e.Inode, nil
}

func (c *Class) releaseOnOpenFailure(h *Handle) {
	if h.local != nil {
		_ = h.local.Close()
	}
	if h.Inode.Localname != "" {
		_ = os.Remove(h.Inode.Localname)
		h.Inode.Localname = ""
	}
}

// Read implements spec §4.E "read(buf, n)".
func (h *Handle) Read(buf []byte) (int, error) {
	switch h.linear {
	case LinearPreopen:
		if h.Class.Hooks.LinearStart == nil || !h.Class.Hooks.LinearStart(h, h.offset) {
			return 0, pathErr("read", fullPath(h.Inode), ErrIO)
		}
		h.linear = LinearOpen
		fallthrough
	case LinearOpen:
		n, err := h.Class.Hooks.LinearRead(h, buf)
		h.offset += int64(n)
		return n, err
	case LinearClosed:
		badBackend("Read: handle is in closed linear state")
	}

	if h.local == nil {
		badBackend("Read: no local fd and no linear state")
	}
	n, err := h.local.Read(buf)
	h.offset += int64(n)
	if err != nil && err != io.EOF {
		return n, pathErr("read", fullPath(h.Inode), err)
	}
	return n, err
}

// Write implements spec §4.E "write(buf, n)": forbidden while any linear
// state is set, and refused with ErrIO on a FlagReadOnly class.
func (h *Handle) Write(buf []byte) (int, error) {
	if h.Class.ReadOnly() {
		return 0, pathErr("write", fullPath(h.Inode), ErrIO)
	}
	if h.linear != LinearInactive {
		badBackend("Write: forbidden while linear state is set")
	}
	if h.local == nil {
		badBackend("Write: no local fd")
	}
	h.changed = true
	n, err := h.local.Write(buf)
	h.offset += int64(n)
	if err != nil {
		return n, pathErr("write", fullPath(h.Inode), err)
	}
	if h.offset > h.Inode.Stat.Size {
		h.Inode.Stat.Size = h.offset
	}
	return n, nil
}

// Lseek implements spec §4.E "lseek(off, whence)": forbidden once linear
// state is LinearOpen. The target is clamped to [0, size] before it ever
// reaches a local fd's Seek, so a local-fd-backed handle clamps exactly
// like a linear-backed one (§8 property 11) instead of surfacing the
// kernel's raw negative-offset/past-EOF behavior.
func (h *Handle) Lseek(off int64, whence int) (int64, error) {
	if h.linear == LinearOpen {
		badBackend("Lseek: forbidden once linear state is open")
	}

	var target int64
	switch whence {
	case io.SeekStart:
		target = off
	case io.SeekCurrent:
		target = h.offset + off
	case io.SeekEnd:
		target = h.Inode.Stat.Size + off
	default:
		return h.offset, pathErr("lseek", fullPath(h.Inode), ErrInvalid)
	}
	if target < 0 {
		target = 0
	}
	if target > h.Inode.Stat.Size {
		target = h.Inode.Stat.Size
	}

	if h.local != nil {
		n, err := h.local.Seek(target, io.SeekStart)
		if err != nil {
			return h.offset, pathErr("lseek", fullPath(h.Inode), err)
		}
		h.offset = n
		return h.offset, nil
	}

	h.offset = target
	return h.offset, nil
}

// Close implements spec §4.E "close()".
func (h *Handle) Close() error {
	c := h.Class
	sb := h.Super

	sb.fdUsage--
	if sb.fdUsage == 0 {
		c.Stamp.StampCreate(sb.Name)
	}

	if h.linear == LinearOpen && c.Hooks.LinearClose != nil {
		c.Hooks.LinearClose(h)
	}

	var result error
	if c.Hooks.FHClose != nil {
		result = c.Hooks.FHClose(h)
	}

	if h.changed && c.Hooks.FileStore != nil {
		full := fullPath(h.Inode)
		if err := c.Hooks.FileStore(h, full, h.Inode.Localname); err != nil {
			result = pathErr("close", full, err)
		} else {
			c.Invalidate(sb)
		}
	}

	if h.local != nil {
		_ = h.local.Close()
	}
	c.freeInode(h.Inode)
	return result
}
