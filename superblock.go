package vfscore

import (
	"context"
	"os"

	"github.com/pkg/errors"
)

// Superblock represents a mounted archive or remote session (spec §3
// "Superblock").
type Superblock struct {
	Class   *Class
	Name    string
	Root    *Inode
	Payload interface{}

	// WantStale, when true, makes Invalidate a no-op (§4.G, §G "want_stale").
	WantStale bool

	inoUsage int
	fdUsage  int
}

func (s *Superblock) incInoUsage() { s.inoUsage++ }
func (s *Superblock) decInoUsage() { s.inoUsage-- }

// InoUsage returns the number of live inodes belonging to this superblock.
func (s *Superblock) InoUsage() int { return s.inoUsage }

// FdUsage returns the number of live file handles open against this
// superblock.
func (s *Superblock) FdUsage() int { return s.fdUsage }

// FindSuperblock implements spec §4.B: scan the class's super list
// (most-recently-inserted-first) calling ArchiveSame; reuse on MatchSame,
// stop scanning on MatchStop, otherwise open a new one.
func (c *Class) FindSuperblock(ctx context.Context, name, op string) (*Superblock, error) {
	if c.Hooks.ArchiveSame == nil || c.Hooks.OpenArchive == nil {
		badBackend("FindSuperblock: ArchiveSame and OpenArchive are required hooks")
	}

	var cookie interface{}
	if c.Hooks.ArchiveCheck != nil {
		ck, ok := c.Hooks.ArchiveCheck(name, op)
		if !ok {
			return nil, pathErr("open", name, ErrIO)
		}
		cookie = ck
	}

	c.mu.Lock()
	supers := make([]*Superblock, len(c.supers))
	copy(supers, c.supers)
	c.mu.Unlock()

	for _, sb := range supers {
		switch c.Hooks.ArchiveSame(sb, name, op, cookie) {
		case MatchSame:
			c.Log.Infof("vfscore: reusing superblock %q for %q", sb.Name, name)
			return sb, nil
		case MatchStop:
			supers = nil
			goto openNew
		case MatchOther:
			// keep scanning
		}
	}

openNew:
	if c.Flags&FlagNoOpen != 0 {
		return nil, pathErr("open", name, ErrIO)
	}

	if err := c.openLimiter.Wait(ctx); err != nil {
		return nil, errors.Wrapf(err, "open %q: rate limit wait", name)
	}

	sb := &Superblock{Class: c}
	if err := c.Hooks.OpenArchive(sb, name, op); err != nil {
		return nil, pathErr("open", name, err)
	}
	if sb.Name == "" || sb.Root == nil {
		badBackend("OpenArchive for %q did not fill both Name and Root", name)
	}

	c.mu.Lock()
	c.supers = append([]*Superblock{sb}, c.supers...)
	c.mu.Unlock()

	c.Stamp.StampCreate(sb.Name)
	c.Log.Infof("vfscore: opened new superblock %q", sb.Name)
	return sb, nil
}

// FreeSuperblock destroys super (spec §3 Superblock lifecycle): frees the
// root inode (cascading), runs the backend's FreeArchive hook, and removes
// super from the class's list.
func (c *Class) FreeSuperblock(sb *Superblock) {
	if sb.Root != nil {
		c.freeInode(sb.Root)
		sb.Root = nil
	}
	if c.Hooks.FreeArchive != nil {
		c.Hooks.FreeArchive(sb)
	}

	c.mu.Lock()
	for idx, s := range c.supers {
		if s == sb {
			c.supers = append(c.supers[:idx], c.supers[idx+1:]...)
			break
		}
	}
	c.mu.Unlock()
	c.Stamp.RMStamp(sb.Name)
}

// FillNames implements spec §4.F "fill_names": calls f once per live
// superblock with "<super.name>#<class.prefix>/".
func (c *Class) FillNames(prefix string, f func(name string)) {
	c.mu.Lock()
	supers := make([]*Superblock, len(c.supers))
	copy(supers, c.supers)
	c.mu.Unlock()

	for _, sb := range supers {
		f(sb.Name + "#" + prefix + "/")
	}
}

// emptyRoot builds a fresh, empty directory inode to serve as a
// superblock's root, used both by OpenArchive implementations and by
// Invalidate (§4.G) when replacing a freed root.
func (c *Class) emptyRoot(sb *Superblock) *Inode {
	return c.NewInode(sb, c.DefaultStat(os.ModeDir|0o755))
}
