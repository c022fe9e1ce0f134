package vfscore

import "os"

// Entry is a (name, inode, parent-directory) triple (spec §3 "Entry").
type Entry struct {
	Name   string
	Inode  *Inode
	Parent *Inode // weak link; nil until InsertEntry
}

// NewEntry builds an entry naming inode and points the inode's weak
// back-pointer at it (spec §4.A "new_entry"). The entry is not yet linked
// into any parent's child sequence; call InsertEntry for that.
func (c *Class) NewEntry(name string, inode *Inode) *Entry {
	if name == "" {
		badBackend("NewEntry: empty name")
	}
	e := &Entry{Name: name, Inode: inode}
	inode.Ent = e
	if c.Hooks.InitEntry != nil {
		c.Hooks.InitEntry(e)
	}
	return e
}

// InsertEntry links entry into parentDir's child sequence in insertion
// order and increments the inode's nlink (spec §4.A "insert_entry").
func (c *Class) InsertEntry(parentDir *Inode, e *Entry) {
	if !parentDir.IsDir() {
		badBackend("InsertEntry: parent %d is not a directory", parentDir.Ino)
	}
	e.Parent = parentDir
	e.Inode.nlink++
	parentDir.Children = append(parentDir.Children, e)
	c.Counters.incEntry()
}

// freeEntry removes entry from its parent's child sequence, clears the
// inode's canonical back-pointer if it pointed here, and releases the
// inode, which may cascade (spec §4.A "free_entry").
func (c *Class) freeEntry(e *Entry) {
	if e == nil {
		badBackend("freeEntry: nil entry")
	}
	if e.Parent != nil {
		siblings := e.Parent.Children
		for idx, s := range siblings {
			if s == e {
				e.Parent.Children = append(siblings[:idx], siblings[idx+1:]...)
				break
			}
		}
	}
	e.Name = ""
	if e.Inode.Ent == e {
		e.Inode.Ent = nil
	}
	c.Counters.decEntry()
	c.freeInode(e.Inode)
}

// GenerateEntry combines NewInode(DefaultStat(mode)) and NewEntry, then
// InsertEntry under parent — spec §4.A's "generate_entry(name, parent,
// mode)" convenience.
func (c *Class) GenerateEntry(sb *Superblock, parent *Inode, name string, mode os.FileMode) *Entry {
	inode := c.NewInode(sb, c.DefaultStat(mode))
	e := c.NewEntry(name, inode)
	c.InsertEntry(parent, e)
	return e
}
