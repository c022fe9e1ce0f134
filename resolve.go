package vfscore

import "strings"

// ResolveFlags control path resolution behaviour (spec §4.C, §4.D).
type ResolveFlags uint32

const (
	// FlagMkFile auto-creates a missing final segment as a regular file.
	FlagMkFile ResolveFlags = 1 << iota
	// FlagMkDir auto-creates a missing final segment as a directory.
	FlagMkDir
	// FlagFollow follows a symlink at the final segment. Intermediate
	// segments always follow regardless of this flag (§4.C step 5).
	FlagFollow
	// FlagDir asserts the caller wants a directory result; used by the
	// linear resolver (§4.D step 2) to pick directory-vs-leaf handling.
	FlagDir
)

const sep = "/"

// canonicalPath removes "." segments and collapses repeated separators
// but preserves ".." segments, per spec §6 "Canonicalisation removes .,
// collapses repeated separators, but preserves ..".
func canonicalPath(p string) string {
	parts := strings.Split(p, sep)
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if part == "" || part == "." {
			continue
		}
		out = append(out, part)
	}
	return strings.Join(out, sep)
}

// splitSegment skips leading separators, then extracts the next path
// segment up to the next separator, returning the segment and the
// remainder after that one separator, per spec §4.C step 2.
func splitSegment(p string) (seg, rest string) {
	for len(p) > 0 && p[0] == '/' {
		p = p[1:]
	}
	if p == "" {
		return "", ""
	}
	if idx := strings.IndexByte(p, '/'); idx >= 0 {
		return p[:idx], p[idx+1:]
	}
	return p, ""
}

// findChild scans dir's children linearly for an exact name match, per
// spec §4.C step 2 ("exact length+byte match").
func findChild(dir *Inode, name string) *Entry {
	for _, e := range dir.Children {
		if e.Name == name {
			return e
		}
	}
	return nil
}

// dirname/basename split, used by the linear resolver (§4.D step 2).
func splitPath(p string) (dir, name string) {
	p = canonicalPath(p)
	idx := strings.LastIndexByte(p, '/')
	if idx < 0 {
		return "", p
	}
	return p[:idx], p[idx+1:]
}

// fullPath reconstructs i's path by walking the weak Ent/Parent back-
// pointer chain up to the superblock root (whose Ent is nil), per spec §3
// "back-pointer to the entry that canonically names it... used for
// path-reconstruction".
func fullPath(i *Inode) string {
	var parts []string
	cur := i.Ent
	for cur != nil {
		parts = append([]string{cur.Name}, parts...)
		if cur.Parent == nil {
			break
		}
		cur = cur.Parent.Ent
	}
	return strings.Join(parts, sep)
}
