package stub

import (
	"io"
	"os"
	"strings"

	"github.com/vfscore/corefs"
)

// RemoteFixture describes one session's listing for NewRemoteClass,
// keyed by full directory path (the linear resolver's fingerprint name,
// spec §4.D).
type RemoteFixture struct {
	// Dirs maps a full directory path (e.g. "usr/src/linux/drivers") to
	// the names of its immediate children.
	Dirs map[string][]string
	// Files maps a full file path (e.g. "usr/src/linux/drivers/README")
	// to the body LinearRead serves for it, exercising the linear-read
	// state machine of spec §4.E rather than the local-scratch-file path.
	Files map[string][]byte
	// Loads counts DirLoad invocations per directory path, so tests can
	// assert the TTL-expiry behaviour of spec §8 scenario S3.
	Loads map[string]int
}

// remoteFullPath reconstructs the full path of a leaf entry served under a
// flat-root directory fingerprint: the fingerprint entry's own Name is
// already the full directory path (spec §4.D), so walking one level of
// Entry/Parent back-pointers and skipping the root's own empty name is
// enough.
func remoteFullPath(e *vfscore.Entry) string {
	var parts []string
	for e != nil {
		if e.Name != "" {
			parts = append([]string{e.Name}, parts...)
		}
		if e.Parent == nil {
			break
		}
		e = e.Parent.Ent
	}
	return strings.Join(parts, "/")
}

// NewRemoteClass returns a session-like (linear-mode resolver) Class whose
// DirLoad hook serves listings out of fixtures, keyed by superblock name
// (the "session"), incrementing RemoteFixture.Loads on every load —
// including reloads after TTL expiry or FLUSH.
func NewRemoteClass(fixtures map[string]*RemoteFixture, cfg vfscore.Config) *vfscore.Class {
	var class *vfscore.Class
	hooks := vfscore.Hooks{
		ArchiveSame: func(sb *vfscore.Superblock, name, op string, cookie interface{}) vfscore.MatchResult {
			if sb.Name == name {
				return vfscore.MatchSame
			}
			return vfscore.MatchOther
		},
		OpenArchive: func(sb *vfscore.Superblock, name, op string) error {
			sb.Name = name
			sb.Root = class.NewInode(sb, class.DefaultStat(os.ModeDir|0o755))
			return nil
		},
		DirLoad: func(i *vfscore.Inode, path string) error {
			fx := fixtures[i.Super.Name]
			if fx == nil {
				return fixtureErr{i.Super.Name}
			}
			if fx.Loads == nil {
				fx.Loads = map[string]int{}
			}
			fx.Loads[path]++
			for _, name := range fx.Dirs[path] {
				class.GenerateEntry(i.Super, i, name, 0o644)
			}
			return nil
		},
		LinearStart: func(h *vfscore.Handle, off int64) bool {
			fx := fixtures[h.Super.Name]
			if fx == nil {
				return false
			}
			body, ok := fx.Files[remoteFullPath(h.Entry)]
			if !ok || off > int64(len(body)) {
				return false
			}
			h.Inode.Payload = body
			return true
		},
		LinearRead: func(h *vfscore.Handle, buf []byte) (int, error) {
			body, _ := h.Inode.Payload.([]byte)
			off := h.Offset()
			if off >= int64(len(body)) {
				return 0, io.EOF
			}
			return copy(buf, body[off:]), nil
		},
		LinearClose: func(h *vfscore.Handle) {
			h.Inode.Payload = nil
		},
	}
	class = vfscore.NewClass("stub-remote", vfscore.FlagRemote, hooks, cfg, 2, nil)
	return class
}

type fixtureErr struct{ name string }

func (e fixtureErr) Error() string { return "stub: no remote fixture for session " + e.name }
