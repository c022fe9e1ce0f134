package vfscore

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// Flags describe a BackendClass's fixed capabilities (spec §3, §4.H).
type Flags uint32

const (
	// FlagReadOnly marks a class whose file handles never expose Write.
	FlagReadOnly Flags = 1 << iota
	// FlagRemote selects the linear (§4.D) path resolver instead of the
	// tree resolver (§4.C) and enables getlocalcopy/ungetlocalcopy.
	FlagRemote
	// FlagNoOpen makes the superblock registry (§4.B) fail with ErrIO
	// instead of opening a new superblock when no existing one matches.
	FlagNoOpen
)

// Hooks is the capability set a concrete backend supplies, per spec §6.
// Every field is optional; the core treats a nil hook as a no-op success
// unless the field comment says "required".
type Hooks struct {
	InitInode   func(i *Inode)
	InitEntry   func(e *Entry)
	FreeInode   func(i *Inode)
	FreeArchive func(s *Superblock)

	// DirLoad is required when FlagRemote is set. It populates inode's
	// children for the directory named by path (§4.D step 4).
	DirLoad func(i *Inode, path string) error
	// DirUpToDate replaces the timestamp comparison of the default
	// freshness check of §4.G; a pending flush is still reported first.
	DirUpToDate func(i *Inode) bool

	ArchiveCheck func(name string, op string) (cookie interface{}, ok bool)
	// ArchiveSame is required. It returns MatchOther, MatchSame or
	// MatchStop per spec §4.B.
	ArchiveSame func(s *Superblock, name string, op string, cookie interface{}) MatchResult
	// OpenArchive is required. It must fill both Name and Root on s, or
	// the registry panics (incomplete super from open_archive, §7).
	OpenArchive func(s *Superblock, name string, op string) error

	FHOpen  func(h *Handle, flags int, mode os.FileMode) error
	FHClose func(h *Handle) error

	LinearStart func(h *Handle, off int64) bool
	LinearRead  func(h *Handle, buf []byte) (int, error)
	LinearClose func(h *Handle)

	FileStore func(h *Handle, fullPath, localPath string) error
}

// MatchResult is the outcome of ArchiveSame, per spec §4.B.
type MatchResult int

const (
	// MatchOther means this superblock does not match; keep scanning.
	MatchOther MatchResult = iota
	// MatchSame means this superblock matches; reuse it.
	MatchSame
	// MatchStop means stop scanning without a match, forcing a new open
	// even if an older superblock would otherwise have unified.
	MatchStop
)

// Config holds the class-wide tunables spec's ambient-stack expansion adds
// (§A.3): loop-protection depth, umask, and default directory TTL.
type Config struct {
	// FollowMax bounds symlink-follow depth (§4.C step 5, §8 property 9).
	FollowMax int
	// Umask is applied by DefaultStat (§4.A).
	Umask os.FileMode
	// DefaultTTL is added to "now" to stamp a freshly loaded directory's
	// Inode.Timestamp (§4.D, §4.G): "backends set timestamp = now + ttl".
	DefaultTTL time.Duration
	// OpenRate bounds open_archive calls per second (archive_same is not
	// limited),
	// guarding against a thundering herd of superblock opens (§B).
	OpenRate rate.Limit
	// OpenBurst is the token-bucket burst size paired with OpenRate.
	OpenBurst int
}

// DefaultConfig returns the default tunables. NewClass substitutes the
// FollowMax, OpenRate and OpenBurst defaults for zero values; a zero Umask
// or DefaultTTL is kept as given.
func DefaultConfig() Config {
	return Config{
		FollowMax:  5,
		Umask:      0o022,
		DefaultTTL: 60 * time.Second,
		OpenRate:   50,
		OpenBurst:  10,
	}
}

// Stamper is the narrow external collaborator spec §1/§4.G describes: "the
// core only calls stamp_create, rmstamp". An ager decides independently
// when to call Free on a superblock whose stamp has gone cold; vfscore
// never calls Free itself. See package stamp for a concrete implementation.
type Stamper interface {
	StampCreate(superName string)
	RMStamp(superName string)
}

type noopStamper struct{}

func (noopStamper) StampCreate(string) {}
func (noopStamper) RMStamp(string)     {}

// Class is a mounted backend class: the method table of §4.H, installed
// over the Inode/Entry/Superblock primitives of §4.A–§4.D, plus the
// per-class mutable state §3 calls out ("inode_counter, rdev, process-wide
// logfile, flush").
type Class struct {
	Name  string
	Flags Flags
	Hooks Hooks
	Cfg   Config

	Counters Counters
	Stamp    Stamper
	Log      *logrus.Logger

	mu          sync.Mutex
	supers      []*Superblock // most-recently-inserted-first, §4.B
	inodeNext   uint64
	rdev        uint64
	flush       bool
	openLimiter *rate.Limiter

	logFile io.WriteCloser
}

// NewClass builds a Class ready to mount superblocks. rdev is the device
// number this class's inodes report in Inode.Dev and Stat.Rdev (§3).
func NewClass(name string, flags Flags, hooks Hooks, cfg Config, rdev uint64, stamp Stamper) *Class {
	if cfg.FollowMax <= 0 {
		cfg.FollowMax = DefaultConfig().FollowMax
	}
	if cfg.OpenRate <= 0 {
		cfg.OpenRate = DefaultConfig().OpenRate
	}
	if cfg.OpenBurst <= 0 {
		cfg.OpenBurst = DefaultConfig().OpenBurst
	}
	if stamp == nil {
		stamp = noopStamper{}
	}
	log := logrus.New()
	log.SetLevel(logrus.InfoLevel)
	if flags&FlagReadOnly != 0 {
		hooks.FileStore = nil
	}
	return &Class{
		Name:        name,
		Flags:       flags,
		Hooks:       hooks,
		Cfg:         cfg,
		Stamp:       stamp,
		Log:         log,
		rdev:        rdev,
		openLimiter: rate.NewLimiter(cfg.OpenRate, cfg.OpenBurst),
	}
}

// IsRemote reports whether this class uses the linear resolver (§4.D).
func (c *Class) IsRemote() bool { return c.Flags&FlagRemote != 0 }

// ReadOnly reports whether this class's handles forbid Write.
func (c *Class) ReadOnly() bool { return c.Flags&FlagReadOnly != 0 }

func (c *Class) nextIno() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.inodeNext++
	return c.inodeNext
}

// SetLogFile implements setctl(LOGFILE, path) from spec §4.F.
func (c *Class) SetLogFile(path string) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return pathErr("setctl(LOGFILE)", path, err)
	}
	c.mu.Lock()
	old := c.logFile
	c.logFile = f
	c.mu.Unlock()
	if old != nil {
		_ = old.Close()
	}
	c.Log.SetOutput(f)
	return nil
}

// SetFlush implements setctl(FLUSH) from spec §4.F: "set a class-wide
// flush flag consumed on next freshness check".
func (c *Class) SetFlush() {
	c.mu.Lock()
	c.flush = true
	c.mu.Unlock()
}

// consumeFlush clears and returns the flush flag; used by dir_uptodate
// (§4.G).
func (c *Class) consumeFlush() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.flush {
		c.flush = false
		return true
	}
	return false
}
