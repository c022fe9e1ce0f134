package main

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/time/rate"

	"github.com/vfscore/corefs"
	"github.com/vfscore/corefs/backend/stub"
)

var cfg = vfscore.DefaultConfig()

// umaskValue adapts os.FileMode to pflag.Value so --umask takes an octal
// literal the way a shell umask builtin would ("022", not "18").
type umaskValue struct{ m *os.FileMode }

func (u umaskValue) String() string {
	if u.m == nil {
		return "0"
	}
	return fmt.Sprintf("%03o", uint32(*u.m))
}

func (u umaskValue) Set(s string) error {
	v, err := strconv.ParseUint(s, 8, 32)
	if err != nil {
		return err
	}
	*u.m = os.FileMode(v)
	return nil
}

func (u umaskValue) Type() string { return "octal" }

var rootCmd = &cobra.Command{
	Use:   "vfscorectl",
	Short: "Exercise a vfscore Class against a local directory fixture",
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.IntVar(&cfg.FollowMax, "follow-max", cfg.FollowMax, "maximum symlink-follow depth")
	flags.Var(umaskValue{&cfg.Umask}, "umask", "octal umask applied to newly vivified entries")
	flags.DurationVar(&cfg.DefaultTTL, "ttl", cfg.DefaultTTL, "directory freshness window for the linear resolver")
	var openRate float64
	flags.Float64Var(&openRate, "open-rate", float64(cfg.OpenRate), "superblock opens per second")
	flags.IntVar(&cfg.OpenBurst, "open-burst", cfg.OpenBurst, "superblock open burst size")
	cobra.OnInitialize(func() {
		cfg.OpenRate = rate.Limit(openRate)
	})

	rootCmd.AddCommand(lsCmd, catCmd, statCmd, setctlStaleCmd, flushCmd)
}

// mount builds a tree-mode Class with a single fixture named dir, whose
// Builder walks dir on local disk, seeding the in-memory tree with real
// file bodies and symlink targets — a read-through archive-like view of
// an ordinary directory.
func mount(dir string) (*vfscore.Class, *vfscore.Superblock, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, nil, err
	}
	class := stub.NewTreeClass(map[string]stub.Builder{
		abs: func(c *vfscore.Class, sb *vfscore.Superblock) {
			_ = filepath.WalkDir(abs, func(p string, d fs.DirEntry, err error) error {
				if err != nil || p == abs {
					return err
				}
				rel, rerr := filepath.Rel(abs, p)
				if rerr != nil {
					return rerr
				}
				info, ierr := d.Info()
				if ierr != nil {
					return ierr
				}
				switch {
				case info.Mode()&os.ModeSymlink != 0:
					target, lerr := os.Readlink(p)
					if lerr != nil {
						return lerr
					}
					stub.PutSymlink(c, sb, rel, target)
				case d.IsDir():
					// Intermediate directories are auto-vivified by PutFile;
					// nothing to do for an empty directory until it gets a
					// child, matching the tree resolver's lazy creation.
				default:
					body, rerr := os.ReadFile(p)
					if rerr != nil {
						return rerr
					}
					stub.PutFile(c, sb, rel, body)
				}
				return nil
			})
		},
	}, cfg)
	class.Log.SetLevel(logrus.WarnLevel)

	sb, err := class.FindSuperblock(context.Background(), abs, "open")
	if err != nil {
		return nil, nil, err
	}
	return class, sb, nil
}

var lsCmd = &cobra.Command{
	Use:   "ls <dir> [path]",
	Short: "List a directory's entries",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		class, sb, err := mount(args[0])
		if err != nil {
			return err
		}
		path := ""
		if len(args) == 2 {
			path = args[1]
		}
		h, err := class.Opendir(cmd.Context(), sb, sb.Root, path)
		if err != nil {
			return err
		}
		defer class.Closedir(h)
		for d := h.Readdir(); d != nil; d = h.Readdir() {
			fmt.Fprintln(cmd.OutOrStdout(), d.Name)
		}
		return nil
	},
}

var catCmd = &cobra.Command{
	Use:   "cat <dir> <path>",
	Short: "Print a file's contents",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		class, sb, err := mount(args[0])
		if err != nil {
			return err
		}
		h, err := class.Open(cmd.Context(), sb, sb.Root, args[1], os.O_RDONLY, 0)
		if err != nil {
			return err
		}
		defer h.Close()
		_, err = io.Copy(cmd.OutOrStdout(), handleReader{h})
		return err
	},
}

type handleReader struct{ h *vfscore.Handle }

func (r handleReader) Read(buf []byte) (int, error) {
	n, err := r.h.Read(buf)
	if err == io.EOF || (n == 0 && err == nil) {
		return n, io.EOF
	}
	return n, err
}

var statCmd = &cobra.Command{
	Use:   "stat <dir> <path>",
	Short: "Print a path's metadata",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		class, sb, err := mount(args[0])
		if err != nil {
			return err
		}
		st, err := class.Stat(sb, sb.Root, args[1])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "mode=%v size=%d mtime=%s\n", st.Mode, st.Size, st.Mtime.Format(time.RFC3339))
		return nil
	},
}

var setctlStaleCmd = &cobra.Command{
	Use:   "stale <dir> on|off",
	Short: "Set or clear want_stale on the mounted superblock",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		var want bool
		switch args[1] {
		case "on":
			want = true
		case "off":
			want = false
		default:
			return fmt.Errorf("second argument must be on or off, got %q", args[1])
		}
		class, sb, err := mount(args[0])
		if err != nil {
			return err
		}
		return class.Setctl(sb, sb.Root, "", vfscore.CtlStaleData, want)
	},
}

var flushCmd = &cobra.Command{
	Use:   "flush <dir>",
	Short: "Force the next freshness check to report stale",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		class, sb, err := mount(args[0])
		if err != nil {
			return err
		}
		return class.Setctl(sb, sb.Root, "", vfscore.CtlFlush, nil)
	},
}

var _ pflag.Value = umaskValue{}
