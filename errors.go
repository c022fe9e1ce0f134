package vfscore

import (
	"fmt"

	"github.com/pkg/errors"
)

// Sentinel error kinds, checked with errors.Is. These mirror the POSIX
// errno family named in spec §6/§7 rather than wrapping syscall.Errno
// directly, since a backend need not run on a POSIX host to implement
// Class.
var (
	ErrNotExist = errors.New("no such file or directory")
	ErrExist    = errors.New("file exists")
	ErrNotDir   = errors.New("not a directory")
	ErrIsDir    = errors.New("is a directory")
	ErrInvalid  = errors.New("invalid argument")
	ErrFault    = errors.New("bad address")
	ErrLoop     = errors.New("too many levels of symbolic links")
	ErrIO       = errors.New("input/output error")
)

// PathError records the path an operation was attempting to resolve or act
// on alongside the underlying sentinel error, matching the "class-wide
// verrno" propagation policy of spec §7: resolver and handle failures
// surface a single wrapped error rather than a bare errno.
type PathError struct {
	Op   string
	Path string
	Err  error
}

func (e *PathError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *PathError) Unwrap() error { return e.Err }

func pathErr(op, path string, err error) error {
	if err == nil {
		return nil
	}
	return &PathError{Op: op, Path: path, Err: err}
}

// badBackend panics for contract violations that spec §7 classifies as
// invariant-violation: non-recoverable bugs in a backend, never surfaced
// as a returned error because the caller cannot act on them.
func badBackend(format string, args ...interface{}) {
	panic(fmt.Sprintf("vfscore: backend contract violation: "+format, args...))
}
