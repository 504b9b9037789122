package model

import (
	"errors"

	"golang.org/x/sys/unix"
)

// FsError values are compared with errors.Is; they're sentinel errors
// in the Go style rather than a closed Rust-style enum, following the
// same move the teacher corpus made from integer Status codes
// (fuse.Status) to syscall.Errno-based errors in its newer fs package.
var (
	ErrNotFound         = errors.New("model: not found")
	ErrPermissionDenied = errors.New("model: permission denied")
	ErrAlreadyExists    = errors.New("model: already exists")
	ErrIsDirectory      = errors.New("model: is a directory")
	ErrNotDirectory     = errors.New("model: not a directory")
	ErrBadFd            = errors.New("model: bad file descriptor")
	ErrNotOpened        = errors.New("model: file descriptor not opened")
	ErrNoAvailableFd    = errors.New("model: no available file descriptor")
	ErrInvalidPath      = errors.New("model: invalid path")
	ErrDirectoryNotEmpty = errors.New("model: directory not empty")
)

// Errno converts err (nil or one of the FsError sentinels above) into
// the syscall-style return value a Command reports: 0 on success, a
// negative errno on failure. Unrecognized errors map to -EIO so a bug
// in a new error path is visible as a distinctive return value rather
// than silently succeeding.
func Errno(err error) int64 {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, ErrNotFound):
		return -int64(unix.ENOENT)
	case errors.Is(err, ErrPermissionDenied):
		return -int64(unix.EACCES)
	case errors.Is(err, ErrAlreadyExists):
		return -int64(unix.EEXIST)
	case errors.Is(err, ErrIsDirectory):
		return -int64(unix.EISDIR)
	case errors.Is(err, ErrNotDirectory):
		return -int64(unix.ENOTDIR)
	case errors.Is(err, ErrBadFd), errors.Is(err, ErrNotOpened):
		return -int64(unix.EBADF)
	case errors.Is(err, ErrNoAvailableFd):
		return -int64(unix.EMFILE)
	case errors.Is(err, ErrInvalidPath):
		return -int64(unix.EINVAL)
	case errors.Is(err, ErrDirectoryNotEmpty):
		return -int64(unix.ENOTEMPTY)
	default:
		return -int64(unix.EIO)
	}
}
