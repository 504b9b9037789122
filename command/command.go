// Package command defines one Command type per syscall the model
// understands, each translating the generic model.FileSystem
// operation sequence a real syscall performs (parse path(s), look
// up/create, call the primitive, map the error to a return value)
// into a value that both the model and a command channel can
// consume.
package command

import (
	"github.com/LJxTHUCS/model-fs/fsval"
	"github.com/LJxTHUCS/model-fs/model"
)

// Kind names a syscall a Command can represent; used to restrict the
// commander's mix (e.g. dropping Linkat for FAT-like targets).
type Kind int

const (
	KindOpenat Kind = iota
	KindMkdirat
	KindLinkat
	KindUnlinkat
	KindDup
	KindClose
	KindChdir
)

func (k Kind) String() string {
	switch k {
	case KindOpenat:
		return "openat"
	case KindMkdirat:
		return "mkdirat"
	case KindLinkat:
		return "linkat"
	case KindUnlinkat:
		return "unlinkat"
	case KindDup:
		return "dup"
	case KindClose:
		return "close"
	case KindChdir:
		return "chdir"
	default:
		return "unknown"
	}
}

// Command is one syscall-shaped action: Apply executes it against a
// model FileSystem and returns the syscall-style return value (a
// non-negative result on success, a negative errno on failure).
type Command interface {
	Kind() Kind
	Apply(fs *model.FileSystem) int64
}

// Chdir models chdir(path), always resolved against AT_FDCWD (cwd
// itself has no dirfd to be relative to).
type Chdir struct {
	Path string
}

func (Chdir) Kind() Kind { return KindChdir }

func (c Chdir) Apply(fs *model.FileSystem) int64 {
	p, err := fs.ParsePath(fsval.AT_FDCWD, c.Path)
	if err == nil {
		err = fs.Chdir(p)
	}
	return model.Errno(err)
}

// Openat models openat(dirfd, path, flags, mode).
type Openat struct {
	Dirfd int
	Path  string
	Flags fsval.OpenFlags
	Mode  fsval.FileMode
}

func (Openat) Kind() Kind { return KindOpenat }

func (c Openat) Apply(fs *model.FileSystem) int64 {
	fd, err := fs.Openat(c.Dirfd, c.Path, c.Flags, c.Mode)
	if err != nil {
		return model.Errno(err)
	}
	return int64(fd)
}

// Mkdirat models mkdirat(dirfd, path, mode).
type Mkdirat struct {
	Dirfd int
	Path  string
	Mode  fsval.FileMode
}

func (Mkdirat) Kind() Kind { return KindMkdirat }

func (c Mkdirat) Apply(fs *model.FileSystem) int64 {
	return model.Errno(fs.Mkdirat(c.Dirfd, c.Path, c.Mode))
}

// Linkat models linkat(olddirfd, oldpath, newdirfd, newpath).
type Linkat struct {
	OldDirfd int
	OldPath  string
	NewDirfd int
	NewPath  string
}

func (Linkat) Kind() Kind { return KindLinkat }

func (c Linkat) Apply(fs *model.FileSystem) int64 {
	return model.Errno(fs.Linkat(c.OldDirfd, c.OldPath, c.NewDirfd, c.NewPath))
}

// Unlinkat models unlinkat(dirfd, path, flags).
type Unlinkat struct {
	Dirfd int
	Path  string
	Flags fsval.UnlinkatFlags
}

func (Unlinkat) Kind() Kind { return KindUnlinkat }

func (c Unlinkat) Apply(fs *model.FileSystem) int64 {
	return model.Errno(fs.Unlinkat(c.Dirfd, c.Path, c.Flags))
}

// Dup models dup(oldfd).
type Dup struct {
	OldFd int
}

func (Dup) Kind() Kind { return KindDup }

func (c Dup) Apply(fs *model.FileSystem) int64 {
	fd, err := fs.Dup(c.OldFd)
	if err != nil {
		return model.Errno(err)
	}
	return int64(fd)
}

// Close models close(fd).
type Close struct {
	Fd int
}

func (Close) Kind() Kind { return KindClose }

func (c Close) Apply(fs *model.FileSystem) int64 {
	return model.Errno(fs.Close(c.Fd))
}
