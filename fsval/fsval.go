// Package fsval defines the syscall-adjacent value spaces that the
// rest of the module treats as opaque inputs: open/unlink flags, file
// mode bits, file kinds, and the wire-shaped stat/dirent structs.
//
// Numeric values mirror the real Unix constants (via
// golang.org/x/sys/unix) so that a command channel wired to a real
// kernel can compare bit-for-bit against what this package produces.
package fsval

import "golang.org/x/sys/unix"

// OpenFlags mirrors the flag bits accepted by openat(2).
type OpenFlags uint32

const (
	O_RDONLY   OpenFlags = unix.O_RDONLY
	O_WRONLY   OpenFlags = unix.O_WRONLY
	O_RDWR     OpenFlags = unix.O_RDWR
	O_CREAT    OpenFlags = unix.O_CREAT
	O_EXCL     OpenFlags = unix.O_EXCL
	O_TRUNC    OpenFlags = unix.O_TRUNC
	O_APPEND   OpenFlags = unix.O_APPEND
	O_DIRECTORY OpenFlags = unix.O_DIRECTORY
	O_NOFOLLOW OpenFlags = unix.O_NOFOLLOW
)

func (f OpenFlags) Has(bit OpenFlags) bool { return f&bit == bit }

// FileMode mirrors the permission bits of st_mode, in the standard
// octal layout (USER/GROUP/OTHER x READ/WRITE/EXEC).
type FileMode uint32

const (
	USER_READ   FileMode = unix.S_IRUSR
	USER_WRITE  FileMode = unix.S_IWUSR
	USER_EXEC   FileMode = unix.S_IXUSR
	GROUP_READ  FileMode = unix.S_IRGRP
	GROUP_WRITE FileMode = unix.S_IWGRP
	GROUP_EXEC  FileMode = unix.S_IXGRP
	OTHER_READ  FileMode = unix.S_IROTH
	OTHER_WRITE FileMode = unix.S_IWOTH
	OTHER_EXEC  FileMode = unix.S_IXOTH

	// ALL is every permission bit set; used for the root inode created
	// by model.NewRoot.
	ALL FileMode = USER_READ | USER_WRITE | USER_EXEC |
		GROUP_READ | GROUP_WRITE | GROUP_EXEC |
		OTHER_READ | OTHER_WRITE | OTHER_EXEC
)

func (m FileMode) Has(bit FileMode) bool { return m&bit == bit }

// UnlinkatFlags mirrors the flag bits accepted by unlinkat(2).
type UnlinkatFlags uint32

const (
	REMOVEDIR UnlinkatFlags = unix.AT_REMOVEDIR
)

func (f UnlinkatFlags) Has(bit UnlinkatFlags) bool { return f&bit == bit }

// FileKind distinguishes the two inode kinds the model tracks.
// Content-bearing kinds (symlinks, devices, sockets) are out of
// scope, per spec Non-goals.
type FileKind int

const (
	File FileKind = iota
	Directory
)

func (k FileKind) String() string {
	if k == Directory {
		return "directory"
	}
	return "file"
}

// DirEntry is one entry as returned by getdents(2).
type DirEntry struct {
	Ino  uint64
	Kind FileKind
	Name string
}

// FileStat is the subset of struct stat this module's equivalence
// relation cares about, plus the inode number StatePort uses to
// detect hard links on the TUT side.
type FileStat struct {
	Ino   uint64
	Mode  FileMode
	Nlink uint32
	Uid   uint32
	Gid   uint32
	Kind  FileKind
}

// Sentinels shared across the module.
const (
	// AT_FDCWD tells parse_path to resolve relative paths against cwd.
	AT_FDCWD = -100
	// FdTableSize is the number of fd slots a FileSystem maintains.
	FdTableSize = 256
	// MaxPathLen mirrors Linux's PATH_MAX.
	MaxPathLen = 4096
)
