// Package port defines the command-channel boundary to a
// target-under-test and the StatePort state machine that
// reconstructs an equivalent model.FileSystem by issuing only
// read-only syscalls against it.
package port

import (
	"github.com/LJxTHUCS/model-fs/command"
)

// CommandChannel is the request/response transport to a TUT. Every
// SendCommand is followed by exactly one ReceiveRetv and, for
// syscalls that carry an out-of-band payload (fstat, getdents,
// getcwd), one or more ReceiveExtraData calls. There is never more
// than one outstanding request, so no ordering ambiguity is possible.
//
// Implementations (the real wire codec, the QEMU transport) are
// external collaborators — this module only consumes the interface.
type CommandChannel interface {
	SendCommand(cmd command.Command) error
	ReceiveRetv() (int64, error)
	ReceiveExtraData(n int) ([]byte, error)
}

// ReadOnlyChannel is the subset of CommandChannel StatePort actually
// needs: it only ever issues read-only syscalls (open, fstat,
// getdents, close, getcwd), never a mutating Command. Representing
// those as small self-describing requests (rather than reusing
// command.Command, which is the mutating syscall surface) keeps
// StatePort from ever being able to mutate the TUT it's inspecting.
type ReadOnlyChannel interface {
	// SendOpenat issues openat(dirfd, name, O_RDONLY|O_DIRECTORY-agnostic, 0)
	// and returns the resulting fd (or a negative errno).
	SendOpenat(dirfd int, name string) (int64, error)
	// SendFstat issues fstat(fd) and returns the raw stat payload.
	SendFstat(fd int) ([]byte, error)
	// SendGetdents issues getdents(fd, count) and returns up to count
	// raw dirent payloads; an empty result means EOF.
	SendGetdents(fd int, count int) ([][]byte, error)
	// SendClose issues close(fd).
	SendClose(fd int) error
	// SendGetcwd issues getcwd() and returns the raw path payload.
	SendGetcwd() ([]byte, error)
}
