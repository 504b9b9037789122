// Package loopchan provides an in-memory port.CommandChannel and
// port.ReadOnlyChannel backed directly by a model.FileSystem, with no
// wire encoding or transport in between. It exists so the rest of the
// module — the commander, the checker, StatePort — can be exercised
// and tested without a real target-under-test or codec, the same way
// the teacher's loopback filesystem lets its higher layers be tested
// without a kernel mount.
package loopchan

import (
	"fmt"
	"sort"

	"github.com/LJxTHUCS/model-fs/command"
	"github.com/LJxTHUCS/model-fs/fsval"
	"github.com/LJxTHUCS/model-fs/model"
	"github.com/LJxTHUCS/model-fs/port"
)

// dirCursor tracks one open directory fd's getdents progress: the
// full entry list computed once on the first call, and a read
// position advanced by each subsequent call.
type dirCursor struct {
	entries []fsval.DirEntry
	pos     int
}

// Channel is a loopback port.CommandChannel and port.ReadOnlyChannel
// pair, both backed by the same underlying FileSystem. A Checker can
// drive the CommandChannel half to mutate it and the ReadOnlyChannel
// half to reconstruct it via StatePort, exactly as it would a real
// TUT, without any serialization in between.
type Channel struct {
	fs *model.FileSystem

	pendingRetv int64
	haveRetv    bool

	dirCursors map[int]*dirCursor
}

// New wraps fs as a loopback channel.
func New(fs *model.FileSystem) *Channel {
	return &Channel{fs: fs, dirCursors: make(map[int]*dirCursor)}
}

// SendCommand applies cmd to the underlying FileSystem immediately,
// buffering its return value for the next ReceiveRetv.
func (c *Channel) SendCommand(cmd command.Command) error {
	c.pendingRetv = cmd.Apply(c.fs)
	c.haveRetv = true
	return nil
}

// ReceiveRetv returns the return value buffered by the last
// SendCommand.
func (c *Channel) ReceiveRetv() (int64, error) {
	if !c.haveRetv {
		return 0, fmt.Errorf("loopchan: ReceiveRetv with no pending command")
	}
	c.haveRetv = false
	return c.pendingRetv, nil
}

// ReceiveExtraData is unused by the mutating command set (none of
// Openat/Mkdirat/Linkat/Unlinkat/Dup/Close/Chdir carries an
// out-of-band reply payload), so it always errors.
func (c *Channel) ReceiveExtraData(n int) ([]byte, error) {
	return nil, fmt.Errorf("loopchan: no command in this set produces extra data")
}

// SendOpenat issues a plain, non-creating open against the
// FileSystem — the read-only walk StatePort performs never needs
// O_CREAT.
func (c *Channel) SendOpenat(dirfd int, name string) (int64, error) {
	fd, err := c.fs.Openat(dirfd, name, 0, 0)
	if err != nil {
		return model.Errno(err), nil
	}
	return int64(fd), nil
}

// SendFstat encodes fd's metadata in the reference wire layout.
func (c *Channel) SendFstat(fd int) ([]byte, error) {
	st, err := c.fs.StatFd(fd)
	if err != nil {
		return nil, err
	}
	return port.EncodeFileStat(st), nil
}

// SendGetdents returns up to count encoded directory entries for fd,
// synthesizing "." and ".." ahead of fd's real children the first
// time it's called, and resuming from where the previous call left
// off on later calls. An empty result signals EOF.
func (c *Channel) SendGetdents(fd int, count int) ([][]byte, error) {
	cur, ok := c.dirCursors[fd]
	if !ok {
		entries, err := c.buildEntries(fd)
		if err != nil {
			return nil, err
		}
		cur = &dirCursor{entries: entries}
		c.dirCursors[fd] = cur
	}
	var out [][]byte
	for len(out) < count && cur.pos < len(cur.entries) {
		out = append(out, port.EncodeDirEntry(cur.entries[cur.pos]))
		cur.pos++
	}
	return out, nil
}

// buildEntries computes fd's full getdents listing: self, parent,
// then every child, in that order.
func (c *Channel) buildEntries(fd int) ([]fsval.DirEntry, error) {
	p, err := c.fs.FdPath(fd)
	if err != nil {
		return nil, err
	}
	selfIno, err := c.fs.InoAt(p)
	if err != nil {
		return nil, err
	}
	parentPath := p
	if !p.IsRoot() {
		parentPath = p.Parent()
	}
	parentIno, err := c.fs.InoAt(parentPath)
	if err != nil {
		parentIno = selfIno
	}
	children, err := c.fs.ListDir(fd)
	if err != nil {
		return nil, err
	}
	sort.Slice(children, func(i, j int) bool { return children[i].Name < children[j].Name })
	entries := make([]fsval.DirEntry, 0, len(children)+2)
	entries = append(entries,
		fsval.DirEntry{Ino: selfIno, Kind: fsval.Directory, Name: "."},
		fsval.DirEntry{Ino: parentIno, Kind: fsval.Directory, Name: ".."},
	)
	entries = append(entries, children...)
	return entries, nil
}

// SendClose closes fd and drops its directory cursor, if any.
func (c *Channel) SendClose(fd int) error {
	delete(c.dirCursors, fd)
	return c.fs.Close(fd)
}

// SendGetcwd encodes the current working directory in the reference
// wire layout.
func (c *Channel) SendGetcwd() ([]byte, error) {
	return port.EncodePath(c.fs.Cwd().String()), nil
}
