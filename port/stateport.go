package port

import (
	"fmt"

	"github.com/LJxTHUCS/model-fs/fsval"
	"github.com/LJxTHUCS/model-fs/inode"
	"github.com/LJxTHUCS/model-fs/model"
	"github.com/LJxTHUCS/model-fs/path"
)

// State names one step of StatePort's reconstruction automaton.
type State int

const (
	StateOpen State = iota
	StateFstat
	StateGetdents
	StateClose
	StateGetcwd
	StateDone
)

func (s State) String() string {
	switch s {
	case StateOpen:
		return "open"
	case StateFstat:
		return "fstat"
	case StateGetdents:
		return "getdents"
	case StateClose:
		return "close"
	case StateGetcwd:
		return "getcwd"
	case StateDone:
		return "done"
	default:
		return "unknown"
	}
}

// frame is one entry in StatePort's DFS stack: a directory (or file)
// fd and the name it was opened under, relative to its parent frame.
type frame struct {
	fd   int
	name string
}

// StatePort reconstructs a model.FileSystem from a TUT by issuing
// only read-only syscalls, following the Open/Fstat/Getdents/Close/
// Getcwd transition table: a DFS walk of the directory tree, with
// hard links detected by inode-number equality across fstat replies.
//
// StatePort is an explicit state machine, not a recursive walk: Step
// advances it exactly one transition, so it can be driven by a
// synchronous loop (Run) or pumped one reply at a time by an external
// event loop.
type StatePort struct {
	ch         ReadOnlyChannel
	state      State
	stack      []frame
	seenInodes map[uint64]path.AbsPath
	fs         *model.FileSystem
}

// New creates a StatePort ready to reconstruct a FileSystem owned by
// uid/gid over ch. uid/gid aren't observable from the TUT's syscalls
// in this model (no getuid/getgid in the read-only surface) so the
// caller supplies the values it expects to see; Run's result can then
// be compared against the tester's own model state including those
// fields.
func New(ch ReadOnlyChannel, uid, gid uint32) *StatePort {
	return &StatePort{
		ch:         ch,
		state:      StateOpen,
		stack:      []frame{{fd: -1, name: ""}},
		seenInodes: make(map[uint64]path.AbsPath),
		fs:         model.NewReconstructed(uid, gid),
	}
}

// State returns the automaton's current state.
func (sp *StatePort) State() State { return sp.state }

// Done reports whether reconstruction has finished.
func (sp *StatePort) Done() bool { return sp.state == StateDone }

// Result returns the reconstructed FileSystem. Only meaningful once
// Done reports true.
func (sp *StatePort) Result() *model.FileSystem { return sp.fs }

// topPath is the "/"-joined names of the stack — the absolute path of
// the frame currently being visited.
func (sp *StatePort) topPath() path.AbsPath {
	p := path.Root()
	for _, f := range sp.stack {
		if f.name == "" {
			continue
		}
		rel, err := path.NewRel(f.name)
		if err != nil {
			continue
		}
		p = p.Join(rel)
	}
	return p
}

// Step advances the automaton by exactly one transition, issuing the
// single read-only syscall that state calls for and updating the
// reconstruction accordingly.
func (sp *StatePort) Step() error {
	switch sp.state {
	case StateOpen:
		return sp.stepOpen()
	case StateFstat:
		return sp.stepFstat()
	case StateGetdents:
		return sp.stepGetdents()
	case StateClose:
		return sp.stepClose()
	case StateGetcwd:
		return sp.stepGetcwd()
	case StateDone:
		return nil
	default:
		return fmt.Errorf("port: unknown state %v", sp.state)
	}
}

// Run pumps Step until the automaton is Done (or a transport error
// occurs), then returns the reconstructed FileSystem.
func (sp *StatePort) Run() (*model.FileSystem, error) {
	for !sp.Done() {
		if err := sp.Step(); err != nil {
			return nil, err
		}
	}
	return sp.Result(), nil
}

func (sp *StatePort) top() *frame { return &sp.stack[len(sp.stack)-1] }

func (sp *StatePort) stepOpen() error {
	top := sp.top()
	var dirfd int
	var name string
	if len(sp.stack) == 1 {
		// Root has no parent fd to resolve against; it's opened by its
		// absolute path, same as parse_path ignoring dirfd for an
		// absolute pathname.
		dirfd, name = -1, "/"
	} else {
		dirfd, name = sp.stack[len(sp.stack)-2].fd, top.name
	}
	fd, err := sp.ch.SendOpenat(dirfd, name)
	if err != nil {
		return err
	}
	if fd < 0 {
		return fmt.Errorf("port: openat(%d, %q) returned %d", dirfd, name, fd)
	}
	top.fd = int(fd)
	sp.state = StateFstat
	return nil
}

func (sp *StatePort) stepFstat() error {
	top := sp.top()
	raw, err := sp.ch.SendFstat(top.fd)
	if err != nil {
		return err
	}
	st, err := DecodeFileStat(raw)
	if err != nil {
		return err
	}
	p := sp.topPath()
	if existing, ok := sp.seenInodes[st.Ino]; ok {
		if err := sp.fs.InsertAliasPath(existing, p); err != nil {
			return fmt.Errorf("port: aliasing %v to %v: %w", p, existing, err)
		}
	} else {
		sp.seenInodes[st.Ino] = p
		if err := sp.fs.InsertInode(p, inode.FromStat(st)); err != nil {
			return fmt.Errorf("port: inserting %v: %w", p, err)
		}
	}
	if st.Kind == fsval.Directory {
		sp.state = StateGetdents
	} else {
		sp.state = StateClose
	}
	return nil
}

func (sp *StatePort) stepGetdents() error {
	top := sp.top()
	entries, err := sp.ch.SendGetdents(top.fd, 1)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		sp.state = StateClose
		return nil
	}
	de, err := DecodeDirEntry(entries[0])
	if err != nil {
		return err
	}
	if de.Name == "." || de.Name == ".." {
		// Stay in Getdents; the caller's next Step re-issues it.
		return nil
	}
	sp.stack = append(sp.stack, frame{fd: -1, name: de.Name})
	sp.state = StateOpen
	return nil
}

func (sp *StatePort) stepClose() error {
	top := sp.top()
	if err := sp.ch.SendClose(top.fd); err != nil {
		return err
	}
	sp.stack = sp.stack[:len(sp.stack)-1]
	if len(sp.stack) == 0 {
		sp.state = StateGetcwd
	} else {
		sp.state = StateGetdents
	}
	return nil
}

func (sp *StatePort) stepGetcwd() error {
	raw, err := sp.ch.SendGetcwd()
	if err != nil {
		return err
	}
	sp.fs.SetCwd(path.NewAbs(DecodePath(raw)))
	sp.state = StateDone
	return nil
}
