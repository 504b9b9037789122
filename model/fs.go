// Package model implements the abstract, in-memory reference model of
// the file-system syscall surface: path resolution, inode lifecycle,
// hard links, the fd table, and the unlinked-but-open inode lifecycle.
package model

import (
	"github.com/LJxTHUCS/model-fs/fsval"
	"github.com/LJxTHUCS/model-fs/inode"
	"github.com/LJxTHUCS/model-fs/multikeymap"
	"github.com/LJxTHUCS/model-fs/path"
)

// TmpId identifies an inode whose last path was unlinked while file
// descriptors still referenced it.
type TmpId uint64

// FdTarget is what a file descriptor currently names: either a live
// path, or a Temporary inode that survives only because an fd still
// references it.
type FdTarget interface{ isFdTarget() }

// PathTarget is an fd bound to a path still present in the tree.
type PathTarget struct{ Path path.AbsPath }

func (PathTarget) isFdTarget() {}

// TmpTarget is an fd bound to an inode that's been unlinked from every
// path but kept alive in tmp_inodes.
type TmpTarget struct{ ID TmpId }

func (TmpTarget) isFdTarget() {}

// FdEntry is the shared state behind one or more fd-table slots. dup
// makes two slots point at the *same* FdEntry, so a retarget by
// unlink (rewriting Target) is visible through every slot that shares
// it.
type FdEntry struct {
	Target FdTarget
	Flags  fsval.OpenFlags
}

// FileSystem is the abstract model state: inodes keyed by path (with
// hard links as aliases), the fd table, cwd, and the auxiliary table
// of unlinked-but-open inodes.
type FileSystem struct {
	uid, gid uint32
	cwd      path.AbsPath

	inodes *multikeymap.Map[path.AbsPath, *inode.Inode]
	fds    [fsval.FdTableSize]*FdEntry

	tmpInodes map[TmpId]*inode.Inode
	tmpNext   TmpId

	// inoNumbers assigns stable identifiers to inode pointers, lazily,
	// for callers (StatePort's reference loopback channel; diagnostics)
	// that need an inode number the model doesn't otherwise track --
	// the model itself never compares by inode number, only by path
	// alias equivalence (see Matches).
	inoNumbers map[*inode.Inode]uint64
	inoNext    uint64
}

// NewRoot creates a fresh FileSystem with only a root directory
// (mode ALL, owned by uid/gid) and an empty fd table.
func NewRoot(uid, gid uint32) *FileSystem {
	fs := &FileSystem{
		uid:       uid,
		gid:       gid,
		cwd:       path.Root(),
		inodes:    multikeymap.New[path.AbsPath, *inode.Inode](),
		tmpInodes: make(map[TmpId]*inode.Inode),
	}
	root := inode.New(fsval.ALL, uid, gid, fsval.Directory)
	fs.inodes.Insert(path.Root(), root)
	return fs
}

// NewReconstructed creates an empty FileSystem with no root inode and
// no cwd set, for StatePort to populate incrementally as it observes
// a TUT through read-only syscalls. Callers must InsertInode the
// root (path.Root()) and SetCwd before treating the result as a
// complete snapshot.
func NewReconstructed(uid, gid uint32) *FileSystem {
	return &FileSystem{
		uid:       uid,
		gid:       gid,
		inodes:    multikeymap.New[path.AbsPath, *inode.Inode](),
		tmpInodes: make(map[TmpId]*inode.Inode),
	}
}

// InsertInode binds a freshly observed inode at path p. Used only by
// StatePort during reconstruction; model mutations during normal
// operation go through Create/Link so invariants stay enforced.
func (fs *FileSystem) InsertInode(p path.AbsPath, i *inode.Inode) error {
	return fs.inodes.Insert(p, i)
}

// InsertAliasPath records that p names the same inode as existing.
// Used only by StatePort, which detects aliasing via inode-number
// equality rather than by walking a tree that's allowed to have
// hard links.
func (fs *FileSystem) InsertAliasPath(existing, p path.AbsPath) error {
	return fs.inodes.InsertAlias(existing, p)
}

// SetCwd sets cwd directly, bypassing the Chdir existence check. Used
// only by StatePort, which learns cwd from the TUT's own getcwd
// reply and has no reason to re-validate it.
func (fs *FileSystem) SetCwd(p path.AbsPath) { fs.cwd = p }

// PreopenStdio allocates fds 0, 1, and 2 as Temporary placeholders,
// modeling inherited stdio. This is optional per the spec (Open
// Question (a)); the comparator ignores the fd table entirely, so
// whether or not a config calls this has no effect on state matching.
func (fs *FileSystem) PreopenStdio() {
	for i := 0; i < 3; i++ {
		id := fs.nextTmpId()
		fs.tmpInodes[id] = inode.New(fsval.USER_READ|fsval.USER_WRITE, fs.uid, fs.gid, fsval.File)
		fs.fds[i] = &FdEntry{Target: TmpTarget{ID: id}, Flags: fsval.O_RDWR}
	}
}

func (fs *FileSystem) nextTmpId() TmpId {
	id := fs.tmpNext
	fs.tmpNext++
	return id
}

// Cwd returns the current working directory.
func (fs *FileSystem) Cwd() path.AbsPath { return fs.cwd }

// Uid returns the model's uid.
func (fs *FileSystem) Uid() uint32 { return fs.uid }

// Gid returns the model's gid.
func (fs *FileSystem) Gid() uint32 { return fs.gid }

// Paths returns every live path in the tree, in no particular order.
func (fs *FileSystem) Paths() []path.AbsPath { return fs.inodes.Keys() }

// OpenFds returns every currently-allocated fd, in ascending order.
// The commander uses this to bias generated commands toward existing
// fds rather than always acting on never-opened ones.
func (fs *FileSystem) OpenFds() []int {
	var out []int
	for i, e := range fs.fds {
		if e != nil {
			out = append(out, i)
		}
	}
	return out
}

// ParsePath resolves dirfd/path into an absolute path, per openat(2)
// semantics: an absolute path ignores dirfd; a relative path resolves
// against cwd when dirfd is AT_FDCWD, or against dirfd's path
// otherwise.
func (fs *FileSystem) ParsePath(dirfd int, p string) (path.AbsPath, error) {
	if path.IsAbs(p) {
		return path.NewAbs(p), nil
	}
	rel, err := path.NewRel(p)
	if err != nil {
		return path.AbsPath{}, ErrInvalidPath
	}
	if dirfd == fsval.AT_FDCWD {
		return fs.cwd.Join(rel), nil
	}
	entry, err := fs.getFd(dirfd)
	if err != nil {
		return path.AbsPath{}, err
	}
	switch t := entry.Target.(type) {
	case TmpTarget:
		return path.AbsPath{}, ErrNotFound
	case PathTarget:
		dirInode, ok := fs.inodes.Get(t.Path)
		if !ok {
			return path.AbsPath{}, ErrNotFound
		}
		if !dirInode.IsDir() {
			return path.AbsPath{}, ErrNotDirectory
		}
		return t.Path.Join(rel), nil
	default:
		return path.AbsPath{}, ErrNotFound
	}
}

// Create inserts a fresh inode at path p. Fails AlreadyExists if p is
// already bound, NotFound if p's parent doesn't exist, NotDirectory
// if the parent isn't a directory. Creating a directory increments
// the parent's nlink (for the new entry's implicit "..").
func (fs *FileSystem) Create(p path.AbsPath, kind fsval.FileKind, mode fsval.FileMode) error {
	if fs.inodes.ContainsKey(p) {
		return ErrAlreadyExists
	}
	parentInode, ok := fs.inodes.Get(p.Parent())
	if !ok {
		return ErrNotFound
	}
	if !parentInode.IsDir() {
		return ErrNotDirectory
	}
	fs.inodes.Insert(p, inode.New(mode, fs.uid, fs.gid, kind))
	if kind == fsval.Directory {
		parentInode.Nlink++
	}
	return nil
}

// Link adds newPath as a hard link to oldPath's inode. Fails NotFound
// if oldPath is missing, IsDirectory if it names a directory (hard
// links to directories are forbidden), AlreadyExists if newPath
// exists, and NotFound/NotDirectory for newPath's parent as in
// Create.
func (fs *FileSystem) Link(oldPath, newPath path.AbsPath) error {
	oldInode, ok := fs.inodes.Get(oldPath)
	if !ok {
		return ErrNotFound
	}
	if oldInode.IsDir() {
		return ErrIsDirectory
	}
	if fs.inodes.ContainsKey(newPath) {
		return ErrAlreadyExists
	}
	parentInode, ok := fs.inodes.Get(newPath.Parent())
	if !ok {
		return ErrNotFound
	}
	if !parentInode.IsDir() {
		return ErrNotDirectory
	}
	if err := fs.inodes.InsertAlias(oldPath, newPath); err != nil {
		return err
	}
	oldInode.Nlink++
	return nil
}

// Unlink removes path p. If rmdir is false, p must not be a
// directory. If rmdir is true, p must be a directory and must be
// empty (no live path has p as a strict ancestor).
//
// Disposition of the underlying inode follows the last-alias rule: if
// p is the inode's last remaining path, the inode is dropped unless
// some fd still targets it, in which case it migrates to tmp_inodes
// and every such fd is retargeted there. Otherwise just this alias is
// dropped, nlink is decremented, and any fd that had targeted p is
// retargeted to a surviving alias.
func (fs *FileSystem) Unlink(p path.AbsPath, rmdir bool) error {
	if p.IsRoot() {
		return ErrInvalidPath
	}
	target, ok := fs.inodes.Get(p)
	if !ok {
		return ErrNotFound
	}
	if target.IsDir() {
		if !rmdir {
			return ErrIsDirectory
		}
		for _, other := range fs.inodes.Keys() {
			if p.IsAncestor(other) {
				return ErrDirectoryNotEmpty
			}
		}
	} else if rmdir {
		return ErrNotDirectory
	}

	aliasesAll, _ := fs.inodes.Aliases(p)
	var remaining []path.AbsPath
	for _, a := range aliasesAll {
		if !a.Equal(p) {
			remaining = append(remaining, a)
		}
	}

	if target.IsDir() {
		if parentInode, ok := fs.inodes.Get(p.Parent()); ok {
			parentInode.Nlink--
		}
	}

	referencingFds := fs.fdsTargetingPath(p)

	if len(remaining) == 0 {
		fs.inodes.Remove(p)
		if len(referencingFds) > 0 {
			id := fs.nextTmpId()
			fs.tmpInodes[id] = target
			for _, e := range referencingFds {
				e.Target = TmpTarget{ID: id}
			}
		}
		return nil
	}

	fs.inodes.RemoveAlias(p)
	target.Nlink--
	survivor := remaining[0]
	for _, e := range referencingFds {
		e.Target = PathTarget{Path: survivor}
	}
	return nil
}

// fdsTargetingPath returns the distinct FdEntry pointers currently
// bound to p (two dup'd fds sharing one FdEntry yield it once).
func (fs *FileSystem) fdsTargetingPath(p path.AbsPath) []*FdEntry {
	seen := make(map[*FdEntry]bool)
	var out []*FdEntry
	for _, e := range fs.fds {
		if e == nil || seen[e] {
			continue
		}
		if pt, ok := e.Target.(PathTarget); ok && pt.Path.Equal(p) {
			seen[e] = true
			out = append(out, e)
		}
	}
	return out
}

// Chdir sets cwd to p. Fails NotFound/NotDirectory accordingly.
func (fs *FileSystem) Chdir(p path.AbsPath) error {
	target, ok := fs.inodes.Get(p)
	if !ok {
		return ErrNotFound
	}
	if !target.IsDir() {
		return ErrNotDirectory
	}
	fs.cwd = p
	return nil
}

func (fs *FileSystem) getFd(fd int) (*FdEntry, error) {
	if fd < 0 || fd >= fsval.FdTableSize {
		return nil, ErrBadFd
	}
	e := fs.fds[fd]
	if e == nil {
		return nil, ErrBadFd
	}
	return e, nil
}

// AllocFd stores entry in the lowest unused fd slot and returns its
// index. This lowest-unused policy is observable behavior (POSIX
// guarantees it) and must match a real kernel's.
func (fs *FileSystem) AllocFd(entry *FdEntry) (int, error) {
	for i := range fs.fds {
		if fs.fds[i] == nil {
			fs.fds[i] = entry
			return i, nil
		}
	}
	return 0, ErrNoAvailableFd
}

// FreeFd clears fd's slot. If the freed entry was the last fd
// targeting a Temporary inode, that inode is reaped.
func (fs *FileSystem) FreeFd(fd int) error {
	entry, err := fs.getFd(fd)
	if err != nil {
		return err
	}
	fs.fds[fd] = nil
	if t, ok := entry.Target.(TmpTarget); ok {
		for _, other := range fs.fds {
			if other != nil {
				if ot, ok := other.Target.(TmpTarget); ok && ot.ID == t.ID {
					return nil
				}
			}
		}
		delete(fs.tmpInodes, t.ID)
	}
	return nil
}

// Dup allocates a new fd pointing at the same FdEntry as oldfd, so
// later retargeting (e.g. by Unlink) is visible through both fds.
func (fs *FileSystem) Dup(oldfd int) (int, error) {
	entry, err := fs.getFd(oldfd)
	if err != nil {
		return 0, err
	}
	return fs.AllocFd(entry)
}

// Openat resolves dirfd/path, creating a regular file there when
// flags includes CREAT and nothing exists yet, then allocates a new
// fd bound to the resolved path.
func (fs *FileSystem) Openat(dirfd int, p string, flags fsval.OpenFlags, mode fsval.FileMode) (int, error) {
	resolved, err := fs.ParsePath(dirfd, p)
	if err != nil {
		return 0, err
	}
	if !fs.inodes.ContainsKey(resolved) {
		if !flags.Has(fsval.O_CREAT) {
			return 0, ErrNotFound
		}
		if err := fs.Create(resolved, fsval.File, mode); err != nil {
			return 0, err
		}
	}
	return fs.AllocFd(&FdEntry{Target: PathTarget{Path: resolved}, Flags: flags})
}

// Mkdirat resolves dirfd/path and creates a directory there.
func (fs *FileSystem) Mkdirat(dirfd int, p string, mode fsval.FileMode) error {
	resolved, err := fs.ParsePath(dirfd, p)
	if err != nil {
		return err
	}
	return fs.Create(resolved, fsval.Directory, mode)
}

// Linkat resolves both dirfd/path pairs and links them.
func (fs *FileSystem) Linkat(olddirfd int, oldpath string, newdirfd int, newpath string) error {
	op, err := fs.ParsePath(olddirfd, oldpath)
	if err != nil {
		return err
	}
	np, err := fs.ParsePath(newdirfd, newpath)
	if err != nil {
		return err
	}
	return fs.Link(op, np)
}

// Unlinkat resolves dirfd/path and unlinks it; flags.REMOVEDIR
// selects rmdir semantics.
func (fs *FileSystem) Unlinkat(dirfd int, p string, flags fsval.UnlinkatFlags) error {
	resolved, err := fs.ParsePath(dirfd, p)
	if err != nil {
		return err
	}
	return fs.Unlink(resolved, flags.Has(fsval.REMOVEDIR))
}

// Close frees fd. It's the Command-level name for FreeFd, matching
// the syscall the commander generates.
func (fs *FileSystem) Close(fd int) error {
	return fs.FreeFd(fd)
}

// inoOf assigns (or returns the existing) stable number for i.
func (fs *FileSystem) inoOf(i *inode.Inode) uint64 {
	if fs.inoNumbers == nil {
		fs.inoNumbers = make(map[*inode.Inode]uint64)
		fs.inoNext = 1
	}
	if id, ok := fs.inoNumbers[i]; ok {
		return id
	}
	id := fs.inoNext
	fs.inoNext++
	fs.inoNumbers[i] = id
	return id
}

// InoAt returns the stable inode number for the inode at path p.
func (fs *FileSystem) InoAt(p path.AbsPath) (uint64, error) {
	i, ok := fs.inodes.Get(p)
	if !ok {
		return 0, ErrNotFound
	}
	return fs.inoOf(i), nil
}

// Stat returns the metadata at path p, for diagnostics only — it is
// not part of the generated command mix.
func (fs *FileSystem) Stat(p path.AbsPath) (fsval.FileStat, error) {
	i, ok := fs.inodes.Get(p)
	if !ok {
		return fsval.FileStat{}, ErrNotFound
	}
	return i.Stat(fs.inoOf(i)), nil
}

// StatFd returns the metadata of whatever fd currently targets,
// whether a live path or a Temporary inode. Used for diagnostics and
// by internal/loopchan's reference read-only channel.
func (fs *FileSystem) StatFd(fd int) (fsval.FileStat, error) {
	entry, err := fs.getFd(fd)
	if err != nil {
		return fsval.FileStat{}, err
	}
	switch t := entry.Target.(type) {
	case PathTarget:
		i, ok := fs.inodes.Get(t.Path)
		if !ok {
			return fsval.FileStat{}, ErrNotFound
		}
		return i.Stat(fs.inoOf(i)), nil
	case TmpTarget:
		i, ok := fs.tmpInodes[t.ID]
		if !ok {
			return fsval.FileStat{}, ErrNotFound
		}
		return i.Stat(fs.inoOf(i)), nil
	default:
		return fsval.FileStat{}, ErrNotFound
	}
}

// FdPath returns the path fd currently targets. Fails NotFound if fd
// targets a Temporary inode rather than a live path.
func (fs *FileSystem) FdPath(fd int) (path.AbsPath, error) {
	entry, err := fs.getFd(fd)
	if err != nil {
		return path.AbsPath{}, err
	}
	pt, ok := entry.Target.(PathTarget)
	if !ok {
		return path.AbsPath{}, ErrNotFound
	}
	return pt.Path, nil
}

// ListDir returns the names directly under dirfd's path, for
// diagnostics only.
func (fs *FileSystem) ListDir(dirfd int) ([]fsval.DirEntry, error) {
	entry, err := fs.getFd(dirfd)
	if err != nil {
		return nil, err
	}
	pt, ok := entry.Target.(PathTarget)
	if !ok {
		return nil, ErrNotFound
	}
	dirInode, ok := fs.inodes.Get(pt.Path)
	if !ok {
		return nil, ErrNotFound
	}
	if !dirInode.IsDir() {
		return nil, ErrNotDirectory
	}
	var out []fsval.DirEntry
	for _, k := range fs.inodes.Keys() {
		if pt.Path.IsAncestor(k) && len(k.Components()) == len(pt.Path.Components())+1 {
			child, _ := fs.inodes.Get(k)
			out = append(out, fsval.DirEntry{Ino: fs.inoOf(child), Kind: child.Kind, Name: k.Base()})
		}
	}
	return out, nil
}
