// Package inode defines the per-file metadata the model tracks:
// mode, ownership, kind, and link count.
package inode

import "github.com/LJxTHUCS/model-fs/fsval"

// Inode is the file-system object identified by an inode number in a
// real kernel; here it carries metadata only, never content.
type Inode struct {
	Mode  fsval.FileMode
	Uid   uint32
	Gid   uint32
	Kind  fsval.FileKind
	Nlink uint32
}

// New creates an inode of the given kind. A regular file starts with
// Nlink 1; a directory starts with Nlink 2 (the entry itself plus its
// own implicit "." entry).
func New(mode fsval.FileMode, uid, gid uint32, kind fsval.FileKind) *Inode {
	nlink := uint32(1)
	if kind == fsval.Directory {
		nlink = 2
	}
	return &Inode{Mode: mode, Uid: uid, Gid: gid, Kind: kind, Nlink: nlink}
}

// IsDir reports whether i is a directory.
func (i *Inode) IsDir() bool { return i.Kind == fsval.Directory }

// IsFile reports whether i is a regular file.
func (i *Inode) IsFile() bool { return i.Kind == fsval.File }

// Equal reports whether i and other carry the same metadata. This is
// the per-inode comparison the FileSystem equivalence relation uses:
// mode, uid, gid, nlink, and kind must all agree.
func (i *Inode) Equal(other *Inode) bool {
	if i == nil || other == nil {
		return i == other
	}
	return i.Mode == other.Mode &&
		i.Uid == other.Uid &&
		i.Gid == other.Gid &&
		i.Kind == other.Kind &&
		i.Nlink == other.Nlink
}

// FromStat builds an Inode directly from a wire FileStat, as
// StatePort does when reconstructing a TUT's state: unlike New, the
// link count here comes from the TUT's own report rather than being
// derived from kind.
func FromStat(st fsval.FileStat) *Inode {
	return &Inode{Mode: st.Mode, Uid: st.Uid, Gid: st.Gid, Kind: st.Kind, Nlink: st.Nlink}
}

// Stat converts i into the wire-shaped FileStat, attaching an inode
// number that's meaningful only within a single StatePort run (the
// model has no inode numbers of its own; see model.FileSystem).
func (i *Inode) Stat(ino uint64) fsval.FileStat {
	return fsval.FileStat{
		Ino:   ino,
		Mode:  i.Mode,
		Nlink: i.Nlink,
		Uid:   i.Uid,
		Gid:   i.Gid,
		Kind:  i.Kind,
	}
}
