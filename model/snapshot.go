package model

import (
	"sort"
	"strings"

	"github.com/LJxTHUCS/model-fs/fsval"
	"github.com/LJxTHUCS/model-fs/inode"
	"github.com/LJxTHUCS/model-fs/path"
)

// InodeGroup is one inode's full alias set plus its metadata, in the
// shape the equivalence relation and diff printer need (all exported
// fields, so github.com/kylelemons/godebug/pretty can render it).
type InodeGroup struct {
	Paths []string
	Mode  fsval.FileMode
	Uid   uint32
	Gid   uint32
	Kind  fsval.FileKind
	Nlink uint32
}

// Snapshot is the observable, comparable view of a FileSystem: cwd,
// uid, gid, and inodes as alias groups. The fd table and tmp_inodes
// are intentionally excluded — they aren't portably observable from a
// real TUT, per the spec's equivalence relation.
type Snapshot struct {
	Cwd string
	Uid uint32
	Gid uint32
	Inodes []InodeGroup
}

// Snapshot renders fs into its comparable view.
func (fs *FileSystem) Snapshot() Snapshot {
	groups := make(map[*inode.Inode]*InodeGroup)
	var order []*inode.Inode
	for _, p := range fs.inodes.Keys() {
		i, _ := fs.inodes.Get(p)
		g, ok := groups[i]
		if !ok {
			g = &InodeGroup{Mode: i.Mode, Uid: i.Uid, Gid: i.Gid, Kind: i.Kind, Nlink: i.Nlink}
			groups[i] = g
			order = append(order, i)
		}
		g.Paths = append(g.Paths, p.String())
	}
	out := make([]InodeGroup, 0, len(order))
	for _, i := range order {
		g := groups[i]
		sort.Strings(g.Paths)
		out = append(out, *g)
	}
	sort.Slice(out, func(a, b int) bool {
		return strings.Join(out[a].Paths, "\x00") < strings.Join(out[b].Paths, "\x00")
	})
	return Snapshot{
		Cwd:    fs.cwd.String(),
		Uid:    fs.uid,
		Gid:    fs.gid,
		Inodes: out,
	}
}

// Matches reports whether fs and other are equivalent per the spec's
// comparator: equal cwd, uid, gid, and an equal set of inode alias
// groups (same paths, equal metadata, identical alias classes). The
// fd table is excluded, so a snapshot built after different fd
// histories can still match.
func (fs *FileSystem) Matches(other *FileSystem) bool {
	a, b := fs.Snapshot(), other.Snapshot()
	return snapshotsEqual(a, b)
}

func snapshotsEqual(a, b Snapshot) bool {
	if a.Cwd != b.Cwd || a.Uid != b.Uid || a.Gid != b.Gid {
		return false
	}
	if len(a.Inodes) != len(b.Inodes) {
		return false
	}
	for i := range a.Inodes {
		if !inodeGroupsEqual(a.Inodes[i], b.Inodes[i]) {
			return false
		}
	}
	return true
}

func inodeGroupsEqual(a, b InodeGroup) bool {
	if a.Mode != b.Mode || a.Uid != b.Uid || a.Gid != b.Gid || a.Kind != b.Kind || a.Nlink != b.Nlink {
		return false
	}
	if len(a.Paths) != len(b.Paths) {
		return false
	}
	for i := range a.Paths {
		if a.Paths[i] != b.Paths[i] {
			return false
		}
	}
	return true
}

// PathOf is a small helper used by callers building AbsPath values
// from wire strings without importing the path package directly.
func PathOf(s string) path.AbsPath { return path.NewAbs(s) }
