package model

import (
	"testing"

	"github.com/LJxTHUCS/model-fs/fsval"
)

func TestMkdiratThenOpenatThenUnlinkatNotEmpty(t *testing.T) {
	fs := NewRoot(0, 0)
	fs.PreopenStdio()

	if err := fs.Mkdirat(fsval.AT_FDCWD, "a", 0o755); err != nil {
		t.Fatalf("mkdirat a: %v", err)
	}
	fd, err := fs.Openat(fsval.AT_FDCWD, "a", 0, 0)
	if err != nil || fd != 3 {
		t.Fatalf("openat a = %d, %v; want fd 3", fd, err)
	}
	fd2, err := fs.Openat(fd, "b", fsval.O_CREAT, 0o644)
	if err != nil || fd2 != 4 {
		t.Fatalf("openat(3, b, CREAT) = %d, %v; want fd 4", fd2, err)
	}
	err = fs.Unlinkat(fsval.AT_FDCWD, "a", fsval.REMOVEDIR)
	if err != ErrDirectoryNotEmpty {
		t.Fatalf("unlinkat a REMOVEDIR = %v, want DirectoryNotEmpty", err)
	}
}

func TestLinkatThenUnlinkatRetargetsFd(t *testing.T) {
	fs := NewRoot(0, 0)
	fs.PreopenStdio()
	fd, err := fs.Openat(fsval.AT_FDCWD, "f", fsval.O_CREAT, 0o600)
	if err != nil || fd != 3 {
		t.Fatalf("openat f = %d, %v", fd, err)
	}
	if err := fs.Linkat(fsval.AT_FDCWD, "f", fsval.AT_FDCWD, "g"); err != nil {
		t.Fatalf("linkat f g: %v", err)
	}
	st, err := fs.Stat(PathOf("/f"))
	if err != nil || st.Nlink != 2 {
		t.Fatalf("stat /f = %+v, %v; want nlink 2", st, err)
	}
	if err := fs.Unlinkat(fsval.AT_FDCWD, "f", 0); err != nil {
		t.Fatalf("unlinkat f: %v", err)
	}
	st, err = fs.Stat(PathOf("/g"))
	if err != nil || st.Nlink != 1 {
		t.Fatalf("stat /g = %+v, %v; want nlink 1", st, err)
	}
	entry := fs.fds[fd]
	pt, ok := entry.Target.(PathTarget)
	if !ok || !pt.Path.Equal(PathOf("/g")) {
		t.Fatalf("fd %d target = %+v, want PathTarget(/g)", fd, entry.Target)
	}
}

func TestOpenatUnlinkatThenCloseReapsTmpInode(t *testing.T) {
	fs := NewRoot(0, 0)
	fd, err := fs.Openat(fsval.AT_FDCWD, "f", fsval.O_CREAT, 0o600)
	if err != nil {
		t.Fatal(err)
	}
	if err := fs.Unlinkat(fsval.AT_FDCWD, "f", 0); err != nil {
		t.Fatal(err)
	}
	entry := fs.fds[fd]
	tt, ok := entry.Target.(TmpTarget)
	if !ok {
		t.Fatalf("fd target = %+v, want TmpTarget", entry.Target)
	}
	if _, ok := fs.tmpInodes[tt.ID]; !ok {
		t.Fatal("expected tmp inode to be present before close")
	}
	if err := fs.Close(fd); err != nil {
		t.Fatal(err)
	}
	if _, ok := fs.tmpInodes[tt.ID]; ok {
		t.Fatal("expected tmp inode to be reaped after close")
	}
}

func TestChdirThenDotDotResolution(t *testing.T) {
	fs := NewRoot(0, 0)
	if err := fs.Mkdirat(fsval.AT_FDCWD, "a", 0o755); err != nil {
		t.Fatal(err)
	}
	if err := fs.Mkdirat(fsval.AT_FDCWD, "b", 0o755); err != nil {
		t.Fatal(err)
	}
	if err := fs.Chdir(PathOf("/")); err != nil {
		t.Fatal(err)
	}
	resolved, err := fs.ParsePath(fsval.AT_FDCWD, "a/../b")
	if err != nil {
		t.Fatal(err)
	}
	if !resolved.Equal(PathOf("/b")) {
		t.Fatalf("resolved = %v, want /b", resolved)
	}
}

func TestDupSharesTargetAcrossClose(t *testing.T) {
	fs := NewRoot(0, 0)
	fs.PreopenStdio()
	newfd, err := fs.Dup(0)
	if err != nil || newfd != 3 {
		t.Fatalf("dup(0) = %d, %v; want fd 3", newfd, err)
	}
	origTarget := fs.fds[0].Target
	if err := fs.FreeFd(0); err != nil {
		t.Fatal(err)
	}
	if fs.fds[3].Target != origTarget {
		t.Fatalf("fd 3 target changed after closing fd 0: %+v vs %+v", fs.fds[3].Target, origTarget)
	}
}

func TestFdTableSaturation(t *testing.T) {
	fs := NewRoot(0, 0)
	fs.PreopenStdio()
	for i := 0; i < fsval.FdTableSize-3; i++ {
		if _, err := fs.Openat(fsval.AT_FDCWD, uniqueName(i), fsval.O_CREAT, 0o644); err != nil {
			t.Fatalf("openat #%d: %v", i, err)
		}
	}
	_, err := fs.Openat(fsval.AT_FDCWD, "overflow", fsval.O_CREAT, 0o644)
	if err != ErrNoAvailableFd {
		t.Fatalf("expected ErrNoAvailableFd, got %v", err)
	}
}

func uniqueName(i int) string {
	const letters = "abcdefghijklmnopqrstuvwxyz"
	s := make([]byte, 0, 4)
	for i >= 0 {
		s = append(s, letters[i%26])
		i = i/26 - 1
	}
	return string(s)
}

func TestUnlinkRootInvalid(t *testing.T) {
	fs := NewRoot(0, 0)
	if err := fs.Unlink(PathOf("/"), false); err != ErrInvalidPath {
		t.Fatalf("unlink / = %v, want ErrInvalidPath", err)
	}
}

func TestCreateMissingParent(t *testing.T) {
	fs := NewRoot(0, 0)
	if err := fs.Mkdirat(fsval.AT_FDCWD, "a/b", 0o755); err != ErrNotFound {
		t.Fatalf("mkdirat a/b = %v, want ErrNotFound", err)
	}
}

func TestLinkDirectoryForbidden(t *testing.T) {
	fs := NewRoot(0, 0)
	if err := fs.Mkdirat(fsval.AT_FDCWD, "d", 0o755); err != nil {
		t.Fatal(err)
	}
	if err := fs.Linkat(fsval.AT_FDCWD, "d", fsval.AT_FDCWD, "d2"); err != ErrIsDirectory {
		t.Fatalf("linkat dir = %v, want ErrIsDirectory", err)
	}
}

func TestRoundTripMkdirUnlinkRestoresInodes(t *testing.T) {
	fs := NewRoot(0, 0)
	before := fs.Snapshot()
	if err := fs.Mkdirat(fsval.AT_FDCWD, "tmp", 0o755); err != nil {
		t.Fatal(err)
	}
	if err := fs.Unlinkat(fsval.AT_FDCWD, "tmp", fsval.REMOVEDIR); err != nil {
		t.Fatal(err)
	}
	after := fs.Snapshot()
	if !snapshotsEqual(before, after) {
		t.Fatalf("snapshot changed across mkdir+rmdir round trip:\nbefore=%+v\nafter=%+v", before, after)
	}
}

func TestNlinkInvariantAfterOps(t *testing.T) {
	fs := NewRoot(0, 0)
	fs.Mkdirat(fsval.AT_FDCWD, "d", 0o755)
	root, _ := fs.inodes.Get(PathOf("/"))
	if root.Nlink != 3 {
		t.Fatalf("root nlink after one subdir = %d, want 3", root.Nlink)
	}
	d, _ := fs.inodes.Get(PathOf("/d"))
	if d.Nlink != 2 {
		t.Fatalf("d nlink = %d, want 2", d.Nlink)
	}
	fs.Unlinkat(fsval.AT_FDCWD, "d", fsval.REMOVEDIR)
	if root.Nlink != 2 {
		t.Fatalf("root nlink after rmdir = %d, want 2", root.Nlink)
	}
}
