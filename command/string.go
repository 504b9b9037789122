package command

import "fmt"

// String renders a Command for logs and divergence reports. The real
// wire encoding is out of scope (spec §1) — a command channel
// implementation owns that; this is purely diagnostic.
func (c Chdir) String() string { return fmt.Sprintf("chdir(%q)", c.Path) }

func (c Openat) String() string {
	return fmt.Sprintf("openat(%d, %q, %#o, %#o)", c.Dirfd, c.Path, uint32(c.Flags), uint32(c.Mode))
}

func (c Mkdirat) String() string {
	return fmt.Sprintf("mkdirat(%d, %q, %#o)", c.Dirfd, c.Path, uint32(c.Mode))
}

func (c Linkat) String() string {
	return fmt.Sprintf("linkat(%d, %q, %d, %q)", c.OldDirfd, c.OldPath, c.NewDirfd, c.NewPath)
}

func (c Unlinkat) String() string {
	return fmt.Sprintf("unlinkat(%d, %q, %#o)", c.Dirfd, c.Path, uint32(c.Flags))
}

func (c Dup) String() string { return fmt.Sprintf("dup(%d)", c.OldFd) }

func (c Close) String() string { return fmt.Sprintf("close(%d)", c.Fd) }
