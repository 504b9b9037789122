package commander

import (
	"math/rand"
	"sort"

	"github.com/LJxTHUCS/model-fs/command"
	"github.com/LJxTHUCS/model-fs/fsval"
	"github.com/LJxTHUCS/model-fs/model"
)

// namePool is the fixed pool of short relative names the commander
// draws from for slots that need a name not already present in the
// tree (seven entries of increasing length, per spec).
var namePool = []string{"a", "bb", "ccc", "dddd", "eeeee", "ffffff", "ggggggg"}

// defaultKindMix is every syscall Command the commander can produce,
// chosen uniformly by default.
var defaultKindMix = []command.Kind{
	command.KindOpenat,
	command.KindMkdirat,
	command.KindLinkat,
	command.KindUnlinkat,
	command.KindDup,
	command.KindClose,
	command.KindChdir,
}

// openFlagBits are the OpenFlags bits RandomFlags independently
// samples when building an openat flags argument.
var openFlagBits = []fsval.OpenFlags{
	fsval.O_CREAT, fsval.O_EXCL, fsval.O_TRUNC, fsval.O_APPEND,
	fsval.O_DIRECTORY, fsval.O_NOFOLLOW, fsval.O_WRONLY, fsval.O_RDWR,
}

// modeBits are the FileMode bits RandomFlags independently samples
// when building a create/mkdir mode argument.
var modeBits = []fsval.FileMode{
	fsval.USER_READ, fsval.USER_WRITE, fsval.USER_EXEC,
	fsval.GROUP_READ, fsval.GROUP_WRITE, fsval.GROUP_EXEC,
	fsval.OTHER_READ, fsval.OTHER_WRITE, fsval.OTHER_EXEC,
}

// Commander is a stateful, seeded randomized command generator. Every
// generator it owns is driven by the same *rand.Rand, so a given seed
// reproduces an identical command sequence for a given sequence of
// FileSystem snapshots.
type Commander struct {
	rng  *rand.Rand
	kind UniformCollection[command.Kind]
	name UniformCollection[string]

	flags *RandomFlags[fsval.OpenFlags]
	mode  *RandomFlags[fsval.FileMode]
}

// New builds a Commander seeded with seed. kinds restricts the
// command mix (pass nil for the full default mix); narrowing it is
// how a caller excludes Linkat for a FAT-like target, per spec Open
// Question (c).
func New(seed uint64, kinds []command.Kind) *Commander {
	if len(kinds) == 0 {
		kinds = defaultKindMix
	}
	flags := &RandomFlags[fsval.OpenFlags]{Bits: openFlagBits, P: 0.3}
	flags.Exclude(fsval.O_DIRECTORY)

	mode := &RandomFlags[fsval.FileMode]{Bits: modeBits, P: 0.5}
	mode.Include(fsval.USER_READ)

	return &Commander{
		rng:   rand.New(rand.NewSource(int64(seed))),
		kind:  UniformCollection[command.Kind]{Items: kinds},
		name:  UniformCollection[string]{Items: namePool},
		flags: flags,
		mode:  mode,
	}
}

// Command inspects fs and produces one Command.
func (c *Commander) Command(fs *model.FileSystem) command.Command {
	kind, _ := c.kind.Generate(c.rng)
	switch kind {
	case command.KindOpenat:
		flags, _ := c.flags.Generate(c.rng)
		mode, _ := c.mode.Generate(c.rng)
		return command.Openat{
			Dirfd: c.dirfd(fs),
			Path:  c.pathArg(fs),
			Flags: flags,
			Mode:  mode,
		}
	case command.KindMkdirat:
		mode, _ := c.mode.Generate(c.rng)
		return command.Mkdirat{
			Dirfd: c.dirfd(fs),
			Path:  c.pathArg(fs),
			Mode:  mode,
		}
	case command.KindLinkat:
		return command.Linkat{
			OldDirfd: fsval.AT_FDCWD,
			OldPath:  c.existingPathArg(fs),
			NewDirfd: c.dirfd(fs),
			NewPath:  c.freshNameArg(),
		}
	case command.KindUnlinkat:
		var flags fsval.UnlinkatFlags
		if c.rng.Float64() < 0.5 {
			flags = fsval.REMOVEDIR
		}
		return command.Unlinkat{
			Dirfd: fsval.AT_FDCWD,
			Path:  c.existingPathArg(fs),
			Flags: flags,
		}
	case command.KindDup:
		return command.Dup{OldFd: c.existingFd(fs)}
	case command.KindClose:
		return command.Close{Fd: c.existingFd(fs)}
	case command.KindChdir:
		return command.Chdir{Path: c.existingPathArg(fs)}
	default:
		return command.Close{Fd: c.existingFd(fs)}
	}
}

// dirfd models spec §4.2 input (a): an existing fd (excluding stdio),
// defaulting to AT_FDCWD when none is open, plus an independent 0.2
// chance of forcing AT_FDCWD regardless.
func (c *Commander) dirfd(fs *model.FileSystem) int {
	nonStdio := nonStdioFds(fs)
	gen := SwitchConstant[int]{
		A: Constant[int]{V: fsval.AT_FDCWD},
		B: DefaultOr[int]{
			Default: fsval.AT_FDCWD,
			Inner:   UniformCollection[int]{Items: nonStdio},
		},
		P: 0.2,
	}
	v, _ := gen.Generate(c.rng)
	return v
}

// existingFd picks any currently open fd, including stdio, used for
// Dup/Close which are interesting precisely when they touch an fd
// that's actually live.
func (c *Commander) existingFd(fs *model.FileSystem) int {
	gen := DefaultOr[int]{Default: 0, Inner: UniformCollection[int]{Items: fs.OpenFds()}}
	v, _ := gen.Generate(c.rng)
	return v
}

// existingPathArg picks one of the paths already present in the
// tree, falling back to a fresh pool name (which will usually 404,
// exercising the NotFound path) when the tree is empty.
func (c *Commander) existingPathArg(fs *model.FileSystem) string {
	paths := fs.Paths()
	strs := make([]string, 0, len(paths))
	for _, p := range paths {
		strs = append(strs, p.String())
	}
	// fs.Paths() is in map order; sort so the pick depends only on the RNG.
	sort.Strings(strs)
	gen := DefaultOr[string]{Default: c.freshNameArg(), Inner: UniformCollection[string]{Items: strs}}
	v, _ := gen.Generate(c.rng)
	return v
}

// pathArg is used for create-shaped slots (openat/mkdirat): mostly a
// fresh pool name, sometimes (adversarially) an existing path, to
// exercise AlreadyExists.
func (c *Commander) pathArg(fs *model.FileSystem) string {
	gen := SwitchConstant[string]{
		A: Constant[string]{V: c.existingPathArg(fs)},
		B: Constant[string]{V: c.freshNameArg()},
		P: 0.3,
	}
	v, _ := gen.Generate(c.rng)
	return v
}

func (c *Commander) freshNameArg() string {
	v, _ := c.name.Generate(c.rng)
	return v
}

func nonStdioFds(fs *model.FileSystem) []int {
	var out []int
	for _, fd := range fs.OpenFds() {
		if fd > 2 {
			out = append(out, fd)
		}
	}
	return out
}
