// Package path implements the abstract, normalized path values the
// model operates on: AbsPath (always absolute, always normalized) and
// RelPath (anything not known to be absolute, possibly containing
// "." and ".." components that Join resolves away).
package path

import (
	"errors"
	"strings"
)

// ErrEmptyRelPath is returned by NewRel for a path with no component
// other than "." ("", "///", ".").
var ErrEmptyRelPath = errors.New("path: empty relative path")

// AbsPath is a normalized absolute path. It carries its canonical
// "/"-joined rendering as a single string field (rather than a
// component slice) so that AbsPath stays comparable — it's used as a
// map key throughout the model (multikeymap.Map[path.AbsPath, ...]),
// and a slice field would make the type fail the comparable
// constraint there. The root path canonicalizes to "/".
type AbsPath struct {
	canon string
}

// Root returns the absolute root path "/".
func Root() AbsPath { return AbsPath{canon: "/"} }

// IsRoot reports whether p is the root path.
func (p AbsPath) IsRoot() bool { return p.canon == "/" }

// Components returns p's path components, root-to-leaf. The caller
// must not mutate the returned slice.
func (p AbsPath) Components() []string {
	if p.IsRoot() {
		return nil
	}
	return strings.Split(p.canon[1:], "/")
}

// Base returns the final component of p. Undefined (empty string) for
// the root path.
func (p AbsPath) Base() string {
	comps := p.Components()
	if len(comps) == 0 {
		return ""
	}
	return comps[len(comps)-1]
}

// Parent returns p with its final component removed. Undefined for
// the root path; callers must check IsRoot first.
func (p AbsPath) Parent() AbsPath {
	comps := p.Components()
	if len(comps) <= 1 {
		return Root()
	}
	return fromComponents(comps[:len(comps)-1])
}

// Join resolves rel against p and returns the normalized result.
func (p AbsPath) Join(rel RelPath) AbsPath {
	stack := append([]string(nil), p.Components()...)
	for _, c := range rel.comps {
		switch c {
		case ".":
			continue
		case "..":
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		default:
			stack = append(stack, c)
		}
	}
	return fromComponents(stack)
}

// IsAncestor reports whether p is a strict ancestor of other (p is a
// proper prefix of other's components).
func (p AbsPath) IsAncestor(other AbsPath) bool {
	pc, oc := p.Components(), other.Components()
	if len(pc) >= len(oc) {
		return false
	}
	for i, c := range pc {
		if oc[i] != c {
			return false
		}
	}
	return true
}

// Equal reports whether p and other name the same normalized path.
func (p AbsPath) Equal(other AbsPath) bool { return p.canon == other.canon }

// String renders p in its canonical "/"-joined form.
func (p AbsPath) String() string { return p.canon }

// fromComponents builds the canonical AbsPath for a (possibly empty)
// component list.
func fromComponents(comps []string) AbsPath {
	if len(comps) == 0 {
		return Root()
	}
	return AbsPath{canon: "/" + strings.Join(comps, "/")}
}

// NewAbs normalizes s (which may be absolute or relative; a relative
// string is treated as rooted) into an AbsPath.
func NewAbs(s string) AbsPath {
	return fromComponents(normalize(s))
}

// RelPath is a path known not to be (necessarily) absolute; it may
// contain "." and ".." components, resolved by AbsPath.Join.
type RelPath struct {
	comps []string
}

// NewRel parses s into a RelPath. Returns ErrEmptyRelPath if s has no
// component other than "." (e.g. "", "///", ".", "./."). ".." counts
// as a component, so ".." and "a/.." are accepted.
func NewRel(s string) (RelPath, error) {
	comps := splitRaw(s)
	significant := false
	for _, c := range comps {
		if c != "." {
			significant = true
			break
		}
	}
	if !significant {
		return RelPath{}, ErrEmptyRelPath
	}
	return RelPath{comps: comps}, nil
}

// IsAbs reports whether s is written as an absolute path ("/"-rooted).
func IsAbs(s string) bool {
	return strings.HasPrefix(s, "/")
}

// splitRaw splits s on "/" and drops empty components (leading,
// trailing, or repeated separators), but keeps "." and ".." so that
// RelPath.Join can resolve them.
func splitRaw(s string) []string {
	var out []string
	for _, c := range strings.Split(s, "/") {
		if c == "" {
			continue
		}
		out = append(out, c)
	}
	return out
}

// normalize implements the path normalization rule from the data
// model: split on "/", drop empty components, drop ".",
// pop the stack on ".." (or drop it if the stack is already empty),
// end as a list of names.
func normalize(s string) []string {
	var stack []string
	for _, c := range splitRaw(s) {
		switch c {
		case ".":
			continue
		case "..":
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		default:
			stack = append(stack, c)
		}
	}
	return stack
}
