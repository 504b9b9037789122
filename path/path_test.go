package path

import "testing"

func TestNewAbsNormalizes(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"/", "/"},
		{"/a/b/c", "/a/b/c"},
		{"/a//b/", "/a/b"},
		{"/a/./b", "/a/b"},
		{"/a/../b", "/b"},
		{"/../a", "/a"},
		{"/a/b/../../c", "/c"},
	}
	for _, c := range cases {
		got := NewAbs(c.in).String()
		if got != c.want {
			t.Errorf("NewAbs(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{"/a/b/../c/./d", "/", "/x//y/../../z"}
	for _, in := range inputs {
		once := NewAbs(in).String()
		twice := NewAbs(once).String()
		if once != twice {
			t.Errorf("norm not idempotent: norm(%q)=%q, norm(norm)=%q", in, once, twice)
		}
	}
}

func TestIsRoot(t *testing.T) {
	if !Root().IsRoot() {
		t.Fatal("Root() should be root")
	}
	if NewAbs("/a").IsRoot() {
		t.Fatal("/a should not be root")
	}
}

func TestParent(t *testing.T) {
	p := NewAbs("/a/b/c")
	want := NewAbs("/a/b")
	if !p.Parent().Equal(want) {
		t.Fatalf("Parent() = %v, want %v", p.Parent(), want)
	}
}

func TestJoinResolvesDotDot(t *testing.T) {
	base := NewAbs("/a/b")
	rel, err := NewRel("../c")
	if err != nil {
		t.Fatal(err)
	}
	got := base.Join(rel)
	want := NewAbs("/a/c")
	if !got.Equal(want) {
		t.Fatalf("Join = %v, want %v", got, want)
	}
}

func TestJoinDropsDotComponents(t *testing.T) {
	base := NewAbs("/a/b")
	rel, err := NewRel("./c")
	if err != nil {
		t.Fatal(err)
	}
	got := base.Join(rel)
	want := NewAbs("/a/b/c")
	if !got.Equal(want) {
		t.Fatalf("Join = %v, want %v", got, want)
	}
	if got.String() != "/a/b/c" {
		t.Fatalf("Join rendered %q, want no literal \".\" component", got.String())
	}
}

func TestJoinFromRootPopsNothing(t *testing.T) {
	rel, err := NewRel("../../a")
	if err != nil {
		t.Fatal(err)
	}
	got := Root().Join(rel)
	want := NewAbs("/a")
	if !got.Equal(want) {
		t.Fatalf("Join = %v, want %v", got, want)
	}
}

func TestIsAncestor(t *testing.T) {
	a := NewAbs("/a")
	b := NewAbs("/a/b")
	if !a.IsAncestor(b) {
		t.Fatal("/a should be ancestor of /a/b")
	}
	if a.IsAncestor(a) {
		t.Fatal("a path is not a strict ancestor of itself")
	}
	if b.IsAncestor(a) {
		t.Fatal("/a/b should not be ancestor of /a")
	}
}

func TestNewRelRejectsEmpty(t *testing.T) {
	for _, s := range []string{"", "///", "."} {
		if _, err := NewRel(s); err != ErrEmptyRelPath {
			t.Errorf("NewRel(%q) err = %v, want ErrEmptyRelPath", s, err)
		}
	}
}

func TestIsAbs(t *testing.T) {
	if !IsAbs("/a") {
		t.Fatal("/a should be absolute")
	}
	if IsAbs("a") {
		t.Fatal("a should not be absolute")
	}
}
