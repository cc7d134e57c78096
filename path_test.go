package gridfs

import (
	"errors"
	"testing"

	"github.com/mwantia/gridfs/data"
)

// TestNormalizePath verifies lexical normalization and root-escape
// rejection.
func TestNormalizePath(t *testing.T) {
	cases := map[string]struct {
		in   string
		want string
		fail bool
	}{
		"root":                {in: "/", want: "/"},
		"empty":               {in: "", want: "/"},
		"plain":               {in: "/home/alice", want: "/home/alice"},
		"relative":            {in: "home/alice", want: "/home/alice"},
		"trailing-slash":      {in: "/home/alice/", want: "/home/alice"},
		"double-slash":        {in: "/home//alice", want: "/home/alice"},
		"dot-segment":         {in: "/home/./alice", want: "/home/alice"},
		"dotdot-inside":       {in: "/home/bob/../alice", want: "/home/alice"},
		"dotdot-to-root":      {in: "/home/..", want: "/"},
		"dotdot-escape":       {in: "/..", fail: true},
		"dotdot-deep-escape":  {in: "/home/../../etc", fail: true},
		"relative-escape":     {in: "../etc", fail: true},
		"nul-byte":            {in: "/bad\x00name", fail: true},
		"only-dots":           {in: "/./././", want: "/"},
		"mixed-normalization": {in: "//a/./b/../c//", want: "/a/c"},
	}

	for name, tc := range cases {
		t.Run(name, func(tst *testing.T) {
			got, err := normalizePath(tc.in)
			if tc.fail {
				if !errors.Is(err, data.ErrInvalidPath) {
					tst.Errorf("Expected ErrInvalidPath for %q, got %v", tc.in, err)
				}
				return
			}

			if err != nil {
				tst.Fatalf("normalizePath(%q) failed: %v", tc.in, err)
			}
			if got != tc.want {
				tst.Errorf("Expected %q, got %q", tc.want, got)
			}
		})
	}
}

// TestResolve verifies local to remote translation against the
// configured root.
func TestResolve(t *testing.T) {
	f := &FileSystem{root: "/testzone"}

	cases := map[string]struct {
		in     string
		remote string
		local  string
	}{
		"root":       {in: "/", remote: "/testzone", local: "/"},
		"file":       {in: "/a.txt", remote: "/testzone/a.txt", local: "/a.txt"},
		"nested":     {in: "/home/alice/x", remote: "/testzone/home/alice/x", local: "/home/alice/x"},
		"unclean":    {in: "home//alice/../bob", remote: "/testzone/home/bob", local: "/home/bob"},
		"dot-to-root": {in: "/home/..", remote: "/testzone", local: "/"},
	}

	for name, tc := range cases {
		t.Run(name, func(tst *testing.T) {
			remote, local, err := f.resolve(tc.in)
			if err != nil {
				tst.Fatalf("resolve(%q) failed: %v", tc.in, err)
			}
			if remote != tc.remote {
				tst.Errorf("Expected remote %q, got %q", tc.remote, remote)
			}
			if local != tc.local {
				tst.Errorf("Expected local %q, got %q", tc.local, local)
			}
		})
	}

	if _, _, err := f.resolve("/../other"); !errors.Is(err, data.ErrInvalidPath) {
		t.Errorf("Expected ErrInvalidPath for escape, got %v", err)
	}
}

// TestFromRemote verifies remote to local translation and the
// outside-root guard.
func TestFromRemote(t *testing.T) {
	f := &FileSystem{root: "/testzone/home"}

	cases := map[string]struct {
		in   string
		want string
		fail bool
	}{
		"root-itself":  {in: "/testzone/home", want: "/"},
		"direct-child": {in: "/testzone/home/a.txt", want: "/a.txt"},
		"nested":       {in: "/testzone/home/alice/b", want: "/alice/b"},
		"outside":      {in: "/testzone/other", fail: true},
		"prefix-trick": {in: "/testzone/homework", fail: true},
		"above":        {in: "/testzone", fail: true},
	}

	for name, tc := range cases {
		t.Run(name, func(tst *testing.T) {
			got, err := f.fromRemote(tc.in)
			if tc.fail {
				if !errors.Is(err, data.ErrInvalidPath) {
					tst.Errorf("Expected ErrInvalidPath for %q, got %v", tc.in, err)
				}
				return
			}

			if err != nil {
				tst.Fatalf("fromRemote(%q) failed: %v", tc.in, err)
			}
			if got != tc.want {
				tst.Errorf("Expected %q, got %q", tc.want, got)
			}
		})
	}
}

// TestSplitPath verifies parent and base extraction.
func TestSplitPath(t *testing.T) {
	cases := map[string]struct {
		in     string
		parent string
		name   string
	}{
		"root":   {in: "/", parent: "/", name: ""},
		"top":    {in: "/a.txt", parent: "/", name: "a.txt"},
		"nested": {in: "/home/alice/x", parent: "/home/alice", name: "x"},
	}

	for name, tc := range cases {
		t.Run(name, func(tst *testing.T) {
			parent, base := splitPath(tc.in)
			if parent != tc.parent || base != tc.name {
				tst.Errorf("Expected (%q, %q), got (%q, %q)", tc.parent, tc.name, parent, base)
			}
		})
	}

	if got := baseName("/home/alice"); got != "alice" {
		t.Errorf("Expected 'alice', got %q", got)
	}
	if got := baseName("/"); got != "/" {
		t.Errorf("Expected '/', got %q", got)
	}
}

// TestIsPathWithin verifies the containment check used to reject
// moving a collection below itself.
func TestIsPathWithin(t *testing.T) {
	cases := map[string]struct {
		parent string
		child  string
		want   bool
	}{
		"same":          {parent: "/a", child: "/a", want: true},
		"direct":        {parent: "/a", child: "/a/b", want: true},
		"deep":          {parent: "/a", child: "/a/b/c", want: true},
		"sibling":       {parent: "/a", child: "/b", want: false},
		"prefix-trick":  {parent: "/a", child: "/ab", want: false},
		"root-parent":   {parent: "/", child: "/a", want: true},
		"child-shorter": {parent: "/a/b", child: "/a", want: false},
	}

	for name, tc := range cases {
		t.Run(name, func(tst *testing.T) {
			if got := isPathWithin(tc.parent, tc.child); got != tc.want {
				tst.Errorf("isPathWithin(%q, %q) = %v, expected %v", tc.parent, tc.child, got, tc.want)
			}
		})
	}
}
