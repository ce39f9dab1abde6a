package nav

import (
	"errors"
	"testing"

	"github.com/danmuck/liveurl/internal/testutil/testlog"
)

func TestParsePathRoot(t *testing.T) {
	testlog.Start(t)
	p, err := ParsePath("/")
	if err != nil {
		t.Fatalf("parse root: %v", err)
	}
	if !p.IsRoot() || len(p.Segments()) != 0 {
		t.Fatalf("root path has segments: %#v", p.Segments())
	}
	if p.String() != "/" {
		t.Fatalf("root rendered as %q", p.String())
	}
}

func TestParsePathRoundTrip(t *testing.T) {
	testlog.Start(t)
	for _, raw := range []string{"/", "/base", "/base/test", "/a/b/c"} {
		p, err := ParsePath(raw)
		if err != nil {
			t.Fatalf("parse %q: %v", raw, err)
		}
		if p.String() != raw {
			t.Fatalf("round trip %q -> %q", raw, p.String())
		}
	}
}

func TestParsePathRejectsMalformed(t *testing.T) {
	testlog.Start(t)
	cases := []struct {
		raw  string
		want error
	}{
		{"", ErrPathNotAbsolute},
		{"base", ErrPathNotAbsolute},
		{"//", ErrInvalidPath},
		{"/a//b", ErrInvalidPath},
		{"/a/", ErrInvalidPath},
		{`/a\b`, ErrInvalidPath},
	}
	for _, tc := range cases {
		if _, err := ParsePath(tc.raw); !errors.Is(err, tc.want) {
			t.Fatalf("parse %q: expected %v, got %v", tc.raw, tc.want, err)
		}
	}
}

func TestNewPathValidatesSegments(t *testing.T) {
	testlog.Start(t)
	p, err := NewPath("base", "test")
	if err != nil {
		t.Fatalf("new path: %v", err)
	}
	if p.String() != "/base/test" {
		t.Fatalf("unexpected path: %q", p.String())
	}
	if _, err := NewPath("a", ""); !errors.Is(err, ErrInvalidPath) {
		t.Fatalf("expected ErrInvalidPath for empty segment, got %v", err)
	}
	if _, err := NewPath("a/b"); !errors.Is(err, ErrInvalidPath) {
		t.Fatalf("expected ErrInvalidPath for slash segment, got %v", err)
	}
}

func TestPathAppendReturnsNewValue(t *testing.T) {
	testlog.Start(t)
	base, err := ParsePath("/base")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	extended, err := base.Append("test")
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	if base.String() != "/base" {
		t.Fatalf("append mutated receiver: %q", base.String())
	}
	if extended.String() != "/base/test" {
		t.Fatalf("unexpected appended path: %q", extended.String())
	}
	if _, err := base.Append("x/y"); !errors.Is(err, ErrInvalidPath) {
		t.Fatalf("expected ErrInvalidPath, got %v", err)
	}
}
