package nav

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrPathNotAbsolute = errors.New("nav: path must start with /")
	ErrInvalidPath     = errors.New("nav: invalid path")
)

// Path is an immutable ordered sequence of path segments. The root path
// has zero segments. All transforms return a new Path.
type Path struct {
	segments []string
}

// ParsePath parses an absolute path string. The input must start with /,
// contain no empty segments (no // and no trailing /) and no backslash.
func ParsePath(raw string) (Path, error) {
	if !strings.HasPrefix(raw, "/") {
		return Path{}, fmt.Errorf("%w: %q", ErrPathNotAbsolute, raw)
	}
	if strings.Contains(raw, `\`) {
		return Path{}, fmt.Errorf("%w: backslash in %q", ErrInvalidPath, raw)
	}
	if raw == "/" {
		return Path{}, nil
	}
	parts := strings.Split(raw[1:], "/")
	for _, part := range parts {
		if part == "" {
			return Path{}, fmt.Errorf("%w: empty segment in %q", ErrInvalidPath, raw)
		}
	}
	return Path{segments: parts}, nil
}

// NewPath builds a Path from individual segments. Segments must be
// non-empty and contain no slash or backslash.
func NewPath(segments ...string) (Path, error) {
	for i, seg := range segments {
		if err := validateSegment(seg); err != nil {
			return Path{}, fmt.Errorf("%w: segment %d", err, i)
		}
	}
	return Path{segments: append([]string(nil), segments...)}, nil
}

func validateSegment(seg string) error {
	if seg == "" {
		return fmt.Errorf("%w: empty segment", ErrInvalidPath)
	}
	if strings.ContainsAny(seg, `/\`) {
		return fmt.Errorf("%w: segment %q contains separator", ErrInvalidPath, seg)
	}
	return nil
}

// String renders the path with a leading slash. The root path renders
// as "/". ParsePath(p.String()) reproduces p for any valid Path.
func (p Path) String() string {
	if len(p.segments) == 0 {
		return "/"
	}
	return "/" + strings.Join(p.segments, "/")
}

// Segments returns a copy of the segment list.
func (p Path) Segments() []string {
	return append([]string(nil), p.segments...)
}

// IsRoot reports whether the path is "/".
func (p Path) IsRoot() bool {
	return len(p.segments) == 0
}

// Append returns a new Path with the given segments appended.
func (p Path) Append(segments ...string) (Path, error) {
	for i, seg := range segments {
		if err := validateSegment(seg); err != nil {
			return Path{}, fmt.Errorf("%w: segment %d", err, i)
		}
	}
	joined := make([]string, 0, len(p.segments)+len(segments))
	joined = append(joined, p.segments...)
	joined = append(joined, segments...)
	return Path{segments: joined}, nil
}
