package nav

import (
	"errors"
	"testing"

	"github.com/danmuck/liveurl/internal/testutil/testlog"
)

func mustURL(t *testing.T, raw string) URL {
	t.Helper()
	u, err := ParseURL(raw)
	if err != nil {
		t.Fatalf("parse url %q: %v", raw, err)
	}
	return u
}

func TestParseURLDefaults(t *testing.T) {
	testlog.Start(t)
	u := mustURL(t, "http://example.com")
	if u.Scheme() != SchemeHTTP || u.Host() != "example.com" || u.Port() != 80 {
		t.Fatalf("unexpected url: %s %s %d", u.Scheme(), u.Host(), u.Port())
	}
	if !u.Path().IsRoot() || u.Params().Len() != 0 {
		t.Fatalf("expected root path and empty params")
	}

	u = mustURL(t, "https://example.com")
	if u.Port() != 443 {
		t.Fatalf("https default port: %d", u.Port())
	}
}

func TestParseURLExplicitParts(t *testing.T) {
	testlog.Start(t)
	u := mustURL(t, "https://example.com:8443/base/test?x=y&tags[]=a&tags[]=b")
	if u.Port() != 8443 {
		t.Fatalf("port: %d", u.Port())
	}
	if u.Path().String() != "/base/test" {
		t.Fatalf("path: %q", u.Path().String())
	}
	want := mustParams(t, map[string]any{"x": "y", "tags": []any{"a", "b"}})
	if !u.Params().Equal(want) {
		t.Fatalf("params: %#v", u.Params().Map())
	}
}

func TestParseURLRejectsMalformed(t *testing.T) {
	testlog.Start(t)
	cases := []struct {
		raw  string
		want error
	}{
		{"ftp://example.com", ErrInvalidScheme},
		{"/relative", ErrInvalidScheme},
		{"http://", ErrInvalidURL},
		{"http://example.com:99999", ErrInvalidPort},
	}
	for _, tc := range cases {
		if _, err := ParseURL(tc.raw); !errors.Is(err, tc.want) {
			t.Fatalf("parse %q: expected %v, got %v", tc.raw, tc.want, err)
		}
	}
}

func TestFromHostDecodedParamsWin(t *testing.T) {
	testlog.Start(t)
	u, err := FromHost(map[string]any{"from": "host"}, "http://example.com/page?from=query&extra=1")
	if err != nil {
		t.Fatalf("from host: %v", err)
	}
	want := mustParams(t, map[string]any{"from": "host"})
	if !u.Params().Equal(want) {
		t.Fatalf("host params did not win: %#v", u.Params().Map())
	}
}

func TestFromHostWithoutDecodedParamsKeepsQuery(t *testing.T) {
	testlog.Start(t)
	u, err := FromHost(nil, "http://example.com/page?from=query")
	if err != nil {
		t.Fatalf("from host: %v", err)
	}
	want := mustParams(t, map[string]any{"from": "query"})
	if !u.Params().Equal(want) {
		t.Fatalf("query params lost: %#v", u.Params().Map())
	}
}

func TestFromHostRejectsBadDecodedParams(t *testing.T) {
	testlog.Start(t)
	_, err := FromHost(map[string]any{"n": 1}, "http://example.com/")
	if !errors.Is(err, ErrInvalidValue) {
		t.Fatalf("expected ErrInvalidValue, got %v", err)
	}
}

func TestRelativeTargetAlwaysHasSeparator(t *testing.T) {
	testlog.Start(t)
	u := mustURL(t, "http://example.com")
	if got := u.RelativeTarget(); got != "/?" {
		t.Fatalf("root relative target: %q", got)
	}

	u = mustURL(t, "http://example.com/base?x=y")
	if got := u.RelativeTarget(); got != "/base?x=y" {
		t.Fatalf("relative target: %q", got)
	}
}

func TestAbsoluteTarget(t *testing.T) {
	testlog.Start(t)
	u := mustURL(t, "https://example.com:8443/base?x=y")
	if got := u.AbsoluteTarget(); got != "https://example.com:8443/base?x=y" {
		t.Fatalf("absolute target: %q", got)
	}
	u = mustURL(t, "http://example.com")
	if got := u.AbsoluteTarget(); got != "http://example.com:80/?" {
		t.Fatalf("absolute target: %q", got)
	}
}

func TestURLUpdatersReturnNewValues(t *testing.T) {
	testlog.Start(t)
	u := mustURL(t, "http://example.com/base?x=y")

	extended := u.UpdatePath(func(p Path) Path {
		next, err := p.Append("test")
		if err != nil {
			t.Fatalf("append: %v", err)
		}
		return next
	})
	if u.Path().String() != "/base" || extended.Path().String() != "/base/test" {
		t.Fatalf("UpdatePath mutated receiver")
	}

	cleared := u.WithParams(Params{})
	if u.Params().Len() != 1 || cleared.Params().Len() != 0 {
		t.Fatalf("WithParams mutated receiver")
	}

	augmented := u.UpdateParams(func(p Params) Params {
		next, err := p.With("test", "passed")
		if err != nil {
			t.Fatalf("with: %v", err)
		}
		return next
	})
	if augmented.RelativeTarget() != "/base?test=passed&x=y" {
		t.Fatalf("unexpected target: %q", augmented.RelativeTarget())
	}

	if _, err := u.WithPort(70000); !errors.Is(err, ErrInvalidPort) {
		t.Fatalf("expected ErrInvalidPort, got %v", err)
	}
	if _, err := u.WithScheme("gopher"); !errors.Is(err, ErrInvalidScheme) {
		t.Fatalf("expected ErrInvalidScheme, got %v", err)
	}
	if _, err := u.WithHost(""); !errors.Is(err, ErrInvalidURL) {
		t.Fatalf("expected ErrInvalidURL, got %v", err)
	}

	moved, err := u.WithHost("other.example.com")
	if err != nil {
		t.Fatalf("with host: %v", err)
	}
	if moved.Host() != "other.example.com" || u.Host() != "example.com" {
		t.Fatalf("WithHost mutated receiver")
	}
}
