package nav

import (
	"errors"
	"testing"

	"github.com/danmuck/liveurl/internal/testutil/testlog"
)

func mustParams(t *testing.T, src map[string]any) Params {
	t.Helper()
	p, err := NewParams(src)
	if err != nil {
		t.Fatalf("new params: %v", err)
	}
	return p
}

func TestEncodeEmptyParams(t *testing.T) {
	testlog.Start(t)
	if got := (Params{}).Encode(); got != "" {
		t.Fatalf("empty params encoded to %q", got)
	}
}

func TestEncodeSortsTopLevelKeys(t *testing.T) {
	testlog.Start(t)
	p := mustParams(t, map[string]any{"x": "y", "test": "passed"})
	if got := p.Encode(); got != "test=passed&x=y" {
		t.Fatalf("unexpected encoding: %q", got)
	}
}

func TestEncodeNestedSequenceOfMappings(t *testing.T) {
	testlog.Start(t)
	p := mustParams(t, map[string]any{
		"x": []any{map[string]any{"y": "z"}, "a"},
	})
	if got := p.Encode(); got != "x[][y]=z&x[]=a" {
		t.Fatalf("unexpected encoding: %q", got)
	}
}

func TestEncodeEscapesKeysAndValues(t *testing.T) {
	testlog.Start(t)
	p := mustParams(t, map[string]any{"a b": "c&d=e", "k[0]": "v"})
	if got := p.Encode(); got != "a+b=c%26d%3De&k%5B0%5D=v" {
		t.Fatalf("unexpected encoding: %q", got)
	}
}

func TestDecodeInvertsEncode(t *testing.T) {
	testlog.Start(t)
	cases := []map[string]any{
		{"x": "y"},
		{"x": "y", "test": "passed"},
		{"a": []any{"x", "y"}},
		{"x": []any{map[string]any{"y": "z"}, "a"}},
		{"filter": map[string]any{"status": "open", "tags": []any{"a", "b"}}},
		{"rows": []any{
			map[string]any{"id": "1", "name": "alpha"},
			map[string]any{"id": "2", "name": "beta"},
		}},
		{"a b": "c&d=e", "k[0]": "v"},
		{"deep": map[string]any{"er": map[string]any{"est": "leaf"}}},
	}
	for _, src := range cases {
		p := mustParams(t, src)
		got := DecodeParams(p.Encode())
		if !got.Equal(p) {
			t.Fatalf("round trip failed for %q: got %#v want %#v", p.Encode(), got.Map(), p.Map())
		}
	}
}

func TestDecodeSequenceOfMappingsMergesByUnsetKey(t *testing.T) {
	testlog.Start(t)
	got := DecodeParams("a[][u]=v&a[][y]=z&a[][y]=w")
	want := mustParams(t, map[string]any{
		"a": []any{
			map[string]any{"u": "v", "y": "z"},
			map[string]any{"y": "w"},
		},
	})
	if !got.Equal(want) {
		t.Fatalf("unexpected decode: %#v", got.Map())
	}
}

func TestDecodePreservesSequenceOrder(t *testing.T) {
	testlog.Start(t)
	got := DecodeParams("a[]=first&a[]=second&a[]=third")
	seq, ok := got.Get("a")
	if !ok {
		t.Fatalf("missing key a")
	}
	elems, ok := seq.([]any)
	if !ok || len(elems) != 3 {
		t.Fatalf("unexpected sequence: %#v", seq)
	}
	if elems[0] != "first" || elems[1] != "second" || elems[2] != "third" {
		t.Fatalf("order not preserved: %#v", elems)
	}
}

func TestDecodeDropsMalformedPairs(t *testing.T) {
	testlog.Start(t)
	cases := []struct {
		query string
		want  map[string]any
	}{
		{"a[=1&b=2", map[string]any{"b": "2"}},
		{"a[x=1&b=2", map[string]any{"b": "2"}},
		{"a[]extra=1&b=2", map[string]any{"b": "2"}},
		{"%zz=1&b=2", map[string]any{"b": "2"}},
		{"a=%zz&b=2", map[string]any{"b": "2"}},
		{"[x]=1&b=2", map[string]any{"b": "2"}},
		{"a[][]=1&b=2", map[string]any{"a": []any{}, "b": "2"}},
		{"", map[string]any{}},
		{"&&", map[string]any{}},
	}
	for _, tc := range cases {
		got := DecodeParams(tc.query)
		want := mustParams(t, tc.want)
		if !got.Equal(want) {
			t.Fatalf("decode %q: got %#v want %#v", tc.query, got.Map(), tc.want)
		}
	}
}

func TestDecodeConflictingAssignmentsAreDeterministic(t *testing.T) {
	testlog.Start(t)
	got := DecodeParams("a=1&a[b]=2")
	want := mustParams(t, map[string]any{"a": map[string]any{"b": "2"}})
	if !got.Equal(want) {
		t.Fatalf("unexpected decode: %#v", got.Map())
	}

	got = DecodeParams("a[b]=2&a=1")
	want = mustParams(t, map[string]any{"a": "1"})
	if !got.Equal(want) {
		t.Fatalf("unexpected decode: %#v", got.Map())
	}
}

func TestDecodeValueWithoutEquals(t *testing.T) {
	testlog.Start(t)
	got := DecodeParams("flag")
	want := mustParams(t, map[string]any{"flag": ""})
	if !got.Equal(want) {
		t.Fatalf("unexpected decode: %#v", got.Map())
	}
}

func TestNewParamsRejectsNonStringKeys(t *testing.T) {
	testlog.Start(t)
	_, err := NewParams(map[string]any{
		"outer": map[any]any{1: "x"},
	})
	if !errors.Is(err, ErrNonStringKey) {
		t.Fatalf("expected ErrNonStringKey, got %v", err)
	}

	_, err = NewParams(map[string]any{
		"outer": map[int]string{1: "x"},
	})
	if !errors.Is(err, ErrNonStringKey) {
		t.Fatalf("expected ErrNonStringKey, got %v", err)
	}
}

func TestNewParamsRejectsNonStringLeaves(t *testing.T) {
	testlog.Start(t)
	_, err := NewParams(map[string]any{"n": 42})
	if !errors.Is(err, ErrInvalidValue) {
		t.Fatalf("expected ErrInvalidValue, got %v", err)
	}

	_, err = NewParams(map[string]any{"deep": map[string]any{"flag": true}})
	if !errors.Is(err, ErrInvalidValue) {
		t.Fatalf("expected ErrInvalidValue, got %v", err)
	}
}

func TestNewParamsRejectsSequenceInSequence(t *testing.T) {
	testlog.Start(t)
	_, err := NewParams(map[string]any{"a": []any{[]any{"x"}}})
	if !errors.Is(err, ErrNestedSequence) {
		t.Fatalf("expected ErrNestedSequence, got %v", err)
	}
}

func TestNewParamsAcceptsStringSlicesAndTypedMaps(t *testing.T) {
	testlog.Start(t)
	p := mustParams(t, map[string]any{
		"tags":  []string{"a", "b"},
		"named": map[string]string{"k": "v"},
	})
	if got := p.Encode(); got != "named[k]=v&tags[]=a&tags[]=b" {
		t.Fatalf("unexpected encoding: %q", got)
	}
}

func TestParamsImmutability(t *testing.T) {
	testlog.Start(t)
	src := map[string]any{"a": []any{"x"}}
	p := mustParams(t, src)

	// mutating the source after construction must not leak in
	src["a"].([]any)[0] = "mutated"
	if got := p.Encode(); got != "a[]=x" {
		t.Fatalf("source mutation leaked: %q", got)
	}

	// mutating a copy returned by Map must not leak back
	m := p.Map()
	m["a"].([]any)[0] = "mutated"
	if got := p.Encode(); got != "a[]=x" {
		t.Fatalf("copy mutation leaked: %q", got)
	}

	withB, err := p.With("b", "y")
	if err != nil {
		t.Fatalf("with: %v", err)
	}
	if p.Len() != 1 || withB.Len() != 2 {
		t.Fatalf("With mutated the receiver")
	}
	if withB.Without("a").Len() != 1 {
		t.Fatalf("Without result unexpected")
	}
}
