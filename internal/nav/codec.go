package nav

import (
	"net/url"
	"sort"
	"strings"
)

// Encode renders the params as a bracket-notation query string with
// deterministic ordering: mapping keys are sorted at every level and
// sequence elements keep their order. A string leaf under nested keys
// encodes as k1[k2]=v, a sequence element as k[]=v, and a mapping
// element inside a sequence as k[][sub]=v. Empty Params encode to "".
// Empty sequence and mapping values have no query representation and
// are omitted.
func (p Params) Encode() string {
	var b strings.Builder
	encodeMapping(&b, "", p.m)
	return b.String()
}

func encodeMapping(b *strings.Builder, prefix string, m map[string]any) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		name := url.QueryEscape(k)
		if prefix != "" {
			name = prefix + "[" + name + "]"
		}
		encodeValue(b, name, m[k])
	}
}

func encodeValue(b *strings.Builder, name string, value any) {
	switch v := value.(type) {
	case string:
		if b.Len() > 0 {
			b.WriteByte('&')
		}
		b.WriteString(name)
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(v))
	case []any:
		for _, elem := range v {
			encodeValue(b, name+"[]", elem)
		}
	case map[string]any:
		encodeMapping(b, name, v)
	}
}

// DecodeParams parses a bracket-notation query string. It inverts
// Encode exactly for any output Encode produced. Arbitrary inputs are
// decoded best effort: pairs with malformed escapes or unbalanced
// brackets are dropped, assignments that conflict with an existing
// structure overwrite it, and the result is deterministic for a given
// input. DecodeParams never fails.
func DecodeParams(query string) Params {
	out := map[string]any{}
	for _, pair := range strings.Split(query, "&") {
		if pair == "" {
			continue
		}
		rawKey, rawValue, _ := strings.Cut(pair, "=")
		segments, ok := splitKey(rawKey)
		if !ok {
			continue
		}
		value, err := url.QueryUnescape(rawValue)
		if err != nil {
			continue
		}
		assignMapping(out, segments, value)
	}
	return Params{m: out}
}

// splitKey splits "a[b][]" into ["a" "b" ""] where "" marks a sequence
// append. Splitting happens before unescaping so percent-encoded
// brackets stay literal key characters. Returns false for keys with an
// empty base or unbalanced bracket nesting.
func splitKey(raw string) ([]string, bool) {
	base, rest, bracketed := strings.Cut(raw, "[")
	if base == "" {
		return nil, false
	}
	decodedBase, err := url.QueryUnescape(base)
	if err != nil {
		return nil, false
	}
	segments := []string{decodedBase}
	if !bracketed {
		return segments, true
	}
	for rest != "" {
		seg, tail, closed := strings.Cut(rest, "]")
		if !closed || strings.Contains(seg, "[") {
			return nil, false
		}
		decoded, err := url.QueryUnescape(seg)
		if err != nil {
			return nil, false
		}
		segments = append(segments, decoded)
		if tail == "" {
			return segments, true
		}
		if !strings.HasPrefix(tail, "[") {
			return nil, false
		}
		rest = tail[1:]
	}
	// trailing "[" with no closing bracket
	return nil, false
}

func assignMapping(m map[string]any, segments []string, value string) {
	key := segments[0]
	rest := segments[1:]
	if len(rest) == 0 {
		m[key] = value
		return
	}
	if rest[0] == "" {
		seq, _ := m[key].([]any)
		m[key] = assignSequence(seq, rest[1:], value)
		return
	}
	child, ok := m[key].(map[string]any)
	if !ok {
		child = map[string]any{}
		m[key] = child
	}
	assignMapping(child, rest, value)
}

// assignSequence applies one "[]" hop. A bare append adds a string
// element. A mapping element merges into the last element while the
// assigned key path is still unset there, otherwise a fresh element is
// started; that rule makes decode invert Encode for sequences of
// mappings. A "[]" directly after "[]" has no representable structure
// and is dropped.
func assignSequence(seq []any, rest []string, value string) []any {
	if seq == nil {
		seq = []any{}
	}
	if len(rest) == 0 {
		return append(seq, value)
	}
	if rest[0] == "" {
		return seq
	}
	if n := len(seq); n > 0 {
		if last, ok := seq[n-1].(map[string]any); ok && canMerge(last, rest) {
			assignMapping(last, rest, value)
			return seq
		}
	}
	elem := map[string]any{}
	assignMapping(elem, rest, value)
	return append(seq, elem)
}

func canMerge(m map[string]any, segments []string) bool {
	key := segments[0]
	rest := segments[1:]
	current, exists := m[key]
	if !exists {
		return true
	}
	if len(rest) == 0 {
		return false
	}
	if rest[0] == "" {
		_, isSeq := current.([]any)
		return isSeq
	}
	child, isMapping := current.(map[string]any)
	return isMapping && canMerge(child, rest)
}
