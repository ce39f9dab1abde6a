package nav

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
)

var (
	ErrNonStringKey   = errors.New("nav: params key must be a string")
	ErrInvalidValue   = errors.New("nav: params value must be a string, sequence, or mapping")
	ErrNestedSequence = errors.New("nav: params sequence cannot directly contain a sequence")
)

// Params is an immutable nested query-parameter structure. Every key at
// every nesting level is a string. Leaves are strings; containers are
// ordered sequences ([]any) or string-keyed mappings (map[string]any).
//
// A sequence may not directly contain another sequence: the bracket
// query encoding has no representation for that shape, and rejecting it
// at construction keeps encode/decode round-trips well defined.
type Params struct {
	m map[string]any
}

// NewParams validates and deep-copies src. Mappings with non-string keys
// and values outside the string/sequence/mapping set are rejected with
// an error naming the offending key path.
func NewParams(src map[string]any) (Params, error) {
	m, err := copyMapping(src, "")
	if err != nil {
		return Params{}, err
	}
	return Params{m: m}, nil
}

func copyMapping(src map[string]any, at string) (map[string]any, error) {
	out := make(map[string]any, len(src))
	for key, value := range src {
		v, err := copyValue(value, joinKeyPath(at, key), false)
		if err != nil {
			return nil, err
		}
		out[key] = v
	}
	return out, nil
}

func copyValue(value any, at string, inSequence bool) (any, error) {
	switch v := value.(type) {
	case string:
		return v, nil
	case []string:
		if inSequence {
			return nil, fmt.Errorf("%w: at %q", ErrNestedSequence, at)
		}
		seq := make([]any, len(v))
		for i, elem := range v {
			seq[i] = elem
		}
		return seq, nil
	case []any:
		if inSequence {
			return nil, fmt.Errorf("%w: at %q", ErrNestedSequence, at)
		}
		seq := make([]any, len(v))
		for i, elem := range v {
			copied, err := copyValue(elem, fmt.Sprintf("%s[%d]", at, i), true)
			if err != nil {
				return nil, err
			}
			seq[i] = copied
		}
		return seq, nil
	case map[string]any:
		return copyMapping(v, at)
	case Params:
		return copyMapping(v.m, at)
	default:
		if mapped, err := reflectMapping(value, at); err != nil || mapped != nil {
			return mapped, err
		}
		return nil, fmt.Errorf("%w: at %q (got %T)", ErrInvalidValue, at, value)
	}
}

// reflectMapping catches mappings declared with a non-string key type
// (map[any]any and friends) so they fail as key errors rather than as
// opaque value errors. String-keyed map types other than map[string]any
// are copied through.
func reflectMapping(value any, at string) (map[string]any, error) {
	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Map {
		return nil, nil
	}
	if rv.Type().Key().Kind() != reflect.String {
		return nil, fmt.Errorf("%w: at %q (key type %s)", ErrNonStringKey, at, rv.Type().Key())
	}
	out := make(map[string]any, rv.Len())
	for _, key := range rv.MapKeys() {
		copied, err := copyValue(rv.MapIndex(key).Interface(), joinKeyPath(at, key.String()), false)
		if err != nil {
			return nil, err
		}
		out[key.String()] = copied
	}
	return out, nil
}

func joinKeyPath(at, key string) string {
	if at == "" {
		return key
	}
	return at + "[" + key + "]"
}

// Len returns the number of top-level keys.
func (p Params) Len() int {
	return len(p.m)
}

// Get returns a deep copy of the value stored under a top-level key.
func (p Params) Get(key string) (any, bool) {
	v, ok := p.m[key]
	if !ok {
		return nil, false
	}
	return copyAny(v), true
}

// Map returns a deep copy of the underlying structure.
func (p Params) Map() map[string]any {
	out := make(map[string]any, len(p.m))
	for k, v := range p.m {
		out[k] = copyAny(v)
	}
	return out
}

// With returns a new Params with key set to value, validating the value
// the same way NewParams does.
func (p Params) With(key string, value any) (Params, error) {
	copied, err := copyValue(value, key, false)
	if err != nil {
		return Params{}, err
	}
	out := p.Map()
	out[key] = copied
	return Params{m: out}, nil
}

// Without returns a new Params with the top-level key removed.
func (p Params) Without(key string) Params {
	out := p.Map()
	delete(out, key)
	return Params{m: out}
}

// Equal reports structural equality.
func (p Params) Equal(other Params) bool {
	if len(p.m) != len(other.m) {
		return false
	}
	if len(p.m) == 0 {
		return true
	}
	return reflect.DeepEqual(p.m, other.m)
}

// Keys returns the top-level keys in sorted order.
func (p Params) Keys() []string {
	keys := make([]string, 0, len(p.m))
	for k := range p.m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func copyAny(v any) any {
	switch t := v.(type) {
	case string:
		return t
	case []any:
		out := make([]any, len(t))
		for i, elem := range t {
			out[i] = copyAny(elem)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, elem := range t {
			out[k] = copyAny(elem)
		}
		return out
	default:
		// unreachable for values built through NewParams
		return t
	}
}
