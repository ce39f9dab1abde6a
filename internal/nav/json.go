package nav

import (
	"errors"
	"fmt"

	"github.com/tidwall/gjson"
)

var ErrInvalidParamsJSON = errors.New("nav: invalid params json")

// ParamsFromJSON builds Params from a JSON object as delivered by host
// runtimes that decode query parameters themselves. The document must
// be an object whose leaves are strings; arrays and nested objects map
// to sequences and mappings. Non-string leaves are rejected rather than
// stringified, matching NewParams construction rules.
func ParamsFromJSON(data []byte) (Params, error) {
	if !gjson.ValidBytes(data) {
		return Params{}, fmt.Errorf("%w: malformed document", ErrInvalidParamsJSON)
	}
	doc := gjson.ParseBytes(data)
	if !doc.IsObject() {
		return Params{}, fmt.Errorf("%w: top level must be an object", ErrInvalidParamsJSON)
	}
	mapped, err := jsonValue(doc, "")
	if err != nil {
		return Params{}, err
	}
	return NewParams(mapped.(map[string]any))
}

func jsonValue(res gjson.Result, at string) (any, error) {
	switch {
	case res.IsObject():
		out := map[string]any{}
		var walkErr error
		res.ForEach(func(key, value gjson.Result) bool {
			v, err := jsonValue(value, joinKeyPath(at, key.String()))
			if err != nil {
				walkErr = err
				return false
			}
			out[key.String()] = v
			return true
		})
		if walkErr != nil {
			return nil, walkErr
		}
		return out, nil
	case res.IsArray():
		elems := res.Array()
		out := make([]any, 0, len(elems))
		for i, elem := range elems {
			v, err := jsonValue(elem, fmt.Sprintf("%s[%d]", at, i))
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		return out, nil
	case res.Type == gjson.String:
		return res.String(), nil
	default:
		return nil, fmt.Errorf("%w: non-string leaf at %q", ErrInvalidParamsJSON, at)
	}
}
