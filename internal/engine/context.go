package engine

import (
	"encoding/json"
	"reflect"
)

// Context is the mutable key/value working set threaded through one engine
// run. It is exclusively owned by a single invocation and never shared.
type Context map[string]any

// Clone returns a shallow copy so the caller's map is never mutated.
func (c Context) Clone() Context {
	out := make(Context, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out
}

// numericValue converts v to float64 when v is any numeric kind, including
// json.Number values produced by JSON decoding.
func numericValue(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

// valueEquals compares two context values. Numbers compare numerically so
// that int(5) and float64(5) are equal after a JSON round trip; everything
// else compares structurally.
func valueEquals(a, b any) bool {
	fa, aok := numericValue(a)
	fb, bok := numericValue(b)
	if aok && bok {
		return fa == fb
	}
	if aok != bok {
		return false
	}
	return reflect.DeepEqual(a, b)
}
