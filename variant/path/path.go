// Package path evaluates the dotted/bracketed sub-path expressions used
// throughout HVML for variant addressing: $x.[1], $cfg.port, and the
// "at" sub-path attribute on <update>. Rather than hand-roll a path
// parser, it compiles the expression with itchyny/gojq (the same
// library the teacher's jq-flavored step executor uses for its query
// language) against a plain-Go mirror of the variant tree, and maps the
// single result back into a variant.Value.
package path

import (
	"fmt"

	"github.com/itchyny/gojq"

	"github.com/hvml-run/hvmi/variant"
)

// Eval evaluates a gojq-style path expression (e.g. ".port", ".[1]",
// ".items[0].name") against v and returns the addressed sub-value.
// A leading "." is optional; Eval prepends one if missing.
func Eval(v *variant.Value, expr string) (*variant.Value, error) {
	if expr == "" || expr == "." {
		return v, nil
	}
	if expr[0] != '.' {
		expr = "." + expr
	}
	query, err := gojq.Parse(expr)
	if err != nil {
		return nil, fmt.Errorf("path: parse %q: %w", expr, err)
	}
	native := toNative(v)
	iter := query.Run(native)
	result, ok := iter.Next()
	if !ok {
		return variant.NewUndefined(), nil
	}
	if err, ok := result.(error); ok {
		return nil, fmt.Errorf("path: eval %q: %w", expr, err)
	}
	return fromNative(result), nil
}

// toNative mirrors a variant.Value into the plain map/slice/scalar shape
// gojq expects to walk.
func toNative(v *variant.Value) any {
	if v == nil {
		return nil
	}
	switch v.Kind() {
	case variant.Null, variant.Undefined:
		return nil
	case variant.Boolean:
		return v.AsBool()
	case variant.Number, variant.LongDouble, variant.LongInt, variant.ULongInt:
		return v.AsNumber()
	case variant.String, variant.AtomString, variant.Exception:
		return v.AsString()
	case variant.ByteSequence:
		return string(v.AsBytes())
	case variant.Object:
		m := make(map[string]any, v.Len())
		for _, k := range v.Keys() {
			m[k] = toNative(v.Get(k))
		}
		return m
	case variant.Array, variant.Tuple:
		items := v.Items()
		out := make([]any, len(items))
		for i, it := range items {
			out[i] = toNative(it)
		}
		return out
	case variant.Set:
		members := v.Members()
		out := make([]any, len(members))
		for i, it := range members {
			out[i] = toNative(it)
		}
		return out
	default:
		return nil
	}
}

// fromNative converts a gojq result back into a variant.Value.
func fromNative(r any) *variant.Value {
	switch t := r.(type) {
	case nil:
		return variant.NewNull()
	case bool:
		return variant.NewBool(t)
	case float64:
		return variant.NewNumber(t)
	case int:
		return variant.NewNumber(float64(t))
	case string:
		return variant.NewString(t)
	case map[string]any:
		obj := variant.NewObject()
		for k, val := range t {
			_ = obj.Set(k, fromNative(val))
		}
		return obj
	case []any:
		arr := variant.NewArray()
		for _, val := range t {
			_ = arr.ArrayAppend(fromNative(val))
		}
		return arr
	default:
		return variant.NewUndefined()
	}
}
