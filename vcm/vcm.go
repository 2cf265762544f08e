// Package vcm evaluates the Variant Creation Model expressions carried
// as attribute and content values on vdom.Element/vdom.Attribute, per
// spec.md §3/§4.3: "Attribute evaluation... first all attribute VCMs
// produce values". Defining HVML's full concrete syntax is an explicit
// non-goal of spec.md, so this package implements the minimal
// expression surface the interpreter core actually needs to drive
// scheduling and scope resolution: EJSON literals (delegated to
// variant.Parse), `$`-prefixed variable references with a dotted/
// bracketed sub-path, and `$`-interpolation inside double-quoted
// string literals. A real HVML front end would replace this package
// wholesale with its own parser's output; nothing else in this module
// depends on its internals.
package vcm

import (
	"fmt"
	"strings"

	"github.com/hvml-run/hvmi/variant"
	"github.com/hvml-run/hvmi/variant/path"
)

// Resolver is the minimal lookup surface an expression needs: named
// variables (resolved by the caller through scope.Registry, honoring
// any `at=` qualifier already applied) and the seven fixed
// symbol-variable sigils from spec.md §4.3.
type Resolver interface {
	Lookup(name string) (*variant.Value, bool)
	Symbol(sigil byte) (*variant.Value, bool)
}

// Eval evaluates src against r. Recognized forms, tried in order:
//
//   - empty string            -> undefined
//   - leading '$'              -> variable reference, optionally
//     followed by a '.'/'['-led sub-path evaluated via variant/path
//   - otherwise, anything variant.Parse accepts as EJSON (objects,
//     arrays, tuples, numbers, quoted strings with $-interpolation,
//     byte sequences, true/false/null/undefined)
//   - anything else            -> a plain String literal (bare CDATA
//     text, e.g. an <init> element's inline, unquoted content)
func Eval(r Resolver, src string) (*variant.Value, error) {
	src = strings.TrimSpace(src)
	if src == "" {
		return variant.NewUndefined(), nil
	}
	if src[0] == '$' {
		return evalVariableRef(r, src)
	}
	if v, err := variant.Parse(src); err == nil {
		return interpolateIfString(r, v)
	}
	return variant.NewString(src), nil
}

// evalVariableRef splits a leading `$name` (or `$<`, `$?`, `$!`, `$@`,
// `$%`, `$:`, `$^`) from any trailing sub-path and resolves each in
// turn, per spec.md §3's path-addressing examples ($x.[1], $cfg.port).
func evalVariableRef(r Resolver, src string) (*variant.Value, error) {
	rest := src[1:]
	if rest == "" {
		return nil, fmt.Errorf("vcm: bare %q", src)
	}

	const symbolSigils = "<?!@%:^"
	if strings.IndexByte(symbolSigils, rest[0]) >= 0 {
		sigil := rest[0]
		v, ok := r.Symbol(sigil)
		if !ok {
			return nil, fmt.Errorf("vcm: symbol variable %q is not set", string(sigil))
		}
		return path.Eval(v, rest[1:])
	}

	name, subpath := splitNameAndPath(rest)
	v, ok := r.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("vcm: undefined variable %q", name)
	}
	return path.Eval(v, subpath)
}

// splitNameAndPath divides "name.rest" or "name[rest" into the bare
// identifier and the remaining path suffix (which may be empty).
func splitNameAndPath(s string) (name, subpath string) {
	for i, c := range s {
		if c == '.' || c == '[' {
			return s[:i], s[i:]
		}
	}
	return s, ""
}

// interpolateIfString rewrites a parsed String value containing `$name`
// or `${name}` references by substituting each with its resolved,
// stringified value; every other Kind passes through unchanged.
func interpolateIfString(r Resolver, v *variant.Value) (*variant.Value, error) {
	if v.Kind() != variant.String {
		return v, nil
	}
	s := v.AsString()
	if !strings.ContainsRune(s, '$') {
		return v, nil
	}

	var out strings.Builder
	i := 0
	for i < len(s) {
		if s[i] != '$' || i+1 >= len(s) {
			out.WriteByte(s[i])
			i++
			continue
		}
		j := i + 1
		braced := j < len(s) && s[j] == '{'
		if braced {
			j++
		}
		start := j
		for j < len(s) && (isIdentByte(s[j]) || s[j] == '.' || s[j] == '[' || s[j] == ']') {
			j++
		}
		if j == start {
			out.WriteByte(s[i])
			i++
			continue
		}
		ref := s[start:j]
		if braced {
			if j < len(s) && s[j] == '}' {
				j++
			}
		}
		val, err := evalVariableRef(r, "$"+ref)
		if err != nil {
			return nil, err
		}
		out.WriteString(variant.Stringify(val))
		i = j
	}
	return variant.NewString(out.String()), nil
}

func isIdentByte(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}
