package variant

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Sort implements sort(array, dir, caseness) from spec.md §4.1/§8: a
// stable sort whose comparator depends on caseness. "auto" tries a
// numeric parse per element, falling back to case-sensitive string
// compare when either side isn't numeric.
func Sort(arr *Value, dir string, caseness string) (*Value, error) {
	if arr.Kind() != Array {
		return nil, fmt.Errorf("variant: Sort on non-array")
	}
	items := append([]*Value(nil), arr.Items()...)
	less := comparator(caseness)
	sort.SliceStable(items, func(i, j int) bool {
		c := less(items[i], items[j])
		if dir == "desc" {
			return c > 0
		}
		return c < 0
	})
	return NewArray(items...), nil
}

// comparator returns a three-way compare function (negative/zero/positive)
// for the given caseness mode.
func comparator(caseness string) func(a, b *Value) int {
	switch caseness {
	case "caseless":
		return func(a, b *Value) int { return strings.Compare(strings.ToLower(Stringify(a)), strings.ToLower(Stringify(b))) }
	case "number":
		return func(a, b *Value) int {
			af, aok := asFloat(a)
			bf, bok := asFloat(b)
			switch {
			case aok && bok:
				switch {
				case af < bf:
					return -1
				case af > bf:
					return 1
				default:
					return 0
				}
			default:
				return strings.Compare(Stringify(a), Stringify(b))
			}
		}
	case "auto":
		return func(a, b *Value) int {
			af, aok := asFloat(a)
			bf, bok := asFloat(b)
			if aok && bok {
				switch {
				case af < bf:
					return -1
				case af > bf:
					return 1
				default:
					return 0
				}
			}
			return strings.Compare(Stringify(a), Stringify(b))
		}
	default: // "case"
		return func(a, b *Value) int { return strings.Compare(Stringify(a), Stringify(b)) }
	}
}

func asFloat(v *Value) (float64, bool) {
	switch v.Kind() {
	case Number, LongDouble, LongInt, ULongInt:
		return v.AsNumber(), true
	case String, AtomString:
		f, err := strconv.ParseFloat(v.str, 64)
		return f, err == nil
	default:
		return 0, false
	}
}
