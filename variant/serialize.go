package variant

import (
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
)

// flagSet parses the space-separated token set from spec.md §4.1's
// serialize(v, flags) grammar.
type flagSet map[string]bool

func parseFlags(flags string) flagSet {
	fs := make(flagSet)
	for _, tok := range strings.Fields(flags) {
		fs[tok] = true
	}
	return fs
}

func (fs flagSet) bseqMode() string {
	for _, m := range []string{"bseq-hex-string", "bseq-hex", "bseq-bin-dots", "bseq-bin", "bseq-base64"} {
		if fs[m] {
			return m
		}
	}
	return "bseq-hex-string"
}

// Serialize renders v per spec.md §4.1. Default (no real-json flag) is
// canonical EJSON, which round-trips without precision loss through
// Parse: longs get an "L"/"UL" suffix, long-doubles an "FL" suffix.
func Serialize(v *Value, flags string) (string, error) {
	fs := parseFlags(flags)
	var sb strings.Builder
	if err := serializeInto(&sb, v, fs); err != nil {
		return "", err
	}
	return sb.String(), nil
}

func serializeInto(sb *strings.Builder, v *Value, fs flagSet) error {
	ejson := !fs["real-json"]
	switch v.kind {
	case Null:
		sb.WriteString("null")
	case Undefined:
		if ejson {
			sb.WriteString("undefined")
		} else {
			sb.WriteString("null")
		}
	case Boolean:
		if v.b {
			sb.WriteString("true")
		} else {
			sb.WriteString("false")
		}
	case Number:
		sb.WriteString(formatFloatEJSON(v.num, ""))
	case LongDouble:
		if ejson {
			sb.WriteString(formatFloatEJSON(v.ld, "FL"))
		} else {
			sb.WriteString(formatFloatEJSON(v.ld, ""))
		}
	case LongInt:
		if ejson {
			sb.WriteString(strconv.FormatInt(v.i64, 10) + "L")
		} else {
			sb.WriteString(strconv.FormatInt(v.i64, 10))
		}
	case ULongInt:
		if ejson {
			sb.WriteString(strconv.FormatUint(v.u64, 10) + "UL")
		} else {
			sb.WriteString(strconv.FormatUint(v.u64, 10))
		}
	case AtomString, Exception:
		writeJSONString(sb, v.str)
	case String:
		writeJSONString(sb, v.str)
	case ByteSequence:
		writeByteSequence(sb, v.bytes, fs.bseqMode())
	case Dynamic:
		sb.WriteString(`"<dynamic>"`)
	case Native:
		sb.WriteString(`"<native>"`)
	case Object:
		sb.WriteByte('{')
		for i, k := range v.container.keys {
			if i > 0 {
				sb.WriteByte(',')
			}
			writeJSONString(sb, k)
			sb.WriteByte(':')
			if err := serializeInto(sb, v.container.byKey[k], fs); err != nil {
				return err
			}
		}
		sb.WriteByte('}')
	case Array:
		sb.WriteByte('[')
		for i, it := range v.container.items {
			if i > 0 {
				sb.WriteByte(',')
			}
			if err := serializeInto(sb, it, fs); err != nil {
				return err
			}
		}
		sb.WriteByte(']')
	case Tuple:
		sb.WriteString("!(")
		for i, it := range v.container.items {
			if i > 0 {
				sb.WriteByte(',')
			}
			if err := serializeInto(sb, it, fs); err != nil {
				return err
			}
		}
		sb.WriteByte(')')
	case Set:
		sb.WriteString("[")
		for i, it := range v.Members() {
			if i > 0 {
				sb.WriteByte(',')
			}
			if err := serializeInto(sb, it, fs); err != nil {
				return err
			}
		}
		sb.WriteString("]")
	default:
		return fmt.Errorf("variant: cannot serialize kind %s", v.kind)
	}
	return nil
}

func formatFloatEJSON(f float64, suffix string) string {
	s := strconv.FormatFloat(f, 'g', -1, 64)
	return s + suffix
}

func writeJSONString(sb *strings.Builder, s string) {
	sb.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			sb.WriteString(`\"`)
		case '\\':
			sb.WriteString(`\\`)
		case '\n':
			sb.WriteString(`\n`)
		case '\t':
			sb.WriteString(`\t`)
		default:
			sb.WriteRune(r)
		}
	}
	sb.WriteByte('"')
}

func writeByteSequence(sb *strings.Builder, b []byte, mode string) {
	switch mode {
	case "bseq-hex":
		sb.WriteString("bx")
		sb.WriteString(hex.EncodeToString(b))
	case "bseq-bin":
		sb.WriteString("bb")
		for _, by := range b {
			sb.WriteString(fmt.Sprintf("%08b", by))
		}
	case "bseq-bin-dots":
		sb.WriteString("bb")
		for i, by := range b {
			if i > 0 {
				sb.WriteByte('.')
			}
			sb.WriteString(fmt.Sprintf("%08b", by))
		}
	case "bseq-base64":
		sb.WriteString("b64")
		sb.WriteString(base64.StdEncoding.EncodeToString(b))
	default: // bseq-hex-string
		sb.WriteString("bx")
		sb.WriteString(hex.EncodeToString(b))
	}
}

// Stringify renders v for user-visible concatenation (e.g. text-node
// content, "+=" string append): arrays, tuples and sets join their
// members with no separator, objects render as real-ejson text, scalars
// render without type decoration.
func Stringify(v *Value) string {
	switch v.kind {
	case Null, Undefined:
		return ""
	case Boolean:
		if v.b {
			return "true"
		}
		return "false"
	case Number:
		return strconv.FormatFloat(v.num, 'g', -1, 64)
	case LongDouble:
		return strconv.FormatFloat(v.ld, 'g', -1, 64)
	case LongInt:
		return strconv.FormatInt(v.i64, 10)
	case ULongInt:
		return strconv.FormatUint(v.u64, 10)
	case String, AtomString, Exception:
		return v.str
	case ByteSequence:
		return string(v.bytes)
	case Array, Tuple:
		var sb strings.Builder
		for _, it := range v.container.items {
			sb.WriteString(Stringify(it))
		}
		return sb.String()
	case Set:
		var sb strings.Builder
		for _, it := range v.Members() {
			sb.WriteString(Stringify(it))
		}
		return sb.String()
	case Object:
		s, _ := Serialize(v, "real-ejson")
		return s
	default:
		return ""
	}
}
