package variant

import (
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"math"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/encoding/unicode/utf32"

	"github.com/hvml-run/hvmi/runtime"
)

func hexDecode(s string) ([]byte, error)    { return hex.DecodeString(s) }
func base64Decode(s string) ([]byte, error) { return base64.StdEncoding.DecodeString(s) }

func binDecode(s string) ([]byte, error) {
	s = strings.ReplaceAll(s, ".", "")
	if len(s)%8 != 0 {
		return nil, fmt.Errorf("variant: binary byte-sequence length must be a multiple of 8")
	}
	out := make([]byte, len(s)/8)
	for i := range out {
		var b byte
		for j := 0; j < 8; j++ {
			b <<= 1
			if s[i*8+j] == '1' {
				b |= 1
			}
		}
		out[i] = b
	}
	return out, nil
}

// RealFormat enumerates the fetch-real width/endianness/signedness
// combinations from spec.md §4.1.
type RealFormat string

const (
	FmtI8    RealFormat = "i8"
	FmtU8    RealFormat = "u8"
	FmtI16LE RealFormat = "i16le"
	FmtI16BE RealFormat = "i16be"
	FmtU16LE RealFormat = "u16le"
	FmtU16BE RealFormat = "u16be"
	FmtI32LE RealFormat = "i32le"
	FmtI32BE RealFormat = "i32be"
	FmtU32LE RealFormat = "u32le"
	FmtU32BE RealFormat = "u32be"
	FmtI64LE RealFormat = "i64le"
	FmtI64BE RealFormat = "i64be"
	FmtU64LE RealFormat = "u64le"
	FmtU64BE RealFormat = "u64be"
	FmtF32LE RealFormat = "f32le"
	FmtF32BE RealFormat = "f32be"
	FmtF64LE RealFormat = "f64le"
	FmtF64BE RealFormat = "f64be"
	FmtF96LE RealFormat = "f96le"
	FmtF96BE RealFormat = "f96be"
)

var formatWidth = map[RealFormat]int{
	FmtI8: 1, FmtU8: 1,
	FmtI16LE: 2, FmtI16BE: 2, FmtU16LE: 2, FmtU16BE: 2,
	FmtI32LE: 4, FmtI32BE: 4, FmtU32LE: 4, FmtU32BE: 4, FmtF32LE: 4, FmtF32BE: 4,
	FmtI64LE: 8, FmtI64BE: 8, FmtU64LE: 8, FmtU64BE: 8, FmtF64LE: 8, FmtF64BE: 8,
	FmtF96LE: 12, FmtF96BE: 12, // long double stored as 96-bit extended on the wire; decoded into a float64
}

// FetchReal implements fetchreal(bseq, format, offset) per spec.md
// §4.1: offset may be negative (from tail); returns ErrInvalidValue (via
// the returned error) if offset+width exceeds the sequence length.
func FetchReal(bseq *Value, format RealFormat, offset int) (*Value, error) {
	if bseq.Kind() != ByteSequence {
		return nil, fmt.Errorf("variant: fetchreal on non-byte-sequence")
	}
	b := bseq.bytes
	width, ok := formatWidth[format]
	if !ok {
		return nil, fmt.Errorf("variant: unknown real format %q", format)
	}
	off := offset
	if off < 0 {
		off = len(b) + off
	}
	if off < 0 || off+width > len(b) {
		return nil, runtime.NewError(runtime.ErrInvalidValue, "", fmt.Errorf("variant: fetchreal offset+width exceeds sequence length"))
	}
	window := b[off : off+width]
	return decodeReal(format, window), nil
}

func decodeReal(format RealFormat, w []byte) *Value {
	le := strings.HasSuffix(string(format), "le")
	u64 := readUint(w, le)
	switch format {
	case FmtI8:
		return NewLongInt(int64(int8(w[0])))
	case FmtU8:
		return NewULongInt(uint64(w[0]))
	case FmtI16LE, FmtI16BE:
		return NewLongInt(int64(int16(u64)))
	case FmtU16LE, FmtU16BE:
		return NewULongInt(u64)
	case FmtI32LE, FmtI32BE:
		return NewLongInt(int64(int32(u64)))
	case FmtU32LE, FmtU32BE:
		return NewULongInt(u64)
	case FmtI64LE, FmtI64BE:
		return NewLongInt(int64(u64))
	case FmtU64LE, FmtU64BE:
		return NewULongInt(u64)
	case FmtF32LE, FmtF32BE:
		return NewNumber(float64(math.Float32frombits(uint32(u64))))
	case FmtF64LE, FmtF64BE:
		return NewNumber(math.Float64frombits(u64))
	case FmtF96LE, FmtF96BE:
		// Decode the 80-bit extended value padded to 96 bits as a float64
		// approximation; Go has no native 80/96-bit float. Little-endian:
		// 64-bit mantissa in bytes 0-7, sign/exponent in bytes 8-9.
		// Big-endian: sign/exponent in bytes 0-1, mantissa in bytes 4-11.
		var mant, se uint64
		if le {
			mant, se = readUint(w[:8], true), readUint(w[8:10], true)
		} else {
			mant, se = readUint(w[4:12], false), readUint(w[:2], false)
		}
		f := math.Ldexp(float64(mant), int(se&0x7fff)-16383-63)
		if se&0x8000 != 0 {
			f = -f
		}
		return NewLongDouble(f)
	default:
		return NewNull()
	}
}

func readUint(w []byte, le bool) uint64 {
	var u uint64
	if le {
		for i := len(w) - 1; i >= 0; i-- {
			u = (u << 8) | uint64(w[i])
		}
	} else {
		for i := 0; i < len(w); i++ {
			u = (u << 8) | uint64(w[i])
		}
	}
	return u
}

// StringEncoding enumerates fetch-string's encoding parameter.
type StringEncoding string

const (
	EncUTF8      StringEncoding = "utf8"
	EncUTF16     StringEncoding = "utf16"
	EncUTF16LE   StringEncoding = "utf16le"
	EncUTF16BE   StringEncoding = "utf16be"
	EncUTF32     StringEncoding = "utf32"
	EncUTF32LE   StringEncoding = "utf32le"
	EncUTF32BE   StringEncoding = "utf32be"
)

// FetchString implements fetchstring(bseq, encoding, offset, length)
// per spec.md §4.1. length==0 means "to end of sequence". UTF-16/32
// without an explicit le|be honors a leading BOM; UTF-8 has no BOM
// rule. The optional ":N" suffix on encoding limits the decoded
// character count; callers pass it pre-split via limit.
func FetchString(bseq *Value, encoding StringEncoding, offset, length, limit int) (*Value, error) {
	if bseq.Kind() != ByteSequence {
		return nil, fmt.Errorf("variant: fetchstring on non-byte-sequence")
	}
	b := bseq.bytes
	off := offset
	if off < 0 {
		off = len(b) + off
	}
	if off < 0 || off > len(b) {
		return nil, fmt.Errorf("variant: fetchstring offset out of range")
	}
	end := len(b)
	if length != 0 {
		end = off + length
		if end > len(b) {
			return nil, fmt.Errorf("variant: fetchstring length exceeds sequence")
		}
	}
	window := b[off:end]

	var decoded string
	var err error
	switch encoding {
	case EncUTF8:
		decoded = string(window)
	case EncUTF16, EncUTF16LE, EncUTF16BE:
		decoded, err = decodeUTF16(window, encoding)
	case EncUTF32, EncUTF32LE, EncUTF32BE:
		decoded, err = decodeUTF32(window, encoding)
	default:
		return nil, fmt.Errorf("variant: unknown string encoding %q", encoding)
	}
	if err != nil {
		return nil, err
	}
	if limit > 0 {
		runes := []rune(decoded)
		if limit < len(runes) {
			decoded = string(runes[:limit])
		}
	}
	return NewString(decoded), nil
}

func decodeUTF16(b []byte, enc StringEncoding) (string, error) {
	var endian unicode.Endianness
	var bomPolicy unicode.BOMPolicy
	switch enc {
	case EncUTF16LE:
		endian, bomPolicy = unicode.LittleEndian, unicode.IgnoreBOM
	case EncUTF16BE:
		endian, bomPolicy = unicode.BigEndian, unicode.IgnoreBOM
	default: // plain utf16: BOM decides, default big-endian
		endian, bomPolicy = unicode.BigEndian, unicode.UseBOM
	}
	dec := unicode.UTF16(endian, bomPolicy).NewDecoder()
	out, err := dec.Bytes(b)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func decodeUTF32(b []byte, enc StringEncoding) (string, error) {
	var endian utf32.Endianness
	var bomPolicy utf32.BOMPolicy
	switch enc {
	case EncUTF32LE:
		endian, bomPolicy = utf32.LittleEndian, utf32.IgnoreBOM
	case EncUTF32BE:
		endian, bomPolicy = utf32.BigEndian, utf32.IgnoreBOM
	default:
		endian, bomPolicy = utf32.BigEndian, utf32.UseBOM
	}
	dec := utf32.UTF32(endian, bomPolicy).NewDecoder()
	out, err := dec.Bytes(b)
	if err != nil {
		return "", err
	}
	return string(out), nil
}
