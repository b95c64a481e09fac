package types

import (
	"fmt"
	"math"
	"strconv"
)

// Encoding tags how a scalar's raw bytes are to be interpreted.
type Encoding uint8

const (
	EncodingInvalid Encoding = iota
	EncodingUint
	EncodingSint
	EncodingIEEE754
)

// Format tags how a value is presented to the user.
type Format uint8

const (
	FormatBytes Format = iota // fallback raw rendering
	FormatBoolean
	FormatDecimal
	FormatUnsigned
	FormatFloat
	FormatEnum
	FormatPointer
	FormatUnicode
)

// BasicType classifies the few types the expression front end special-cases
// by name.
type BasicType uint8

const (
	BasicInvalid BasicType = iota
	BasicVoid
	BasicBool
)

// EncodingOf derives the scalar encoding from the node variant. Booleans and
// pointers read as unsigned integers.
func (r *Registry) EncodingOf(ref TypeRef) Encoding {
	if signed, ok := r.IsInt(ref); ok {
		if signed {
			return EncodingSint
		}
		return EncodingUint
	}
	if r.IsBool(ref) {
		return EncodingUint
	}
	if r.IsFloat(ref) {
		return EncodingIEEE754
	}
	if r.IsPointer(ref) {
		return EncodingUint
	}
	return EncodingInvalid
}

// FormatOf derives the presentation format from the node variant and flags.
// Char integers format as unicode code points, not raw numbers.
func (r *Registry) FormatOf(ref TypeRef) Format {
	t, ok := r.lookup(ref)
	if !ok {
		return FormatBytes
	}
	switch t.Kind {
	case KindBool:
		return FormatBoolean
	case KindInt:
		if t.Char {
			return FormatUnicode
		}
		if t.Signed {
			return FormatDecimal
		}
		return FormatUnsigned
	case KindFloat:
		return FormatFloat
	case KindCLikeEnum:
		return FormatEnum
	case KindPointer:
		return FormatPointer
	default:
		return FormatBytes
	}
}

// BasicTypeOf classifies void and bool by name, everything else is invalid.
func (r *Registry) BasicTypeOf(ref TypeRef) BasicType {
	switch r.Name(ref) {
	case "()":
		return BasicVoid
	case "bool":
		return BasicBool
	default:
		return BasicInvalid
	}
}

// FormatScalar renders a scalar value from its raw little-endian bytes.
// Aggregates and functions refuse; the formatter front end walks their
// children instead.
func (r *Registry) FormatScalar(ref TypeRef, data []byte) (string, bool) {
	t, ok := r.lookup(ref)
	if !ok {
		return "", false
	}
	switch t.Kind {
	case KindTypedef:
		return r.FormatScalar(r.Ref(t.Elem), data)
	case KindBool:
		if len(data) < 1 {
			return "", false
		}
		return strconv.FormatBool(data[0] != 0), true
	case KindInt:
		v, ok := readUint(data, t.Size)
		if !ok {
			return "", false
		}
		if t.Char {
			return formatChar(v), true
		}
		if t.Signed {
			return strconv.FormatInt(signExtend(v, t.Size), 10), true
		}
		return strconv.FormatUint(v, 10), true
	case KindFloat:
		v, ok := readUint(data, t.Size)
		if !ok {
			return "", false
		}
		switch t.Size {
		case 4:
			return strconv.FormatFloat(float64(math.Float32frombits(uint32(v))), 'g', -1, 32), true
		case 8:
			return strconv.FormatFloat(math.Float64frombits(v), 'g', -1, 64), true
		}
		return "", false
	case KindPointer:
		v, ok := readUint(data, t.Size)
		if !ok {
			return "", false
		}
		return fmt.Sprintf("0x%x", v), true
	case KindCLikeEnum:
		under, ok := r.lookup(r.Ref(t.Elem))
		if !ok {
			return "", false
		}
		v, okRead := readUint(data, under.Size)
		if !okRead {
			return "", false
		}
		if name, found := r.CLikeValueName(ref, v); found {
			return r.Name(ref) + "::" + name, true
		}
		// An unmapped value means the debug info and the memory disagree;
		// surface it rather than guessing.
		return fmt.Sprintf("(invalid enum value) %d", v), true
	default:
		return "", false
	}
}

// formatChar renders a unicode scalar the way source literals spell it.
func formatChar(v uint64) string {
	switch v {
	case '\n':
		return `'\n'`
	case '\r':
		return `'\r'`
	case '\t':
		return `'\t'`
	case '\\':
		return `'\\'`
	case 0:
		return `'\0'`
	case '\'':
		return `'\''`
	}
	if v < 128 && strconv.IsPrint(rune(v)) {
		return "'" + string(rune(v)) + "'"
	}
	return fmt.Sprintf(`'\u{%x}'`, v)
}

// readUint decodes a little-endian unsigned integer of 1..8 bytes.
func readUint(data []byte, size uint64) (uint64, bool) {
	if size == 0 || size > 8 || uint64(len(data)) < size {
		return 0, false
	}
	var v uint64
	for i := uint64(0); i < size; i++ {
		v |= uint64(data[i]) << (8 * i)
	}
	return v, true
}

// signExtend interprets the low size bytes of v as a signed integer.
func signExtend(v uint64, size uint64) int64 {
	shift := 64 - 8*size
	return int64(v<<shift) >> shift
}
