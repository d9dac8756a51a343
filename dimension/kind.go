// Package dimension holds the static dimension registry (C1) and the
// per-file point format (C2): the canonical table of which named fields
// exist in each LAS point-format id, how wide they are, and where they
// live inside a point record.
package dimension

import "fmt"

// Kind identifies a dimension's storage type: an integer width/signedness
// pair, a double, or one of the fixed-length extra-bytes vector types.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindU8
	KindI8
	KindU16
	KindI16
	KindU32
	KindI32
	KindU64
	KindI64
	KindF32
	KindF64
	// Vector kinds, used only for extra-bytes dimensions whose ASPRS type
	// code names a k-element array of a scalar type (type codes 11-30).
	KindU8x2
	KindI8x2
	KindU16x2
	KindI16x2
	KindU32x2
	KindI32x2
	KindU64x2
	KindI64x2
	KindF32x2
	KindF64x2
	KindU8x3
	KindI8x3
	KindU16x3
	KindI16x3
	KindU32x3
	KindI32x3
	KindU64x3
	KindI64x3
	KindF32x3
	KindF64x3
)

// ElementSize returns the byte width of one element of kind (ignoring
// vector arity).
func (k Kind) ElementSize() int {
	switch k {
	case KindU8, KindI8, KindU8x2, KindI8x2, KindU8x3, KindI8x3:
		return 1
	case KindU16, KindI16, KindU16x2, KindI16x2, KindU16x3, KindI16x3:
		return 2
	case KindU32, KindI32, KindF32, KindU32x2, KindI32x2, KindF32x2, KindU32x3, KindI32x3, KindF32x3:
		return 4
	case KindU64, KindI64, KindF64, KindU64x2, KindI64x2, KindF64x2, KindU64x3, KindI64x3, KindF64x3:
		return 8
	default:
		return 0
	}
}

// ElementCount returns the number of packed elements kind represents: 1
// for scalars, 2 or 3 for the vector kinds used by extra-bytes.
func (k Kind) ElementCount() int {
	switch k {
	case KindU8x2, KindI8x2, KindU16x2, KindI16x2, KindU32x2, KindI32x2, KindU64x2, KindI64x2, KindF32x2, KindF64x2:
		return 2
	case KindU8x3, KindI8x3, KindU16x3, KindI16x3, KindU32x3, KindI32x3, KindU64x3, KindI64x3, KindF32x3, KindF64x3:
		return 3
	default:
		return 1
	}
}

// Size returns the total storage size in bytes: ElementSize * ElementCount.
func (k Kind) Size() int { return k.ElementSize() * k.ElementCount() }

// Signed reports whether kind is a signed integer type.
func (k Kind) Signed() bool {
	switch k {
	case KindI8, KindI16, KindI32, KindI64, KindI8x2, KindI16x2, KindI32x2, KindI64x2, KindI8x3, KindI16x3, KindI32x3, KindI64x3:
		return true
	default:
		return false
	}
}

// Float reports whether kind is an IEEE-754 floating point type.
func (k Kind) Float() bool {
	switch k {
	case KindF32, KindF64, KindF32x2, KindF64x2, KindF32x3, KindF64x3:
		return true
	default:
		return false
	}
}

func (k Kind) String() string {
	switch k {
	case KindU8:
		return "u8"
	case KindI8:
		return "i8"
	case KindU16:
		return "u16"
	case KindI16:
		return "i16"
	case KindU32:
		return "u32"
	case KindI32:
		return "i32"
	case KindU64:
		return "u64"
	case KindI64:
		return "i64"
	case KindF32:
		return "f32"
	case KindF64:
		return "f64"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}
