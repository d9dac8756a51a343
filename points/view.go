package points

import (
	"encoding/binary"
	"math"

	"github.com/arloliu/lasgo/dimension"
)

// Numeric is the set of element types a View can be instantiated over.
type Numeric interface {
	~uint8 | ~int8 | ~uint16 | ~int16 | ~uint32 | ~int32 | ~uint64 | ~int64 | ~float32 | ~float64
}

// kindOf reports the dimension.Kind matching T, or KindInvalid if T is not
// one of the scalar Numeric element types the dimension registry declares.
func kindOf[T Numeric]() dimension.Kind {
	var zero T

	switch any(zero).(type) {
	case uint8:
		return dimension.KindU8
	case int8:
		return dimension.KindI8
	case uint16:
		return dimension.KindU16
	case int16:
		return dimension.KindI16
	case uint32:
		return dimension.KindU32
	case int32:
		return dimension.KindI32
	case uint64:
		return dimension.KindU64
	case int64:
		return dimension.KindI64
	case float32:
		return dimension.KindF32
	case float64:
		return dimension.KindF64
	default:
		return dimension.KindInvalid
	}
}

// View is a mutable, strided window over a whole-byte dimension's bytes
// across every record in a PackedPointRecord. Unlike a Go slice it is not
// contiguous (LAS records are row-major: one dimension's values are
// `stride` bytes apart) so it provides Get/Set instead of direct
// indexing, each reading/writing the buffer in place.
//
// Get/Set decode using little-endian byte order regardless of host
// architecture, per the ASPRS on-disk layout; this is deliberately not a
// raw unsafe.Slice reinterpretation (which would require a contiguous
// backing array the strided layout doesn't have, and would tie decoding
// to host byte order).
type View[T Numeric] struct {
	buf    []byte
	offset int
	stride int
	n      int
}

func newView[T Numeric](buf []byte, offset, stride, n int) View[T] {
	return View[T]{buf: buf, offset: offset, stride: stride, n: n}
}

// Len returns the number of records this view spans.
func (v View[T]) Len() int { return v.n }

// Get decodes the i-th record's value.
func (v View[T]) Get(i int) T {
	b := v.buf[v.offset+i*v.stride:]

	var zero T

	switch any(zero).(type) {
	case uint8:
		return T(b[0])
	case int8:
		return T(int8(b[0]))
	case uint16:
		return T(binary.LittleEndian.Uint16(b))
	case int16:
		return T(int16(binary.LittleEndian.Uint16(b)))
	case uint32:
		return T(binary.LittleEndian.Uint32(b))
	case int32:
		return T(int32(binary.LittleEndian.Uint32(b)))
	case uint64:
		return T(binary.LittleEndian.Uint64(b))
	case int64:
		return T(int64(binary.LittleEndian.Uint64(b)))
	case float32:
		return T(math.Float32frombits(binary.LittleEndian.Uint32(b)))
	case float64:
		return T(math.Float64frombits(binary.LittleEndian.Uint64(b)))
	default:
		return zero
	}
}

// Set encodes val into the i-th record, in place.
func (v View[T]) Set(i int, val T) {
	b := v.buf[v.offset+i*v.stride:]

	switch x := any(val).(type) {
	case uint8:
		b[0] = x
	case int8:
		b[0] = uint8(x)
	case uint16:
		binary.LittleEndian.PutUint16(b, x)
	case int16:
		binary.LittleEndian.PutUint16(b, uint16(x))
	case uint32:
		binary.LittleEndian.PutUint32(b, x)
	case int32:
		binary.LittleEndian.PutUint32(b, uint32(x))
	case uint64:
		binary.LittleEndian.PutUint64(b, x)
	case int64:
		binary.LittleEndian.PutUint64(b, uint64(x))
	case float32:
		binary.LittleEndian.PutUint32(b, math.Float32bits(x))
	case float64:
		binary.LittleEndian.PutUint64(b, math.Float64bits(x))
	}
}

// ToSlice copies every record's value out into a freshly allocated slice.
// Unlike Get/Set this does not alias the buffer.
func (v View[T]) ToSlice() []T {
	out := make([]T, v.n)
	for i := range out {
		out[i] = v.Get(i)
	}

	return out
}
