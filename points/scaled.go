package points

import (
	"fmt"
	"math"

	"github.com/arloliu/lasgo/dimension"
	"github.com/arloliu/lasgo/errs"
)

// ScaledView (C4) is a lazy double-precision facade over an integer
// column using a per-file (scale, offset) pair, as ASPRS uses for X/Y/Z
// and as extra-bytes dimensions may optionally declare per-component.
type ScaledView[T Numeric] struct {
	col    View[T]
	scale  float64
	offset float64
}

// NewScaledView wraps col with the given scale/offset.
func NewScaledView[T Numeric](col View[T], scale, offset float64) ScaledView[T] {
	return ScaledView[T]{col: col, scale: scale, offset: offset}
}

// Len returns the number of records.
func (s ScaledView[T]) Len() int { return s.col.Len() }

// Get returns raw[i]*scale + offset.
func (s ScaledView[T]) Get(i int) float64 {
	return float64(s.col.Get(i))*s.scale + s.offset
}

// Set inverts via round((v - offset) / scale), rounding half away from
// zero (math.Round's documented behavior; fixed consistently across the
// core rather than left to choose at each call site). Returns
// ErrScaledValueOverflow if the unscaled value doesn't fit T.
func (s ScaledView[T]) Set(i int, v float64) error {
	raw := math.Round((v - s.offset) / s.scale)

	lo, hi := rangeOf[T]()
	if raw < lo || raw > hi {
		return fmt.Errorf("%w: %g unscales to %g, outside [%g, %g]", errs.ErrScaledValueOverflow, v, raw, lo, hi)
	}

	s.col.Set(i, T(raw))

	return nil
}

// Min returns the minimum scaled value across the view, or 0 if empty.
func (s ScaledView[T]) Min() float64 { return s.extreme(func(a, b float64) bool { return a < b }) }

// Max returns the maximum scaled value across the view, or 0 if empty.
func (s ScaledView[T]) Max() float64 { return s.extreme(func(a, b float64) bool { return a > b }) }

func (s ScaledView[T]) extreme(better func(a, b float64) bool) float64 {
	if s.col.Len() == 0 {
		return 0
	}

	best := s.Get(0)
	for i := 1; i < s.col.Len(); i++ {
		if v := s.Get(i); better(v, best) {
			best = v
		}
	}

	return best
}

// rangeOf returns the representable [min, max] of T as float64 bounds.
func rangeOf[T Numeric]() (float64, float64) {
	switch kindOf[T]() {
	case dimension.KindU8:
		return 0, math.MaxUint8
	case dimension.KindI8:
		return math.MinInt8, math.MaxInt8
	case dimension.KindU16:
		return 0, math.MaxUint16
	case dimension.KindI16:
		return math.MinInt16, math.MaxInt16
	case dimension.KindU32:
		return 0, math.MaxUint32
	case dimension.KindI32:
		return math.MinInt32, math.MaxInt32
	case dimension.KindU64:
		return 0, math.MaxUint64
	case dimension.KindI64:
		return math.MinInt64, math.MaxInt64
	default:
		return -math.MaxFloat64, math.MaxFloat64
	}
}
