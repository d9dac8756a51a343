// Package lasio implements the streaming reader (C7) and writer (C8) that
// sit on top of section.Header, section.List, and points.PackedPointRecord,
// plus the LasData aggregate that owns exactly one of each (spec.md §3
// "Lifecycle").
package lasio

import (
	"fmt"

	"github.com/arloliu/lasgo/dimension"
	"github.com/arloliu/lasgo/errs"
	"github.com/arloliu/lasgo/points"
	"github.com/arloliu/lasgo/section"
)

// LasData is the in-memory aggregate a read produces and a write
// consumes: one header, one VLR list, one packed point record, one EVLR
// list.
type LasData struct {
	Header *section.Header
	Format *dimension.PointFormat
	VLRs   *section.List
	Points *points.PackedPointRecord
	EVLRs  *section.List
}

// Convert builds a new LasData with the given point-format id,
// carrying over every dimension present by name in both the source and
// target formats (spec.md §6): whole-byte dimensions are copied
// column-by-column, bit-packed sub-fields are unpacked and repacked.
// Dimensions absent from the target format are dropped; dimensions new to
// the target format are left zero-filled. A dimension present in both
// formats but under an incompatible placement (sub-field on one side,
// whole byte on the other, as "classification" is between formats 0-5
// and 6-10) is treated as absent in the target rather than guessing at a
// conversion, and is left zero-filled too.
func (ld *LasData) Convert(formatID uint8) (*LasData, error) {
	newFormat, err := dimension.NewPointFormat(formatID, ld.Format.ExtraDims())
	if err != nil {
		return nil, err
	}

	newRecord := points.Zeros(newFormat, ld.Points.Len())

	for _, name := range ld.Format.Names() {
		if !newFormat.Has(name) {
			continue
		}

		if err := copyDimension(ld.Points, newRecord, name); err != nil {
			return nil, fmt.Errorf("lasio: converting dimension %q: %w", name, err)
		}
	}

	newHeader := *ld.Header
	newHeader.PointFormatID = formatID
	newHeader.PointDataRecordLength = uint16(newFormat.Stride())

	return &LasData{Header: &newHeader, Format: newFormat, VLRs: ld.VLRs, Points: newRecord, EVLRs: ld.EVLRs}, nil
}

// copyDimension copies one named dimension's values from src to dst. Both
// records must already have been checked to have a dimension by this name
// (see Convert); an incompatible placement between the two formats is not
// an error, it is simply left zero-filled in dst.
func copyDimension(src, dst *points.PackedPointRecord, name string) error {
	srcDef, err := src.Format().Lookup(name)
	if err != nil {
		return err
	}

	dstDef, err := dst.Format().Lookup(name)
	if err != nil {
		return err
	}

	_, srcSub := srcDef.Placement.(dimension.Sub)
	_, dstSub := dstDef.Placement.(dimension.Sub)

	switch {
	case srcSub && dstSub:
		vals, err := src.SubField(name)
		if err != nil {
			return err
		}

		return dst.SetSubField(name, vals)
	case !srcSub && !dstSub && srcDef.Kind == dstDef.Kind:
		return copyWholeDimension(src, dst, name, srcDef.Kind)
	default:
		return nil
	}
}

// copyWholeDimension dispatches to the Go element type matching kind and
// copies every record's value(s), one scalar column at a time for
// scalars, one component at a time for the vector extra-bytes kinds.
func copyWholeDimension(src, dst *points.PackedPointRecord, name string, kind dimension.Kind) error {
	n := kind.ElementCount()

	switch {
	case kind.Float() && kind.ElementSize() == 4:
		return copyComponents[float32](src, dst, name, n)
	case kind.Float() && kind.ElementSize() == 8:
		return copyComponents[float64](src, dst, name, n)
	case kind.Signed() && kind.ElementSize() == 1:
		return copyComponents[int8](src, dst, name, n)
	case kind.Signed() && kind.ElementSize() == 2:
		return copyComponents[int16](src, dst, name, n)
	case kind.Signed() && kind.ElementSize() == 4:
		return copyComponents[int32](src, dst, name, n)
	case kind.Signed() && kind.ElementSize() == 8:
		return copyComponents[int64](src, dst, name, n)
	case kind.ElementSize() == 1:
		return copyComponents[uint8](src, dst, name, n)
	case kind.ElementSize() == 2:
		return copyComponents[uint16](src, dst, name, n)
	case kind.ElementSize() == 4:
		return copyComponents[uint32](src, dst, name, n)
	case kind.ElementSize() == 8:
		return copyComponents[uint64](src, dst, name, n)
	default:
		return fmt.Errorf("%w: %s has no known element width", errs.ErrInvalidDimension, kind)
	}
}

func copyComponents[T points.Numeric](src, dst *points.PackedPointRecord, name string, n int) error {
	if n == 1 {
		sc, err := points.Column[T](src, name)
		if err != nil {
			return err
		}

		dc, err := points.Column[T](dst, name)
		if err != nil {
			return err
		}

		for i := 0; i < sc.Len(); i++ {
			dc.Set(i, sc.Get(i))
		}

		return nil
	}

	for c := 0; c < n; c++ {
		sc, err := points.VectorComponent[T](src, name, c)
		if err != nil {
			return err
		}

		dc, err := points.VectorComponent[T](dst, name, c)
		if err != nil {
			return err
		}

		for i := 0; i < sc.Len(); i++ {
			dc.Set(i, sc.Get(i))
		}
	}

	return nil
}
