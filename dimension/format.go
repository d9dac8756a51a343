package dimension

import (
	"fmt"

	"github.com/arloliu/lasgo/errs"
	"github.com/arloliu/lasgo/internal/hash"
)

// ExtraDim describes one user-defined trailing dimension, as declared by an
// ExtraBytes VLR descriptor (see the section package for on-disk parsing).
//
// A descriptor with data_type 0 ("untyped") carries no element kind at
// all; generating software uses it purely to reserve RawSize bytes of
// padding. Such a dimension has Kind == KindInvalid and a positive
// RawSize; every other field is built from Kind.Size() instead.
type ExtraDim struct {
	Name        string
	Description string
	Kind        Kind
	RawSize     int // only meaningful when Kind == KindInvalid
	Scales      []float64
	Offsets     []float64
	HasNoData   bool
	NoData      float64
}

// size returns the dimension's on-disk byte width.
func (ed ExtraDim) size() int {
	if ed.Kind == KindInvalid {
		return ed.RawSize
	}

	return ed.Kind.Size()
}

// PointFormat (C2) composes a FormatSpec's fixed dimensions with a file's
// extra-bytes dimensions into one ordered record schema: name -> (kind,
// placement), stride, and extra-bytes count.
type PointFormat struct {
	spec      FormatSpec
	extraDims []ExtraDim

	order  []string
	byHash map[uint64]Def // xxhash(name) -> dimension, mirroring the teacher's hash-indexed name lookup
	stride int
}

// NewPointFormat builds a PointFormat for the given point-format id and
// extra-bytes declarations (may be nil/empty).
func NewPointFormat(id uint8, extraDims []ExtraDim) (*PointFormat, error) {
	spec, err := Lookup(id)
	if err != nil {
		return nil, err
	}

	pf := &PointFormat{
		spec:      spec,
		extraDims: extraDims,
		byHash:    make(map[uint64]Def, len(spec.Dims)+len(extraDims)),
	}

	offset := spec.BaseSize
	for _, d := range spec.Dims {
		pf.addDim(d)
	}

	for _, ed := range extraDims {
		if err := validateExtraDim(ed); err != nil {
			return nil, err
		}

		size := ed.size()
		d := Def{Name: ed.Name, Kind: ed.Kind, Placement: Whole{Offset: offset, Size: size}, Scales: ed.Scales, Offsets: ed.Offsets}
		pf.addDim(d)
		offset += size
	}

	pf.stride = offset

	return pf, nil
}

func (pf *PointFormat) addDim(d Def) {
	pf.order = append(pf.order, d.Name)
	pf.byHash[hash.ID(d.Name)] = d
}

func validateExtraDim(ed ExtraDim) error {
	if len(ed.Name) > 32 {
		return fmt.Errorf("%w: name %q is %d bytes, maximum length 32", errs.ErrNameTooLong, ed.Name, len(ed.Name))
	}

	if len(ed.Description) > 32 {
		return fmt.Errorf("%w: description %q is %d bytes, maximum length 32", errs.ErrNameTooLong, ed.Description, len(ed.Description))
	}

	if ed.Kind == KindInvalid {
		if ed.RawSize <= 0 || ed.RawSize > 255 {
			return fmt.Errorf("%w: untyped extra dimension %q needs a RawSize of 1-255", errs.ErrInvalidScaleArity, ed.Name)
		}

		return nil
	}

	if (ed.Scales == nil) != (ed.Offsets == nil) {
		return fmt.Errorf("%w: %q declares only one of scales/offsets, both or neither are required", errs.ErrInvalidScaleArity, ed.Name)
	}

	want := ed.Kind.ElementCount()
	if ed.Scales != nil && len(ed.Scales) != want {
		return fmt.Errorf("%w: %d scales for a %d-element type", errs.ErrInvalidScaleArity, len(ed.Scales), want)
	}

	if ed.Offsets != nil && len(ed.Offsets) != want {
		return fmt.Errorf("%w: %d offsets for a %d-element type", errs.ErrInvalidScaleArity, len(ed.Offsets), want)
	}

	return nil
}

// ID returns the point-format id this schema was built from.
func (pf *PointFormat) ID() uint8 { return pf.spec.ID }

// Stride returns the total record size in bytes, base dimensions plus
// extra bytes.
func (pf *PointFormat) Stride() int { return pf.stride }

// BaseSize returns the fixed-dimension record size, excluding extra bytes.
func (pf *PointFormat) BaseSize() int { return pf.spec.BaseSize }

// NumExtraBytes returns the number of trailing extra-bytes, in bytes (not
// dimension count), for handing to a LAZ back-end.
func (pf *PointFormat) NumExtraBytes() int { return pf.stride - pf.spec.BaseSize }

// ExtraDims returns the extra-bytes declarations this format was built with.
func (pf *PointFormat) ExtraDims() []ExtraDim { return pf.extraDims }

// Names returns the ordered dimension names: fixed dimensions first, then
// extra-bytes dimensions in declaration order.
func (pf *PointFormat) Names() []string { return pf.order }

// Lookup returns the (kind, placement) of a named dimension.
func (pf *PointFormat) Lookup(name string) (Def, error) {
	d, ok := pf.byHash[hash.ID(name)]
	if !ok || d.Name != name {
		return Def{}, fmt.Errorf("%w: %q", errs.ErrInvalidDimension, name)
	}

	return d, nil
}

// Has reports whether name is a dimension of this format.
func (pf *PointFormat) Has(name string) bool {
	d, ok := pf.byHash[hash.ID(name)]

	return ok && d.Name == name
}

// ComposedWidth returns the byte width of a composed (bit-packed) field
// name, or 0 if name is not a composed field in this format.
func (pf *PointFormat) ComposedWidth(name string) int { return pf.spec.Composed[name].Size }

// ComposedPlacement returns the (offset, size) of a composed field within
// the record, for C3 to locate the whole bytes it must pack/unpack.
func (pf *PointFormat) ComposedPlacement(name string) (Whole, bool) {
	w, ok := pf.spec.Composed[name]

	return w, ok
}

// ComposedFields returns the names of this format's bit-packed composed
// fields ("bit_fields"/"raw_classification" for 0-5, "return_flags" for
// 6-10), so a caller knows which whole-byte columns need pack/unpack.
func (pf *PointFormat) ComposedFields() []string {
	names := make([]string, 0, len(pf.spec.Composed))
	for name := range pf.spec.Composed {
		names = append(names, name)
	}

	return names
}

// CheckVersion validates this format against a file-version (major, minor)
// per spec.md §4.2: formats 6-10 require 1.4; formats with RGB require
// >= 1.2; formats with GPS time require >= 1.0 (always true for major 1).
func (pf *PointFormat) CheckVersion(major, minor uint8) error {
	if major != 1 {
		return fmt.Errorf("%w: point format %d requires LAS major version 1, got %d", errs.ErrIncompatibleVersion, pf.spec.ID, major)
	}

	if minor < pf.spec.MinVersionMinor {
		return fmt.Errorf(
			"%w: point format %d requires LAS 1.%d or later, file is 1.%d",
			errs.ErrIncompatibleVersion, pf.spec.ID, pf.spec.MinVersionMinor, minor,
		)
	}

	return nil
}

// HasRGB, HasNIR, HasGPSTime, HasWavePacket expose the format's optional
// dimension groups, for callers that branch on capability rather than
// walking Names().
func (pf *PointFormat) HasRGB() bool        { return pf.spec.HasRGB }
func (pf *PointFormat) HasNIR() bool        { return pf.spec.HasNIR }
func (pf *PointFormat) HasGPSTime() bool    { return pf.spec.HasGPSTime }
func (pf *PointFormat) HasWavePacket() bool { return pf.spec.HasWavePacket }

// MinVersionMinor returns the minimum LAS 1.x minor version this format
// is legal in, for callers picking a default file version.
func (pf *PointFormat) MinVersionMinor() uint8 { return pf.spec.MinVersionMinor }
