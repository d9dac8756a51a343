// Package points implements the packed point record (C3): a
// column-addressable view over a contiguous byte buffer of N fixed-stride
// records, plus the scaled coordinate view (C4) layered over an integer
// column.
package points

import (
	"fmt"
	"io"

	"github.com/arloliu/lasgo/diag"
	"github.com/arloliu/lasgo/dimension"
	"github.com/arloliu/lasgo/errs"
	"github.com/arloliu/lasgo/internal/options"
)

// PackedPointRecord owns a contiguous byte buffer of Len()*Stride() bytes
// laid out as N consecutive fixed-stride records, per the format's
// dimension schema.
type PackedPointRecord struct {
	format *dimension.PointFormat
	buf    []byte
	n      int
}

// Format returns the schema this record was built from.
func (r *PackedPointRecord) Format() *dimension.PointFormat { return r.format }

// Len returns the number of records.
func (r *PackedPointRecord) Len() int { return r.n }

// Stride returns the per-record byte size.
func (r *PackedPointRecord) Stride() int { return r.format.Stride() }

// Bytes returns the record buffer, aliased (not copied).
func (r *PackedPointRecord) Bytes() []byte { return r.buf }

// Empty returns a zero-length record for format.
func Empty(format *dimension.PointFormat) *PackedPointRecord {
	return &PackedPointRecord{format: format}
}

// Zeros returns an n-record buffer, every byte zero.
func Zeros(format *dimension.PointFormat, n int) *PackedPointRecord {
	return &PackedPointRecord{format: format, buf: make([]byte, n*format.Stride()), n: n}
}

// FromBytes wraps an existing buffer of exactly n*format.Stride() bytes.
// The record takes ownership of buffer; the caller must not mutate it
// through any other reference afterward.
func FromBytes(format *dimension.PointFormat, buffer []byte, n int) (*PackedPointRecord, error) {
	want := n * format.Stride()
	if len(buffer) != want {
		return nil, fmt.Errorf("%w: expected %d bytes, got %d", errs.ErrRecordLengthMismatch, want, len(buffer))
	}

	return &PackedPointRecord{format: format, buf: buffer, n: n}, nil
}

// streamConfig holds FromStream's functional options.
type streamConfig struct {
	allowPartial bool
	warn         diag.Func
}

// StreamOption configures FromStream.
type StreamOption = options.Option[*streamConfig]

// AllowPartialRead opts into "read what's there" recovery: a short read
// is clamped to the number of whole records actually read instead of
// failing, and a diag.KindTruncatedReadRecovered warning is raised.
func AllowPartialRead() StreamOption {
	return options.NoError(func(c *streamConfig) { c.allowPartial = true })
}

// WithWarnFunc installs the diagnostic callback used by recovery paths.
func WithWarnFunc(fn diag.Func) StreamOption {
	return options.NoError(func(c *streamConfig) { c.warn = fn })
}

// FromStream reads exactly n*format.Stride() bytes from r. On a short
// read it fails with ErrTruncatedPointData unless AllowPartialRead was
// given, in which case n is clamped down to a whole number of records
// and a warning is surfaced via WithWarnFunc.
func FromStream(format *dimension.PointFormat, r io.Reader, n int, opts ...StreamOption) (*PackedPointRecord, error) {
	cfg := &streamConfig{}
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	stride := format.Stride()
	want := n * stride

	buf := make([]byte, want)

	got, err := io.ReadFull(r, buf)
	if err == nil {
		return &PackedPointRecord{format: format, buf: buf, n: n}, nil
	}

	if err != io.ErrUnexpectedEOF && err != io.EOF {
		return nil, err
	}

	if !cfg.allowPartial {
		return nil, fmt.Errorf("%w: expected %d, got %d", errs.ErrTruncatedPointData, want, got)
	}

	clamped := got / stride
	buf = buf[:clamped*stride]

	diag.Emit(cfg.warn, diag.Warning{
		Kind:    diag.KindTruncatedReadRecovered,
		Message: fmt.Sprintf("points: truncated read recovered: wanted %d records, got %d whole records (%d trailing bytes dropped)", n, clamped, got-clamped*stride),
	})

	return &PackedPointRecord{format: format, buf: buf, n: clamped}, nil
}

// Resize changes the record count to n. Growing zero-fills the new
// records; shrinking truncates. Existing column views into this record
// become stale after a resize and must be re-taken.
func (r *PackedPointRecord) Resize(n int) {
	stride := r.format.Stride()
	want := n * stride

	if n <= r.n {
		r.buf = r.buf[:want]
		r.n = n

		return
	}

	grown := make([]byte, want)
	copy(grown, r.buf)
	r.buf = grown
	r.n = n
}

// Column returns a strided, mutable view over a whole-byte scalar
// dimension's values across every record, in the dimension's raw stored
// domain. T must match the dimension's declared Kind exactly (e.g.
// Column[int32] for "X"). For an extra-bytes dimension declaring its own
// scale/offset, Column still returns the raw integer column; use
// ScaledExtraColumn for the scaled view spec.md §4.3 calls for.
func Column[T Numeric](r *PackedPointRecord, name string) (View[T], error) {
	d, err := r.format.Lookup(name)
	if err != nil {
		return View[T]{}, err
	}

	w, ok := d.Placement.(dimension.Whole)
	if !ok {
		return View[T]{}, fmt.Errorf("%w: %q is a bit-packed sub-field, use SubField instead", errs.ErrInvalidDimension, name)
	}

	if want := kindOf[T](); want != d.Kind {
		return View[T]{}, fmt.Errorf("%w: %q is %s, not %s", errs.ErrInvalidDimension, name, d.Kind, want)
	}

	return newView[T](r.buf, w.Offset, r.format.Stride(), r.n), nil
}

// ScaledColumn returns a double-precision scaled view (C4) over a
// whole-byte integer dimension, e.g. ScaledColumn[int32](rec, "X", xScale,
// xOffset).
func ScaledColumn[T Numeric](r *PackedPointRecord, name string, scale, offset float64) (ScaledView[T], error) {
	col, err := Column[T](r, name)
	if err != nil {
		return ScaledView[T]{}, err
	}

	return NewScaledView(col, scale, offset), nil
}

// VectorComponent returns a strided view over one component (0-based)
// of a whole-byte vector dimension (an extra-bytes type like "3int32"),
// in its raw stored domain. For a component declaring its own
// scale/offset, use ScaledVectorComponent for the scaled view spec.md
// §4.3 calls for; VectorComponent itself always returns the raw column,
// since callers that copy or re-encode a dimension's bytes (e.g.
// Convert) must not reinterpret them through scale.
func VectorComponent[T Numeric](r *PackedPointRecord, name string, component int) (View[T], error) {
	d, err := r.format.Lookup(name)
	if err != nil {
		return View[T]{}, err
	}

	w, ok := d.Placement.(dimension.Whole)
	if !ok {
		return View[T]{}, fmt.Errorf("%w: %q is not a whole-byte dimension", errs.ErrInvalidDimension, name)
	}

	if component < 0 || component >= d.Kind.ElementCount() {
		return View[T]{}, fmt.Errorf("%w: component %d out of range for %q (%d elements)", errs.ErrInvalidDimension, component, name, d.Kind.ElementCount())
	}

	if want := kindOf[T](); want.ElementSize() != d.Kind.ElementSize() || want.Signed() != d.Kind.Signed() || want.Float() != d.Kind.Float() {
		return View[T]{}, fmt.Errorf("%w: %q component type mismatch", errs.ErrInvalidDimension, name)
	}

	elemOffset := w.Offset + component*d.Kind.ElementSize()

	return newView[T](r.buf, elemOffset, r.format.Stride(), r.n), nil
}

// ScaledExtraColumn is Column's scale-aware counterpart for a scalar
// extra-bytes dimension that declares its own scale/offset (spec.md
// §4.3/§4.4, "Extra-byte dim with scale/offset: returns a scaled view
// rather than the raw integer column"), discovered from the dimension
// descriptor itself rather than supplied by the caller as ScaledColumn
// requires for the header-scaled X/Y/Z. Returns ErrInvalidScaleArity if
// the dimension declares no scale/offset.
func ScaledExtraColumn[T Numeric](r *PackedPointRecord, name string) (ScaledView[T], error) {
	d, err := r.format.Lookup(name)
	if err != nil {
		return ScaledView[T]{}, err
	}

	if d.Scales == nil || d.Offsets == nil {
		return ScaledView[T]{}, fmt.Errorf("%w: %q declares no scale/offset", errs.ErrInvalidScaleArity, name)
	}

	col, err := Column[T](r, name)
	if err != nil {
		return ScaledView[T]{}, err
	}

	return NewScaledView(col, d.Scales[0], d.Offsets[0]), nil
}

// ScaledVectorComponent is VectorComponent's scale-aware counterpart:
// one component (0-based) of a multi-element extra-bytes dimension,
// returned as a scaled view using that component's own declared
// scale/offset. This is scenario S7's accessor: a "3int32" extra
// dimension with per-component scales/offsets reads and writes in
// scaled units directly, the same contract ScaledColumn gives X/Y/Z.
// Returns ErrInvalidScaleArity if the dimension declares no
// scale/offset.
func ScaledVectorComponent[T Numeric](r *PackedPointRecord, name string, component int) (ScaledView[T], error) {
	d, err := r.format.Lookup(name)
	if err != nil {
		return ScaledView[T]{}, err
	}

	if d.Scales == nil || d.Offsets == nil {
		return ScaledView[T]{}, fmt.Errorf("%w: %q declares no scale/offset", errs.ErrInvalidScaleArity, name)
	}

	col, err := VectorComponent[T](r, name, component)
	if err != nil {
		return ScaledView[T]{}, err
	}

	return NewScaledView(col, d.Scales[component], d.Offsets[component]), nil
}

// SubField returns the logical uint8 values of a bit-packed sub-byte
// dimension (e.g. "return_number"), one freshly allocated array, unpacked
// from its composed parent field. Mutating the returned slice has no
// effect until it is written back with SetSubField.
func (r *PackedPointRecord) SubField(name string) ([]uint8, error) {
	d, err := r.format.Lookup(name)
	if err != nil {
		return nil, err
	}

	s, ok := d.Placement.(dimension.Sub)
	if !ok {
		return nil, fmt.Errorf("%w: %q is a whole-byte dimension, use Column instead", errs.ErrInvalidDimension, name)
	}

	composed, ok := r.format.ComposedPlacement(s.ComposedField)
	if !ok {
		return nil, fmt.Errorf("%w: composed field %q not found", errs.ErrInvalidDimension, s.ComposedField)
	}

	out := make([]uint8, r.n)
	stride := r.format.Stride()
	mask := s.Mask()

	for i := 0; i < r.n; i++ {
		word := readComposed(r.buf, i*stride+composed.Offset, composed.Size)
		out[i] = uint8((word >> s.Lo) & mask)
	}

	return out, nil
}

// SetSubField packs values back into a bit-packed sub-byte dimension's
// composed parent field, leaving every other sub-field of that parent
// unchanged. Returns ErrOverflow if any value exceeds the field's bit
// width.
func (r *PackedPointRecord) SetSubField(name string, values []uint8) error {
	d, err := r.format.Lookup(name)
	if err != nil {
		return err
	}

	s, ok := d.Placement.(dimension.Sub)
	if !ok {
		return fmt.Errorf("%w: %q is a whole-byte dimension, use Column instead", errs.ErrInvalidDimension, name)
	}

	if len(values) != r.n {
		return fmt.Errorf("%w: %d values for %d records", errs.ErrRecordLengthMismatch, len(values), r.n)
	}

	composed, ok := r.format.ComposedPlacement(s.ComposedField)
	if !ok {
		return fmt.Errorf("%w: composed field %q not found", errs.ErrInvalidDimension, s.ComposedField)
	}

	mask := s.Mask()
	stride := r.format.Stride()

	for i, v := range values {
		if uint64(v) > mask {
			return fmt.Errorf("%w: %q value %d exceeds %d-bit field width", errs.ErrOverflow, name, v, s.Width())
		}

		base := i*stride + composed.Offset
		word := readComposed(r.buf, base, composed.Size)
		word = (word &^ (mask << s.Lo)) | (uint64(v) << s.Lo)
		writeComposed(r.buf, base, composed.Size, word)
	}

	return nil
}

func readComposed(buf []byte, offset, size int) uint64 {
	var word uint64
	for i := 0; i < size; i++ {
		word |= uint64(buf[offset+i]) << (8 * i)
	}

	return word
}

func writeComposed(buf []byte, offset, size int, word uint64) {
	for i := 0; i < size; i++ {
		buf[offset+i] = byte(word >> (8 * i))
	}
}

// AddExtraDim appends a new trailing dimension: widens the format and
// stride, allocates a new buffer, and copies every existing record's
// bytes into their unchanged offsets (appending only ever grows the
// tail, so no existing dimension's offset moves). The new dimension's
// bytes are zero-filled.
func (r *PackedPointRecord) AddExtraDim(ed dimension.ExtraDim) error {
	newFormat, err := dimension.NewPointFormat(r.format.ID(), append(append([]dimension.ExtraDim{}, r.format.ExtraDims()...), ed))
	if err != nil {
		return err
	}

	oldStride := r.format.Stride()
	newStride := newFormat.Stride()

	newBuf := make([]byte, r.n*newStride)
	for i := 0; i < r.n; i++ {
		copy(newBuf[i*newStride:i*newStride+oldStride], r.buf[i*oldStride:i*oldStride+oldStride])
	}

	r.format = newFormat
	r.buf = newBuf

	return nil
}
