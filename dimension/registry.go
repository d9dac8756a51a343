package dimension

import "github.com/arloliu/lasgo/errs"

// Def is one dimension's entry in a FormatSpec: its name, storage kind,
// and where it lives inside the record.
//
// Scales and Offsets are only ever non-nil for an extra-bytes dimension
// declared with per-component scale/offset (§4.3/§4.4); every fixed
// dimension (including X/Y/Z, which are scaled via the file header
// instead) leaves them nil.
type Def struct {
	Name      string
	Kind      Kind
	Placement Placement
	Scales    []float64
	Offsets   []float64
}

// FormatSpec is the canonical, read-only schema for one point-format id:
// C1's per-id entry. Built once at package init and never mutated.
type FormatSpec struct {
	ID       uint8
	BaseSize int
	Dims     []Def
	// Composed lists the byte-or-word fields that pack more than one
	// sub-byte dimension (e.g. "bit_fields", "raw_classification"),
	// keyed by name, with their offset and byte width in the record.
	Composed map[string]Whole
	// MinVersionMinor is the minimum LAS 1.x minor version this format is
	// legal in (major is always 1). Formats 6-10 require 1.4.
	MinVersionMinor uint8
	HasRGB          bool
	HasNIR          bool
	HasGPSTime      bool
	HasWavePacket   bool
}

// registry is the static [11]FormatSpec table, indexed by point-format id.
var registry [11]FormatSpec

func init() {
	registry[0] = buildFormat0()
	registry[1] = buildFormat1()
	registry[2] = buildFormat2()
	registry[3] = buildFormat3()
	registry[4] = buildFormat4()
	registry[5] = buildFormat5()
	registry[6] = buildFormat6()
	registry[7] = buildFormat7()
	registry[8] = buildFormat8()
	registry[9] = buildFormat9()
	registry[10] = buildFormat10()
}

// Lookup returns the static schema for point-format id, or
// ErrUnsupportedFormat if id is outside the 0-10 range.
func Lookup(id uint8) (FormatSpec, error) {
	if id > 10 {
		return FormatSpec{}, errs.ErrUnsupportedFormat
	}

	return registry[id], nil
}

func whole(name string, kind Kind, offset int) Def {
	return Def{Name: name, Kind: kind, Placement: Whole{Offset: offset, Size: kind.Size()}}
}

func sub(name, composed string, lo, hi uint8) Def {
	return Def{Name: name, Kind: subKind(hi - lo), Placement: Sub{ComposedField: composed, Lo: lo, Hi: hi}}
}

// subKind picks the smallest unsigned kind that can hold a width-bit value;
// sub-field logical values are always presented as u8/u16.
func subKind(width uint8) Kind {
	if width > 8 {
		return KindU16
	}

	return KindU8
}

// coreXYZI are the leading dimensions common to every point format.
func coreXYZI() []Def {
	return []Def{
		whole("X", KindI32, 0),
		whole("Y", KindI32, 4),
		whole("Z", KindI32, 8),
		whole("intensity", KindU16, 12),
	}
}

func legacyBitFields() (Def, Def, Def, Def) {
	return sub("return_number", "bit_fields", 0, 3),
		sub("number_of_returns", "bit_fields", 3, 6),
		sub("scan_direction_flag", "bit_fields", 6, 7),
		sub("edge_of_flight_line", "bit_fields", 7, 8)
}

func legacyClassification() (Def, Def, Def, Def) {
	return sub("classification", "raw_classification", 0, 5),
		sub("synthetic", "raw_classification", 5, 6),
		sub("key_point", "raw_classification", 6, 7),
		sub("withheld", "raw_classification", 7, 8)
}

// legacyTail is bit_fields+raw_classification+scan_angle_rank+user_data+
// point_source_id, common to formats 0-5, starting at byte offset 14.
func legacyTail() []Def {
	rn, nr, sdf, efl := legacyBitFields()
	cls, syn, kp, wh := legacyClassification()

	return []Def{
		rn, nr, sdf, efl,
		cls, syn, kp, wh,
		whole("scan_angle_rank", KindI8, 16),
		whole("user_data", KindU8, 17),
		whole("point_source_id", KindU16, 18),
	}
}

func legacyComposed() map[string]Whole {
	return map[string]Whole{
		"bit_fields":         {Offset: 14, Size: 1},
		"raw_classification": {Offset: 15, Size: 1},
	}
}

func rgbAt(offset int) []Def {
	return []Def{
		whole("red", KindU16, offset),
		whole("green", KindU16, offset+2),
		whole("blue", KindU16, offset+4),
	}
}

func wavePacketAt(offset int) []Def {
	return []Def{
		whole("wave_packet_descriptor_index", KindU8, offset),
		whole("byte_offset_to_waveform_data", KindU64, offset+1),
		whole("waveform_packet_size", KindU32, offset+9),
		whole("return_point_waveform_location", KindF32, offset+13),
		whole("x_t", KindF32, offset+17),
		whole("y_t", KindF32, offset+21),
		whole("z_t", KindF32, offset+25),
	}
}

func buildFormat0() FormatSpec {
	dims := append(coreXYZI(), legacyTail()...)

	return FormatSpec{ID: 0, BaseSize: 20, Dims: dims, Composed: legacyComposed()}
}

func buildFormat1() FormatSpec {
	dims := append(coreXYZI(), legacyTail()...)
	dims = append(dims, whole("gps_time", KindF64, 20))

	return FormatSpec{ID: 1, BaseSize: 28, Dims: dims, Composed: legacyComposed(), HasGPSTime: true}
}

func buildFormat2() FormatSpec {
	dims := append(coreXYZI(), legacyTail()...)
	dims = append(dims, rgbAt(20)...)

	return FormatSpec{ID: 2, BaseSize: 26, Dims: dims, Composed: legacyComposed(), HasRGB: true, MinVersionMinor: 2}
}

func buildFormat3() FormatSpec {
	dims := append(coreXYZI(), legacyTail()...)
	dims = append(dims, whole("gps_time", KindF64, 20))
	dims = append(dims, rgbAt(28)...)

	return FormatSpec{
		ID: 3, BaseSize: 34, Dims: dims, Composed: legacyComposed(),
		HasGPSTime: true, HasRGB: true, MinVersionMinor: 2,
	}
}

func buildFormat4() FormatSpec {
	dims := append(coreXYZI(), legacyTail()...)
	dims = append(dims, whole("gps_time", KindF64, 20))
	dims = append(dims, wavePacketAt(28)...)

	return FormatSpec{
		ID: 4, BaseSize: 57, Dims: dims, Composed: legacyComposed(),
		HasGPSTime: true, HasWavePacket: true, MinVersionMinor: 3,
	}
}

func buildFormat5() FormatSpec {
	dims := append(coreXYZI(), legacyTail()...)
	dims = append(dims, whole("gps_time", KindF64, 20))
	dims = append(dims, rgbAt(28)...)
	dims = append(dims, wavePacketAt(34)...)

	return FormatSpec{
		ID: 5, BaseSize: 63, Dims: dims, Composed: legacyComposed(),
		HasGPSTime: true, HasRGB: true, HasWavePacket: true, MinVersionMinor: 3,
	}
}

// extendedBitFields are the widened sub-fields of formats 6-10, packed
// into a 2-byte "return_flags" composed field.
func extendedBitFields() []Def {
	return []Def{
		sub("return_number", "return_flags", 0, 4),
		sub("number_of_returns", "return_flags", 4, 8),
		sub("classification_flags", "return_flags", 8, 12),
		sub("scanner_channel", "return_flags", 12, 14),
		sub("scan_direction_flag", "return_flags", 14, 15),
		sub("edge_of_flight_line", "return_flags", 15, 16),
	}
}

// extendedTail is return_flags+classification+user_data+scan_angle+
// point_source_id+gps_time, common to formats 6-10, starting at offset 14.
func extendedTail() []Def {
	dims := extendedBitFields()
	dims = append(dims,
		whole("classification", KindU8, 16),
		whole("user_data", KindU8, 17),
		whole("scan_angle", KindI16, 18),
		whole("point_source_id", KindU16, 20),
		whole("gps_time", KindF64, 22),
	)

	return dims
}

func extendedComposed() map[string]Whole {
	return map[string]Whole{"return_flags": {Offset: 14, Size: 2}}
}

func buildFormat6() FormatSpec {
	dims := append(coreXYZI(), extendedTail()...)

	return FormatSpec{
		ID: 6, BaseSize: 30, Dims: dims, Composed: extendedComposed(),
		HasGPSTime: true, MinVersionMinor: 4,
	}
}

func buildFormat7() FormatSpec {
	dims := append(coreXYZI(), extendedTail()...)
	dims = append(dims, rgbAt(30)...)

	return FormatSpec{
		ID: 7, BaseSize: 36, Dims: dims, Composed: extendedComposed(),
		HasGPSTime: true, HasRGB: true, MinVersionMinor: 4,
	}
}

func buildFormat8() FormatSpec {
	dims := append(coreXYZI(), extendedTail()...)
	dims = append(dims, rgbAt(30)...)
	dims = append(dims, whole("nir", KindU16, 36))

	return FormatSpec{
		ID: 8, BaseSize: 38, Dims: dims, Composed: extendedComposed(),
		HasGPSTime: true, HasRGB: true, HasNIR: true, MinVersionMinor: 4,
	}
}

func buildFormat9() FormatSpec {
	dims := append(coreXYZI(), extendedTail()...)
	dims = append(dims, wavePacketAt(30)...)

	return FormatSpec{
		ID: 9, BaseSize: 59, Dims: dims, Composed: extendedComposed(),
		HasGPSTime: true, HasWavePacket: true, MinVersionMinor: 4,
	}
}

func buildFormat10() FormatSpec {
	dims := append(coreXYZI(), extendedTail()...)
	dims = append(dims, rgbAt(30)...)
	dims = append(dims, whole("nir", KindU16, 36))
	dims = append(dims, wavePacketAt(38)...)

	return FormatSpec{
		ID: 10, BaseSize: 67, Dims: dims, Composed: extendedComposed(),
		HasGPSTime: true, HasRGB: true, HasNIR: true, HasWavePacket: true, MinVersionMinor: 4,
	}
}
