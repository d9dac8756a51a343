// Package section implements the two fixed on-disk structures that frame a
// point record array: the file header (C5) and the list of Variable Length
// Records preceding it / Extended VLRs trailing it (C6).
package section

import (
	"bytes"
	"io"
	"math"

	"github.com/arloliu/lasgo/endian"
	"github.com/arloliu/lasgo/errs"
)

// Signature is the required first four bytes of every LAS file.
const Signature = "LASF"

// Fixed header sizes per ASPRS LAS version. HeaderSize1_2 covers 1.0-1.2;
// 1.3 adds the waveform-data-packet pointer; 1.4 adds the EVLR pointer/count
// and widens the point-count and per-return tables to 64 bits.
const (
	HeaderSize1_2 = 227
	HeaderSize1_3 = 235
	HeaderSize1_4 = 375

	legacyReturnSlots = 5
	modernReturnSlots = 15

	compressedFormatBit = 0x80
)

// Header is the fixed-layout LAS file header (C5). Field names follow the
// ASPRS LAS specification's own naming.
type Header struct {
	FileSourceID   uint16
	GlobalEncoding uint16
	GUID           [16]byte

	VersionMajor uint8
	VersionMinor uint8

	SystemIdentifier   string // at most 32 bytes, NUL-padded on disk
	GeneratingSoftware string // at most 32 bytes, NUL-padded on disk

	CreationDayOfYear uint16
	CreationYear      uint16

	HeaderSize        uint16
	OffsetToPointData uint32
	NumberOfVLRs      uint32

	PointFormatID         uint8 // logical id, 0-10; high bit stripped
	Compressed            bool
	PointDataRecordLength uint16

	LegacyNumberOfPointRecords   uint32
	LegacyNumberOfPointsByReturn [legacyReturnSlots]uint32

	XScale, YScale, ZScale    float64
	XOffset, YOffset, ZOffset float64
	MaxX, MinX                float64
	MaxY, MinY                float64
	MaxZ, MinZ                float64

	StartOfWaveformDataPacketRecord uint64 // >= 1.3

	StartOfFirstEVLR uint64 // >= 1.4
	NumberOfEVLRs    uint32 // >= 1.4

	NumberOfPointRecords   uint64 // >= 1.4
	NumberOfPointsByReturn [modernReturnSlots]uint64
}

// sizeForVersion returns the on-disk header size for (major, minor), or an
// error for an unsupported version.
func sizeForVersion(major, minor uint8) (uint16, error) {
	if major != 1 || minor > 4 {
		return 0, errs.ErrUnsupportedVersion
	}

	switch {
	case minor >= 4:
		return HeaderSize1_4, nil
	case minor == 3:
		return HeaderSize1_3, nil
	default:
		return HeaderSize1_2, nil
	}
}

// IsModern reports whether this header uses the >= 1.4 point-count and
// per-return-count table widths.
func (h *Header) IsModern() bool { return h.VersionMinor >= 4 }

// PointCount returns the effective point count regardless of version.
func (h *Header) PointCount() uint64 {
	if h.IsModern() {
		return h.NumberOfPointRecords
	}

	return uint64(h.LegacyNumberOfPointRecords)
}

// PointsByReturn returns the effective per-return-number count table
// regardless of version (always 15 entries; entries 5-14 are always 0 on a
// pre-1.4 header since the on-disk table only has 5 slots).
func (h *Header) PointsByReturn() [modernReturnSlots]uint64 {
	if h.IsModern() {
		return h.NumberOfPointsByReturn
	}

	var out [modernReturnSlots]uint64
	for i, v := range h.LegacyNumberOfPointsByReturn {
		out[i] = uint64(v)
	}

	return out
}

// rawPointFormat is the on-disk point-format byte: the logical id with the
// high bit set when the point data is compressed (spec.md §6).
func (h *Header) rawPointFormat() uint8 {
	if h.Compressed {
		return h.PointFormatID | compressedFormatBit
	}

	return h.PointFormatID
}

// SetCompressed flips the high bit of the on-disk point-format byte without
// touching the logical point-format id.
func (h *Header) SetCompressed(compressed bool) { h.Compressed = compressed }

// PartialReset zeroes the statistics a writer recomputes while streaming
// points: counts, per-return tables, and bbox extrema (seeded to +Inf/-Inf
// so the first Update call establishes them unconditionally).
func (h *Header) PartialReset() {
	h.LegacyNumberOfPointRecords = 0
	h.LegacyNumberOfPointsByReturn = [legacyReturnSlots]uint32{}
	h.NumberOfPointRecords = 0
	h.NumberOfPointsByReturn = [modernReturnSlots]uint64{}

	h.MinX, h.MinY, h.MinZ = math.Inf(1), math.Inf(1), math.Inf(1)
	h.MaxX, h.MaxY, h.MaxZ = math.Inf(-1), math.Inf(-1), math.Inf(-1)
}

// Update folds one point's scaled coordinates and return number into the
// running statistics: bbox extrema and the point/per-return counts. Return
// numbers beyond the active table's width (5 pre-1.4, 15 from 1.4) are
// silently dropped per spec.md §3's invariant that per-return sum need not
// equal point count.
func (h *Header) Update(x, y, z float64, returnNumber uint8) {
	h.MinX, h.MaxX = math.Min(h.MinX, x), math.Max(h.MaxX, x)
	h.MinY, h.MaxY = math.Min(h.MinY, y), math.Max(h.MaxY, y)
	h.MinZ, h.MaxZ = math.Min(h.MinZ, z), math.Max(h.MaxZ, z)

	if h.IsModern() {
		h.NumberOfPointRecords++
		if returnNumber >= 1 && int(returnNumber) <= modernReturnSlots {
			h.NumberOfPointsByReturn[returnNumber-1]++
		}

		return
	}

	h.LegacyNumberOfPointRecords++
	if returnNumber >= 1 && int(returnNumber) <= legacyReturnSlots {
		h.LegacyNumberOfPointsByReturn[returnNumber-1]++
	}
}

// ReadFrom parses the fixed-layout header from r: the 4-byte signature,
// version, then a version-dependent tail. It validates the signature and
// rejects an unsupported version before attempting to parse the tail.
func (h *Header) ReadFrom(r io.Reader) (int64, error) {
	base := make([]byte, HeaderSize1_2)
	if _, err := io.ReadFull(r, base); err != nil {
		return 0, err
	}

	if string(base[0:4]) != Signature {
		return 0, errs.ErrInvalidSignature
	}

	h.VersionMajor = base[24]
	h.VersionMinor = base[25]

	wantSize, err := sizeForVersion(h.VersionMajor, h.VersionMinor)
	if err != nil {
		return int64(len(base)), err
	}

	engine := endian.LittleEndian()
	h.parseBase(base, engine)

	read := int64(len(base))

	if wantSize == HeaderSize1_2 {
		return read, nil
	}

	tail := make([]byte, int(wantSize)-HeaderSize1_2)
	if _, err := io.ReadFull(r, tail); err != nil {
		return read, err
	}
	read += int64(len(tail))

	h.StartOfWaveformDataPacketRecord = engine.Uint64(tail[0:8])

	if wantSize == HeaderSize1_3 {
		return read, nil
	}

	h.StartOfFirstEVLR = engine.Uint64(tail[8:16])
	h.NumberOfEVLRs = engine.Uint32(tail[16:20])
	h.NumberOfPointRecords = engine.Uint64(tail[20:28])

	for i := 0; i < modernReturnSlots; i++ {
		off := 28 + i*8
		h.NumberOfPointsByReturn[i] = engine.Uint64(tail[off : off+8])
	}

	return read, nil
}

func (h *Header) parseBase(base []byte, engine endian.EndianEngine) {
	h.FileSourceID = engine.Uint16(base[4:6])
	h.GlobalEncoding = engine.Uint16(base[6:8])
	copy(h.GUID[:], base[8:24])
	h.SystemIdentifier = trimNulString(base[26:58])
	h.GeneratingSoftware = trimNulString(base[58:90])
	h.CreationDayOfYear = engine.Uint16(base[90:92])
	h.CreationYear = engine.Uint16(base[92:94])
	h.HeaderSize = engine.Uint16(base[94:96])
	h.OffsetToPointData = engine.Uint32(base[96:100])
	h.NumberOfVLRs = engine.Uint32(base[100:104])

	rawFormat := base[104]
	h.Compressed = rawFormat&compressedFormatBit != 0
	h.PointFormatID = rawFormat &^ compressedFormatBit

	h.PointDataRecordLength = engine.Uint16(base[105:107])
	h.LegacyNumberOfPointRecords = engine.Uint32(base[107:111])

	for i := 0; i < legacyReturnSlots; i++ {
		off := 111 + i*4
		h.LegacyNumberOfPointsByReturn[i] = engine.Uint32(base[off : off+4])
	}

	h.XScale = math.Float64frombits(engine.Uint64(base[131:139]))
	h.YScale = math.Float64frombits(engine.Uint64(base[139:147]))
	h.ZScale = math.Float64frombits(engine.Uint64(base[147:155]))
	h.XOffset = math.Float64frombits(engine.Uint64(base[155:163]))
	h.YOffset = math.Float64frombits(engine.Uint64(base[163:171]))
	h.ZOffset = math.Float64frombits(engine.Uint64(base[171:179]))
	h.MaxX = math.Float64frombits(engine.Uint64(base[179:187]))
	h.MinX = math.Float64frombits(engine.Uint64(base[187:195]))
	h.MaxY = math.Float64frombits(engine.Uint64(base[195:203]))
	h.MinY = math.Float64frombits(engine.Uint64(base[203:211]))
	h.MaxZ = math.Float64frombits(engine.Uint64(base[211:219]))
	h.MinZ = math.Float64frombits(engine.Uint64(base[219:227]))
}

// WriteTo serializes the header in the exact on-disk layout for its
// (VersionMajor, VersionMinor), zero-padding reserved/unused trailing
// bytes, and setting HeaderSize to the size it just wrote.
func (h *Header) WriteTo(w io.Writer) (int64, error) {
	size, err := sizeForVersion(h.VersionMajor, h.VersionMinor)
	if err != nil {
		return 0, err
	}
	h.HeaderSize = size

	buf := make([]byte, size)
	engine := endian.LittleEndian()

	copy(buf[0:4], Signature)
	engine.PutUint16(buf[4:6], h.FileSourceID)
	engine.PutUint16(buf[6:8], h.GlobalEncoding)
	copy(buf[8:24], h.GUID[:])
	buf[24] = h.VersionMajor
	buf[25] = h.VersionMinor
	putNulString(buf[26:58], h.SystemIdentifier)
	putNulString(buf[58:90], h.GeneratingSoftware)
	engine.PutUint16(buf[90:92], h.CreationDayOfYear)
	engine.PutUint16(buf[92:94], h.CreationYear)
	engine.PutUint16(buf[94:96], h.HeaderSize)
	engine.PutUint32(buf[96:100], h.OffsetToPointData)
	engine.PutUint32(buf[100:104], h.NumberOfVLRs)
	buf[104] = h.rawPointFormat()
	engine.PutUint16(buf[105:107], h.PointDataRecordLength)
	engine.PutUint32(buf[107:111], h.LegacyNumberOfPointRecords)

	for i := 0; i < legacyReturnSlots; i++ {
		off := 111 + i*4
		engine.PutUint32(buf[off:off+4], h.LegacyNumberOfPointsByReturn[i])
	}

	engine.PutUint64(buf[131:139], math.Float64bits(h.XScale))
	engine.PutUint64(buf[139:147], math.Float64bits(h.YScale))
	engine.PutUint64(buf[147:155], math.Float64bits(h.ZScale))
	engine.PutUint64(buf[155:163], math.Float64bits(h.XOffset))
	engine.PutUint64(buf[163:171], math.Float64bits(h.YOffset))
	engine.PutUint64(buf[171:179], math.Float64bits(h.ZOffset))
	engine.PutUint64(buf[179:187], math.Float64bits(h.MaxX))
	engine.PutUint64(buf[187:195], math.Float64bits(h.MinX))
	engine.PutUint64(buf[195:203], math.Float64bits(h.MaxY))
	engine.PutUint64(buf[203:211], math.Float64bits(h.MinY))
	engine.PutUint64(buf[211:219], math.Float64bits(h.MaxZ))
	engine.PutUint64(buf[219:227], math.Float64bits(h.MinZ))

	if size >= HeaderSize1_3 {
		engine.PutUint64(buf[227:235], h.StartOfWaveformDataPacketRecord)
	}

	if size >= HeaderSize1_4 {
		engine.PutUint64(buf[235:243], h.StartOfFirstEVLR)
		engine.PutUint32(buf[243:247], h.NumberOfEVLRs)
		engine.PutUint64(buf[247:255], h.NumberOfPointRecords)

		for i := 0; i < modernReturnSlots; i++ {
			off := 255 + i*8
			engine.PutUint64(buf[off:off+8], h.NumberOfPointsByReturn[i])
		}
	}

	n, err := w.Write(buf)

	return int64(n), err
}

// trimNulString trims a fixed-width NUL-padded field down to its text,
// stopping at the first NUL byte (or the whole slice if unterminated).
func trimNulString(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		return string(b[:i])
	}

	return string(b)
}

// putNulString writes s into a fixed-width field, truncating to fit and
// zero-padding the remainder.
func putNulString(dst []byte, s string) {
	n := copy(dst, s)
	for i := n; i < len(dst); i++ {
		dst[i] = 0
	}
}
