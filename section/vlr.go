package section

import (
	"fmt"
	"io"
	"math"

	"github.com/arloliu/lasgo/diag"
	"github.com/arloliu/lasgo/dimension"
	"github.com/arloliu/lasgo/endian"
	"github.com/arloliu/lasgo/errs"
	"github.com/arloliu/lasgo/internal/hash"
)

const (
	vlrHeaderSize  = 54
	evlrHeaderSize = 60

	vlrUserIDSize      = 16
	vlrDescriptionSize = 32

	// ExtraBytesUserID/ExtraBytesRecordID identify the ExtraBytes VLR per
	// the ASPRS LAS specification.
	ExtraBytesUserID   = "LASF_Spec"
	ExtraBytesRecordID = uint16(4)

	// LasZipUserID/LasZipRecordID identify the LasZip VLR (spec.md §6).
	LasZipUserID   = "laszip encoded"
	LasZipRecordID = uint16(22204)

	extraBytesDescriptorSize = 192
)

// Record is one Variable Length Record. VLR and EVLR share this exact
// field shape (spec.md §3); only the on-disk header width and the
// payload-length field's integer width differ, chosen at write/read time.
type Record struct {
	Reserved    uint16
	UserID      string
	RecordID    uint16
	Description string
	Payload     []byte
}

// keyFor builds the (UserID, RecordID) composite key a VLR list indexes by.
func keyFor(userID string, recordID uint16) string { return userID + "\x00" + string(rune(recordID)) }

// sizeInBytes returns this record's on-disk footprint: 54+payload (VLR) or
// 60+payload (EVLR).
func (r Record) sizeInBytes(extended bool) int64 {
	header := int64(vlrHeaderSize)
	if extended {
		header = evlrHeaderSize
	}

	return header + int64(len(r.Payload))
}

// ReadRecord parses one VLR (extended=false) or EVLR (extended=true) from
// r: fixed header, then the payload it declares.
func ReadRecord(r io.Reader, extended bool) (Record, error) {
	engine := endian.LittleEndian()

	headerSize := vlrHeaderSize
	if extended {
		headerSize = evlrHeaderSize
	}

	buf := make([]byte, headerSize)
	if _, err := io.ReadFull(r, buf); err != nil {
		return Record{}, err
	}

	rec := Record{
		Reserved: engine.Uint16(buf[0:2]),
		UserID:   trimNulString(buf[2 : 2+vlrUserIDSize]),
	}

	off := 2 + vlrUserIDSize
	rec.RecordID = engine.Uint16(buf[off : off+2])
	off += 2

	var payloadLen uint64
	if extended {
		payloadLen = engine.Uint64(buf[off : off+8])
		off += 8
	} else {
		payloadLen = uint64(engine.Uint16(buf[off : off+2]))
		off += 2
	}

	rec.Description = trimNulString(buf[off : off+vlrDescriptionSize])

	rec.Payload = make([]byte, payloadLen)
	if _, err := io.ReadFull(r, rec.Payload); err != nil {
		return Record{}, err
	}

	return rec, nil
}

// WriteTo serializes one record as a VLR (extended=false) or EVLR
// (extended=true) header followed by its payload. A description longer
// than its 32-byte slot is truncated and, if warn is non-nil, reported via
// diag.KindDescriptionTruncated.
func (r Record) WriteTo(w io.Writer, extended bool, warn diag.Func) (int64, error) {
	engine := endian.LittleEndian()

	headerSize := vlrHeaderSize
	if extended {
		headerSize = evlrHeaderSize
	}

	buf := make([]byte, headerSize)
	engine.PutUint16(buf[0:2], r.Reserved)
	putNulString(buf[2:2+vlrUserIDSize], r.UserID)

	off := 2 + vlrUserIDSize
	engine.PutUint16(buf[off:off+2], r.RecordID)
	off += 2

	if extended {
		engine.PutUint64(buf[off:off+8], uint64(len(r.Payload)))
		off += 8
	} else {
		engine.PutUint16(buf[off:off+2], uint16(len(r.Payload))) //nolint:gosec
		off += 2
	}

	if len(r.Description) > vlrDescriptionSize {
		diag.Emit(warn, diag.Warning{
			Kind:    diag.KindDescriptionTruncated,
			Message: fmt.Sprintf("VLR description %q truncated to %d bytes", r.Description, vlrDescriptionSize),
		})
	}
	putNulString(buf[off:off+vlrDescriptionSize], r.Description)

	n, err := w.Write(buf)
	if err != nil {
		return int64(n), err
	}

	m, err := w.Write(r.Payload)

	return int64(n + m), err
}

// List is a typed list of VLRs (or EVLRs) supporting iteration, append,
// remove-by-type, and hash-indexed (user_id, record_id) lookup (C6).
type List struct {
	records []Record
	index   map[uint64]int // xxhash(user_id+record_id) -> index into records
}

// NewList returns an empty VLR/EVLR list.
func NewList() *List {
	return &List{index: make(map[uint64]int)}
}

// Len returns the number of records in the list.
func (l *List) Len() int { return len(l.records) }

// All returns the records in list order. The returned slice must not be
// mutated by the caller.
func (l *List) All() []Record { return l.records }

// Append adds rec to the end of the list, indexing it by (UserID, RecordID).
func (l *List) Append(rec Record) {
	l.index[hash.ID(keyFor(rec.UserID, rec.RecordID))] = len(l.records)
	l.records = append(l.records, rec)
}

// Get returns the most recently appended record matching (userID,
// recordID); earlier records with the same pair are not returned.
func (l *List) Get(userID string, recordID uint16) (Record, bool) {
	i, ok := l.index[hash.ID(keyFor(userID, recordID))]
	if !ok || l.records[i].UserID != userID || l.records[i].RecordID != recordID {
		return Record{}, false
	}

	return l.records[i], true
}

// RemoveByType deletes every record matching (userID, recordID), reporting
// whether anything was removed.
func (l *List) RemoveByType(userID string, recordID uint16) bool {
	kept := l.records[:0]
	removed := false

	for _, rec := range l.records {
		if rec.UserID == userID && rec.RecordID == recordID {
			removed = true
			continue
		}
		kept = append(kept, rec)
	}

	l.records = kept
	l.rebuildIndex()

	return removed
}

func (l *List) rebuildIndex() {
	l.index = make(map[uint64]int, len(l.records))
	for i, rec := range l.records {
		l.index[hash.ID(keyFor(rec.UserID, rec.RecordID))] = i
	}
}

// TotalSizeInBytes sums sizeInBytes(extended) over every record in the list.
func (l *List) TotalSizeInBytes(extended bool) int64 {
	var total int64
	for _, rec := range l.records {
		total += rec.sizeInBytes(extended)
	}

	return total
}

// WriteTo emits every record in list order as VLRs (extended=false) or
// EVLRs (extended=true).
func (l *List) WriteTo(w io.Writer, extended bool, warn diag.Func) (int64, error) {
	var total int64
	for _, rec := range l.records {
		n, err := rec.WriteTo(w, extended, warn)
		total += n
		if err != nil {
			return total, err
		}
	}

	return total, nil
}

// ReadList reads exactly count VLRs (extended=false) or EVLRs
// (extended=true) from r.
func ReadList(r io.Reader, count int, extended bool) (*List, error) {
	l := NewList()

	for i := 0; i < count; i++ {
		rec, err := ReadRecord(r, extended)
		if err != nil {
			return nil, err
		}
		l.Append(rec)
	}

	return l, nil
}

// ASPRS ExtraBytes descriptor option bits (data_type != 0 only); bits 1-2
// (min/max) are defined by the spec but unused here since ExtraDim does
// not carry stored min/max.
const (
	extraBytesOptNoData = 1 << 0
	extraBytesOptScale  = 1 << 3
	extraBytesOptOffset = 1 << 4
)

// Fixed byte offsets within a 192-byte ExtraBytes descriptor (ASPRS LAS
// 1.4 R15, Table 24): reserved(2) data_type(1) options(1) name(32)
// unused(4) no_data(24) min(24) max(24) scale(24) offset(24) description(32).
const (
	extraBytesNameOff   = 4
	extraBytesNoDataOff = 40
	extraBytesScaleOff  = 112
	extraBytesOffsetOff = 136
	extraBytesDescOff   = 160
)

// EncodeExtraBytesPayload builds the payload of an ExtraBytes VLR from a
// list of extra dimensions, one 192-byte descriptor per dimension.
func EncodeExtraBytesPayload(dims []dimension.ExtraDim) ([]byte, error) {
	engine := endian.LittleEndian()
	out := make([]byte, 0, len(dims)*extraBytesDescriptorSize)

	for _, d := range dims {
		buf := make([]byte, extraBytesDescriptorSize)

		dataType, err := dataTypeFor(d)
		if err != nil {
			return nil, err
		}
		buf[2] = dataType

		// A type-0 ("untyped") descriptor's options byte holds the raw
		// filler width directly, per ASPRS; no option bits apply to it.
		if dataType == 0 {
			buf[3] = uint8(d.RawSize) //nolint:gosec // validated positive and < 256 at NewPointFormat construction
			putNulString(buf[extraBytesNameOff:extraBytesNameOff+vlrDescriptionSize], d.Name)
			putNulString(buf[extraBytesDescOff:extraBytesDescOff+vlrDescriptionSize], d.Description)
			out = append(out, buf...)

			continue
		}

		var options uint8
		if d.HasNoData {
			options |= extraBytesOptNoData
		}
		if len(d.Scales) > 0 {
			options |= extraBytesOptScale
		}
		if len(d.Offsets) > 0 {
			options |= extraBytesOptOffset
		}
		buf[3] = options

		putNulString(buf[extraBytesNameOff:extraBytesNameOff+vlrDescriptionSize], d.Name)

		if d.HasNoData {
			engine.PutUint64(buf[extraBytesNoDataOff:extraBytesNoDataOff+8], math.Float64bits(d.NoData))
		}

		for i, s := range d.Scales {
			engine.PutUint64(buf[extraBytesScaleOff+i*8:extraBytesScaleOff+i*8+8], math.Float64bits(s))
		}
		for i, o := range d.Offsets {
			engine.PutUint64(buf[extraBytesOffsetOff+i*8:extraBytesOffsetOff+i*8+8], math.Float64bits(o))
		}

		putNulString(buf[extraBytesDescOff:extraBytesDescOff+vlrDescriptionSize], d.Description)

		out = append(out, buf...)
	}

	return out, nil
}

// DecodeExtraBytesPayload parses an ExtraBytes VLR payload into the extra
// dimensions it declares.
func DecodeExtraBytesPayload(payload []byte) ([]dimension.ExtraDim, error) {
	if len(payload)%extraBytesDescriptorSize != 0 {
		return nil, fmt.Errorf("%w: extra bytes payload length %d is not a multiple of %d",
			errs.ErrInvalidHeaderSize, len(payload), extraBytesDescriptorSize)
	}

	engine := endian.LittleEndian()
	count := len(payload) / extraBytesDescriptorSize
	dims := make([]dimension.ExtraDim, 0, count)

	for i := 0; i < count; i++ {
		buf := payload[i*extraBytesDescriptorSize : (i+1)*extraBytesDescriptorSize]

		dataType := buf[2]
		options := buf[3]

		ed := dimension.ExtraDim{
			Name:        trimNulString(buf[extraBytesNameOff : extraBytesNameOff+vlrDescriptionSize]),
			Description: trimNulString(buf[extraBytesDescOff : extraBytesDescOff+vlrDescriptionSize]),
		}

		if dataType == 0 {
			ed.Kind = dimension.KindInvalid
			ed.RawSize = int(options)
			dims = append(dims, ed)

			continue
		}

		kind, err := dimension.KindForExtraByteType(dataType)
		if err != nil {
			return nil, err
		}
		ed.Kind = kind

		if options&extraBytesOptNoData != 0 {
			ed.HasNoData = true
			ed.NoData = math.Float64frombits(engine.Uint64(buf[extraBytesNoDataOff : extraBytesNoDataOff+8]))
		}

		n := kind.ElementCount()
		if options&extraBytesOptScale != 0 {
			ed.Scales = make([]float64, n)
			for k := 0; k < n; k++ {
				ed.Scales[k] = math.Float64frombits(engine.Uint64(buf[extraBytesScaleOff+k*8 : extraBytesScaleOff+k*8+8]))
			}
		}
		if options&extraBytesOptOffset != 0 {
			ed.Offsets = make([]float64, n)
			for k := 0; k < n; k++ {
				ed.Offsets[k] = math.Float64frombits(engine.Uint64(buf[extraBytesOffsetOff+k*8 : extraBytesOffsetOff+k*8+8]))
			}
		}

		dims = append(dims, ed)
	}

	return dims, nil
}

func dataTypeFor(d dimension.ExtraDim) (uint8, error) {
	if d.Kind == dimension.KindInvalid {
		return 0, nil
	}

	return dimension.ExtraByteTypeForKind(d.Kind)
}
