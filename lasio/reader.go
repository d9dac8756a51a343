package lasio

import (
	"fmt"
	"io"

	"github.com/arloliu/lasgo/compress"
	"github.com/arloliu/lasgo/diag"
	"github.com/arloliu/lasgo/dimension"
	"github.com/arloliu/lasgo/errs"
	"github.com/arloliu/lasgo/points"
	"github.com/arloliu/lasgo/section"
)

// Read implements C7: stream -> header -> VLRs -> (decoder?) -> point
// records, plus EVLRs for version >= 1.4.
//
// Read never leaves the stream position in a surprising place on return:
// on success it sits at end-of-points (or end-of-EVLRs, if any were
// parsed); on error the position is unspecified.
func Read(r io.ReadSeeker, opts ...ReaderOption) (*LasData, error) {
	cfg, err := newReaderConfig(opts)
	if err != nil {
		return nil, err
	}

	var header section.Header
	if _, err := header.ReadFrom(r); err != nil {
		return nil, fmt.Errorf("lasio: reading header: %w", err)
	}

	vlrs, err := section.ReadList(r, int(header.NumberOfVLRs), false)
	if err != nil {
		return nil, fmt.Errorf("lasio: reading VLRs: %w", err)
	}

	for _, rec := range vlrs.All() {
		extraBytes := rec.UserID == section.ExtraBytesUserID && rec.RecordID == section.ExtraBytesRecordID
		lasZip := rec.UserID == section.LasZipUserID && rec.RecordID == section.LasZipRecordID
		if !extraBytes && !lasZip {
			diag.Emit(cfg.warn, diag.Warning{
				Kind:    diag.KindUnrecognizedVLR,
				Message: fmt.Sprintf("lasio: unrecognized VLR (%q, %d) kept as pass-through", rec.UserID, rec.RecordID),
			})
		}
	}

	extraDims, err := extraDimsFromVLRs(vlrs)
	if err != nil {
		return nil, err
	}

	format, err := dimension.NewPointFormat(header.PointFormatID, extraDims)
	if err != nil {
		return nil, fmt.Errorf("lasio: building point format: %w", err)
	}

	if format.Stride() != int(header.PointDataRecordLength) {
		return nil, fmt.Errorf("%w: header declares %d, format computes %d", errs.ErrRecordLengthMismatch, header.PointDataRecordLength, format.Stride())
	}

	if _, err := r.Seek(int64(header.OffsetToPointData), io.SeekStart); err != nil {
		return nil, fmt.Errorf("lasio: seeking to point data: %w", err)
	}

	record, err := readPoints(r, &header, format, vlrs, cfg)
	if err != nil {
		return nil, err
	}

	evlrs, err := readEVLRs(r, &header)
	if err != nil {
		return nil, err
	}

	return &LasData{Header: &header, Format: format, VLRs: vlrs, Points: record, EVLRs: evlrs}, nil
}

// extraDimsFromVLRs decodes the ExtraBytes VLR, if one is present. A file
// with no extra-bytes dimensions carries no such VLR, which is not an
// error.
func extraDimsFromVLRs(vlrs *section.List) ([]dimension.ExtraDim, error) {
	rec, ok := vlrs.Get(section.ExtraBytesUserID, section.ExtraBytesRecordID)
	if !ok {
		return nil, nil
	}

	dims, err := section.DecodeExtraBytesPayload(rec.Payload)
	if err != nil {
		return nil, fmt.Errorf("lasio: decoding extra bytes VLR: %w", err)
	}

	return dims, nil
}

func readPoints(r io.ReadSeeker, header *section.Header, format *dimension.PointFormat, vlrs *section.List, cfg *readerConfig) (*points.PackedPointRecord, error) {
	count := int(header.PointCount())

	if !header.Compressed {
		streamOpts := []points.StreamOption{points.WithWarnFunc(cfg.warn)}
		if cfg.allowPartial {
			streamOpts = append(streamOpts, points.AllowPartialRead())
		}

		return points.FromStream(format, r, count, streamOpts...)
	}

	lasZip, ok := vlrs.Get(section.LasZipUserID, section.LasZipRecordID)
	if !ok {
		return nil, errs.ErrMissingLaszipVlr
	}

	dec, err := compress.SelectDecoder(cfg.backends, r, compress.DecodeInfo{
		PointFormatID: format.ID(),
		RecordLength:  format.Stride(),
		PointCount:    header.PointCount(),
		LasZipVLR:     lasZip.Payload,
	})
	if err != nil {
		return nil, fmt.Errorf("lasio: selecting decoder: %w", err)
	}

	buf, err := dec.Decode()
	if err != nil {
		return nil, fmt.Errorf("lasio: decoding points: %w", err)
	}

	return points.FromBytes(format, buf, count)
}

func readEVLRs(r io.ReadSeeker, header *section.Header) (*section.List, error) {
	if !header.IsModern() || header.NumberOfEVLRs == 0 {
		return section.NewList(), nil
	}

	if _, err := r.Seek(int64(header.StartOfFirstEVLR), io.SeekStart); err != nil {
		return nil, fmt.Errorf("lasio: seeking to first EVLR: %w", err)
	}

	evlrs, err := section.ReadList(r, int(header.NumberOfEVLRs), true)
	if err != nil {
		return nil, fmt.Errorf("lasio: reading EVLRs: %w", err)
	}

	return evlrs, nil
}
