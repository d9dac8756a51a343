package lasio

import (
	"fmt"
	"io"

	"github.com/arloliu/lasgo/compress"
	"github.com/arloliu/lasgo/dimension"
	"github.com/arloliu/lasgo/errs"
	"github.com/arloliu/lasgo/internal/pool"
	"github.com/arloliu/lasgo/points"
	"github.com/arloliu/lasgo/section"
)

// writerState is the state machine Writer tracks alongside the optional
// compression Encoder's own EncoderState, per spec.md §4.8/§4.9 and the
// "modern, state-flag-first write_evlrs" decision recorded in DESIGN.md.
type writerState int

const (
	writerCreated writerState = iota
	writerHeaderWritten
	writerPoints
	writerDone
	writerHeaderRewritten
)

// Writer implements C8's streaming write contract: Open -> Write* ->
// WriteEVLRs? -> Close.
type Writer struct {
	dest   io.WriteSeeker
	header *section.Header
	format *dimension.PointFormat
	vlrs   *section.List
	cfg    *writerConfig

	compress bool
	enc      compress.Encoder

	state      writerState
	wroteEVLRs bool
}

// Open begins a write: copies header, resets its running statistics,
// flips the compressed bit per compressEnabled, writes a placeholder
// header and the VLR list (appending a LasZip VLR first if compressing),
// and initializes the compression back-end if requested.
//
// vlrs may be nil, meaning "no VLRs besides whatever the back-end adds".
// The caller retains ownership of header and vlrs; Open copies what it
// needs.
func Open(dest io.WriteSeeker, header *section.Header, format *dimension.PointFormat, vlrs *section.List, compressEnabled bool, opts ...WriterOption) (*Writer, error) {
	cfg, err := newWriterConfig(opts)
	if err != nil {
		return nil, err
	}

	if _, err := dest.Seek(0, io.SeekCurrent); err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrNonSeekableDestination, err)
	}

	h := *header
	h.PartialReset()
	h.SetCompressed(compressEnabled)
	h.PointFormatID = format.ID()
	h.PointDataRecordLength = uint16(format.Stride())

	own := section.NewList()
	if vlrs != nil {
		for _, rec := range vlrs.All() {
			own.Append(rec)
		}
	}
	vlrs = own

	w := &Writer{dest: dest, header: &h, format: format, vlrs: vlrs, cfg: cfg, compress: compressEnabled}

	headerSize, err := w.placeholderHeaderSize()
	if err != nil {
		return nil, err
	}

	var enc compress.Encoder
	if compressEnabled {
		enc, err = compress.SelectEncoder(cfg.backends, dest, compress.EncodeInfo{
			PointFormatID:   format.ID(),
			RecordLength:    format.Stride(),
			NumExtraBytes:   format.NumExtraBytes(),
			PointDataOffset: headerSize + int(vlrs.TotalSizeInBytes(false)),
		})
		if err != nil {
			return nil, fmt.Errorf("lasio: selecting encoder: %w", err)
		}

		vlrs.Append(section.Record{
			UserID:      section.LasZipUserID,
			RecordID:    section.LasZipRecordID,
			Description: "laszip encoded",
			Payload:     enc.LasZipVLR(),
		})
	}

	finalOffset := headerSize + int(vlrs.TotalSizeInBytes(false))
	h.OffsetToPointData = uint32(finalOffset)
	h.NumberOfVLRs = uint32(vlrs.Len())

	if compressEnabled {
		enc.SetPointDataOffset(finalOffset)
	}

	buf := pool.GetChunkBuffer()
	defer pool.PutChunkBuffer(buf)

	if _, err := h.WriteTo(buf); err != nil {
		return nil, err
	}

	if _, err := vlrs.WriteTo(buf, false, cfg.warn); err != nil {
		return nil, err
	}

	if compressEnabled {
		if err := enc.WriteInitialHeaderAndVLRs(buf.Bytes()); err != nil {
			return nil, err
		}
	} else {
		if _, err := dest.Write(buf.Bytes()); err != nil {
			return nil, err
		}
	}

	w.enc = enc
	w.state = writerHeaderWritten

	return w, nil
}

// placeholderHeaderSize measures the on-disk header size for this file's
// version by writing it to a throwaway buffer; the byte count is fixed by
// version and doesn't depend on any field's value.
func (w *Writer) placeholderHeaderSize() (int, error) {
	buf := pool.GetChunkBuffer()
	defer pool.PutChunkBuffer(buf)

	if _, err := w.header.WriteTo(buf); err != nil {
		return 0, err
	}

	return buf.Len(), nil
}

// Write streams one chunk of records, folding their statistics into the
// running header and forwarding the bytes to the back-end (if
// compressing) or the destination directly.
func (w *Writer) Write(chunk *points.PackedPointRecord) error {
	if w.state != writerHeaderWritten && w.state != writerPoints {
		return fmt.Errorf("%w: Write", errs.ErrWriteAfterDone)
	}

	if chunk.Format().ID() != w.format.ID() || chunk.Stride() != w.format.Stride() {
		return errs.ErrIncompatibleFormat
	}

	if err := w.foldStats(chunk); err != nil {
		return err
	}

	if w.compress {
		if err := w.enc.WritePoints(chunk.Bytes()); err != nil {
			return err
		}
	} else if _, err := w.dest.Write(chunk.Bytes()); err != nil {
		return err
	}

	w.state = writerPoints

	return nil
}

// foldStats folds one chunk's X/Y/Z bounding box and return-number
// histogram into the header, per spec.md §4.5.
func (w *Writer) foldStats(chunk *points.PackedPointRecord) error {
	xs, err := points.ScaledColumn[int32](chunk, "X", w.header.XScale, w.header.XOffset)
	if err != nil {
		return err
	}

	ys, err := points.ScaledColumn[int32](chunk, "Y", w.header.YScale, w.header.YOffset)
	if err != nil {
		return err
	}

	zs, err := points.ScaledColumn[int32](chunk, "Z", w.header.ZScale, w.header.ZOffset)
	if err != nil {
		return err
	}

	returnNumbers, err := chunk.SubField("return_number")
	if err != nil {
		return err
	}

	for i := 0; i < chunk.Len(); i++ {
		w.header.Update(xs.Get(i), ys.Get(i), zs.Get(i), returnNumbers[i])
	}

	return nil
}

// WriteEVLRs writes the given Extended VLRs, legal only for file version
// >= 1.4 and only once, after the last point chunk. It finalizes the
// compression back-end first (releasing any held chunk-table offset) so
// start_of_first_evlr is recorded past the fully-written point stream.
func (w *Writer) WriteEVLRs(evlrs []section.Record) error {
	if !w.header.IsModern() {
		return errs.ErrEvlrNotSupported
	}

	if w.wroteEVLRs {
		return fmt.Errorf("%w: WriteEVLRs", errs.ErrWriteAfterDone)
	}

	if err := w.finishEncoder(); err != nil {
		return err
	}

	pos, err := w.dest.Seek(0, io.SeekCurrent)
	if err != nil {
		return err
	}

	w.header.StartOfFirstEVLR = uint64(pos)
	w.header.NumberOfEVLRs = uint32(len(evlrs))

	list := section.NewList()
	for _, rec := range evlrs {
		list.Append(rec)
	}

	if _, err := list.WriteTo(w.dest, true, w.cfg.warn); err != nil {
		return err
	}

	w.wroteEVLRs = true

	return nil
}

// finishEncoder moves the writer to writerDone exactly once, first calling
// the back-end's Done if compressing; further Write calls are rejected.
func (w *Writer) finishEncoder() error {
	if w.state == writerDone || w.state == writerHeaderRewritten {
		return nil
	}

	if w.compress {
		if err := w.enc.Done(); err != nil {
			return err
		}
	}

	w.state = writerDone

	return nil
}

// Close finalizes the back-end if WriteEVLRs hasn't already, then
// seeks to offset 0 and rewrites the header with final counts, bounding
// box, and offsets. If the writer was opened with OwnDestination, the
// destination is also closed.
func (w *Writer) Close() error {
	if err := w.finishEncoder(); err != nil {
		return err
	}

	buf := pool.GetChunkBuffer()
	defer pool.PutChunkBuffer(buf)

	if _, err := w.header.WriteTo(buf); err != nil {
		return err
	}

	if w.compress {
		if err := w.enc.WriteUpdatedHeader(buf.Bytes()); err != nil {
			return err
		}
	} else {
		if _, err := w.dest.Seek(0, io.SeekStart); err != nil {
			return err
		}

		if _, err := w.dest.Write(buf.Bytes()); err != nil {
			return err
		}
	}

	w.state = writerHeaderRewritten

	if w.cfg.owned {
		if closer, ok := w.dest.(io.Closer); ok {
			return closer.Close()
		}
	}

	return nil
}
