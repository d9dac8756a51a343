package compress

import (
	"fmt"
	"io"
)

// EncodeInfo describes the point stream a Backend.NewEncoder is about to
// compress. It is a minimal, section-package-free mirror of the fields a
// backend needs from the header and point format, kept separate so this
// package never imports the section/dimension packages.
type EncodeInfo struct {
	PointFormatID uint8
	RecordLength  int
	NumExtraBytes int
	// PointDataOffset is the byte offset where point data begins (header
	// size plus total VLR bytes). Backends that cannot seek their own
	// output inline (the external-process backend) need it to locate the
	// chunk-table-offset sentinel slot for the post-hoc splice.
	PointDataOffset int
}

// DecodeInfo describes the compressed point stream a Backend.NewDecoder is
// about to expand.
type DecodeInfo struct {
	PointFormatID uint8
	RecordLength  int
	PointCount    uint64
	LasZipVLR     []byte
}

// EncoderState is the lifecycle state of an Encoder, per spec.md §4.9:
// Created -> HeaderWritten -> Points* -> Done -> HeaderRewritten. Calling
// WritePoints outside HeaderWritten|Points is a programmer error.
type EncoderState int

const (
	EncoderCreated EncoderState = iota
	EncoderHeaderWritten
	EncoderPoints
	EncoderDone
	EncoderHeaderRewritten
)

// Encoder is the write side of a compression backend.
//
// Lifecycle: a caller obtains an Encoder from Backend.NewEncoder, reads
// LasZipVLR() to get the opaque VLR payload to append to the file's VLR
// list, calls WriteInitialHeaderAndVLRs once the final header+VLR bytes are
// known, streams point chunks through WritePoints, calls Done once all
// points are written (before any EVLRs), and finally WriteUpdatedHeader
// with the header now containing final statistics.
type Encoder interface {
	// LasZipVLR returns the opaque payload for the file's LasZip VLR.
	// Valid immediately after construction.
	LasZipVLR() []byte

	// WriteInitialHeaderAndVLRs is called exactly once, with the bytes of
	// the placeholder header plus the full VLR list (LasZip VLR included).
	WriteInitialHeaderAndVLRs(headerAndVLRs []byte) error

	// WritePoints compresses and forwards one chunk of raw point bytes.
	// data's length must be a multiple of the record length.
	WritePoints(data []byte) error

	// Done finalizes the compressed stream (flushes any pending chunk
	// table). Must be called before WriteUpdatedHeader.
	Done() error

	// WriteUpdatedHeader splices the final header bytes into the
	// destination. Called once, after Done and after any EVLRs have been
	// written.
	WriteUpdatedHeader(header []byte) error

	// SetPointDataOffset informs the encoder of the final byte offset of
	// the point-data region, once the caller knows it (after appending
	// LasZipVLR()'s own payload to the VLR list makes the header+VLR size
	// final). Backends that don't need this offset (anything that writes
	// inline rather than splicing after the fact) may ignore the call.
	SetPointDataOffset(offset int)
}

// Decoder is the read side of a compression backend: it yields the full
// uncompressed point-record buffer for the file's point count.
type Decoder interface {
	Decode() ([]byte, error)
}

// Backend is one entry in the compression plug-point's ordered preference
// list.
type Backend interface {
	// Name identifies the backend for diagnostics and NoLazBackend errors.
	Name() string

	// IsAvailable reports whether this backend can run in the current
	// process/environment (e.g. whether an external executable is on PATH).
	IsAvailable() bool

	// Supports reports whether this backend produced (and can therefore
	// decode) the given LasZip VLR payload.
	Supports(lasZipVLRPayload []byte) bool

	NewEncoder(dest io.WriteSeeker, info EncodeInfo) (Encoder, error)
	NewDecoder(src io.Reader, info DecodeInfo) (Decoder, error)
}

// stateError reports an Encoder method called out of order.
func stateError(method string, got EncoderState) error {
	return fmt.Errorf("compress: %s called in state %d", method, got)
}
