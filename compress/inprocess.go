package compress

import (
	"encoding/binary"
	"fmt"
	"io"
)

// lasZipMagic tags the opaque LasZip VLR payload produced by the in-process
// backends so a Reader can tell which backend decodes it, without needing
// the real LASzip VLR's internal layout (out of scope; see spec.md §1).
const lasZipMagic = "LGZ1"

const (
	backendIDZstd byte = 1
	backendIDLZ4  byte = 2
)

// streamBackend is an in-process Backend that frames each point chunk as
// [uint32 compressed length][compressed bytes], terminated by a zero-length
// frame, using the given Codec for the compression step.
type streamBackend struct {
	name     string
	id       byte
	newCodec func() Codec
}

// NewZstdBackend returns the in-process backend built on
// github.com/klauspost/compress/zstd.
func NewZstdBackend() Backend {
	return streamBackend{name: "zstd-inprocess", id: backendIDZstd, newCodec: func() Codec { return zstdCodec{} }}
}

// NewLZ4Backend returns a second, independent in-process backend built on
// github.com/pierrec/lz4/v4, registered after the zstd backend in the
// default preference list.
func NewLZ4Backend() Backend {
	return streamBackend{name: "lz4-inprocess", id: backendIDLZ4, newCodec: func() Codec { return lz4Codec{} }}
}

func (b streamBackend) Name() string { return b.name }

func (b streamBackend) IsAvailable() bool { return true }

func (b streamBackend) Supports(payload []byte) bool {
	return len(payload) >= 5 && string(payload[0:4]) == lasZipMagic && payload[4] == b.id
}

func (b streamBackend) NewEncoder(dest io.WriteSeeker, info EncodeInfo) (Encoder, error) {
	vlr := make([]byte, 5)
	copy(vlr, lasZipMagic)
	vlr[4] = b.id

	return &streamEncoder{
		dest:      dest,
		codec:     b.newCodec(),
		recordLen: info.RecordLength,
		vlr:       vlr,
		state:     EncoderCreated,
	}, nil
}

func (b streamBackend) NewDecoder(src io.Reader, info DecodeInfo) (Decoder, error) {
	return &streamDecoder{
		src:        src,
		codec:      b.newCodec(),
		recordLen:  info.RecordLength,
		pointCount: info.PointCount,
	}, nil
}

type streamEncoder struct {
	dest      io.WriteSeeker
	codec     Codec
	recordLen int
	vlr       []byte
	state     EncoderState
}

func (e *streamEncoder) LasZipVLR() []byte { return e.vlr }

// SetPointDataOffset is a no-op: the in-process framing needs no
// out-of-band offset, since each chunk carries its own length prefix.
func (e *streamEncoder) SetPointDataOffset(int) {}

func (e *streamEncoder) WriteInitialHeaderAndVLRs(headerAndVLRs []byte) error {
	if e.state != EncoderCreated {
		return stateError("WriteInitialHeaderAndVLRs", e.state)
	}

	if _, err := e.dest.Write(headerAndVLRs); err != nil {
		return err
	}

	e.state = EncoderHeaderWritten

	return nil
}

func (e *streamEncoder) WritePoints(data []byte) error {
	if e.state != EncoderHeaderWritten && e.state != EncoderPoints {
		return stateError("WritePoints", e.state)
	}

	e.state = EncoderPoints

	// An empty chunk writes no frame: a zero-length frame ends the stream.
	if len(data) == 0 {
		return nil
	}

	compressed, err := e.codec.Compress(data)
	if err != nil {
		return fmt.Errorf("compress: %w", err)
	}

	var lenBuf [4]byte
	binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(compressed)))

	if _, err := e.dest.Write(lenBuf[:]); err != nil {
		return err
	}

	if len(compressed) > 0 {
		if _, err := e.dest.Write(compressed); err != nil {
			return err
		}
	}

	return nil
}

// Done writes the terminal zero-length chunk frame.
func (e *streamEncoder) Done() error {
	if e.state != EncoderHeaderWritten && e.state != EncoderPoints {
		return stateError("Done", e.state)
	}

	var lenBuf [4]byte
	if _, err := e.dest.Write(lenBuf[:]); err != nil {
		return err
	}

	e.state = EncoderDone

	return nil
}

func (e *streamEncoder) WriteUpdatedHeader(header []byte) error {
	if e.state != EncoderDone {
		return stateError("WriteUpdatedHeader", e.state)
	}

	end, err := e.dest.Seek(0, io.SeekCurrent)
	if err != nil {
		return err
	}

	if _, err := e.dest.Seek(0, io.SeekStart); err != nil {
		return err
	}

	if _, err := e.dest.Write(header); err != nil {
		return err
	}

	if _, err := e.dest.Seek(end, io.SeekStart); err != nil {
		return err
	}

	e.state = EncoderHeaderRewritten

	return nil
}

type streamDecoder struct {
	src        io.Reader
	codec      Codec
	recordLen  int
	pointCount uint64
}

func (d *streamDecoder) Decode() ([]byte, error) {
	want := int(d.pointCount) * d.recordLen
	out := make([]byte, 0, want)

	for {
		var lenBuf [4]byte
		if _, err := io.ReadFull(d.src, lenBuf[:]); err != nil {
			return nil, fmt.Errorf("compress: read chunk length: %w", err)
		}

		n := binary.LittleEndian.Uint32(lenBuf[:])
		if n == 0 {
			break
		}

		compressed := make([]byte, n)
		if _, err := io.ReadFull(d.src, compressed); err != nil {
			return nil, fmt.Errorf("compress: read chunk: %w", err)
		}

		decompressed, err := d.codec.Decompress(compressed)
		if err != nil {
			return nil, fmt.Errorf("compress: %w", err)
		}

		out = append(out, decompressed...)
	}

	if len(out) != want {
		return nil, fmt.Errorf("compress: decoded %d bytes, want %d", len(out), want)
	}

	return out, nil
}
