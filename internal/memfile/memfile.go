// Package memfile provides an in-memory io.ReadWriteSeeker with Truncate,
// standing in for *os.File in tests that exercise the reader/writer's
// seek-back-and-rewrite-the-header behavior without touching disk.
package memfile

import (
	"errors"
	"io"
)

// Buffer is a growable, seekable, truncatable in-memory byte buffer.
type Buffer struct {
	data []byte
	pos  int64
}

// New returns an empty Buffer.
func New() *Buffer { return &Buffer{} }

// NewFrom returns a Buffer seeded with a copy of data.
func NewFrom(data []byte) *Buffer {
	b := make([]byte, len(data))
	copy(b, data)

	return &Buffer{data: b}
}

// Bytes returns the buffer's current contents.
func (f *Buffer) Bytes() []byte { return f.data }

func (f *Buffer) Read(p []byte) (int, error) {
	if f.pos >= int64(len(f.data)) {
		return 0, io.EOF
	}

	n := copy(p, f.data[f.pos:])
	f.pos += int64(n)

	return n, nil
}

func (f *Buffer) Write(p []byte) (int, error) {
	end := f.pos + int64(len(p))
	if end > int64(len(f.data)) {
		grown := make([]byte, end)
		copy(grown, f.data)
		f.data = grown
	}

	n := copy(f.data[f.pos:end], p)
	f.pos = end

	return n, nil
}

func (f *Buffer) Seek(offset int64, whence int) (int64, error) {
	var newPos int64

	switch whence {
	case io.SeekStart:
		newPos = offset
	case io.SeekCurrent:
		newPos = f.pos + offset
	case io.SeekEnd:
		newPos = int64(len(f.data)) + offset
	default:
		return 0, errors.New("memfile: invalid whence")
	}

	if newPos < 0 {
		return 0, errors.New("memfile: negative position")
	}

	f.pos = newPos

	return f.pos, nil
}

// Truncate resizes the buffer to size bytes, zero-filling on growth.
func (f *Buffer) Truncate(size int64) error {
	if size < 0 {
		return errors.New("memfile: negative size")
	}

	if size <= int64(len(f.data)) {
		f.data = f.data[:size]

		return nil
	}

	grown := make([]byte, size)
	copy(grown, f.data)
	f.data = grown

	return nil
}

// Close is a no-op, satisfying io.Closer for callers that want to own the
// destination.
func (f *Buffer) Close() error { return nil }
