// Package pool provides a reusable byte-buffer pool used by the writer to
// stage the header and VLR bytes it writes on Open and Close.
package pool

import (
	"io"
	"sync"
)

// Default and max-retained sizes for pooled chunk buffers.
const (
	ChunkBufferDefaultSize = 1024 * 16  // 16KiB, several hundred points at typical strides
	ChunkBufferMaxThreshold = 1024 * 128 // buffers larger than this are not returned to the pool
)

// ByteBuffer is a growable byte buffer whose backing array is meant to be reused via a pool.
type ByteBuffer struct {
	B []byte
}

// NewByteBuffer creates a new ByteBuffer with the given starting capacity.
func NewByteBuffer(defaultSize int) *ByteBuffer {
	return &ByteBuffer{B: make([]byte, 0, defaultSize)}
}

// Bytes returns the underlying byte slice.
func (bb *ByteBuffer) Bytes() []byte {
	return bb.B
}

// Reset empties the buffer while retaining its backing array.
func (bb *ByteBuffer) Reset() {
	bb.B = bb.B[:0]
}

// Len returns the current length of the buffer.
func (bb *ByteBuffer) Len() int {
	return len(bb.B)
}

// Write appends data to the buffer, growing it as needed.
func (bb *ByteBuffer) Write(data []byte) (int, error) {
	bb.B = append(bb.B, data...)

	return len(data), nil
}

// WriteTo writes the buffer's contents to w.
func (bb *ByteBuffer) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(bb.B)

	return int64(n), err
}

// ByteBufferPool pools ByteBuffers to reduce allocation churn when staging bytes for a write.
type ByteBufferPool struct {
	pool         sync.Pool
	maxThreshold int
}

// NewByteBufferPool creates a pool of buffers with the given default size.
// Buffers grown past maxThreshold are discarded instead of returned to the pool.
func NewByteBufferPool(defaultSize, maxThreshold int) *ByteBufferPool {
	return &ByteBufferPool{
		pool: sync.Pool{
			New: func() any { return NewByteBuffer(defaultSize) },
		},
		maxThreshold: maxThreshold,
	}
}

// Get retrieves a ByteBuffer from the pool.
func (bbp *ByteBufferPool) Get() *ByteBuffer {
	bb, _ := bbp.pool.Get().(*ByteBuffer)

	return bb
}

// Put returns a ByteBuffer to the pool for reuse.
func (bbp *ByteBufferPool) Put(bb *ByteBuffer) {
	if bb == nil {
		return
	}

	if bbp.maxThreshold > 0 && cap(bb.B) > bbp.maxThreshold {
		return
	}

	bb.Reset()
	bbp.pool.Put(bb)
}

var chunkBufferPool = NewByteBufferPool(ChunkBufferDefaultSize, ChunkBufferMaxThreshold)

// GetChunkBuffer retrieves a ByteBuffer from the default point-chunk pool.
func GetChunkBuffer() *ByteBuffer {
	return chunkBufferPool.Get()
}

// PutChunkBuffer returns a ByteBuffer to the default point-chunk pool.
func PutChunkBuffer(bb *ByteBuffer) {
	chunkBufferPool.Put(bb)
}
