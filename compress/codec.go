package compress

// Compressor compresses a block of bytes in one shot.
//
// Memory management mirrors the teacher convention: the returned slice is
// newly allocated and owned by the caller, the input slice is never modified.
type Compressor interface {
	Compress(data []byte) ([]byte, error)
}

// Decompressor decompresses a block of bytes in one shot.
type Decompressor interface {
	Decompress(data []byte) ([]byte, error)
}

// Codec combines Compressor and Decompressor.
type Codec interface {
	Compressor
	Decompressor
}
