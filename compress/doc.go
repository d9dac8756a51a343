// Package compress implements lasgo's compression plug-point: the back-end
// abstraction a LAS writer/reader uses to produce and consume LAZ-compressed
// point data.
//
// A Backend is one entry in an ordered preference list (see Registry). Each
// backend can build an Encoder (write side) or a Decoder (read side). The
// first available backend whose constructor succeeds is used; construction
// failures are non-fatal and fall through to the next entry, matching the
// selection policy mebo uses for its own pluggable Codec implementations
// (compress.CreateCodec / compress.GetCodec in the teacher repo), widened
// here to a full encoder/decoder lifecycle instead of a single Compress call.
//
// Two backend families are provided:
//   - an in-process backend (NewZstdBackend, NewLZ4Backend) that compresses point
//     bytes in the same process using github.com/klauspost/compress/zstd or
//     github.com/pierrec/lz4/v4.
//   - an external-process backend (ExternalProcessBackend) that shells out to
//     an laszip-compatible executable via "-stdin -olaz -stdout".
//
// Neither backend claims bit-exact compatibility with the real LASzip
// entropy coder; that coder is explicitly out of scope (see spec.md §1).
// What is in scope, and what this package implements faithfully, is the
// plug-point itself: capability probing, the Created→HeaderWritten→Points→
// Done→HeaderRewritten lifecycle, and the external-process chunk-table
// offset splice.
package compress
