// Package errs defines the sentinel errors returned across lasgo.
//
// Errors are flat package-level values so callers can compare with
// errors.Is. Errors that carry extra context wrap one of these sentinels.
package errs

import "errors"

var (
	// ErrInvalidSignature is returned when the first four header bytes are not "LASF".
	ErrInvalidSignature = errors.New("lasgo: invalid file signature, expected LASF")
	// ErrUnsupportedVersion is returned for a file-format version the core does not know.
	ErrUnsupportedVersion = errors.New("lasgo: unsupported LAS version")
	// ErrUnsupportedFormat is returned for an unknown point format id.
	ErrUnsupportedFormat = errors.New("lasgo: unsupported point format")
	// ErrIncompatibleVersion is returned when a point format requires a newer file version.
	ErrIncompatibleVersion = errors.New("lasgo: point format incompatible with file version")
	// ErrInvalidHeaderSize is returned when an ExtraBytes VLR payload is not a whole number of
	// 192-byte descriptors.
	ErrInvalidHeaderSize = errors.New("lasgo: invalid header size")

	// ErrMissingLaszipVlr is returned when a compressed file has no LasZip VLR.
	ErrMissingLaszipVlr = errors.New("lasgo: compressed file missing laszip VLR")
	// ErrNoLazBackend is returned when every registered compression backend failed.
	ErrNoLazBackend = errors.New("lasgo: no laz backend available")
	// ErrLazError wraps a backend-reported compression/decompression failure.
	ErrLazError = errors.New("lasgo: laz backend error")

	// ErrTruncatedPointData is returned on a short point-data read without recovery opted in.
	ErrTruncatedPointData = errors.New("lasgo: truncated point data")
	// ErrIncompatibleFormat is returned when a writer receives a chunk of the wrong point format.
	ErrIncompatibleFormat = errors.New("lasgo: point chunk format does not match writer format")

	// ErrNameTooLong is returned when a dimension name or description exceeds 32 bytes.
	ErrNameTooLong = errors.New("lasgo: name too long")
	// ErrInvalidScaleArity is returned when a scale/offset array length does not match the type's element count.
	ErrInvalidScaleArity = errors.New("lasgo: invalid scale/offset arity")
	// ErrUnknownExtraByteType is returned for an extra-bytes type code the registry does not know.
	ErrUnknownExtraByteType = errors.New("lasgo: unknown extra byte type")

	// ErrOverflow is returned when a value does not fit a bit-packed sub-field's width.
	ErrOverflow = errors.New("lasgo: value overflows field width")
	// ErrScaledValueOverflow is returned when an unscaled value does not fit the backing integer column.
	ErrScaledValueOverflow = errors.New("lasgo: scaled value overflows integer column")

	// ErrEvlrNotSupported is returned when EVLRs are written against a pre-1.4 file.
	ErrEvlrNotSupported = errors.New("lasgo: EVLRs require file version 1.4 or later")
	// ErrNonSeekableDestination is returned when the writer's destination cannot seek back to offset 0.
	ErrNonSeekableDestination = errors.New("lasgo: destination does not support seeking")
	// ErrWriteAfterDone is returned on a writer state-machine violation (e.g. a second WriteEVLRs call).
	ErrWriteAfterDone = errors.New("lasgo: write called after writer finished")

	// ErrInvalidDimension is returned when a caller looks up a dimension name absent from the format.
	ErrInvalidDimension = errors.New("lasgo: invalid dimension for this point format")
	// ErrRecordLengthMismatch is returned when a record length, record buffer size, or per-record
	// value count does not match what the point format and record count require.
	ErrRecordLengthMismatch = errors.New("lasgo: record length mismatch")
)
