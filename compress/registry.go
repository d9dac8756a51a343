package compress

import (
	"errors"
	"fmt"
	"io"

	"github.com/arloliu/lasgo/errs"
)

// DefaultBackends returns the ordered preference list used when a caller
// doesn't supply its own: the two in-process codecs first (always
// available, no external process needed), then the external-process
// fallback.
func DefaultBackends() []Backend {
	return []Backend{
		NewZstdBackend(),
		NewLZ4Backend(),
		NewExternalProcessBackend("laszip"),
	}
}

// SelectEncoder walks backends in order and returns the first one whose
// constructor succeeds. Unavailable backends and constructor failures are
// accumulated and, only if every backend fails, returned together wrapped
// in ErrNoLazBackend.
func SelectEncoder(backends []Backend, dest io.WriteSeeker, info EncodeInfo) (Encoder, error) {
	var failures []error

	for _, b := range backends {
		if !b.IsAvailable() {
			failures = append(failures, fmt.Errorf("%s: not available", b.Name()))

			continue
		}

		enc, err := b.NewEncoder(dest, info)
		if err != nil {
			failures = append(failures, fmt.Errorf("%s: %w", b.Name(), err))

			continue
		}

		return enc, nil
	}

	return nil, noBackendError(failures)
}

// SelectDecoder picks the backend whose Supports check matches the file's
// LasZip VLR payload.
func SelectDecoder(backends []Backend, src io.Reader, info DecodeInfo) (Decoder, error) {
	var failures []error

	for _, b := range backends {
		if !b.Supports(info.LasZipVLR) {
			continue
		}

		if !b.IsAvailable() {
			failures = append(failures, fmt.Errorf("%s: not available", b.Name()))

			continue
		}

		dec, err := b.NewDecoder(src, info)
		if err != nil {
			failures = append(failures, fmt.Errorf("%s: %w", b.Name(), err))

			continue
		}

		return dec, nil
	}

	return nil, noBackendError(failures)
}

func noBackendError(failures []error) error {
	if len(failures) == 0 {
		return errs.ErrNoLazBackend
	}

	return fmt.Errorf("%w: %w", errs.ErrNoLazBackend, errors.Join(failures...))
}
