package lasio

import (
	"github.com/arloliu/lasgo/compress"
	"github.com/arloliu/lasgo/diag"
	"github.com/arloliu/lasgo/internal/options"
)

// readerConfig holds Reader's functional options.
type readerConfig struct {
	backends     []compress.Backend
	warn         diag.Func
	allowPartial bool
}

// ReaderOption configures a Reader.
type ReaderOption = options.Option[*readerConfig]

// WithReaderBackends overrides the ordered compression back-end
// preference list a Reader uses to decode a compressed file. Defaults to
// compress.DefaultBackends().
func WithReaderBackends(backends []compress.Backend) ReaderOption {
	return options.NoError(func(c *readerConfig) { c.backends = backends })
}

// WithReaderWarnFunc installs the diagnostic callback raised for
// non-fatal conditions (an unrecognized VLR kind, a truncated read
// recovered by clamping the point count).
func WithReaderWarnFunc(fn diag.Func) ReaderOption {
	return options.NoError(func(c *readerConfig) { c.warn = fn })
}

// AllowPartialReads opts an uncompressed read into "read what's there"
// recovery: a short point-data read is clamped to a whole number of
// records instead of failing with ErrTruncatedPointData, and a
// diag.KindTruncatedReadRecovered warning is raised via the reader's warn
// func. Not consulted for a compressed read: the back-end owns framing
// and reports its own short-read failures.
func AllowPartialReads() ReaderOption {
	return options.NoError(func(c *readerConfig) { c.allowPartial = true })
}

func newReaderConfig(opts []ReaderOption) (*readerConfig, error) {
	cfg := &readerConfig{backends: compress.DefaultBackends()}
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	return cfg, nil
}

// writerConfig holds Writer's functional options.
type writerConfig struct {
	backends []compress.Backend
	warn     diag.Func
	owned    bool
}

// WriterOption configures a Writer.
type WriterOption = options.Option[*writerConfig]

// WithWriterBackends overrides the ordered compression back-end
// preference list a Writer uses when opened with compress=true. Defaults
// to compress.DefaultBackends().
func WithWriterBackends(backends []compress.Backend) WriterOption {
	return options.NoError(func(c *writerConfig) { c.backends = backends })
}

// WithWriterWarnFunc installs the diagnostic callback raised for
// non-fatal conditions (an over-length VLR description truncated on
// write).
func WithWriterWarnFunc(fn diag.Func) WriterOption {
	return options.NoError(func(c *writerConfig) { c.warn = fn })
}

// OwnDestination tells Close to close the destination stream once the
// writer has finished with it, for callers that hand Open an
// io.WriteSeeker they don't otherwise manage (e.g. one opened from a
// path via Create).
func OwnDestination() WriterOption {
	return options.NoError(func(c *writerConfig) { c.owned = true })
}

func newWriterConfig(opts []WriterOption) (*writerConfig, error) {
	cfg := &writerConfig{backends: compress.DefaultBackends()}
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	return cfg, nil
}
