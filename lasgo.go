// Package lasgo provides a high-performance point-record engine for the
// LAS/LAZ lidar file formats.
//
// lasgo is built around one in-memory aggregate, lasio.LasData: a header,
// a VLR list, a packed point record, and an EVLR list. The core separates
// concerns the way a columnar time-series format would: a static
// dimension registry (dimension.PointFormat) describes the shape of a
// point record for each of the eleven standard point-format ids plus any
// file-declared extra bytes; points.PackedPointRecord is a strided,
// column-addressable view over the record bytes; section.Header and
// section.List parse and serialize the fixed on-disk header and VLR/EVLR
// lists; and compress.Backend plugs in one of several interchangeable
// compression back-ends behind a common encoder/decoder lifecycle.
//
// # Basic Usage
//
// Reading a file:
//
//	f, _ := os.Open("scan.las")
//	defer f.Close()
//	data, err := lasgo.Open(f)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	xs, _ := points.ScaledColumn[int32](data.Points, "X", data.Header.XScale, data.Header.XOffset)
//	fmt.Println(xs.Get(0))
//
// Writing a file:
//
//	data, _ := lasgo.Create(3)
//	data.Points = points.Zeros(data.Format, 1)
//	col, _ := points.Column[int32](data.Points, "X")
//	col.Set(0, 12345)
//
//	f, _ := os.Create("out.las")
//	defer f.Close()
//	if err := lasgo.Write(f, data, false); err != nil {
//	    log.Fatal(err)
//	}
//
// For fine-grained control over the write's streaming contract (chunked
// point writes, EVLRs, a specific compression back-end list), use the
// lasio package directly.
package lasgo

import (
	"io"

	"github.com/arloliu/lasgo/dimension"
	"github.com/arloliu/lasgo/internal/options"
	"github.com/arloliu/lasgo/lasio"
	"github.com/arloliu/lasgo/points"
	"github.com/arloliu/lasgo/section"
)

// Open reads a complete LasData aggregate (C7) from a readable, seekable
// stream: header, VLRs, point records (decompressing if the header
// reports a compressed format), and EVLRs if the file is version >= 1.4
// and declares any.
//
// This is a thin wrapper over lasio.Read for the common case; use
// lasio.Read directly for ReaderOption control (a custom backend
// preference list, partial-read recovery, a diagnostics callback).
func Open(r io.ReadSeeker, opts ...lasio.ReaderOption) (*lasio.LasData, error) {
	return lasio.Read(r, opts...)
}

// Write streams a complete LasData aggregate to a writable, seekable
// destination in one call: open, one Write of the whole point record,
// an optional WriteEVLRs if data.EVLRs is non-empty, then close.
//
// compressEnabled selects whether the point stream is written through a
// compression back-end (C9). This is a thin wrapper over lasio.Open/
// Write/WriteEVLRs/Close for the common "I already have the whole point
// record in memory" case; use lasio directly to stream points
// chunk-by-chunk instead of materializing them all up front.
func Write(dest io.WriteSeeker, data *lasio.LasData, compressEnabled bool, opts ...lasio.WriterOption) error {
	w, err := lasio.Open(dest, data.Header, data.Format, data.VLRs, compressEnabled, opts...)
	if err != nil {
		return err
	}

	if data.Points != nil && data.Points.Len() > 0 {
		if err := w.Write(data.Points); err != nil {
			return err
		}
	}

	if data.EVLRs != nil && data.EVLRs.Len() > 0 {
		if err := w.WriteEVLRs(data.EVLRs.All()); err != nil {
			return err
		}
	}

	return w.Close()
}

// createConfig holds Create's functional options.
type createConfig struct {
	major, minor uint8
	versionSet   bool
	xScale       float64
	yScale       float64
	zScale       float64
	xOffset      float64
	yOffset      float64
	zOffset      float64
	extraDims    []dimension.ExtraDim
	software     string
}

// CreateOption configures Create.
type CreateOption = options.Option[*createConfig]

// WithVersion pins the file to a specific LAS 1.x minor version instead
// of Create's default (1.2, or the point format's own minimum if that's
// newer). Create fails with ErrIncompatibleVersion if the pinned version
// is older than the point format requires.
func WithVersion(major, minor uint8) CreateOption {
	return options.NoError(func(c *createConfig) { c.major, c.minor, c.versionSet = major, minor, true })
}

// WithScaleOffset sets the per-axis scale/offset pair used to interpret
// the scaled integer X/Y/Z columns. Defaults to scale 0.01, offset 0 on
// every axis.
func WithScaleOffset(xScale, yScale, zScale, xOffset, yOffset, zOffset float64) CreateOption {
	return options.NoError(func(c *createConfig) {
		c.xScale, c.yScale, c.zScale = xScale, yScale, zScale
		c.xOffset, c.yOffset, c.zOffset = xOffset, yOffset, zOffset
	})
}

// WithExtraDims declares the file's user-defined trailing dimensions.
func WithExtraDims(dims []dimension.ExtraDim) CreateOption {
	return options.NoError(func(c *createConfig) { c.extraDims = dims })
}

// WithGeneratingSoftware sets the header's generating_software field.
func WithGeneratingSoftware(name string) CreateOption {
	return options.NoError(func(c *createConfig) { c.software = name })
}

// Create builds a fresh, empty LasData for the given point-format id: a
// zeroed header (default LAS 1.2, bumped automatically to the point
// format's own minimum version if that's newer), no VLRs other than an
// ExtraBytes VLR describing any dimensions declared via WithExtraDims, a
// zero-record point buffer, no EVLRs.
//
// Returns ErrUnsupportedFormat if formatID is outside 0-10, or
// ErrIncompatibleVersion if WithVersion pins a version older than the
// point format requires (point formats 6-10 require LAS 1.4).
func Create(formatID uint8, opts ...CreateOption) (*lasio.LasData, error) {
	cfg := &createConfig{xScale: 0.01, yScale: 0.01, zScale: 0.01, software: "lasgo"}
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	format, err := dimension.NewPointFormat(formatID, cfg.extraDims)
	if err != nil {
		return nil, err
	}

	major, minor := uint8(1), cfg.minor
	if cfg.versionSet {
		major = cfg.major
	} else {
		minor = 2
		if format.MinVersionMinor() > minor {
			minor = format.MinVersionMinor()
		}
	}

	if err := format.CheckVersion(major, minor); err != nil {
		return nil, err
	}

	header := &section.Header{
		VersionMajor:          major,
		VersionMinor:          minor,
		GeneratingSoftware:    cfg.software,
		PointFormatID:         formatID,
		PointDataRecordLength: uint16(format.Stride()),
		XScale:                cfg.xScale,
		YScale:                cfg.yScale,
		ZScale:                cfg.zScale,
		XOffset:               cfg.xOffset,
		YOffset:               cfg.yOffset,
		ZOffset:               cfg.zOffset,
	}
	header.PartialReset()

	vlrs := section.NewList()
	if len(cfg.extraDims) > 0 {
		payload, err := section.EncodeExtraBytesPayload(cfg.extraDims)
		if err != nil {
			return nil, err
		}

		vlrs.Append(section.Record{
			UserID:      section.ExtraBytesUserID,
			RecordID:    section.ExtraBytesRecordID,
			Description: "extra bytes",
			Payload:     payload,
		})
	}

	return &lasio.LasData{
		Header: header,
		Format: format,
		VLRs:   vlrs,
		Points: points.Empty(format),
		EVLRs:  section.NewList(),
	}, nil
}
