package lasgo

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/lasgo/dimension"
	"github.com/arloliu/lasgo/errs"
	"github.com/arloliu/lasgo/internal/memfile"
	"github.com/arloliu/lasgo/points"
)

// TestCreateWriteOpenRoundTrip is scenario S1: set every X/Y/Z column to a
// constant, round-trip through write/read, and see the same constants back.
func TestCreateWriteOpenRoundTrip(t *testing.T) {
	data, err := Create(0)
	require.NoError(t, err)

	const n = 150
	data.Points = points.Zeros(data.Format, n)

	xs, err := points.Column[int32](data.Points, "X")
	require.NoError(t, err)
	ys, err := points.Column[int32](data.Points, "Y")
	require.NoError(t, err)
	zs, err := points.Column[int32](data.Points, "Z")
	require.NoError(t, err)

	for i := 0; i < n; i++ {
		xs.Set(i, 0)
		ys.Set(i, 1)
		zs.Set(i, -152)
	}

	dest := memfile.New()
	require.NoError(t, Write(dest, data, false))

	_, _ = dest.Seek(0, 0)
	got, err := Open(dest)
	require.NoError(t, err)
	require.Equal(t, n, got.Points.Len())

	gotX, err := points.Column[int32](got.Points, "X")
	require.NoError(t, err)
	gotY, err := points.Column[int32](got.Points, "Y")
	require.NoError(t, err)
	gotZ, err := points.Column[int32](got.Points, "Z")
	require.NoError(t, err)

	for i := 0; i < n; i++ {
		require.Equal(t, int32(0), gotX.Get(i))
		require.Equal(t, int32(1), gotY.Get(i))
		require.Equal(t, int32(-152), gotZ.Get(i))
	}
}

// TestCreateFormatWithoutRGBRejectsRedColumn is scenario S2: point format 0
// has no "red" dimension at all.
func TestCreateFormatWithoutRGBRejectsRedColumn(t *testing.T) {
	data, err := Create(0)
	require.NoError(t, err)

	data.Points = points.Zeros(data.Format, 1)

	_, err = points.Column[uint16](data.Points, "red")
	require.ErrorIs(t, err, errs.ErrInvalidDimension)
}

// TestCreateFormat6DefaultsToVersion14AndRejectsOlderPin is scenario S3.
func TestCreateFormat6DefaultsToVersion14AndRejectsOlderPin(t *testing.T) {
	data, err := Create(6)
	require.NoError(t, err)
	require.Equal(t, uint8(1), data.Header.VersionMajor)
	require.Equal(t, uint8(4), data.Header.VersionMinor)

	_, err = Create(6, WithVersion(1, 2))
	require.ErrorIs(t, err, errs.ErrIncompatibleVersion)
}

// TestExtraDimWithSpacesRoundTrips is scenario S5: a named extra dimension
// survives a write/read cycle, accessible only by name (no attribute-style
// access is offered, matching spec.md's decision).
func TestExtraDimWithSpacesRoundTrips(t *testing.T) {
	extraDims := []dimension.ExtraDim{
		{Name: "Name With Spaces", Kind: dimension.KindI32},
	}

	data, err := Create(0, WithExtraDims(extraDims))
	require.NoError(t, err)

	data.Points = points.Zeros(data.Format, 1)

	col, err := points.Column[int32](data.Points, "Name With Spaces")
	require.NoError(t, err)
	col.Set(0, 789464)

	dest := memfile.New()
	require.NoError(t, Write(dest, data, false))

	_, _ = dest.Seek(0, 0)
	got, err := Open(dest)
	require.NoError(t, err)

	gotCol, err := points.Column[int32](got.Points, "Name With Spaces")
	require.NoError(t, err)
	require.Equal(t, int32(789464), gotCol.Get(0))
}

// TestExtraDimNameTooLongErrors is scenario S6.
func TestExtraDimNameTooLongErrors(t *testing.T) {
	longName := make([]byte, 70)
	for i := range longName {
		longName[i] = 'a'
	}

	extraDims := []dimension.ExtraDim{
		{Name: string(longName), Kind: dimension.KindI32},
	}

	_, err := Create(0, WithExtraDims(extraDims))
	require.ErrorIs(t, err, errs.ErrNameTooLong)
}

// TestExtraDimVectorWithScalesAndOffsets is scenario S7: a 3-element extra
// dimension with per-component scale/offset reads and writes directly in
// scaled units via ScaledVectorComponent (spec.md §4.3/§4.4), not as a raw
// integer column the caller must unscale by hand.
func TestExtraDimVectorWithScalesAndOffsets(t *testing.T) {
	extraDims := []dimension.ExtraDim{
		{Name: "x", Kind: dimension.KindI32x3, Scales: []float64{1, 2, 3}, Offsets: []float64{10, 20, 30}},
	}

	data, err := Create(0, WithExtraDims(extraDims))
	require.NoError(t, err)

	data.Points = points.Zeros(data.Format, 1)

	c0, err := points.ScaledVectorComponent[int32](data.Points, "x", 0)
	require.NoError(t, err)
	c1, err := points.ScaledVectorComponent[int32](data.Points, "x", 1)
	require.NoError(t, err)
	c2, err := points.ScaledVectorComponent[int32](data.Points, "x", 2)
	require.NoError(t, err)

	// Reading the three components at the zero raw value yields the
	// declared offsets directly, matching pylas's
	// test_scaled_extra_byte_array_type.
	require.Equal(t, float64(10), c0.Get(0))
	require.Equal(t, float64(20), c1.Get(0))
	require.Equal(t, float64(30), c2.Get(0))

	require.NoError(t, c0.Set(0, 42))
	require.NoError(t, c1.Set(0, 82))
	require.NoError(t, c2.Set(0, 123))

	dest := memfile.New()
	require.NoError(t, Write(dest, data, false))

	_, _ = dest.Seek(0, 0)
	got, err := Open(dest)
	require.NoError(t, err)

	gc0, err := points.ScaledVectorComponent[int32](got.Points, "x", 0)
	require.NoError(t, err)
	gc1, err := points.ScaledVectorComponent[int32](got.Points, "x", 1)
	require.NoError(t, err)
	gc2, err := points.ScaledVectorComponent[int32](got.Points, "x", 2)
	require.NoError(t, err)

	require.Equal(t, float64(42), gc0.Get(0))
	require.Equal(t, float64(82), gc1.Get(0))
	require.Equal(t, float64(123), gc2.Get(0))
}

// TestExtraDimScaleOffsetRequiresBoth is grounded on pylas's
// test_cant_create_scaled_extra_bytes_without_both_offsets_and_scales:
// declaring only one of scales/offsets is rejected even when its arity
// matches the element count.
func TestExtraDimScaleOffsetRequiresBoth(t *testing.T) {
	_, err := Create(0, WithExtraDims([]dimension.ExtraDim{
		{Name: "scale_only", Kind: dimension.KindI64, Scales: []float64{0.1}},
	}))
	require.ErrorIs(t, err, errs.ErrInvalidScaleArity)

	_, err = Create(0, WithExtraDims([]dimension.ExtraDim{
		{Name: "offset_only", Kind: dimension.KindI64, Offsets: []float64{0.1}},
	}))
	require.ErrorIs(t, err, errs.ErrInvalidScaleArity)
}

func TestConvertPreservesSharedDimensionsAndZeroFillsNew(t *testing.T) {
	data, err := Create(0)
	require.NoError(t, err)

	data.Points = points.Zeros(data.Format, 2)
	xs, err := points.Column[int32](data.Points, "X")
	require.NoError(t, err)
	xs.Set(0, 111)
	xs.Set(1, 222)

	converted, err := data.Convert(3)
	require.NoError(t, err)
	require.Equal(t, uint8(3), converted.Format.ID())
	require.Equal(t, 2, converted.Points.Len())

	convX, err := points.Column[int32](converted.Points, "X")
	require.NoError(t, err)
	require.Equal(t, int32(111), convX.Get(0))
	require.Equal(t, int32(222), convX.Get(1))

	gpsTime, err := points.Column[float64](converted.Points, "gps_time")
	require.NoError(t, err)
	require.Equal(t, float64(0), gpsTime.Get(0))
}
