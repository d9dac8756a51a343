package lasio

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/lasgo/dimension"
	"github.com/arloliu/lasgo/errs"
	"github.com/arloliu/lasgo/internal/memfile"
	"github.com/arloliu/lasgo/points"
	"github.com/arloliu/lasgo/section"
)

func TestReadMissingLaszipVlrErrors(t *testing.T) {
	format, err := dimension.NewPointFormat(0, nil)
	require.NoError(t, err)

	header := freshHeader(1, 2)
	header.PointFormatID = 0
	header.PointDataRecordLength = uint16(format.Stride())
	header.SetCompressed(true)
	header.NumberOfVLRs = 0
	header.PartialReset()
	header.Update(0, 0, 0, 1)
	header.OffsetToPointData = 227

	var buf bytes.Buffer
	_, err = header.WriteTo(&buf)
	require.NoError(t, err)

	_, err = Read(bytes.NewReader(buf.Bytes()))
	require.ErrorIs(t, err, errs.ErrMissingLaszipVlr)
}

func TestReadRecordLengthMismatchErrors(t *testing.T) {
	format, err := dimension.NewPointFormat(0, nil)
	require.NoError(t, err)

	header := freshHeader(1, 2)
	header.PointFormatID = 0
	header.PointDataRecordLength = uint16(format.Stride() + 4)
	header.OffsetToPointData = 227
	header.PartialReset()

	var buf bytes.Buffer
	_, err = header.WriteTo(&buf)
	require.NoError(t, err)

	_, err = Read(bytes.NewReader(buf.Bytes()))
	require.ErrorIs(t, err, errs.ErrRecordLengthMismatch)
}

func TestReadLegacyFileHasNoEVLRs(t *testing.T) {
	format, err := dimension.NewPointFormat(3, nil)
	require.NoError(t, err)

	header := freshHeader(1, 2)
	dest := memfile.New()

	w, err := Open(dest, header, format, nil, false)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	_, _ = dest.Seek(0, io.SeekStart)
	got, err := Read(dest)
	require.NoError(t, err)
	require.Equal(t, 0, got.EVLRs.Len())
}

func TestReadExtraBytesVlrRoundTrip(t *testing.T) {
	extraDims := []dimension.ExtraDim{
		{Name: "Intensity2", Kind: dimension.KindU16},
	}

	format, err := dimension.NewPointFormat(3, extraDims)
	require.NoError(t, err)

	header := freshHeader(1, 2)
	vlrs := section.NewList()

	payload, err := section.EncodeExtraBytesPayload(extraDims)
	require.NoError(t, err)
	vlrs.Append(section.Record{
		UserID:      section.ExtraBytesUserID,
		RecordID:    section.ExtraBytesRecordID,
		Description: "extra bytes",
		Payload:     payload,
	})

	dest := memfile.New()

	w, err := Open(dest, header, format, vlrs, false)
	require.NoError(t, err)

	chunk := points.Zeros(format, 1)
	col, err := points.Column[uint16](chunk, "Intensity2")
	require.NoError(t, err)
	col.Set(0, 777)

	xs, err := points.Column[int32](chunk, "X")
	require.NoError(t, err)
	xs.Set(0, 1)

	require.NoError(t, w.Write(chunk))
	require.NoError(t, w.Close())

	_, _ = dest.Seek(0, io.SeekStart)
	got, err := Read(dest)
	require.NoError(t, err)

	gotCol, err := points.Column[uint16](got.Points, "Intensity2")
	require.NoError(t, err)
	require.Equal(t, uint16(777), gotCol.Get(0))
}
