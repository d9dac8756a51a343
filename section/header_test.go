package section

import (
	"bytes"
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/lasgo/errs"
)

func sampleHeader(major, minor uint8) *Header {
	h := &Header{
		FileSourceID:          1,
		GlobalEncoding:        0,
		VersionMajor:          major,
		VersionMinor:          minor,
		SystemIdentifier:      "lasgo",
		GeneratingSoftware:    "lasgo test suite",
		CreationDayOfYear:     42,
		CreationYear:          2026,
		OffsetToPointData:     227,
		NumberOfVLRs:          0,
		PointFormatID:         3,
		PointDataRecordLength: 34,
		XScale:                0.01,
		YScale:                0.01,
		ZScale:                0.01,
		XOffset:               1000,
		YOffset:               2000,
		ZOffset:               0,
	}
	h.GUID[0] = 0xAB

	return h
}

func TestHeaderWriteThenReadRoundTrip1_2(t *testing.T) {
	h := sampleHeader(1, 2)
	h.LegacyNumberOfPointRecords = 150
	h.LegacyNumberOfPointsByReturn[0] = 150

	var buf bytes.Buffer
	n, err := h.WriteTo(&buf)
	require.NoError(t, err)
	require.Equal(t, int64(HeaderSize1_2), n)
	require.Equal(t, HeaderSize1_2, buf.Len())

	var got Header
	_, err = got.ReadFrom(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)

	require.Equal(t, h.SystemIdentifier, got.SystemIdentifier)
	require.Equal(t, h.GeneratingSoftware, got.GeneratingSoftware)
	require.Equal(t, h.PointFormatID, got.PointFormatID)
	require.Equal(t, h.LegacyNumberOfPointRecords, got.LegacyNumberOfPointRecords)
	require.InDelta(t, h.XScale, got.XScale, 1e-12)
	require.InDelta(t, h.XOffset, got.XOffset, 1e-12)
	require.Equal(t, h.GUID, got.GUID)
	require.False(t, got.IsModern())
}

func TestHeaderWriteThenReadRoundTrip1_3(t *testing.T) {
	h := sampleHeader(1, 3)
	h.StartOfWaveformDataPacketRecord = 999

	var buf bytes.Buffer
	_, err := h.WriteTo(&buf)
	require.NoError(t, err)
	require.Equal(t, HeaderSize1_3, buf.Len())

	var got Header
	_, err = got.ReadFrom(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	require.Equal(t, uint64(999), got.StartOfWaveformDataPacketRecord)
}

func TestHeaderWriteThenReadRoundTrip1_4(t *testing.T) {
	h := sampleHeader(1, 4)
	h.NumberOfPointRecords = 123456
	h.NumberOfPointsByReturn[0] = 100000
	h.NumberOfPointsByReturn[4] = 23456
	h.StartOfFirstEVLR = 5000
	h.NumberOfEVLRs = 2

	var buf bytes.Buffer
	_, err := h.WriteTo(&buf)
	require.NoError(t, err)
	require.Equal(t, HeaderSize1_4, buf.Len())

	var got Header
	_, err = got.ReadFrom(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)

	require.True(t, got.IsModern())
	require.Equal(t, uint64(123456), got.NumberOfPointRecords)
	require.Equal(t, uint64(100000), got.NumberOfPointsByReturn[0])
	require.Equal(t, uint64(23456), got.NumberOfPointsByReturn[4])
	require.Equal(t, uint64(5000), got.StartOfFirstEVLR)
	require.Equal(t, uint32(2), got.NumberOfEVLRs)
	require.Equal(t, uint64(123456), got.PointCount())
}

func TestHeaderReadFromInvalidSignature(t *testing.T) {
	data := make([]byte, HeaderSize1_2)
	copy(data, "NOPE")

	var h Header
	_, err := h.ReadFrom(bytes.NewReader(data))
	require.ErrorIs(t, err, errs.ErrInvalidSignature)
}

func TestHeaderReadFromUnsupportedVersion(t *testing.T) {
	data := make([]byte, HeaderSize1_2)
	copy(data, Signature)
	data[24] = 2 // major version 2: unsupported

	var h Header
	_, err := h.ReadFrom(bytes.NewReader(data))
	require.ErrorIs(t, err, errs.ErrUnsupportedVersion)
}

func TestHeaderWriteToUnsupportedVersion(t *testing.T) {
	h := sampleHeader(1, 9)

	var buf bytes.Buffer
	_, err := h.WriteTo(&buf)
	require.ErrorIs(t, err, errs.ErrUnsupportedVersion)
}

func TestHeaderCompressedBitRoundTrips(t *testing.T) {
	h := sampleHeader(1, 4)
	h.PointFormatID = 7
	h.SetCompressed(true)

	var buf bytes.Buffer
	_, err := h.WriteTo(&buf)
	require.NoError(t, err)
	require.Equal(t, byte(7|compressedFormatBit), buf.Bytes()[104])

	var got Header
	_, err = got.ReadFrom(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	require.True(t, got.Compressed)
	require.Equal(t, uint8(7), got.PointFormatID)
}

func TestHeaderPartialResetSeedsExtremaForUpdate(t *testing.T) {
	h := sampleHeader(1, 4)
	h.MinX, h.MaxX = 5, 5
	h.NumberOfPointRecords = 99
	h.NumberOfPointsByReturn[0] = 99

	h.PartialReset()

	require.Equal(t, uint64(0), h.NumberOfPointRecords)
	require.Equal(t, uint64(0), h.NumberOfPointsByReturn[0])
	require.True(t, math.IsInf(h.MinX, 1))
	require.True(t, math.IsInf(h.MaxX, -1))
}

func TestHeaderUpdateFoldsBboxAndReturnCounts(t *testing.T) {
	h := sampleHeader(1, 4)
	h.PartialReset()

	h.Update(1, 2, 3, 1)
	h.Update(-1, 5, 0, 2)
	h.Update(10, -5, 7, 1)

	require.Equal(t, -1.0, h.MinX)
	require.Equal(t, 10.0, h.MaxX)
	require.Equal(t, -5.0, h.MinY)
	require.Equal(t, 5.0, h.MaxY)
	require.Equal(t, 0.0, h.MinZ)
	require.Equal(t, 7.0, h.MaxZ)
	require.Equal(t, uint64(3), h.NumberOfPointRecords)
	require.Equal(t, uint64(2), h.NumberOfPointsByReturn[0])
	require.Equal(t, uint64(1), h.NumberOfPointsByReturn[1])
}

func TestHeaderUpdateLegacyUsesFiveSlotTable(t *testing.T) {
	h := sampleHeader(1, 2)
	h.PartialReset()

	h.Update(0, 0, 0, 1)
	h.Update(0, 0, 0, 6) // beyond the 5-slot legacy table: dropped

	require.Equal(t, uint64(2), h.PointCount())
	require.Equal(t, uint64(1), h.LegacyNumberOfPointsByReturn[0])
}

func TestHeaderSystemIdentifierTruncatesToFieldWidth(t *testing.T) {
	h := sampleHeader(1, 2)
	h.SystemIdentifier = "this identifier is far longer than thirty two bytes wide"

	var buf bytes.Buffer
	_, err := h.WriteTo(&buf)
	require.NoError(t, err)

	var got Header
	_, err = got.ReadFrom(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	require.Len(t, got.SystemIdentifier, 32)
}
