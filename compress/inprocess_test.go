package compress

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/lasgo/internal/memfile"
)

func TestStreamBackendEncodeDecodeRoundTrip(t *testing.T) {
	for _, backend := range []Backend{NewZstdBackend(), NewLZ4Backend()} {
		t.Run(backend.Name(), func(t *testing.T) {
			const recordLen = 20

			dest := memfile.New()

			enc, err := backend.NewEncoder(dest, EncodeInfo{RecordLength: recordLen})
			require.NoError(t, err)

			vlr := enc.LasZipVLR()
			require.True(t, backend.Supports(vlr))

			header := bytes.Repeat([]byte{0xAB}, 227)
			require.NoError(t, enc.WriteInitialHeaderAndVLRs(header))

			points := make([]byte, recordLen*10)
			for i := range points {
				points[i] = byte(i)
			}

			require.NoError(t, enc.WritePoints(points[:recordLen*4]))
			require.NoError(t, enc.WritePoints(points[recordLen*4:]))
			require.NoError(t, enc.Done())

			updatedHeader := bytes.Repeat([]byte{0xCD}, 227)
			require.NoError(t, enc.WriteUpdatedHeader(updatedHeader))

			compressedStream := dest.Bytes()
			require.Equal(t, updatedHeader, compressedStream[:227])

			src := bytes.NewReader(compressedStream[227:])
			dec, err := backend.NewDecoder(src, DecodeInfo{RecordLength: recordLen, PointCount: 10})
			require.NoError(t, err)

			out, err := dec.Decode()
			require.NoError(t, err)
			require.Equal(t, points, out)
		})
	}
}

func TestStreamBackendWritePointsBeforeHeaderErrors(t *testing.T) {
	backend := NewZstdBackend()
	enc, err := backend.NewEncoder(memfile.New(), EncodeInfo{RecordLength: 20})
	require.NoError(t, err)

	err = enc.WritePoints(make([]byte, 20))
	require.Error(t, err)
}

func TestStreamBackendSupportsRejectsOtherBackendPayload(t *testing.T) {
	zstd := NewZstdBackend()
	lz4 := NewLZ4Backend()

	encLZ4, err := lz4.NewEncoder(memfile.New(), EncodeInfo{RecordLength: 20})
	require.NoError(t, err)

	require.False(t, zstd.Supports(encLZ4.LasZipVLR()))
	require.True(t, lz4.Supports(encLZ4.LasZipVLR()))
}
