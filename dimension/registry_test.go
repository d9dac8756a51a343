package dimension

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/lasgo/errs"
)

func TestLookupKnownFormatsHaveExpectedBaseSize(t *testing.T) {
	cases := []struct {
		id       uint8
		baseSize int
	}{
		{0, 20}, {1, 28}, {2, 26}, {3, 34}, {4, 57}, {5, 63},
		{6, 30}, {7, 36}, {8, 38}, {9, 59}, {10, 67},
	}

	for _, c := range cases {
		spec, err := Lookup(c.id)
		require.NoError(t, err)
		require.Equal(t, c.baseSize, spec.BaseSize, "format %d", c.id)
		require.Equal(t, c.id, spec.ID)
	}
}

func TestLookupUnsupportedFormat(t *testing.T) {
	_, err := Lookup(11)
	require.ErrorIs(t, err, errs.ErrUnsupportedFormat)
}

func TestDimensionsCoverRecordContiguously(t *testing.T) {
	for id := uint8(0); id <= 10; id++ {
		spec, err := Lookup(id)
		require.NoError(t, err)

		covered := make([]bool, spec.BaseSize)

		for _, d := range spec.Dims {
			w, ok := d.Placement.(Whole)
			if !ok {
				continue // sub-byte dims are covered via their composed parent
			}

			for i := 0; i < w.Size; i++ {
				require.False(t, covered[w.Offset+i], "format %d: byte %d covered twice (dim %s)", id, w.Offset+i, d.Name)
				covered[w.Offset+i] = true
			}
		}

		for _, w := range spec.Composed {
			for i := 0; i < w.Size; i++ {
				covered[w.Offset+i] = true
			}
		}

		for i, c := range covered {
			require.True(t, c, "format %d: byte %d not covered by any whole-byte dimension", id, i)
		}
	}
}

func TestLegacyBitFieldsCoverTheWholeByte(t *testing.T) {
	spec, err := Lookup(0)
	require.NoError(t, err)

	var bits [8]bool

	for _, d := range spec.Dims {
		s, ok := d.Placement.(Sub)
		if !ok || s.ComposedField != "bit_fields" {
			continue
		}

		for b := s.Lo; b < s.Hi; b++ {
			require.False(t, bits[b], "bit %d claimed twice", b)
			bits[b] = true
		}
	}

	for b, c := range bits {
		require.True(t, c, "bit %d of bit_fields unclaimed", b)
	}
}

func TestExtendedReturnFlagsCoverTheWholeWord(t *testing.T) {
	spec, err := Lookup(6)
	require.NoError(t, err)

	var bits [16]bool

	for _, d := range spec.Dims {
		s, ok := d.Placement.(Sub)
		if !ok || s.ComposedField != "return_flags" {
			continue
		}

		for b := s.Lo; b < s.Hi; b++ {
			require.False(t, bits[b])
			bits[b] = true
		}
	}

	for b, c := range bits {
		require.True(t, c, "bit %d of return_flags unclaimed", b)
	}
}

func TestOptionalDimensionGroups(t *testing.T) {
	spec2, _ := Lookup(2)
	require.True(t, spec2.HasRGB)
	require.False(t, spec2.HasGPSTime)

	spec6, _ := Lookup(6)
	require.True(t, spec6.HasGPSTime)
	require.Equal(t, uint8(4), spec6.MinVersionMinor)

	spec8, _ := Lookup(8)
	require.True(t, spec8.HasNIR)

	spec9, _ := Lookup(9)
	require.True(t, spec9.HasWavePacket)
}
