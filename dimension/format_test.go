package dimension

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/lasgo/errs"
)

func TestNewPointFormatBasicLayout(t *testing.T) {
	pf, err := NewPointFormat(0, nil)
	require.NoError(t, err)
	require.Equal(t, 20, pf.Stride())
	require.Equal(t, 0, pf.NumExtraBytes())
	require.True(t, pf.Has("X"))
	require.True(t, pf.Has("return_number"))
	require.False(t, pf.Has("red"))
}

func TestNewPointFormatUnsupportedID(t *testing.T) {
	_, err := NewPointFormat(11, nil)
	require.ErrorIs(t, err, errs.ErrUnsupportedFormat)
}

func TestNewPointFormatWithExtraDims(t *testing.T) {
	pf, err := NewPointFormat(0, []ExtraDim{
		{Name: "Classification2", Kind: KindI32},
	})
	require.NoError(t, err)
	require.Equal(t, 24, pf.Stride())
	require.Equal(t, 4, pf.NumExtraBytes())

	d, err := pf.Lookup("Classification2")
	require.NoError(t, err)
	whole, ok := d.Placement.(Whole)
	require.True(t, ok)
	require.Equal(t, 20, whole.Offset)
}

func TestNewPointFormatExtraDimNameTooLong(t *testing.T) {
	_, err := NewPointFormat(0, []ExtraDim{
		{Name: "this name is most certainly far longer than thirty two bytes", Kind: KindI32},
	})
	require.ErrorIs(t, err, errs.ErrNameTooLong)
}

func TestNewPointFormatExtraDimScaleArityMismatch(t *testing.T) {
	_, err := NewPointFormat(0, []ExtraDim{
		{Name: "x", Kind: KindI32x3, Scales: []float64{1, 2}},
	})
	require.ErrorIs(t, err, errs.ErrInvalidScaleArity)
}

func TestNewPointFormatExtraDimRequiresBothScalesAndOffsets(t *testing.T) {
	_, err := NewPointFormat(0, []ExtraDim{
		{Name: "x", Kind: KindI64, Scales: []float64{0.1}},
	})
	require.ErrorIs(t, err, errs.ErrInvalidScaleArity)

	_, err = NewPointFormat(0, []ExtraDim{
		{Name: "x", Kind: KindI64, Offsets: []float64{0.1}},
	})
	require.ErrorIs(t, err, errs.ErrInvalidScaleArity)
}

func TestLookupUnknownDimension(t *testing.T) {
	pf, err := NewPointFormat(0, nil)
	require.NoError(t, err)

	_, err = pf.Lookup("red")
	require.ErrorIs(t, err, errs.ErrInvalidDimension)
}

func TestCheckVersionRequiresMinorVersionForExtendedFormats(t *testing.T) {
	pf, err := NewPointFormat(6, nil)
	require.NoError(t, err)

	require.NoError(t, pf.CheckVersion(1, 4))
	require.ErrorIs(t, pf.CheckVersion(1, 2), errs.ErrIncompatibleVersion)
	require.ErrorIs(t, pf.CheckVersion(2, 4), errs.ErrIncompatibleVersion)
}

func TestCheckVersionRGBRequires1_2(t *testing.T) {
	pf, err := NewPointFormat(2, nil)
	require.NoError(t, err)

	require.NoError(t, pf.CheckVersion(1, 2))
	require.ErrorIs(t, pf.CheckVersion(1, 1), errs.ErrIncompatibleVersion)
}

func TestComposedFieldsAndPlacement(t *testing.T) {
	pf, err := NewPointFormat(0, nil)
	require.NoError(t, err)

	require.ElementsMatch(t, []string{"bit_fields", "raw_classification"}, pf.ComposedFields())

	w, ok := pf.ComposedPlacement("bit_fields")
	require.True(t, ok)
	require.Equal(t, Whole{Offset: 14, Size: 1}, w)

	_, ok = pf.ComposedPlacement("nonexistent")
	require.False(t, ok)
}

func TestKindForExtraByteTypeRoundTrip(t *testing.T) {
	for code := uint8(1); code <= 30; code++ {
		k, err := KindForExtraByteType(code)
		require.NoError(t, err)

		back, err := ExtraByteTypeForKind(k)
		require.NoError(t, err)
		require.Equal(t, code, back)
	}
}

func TestKindForExtraByteTypeUnknown(t *testing.T) {
	_, err := KindForExtraByteType(0)
	require.ErrorIs(t, err, errs.ErrUnknownExtraByteType)

	_, err = KindForExtraByteType(31)
	require.ErrorIs(t, err, errs.ErrUnknownExtraByteType)
}
