package dimension

import "github.com/arloliu/lasgo/errs"

// extraByteKindByType maps an ASPRS ExtraBytes VLR descriptor "data_type"
// code to the Kind it declares. Type 0 is "untyped": a raw byte filler
// with no declared element kind, used by generating software purely to
// reserve space; options_bit 0 ("no data") etc. do not apply to it.
var extraByteKindByType = map[uint8]Kind{
	1:  KindU8,
	2:  KindI8,
	3:  KindU16,
	4:  KindI16,
	5:  KindU32,
	6:  KindI32,
	7:  KindU64,
	8:  KindI64,
	9:  KindF32,
	10: KindF64,
	11: KindU8x2,
	12: KindI8x2,
	13: KindU16x2,
	14: KindI16x2,
	15: KindU32x2,
	16: KindI32x2,
	17: KindU64x2,
	18: KindI64x2,
	19: KindF32x2,
	20: KindF64x2,
	21: KindU8x3,
	22: KindI8x3,
	23: KindU16x3,
	24: KindI16x3,
	25: KindU32x3,
	26: KindI32x3,
	27: KindU64x3,
	28: KindI64x3,
	29: KindF32x3,
	30: KindF64x3,
}

// KindForExtraByteType resolves an ExtraBytes VLR "data_type" code (1-30)
// to its Kind. Type 0 ("untyped") is not a Kind; callers must special-case
// it as an opaque byte filler of the descriptor's declared options size.
func KindForExtraByteType(code uint8) (Kind, error) {
	k, ok := extraByteKindByType[code]
	if !ok {
		return KindInvalid, errs.ErrUnknownExtraByteType
	}

	return k, nil
}

// ExtraByteTypeForKind is the inverse of KindForExtraByteType, used when
// writing an ExtraBytes VLR descriptor for a dimension of a known Kind.
func ExtraByteTypeForKind(k Kind) (uint8, error) {
	for code, kind := range extraByteKindByType {
		if kind == k {
			return code, nil
		}
	}

	return 0, errs.ErrUnknownExtraByteType
}
