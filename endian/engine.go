// Package endian provides a byte-order engine abstraction for binary encoding
// and decoding.
//
// It combines encoding/binary's ByteOrder and AppendByteOrder interfaces into
// a single EndianEngine so call sites can use either Put* or Append* without
// caring which concrete binary.ByteOrder they were handed.
//
//	import "github.com/arloliu/lasgo/endian"
//
//	engine := endian.LittleEndian()
//	buf = engine.AppendUint32(buf, offset)
package endian

import "encoding/binary"

// EndianEngine combines ByteOrder and AppendByteOrder from encoding/binary
// into a single interface. binary.LittleEndian and binary.BigEndian both
// satisfy it already.
type EndianEngine interface {
	binary.ByteOrder
	binary.AppendByteOrder
}

// LittleEndian returns the engine used for every on-disk LAS structure.
// The ASPRS LAS specification fixes little-endian byte order; this
// function exists so the rest of the core never spells out
// binary.LittleEndian directly, keeping the byte-order choice in one place.
func LittleEndian() EndianEngine {
	return binary.LittleEndian
}
