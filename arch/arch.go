// Package arch contains the architecture-specific integer encodings
// fixture files and CLI input use to describe strides and offsets: the
// byte width and endianness of the target the recovered
// memory layout belongs to.
package arch

import (
	"encoding/binary"
)

// Architecture defines the architecture-specific details fixture
// decoding needs for a given machine.
type Architecture struct {
	// IntSize is the size of the int type, in bytes.
	IntSize int
	// PointerSize is the size of a pointer, in bytes.
	PointerSize int
	// ByteOrder is the byte order for ints and pointers.
	ByteOrder binary.ByteOrder
}

func (a *Architecture) Int(buf []byte) int64 {
	return int64(a.Uint(buf))
}

func (a *Architecture) Uint(buf []byte) uint64 {
	if len(buf) != a.IntSize {
		panic("bad IntSize")
	}
	switch a.IntSize {
	case 4:
		return uint64(a.ByteOrder.Uint32(buf[:4]))
	case 8:
		return a.ByteOrder.Uint64(buf[:8])
	}
	panic("no IntSize")
}

func (a *Architecture) Uintptr(buf []byte) uint64 {
	if len(buf) != a.PointerSize {
		panic("bad PointerSize")
	}
	switch a.PointerSize {
	case 4:
		return uint64(a.ByteOrder.Uint32(buf[:4]))
	case 8:
		return a.ByteOrder.Uint64(buf[:8])
	}
	panic("no PointerSize")
}

var AMD64 = Architecture{
	IntSize:     8,
	PointerSize: 8,
	ByteOrder:   binary.LittleEndian,
}

var X86 = Architecture{
	IntSize:     4,
	PointerSize: 4,
	ByteOrder:   binary.LittleEndian,
}

var ARM = Architecture{
	IntSize:     4,
	PointerSize: 4,
	ByteOrder:   binary.LittleEndian,
}
