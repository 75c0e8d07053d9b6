package buffer

import (
	"encoding/binary"
	"unsafe"
)

// Integer is the set of integral types that can be read and written.
type Integer interface {
	~int8 | ~int16 | ~int32 | ~int64 | ~uint8 | ~uint16 | ~uint32 | ~uint64
}

// Reader is implemented by *Iterator and *ConstIterator.
type Reader interface {
	readCursor() *cursor
}

var (
	_ Reader = (*Iterator)(nil)
	_ Reader = (*ConstIterator)(nil)
)

// Read reads a T in native byte order and advances the cursor by its size.
func Read[T Integer](r Reader) T { return readAs[T](r, binary.NativeEndian) }

// ReadL reads a little-endian T.
func ReadL[T Integer](r Reader) T { return readAs[T](r, binary.LittleEndian) }

// ReadB reads a big-endian T.
func ReadB[T Integer](r Reader) T { return readAs[T](r, binary.BigEndian) }

// Write writes v in native byte order and advances the cursor by its size.
// It panics if the bytes would pass the end or touch the zero region.
func Write[T Integer](it *Iterator, v T) { writeAs(it, v, binary.NativeEndian) }

// WriteL writes v in little-endian order.
func WriteL[T Integer](it *Iterator, v T) { writeAs(it, v, binary.LittleEndian) }

// WriteB writes v in big-endian order.
func WriteB[T Integer](it *Iterator, v T) { writeAs(it, v, binary.BigEndian) }

func sizeOf[T Integer]() int {
	var v T
	return int(unsafe.Sizeof(v))
}

func readAs[T Integer](r Reader, order binary.ByteOrder) T {
	var scratch [8]byte
	b := scratch[:sizeOf[T]()]
	r.readCursor().read(b)
	switch len(b) {
	case 1:
		return T(b[0])
	case 2:
		return T(order.Uint16(b))
	case 4:
		return T(order.Uint32(b))
	default:
		return T(order.Uint64(b))
	}
}

func writeAs[T Integer](it *Iterator, v T, order binary.ByteOrder) {
	var scratch [8]byte
	b := scratch[:sizeOf[T]()]
	switch len(b) {
	case 1:
		b[0] = byte(v)
	case 2:
		order.PutUint16(b, uint16(v))
	case 4:
		order.PutUint32(b, uint32(v))
	default:
		order.PutUint64(b, uint64(v))
	}
	it.c.write(b)
}
