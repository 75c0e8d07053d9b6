package buffer

import "fmt"

// Buffer owns the storage of one zero-compressed packet buffer. Only the
// header and trailer bytes are allocated.
type Buffer struct {
	bytes   []byte
	header  int
	zero    int
	trailer int
}

// New allocates a buffer with the given region sizes.
func New(header, zero, trailer int) *Buffer {
	if header < 0 || zero < 0 || trailer < 0 {
		panic(fmt.Sprintf("buffer.New: negative region size (%d, %d, %d)", header, zero, trailer))
	}
	return &Buffer{
		bytes:   make([]byte, header+trailer),
		header:  header,
		zero:    zero,
		trailer: trailer,
	}
}

// Size is the logical size of the buffer.
func (b *Buffer) Size() int { return b.header + b.zero + b.trailer }

// HeaderSize is the size of the stored region before the zero region.
func (b *Buffer) HeaderSize() int { return b.header }

// ZeroSize is the size of the zero region.
func (b *Buffer) ZeroSize() int { return b.zero }

// TrailerSize is the size of the stored region after the zero region.
func (b *Buffer) TrailerSize() int { return b.trailer }

// StoredSize is the number of bytes actually allocated.
func (b *Buffer) StoredSize() int { return len(b.bytes) }

// Begin returns a writable iterator at offset 0.
func (b *Buffer) Begin() Iterator { return b.iterator(0) }

// End returns a writable iterator at Size().
func (b *Buffer) End() Iterator { return b.iterator(b.Size()) }

// CBegin returns a read-only iterator at offset 0.
func (b *Buffer) CBegin() ConstIterator { return b.iterator(0).Const() }

// CEnd returns a read-only iterator at Size().
func (b *Buffer) CEnd() ConstIterator { return b.iterator(b.Size()).Const() }

func (b *Buffer) iterator(pos int) Iterator {
	return NewIterator(b.bytes, 0, b.header, b.header+b.zero, b.Size(), pos)
}
