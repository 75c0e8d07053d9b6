// Package buffer implements zero-compressed packet buffers.
//
// A buffer spans the logical offsets [start, end) and is split into a
// header [start, zeroStart), a zero region [zeroStart, zeroEnd) and a
// trailer [zeroEnd, end). Only the header and the trailer are stored. The
// zero region reads as zero bytes and cannot be written, which lets a
// simulation carry large payloads whose content does not matter without
// allocating them.
//
// Iterators are small values sharing the buffer's storage. Writes through
// one iterator are visible through every other iterator over the same
// storage.
package buffer

import (
	"fmt"
	"unsafe"
)

// cursor holds the boundaries and position shared by Iterator and
// ConstIterator.
type cursor struct {
	bytes     []byte
	start     int
	zeroStart int
	zeroEnd   int
	end       int
	pos       int
}

func newCursor(bytes []byte, start, zeroStart, zeroEnd, end, pos int) cursor {
	if start < 0 || start > zeroStart || zeroStart > zeroEnd || zeroEnd > end {
		panic(fmt.Sprintf("buffer: invalid regions start=%d zeroStart=%d zeroEnd=%d end=%d",
			start, zeroStart, zeroEnd, end))
	}
	if pos < start || pos > end {
		panic(fmt.Sprintf("buffer: cursor %d outside [%d, %d]", pos, start, end))
	}
	if stored := end - (zeroEnd - zeroStart); len(bytes) < stored {
		panic(fmt.Sprintf("buffer: %d bytes of storage for %d stored bytes", len(bytes), stored))
	}
	return cursor{bytes: bytes, start: start, zeroStart: zeroStart, zeroEnd: zeroEnd, end: end, pos: pos}
}

func (c *cursor) zeroSize() int { return c.zeroEnd - c.zeroStart }

// byteAt resolves one logical offset to its stored byte, or zero inside
// the zero region.
func (c *cursor) byteAt(off int) byte {
	switch {
	case off < c.zeroStart:
		return c.bytes[off]
	case off >= c.zeroEnd:
		return c.bytes[off-c.zeroSize()]
	default:
		return 0
	}
}

// read copies len(b) logical bytes at the cursor into b in memory order,
// then advances the cursor by len(b).
func (c *cursor) read(b []byte) {
	n := len(b)
	if c.pos+n > c.end {
		panic(fmt.Sprintf("buffer: read of %d bytes at %d past end %d", n, c.pos, c.end))
	}
	p := c.pos
	switch {
	case p+n <= c.zeroStart:
		copy(b, c.bytes[p:p+n])
	case p >= c.zeroEnd:
		off := p - c.zeroSize()
		copy(b, c.bytes[off:off+n])
	case p >= c.zeroStart && p+n <= c.zeroEnd:
		clear(b)
	default:
		for i := range b {
			b[i] = c.byteAt(p + i)
		}
	}
	c.pos += n
}

// crossesZero reports whether [pos, pos+n) shares a byte with the zero region.
func (c *cursor) crossesZero(n int) bool {
	return c.zeroStart < c.zeroEnd && c.pos < c.zeroEnd && c.pos+n > c.zeroStart
}

// write stores b at the cursor and advances it. Every check runs before
// the first byte is stored.
func (c *cursor) write(b []byte) {
	n := len(b)
	if c.pos+n > c.end {
		panic(fmt.Sprintf("buffer: write of %d bytes at %d past end %d", n, c.pos, c.end))
	}
	if c.crossesZero(n) {
		panic(fmt.Sprintf("buffer: write of %d bytes at %d touches zero region [%d, %d)",
			n, c.pos, c.zeroStart, c.zeroEnd))
	}
	off := c.pos
	if off >= c.zeroEnd {
		off -= c.zeroSize()
	}
	copy(c.bytes[off:off+n], b)
	c.pos += n
}

func (c *cursor) moveForward(n int) {
	if n < 0 || c.pos+n > c.end {
		panic(fmt.Sprintf("buffer: cannot move forward %d bytes from %d (end %d)", n, c.pos, c.end))
	}
	c.pos += n
}

func (c *cursor) moveBackward(n int) {
	if n < 0 || c.pos-n < c.start {
		panic(fmt.Sprintf("buffer: cannot move backward %d bytes from %d (start %d)", n, c.pos, c.start))
	}
	c.pos -= n
}

func (c *cursor) sameStorage(o *cursor) bool {
	return unsafe.SliceData(c.bytes) == unsafe.SliceData(o.bytes) &&
		c.start == o.start && c.zeroStart == o.zeroStart &&
		c.zeroEnd == o.zeroEnd && c.end == o.end
}

func (c *cursor) mustShare(o *cursor) {
	if !c.sameStorage(o) {
		panic("buffer: iterators over different storage")
	}
}

func (c *cursor) compare(o *cursor) int {
	c.mustShare(o)
	switch {
	case c.pos < o.pos:
		return -1
	case c.pos > o.pos:
		return 1
	}
	return 0
}

// Iterator is a writable cursor over a zero-compressed buffer.
type Iterator struct {
	c cursor
}

// NewIterator creates an iterator over bytes, which stores the header
// followed by the trailer. It panics if the boundaries are inconsistent
// or the storage is too short.
func NewIterator(bytes []byte, start, zeroStart, zeroEnd, end, pos int) Iterator {
	return Iterator{c: newCursor(bytes, start, zeroStart, zeroEnd, end, pos)}
}

// Start returns the first logical offset.
func (it Iterator) Start() int { return it.c.start }

// End returns the logical offset one past the last byte.
func (it Iterator) End() int { return it.c.end }

// ZeroStart returns the first offset of the zero region.
func (it Iterator) ZeroStart() int { return it.c.zeroStart }

// ZeroEnd returns the offset one past the zero region.
func (it Iterator) ZeroEnd() int { return it.c.zeroEnd }

// Cursor returns the current logical offset.
func (it Iterator) Cursor() int { return it.c.pos }

// MoveForward advances the cursor by n bytes.
func (it *Iterator) MoveForward(n int) { it.c.moveForward(n) }

// MoveBackward moves the cursor back by n bytes.
func (it *Iterator) MoveBackward(n int) { it.c.moveBackward(n) }

// Next moves forward one byte.
func (it *Iterator) Next() { it.c.moveForward(1) }

// Prev moves back one byte.
func (it *Iterator) Prev() { it.c.moveBackward(1) }

// Add returns a copy moved forward by n bytes.
func (it Iterator) Add(n int) Iterator {
	it.c.moveForward(n)
	return it
}

// Sub returns a copy moved back by n bytes.
func (it Iterator) Sub(n int) Iterator {
	it.c.moveBackward(n)
	return it
}

// Distance returns it.Cursor() - o.Cursor(). Both must share storage.
func (it Iterator) Distance(o Iterator) int {
	it.c.mustShare(&o.c)
	return it.c.pos - o.c.pos
}

// Compare orders two iterators over the same storage by cursor.
func (it Iterator) Compare(o Iterator) int { return it.c.compare(&o.c) }

// Equal reports whether both iterators point at the same offset.
func (it Iterator) Equal(o Iterator) bool { return it.c.compare(&o.c) == 0 }

// CanRead reports whether n bytes can be read at the cursor.
func (it Iterator) CanRead(n int) bool { return n >= 0 && it.c.pos+n <= it.c.end }

// CanWrite reports whether n bytes can be written at the cursor, i.e. they
// fit and do not touch the zero region.
func (it Iterator) CanWrite(n int) bool { return it.CanRead(n) && !it.c.crossesZero(n) }

// InZeroRegion reports whether the cursor is inside the zero region.
func (it Iterator) InZeroRegion() bool {
	return it.c.pos >= it.c.zeroStart && it.c.pos < it.c.zeroEnd
}

// Const returns a read-only view at the same position.
func (it Iterator) Const() ConstIterator { return ConstIterator(it) }

// ReadBytes fills b from the cursor and advances it.
func (it *Iterator) ReadBytes(b []byte) { it.c.read(b) }

// WriteBytes stores b at the cursor and advances it. The whole range must
// lie in the header or the trailer.
func (it *Iterator) WriteBytes(b []byte) { it.c.write(b) }

func (it *Iterator) readCursor() *cursor { return &it.c }

// ConstIterator is a read-only cursor over a zero-compressed buffer.
type ConstIterator struct {
	c cursor
}

// Start returns the first logical offset.
func (it ConstIterator) Start() int { return it.c.start }

// End returns the logical offset one past the last byte.
func (it ConstIterator) End() int { return it.c.end }

// Cursor returns the current logical offset.
func (it ConstIterator) Cursor() int { return it.c.pos }

// MoveForward advances the cursor by n bytes.
func (it *ConstIterator) MoveForward(n int) { it.c.moveForward(n) }

// MoveBackward moves the cursor back by n bytes.
func (it *ConstIterator) MoveBackward(n int) { it.c.moveBackward(n) }

// Next moves forward one byte.
func (it *ConstIterator) Next() { it.c.moveForward(1) }

// Prev moves back one byte.
func (it *ConstIterator) Prev() { it.c.moveBackward(1) }

// Add returns a copy moved forward by n bytes.
func (it ConstIterator) Add(n int) ConstIterator {
	it.c.moveForward(n)
	return it
}

// Sub returns a copy moved back by n bytes.
func (it ConstIterator) Sub(n int) ConstIterator {
	it.c.moveBackward(n)
	return it
}

// Distance returns it.Cursor() - o.Cursor(). Both must share storage.
func (it ConstIterator) Distance(o ConstIterator) int {
	it.c.mustShare(&o.c)
	return it.c.pos - o.c.pos
}

// Compare orders two iterators over the same storage by cursor.
func (it ConstIterator) Compare(o ConstIterator) int { return it.c.compare(&o.c) }

// Equal reports whether both iterators point at the same offset.
func (it ConstIterator) Equal(o ConstIterator) bool { return it.c.compare(&o.c) == 0 }

// CanRead reports whether n bytes can be read at the cursor.
func (it ConstIterator) CanRead(n int) bool { return n >= 0 && it.c.pos+n <= it.c.end }

// InZeroRegion reports whether the cursor is inside the zero region.
func (it ConstIterator) InZeroRegion() bool {
	return it.c.pos >= it.c.zeroStart && it.c.pos < it.c.zeroEnd
}

// ReadBytes fills b from the cursor and advances it.
func (it *ConstIterator) ReadBytes(b []byte) { it.c.read(b) }

func (it *ConstIterator) readCursor() *cursor { return &it.c }
