package buffer

import (
	"encoding/binary"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestIterator builds [0, 100) header, [100, 400) zero, [400, 500) trailer.
func newTestIterator(t *testing.T) (Iterator, []byte) {
	t.Helper()
	b := New(100, 300, 100)
	return b.Begin(), b.bytes
}

func TestIterator_PatternRoundTripAcrossRegions(t *testing.T) {
	// GIVEN a 500-byte buffer with zero region [100, 400)
	it, _ := newTestIterator(t)

	// WHEN a pattern is written into the header and the trailer
	for i := 0; i < 100; i++ {
		Write(&it, uint8(i+1))
	}
	it.MoveForward(300)
	for i := 0; i < 100; i++ {
		Write(&it, uint8(200+i%50))
	}
	require.Equal(t, 500, it.Cursor())

	// THEN every byte in [0, 500) reads back as written, and zero in [100, 400)
	it.MoveBackward(500)
	got := make([]byte, 500)
	for i := range got {
		got[i] = Read[uint8](&it)
	}
	want := make([]byte, 500)
	for i := 0; i < 100; i++ {
		want[i] = byte(i + 1)
		want[400+i] = byte(200 + i%50)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("bytes mismatch (-want +got):\n%s", diff)
	}
}

func TestIterator_ZeroRegionReadsZeroForEveryWidth(t *testing.T) {
	it, _ := newTestIterator(t)
	// Fill storage so a stray memory access would be visible.
	for i := range it.c.bytes {
		it.c.bytes[i] = 0xAB
	}

	for pos := 100; pos+8 <= 400; pos += 37 {
		it.c.pos = pos
		c := it.Const()
		assert.Zero(t, Read[uint8](&c), "u8 at %d", pos)
		assert.Zero(t, ReadL[uint16](&c), "u16 at %d", pos)
		assert.Zero(t, ReadB[int32](&c), "i32 at %d", pos)
		c.MoveBackward(7)
		assert.Zero(t, Read[uint64](&c), "u64 at %d", pos)
		assert.True(t, it.InZeroRegion())
	}
}

func TestIterator_CursorAlwaysAdvancesBySize(t *testing.T) {
	it, _ := newTestIterator(t)
	it.MoveForward(96)
	_ = ReadB[uint64](&it) // straddles zeroStart
	assert.Equal(t, 104, it.Cursor())
	it.MoveForward(292)
	_ = ReadL[uint32](&it) // fully zero
	assert.Equal(t, 400, it.Cursor())
	_ = Read[int16](&it) // trailer
	assert.Equal(t, 402, it.Cursor())
}

func TestIterator_CrossBoundaryReads(t *testing.T) {
	tests := []struct {
		name  string
		pos   int
		setup func(b []byte)
		wantB uint32
		wantL uint32
	}{
		{
			// header bytes 98,99 = 0x11,0x22 then zeros
			name:  "straddles zeroStart",
			pos:   98,
			setup: func(b []byte) { b[98], b[99] = 0x11, 0x22 },
			wantB: 0x11220000,
			wantL: 0x00002211,
		},
		{
			// zeros then trailer bytes 400,401 = 0x33,0x44 (stored at 100,101)
			name:  "straddles zeroEnd",
			pos:   398,
			setup: func(b []byte) { b[100], b[101] = 0x33, 0x44 },
			wantB: 0x00003344,
			wantL: 0x44330000,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			it, bytes := newTestIterator(t)
			tt.setup(bytes)

			it.MoveForward(tt.pos)
			assert.Equal(t, tt.wantB, ReadB[uint32](&it))
			it.MoveBackward(4)
			assert.Equal(t, tt.wantL, ReadL[uint32](&it))

			// Byte-by-byte reads agree with the multi-byte read.
			it.MoveBackward(4)
			var each [4]byte
			for i := range each {
				each[i] = Read[uint8](&it)
			}
			assert.Equal(t, tt.wantB, binary.BigEndian.Uint32(each[:]))
		})
	}
}

func TestIterator_ZeroRegionWritesRejectedWithoutSideEffects(t *testing.T) {
	tests := []struct {
		name string
		pos  int
	}{
		{"inside", 200},
		{"straddles zeroStart", 98},
		{"straddles zeroEnd", 398},
		{"ends at zeroStart+1", 97},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			it, bytes := newTestIterator(t)
			for i := range bytes {
				bytes[i] = byte(i)
			}
			before := append([]byte(nil), bytes...)

			it.MoveForward(tt.pos)
			assert.False(t, it.CanWrite(4))
			assert.Panics(t, func() { WriteB(&it, uint32(0xFFFFFFFF)) })

			assert.Equal(t, before, bytes, "no byte may change")
			assert.Equal(t, tt.pos, it.Cursor(), "cursor must not move")
		})
	}
}

func TestIterator_WritesAdjacentToZeroRegion(t *testing.T) {
	it, bytes := newTestIterator(t)

	it.MoveForward(96)
	require.True(t, it.CanWrite(4))
	WriteB(&it, uint32(0x01020304))
	it.MoveForward(300)
	require.True(t, it.CanWrite(4))
	WriteL(&it, uint32(0x05060708))

	assert.Equal(t, []byte{1, 2, 3, 4}, bytes[96:100])
	assert.Equal(t, []byte{8, 7, 6, 5}, bytes[100:104])
}

func TestIterator_SignedAndNativeRoundTrip(t *testing.T) {
	it, _ := newTestIterator(t)
	Write(&it, int64(-42))
	WriteL(&it, int16(-2))
	WriteB(&it, int8(-1))

	it.MoveBackward(11)
	assert.Equal(t, int64(-42), Read[int64](&it))
	assert.Equal(t, int16(-2), ReadL[int16](&it))
	assert.Equal(t, int8(-1), ReadB[int8](&it))
}

func TestIterator_MovementBounds(t *testing.T) {
	it, _ := newTestIterator(t)

	assert.Panics(t, func() { it.MoveBackward(1) })
	assert.Panics(t, func() { it.Sub(1) })
	assert.Panics(t, func() { it.MoveForward(501) })
	assert.Panics(t, func() { it.MoveForward(-1) })

	end := it.Add(500)
	assert.Panics(t, func() { end.Next() })
	assert.False(t, end.CanRead(1))
	assert.Panics(t, func() { Read[uint8](&end) })

	it.Next()
	it.Next()
	it.Prev()
	assert.Equal(t, 1, it.Cursor())
}

func TestIterator_Comparison(t *testing.T) {
	b := New(10, 10, 10)
	a := b.Begin()
	c := a.Add(7)

	assert.Equal(t, 7, c.Distance(a))
	assert.Equal(t, -7, a.Distance(c))
	assert.Equal(t, -1, a.Compare(c))
	assert.Equal(t, 1, c.Compare(a))
	assert.True(t, c.Sub(7).Equal(a))
	assert.True(t, b.End().Equal(b.Begin().Add(30)))
	assert.True(t, b.CEnd().Equal(b.CBegin().Add(30)))
	assert.Equal(t, 30, b.CEnd().Distance(b.CBegin()))

	other := New(10, 10, 10)
	assert.Panics(t, func() { a.Equal(other.Begin()) })
	assert.Panics(t, func() { a.Distance(other.Begin()) })
}

func TestNewIterator_Validation(t *testing.T) {
	storage := make([]byte, 20)
	assert.NotPanics(t, func() { NewIterator(storage, 0, 10, 30, 40, 0) })
	assert.Panics(t, func() { NewIterator(storage, 0, 30, 10, 40, 0) }, "zeroStart > zeroEnd")
	assert.Panics(t, func() { NewIterator(storage, 0, 10, 30, 40, 41) }, "cursor past end")
	assert.Panics(t, func() { NewIterator(storage, 0, 10, 20, 40, 0) }, "storage too short")
}

func TestIterator_EmptyZeroRegion(t *testing.T) {
	b := New(4, 0, 4)
	it := b.Begin()
	it.MoveForward(2)

	// A write across the header/trailer seam is allowed when nothing is compressed.
	require.True(t, it.CanWrite(4))
	WriteB(&it, uint32(0xA1B2C3D4))
	it.MoveBackward(4)
	assert.Equal(t, uint32(0xA1B2C3D4), ReadB[uint32](&it))
	assert.False(t, it.InZeroRegion())
}

func TestBuffer_Sizes(t *testing.T) {
	b := New(20, 1000, 4)
	assert.Equal(t, 1024, b.Size())
	assert.Equal(t, 24, b.StoredSize())
	assert.Equal(t, 20, b.HeaderSize())
	assert.Equal(t, 1000, b.ZeroSize())
	assert.Equal(t, 4, b.TrailerSize())
	assert.Panics(t, func() { New(-1, 0, 0) })

	it := b.Begin()
	assert.Equal(t, 0, it.Start())
	assert.Equal(t, 20, it.ZeroStart())
	assert.Equal(t, 1020, it.ZeroEnd())
	assert.Equal(t, 1024, it.End())
}

func TestIterator_SharedStorage(t *testing.T) {
	b := New(8, 8, 8)
	w := b.Begin()
	r := b.CBegin()

	WriteB(&w, uint64(0x0102030405060708))

	assert.Equal(t, uint64(0x0102030405060708), ReadB[uint64](&r))
	var tail [8]byte
	w.MoveForward(8)
	w.WriteBytes([]byte("trailer!"))
	r.MoveForward(8)
	r.ReadBytes(tail[:])
	assert.Equal(t, "trailer!", string(tail[:]))
}
