package traffic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nsfx-go/nsfx/sim/buffer"
)

func TestNewPacket_LayoutAndParse(t *testing.T) {
	// GIVEN a packet with a 1000-byte payload
	h := Header{Flow: 7, Seq: 0x01020304, SentAt: 0x1122334455667788}
	b := NewPacket(h, 1000)

	// THEN only header and trailer are stored
	assert.Equal(t, HeaderSize+1000+TrailerSize, b.Size())
	assert.Equal(t, HeaderSize+TrailerSize, b.StoredSize())

	// AND the header is big-endian on the wire
	it := b.CBegin()
	raw := make([]byte, HeaderSize)
	it.ReadBytes(raw)
	assert.Equal(t, []byte{
		0, 0, 0, 7,
		1, 2, 3, 4,
		0x11, 0x22, 0x33, 0x44, 0x55, 0x66, 0x77, 0x88,
	}, raw)
	assert.True(t, it.InZeroRegion())

	// WHEN it is parsed
	got, size, err := ParsePacket(b)

	// THEN the header and payload size come back
	require.NoError(t, err)
	assert.Equal(t, h, got)
	assert.Equal(t, 1000, size)
}

func TestParsePacket_EmptyPayload(t *testing.T) {
	b := NewPacket(Header{Flow: 1, Seq: 2}, 0)
	got, size, err := ParsePacket(b)
	require.NoError(t, err)
	assert.Equal(t, Header{Flow: 1, Seq: 2}, got)
	assert.Zero(t, size)
}

func TestParsePacket_Corrupt(t *testing.T) {
	// Trailer overwritten
	b := NewPacket(Header{Flow: 1}, 40)
	it := b.End()
	it.MoveBackward(TrailerSize)
	buffer.WriteB(&it, uint32(0xdeadbeef))
	_, _, err := ParsePacket(b)
	assert.ErrorIs(t, err, ErrCorruptPacket)
	assert.ErrorContains(t, err, "trailer marker 0xdeadbeef")

	// Too short for header and trailer
	_, _, err = ParsePacket(buffer.New(8, 4, 0))
	assert.ErrorIs(t, err, ErrCorruptPacket)
}
