package traffic

import (
	"errors"
	"fmt"

	"github.com/nsfx-go/nsfx/sim/buffer"
	"github.com/nsfx-go/nsfx/sim/chrono"
)

// Packet layout. All fields are big-endian.
//
//	offset 0   flow index  uint32
//	offset 4   sequence    uint32
//	offset 8   sent at     int64 (ns since epoch)
//	offset 16  payload     zero region
//	end - 4    marker      uint32
const (
	HeaderSize  = 16
	TrailerSize = 4

	Marker uint32 = 0x4e534658 // "NSFX"
)

// ErrCorruptPacket is returned when a received buffer does not hold a
// well-formed packet.
var ErrCorruptPacket = errors.New("corrupt packet")

// Header is the decoded packet header.
type Header struct {
	Flow   uint32
	Seq    uint32
	SentAt chrono.TimePoint
}

// NewPacket allocates a packet with payload zero bytes. Only the header
// and trailer are stored.
func NewPacket(h Header, payload int) *buffer.Buffer {
	b := buffer.New(HeaderSize, payload, TrailerSize)
	it := b.Begin()
	buffer.WriteB(&it, h.Flow)
	buffer.WriteB(&it, h.Seq)
	buffer.WriteB(&it, int64(h.SentAt))
	it.MoveForward(payload)
	buffer.WriteB(&it, Marker)
	return b
}

// ParsePacket decodes b and verifies that the payload reads as zeros and
// the trailer carries Marker. It returns the header and the payload size.
func ParsePacket(b *buffer.Buffer) (Header, int, error) {
	var h Header
	it := b.CBegin()
	if !it.CanRead(HeaderSize + TrailerSize) {
		return h, 0, fmt.Errorf("%d bytes: %w", b.Size(), ErrCorruptPacket)
	}
	h.Flow = buffer.ReadB[uint32](&it)
	h.Seq = buffer.ReadB[uint32](&it)
	h.SentAt = chrono.TimePoint(buffer.ReadB[int64](&it))

	payload := b.Size() - HeaderSize - TrailerSize
	var chunk [256]byte
	for left := payload; left > 0; {
		n := min(left, len(chunk))
		it.ReadBytes(chunk[:n])
		for i, c := range chunk[:n] {
			if c != 0 {
				off := it.Cursor() - n + i
				return h, payload, fmt.Errorf("payload byte %d is %#x: %w", off, c, ErrCorruptPacket)
			}
		}
		left -= n
	}

	if m := buffer.ReadB[uint32](&it); m != Marker {
		return h, payload, fmt.Errorf("trailer marker %#08x: %w", m, ErrCorruptPacket)
	}
	return h, payload, nil
}
