// SPDX-License-Identifier: EPL-2.0

package protocol

import (
	"encoding/binary"
	"fmt"
)

// MessageSize is the wire size of a Message in bytes.
const MessageSize = 8

// Message is one control-plane record.
type Message struct {
	Command Command
	Payload int32
}

func (m Message) String() string {
	return fmt.Sprintf("%s(%d)", m.Command, m.Payload)
}

// Codec converts Messages and samples to and from their wire form.
type Codec struct {
	Order binary.ByteOrder
}

var (
	// NativeCodec matches a peer built for the same architecture.
	NativeCodec = Codec{Order: binary.NativeEndian}

	LittleEndianCodec = Codec{Order: binary.LittleEndian}
	BigEndianCodec    = Codec{Order: binary.BigEndian}
)

func (c Codec) order() binary.ByteOrder {
	if c.Order == nil {
		return binary.NativeEndian
	}
	return c.Order
}

// Encode writes m into the first MessageSize bytes of dst.
func (c Codec) Encode(dst []byte, m Message) error {
	if len(dst) < MessageSize {
		return ErrShortBuffer
	}

	o := c.order()
	o.PutUint32(dst[0:4], uint32(m.Command))
	o.PutUint32(dst[4:8], uint32(m.Payload))

	return nil
}

// Decode parses the first MessageSize bytes of src. A command outside the
// enumeration is a protocol error.
func (c Codec) Decode(src []byte) (Message, error) {
	if len(src) < MessageSize {
		return Message{}, ErrShortBuffer
	}

	o := c.order()
	m := Message{
		Command: Command(int32(o.Uint32(src[0:4]))),
		Payload: int32(o.Uint32(src[4:8])),
	}
	if !m.Command.Valid() {
		return m, fmt.Errorf("%w: %d", ErrUnknownCommand, int32(m.Command))
	}

	return m, nil
}
