package codec

import (
	"encoding/hex"
	"fmt"
)

// Payload is an immutable byte sequence bounded by the channel's symbol budget.
type Payload struct {
	data []byte
}

// NewPayload copies b into a payload of at most max bytes.
func NewPayload(b []byte, max int) (Payload, error) {
	if len(b) == 0 {
		return Payload{}, ErrEmptyPayload
	}
	if len(b) > max {
		return Payload{}, fmt.Errorf("%w: %d bytes, limit %d", ErrPayloadTooLarge, len(b), max)
	}
	return Payload{data: append([]byte(nil), b...)}, nil
}

// Bytes returns a copy of the payload.
func (p Payload) Bytes() []byte {
	return append([]byte(nil), p.data...)
}

func (p Payload) Len() int {
	return len(p.data)
}

func (p Payload) String() string {
	return hex.EncodeToString(p.data)
}
