package serializer

import (
	"github.com/ugorji/go/codec"

	"github.com/hyp3rd/ewrap"
)

// CborSerializer leverages `ugorji/go/codec` to serialize the statistics payloads as CBOR.
type CborSerializer struct {
	handle *codec.CborHandle
}

// NewCborSerializer creates a new CBOR serializer with a shared handle.
func NewCborSerializer() *CborSerializer {
	return &CborSerializer{handle: &codec.CborHandle{}}
}

// Marshal serializes the given value into a byte slice.
// @param v.
func (s *CborSerializer) Marshal(v any) ([]byte, error) {
	var data []byte

	enc := codec.NewEncoderBytes(&data, s.handle)

	err := enc.Encode(v)
	if err != nil {
		return nil, ewrap.Wrap(err, "failed to marshal cbor")
	}

	return data, nil
}

// Unmarshal deserializes the given byte slice into the given value.
// @param data
// @param v.
func (s *CborSerializer) Unmarshal(data []byte, v any) error {
	dec := codec.NewDecoderBytes(data, s.handle)

	err := dec.Decode(v)
	if err != nil {
		return ewrap.Wrap(err, "failed to unmarshal cbor")
	}

	return nil
}
