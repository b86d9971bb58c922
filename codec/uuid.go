package codec

import (
	"fmt"

	"github.com/google/uuid"
)

// UUID returns a TextCodec for uuid.UUID values in their canonical textual form.
func UUID() TextCodec { return uuidCodec{} }

type uuidCodec struct{}

func (uuidCodec) Decode(s string) (any, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return nil, fmt.Errorf("codec: invalid uuid %q: %w", s, err)
	}
	return id, nil
}

func (uuidCodec) Encode(v any) (string, error) {
	id, ok := v.(uuid.UUID)
	if !ok {
		return "", fmt.Errorf("codec: expected uuid.UUID, got %T", v)
	}
	return id.String(), nil
}

func (uuidCodec) Format() string { return "uuid" }
