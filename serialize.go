package gostruct

import (
	"github.com/goccy/go-json"
)

type structEnvelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// Serialize captures the type name and the plain data projection of the
// struct. Dirty state is not part of the blob.
func (s *Struct) Serialize() ([]byte, error) {
	data, err := s.ToJSON()
	if err != nil {
		return nil, err
	}
	return json.Marshal(structEnvelope{Type: s.TypeName(), Data: data})
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (s *Struct) MarshalBinary() ([]byte, error) { return s.Serialize() }

// Deserialize rebuilds a struct from a Serialize blob through materialization.
// The result is clean.
func (r *Registry) Deserialize(blob []byte) (*Struct, error) {
	var env structEnvelope
	if err := unmarshalStrict(blob, &env); err != nil {
		return nil, err
	}
	if env.Type == "" {
		return nil, jsonError(RootPath(), "missing type", nil)
	}
	s, err := r.CreateFromJSON(env.Type, env.Data)
	if err != nil {
		return nil, err
	}
	return s.Clean(), nil
}
