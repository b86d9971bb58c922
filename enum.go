package gostruct

import (
	"github.com/goccy/go-json"
)

// Enum is an instance of an enumeration type. It starts either unset or with a
// validated value; every later value must also belong to the constant set.
//
// An Enum held by a struct property (directly or as an array element) reports
// its dirty transitions to the owning struct.
type Enum struct {
	def         *EnumDef
	value       any
	isSet       bool
	isDirty     bool
	hasOriginal bool
	original    any

	parent       *Struct
	nameInParent string
}

// NewEnum creates an enum of the named type holding v. The value becomes the
// original value; the enum starts clean.
func (u *Universe) NewEnum(typeName string, v any) (*Enum, error) {
	def, ok := u.enumDef(typeName)
	if !ok {
		return nil, Issues{RootPath().Issue(CodeUnknownType, "token", typeName)}
	}
	return newEnum(def, v)
}

// NewUnsetEnum creates an enum of the named type without a value.
func (u *Universe) NewUnsetEnum(typeName string) (*Enum, error) {
	def, ok := u.enumDef(typeName)
	if !ok {
		return nil, Issues{RootPath().Issue(CodeUnknownType, "token", typeName)}
	}
	return &Enum{def: def}, nil
}

func newEnum(def *EnumDef, v any) (*Enum, error) {
	if !def.Contains(v) {
		return nil, invalidEnumValue(def, v)
	}
	return &Enum{def: def, value: v, isSet: true, hasOriginal: true, original: v}, nil
}

func invalidEnumValue(def *EnumDef, v any) error {
	return Issues{RootPath().Issue(CodeInvalidEnum, "enum", def.Name, "value", formatValue(v))}
}

// TypeName returns the enumeration type name.
func (e *Enum) TypeName() string { return e.def.Name }

// Constants returns the legal constants of the enumeration.
func (e *Enum) Constants() []EnumConstant { return append([]EnumConstant(nil), e.def.Constants...) }

// IsValidValue reports whether v belongs to the constant set.
func (e *Enum) IsValidValue(v any) bool { return e.def.Contains(v) }

func (e *Enum) IsSet() bool   { return e.isSet }
func (e *Enum) IsDirty() bool { return e.isDirty }

// HasOriginalValue reports whether a clean baseline value exists.
func (e *Enum) HasOriginalValue() bool { return e.hasOriginal }

// OriginalValue returns the value recorded at construction or at the last SetClean.
func (e *Enum) OriginalValue() (any, error) {
	if !e.hasOriginal {
		return nil, e.stateError("enum has no original value")
	}
	return e.original, nil
}

// Value returns the current value.
func (e *Enum) Value() (any, error) {
	if !e.isSet {
		return nil, e.stateError("cannot access unset enum value")
	}
	return e.value, nil
}

// SetValue assigns a new value and marks the enum dirty.
func (e *Enum) SetValue(v any) error {
	if !e.def.Contains(v) {
		return invalidEnumValue(e.def, v)
	}
	before := e.isDirty
	e.value = v
	e.isSet = true
	e.isDirty = true
	e.syncParent(before)
	return nil
}

// Unset clears the value and the original value.
func (e *Enum) Unset() error {
	if !e.isSet {
		return e.stateError("cannot unset already unset enum value")
	}
	before := e.isDirty
	e.value, e.original = nil, nil
	e.hasOriginal = false
	e.isSet = false
	e.isDirty = false
	e.syncParent(before)
	return nil
}

// SetDirty marks a set enum dirty.
func (e *Enum) SetDirty() *Enum {
	before := e.isDirty
	e.markDirty()
	e.syncParent(before)
	return e
}

// SetClean records the current value as original and marks the enum clean.
func (e *Enum) SetClean() *Enum {
	before := e.isDirty
	e.markClean()
	e.syncParent(before)
	return e
}

func (e *Enum) markDirty() {
	if e.isSet {
		e.isDirty = true
	}
}

func (e *Enum) markClean() {
	if e.isSet {
		e.original = e.value
		e.hasOriginal = true
		e.isDirty = false
	}
}

// syncParent notifies the owning struct when the dirty flag flipped.
func (e *Enum) syncParent(before bool) {
	if e.parent != nil && e.isDirty != before {
		e.parent.childStateChanged(e.nameInParent, e.isDirty)
	}
}

func (e *Enum) stateError(reason string) error {
	return Issues{RootPath().Issue(CodeInvalidState, "reason", reason+" of "+e.def.Name)}
}

// clone copies the enum state without its parent link.
func (e *Enum) clone() *Enum {
	c := *e
	c.parent, c.nameInParent = nil, ""
	return &c
}

// MarshalJSON encodes the enum value; an unset enum cannot be encoded.
func (e *Enum) MarshalJSON() ([]byte, error) {
	if !e.isSet {
		return nil, Issues{RootPath().Issue(CodeJSONError, "reason", "cannot encode unset enum of "+e.def.Name)}
	}
	return encodeJSON(e.value, "")
}

// String returns the JSON representation of the value, or an empty string
// when the enum is unset.
func (e *Enum) String() string {
	b, err := e.MarshalJSON()
	if err != nil {
		return ""
	}
	return string(b)
}

type enumEnvelope struct {
	Type        string `json:"type"`
	Value       any    `json:"value"`
	HasOriginal bool   `json:"has_original,omitempty"`
	Original    any    `json:"original"`
}

// MarshalBinary serializes the value and original value.
func (e *Enum) MarshalBinary() ([]byte, error) {
	if !e.isSet {
		return nil, e.stateError("cannot serialize unset enum value")
	}
	return json.Marshal(enumEnvelope{Type: e.def.Name, Value: e.value, HasOriginal: e.hasOriginal, Original: e.original})
}

// DeserializeEnum restores an enum produced by MarshalBinary. The result is clean.
func (u *Universe) DeserializeEnum(blob []byte) (*Enum, error) {
	var env enumEnvelope
	if err := unmarshalStrict(blob, &env); err != nil {
		return nil, err
	}
	env.Value = normalizeDecoded(env.Value)
	env.Original = normalizeDecoded(env.Original)
	e, err := u.NewEnum(env.Type, env.Value)
	if err != nil {
		return nil, err
	}
	if env.HasOriginal && e.def.Contains(env.Original) {
		e.original = env.Original
	}
	return e, nil
}
