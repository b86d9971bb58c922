package gostruct

// Kind classifies a resolved property type.
type Kind int

const (
	KindUnresolvable Kind = iota // Token did not resolve to any known type.
	KindScalar                   // One of the internal scalar types.
	KindStruct                   // A struct type declared in the universe.
	KindEnum                     // An enumeration with a fixed constant set.
	KindObject                   // Any other registered Go type (time.Time, uuid.UUID, ...).
)

func (k Kind) String() string {
	switch k {
	case KindScalar:
		return "scalar"
	case KindStruct:
		return "struct"
	case KindEnum:
		return "enum"
	case KindObject:
		return "object"
	}
	return "unresolvable"
}

// Internal scalar type names.
const (
	TypeBoolean  = "boolean"
	TypeInteger  = "integer"
	TypeDouble   = "double"
	TypeString   = "string"
	TypeArray    = "array"
	TypeCallable = "callable"
	TypeMixed    = "mixed"
)

var scalarTypes = map[string]struct{}{
	TypeBoolean:  {},
	TypeInteger:  {},
	TypeDouble:   {},
	TypeString:   {},
	TypeArray:    {},
	TypeCallable: {},
	TypeMixed:    {},
}

// scalarAliases maps alternative spellings onto the internal scalar names.
var scalarAliases = map[string]string{
	"bool":  TypeBoolean,
	"int":   TypeInteger,
	"float": TypeDouble,
}

// TypeDescriptor is the immutable result of resolving a type token.
type TypeDescriptor struct {
	Name string // Canonical name: a scalar name or a fully qualified type name.
	Kind Kind
}

func (t TypeDescriptor) IsScalar() bool { return t.Kind == KindScalar }
func (t TypeDescriptor) IsStruct() bool { return t.Kind == KindStruct }
func (t TypeDescriptor) IsEnum() bool   { return t.Kind == KindEnum }

// IsObject reports whether values of this type are Go objects rather than scalars
// (structs, enums and registered object types).
func (t TypeDescriptor) IsObject() bool {
	return t.Kind == KindStruct || t.Kind == KindEnum || t.Kind == KindObject
}

func (t TypeDescriptor) String() string { return t.Name }

// Variant identifies the shape of a property descriptor.
type Variant int

const (
	VariantScalar Variant = iota
	VariantStruct
	VariantEnum
	VariantArrayOfScalar
	VariantArrayOfStruct
	VariantArrayOfEnum
)

func (v Variant) String() string {
	switch v {
	case VariantStruct:
		return "struct"
	case VariantEnum:
		return "enum"
	case VariantArrayOfScalar:
		return "array_of_scalar"
	case VariantArrayOfStruct:
		return "array_of_struct"
	case VariantArrayOfEnum:
		return "array_of_enum"
	}
	return "scalar"
}
