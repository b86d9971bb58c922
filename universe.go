package gostruct

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/reoring/gostruct/codec"
)

// PropertyDecl is one raw property declaration as supplied by schema discovery.
type PropertyDecl struct {
	Name    string
	Type    string // Raw type token without the array suffix.
	IsArray bool
}

// StructDef is the declaration of a struct type: its own properties (ancestors
// are referenced through Extends), class-level default values and the fluent
// setter method names it exposes.
type StructDef struct {
	Name       string
	Extends    string
	Properties []PropertyDecl
	Defaults   map[string]any
	Setters    []string
}

// EnumConstant is one legal value of an enumeration.
type EnumConstant struct {
	Name  string
	Value any
}

// Const is shorthand for an EnumConstant literal.
func Const(name string, value any) EnumConstant { return EnumConstant{Name: name, Value: value} }

// EnumDef declares an enumeration through its fixed constant set.
type EnumDef struct {
	Name      string
	Constants []EnumConstant
}

// Contains reports whether v is one of the declared constant values. The
// comparison is strict: 1, 1.0 and "1" are distinct values.
func (d *EnumDef) Contains(v any) bool {
	for _, c := range d.Constants {
		if strictEqual(c.Value, v) {
			return true
		}
	}
	return false
}

// ObjectDef registers a plain Go type usable as a property type.
type ObjectDef struct {
	Name    string
	GoType  reflect.Type
	Extends string
	// Codec gives the type a "construct from string" capability and its JSON form.
	Codec codec.TextCodec
}

// ObjectOption configures an ObjectDef.
type ObjectOption func(*ObjectDef)

// Extends declares the registered supertype of an object type.
func Extends(base string) ObjectOption { return func(d *ObjectDef) { d.Extends = base } }

// WithCodec attaches a string codec to an object type.
func WithCodec(c codec.TextCodec) ObjectOption { return func(d *ObjectDef) { d.Codec = c } }

// Universe is the closed set of types known to schema discovery. Declare every
// type before the first struct instance is created; a Registry treats the
// universe as read-only once it starts building schemas.
type Universe struct {
	mu       sync.RWMutex
	structs  map[string]*StructDef
	enums    map[string]*EnumDef
	objects  map[string]*ObjectDef
	byGoType map[reflect.Type]string
}

// NewUniverse returns a universe with the built-in object types time.Time and
// uuid.UUID registered.
func NewUniverse() *Universe {
	u := &Universe{
		structs:  map[string]*StructDef{},
		enums:    map[string]*EnumDef{},
		objects:  map[string]*ObjectDef{},
		byGoType: map[reflect.Type]string{},
	}
	ObjectOf[time.Time](u, "time.Time", WithCodec(codec.TimeRFC3339()))
	ObjectOf[uuid.UUID](u, "uuid.UUID", WithCodec(codec.UUID()))
	return u
}

// StructBuilder declares a struct type fluently.
type StructBuilder struct {
	u   *Universe
	def *StructDef
}

// Struct returns the builder for the named struct type, declaring it if needed.
func (u *Universe) Struct(name string) *StructBuilder {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.claim(name, KindStruct)
	def, ok := u.structs[name]
	if !ok {
		def = &StructDef{Name: name, Defaults: map[string]any{}}
		u.structs[name] = def
	}
	return &StructBuilder{u: u, def: def}
}

// Extends sets the parent struct type.
func (b *StructBuilder) Extends(base string) *StructBuilder {
	b.u.mu.Lock()
	b.def.Extends = base
	b.u.mu.Unlock()
	return b
}

// Property declares a property. A "[]" suffix on the token declares a typed array.
func (b *StructBuilder) Property(name, token string) *StructBuilder {
	decl := PropertyDecl{Name: name, Type: token}
	if strings.HasSuffix(token, "[]") {
		decl.Type = strings.TrimSuffix(token, "[]")
		decl.IsArray = true
	}
	b.u.mu.Lock()
	b.def.Properties = append(b.def.Properties, decl)
	b.u.mu.Unlock()
	return b
}

// Default declares a class-level default value for a property.
func (b *StructBuilder) Default(name string, v any) *StructBuilder {
	b.u.mu.Lock()
	b.def.Defaults[name] = v
	b.u.mu.Unlock()
	return b
}

// Setter declares fluent setter method names ("withName" or bare "name").
func (b *StructBuilder) Setter(methods ...string) *StructBuilder {
	b.u.mu.Lock()
	b.def.Setters = append(b.def.Setters, methods...)
	b.u.mu.Unlock()
	return b
}

// Enum declares an enumeration.
func (u *Universe) Enum(name string, constants ...EnumConstant) *EnumDef {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.claim(name, KindEnum)
	def := &EnumDef{Name: name, Constants: append([]EnumConstant(nil), constants...)}
	u.enums[name] = def
	return def
}

// Object registers a Go type under a type name.
func (u *Universe) Object(name string, goType reflect.Type, opts ...ObjectOption) *ObjectDef {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.claim(name, KindObject)
	def := &ObjectDef{Name: name, GoType: goType}
	for _, o := range opts {
		o(def)
	}
	u.objects[name] = def
	if goType != nil && goType.Kind() != reflect.Interface {
		u.byGoType[goType] = name
	}
	return def
}

// ObjectOf registers T under a type name.
func ObjectOf[T any](u *Universe, name string, opts ...ObjectOption) *ObjectDef {
	return u.Object(name, reflect.TypeFor[T](), opts...)
}

// claim panics when a name is already registered as a different kind.
// Callers must hold u.mu.
func (u *Universe) claim(name string, k Kind) {
	existing := KindUnresolvable
	if _, ok := u.structs[name]; ok {
		existing = KindStruct
	} else if _, ok := u.enums[name]; ok {
		existing = KindEnum
	} else if _, ok := u.objects[name]; ok {
		existing = KindObject
	}
	if existing != KindUnresolvable && existing != k {
		panic(fmt.Sprintf("gostruct: type %s already registered as %s", name, existing))
	}
}

// Lookup returns the descriptor of a fully qualified type name.
func (u *Universe) Lookup(name string) (TypeDescriptor, bool) {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return u.lookupLocked(name)
}

func (u *Universe) lookupLocked(name string) (TypeDescriptor, bool) {
	if _, ok := u.structs[name]; ok {
		return TypeDescriptor{Name: name, Kind: KindStruct}, true
	}
	if _, ok := u.enums[name]; ok {
		return TypeDescriptor{Name: name, Kind: KindEnum}, true
	}
	if _, ok := u.objects[name]; ok {
		return TypeDescriptor{Name: name, Kind: KindObject}, true
	}
	return TypeDescriptor{}, false
}

// Resolve resolves a raw type token into a descriptor: scalar aliases first,
// then the token as a fully qualified name, then the token relative to
// contextNamespace (the namespace of the declaring struct).
func (u *Universe) Resolve(raw, contextNamespace string) (TypeDescriptor, error) {
	token := raw
	if alias, ok := scalarAliases[token]; ok {
		token = alias
	}
	if _, ok := scalarTypes[token]; ok {
		return TypeDescriptor{Name: token, Kind: KindScalar}, nil
	}
	token = strings.TrimPrefix(token, ".")
	if td, ok := u.Lookup(token); ok {
		return td, nil
	}
	if contextNamespace != "" {
		if td, ok := u.Lookup(contextNamespace + "." + token); ok {
			return td, nil
		}
	}
	return TypeDescriptor{Name: raw, Kind: KindUnresolvable},
		Issues{RootPath().Issue(CodeUnknownType, "token", raw, "namespace", contextNamespace)}
}

// IsSubtype reports whether sub equals super or derives from it through
// struct inheritance, object Extends chains or interface implementation.
func (u *Universe) IsSubtype(sub, super string) bool {
	if sub == super {
		return true
	}
	u.mu.RLock()
	defer u.mu.RUnlock()
	if sd, ok := u.objects[super]; ok && sd.GoType != nil && sd.GoType.Kind() == reflect.Interface {
		if od, ok := u.objects[sub]; ok && od.GoType != nil && od.GoType.Implements(sd.GoType) {
			return true
		}
	}
	seen := map[string]bool{sub: true}
	cur := sub
	for {
		next := ""
		if d, ok := u.structs[cur]; ok {
			next = d.Extends
		} else if d, ok := u.objects[cur]; ok {
			next = d.Extends
		}
		if next == "" || seen[next] {
			return false
		}
		if next == super {
			return true
		}
		seen[next] = true
		cur = next
	}
}

func (u *Universe) structDef(name string) (*StructDef, bool) {
	u.mu.RLock()
	defer u.mu.RUnlock()
	d, ok := u.structs[name]
	return d, ok
}

func (u *Universe) enumDef(name string) (*EnumDef, bool) {
	u.mu.RLock()
	defer u.mu.RUnlock()
	d, ok := u.enums[name]
	return d, ok
}

func (u *Universe) objectDef(name string) (*ObjectDef, bool) {
	u.mu.RLock()
	defer u.mu.RUnlock()
	d, ok := u.objects[name]
	return d, ok
}

// objectDefFor finds the registered object type of a Go value.
func (u *Universe) objectDefFor(v any) (*ObjectDef, bool) {
	u.mu.RLock()
	defer u.mu.RUnlock()
	name, ok := u.byGoType[reflect.TypeOf(v)]
	if !ok {
		return nil, false
	}
	return u.objects[name], true
}

// objectAccepts reports whether v is an instance of the declared object type or a subtype.
func (u *Universe) objectAccepts(declared string, v any) bool {
	def, ok := u.objectDef(declared)
	if !ok || def.GoType == nil {
		return false
	}
	rt := reflect.TypeOf(v)
	if def.GoType.Kind() == reflect.Interface {
		return rt.Implements(def.GoType)
	}
	if rt == def.GoType {
		return true
	}
	od, ok := u.objectDefFor(v)
	return ok && u.IsSubtype(od.Name, declared)
}

// StructNames lists the declared struct types in name order.
func (u *Universe) StructNames() []string {
	u.mu.RLock()
	defer u.mu.RUnlock()
	out := make([]string, 0, len(u.structs))
	for n := range u.structs {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// namespaceOf returns the namespace part of a fully qualified type name.
func namespaceOf(name string) string {
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		return name[:i]
	}
	return ""
}
