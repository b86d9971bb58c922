package gostruct

// Property is the read-only view of one property descriptor of a struct.
type Property interface {
	Name() string
	// DeclaringType is the struct type that introduced (or last narrowed) the property.
	DeclaringType() string
	Type() TypeDescriptor
	TypeName() string
	IsArray() bool
	Variant() Variant
	ContainsObject() bool
	ContainsStruct() bool
	ContainsEnum() bool
	HasDefaultValue() bool
	DefaultValue() any
	IsSet() bool
	IsDirty() bool
	// Value returns the stored value; meaningless unless IsSet.
	Value() any
}

// slot is the mutable side of a property descriptor. Each variant owns its
// storage, type check and clean/dirty rules.
type slot interface {
	Property
	desc() *descriptor
	// check validates (and possibly converts) one value: the whole value for
	// single-value variants, one element for array variants.
	check(p PathRef, v any) (any, error)
	// set validates and stores v atomically; owner becomes the parent of nested values.
	set(owner *Struct, v any) error
	setClean()
	setDirty()
	unset(owner *Struct)
	// childStateChanged records a dirty flip of a nested value and reports
	// whether the property flag changed.
	childStateChanged(dirty bool) bool
	clone(owner *Struct) slot
}

type descriptor struct {
	u             *Universe
	name          string
	declaringType string
	typ           TypeDescriptor
	isArray       bool

	// computed once from the resolved type
	containsObject bool
	containsStruct bool
	containsEnum   bool
	enumDef        *EnumDef
	objectDef      *ObjectDef

	hasDefault   bool
	defaultValue any

	val     any
	isSet   bool
	isDirty bool
}

func newSlot(u *Universe, declaringType, name string, td TypeDescriptor, isArray bool) slot {
	d := descriptor{
		u:              u,
		name:           name,
		declaringType:  declaringType,
		typ:            td,
		isArray:        isArray,
		containsObject: td.IsObject(),
		containsStruct: td.IsStruct(),
		containsEnum:   td.IsEnum(),
	}
	switch td.Kind {
	case KindEnum:
		d.enumDef, _ = u.enumDef(td.Name)
	case KindObject:
		d.objectDef, _ = u.objectDef(td.Name)
	}
	switch {
	case isArray && td.IsStruct():
		return &structArrayProperty{arrayProperty{d}}
	case isArray && td.IsEnum():
		return &enumArrayProperty{arrayProperty{d}}
	case isArray:
		return &arrayProperty{d}
	case td.IsStruct():
		return &structProperty{d}
	case td.IsEnum():
		return &enumProperty{d}
	}
	return &scalarProperty{d}
}

func (d *descriptor) desc() *descriptor         { return d }
func (d *descriptor) Name() string              { return d.name }
func (d *descriptor) DeclaringType() string     { return d.declaringType }
func (d *descriptor) Type() TypeDescriptor      { return d.typ }
func (d *descriptor) TypeName() string          { return d.typ.Name }
func (d *descriptor) IsArray() bool             { return d.isArray }
func (d *descriptor) ContainsObject() bool      { return d.containsObject }
func (d *descriptor) ContainsStruct() bool      { return d.containsStruct }
func (d *descriptor) ContainsEnum() bool        { return d.containsEnum }
func (d *descriptor) HasDefaultValue() bool     { return d.hasDefault }
func (d *descriptor) DefaultValue() any         { return d.defaultValue }
func (d *descriptor) IsSet() bool               { return d.isSet }
func (d *descriptor) IsDirty() bool             { return d.isDirty }
func (d *descriptor) Value() any                { return d.val }
func (d *descriptor) childStateChanged(bool) bool { return false }

// accepts is the single-value type check. nil is always valid.
func (d *descriptor) accepts(v any) bool {
	if isNil(v) {
		return true
	}
	switch d.typ.Kind {
	case KindScalar:
		return scalarAccepts(d.typ.Name, v)
	case KindStruct:
		s, ok := v.(*Struct)
		return ok && d.u.IsSubtype(s.TypeName(), d.typ.Name)
	case KindEnum:
		e, ok := v.(*Enum)
		return ok && d.u.IsSubtype(e.TypeName(), d.typ.Name)
	case KindObject:
		return d.u.objectAccepts(d.typ.Name, v)
	}
	return false
}

func (d *descriptor) expected() string {
	if d.isArray {
		return d.typ.Name + "[]"
	}
	return d.typ.Name
}

func (d *descriptor) path() PathRef { return RootPath().Field(d.name) }

func (d *descriptor) mismatch(p PathRef, v any, expected string) error {
	return Issues{p.Issue(CodeInvalidType,
		"property", d.name,
		"declaring_type", d.declaringType,
		"expected", expected,
		"actual", runtimeKind(v),
	)}
}

func (d *descriptor) store(v any) {
	d.val = v
	d.isSet = true
	d.isDirty = true
}

func (d *descriptor) clear() {
	d.val = nil
	d.isSet = false
	d.isDirty = false
}

// singleCheck is the shared single-value validator.
func (d *descriptor) singleCheck(p PathRef, v any) (any, error) {
	if isNil(v) {
		return nil, nil
	}
	if !d.accepts(v) {
		return nil, d.mismatch(p, v, d.typ.Name)
	}
	return v, nil
}

// attach makes owner the parent of a nested struct or enum.
func attach(v any, owner *Struct, name string) {
	switch t := v.(type) {
	case *Struct:
		if t != nil {
			t.parent, t.nameInParent = owner, name
		}
	case *Enum:
		if t != nil {
			t.parent, t.nameInParent = owner, name
		}
	}
}

// detach clears the parent link of a nested value if it still points at owner.
func detach(v any, owner *Struct, name string) {
	switch t := v.(type) {
	case *Struct:
		if t != nil && t.parent == owner && t.nameInParent == name {
			t.parent, t.nameInParent = nil, ""
		}
	case *Enum:
		if t != nil && t.parent == owner && t.nameInParent == name {
			t.parent, t.nameInParent = nil, ""
		}
	}
}

// ---- Scalar ----

type scalarProperty struct{ descriptor }

func (p *scalarProperty) Variant() Variant { return VariantScalar }

func (p *scalarProperty) check(path PathRef, v any) (any, error) { return p.singleCheck(path, v) }

func (p *scalarProperty) set(_ *Struct, v any) error {
	nv, err := p.check(p.path(), v)
	if err != nil {
		return err
	}
	p.store(nv)
	return nil
}

func (p *scalarProperty) setClean() {
	if p.isSet {
		p.isDirty = false
	}
}

func (p *scalarProperty) setDirty() {
	if p.isSet {
		p.isDirty = true
	}
}

func (p *scalarProperty) unset(_ *Struct) { p.clear() }

func (p *scalarProperty) clone(_ *Struct) slot {
	c := *p
	c.val = deepCopy(p.val)
	return &c
}

// rejectCycle fails when holding v under owner would make a struct its own
// ancestor.
func (d *descriptor) rejectCycle(owner *Struct, p PathRef, v any) error {
	s, ok := v.(*Struct)
	if !ok || s == nil {
		return nil
	}
	for a := owner; a != nil; a = a.parent {
		if a == s {
			return Issues{p.Issue(CodeInvalidState,
				"reason", "cannot nest "+s.TypeName()+" inside itself at "+d.name)}
		}
	}
	return nil
}

// ---- Struct ----

type structProperty struct{ descriptor }

func (p *structProperty) Variant() Variant { return VariantStruct }

func (p *structProperty) child() *Struct {
	s, _ := p.val.(*Struct)
	return s
}

func (p *structProperty) check(path PathRef, v any) (any, error) { return p.singleCheck(path, v) }

func (p *structProperty) set(owner *Struct, v any) error {
	nv, err := p.check(p.path(), v)
	if err != nil {
		return err
	}
	if err := p.rejectCycle(owner, p.path(), nv); err != nil {
		return err
	}
	detach(p.val, owner, p.name)
	attach(nv, owner, p.name)
	p.store(nv)
	return nil
}

// setClean cleans the nested struct without letting it notify back.
func (p *structProperty) setClean() {
	if s := p.child(); s != nil {
		s.clean(false)
	}
	p.isDirty = false
}

func (p *structProperty) setDirty() {
	if p.isSet {
		p.isDirty = true
	}
}

func (p *structProperty) unset(owner *Struct) {
	detach(p.val, owner, p.name)
	p.clear()
}

func (p *structProperty) childStateChanged(dirty bool) bool {
	if !p.isSet || p.isDirty == dirty {
		return false
	}
	p.isDirty = dirty
	return true
}

func (p *structProperty) clone(owner *Struct) slot {
	c := *p
	if s := p.child(); s != nil {
		cs := s.Clone()
		attach(cs, owner, p.name)
		c.val = cs
	}
	return &c
}

// ---- Enum ----

type enumProperty struct{ descriptor }

func (p *enumProperty) Variant() Variant { return VariantEnum }

func (p *enumProperty) enum() *Enum {
	e, _ := p.val.(*Enum)
	return e
}

// IsSet is true only when an enum is held and the enum itself has a value.
func (p *enumProperty) IsSet() bool {
	e := p.enum()
	return p.isSet && e != nil && e.IsSet()
}

// check wraps raw values into an enum instance; nil is legal only when the
// enumeration declares a nil constant.
func (p *enumProperty) check(path PathRef, v any) (any, error) {
	return wrapEnum(&p.descriptor, path, v)
}

func wrapEnum(d *descriptor, path PathRef, v any) (any, error) {
	if e, ok := v.(*Enum); ok && e != nil {
		if !d.accepts(e) {
			return nil, d.mismatch(path, v, d.typ.Name)
		}
		return e, nil
	}
	if d.enumDef == nil {
		return nil, d.mismatch(path, v, d.typ.Name)
	}
	e, err := newEnum(d.enumDef, v)
	if err != nil {
		return nil, rebaseIssues(path, err)
	}
	return e, nil
}

func (p *enumProperty) set(owner *Struct, v any) error {
	nv, err := p.check(p.path(), v)
	if err != nil {
		return err
	}
	e := nv.(*Enum)
	e.markDirty()
	detach(p.val, owner, p.name)
	attach(e, owner, p.name)
	p.val = e
	p.isSet = true
	p.isDirty = e.isDirty
	return nil
}

func (p *enumProperty) setClean() {
	if e := p.enum(); e != nil {
		e.markClean()
	}
	p.isDirty = false
}

func (p *enumProperty) setDirty() {
	if p.IsSet() {
		p.enum().markDirty()
		p.isDirty = true
	}
}

func (p *enumProperty) unset(owner *Struct) {
	detach(p.val, owner, p.name)
	p.clear()
}

func (p *enumProperty) childStateChanged(dirty bool) bool {
	if !p.isSet || p.isDirty == dirty {
		return false
	}
	p.isDirty = dirty
	return true
}

// attachUnset stores a fresh unset enum so callers can assign through it.
func (p *enumProperty) attachUnset(owner *Struct) *Enum {
	e := &Enum{def: p.enumDef}
	attach(e, owner, p.name)
	p.val = e
	p.isSet = true
	p.isDirty = false
	return e
}

func (p *enumProperty) clone(owner *Struct) slot {
	c := *p
	if e := p.enum(); e != nil {
		ce := e.clone()
		attach(ce, owner, p.name)
		c.val = ce
	}
	return &c
}
