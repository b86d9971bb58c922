package gostruct

import (
	"runtime"
	"strconv"
	"strings"
)

// Struct is an instance of a struct type. It owns a clone of the cached
// property templates of its type and propagates aggregate dirty flips to the
// struct holding it (parent and nameInParent are navigational only).
//
// A Struct tree is not safe for concurrent mutation.
type Struct struct {
	reg    *Registry
	schema *schema
	props  []slot

	parent       *Struct
	nameInParent string
}

func newStruct(reg *Registry, sc *schema) *Struct {
	s := &Struct{reg: reg, schema: sc, props: make([]slot, len(sc.templates))}
	for i, t := range sc.templates {
		s.props[i] = t.clone(s)
	}
	return s
}

// TypeName returns the struct type name.
func (s *Struct) TypeName() string { return s.schema.typeName }

// Registry returns the registry the struct was created from.
func (s *Struct) Registry() *Registry { return s.reg }

// Parent returns the struct holding this one, if any, and the property name it is held under.
func (s *Struct) Parent() (*Struct, string) { return s.parent, s.nameInParent }

func (s *Struct) slot(name string) (slot, bool) {
	i, ok := s.schema.index[name]
	if !ok {
		return nil, false
	}
	return s.props[i], true
}

// lookup returns the named slot or an undefined_property issue carrying the
// location of the first caller outside this package.
func (s *Struct) lookup(name string) (slot, error) {
	if sl, ok := s.slot(name); ok {
		return sl, nil
	}
	it := RootPath().Field(name).Issue(CodeUndefinedProperty, "property", name, "struct", s.TypeName())
	it.Hint = callerLocation()
	return nil, Issues{it}
}

func callerLocation() string {
	pcs := make([]uintptr, 16)
	n := runtime.Callers(3, pcs)
	frames := runtime.CallersFrames(pcs[:n])
	for {
		f, more := frames.Next()
		if !strings.HasPrefix(f.Function, "github.com/reoring/gostruct.") {
			return f.File + ":" + strconv.Itoa(f.Line)
		}
		if !more {
			return ""
		}
	}
}

func (s *Struct) stateError(name, reason string) error {
	return Issues{RootPath().Field(name).Issue(CodeInvalidState, "reason", reason+" "+name+" of "+s.TypeName())}
}

// Has reports whether the schema declares the property.
func (s *Struct) Has(name string) bool {
	_, ok := s.slot(name)
	return ok
}

// Get returns the value of a set property. Enum properties yield *Enum,
// struct properties yield *Struct.
func (s *Struct) Get(name string) (any, error) {
	sl, err := s.lookup(name)
	if err != nil {
		return nil, err
	}
	if !sl.IsSet() {
		return nil, s.stateError(name, "cannot read unset property")
	}
	return sl.Value(), nil
}

// Set validates and assigns a value. On failure the property is left untouched.
func (s *Struct) Set(name string, v any) error {
	sl, err := s.lookup(name)
	if err != nil {
		return err
	}
	before := s.IsDirty()
	if err := sl.set(s, v); err != nil {
		return err
	}
	s.syncParent(before)
	return nil
}

// With assigns through a fluent setter: either a declared "with<Name>" setter
// or the bare property name. It returns the struct for chaining.
func (s *Struct) With(method string, v any) (*Struct, error) {
	name := method
	if p, ok := s.schema.setters[method]; ok {
		name = p
	}
	if err := s.Set(name, v); err != nil {
		return s, err
	}
	return s, nil
}

// IsSet reports whether the property holds a value, nil included.
func (s *Struct) IsSet(name string) (bool, error) {
	sl, err := s.lookup(name)
	if err != nil {
		return false, err
	}
	return sl.IsSet(), nil
}

// Unset removes the value of a set property.
func (s *Struct) Unset(name string) error {
	sl, err := s.lookup(name)
	if err != nil {
		return err
	}
	if !sl.IsSet() {
		return s.stateError(name, "cannot unset already unset property")
	}
	before := s.IsDirty()
	sl.unset(s)
	s.syncParent(before)
	return nil
}

// IsDirty reports whether any property changed since the last clean baseline.
func (s *Struct) IsDirty() bool {
	for _, sl := range s.props {
		if sl.IsDirty() {
			return true
		}
	}
	return false
}

// IsDirtyProperty reports the dirty flag of one property.
func (s *Struct) IsDirtyProperty(name string) (bool, error) {
	sl, err := s.lookup(name)
	if err != nil {
		return false, err
	}
	return sl.IsDirty(), nil
}

// SetDirty marks a set property dirty.
func (s *Struct) SetDirty(name string) error {
	sl, err := s.lookup(name)
	if err != nil {
		return err
	}
	if !sl.IsSet() {
		return s.stateError(name, "cannot mark dirty unset property")
	}
	before := s.IsDirty()
	sl.setDirty()
	s.syncParent(before)
	return nil
}

// SetClean marks one property clean, cleaning nested structs and enums without
// letting them notify back.
func (s *Struct) SetClean(name string) error {
	sl, err := s.lookup(name)
	if err != nil {
		return err
	}
	before := s.IsDirty()
	sl.setClean()
	s.syncParent(before)
	return nil
}

// Clean marks every property clean and notifies the parent when the
// aggregate flipped.
func (s *Struct) Clean() *Struct {
	s.clean(true)
	return s
}

// CleanSilently marks every property clean without notifying the parent.
func (s *Struct) CleanSilently() *Struct {
	s.clean(false)
	return s
}

func (s *Struct) clean(cascade bool) {
	before := s.IsDirty()
	for _, sl := range s.props {
		sl.setClean()
	}
	if cascade {
		s.syncParent(before)
	}
}

// childStateChanged is called by a nested struct or enum held under name when
// its own dirty state flipped.
func (s *Struct) childStateChanged(name string, dirty bool) {
	sl, ok := s.slot(name)
	if !ok {
		return
	}
	before := s.IsDirty()
	if sl.childStateChanged(dirty) {
		s.syncParent(before)
	}
}

// syncParent notifies the parent only when the aggregate dirty state flipped.
func (s *Struct) syncParent(before bool) {
	if s.parent == nil {
		return
	}
	if after := s.IsDirty(); after != before {
		s.parent.childStateChanged(s.nameInParent, after)
	}
}

// GetProperties returns every property in declaration order.
func (s *Struct) GetProperties() []Property {
	out := make([]Property, len(s.props))
	for i, sl := range s.props {
		out[i] = sl
	}
	return out
}

// GetProperty returns one property descriptor.
func (s *Struct) GetProperty(name string) (Property, error) {
	sl, err := s.lookup(name)
	if err != nil {
		return nil, err
	}
	return sl, nil
}

// GetSetProperties returns the set properties in declaration order.
func (s *Struct) GetSetProperties() []Property {
	return s.filter(Property.IsSet)
}

// GetDirtyProperties returns the dirty properties in declaration order.
func (s *Struct) GetDirtyProperties() []Property {
	return s.filter(Property.IsDirty)
}

func (s *Struct) filter(keep func(Property) bool) []Property {
	var out []Property
	for _, sl := range s.props {
		if keep(sl) {
			out = append(out, sl)
		}
	}
	return out
}

// EnumAt returns the enum held by an enum property, attaching a fresh unset
// enum first when the property holds none. Assigning through the returned
// enum marks the property set and dirty.
func (s *Struct) EnumAt(name string) (*Enum, error) {
	sl, err := s.lookup(name)
	if err != nil {
		return nil, err
	}
	ep, ok := sl.(*enumProperty)
	if !ok {
		return nil, Issues{RootPath().Field(name).Issue(CodeInvalidType,
			"property", name, "declaring_type", sl.DeclaringType(), "expected", "enum", "actual", sl.TypeName())}
	}
	if e := ep.enum(); e != nil {
		return e, nil
	}
	return ep.attachUnset(s), nil
}

// Clone returns a deep copy of the struct detached from any parent. Nested
// structs and enums are cloned too; dirty state is preserved.
func (s *Struct) Clone() *Struct {
	c := &Struct{reg: s.reg, schema: s.schema, props: make([]slot, len(s.props))}
	for i, sl := range s.props {
		c.props[i] = sl.clone(c)
	}
	return c
}

// ToArray projects the set properties into plain data: nested structs become
// maps, enums become their values. Object values are kept as is.
func (s *Struct) ToArray() map[string]any {
	out := make(map[string]any, len(s.props))
	for _, sl := range s.props {
		if sl.IsSet() {
			out[sl.Name()] = plainValue(sl.Value())
		}
	}
	return out
}

func plainValue(v any) any {
	switch t := v.(type) {
	case *Struct:
		if t == nil {
			return nil
		}
		return t.ToArray()
	case *Enum:
		if t == nil || !t.isSet {
			return nil
		}
		return t.value
	case []any, map[string]any:
		out, _ := mapCollection(RootPath(), t, func(_ PathRef, e any) (any, error) { return plainValue(e), nil })
		return out
	}
	return v
}

// DebugInfo is a plain snapshot of a struct's state.
type DebugInfo struct {
	Type         string         `json:"type"`
	NameInParent string         `json:"name_in_parent,omitempty"`
	ParentType   string         `json:"parent_type,omitempty"`
	Set          []string       `json:"set"`
	Dirty        []string       `json:"dirty"`
	Data         map[string]any `json:"data"`
}

// Debug returns a snapshot of the struct state for diagnostics.
func (s *Struct) Debug() DebugInfo {
	d := DebugInfo{Type: s.TypeName(), NameInParent: s.nameInParent, Set: []string{}, Dirty: []string{}, Data: s.ToArray()}
	if s.parent != nil {
		d.ParentType = s.parent.TypeName()
	}
	for _, p := range s.GetSetProperties() {
		d.Set = append(d.Set, p.Name())
	}
	for _, p := range s.GetDirtyProperties() {
		d.Dirty = append(d.Dirty, p.Name())
	}
	return d
}
