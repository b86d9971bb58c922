package gostruct

// arrayProperty holds a typed collection ([]any or map[string]any). The only
// supported mutation is whole-collection replacement.
type arrayProperty struct{ descriptor }

func (p *arrayProperty) Variant() Variant { return VariantArrayOfScalar }

// check validates a single element.
func (p *arrayProperty) check(path PathRef, v any) (any, error) { return p.singleCheck(path, v) }

// validate checks every element of v and returns the new collection. Any
// failing element rejects the whole value.
func (p *arrayProperty) validate(v any, elem func(PathRef, any) (any, error)) (any, error) {
	if isNil(v) {
		return nil, nil
	}
	coll, ok := toCollection(v)
	if !ok {
		return nil, p.mismatch(p.path(), v, p.expected())
	}
	return mapCollection(p.path(), coll, elem)
}

func (p *arrayProperty) set(_ *Struct, v any) error {
	nv, err := p.validate(v, p.check)
	if err != nil {
		return err
	}
	p.store(nv)
	return nil
}

func (p *arrayProperty) setClean() {
	if p.isSet {
		p.isDirty = false
	}
}

func (p *arrayProperty) setDirty() {
	if p.isSet {
		p.isDirty = true
	}
}

func (p *arrayProperty) unset(_ *Struct) { p.clear() }

func (p *arrayProperty) clone(_ *Struct) slot {
	c := *p
	c.val = deepCopy(p.val)
	return &c
}

// elementStateChanged is the shared element rule of struct and enum arrays:
// an element turning dirty marks the array dirty, an element turning clean
// leaves the array dirty only while another element still is.
func (p *arrayProperty) elementStateChanged(dirty bool, elemDirty func(any) bool) bool {
	if !p.isSet {
		return false
	}
	next := dirty
	if !dirty {
		eachElement(p.val, func(v any) {
			if elemDirty(v) {
				next = true
			}
		})
	}
	if next == p.isDirty {
		return false
	}
	p.isDirty = next
	return true
}

func (p *arrayProperty) reattach(owner *Struct, old, next any) {
	eachElement(old, func(v any) { detach(v, owner, p.name) })
	eachElement(next, func(v any) { attach(v, owner, p.name) })
}

// ---- Array of struct ----

type structArrayProperty struct{ arrayProperty }

func (p *structArrayProperty) Variant() Variant { return VariantArrayOfStruct }

func (p *structArrayProperty) set(owner *Struct, v any) error {
	nv, err := p.validate(v, func(path PathRef, e any) (any, error) {
		ne, err := p.check(path, e)
		if err != nil {
			return nil, err
		}
		return ne, p.rejectCycle(owner, path, ne)
	})
	if err != nil {
		return err
	}
	p.reattach(owner, p.val, nv)
	p.store(nv)
	return nil
}

// setClean cleans every element without letting them notify back.
func (p *structArrayProperty) setClean() {
	eachElement(p.val, func(v any) {
		if s, ok := v.(*Struct); ok && s != nil {
			s.clean(false)
		}
	})
	p.isDirty = false
}

func (p *structArrayProperty) unset(owner *Struct) {
	p.reattach(owner, p.val, nil)
	p.clear()
}

func (p *structArrayProperty) childStateChanged(dirty bool) bool {
	return p.elementStateChanged(dirty, func(v any) bool {
		s, ok := v.(*Struct)
		return ok && s != nil && s.IsDirty()
	})
}

func (p *structArrayProperty) clone(owner *Struct) slot {
	c := *p
	c.val, _ = mapCollection(RootPath(), p.val, func(_ PathRef, v any) (any, error) {
		if s, ok := v.(*Struct); ok && s != nil {
			cs := s.Clone()
			attach(cs, owner, p.name)
			return cs, nil
		}
		return v, nil
	})
	return &c
}

// ---- Array of enum ----

type enumArrayProperty struct{ arrayProperty }

func (p *enumArrayProperty) Variant() Variant { return VariantArrayOfEnum }

// check wraps a raw element into an enum instance.
func (p *enumArrayProperty) check(path PathRef, v any) (any, error) {
	return wrapEnum(&p.descriptor, path, v)
}

func (p *enumArrayProperty) set(owner *Struct, v any) error {
	nv, err := p.validate(v, p.check)
	if err != nil {
		return err
	}
	eachElement(nv, func(v any) { v.(*Enum).markDirty() })
	p.reattach(owner, p.val, nv)
	p.store(nv)
	return nil
}

func (p *enumArrayProperty) setClean() {
	eachElement(p.val, func(v any) { v.(*Enum).markClean() })
	p.isDirty = false
}

func (p *enumArrayProperty) setDirty() {
	if !p.isSet {
		return
	}
	eachElement(p.val, func(v any) { v.(*Enum).markDirty() })
	p.isDirty = true
}

func (p *enumArrayProperty) unset(owner *Struct) {
	p.reattach(owner, p.val, nil)
	p.clear()
}

func (p *enumArrayProperty) childStateChanged(dirty bool) bool {
	return p.elementStateChanged(dirty, func(v any) bool { return v.(*Enum).IsDirty() })
}

func (p *enumArrayProperty) clone(owner *Struct) slot {
	c := *p
	c.val, _ = mapCollection(RootPath(), p.val, func(_ PathRef, v any) (any, error) {
		ce := v.(*Enum).clone()
		attach(ce, owner, p.name)
		return ce, nil
	})
	return &c
}
