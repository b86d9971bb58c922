package gostruct

// CreateFromUntyped allocates an instance of typeName and materializes data
// into it. On error the partially built struct is discarded.
func (r *Registry) CreateFromUntyped(typeName string, data map[string]any) (*Struct, error) {
	s, err := r.New(typeName)
	if err != nil {
		return nil, err
	}
	if err := s.ApplyUntyped(data); err != nil {
		return nil, err
	}
	return s, nil
}

// ApplyUntyped assigns every declared property present in data, in
// declaration order. Nested maps become struct instances, strings become
// object values through the type's codec and enum scalars are wrapped into
// dirty enum instances. Keys unknown to the schema are ignored.
//
// The first failure aborts with an error located at the full property path;
// the struct must not be used afterwards.
func (s *Struct) ApplyUntyped(data map[string]any) error {
	for _, sl := range s.props {
		v, ok := data[sl.Name()]
		if !ok {
			continue
		}
		nv, err := s.materialize(sl, v)
		if err != nil {
			return err
		}
		if err := s.Set(sl.Name(), nv); err != nil {
			return err
		}
	}
	return nil
}

func (s *Struct) materialize(sl slot, v any) (any, error) {
	if isNil(v) {
		return nil, nil
	}
	d := sl.desc()
	if !d.containsStruct && d.objectDef == nil {
		return v, nil
	}
	if !d.isArray {
		return s.materializeOne(d, d.path(), v)
	}
	coll, ok := toCollection(v)
	if !ok {
		return v, nil
	}
	return mapCollection(d.path(), coll, func(p PathRef, e any) (any, error) {
		nv, err := s.materializeOne(d, p, e)
		if err != nil {
			return nil, err
		}
		return sl.check(p, nv)
	})
}

// materializeOne converts one untyped value destined for a struct or object
// typed slot.
func (s *Struct) materializeOne(d *descriptor, p PathRef, v any) (any, error) {
	switch {
	case d.containsStruct:
		m, ok := untypedMap(v)
		if !ok {
			return v, nil
		}
		child, err := s.reg.New(d.typ.Name)
		if err != nil {
			return nil, err
		}
		if err := child.ApplyUntyped(m); err != nil {
			return nil, rebaseIssues(p, err)
		}
		return child, nil
	case d.objectDef != nil && d.objectDef.Codec != nil:
		str, ok := v.(string)
		if !ok {
			return v, nil
		}
		obj, err := d.objectDef.Codec.Decode(str)
		if err != nil {
			it := p.Issue(CodeInvalidType,
				"property", d.name, "declaring_type", d.declaringType, "expected", d.typ.Name, "actual", formatValue(v))
			it.Cause = err
			return nil, Issues{it}
		}
		return obj, nil
	}
	return v, nil
}

func untypedMap(v any) (map[string]any, bool) {
	if _, isStruct := v.(*Struct); isStruct {
		return nil, false
	}
	coll, ok := toCollection(v)
	if !ok {
		return nil, false
	}
	m, ok := coll.(map[string]any)
	return m, ok
}
