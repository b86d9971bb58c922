package gostruct

// WithDirtyPropertiesOnly returns a new, parentless struct holding copies of
// the dirty properties only. A nested struct that is itself dirty is reduced
// the same way; one that was assigned wholesale and is clean is copied in
// full. The receiver is not modified.
func (s *Struct) WithDirtyPropertiesOnly() *Struct {
	out := s.blank()
	for i, sl := range s.props {
		if !sl.IsDirty() {
			continue
		}
		if err := out.props[i].set(out, dirtyProjection(sl.Value())); err != nil {
			panic(err)
		}
	}
	return out
}

// blank returns an instance of the same type with every property unset,
// defaults included.
func (s *Struct) blank() *Struct {
	out := &Struct{reg: s.reg, schema: s.schema, props: make([]slot, len(s.props))}
	for i, t := range s.schema.templates {
		c := t.clone(out)
		c.desc().clear()
		out.props[i] = c
	}
	return out
}

func dirtyProjection(v any) any {
	switch t := v.(type) {
	case *Struct:
		if t == nil {
			return nil
		}
		if t.IsDirty() {
			return t.WithDirtyPropertiesOnly()
		}
		return t.Clone()
	case *Enum:
		if t == nil {
			return nil
		}
		return t.clone()
	case []any, map[string]any:
		out, _ := mapCollection(RootPath(), t, func(_ PathRef, e any) (any, error) { return dirtyProjection(e), nil })
		return out
	}
	return deepCopy(v)
}
