package gostruct

import (
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"go.uber.org/zap"
)

// Registry caches the resolved property templates of every struct type of a
// universe. A schema is built on first use of its type and never changes
// afterwards; instances only ever receive clones of the templates.
//
// A Registry is safe for concurrent use.
type Registry struct {
	u      *Universe
	log    *zap.Logger
	strict bool

	schemas sync.Map // type name -> *schema
	buildMu sync.Mutex
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the logger used for schema build warnings.
func WithLogger(l *zap.Logger) Option {
	return func(r *Registry) {
		if l != nil {
			r.log = l
		}
	}
}

// WithStrictRedefinition turns a rejected property redefinition into a schema
// error instead of a logged warning.
func WithStrictRedefinition() Option { return func(r *Registry) { r.strict = true } }

// NewRegistry creates a registry over the given universe.
func NewRegistry(u *Universe, opts ...Option) *Registry {
	r := &Registry{u: u, log: zap.NewNop()}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Universe returns the type universe schemas are resolved against.
func (r *Registry) Universe() *Universe { return r.u }

type schema struct {
	typeName  string
	templates []slot
	index     map[string]int
	setters   map[string]string // fluent method name -> property name
}

// getOrBuild returns the cached schema of a struct type, building it once.
// Failed builds are not cached.
func (r *Registry) getOrBuild(typeName string) (*schema, error) {
	if v, ok := r.schemas.Load(typeName); ok {
		return v.(*schema), nil
	}
	r.buildMu.Lock()
	defer r.buildMu.Unlock()
	if v, ok := r.schemas.Load(typeName); ok {
		return v.(*schema), nil
	}
	sc, err := r.build(typeName)
	if err != nil {
		return nil, err
	}
	r.schemas.Store(typeName, sc)
	r.log.Debug("schema built", zap.String("struct", typeName), zap.Int("properties", len(sc.templates)))
	return sc, nil
}

// chain returns the struct declarations of typeName and its ancestors,
// ancestor first.
func (r *Registry) chain(typeName string) ([]*StructDef, error) {
	var defs []*StructDef
	seen := map[string]bool{}
	for cur := typeName; cur != ""; {
		if seen[cur] {
			return nil, Issues{RootPath().Issue(CodeUnknownType, "token", cur, "struct", typeName, "property", "(extends)")}
		}
		seen[cur] = true
		def, ok := r.u.structDef(cur)
		if !ok {
			return nil, Issues{RootPath().Issue(CodeUnknownType, "token", cur, "struct", typeName, "property", "(extends)")}
		}
		defs = append(defs, def)
		cur = def.Extends
	}
	for i, j := 0, len(defs)-1; i < j; i, j = i+1, j-1 {
		defs[i], defs[j] = defs[j], defs[i]
	}
	return defs, nil
}

func (r *Registry) build(typeName string) (*schema, error) {
	defs, err := r.chain(typeName)
	if err != nil {
		return nil, err
	}
	sc := &schema{typeName: typeName, index: map[string]int{}, setters: map[string]string{}}
	defaults := map[string]any{}

	for _, def := range defs {
		ns := namespaceOf(def.Name)
		for _, decl := range def.Properties {
			td, err := r.u.Resolve(decl.Type, ns)
			if err != nil {
				it := RootPath().Field(decl.Name).Issue(CodeUnknownType,
					"token", decl.Type, "property", decl.Name, "struct", def.Name, "namespace", ns)
				it.Cause = err
				return nil, Issues{it}
			}
			tmpl := newSlot(r.u, def.Name, decl.Name, td, decl.IsArray)
			i, exists := sc.index[decl.Name]
			if !exists {
				sc.index[decl.Name] = len(sc.templates)
				sc.templates = append(sc.templates, tmpl)
				continue
			}
			old := sc.templates[i]
			if old.IsArray() == decl.IsArray && r.u.IsSubtype(td.Name, old.TypeName()) {
				sc.templates[i] = tmpl
				continue
			}
			if err := r.rejectRedefinition(typeName, old, tmpl); err != nil {
				return nil, err
			}
		}
		for k, v := range def.Defaults {
			defaults[k] = v
		}
	}

	for _, name := range sortedKeys(defaults) {
		i, ok := sc.index[name]
		if !ok {
			continue
		}
		if err := r.seedDefault(typeName, sc.templates[i], defaults[name]); err != nil {
			return nil, err
		}
	}

	for _, def := range defs {
		for _, m := range def.Setters {
			if p, ok := setterTarget(sc.index, m); ok {
				sc.setters[m] = p
				continue
			}
			r.log.Warn("fluent setter names no property", zap.String("struct", typeName), zap.String("setter", m))
		}
	}
	return sc, nil
}

func (r *Registry) rejectRedefinition(typeName string, old, tmpl slot) error {
	if r.strict {
		return Issues{RootPath().Field(old.Name()).Issue(CodeInvalidRedefinition,
			"property", old.Name(), "struct", tmpl.DeclaringType(),
			"inherited_type", old.TypeName()+arraySuffix(old.IsArray()),
			"declared_type", tmpl.TypeName()+arraySuffix(tmpl.IsArray()))}
	}
	r.log.Warn("cannot redefine property, keeping inherited declaration",
		zap.String("struct", typeName),
		zap.String("property", old.Name()),
		zap.String("inherited_type", old.TypeName()+arraySuffix(old.IsArray())),
		zap.String("declared_type", tmpl.TypeName()+arraySuffix(tmpl.IsArray())),
	)
	return nil
}

func arraySuffix(isArray bool) string {
	if isArray {
		return "[]"
	}
	return ""
}

// seedDefault validates a class-level default and stores it in the template.
// Struct-typed properties only accept nil (or an empty collection) since a
// struct instance cannot be shared between instances.
func (r *Registry) seedDefault(typeName string, tmpl slot, v any) error {
	fail := func(cause error) error {
		it := RootPath().Field(tmpl.Name()).Issue(CodeInvalidDefault, "property", tmpl.Name(), "struct", typeName)
		it.Cause = cause
		return Issues{it}
	}
	if tmpl.ContainsStruct() && !isNil(v) {
		coll, ok := toCollection(v)
		if !tmpl.IsArray() || !ok || collectionLen(coll) > 0 {
			return fail(nil)
		}
	}
	if err := tmpl.set(nil, deepCopy(v)); err != nil {
		return fail(err)
	}
	d := tmpl.desc()
	d.hasDefault = true
	d.defaultValue = deepCopy(v)
	return nil
}

func collectionLen(coll any) int {
	switch t := coll.(type) {
	case []any:
		return len(t)
	case map[string]any:
		return len(t)
	}
	return 0
}

// setterTarget maps "withFooBar" to "fooBar" (or "FooBar") and a bare property
// name to itself.
func setterTarget(index map[string]int, method string) (string, bool) {
	if rest, ok := strings.CutPrefix(method, "with"); ok && rest != "" {
		r, size := utf8.DecodeRuneInString(rest)
		lower := string(unicode.ToLower(r)) + rest[size:]
		if _, ok := index[lower]; ok {
			return lower, true
		}
		if _, ok := index[rest]; ok {
			return rest, true
		}
	}
	if _, ok := index[method]; ok {
		return method, true
	}
	return "", false
}

// New creates an empty instance of a struct type. Properties with defaults
// start set and dirty.
func (r *Registry) New(typeName string) (*Struct, error) {
	sc, err := r.getOrBuild(typeName)
	if err != nil {
		return nil, err
	}
	return newStruct(r, sc), nil
}

// MustNew is like New but panics on schema errors.
func (r *Registry) MustNew(typeName string) *Struct {
	s, err := r.New(typeName)
	if err != nil {
		panic(err)
	}
	return s
}

// Schema returns detached copies of the property templates of a struct type
// in declaration order.
func (r *Registry) Schema(typeName string) ([]Property, error) {
	sc, err := r.getOrBuild(typeName)
	if err != nil {
		return nil, err
	}
	out := make([]Property, len(sc.templates))
	for i, t := range sc.templates {
		out[i] = t.clone(nil)
	}
	return out, nil
}
