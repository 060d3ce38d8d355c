package optik

import (
	"fmt"
	"log/slog"
	"reflect"
)

// Class describes one registered type: its canonical name, aliases, bases,
// properties, capabilities, and how to construct instances. Classes are
// built once, on first request, and immutable afterwards; every accessor is
// safe for unsynchronized concurrent use.
//
// The same *Class pointer is returned for a type on every lookup, so
// identity comparison with == is the intended way to test for a class.
type Class struct {
	name     string
	id       TypeID
	registry *Registry

	aliases      []string
	bases        []baseLink
	pendingBases []TypeID
	props        []*Property
	propIdx      map[string]*Property
	abstract     bool
	factory      func() (any, Ref)
	caps         capabilitySet
}

// baseLink ties a direct base class to the reference converters that rebind
// an owner instance to its base subobject. Struct embeds rebind by field
// address and stay mutable; interface bases copy into a fresh interface
// value and support reads only, so toBase is nil for them.
type baseLink struct {
	class       *Class
	toBase      func(Ref) Ref
	constToBase func(ConstRef) ConstRef
}

// Name returns the canonical class name.
func (c *Class) Name() string { return c.name }

// String returns the canonical class name.
func (c *Class) String() string { return c.name }

// Type returns the identity of the described Go type.
func (c *Class) Type() TypeID { return c.id }

// Aliases returns the alternative lookup names, in declaration order.
func (c *Class) Aliases() []string {
	out := make([]string, len(c.aliases))
	copy(out, c.aliases)
	return out
}

// Bases returns the direct base classes, in declaration order.
func (c *Class) Bases() []*Class {
	out := make([]*Class, len(c.bases))
	for i, l := range c.bases {
		out[i] = l.class
	}
	return out
}

// Properties returns the properties declared on this class, in declaration
// order. Inherited properties are not included; resolve those through
// Property.
func (c *Class) Properties() []*Property {
	out := make([]*Property, len(c.props))
	copy(out, c.props)
	return out
}

// Property returns the named property, checking this class first and then
// the base hierarchy depth-first in declaration order, so a derived
// declaration shadows a base one. Classes reached through more than one
// path are visited once. It returns nil when no class in the hierarchy
// declares the name.
func (c *Class) Property(name string) *Property {
	if p, ok := c.propIdx[name]; ok {
		return p
	}
	seen := map[*Class]bool{c: true}
	return c.baseProperty(name, seen)
}

func (c *Class) baseProperty(name string, seen map[*Class]bool) *Property {
	for _, l := range c.bases {
		if seen[l.class] {
			continue
		}
		seen[l.class] = true
		if p, ok := l.class.propIdx[name]; ok {
			return p
		}
		if p := l.class.baseProperty(name, seen); p != nil {
			return p
		}
	}
	return nil
}

// IsA reports whether c is other or has other anywhere in its base
// hierarchy. Every class IsA itself. Diamonds are walked once per class.
func (c *Class) IsA(other *Class) bool {
	if other == nil {
		return false
	}
	if c == other {
		return true
	}
	seen := make(map[*Class]bool)
	var walk func(*Class) bool
	walk = func(k *Class) bool {
		for _, l := range k.bases {
			if seen[l.class] {
				continue
			}
			seen[l.class] = true
			if l.class == other || walk(l.class) {
				return true
			}
		}
		return false
	}
	return walk(c)
}

// refToBase rebinds r, which references an instance of c's type, to the
// subobject belonging to target. Paths are tried in declaration order; in a
// diamond of plain embeds the two root subobjects are distinct and the
// first path wins. The rebind fails when no all-mutable path exists, which
// includes any path through an interface base.
func (c *Class) refToBase(target *Class, r Ref) (Ref, bool) {
	if c == target {
		return r, true
	}
	for i := range c.bases {
		l := &c.bases[i]
		if l.toBase == nil {
			continue
		}
		nr := l.toBase(r)
		if nr.IsZero() {
			continue
		}
		if out, ok := l.class.refToBase(target, nr); ok {
			return out, true
		}
	}
	return Ref{}, false
}

// constRefToBase is refToBase for read-only references. Interface hops are
// allowed: the instance is boxed into a fresh interface value, which is
// sound for reads.
func (c *Class) constRefToBase(target *Class, r ConstRef) (ConstRef, bool) {
	if c == target {
		return r, true
	}
	for i := range c.bases {
		l := &c.bases[i]
		nr := l.constToBase(r)
		if nr.IsZero() {
			continue
		}
		if out, ok := l.class.constRefToBase(target, nr); ok {
			return out, true
		}
	}
	return ConstRef{}, false
}

// IsAbstract reports whether the class describes an interface type or was
// marked abstract during declaration.
func (c *Class) IsAbstract() bool { return c.abstract }

// IsInstantiable reports whether New can produce instances.
func (c *Class) IsInstantiable() bool { return c.factory != nil }

// New constructs a fresh instance through the class factory and returns it
// as an owning Object. Abstract classes and classes marked non-instantiable
// return an error wrapping ErrNotInstantiable.
func (c *Class) New() (Object, error) {
	if c.factory == nil {
		return Object{}, fmt.Errorf("optik: new %s: %w", c.name, ErrNotInstantiable)
	}
	v, ref := c.factory()
	return Object{class: c, value: v, ref: ref}, nil
}

// AddCapability attaches v to the class, keyed by its dynamic type. The
// first attachment of a type wins; duplicates are logged and discarded.
// Attachments belong to the declaration phase and must not race with reads.
func (c *Class) AddCapability(v any) {
	c.caps.add(v, c.name, c.registry.log())
}

func (c *Class) capability(id TypeID) (any, bool) {
	if c == nil {
		return nil, false
	}
	return c.caps.get(id)
}

// Builder declares the contents of a class. One is handed to the function
// registered with Define when the class is first built; it must not be
// retained after that function returns.
//
// Builder methods panic on declaration bugs such as mismatched accessor
// owners or structural base violations, and log-and-ignore redundant
// declarations such as duplicate property names.
type Builder[T any] struct {
	c *Class
}

// newBuilder prepares the class defaults for T: interface types start
// abstract, everything else gets a zero-value factory.
func newBuilder[T any](c *Class) *Builder[T] {
	if c.id.Kind() == reflect.Interface {
		c.abstract = true
	} else {
		c.factory = func() (any, Ref) {
			p := new(T)
			return p, RefOf(p)
		}
	}
	return &Builder[T]{c: c}
}

// Alias registers alternative lookup names for the class. Aliases never
// shadow canonical names: ByName resolves canonical names first, and an
// alias matching any declared canonical name is discarded with a warning
// when the class is published.
func (b *Builder[T]) Alias(names ...string) {
	for _, name := range names {
		if name == "" {
			panic("optik: empty alias on class " + b.c.name)
		}
		if name == b.c.name || b.c.hasAlias(name) {
			b.c.registry.log().Warn("duplicate alias registration, ignoring",
				slog.String("class", b.c.name),
				slog.String("alias", name))
			continue
		}
		b.c.aliases = append(b.c.aliases, name)
	}
}

func (c *Class) hasAlias(name string) bool {
	for _, a := range c.aliases {
		if a == name {
			return true
		}
	}
	return false
}

// Prop declares a named property backed by acc. The accessor's owner type
// must be the class type; a mismatch panics. Declaring a name twice logs a
// warning and keeps the first declaration; the duplicate is returned
// detached so capability attachments on it are discarded along with it.
func (b *Builder[T]) Prop(name string, acc Accessor) *Property {
	if name == "" {
		panic("optik: empty property name on class " + b.c.name)
	}
	if acc.get == nil {
		panic(fmt.Sprintf("optik: property %s.%s has no accessor", b.c.name, name))
	}
	if acc.owner != b.c.id {
		panic(fmt.Sprintf("optik: property %s.%s accessor owner is %s, class type is %s",
			b.c.name, name, acc.owner, b.c.id))
	}
	p := &Property{name: name, class: b.c, acc: acc}
	if _, dup := b.c.propIdx[name]; dup {
		b.c.registry.log().Warn("duplicate property registration, ignoring",
			slog.String("class", b.c.name),
			slog.String("property", name))
		return p
	}
	if b.c.propIdx == nil {
		b.c.propIdx = make(map[string]*Property)
	}
	b.c.props = append(b.c.props, p)
	b.c.propIdx[name] = p
	return p
}

// Capability attaches v to the class under declaration.
func (b *Builder[T]) Capability(v any) {
	b.c.AddCapability(v)
}

// Factory replaces the default zero-value factory. Declaring a factory on
// an abstract class panics.
func (b *Builder[T]) Factory(fn func() *T) {
	if fn == nil {
		panic("optik: nil factory on class " + b.c.name)
	}
	if b.c.abstract {
		panic("optik: factory on abstract class " + b.c.name)
	}
	b.c.factory = func() (any, Ref) {
		p := fn()
		return p, RefOf(p)
	}
}

// MarkAbstract forbids instantiation of the class. Interface types are
// abstract without being marked.
func (b *Builder[T]) MarkAbstract() {
	b.c.abstract = true
	b.c.factory = nil
}

// Base records B as a direct base of the class under declaration. The
// relationship must be visible in the Go type structure: a struct owner
// embeds the base type directly or by pointer, and interface bases must be
// implemented by the owner or its pointer type. Violations panic.
//
// B must itself be declared in the same registry. It is resolved, built if
// necessary, when the declaring class is first constructed; an undeclared
// base panics at that point.
func Base[B, T any](b *Builder[T]) {
	ownerRT := reflect.TypeFor[T]()
	baseRT := reflect.TypeFor[B]()
	if baseRT == ownerRT {
		panic("optik: class " + b.c.name + " cannot declare itself as a base")
	}
	if !basedOn(ownerRT, baseRT) {
		panic(fmt.Sprintf("optik: %s is not a base of %s", baseRT, ownerRT))
	}
	id := typeIDFor(baseRT)
	for _, pending := range b.c.pendingBases {
		if pending == id {
			b.c.registry.log().Warn("duplicate base registration, ignoring",
				slog.String("class", b.c.name),
				slog.String("base", id.String()))
			return
		}
	}
	b.c.pendingBases = append(b.c.pendingBases, id)
}

// basedOn reports whether base is structurally a base of owner: an
// interface the owner implements, or a type the owner embeds.
func basedOn(owner, base reflect.Type) bool {
	if base.Kind() == reflect.Interface {
		if owner.Implements(base) {
			return true
		}
		return owner.Kind() != reflect.Interface && reflect.PointerTo(owner).Implements(base)
	}
	if owner.Kind() != reflect.Struct {
		return false
	}
	return embedField(owner, base) >= 0
}

// embedField returns the index of the anonymous field embedding base in
// owner, by value or by pointer, or -1.
func embedField(owner, base reflect.Type) int {
	for i := 0; i < owner.NumField(); i++ {
		f := owner.Field(i)
		if !f.Anonymous {
			continue
		}
		if f.Type == base || (f.Type.Kind() == reflect.Pointer && f.Type.Elem() == base) {
			return i
		}
	}
	return -1
}

// makeBaseLink builds the reference converters from owner instances to the
// base subobject.
func makeBaseLink(owner TypeID, base *Class) baseLink {
	l := baseLink{class: base}
	ownerRT := owner.Reflect()
	baseRT := base.id.Reflect()

	if baseRT.Kind() == reflect.Interface {
		l.constToBase = func(r ConstRef) ConstRef {
			if r.c == nil {
				return ConstRef{}
			}
			pv := reflect.ValueOf(r.c.pointer())
			box := reflect.New(baseRT)
			switch {
			case pv.Type().Implements(baseRT):
				box.Elem().Set(pv)
			case pv.Type().Elem().Implements(baseRT):
				box.Elem().Set(pv.Elem())
			default:
				return ConstRef{}
			}
			return ConstRef{c: dynCell{rv: box}}
		}
		return l
	}

	idx := embedField(ownerRT, baseRT)
	if idx < 0 {
		// Unreachable for links created through Base, which checks the
		// structure at declaration time.
		l.constToBase = func(ConstRef) ConstRef { return ConstRef{} }
		return l
	}
	byPtr := ownerRT.Field(idx).Type.Kind() == reflect.Pointer

	field := func(p any) (reflect.Value, bool) {
		fv := reflect.ValueOf(p).Elem().Field(idx)
		if byPtr {
			if fv.IsNil() {
				return reflect.Value{}, false
			}
			return fv, true
		}
		return fv.Addr(), true
	}
	l.toBase = func(r Ref) Ref {
		if r.c == nil {
			return Ref{}
		}
		fv, ok := field(r.c.pointer())
		if !ok {
			return Ref{}
		}
		return Ref{c: dynCell{rv: fv}}
	}
	l.constToBase = func(r ConstRef) ConstRef {
		if r.c == nil {
			return ConstRef{}
		}
		fv, ok := field(r.c.pointer())
		if !ok {
			return ConstRef{}
		}
		return ConstRef{c: dynCell{rv: fv}}
	}
	return l
}
