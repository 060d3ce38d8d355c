package optik

import (
	"fmt"
	"reflect"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Rule is a property capability carrying a validation tag in
// go-playground/validator syntax, for example "gte=0,lte=100". When a Rule
// is attached to a property, Set evaluates candidate values against the tag
// and rejects failures. Malformed tags panic at attachment time, not on the
// access path.
type Rule string

var ruleID = TypeOf[Rule]()

// Property describes one named, typed slot of a class: how to read it, and
// optionally how to write and move it. Properties are built during class
// declaration and immutable afterwards, so all methods are safe for
// concurrent use.
//
// Access methods never panic. A type mismatch between the supplied
// references and the declared owner and value types reports false, as does
// a direction the underlying accessor shape does not support.
type Property struct {
	name  string
	class *Class
	acc   Accessor
	caps  capabilitySet
}

// Name returns the property name, unique within its class.
func (p *Property) Name() string { return p.name }

// Type returns the identity of the property's value type.
func (p *Property) Type() TypeID { return p.acc.value }

// Class returns the class the property was declared on.
func (p *Property) Class() *Class { return p.class }

// CanSet reports whether the property accepts writes.
func (p *Property) CanSet() bool { return p.acc.CanSet() }

// CanMove reports whether Move transfers the value and zeroes its storage.
// When false, Move copies instead.
func (p *Property) CanMove() bool { return p.acc.CanMove() }

// Get copies the property value from the instance behind owner into the
// storage behind out. The owner may reference the declaring type or any
// registered type derived from it; anything else reports false, as does a
// mistyped out reference.
func (p *Property) Get(owner ConstRef, out Ref) bool {
	src, ok := p.rebindConst(owner)
	if !ok {
		return false
	}
	return p.acc.get(src, out)
}

// Set writes the value behind value to the property on the instance behind
// owner. It reports false for read-only properties, mismatched types, and
// values rejected by an attached Rule. Derived owners are rebound to the
// declaring type when a mutable path exists; paths through interface bases
// are read-only and report false here.
func (p *Property) Set(owner Ref, value ConstRef) bool {
	if p.acc.set == nil {
		return false
	}
	dst, ok := p.rebind(owner)
	if !ok {
		return false
	}
	if !p.ruleOK(value) {
		return false
	}
	return p.acc.set(dst, value)
}

// Move transfers the property value into the storage behind out. Shapes
// with direct storage zero the source; the rest degrade to a copy, as
// reported by CanMove. Derived owners follow the same rebinding rules as
// Set.
func (p *Property) Move(owner Ref, out Ref) bool {
	dst, ok := p.rebind(owner)
	if !ok {
		return false
	}
	return p.acc.move(dst, out)
}

// rebind resolves owner to a mutable reference of the declaring type,
// walking the registered hierarchy when owner references a derived type.
func (p *Property) rebind(owner Ref) (Ref, bool) {
	if owner.TypeID() == p.acc.owner {
		return owner, true
	}
	from, ok := p.class.registry.ByType(owner.TypeID())
	if !ok {
		return Ref{}, false
	}
	return from.refToBase(p.class, owner)
}

func (p *Property) rebindConst(owner ConstRef) (ConstRef, bool) {
	if owner.TypeID() == p.acc.owner {
		return owner, true
	}
	from, ok := p.class.registry.ByType(owner.TypeID())
	if !ok {
		return ConstRef{}, false
	}
	return from.constRefToBase(p.class, owner)
}

// AddCapability attaches v to the property, keyed by its dynamic type. The
// first attachment of a type wins; duplicates are logged and discarded.
// Attachments belong to the declaration phase and must not race with
// property access.
func (p *Property) AddCapability(v any) {
	if r, ok := v.(Rule); ok {
		p.checkRule(r)
	}
	p.caps.add(v, p.describe(), p.class.registry.log())
}

func (p *Property) capability(id TypeID) (any, bool) {
	if p == nil {
		return nil, false
	}
	return p.caps.get(id)
}

func (p *Property) describe() string { return p.class.name + "." + p.name }

func (p *Property) ruleOK(value ConstRef) bool {
	v, ok := p.caps.get(ruleID)
	if !ok {
		return true
	}
	tag := string(v.(Rule))
	if tag == "" {
		return true
	}
	if value.TypeID() != p.acc.value {
		// Wrong value type; the write itself rejects it.
		return true
	}
	val, ok := value.value()
	if !ok {
		return false
	}
	return validate.Var(val, tag) == nil
}

// checkRule exercises a tag against the zero value of the property type so
// that malformed tags surface at declaration time.
func (p *Property) checkRule(tag Rule) {
	if tag == "" {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			panic(fmt.Sprintf("optik: invalid rule %q on %s: %v", string(tag), p.describe(), r))
		}
	}()
	zero := reflect.New(p.acc.value.Reflect()).Elem().Interface()
	_ = validate.Var(zero, string(tag))
}

// Get reads property p from the instance behind owner into a typed result.
// It is shorthand for allocating a V and calling p.Get.
func Get[V any](p *Property, owner ConstRef) (V, bool) {
	var v V
	if p == nil || !p.Get(owner, RefOf(&v)) {
		var zero V
		return zero, false
	}
	return v, true
}

// Set writes v to property p on the instance behind owner.
func Set[V any](p *Property, owner Ref, v V) bool {
	if p == nil {
		return false
	}
	return p.Set(owner, ConstRefOf(&v))
}

// Take moves property p out of the instance behind owner.
func Take[V any](p *Property, owner Ref) (V, bool) {
	var v V
	if p == nil || !p.Move(owner, RefOf(&v)) {
		var zero V
		return zero, false
	}
	return v, true
}
