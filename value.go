package optik

import "reflect"

// cell is the erased payload behind Ref and ConstRef. Exactly one
// implementation exists, instantiated per captured type, so the typed
// pointer is recovered with a single type assertion and never rebuilt
// through reflection.
type cell interface {
	id() TypeID
	// pointer returns the captured *T as an interface value.
	pointer() any
}

type typedCell[T any] struct {
	p *T
}

func (c typedCell[T]) id() TypeID   { return TypeOf[T]() }
func (c typedCell[T]) pointer() any { return c.p }

// dynCell carries a pointer whose type is only known at runtime. pointer
// returns the same interface shape as typedCell, so the typed recovery path
// cannot tell the two apart.
type dynCell struct {
	rv reflect.Value
}

func (c dynCell) id() TypeID   { return typeIDFor(c.rv.Type().Elem()) }
func (c dynCell) pointer() any { return c.rv.Interface() }

// Ref is a mutable type-erased reference to a value owned by the caller.
// It does not own or copy the referent; the caller keeps the referent alive
// for as long as the Ref is in use. The zero Ref is empty and reports Void.
type Ref struct {
	c cell
}

// ConstRef is the read-only counterpart of Ref. Code holding a ConstRef can
// inspect and copy the referent but never mutate it. A Ref converts to a
// ConstRef through Const; there is no conversion back.
type ConstRef struct {
	c cell
}

// RefOf wraps p in a mutable erased reference. A nil p yields the empty Ref,
// so accessors fed the result fail closed instead of dereferencing nil.
func RefOf[T any](p *T) Ref {
	if p == nil {
		return Ref{}
	}
	return Ref{c: typedCell[T]{p: p}}
}

// ConstRefOf wraps p in a read-only erased reference. A nil p yields the
// empty ConstRef.
func ConstRefOf[T any](p *T) ConstRef {
	if p == nil {
		return ConstRef{}
	}
	return ConstRef{c: typedCell[T]{p: p}}
}

// RefTo wraps a pointer held in an interface value, for callers that only
// learn the type at runtime, such as registry-driven binders. v must be a
// non-nil pointer; anything else yields the empty Ref. Prefer RefOf when
// the type is statically known.
func RefTo(v any) Ref {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return Ref{}
	}
	return Ref{c: dynCell{rv: rv}}
}

// ConstRefTo is the read-only counterpart of RefTo.
func ConstRefTo(v any) ConstRef {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return ConstRef{}
	}
	return ConstRef{c: dynCell{rv: rv}}
}

// As recovers the typed pointer behind r. It returns nil when r is empty or
// when r's identity is not exactly T; interface conversions that plain Go
// would allow, such as a concrete type to an interface it implements, are
// not applied.
func As[T any](r Ref) *T {
	if r.c == nil {
		return nil
	}
	p, ok := r.c.pointer().(*T)
	if !ok {
		return nil
	}
	return p
}

// Read copies the value behind r. The second result is false when r is
// empty or does not hold exactly a T.
func Read[T any](r ConstRef) (T, bool) {
	if r.c == nil {
		var zero T
		return zero, false
	}
	p, ok := r.c.pointer().(*T)
	if !ok {
		var zero T
		return zero, false
	}
	return *p, true
}

// constAs recovers the typed pointer behind a read-only reference for use
// inside accessor closures. Callers must not write through the result.
func constAs[T any](r ConstRef) *T {
	if r.c == nil {
		return nil
	}
	p, ok := r.c.pointer().(*T)
	if !ok {
		return nil
	}
	return p
}

// TypeID returns the identity of the referent, or Void when r is empty.
func (r Ref) TypeID() TypeID {
	if r.c == nil {
		return Void
	}
	return r.c.id()
}

// IsZero reports whether r references nothing.
func (r Ref) IsZero() bool { return r.c == nil }

// Const returns a read-only view of the same referent.
func (r Ref) Const() ConstRef { return ConstRef{c: r.c} }

// Clone returns a new reference to the same referent. The referent itself
// is not copied.
func (r Ref) Clone() Ref { return Ref{c: r.c} }

// TypeID returns the identity of the referent, or Void when r is empty.
func (r ConstRef) TypeID() TypeID {
	if r.c == nil {
		return Void
	}
	return r.c.id()
}

// IsZero reports whether r references nothing.
func (r ConstRef) IsZero() bool { return r.c == nil }

// Clone returns a new reference to the same referent.
func (r ConstRef) Clone() ConstRef { return ConstRef{c: r.c} }

// value returns the referent as an interface value, dereferencing the
// captured pointer through reflection. Used where the static type is not
// in scope, such as rule evaluation.
func (r ConstRef) value() (any, bool) {
	if r.c == nil {
		return nil, false
	}
	rv := reflect.ValueOf(r.c.pointer())
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return nil, false
	}
	return rv.Elem().Interface(), true
}
