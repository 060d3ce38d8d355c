package optik

import "reflect"

// TypeID identifies a static Go type. Two TypeIDs compare equal if and only
// if they identify the same type, so values are directly usable as map keys.
// The zero value is Void, the identity carried by empty erased references.
type TypeID struct {
	rt reflect.Type
}

// Void is the canonical identity of "no type". Empty Ref and ConstRef values
// report it from their TypeID method.
var Void = TypeID{}

// TypeOf returns the identity of T.
//
// For an interface type T the identity is the interface type itself, not the
// identity of any implementation.
func TypeOf[T any]() TypeID {
	return TypeID{rt: reflect.TypeFor[T]()}
}

// typeIDFor wraps a reflect.Type. A nil type yields Void.
func typeIDFor(rt reflect.Type) TypeID {
	return TypeID{rt: rt}
}

// IsVoid reports whether id is the empty identity.
func (id TypeID) IsVoid() bool { return id.rt == nil }

// Name returns the type's short name. Unnamed types and Void return "".
func (id TypeID) Name() string {
	if id.rt == nil {
		return ""
	}
	return id.rt.Name()
}

// PkgPath returns the import path of the package defining the type.
// Built-in, unnamed, and void identities return "".
func (id TypeID) PkgPath() string {
	if id.rt == nil {
		return ""
	}
	return id.rt.PkgPath()
}

// Kind returns the reflect.Kind of the identified type, or reflect.Invalid
// for Void.
func (id TypeID) Kind() reflect.Kind {
	if id.rt == nil {
		return reflect.Invalid
	}
	return id.rt.Kind()
}

// Reflect returns the underlying reflect.Type, or nil for Void.
func (id TypeID) Reflect() reflect.Type { return id.rt }

// String returns the type's string form, or "<void>" for the empty identity.
func (id TypeID) String() string {
	if id.rt == nil {
		return "<void>"
	}
	return id.rt.String()
}
