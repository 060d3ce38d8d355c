package optik

// Object is an owning handle to an instance produced by Class.New. It keeps
// the allocation reachable and pairs it with the class that built it, which
// is the piece dynamic callers need that a bare Ref cannot carry.
//
// The zero Object is empty; its references are empty and its class is nil.
type Object struct {
	class *Class
	value any
	ref   Ref
}

// Class returns the class that constructed the instance, or nil for the
// empty Object.
func (o Object) Class() *Class { return o.class }

// Ref returns a mutable reference to the instance.
func (o Object) Ref() Ref { return o.ref }

// Const returns a read-only reference to the instance.
func (o Object) Const() ConstRef { return o.ref.Const() }

// Pointer returns the instance as an interface value holding *T, where T is
// the constructed type. It returns nil for the empty Object.
func (o Object) Pointer() any { return o.value }

// IsZero reports whether o holds no instance.
func (o Object) IsZero() bool { return o.class == nil }

// ObjectAs recovers the typed instance pointer, or nil when the object does
// not hold exactly a T.
func ObjectAs[T any](o Object) *T {
	p, _ := o.value.(*T)
	return p
}

// NewObject instantiates the class registered for T in the default
// registry. Like ClassOf, it panics when T was never declared.
func NewObject[T any]() (Object, error) {
	return ClassOf[T]().New()
}

// NewObjectIn is NewObject against an explicit registry.
func NewObjectIn[T any](r *Registry) (Object, error) {
	return ClassOfIn[T](r).New()
}
