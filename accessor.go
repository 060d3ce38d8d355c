package optik

// Accessor binds one access strategy to a concrete owner and value type.
// The strategy shape is resolved once, when the accessor is constructed, into
// a closure triple; property access afterwards costs two type assertions and
// a call, with no per-access reflection.
//
// Four constructors cover the supported shapes:
//
//	Field         direct pointer to a stored value; read, write, move
//	Getter        computed value; read only
//	GetterSetter  computed value with a write hook; read, write
//	GetterRef     computed read plus pointer access; read, write, move
//
// Accessors are immutable and safe for concurrent use.
type Accessor struct {
	owner TypeID
	value TypeID

	get  func(owner ConstRef, out Ref) bool
	set  func(owner Ref, value ConstRef) bool // nil for read-only shapes
	move func(owner Ref, out Ref) bool

	// moves records whether move transfers ownership by zeroing the source.
	// Shapes without a pointer path degrade move to a plain copy.
	moves bool
}

// OwnerType returns the identity of the type the accessor reads from.
func (a Accessor) OwnerType() TypeID { return a.owner }

// ValueType returns the identity of the accessed value.
func (a Accessor) ValueType() TypeID { return a.value }

// CanSet reports whether the shape supports writes.
func (a Accessor) CanSet() bool { return a.set != nil }

// CanMove reports whether Move transfers the value out, leaving the source
// zeroed. When false, Move falls back to copying and the source keeps its
// value.
func (a Accessor) CanMove() bool { return a.moves }

// Field declares access to a value stored inside the owner. ptr selects the
// storage location, typically a struct field:
//
//	optik.Field(func(p *Point) *float64 { return &p.X })
//
// Field supports reads, writes, and true moves.
func Field[O, V any](ptr func(*O) *V) Accessor {
	if ptr == nil {
		panic("optik: Field requires a non-nil pointer selector")
	}
	return Accessor{
		owner: TypeOf[O](),
		value: TypeOf[V](),
		get: func(owner ConstRef, out Ref) bool {
			o, dst := constAs[O](owner), As[V](out)
			if o == nil || dst == nil {
				return false
			}
			*dst = *ptr(o)
			return true
		},
		set: func(owner Ref, value ConstRef) bool {
			o, src := As[O](owner), constAs[V](value)
			if o == nil || src == nil {
				return false
			}
			*ptr(o) = *src
			return true
		},
		move: func(owner Ref, out Ref) bool {
			o, dst := As[O](owner), As[V](out)
			if o == nil || dst == nil {
				return false
			}
			slot := ptr(o)
			*dst = *slot
			var zero V
			*slot = zero
			return true
		},
		moves: true,
	}
}

// Getter declares a read-only computed property. Writes report false and
// moves degrade to copies.
func Getter[O, V any](get func(*O) V) Accessor {
	if get == nil {
		panic("optik: Getter requires a non-nil getter")
	}
	g := getterFunc[O](get)
	return Accessor{
		owner: TypeOf[O](),
		value: TypeOf[V](),
		get:   g,
		move:  moveByCopy(g),
	}
}

// GetterSetter declares a computed property with a write hook. Moves degrade
// to copies since no pointer path to the value exists.
func GetterSetter[O, V any](get func(*O) V, set func(*O, V)) Accessor {
	if get == nil || set == nil {
		panic("optik: GetterSetter requires a getter and a setter")
	}
	g := getterFunc[O](get)
	return Accessor{
		owner: TypeOf[O](),
		value: TypeOf[V](),
		get:   g,
		set: func(owner Ref, value ConstRef) bool {
			o, src := As[O](owner), constAs[V](value)
			if o == nil || src == nil {
				return false
			}
			set(o, *src)
			return true
		},
		move: moveByCopy(g),
	}
}

// GetterRef declares a property read through a getter but written and moved
// through a pointer to its storage. The shape suits values whose reads are
// normalized or cached while writes land in a concrete slot.
func GetterRef[O, V any](get func(*O) V, ref func(*O) *V) Accessor {
	if get == nil || ref == nil {
		panic("optik: GetterRef requires a getter and a reference selector")
	}
	return Accessor{
		owner: TypeOf[O](),
		value: TypeOf[V](),
		get:   getterFunc[O](get),
		set: func(owner Ref, value ConstRef) bool {
			o, src := As[O](owner), constAs[V](value)
			if o == nil || src == nil {
				return false
			}
			*ref(o) = *src
			return true
		},
		move: func(owner Ref, out Ref) bool {
			o, dst := As[O](owner), As[V](out)
			if o == nil || dst == nil {
				return false
			}
			slot := ref(o)
			*dst = *slot
			var zero V
			*slot = zero
			return true
		},
		moves: true,
	}
}

func getterFunc[O, V any](get func(*O) V) func(ConstRef, Ref) bool {
	return func(owner ConstRef, out Ref) bool {
		o, dst := constAs[O](owner), As[V](out)
		if o == nil || dst == nil {
			return false
		}
		*dst = get(o)
		return true
	}
}

// moveByCopy adapts a read closure for shapes that cannot hand out their
// storage: the value is copied and the source left untouched.
func moveByCopy(get func(ConstRef, Ref) bool) func(Ref, Ref) bool {
	return func(owner Ref, out Ref) bool {
		return get(owner.Const(), out)
	}
}
