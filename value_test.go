package optik

import (
	"reflect"
	"testing"
)

func TestTypeOf_Identity(t *testing.T) {
	if TypeOf[testPoint]() != TypeOf[testPoint]() {
		t.Error("expected equal TypeIDs for the same type")
	}
	if TypeOf[testPoint]() == TypeOf[testCircle]() {
		t.Error("expected distinct TypeIDs for distinct types")
	}
	id := TypeOf[testPoint]()
	if id.Name() != "testPoint" {
		t.Errorf("expected name testPoint, got %s", id.Name())
	}
	if id.Kind() != reflect.Struct {
		t.Errorf("expected struct kind, got %s", id.Kind())
	}
	if id.IsVoid() {
		t.Error("expected non-void identity")
	}
}

func TestTypeOf_Interface(t *testing.T) {
	id := TypeOf[testShape]()
	if id.Kind() != reflect.Interface {
		t.Errorf("expected interface kind, got %s", id.Kind())
	}
	if id == TypeOf[testCircle]() {
		t.Error("expected interface identity to differ from implementation identity")
	}
}

func TestVoid(t *testing.T) {
	if !Void.IsVoid() {
		t.Error("expected Void to be void")
	}
	if (TypeID{}) != Void {
		t.Error("expected zero TypeID to equal Void")
	}
	if Void.Name() != "" {
		t.Errorf("expected empty name, got %s", Void.Name())
	}
	if Void.Kind() != reflect.Invalid {
		t.Errorf("expected invalid kind, got %s", Void.Kind())
	}
	if Void.String() != "<void>" {
		t.Errorf("expected <void>, got %s", Void.String())
	}
}

func TestRefOf_RoundTrip(t *testing.T) {
	p := testPoint{X: 1, Y: 2}
	r := RefOf(&p)

	if r.IsZero() {
		t.Fatal("expected non-empty ref")
	}
	if r.TypeID() != TypeOf[testPoint]() {
		t.Errorf("expected testPoint identity, got %s", r.TypeID())
	}

	got := As[testPoint](r)
	if got != &p {
		t.Fatal("expected As to return the wrapped pointer")
	}
	got.X = 10
	if p.X != 10 {
		t.Error("expected mutation through As to reach the referent")
	}
}

func TestRefOf_Nil(t *testing.T) {
	r := RefOf[testPoint](nil)
	if !r.IsZero() {
		t.Error("expected nil pointer to produce an empty ref")
	}
	if r.TypeID() != Void {
		t.Errorf("expected Void identity, got %s", r.TypeID())
	}
	if As[testPoint](r) != nil {
		t.Error("expected As on empty ref to return nil")
	}
}

func TestAs_ExactTypeOnly(t *testing.T) {
	c := testCircle{Radius: 2}
	r := RefOf(&c)

	if As[testCircle](r) == nil {
		t.Error("expected exact type to match")
	}
	if As[testShape](r) != nil {
		t.Error("expected interface conversion to be refused")
	}
	if As[float64](r) != nil {
		t.Error("expected unrelated type to be refused")
	}

	// The reverse direction is refused too: a ref to an interface variable
	// does not unwrap to the implementation type.
	var s testShape = c
	rs := RefOf(&s)
	if As[testCircle](rs) != nil {
		t.Error("expected interface ref not to match implementation type")
	}
	if As[testShape](rs) == nil {
		t.Error("expected interface ref to match its own type")
	}
}

func TestRefTo_Dynamic(t *testing.T) {
	p := testPoint{X: 5}
	var v any = &p

	r := RefTo(v)
	if r.TypeID() != TypeOf[testPoint]() {
		t.Errorf("expected testPoint identity, got %s", r.TypeID())
	}
	// A dynamically built ref is indistinguishable from a static one.
	if As[testPoint](r) != &p {
		t.Error("expected As to recover the wrapped pointer")
	}

	if !RefTo(nil).IsZero() {
		t.Error("expected nil to produce an empty ref")
	}
	if !RefTo(testPoint{}).IsZero() {
		t.Error("expected a non-pointer to produce an empty ref")
	}
	if !RefTo((*testPoint)(nil)).IsZero() {
		t.Error("expected a nil pointer to produce an empty ref")
	}

	cr := ConstRefTo(v)
	if got, ok := Read[testPoint](cr); !ok || got.X != 5 {
		t.Errorf("expected to read X=5, got %+v ok=%v", got, ok)
	}
}

func TestRead(t *testing.T) {
	p := testPoint{X: 3, Y: 4}
	cr := ConstRefOf(&p)

	got, ok := Read[testPoint](cr)
	if !ok {
		t.Fatal("expected read to succeed")
	}
	if got != p {
		t.Errorf("expected %+v, got %+v", p, got)
	}

	if _, ok := Read[testCircle](cr); ok {
		t.Error("expected read with wrong type to fail")
	}
	if _, ok := Read[testPoint](ConstRef{}); ok {
		t.Error("expected read from empty ref to fail")
	}
}

func TestRef_ConstAndClone(t *testing.T) {
	p := testPoint{X: 1}
	r := RefOf(&p)

	cr := r.Const()
	if cr.TypeID() != TypeOf[testPoint]() {
		t.Errorf("expected const view to keep identity, got %s", cr.TypeID())
	}

	// Clones alias the referent rather than copying it.
	clone := r.Clone()
	As[testPoint](clone).X = 42
	if got, _ := Read[testPoint](cr); got.X != 42 {
		t.Errorf("expected mutation to be visible through const view, got %v", got.X)
	}

	if !(Ref{}).Const().IsZero() {
		t.Error("expected const view of empty ref to be empty")
	}
}
