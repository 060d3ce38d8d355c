package optik

import "testing"

func TestField_Shape(t *testing.T) {
	acc := Field(func(p *testPoint) *float64 { return &p.X })

	if acc.OwnerType() != TypeOf[testPoint]() {
		t.Errorf("expected owner testPoint, got %s", acc.OwnerType())
	}
	if acc.ValueType() != TypeOf[float64]() {
		t.Errorf("expected value float64, got %s", acc.ValueType())
	}
	if !acc.CanSet() {
		t.Error("expected field accessor to be settable")
	}
	if !acc.CanMove() {
		t.Error("expected field accessor to be movable")
	}

	p := testPoint{X: 1.5}
	var out float64
	if !acc.get(ConstRefOf(&p), RefOf(&out)) {
		t.Fatal("expected get to succeed")
	}
	if out != 1.5 {
		t.Errorf("expected 1.5, got %v", out)
	}

	in := 7.25
	if !acc.set(RefOf(&p), ConstRefOf(&in)) {
		t.Fatal("expected set to succeed")
	}
	if p.X != 7.25 {
		t.Errorf("expected 7.25, got %v", p.X)
	}

	var moved float64
	if !acc.move(RefOf(&p), RefOf(&moved)) {
		t.Fatal("expected move to succeed")
	}
	if moved != 7.25 {
		t.Errorf("expected moved value 7.25, got %v", moved)
	}
	if p.X != 0 {
		t.Errorf("expected source to be zeroed after move, got %v", p.X)
	}
}

func TestGetter_Shape(t *testing.T) {
	acc := Getter(func(c *testCircle) float64 { return c.Area() })

	if acc.CanSet() {
		t.Error("expected getter accessor to be read-only")
	}
	if acc.CanMove() {
		t.Error("expected getter accessor to copy on move")
	}
	if acc.set != nil {
		t.Error("expected no set closure on a getter accessor")
	}

	c := testCircle{Radius: 1}
	var out float64
	if !acc.get(ConstRefOf(&c), RefOf(&out)) {
		t.Fatal("expected get to succeed")
	}
	if out != c.Area() {
		t.Errorf("expected %v, got %v", c.Area(), out)
	}

	// Move degrades to a copy: the destination is filled, the source keeps
	// its state.
	var moved float64
	if !acc.move(RefOf(&c), RefOf(&moved)) {
		t.Fatal("expected move to succeed")
	}
	if moved != c.Area() {
		t.Errorf("expected %v, got %v", c.Area(), moved)
	}
	if c.Radius != 1 {
		t.Errorf("expected source untouched, got radius %v", c.Radius)
	}
}

func TestGetterSetter_Shape(t *testing.T) {
	acc := GetterSetter(
		func(r *testRect) float64 { return r.W },
		func(r *testRect, v float64) { r.W = v },
	)

	if !acc.CanSet() {
		t.Error("expected getter-setter accessor to be settable")
	}
	if acc.CanMove() {
		t.Error("expected getter-setter accessor to copy on move")
	}

	r := testRect{W: 2, H: 3}
	in := 5.0
	if !acc.set(RefOf(&r), ConstRefOf(&in)) {
		t.Fatal("expected set to succeed")
	}
	if r.W != 5 {
		t.Errorf("expected 5, got %v", r.W)
	}
}

func TestGetterRef_Shape(t *testing.T) {
	acc := GetterRef(
		func(p *testPoint) float64 { return p.Y },
		func(p *testPoint) *float64 { return &p.Y },
	)

	if !acc.CanSet() {
		t.Error("expected getter-ref accessor to be settable")
	}
	if !acc.CanMove() {
		t.Error("expected getter-ref accessor to be movable")
	}

	p := testPoint{Y: 9}
	var moved float64
	if !acc.move(RefOf(&p), RefOf(&moved)) {
		t.Fatal("expected move to succeed")
	}
	if moved != 9 {
		t.Errorf("expected 9, got %v", moved)
	}
	if p.Y != 0 {
		t.Errorf("expected source to be zeroed after move, got %v", p.Y)
	}
}

func TestAccessor_TypeMismatch(t *testing.T) {
	acc := Field(func(p *testPoint) *float64 { return &p.X })

	p := testPoint{X: 1}
	c := testCircle{Radius: 1}
	var f float64
	var s string

	if acc.get(ConstRefOf(&c), RefOf(&f)) {
		t.Error("expected get with wrong owner type to fail")
	}
	if acc.get(ConstRefOf(&p), RefOf(&s)) {
		t.Error("expected get into wrong out type to fail")
	}
	if acc.get(ConstRef{}, RefOf(&f)) {
		t.Error("expected get from empty owner to fail")
	}
	if acc.set(RefOf(&p), ConstRefOf(&s)) {
		t.Error("expected set with wrong value type to fail")
	}
	if p.X != 1 {
		t.Errorf("expected failed accesses to leave the owner untouched, got %v", p.X)
	}
}

func TestAccessor_NilFuncPanics(t *testing.T) {
	tests := []struct {
		name string
		fn   func()
	}{
		{"field", func() { Field[testPoint, float64](nil) }},
		{"getter", func() { Getter[testPoint, float64](nil) }},
		{"getter-setter", func() { GetterSetter[testPoint, float64](nil, nil) }},
		{"getter-ref", func() { GetterRef[testPoint, float64](nil, nil) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Error("expected panic for nil accessor func")
				}
			}()
			tt.fn()
		})
	}
}
