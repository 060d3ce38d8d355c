package optik

import (
	"fmt"
	"strings"
	"testing"
)

func TestProperty_PointRoundTrip(t *testing.T) {
	reg := NewRegistry()
	definePoint(reg)
	class := ClassOfIn[testPoint](reg)

	px := class.Property("x")
	if px == nil {
		t.Fatal("expected property x")
	}
	if px.Name() != "x" {
		t.Errorf("expected name x, got %s", px.Name())
	}
	if px.Type() != TypeOf[float64]() {
		t.Errorf("expected float64 value type, got %s", px.Type())
	}
	if px.Class() != class {
		t.Error("expected property to reference its class")
	}

	pt := testPoint{}
	if !Set(px, RefOf(&pt), 3.5) {
		t.Fatal("expected set to succeed")
	}
	if pt.X != 3.5 {
		t.Errorf("expected 3.5, got %v", pt.X)
	}

	got, ok := Get[float64](px, ConstRefOf(&pt))
	if !ok {
		t.Fatal("expected get to succeed")
	}
	if got != 3.5 {
		t.Errorf("expected 3.5, got %v", got)
	}

	if class.Property("z") != nil {
		t.Error("expected unknown property to be absent")
	}
}

func TestProperty_ReadOnly(t *testing.T) {
	reg := NewRegistry()
	defineShapes(reg)

	circle := ClassOfIn[testCircle](reg)
	area := circle.Property("area")
	if area == nil {
		t.Fatal("expected property area")
	}
	if area.CanSet() {
		t.Error("expected area to be read-only")
	}

	c := testCircle{Radius: 2}
	before := c.Area()
	if Set(area, RefOf(&c), 100.0) {
		t.Error("expected set on read-only property to fail")
	}
	if got, _ := Get[float64](area, ConstRefOf(&c)); got != before {
		t.Errorf("expected area unchanged at %v, got %v", before, got)
	}
}

func TestProperty_Move(t *testing.T) {
	reg := NewRegistry()
	definePoint(reg)
	px := ClassOfIn[testPoint](reg).Property("x")

	if !px.CanMove() {
		t.Error("expected field property to be movable")
	}

	pt := testPoint{X: 8}
	got, ok := Take[float64](px, RefOf(&pt))
	if !ok {
		t.Fatal("expected move to succeed")
	}
	if got != 8 {
		t.Errorf("expected 8, got %v", got)
	}
	if pt.X != 0 {
		t.Errorf("expected source zeroed after move, got %v", pt.X)
	}
}

func TestProperty_TypeMismatch(t *testing.T) {
	reg := NewRegistry()
	definePoint(reg)
	px := ClassOfIn[testPoint](reg).Property("x")

	pt := testPoint{X: 1}
	c := testCircle{}

	if Set(px, RefOf(&pt), "not a float") {
		t.Error("expected set with wrong value type to fail")
	}
	if Set(px, RefOf(&c), 2.0) {
		t.Error("expected set with wrong owner type to fail")
	}
	if _, ok := Get[string](px, ConstRefOf(&pt)); ok {
		t.Error("expected get into wrong type to fail")
	}
	if pt.X != 1 {
		t.Errorf("expected owner untouched after failed accesses, got %v", pt.X)
	}
}

func TestProperty_Rule(t *testing.T) {
	reg := NewRegistry()
	DefineIn[testCircle](reg, "Circle", func(b *Builder[testCircle]) {
		b.Prop("radius", Field(func(c *testCircle) *float64 { return &c.Radius })).
			AddCapability(Rule("gte=0"))
	})
	radius := ClassOfIn[testCircle](reg).Property("radius")

	c := testCircle{Radius: 1}
	if Set(radius, RefOf(&c), -2.0) {
		t.Error("expected rule to reject a negative radius")
	}
	if c.Radius != 1 {
		t.Errorf("expected rejected write to leave the value, got %v", c.Radius)
	}
	if !Set(radius, RefOf(&c), 2.5) {
		t.Error("expected rule to accept a valid radius")
	}
	if c.Radius != 2.5 {
		t.Errorf("expected 2.5, got %v", c.Radius)
	}

	rule, ok := CapabilityOf[Rule](radius)
	if !ok {
		t.Fatal("expected rule capability to be attached")
	}
	if rule != "gte=0" {
		t.Errorf("expected gte=0, got %s", rule)
	}
}

func TestProperty_RuleInvalidTag(t *testing.T) {
	reg := NewRegistry()
	DefineIn[testCircle](reg, "Circle", func(b *Builder[testCircle]) {
		b.Prop("radius", Field(func(c *testCircle) *float64 { return &c.Radius })).
			AddCapability(Rule("definitely-not-a-tag"))
	})

	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("expected panic for malformed rule")
		}
		if !strings.Contains(fmt.Sprint(r), "invalid rule") {
			t.Errorf("expected invalid rule message, got %v", r)
		}
	}()
	ClassOfIn[testCircle](reg)
}

type testUnit struct {
	Symbol string
}

func TestProperty_Capability(t *testing.T) {
	reg := NewRegistry()
	DefineIn[testPoint](reg, "Point", func(b *Builder[testPoint]) {
		p := b.Prop("x", Field(func(p *testPoint) *float64 { return &p.X }))
		p.AddCapability(testUnit{Symbol: "m"})
	})
	px := ClassOfIn[testPoint](reg).Property("x")

	unit, ok := CapabilityOf[testUnit](px)
	if !ok {
		t.Fatal("expected unit capability")
	}
	if unit.Symbol != "m" {
		t.Errorf("expected symbol m, got %s", unit.Symbol)
	}

	if _, ok := CapabilityOf[Rule](px); ok {
		t.Error("expected absent capability type to miss")
	}
	// Lookup is by exact type; a pointer to the attached type is distinct.
	if _, ok := CapabilityOf[*testUnit](px); ok {
		t.Error("expected pointer type not to match value attachment")
	}
}

func TestProperty_DuplicateCapability(t *testing.T) {
	reg, buf := warnCapture()
	DefineIn[testPoint](reg, "Point", func(b *Builder[testPoint]) {
		p := b.Prop("x", Field(func(p *testPoint) *float64 { return &p.X }))
		p.AddCapability(testUnit{Symbol: "m"})
		p.AddCapability(testUnit{Symbol: "ft"})
	})
	px := ClassOfIn[testPoint](reg).Property("x")

	if !strings.Contains(buf.String(), "duplicate capability registration") {
		t.Errorf("expected duplicate capability warning, got: %s", buf.String())
	}
	unit, _ := CapabilityOf[testUnit](px)
	if unit.Symbol != "m" {
		t.Errorf("expected first attachment to win, got %s", unit.Symbol)
	}
}

func TestProperty_DuplicateRegistration(t *testing.T) {
	reg, buf := warnCapture()
	DefineIn[testPoint](reg, "Point", func(b *Builder[testPoint]) {
		b.Prop("x", Field(func(p *testPoint) *float64 { return &p.X }))
		b.Prop("x", Field(func(p *testPoint) *float64 { return &p.Y }))
	})
	class := ClassOfIn[testPoint](reg)

	if !strings.Contains(buf.String(), "duplicate property registration") {
		t.Errorf("expected duplicate property warning, got: %s", buf.String())
	}
	if len(class.Properties()) != 1 {
		t.Fatalf("expected 1 property, got %d", len(class.Properties()))
	}

	// The first declaration stays wired to X.
	pt := testPoint{X: 1, Y: 2}
	if got, _ := Get[float64](class.Property("x"), ConstRefOf(&pt)); got != 1 {
		t.Errorf("expected first declaration to win, got %v", got)
	}
}

func TestProperty_AccessorOwnerMismatchPanics(t *testing.T) {
	reg := NewRegistry()
	DefineIn[testPoint](reg, "Point", func(b *Builder[testPoint]) {
		b.Prop("radius", Field(func(c *testCircle) *float64 { return &c.Radius }))
	})

	defer func() {
		if recover() == nil {
			t.Error("expected panic for accessor owner mismatch")
		}
	}()
	ClassOfIn[testPoint](reg)
}
