package optik

import (
	"bytes"
	"log/slog"
	"math"
)

// Fixture types shared across the package tests. Each test that declares
// classes builds its own Registry so declarations never leak between tests;
// the define helpers below keep those declarations in one place.

type testPoint struct {
	X float64
	Y float64
}

type testShape interface {
	Area() float64
}

type testCircle struct {
	Radius float64
}

func (c testCircle) Area() float64 { return math.Pi * c.Radius * c.Radius }

type testRect struct {
	W float64
	H float64
}

func (r testRect) Area() float64 { return r.W * r.H }

// Diamond hierarchy: testAsset embeds testNamed and testTagged, which both
// embed testEntity.
type testEntity struct {
	ID int64
}

type testNamed struct {
	testEntity
	Name string
}

type testTagged struct {
	testEntity
	Tag string
}

type testAsset struct {
	testNamed
	testTagged
	Size int64
}

// definePoint declares the Point class with two field properties.
func definePoint(r *Registry) {
	DefineIn[testPoint](r, "Point", func(b *Builder[testPoint]) {
		b.Prop("x", Field(func(p *testPoint) *float64 { return &p.X }))
		b.Prop("y", Field(func(p *testPoint) *float64 { return &p.Y }))
	})
}

// defineShapes declares the abstract Shape class and two concrete
// implementations based on it.
func defineShapes(r *Registry) {
	DefineIn[testShape](r, "Shape", func(b *Builder[testShape]) {
		b.Prop("area", Getter(func(s *testShape) float64 { return (*s).Area() }))
	})
	DefineIn[testCircle](r, "Circle", func(b *Builder[testCircle]) {
		Base[testShape](b)
		b.Prop("radius", Field(func(c *testCircle) *float64 { return &c.Radius }))
		b.Prop("area", Getter(func(c *testCircle) float64 { return c.Area() }))
	})
	DefineIn[testRect](r, "Rect", func(b *Builder[testRect]) {
		Base[testShape](b)
		b.Prop("w", Field(func(r *testRect) *float64 { return &r.W }))
		b.Prop("h", Field(func(r *testRect) *float64 { return &r.H }))
		b.Prop("area", Getter(func(r *testRect) float64 { return r.Area() }))
	})
}

// defineDiamond declares the four-class diamond hierarchy.
func defineDiamond(r *Registry) {
	DefineIn[testEntity](r, "Entity", func(b *Builder[testEntity]) {
		b.Prop("id", Field(func(e *testEntity) *int64 { return &e.ID }))
	})
	DefineIn[testNamed](r, "Named", func(b *Builder[testNamed]) {
		Base[testEntity](b)
		b.Prop("name", Field(func(n *testNamed) *string { return &n.Name }))
	})
	DefineIn[testTagged](r, "Tagged", func(b *Builder[testTagged]) {
		Base[testEntity](b)
		b.Prop("tag", Field(func(n *testTagged) *string { return &n.Tag }))
	})
	DefineIn[testAsset](r, "Asset", func(b *Builder[testAsset]) {
		Base[testNamed](b)
		Base[testTagged](b)
		b.Prop("size", Field(func(a *testAsset) *int64 { return &a.Size }))
	})
}

// warnCapture returns a registry whose warnings land in the returned buffer.
func warnCapture() (*Registry, *bytes.Buffer) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))
	return NewRegistry().WithLogger(logger), &buf
}
