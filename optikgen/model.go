// Package optikgen generates class declarations for annotated Go types.
//
// It scans packages for types marked with //optik:class directives, builds a
// model of the classes and properties those types imply, and emits a
// generated source file of optik.Define calls into each scanned package. The
// generated declarations register at init time, so importing the package is
// enough to make its classes available.
package optikgen

import (
	"fmt"
	"sort"
)

// Model is the result of scanning one package.
type Model struct {
	// Package identifies the scanned package.
	Package PackageInfo

	// Classes are the marked types found, in file order.
	Classes []ClassModel

	// Imports are package paths referenced by emitted type expressions,
	// beyond the optik package itself.
	Imports []string

	// Warnings are non-fatal findings from the scan.
	Warnings []Warning
}

// PackageInfo identifies a scanned package.
type PackageInfo struct {
	Path string // import path
	Name string // package name
	Dir  string // directory containing the package sources
}

// Warning is a non-fatal finding from a scan.
type Warning struct {
	Code    string // stable identifier, e.g. "UNMARKED_EMBED"
	Message string
	Pos     string // source location, when known
}

// Warning codes produced by Scan.
const (
	// WarnUnmarkedEmbed reports an embedded type that carries no
	// //optik:class directive. The embed is skipped entirely.
	WarnUnmarkedEmbed = "UNMARKED_EMBED"

	// WarnGenericType reports a marked generic type. Declarations require
	// an instantiated type, so the class is skipped.
	WarnGenericType = "GENERIC_TYPE"

	// WarnLoneSetter reports a SetX method with no matching X getter.
	WarnLoneSetter = "LONE_SETTER"

	// WarnSetterMismatch reports a SetX method whose parameter type does
	// not match the X getter result. The pair degrades to a getter.
	WarnSetterMismatch = "SETTER_MISMATCH"

	// WarnDuplicateProp reports a property name collision within one
	// class. The first occurrence wins.
	WarnDuplicateProp = "DUPLICATE_PROP"
)

// ClassModel describes one class declaration to generate.
type ClassModel struct {
	// TypeName is the Go type name in the scanned package.
	TypeName string

	// Name is the class name: the directive argument, or TypeName.
	Name string

	// Interface reports whether the type is an interface kind.
	Interface bool

	// Bases are type expressions of embedded marked types, rendered
	// relative to the scanned package.
	Bases []string

	// Props are the properties to declare: exported fields first in
	// declaration order, then method-derived properties by name.
	Props []PropModel
}

// PropKind selects the accessor shape a property is declared with.
type PropKind int

const (
	KindField        PropKind = iota // field pointer accessor
	KindGetter                       // read-only method accessor
	KindGetterSetter                 // paired method accessors
)

// String returns the string representation of the prop kind.
func (k PropKind) String() string {
	switch k {
	case KindField:
		return "Field"
	case KindGetter:
		return "Getter"
	case KindGetterSetter:
		return "GetterSetter"
	default:
		return "Unknown"
	}
}

// PropModel describes one property declaration.
type PropModel struct {
	// Name is the property name: the optik tag value for fields, or the
	// lower-camel form of the Go name.
	Name string

	// Kind selects the accessor shape.
	Kind PropKind

	// Field is the Go field name, for KindField.
	Field string

	// Getter is the Go method name, for KindGetter and KindGetterSetter.
	Getter string

	// Setter is the Go method name, for KindGetterSetter.
	Setter string

	// Type is the Go type expression of the property value, rendered
	// relative to the scanned package. Required for KindField and for
	// getters on interface classes; informational otherwise.
	Type string

	// Rule is the validate struct tag, emitted as a Rule capability when
	// non-empty.
	Rule string
}

// addImport records a package path, keeping the import list sorted and
// deduplicated.
func (m *Model) addImport(path string) {
	i := sort.SearchStrings(m.Imports, path)
	if i < len(m.Imports) && m.Imports[i] == path {
		return
	}
	m.Imports = append(m.Imports, "")
	copy(m.Imports[i+1:], m.Imports[i:])
	m.Imports[i] = path
}

// warn appends a warning to the model.
func (m *Model) warn(code, pos, format string, args ...any) {
	m.Warnings = append(m.Warnings, Warning{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Pos:     pos,
	})
}
