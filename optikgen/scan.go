package optikgen

import (
	"context"
	"fmt"
	"go/types"
	"path/filepath"
	"reflect"
	"sort"
	"strings"
	"unicode"

	"golang.org/x/sync/errgroup"
	"golang.org/x/tools/go/packages"

	"github.com/optik-go/optik/internal/directive"
)

// ScanOptions configures source scanning.
type ScanOptions struct {
	// Patterns are the package patterns to scan, go command semantics.
	Patterns []string

	// Dir is the working directory for package loading. Empty means the
	// current directory.
	Dir string
}

// Scan loads the packages matching opts.Patterns and builds one Model per
// package that contains //optik:class directives. Packages without
// directives produce no model.
//
// Embedded types resolve as bases only when their own package is part of the
// same scan, so base packages should be covered by the patterns.
func Scan(ctx context.Context, opts ScanOptions) ([]*Model, error) {
	if len(opts.Patterns) == 0 {
		return nil, fmt.Errorf("no packages specified")
	}

	cfg := &packages.Config{
		Context: ctx,
		Dir:     opts.Dir,
		Mode: packages.NeedName |
			packages.NeedFiles |
			packages.NeedCompiledGoFiles |
			packages.NeedImports |
			packages.NeedTypes |
			packages.NeedSyntax |
			packages.NeedTypesInfo,
	}

	pkgs, err := packages.Load(cfg, opts.Patterns...)
	if err != nil {
		return nil, fmt.Errorf("failed to load packages: %w", err)
	}

	for _, pkg := range pkgs {
		if len(pkg.Errors) > 0 {
			return nil, fmt.Errorf("package %s has errors: %v", pkg.PkgPath, pkg.Errors[0])
		}
	}

	if len(pkgs) == 0 {
		return nil, fmt.Errorf("no packages found")
	}

	// First pass: collect directives from every package, so embeds can
	// resolve marked types across package boundaries.
	perPkg := make([][]directive.Directive, len(pkgs))
	marked := make(map[string]directive.Directive)
	for i, pkg := range pkgs {
		for _, f := range pkg.Syntax {
			ds, err := directive.FromFile(pkg.Fset, f)
			if err != nil {
				return nil, err
			}
			perPkg[i] = append(perPkg[i], ds...)
			for _, d := range ds {
				marked[pkg.PkgPath+"."+d.TypeName] = d
			}
		}
	}

	// Second pass: build models concurrently, one per annotated package.
	models := make([]*Model, len(pkgs))
	var g errgroup.Group
	for i, pkg := range pkgs {
		if len(perPkg[i]) == 0 {
			continue
		}
		g.Go(func() error {
			m, err := buildModel(pkg, perPkg[i], marked)
			if err != nil {
				return err
			}
			models[i] = m
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]*Model, 0, len(models))
	for _, m := range models {
		if m != nil {
			out = append(out, m)
		}
	}
	return out, nil
}

// modelBuilder accumulates classes for one package.
type modelBuilder struct {
	pkg    *packages.Package
	model  *Model
	marked map[string]directive.Directive
}

func buildModel(pkg *packages.Package, ds []directive.Directive, marked map[string]directive.Directive) (*Model, error) {
	b := &modelBuilder{
		pkg: pkg,
		model: &Model{
			Package: PackageInfo{
				Path: pkg.PkgPath,
				Name: pkg.Name,
				Dir:  pkgDir(pkg),
			},
		},
		marked: marked,
	}

	for _, d := range ds {
		if err := b.addClass(d); err != nil {
			return nil, err
		}
	}
	return b.model, nil
}

func pkgDir(pkg *packages.Package) string {
	if len(pkg.GoFiles) > 0 {
		return filepath.Dir(pkg.GoFiles[0])
	}
	return ""
}

// addClass resolves a directive against the type checker and builds its
// class model.
func (b *modelBuilder) addClass(d directive.Directive) error {
	obj := b.pkg.Types.Scope().Lookup(d.TypeName)
	if obj == nil {
		return fmt.Errorf("%s: type %s not found in package %s", d.Pos, d.TypeName, b.pkg.PkgPath)
	}

	tn, ok := obj.(*types.TypeName)
	if !ok {
		return fmt.Errorf("%s: %s is not a type", d.Pos, d.TypeName)
	}

	named, ok := tn.Type().(*types.Named)
	if !ok {
		return fmt.Errorf("%s: %s is not a defined type", d.Pos, d.TypeName)
	}

	if named.TypeParams().Len() > 0 {
		b.model.warn(WarnGenericType, d.Pos.String(),
			"generic type %s cannot be declared as a class", d.TypeName)
		return nil
	}

	c := ClassModel{
		TypeName: d.TypeName,
		Name:     d.ClassName(),
	}

	switch u := named.Underlying().(type) {
	case *types.Struct:
		b.structClass(&c, named, u)
	case *types.Interface:
		c.Interface = true
		b.interfaceClass(&c, u)
	default:
		return fmt.Errorf("%s: %s is not a struct or interface type", d.Pos, d.TypeName)
	}

	b.model.Classes = append(b.model.Classes, c)
	return nil
}

// structClass builds properties from exported fields, bases from embedded
// marked types, and method properties from getter and setter pairs.
func (b *modelBuilder) structClass(c *ClassModel, named *types.Named, st *types.Struct) {
	seen := make(map[string]string) // prop name -> Go origin

	for i := 0; i < st.NumFields(); i++ {
		field := st.Field(i)
		tag := st.Tag(i)

		if field.Embedded() {
			b.addBase(c, field)
			continue
		}
		if !field.Exported() {
			continue
		}

		name, skip := propName(field.Name(), tag)
		if skip {
			continue
		}
		if prev, dup := seen[name]; dup {
			b.model.warn(WarnDuplicateProp, b.pos(field),
				"property %q on %s already declared by %s", name, c.TypeName, prev)
			continue
		}
		seen[name] = field.Name()

		c.Props = append(c.Props, PropModel{
			Name:  name,
			Kind:  KindField,
			Field: field.Name(),
			Type:  b.typeExpr(field.Type()),
			Rule:  reflect.StructTag(tag).Get("validate"),
		})
	}

	b.methodProps(c, named, seen)
}

// addBase records an embedded field as a base when the embedded type carries
// a class directive, unwrapping pointer embeds.
func (b *modelBuilder) addBase(c *ClassModel, field *types.Var) {
	t := field.Type()
	if ptr, ok := t.(*types.Pointer); ok {
		t = ptr.Elem()
	}
	named, ok := t.(*types.Named)
	if !ok {
		b.model.warn(WarnUnmarkedEmbed, b.pos(field),
			"embedded field %s on %s is not a named type", field.Name(), c.TypeName)
		return
	}
	if _, ok := b.marked[typeKey(named)]; !ok {
		b.model.warn(WarnUnmarkedEmbed, b.pos(field),
			"embedded type %s on %s carries no //optik:class directive", field.Name(), c.TypeName)
		return
	}
	c.Bases = append(c.Bases, b.typeExpr(named))
}

// methodProps derives properties from exported methods. A method with no
// parameters and one non-error result is a getter; a matching SetX method
// with one parameter of the getter's result type upgrades the pair to a
// getter/setter property. Method properties sort by name for deterministic
// output.
func (b *modelBuilder) methodProps(c *ClassModel, named *types.Named, seen map[string]string) {
	getters := make(map[string]*types.Func)
	setters := make(map[string]*types.Func)

	for i := 0; i < named.NumMethods(); i++ {
		m := named.Method(i)
		if !m.Exported() {
			continue
		}
		sig := m.Type().(*types.Signature)
		if isGetter(sig) {
			getters[m.Name()] = m
			continue
		}
		if base, ok := strings.CutPrefix(m.Name(), "Set"); ok && base != "" && isSetter(sig) {
			setters[base] = m
		}
	}

	names := make([]string, 0, len(getters))
	for name := range getters {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, gname := range names {
		g := getters[gname]
		vtype := g.Type().(*types.Signature).Results().At(0).Type()

		prop := PropModel{
			Name:   lowerCamel(gname),
			Kind:   KindGetter,
			Getter: gname,
			Type:   b.typeExpr(vtype),
		}

		if s, ok := setters[gname]; ok {
			ptype := s.Type().(*types.Signature).Params().At(0).Type()
			if types.Identical(ptype, vtype) {
				prop.Kind = KindGetterSetter
				prop.Setter = s.Name()
			} else {
				b.model.warn(WarnSetterMismatch, b.pos(s),
					"%s.%s takes %s, %s returns %s", c.TypeName, s.Name(), ptype, gname, vtype)
			}
			delete(setters, gname)
		}

		if prev, dup := seen[prop.Name]; dup {
			b.model.warn(WarnDuplicateProp, b.pos(g),
				"property %q on %s already declared by %s", prop.Name, c.TypeName, prev)
			continue
		}
		seen[prop.Name] = gname
		c.Props = append(c.Props, prop)
	}

	leftover := make([]string, 0, len(setters))
	for name := range setters {
		leftover = append(leftover, name)
	}
	sort.Strings(leftover)
	for _, name := range leftover {
		s := setters[name]
		b.model.warn(WarnLoneSetter, b.pos(s),
			"%s.%s has no matching %s getter", c.TypeName, s.Name(), name)
	}
}

// interfaceClass builds getter properties from explicit interface methods
// and bases from embedded marked interfaces.
func (b *modelBuilder) interfaceClass(c *ClassModel, iface *types.Interface) {
	for i := 0; i < iface.NumEmbeddeds(); i++ {
		en, ok := iface.EmbeddedType(i).(*types.Named)
		if !ok {
			b.model.warn(WarnUnmarkedEmbed, "",
				"embedded constraint on %s is not a named type", c.TypeName)
			continue
		}
		if _, ok := b.marked[typeKey(en)]; !ok {
			b.model.warn(WarnUnmarkedEmbed, b.pos(en.Obj()),
				"embedded interface %s on %s carries no //optik:class directive", en.Obj().Name(), c.TypeName)
			continue
		}
		c.Bases = append(c.Bases, b.typeExpr(en))
	}

	seen := make(map[string]string)
	methods := make([]*types.Func, 0, iface.NumExplicitMethods())
	for i := 0; i < iface.NumExplicitMethods(); i++ {
		m := iface.ExplicitMethod(i)
		if m.Exported() && isGetter(m.Type().(*types.Signature)) {
			methods = append(methods, m)
		}
	}
	sort.Slice(methods, func(i, j int) bool { return methods[i].Name() < methods[j].Name() })

	for _, m := range methods {
		name := lowerCamel(m.Name())
		if prev, dup := seen[name]; dup {
			b.model.warn(WarnDuplicateProp, b.pos(m),
				"property %q on %s already declared by %s", name, c.TypeName, prev)
			continue
		}
		seen[name] = m.Name()

		c.Props = append(c.Props, PropModel{
			Name:   name,
			Kind:   KindGetter,
			Getter: m.Name(),
			Type:   b.typeExpr(m.Type().(*types.Signature).Results().At(0).Type()),
		})
	}
}

// isGetter reports whether sig matches the getter shape. A bare error
// result is a failure channel, not a property value.
func isGetter(sig *types.Signature) bool {
	if sig.Params().Len() != 0 || sig.Results().Len() != 1 {
		return false
	}
	return sig.Results().At(0).Type().String() != "error"
}

// isSetter reports whether sig matches the setter shape.
func isSetter(sig *types.Signature) bool {
	return sig.Params().Len() == 1 && sig.Results().Len() == 0
}

// typeExpr renders t relative to the scanned package, recording imports for
// types from other packages.
func (b *modelBuilder) typeExpr(t types.Type) string {
	return types.TypeString(t, func(p *types.Package) string {
		if p == b.pkg.Types {
			return ""
		}
		b.model.addImport(p.Path())
		return p.Name()
	})
}

// pos formats the source location of an object.
func (b *modelBuilder) pos(obj types.Object) string {
	if p := obj.Pos(); p.IsValid() && b.pkg.Fset != nil {
		return b.pkg.Fset.Position(p).String()
	}
	return ""
}

// typeKey generates a unique key for a named type.
func typeKey(named *types.Named) string {
	obj := named.Obj()
	if obj == nil || obj.Pkg() == nil {
		return named.String()
	}
	return obj.Pkg().Path() + "." + obj.Name()
}

// propName derives the property name for a field from its optik struct tag,
// falling back to the lower-camel form of the Go name. A "-" tag skips the
// field.
func propName(goName, tag string) (name string, skip bool) {
	v, _, _ := strings.Cut(reflect.StructTag(tag).Get("optik"), ",")
	if v == "-" {
		return "", true
	}
	if v != "" {
		return v, false
	}
	return lowerCamel(goName), false
}

// lowerCamel lowers the leading initialism of an exported Go name:
// X -> x, ID -> id, AuthorID -> authorID, HTMLBody -> htmlBody.
func lowerCamel(s string) string {
	runes := []rune(s)
	i := 0
	for i < len(runes) && unicode.IsUpper(runes[i]) {
		i++
	}
	if i == len(runes) {
		return strings.ToLower(s)
	}
	if i > 1 {
		i--
	}
	for j := 0; j < i; j++ {
		runes[j] = unicode.ToLower(runes[j])
	}
	return string(runes)
}
