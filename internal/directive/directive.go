// Package directive parses optik directives from Go source files.
//
// Directives are line comments in the form:
//
//	//optik:class [name]
//
// The class directive marks a struct or interface type for declaration
// generation. The optional name overrides the class name, which otherwise
// defaults to the type name.
package directive

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"path/filepath"
	"strings"

	"golang.org/x/tools/go/packages"
)

// Directive represents a parsed optik directive.
type Directive struct {
	Name     string         // optional class name (empty means use the type name)
	TypeName string         // name of the annotated type
	Pos      token.Position // source location
}

// ClassName returns the effective class name for the directive.
func (d Directive) ClassName() string {
	if d.Name != "" {
		return d.Name
	}
	return d.TypeName
}

// Result contains all directives found in a package.
type Result struct {
	// Classes contains all //optik:class directives found, in file order.
	Classes []Directive

	// PackagePath is the import path of the parsed package.
	PackagePath string

	// Dir is the directory containing the package.
	Dir string
}

// Parse scans a Go package for optik directives.
//
// The pattern follows go command semantics:
//   - "." for current directory
//   - Import path like "github.com/foo/bar"
//   - Absolute or relative directory path
//
// Returns an error if:
//   - The package cannot be loaded
//   - An unknown //optik: directive is found
//   - A directive is not attached to a struct or interface type declaration
func Parse(pattern string) (*Result, error) {
	return ParseDir(pattern, "")
}

// ParseDir is like Parse but allows specifying a working directory.
// If dir is empty, the current directory is used.
func ParseDir(pattern, dir string) (*Result, error) {
	cfg := &packages.Config{
		Mode: packages.NeedName | packages.NeedFiles | packages.NeedSyntax,
		Dir:  dir,
	}

	pkgs, err := packages.Load(cfg, pattern)
	if err != nil {
		return nil, fmt.Errorf("load package: %w", err)
	}

	if len(pkgs) == 0 {
		return nil, fmt.Errorf("no packages found matching %q", pattern)
	}

	if len(pkgs) > 1 {
		return nil, fmt.Errorf("multiple packages found matching %q; specify a single package", pattern)
	}

	pkg := pkgs[0]
	if len(pkg.Errors) > 0 {
		return nil, fmt.Errorf("package errors: %v", pkg.Errors[0])
	}

	result := &Result{
		PackagePath: pkg.PkgPath,
	}

	if len(pkg.GoFiles) > 0 {
		result.Dir = filepath.Dir(pkg.GoFiles[0])
	}

	fset := token.NewFileSet()
	for _, filename := range pkg.GoFiles {
		f, err := parser.ParseFile(fset, filename, nil, parser.ParseComments)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", filename, err)
		}

		directives, err := FromFile(fset, f)
		if err != nil {
			return nil, err
		}

		result.Classes = append(result.Classes, directives...)
	}

	return result, nil
}

// FromFile extracts optik directives from a single parsed file.
// The file must have been parsed with comments.
func FromFile(fset *token.FileSet, f *ast.File) ([]Directive, error) {
	var directives []Directive

	// Build a map of comment end positions to directives
	// so we can match them to the type declarations they document.
	type pending struct {
		name string
		pos  token.Position
	}
	commentToDirective := make(map[token.Pos]pending)

	for _, cg := range f.Comments {
		for _, c := range cg.List {
			if !strings.HasPrefix(c.Text, "//optik:") {
				continue
			}

			text := strings.TrimPrefix(c.Text, "//optik:")
			parts := strings.Fields(text)
			if len(parts) == 0 {
				continue
			}

			pos := fset.Position(c.Pos())
			switch parts[0] {
			case "class":
				name := ""
				if len(parts) > 1 {
					name = parts[1]
				}
				commentToDirective[cg.End()] = pending{
					name: name,
					pos:  pos,
				}
			default:
				return nil, fmt.Errorf("%s: unknown directive //optik:%s", pos, parts[0])
			}
		}
	}

	// Match directives to type declarations. A directive can document the
	// whole declaration or a single spec inside a grouped decl.
	for _, decl := range f.Decls {
		gd, ok := decl.(*ast.GenDecl)
		if !ok || gd.Tok != token.TYPE {
			continue
		}

		for _, spec := range gd.Specs {
			ts, ok := spec.(*ast.TypeSpec)
			if !ok {
				continue
			}

			doc := ts.Doc
			if doc == nil && len(gd.Specs) == 1 {
				doc = gd.Doc
			}
			if doc == nil {
				continue
			}

			p, ok := commentToDirective[doc.End()]
			if !ok {
				continue
			}

			switch ts.Type.(type) {
			case *ast.StructType, *ast.InterfaceType:
			default:
				return nil, fmt.Errorf("%s: //optik:class requires a struct or interface type, %s is neither", p.pos, ts.Name.Name)
			}

			directives = append(directives, Directive{
				Name:     p.name,
				TypeName: ts.Name.Name,
				Pos:      p.pos,
			})
			delete(commentToDirective, doc.End())
		}
	}

	// Check for unmatched directives
	for _, p := range commentToDirective {
		return nil, fmt.Errorf("%s: //optik:class directive must precede a type declaration", p.pos)
	}

	return directives, nil
}
