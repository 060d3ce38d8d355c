package optikgen

import (
	"context"
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/optik-go/optik/optikgen/sink"
)

// Result reports what a Generate run produced.
type Result struct {
	// Files are the paths written, one per annotated package.
	Files []string

	// Classes is the total number of classes declared.
	Classes int

	// Warnings collects the non-fatal findings from every scanned package.
	Warnings []Warning
}

// Generate scans the configured packages and writes one generated file per
// annotated package.
//
// With a nil cfg.Sink the file is written atomically into each package
// directory, so the declarations live next to the types they describe. A
// custom sink receives paths of the form "<flattened package path>/<out
// file>".
func Generate(ctx context.Context, cfg *Config) (*Result, error) {
	cfg = applyConfigDefaults(cfg)

	models, err := Scan(ctx, ScanOptions{Patterns: cfg.Packages, Dir: cfg.Dir})
	if err != nil {
		return nil, err
	}

	res := &Result{}
	for _, m := range models {
		res.Warnings = append(res.Warnings, m.Warnings...)

		content, err := Emit(m)
		if err != nil {
			return nil, err
		}
		if content == nil {
			continue
		}
		res.Classes += len(m.Classes)

		if cfg.Sink != nil {
			p := path.Join(pathSlug(m.Package.Path), cfg.OutFile)
			if err := cfg.Sink.WriteFile(ctx, p, content); err != nil {
				return nil, err
			}
			res.Files = append(res.Files, p)
			continue
		}

		if m.Package.Dir == "" {
			return nil, fmt.Errorf("package %s has no directory", m.Package.Path)
		}
		fs := sink.NewFilesystemSink(m.Package.Dir)
		if err := fs.WriteFile(ctx, cfg.OutFile, content); err != nil {
			return nil, err
		}
		res.Files = append(res.Files, filepath.Join(m.Package.Dir, cfg.OutFile))
	}
	return res, nil
}

// pathSlug flattens an import path into a single path element.
func pathSlug(importPath string) string {
	return strings.ReplaceAll(importPath, "/", "_")
}

// Generator provides a fluent API for declaration generation.
// Create with FromPackages and configure with method chaining.
//
// Example:
//
//	optikgen.FromPackages("./...").
//	    OutFile("classes_gen.go").
//	    Run(ctx)
type Generator struct {
	cfg Config
}

// FromPackages creates a Generator for the given package patterns.
// This is the entry point for the fluent API.
func FromPackages(patterns ...string) *Generator {
	return &Generator{cfg: Config{Packages: patterns}}
}

// InDir sets the working directory for package loading.
func (g *Generator) InDir(dir string) *Generator {
	g.cfg.Dir = dir
	return g
}

// OutFile sets the name of the generated file. Default: optik_gen.go.
func (g *Generator) OutFile(name string) *Generator {
	g.cfg.OutFile = name
	return g
}

// ToSink redirects output to a custom sink instead of the package
// directories.
func (g *Generator) ToSink(s sink.OutputSink) *Generator {
	g.cfg.Sink = s
	return g
}

// Run executes the generation. This is the terminal operation.
func (g *Generator) Run(ctx context.Context) (*Result, error) {
	return Generate(ctx, &g.cfg)
}
