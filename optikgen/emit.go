package optikgen

import (
	"bytes"
	"fmt"
	"go/format"
	"strconv"
)

// GeneratedFile is the default name of the emitted file.
const GeneratedFile = "optik_gen.go"

const optikImport = "github.com/optik-go/optik"

// Emit renders the model as a Go source file of optik.Define calls and
// formats it with gofmt. The declarations register in the default registry
// at init time. Models with no classes emit nil.
func Emit(m *Model) ([]byte, error) {
	if len(m.Classes) == 0 {
		return nil, nil
	}

	var buf bytes.Buffer
	buf.WriteString("// Code generated by optik; DO NOT EDIT.\n\n")
	fmt.Fprintf(&buf, "package %s\n\n", m.Package.Name)

	buf.WriteString("import (\n")
	fmt.Fprintf(&buf, "\t%s\n", strconv.Quote(optikImport))
	if len(m.Imports) > 0 {
		buf.WriteString("\n")
		for _, path := range m.Imports {
			fmt.Fprintf(&buf, "\t%s\n", strconv.Quote(path))
		}
	}
	buf.WriteString(")\n\n")

	buf.WriteString("func init() {\n")
	for i, c := range m.Classes {
		if i > 0 {
			buf.WriteString("\n")
		}
		emitClass(&buf, c)
	}
	buf.WriteString("}\n")

	src, err := format.Source(buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("format generated source for %s: %w", m.Package.Path, err)
	}
	return src, nil
}

func emitClass(buf *bytes.Buffer, c ClassModel) {
	fmt.Fprintf(buf, "\toptik.Define[%s](%q, func(b *optik.Builder[%s]) {\n", c.TypeName, c.Name, c.TypeName)
	for _, base := range c.Bases {
		fmt.Fprintf(buf, "\t\toptik.Base[%s](b)\n", base)
	}
	for _, p := range c.Props {
		emitProp(buf, c, p)
	}
	buf.WriteString("\t})\n")
}

func emitProp(buf *bytes.Buffer, c ClassModel, p PropModel) {
	var acc string
	switch p.Kind {
	case KindField:
		acc = fmt.Sprintf("optik.Field(func(o *%s) *%s { return &o.%s })", c.TypeName, p.Type, p.Field)
	case KindGetter:
		if c.Interface {
			// Interface owners dereference to reach the dynamic value.
			acc = fmt.Sprintf("optik.Getter(func(o *%s) %s { return (*o).%s() })", c.TypeName, p.Type, p.Getter)
		} else {
			acc = fmt.Sprintf("optik.Getter((*%s).%s)", c.TypeName, p.Getter)
		}
	case KindGetterSetter:
		acc = fmt.Sprintf("optik.GetterSetter((*%s).%s, (*%s).%s)", c.TypeName, p.Getter, c.TypeName, p.Setter)
	}

	fmt.Fprintf(buf, "\t\tb.Prop(%q, %s)", p.Name, acc)
	if p.Rule != "" {
		fmt.Fprintf(buf, ".AddCapability(optik.Rule(%q))", p.Rule)
	}
	buf.WriteString("\n")
}
