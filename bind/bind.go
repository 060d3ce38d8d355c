// Package bind populates registered class instances from string-keyed data
// such as URL query parameters or form posts. Keys are matched against
// property names across the class hierarchy, values are converted by
// gorilla/schema, and every write goes through the property descriptor, so
// accessor shapes and attached rules apply exactly as they would for typed
// callers.
package bind

import (
	"errors"
	"fmt"
	"net/url"
	"reflect"
	"sync"

	"github.com/gorilla/schema"
	"github.com/optik-go/optik"
)

var decoder = schema.NewDecoder()

func init() {
	decoder.IgnoreUnknownKeys(true)
}

// shadow is the decode target generated for a class: a flat struct with one
// field per settable property, tagged with the property name so the decoder
// fills it from the matching key.
type shadow struct {
	typ   reflect.Type
	props []*optik.Property
}

var shadows sync.Map // *optik.Class -> *shadow

func shadowFor(class *optik.Class) *shadow {
	if v, ok := shadows.Load(class); ok {
		return v.(*shadow)
	}
	props := settableProps(class)
	fields := make([]reflect.StructField, len(props))
	for i, p := range props {
		fields[i] = reflect.StructField{
			Name: fmt.Sprintf("F%d", i),
			Type: p.Type().Reflect(),
			Tag:  reflect.StructTag(fmt.Sprintf(`schema:%q`, p.Name())),
		}
	}
	s := &shadow{typ: reflect.StructOf(fields), props: props}
	actual, _ := shadows.LoadOrStore(class, s)
	return actual.(*shadow)
}

// settableProps collects the writable properties reachable from class: own
// declarations first, then bases depth-first, one property per name so
// derived declarations shadow base ones. The order matches what
// Class.Property resolves for each name.
func settableProps(class *optik.Class) []*optik.Property {
	var out []*optik.Property
	seenName := make(map[string]bool)
	seenClass := make(map[*optik.Class]bool)
	var walk func(*optik.Class)
	walk = func(c *optik.Class) {
		if seenClass[c] {
			return
		}
		seenClass[c] = true
		for _, p := range c.Properties() {
			if seenName[p.Name()] {
				continue
			}
			seenName[p.Name()] = true
			if p.CanSet() {
				out = append(out, p)
			}
		}
		for _, b := range c.Bases() {
			walk(b)
		}
	}
	walk(class)
	return out
}

// Apply writes the values whose keys name settable properties of class onto
// the instance behind target. Keys naming no property are ignored, as are
// read-only properties. A value the decoder cannot convert fails the whole
// bind; a converted value the property rejects, for example through an
// attached rule, is reported per key with the remaining keys still applied.
func Apply(class *optik.Class, target optik.Ref, values url.Values) error {
	if class == nil {
		return optik.ErrClassNotFound
	}
	if target.TypeID() != class.Type() {
		return fmt.Errorf("bind: target references %s, want %s", target.TypeID(), class.Type())
	}
	s := shadowFor(class)
	ptr := reflect.New(s.typ)
	if err := decoder.Decode(ptr.Interface(), values); err != nil {
		return fmt.Errorf("bind: decode %s: %w", class.Name(), err)
	}
	var errs []error
	for i, p := range s.props {
		if _, present := values[p.Name()]; !present {
			continue
		}
		src := ptr.Elem().Field(i).Addr().Interface()
		if !p.Set(target, optik.ConstRefTo(src)) {
			errs = append(errs, fmt.Errorf("bind: %s.%s rejected %q",
				class.Name(), p.Name(), values.Get(p.Name())))
		}
	}
	return errors.Join(errs...)
}

// New resolves name in reg, constructs a fresh instance through the class
// factory, and applies values to it. Unknown names return an error wrapping
// optik.ErrClassNotFound; abstract classes return the Class.New error
// wrapping optik.ErrNotInstantiable.
func New(reg *optik.Registry, name string, values url.Values) (optik.Object, error) {
	class, ok := reg.ByName(name)
	if !ok {
		return optik.Object{}, fmt.Errorf("bind: class %q: %w", name, optik.ErrClassNotFound)
	}
	obj, err := class.New()
	if err != nil {
		return optik.Object{}, err
	}
	if err := Apply(class, obj.Ref(), values); err != nil {
		return optik.Object{}, err
	}
	return obj, nil
}

// Into is New for a statically known type: it resolves T's class in reg,
// constructs through the class factory, and returns the typed instance.
func Into[T any](reg *optik.Registry, values url.Values) (*T, error) {
	class, ok := optik.LookupIn[T](reg)
	if !ok {
		return nil, fmt.Errorf("bind: type %s: %w", optik.TypeOf[T](), optik.ErrClassNotFound)
	}
	obj, err := class.New()
	if err != nil {
		return nil, err
	}
	if err := Apply(class, obj.Ref(), values); err != nil {
		return nil, err
	}
	return optik.ObjectAs[T](obj), nil
}
