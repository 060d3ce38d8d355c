package optik

import (
	"fmt"
	"log/slog"
	"reflect"
	"strings"
	"sync"
)

// Registry maps Go types to classes. Declarations made with Define are
// recorded immediately but the class itself is built lazily, on first
// lookup; the first caller runs the declaration function while concurrent
// callers for the same class block until it is ready. Once built, a class
// is immutable and lookups are lock-free reads returning the identical
// *Class on every call.
//
// Most programs use the package-level registry through Define and ClassOf.
// Construct separate registries for isolation, such as in tests.
type Registry struct {
	mu      sync.Mutex // guards decls, classes
	decls   map[TypeID]*declEntry
	classes []*Class // built classes, in build order

	declNames sync.Map // string -> TypeID, canonical names of declared classes
	built     sync.Map // TypeID -> *Class
	byName    sync.Map // string -> *Class, canonical names
	byAlias   sync.Map // string -> *Class

	waitMu  sync.Mutex
	waiting map[TypeID]TypeID // blocked builder's own entry -> entry it waits on

	logger *slog.Logger
}

// declEntry carries one recorded declaration and the state of its one-time
// construction.
type declEntry struct {
	id        TypeID
	name      string
	construct func(*Class)

	mu    sync.Mutex
	state uint8
	done  chan struct{} // closed when a build attempt finishes
	class *Class
}

const (
	declIdle uint8 = iota
	declBuilding
	declDone
)

func NewRegistry() *Registry {
	return &Registry{
		decls:   make(map[TypeID]*declEntry),
		waiting: make(map[TypeID]TypeID),
	}
}

// WithLogger sets a custom logger for the registry.
// If not set, slog.Default() will be used.
func (r *Registry) WithLogger(logger *slog.Logger) *Registry {
	r.logger = logger
	return r
}

func (r *Registry) log() *slog.Logger {
	if r.logger != nil {
		return r.logger
	}
	return slog.Default()
}

// defaultRegistry backs the package-level declaration functions.
var defaultRegistry = NewRegistry()

// Default returns the package-level registry used by Define, ClassOf, and
// the other package-level lookups.
func Default() *Registry { return defaultRegistry }

// Define declares T in the default registry. See DefineIn.
func Define[T any](name string, build func(*Builder[T])) {
	DefineIn[T](defaultRegistry, name, build)
}

// DefineIn declares T in r under the canonical name. Declaration is cheap;
// build runs once, when the class is first looked up, and receives a
// Builder to fill in properties, bases, aliases, and capabilities. A nil
// build declares a class with only the type defaults.
//
// Declaring the same type or the same canonical name twice panics, as does
// an empty name. Define is typically called from package init functions,
// where a panic turns a conflicting declaration into a startup failure.
func DefineIn[T any](r *Registry, name string, build func(*Builder[T])) {
	if name == "" {
		panic("optik: class name must not be empty")
	}
	id := TypeOf[T]()
	r.mu.Lock()
	defer r.mu.Unlock()
	if prev, dup := r.decls[id]; dup {
		panic(fmt.Sprintf("optik: type %s already defined as class %q", id, prev.name))
	}
	if prev, dup := r.declNames.Load(name); dup {
		panic(fmt.Sprintf("optik: class name %q already defined for type %s", name, prev.(TypeID)))
	}
	e := &declEntry{id: id, name: name}
	e.construct = func(c *Class) {
		b := newBuilder[T](c)
		if build != nil {
			build(b)
		}
	}
	r.decls[id] = e
	r.declNames.Store(name, id)
}

// ClassOf returns the class for T from the default registry, building it on
// first use. It panics when T was never declared; use Lookup for a
// non-panicking variant.
//
// Looking up the class currently being built from inside its own build
// function deadlocks, matching the declare-bases-first discipline the
// builder enforces.
func ClassOf[T any]() *Class { return ClassOfIn[T](defaultRegistry) }

// ClassOfIn is ClassOf against an explicit registry.
func ClassOfIn[T any](r *Registry) *Class {
	c := r.build(TypeOf[T](), nil)
	if c == nil {
		panic(fmt.Sprintf("optik: class for type %s is not defined", TypeOf[T]()))
	}
	return c
}

// Lookup returns the class for T from the default registry, or false when T
// was never declared.
func Lookup[T any]() (*Class, bool) { return LookupIn[T](defaultRegistry) }

// LookupIn is Lookup against an explicit registry.
func LookupIn[T any](r *Registry) (*Class, bool) {
	return r.ByType(TypeOf[T]())
}

// ClassFor resolves the class of v's dynamic type from the default
// registry. Pointers are unwrapped, so a *Circle resolves the Circle class.
func ClassFor(v any) (*Class, bool) { return defaultRegistry.Of(v) }

// ByType returns the class for the identified type, building it on first
// use. The second result is false when the type was never declared.
func (r *Registry) ByType(id TypeID) (*Class, bool) {
	c := r.build(id, nil)
	return c, c != nil
}

// ByName returns the class registered under name. Canonical names resolve
// before aliases, even while the canonical class is declared but not yet
// built, so an alias can never shadow another class's canonical name. A
// canonical match builds its class on demand; aliases resolve only once
// their class has been built.
func (r *Registry) ByName(name string) (*Class, bool) {
	if v, ok := r.byName.Load(name); ok {
		return v.(*Class), true
	}
	if v, ok := r.declNames.Load(name); ok {
		c := r.build(v.(TypeID), nil)
		return c, c != nil
	}
	if v, ok := r.byAlias.Load(name); ok {
		return v.(*Class), true
	}
	return nil, false
}

// Of resolves the class of v's dynamic type. Pointers are unwrapped first.
func (r *Registry) Of(v any) (*Class, bool) {
	if v == nil {
		return nil, false
	}
	rt := reflect.TypeOf(v)
	for rt.Kind() == reflect.Pointer {
		rt = rt.Elem()
	}
	return r.ByType(typeIDFor(rt))
}

// Classes returns the classes built so far, in build order. Declared
// classes that were never looked up are not included.
func (r *Registry) Classes() []*Class {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*Class, len(r.classes))
	copy(out, r.classes)
	return out
}

// Len returns the number of classes built so far.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.classes)
}

// build returns the class for id, constructing it if needed, or nil when id
// was never declared. path carries the chain of classes whose bases are
// being resolved; revisiting one is a declaration cycle and panics rather
// than deadlocking. Waiting for a build in progress on another goroutine
// goes through beginWait, which extends the same cycle-to-panic guarantee
// to builders blocked on each other.
func (r *Registry) build(id TypeID, path []TypeID) *Class {
	if v, ok := r.built.Load(id); ok {
		return v.(*Class)
	}
	r.mu.Lock()
	e := r.decls[id]
	r.mu.Unlock()
	if e == nil {
		return nil
	}
	for _, seen := range path {
		if seen == id {
			panic("optik: base cycle: " + r.describeCycle(path, id))
		}
	}
	for {
		e.mu.Lock()
		switch e.state {
		case declDone:
			c := e.class
			e.mu.Unlock()
			return c
		case declBuilding:
			done := e.done
			e.mu.Unlock()
			r.beginWait(path, id)
			<-done
			r.endWait(path)
			continue
		}
		e.state = declBuilding
		e.done = make(chan struct{})
		e.mu.Unlock()
		break
	}

	c := &Class{id: id, name: e.name, registry: r}
	finished := false
	defer func() {
		e.mu.Lock()
		if finished {
			e.class = c
			e.state = declDone
		} else {
			// The declaration function panicked. Reset so the next lookup
			// retries instead of waiting forever.
			e.state = declIdle
		}
		close(e.done)
		e.mu.Unlock()
	}()

	e.construct(c)
	for _, baseID := range c.pendingBases {
		base := r.build(baseID, append(path, id))
		if base == nil {
			panic(fmt.Sprintf("optik: class %s declares base %s, which is not defined", c.name, baseID))
		}
		c.bases = append(c.bases, makeBaseLink(c.id, base))
	}
	c.pendingBases = nil
	r.publish(c)
	finished = true
	return c
}

// beginWait records that the builder holding the entries in path is about to
// block until id finishes building on another goroutine. Before recording it
// follows the chain of already recorded waits from id; reaching one of the
// caller's own entries means two builders are waiting on each other, which
// only a declaration cycle can produce, so it panics like the in-goroutine
// path check instead of deadlocking.
func (r *Registry) beginWait(path []TypeID, id TypeID) {
	if len(path) == 0 {
		return
	}
	r.waitMu.Lock()
	defer r.waitMu.Unlock()
	cur := id
	for steps := 0; steps <= len(r.waiting); steps++ {
		for _, own := range path {
			if cur == own {
				panic("optik: base cycle across concurrent builds: " + r.describeCycle(path, id))
			}
		}
		next, ok := r.waiting[cur]
		if !ok {
			break
		}
		cur = next
	}
	for _, own := range path {
		r.waiting[own] = id
	}
}

// endWait clears the records left by beginWait.
func (r *Registry) endWait(path []TypeID) {
	if len(path) == 0 {
		return
	}
	r.waitMu.Lock()
	for _, own := range path {
		delete(r.waiting, own)
	}
	r.waitMu.Unlock()
}

// publish makes the finished class visible to lookups.
func (r *Registry) publish(c *Class) {
	kept := c.aliases[:0]
	for _, alias := range c.aliases {
		if _, taken := r.declNames.Load(alias); taken {
			r.log().Warn("alias collides with a canonical class name, ignoring",
				slog.String("alias", alias),
				slog.String("class", c.name))
			continue
		}
		if prev, loaded := r.byAlias.LoadOrStore(alias, c); loaded {
			r.log().Warn("duplicate alias registration, ignoring",
				slog.String("alias", alias),
				slog.String("class", c.name),
				slog.String("existing", prev.(*Class).name))
			continue
		}
		kept = append(kept, alias)
	}
	c.aliases = kept

	r.built.Store(c.id, c)
	r.byName.Store(c.name, c)
	r.mu.Lock()
	r.classes = append(r.classes, c)
	r.mu.Unlock()
}

func (r *Registry) describeCycle(path []TypeID, id TypeID) string {
	names := make([]string, 0, len(path)+1)
	for _, tid := range append(path, id) {
		names = append(names, r.declaredName(tid))
	}
	return strings.Join(names, " -> ")
}

func (r *Registry) declaredName(id TypeID) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.decls[id]; ok {
		return e.name
	}
	return id.String()
}
