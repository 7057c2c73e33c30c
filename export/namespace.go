// Package export composes the public surface of many modules into a single
// namespace. Composition follows an explicit, ordered manifest: each module
// is applied in turn and a name defined by several modules is bound to the
// last definer. Every shadowing is recorded, so collisions are visible
// instead of incidental to load order.
package export

import (
	"errors"
	"fmt"
	"sort"
)

// binding is the value bound to a name and the module that supplied it
type binding struct {
	value  any
	origin string
}

// Shadow records a name rebound by a later module.
type Shadow struct {
	Name string
	From string // module whose binding was replaced
	To   string // module now providing the name
}

// Namespace is the composed, read-only symbol table.
type Namespace struct {
	bindings map[string]binding
	shadowed []Shadow
	order    []string
	attached map[string]Module
}

// Lookup returns the value bound to name.
func (ns *Namespace) Lookup(name string) (any, bool) {
	b, ok := ns.bindings[name]
	return b.value, ok
}

// Origin returns the module that provides name.
func (ns *Namespace) Origin(name string) (string, bool) {
	b, ok := ns.bindings[name]
	return b.origin, ok
}

// Names returns every bound name in lexical order.
func (ns *Namespace) Names() []string {
	names := make([]string, 0, len(ns.bindings))
	for name := range ns.bindings {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of bound names.
func (ns *Namespace) Len() int {
	return len(ns.bindings)
}

// Shadowed returns the shadowing events in the order they happened.
func (ns *Namespace) Shadowed() []Shadow {
	cp := make([]Shadow, len(ns.shadowed))
	copy(cp, ns.shadowed)
	return cp
}

// Order returns the module names in composition order.
func (ns *Namespace) Order() []string {
	cp := make([]string, len(ns.order))
	copy(cp, ns.order)
	return cp
}

// Module returns a module attached under a logical name. Attached modules
// are reachable by name but do not contribute symbols.
func (ns *Namespace) Module(name string) (Module, bool) {
	m, ok := ns.attached[name]
	return m, ok
}

// Composer builds a Namespace from a manifest and a set of modules.
type Composer struct {
	manifest []Entry
	modules  map[string]Module
	attached map[string]Module
	err      error
}

// NewComposer creates a composer for the given manifest.
func NewComposer(manifest []Entry) *Composer {
	cp := make([]Entry, len(manifest))
	copy(cp, manifest)
	return &Composer{
		manifest: cp,
		modules:  make(map[string]Module),
		attached: make(map[string]Module),
	}
}

// WithModules supplies modules; names absent from the manifest are ignored.
func (c *Composer) WithModules(mods ...Module) *Composer {
	for _, m := range mods {
		if m == nil {
			continue
		}
		if _, exists := c.modules[m.Name()]; exists {
			c.err = errors.Join(c.err, fmt.Errorf("%w: %s", ErrDuplicateModule, m.Name()))
			continue
		}
		c.modules[m.Name()] = m
	}
	return c
}

// Attach binds m under its own name without merging its symbols.
func (c *Composer) Attach(m Module) *Composer {
	if _, exists := c.attached[m.Name()]; exists {
		c.err = errors.Join(c.err, fmt.Errorf("%w: %s", ErrDuplicateModule, m.Name()))
		return c
	}
	c.attached[m.Name()] = m
	return c
}

// Missing returns the manifest entries with no supplied module, in manifest order.
func (c *Composer) Missing() []string {
	var missing []string
	for _, e := range c.manifest {
		if _, ok := c.modules[e.Module]; !ok {
			missing = append(missing, e.Module)
		}
	}
	return missing
}

// Build composes the namespace. Every manifest module must be supplied.
func (c *Composer) Build() (*Namespace, error) {
	if c.err != nil {
		return nil, c.err
	}

	if missing := c.Missing(); len(missing) > 0 {
		errs := make([]error, 0, len(missing))
		for _, name := range missing {
			errs = append(errs, fmt.Errorf("%w: %s", ErrModuleMissing, name))
		}
		return nil, errors.Join(errs...)
	}

	ns := &Namespace{
		bindings: make(map[string]binding),
		order:    make([]string, 0, len(c.manifest)),
		attached: make(map[string]Module, len(c.attached)),
	}
	for name, m := range c.attached {
		ns.attached[name] = m
	}

	seen := make(map[string]bool, len(c.manifest))
	for _, e := range c.manifest {
		if seen[e.Module] {
			return nil, fmt.Errorf("%w: %s listed twice in manifest", ErrDuplicateModule, e.Module)
		}
		seen[e.Module] = true

		symbols, err := selectSymbols(e, c.modules[e.Module])
		if err != nil {
			return nil, err
		}

		for _, s := range symbols {
			if prev, exists := ns.bindings[s.Name]; exists {
				ns.shadowed = append(ns.shadowed, Shadow{Name: s.Name, From: prev.origin, To: e.Module})
			}
			ns.bindings[s.Name] = binding{value: s.Value, origin: e.Module}
		}
		ns.order = append(ns.order, e.Module)
	}

	return ns, nil
}
