package export

import (
	"fmt"
	"strings"
)

// Symbol is one public name exported by a module.
type Symbol struct {
	Name  string
	Value any
}

// Module is the interface every aggregated module implements.
type Module interface {
	// Name is the module's identifier in the manifest (e.g., "st_model")
	Name() string
	// Exports lists the module's public symbols
	Exports() []Symbol
}

// staticModule is a Module with a fixed symbol list
type staticModule struct {
	name    string
	symbols []Symbol
}

// NewModule returns a Module exporting the given symbols.
func NewModule(name string, symbols ...Symbol) Module {
	cp := make([]Symbol, len(symbols))
	copy(cp, symbols)
	return &staticModule{name: name, symbols: cp}
}

func (m *staticModule) Name() string { return m.name }

func (m *staticModule) Exports() []Symbol {
	cp := make([]Symbol, len(m.symbols))
	copy(cp, m.symbols)
	return cp
}

// Entry is one line of a manifest: a module name and, optionally, the only
// names imported from it.
type Entry struct {
	Module string
	Only   []string
}

// IsPublic reports whether a wildcard import carries name: any non-empty
// name that does not start with an underscore.
func IsPublic(name string) bool {
	return name != "" && !strings.HasPrefix(name, "_")
}

// selectSymbols applies an entry to a module's exports. Without Only the
// public names are taken and private ones skipped; Only may name any export.
func selectSymbols(e Entry, m Module) ([]Symbol, error) {
	exports := m.Exports()

	byName := make(map[string]Symbol, len(exports))
	public := make([]Symbol, 0, len(exports))
	for _, s := range exports {
		if _, dup := byName[s.Name]; dup {
			return nil, fmt.Errorf("%w: %s.%s", ErrDuplicateSymbol, e.Module, s.Name)
		}
		byName[s.Name] = s
		if IsPublic(s.Name) {
			public = append(public, s)
		}
	}

	if len(e.Only) == 0 {
		return public, nil
	}

	selected := make([]Symbol, 0, len(e.Only))
	for _, name := range e.Only {
		s, ok := byName[name]
		if !ok {
			return nil, fmt.Errorf("%w: %s.%s", ErrSymbolMissing, e.Module, name)
		}
		selected = append(selected, s)
	}
	return selected, nil
}
