package export

import "errors"

var (
	// ErrModuleMissing reports a manifest entry with no registered module
	ErrModuleMissing = errors.New("module not registered")
	// ErrDuplicateModule reports two modules sharing a name
	ErrDuplicateModule = errors.New("module registered twice")
	// ErrSymbolMissing reports a selected name the module does not export
	ErrSymbolMissing = errors.New("symbol not exported by module")
	// ErrDuplicateSymbol reports a module exporting the same name twice
	ErrDuplicateSymbol = errors.New("symbol exported twice by module")
)
