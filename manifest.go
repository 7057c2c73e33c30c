package stratus

import (
	"fmt"
	"sync"

	"github.com/stratus-eda/stratus/export"
)

// ConfigModule is the logical name the settings are attached under
const ConfigModule = "st_config"

// manifest is the definitive, ordered list of modules re-exported by a
// session. Later modules shadow earlier ones on name collisions.
var manifest = []export.Entry{
	{Module: "st_model"},
	{Module: "st_net"},
	{Module: "st_instance"},
	{Module: "st_placement"},
	{Module: "st_placeAndRoute"},
	{Module: "st_ref"},
	{Module: "st_generate"},
	{Module: "st_const"},
	{Module: "st_cat"},
	{Module: "st_param"},
	{Module: "st_getrealmodel", Only: []string{"GetWeightTime", "GetWeightArea", "GetWeightPower"}},

	{Module: "util_Const"},
	{Module: "util_Defs"},
	{Module: "util_Misc"},
	{Module: "util_Gen"},
	{Module: "util_Shift"},
	{Module: "util_uRom"},
	{Module: "util"},

	{Module: "patterns"},
}

// Manifest returns a copy of the module manifest.
func Manifest() []export.Entry {
	cp := make([]export.Entry, len(manifest))
	for i, e := range manifest {
		cp[i] = export.Entry{Module: e.Module, Only: append([]string(nil), e.Only...)}
	}
	return cp
}

var (
	registryMu sync.RWMutex
	registry   = make(map[string]export.Module)
)

// Register makes a module available to Open. Modules usually call it from
// an init function. Registering a name twice, or a name outside the
// manifest, panics.
func Register(m export.Module) {
	if m == nil {
		panic("stratus: Register module is nil")
	}

	name := m.Name()
	if !inManifest(name) {
		panic(fmt.Sprintf("stratus: module %q is not in the manifest", name))
	}

	registryMu.Lock()
	defer registryMu.Unlock()

	if _, exists := registry[name]; exists {
		panic(fmt.Sprintf("stratus: module %q already registered", name))
	}
	registry[name] = m
}

// Registered returns the registered modules in manifest order.
func Registered() []export.Module {
	registryMu.RLock()
	defer registryMu.RUnlock()

	mods := make([]export.Module, 0, len(registry))
	for _, e := range manifest {
		if m, ok := registry[e.Module]; ok {
			mods = append(mods, m)
		}
	}
	return mods
}

// ModuleStatus reports whether a manifest module is registered.
type ModuleStatus struct {
	Name       string
	Only       []string
	Registered bool
}

// Modules lists the manifest with the registration state of each module.
func Modules() []ModuleStatus {
	registryMu.RLock()
	defer registryMu.RUnlock()

	statuses := make([]ModuleStatus, 0, len(manifest))
	for _, e := range manifest {
		_, ok := registry[e.Module]
		statuses = append(statuses, ModuleStatus{
			Name:       e.Module,
			Only:       append([]string(nil), e.Only...),
			Registered: ok,
		})
	}
	return statuses
}

func inManifest(name string) bool {
	for _, e := range manifest {
		if e.Module == name {
			return true
		}
	}
	return false
}

// unregisterAll clears the registry. Tests only.
func unregisterAll() {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry = make(map[string]export.Module)
}
