package core

import (
	"fmt"
	"sort"
	"sync"
)

var (
	registry   = make(map[string]registration)
	registryMu sync.RWMutex
)

type registration struct {
	version  EuringVersion
	defaults map[string][]LookupEntry
}

// Register adds a built-in version layout and its default lookup tables.
// Panics if a version with the same ID is already registered.
func Register(v EuringVersion, defaults map[string][]LookupEntry) {
	registryMu.Lock()
	defer registryMu.Unlock()

	if _, exists := registry[v.ID]; exists {
		panic(fmt.Sprintf("version already registered: %s", v.ID))
	}

	// Positions default to declaration order
	for i := range v.Fields {
		if v.Fields[i].Position == 0 {
			v.Fields[i].Position = i + 1
		}
	}

	registry[v.ID] = registration{version: v, defaults: defaults}
}

// Builtin returns a registered version by ID.
func Builtin(id string) (EuringVersion, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	r, ok := registry[id]
	return r.version, ok
}

// Builtins returns all registered versions, oldest first.
func Builtins() []EuringVersion {
	registryMu.RLock()
	defer registryMu.RUnlock()

	result := make([]EuringVersion, 0, len(registry))
	for _, r := range registry {
		result = append(result, r.version)
	}
	sortVersions(result)
	return result
}

// BuiltinDefaults returns the default lookup tables of a registered version,
// keyed by field name.
func BuiltinDefaults(id string) map[string][]LookupEntry {
	registryMu.RLock()
	defer registryMu.RUnlock()

	return registry[id].defaults
}

// VersionCount returns the number of registered versions.
func VersionCount() int {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return len(registry)
}

// Clear removes all registered versions.
// Primarily useful for testing.
func Clear() {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry = make(map[string]registration)
}

func sortVersions(vs []EuringVersion) {
	sort.Slice(vs, func(i, j int) bool {
		if vs[i].Year != vs[j].Year {
			return vs[i].Year < vs[j].Year
		}
		return vs[i].ID < vs[j].ID
	})
}
