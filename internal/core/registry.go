package core

import (
	"fmt"
	"sort"
	"sync"
)

var (
	registry   = make(map[string]Preset)
	registryMu sync.RWMutex
)

// Register adds a rule preset to the registry.
// Panics if a preset with the same name is already registered.
func Register(p Preset) {
	registryMu.Lock()
	defer registryMu.Unlock()

	if _, exists := registry[p.Name]; exists {
		panic(fmt.Sprintf("preset already registered: %s", p.Name))
	}
	registry[p.Name] = p.clone()
}

// Replace adds or overwrites a preset by name.
// Presets loaded from a file use this so they can override built-ins.
func Replace(p Preset) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[p.Name] = p.clone()
}

// Get returns a preset by name.
// Returns false if not found.
func Get(name string) (Preset, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	p, ok := registry[name]
	if !ok {
		return Preset{}, false
	}
	return p.clone(), true
}

// All returns all registered presets.
// Sorted by group then by name for consistent ordering.
func All() []Preset {
	registryMu.RLock()
	defer registryMu.RUnlock()

	result := make([]Preset, 0, len(registry))
	for _, p := range registry {
		result = append(result, p.clone())
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].Group != result[j].Group {
			return result[i].Group < result[j].Group
		}
		return result[i].Name < result[j].Name
	})

	return result
}

// ByGroup returns all presets for a specific group.
// Sorted by name for consistent ordering.
func ByGroup(group string) []Preset {
	registryMu.RLock()
	defer registryMu.RUnlock()

	var result []Preset
	for _, p := range registry {
		if p.Group == group {
			result = append(result, p.clone())
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Name < result[j].Name
	})

	return result
}

// Groups returns all unique group names.
// Sorted alphabetically.
func Groups() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	seen := make(map[string]bool)
	for _, p := range registry {
		seen[p.Group] = true
	}

	groups := make([]string, 0, len(seen))
	for g := range seen {
		groups = append(groups, g)
	}

	sort.Strings(groups)
	return groups
}

// Names returns all preset names, sorted.
func Names() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// PresetCount returns the number of registered presets.
func PresetCount() int {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return len(registry)
}
