//-------------------------------------------------------------------------
//
// pgEdge Retail Warehouse
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package dimensions

import (
	"fmt"
	"sort"
	"sync"
)

var (
	registry = make(map[string]Dimension)
	mu       sync.RWMutex
)

// Register adds a dimension to the registry.
func Register(d Dimension) {
	mu.Lock()
	defer mu.Unlock()
	registry[d.Name()] = d
}

// Get retrieves a dimension by name.
func Get(name string) (Dimension, error) {
	mu.RLock()
	defer mu.RUnlock()

	d, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown dimension: %s", name)
	}
	return d, nil
}

// List returns all registered dimension names in sorted order.
func List() []string {
	mu.RLock()
	defer mu.RUnlock()

	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// All returns all registered dimensions sorted by name.
func All() []Dimension {
	names := List()

	mu.RLock()
	defer mu.RUnlock()

	dims := make([]Dimension, 0, len(names))
	for _, name := range names {
		dims = append(dims, registry[name])
	}
	return dims
}

// Select resolves names to dimensions. An empty list selects all.
func Select(names []string) ([]Dimension, error) {
	if len(names) == 0 {
		return All(), nil
	}
	dims := make([]Dimension, 0, len(names))
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		if seen[name] {
			continue
		}
		seen[name] = true
		d, err := Get(name)
		if err != nil {
			return nil, err
		}
		dims = append(dims, d)
	}
	return dims, nil
}
