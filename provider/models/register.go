// Package models holds the global registry of named provider backends. The
// front end registers every configured backend at startup and resolves the
// one named by configuration; nothing in here inspects provider types at
// runtime.
package models

import (
	"slices"

	"github.com/alphadose/haxmap"
	"github.com/casualjim/courier/provider"
)

var registry = haxmap.New[string, provider.Provider]()

// Add registers a backend under the given name, replacing any previous entry.
func Add(name string, prov provider.Provider) {
	registry.Set(name, prov)
}

// Get returns the backend registered under name.
func Get(name string) (provider.Provider, bool) {
	return registry.Get(name)
}

// GetOrAdd returns the backend registered under name, constructing and
// registering it with provF when absent.
func GetOrAdd(name string, provF func() provider.Provider) provider.Provider {
	p, _ := registry.GetOrCompute(name, provF)
	return p
}

// Del removes the backend registered under name.
func Del(name string) {
	registry.Del(name)
}

// Names returns the registered backend names in sorted order.
func Names() []string {
	names := make([]string, 0, registry.Len())
	registry.ForEach(func(name string, _ provider.Provider) bool {
		names = append(names, name)
		return true
	})
	slices.Sort(names)
	return names
}
