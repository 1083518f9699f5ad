package plugin

import (
	"sort"
	"sync"

	"github.com/matzehuels/layerspec/pkg/errors"
)

var (
	factories   = make(map[string]Factory)
	factoriesMu sync.RWMutex
)

// Register makes a plugin factory available under name.
// It panics if name is invalid, f is nil, or name is already registered.
func Register(name string, f Factory) {
	if err := errors.ValidateName("plugin", name); err != nil {
		panic(err)
	}
	if f == nil {
		panic("plugin: Register factory is nil for " + name)
	}
	factoriesMu.Lock()
	defer factoriesMu.Unlock()
	if _, dup := factories[name]; dup {
		panic("plugin: Register called twice for " + name)
	}
	factories[name] = f
}

// Lookup returns the factory registered under name.
func Lookup(name string) (Factory, error) {
	factoriesMu.RLock()
	defer factoriesMu.RUnlock()
	f, ok := factories[name]
	if !ok {
		return nil, errors.New(errors.ErrCodePluginNotFound, "no plugin registered as %q", name)
	}
	return f, nil
}

// New creates an instance of the named plugin.
func New(name string, decode func(v any) error) (Plugin, error) {
	f, err := Lookup(name)
	if err != nil {
		return nil, err
	}
	if decode == nil {
		decode = NoDecode
	}
	p, err := f(decode)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "configure plugin %s", name)
	}
	return p, nil
}

// Names returns the registered plugin names in sorted order.
func Names() []string {
	factoriesMu.RLock()
	defer factoriesMu.RUnlock()
	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// unregister removes a factory. Used by tests.
func unregister(name string) {
	factoriesMu.Lock()
	defer factoriesMu.Unlock()
	delete(factories, name)
}
