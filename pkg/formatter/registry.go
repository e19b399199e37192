package formatter

import (
	"fmt"
	"sort"
	"sync"
)

// DefaultName is the formatter used when none is named.
const DefaultName = "stylish"

var (
	registryMu sync.RWMutex
	registry   = make(map[string]Formatter)
)

// Register adds a formatter under name, replacing any previous one.
func Register(name string, f Formatter) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[name] = f
}

// Get retrieves a formatter by name.
func Get(name string) (Formatter, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	f, ok := registry[name]
	return f, ok
}

// Lookup resolves name, falling back to DefaultName for "".
func Lookup(name string) (Formatter, error) {
	if name == "" {
		name = DefaultName
	}
	f, ok := Get(name)
	if !ok {
		return nil, &UnknownFormatterError{
			Name:      name,
			Available: Names(),
		}
	}
	return f, nil
}

// Names returns all registered formatter names (sorted).
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

// UnknownFormatterError is returned when an unregistered formatter is requested.
type UnknownFormatterError struct {
	Name      string
	Available []string
}

func (e *UnknownFormatterError) Error() string {
	return fmt.Sprintf("unknown formatter %q\nAvailable formatters: %v\nHint: Check the format option", e.Name, e.Available)
}

func init() {
	Register("stylish", Func(Stylish))
	Register("compact", Func(Compact))
	Register("unix", Func(Unix))
	Register("json", Func(JSON))
	Register("json-with-metadata", Func(JSONWithMetadata))
	Register("table", Func(Table))
	Register("sarif", Func(SARIF))
}
