package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
)

// Factory opens a Library. The logger may be nil.
type Factory func(ctx context.Context, logger *slog.Logger) (Library, error)

// DefaultLibrary is opened when no library is named.
const DefaultLibrary = "builtin"

var (
	registryMu sync.RWMutex
	registry   = make(map[string]Factory)
)

// Register adds a library factory to the registry.
// Called by engine implementations in their init() functions.
func Register(name string, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[name] = factory
}

// Get retrieves a library factory by name.
func Get(name string) (Factory, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	f, ok := registry[name]
	return f, ok
}

// Open creates the named library. "" opens DefaultLibrary.
func Open(ctx context.Context, name string, logger *slog.Logger) (Library, error) {
	if name == "" {
		name = DefaultLibrary
	}
	factory, ok := Get(name)
	if !ok {
		return nil, &UnknownLibraryError{
			Name:      name,
			Available: ListLibraries(),
		}
	}
	if logger == nil {
		logger = slog.Default()
	}
	lib, err := factory(ctx, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open engine library %q: %w", name, err)
	}
	return lib, nil
}

// ListLibraries returns all registered library names (sorted).
func ListLibraries() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// UnknownLibraryError is returned when an unregistered library is requested.
type UnknownLibraryError struct {
	Name      string
	Available []string
}

func (e *UnknownLibraryError) Error() string {
	return fmt.Sprintf("unknown engine library %q\nAvailable libraries: %v\nHint: Check the engine setting", e.Name, e.Available)
}
