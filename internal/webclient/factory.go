package webclient

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/raysh454/reconspider/internal/interfaces"
)

// Options carries the handful of construction knobs a Fetcher backend
// might need. It intentionally avoids depending on internal/app to keep
// this package import-cycle free.
type Options struct {
	UserAgent string
	IdleAfter time.Duration
}

// BackendConstructor builds an interfaces.Fetcher for a named backend.
type BackendConstructor func(opts Options, logger interfaces.Logger) (interfaces.Fetcher, error)

var (
	mu       sync.RWMutex
	registry = map[string]BackendConstructor{}
)

// RegisterBackend registers a named backend constructor, lower-casing the
// name. Registering the same name twice overwrites the previous entry.
func RegisterBackend(name string, ctor BackendConstructor) {
	if name == "" || ctor == nil {
		return
	}
	mu.Lock()
	defer mu.Unlock()
	registry[strings.ToLower(name)] = ctor
}

// NewFetcher constructs the named backend ("" defaults to "nethttp").
func NewFetcher(backend string, opts Options, logger interfaces.Logger) (interfaces.Fetcher, error) {
	backend = strings.ToLower(strings.TrimSpace(backend))
	if backend == "" {
		backend = "nethttp"
	}

	mu.RLock()
	ctor, ok := registry[backend]
	mu.RUnlock()
	if !ok || ctor == nil {
		return nil, fmt.Errorf("fetcher backend %q not registered: available=%v", backend, ListBackends())
	}

	fetcher, err := ctor(opts, logger)
	if err != nil {
		return nil, fmt.Errorf("construct fetcher backend %q: %w", backend, err)
	}
	if fetcher == nil {
		return nil, errors.New("fetcher constructor returned nil")
	}
	return fetcher, nil
}

// ListBackends returns the registered backend names.
func ListBackends() []string {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]string, 0, len(registry))
	for k := range registry {
		out = append(out, k)
	}
	return out
}
