package catalog

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/starford/termblog/internal/storage"
)

// Library holds the current catalog and swaps it atomically on reload.
// Readers holding an older snapshot keep using it.
type Library struct {
	store    storage.Provider
	mediaURL string

	mu      sync.Mutex // serialises Reload
	current atomic.Pointer[Catalog]
}

// NewLibrary builds the initial catalog.
func NewLibrary(store storage.Provider, mediaURL string) (*Library, error) {
	l := &Library{store: store, mediaURL: mediaURL}
	c, err := Build(store, mediaURL)
	if err != nil {
		return nil, err
	}
	l.current.Store(c)
	return l, nil
}

// Current returns the latest successfully built catalog.
func (l *Library) Current() *Catalog { return l.current.Load() }

// Store returns the underlying content provider.
func (l *Library) Store() storage.Provider { return l.store }

// Reload rebuilds the catalog. On failure the previous catalog stays
// current and the error is returned.
func (l *Library) Reload() (*Catalog, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	c, err := Build(l.store, l.mediaURL)
	if err != nil {
		return l.current.Load(), fmt.Errorf("reload: %w", err)
	}
	l.current.Store(c)
	return c, nil
}
