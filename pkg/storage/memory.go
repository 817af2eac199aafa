package storage

import (
	"context"
	"maps"
	"slices"
	"sync"

	"github.com/matzehuels/buildingmap/pkg/building"
	bmio "github.com/matzehuels/buildingmap/pkg/io"
)

// MemoryBackend keeps encoded documents in memory, keyed by location key.
type MemoryBackend struct {
	mu   sync.RWMutex
	def  bmio.Format
	data map[string][]byte
}

// NewMemoryBackend returns an empty memory backend.
func NewMemoryBackend(def bmio.Format) *MemoryBackend {
	return &MemoryBackend{def: def, data: make(map[string][]byte)}
}

// Store implements Backend.
func (b *MemoryBackend) Store(_ context.Context, loc Location, m *building.Map) (int, error) {
	data, err := encode(m, loc.Format(b.def))
	if err != nil {
		return 0, err
	}
	b.mu.Lock()
	b.data[loc.Key()] = data
	b.mu.Unlock()
	return len(data), nil
}

// Get returns the bytes stored under key.
func (b *MemoryBackend) Get(key string) ([]byte, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	d, ok := b.data[key]
	return d, ok
}

// Format returns the encoding documents under key are stored in.
func (b *MemoryBackend) Format(key string) bmio.Format {
	return bmio.FormatFromPath(key, b.def)
}

// Keys returns the stored keys in sorted order.
func (b *MemoryBackend) Keys() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return slices.Sorted(maps.Keys(b.data))
}

var _ Backend = (*MemoryBackend)(nil)
