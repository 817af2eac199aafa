package storage

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/matzehuels/buildingmap/pkg/building"
	bmio "github.com/matzehuels/buildingmap/pkg/io"
)

// RedisBackend stores the encoded document as a string value.
type RedisBackend struct {
	client *redis.Client
	def    bmio.Format
	ttl    time.Duration
}

// NewRedisBackend wraps an existing client. A zero ttl keeps values forever.
func NewRedisBackend(client *redis.Client, def bmio.Format, ttl time.Duration) *RedisBackend {
	return &RedisBackend{client: client, def: def, ttl: ttl}
}

// Store implements Backend.
func (b *RedisBackend) Store(ctx context.Context, loc Location, m *building.Map) (int, error) {
	data, err := encode(m, loc.Format(b.def))
	if err != nil {
		return 0, err
	}
	if err := b.client.Set(ctx, loc.Key(), data, b.ttl).Err(); err != nil {
		return 0, err
	}
	return len(data), nil
}

// Close closes the underlying client.
func (b *RedisBackend) Close() error { return b.client.Close() }

var _ Backend = (*RedisBackend)(nil)
