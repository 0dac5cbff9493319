package cache

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// SweepInterval is how often the janitor purges expired keys.
const SweepInterval = time.Minute

// MemoryBackend lives and dies with the process. Expired keys read as missing
// and are purged by the go-cache janitor every SweepInterval.
type MemoryBackend struct {
	items *gocache.Cache
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{items: gocache.New(gocache.NoExpiration, SweepInterval)}
}

func (b *MemoryBackend) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, ok := b.items.Get(key)
	if !ok {
		return nil, false, nil
	}
	raw, _ := v.([]byte)
	out := make([]byte, len(raw))
	copy(out, raw)
	return out, true, nil
}

// Set stores a copy of value. A non-positive ttl never expires.
func (b *MemoryBackend) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	stored := make([]byte, len(value))
	copy(stored, value)
	if ttl <= 0 {
		ttl = gocache.NoExpiration
	}
	b.items.Set(key, stored, ttl)
	return nil
}

func (b *MemoryBackend) Delete(_ context.Context, key string) error {
	b.items.Delete(key)
	return nil
}

func (b *MemoryBackend) Ping(context.Context) error { return nil }
