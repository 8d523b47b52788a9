package chat

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

const defaultMetadataTTL = 5 * time.Minute

// metadataCache caches metadata responses by endpoint URL for a bounded
// time window. Concurrent requesters for the same key share a single
// in-flight fetch. Each Client owns its own cache, so unrelated clients
// never observe each other's state.
type metadataCache struct {
	ttl   time.Duration
	group singleflight.Group

	mu      sync.Mutex
	entries map[string]metadataEntry
}

type metadataEntry struct {
	value   *Metadata
	expires time.Time
}

func newMetadataCache(ttl time.Duration) *metadataCache {
	return &metadataCache{
		ttl:     ttl,
		entries: make(map[string]metadataEntry),
	}
}

func (mc *metadataCache) get(ctx context.Context, key string, fetch func(context.Context) (*Metadata, error)) (*Metadata, error) {
	mc.mu.Lock()
	if e, ok := mc.entries[key]; ok && time.Now().Before(e.expires) {
		mc.mu.Unlock()
		return e.value, nil
	}
	mc.mu.Unlock()

	v, err, _ := mc.group.Do(key, func() (any, error) {
		meta, err := fetch(ctx)
		if err != nil {
			return nil, err
		}
		mc.mu.Lock()
		mc.entries[key] = metadataEntry{value: meta, expires: time.Now().Add(mc.ttl)}
		mc.mu.Unlock()
		return meta, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Metadata), nil
}

// flush drops all cached entries.
func (mc *metadataCache) flush() {
	mc.mu.Lock()
	mc.entries = make(map[string]metadataEntry)
	mc.mu.Unlock()
}
