package cache

import (
	"context"
	"time"
)

// scoped prefixes every key of an inner cache.
type scoped struct {
	inner  Cache
	prefix string
}

// Scoped returns a view of c where every key is prefixed with prefix.
// Scopes nest: Scoped(Scoped(c, "a:"), "b:") stores under "a:b:".
// Closing the view closes c.
//
//	proxy := cache.Scoped(c, "unsplash:proxy:")
//	api := cache.Scoped(c, "unsplash:api:")
func Scoped(c Cache, prefix string) Cache {
	if c == nil {
		c = NewNullCache()
	}
	if s, ok := c.(*scoped); ok {
		return &scoped{inner: s.inner, prefix: s.prefix + prefix}
	}
	return &scoped{inner: c, prefix: prefix}
}

func (s *scoped) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return s.inner.Get(ctx, s.prefix+key)
}

func (s *scoped) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	return s.inner.Set(ctx, s.prefix+key, data, ttl)
}

func (s *scoped) Delete(ctx context.Context, key string) error {
	return s.inner.Delete(ctx, s.prefix+key)
}

func (s *scoped) Close() error { return s.inner.Close() }
