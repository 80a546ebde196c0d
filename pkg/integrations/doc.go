// Package integrations provides the shared HTTP client behind third-party
// lookup APIs.
//
// [Client] wraps net/http with JSON decoding, per-namespace response caching
// via [cache.Cache], retries with exponential backoff for transient failures
// and observability hooks. Status codes map onto sentinel errors:
//
//   - 404 → [ErrNotFound]
//   - 401 → [ErrUnauthorized]
//   - 429 and 403 → errors.RateLimitedError
//   - 5xx and transport failures → [ErrNetwork], retried
//
// API-specific clients live in subpackages and embed [Client]:
//
//	c := unsplash.NewClient(backend, unsplash.Options{CacheTTL: 24 * time.Hour})
//	imageURL, err := c.ResolveImageURL(ctx, "https://unsplash.com/photos/-mUBrTfsu0A")
//
// [cache.Cache]: github.com/matzehuels/srcsetlab/pkg/cache.Cache
package integrations
