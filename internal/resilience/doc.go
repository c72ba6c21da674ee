// Package resilience holds fault isolation helpers for optional backends.
//
// The cache backend is advisory: when it degrades, calls must fail fast and the
// caller falls back to the authoritative store. The circuitbreaker subpackage
// wraps github.com/sony/gobreaker for that purpose.
//
//	cb := circuitbreaker.New(circuitbreaker.CacheConfig())
//	v, err := circuitbreaker.Do(cb, func() ([]byte, error) {
//	    return client.Get(ctx, key).Bytes()
//	})
package resilience
