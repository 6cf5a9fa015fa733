// Package httputil provides HTTP utilities for blockchain API clients.
//
// # Overview
//
// This package provides infrastructure used by the UTXO source clients:
//
//   - [Cache]: File-based HTTP response caching
//   - [Retry]: Automatic retry with exponential backoff
//
// # Caching
//
// [Cache] stores HTTP responses in the filesystem (~/.cache/utxoscope/)
// with configurable TTL. This speeds up repeated fetches of the same
// address and reduces load on public block explorers, which rate-limit
// aggressively.
//
// Usage:
//
//	cache, err := httputil.NewCache("", 10*time.Minute)
//	ok, _ := cache.Get("esplora:bc1q.../utxo", &utxos)
//	if !ok {
//	    utxos = fetchFromAPI()
//	    cache.Set("esplora:bc1q.../utxo", utxos)
//	}
//
// Cache keys should be namespaced by source to avoid collisions.
//
// # Retry
//
// [Retry] wraps HTTP requests with automatic retry for transient failures:
//
//   - Network errors
//   - 5xx server errors
//   - 429 rate limit responses
//
// It uses exponential backoff (1s, 2s, 4s) and gives up after 3 attempts.
//
// The cache can be cleared via `utxoscope cache clear` or by deleting
// the cache directory.
package httputil
