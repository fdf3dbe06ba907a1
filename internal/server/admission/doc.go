// Package admission bounds how much work the connection supervisor takes on.
//
// Three independent limits are provided, each disabled by a zero size:
//
//   - LimitListener caps concurrently open connections (x/net/netutil).
//   - RateLimiter throttles accepted connections per remote host (x/time/rate).
//   - Pool bounds concurrently running handlers (x/sync/semaphore).
package admission
