// Package cmap provides a sharded, string-keyed concurrent map.
//
// Keys are spread over a power-of-two number of shards by their murmur3
// hash. Each shard has its own RWMutex, so lookups on different shards
// never contend.
//
//	m := cmap.New[*rate.Limiter]()
//	lim, _ := m.GetOrSet("10.0.0.1", rate.NewLimiter(10, 20))
//
// DeleteFunc locks one shard at a time; it does not observe a
// consistent snapshot of the whole map.
package cmap
