package cmap

// DeleteFunc removes every entry for which fn returns true and reports
// how many were removed.
func (m *Map[V]) DeleteFunc(fn func(key string, value V) bool) int {
	removed := 0
	for _, s := range m.shards {
		s.mu.Lock()
		for k, v := range s.items {
			if fn(k, v) {
				delete(s.items, k)
				removed++
			}
		}
		s.mu.Unlock()
	}
	return removed
}
