//go:build projdebug && !ios && !android && (amd64 || arm64)

package projgo

import "fmt"

// checkConsistency recounts the chained entries and verifies the cached
// count. Must be called with the write lock held. Builds without the
// projdebug tag compile this check away.
func (c *sharedCache) checkConsistency() {
	tab := c.tab.Load()
	if c.count >= len(tab.buckets) {
		panic(&ConsistencyError{Detail: fmt.Sprintf("count %d not below capacity %d", c.count, len(tab.buckets))})
	}
	n := 0
	for i := range tab.buckets {
		for e := tab.buckets[i].Load(); e != nil; e = e.next.Load() {
			n++
		}
	}
	if n != c.count {
		panic(&ConsistencyError{Detail: fmt.Sprintf("%d chained entries, count says %d", n, c.count)})
	}
}
