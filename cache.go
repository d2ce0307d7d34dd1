//go:build !ios && !android && (amd64 || arm64)

package projgo

import (
	"runtime"
	"sort"
	"sync"
	"sync/atomic"
	"time"
	"weak"
)

// defaultRehashDelay is how long the cache waits before shrinking its
// table. When the collector reclaims many wrappers at once, shrinking
// immediately causes reduce/expand/reduce cycles if new entries follow.
const defaultRehashDelay = 4 * time.Second

// cacheCapacities are the table sizes, prime numbers close to powers of 2.
var cacheCapacities = []int{61, 127, 257, 509, 1021, 2053, 4093, 8191, 16381, 32771, 65537}

// cacheEntry associates a raw identity with a weak reference to its
// canonical wrapper. key, ref, ticket and cleanup are immutable after
// construction; next is only written while holding the cache lock.
type cacheEntry struct {
	key     uintptr
	ref     weak.Pointer[Object]
	ticket  *reclaimTicket
	cleanup runtime.Cleanup
	next    atomic.Pointer[cacheEntry]
}

// bucketTable is an immutable-length array of chain heads. The table is
// replaced wholesale on rehash; heads are written only under the cache
// lock but read optimistically.
type bucketTable struct {
	buckets []atomic.Pointer[cacheEntry]
}

func newBucketTable(capacity int) *bucketTable {
	return &bucketTable{buckets: make([]atomic.Pointer[cacheEntry], capacity)}
}

// sharedCache maps raw identities to the wrappers that own a reference to
// them, so that two lookups of the same engine object yield the same
// wrapper. Wrappers are retained weakly: the cache never keeps a wrapper
// alive, and a component accessor may produce a fresh wrapper after the
// collector has dropped the previous one.
//
// Reads follow a seqlock protocol: the fast path reads the bucket head
// without locking and validates against the sequence counter, falling
// back to a shared lock on any conflict. Writers serialize on mu and
// bracket their mutations with two counter increments, so a torn read
// can never validate.
type sharedCache struct {
	mu  sync.RWMutex
	seq atomic.Uint64
	tab atomic.Pointer[bucketTable]

	// Guarded by mu.
	count       int
	lastNormal  time.Time
	rehashDelay time.Duration
}

// objectCache is the process-wide instance used by wrapShared.
var objectCache = newSharedCache()

func newSharedCache() *sharedCache {
	c := &sharedCache{
		lastNormal:  time.Now(),
		rehashDelay: defaultRehashDelay,
	}
	c.tab.Store(newBucketTable(cacheCapacities[0]))
	return c
}

// SetRehashDelay adjusts how long the wrapper cache keeps a sparsely
// filled table before shrinking it. Lower values reclaim memory sooner at
// the cost of more table churn.
func SetRehashDelay(d time.Duration) {
	if d < 0 {
		d = 0
	}
	objectCache.mu.Lock()
	objectCache.rehashDelay = d
	objectCache.mu.Unlock()
}

// lowerCapacityThreshold returns the element count below which the table
// should be rehashed to save space.
func lowerCapacityThreshold(capacity int) int {
	return capacity >> 2
}

// upperCapacityThreshold returns the element count above which the table
// should be rehashed for better performance.
func upperCapacityThreshold(capacity int) int {
	return capacity - capacity>>2
}

// cacheIndex returns the bucket index of a raw identity in a table of the
// given capacity.
func cacheIndex(key uintptr, capacity int) int {
	return int(key % uintptr(capacity))
}

// tableCapacity returns the capacity to use for the given element count:
// twice the count, snapped to the nearest prime of the ladder when one is
// close enough.
func tableCapacity(count int) int {
	capacity := count * 2
	i := sort.SearchInts(cacheCapacities, capacity)
	if i < len(cacheCapacities) {
		if i != 0 && capacity-cacheCapacities[i-1] < cacheCapacities[i]-capacity {
			i--
		}
		capacity = cacheCapacities[i]
	}
	return capacity
}

// get returns the wrapper for the given raw identity, or nil if none is
// cached or the collector already dropped it.
func (c *sharedCache) get(key uintptr) *Object {
	// Try without acquiring the lock. Only the entry found directly in the
	// table slot is considered; the chain behind it may be mid-rewrite.
	if s := c.seq.Load(); s&1 == 0 {
		tab := c.tab.Load()
		e := tab.buckets[cacheIndex(key, len(tab.buckets))].Load()
		if c.seq.Load() == s {
			if e == nil {
				return nil
			}
			if e.key == key {
				return e.ref.Value()
			}
		}
	}

	// Optimistic read did not settle it; take the shared lock.
	c.mu.RLock()
	defer c.mu.RUnlock()
	tab := c.tab.Load()
	for e := tab.buckets[cacheIndex(key, len(tab.buckets))].Load(); e != nil; e = e.next.Load() {
		if e.key == key {
			return e.ref.Value()
		}
	}
	return nil
}

// putIfAbsent associates value with the given raw identity unless a live
// wrapper is already present, in which case that wrapper is returned and
// the map is left unchanged. On insertion the value's reclamation ticket
// is registered with the runtime and nil is returned.
func (c *sharedCache) putIfAbsent(key uintptr, value *Object) *Object {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq.Add(1)
	defer c.seq.Add(1)

	tab := c.tab.Load()
	index := cacheIndex(key, len(tab.buckets))
	for e := tab.buckets[index].Load(); e != nil; e = e.next.Load() {
		if e.key == key {
			if old := e.ref.Value(); old != nil {
				return old
			}
			// Stale entry: its wrapper is collected but the worker has not
			// removed it yet. Unlink it here; the table may shrink, so the
			// index is recomputed.
			c.removeLocked(e)
			tab = c.tab.Load()
			index = cacheIndex(key, len(tab.buckets))
		}
	}

	c.count++
	if c.count >= lowerCapacityThreshold(len(tab.buckets)) {
		if c.count > upperCapacityThreshold(len(tab.buckets)) {
			c.rehashLocked()
			tab = c.tab.Load()
			index = cacheIndex(key, len(tab.buckets))
		}
		c.lastNormal = time.Now()
	}

	e := &cacheEntry{key: key, ref: weak.Make(value)}
	e.ticket = &reclaimTicket{cache: c, entry: e, handle: value.handle}
	e.cleanup = runtime.AddCleanup(value, enqueueReclaim, e.ticket)
	e.next.Store(tab.buckets[index].Load())
	tab.buckets[index].Store(e)
	c.checkConsistency()
	return nil
}

// remove unlinks a collected entry. Invoked by the reclamation worker
// after the entry's engine reference has been released; does nothing if
// the entry is no longer in the table.
func (c *sharedCache) remove(toRemove *cacheEntry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq.Add(1)
	defer c.seq.Add(1)
	c.removeLocked(toRemove)
}

func (c *sharedCache) removeLocked(toRemove *cacheEntry) {
	tab := c.tab.Load()
	if !unlinkEntry(tab, cacheIndex(toRemove.key, len(tab.buckets)), toRemove) {
		return
	}
	c.count--
	if c.count < lowerCapacityThreshold(len(tab.buckets)) {
		now := time.Now()
		if now.Sub(c.lastNormal) > c.rehashDelay {
			c.rehashLocked()
			c.lastNormal = now
		}
	}
	c.checkConsistency()
}

// unlinkEntry removes an entry from the chain at the given index.
// Returns false if the entry is not on that chain.
func unlinkEntry(tab *bucketTable, index int, toRemove *cacheEntry) bool {
	var prev *cacheEntry
	for e := tab.buckets[index].Load(); e != nil; e = e.next.Load() {
		if e == toRemove {
			if prev != nil {
				prev.next.Store(e.next.Load())
			} else {
				tab.buckets[index].Store(e.next.Load())
			}
			return true
		}
		prev = e
	}
	return false
}

// rehashLocked resizes the table for the current element count, relinking
// every entry. No-op when the chosen capacity equals the current one.
func (c *sharedCache) rehashLocked() {
	old := c.tab.Load()
	capacity := tableCapacity(c.count)
	if capacity == len(old.buckets) {
		return
	}
	tab := newBucketTable(capacity)
	for i := range old.buckets {
		next := old.buckets[i].Load()
		for next != nil {
			e := next
			next = e.next.Load() // Fetch now because its value will change.
			index := cacheIndex(e.key, capacity)
			e.next.Store(tab.buckets[index].Load())
			tab.buckets[index].Store(e)
		}
	}
	c.tab.Store(tab)
}

// drain releases every cached engine reference. Wrappers still reachable
// afterwards report ErrReleased from their accessors. Repeats until a
// pass finds the table empty, in case concurrent writers slipped entries
// into the replacement table.
func (c *sharedCache) drain() {
	for {
		c.mu.Lock()
		c.seq.Add(1)
		old := c.tab.Load()
		c.tab.Store(newBucketTable(3))
		c.count = 0
		c.seq.Add(1)
		c.mu.Unlock()

		found := false
		for i := range old.buckets {
			for e := old.buckets[i].Load(); e != nil; e = e.next.Load() {
				e.cleanup.Stop()
				e.ticket.handle.Release()
				found = true
			}
		}
		if !found {
			return
		}
	}
}

// stats returns the current element count and table capacity.
func (c *sharedCache) stats() (count, capacity int) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.count, len(c.tab.Load().buckets)
}
