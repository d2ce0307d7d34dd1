//go:build !ios && !android && (amd64 || arm64)

package projgo

import (
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// reclaimTicket carries the pieces of a wrapper that outlive it: the
// handle owning the engine reference and the cache entry to unlink. The
// ticket must never reference the wrapper itself, or the wrapper could
// not become unreachable.
type reclaimTicket struct {
	cache  *sharedCache
	entry  *cacheEntry
	handle *Handle
}

// reclaimQueueDepth bounds how many collected wrappers can be pending
// release. Beyond that the runtime's cleanup goroutine blocks, which
// throttles collection-driven churn instead of growing without bound.
const reclaimQueueDepth = 256

var (
	reclaimOnce  sync.Once
	reclaimQueue chan *reclaimTicket
)

// enqueueReclaim hands a collected wrapper's ticket to the worker.
// Registered as the runtime cleanup for every cached wrapper.
func enqueueReclaim(t *reclaimTicket) {
	reclaimOnce.Do(startReclaimWorker)
	reclaimQueue <- t
}

func startReclaimWorker() {
	reclaimQueue = make(chan *reclaimTicket, reclaimQueueDepth)
	go reclaimLoop()
}

// reclaimLoop consumes tickets for the lifetime of the process. This is
// the central place where every engine reference owned by a collected
// wrapper is released. The worker blocks on the queue and runs only
// briefly per ticket, so one goroutine is enough for any load.
func reclaimLoop() {
	for t := range reclaimQueue {
		reclaimOne(t)
	}
}

// reclaimOne releases the engine reference first, then unlinks the cache
// entry. A failure in either step must not stop the worker; it is logged
// and the next ticket is processed.
func reclaimOne(t *reclaimTicket) {
	defer func() {
		if r := recover(); r != nil {
			err, ok := r.(error)
			if !ok {
				err = fmt.Errorf("%v", r)
			}
			getLogger().Warn("native object reclamation failed",
				zap.Error(&ReclamationError{Identity: t.entry.key, Err: err}))
		}
	}()
	t.handle.Release()
	t.cache.remove(t.entry)
}
