//go:build !ios && !android && (amd64 || arm64)

package projgo

import (
	"sync"
	"time"
)

// defaultContextTimeout is how long an idle context may sit in the pool
// before it becomes a candidate for destruction. There is no guarantee a
// context is destroyed soon after the timeout, only that it is not
// destroyed before.
const defaultContextTimeout = time.Minute

// poolEpoch anchors the monotonic clock used for idle stamps.
var poolEpoch = time.Now()

func monoNanos() int64 {
	return int64(time.Since(poolEpoch))
}

// engineContext wraps a PJ_CONTEXT, the engine's threading context.
// A PJ_CONTEXT can be used by only one goroutine at a time, not
// necessarily the one that created it. Contexts go back to the pool after
// use so any goroutine can take them again.
//
// The context also owns every engine resource that depends on that
// particular PJ_CONTEXT: the database connection and the authority
// factories. Those must only be used by the goroutine holding the context
// checked out, and never after release().
type engineContext struct {
	ptr      uintptr
	id       uint64
	logToken uintptr

	// lastUse is an idle stamp in monoNanos units, written and read under
	// the pool lock.
	lastUse int64

	// database is the engine's metadata database connection, created when
	// first needed. It is destroyed together with the PJ_CONTEXT.
	database uintptr

	// factories are authority factories created when first needed, keyed
	// by authority name. Owned by whichever goroutine has this context
	// checked out.
	factories map[string]*AuthorityFactory

	// transforms are PJ instances ready to transform coordinates, keyed
	// by the raw identity of the coordinate operation they implement. A
	// PJ can be used by only one thread at a time, so each pooled context
	// keeps its own.
	transforms map[uintptr]uintptr
}

// contextPool keeps previously created contexts for reuse. acquire takes
// the most recently returned context (warm reuse); eviction scans from
// the cold end.
type contextPool struct {
	mu      sync.Mutex
	idle    []*engineContext
	closed  bool
	timeout time.Duration
	nextID  uint64

	// evictMu ensures a single goroutine scans for expired contexts;
	// losers skip eviction rather than blocking.
	evictMu sync.Mutex
}

// contexts is the process-wide pool.
var contexts = newContextPool()

func newContextPool() *contextPool {
	return &contextPool{timeout: defaultContextTimeout}
}

// SetContextTimeout adjusts how long idle engine contexts are kept before
// they become eligible for destruction.
func SetContextTimeout(d time.Duration) {
	if d < 0 {
		d = 0
	}
	contexts.mu.Lock()
	contexts.timeout = d
	contexts.mu.Unlock()
}

// acquireContext gets an engine context, creating one if the pool is
// empty. The caller must release it when done:
//
//	ctx, err := acquireContext()
//	if err != nil {
//		return err
//	}
//	defer ctx.release()
//
// Everything obtained from the context stays valid only until release.
func acquireContext() (*engineContext, error) {
	return contexts.acquire()
}

func (p *contextPool) acquire() (*engineContext, error) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil, ErrShutdown
	}
	if n := len(p.idle); n > 0 {
		c := p.idle[n-1]
		p.idle[n-1] = nil
		p.idle = p.idle[:n-1]
		p.mu.Unlock()
		return c, nil
	}
	p.nextID++
	id := p.nextID
	p.mu.Unlock()
	return newEngineContext(id)
}

func newEngineContext(id uint64) (*engineContext, error) {
	if bridgeContextCreate == nil {
		return nil, ErrNotLoaded
	}
	ptr := bridgeContextCreate()
	if ptr == 0 {
		return nil, newOpError("context_create", lastError(0))
	}
	c := &engineContext{
		ptr:        ptr,
		id:         id,
		factories:  make(map[string]*AuthorityFactory),
		transforms: make(map[uintptr]uintptr),
	}
	c.logToken = attachContextLogging(ptr, id)
	return c, nil
}

// release returns the context to the pool so it can be reused by this
// goroutine or another one. Expired idle contexts are opportunistically
// destroyed on the way.
func (c *engineContext) release() {
	contexts.put(c)
}

func (p *contextPool) put(c *engineContext) {
	p.evictExpired()
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		c.destroy()
		return
	}
	c.lastUse = monoNanos()
	p.idle = append(p.idle, c)
	p.mu.Unlock()
}

// evictExpired destroys idle contexts whose timeout has elapsed, scanning
// from the cold end and stopping at the first fresh one. Best-effort: if
// another goroutine is already scanning, this one skips.
func (p *contextPool) evictExpired() {
	if !p.evictMu.TryLock() {
		return
	}
	defer p.evictMu.Unlock()

	var victims []*engineContext
	p.mu.Lock()
	now := monoNanos()
	timeout := int64(p.timeout)
	for len(p.idle) > 0 {
		c := p.idle[0]
		if now-c.lastUse <= timeout {
			break
		}
		copy(p.idle, p.idle[1:])
		p.idle[len(p.idle)-1] = nil
		p.idle = p.idle[:len(p.idle)-1]
		victims = append(victims, c)
	}
	p.mu.Unlock()

	// Engine calls happen outside the pool lock.
	for _, c := range victims {
		c.destroy()
	}
}

// destroyAll destroys every pooled context and refuses further acquires.
func (p *contextPool) destroyAll() {
	p.mu.Lock()
	victims := p.idle
	p.idle = nil
	p.closed = true
	p.mu.Unlock()
	for _, c := range victims {
		c.destroy()
	}
}

// factory returns the authority factory for the given authority, creating
// it when first needed. The factory stays valid only while this context
// is checked out.
func (c *engineContext) factory(authority string) (*AuthorityFactory, error) {
	if f, ok := c.factories[authority]; ok {
		return f, nil
	}
	f, err := newAuthorityFactory(c, authority)
	if err != nil {
		return nil, err
	}
	c.factories[authority] = f
	return f, nil
}

// transform returns the PJ instance executing the given coordinate
// operation on this context, creating it when first needed. The operation
// is identified by its raw identity; opHandle is its bridge handle. The
// PJ stays valid only while this context is checked out.
func (c *engineContext) transform(opIdentity, opHandle uintptr) (uintptr, error) {
	if pj, ok := c.transforms[opIdentity]; ok {
		return pj, nil
	}
	if bridgePJCreate == nil {
		return 0, ErrNotLoaded
	}
	pj := bridgePJCreate(c.ptr, opHandle)
	if pj == 0 {
		return 0, newOpError("pj_create", lastError(c.ptr))
	}
	bridgePJAssignContext(pj, c.ptr)
	c.transforms[opIdentity] = pj
	return pj, nil
}

// databaseHandle returns the engine's database connection for this
// context, created when first needed.
func (c *engineContext) databaseHandle() (uintptr, error) {
	if c.database != 0 {
		return c.database, nil
	}
	if bridgeDatabaseCreate == nil {
		return 0, ErrNotLoaded
	}
	db := bridgeDatabaseCreate(c.ptr)
	if db == 0 {
		return 0, newOpError("database_create", lastError(c.ptr))
	}
	c.database = db
	return db, nil
}

// destroy disposes every engine resource owned by this context. The
// sub-resources hold the context's native state, so the PJ_CONTEXT itself
// is destroyed last: transforms first, then the factories, then the
// database connection.
func (c *engineContext) destroy() {
	for _, pj := range c.transforms {
		if bridgePJAssignContext != nil {
			bridgePJAssignContext(pj, 0)
		}
		if bridgePJDestroy != nil {
			bridgePJDestroy(pj)
		}
	}
	for _, f := range c.factories {
		f.releaseHandle()
	}
	releaseRaw(c.database)
	detachContextLogging(c.logToken)
	if bridgeContextDestroy != nil {
		bridgeContextDestroy(c.ptr)
	}
}
