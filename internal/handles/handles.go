// Package handles provides a thread-safe handle system for storing Go objects
// that need to be referenced from C callbacks.
//
// PROJ diagnostics arrive through a per-context log callback that carries an
// opaque user-data pointer. Go pointers must not be stored in C memory, so the
// object is registered here and the returned uintptr ID travels through the
// engine instead. The trampoline on the way back resolves the ID to the object.
package handles

import (
	"sync"
)

var (
	mu      sync.RWMutex
	handles         = make(map[uintptr]any)
	nextID  uintptr = 1
)

// Register stores a Go object and returns a handle ID.
// The handle can be safely stored in C memory (as uintptr or void*).
// The object will remain accessible until Unregister is called.
// The returned ID is never 0, so 0 can serve as the nil opaque.
//
// Thread-safe.
func Register(v any) uintptr {
	mu.Lock()
	defer mu.Unlock()
	id := nextID
	nextID++
	handles[id] = v
	return id
}

// Lookup retrieves a Go object by its handle ID.
// Returns nil if the handle is not registered.
//
// Thread-safe.
func Lookup(id uintptr) any {
	mu.RLock()
	defer mu.RUnlock()
	return handles[id]
}

// Unregister removes a handle and allows the Go object to be garbage collected.
// Should be called when the C code no longer holds the reference, which for a
// log callback opaque means after the owning context has been destroyed.
//
// Thread-safe.
func Unregister(id uintptr) {
	mu.Lock()
	defer mu.Unlock()
	delete(handles, id)
}

// Count returns the number of currently registered handles.
// Useful for debugging and testing callback leaks.
//
// Thread-safe.
func Count() int {
	mu.RLock()
	defer mu.RUnlock()
	return len(handles)
}
