//go:build !ios && !android && (amd64 || arm64)

package projgo

import (
	"sync/atomic"
)

// Handle owns exactly one engine reference to a geodetic object.
//
// A Handle never points back at the wrapper that owns it: after the wrapper
// becomes unreachable, the reclamation ticket still holds the Handle and
// releases the reference through it. All release paths funnel through
// Release, which fires at most once no matter how many of them race.
type Handle struct {
	ptr      uintptr // bridge object handle
	identity uintptr // referee address, stable for the object's lifetime
	released atomic.Bool
}

// newHandle wraps a bridge object handle. The zero handle is rejected;
// callers translate it through the error protocol first, this is the
// backstop.
func newHandle(ptr uintptr) (*Handle, error) {
	if ptr == 0 {
		return nil, &AllocError{Op: "handle"}
	}
	return &Handle{ptr: ptr, identity: rawIdentity(ptr)}, nil
}

// use returns the bridge handle for an engine call, or ErrReleased when
// the reference is gone.
func (h *Handle) use() (uintptr, error) {
	if h.released.Load() {
		return 0, ErrReleased
	}
	return h.ptr, nil
}

// RawIdentity returns the address of the engine object this handle
// references. Two handles reference the same engine object exactly when
// their raw identities are equal. The value has no meaning beyond
// comparison and logging.
func (h *Handle) RawIdentity() uintptr {
	return h.identity
}

// Released reports whether the engine reference has been dropped.
func (h *Handle) Released() bool {
	return h.released.Load()
}

// Release drops the engine reference. Safe to call more than once; only
// the first call reaches the engine.
func (h *Handle) Release() {
	if h.released.CompareAndSwap(false, true) {
		releaseRaw(h.ptr)
	}
}
