//go:build !ios && !android && (amd64 || arm64)

// Package projgo provides high-level bindings to the PROJ geodesy engine
// for coordinate reference systems and coordinate operations, without
// CGO using purego.
//
// Engine objects are reference counted on the native side. The package
// wraps each one in a canonical Object whose reference is released by a
// background worker after the wrapper becomes unreachable, so no Close
// calls are needed on Objects. Engine contexts, which are single-threaded
// on the native side, are pooled internally; every entry point borrows
// one for the duration of the call.
//
// A host application that wants deterministic teardown calls Shutdown on
// its exit path; everything else is usable right after Init.
package projgo

import (
	"github.com/obinnaokechukwu/projgo/internal/bindings"
)

// Init loads the PROJ and projbridge libraries. It is called
// automatically on first use of the package, but can be called explicitly
// to check for errors. Safe to call multiple times.
func Init() error {
	if err := bindings.Load(); err != nil {
		return err
	}
	registerBindings()
	return nil
}

// IsLoaded returns true if the native libraries have been successfully
// loaded.
func IsLoaded() bool {
	return bindings.IsLoaded()
}

// Version returns the PROJ release string, for example "9.4.0".
func Version() (string, error) {
	if err := Init(); err != nil {
		return "", err
	}
	return bindings.EngineVersion(), nil
}

// Shutdown releases every native resource the package holds: all cached
// object references, then the pooled engine contexts with their
// sub-resources. Objects still reachable afterwards report ErrReleased
// from their accessors, and further acquisitions fail with ErrShutdown.
// Intended for the host application's exit path.
func Shutdown() {
	objectCache.drain()
	contexts.destroyAll()
}

// CreateFromAuthority returns the object registered under the given code
// of an authority, for example ("EPSG", "4326") for the WGS 84
// geographic CRS.
func CreateFromAuthority(authority, code string) (*Object, error) {
	if err := ensureLoaded(); err != nil {
		return nil, err
	}
	ctx, err := acquireContext()
	if err != nil {
		return nil, err
	}
	defer ctx.release()
	f, err := ctx.factory(authority)
	if err != nil {
		return nil, err
	}
	return f.CreateObject(KindAny, code)
}

// CreateCRS returns the coordinate reference system registered under the
// given authority code.
func CreateCRS(authority, code string) (*CRS, error) {
	if err := ensureLoaded(); err != nil {
		return nil, err
	}
	ctx, err := acquireContext()
	if err != nil {
		return nil, err
	}
	defer ctx.release()
	f, err := ctx.factory(authority)
	if err != nil {
		return nil, err
	}
	return f.CreateCRS(code)
}

// CreateFromUserInput returns the object described by a text in any form
// the engine understands: WKT in any version, a PROJ string, PROJJSON,
// an "AUTHORITY:CODE" reference, or a plain CRS name such as "WGS 84".
func CreateFromUserInput(text string) (*Object, error) {
	if err := ensureLoaded(); err != nil {
		return nil, err
	}
	if bridgeParse == nil {
		return nil, ErrNotLoaded
	}
	ctx, err := acquireContext()
	if err != nil {
		return nil, err
	}
	defer ctx.release()
	db, err := ctx.databaseHandle()
	if err != nil {
		return nil, err
	}
	ptr := bridgeParse(ctx.ptr, db, text)
	if ptr == 0 {
		return nil, newOpError("parse", lastError(ctx.ptr))
	}
	return wrapShared(ptr)
}

// AreEquivalent reports whether the engine considers two objects
// equivalent under the given criterion. False when either object has
// already been released.
func AreEquivalent(a, b *Object, criterion ComparisonCriterion) bool {
	if a == nil || b == nil {
		return false
	}
	if a == b {
		return true
	}
	eq, err := a.IsEquivalentTo(b, criterion)
	return err == nil && eq
}
