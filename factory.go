//go:build !ios && !android && (amd64 || arm64)

package projgo

// AuthorityFactory creates geodetic objects from the codes of an
// authority such as "EPSG". It is a sub-resource of the engine context it
// was created on: it holds a reference to that context's database
// connection and must only be used by the goroutine that has the context
// checked out, never after the context is released back to the pool.
//
// Application code normally goes through CreateFromAuthority or
// AuthorityFactory-free conveniences instead of holding one of these.
type AuthorityFactory struct {
	ctx       *engineContext
	handle    uintptr
	authority string
}

// newAuthorityFactory creates the factory sub-resource for an authority.
// On failure any partially constructed engine handle is released before
// returning, so an error never leaks a reference.
func newAuthorityFactory(c *engineContext, authority string) (*AuthorityFactory, error) {
	if bridgeFactoryCreate == nil {
		return nil, ErrNotLoaded
	}
	db, err := c.databaseHandle()
	if err != nil {
		return nil, err
	}
	ptr := bridgeFactoryCreate(c.ptr, db, authority)
	if ptr == 0 {
		return nil, newOpError("factory_create", lastError(c.ptr))
	}
	if msg := lastError(c.ptr); msg != "" {
		// The factory exists but the engine flagged its setup; do not hand
		// out a half-initialized sub-resource.
		releaseRaw(ptr)
		return nil, &Error{Op: "factory_create", Message: msg}
	}
	return &AuthorityFactory{ctx: c, handle: ptr, authority: authority}, nil
}

// Authority returns the authority name this factory serves.
func (f *AuthorityFactory) Authority() string {
	return f.authority
}

// releaseHandle drops the factory's engine reference. Called by the
// owning context when it is destroyed; the factory is unusable afterwards.
func (f *AuthorityFactory) releaseHandle() {
	if f.handle != 0 {
		releaseRaw(f.handle)
		f.handle = 0
	}
}

// CreateObject returns the object of the given kind registered under the
// given authority code. KindAny accepts whatever kind the code denotes;
// any other kind makes the engine reject codes of a different type.
func (f *AuthorityFactory) CreateObject(kind Kind, code string) (*Object, error) {
	if bridgeCreateByCode == nil {
		return nil, ErrNotLoaded
	}
	if f.handle == 0 {
		return nil, ErrReleased
	}
	ptr := bridgeCreateByCode(f.handle, int32(kind), code)
	if ptr == 0 {
		return nil, newOpError("create_by_code", lastError(f.ctx.ptr))
	}
	return wrapShared(ptr)
}

// CreateCRS returns the coordinate reference system for an authority code.
func (f *AuthorityFactory) CreateCRS(code string) (*CRS, error) {
	obj, err := f.CreateObject(KindCRS, code)
	if err != nil {
		return nil, err
	}
	return obj.AsCRS()
}

// CreateCoordinateSystem returns the coordinate system for a code.
func (f *AuthorityFactory) CreateCoordinateSystem(code string) (*CoordinateSystem, error) {
	obj, err := f.CreateObject(KindCoordinateSystem, code)
	if err != nil {
		return nil, err
	}
	return obj.AsCoordinateSystem()
}

// CreateDatum returns the datum for a code.
func (f *AuthorityFactory) CreateDatum(code string) (*Datum, error) {
	obj, err := f.CreateObject(KindDatum, code)
	if err != nil {
		return nil, err
	}
	return obj.AsDatum()
}

// CreateEllipsoid returns the ellipsoid for a code.
func (f *AuthorityFactory) CreateEllipsoid(code string) (*Ellipsoid, error) {
	obj, err := f.CreateObject(KindEllipsoid, code)
	if err != nil {
		return nil, err
	}
	return &Ellipsoid{obj}, nil
}

// CreatePrimeMeridian returns the prime meridian for a code.
func (f *AuthorityFactory) CreatePrimeMeridian(code string) (*PrimeMeridian, error) {
	obj, err := f.CreateObject(KindPrimeMeridian, code)
	if err != nil {
		return nil, err
	}
	return &PrimeMeridian{obj}, nil
}

// Description returns a descriptive label for an authority code without
// instantiating the object, or "" if the code is unknown to the engine
// without being an error.
func (f *AuthorityFactory) Description(code string) (string, error) {
	if bridgeFactoryDescription == nil {
		return "", ErrNotLoaded
	}
	if f.handle == 0 {
		return "", ErrReleased
	}
	s := bridgeFactoryDescription(f.handle, code)
	if s == "" {
		if msg := lastError(f.ctx.ptr); msg != "" {
			return "", &Error{Op: "factory_description", Message: msg}
		}
	}
	return s, nil
}
