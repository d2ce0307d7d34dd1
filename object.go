//go:build !ios && !android && (amd64 || arm64)

package projgo

import (
	"math"
)

// Object is a wrapper for an engine geodetic object: a CRS, a datum, an
// ellipsoid, a coordinate operation or any other definition the engine
// shares through reference counting.
//
// Wrappers are canonical: at any time there is at most one live Object
// per engine referee, so two lookups that resolve to the same engine
// object return the same pointer. The engine reference is released by a
// background worker after the wrapper becomes unreachable; none of the
// accessors require explicit cleanup.
type Object struct {
	handle *Handle
	kind   Kind
}

// wrapShared wraps a bridge handle as a canonical Object. The handle owns
// one engine reference; on every path that does not need it (lookup hit,
// lost insertion race, failure) that reference is released before
// returning.
func wrapShared(ptr uintptr) (*Object, error) {
	h, err := newHandle(ptr)
	if err != nil {
		return nil, err
	}
	if existing := objectCache.get(h.RawIdentity()); existing != nil {
		h.Release()
		return existing, nil
	}
	kind, err := objectKind(ptr)
	if err != nil {
		h.Release()
		return nil, err
	}
	obj := &Object{handle: h, kind: kind}
	if existing := objectCache.putIfAbsent(h.RawIdentity(), obj); existing != nil {
		// Another goroutine wrapped the same referee concurrently.
		h.Release()
		return existing, nil
	}
	return obj, nil
}

// Kind returns the dynamic type of the wrapped engine object.
func (o *Object) Kind() Kind {
	return o.kind
}

// RawIdentity returns the address of the engine object behind this
// wrapper. Useful only for comparison and logging.
func (o *Object) RawIdentity() uintptr {
	return o.handle.RawIdentity()
}

// SameAs reports whether both wrappers reference the same engine object.
func (o *Object) SameAs(other *Object) bool {
	return other != nil && o.handle.RawIdentity() == other.handle.RawIdentity()
}

// Name returns the primary name of this object, or "" if it has none.
func (o *Object) Name() (string, error) {
	s, _, err := o.stringProperty(propNameString)
	return s, err
}

// Identifier returns the primary authority identifier in
// "AUTHORITY:CODE" form, or "" if the object has none.
func (o *Object) Identifier() (string, error) {
	s, _, err := o.stringProperty(propIdentifierString)
	return s, err
}

// Codespace returns the authority name of the primary identifier.
func (o *Object) Codespace() (string, error) {
	s, _, err := o.stringProperty(propCodespace)
	return s, err
}

// Code returns the code of the primary identifier.
func (o *Object) Code() (string, error) {
	s, _, err := o.stringProperty(propCode)
	return s, err
}

// Scope returns the domain of usage for which this object is valid,
// or "" if unspecified.
func (o *Object) Scope() (string, error) {
	s, _, err := o.stringProperty(propScope)
	return s, err
}

// Remarks returns comments on or information about this object,
// or "" if there are none.
func (o *Object) Remarks() (string, error) {
	s, _, err := o.stringProperty(propRemarks)
	return s, err
}

// Alias returns an alternative name of this object, or "" if it has
// none.
func (o *Object) Alias() (string, error) {
	s, _, err := o.stringProperty(propAlias)
	return s, err
}

// label returns a non-empty name for error messages: the authority
// identifier when available, the name otherwise.
func (o *Object) label() string {
	if s, _, err := o.stringProperty(propIdentifierString); err == nil && s != "" {
		return s
	}
	if s, _, err := o.stringProperty(propNameString); err == nil && s != "" {
		return s
	}
	return "unnamed"
}

// Extent is a geographic bounding box in degrees, describing the area in
// which a CRS, datum or coordinate operation is valid.
type Extent struct {
	WestLongitude float64
	EastLongitude float64
	SouthLatitude float64
	NorthLatitude float64
}

// AreaOfValidity returns the geographic area in which this object is
// valid, or nil if the engine does not know it.
func (o *Object) AreaOfValidity() (*Extent, error) {
	box, err := o.arrayProperty(propDomainOfValidity, 4)
	if err != nil || box == nil {
		return nil, err
	}
	return &Extent{
		WestLongitude: box[0],
		EastLongitude: box[1],
		SouthLatitude: box[2],
		NorthLatitude: box[3],
	}, nil
}

// IsEquivalentTo compares this object with another using the given
// criterion. The comparison is done by the engine.
func (o *Object) IsEquivalentTo(other *Object, criterion ComparisonCriterion) (bool, error) {
	if bridgeIsEquivalent == nil {
		return false, ErrNotLoaded
	}
	a, err := o.handle.use()
	if err != nil {
		return false, err
	}
	b, err := other.handle.use()
	if err != nil {
		return false, err
	}
	r := bridgeIsEquivalent(a, b, int32(criterion))
	if r < 0 {
		return false, newOpError("is_equivalent", lastError(0))
	}
	return r != 0, nil
}

// NormalizedForVisualization returns a variant of this object with axes
// reordered the way display and GIS tools expect, longitude before
// latitude. Returns the same canonical wrapper when the engine decides
// the object is already in that form.
func (o *Object) NormalizedForVisualization() (*Object, error) {
	if bridgeNormalizeForVisualization == nil {
		return nil, ErrNotLoaded
	}
	ptr, err := o.handle.use()
	if err != nil {
		return nil, err
	}
	ctx, err := acquireContext()
	if err != nil {
		return nil, err
	}
	defer ctx.release()
	out := bridgeNormalizeForVisualization(ctx.ptr, ptr)
	if out == 0 {
		return nil, newOpError("normalize_for_visualization", lastError(ctx.ptr))
	}
	return wrapShared(out)
}

// Typed view conversions. Each checks the dynamic kind and returns a thin
// view sharing this wrapper.

// AsCRS returns a coordinate reference system view of this object.
func (o *Object) AsCRS() (*CRS, error) {
	if !o.kind.isCRS() {
		return nil, &Error{Op: "as_crs", Message: o.kind.String() + " is not a CRS"}
	}
	return &CRS{o}, nil
}

// AsCoordinateSystem returns a coordinate system view of this object.
func (o *Object) AsCoordinateSystem() (*CoordinateSystem, error) {
	if !o.kind.isCS() {
		return nil, &Error{Op: "as_coordinate_system", Message: o.kind.String() + " is not a coordinate system"}
	}
	return &CoordinateSystem{o}, nil
}

// AsDatum returns a datum view of this object.
func (o *Object) AsDatum() (*Datum, error) {
	if !o.kind.isDatum() {
		return nil, &Error{Op: "as_datum", Message: o.kind.String() + " is not a datum"}
	}
	return &Datum{o}, nil
}

// AsOperation returns a coordinate operation view of this object.
func (o *Object) AsOperation() (*Operation, error) {
	if !o.kind.isOperation() {
		return nil, &Error{Op: "as_operation", Message: o.kind.String() + " is not a coordinate operation"}
	}
	return &Operation{o}, nil
}

// Property accessors. Results follow the bridge protocol: a zero result
// with no pending diagnostic means the property is absent for this
// object, a pending diagnostic means the call failed.

func (o *Object) stringProperty(prop int32) (string, bool, error) {
	if bridgeGetStringProperty == nil {
		return "", false, ErrNotLoaded
	}
	ptr, err := o.handle.use()
	if err != nil {
		return "", false, err
	}
	s := bridgeGetStringProperty(ptr, prop)
	if s == "" {
		if msg := lastError(0); msg != "" {
			return "", false, newOpError("string_property", msg)
		}
		return "", false, nil
	}
	return s, true, nil
}

func (o *Object) objectProperty(prop int32) (*Object, error) {
	if bridgeGetObjectProperty == nil {
		return nil, ErrNotLoaded
	}
	ptr, err := o.handle.use()
	if err != nil {
		return nil, err
	}
	out := bridgeGetObjectProperty(ptr, prop)
	if out == 0 {
		if msg := lastError(0); msg != "" {
			return nil, newOpError("object_property", msg)
		}
		return nil, nil
	}
	return wrapShared(out)
}

func (o *Object) numericProperty(prop int32) (float64, bool, error) {
	if bridgeGetNumericProperty == nil {
		return 0, false, ErrNotLoaded
	}
	ptr, err := o.handle.use()
	if err != nil {
		return 0, false, err
	}
	v := bridgeGetNumericProperty(ptr, prop)
	if math.IsNaN(v) {
		if msg := lastError(0); msg != "" {
			return 0, false, newOpError("numeric_property", msg)
		}
		return 0, false, nil
	}
	return v, true, nil
}

func (o *Object) integerProperty(prop int32) (int32, error) {
	if bridgeGetIntegerProperty == nil {
		return 0, ErrNotLoaded
	}
	ptr, err := o.handle.use()
	if err != nil {
		return 0, err
	}
	v := bridgeGetIntegerProperty(ptr, prop)
	if v < 0 {
		if msg := lastError(0); msg != "" {
			return 0, newOpError("integer_property", msg)
		}
	}
	return v, nil
}

func (o *Object) booleanProperty(prop int32) (bool, error) {
	if bridgeGetBooleanProperty == nil {
		return false, ErrNotLoaded
	}
	ptr, err := o.handle.use()
	if err != nil {
		return false, err
	}
	v := bridgeGetBooleanProperty(ptr, prop)
	if v < 0 {
		return false, newOpError("boolean_property", lastError(0))
	}
	return v != 0, nil
}

func (o *Object) arrayProperty(prop int32, size int) ([]float64, error) {
	if bridgeGetArrayProperty == nil {
		return nil, ErrNotLoaded
	}
	ptr, err := o.handle.use()
	if err != nil {
		return nil, err
	}
	buf := make([]float64, size)
	n := bridgeGetArrayProperty(ptr, prop, &buf[0], int32(size))
	switch {
	case n < 0:
		return nil, newOpError("array_property", lastError(0))
	case n == 0:
		return nil, nil
	}
	if int(n) > size {
		n = int32(size)
	}
	return buf[:n], nil
}

func (o *Object) vectorSize(prop int32) (int, error) {
	if bridgeVectorSize == nil {
		return 0, ErrNotLoaded
	}
	ptr, err := o.handle.use()
	if err != nil {
		return 0, err
	}
	n := bridgeVectorSize(ptr, prop)
	if n < 0 {
		return 0, newOpError("vector_size", lastError(0))
	}
	return int(n), nil
}

func (o *Object) vectorElement(prop int32, index int) (*Object, error) {
	if bridgeVectorElement == nil {
		return nil, ErrNotLoaded
	}
	ptr, err := o.handle.use()
	if err != nil {
		return nil, err
	}
	out := bridgeVectorElement(ptr, prop, int32(index))
	if out == 0 {
		if msg := lastError(0); msg != "" {
			return nil, newOpError("vector_element", msg)
		}
		return nil, nil
	}
	return wrapShared(out)
}

func (o *Object) searchVectorElement(prop int32, name string) (*Object, error) {
	if bridgeSearchVectorElement == nil {
		return nil, ErrNotLoaded
	}
	ptr, err := o.handle.use()
	if err != nil {
		return nil, err
	}
	out := bridgeSearchVectorElement(ptr, prop, name)
	if out == 0 {
		if msg := lastError(0); msg != "" {
			return nil, newOpError("search_vector_element", msg)
		}
		return nil, nil
	}
	return wrapShared(out)
}
