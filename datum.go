//go:build !ios && !android && (amd64 || arm64)

package projgo

// Datum is a datum or reference frame view of a canonical wrapper: the
// relationship of a coordinate system to the Earth (or to another body,
// or to a moving platform for an engineering datum).
type Datum struct {
	*Object
}

// Ellipsoid returns the reference ellipsoid of a geodetic reference
// frame, or nil for datum kinds that have none.
func (d *Datum) Ellipsoid() (*Ellipsoid, error) {
	obj, err := d.objectProperty(propEllipsoid)
	if err != nil || obj == nil {
		return nil, err
	}
	return &Ellipsoid{obj}, nil
}

// PrimeMeridian returns the prime meridian of a geodetic reference
// frame, or nil for datum kinds that have none.
func (d *Datum) PrimeMeridian() (*PrimeMeridian, error) {
	obj, err := d.objectProperty(propPrimeMeridian)
	if err != nil || obj == nil {
		return nil, err
	}
	return &PrimeMeridian{obj}, nil
}

// AnchorDefinition returns the description of the point or points used
// to anchor the datum to the Earth, or "" if unspecified.
func (d *Datum) AnchorDefinition() (string, error) {
	s, _, err := d.stringProperty(propAnchorDefinition)
	return s, err
}

// Ellipsoid is a geometric figure that can be used to describe the
// approximate shape of the Earth.
type Ellipsoid struct {
	*Object
}

// SemiMajorAxis returns the equatorial radius, in the ellipsoid's axis
// unit.
func (e *Ellipsoid) SemiMajorAxis() (float64, error) {
	v, _, err := e.numericProperty(propSemiMajor)
	return v, err
}

// SemiMinorAxis returns the polar radius, in the ellipsoid's axis unit.
// The engine computes it from the inverse flattening when the ellipsoid
// is defined that way.
func (e *Ellipsoid) SemiMinorAxis() (float64, error) {
	v, _, err := e.numericProperty(propSemiMinor)
	return v, err
}

// InverseFlattening returns the inverse of the flattening constant, or
// 0 for a sphere.
func (e *Ellipsoid) InverseFlattening() (float64, error) {
	v, _, err := e.numericProperty(propInverseFlat)
	return v, err
}

// IsIVFDefinitive reports whether the inverse flattening is definitive
// for this ellipsoid, as opposed to being derived from the semi-minor
// axis length.
func (e *Ellipsoid) IsIVFDefinitive() (bool, error) {
	return e.booleanProperty(propIVFDefinitive)
}

// IsSphere reports whether the ellipsoid is degenerate into a sphere.
func (e *Ellipsoid) IsSphere() (bool, error) {
	return e.booleanProperty(propIsSphere)
}

// PrimeMeridian is the origin meridian from which longitude values are
// determined.
type PrimeMeridian struct {
	*Object
}

// GreenwichLongitude returns the longitude of this meridian relative to
// Greenwich, in the meridian's angular unit.
func (p *PrimeMeridian) GreenwichLongitude() (float64, error) {
	v, _, err := p.numericProperty(propGreenwich)
	return v, err
}

// Unit returns the angular unit of the Greenwich longitude.
func (p *PrimeMeridian) Unit() (*Object, error) {
	return p.objectProperty(propMeridianUnit)
}
