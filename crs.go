//go:build !ios && !android && (amd64 || arm64)

package projgo

// CRS is a coordinate reference system view of a canonical wrapper. One
// view type covers every CRS kind; Kind() tells geographic from projected
// from compound, and accessors that do not apply to the actual kind
// report the property as absent rather than failing.
type CRS struct {
	*Object
}

// CoordinateSystem returns the coordinate system of this CRS, or nil for
// a compound CRS, which has none of its own.
func (c *CRS) CoordinateSystem() (*CoordinateSystem, error) {
	obj, err := c.objectProperty(propCoordSystem)
	if err != nil || obj == nil {
		return nil, err
	}
	return obj.AsCoordinateSystem()
}

// Datum returns the datum of this CRS, or nil when the CRS has no datum
// of its own (compound CRS, or a CRS defined against a datum ensemble).
func (c *CRS) Datum() (*Datum, error) {
	obj, err := c.objectProperty(propDatum)
	if err != nil || obj == nil {
		return nil, err
	}
	return obj.AsDatum()
}

// ComponentCount returns the number of single CRS composing this CRS:
// the component count for a compound CRS, 1 otherwise.
func (c *CRS) ComponentCount() (int, error) {
	if c.kind != KindCompoundCRS {
		return 1, nil
	}
	return c.vectorSize(propCRSComponent)
}

// Component returns the i-th single CRS composing this CRS. For a
// non-compound CRS index 0 returns the CRS itself.
func (c *CRS) Component(i int) (*CRS, error) {
	if c.kind != KindCompoundCRS {
		if i != 0 {
			return nil, &Error{Op: "crs_component", Message: "index out of range for a single CRS"}
		}
		return c, nil
	}
	obj, err := c.vectorElement(propCRSComponent, i)
	if err != nil || obj == nil {
		return nil, err
	}
	return obj.AsCRS()
}

// BaseCRS returns the CRS a projected or derived CRS is defined on top
// of, or nil when this CRS is not derived.
func (c *CRS) BaseCRS() (*CRS, error) {
	obj, err := c.objectProperty(propBaseCRS)
	if err != nil || obj == nil {
		return nil, err
	}
	return obj.AsCRS()
}

// ConversionFromBase returns the conversion from the base CRS to this
// CRS, for example the map projection of a projected CRS. Nil when this
// CRS is not derived.
func (c *CRS) ConversionFromBase() (*Operation, error) {
	obj, err := c.objectProperty(propConvertFromBase)
	if err != nil || obj == nil {
		return nil, err
	}
	return obj.AsOperation()
}

// CoordinateSystem is the set of axes that spans the coordinate space of
// a CRS.
type CoordinateSystem struct {
	*Object
}

// AxisCount returns the number of axes, which is the dimension of the
// coordinate space.
func (cs *CoordinateSystem) AxisCount() (int, error) {
	return cs.vectorSize(propAxis)
}

// Axis returns the i-th axis.
func (cs *CoordinateSystem) Axis(i int) (*Axis, error) {
	obj, err := cs.vectorElement(propAxis, i)
	if err != nil {
		return nil, err
	}
	if obj == nil {
		return nil, &Error{Op: "cs_axis", Message: "axis index out of range"}
	}
	return &Axis{obj}, nil
}

// Axis is one axis of a coordinate system.
type Axis struct {
	*Object
}

// Abbreviation returns the axis abbreviation, for example "Lat" or "X".
func (a *Axis) Abbreviation() (string, error) {
	s, _, err := a.stringProperty(propAbbreviation)
	return s, err
}

// Direction returns the direction at which coordinate values increase,
// for example "north" or "east".
func (a *Axis) Direction() (string, error) {
	s, _, err := a.stringProperty(propDirection)
	return s, err
}

// Unit returns the unit of measure of coordinate values on this axis.
func (a *Axis) Unit() (*Object, error) {
	return a.objectProperty(propAxisUnit)
}

// MinimumValue returns the lowest coordinate value this axis allows, and
// whether the axis declares one.
func (a *Axis) MinimumValue() (float64, bool, error) {
	return a.numericProperty(propMinimum)
}

// MaximumValue returns the highest coordinate value this axis allows, and
// whether the axis declares one.
func (a *Axis) MaximumValue() (float64, bool, error) {
	return a.numericProperty(propMaximum)
}
