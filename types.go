//go:build !ios && !android && (amd64 || arm64)

package projgo

// Kind identifies the dynamic type of a geodetic object handle.
// The numbering is part of the bridge ABI and must not be reordered.
type Kind int32

const (
	KindAny                    Kind = 0
	KindIdentifier             Kind = 1
	KindUnitOfMeasure          Kind = 2
	KindAxis                   Kind = 3
	KindCoordinateSystem       Kind = 4
	KindCartesianCS            Kind = 5
	KindSphericalCS            Kind = 6
	KindVerticalCS             Kind = 7
	KindTemporalCS             Kind = 8
	KindEllipsoidalCS          Kind = 9
	KindEllipsoid              Kind = 10
	KindPrimeMeridian          Kind = 11
	KindDatum                  Kind = 12
	KindGeodeticReferenceFrame Kind = 13
	KindGeodeticCRS            Kind = 14
	KindGeographicCRS          Kind = 15
	KindGeocentricCRS          Kind = 16
	KindProjectedCRS           Kind = 17
	KindVerticalReferenceFrame Kind = 18
	KindVerticalCRS            Kind = 19
	KindTemporalDatum          Kind = 20
	KindTemporalCRS            Kind = 21
	KindEngineeringDatum       Kind = 22
	KindEngineeringCRS         Kind = 23
	KindCompoundCRS            Kind = 24
	KindCRS                    Kind = 25
	KindOperation              Kind = 26
	KindOperationMethod        Kind = 27
	KindConversion             Kind = 28
	KindTransformation         Kind = 29
	KindParameter              Kind = 30
	KindParameterValue         Kind = 31
	KindParametricCS           Kind = 32
	KindParametricCRS          Kind = 33
	KindParametricDatum        Kind = 34
)

var kindNames = [...]string{
	"any",
	"identifier",
	"unit of measure",
	"axis",
	"coordinate system",
	"Cartesian CS",
	"spherical CS",
	"vertical CS",
	"temporal CS",
	"ellipsoidal CS",
	"ellipsoid",
	"prime meridian",
	"datum",
	"geodetic reference frame",
	"geodetic CRS",
	"geographic CRS",
	"geocentric CRS",
	"projected CRS",
	"vertical reference frame",
	"vertical CRS",
	"temporal datum",
	"temporal CRS",
	"engineering datum",
	"engineering CRS",
	"compound CRS",
	"CRS",
	"coordinate operation",
	"operation method",
	"conversion",
	"transformation",
	"parameter",
	"parameter value",
	"parametric CS",
	"parametric CRS",
	"parametric datum",
}

// String returns a human-readable name for the kind.
func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// isCRS reports whether the kind is a coordinate reference system.
func (k Kind) isCRS() bool {
	switch k {
	case KindCRS, KindGeodeticCRS, KindGeographicCRS, KindGeocentricCRS,
		KindProjectedCRS, KindVerticalCRS, KindTemporalCRS,
		KindEngineeringCRS, KindCompoundCRS, KindParametricCRS:
		return true
	}
	return false
}

// isCS reports whether the kind is a coordinate system.
func (k Kind) isCS() bool {
	switch k {
	case KindCoordinateSystem, KindCartesianCS, KindSphericalCS,
		KindVerticalCS, KindTemporalCS, KindEllipsoidalCS, KindParametricCS:
		return true
	}
	return false
}

// isDatum reports whether the kind is a datum or reference frame.
func (k Kind) isDatum() bool {
	switch k {
	case KindDatum, KindGeodeticReferenceFrame, KindVerticalReferenceFrame,
		KindTemporalDatum, KindEngineeringDatum, KindParametricDatum:
		return true
	}
	return false
}

// isOperation reports whether the kind is a coordinate operation.
func (k Kind) isOperation() bool {
	switch k {
	case KindOperation, KindConversion, KindTransformation:
		return true
	}
	return false
}

// ComparisonCriterion controls how strictly IsEquivalentTo compares
// two geodetic objects. The numbering is part of the bridge ABI.
type ComparisonCriterion int32

const (
	// Strict requires the objects to be strictly equal.
	Strict ComparisonCriterion = 0

	// Equivalent tolerates differences that do not affect results,
	// for example a renamed parameter.
	Equivalent ComparisonCriterion = 1

	// EquivalentExceptAxisOrder is like Equivalent but additionally
	// ignores the axis order of geographic CRS.
	EquivalentExceptAxisOrder ComparisonCriterion = 2
)

// String returns a human-readable name for the criterion.
func (c ComparisonCriterion) String() string {
	switch c {
	case Strict:
		return "strict"
	case Equivalent:
		return "equivalent"
	case EquivalentExceptAxisOrder:
		return "equivalent except axis order"
	}
	return "unknown"
}

// Property identifiers understood by the bridge accessors. Each numeric
// range maps to one accessor family; asking an accessor for a property
// outside its family is a protocol error the bridge rejects.
const (
	// Properties returned as object handles.
	propName            int32 = 0
	propCoordSystem     int32 = 1
	propAxisUnit        int32 = 2
	propDatum           int32 = 3
	propEllipsoid       int32 = 4
	propEllipsoidUnit   int32 = 5
	propPrimeMeridian   int32 = 6
	propMeridianUnit    int32 = 7
	propBaseCRS         int32 = 8
	propConvertFromBase int32 = 9
	propOperationMethod int32 = 10
	propParameterUnit   int32 = 11

	// Properties accessed as vectors of object handles.
	propAxis               int32 = 100
	propIdentifier         int32 = 101
	propMethodParameter    int32 = 102
	propOperationParameter int32 = 103
	propCRSComponent       int32 = 104
	propSourceTargetCRS    int32 = 105 // index 0 for source, 1 for target

	// Properties returned as strings.
	propNameString         int32 = 200
	propIdentifierString   int32 = 201
	propCodespace          int32 = 202
	propCode               int32 = 203
	propVersion            int32 = 204
	propCitationTitle      int32 = 205
	propAbbreviation       int32 = 206
	propDirection          int32 = 207
	propAnchorDefinition   int32 = 208
	propTemporalOrigin     int32 = 209
	propPublicationDate    int32 = 210
	propScope              int32 = 211
	propPositionalAccuracy int32 = 212
	propRemarks            int32 = 213
	propFormula            int32 = 214
	propFormulaTitle       int32 = 215
	propOperationVersion   int32 = 216
	propParameterString    int32 = 217
	propParameterFile      int32 = 218
	propAlias              int32 = 219

	// Properties returned as float64.
	propMinimum        int32 = 300
	propMaximum        int32 = 301
	propSemiMajor      int32 = 302
	propSemiMinor      int32 = 303
	propInverseFlat    int32 = 304
	propGreenwich      int32 = 305
	propParameterValue int32 = 306

	// Properties returned as bounded float64 arrays.
	propDomainOfValidity int32 = 400

	// Properties returned as int32.
	propParameterType int32 = 500
	propParameterInt  int32 = 501

	// Properties returned as booleans.
	propHasName       int32 = 600
	propIsSphere      int32 = 601
	propIVFDefinitive int32 = 602
	propParameterBool int32 = 603
)
