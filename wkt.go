//go:build !ios && !android && (amd64 || arm64)

package projgo

// Convention selects the output format of Object.Format: a Well Known
// Text version, a PROJ string version, or JSON. The numbering is part of
// the bridge ABI.
type Convention int32

const (
	// WKT2_2019 is the most recent WKT 2 standard.
	WKT2_2019 Convention = 0

	// WKT2_2019Simplified is WKT2_2019 without the elements that are
	// inferable from context, easier to read for humans.
	WKT2_2019Simplified Convention = 1

	// WKT2_2015 is the previous WKT 2 revision, ISO 19162:2015.
	WKT2_2015 Convention = 2

	// WKT2_2015Simplified is WKT2_2015 without inferable elements.
	WKT2_2015Simplified Convention = 3

	// WKT1_GDAL is the WKT 1 dialect understood by GDAL and most
	// pre-WKT2 software.
	WKT1_GDAL Convention = 4

	// WKT1_ESRI is the WKT 1 dialect of ESRI software.
	WKT1_ESRI Convention = 5

	// PROJ4 is a PROJ string compatible with PROJ 4 ("+proj=…"). Lossy:
	// datum and axis order information may not survive.
	PROJ4 Convention = 6

	// PROJ5 is a PROJ string using current PROJ conventions.
	PROJ5 Convention = 7

	// JSON is the PROJ-specific JSON encoding of WKT 2 concepts.
	JSON Convention = 8

	// WKT is the convention used when none is specified.
	WKT = WKT2_2019
)

// String returns a human-readable name for the convention.
func (c Convention) String() string {
	switch c {
	case WKT2_2019:
		return "WKT2:2019"
	case WKT2_2019Simplified:
		return "WKT2:2019 simplified"
	case WKT2_2015:
		return "WKT2:2015"
	case WKT2_2015Simplified:
		return "WKT2:2015 simplified"
	case WKT1_GDAL:
		return "WKT1:GDAL"
	case WKT1_ESRI:
		return "WKT1:ESRI"
	case PROJ4:
		return "PROJ.4"
	case PROJ5:
		return "PROJ"
	case JSON:
		return "PROJJSON"
	}
	return "unknown"
}

// FormatOptions configures Object.Format. The zero value formats strict
// multi-line WKT2:2019 with the engine's default indentation.
type FormatOptions struct {
	// Convention selects the output format.
	Convention Convention

	// Indentation is the number of spaces per nesting level in
	// multi-line output; 0 keeps the engine default.
	Indentation int

	// SingleLine suppresses newlines and indentation.
	SingleLine bool

	// Lenient lets the engine export objects that cannot be represented
	// exactly in the selected format, instead of failing.
	Lenient bool
}

// WKT returns this object in strict multi-line WKT2:2019.
func (o *Object) WKT() (string, error) {
	return o.Format(FormatOptions{})
}

// Format exports this object in the format selected by the options.
// Objects that have no representation in the selected format fail with
// the engine's diagnostic unless the options are lenient.
func (o *Object) Format(opts FormatOptions) (string, error) {
	if bridgeFormat == nil {
		return "", ErrNotLoaded
	}
	ptr, err := o.handle.use()
	if err != nil {
		return "", err
	}
	ctx, err := acquireContext()
	if err != nil {
		return "", err
	}
	defer ctx.release()

	multiline := int32(1)
	if opts.SingleLine {
		multiline = 0
	}
	strict := int32(1)
	if opts.Lenient {
		strict = 0
	}
	s := bridgeFormat(ptr, ctx.ptr, int32(opts.Convention), int32(opts.Indentation), multiline, strict)
	if s == "" {
		if msg := lastError(ctx.ptr); msg != "" {
			return "", &Error{Op: "format", Message: msg}
		}
	}
	return s, nil
}
