//go:build !ios && !android && (amd64 || arm64)

package projgo

import (
	"github.com/ebitengine/purego"
	"github.com/obinnaokechukwu/projgo/internal/bindings"
)

// Function bindings - registered when init() is called.
//
// Every geodetic object handle below is an opaque bridge pointer owning one
// engine reference. Operations taking a ctx are scoped to a PJ_CONTEXT and
// report failures through that context's error slot; object-scoped
// operations (ctx absent) use the global slot, queried as lastError(0).
var (
	bridgeContextCreate  func() uintptr
	bridgeContextDestroy func(ctx uintptr)

	bridgeDatabaseCreate     func(ctx uintptr) uintptr
	bridgeFactoryCreate      func(ctx, db uintptr, authority string) uintptr
	bridgeCreateByCode       func(factory uintptr, kind int32, code string) uintptr
	bridgeFactoryDescription func(factory uintptr, code string) string
	bridgeParse              func(ctx, db uintptr, text string) uintptr
	bridgeCreateOperation    func(ctx, db uintptr, source, target uintptr) uintptr

	bridgeObjectKind          func(obj uintptr) int32
	bridgeGetObjectProperty   func(obj uintptr, prop int32) uintptr
	bridgeGetStringProperty   func(obj uintptr, prop int32) string
	bridgeGetNumericProperty  func(obj uintptr, prop int32) float64
	bridgeGetIntegerProperty  func(obj uintptr, prop int32) int32
	bridgeGetBooleanProperty  func(obj uintptr, prop int32) int32
	bridgeGetArrayProperty    func(obj uintptr, prop int32, out *float64, capacity int32) int32
	bridgeVectorSize          func(obj uintptr, prop int32) int32
	bridgeVectorElement       func(obj uintptr, prop int32, index int32) uintptr
	bridgeSearchVectorElement func(obj uintptr, prop int32, name string) uintptr

	bridgeIsEquivalent func(a, b uintptr, criterion int32) int32
	bridgeFormat       func(obj, ctx uintptr, convention, indentation, multiline, strict int32) string

	bridgeInverse                   func(ctx, operation uintptr) uintptr
	bridgeNormalizeForVisualization func(ctx, obj uintptr) uintptr

	bridgePJCreate        func(ctx, operation uintptr) uintptr
	bridgePJAssignContext func(pj, ctx uintptr)
	bridgePJTransform     func(pj uintptr, dim int32, coords *float64, npts int32) int32
	bridgePJDestroy       func(pj uintptr)

	bridgeRelease     func(obj uintptr)
	bridgeRawIdentity func(obj uintptr) uintptr
	bridgeLastError   func(ctx uintptr) string

	bridgeSetLogCallback func(ctx, fn, token uintptr)
	bridgeSetLogLevel    func(ctx uintptr, level int32) int32

	bindingsRegistered bool
)

func init() {
	registerBindings()
}

func registerBindings() {
	if bindingsRegistered {
		return
	}

	// Ensure the engine is loaded
	if err := bindings.Load(); err != nil {
		return // Will fail later when functions are called
	}

	lib := bindings.LibProjBridge()
	if lib == 0 {
		return
	}

	purego.RegisterLibFunc(&bridgeContextCreate, lib, "projbridge_context_create")
	purego.RegisterLibFunc(&bridgeContextDestroy, lib, "projbridge_context_destroy")

	purego.RegisterLibFunc(&bridgeDatabaseCreate, lib, "projbridge_database_create")
	purego.RegisterLibFunc(&bridgeFactoryCreate, lib, "projbridge_factory_create")
	purego.RegisterLibFunc(&bridgeCreateByCode, lib, "projbridge_create_by_code")
	purego.RegisterLibFunc(&bridgeFactoryDescription, lib, "projbridge_factory_description")
	purego.RegisterLibFunc(&bridgeParse, lib, "projbridge_parse")
	purego.RegisterLibFunc(&bridgeCreateOperation, lib, "projbridge_create_operation")

	purego.RegisterLibFunc(&bridgeObjectKind, lib, "projbridge_object_kind")
	purego.RegisterLibFunc(&bridgeGetObjectProperty, lib, "projbridge_get_object_property")
	purego.RegisterLibFunc(&bridgeGetStringProperty, lib, "projbridge_get_string_property")
	purego.RegisterLibFunc(&bridgeGetNumericProperty, lib, "projbridge_get_numeric_property")
	purego.RegisterLibFunc(&bridgeGetIntegerProperty, lib, "projbridge_get_integer_property")
	purego.RegisterLibFunc(&bridgeGetBooleanProperty, lib, "projbridge_get_boolean_property")
	purego.RegisterLibFunc(&bridgeGetArrayProperty, lib, "projbridge_get_array_property")
	purego.RegisterLibFunc(&bridgeVectorSize, lib, "projbridge_vector_size")
	purego.RegisterLibFunc(&bridgeVectorElement, lib, "projbridge_vector_element")
	purego.RegisterLibFunc(&bridgeSearchVectorElement, lib, "projbridge_search_vector_element")

	purego.RegisterLibFunc(&bridgeIsEquivalent, lib, "projbridge_is_equivalent")
	purego.RegisterLibFunc(&bridgeFormat, lib, "projbridge_format")

	purego.RegisterLibFunc(&bridgeInverse, lib, "projbridge_inverse")
	purego.RegisterLibFunc(&bridgeNormalizeForVisualization, lib, "projbridge_normalize_for_visualization")

	purego.RegisterLibFunc(&bridgePJCreate, lib, "projbridge_pj_create")
	purego.RegisterLibFunc(&bridgePJAssignContext, lib, "projbridge_pj_assign_context")
	purego.RegisterLibFunc(&bridgePJTransform, lib, "projbridge_pj_transform")
	purego.RegisterLibFunc(&bridgePJDestroy, lib, "projbridge_pj_destroy")

	purego.RegisterLibFunc(&bridgeRelease, lib, "projbridge_release")
	purego.RegisterLibFunc(&bridgeRawIdentity, lib, "projbridge_raw_identity")
	purego.RegisterLibFunc(&bridgeLastError, lib, "projbridge_last_error")

	purego.RegisterLibFunc(&bridgeSetLogCallback, lib, "projbridge_set_log_callback")
	purego.RegisterLibFunc(&bridgeSetLogLevel, lib, "projbridge_set_log_level")

	bindingsRegistered = true

	installLogCallbacks()
}

// ensureLoaded makes sure the bridge bindings are registered before an
// entry point touches them. Tests install an in-process engine by
// setting the function variables directly and flipping
// bindingsRegistered, which short-circuits the library load.
func ensureLoaded() error {
	if bindingsRegistered {
		return nil
	}
	return Init()
}

// lastError drains and returns the engine failure text for the given
// context, or for the global slot when ctx is 0. Returns "" when the
// engine is not loaded.
func lastError(ctx uintptr) string {
	if bridgeLastError == nil {
		return ""
	}
	return bridgeLastError(ctx)
}

// releaseRaw drops one engine reference. Safe on a nil binding so that
// teardown paths work in degraded mode.
func releaseRaw(ptr uintptr) {
	if ptr == 0 || bridgeRelease == nil {
		return
	}
	bridgeRelease(ptr)
}

// rawIdentity returns the referee address for a handle, 0 when unavailable.
func rawIdentity(ptr uintptr) uintptr {
	if ptr == 0 || bridgeRawIdentity == nil {
		return 0
	}
	return bridgeRawIdentity(ptr)
}

// objectKind queries the dynamic kind of a handle.
func objectKind(ptr uintptr) (Kind, error) {
	if bridgeObjectKind == nil {
		return KindAny, bindings.ErrNotLoaded
	}
	k := bridgeObjectKind(ptr)
	if k < 0 {
		return KindAny, newOpError("object_kind", lastError(0))
	}
	return Kind(k), nil
}
