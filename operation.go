//go:build !ios && !android && (amd64 || arm64)

package projgo

import (
	"fmt"
)

// Operation is a coordinate operation view of a canonical wrapper: a
// conversion or transformation of coordinates from a source CRS to a
// target CRS.
//
// The mathematical transform behind an operation is a per-context engine
// resource; Apply borrows a pooled context for the duration of the call,
// so an Operation itself is safe for concurrent use.
type Operation struct {
	*Object
}

// SourceCRS returns the CRS the operation converts coordinates from, or
// nil when the operation does not declare one.
func (o *Operation) SourceCRS() (*CRS, error) {
	obj, err := o.vectorElement(propSourceTargetCRS, 0)
	if err != nil || obj == nil {
		return nil, err
	}
	return obj.AsCRS()
}

// TargetCRS returns the CRS the operation converts coordinates to, or
// nil when the operation does not declare one.
func (o *Operation) TargetCRS() (*CRS, error) {
	obj, err := o.vectorElement(propSourceTargetCRS, 1)
	if err != nil || obj == nil {
		return nil, err
	}
	return obj.AsCRS()
}

// Method returns the operation method, or nil for concatenated
// operations, which have none of their own.
func (o *Operation) Method() (*Object, error) {
	return o.objectProperty(propOperationMethod)
}

// MethodName returns the name of the operation method, or "" when the
// operation has none.
func (o *Operation) MethodName() (string, error) {
	m, err := o.Method()
	if err != nil || m == nil {
		return "", err
	}
	return m.Name()
}

// Inverse returns the operation converting coordinates the opposite way.
// Fails when the engine cannot invert this operation.
func (o *Operation) Inverse() (*Operation, error) {
	if bridgeInverse == nil {
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
	out := bridgeInverse(ctx.ptr, ptr)
	if out == 0 {
		return nil, newOpError("inverse", lastError(ctx.ptr))
	}
	obj, err := wrapShared(out)
	if err != nil {
		return nil, err
	}
	return obj.AsOperation()
}

// Apply transforms coordinate tuples in place. coords holds the tuples
// interleaved, dimension values per point: (x0,y0, x1,y1, …) for
// dimension 2, (x0,y0,z0, x1,y1,z1, …) for dimension 3, up to 4 with a
// time value. len(coords) must be a multiple of dimension.
func (o *Operation) Apply(coords []float64, dimension int) error {
	if dimension < 2 || dimension > 4 {
		return &Error{Op: "transform", Message: fmt.Sprintf("dimension %d out of range [2,4]", dimension)}
	}
	if len(coords)%dimension != 0 {
		return &Error{Op: "transform", Message: fmt.Sprintf("%d coordinates do not divide into %d-dimensional tuples", len(coords), dimension)}
	}
	if len(coords) == 0 {
		return nil
	}
	ptr, err := o.handle.use()
	if err != nil {
		return err
	}
	ctx, err := acquireContext()
	if err != nil {
		return err
	}
	defer ctx.release()
	pj, err := ctx.transform(o.RawIdentity(), ptr)
	if err != nil {
		return err
	}
	if r := bridgePJTransform(pj, int32(dimension), &coords[0], int32(len(coords)/dimension)); r != 0 {
		return newOpError("transform", lastError(ctx.ptr))
	}
	return nil
}

// CreateOperation returns a coordinate operation converting coordinates
// from the source CRS to the target one, selected by the engine from the
// authority database for the area where both CRS are valid.
func CreateOperation(source, target *CRS) (*Operation, error) {
	if bridgeCreateOperation == nil {
		return nil, ErrNotLoaded
	}
	src, err := source.handle.use()
	if err != nil {
		return nil, err
	}
	dst, err := target.handle.use()
	if err != nil {
		return nil, err
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
	out := bridgeCreateOperation(ctx.ptr, db, src, dst)
	if out == 0 {
		return nil, newOpError("create_operation", lastError(ctx.ptr))
	}
	obj, err := wrapShared(out)
	if err != nil {
		return nil, err
	}
	return obj.AsOperation()
}
