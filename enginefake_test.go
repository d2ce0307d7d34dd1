//go:build !ios && !android && (amd64 || arm64)

package projgo

import (
	"fmt"
	"math"
	"sync"
	"sync/atomic"
	"testing"
	"unsafe"
)

// fakeEngine is an in-process stand-in for the projbridge library. It is
// installed by swapping the package-private binding function variables,
// so every code path up to the FFI boundary runs for real. Engine
// objects are modeled as definitions keyed by identity; every call that
// returns an object mints a fresh handle referencing one, the way the
// bridge mints a new shared reference.
type fakeEngine struct {
	mu sync.Mutex

	next    uintptr
	defs    map[uintptr]*fakeDef
	handles map[uintptr]uintptr // handle -> identity
	refs    map[uintptr]int     // identity -> live handle count

	released       map[uintptr]int // handle -> release count
	doubleReleases int

	errs map[uintptr]string // pending diagnostic per context, 0 = global

	liveContexts map[uintptr]bool
	ctxCreated   int
	ctxDestroyed int
	failContext  bool

	factoryAuth    map[uintptr]string  // factory handle -> authority
	factoryCtx     map[uintptr]uintptr // factory handle -> owning context
	codes          map[string]uintptr  // "authority:code" -> identity
	descriptions   map[string]string   // code -> label
	parses         map[string]uintptr  // text -> identity
	failFactory    map[string]string   // authority -> creation diagnostic
	factoryPostErr map[string]string   // authority -> diagnostic after creation

	opResult      uintptr // identity minted by create_operation
	inverseResult uintptr // identity minted by inverse

	pjs            map[uintptr]uintptr // pj -> context it is assigned to
	pjDestroyed    int
	transformDelta float64
	failTransform  string

	formatCalls []fakeFormatCall
	logLevels   []int32

	events []string // release/destroy order, for ordering assertions
}

type fakeDef struct {
	kind  Kind
	strs  map[int32]string
	nums  map[int32]float64
	bools map[int32]int32
	arrs  map[int32][]float64
	objs  map[int32]uintptr   // prop -> identity
	vecs  map[int32][]uintptr // prop -> identities
	fails map[int32]string    // prop -> diagnostic
	wkt   string
}

type fakeFormatCall struct {
	identity   uintptr
	convention int32
	multiline  int32
	strict     int32
}

// fakeMintBase spaces the handle values of successive fakes into disjoint
// ranges. The reclamation worker may still release handles minted by an
// earlier test's fake after a new one is installed; those must land in
// released without a matching mint rather than collide with a handle the
// current fake has minted.
var fakeMintBase atomic.Uintptr

func newFakeEngine() *fakeEngine {
	return &fakeEngine{
		next:           fakeMintBase.Add(1 << 20),
		defs:           make(map[uintptr]*fakeDef),
		handles:        make(map[uintptr]uintptr),
		refs:           make(map[uintptr]int),
		released:       make(map[uintptr]int),
		errs:           make(map[uintptr]string),
		liveContexts:   make(map[uintptr]bool),
		factoryAuth:    make(map[uintptr]string),
		factoryCtx:     make(map[uintptr]uintptr),
		codes:          make(map[string]uintptr),
		descriptions:   make(map[string]string),
		parses:         make(map[string]uintptr),
		failFactory:    make(map[string]string),
		factoryPostErr: make(map[string]string),
		pjs:            make(map[uintptr]uintptr),
		transformDelta: 1,
	}
}

// define registers an engine object definition under the given identity.
func (f *fakeEngine) define(identity uintptr, kind Kind) *fakeDef {
	f.mu.Lock()
	defer f.mu.Unlock()
	d := &fakeDef{
		kind:  kind,
		strs:  make(map[int32]string),
		nums:  make(map[int32]float64),
		bools: make(map[int32]int32),
		arrs:  make(map[int32][]float64),
		objs:  make(map[int32]uintptr),
		vecs:  make(map[int32][]uintptr),
		fails: make(map[int32]string),
	}
	f.defs[identity] = d
	return d
}

func (f *fakeEngine) mint() uintptr {
	f.next += 16
	return f.next
}

// handleFor mints a fresh engine reference to a defined object.
func (f *fakeEngine) handleFor(identity uintptr) uintptr {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.handleForLocked(identity)
}

func (f *fakeEngine) handleForLocked(identity uintptr) uintptr {
	h := f.mint()
	f.handles[h] = identity
	f.refs[identity]++
	return h
}

func (f *fakeEngine) releaseCount(h uintptr) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.released[h]
}

func (f *fakeEngine) liveRefs(identity uintptr) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.refs[identity]
}

func (f *fakeEngine) setError(ctx uintptr, msg string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errs[ctx] = msg
}

func (f *fakeEngine) defOf(h uintptr) *fakeDef {
	// Callers hold f.mu.
	if id, ok := f.handles[h]; ok {
		return f.defs[id]
	}
	return nil
}

// install swaps the binding function variables for this fake and gives
// the package fresh process-wide state, restoring everything when the
// test finishes. Handles left over from earlier tests may still be
// released by the reclamation worker while the fake is installed; those
// land in released without a matching mint and are ignored.
func (f *fakeEngine) install(t *testing.T) {
	t.Helper()

	savedCache := objectCache
	savedPool := contexts
	savedRegistered := bindingsRegistered
	savedBindings := currentBindings()
	t.Cleanup(func() {
		objectCache = savedCache
		contexts = savedPool
		bindingsRegistered = savedRegistered
		savedBindings.install()
	})

	objectCache = newSharedCache()
	contexts = newContextPool()
	bindingsRegistered = true

	bridgeContextCreate = func() uintptr {
		f.mu.Lock()
		defer f.mu.Unlock()
		if f.failContext {
			return 0
		}
		ctx := f.mint()
		f.liveContexts[ctx] = true
		f.ctxCreated++
		return ctx
	}
	bridgeContextDestroy = func(ctx uintptr) {
		f.mu.Lock()
		defer f.mu.Unlock()
		delete(f.liveContexts, ctx)
		f.ctxDestroyed++
		f.events = append(f.events, "ctx_destroy")
	}
	bridgeDatabaseCreate = func(ctx uintptr) uintptr {
		f.mu.Lock()
		defer f.mu.Unlock()
		id := f.mint()
		f.defs[id] = &fakeDef{kind: KindAny}
		return f.handleForLocked(id)
	}
	bridgeFactoryCreate = func(ctx, db uintptr, authority string) uintptr {
		f.mu.Lock()
		defer f.mu.Unlock()
		if msg, ok := f.failFactory[authority]; ok {
			f.errs[ctx] = msg
			return 0
		}
		id := f.mint()
		f.defs[id] = &fakeDef{kind: KindAny}
		h := f.handleForLocked(id)
		f.factoryAuth[h] = authority
		f.factoryCtx[h] = ctx
		if msg, ok := f.factoryPostErr[authority]; ok {
			f.errs[ctx] = msg
		}
		return h
	}
	bridgeCreateByCode = func(factory uintptr, kind int32, code string) uintptr {
		f.mu.Lock()
		defer f.mu.Unlock()
		auth := f.factoryAuth[factory]
		ctx := f.factoryCtx[factory]
		id, ok := f.codes[auth+":"+code]
		if !ok {
			f.errs[ctx] = fmt.Sprintf("crs not found: %s:%s", auth, code)
			return 0
		}
		if k := Kind(kind); k != KindAny && !kindAccepts(k, f.defs[id].kind) {
			f.errs[ctx] = fmt.Sprintf("%s:%s is not a %s", auth, code, k)
			return 0
		}
		return f.handleForLocked(id)
	}
	bridgeFactoryDescription = func(factory uintptr, code string) string {
		f.mu.Lock()
		defer f.mu.Unlock()
		return f.descriptions[code]
	}
	bridgeParse = func(ctx, db uintptr, text string) uintptr {
		f.mu.Lock()
		defer f.mu.Unlock()
		id, ok := f.parses[text]
		if !ok {
			f.errs[ctx] = "unparsable: " + text
			return 0
		}
		return f.handleForLocked(id)
	}
	bridgeCreateOperation = func(ctx, db, source, target uintptr) uintptr {
		f.mu.Lock()
		defer f.mu.Unlock()
		if f.opResult == 0 {
			f.errs[ctx] = "no operation path"
			return 0
		}
		return f.handleForLocked(f.opResult)
	}
	bridgeObjectKind = func(obj uintptr) int32 {
		f.mu.Lock()
		defer f.mu.Unlock()
		if d := f.defOf(obj); d != nil {
			return int32(d.kind)
		}
		return int32(KindAny)
	}
	bridgeGetObjectProperty = func(obj uintptr, prop int32) uintptr {
		f.mu.Lock()
		defer f.mu.Unlock()
		d := f.defOf(obj)
		if d == nil {
			return 0
		}
		if msg, ok := d.fails[prop]; ok {
			f.errs[0] = msg
			return 0
		}
		id, ok := d.objs[prop]
		if !ok {
			return 0
		}
		return f.handleForLocked(id)
	}
	bridgeGetStringProperty = func(obj uintptr, prop int32) string {
		f.mu.Lock()
		defer f.mu.Unlock()
		d := f.defOf(obj)
		if d == nil {
			return ""
		}
		if msg, ok := d.fails[prop]; ok {
			f.errs[0] = msg
			return ""
		}
		return d.strs[prop]
	}
	bridgeGetNumericProperty = func(obj uintptr, prop int32) float64 {
		f.mu.Lock()
		defer f.mu.Unlock()
		d := f.defOf(obj)
		if d == nil {
			return math.NaN()
		}
		if msg, ok := d.fails[prop]; ok {
			f.errs[0] = msg
			return math.NaN()
		}
		if v, ok := d.nums[prop]; ok {
			return v
		}
		return math.NaN()
	}
	bridgeGetIntegerProperty = func(obj uintptr, prop int32) int32 {
		return 0
	}
	bridgeGetBooleanProperty = func(obj uintptr, prop int32) int32 {
		f.mu.Lock()
		defer f.mu.Unlock()
		d := f.defOf(obj)
		if d == nil {
			return -1
		}
		return d.bools[prop]
	}
	bridgeGetArrayProperty = func(obj uintptr, prop int32, out *float64, capacity int32) int32 {
		f.mu.Lock()
		defer f.mu.Unlock()
		d := f.defOf(obj)
		if d == nil {
			return -1
		}
		vals, ok := d.arrs[prop]
		if !ok {
			return 0
		}
		n := int32(len(vals))
		if n > capacity {
			n = capacity
		}
		dst := unsafeFloats(out, int(n))
		copy(dst, vals)
		return n
	}
	bridgeVectorSize = func(obj uintptr, prop int32) int32 {
		f.mu.Lock()
		defer f.mu.Unlock()
		d := f.defOf(obj)
		if d == nil {
			return -1
		}
		return int32(len(d.vecs[prop]))
	}
	bridgeVectorElement = func(obj uintptr, prop int32, index int32) uintptr {
		f.mu.Lock()
		defer f.mu.Unlock()
		d := f.defOf(obj)
		if d == nil {
			return 0
		}
		vec := d.vecs[prop]
		if index < 0 || int(index) >= len(vec) {
			return 0
		}
		return f.handleForLocked(vec[index])
	}
	bridgeSearchVectorElement = func(obj uintptr, prop int32, name string) uintptr {
		f.mu.Lock()
		defer f.mu.Unlock()
		d := f.defOf(obj)
		if d == nil {
			return 0
		}
		for _, id := range d.vecs[prop] {
			if f.defs[id].strs[propNameString] == name {
				return f.handleForLocked(id)
			}
		}
		return 0
	}
	bridgeIsEquivalent = func(a, b uintptr, criterion int32) int32 {
		f.mu.Lock()
		defer f.mu.Unlock()
		if f.handles[a] == f.handles[b] {
			return 1
		}
		return 0
	}
	bridgeFormat = func(obj, ctx uintptr, convention, indentation, multiline, strict int32) string {
		f.mu.Lock()
		defer f.mu.Unlock()
		d := f.defOf(obj)
		if d == nil {
			return ""
		}
		f.formatCalls = append(f.formatCalls, fakeFormatCall{
			identity:   f.handles[obj],
			convention: convention,
			multiline:  multiline,
			strict:     strict,
		})
		if msg, ok := d.fails[-1]; ok {
			f.errs[ctx] = msg
			return ""
		}
		return d.wkt
	}
	bridgeInverse = func(ctx, operation uintptr) uintptr {
		f.mu.Lock()
		defer f.mu.Unlock()
		if f.inverseResult == 0 {
			f.errs[ctx] = "operation is not invertible"
			return 0
		}
		return f.handleForLocked(f.inverseResult)
	}
	bridgeNormalizeForVisualization = func(ctx, obj uintptr) uintptr {
		f.mu.Lock()
		defer f.mu.Unlock()
		return f.handleForLocked(f.handles[obj])
	}
	bridgePJCreate = func(ctx, operation uintptr) uintptr {
		f.mu.Lock()
		defer f.mu.Unlock()
		pj := f.mint()
		f.pjs[pj] = 0
		return pj
	}
	bridgePJAssignContext = func(pj, ctx uintptr) {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.pjs[pj] = ctx
	}
	bridgePJTransform = func(pj uintptr, dim int32, coords *float64, npts int32) int32 {
		f.mu.Lock()
		defer f.mu.Unlock()
		if f.failTransform != "" {
			f.errs[f.pjs[pj]] = f.failTransform
			return -1
		}
		vals := unsafeFloats(coords, int(dim*npts))
		for i := range vals {
			vals[i] += f.transformDelta
		}
		return 0
	}
	bridgePJDestroy = func(pj uintptr) {
		f.mu.Lock()
		defer f.mu.Unlock()
		delete(f.pjs, pj)
		f.pjDestroyed++
		f.events = append(f.events, "pj_destroy")
	}
	bridgeRelease = func(obj uintptr) {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.released[obj]++
		if id, ok := f.handles[obj]; ok {
			delete(f.handles, obj)
			f.refs[id]--
			f.events = append(f.events, fmt.Sprintf("release:%#x", id))
		} else if f.released[obj] > 1 {
			f.doubleReleases++
		}
	}
	bridgeRawIdentity = func(obj uintptr) uintptr {
		f.mu.Lock()
		defer f.mu.Unlock()
		return f.handles[obj]
	}
	bridgeLastError = func(ctx uintptr) string {
		f.mu.Lock()
		defer f.mu.Unlock()
		msg := f.errs[ctx]
		delete(f.errs, ctx)
		return msg
	}
	bridgeSetLogCallback = func(ctx, fn, token uintptr) {}
	bridgeSetLogLevel = func(ctx uintptr, level int32) int32 {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.logLevels = append(f.logLevels, level)
		return 0
	}
}

// bindingSet is a snapshot of every bridge function variable, used to
// restore the real bindings after a fake has been installed.
type bindingSet struct {
	contextCreate  func() uintptr
	contextDestroy func(uintptr)
	databaseCreate func(uintptr) uintptr
	factoryCreate  func(uintptr, uintptr, string) uintptr
	createByCode   func(uintptr, int32, string) uintptr
	factoryDesc    func(uintptr, string) string
	parse          func(uintptr, uintptr, string) uintptr
	createOp       func(uintptr, uintptr, uintptr, uintptr) uintptr
	objectKind     func(uintptr) int32
	objProp        func(uintptr, int32) uintptr
	strProp        func(uintptr, int32) string
	numProp        func(uintptr, int32) float64
	intProp        func(uintptr, int32) int32
	boolProp       func(uintptr, int32) int32
	arrProp        func(uintptr, int32, *float64, int32) int32
	vecSize        func(uintptr, int32) int32
	vecElem        func(uintptr, int32, int32) uintptr
	vecSearch      func(uintptr, int32, string) uintptr
	isEquivalent   func(uintptr, uintptr, int32) int32
	format         func(uintptr, uintptr, int32, int32, int32, int32) string
	inverse        func(uintptr, uintptr) uintptr
	normalize      func(uintptr, uintptr) uintptr
	pjCreate       func(uintptr, uintptr) uintptr
	pjAssign       func(uintptr, uintptr)
	pjTransform    func(uintptr, int32, *float64, int32) int32
	pjDestroy      func(uintptr)
	release        func(uintptr)
	rawIdentity    func(uintptr) uintptr
	lastError      func(uintptr) string
	setLogCallback func(uintptr, uintptr, uintptr)
	setLogLevel    func(uintptr, int32) int32
}

func currentBindings() bindingSet {
	return bindingSet{
		contextCreate:  bridgeContextCreate,
		contextDestroy: bridgeContextDestroy,
		databaseCreate: bridgeDatabaseCreate,
		factoryCreate:  bridgeFactoryCreate,
		createByCode:   bridgeCreateByCode,
		factoryDesc:    bridgeFactoryDescription,
		parse:          bridgeParse,
		createOp:       bridgeCreateOperation,
		objectKind:     bridgeObjectKind,
		objProp:        bridgeGetObjectProperty,
		strProp:        bridgeGetStringProperty,
		numProp:        bridgeGetNumericProperty,
		intProp:        bridgeGetIntegerProperty,
		boolProp:       bridgeGetBooleanProperty,
		arrProp:        bridgeGetArrayProperty,
		vecSize:        bridgeVectorSize,
		vecElem:        bridgeVectorElement,
		vecSearch:      bridgeSearchVectorElement,
		isEquivalent:   bridgeIsEquivalent,
		format:         bridgeFormat,
		inverse:        bridgeInverse,
		normalize:      bridgeNormalizeForVisualization,
		pjCreate:       bridgePJCreate,
		pjAssign:       bridgePJAssignContext,
		pjTransform:    bridgePJTransform,
		pjDestroy:      bridgePJDestroy,
		release:        bridgeRelease,
		rawIdentity:    bridgeRawIdentity,
		lastError:      bridgeLastError,
		setLogCallback: bridgeSetLogCallback,
		setLogLevel:    bridgeSetLogLevel,
	}
}

func (b bindingSet) install() {
	bridgeContextCreate = b.contextCreate
	bridgeContextDestroy = b.contextDestroy
	bridgeDatabaseCreate = b.databaseCreate
	bridgeFactoryCreate = b.factoryCreate
	bridgeCreateByCode = b.createByCode
	bridgeFactoryDescription = b.factoryDesc
	bridgeParse = b.parse
	bridgeCreateOperation = b.createOp
	bridgeObjectKind = b.objectKind
	bridgeGetObjectProperty = b.objProp
	bridgeGetStringProperty = b.strProp
	bridgeGetNumericProperty = b.numProp
	bridgeGetIntegerProperty = b.intProp
	bridgeGetBooleanProperty = b.boolProp
	bridgeGetArrayProperty = b.arrProp
	bridgeVectorSize = b.vecSize
	bridgeVectorElement = b.vecElem
	bridgeSearchVectorElement = b.vecSearch
	bridgeIsEquivalent = b.isEquivalent
	bridgeFormat = b.format
	bridgeInverse = b.inverse
	bridgeNormalizeForVisualization = b.normalize
	bridgePJCreate = b.pjCreate
	bridgePJAssignContext = b.pjAssign
	bridgePJTransform = b.pjTransform
	bridgePJDestroy = b.pjDestroy
	bridgeRelease = b.release
	bridgeRawIdentity = b.rawIdentity
	bridgeLastError = b.lastError
	bridgeSetLogCallback = b.setLogCallback
	bridgeSetLogLevel = b.setLogLevel
}

// unsafeFloats views a bridge float64 buffer as a Go slice.
func unsafeFloats(p *float64, n int) []float64 {
	return unsafe.Slice(p, n)
}

// kindAccepts reports whether an object of kind actual satisfies a
// request for kind wanted, the way the bridge's dynamic casts do.
func kindAccepts(wanted, actual Kind) bool {
	if wanted == actual {
		return true
	}
	switch wanted {
	case KindCRS:
		return actual.isCRS()
	case KindCoordinateSystem:
		return actual.isCS()
	case KindDatum:
		return actual.isDatum()
	case KindOperation:
		return actual.isOperation()
	}
	return false
}
