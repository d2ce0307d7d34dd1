//go:build !ios && !android && (amd64 || arm64)

package projgo

import (
	"sync"
	"unsafe"

	"github.com/ebitengine/purego"
	"go.uber.org/zap"

	"github.com/obinnaokechukwu/projgo/internal/handles"
)

// LogLevel represents engine diagnostic levels.
type LogLevel int32

// Log level constants matching PROJ's PJ_LOG_* values.
const (
	LogNone  LogLevel = 0 // Print no output
	LogError LogLevel = 1 // Errors only
	LogDebug LogLevel = 2 // Errors and debug output
	LogTrace LogLevel = 3 // Detailed call tracing
	LogTell  LogLevel = 4 // Everything the engine can say
)

// String returns the string representation of the log level.
func (l LogLevel) String() string {
	switch l {
	case LogNone:
		return "none"
	case LogError:
		return "error"
	case LogDebug:
		return "debug"
	case LogTrace:
		return "trace"
	case LogTell:
		return "tell"
	}
	return "unknown"
}

// LogCallback is called for each engine diagnostic message.
// level is the diagnostic level, message is the engine's text.
type LogCallback func(level LogLevel, message string)

var (
	loggerMu sync.RWMutex
	logger   = zap.NewNop()

	logCallbackMu sync.Mutex
	logCallback   LogCallback
	logCBHandle   uintptr
)

// logBinding identifies the pooled context a diagnostic came from.
// Registered in the handles package; the ID travels through the engine
// as the callback token.
type logBinding struct {
	context uint64
}

// SetLogger replaces the package logger. Reclamation, eviction and engine
// diagnostics are reported through it. Passing nil restores the no-op
// logger. The default is a no-op logger.
func SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	loggerMu.Lock()
	logger = l
	loggerMu.Unlock()
}

// getLogger returns the current package logger.
func getLogger() *zap.Logger {
	loggerMu.RLock()
	defer loggerMu.RUnlock()
	return logger
}

// SetLogLevel sets the engine diagnostic verbosity. The level applies to
// the engine's default context immediately and to pooled contexts as they
// are created.
func SetLogLevel(level LogLevel) error {
	if bridgeSetLogLevel == nil {
		return ErrNotLoaded
	}
	logCallbackMu.Lock()
	engineLogLevel = level
	logCallbackMu.Unlock()
	bridgeSetLogLevel(0, int32(level))
	return nil
}

// engineLogLevel is applied to every new pooled context. Guarded by
// logCallbackMu.
var engineLogLevel = LogError

// SetLogCallback sets a custom handler for engine diagnostics.
// Pass nil to restore the default behavior of routing diagnostics to the
// package logger.
func SetLogCallback(cb LogCallback) {
	logCallbackMu.Lock()
	logCallback = cb
	logCallbackMu.Unlock()
}

// installLogCallbacks wires the engine's default context to the trampoline.
// Called once after bindings registration.
func installLogCallbacks() {
	if bridgeSetLogCallback == nil {
		return
	}
	bridgeSetLogCallback(0, trampolineHandle(), 0)
	bridgeSetLogLevel(0, int32(LogError))
}

// trampolineHandle lazily creates the C-callable trampoline.
// purego callbacks are a finite resource, so exactly one is ever created.
func trampolineHandle() uintptr {
	logCallbackMu.Lock()
	defer logCallbackMu.Unlock()
	if logCBHandle == 0 {
		logCBHandle = purego.NewCallback(logTrampoline)
	}
	return logCBHandle
}

// attachContextLogging routes a pooled context's diagnostics through the
// trampoline, tagged with the context's ID. Returns the token to pass to
// detachContextLogging after the context is destroyed.
func attachContextLogging(ctx uintptr, contextID uint64) uintptr {
	if bridgeSetLogCallback == nil {
		return 0
	}
	token := handles.Register(&logBinding{context: contextID})
	bridgeSetLogCallback(ctx, trampolineHandle(), token)

	logCallbackMu.Lock()
	level := engineLogLevel
	logCallbackMu.Unlock()
	bridgeSetLogLevel(ctx, int32(level))
	return token
}

// detachContextLogging frees the callback token of a destroyed context.
func detachContextLogging(token uintptr) {
	if token != 0 {
		handles.Unregister(token)
	}
}

// logTrampoline is called by the bridge and forwards to the Go handler.
// Signature: void (*)(void *token, int level, const char *msg)
func logTrampoline(_ purego.CDecl, token uintptr, level int32, msg *byte) {
	logCallbackMu.Lock()
	cb := logCallback
	logCallbackMu.Unlock()

	goMsg := goString(msg)

	if cb != nil {
		cb(LogLevel(level), goMsg)
		return
	}

	fields := make([]zap.Field, 0, 1)
	if b, ok := handles.Lookup(token).(*logBinding); ok {
		fields = append(fields, zap.Uint64("context", b.context))
	}

	log := getLogger()
	switch {
	case LogLevel(level) <= LogError:
		log.Warn(goMsg, fields...)
	default:
		log.Debug(goMsg, fields...)
	}
}

// goString converts a NUL-terminated C string to a Go string.
func goString(msg *byte) string {
	if msg == nil {
		return ""
	}
	ptr := unsafe.Pointer(msg)
	for i := 0; ; i++ {
		b := *(*byte)(unsafe.Pointer(uintptr(ptr) + uintptr(i)))
		if b == 0 {
			return string(unsafe.Slice(msg, i))
		}
		if i > 4096 { // Safety limit
			return string(unsafe.Slice(msg, i))
		}
	}
}
