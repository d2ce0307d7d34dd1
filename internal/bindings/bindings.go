//go:build !ios && !android && (amd64 || arm64)

// Package bindings handles loading the PROJ and projbridge shared libraries
// and registering function bindings using purego.
package bindings

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/ebitengine/purego"
	"github.com/obinnaokechukwu/projgo/internal/platform"
)

// ErrNotLoaded is returned when engine functions are called before Load().
var ErrNotLoaded = errors.New("projgo: PROJ libraries not loaded; call projgo.Init() first")

// ErrLibraryNotFound is returned when a required library cannot be found.
var ErrLibraryNotFound = errors.New("projgo: library not found")

// ErrBridgeIncompatible is returned when libprojbridge reports an ABI
// generation this build does not understand.
var ErrBridgeIncompatible = errors.New("projgo: projbridge ABI mismatch")

// abiVersion is the projbridge ABI generation this package is built against.
const abiVersion = 1

// Library handles
var (
	libProj   uintptr
	libBridge uintptr

	loaded   bool
	loadOnce sync.Once
	loadErr  error
)

// Version function bindings
var (
	bridgeABIVersion func() int32
	engineVersion    func() string
)

// IsLoaded returns true if the native libraries have been successfully loaded.
func IsLoaded() bool {
	return loaded
}

// Load loads the native libraries and registers the version bindings.
// It is safe to call multiple times; subsequent calls are no-ops.
// Returns an error if libraries cannot be found or loaded.
func Load() error {
	loadOnce.Do(func() {
		loadErr = doLoad()
		if loadErr == nil {
			loaded = true
		}
	})
	return loadErr
}

func doLoad() error {
	// Load libraries in dependency order (CRITICAL): libproj must be first
	// so the bridge resolves its PROJ symbols from the already-mapped copy
	// instead of pulling in a second one.
	var err error

	// 1. Load proj (no dependencies of interest)
	libProj, err = loadLibrary("proj", []int{25, 22, 19, 17, 15})
	if err != nil {
		return fmt.Errorf("loading libproj: %w", err)
	}

	// 2. Load projbridge (depends on proj)
	libBridge, err = loadLibrary("projbridge", []int{1})
	if err != nil {
		return fmt.Errorf("loading libprojbridge: %w", err)
	}

	// Register version functions
	purego.RegisterLibFunc(&bridgeABIVersion, libBridge, "projbridge_abi_version")
	purego.RegisterLibFunc(&engineVersion, libBridge, "projbridge_version")

	if got := bridgeABIVersion(); got != abiVersion {
		return fmt.Errorf("%w: bridge reports generation %d, need %d", ErrBridgeIncompatible, got, abiVersion)
	}

	return nil
}

// loadLibrary attempts to load a library by trying versioned names.
func loadLibrary(name string, versions []int) (uintptr, error) {
	// Try each search path
	for _, searchPath := range LibrarySearchPaths() {
		// Try versioned names first (more specific)
		for _, ver := range versions {
			libName := platform.FormatLibraryName(name, ver)
			fullPath := filepath.Join(searchPath, libName)

			// Try to open
			lib, err := tryOpen(fullPath)
			if err == nil {
				return lib, nil
			}
		}

		// Try unversioned name
		libName := platform.FormatLibraryName(name, 0)
		fullPath := filepath.Join(searchPath, libName)
		lib, err := tryOpen(fullPath)
		if err == nil {
			return lib, nil
		}
	}

	// Try just the library name (let the system find it)
	for _, ver := range versions {
		libName := platform.FormatLibraryName(name, ver)
		lib, err := tryOpen(libName)
		if err == nil {
			return lib, nil
		}
	}

	// Try unversioned
	libName := platform.FormatLibraryName(name, 0)
	lib, err := tryOpen(libName)
	if err == nil {
		return lib, nil
	}

	return 0, fmt.Errorf("%w: %s", ErrLibraryNotFound, name)
}

// tryOpen attempts to open a library with RTLD_NOW | RTLD_GLOBAL.
// RTLD_GLOBAL is REQUIRED - the bridge resolves libproj symbols dynamically.
func tryOpen(path string) (uintptr, error) {
	lib, err := purego.Dlopen(path, purego.RTLD_NOW|purego.RTLD_GLOBAL)
	if err != nil {
		return 0, err
	}
	return lib, nil
}

// FindLibrary searches for a library and returns its full path.
// This is useful for diagnostics.
func FindLibrary(name string, versions []int) (string, error) {
	for _, searchPath := range LibrarySearchPaths() {
		for _, ver := range versions {
			libName := platform.FormatLibraryName(name, ver)
			fullPath := filepath.Join(searchPath, libName)
			if _, err := os.Stat(fullPath); err == nil {
				return fullPath, nil
			}
		}
		// Try unversioned
		libName := platform.FormatLibraryName(name, 0)
		fullPath := filepath.Join(searchPath, libName)
		if _, err := os.Stat(fullPath); err == nil {
			return fullPath, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrLibraryNotFound, name)
}

// LibrarySearchPaths returns platform-specific library search paths.
// PROJGO_LIBRARY_PATH always wins so users can point at a custom build of
// PROJ or of the bridge.
func LibrarySearchPaths() []string {
	var paths []string

	if override := os.Getenv("PROJGO_LIBRARY_PATH"); override != "" {
		paths = append(paths, filepath.SplitList(override)...)
	}

	switch runtime.GOOS {
	case "linux":
		// Check LD_LIBRARY_PATH first
		if ldPath := os.Getenv("LD_LIBRARY_PATH"); ldPath != "" {
			paths = append(paths, filepath.SplitList(ldPath)...)
		}
		// Standard paths
		paths = append(paths,
			"/usr/lib/x86_64-linux-gnu",
			"/usr/lib/aarch64-linux-gnu",
			"/usr/local/lib",
			"/usr/lib",
			"/lib/x86_64-linux-gnu",
			"/lib",
		)

	case "darwin":
		// Check DYLD_LIBRARY_PATH first
		if dyldPath := os.Getenv("DYLD_LIBRARY_PATH"); dyldPath != "" {
			paths = append(paths, filepath.SplitList(dyldPath)...)
		}
		// Homebrew paths
		paths = append(paths,
			"/opt/homebrew/lib",          // Apple Silicon
			"/usr/local/lib",             // Intel
			"/opt/homebrew/opt/proj/lib", // Homebrew PROJ
			"/usr/local/opt/proj/lib",    // Homebrew PROJ (Intel)
		)

	case "windows":
		// Check PATH
		if winPath := os.Getenv("PATH"); winPath != "" {
			paths = append(paths, filepath.SplitList(winPath)...)
		}
		// Executable directory
		if exe, err := os.Executable(); err == nil {
			paths = append(paths, filepath.Dir(exe))
		}
		// Common PROJ locations
		paths = append(paths,
			"C:\\OSGeo4W64\\bin",
			"C:\\OSGeo4W\\bin",
			"C:\\Program Files\\PROJ\\bin",
		)

	case "freebsd":
		if ldPath := os.Getenv("LD_LIBRARY_PATH"); ldPath != "" {
			paths = append(paths, filepath.SplitList(ldPath)...)
		}
		paths = append(paths,
			"/usr/local/lib",
			"/usr/lib",
		)
	}

	// Conda environments carry their own PROJ build.
	if prefix := os.Getenv("CONDA_PREFIX"); prefix != "" {
		if runtime.GOOS == "windows" {
			paths = append(paths, filepath.Join(prefix, "Library", "bin"))
		} else {
			paths = append(paths, filepath.Join(prefix, "lib"))
		}
	}

	return paths
}

// EngineVersion returns the PROJ release string reported by the bridge.
// Returns "" if libraries are not loaded.
func EngineVersion() string {
	if !loaded || engineVersion == nil {
		return ""
	}
	return engineVersion()
}

// BridgeABIVersion returns the projbridge ABI generation.
// Returns 0 if libraries are not loaded.
func BridgeABIVersion() int32 {
	if !loaded || bridgeABIVersion == nil {
		return 0
	}
	return bridgeABIVersion()
}

// LibProj returns the libproj library handle.
func LibProj() uintptr {
	return libProj
}

// LibProjBridge returns the libprojbridge library handle.
func LibProjBridge() uintptr {
	return libBridge
}
