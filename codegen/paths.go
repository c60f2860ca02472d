// Package codegen lowers a built module to its output artifacts: portable
// bitcode and target-specific object code (or assembly).
package codegen

import (
	"path/filepath"
	"strings"
)

// Paths is the set of artifact paths of one compilation.
type Paths struct {
	Bitcode    string
	Object     string
	Assembly   string
	Executable string
}

// DefaultPaths returns the artifact paths of the demo, relative to the
// working directory.
func DefaultPaths() Paths {
	return Paths{
		Bitcode:    "./hello_world_module.bc",
		Object:     "./hello_world.o",
		Assembly:   "./hello_world.s",
		Executable: "./hello_world",
	}
}

// In returns the paths with every relative path rebased onto dir.
func (p Paths) In(dir string) Paths {
	if dir == "" {
		return p
	}

	rebase := func(path string) string {
		if path == "" || filepath.IsAbs(path) {
			return path
		}

		return filepath.Join(dir, path)
	}

	return Paths{
		Bitcode:    rebase(p.Bitcode),
		Object:     rebase(p.Object),
		Assembly:   rebase(p.Assembly),
		Executable: rebase(p.Executable),
	}
}

// ExecutableCommand returns the path to run the executable with: bare names
// are prefixed with `./` so they are not looked up on PATH.
func (p Paths) ExecutableCommand() string {
	if filepath.IsAbs(p.Executable) || strings.ContainsRune(p.Executable, filepath.Separator) {
		return p.Executable
	}

	return "." + string(filepath.Separator) + p.Executable
}
