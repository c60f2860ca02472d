package codegen

import (
	"fmt"
	"os"
	"path/filepath"

	"aotc/llc"
	"aotc/target"

	"github.com/google/renameio/v2"
	"tlog.app/go/errors"
)

// WriteError is raised when an artifact could not be produced or written.
type WriteError struct {
	Artifact string
	Path     string
	Err      error
}

func (we *WriteError) Error() string {
	return fmt.Sprintf("write %s `%s`: %v", we.Artifact, we.Path, we.Err)
}

func (we *WriteError) Unwrap() error {
	return we.Err
}

// EmitBitcode serializes mod to bitcode and writes it to path.
func EmitBitcode(mod *llc.Module, path string) error {
	bc := mod.Bitcode()
	if len(bc) == 0 {
		return &WriteError{Artifact: "bitcode", Path: path, Err: errors.New("empty bitcode buffer")}
	}

	if err := writeAtomic(path, bc, 0o644); err != nil {
		return &WriteError{Artifact: "bitcode", Path: path, Err: err}
	}

	return nil
}

// EmitObject lowers mod through the target machine to object code and writes
// it to path.  mod itself is left untouched: the machine's triple and data
// layout are applied to a copy.
func EmitObject(m *target.Machine, mod *llc.Module, path string) error {
	return emitNative(m, mod, path, llc.ObjectFile, "object")
}

// EmitAssembly lowers mod through the target machine to assembly and writes it
// to path.
func EmitAssembly(m *target.Machine, mod *llc.Module, path string) error {
	return emitNative(m, mod, path, llc.AssemblyFile, "assembly")
}

func emitNative(m *target.Machine, mod *llc.Module, path string, fileType llc.CodeGenFileType, artifact string) error {
	if m == nil {
		return &target.ConfigurationError{
			Field:  "target",
			Value:  "<none>",
			Reason: "no resolved target machine",
		}
	}

	// The backend lowers a copy so mod stays exactly as the caller built it.
	native := mod.Clone()
	m.Apply(native)

	// Nothing touches the filesystem unless the backend succeeds.
	data, err := m.TargetMachine().EmitToMemory(native, fileType)
	if err != nil {
		return &WriteError{Artifact: artifact, Path: path, Err: errors.Wrap(err, "backend")}
	}

	if err := writeAtomic(path, data, 0o644); err != nil {
		return &WriteError{Artifact: artifact, Path: path, Err: err}
	}

	return nil
}

// writeAtomic writes data to a temporary file next to path, syncs it and
// renames it into place so that path never holds partial output.
func writeAtomic(path string, data []byte, perm os.FileMode) error {
	if err := renameio.WriteFile(path, data, perm, renameio.WithTempDir(filepath.Dir(path))); err != nil {
		return errors.Wrap(err, "write")
	}

	return nil
}
