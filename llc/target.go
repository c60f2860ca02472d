package llc

/*
#include <stdlib.h>
#include "llvm-c/Core.h"
#include "llvm-c/TargetMachine.h"
*/
import "C"

import (
	"unsafe"

	"tlog.app/go/errors"
)

// CodeGenOptLevel represents an LLVM code generation optimization level.
type CodeGenOptLevel C.LLVMCodeGenOptLevel

// Enumeration of code generation optimization levels.
const (
	CodeGenLevelNone       CodeGenOptLevel = C.LLVMCodeGenLevelNone
	CodeGenLevelLess       CodeGenOptLevel = C.LLVMCodeGenLevelLess
	CodeGenLevelDefault    CodeGenOptLevel = C.LLVMCodeGenLevelDefault
	CodeGenLevelAggressive CodeGenOptLevel = C.LLVMCodeGenLevelAggressive
)

// RelocMode represents an LLVM relocation mode.
type RelocMode C.LLVMRelocMode

// Enumeration of relocation modes.
const (
	RelocDefault      RelocMode = C.LLVMRelocDefault
	RelocStatic       RelocMode = C.LLVMRelocStatic
	RelocPIC          RelocMode = C.LLVMRelocPIC
	RelocDynamicNoPic RelocMode = C.LLVMRelocDynamicNoPic
)

// CodeModel represents an LLVM code model.
type CodeModel C.LLVMCodeModel

// Enumeration of code models.
const (
	CodeModelDefault CodeModel = C.LLVMCodeModelDefault
	CodeModelTiny    CodeModel = C.LLVMCodeModelTiny
	CodeModelSmall   CodeModel = C.LLVMCodeModelSmall
	CodeModelKernel  CodeModel = C.LLVMCodeModelKernel
	CodeModelMedium  CodeModel = C.LLVMCodeModelMedium
	CodeModelLarge   CodeModel = C.LLVMCodeModelLarge
)

// CodeGenFileType represents an LLVM code generation output file type.
type CodeGenFileType C.LLVMCodeGenFileType

// Enumeration of code generation file types.
const (
	AssemblyFile CodeGenFileType = C.LLVMAssemblyFile
	ObjectFile   CodeGenFileType = C.LLVMObjectFile
)

// -----------------------------------------------------------------------------

// HostTriple returns the target triple of the host machine.
func HostTriple() string {
	return takeMessage(C.LLVMGetDefaultTargetTriple())
}

// HostCPUName returns the name of the host CPU.
func HostCPUName() string {
	return takeMessage(C.LLVMGetHostCPUName())
}

// HostCPUFeatures returns the feature string of the host CPU.
func HostCPUFeatures() string {
	return takeMessage(C.LLVMGetHostCPUFeatures())
}

// NormalizeTriple returns the normalized form of a target triple.
func NormalizeTriple(triple string) string {
	ctriple := C.CString(triple)
	defer C.free(unsafe.Pointer(ctriple))

	return takeMessage(C.LLVMNormalizeTargetTriple(ctriple))
}

// -----------------------------------------------------------------------------

// Target represents an LLVM target.
type Target struct {
	c C.LLVMTargetRef
}

// GetTargetFromTriple gets the target corresponding to the given triple.  The
// returned error carries LLVM's message when the triple is unknown.
func GetTargetFromTriple(triple string) (Target, error) {
	ctriple := C.CString(triple)
	defer C.free(unsafe.Pointer(ctriple))

	var t Target
	var msg *C.char
	if C.LLVMGetTargetFromTriple(ctriple, byref(&t.c), byref(&msg)) != 0 {
		return Target{}, errors.New("%s", takeMessage(msg))
	}

	takeMessage(msg)
	return t, nil
}

// Name returns the short name of the target.
func (t Target) Name() string {
	return C.GoString(C.LLVMGetTargetName(t.c))
}

// Description returns the description of the target.
func (t Target) Description() string {
	return C.GoString(C.LLVMGetTargetDescription(t.c))
}

// HasMachine returns whether or not the target has a target machine.
func (t Target) HasMachine() bool {
	return C.LLVMTargetHasTargetMachine(t.c) == 1
}

// HasAsmBackend returns whether or not the target can emit object code.
func (t Target) HasAsmBackend() bool {
	return C.LLVMTargetHasAsmBackend(t.c) == 1
}

// -----------------------------------------------------------------------------

// TargetMachine represents an LLVM target machine.
type TargetMachine struct {
	c C.LLVMTargetMachineRef
}

// NewMachine creates a new target machine owned by the context.
func (ctx *Context) NewMachine(
	target Target,
	triple, cpu, features string,
	level CodeGenOptLevel,
	reloc RelocMode,
	model CodeModel,
) *TargetMachine {
	ctriple := C.CString(triple)
	defer C.free(unsafe.Pointer(ctriple))

	ccpu := C.CString(cpu)
	defer C.free(unsafe.Pointer(ccpu))

	cfeatures := C.CString(features)
	defer C.free(unsafe.Pointer(cfeatures))

	tm := &TargetMachine{
		c: C.LLVMCreateTargetMachine(
			target.c,
			ctriple,
			ccpu,
			cfeatures,
			C.LLVMCodeGenOptLevel(level),
			C.LLVMRelocMode(reloc),
			C.LLVMCodeModel(model),
		),
	}

	ctx.takeOwnership(tm)
	return tm
}

func (tm *TargetMachine) dispose() {
	C.LLVMDisposeTargetMachine(tm.c)
}

// Triple returns the target triple of the target machine.
func (tm *TargetMachine) Triple() string {
	return takeMessage(C.LLVMGetTargetMachineTriple(tm.c))
}

// CPU returns the CPU of the target machine.
func (tm *TargetMachine) CPU() string {
	return takeMessage(C.LLVMGetTargetMachineCPU(tm.c))
}

// Features returns the feature string of the target machine.
func (tm *TargetMachine) Features() string {
	return takeMessage(C.LLVMGetTargetMachineFeatureString(tm.c))
}

// DataLayout returns the data layout string of the target machine.
func (tm *TargetMachine) DataLayout() string {
	td := C.LLVMCreateTargetDataLayout(tm.c)
	defer C.LLVMDisposeTargetData(td)

	return takeMessage(C.LLVMCopyStringRepOfTargetData(td))
}

// EmitToMemory compiles the module to the given file type and returns the
// resulting bytes.
func (tm *TargetMachine) EmitToMemory(mod *Module, fileType CodeGenFileType) ([]byte, error) {
	var buff C.LLVMMemoryBufferRef
	var msg *C.char

	if C.LLVMTargetMachineEmitToMemoryBuffer(
		tm.c,
		mod.c,
		C.LLVMCodeGenFileType(fileType),
		byref(&msg),
		byref(&buff),
	) != 0 {
		return nil, errors.New("%s", takeMessage(msg))
	}

	defer C.LLVMDisposeMemoryBuffer(buff)
	takeMessage(msg)
	return bufferBytes(buff), nil
}

// CompileModule compiles the module to the given file type and writes it
// directly to outPath.
func (tm *TargetMachine) CompileModule(mod *Module, outPath string, fileType CodeGenFileType) error {
	coutPath := C.CString(outPath)
	defer C.free(unsafe.Pointer(coutPath))

	var msg *C.char
	if C.LLVMTargetMachineEmitToFile(tm.c, mod.c, coutPath, C.LLVMCodeGenFileType(fileType), byref(&msg)) != 0 {
		return errors.New("%s", takeMessage(msg))
	}

	takeMessage(msg)
	return nil
}
