package llc

/*
#include <stdlib.h>
#include "llvm-c/Core.h"
*/
import "C"
import "unsafe"

// Value represents an LLVM value.
type Value interface {
	// ptr returns the internal LLVM value pointer.
	ptr() C.LLVMValueRef

	// Type returns the type of the value.
	Type() Type

	// Name returns the name of the value.
	Name() string

	// SetName sets the name of the value.
	SetName(name string)

	// IsConstant returns whether or not the value is constant.
	IsConstant() bool

	// String returns the textual IR form of the value.
	String() string
}

// valueBase is the base struct for all LLVM values.
type valueBase struct {
	c C.LLVMValueRef
}

func (v valueBase) ptr() C.LLVMValueRef {
	return v.c
}

func (v valueBase) Type() Type {
	return typeBase{c: C.LLVMTypeOf(v.c)}
}

func (v valueBase) Name() string {
	var strlen C.size_t
	str := C.LLVMGetValueName2(v.c, byref(&strlen))
	return C.GoStringN(str, C.int(strlen))
}

func (v valueBase) SetName(name string) {
	cname := C.CString(name)
	defer C.free(unsafe.Pointer(cname))
	C.LLVMSetValueName2(v.c, cname, C.size_t(len(name)))
}

func (v valueBase) IsConstant() bool {
	return C.LLVMIsConstant(v.c) == 1
}

func (v valueBase) String() string {
	return takeMessage(C.LLVMPrintValueToString(v.c))
}

// -----------------------------------------------------------------------------

// Constant represents an LLVM constant value.
type Constant struct {
	valueBase
}

// ConstInt creates a new integer constant of the given integer type.
func ConstInt(typ IntegerType, value uint64, signExtend bool) (c Constant) {
	c.c = C.LLVMConstInt(typ.c, C.ulonglong(value), llvmBool(signExtend))
	return
}

// -----------------------------------------------------------------------------

// Linkage represents an LLVM linkage type.
type Linkage C.LLVMLinkage

// Enumeration of the linkages the compiler emits.
const (
	ExternalLinkage Linkage = C.LLVMExternalLinkage
	InternalLinkage Linkage = C.LLVMInternalLinkage
	PrivateLinkage  Linkage = C.LLVMPrivateLinkage
)

// UnnamedAddr represents an LLVM unnamed address kind.
type UnnamedAddr C.LLVMUnnamedAddr

// Enumeration of unnamed address kinds.
const (
	NoUnnamedAddr     UnnamedAddr = C.LLVMNoUnnamedAddr
	LocalUnnamedAddr  UnnamedAddr = C.LLVMLocalUnnamedAddr
	GlobalUnnamedAddr UnnamedAddr = C.LLVMGlobalUnnamedAddr
)

// GlobalValue represents an LLVM global value.
type GlobalValue struct {
	valueBase
}

// IsDeclaration returns whether the global has no definition in the module.
func (gv GlobalValue) IsDeclaration() bool {
	return C.LLVMIsDeclaration(gv.c) == 1
}

// Linkage returns the linkage of the global value.
func (gv GlobalValue) Linkage() Linkage {
	return Linkage(C.LLVMGetLinkage(gv.c))
}

// SetLinkage sets the linkage of the global value.
func (gv GlobalValue) SetLinkage(linkage Linkage) {
	C.LLVMSetLinkage(gv.c, C.LLVMLinkage(linkage))
}

// UnnamedAddr returns the unnamed address kind of the global value.
func (gv GlobalValue) UnnamedAddr() UnnamedAddr {
	return UnnamedAddr(C.LLVMGetUnnamedAddress(gv.c))
}

// SetUnnamedAddr sets the unnamed address kind of the global value.
func (gv GlobalValue) SetUnnamedAddr(kind UnnamedAddr) {
	C.LLVMSetUnnamedAddress(gv.c, C.LLVMUnnamedAddr(kind))
}

// ValueType returns the type of the value the global refers to.  For a
// function this is its function type.
func (gv GlobalValue) ValueType() Type {
	return typeBase{c: C.LLVMGlobalGetValueType(gv.c)}
}

// GlobalVariable represents an LLVM global variable.
type GlobalVariable struct {
	GlobalValue
}

// IsGlobalConstant returns whether the global variable is marked constant.
func (gv GlobalVariable) IsGlobalConstant() bool {
	return C.LLVMIsGlobalConstant(gv.c) == 1
}

// Initializer returns the initializer of the global variable if it has one.
func (gv GlobalVariable) Initializer() (Constant, bool) {
	initPtr := C.LLVMGetInitializer(gv.c)
	if initPtr == nil {
		return Constant{}, false
	}

	return Constant{valueBase{c: initPtr}}, true
}

// StringData returns the raw bytes of a constant string initializer,
// including any terminating NUL.
func (gv GlobalVariable) StringData() ([]byte, bool) {
	initVal, ok := gv.Initializer()
	if !ok || C.LLVMIsConstantString(initVal.c) == 0 {
		return nil, false
	}

	var strlen C.size_t
	str := C.LLVMGetAsString(initVal.c, byref(&strlen))
	return C.GoBytes(unsafe.Pointer(str), C.int(strlen)), true
}
