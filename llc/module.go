package llc

/*
#include <stdlib.h>
#include "llvm-c/Core.h"
#include "llvm-c/Analysis.h"
#include "llvm-c/BitReader.h"
#include "llvm-c/BitWriter.h"
#include "llvm-c/IRReader.h"
*/
import "C"

import (
	"unsafe"

	"tlog.app/go/errors"
)

// Module represents an LLVM module.
type Module struct {
	c    C.LLVMModuleRef
	mctx C.LLVMContextRef

	// owner is the context responsible for disposing the module.
	owner *Context
}

// NewModule creates a new, empty module with the given name in the context.
func (ctx *Context) NewModule(name string) *Module {
	cname := C.CString(name)
	defer C.free(unsafe.Pointer(cname))

	m := &Module{c: C.LLVMModuleCreateWithNameInContext(cname, ctx.c), mctx: ctx.c, owner: ctx}
	ctx.takeOwnership(m)
	return m
}

// NewModuleFromIR creates a new module using from the given string of LLVM IR
// in the given context.
func (ctx *Context) NewModuleFromIR(name, irString string) (*Module, error) {
	cname := C.CString(name)
	defer C.free(unsafe.Pointer(cname))

	cir := C.CString(irString)
	defer C.free(unsafe.Pointer(cir))

	// The parser takes ownership of the buffer so it is not disposed here.
	memBuff := C.LLVMCreateMemoryBufferWithMemoryRangeCopy(cir, (C.size_t)(len(irString)), cname)

	var modPtr C.LLVMModuleRef
	var msg *C.char
	if C.LLVMParseIRInContext(ctx.c, memBuff, byref(&modPtr), byref(&msg)) != 0 {
		return nil, errors.New("parse ir: %s", takeMessage(msg))
	}

	m := &Module{c: modPtr, mctx: ctx.c, owner: ctx}
	ctx.takeOwnership(m)
	return m, nil
}

// NewModuleFromBitcode reads a module back from its bitcode encoding.
func (ctx *Context) NewModuleFromBitcode(name string, bitcode []byte) (*Module, error) {
	if len(bitcode) == 0 {
		return nil, errors.New("parse bitcode: empty input")
	}

	cname := C.CString(name)
	defer C.free(unsafe.Pointer(cname))

	memBuff := C.LLVMCreateMemoryBufferWithMemoryRangeCopy(
		(*C.char)(unsafe.Pointer(&bitcode[0])),
		(C.size_t)(len(bitcode)),
		cname,
	)
	defer C.LLVMDisposeMemoryBuffer(memBuff)

	var modPtr C.LLVMModuleRef
	if C.LLVMParseBitcodeInContext2(ctx.c, memBuff, byref(&modPtr)) != 0 {
		return nil, errors.New("parse bitcode: invalid bitcode for %s", name)
	}

	m := &Module{c: modPtr, mctx: ctx.c, owner: ctx}
	ctx.takeOwnership(m)
	return m, nil
}

// Clone returns a deep copy of the module owned by the same context.
func (m *Module) Clone() *Module {
	clone := &Module{c: C.LLVMCloneModule(m.c), mctx: m.mctx, owner: m.owner}
	m.owner.takeOwnership(clone)
	return clone
}

// dispose disposes of the current module.
func (m *Module) dispose() {
	C.LLVMDisposeModule(m.c)
}

// Dump prints the LLVM IR of the module to standard error.
func (m *Module) Dump() {
	C.LLVMDumpModule(m.c)
}

// String returns the textual LLVM IR of the module.
func (m *Module) String() string {
	return takeMessage(C.LLVMPrintModuleToString(m.c))
}

// WriteToFile writes the LLVM IR of the module to a file.
func (m *Module) WriteToFile(filepath string) error {
	var errMsg *C.char

	cfpath := C.CString(filepath)
	defer C.free(unsafe.Pointer(cfpath))

	if C.LLVMPrintModuleToFile(m.c, cfpath, byref(&errMsg)) != 0 {
		return errors.New("%s", takeMessage(errMsg))
	}

	return nil
}

// Bitcode serializes the module to its bitcode encoding.
func (m *Module) Bitcode() []byte {
	buff := C.LLVMWriteBitcodeToMemoryBuffer(m.c)
	defer C.LLVMDisposeMemoryBuffer(buff)

	return bufferBytes(buff)
}

// -----------------------------------------------------------------------------

// Name returns the name of the module.
func (m *Module) Name() string {
	var strlen C.size_t
	str := C.LLVMGetModuleIdentifier(m.c, byref(&strlen))
	return C.GoStringN(str, (C.int)(strlen))
}

// SetName sets the name of the module.
func (m *Module) SetName(name string) {
	cname := C.CString(name)
	defer C.free(unsafe.Pointer(cname))
	C.LLVMSetModuleIdentifier(m.c, cname, (C.size_t)(len(name)))
}

// SourceFileName returns the source file name of the module.
func (m *Module) SourceFileName() string {
	var strlen C.size_t
	cname := C.LLVMGetSourceFileName(m.c, byref(&strlen))
	return C.GoStringN(cname, (C.int)(strlen))
}

// SetSourceFileName sets the source file name of the module to fname.
func (m *Module) SetSourceFileName(name string) {
	cname := C.CString(name)
	defer C.free(unsafe.Pointer(cname))
	C.LLVMSetSourceFileName(m.c, cname, (C.size_t)(len(name)))
}

// DataLayout returns the data layout string of the module.
func (m *Module) DataLayout() string {
	return C.GoString(C.LLVMGetDataLayoutStr(m.c))
}

// SetDataLayout sets the data layout string of the module.
func (m *Module) SetDataLayout(layout string) {
	clayout := C.CString(layout)
	defer C.free(unsafe.Pointer(clayout))
	C.LLVMSetDataLayout(m.c, clayout)
}

// TargetTriple returns the target triple string of the module.
func (m *Module) TargetTriple() string {
	return C.GoString(C.LLVMGetTarget(m.c))
}

// SetTargetTriple sets the target triple string of the module.
func (m *Module) SetTargetTriple(triple string) {
	ctriple := C.CString(triple)
	defer C.free(unsafe.Pointer(ctriple))
	C.LLVMSetTarget(m.c, ctriple)
}

// -----------------------------------------------------------------------------

// AddFunction adds a new function the module.
func (m *Module) AddFunction(name string, funcType FunctionType) (fn Function) {
	cname := C.CString(name)
	defer C.free(unsafe.Pointer(cname))

	fn.c = C.LLVMAddFunction(m.c, cname, funcType.c)
	fn.mctx = m.mctx
	return
}

// GetFunction returns the declared function corresponding to name.
func (m *Module) GetFunction(name string) (fn Function, exists bool) {
	cname := C.CString(name)
	defer C.free(unsafe.Pointer(cname))

	fnPtr := C.LLVMGetNamedFunction(m.c, cname)
	if fnPtr == nil {
		return Function{}, false
	}

	fn.c = fnPtr
	fn.mctx = m.mctx
	return fn, true
}

// GetGlobal returns the global variable corresponding to name.
func (m *Module) GetGlobal(name string) (gv GlobalVariable, exists bool) {
	cname := C.CString(name)
	defer C.free(unsafe.Pointer(cname))

	gvPtr := C.LLVMGetNamedGlobal(m.c, cname)
	if gvPtr == nil {
		return GlobalVariable{}, false
	}

	gv.c = gvPtr
	return gv, true
}

// funcIter is an iterator over the functions of a module.
type funcIter struct {
	mctx       C.LLVMContextRef
	curr, next C.LLVMValueRef
}

func (it *funcIter) Item() (fn Function) {
	fn.c = it.curr
	fn.mctx = it.mctx
	return
}

func (it *funcIter) Next() bool {
	it.curr = it.next
	if it.curr == nil {
		return false
	}

	it.next = C.LLVMGetNextFunction(it.curr)
	return true
}

// Functions returns an iterator of the functions of the module.
func (m *Module) Functions() Iterator[Function] {
	return &funcIter{mctx: m.mctx, next: C.LLVMGetFirstFunction(m.c)}
}

// globalIter is an iterator over the global variables of a module.
type globalIter struct {
	curr, next C.LLVMValueRef
}

func (it *globalIter) Item() (gv GlobalVariable) {
	gv.c = it.curr
	return
}

func (it *globalIter) Next() bool {
	it.curr = it.next
	if it.curr == nil {
		return false
	}

	it.next = C.LLVMGetNextGlobal(it.curr)
	return true
}

// Globals returns an iterator of the global variables of the module.
func (m *Module) Globals() Iterator[GlobalVariable] {
	return &globalIter{next: C.LLVMGetFirstGlobal(m.c)}
}

// -----------------------------------------------------------------------------

// Verify verifies that the module is correct/well-formed.
func (m *Module) Verify() error {
	var cmsg *C.char

	if C.LLVMVerifyModule(m.c, C.LLVMReturnStatusAction, byref(&cmsg)) != 0 {
		return errors.New("%s", takeMessage(cmsg))
	}

	// LLVM may allocate an empty message even on success.
	takeMessage(cmsg)
	return nil
}
