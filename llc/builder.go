package llc

/*
#include <stdlib.h>
#include "llvm-c/Core.h"
*/
import "C"
import "unsafe"

// IRBuilder is used to build LLVM IR instructions.
type IRBuilder struct {
	c C.LLVMBuilderRef
}

// NewBuilder creates a new IR builder owned by the context.
func (c *Context) NewBuilder() *IRBuilder {
	irb := &IRBuilder{c: C.LLVMCreateBuilderInContext(c.c)}
	c.takeOwnership(irb)
	return irb
}

func (irb *IRBuilder) dispose() {
	C.LLVMDisposeBuilder(irb.c)
}

// MoveToEnd moves the builder to the end of the given block.
func (irb *IRBuilder) MoveToEnd(bb BasicBlock) {
	C.LLVMPositionBuilderAtEnd(irb.c, bb.c)
}

// -----------------------------------------------------------------------------

// BuildRet builds a `ret` instruction.  With no value it builds `ret void`.
func (irb *IRBuilder) BuildRet(values ...Value) Instruction {
	switch len(values) {
	case 0:
		return Instruction{valueBase{c: C.LLVMBuildRetVoid(irb.c)}}
	case 1:
		return Instruction{valueBase{c: C.LLVMBuildRet(irb.c, values[0].ptr())}}
	default:
		valArr := make([]C.LLVMValueRef, len(values))
		for i, value := range values {
			valArr[i] = value.ptr()
		}

		return Instruction{valueBase{c: C.LLVMBuildAggregateRet(irb.c, byref(&valArr[0]), C.uint(len(values)))}}
	}
}

// BuildCall builds a `call` instruction to fn with the given arguments.
func (irb *IRBuilder) BuildCall(fn Function, args ...Value) Instruction {
	var argArrPtr *C.LLVMValueRef
	if len(args) > 0 {
		argArr := make([]C.LLVMValueRef, len(args))
		for i, arg := range args {
			argArr[i] = arg.ptr()
		}

		argArrPtr = byref(&argArr[0])
	}

	// Calls returning void must not be named.
	cname := C.CString("")
	defer C.free(unsafe.Pointer(cname))

	sig := fn.Signature()
	return Instruction{valueBase{c: C.LLVMBuildCall2(irb.c, sig.c, fn.c, argArrPtr, C.uint(len(args)), cname)}}
}

// BuildGlobalString builds a private, unnamed_addr, NUL-terminated constant
// string global in the module of the block the builder is positioned in.
func (irb *IRBuilder) BuildGlobalString(value, name string) GlobalVariable {
	cvalue := C.CString(value)
	defer C.free(unsafe.Pointer(cvalue))

	cname := C.CString(name)
	defer C.free(unsafe.Pointer(cname))

	gv := GlobalVariable{}
	gv.c = C.LLVMBuildGlobalString(irb.c, cvalue, cname)
	return gv
}
