package llc

/*
#include "llvm-c/Core.h"
*/
import "C"

// TypeKind identifies a specific kind of LLVM type.
type TypeKind C.LLVMTypeKind

// Enumeration of the type kinds the compiler inspects.
const (
	VoidTypeKind     TypeKind = C.LLVMVoidTypeKind
	IntegerTypeKind  TypeKind = C.LLVMIntegerTypeKind
	FunctionTypeKind TypeKind = C.LLVMFunctionTypeKind
	ArrayTypeKind    TypeKind = C.LLVMArrayTypeKind
	PointerTypeKind  TypeKind = C.LLVMPointerTypeKind
)

// Type is an interface used to represent all LLVM types.
type Type interface {
	// ptr returns the internal LLVM object pointer to the type.
	ptr() C.LLVMTypeRef

	// Kind returns the type's type kind.
	Kind() TypeKind

	// String returns the textual IR form of the type.
	String() string
}

// typeBase is the base struct used to build LLVM types.
type typeBase struct {
	c C.LLVMTypeRef
}

func (tb typeBase) ptr() C.LLVMTypeRef {
	return tb.c
}

func (tb typeBase) Kind() TypeKind {
	return TypeKind(C.LLVMGetTypeKind(tb.c))
}

func (tb typeBase) String() string {
	return takeMessage(C.LLVMPrintTypeToString(tb.c))
}

// -----------------------------------------------------------------------------

// IntegerType represents an LLVM integer type.
type IntegerType struct {
	typeBase
}

// BitWidth returns the bit width of the integer type.
func (it IntegerType) BitWidth() uint {
	return uint(C.LLVMGetIntTypeWidth(it.c))
}

// Int8Type returns the `i8` type in the context.
func (c *Context) Int8Type() (it IntegerType) {
	it.c = C.LLVMInt8TypeInContext(c.c)
	return
}

// Int32Type returns the `i32` type in the context.
func (c *Context) Int32Type() (it IntegerType) {
	it.c = C.LLVMInt32TypeInContext(c.c)
	return
}

// Int64Type returns the `i64` type in the context.
func (c *Context) Int64Type() (it IntegerType) {
	it.c = C.LLVMInt64TypeInContext(c.c)
	return
}

// VoidType returns the `void` type in the context.
func (c *Context) VoidType() Type {
	return typeBase{c: C.LLVMVoidTypeInContext(c.c)}
}

// -----------------------------------------------------------------------------

// PointerType represents an (opaque) LLVM pointer type.
type PointerType struct {
	typeBase
}

// PointerType returns the opaque pointer type in address space 0.
func (c *Context) PointerType() (pt PointerType) {
	pt.c = C.LLVMPointerTypeInContext(c.c, 0)
	return
}

// AddrSpace returns the address space of the pointer.
func (pt PointerType) AddrSpace() int {
	return int(C.LLVMGetPointerAddressSpace(pt.c))
}

// -----------------------------------------------------------------------------

// FunctionType represents an LLVM function type.
type FunctionType struct {
	typeBase
}

// NewFunctionType returns a new function type with no variadic argument.
func NewFunctionType(returnType Type, paramTypes ...Type) (ft FunctionType) {
	var paramArrPtr *C.LLVMTypeRef
	if len(paramTypes) > 0 {
		paramArr := make([]C.LLVMTypeRef, len(paramTypes))
		for i, paramType := range paramTypes {
			paramArr[i] = paramType.ptr()
		}

		paramArrPtr = byref(&paramArr[0])
	}

	ft.c = C.LLVMFunctionType(returnType.ptr(), paramArrPtr, C.uint(len(paramTypes)), llvmBool(false))
	return
}

// IsVarArg returns whether or not the function is variadic.
func (ft FunctionType) IsVarArg() bool {
	return C.LLVMIsFunctionVarArg(ft.c) == 1
}

// ReturnType returns the return type of the function.
func (ft FunctionType) ReturnType() Type {
	return typeBase{c: C.LLVMGetReturnType(ft.c)}
}

// NumParams returns the number of parameters of the function.
func (ft FunctionType) NumParams() int {
	return int(C.LLVMCountParamTypes(ft.c))
}

// Params returns the parameter types of the function.
func (ft FunctionType) Params() []Type {
	numParams := ft.NumParams()
	if numParams == 0 {
		return nil
	}

	paramArr := make([]C.LLVMTypeRef, numParams)
	C.LLVMGetParamTypes(ft.c, byref(&paramArr[0]))

	params := make([]Type, numParams)
	for i, paramPtr := range paramArr {
		params[i] = typeBase{c: paramPtr}
	}

	return params
}
