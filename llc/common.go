// Package llc contains the cgo bindings to the LLVM C API used by the
// compiler: module construction, bitcode serialization, and target machine
// code generation.  Building it requires the LLVM development headers and
// libraries (see README.md for the CGO_* flags).
package llc

/*
#include "llvm-c/Core.h"
#include "llvm-c/Target.h"
*/
import "C"
import "unsafe"

// OwnedObject represents an LLVM object that can be disposed.
type OwnedObject interface {
	// dispose frees all the resources associated with the LLVM object.
	dispose()
}

// Context represents an LLVM context.
type Context struct {
	c C.LLVMContextRef

	// The list of LLVM objects owned by this context.
	ownedObjects []OwnedObject

	// Whether the context has already been disposed.
	disposed bool
}

// NewContext creates a new LLVM context.
func NewContext() *Context {
	return &Context{c: C.LLVMContextCreate()}
}

// takeOwnership marks the given disposable LLVM object as being owned by this
// context: this context is responsible for its disposal.
func (c *Context) takeOwnership(obj OwnedObject) {
	c.ownedObjects = append(c.ownedObjects, obj)
}

// Dispose frees all the resources associated with this context: the context
// itself and all the owned resources of this context.  Objects are disposed in
// reverse order of creation so builders and machines go before modules.
func (c *Context) Dispose() {
	if c.disposed {
		return
	}

	for i := len(c.ownedObjects) - 1; i >= 0; i-- {
		c.ownedObjects[i].dispose()
	}

	c.ownedObjects = nil
	c.disposed = true

	C.LLVMContextDispose(c.c)
}

// -----------------------------------------------------------------------------

// Iterator represents an iterator of LLVM objects.  This is needed because many
// LLVM C API's don't expose a way to access elements by index but do allow you
// to iterate over them.  The pattern for using iterators is as follows:
//
//	for it := v.Items(); it.Next(); {
//		item := it.Item()
//		..
//	}
type Iterator[T any] interface {
	// Item returns the current item the iterator is positioned over if it
	// exists.  If the item does not exist, the return value is invalid.
	Item() T

	// Next moves the iterator forward one element if an element exists. It
	// returns whether or not it was able to move the iterator forward. Next
	// should be called to get the first element.
	Next() bool
}

// Collect drains an iterator into a slice.
func Collect[T any](it Iterator[T]) []T {
	var items []T
	for it.Next() {
		items = append(items, it.Item())
	}

	return items
}

// -----------------------------------------------------------------------------

// byref passes a Go value by reference to C.
func byref[T any](v *T) *T {
	return (*T)(unsafe.Pointer(v))
}

// llvmBool converts a boolean value to an LLVMBool.
func llvmBool(v bool) C.LLVMBool {
	if v {
		return 1
	}

	return 0
}

// takeMessage converts an LLVM-allocated message to a Go string and disposes
// of the LLVM allocation.
func takeMessage(msg *C.char) string {
	if msg == nil {
		return ""
	}

	defer C.LLVMDisposeMessage(msg)
	return C.GoString(msg)
}

// -----------------------------------------------------------------------------

func init() {
	// Initialize all output targets LLVM was built with.
	C.LLVMInitializeAllTargetInfos()
	C.LLVMInitializeAllTargets()
	C.LLVMInitializeAllTargetMCs()
	C.LLVMInitializeAllAsmPrinters()
	C.LLVMInitializeAllAsmParsers()
}
