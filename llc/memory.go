package llc

/*
#include "llvm-c/Core.h"
*/
import "C"
import "unsafe"

// bufferBytes copies the contents of an LLVM memory buffer into Go memory.
func bufferBytes(buff C.LLVMMemoryBufferRef) []byte {
	size := C.LLVMGetBufferSize(buff)
	if size == 0 {
		return nil
	}

	return C.GoBytes(unsafe.Pointer(C.LLVMGetBufferStart(buff)), C.int(size))
}
