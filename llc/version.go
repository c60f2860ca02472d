package llc

/*
#include "llvm/Config/llvm-config.h"
*/
import "C"
import "fmt"

// VersionMajor returns the major version of the LLVM libraries the bindings
// are built against.  Tools reading the emitted bitcode must be at least as
// new.
func VersionMajor() int {
	return int(C.LLVM_VERSION_MAJOR)
}

// Version returns the full version of the LLVM libraries.
func Version() string {
	return fmt.Sprintf("%d.%d.%d", int(C.LLVM_VERSION_MAJOR), int(C.LLVM_VERSION_MINOR), int(C.LLVM_VERSION_PATCH))
}
