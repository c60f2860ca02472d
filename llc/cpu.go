package llc

/*
#cgo CXXFLAGS: -std=c++17
#include <stdlib.h>
#include "cpu.h"
*/
import "C"
import "unsafe"

// HasCPU returns whether the CPU name is known to the subtarget table of the
// target machine.  LLVM itself only warns about unknown CPUs and falls back to
// a generic model.
func (tm *TargetMachine) HasCPU(cpu string) bool {
	ccpu := C.CString(cpu)
	defer C.free(unsafe.Pointer(ccpu))

	return C.llcTargetMachineHasCPU(tm.c, ccpu) == 1
}
