package llc

/*
#include <stdlib.h>
#include "llvm-c/Core.h"
*/
import "C"

import (
	"fmt"
	"unsafe"
)

// OpCode represents an LLVM instruction opcode.
type OpCode C.LLVMOpcode

// Enumeration of opcodes.  Only the ones the compiler can produce or needs to
// recognize are named.
const (
	OpRet         OpCode = C.LLVMRet
	OpBr          OpCode = C.LLVMBr
	OpSwitch      OpCode = C.LLVMSwitch
	OpIndirectBr  OpCode = C.LLVMIndirectBr
	OpInvoke      OpCode = C.LLVMInvoke
	OpUnreachable OpCode = C.LLVMUnreachable
	OpCallBr      OpCode = C.LLVMCallBr
	OpResume      OpCode = C.LLVMResume
	OpCatchSwitch OpCode = C.LLVMCatchSwitch
	OpCatchRet    OpCode = C.LLVMCatchRet
	OpCleanupRet  OpCode = C.LLVMCleanupRet
	OpAlloca      OpCode = C.LLVMAlloca
	OpLoad        OpCode = C.LLVMLoad
	OpStore       OpCode = C.LLVMStore
	OpGEP         OpCode = C.LLVMGetElementPtr
	OpBitCast     OpCode = C.LLVMBitCast
	OpCall        OpCode = C.LLVMCall
)

var opNames = map[OpCode]string{
	OpRet:         "ret",
	OpBr:          "br",
	OpSwitch:      "switch",
	OpIndirectBr:  "indirectbr",
	OpInvoke:      "invoke",
	OpUnreachable: "unreachable",
	OpCallBr:      "callbr",
	OpResume:      "resume",
	OpCatchSwitch: "catchswitch",
	OpCatchRet:    "catchret",
	OpCleanupRet:  "cleanupret",
	OpAlloca:      "alloca",
	OpLoad:        "load",
	OpStore:       "store",
	OpGEP:         "getelementptr",
	OpBitCast:     "bitcast",
	OpCall:        "call",
}

func (op OpCode) String() string {
	if name, ok := opNames[op]; ok {
		return name
	}

	return fmt.Sprintf("op(%d)", int(op))
}

// -----------------------------------------------------------------------------

// Instruction represents an LLVM instruction.
type Instruction struct {
	valueBase
}

// OpCode returns the opcode of the instruction.
func (i Instruction) OpCode() OpCode {
	return OpCode(C.LLVMGetInstructionOpcode(i.c))
}

// IsTerminator returns whether the instruction is a block terminator.
func (i Instruction) IsTerminator() bool {
	return C.LLVMIsATerminatorInst(i.c) != nil
}

// CalledFunctionName returns the name of the callee for a call instruction.
func (i Instruction) CalledFunctionName() (string, bool) {
	if i.OpCode() != OpCall {
		return "", false
	}

	callee := valueBase{c: C.LLVMGetCalledValue(i.c)}
	return callee.Name(), true
}

// NumOperands returns the number of operands of the instruction.
func (i Instruction) NumOperands() int {
	return int(C.LLVMGetNumOperands(i.c))
}

// -----------------------------------------------------------------------------

// BasicBlock represents an LLVM basic block.
type BasicBlock struct {
	c C.LLVMBasicBlockRef
}

// Name returns the label of the block.
func (bb BasicBlock) Name() string {
	return C.GoString(C.LLVMGetBasicBlockName(bb.c))
}

// Terminator returns the terminator of the block if it has one.
func (bb BasicBlock) Terminator() (Instruction, bool) {
	term := C.LLVMGetBasicBlockTerminator(bb.c)
	if term == nil {
		return Instruction{}, false
	}

	return Instruction{valueBase{c: term}}, true
}

// instrIter is an iterator over the instructions of a block.
type instrIter struct {
	curr, next C.LLVMValueRef
}

func (it *instrIter) Item() Instruction {
	return Instruction{valueBase{c: it.curr}}
}

func (it *instrIter) Next() bool {
	it.curr = it.next
	if it.curr == nil {
		return false
	}

	it.next = C.LLVMGetNextInstruction(it.curr)
	return true
}

// Instructions returns an iterator over the instructions of the block.
func (bb BasicBlock) Instructions() Iterator[Instruction] {
	return &instrIter{next: C.LLVMGetFirstInstruction(bb.c)}
}

// -----------------------------------------------------------------------------

// Function represents an LLVM function.
type Function struct {
	GlobalValue

	mctx C.LLVMContextRef
}

// Signature returns the function type of the function.
func (f Function) Signature() FunctionType {
	return FunctionType{typeBase{c: C.LLVMGlobalGetValueType(f.c)}}
}

// NumBlocks returns the number of basic blocks in the function body.
func (f Function) NumBlocks() int {
	return int(C.LLVMCountBasicBlocks(f.c))
}

// AppendBlock appends a new named basic block to the function.
func (f Function) AppendBlock(name string) BasicBlock {
	cname := C.CString(name)
	defer C.free(unsafe.Pointer(cname))

	return BasicBlock{c: C.LLVMAppendBasicBlockInContext(f.mctx, f.c, cname)}
}

// blockIter is an iterator over the blocks of a function.
type blockIter struct {
	curr, next C.LLVMBasicBlockRef
}

func (it *blockIter) Item() BasicBlock {
	return BasicBlock{c: it.curr}
}

func (it *blockIter) Next() bool {
	it.curr = it.next
	if it.curr == nil {
		return false
	}

	it.next = C.LLVMGetNextBasicBlock(it.curr)
	return true
}

// Blocks returns an iterator over the blocks of the function.
func (f Function) Blocks() Iterator[BasicBlock] {
	return &blockIter{next: C.LLVMGetFirstBasicBlock(f.c)}
}
