// Package verify extracts the structural shape of a module (functions, blocks,
// instruction opcodes and callees, string globals) so that modules produced in
// different ways can be checked and compared.
package verify

import (
	"fmt"
	"sort"

	"aotc/llc"

	"github.com/kr/pretty"
	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
)

// Shape is the structural summary of a module.
type Shape struct {
	Functions []FunctionShape
	Globals   []GlobalShape
}

// FunctionShape is the structural summary of a function.
type FunctionShape struct {
	Name        string
	Declaration bool
	Params      int
	Blocks      []BlockShape
}

// BlockShape is the structural summary of a basic block.
type BlockShape struct {
	Name string

	// Ops is the opcode name of each instruction, terminator included.
	Ops []string

	// Callees lists the called function of each call in order.
	Callees []string
}

// GlobalShape is the structural summary of a global variable.
type GlobalShape struct {
	Name     string
	Constant bool

	// Data is the contents of a constant string initializer.
	Data string
}

// Function returns the shape of the named function.
func (s Shape) Function(name string) (FunctionShape, bool) {
	for _, fs := range s.Functions {
		if fs.Name == name {
			return fs, true
		}
	}

	return FunctionShape{}, false
}

// Global returns the shape of the named global.
func (s Shape) Global(name string) (GlobalShape, bool) {
	for _, gs := range s.Globals {
		if gs.Name == name {
			return gs, true
		}
	}

	return GlobalShape{}, false
}

// normalize orders functions and globals by name: the textual and builder
// forms of a module may declare them in different orders.
func (s Shape) normalize() Shape {
	sort.SliceStable(s.Functions, func(i, j int) bool {
		return s.Functions[i].Name < s.Functions[j].Name
	})

	sort.SliceStable(s.Globals, func(i, j int) bool {
		return s.Globals[i].Name < s.Globals[j].Name
	})

	return s
}

// Diff returns a human-readable list of the differences between two shapes.
// It is empty when the shapes are equivalent.
func Diff(want, got Shape) []string {
	return pretty.Diff(want, got)
}

// -----------------------------------------------------------------------------

// ShapeOf extracts the shape of an LLVM module.
func ShapeOf(mod *llc.Module) Shape {
	var s Shape

	for it := mod.Functions(); it.Next(); {
		fn := it.Item()

		fs := FunctionShape{
			Name:        fn.Name(),
			Declaration: fn.IsDeclaration(),
			Params:      fn.Signature().NumParams(),
		}

		for bit := fn.Blocks(); bit.Next(); {
			bb := bit.Item()
			bs := BlockShape{Name: bb.Name()}

			for iit := bb.Instructions(); iit.Next(); {
				instr := iit.Item()
				bs.Ops = append(bs.Ops, instr.OpCode().String())

				if callee, ok := instr.CalledFunctionName(); ok {
					bs.Callees = append(bs.Callees, callee)
				}
			}

			fs.Blocks = append(fs.Blocks, bs)
		}

		s.Functions = append(s.Functions, fs)
	}

	for it := mod.Globals(); it.Next(); {
		gv := it.Item()

		gs := GlobalShape{Name: gv.Name(), Constant: gv.IsGlobalConstant()}
		if data, ok := gv.StringData(); ok {
			gs.Data = string(data)
		}

		s.Globals = append(s.Globals, gs)
	}

	return s.normalize()
}

// ShapeOfText parses textual IR into ctx and extracts its shape.
func ShapeOfText(ctx *llc.Context, name, text string) (Shape, error) {
	mod, err := ctx.NewModuleFromIR(name, text)
	if err != nil {
		return Shape{}, err
	}

	return ShapeOf(mod), nil
}

// ShapeOfReference extracts the shape of an llir module.
func ShapeOfReference(mod *ir.Module) Shape {
	var s Shape

	for _, fn := range mod.Funcs {
		fs := FunctionShape{
			Name:        fn.Name(),
			Declaration: len(fn.Blocks) == 0,
			Params:      len(fn.Params),
		}

		for _, block := range fn.Blocks {
			bs := BlockShape{Name: block.Name()}

			for _, inst := range block.Insts {
				bs.Ops = append(bs.Ops, instName(inst))

				if call, ok := inst.(*ir.InstCall); ok {
					bs.Callees = append(bs.Callees, calleeName(call))
				}
			}

			if block.Term != nil {
				bs.Ops = append(bs.Ops, termName(block.Term))
			}

			fs.Blocks = append(fs.Blocks, bs)
		}

		s.Functions = append(s.Functions, fs)
	}

	for _, gv := range mod.Globals {
		gs := GlobalShape{Name: gv.Name(), Constant: gv.Immutable}
		if arr, ok := gv.Init.(*constant.CharArray); ok {
			gs.Data = string(arr.X)
		}

		s.Globals = append(s.Globals, gs)
	}

	return s.normalize()
}

func calleeName(call *ir.InstCall) string {
	if fn, ok := call.Callee.(*ir.Func); ok {
		return fn.Name()
	}

	return call.Callee.Ident()
}

func instName(inst ir.Instruction) string {
	switch inst.(type) {
	case *ir.InstCall:
		return "call"
	case *ir.InstAlloca:
		return "alloca"
	case *ir.InstLoad:
		return "load"
	case *ir.InstStore:
		return "store"
	case *ir.InstGetElementPtr:
		return "getelementptr"
	case *ir.InstBitCast:
		return "bitcast"
	default:
		return fmt.Sprintf("%T", inst)
	}
}

func termName(term ir.Terminator) string {
	switch term.(type) {
	case *ir.TermRet:
		return "ret"
	case *ir.TermBr, *ir.TermCondBr:
		return "br"
	case *ir.TermSwitch:
		return "switch"
	case *ir.TermIndirectBr:
		return "indirectbr"
	case *ir.TermInvoke:
		return "invoke"
	case *ir.TermUnreachable:
		return "unreachable"
	case *ir.TermCallBr:
		return "callbr"
	case *ir.TermResume:
		return "resume"
	case *ir.TermCatchSwitch:
		return "catchswitch"
	case *ir.TermCatchRet:
		return "catchret"
	case *ir.TermCleanupRet:
		return "cleanupret"
	default:
		return fmt.Sprintf("%T", term)
	}
}
