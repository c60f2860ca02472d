package generate

import (
	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	"github.com/llir/llvm/ir/types"
)

// Reference builds the program as a pure Go llir module.  It is the model the
// LLVM module is compared against and the source of the textual frontend.
func Reference(p Program) (*ir.Module, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	mod := ir.NewModule()
	mod.SourceFilename = p.ModuleName

	extern := mod.NewFunc(p.ExternName, types.Void, ir.NewParam("", types.I8Ptr))
	extern.Linkage = enum.LinkageExternal

	msgData := constant.NewCharArrayFromString(p.Message + "\x00")
	msg := mod.NewGlobalDef(p.GlobalName, msgData)
	msg.Immutable = true
	msg.Linkage = enum.LinkagePrivate
	msg.UnnamedAddr = enum.UnnamedAddrUnnamedAddr

	var entry *ir.Func
	if p.EntryStatus {
		entry = mod.NewFunc(p.EntryName, types.I32)
	} else {
		entry = mod.NewFunc(p.EntryName, types.Void)
	}

	block := entry.NewBlock(p.BlockName)

	zero := constant.NewInt(types.I64, 0)
	msgPtr := constant.NewGetElementPtr(msgData.Typ, msg, zero, zero)
	block.NewCall(extern, msgPtr)

	if p.EntryStatus {
		block.NewRet(constant.NewInt(types.I32, 0))
	} else {
		block.NewRet(nil)
	}

	return mod, nil
}

// RenderIR renders the program as textual LLVM IR.
func RenderIR(p Program) (string, error) {
	mod, err := Reference(p)
	if err != nil {
		return "", err
	}

	return mod.String(), nil
}
