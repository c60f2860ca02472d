// Package generate builds the demo program into an LLVM module, either directly
// through the LLVM C API or by rendering textual IR and parsing it back.
package generate

import (
	"aotc/llc"
	"aotc/verify"

	"tlog.app/go/errors"
)

// Frontend selects how a Program is turned into an LLVM module.
type Frontend string

// Enumeration of frontends.
const (
	// FrontendBuilder builds the module with the LLVM IR builder.
	FrontendBuilder Frontend = "builder"

	// FrontendText renders the program as textual IR and parses it.
	FrontendText Frontend = "text"
)

// ParseFrontend converts a frontend name into a Frontend.  An empty name
// selects the builder.
func ParseFrontend(name string) (Frontend, error) {
	switch Frontend(name) {
	case "", FrontendBuilder:
		return FrontendBuilder, nil
	case FrontendText:
		return FrontendText, nil
	}

	return "", errors.New("unknown frontend `%s`", name)
}

// Build builds the program using the given frontend.
func Build(ctx *llc.Context, p Program, fe Frontend) (*llc.Module, error) {
	if fe == FrontendText {
		return GenerateFromText(ctx, p)
	}

	return Generate(ctx, p)
}

// Generate builds the program into a new module owned by ctx.  The returned
// module has been checked both structurally and by LLVM's verifier.
func Generate(ctx *llc.Context, p Program) (*llc.Module, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	mod := ctx.NewModule(p.ModuleName)
	mod.SetSourceFileName(p.ModuleName)

	extern := mod.AddFunction(p.ExternName, llc.NewFunctionType(ctx.VoidType(), ctx.PointerType()))

	entryType := llc.NewFunctionType(ctx.VoidType())
	if p.EntryStatus {
		entryType = llc.NewFunctionType(ctx.Int32Type())
	}

	entry := mod.AddFunction(p.EntryName, entryType)

	irb := ctx.NewBuilder()
	irb.MoveToEnd(entry.AppendBlock(p.BlockName))

	msg := irb.BuildGlobalString(p.Message, p.GlobalName)
	irb.BuildCall(extern, msg)

	if p.EntryStatus {
		irb.BuildRet(llc.ConstInt(ctx.Int32Type(), 0, false))
	} else {
		irb.BuildRet()
	}

	// LLVM silently renames clashing symbols instead of failing.
	if extern.Name() != p.ExternName || entry.Name() != p.EntryName || msg.Name() != p.GlobalName {
		return nil, &BuildError{Op: "define", Err: errors.New("duplicate definition in module `%s`", p.ModuleName)}
	}

	if err := check(mod, p); err != nil {
		return nil, err
	}

	return mod, nil
}

// GenerateFromText renders the program as textual IR and parses it into a
// new module owned by ctx.
func GenerateFromText(ctx *llc.Context, p Program) (*llc.Module, error) {
	text, err := RenderIR(p)
	if err != nil {
		return nil, err
	}

	mod, err := ctx.NewModuleFromIR(p.ModuleName, text)
	if err != nil {
		return nil, &BuildError{Op: "parse", Err: err}
	}

	if err := check(mod, p); err != nil {
		return nil, err
	}

	return mod, nil
}

// check runs the structural validator and the LLVM verifier over mod.
func check(mod *llc.Module, p Program) error {
	if err := verify.Check(verify.ShapeOf(mod), p.EntryName); err != nil {
		return &BuildError{Op: "check", Err: err}
	}

	if err := mod.Verify(); err != nil {
		return &BuildError{Op: "verify", Err: errors.Wrap(err, "llvm verifier")}
	}

	return nil
}
