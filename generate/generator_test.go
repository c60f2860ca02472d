package generate

import (
	"strings"
	"testing"

	"aotc/llc"
	"aotc/verify"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateDefault(t *testing.T) {
	ctx := llc.NewContext()
	defer ctx.Dispose()

	p := DefaultProgram()
	mod, err := Generate(ctx, p)
	require.NoError(t, err)

	assert.Equal(t, "print", mod.Name())
	assert.Equal(t, "print", mod.SourceFileName())

	puts, ok := mod.GetFunction("puts")
	require.True(t, ok)
	assert.True(t, puts.IsDeclaration())
	assert.Equal(t, llc.VoidTypeKind, puts.Signature().ReturnType().Kind())
	assert.Equal(t, 1, puts.Signature().NumParams())

	main, ok := mod.GetFunction("main")
	require.True(t, ok)
	assert.Equal(t, 0, main.Signature().NumParams())
	assert.Equal(t, llc.VoidTypeKind, main.Signature().ReturnType().Kind())

	blocks := llc.Collect(main.Blocks())
	require.Len(t, blocks, 1)

	term, ok := blocks[0].Terminator()
	require.True(t, ok)
	assert.Equal(t, llc.OpRet, term.OpCode())

	msg, ok := mod.GetGlobal("message")
	require.True(t, ok)
	data, ok := msg.StringData()
	require.True(t, ok)
	assert.Equal(t, "check if the world is there\x00", string(data))
}

func TestGenerateMatchesReference(t *testing.T) {
	for _, status := range []bool{false, true} {
		ctx := llc.NewContext()

		p := DefaultProgram()
		p.EntryStatus = status

		mod, err := Generate(ctx, p)
		require.NoError(t, err)

		ref, err := Reference(p)
		require.NoError(t, err)

		want := verify.ShapeOfReference(ref)
		got := verify.ShapeOf(mod)
		assert.Empty(t, verify.Diff(want, got), "entry status %v", status)

		ctx.Dispose()
	}
}

func TestGenerateFromText(t *testing.T) {
	ctx := llc.NewContext()
	defer ctx.Dispose()

	p := DefaultProgram()
	p.Message = "from text"

	textMod, err := GenerateFromText(ctx, p)
	require.NoError(t, err)

	builtMod, err := Generate(ctx, p)
	require.NoError(t, err)

	assert.Empty(t, verify.Diff(verify.ShapeOf(builtMod), verify.ShapeOf(textMod)))
}

func TestEntryStatus(t *testing.T) {
	ctx := llc.NewContext()
	defer ctx.Dispose()

	p := DefaultProgram()
	p.EntryStatus = true

	mod, err := Build(ctx, p, FrontendBuilder)
	require.NoError(t, err)

	main, ok := mod.GetFunction("main")
	require.True(t, ok)
	assert.Equal(t, llc.IntegerTypeKind, main.Signature().ReturnType().Kind())
	assert.Contains(t, mod.String(), "ret i32 0")
}

func TestValidate(t *testing.T) {
	testcases := []struct {
		name   string
		mutate func(p *Program)
		err    string
	}{
		{name: "empty_module", mutate: func(p *Program) { p.ModuleName = "" }, err: "empty module name"},
		{name: "empty_block", mutate: func(p *Program) { p.BlockName = "" }, err: "empty block name"},
		{name: "extern_is_entry", mutate: func(p *Program) { p.ExternName = "main" }, err: "duplicate definition of `main`"},
		{name: "global_is_extern", mutate: func(p *Program) { p.GlobalName = "puts" }, err: "duplicate definition of `puts`"},
		{name: "nul_message", mutate: func(p *Program) { p.Message = "a\x00b" }, err: "NUL byte"},
	}

	for _, tc := range testcases {
		t.Run(tc.name, func(t *testing.T) {
			p := DefaultProgram()
			tc.mutate(&p)

			err := p.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.err)

			var be *BuildError
			require.ErrorAs(t, err, &be)
			assert.Equal(t, "validate", be.Op)

			ctx := llc.NewContext()
			defer ctx.Dispose()

			_, err = Generate(ctx, p)
			require.ErrorAs(t, err, &be)
		})
	}

	// The block name may coincide with a symbol name.
	p := DefaultProgram()
	p.BlockName = "main"
	assert.NoError(t, p.Validate())
}

func TestRenderIR(t *testing.T) {
	text, err := RenderIR(DefaultProgram())
	require.NoError(t, err)

	assert.Contains(t, text, `source_filename = "print"`)
	assert.Contains(t, text, "declare void @puts(")
	assert.Contains(t, text, "define void @main()")
	assert.Contains(t, text, `c"check if the world is there\00"`)
	assert.True(t, strings.Contains(text, "ret void"))
}

func TestParseFrontend(t *testing.T) {
	fe, err := ParseFrontend("")
	require.NoError(t, err)
	assert.Equal(t, FrontendBuilder, fe)

	fe, err = ParseFrontend("text")
	require.NoError(t, err)
	assert.Equal(t, FrontendText, fe)

	_, err = ParseFrontend("source")
	assert.Error(t, err)
}
