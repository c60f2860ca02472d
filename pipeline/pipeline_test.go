package pipeline

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"aotc/codegen"
	"aotc/generate"
	"aotc/llc"
	"aotc/toolchain"
	"aotc/verify"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubInvoker pretends to run tools: tools without a canned result cannot be
// launched.
type stubInvoker struct {
	calls   []string
	results map[string]toolchain.Result
}

func (si *stubInvoker) Run(ctx context.Context, name string, args ...string) toolchain.Result {
	si.calls = append(si.calls, name)

	res, ok := si.results[name]
	if !ok {
		return toolchain.Result{Tool: name, Args: args, ExitCode: -1, Err: exec.ErrNotFound}
	}

	res.Tool = name
	res.Args = args
	return res
}

func stubToolchain(si *stubInvoker) *toolchain.Toolchain {
	return &toolchain.Toolchain{
		Invoker:      si,
		Disassembler: "llvm-dis",
		Linker:       "clang",
		Stdout:       &bytes.Buffer{},
		Stderr:       &bytes.Buffer{},
	}
}

func tempConfig(t *testing.T) Config {
	cfg := DefaultConfig()
	cfg.Paths = codegen.DefaultPaths().In(t.TempDir())
	return cfg
}

func TestRunWithStubTools(t *testing.T) {
	si := &stubInvoker{results: map[string]toolchain.Result{
		"llvm-dis": {Ran: true, Stdout: []byte("; disassembly\n")},
		"clang":    {Ran: true},
	}}

	cfg := tempConfig(t)
	out, err := New(cfg, stubToolchain(si)).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, Linked, out.State)
	assert.Empty(t, out.Warnings)
	assert.Equal(t, "; disassembly\n", string(out.Disassembly))
	assert.Equal(t, []string{"llvm-dis", "clang"}, si.calls)
	assert.Equal(t, "generic", out.CPU)

	assert.FileExists(t, cfg.Paths.Object)

	// The bitcode describes the same target as the object file.
	bc, err := os.ReadFile(cfg.Paths.Bitcode)
	require.NoError(t, err)

	ctx := llc.NewContext()
	defer ctx.Dispose()

	back, err := ctx.NewModuleFromBitcode("back", bc)
	require.NoError(t, err)
	assert.Equal(t, out.Triple, back.TargetTriple())
	assert.NotEmpty(t, back.DataLayout())
}

func TestDisassemblerMissingIsWarning(t *testing.T) {
	si := &stubInvoker{results: map[string]toolchain.Result{"clang": {Ran: true}}}

	out, err := New(tempConfig(t), stubToolchain(si)).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, Linked, out.State)
	require.Len(t, out.Warnings, 1)
	assert.Equal(t, StageDisassemble, out.Warnings[0].Stage)
	assert.Equal(t, ToolLaunchError, out.Warnings[0].Kind)
}

func TestBitcodeFailureSkipsDisassembly(t *testing.T) {
	si := &stubInvoker{results: map[string]toolchain.Result{
		"llvm-dis": {Ran: true},
		"clang":    {Ran: true},
	}}

	cfg := tempConfig(t)
	cfg.Paths.Bitcode = filepath.Join(t.TempDir(), "missing", "out.bc")

	out, err := New(cfg, stubToolchain(si)).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, Linked, out.State)
	require.Len(t, out.Warnings, 1)
	assert.Equal(t, StageBitcode, out.Warnings[0].Stage)
	assert.Equal(t, ArtifactWriteError, out.Warnings[0].Kind)
	assert.Equal(t, []string{"clang"}, si.calls)
}

func TestLinkFailureIsFatal(t *testing.T) {
	si := &stubInvoker{results: map[string]toolchain.Result{
		"llvm-dis": {Ran: true},
		"clang":    {Ran: true, ExitCode: 1, Stderr: []byte("undefined reference\n")},
	}}

	out, err := New(tempConfig(t), stubToolchain(si)).Run(context.Background())

	var se *StageError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, StageLink, se.Stage)
	assert.Equal(t, ToolExecutionError, se.Kind)
	assert.Equal(t, Disassembled, out.State)

	si = &stubInvoker{results: map[string]toolchain.Result{"llvm-dis": {Ran: true}}}
	_, err = New(tempConfig(t), stubToolchain(si)).Run(context.Background())
	require.ErrorAs(t, err, &se)
	assert.Equal(t, ToolLaunchError, se.Kind)
}

func TestUnsupportedCPUWritesNothing(t *testing.T) {
	si := &stubInvoker{}

	cfg := tempConfig(t)
	cfg.Target.CPU = "not-a-real-cpu"

	out, err := New(cfg, stubToolchain(si)).Run(context.Background())

	var se *StageError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, StageTarget, se.Stage)
	assert.Equal(t, ConfigurationError, se.Kind)
	assert.Equal(t, ModuleBuilt, out.State)

	assert.NoFileExists(t, cfg.Paths.Object)
	assert.NoFileExists(t, cfg.Paths.Bitcode)
	assert.Empty(t, si.calls)
}

func TestBuildFailureIsFatal(t *testing.T) {
	cfg := tempConfig(t)
	cfg.Program.ExternName = cfg.Program.EntryName

	out, err := New(cfg, stubToolchain(&stubInvoker{})).Run(context.Background())

	var se *StageError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, StageBuild, se.Stage)
	assert.Equal(t, BuildError, se.Kind)
	assert.Equal(t, Init, out.State)
}

func TestStageErrorFormat(t *testing.T) {
	se := classify(StageObject, &codegen.WriteError{Artifact: "object", Path: "x.o", Err: os.ErrPermission})
	assert.Equal(t, ArtifactWriteError, se.Kind)
	assert.Equal(t, "object: ArtifactWriteError: write object `x.o`: permission denied", se.Error())
	assert.Equal(t, "Linked", Linked.String())
}

// -----------------------------------------------------------------------------

func requireTools(t *testing.T) *toolchain.Toolchain {
	t.Helper()

	inv := toolchain.ExecInvoker{Timeout: time.Minute}

	dis, err := toolchain.FindDisassembler(context.Background(), inv, llc.VersionMajor())
	if err != nil {
		t.Skipf("no llvm-dis for LLVM %s", llc.Version())
	}

	linker, err := toolchain.FindTool(toolchain.LinkerNames()...)
	if err != nil {
		t.Skip("no linker available")
	}

	return &toolchain.Toolchain{
		Invoker:      inv,
		Disassembler: dis,
		Linker:       linker,
		Stdout:       &bytes.Buffer{},
		Stderr:       &bytes.Buffer{},
	}
}

func TestEndToEnd(t *testing.T) {
	tc := requireTools(t)

	cfg := tempConfig(t)
	cfg.Program.EntryStatus = true
	cfg.Run = true

	out, err := New(cfg, tc).Run(context.Background())
	require.NoError(t, err)
	require.Empty(t, out.Warnings)

	assert.Equal(t, Executed, out.State)
	assert.FileExists(t, cfg.Paths.Bitcode)
	assert.FileExists(t, cfg.Paths.Object)
	assert.FileExists(t, cfg.Paths.Executable)

	assert.Contains(t, string(out.Disassembly), "@puts")
	assert.Contains(t, string(out.Disassembly), "check if the world is there")

	assert.Equal(t, 0, out.ExitCode)
	assert.Equal(t, "check if the world is there\n", string(out.Output))
}

func TestDisassemblyRoundTrip(t *testing.T) {
	tc := requireTools(t)

	cfg := tempConfig(t)
	out, err := New(cfg, tc).Run(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, out.Disassembly)

	ctx := llc.NewContext()
	defer ctx.Dispose()

	mod, err := generate.Generate(ctx, cfg.Program)
	require.NoError(t, err)

	back, err := verify.ShapeOfText(ctx, "disassembled", string(out.Disassembly))
	require.NoError(t, err)

	diff := verify.Diff(verify.ShapeOf(mod), back)
	assert.Empty(t, diff)
	assert.NoError(t, verify.Check(back, cfg.Program.EntryName))
}

func TestLinkMissingObject(t *testing.T) {
	tc := requireTools(t)

	dir := t.TempDir()
	_, err := tc.Link(context.Background(), filepath.Join(dir, "missing.o"), filepath.Join(dir, "exe"))

	se := classify(StageLink, err)
	assert.Equal(t, ToolExecutionError, se.Kind)
	assert.NoFileExists(t, filepath.Join(dir, "exe"))
}
