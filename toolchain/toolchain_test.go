package toolchain

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeInvoker records commands and replays canned results.
type fakeInvoker struct {
	calls   [][]string
	results map[string]Result
}

func (fi *fakeInvoker) Run(ctx context.Context, name string, args ...string) Result {
	fi.calls = append(fi.calls, append([]string{name}, args...))

	res, ok := fi.results[name]
	if !ok {
		return Result{Tool: name, Args: args, ExitCode: -1, Err: exec.ErrNotFound}
	}

	res.Tool = name
	res.Args = args
	return res
}

func newFakeToolchain(fi *fakeInvoker) (*Toolchain, *bytes.Buffer, *bytes.Buffer) {
	var stdout, stderr bytes.Buffer
	return &Toolchain{
		Invoker:      fi,
		Disassembler: "llvm-dis",
		Linker:       "clang",
		Stdout:       &stdout,
		Stderr:       &stderr,
	}, &stdout, &stderr
}

func TestDisassembleCommand(t *testing.T) {
	fi := &fakeInvoker{results: map[string]Result{
		"llvm-dis": {Ran: true, Stdout: []byte("declare void @puts(ptr)\n"), Stderr: []byte("note\n")},
	}}
	tc, stdout, stderr := newFakeToolchain(fi)

	res, err := tc.Disassemble(context.Background(), "out.bc")
	require.NoError(t, err)
	assert.True(t, res.Success())

	assert.Equal(t, [][]string{{"llvm-dis", "-o", "-", "out.bc"}}, fi.calls)
	assert.Equal(t, "declare void @puts(ptr)\n", stdout.String())
	assert.Equal(t, "note\n", stderr.String())
}

func TestLinkCommand(t *testing.T) {
	fi := &fakeInvoker{results: map[string]Result{"clang": {Ran: true}}}
	tc, _, _ := newFakeToolchain(fi)
	tc.LinkArgs = []string{"-no-pie"}

	_, err := tc.Link(context.Background(), "hello.o", "hello")
	require.NoError(t, err)

	assert.Equal(t, [][]string{{"clang", "hello.o", "-o", "hello", "-lc", "-no-pie"}}, fi.calls)
}

func TestToolErrorKinds(t *testing.T) {
	fi := &fakeInvoker{results: map[string]Result{
		"clang": {Ran: true, ExitCode: 1, Stderr: []byte("ld: cannot find hello.o\n")},
	}}
	tc, _, stderr := newFakeToolchain(fi)

	_, err := tc.Link(context.Background(), "hello.o", "hello")
	var te *ToolError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, ExitedNonZero, te.Kind)
	assert.Equal(t, 1, te.ExitCode)
	assert.Equal(t, "clang exited with status 1", te.Error())
	assert.Equal(t, "ld: cannot find hello.o\n", te.Stderr)

	// The diagnostics reach the user once, through the forwarded stream.
	assert.Equal(t, "ld: cannot find hello.o\n", stderr.String())

	tc.Disassembler = "no-such-disassembler"
	_, err = tc.Disassemble(context.Background(), "out.bc")
	require.ErrorAs(t, err, &te)
	assert.Equal(t, LaunchFailed, te.Kind)
	assert.Contains(t, te.Error(), "failed to run no-such-disassembler")
}

func requireShell(t *testing.T) {
	t.Helper()

	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
}

func TestExecInvoker(t *testing.T) {
	requireShell(t)

	inv := ExecInvoker{}

	res := inv.Run(context.Background(), "sh", "-c", "echo out; echo err >&2")
	assert.True(t, res.Success())
	assert.Equal(t, "out\n", string(res.Stdout))
	assert.Equal(t, "err\n", string(res.Stderr))

	res = inv.Run(context.Background(), "sh", "-c", "exit 3")
	assert.True(t, res.Ran)
	assert.Equal(t, 3, res.ExitCode)
	assert.False(t, res.Success())

	res = inv.Run(context.Background(), "definitely-not-a-real-tool-xyz")
	assert.False(t, res.Ran)
	assert.Equal(t, -1, res.ExitCode)
	assert.Error(t, res.Err)
}

func TestExecInvokerTimeout(t *testing.T) {
	requireShell(t)

	inv := ExecInvoker{Timeout: 50 * time.Millisecond}

	start := time.Now()
	res := inv.Run(context.Background(), "sh", "-c", "exec sleep 5")
	assert.Less(t, time.Since(start), 4*time.Second)

	assert.True(t, res.Ran)
	assert.False(t, res.Success())
	require.Error(t, res.Err)

	var te *ToolError
	require.ErrorAs(t, resultError(res), &te)
	assert.Equal(t, ExitedNonZero, te.Kind)
}

func TestFindTool(t *testing.T) {
	requireShell(t)

	path, err := FindTool("definitely-not-a-real-tool-xyz", "sh")
	require.NoError(t, err)
	assert.Contains(t, path, "sh")

	_, err = FindTool("definitely-not-a-real-tool-xyz")
	var te *ToolError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, LaunchFailed, te.Kind)
}

// fakeTools creates empty executables named after the given tools in a
// directory which becomes the only PATH entry.
func fakeTools(t *testing.T, names ...string) string {
	t.Helper()

	dir := t.TempDir()
	for _, name := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("#!/bin/sh\n"), 0o755))
	}

	t.Setenv("PATH", dir)
	return dir
}

func versionResult(banner string) Result {
	return Result{Ran: true, Stdout: []byte(banner)}
}

func TestDisassemblerNames(t *testing.T) {
	names := DisassemblerNames(17)
	assert.Equal(t, "llvm-dis-17", names[0])
	assert.Equal(t, "/usr/lib/llvm-17/bin/llvm-dis", names[1])
	assert.Equal(t, "llvm-dis", names[len(names)-1])
}

func TestToolMajorVersion(t *testing.T) {
	fi := &fakeInvoker{results: map[string]Result{
		"debian":   versionResult("Debian LLVM version 14.0.6\n\n  Optimized build.\n"),
		"homebrew": versionResult("Homebrew LLVM version 17.0.6\n"),
		"garbage":  versionResult("something else\n"),
	}}

	major, ok := ToolMajorVersion(context.Background(), fi, "debian")
	require.True(t, ok)
	assert.Equal(t, 14, major)

	major, ok = ToolMajorVersion(context.Background(), fi, "homebrew")
	require.True(t, ok)
	assert.Equal(t, 17, major)

	_, ok = ToolMajorVersion(context.Background(), fi, "garbage")
	assert.False(t, ok)

	_, ok = ToolMajorVersion(context.Background(), fi, "missing")
	assert.False(t, ok)
}

func TestFindDisassemblerRejectsOtherVersions(t *testing.T) {
	dir := fakeTools(t, "llvm-dis")
	fi := &fakeInvoker{results: map[string]Result{
		filepath.Join(dir, "llvm-dis"): versionResult("Debian LLVM version 14.0.6\n"),
	}}

	_, err := FindDisassembler(context.Background(), fi, 99)
	var te *ToolError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, LaunchFailed, te.Kind)

	// A toolchain without a matching disassembler reports a launch failure
	// instead of running the mismatched one.
	tc := New(context.Background(), fi, 99)
	assert.Equal(t, "llvm-dis-99", tc.Disassembler)
}

func TestFindDisassemblerPrefersVersionedName(t *testing.T) {
	dir := fakeTools(t, "llvm-dis", "llvm-dis-99")
	fi := &fakeInvoker{results: map[string]Result{
		filepath.Join(dir, "llvm-dis"):    versionResult("LLVM version 99.1.0\n"),
		filepath.Join(dir, "llvm-dis-99"): versionResult("LLVM version 99.1.0\n"),
	}}

	path, err := FindDisassembler(context.Background(), fi, 99)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "llvm-dis-99"), path)
}

func TestFindDisassemblerAcceptsMatchingDefault(t *testing.T) {
	dir := fakeTools(t, "llvm-dis")
	fi := &fakeInvoker{results: map[string]Result{
		filepath.Join(dir, "llvm-dis"): versionResult("Ubuntu LLVM version 99.0.1\n"),
	}}

	path, err := FindDisassembler(context.Background(), fi, 99)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "llvm-dis"), path)
}
