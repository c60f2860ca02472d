package toolchain

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"tlog.app/go/errors"
)

// ToolErrorKind distinguishes a tool that could not be started from one that
// ran and failed.
type ToolErrorKind int

// Enumeration of tool error kinds.
const (
	LaunchFailed ToolErrorKind = iota
	ExitedNonZero
)

func (k ToolErrorKind) String() string {
	if k == LaunchFailed {
		return "launch failed"
	}

	return "exited non-zero"
}

// ToolError is raised when an external tool fails.
type ToolError struct {
	Kind     ToolErrorKind
	Tool     string
	ExitCode int

	// Stderr is the diagnostic output of the tool.  It has already been
	// forwarded to the user and is not repeated in the error message.
	Stderr string

	Err error
}

func (te *ToolError) Error() string {
	if te.Kind == LaunchFailed {
		return fmt.Sprintf("failed to run %s: %v", te.Tool, te.Err)
	}

	msg := fmt.Sprintf("%s exited with status %d", te.Tool, te.ExitCode)
	if te.Err != nil {
		msg += fmt.Sprintf(" (%v)", te.Err)
	}

	return msg
}

func (te *ToolError) Unwrap() error {
	return te.Err
}

// resultError converts an unsuccessful result into a *ToolError.
func resultError(res Result) error {
	if !res.Ran {
		return &ToolError{Kind: LaunchFailed, Tool: res.Tool, ExitCode: -1, Err: res.Err}
	}

	if res.ExitCode != 0 || res.Err != nil {
		return &ToolError{
			Kind:     ExitedNonZero,
			Tool:     res.Tool,
			ExitCode: res.ExitCode,
			Stderr:   string(res.Stderr),
			Err:      res.Err,
		}
	}

	return nil
}

// -----------------------------------------------------------------------------

// Toolchain is the set of external tools the compiler drives.
type Toolchain struct {
	Invoker Invoker

	// Disassembler is the bitcode disassembler (`llvm-dis`).
	Disassembler string

	// Linker is the C compiler driver used to link (`clang`).
	Linker string

	// LinkArgs are appended to every link command.
	LinkArgs []string

	// Stdout and Stderr receive the forwarded output of the tools.
	Stdout io.Writer
	Stderr io.Writer
}

// New returns a toolchain using a disassembler matching the given LLVM major
// version and the first linker found on the PATH.  Tools that cannot be found
// keep their canonical name so that running them reports a launch failure.
func New(ctx context.Context, inv Invoker, llvmMajor int) *Toolchain {
	tc := &Toolchain{
		Invoker:      inv,
		Disassembler: fmt.Sprintf("llvm-dis-%d", llvmMajor),
		Linker:       "clang",
		Stdout:       os.Stdout,
		Stderr:       os.Stderr,
	}

	if path, err := FindDisassembler(ctx, inv, llvmMajor); err == nil {
		tc.Disassembler = path
	}

	if path, err := FindTool(LinkerNames()...); err == nil {
		tc.Linker = path
	}

	return tc
}

// Disassemble disassembles a bitcode file to textual IR on the tool's standard
// output.  Both output streams are forwarded verbatim.
func (tc *Toolchain) Disassemble(ctx context.Context, bcPath string) (Result, error) {
	return tc.run(ctx, tc.Disassembler, "-o", "-", bcPath)
}

// Link links an object file against the C runtime into an executable.  The
// extra arguments go after the configured link arguments.
func (tc *Toolchain) Link(ctx context.Context, objPath, exePath string, extra ...string) (Result, error) {
	args := []string{objPath, "-o", exePath, "-lc"}
	args = append(args, tc.LinkArgs...)
	args = append(args, extra...)
	return tc.run(ctx, tc.Linker, args...)
}

// Execute runs a produced executable.
func (tc *Toolchain) Execute(ctx context.Context, exePath string, args ...string) (Result, error) {
	return tc.run(ctx, exePath, args...)
}

func (tc *Toolchain) run(ctx context.Context, name string, args ...string) (Result, error) {
	res := tc.Invoker.Run(ctx, name, args...)
	tc.forward(res)
	return res, resultError(res)
}

func (tc *Toolchain) forward(res Result) {
	if tc.Stdout != nil && len(res.Stdout) > 0 {
		tc.Stdout.Write(res.Stdout)
	}

	if tc.Stderr != nil && len(res.Stderr) > 0 {
		tc.Stderr.Write(res.Stderr)
	}
}

// -----------------------------------------------------------------------------

// DisassemblerNames returns the candidate names of the bitcode disassembler
// for an LLVM major version, most preferred first.
func DisassemblerNames(llvmMajor int) []string {
	return []string{
		fmt.Sprintf("llvm-dis-%d", llvmMajor),
		filepath.Join("/usr/lib", fmt.Sprintf("llvm-%d", llvmMajor), "bin", "llvm-dis"),
		"llvm-dis",
	}
}

var llvmVersionPattern = regexp.MustCompile(`LLVM version (\d+)\.`)

// ToolMajorVersion returns the LLVM major version an LLVM tool reports with
// `--version`.
func ToolMajorVersion(ctx context.Context, inv Invoker, path string) (int, bool) {
	res := inv.Run(ctx, path, "--version")
	if !res.Success() {
		return 0, false
	}

	match := llvmVersionPattern.FindSubmatch(res.Stdout)
	if match == nil {
		return 0, false
	}

	major, err := strconv.Atoi(string(match[1]))
	if err != nil {
		return 0, false
	}

	return major, true
}

// FindDisassembler returns the path of the first disassembler candidate whose
// version matches llvmMajor.  Older disassemblers cannot read newer bitcode
// and newer ones are not guaranteed to exist on the PATH, so the version is
// checked even for versioned names.
func FindDisassembler(ctx context.Context, inv Invoker, llvmMajor int) (string, error) {
	names := DisassemblerNames(llvmMajor)

	for _, name := range names {
		path, err := exec.LookPath(name)
		if err != nil {
			continue
		}

		if major, ok := ToolMajorVersion(ctx, inv, path); ok && major == llvmMajor {
			return path, nil
		}
	}

	return "", &ToolError{
		Kind: LaunchFailed,
		Tool: strings.Join(names, "|"),
		Err:  errors.New("no disassembler for LLVM %d", llvmMajor),
	}
}

// LinkerNames returns the candidate names of the linker driver, most preferred
// first.
func LinkerNames() []string {
	return []string{"clang", "cc"}
}

// FindTool returns the path of the first candidate found on the PATH.
func FindTool(names ...string) (string, error) {
	for _, name := range names {
		if path, err := exec.LookPath(name); err == nil {
			return path, nil
		}
	}

	return "", &ToolError{
		Kind: LaunchFailed,
		Tool: strings.Join(names, "|"),
		Err:  exec.ErrNotFound,
	}
}
