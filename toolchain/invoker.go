// Package toolchain runs the external tools of the compiler (the disassembler,
// the system linker, and the produced executable) behind a narrow interface
// that only exposes structured results.
package toolchain

import (
	"bytes"
	"context"
	"os/exec"
	"time"

	"tlog.app/go/errors"
)

// Result is the outcome of running an external tool.
type Result struct {
	// Tool and Args are the command that was run.
	Tool string
	Args []string

	// Ran indicates whether the process was started at all.
	Ran bool

	// ExitCode is the exit status of the process.  It is -1 if the process
	// did not run or was killed by a signal.
	ExitCode int

	Stdout []byte
	Stderr []byte

	// Err is the launch failure when Ran is false, or the reason the process
	// was cut short (eg. a timeout).
	Err error
}

// Success returns whether the tool ran and exited with status zero.
func (r Result) Success() bool {
	return r.Ran && r.ExitCode == 0 && r.Err == nil
}

// Invoker runs external processes.
type Invoker interface {
	Run(ctx context.Context, name string, args ...string) Result
}

// ExecInvoker runs external processes with os/exec.
type ExecInvoker struct {
	// Timeout bounds every process.  Zero means no timeout.
	Timeout time.Duration

	// Dir is the working directory of the processes.
	Dir string
}

// Run runs the named tool to completion and captures its output.
func (ei ExecInvoker) Run(ctx context.Context, name string, args ...string) Result {
	if ei.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, ei.Timeout)
		defer cancel()
	}

	var stdout, stderr bytes.Buffer

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = ei.Dir
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	// Orphaned children may hold the output pipes open after a kill.
	cmd.WaitDelay = time.Second

	res := Result{Tool: name, Args: args, ExitCode: -1}

	err := cmd.Run()

	res.Stdout = stdout.Bytes()
	res.Stderr = stderr.Bytes()

	if err == nil {
		res.Ran = true
		res.ExitCode = 0
		return res
	}

	if cmd.ProcessState != nil {
		// The tool ran but failed or was cut short.
		res.Ran = true
		res.ExitCode = cmd.ProcessState.ExitCode()

		if ctxErr := ctx.Err(); ctxErr != nil {
			res.Err = errors.Wrap(ctxErr, "%s interrupted", name)
		} else if _, ok := err.(*exec.ExitError); !ok {
			res.Err = err
		}

		return res
	}

	// Some other error: probably couldn't find the tool.
	res.Err = err
	return res
}
