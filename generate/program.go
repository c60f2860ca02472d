package generate

import (
	"fmt"
	"strings"

	"tlog.app/go/errors"
)

// Program describes the tiny program the compiler builds: one external output
// routine and one entry function which calls it with a string literal.
type Program struct {
	// ModuleName is the name (and source file name) of the module.
	ModuleName string

	// ExternName is the name of the declared libc output routine.
	ExternName string

	// EntryName is the name of the entry function.
	EntryName string

	// BlockName is the label of the entry function's only block.
	BlockName string

	// GlobalName is the name of the global holding the message.
	GlobalName string

	// Message is the string literal passed to the output routine.
	Message string

	// EntryStatus makes the entry function return an `i32 0` instead of
	// nothing so the linked executable exits with status zero.
	EntryStatus bool
}

// DefaultProgram returns the demo program.
func DefaultProgram() Program {
	return Program{
		ModuleName: "print",
		ExternName: "puts",
		EntryName:  "main",
		BlockName:  "entry",
		GlobalName: "message",
		Message:    "check if the world is there",
	}
}

// Validate checks that the program can be built into a well-formed module.
func (p Program) Validate() error {
	names := []struct {
		field, value string
	}{
		{"module name", p.ModuleName},
		{"extern name", p.ExternName},
		{"entry name", p.EntryName},
		{"block name", p.BlockName},
		{"global name", p.GlobalName},
	}

	for _, n := range names {
		if n.value == "" {
			return &BuildError{Op: "validate", Err: errors.New("empty %s", n.field)}
		}
	}

	// Functions and globals share one symbol namespace within a module.
	symbols := map[string]string{}
	for _, n := range names[1:] {
		if n.field == "block name" {
			continue
		}

		if other, ok := symbols[n.value]; ok {
			return &BuildError{
				Op:  "validate",
				Err: errors.New("duplicate definition of `%s` (%s and %s)", n.value, other, n.field),
			}
		}

		symbols[n.value] = n.field
	}

	if strings.IndexByte(p.Message, 0) >= 0 {
		return &BuildError{Op: "validate", Err: errors.New("message contains a NUL byte")}
	}

	return nil
}

// BuildError is raised when the module cannot be constructed.  There is no
// dynamic input to the builder so it always indicates a defect.
type BuildError struct {
	Op  string
	Err error
}

func (be *BuildError) Error() string {
	return fmt.Sprintf("build module: %s: %v", be.Op, be.Err)
}

func (be *BuildError) Unwrap() error {
	return be.Err
}
