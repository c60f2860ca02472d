package pipeline

import (
	"fmt"

	"aotc/codegen"
	"aotc/generate"
	"aotc/target"
	"aotc/toolchain"
)

// State is a point reached by the pipeline.
type State int

// Enumeration of pipeline states in the order they are reached.
const (
	Init State = iota
	ModuleBuilt
	TargetResolved
	BitcodeWritten
	ObjectWritten
	Disassembled
	Linked
	Executed
)

var stateNames = [...]string{
	Init:           "Init",
	ModuleBuilt:    "ModuleBuilt",
	TargetResolved: "TargetResolved",
	BitcodeWritten: "BitcodeWritten",
	ObjectWritten:  "ObjectWritten",
	Disassembled:   "Disassembled",
	Linked:         "Linked",
	Executed:       "Executed",
}

func (s State) String() string {
	if s >= 0 && int(s) < len(stateNames) {
		return stateNames[s]
	}

	return fmt.Sprintf("State(%d)", int(s))
}

// Stage names a transition of the pipeline.
type Stage string

// Enumeration of stages.
const (
	StageBuild       Stage = "build"
	StageTarget      Stage = "target"
	StageBitcode     Stage = "bitcode"
	StageObject      Stage = "object"
	StageAssembly    Stage = "assembly"
	StageDisassemble Stage = "disassemble"
	StageLink        Stage = "link"
	StageRun         Stage = "run"
)

// ErrorKind classifies the failure of a stage.
type ErrorKind int

// Enumeration of error kinds.
const (
	BuildError ErrorKind = iota
	ConfigurationError
	ArtifactWriteError
	ToolLaunchError
	ToolExecutionError
)

var errorKindNames = [...]string{
	BuildError:         "BuildError",
	ConfigurationError: "ConfigurationError",
	ArtifactWriteError: "ArtifactWriteError",
	ToolLaunchError:    "ToolLaunchError",
	ToolExecutionError: "ToolExecutionError",
}

func (k ErrorKind) String() string {
	if k >= 0 && int(k) < len(errorKindNames) {
		return errorKindNames[k]
	}

	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// StageError is the structured failure of a single stage.
type StageError struct {
	Stage Stage
	Kind  ErrorKind
	Err   error
}

func (se *StageError) Error() string {
	return fmt.Sprintf("%s: %s: %v", se.Stage, se.Kind, se.Err)
}

func (se *StageError) Unwrap() error {
	return se.Err
}

// classify wraps the error returned by a stage into a *StageError.
func classify(stage Stage, err error) *StageError {
	se := &StageError{Stage: stage, Err: err}

	switch v := err.(type) {
	case *generate.BuildError:
		se.Kind = BuildError
	case *target.ConfigurationError:
		se.Kind = ConfigurationError
	case *codegen.WriteError:
		se.Kind = ArtifactWriteError
	case *toolchain.ToolError:
		if v.Kind == toolchain.LaunchFailed {
			se.Kind = ToolLaunchError
		} else {
			se.Kind = ToolExecutionError
		}
	default:
		// Untyped failures can only come out of the builder.
		se.Kind = BuildError
	}

	return se
}
