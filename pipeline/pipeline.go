// Package pipeline drives a compilation through its stages: build the module,
// resolve the target, emit bitcode and object code, disassemble the bitcode,
// link the executable and optionally run it.  Fatal stage failures stop the
// pipeline; diagnostic stages only produce warnings.
package pipeline

import (
	"context"
	"runtime"

	"aotc/codegen"
	"aotc/generate"
	"aotc/llc"
	"aotc/report"
	"aotc/target"
	"aotc/toolchain"
)

// Config is everything the pipeline needs to know about one compilation.
type Config struct {
	// Program is what to build.
	Program  generate.Program
	Frontend generate.Frontend

	// Target and Paths are how and where to build it.
	Target target.Config
	Paths  codegen.Paths

	// EmitAssembly also writes the assembly of the module.
	EmitAssembly bool

	// Run runs the executable once it is linked.
	Run bool
}

// DefaultConfig returns the configuration of the demo.
func DefaultConfig() Config {
	return Config{
		Program:  generate.DefaultProgram(),
		Frontend: generate.FrontendBuilder,
		Target:   target.DefaultConfig(),
		Paths:    codegen.DefaultPaths(),
	}
}

// Outcome is the result of a pipeline run.
type Outcome struct {
	// State is the last state the pipeline reached.
	State State

	Paths codegen.Paths

	// Triple and CPU describe the resolved target machine.
	Triple string
	CPU    string

	// Warnings are the non-fatal stage failures.
	Warnings []*StageError

	// Disassembly is the textual IR printed by the disassembler.
	Disassembly []byte

	// ExitCode and Output are the result of running the executable.
	ExitCode int
	Output   []byte
}

// Pipeline runs compilations.
type Pipeline struct {
	cfg Config
	tc  *toolchain.Toolchain
}

// New creates a new pipeline running external tools through tc.
func New(cfg Config, tc *toolchain.Toolchain) *Pipeline {
	return &Pipeline{cfg: cfg, tc: tc}
}

// Run runs the full pipeline.  A fatal failure is returned as a *StageError
// along with the outcome up to that point.
func (p *Pipeline) Run(ctx context.Context) (*Outcome, error) {
	out := &Outcome{State: Init, Paths: p.cfg.Paths, ExitCode: -1}

	llctx := llc.NewContext()
	defer llctx.Dispose()

	// Init -> ModuleBuilt
	mod, err := generate.Build(llctx, p.cfg.Program, p.cfg.Frontend)
	if err != nil {
		return p.fail(out, StageBuild, err)
	}

	p.advance(out, ModuleBuilt, StageBuild, "module `%s` (%s frontend)", p.cfg.Program.ModuleName, p.cfg.Frontend)

	// ModuleBuilt -> TargetResolved
	machine, err := target.Resolve(llctx, p.cfg.Target)
	if err != nil {
		return p.fail(out, StageTarget, err)
	}

	// Both artifacts describe the same target from here on.
	machine.Apply(mod)

	out.Triple = machine.Triple()
	out.CPU = machine.CPU()

	report.LogDebug(
		"resolved target machine",
		"triple", out.Triple,
		"cpu", out.CPU,
		"features", machine.Features(),
		"opt", target.OptLevelName(p.cfg.Target.OptLevel),
		"reloc", target.RelocModeName(p.cfg.Target.Reloc),
		"code-model", target.CodeModelName(p.cfg.Target.CodeModel),
	)
	p.advance(out, TargetResolved, StageTarget, "%s (cpu %s)", out.Triple, out.CPU)

	// TargetResolved -> BitcodeWritten.  The bitcode is only diagnostic.
	bitcodeWritten := false
	if err := codegen.EmitBitcode(mod, p.cfg.Paths.Bitcode); err != nil {
		p.warn(out, StageBitcode, err)
	} else {
		bitcodeWritten = true
		p.advance(out, BitcodeWritten, StageBitcode, "wrote %s", p.cfg.Paths.Bitcode)
	}

	// BitcodeWritten -> ObjectWritten
	if err := codegen.EmitObject(machine, mod, p.cfg.Paths.Object); err != nil {
		return p.fail(out, StageObject, err)
	}

	p.advance(out, ObjectWritten, StageObject, "wrote %s", p.cfg.Paths.Object)

	if p.cfg.EmitAssembly {
		if err := codegen.EmitAssembly(machine, mod, p.cfg.Paths.Assembly); err != nil {
			p.warn(out, StageAssembly, err)
		} else {
			report.ReportStageDone(string(StageAssembly), "wrote %s", p.cfg.Paths.Assembly)
		}
	}

	// ObjectWritten -> Disassembled
	if bitcodeWritten {
		res, err := p.tc.Disassemble(ctx, p.cfg.Paths.Bitcode)
		if err != nil {
			p.warn(out, StageDisassemble, err)
		} else {
			out.Disassembly = res.Stdout
			p.advance(out, Disassembled, StageDisassemble, "%s", p.cfg.Paths.Bitcode)
		}
	} else {
		report.ReportInfo("skipping disassembly: no bitcode was written")
	}

	// Disassembled -> Linked
	if _, err := p.tc.Link(ctx, p.cfg.Paths.Object, p.cfg.Paths.Executable, p.linkArgs()...); err != nil {
		return p.fail(out, StageLink, err)
	}

	p.advance(out, Linked, StageLink, "wrote %s", p.cfg.Paths.Executable)

	if !p.cfg.Run {
		return out, nil
	}

	// Linked -> Executed
	res, err := p.tc.Execute(ctx, p.cfg.Paths.ExecutableCommand())
	out.ExitCode = res.ExitCode
	out.Output = res.Stdout

	if err != nil {
		se := classify(StageRun, err)
		if se.Kind == ToolLaunchError {
			return p.fail(out, StageRun, err)
		}

		// A non-zero status is the program's own business.
		p.warn(out, StageRun, err)
		return out, nil
	}

	p.advance(out, Executed, StageRun, "%s exited with status %d", p.cfg.Paths.Executable, res.ExitCode)
	return out, nil
}

// linkArgs returns the arguments the object file itself requires of the
// linker.  Position-dependent code cannot go into the PIE executables Linux
// toolchains produce by default.
func (p *Pipeline) linkArgs() []string {
	if runtime.GOOS != "linux" {
		return nil
	}

	switch p.cfg.Target.Reloc {
	case llc.RelocDefault, llc.RelocStatic, llc.RelocDynamicNoPic:
		return []string{"-no-pie"}
	}

	return nil
}

func (p *Pipeline) advance(out *Outcome, state State, stage Stage, msg string, args ...interface{}) {
	out.State = state
	report.ReportStageDone(string(stage), msg, args...)
}

func (p *Pipeline) warn(out *Outcome, stage Stage, err error) {
	se := classify(stage, err)
	out.Warnings = append(out.Warnings, se)
	report.ReportStageWarning(string(stage), err)
}

func (p *Pipeline) fail(out *Outcome, stage Stage, err error) (*Outcome, error) {
	se := classify(stage, err)
	report.ReportStageError(string(stage), err)
	return out, se
}
