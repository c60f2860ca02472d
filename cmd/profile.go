package cmd

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"aotc/codegen"
	"aotc/generate"
	"aotc/llc"
	"aotc/pipeline"
	"aotc/target"
	"aotc/toolchain"

	"github.com/pelletier/go-toml"
	"tlog.app/go/errors"
)

// BuildProfile is the user-facing configuration of a compilation as it is
// encoded in TOML.  Empty fields keep their default value.
type BuildProfile struct {
	Triple    string `toml:"triple"`
	CPU       string `toml:"cpu"`
	Features  string `toml:"features"`
	OptLevel  string `toml:"opt-level"`
	Reloc     string `toml:"reloc"`
	CodeModel string `toml:"code-model"`

	OutputDir  string `toml:"output-dir"`
	Bitcode    string `toml:"bitcode"`
	Object     string `toml:"object"`
	Assembly   string `toml:"assembly"`
	Executable string `toml:"executable"`

	Disassembler string   `toml:"disassembler"`
	Linker       string   `toml:"linker"`
	LinkArgs     []string `toml:"link-args,omitempty"`
	ToolTimeout  string   `toml:"tool-timeout"`

	Frontend    string `toml:"frontend"`
	EmitAsm     bool   `toml:"emit-asm"`
	EntryStatus bool   `toml:"entry-status"`
	Run         bool   `toml:"run"`
	Message     string `toml:"message"`
}

// DefaultProfile returns the profile of the demo.
func DefaultProfile() *BuildProfile {
	paths := codegen.DefaultPaths()

	return &BuildProfile{
		CPU:         "generic",
		OptLevel:    "aggressive",
		Reloc:       "default",
		CodeModel:   "default",
		Bitcode:     paths.Bitcode,
		Object:      paths.Object,
		Assembly:    paths.Assembly,
		Executable:  paths.Executable,
		ToolTimeout: "60s",
		Frontend:    string(generate.FrontendBuilder),
		Message:     generate.DefaultProgram().Message,
	}
}

// LoadProfile loads a profile file and merges it over the defaults.
func LoadProfile(path string) (*BuildProfile, error) {
	buff, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "load profile")
	}

	return ParseProfile(buff)
}

// ParseProfile parses a TOML profile and merges it over the defaults.
func ParseProfile(buff []byte) (*BuildProfile, error) {
	bp := &BuildProfile{}
	if err := toml.Unmarshal(buff, bp); err != nil {
		return nil, errors.Wrap(err, "parse profile")
	}

	prof := DefaultProfile()
	prof.merge(bp)
	return prof, nil
}

// merge overwrites the fields of the profile with the set fields of other.
func (bp *BuildProfile) merge(other *BuildProfile) {
	mergeString := func(dst *string, src string) {
		if src != "" {
			*dst = src
		}
	}

	mergeString(&bp.Triple, other.Triple)
	mergeString(&bp.CPU, other.CPU)
	mergeString(&bp.Features, other.Features)
	mergeString(&bp.OptLevel, other.OptLevel)
	mergeString(&bp.Reloc, other.Reloc)
	mergeString(&bp.CodeModel, other.CodeModel)
	mergeString(&bp.OutputDir, other.OutputDir)
	mergeString(&bp.Bitcode, other.Bitcode)
	mergeString(&bp.Object, other.Object)
	mergeString(&bp.Assembly, other.Assembly)
	mergeString(&bp.Executable, other.Executable)
	mergeString(&bp.Disassembler, other.Disassembler)
	mergeString(&bp.Linker, other.Linker)
	mergeString(&bp.ToolTimeout, other.ToolTimeout)
	mergeString(&bp.Frontend, other.Frontend)
	mergeString(&bp.Message, other.Message)

	if len(other.LinkArgs) > 0 {
		bp.LinkArgs = append([]string(nil), other.LinkArgs...)
	}

	bp.EmitAsm = bp.EmitAsm || other.EmitAsm
	bp.EntryStatus = bp.EntryStatus || other.EntryStatus
	bp.Run = bp.Run || other.Run
}

// -----------------------------------------------------------------------------

// PipelineConfig converts the profile into a pipeline configuration.
func (bp *BuildProfile) PipelineConfig() (pipeline.Config, error) {
	cfg := pipeline.DefaultConfig()

	cfg.Program.Message = bp.Message
	cfg.Program.EntryStatus = bp.EntryStatus

	fe, err := generate.ParseFrontend(bp.Frontend)
	if err != nil {
		return cfg, err
	}
	cfg.Frontend = fe

	cfg.Target.Triple = bp.Triple
	cfg.Target.CPU = bp.CPU
	cfg.Target.Features = bp.Features

	if cfg.Target.OptLevel, err = target.ParseOptLevel(bp.OptLevel); err != nil {
		return cfg, err
	}

	if cfg.Target.Reloc, err = target.ParseRelocMode(bp.Reloc); err != nil {
		return cfg, err
	}

	if cfg.Target.CodeModel, err = target.ParseCodeModel(bp.CodeModel); err != nil {
		return cfg, err
	}

	cfg.Paths = codegen.Paths{
		Bitcode:    bp.Bitcode,
		Object:     bp.Object,
		Assembly:   bp.Assembly,
		Executable: bp.Executable,
	}.In(bp.OutputDir)

	cfg.EmitAssembly = bp.EmitAsm
	cfg.Run = bp.Run

	return cfg, nil
}

// Toolchain creates the toolchain described by the profile.
func (bp *BuildProfile) Toolchain() (*toolchain.Toolchain, error) {
	timeout, err := time.ParseDuration(bp.ToolTimeout)
	if err != nil {
		return nil, errors.Wrap(err, "invalid tool-timeout `%s`", bp.ToolTimeout)
	}

	if timeout < 0 {
		return nil, errors.New("invalid tool-timeout `%s`: must not be negative", bp.ToolTimeout)
	}

	inv := toolchain.ExecInvoker{Timeout: timeout}
	tc := toolchain.New(context.Background(), inv, llc.VersionMajor())

	if bp.Disassembler != "" {
		tc.Disassembler = bp.Disassembler
	}

	if bp.Linker != "" {
		tc.Linker = bp.Linker
	}

	tc.LinkArgs = bp.LinkArgs
	return tc, nil
}

// prepareOutputDir creates the output directory of the profile if needed.
func (bp *BuildProfile) prepareOutputDir() error {
	if bp.OutputDir == "" {
		return nil
	}

	if err := os.MkdirAll(filepath.Clean(bp.OutputDir), 0o755); err != nil {
		return errors.Wrap(err, "create output directory")
	}

	return nil
}
