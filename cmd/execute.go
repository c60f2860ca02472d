// Package cmd implements the command line interface of the compiler.
package cmd

import (
	"context"
	"io"
	"os"
	"os/signal"

	"aotc/llc"
	"aotc/pipeline"
	"aotc/report"

	"github.com/ComedicChimera/olive"
	"github.com/kr/pretty"
)

// Execute runs the `aotc` application with the given command line and returns
// its exit status.
func Execute(args []string, stdout, stderr io.Writer) int {
	// set up the argument parser
	cli := olive.NewCLI("aotc", "aotc builds and links a tiny program through the LLVM backend", true)
	logLvlArg := cli.AddSelectorArg("loglevel", "ll", "the compiler log level", false, report.LogLevelNames())
	logLvlArg.SetDefaultValue("verbose")

	cli.AddStringArg("profile", "p", "the path to a TOML build profile", false)
	cli.AddStringArg("outdir", "o", "the directory to write the artifacts to", false)
	cli.AddStringArg("cpu", "c", "the target CPU (`native` for the host CPU)", false)
	cli.AddStringArg("triple", "t", "the target triple", false)
	cli.AddSelectorArg("opt", "O", "the optimization level", false, []string{"none", "less", "default", "aggressive"})
	cli.AddFlag("run", "r", "run the executable once it is linked")

	// run the argument parser
	result, err := olive.ParseArgs(cli, args)
	if err != nil {
		report.InitReporterTo(report.LogLevelError, stdout)
		report.ReportFatal("usage: %s", err)
		return 1
	}

	logLevel, err := report.ParseLogLevel(result.Arguments["loglevel"].(string))
	if err != nil {
		logLevel = report.LogLevelVerbose
	}
	report.InitReporterTo(logLevel, stdout)

	// load the profile and apply the command line over it
	prof := DefaultProfile()
	if profilePath, ok := result.Arguments["profile"]; ok {
		prof, err = LoadProfile(profilePath.(string))
		if err != nil {
			report.ReportFatal("%s", err)
			return 1
		}
	}

	applyArgs(prof, result.Arguments, result.HasFlag("run"))
	return build(prof, stdout, stderr)
}

// build runs a compilation described by prof and returns the exit status.
func build(prof *BuildProfile, stdout, stderr io.Writer) int {
	_, err := compile(prof, stdout, stderr)
	if err != nil {
		return 1
	}

	return 0
}

// compile runs the pipeline described by prof and reports its conclusion.
func compile(prof *BuildProfile, stdout, stderr io.Writer) (*pipeline.Outcome, error) {
	report.LogDebug("effective profile", "profile", pretty.Sprint(prof), "llvm", llc.Version())

	cfg, err := prof.PipelineConfig()
	if err != nil {
		report.ReportFatal("%s", err)
		return nil, err
	}

	tc, err := prof.Toolchain()
	if err != nil {
		report.ReportFatal("%s", err)
		return nil, err
	}
	tc.Stdout = stdout
	tc.Stderr = stderr

	if err := prof.prepareOutputDir(); err != nil {
		report.ReportFatal("%s", err)
		return nil, err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	out, err := pipeline.New(cfg, tc).Run(ctx)
	report.ReportFinished(err == nil, cfg.Paths.Executable)

	return out, err
}

// applyArgs overwrites the profile with the arguments given on the command
// line.
func applyArgs(prof *BuildProfile, arguments map[string]interface{}, run bool) {
	stringArg := func(name string, dst *string) {
		if v, ok := arguments[name]; ok {
			if s, ok := v.(string); ok && s != "" {
				*dst = s
			}
		}
	}

	stringArg("outdir", &prof.OutputDir)
	stringArg("cpu", &prof.CPU)
	stringArg("triple", &prof.Triple)
	stringArg("opt", &prof.OptLevel)

	if run {
		prof.Run = true
	}
}
