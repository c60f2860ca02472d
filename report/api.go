package report

import (
	"fmt"

	"github.com/pterm/pterm"
	"tlog.app/go/errors"
)

var (
	SuccessStyleBG = pterm.NewStyle(pterm.BgLightGreen, pterm.FgBlack)
	WarnStyleBG    = pterm.NewStyle(pterm.BgYellow, pterm.FgBlack)
	ErrorStyleBG   = pterm.NewStyle(pterm.BgRed, pterm.FgWhite)
	InfoStyleBG    = pterm.NewStyle(pterm.BgCyan, pterm.FgBlack)

	stageStyle = pterm.NewStyle(pterm.FgLightCyan)
)

var (
	donePrinter = &pterm.PrefixPrinter{
		MessageStyle: pterm.NewStyle(pterm.FgDefault),
		Prefix:       pterm.Prefix{Style: SuccessStyleBG, Text: "Done"},
	}

	warnPrinter = &pterm.PrefixPrinter{
		MessageStyle: pterm.NewStyle(pterm.FgYellow),
		Prefix:       pterm.Prefix{Style: WarnStyleBG, Text: "Warn"},
	}

	failPrinter = &pterm.PrefixPrinter{
		MessageStyle: pterm.NewStyle(pterm.FgRed),
		Prefix:       pterm.Prefix{Style: ErrorStyleBG, Text: "Fail"},
	}

	infoPrinter = &pterm.PrefixPrinter{
		MessageStyle: pterm.NewStyle(pterm.FgDefault),
		Prefix:       pterm.Prefix{Style: InfoStyleBG, Text: "Info"},
	}
)

// -----------------------------------------------------------------------------
// All report functions only display if the appropriate log level is set and do
// nothing at all if the reporter has not been initialized.

// ReportStageDone reports the successful completion of a stage.
func ReportStageDone(stage, msg string, args ...interface{}) {
	if rep == nil {
		return
	}

	rep.m.Lock()
	defer rep.m.Unlock()

	rep.display(LogLevelVerbose, donePrinter, stage, fmt.Sprintf(msg, args...))
}

// ReportStageWarning reports a non-fatal stage failure.
func ReportStageWarning(stage string, err error) {
	if rep == nil {
		return
	}

	rep.m.Lock()
	defer rep.m.Unlock()

	rep.warnCount++
	rep.display(LogLevelWarn, warnPrinter, stage, err.Error())
}

// ReportStageError reports a fatal stage failure.
func ReportStageError(stage string, err error) {
	if rep == nil {
		return
	}

	rep.m.Lock()
	defer rep.m.Unlock()

	rep.errorCount++
	rep.display(LogLevelError, failPrinter, stage, err.Error())
}

// ReportFatal reports a fatal error which is not tied to any stage: eg. bad
// command line arguments.
func ReportFatal(msg string, args ...interface{}) {
	ReportStageError("", errors.New(msg, args...))
}

// ReportInfo reports an informational message in verbose mode.
func ReportInfo(msg string, args ...interface{}) {
	if rep == nil {
		return
	}

	rep.m.Lock()
	defer rep.m.Unlock()

	rep.display(LogLevelVerbose, infoPrinter, "", fmt.Sprintf(msg, args...))
}

// ReportFinished reports the concluding message of the compilation.
func ReportFinished(ok bool, exePath string) {
	if rep == nil {
		return
	}

	rep.m.Lock()
	defer rep.m.Unlock()

	if ok {
		msg := fmt.Sprintf("built %s", exePath)
		if rep.warnCount > 0 {
			msg += fmt.Sprintf(" (%d warning(s))", rep.warnCount)
		}

		rep.display(LogLevelVerbose, donePrinter, "", msg)
	} else {
		rep.display(LogLevelError, failPrinter, "", fmt.Sprintf("compilation failed (%d error(s))", rep.errorCount))
	}
}

// LogDebug prints a structured diagnostic line in verbose mode.  The arguments
// are alternating keys and values.
func LogDebug(msg string, keyvals ...any) {
	if rep == nil {
		return
	}

	rep.m.Lock()
	defer rep.m.Unlock()

	rep.logger.Debug(msg, rep.logger.Args(keyvals...))
}
