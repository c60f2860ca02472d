// Package report displays the progress and diagnostics of a compilation to the
// user.  All output goes through a global reporter which respects the selected
// log level and is synchronized.
package report

import (
	"io"
	"os"
	"strings"
	"sync"

	"github.com/pterm/pterm"
	"tlog.app/go/errors"
)

// Enumeration of the different possible log levels.
const (
	LogLevelSilent  = iota // Displays no output.
	LogLevelError          // Displays only errors to the user.
	LogLevelWarn           // Displays only warnings and errors to the user.
	LogLevelVerbose        // Displays all compilation messages to the user (default).
)

var logLevelNames = map[string]int{
	"silent":  LogLevelSilent,
	"error":   LogLevelError,
	"warn":    LogLevelWarn,
	"verbose": LogLevelVerbose,
}

// LogLevelNames returns the accepted log level names.
func LogLevelNames() []string {
	return []string{"silent", "error", "warn", "verbose"}
}

// ParseLogLevel converts a log level name into a log level.
func ParseLogLevel(name string) (int, error) {
	if level, ok := logLevelNames[strings.ToLower(name)]; ok {
		return level, nil
	}

	return 0, errors.New("unknown log level `%s`", name)
}

// Reporter is responsible for reporting errors, warnings, and other kinds of
// messages to the user during compilation.
type Reporter struct {
	// The mutex used to synchonize different report calls.
	m *sync.Mutex

	// The selected log level of the reporter.
	logLevel int

	// out receives all user-facing output.
	out io.Writer

	// logger prints structured diagnostics in verbose mode.
	logger *pterm.Logger

	// Counts of the errors and warnings reported so far.
	errorCount, warnCount int
}

// rep is the global reporter instance.
var rep *Reporter

// InitReporter initializes the global reporter to the given log level, writing
// to standard output.
func InitReporter(logLevel int) {
	InitReporterTo(logLevel, os.Stdout)
}

// InitReporterTo initializes the global reporter to the given log level,
// writing to out.
func InitReporterTo(logLevel int, out io.Writer) {
	loggerLevel := pterm.LogLevelDisabled
	if logLevel == LogLevelVerbose {
		loggerLevel = pterm.LogLevelDebug
	}

	rep = &Reporter{
		m:        &sync.Mutex{},
		logLevel: logLevel,
		out:      out,
		logger:   pterm.DefaultLogger.WithWriter(out).WithLevel(loggerLevel).WithTime(false),
	}
}

// ErrorCount returns the number of errors reported so far.
func ErrorCount() int {
	if rep == nil {
		return 0
	}

	rep.m.Lock()
	defer rep.m.Unlock()

	return rep.errorCount
}

// WarningCount returns the number of warnings reported so far.
func WarningCount() int {
	if rep == nil {
		return 0
	}

	rep.m.Lock()
	defer rep.m.Unlock()

	return rep.warnCount
}

// display prints a line if the reporter is at least at the given level.
func (r *Reporter) display(minLevel int, printer *pterm.PrefixPrinter, stage, msg string) {
	if r.logLevel < minLevel {
		return
	}

	line := msg
	if stage != "" {
		line = stageStyle.Sprint("["+stage+"]") + " " + msg
	}

	io.WriteString(r.out, printer.Sprint(line)+"\n")
}
