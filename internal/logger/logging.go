// Package logger configures charmbracelet/log for the whole process. All
// output goes to stderr.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"golang.org/x/term"
)

var currentFormatter = log.TextFormatter

// ParseFormatter maps a config value to a charm formatter.
func ParseFormatter(name string) (log.Formatter, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "text":
		return log.TextFormatter, nil
	case "json":
		return log.JSONFormatter, nil
	case "logfmt":
		return log.LogfmtFormatter, nil
	default:
		return log.TextFormatter, fmt.Errorf("unknown log format %q", name)
	}
}

// Setup installs the default logger with the given level and format. An
// invalid value falls back to warn or text and is reported in the error.
func Setup(level, format string) error {
	var errs []string

	lvl := log.WarnLevel
	if level = strings.ToLower(strings.TrimSpace(level)); level != "" {
		parsed, err := log.ParseLevel(level)
		if err != nil {
			errs = append(errs, err.Error())
		} else {
			lvl = parsed
		}
	}
	f, err := ParseFormatter(format)
	if err != nil {
		errs = append(errs, err.Error())
	}
	currentFormatter = f

	log.SetDefault(NewWithConfig("", lvl, lvl == log.DebugLevel, !isTerminal(Output), f))
	if len(errs) > 0 {
		return fmt.Errorf("logger: %s", strings.Join(errs, "; "))
	}
	return nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
