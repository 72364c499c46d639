package logger

import (
	"io"
	"os"

	"github.com/charmbracelet/log"
)

// Output is where every logger writes. Stdout carries the protocol streams.
var Output io.Writer = os.Stderr

// New creates a charm logger that follows the global level and formatter.
func New(prefix string) *log.Logger {
	return NewWithConfig(prefix, log.GetLevel(), false, !isTerminal(Output), currentFormatter)
}

// NewWithConfig creates a charm logger with custom options.
func NewWithConfig(prefix string, level log.Level, caller bool, showTimestamp bool, fmt log.Formatter) *log.Logger {
	return log.NewWithOptions(Output, log.Options{
		Prefix:          prefix,
		Level:           level,
		ReportCaller:    caller,
		ReportTimestamp: showTimestamp,
		Formatter:       fmt,
	})
}
