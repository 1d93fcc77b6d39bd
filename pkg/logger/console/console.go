// Package console provides a logger.Instance backend writing
// human-readable output to stderr via charmbracelet/log.
package console

import (
	"os"

	"github.com/charmbracelet/log"
)

type Logger struct {
	l *log.Logger
}

type Params struct {
	Debug  bool
	Prefix string
}

func New(params Params) *Logger {
	opts := log.Options{
		ReportTimestamp: true,
		Prefix:          params.Prefix,
	}
	if params.Debug {
		opts.Level = log.DebugLevel
	}
	return &Logger{l: log.NewWithOptions(os.Stderr, opts)}
}

func (c *Logger) Log(message string, keyvals ...any)   { c.l.Print(message, keyvals...) }
func (c *Logger) Debug(message string, keyvals ...any) { c.l.Debug(message, keyvals...) }
func (c *Logger) Info(message string, keyvals ...any)  { c.l.Info(message, keyvals...) }
func (c *Logger) Warn(message string, keyvals ...any)  { c.l.Warn(message, keyvals...) }
func (c *Logger) Error(message string, keyvals ...any) { c.l.Error(message, keyvals...) }
func (c *Logger) Fatal(message string, keyvals ...any) { c.l.Fatal(message, keyvals...) }
