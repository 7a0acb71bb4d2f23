// Package logging configures the diagnostic logger. Operational messages
// meant for the user go through package oplog instead.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/sirupsen/logrus"
)

// Logger wraps logrus with the formatter used across webuictl.
type Logger struct {
	*logrus.Logger
}

// New creates a logger writing to w. An empty level falls back to debug
// when DEBUG=true and info otherwise.
func New(w io.Writer, level string) *Logger {
	l := &Logger{Logger: logrus.New()}
	l.SetOutput(w)

	tty := false
	if f, ok := w.(*os.File); ok {
		tty = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	l.SetFormatter(&logrus.TextFormatter{
		TimestampFormat: "2006/01/02 15:04:05",
		FullTimestamp:   true,
		ForceColors:     tty,
		DisableColors:   !tty,
		DisableSorting:  true,
	})

	l.SetLevel(parseLevel(level))
	return l
}

// Discard returns a logger that drops everything. Intended for tests.
func Discard() *Logger {
	l := New(io.Discard, "")
	l.SetLevel(logrus.PanicLevel)
	return l
}

func parseLevel(level string) logrus.Level {
	level = strings.TrimSpace(level)
	if level == "" {
		if os.Getenv("DEBUG") == "true" {
			return logrus.DebugLevel
		}
		return logrus.InfoLevel
	}
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return logrus.InfoLevel
	}
	return lvl
}
