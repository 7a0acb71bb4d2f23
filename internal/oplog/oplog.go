// Package oplog writes the operational log: timestamped status lines that
// are appended to a file and published for display.
package oplog

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// TimeLayout is the timestamp format of every persisted line.
const TimeLayout = "2006-01-02 15:04:05"

// Publisher receives formatted lines for display.
type Publisher interface {
	Publish(line string)
}

// Log is the operational log. The file is append-only and never rotated.
type Log struct {
	path string
	out  Publisher
	diag logrus.FieldLogger
	now  func() time.Time

	// Serializes appends from this process. Other processes appending to
	// the same file are not coordinated with.
	mu sync.Mutex
}

// New creates a Log appending to path and publishing to out (may be nil).
func New(path string, out Publisher, diag logrus.FieldLogger) *Log {
	return &Log{path: path, out: out, diag: diag, now: time.Now}
}

// Format renders msg the way it is persisted and displayed.
func Format(t time.Time, msg string) string {
	return fmt.Sprintf("[%s] %s", t.Format(TimeLayout), msg)
}

// Path returns the log file location.
func (l *Log) Path() string {
	return l.path
}

// Message timestamps msg, appends it to the file, then publishes it.
// A failed write is reported as a diagnostic; the line is still published.
func (l *Log) Message(msg string) {
	line := Format(l.now(), msg)

	l.mu.Lock()
	err := appendLine(l.path, line)
	l.mu.Unlock()
	if err != nil && l.diag != nil {
		l.diag.WithError(err).Warn("operational log not persisted")
	}

	if l.out != nil {
		l.out.Publish(line)
	}
}

// Printf formats and logs a message.
func (l *Log) Printf(format string, args ...any) {
	l.Message(fmt.Sprintf(format, args...))
}

// ReadAll returns the whole persisted log.
func (l *Log) ReadAll() (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	data, err := os.ReadFile(l.path)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", l.path, err)
	}
	return string(data), nil
}

func appendLine(path, line string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	if _, err := f.WriteString(line + "\n"); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
