// Package report persists the outcome of every process run so earlier
// operations can be reviewed after the fact.
package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/zeebie-the-zebra/Podman-Open-WebUI-Manager-GUI/internal/runner"
)

// Store persists and retrieves run records.
type Store interface {
	Save(rec *RunRecord) error
	Load(runID string) (*RunRecord, error)
	// List returns up to n records, newest first. n <= 0 means all.
	List(n int) ([]*RunRecord, error)
}

// RunRecord is the stored form of a runner.Result.
type RunRecord struct {
	ID        string        `json:"id"`
	Argv      []string      `json:"argv"`
	ExitCode  int           `json:"exit_code"`
	Lines     int           `json:"lines"`
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration"`
	Error     string        `json:"error,omitempty"`
}

// FromResult converts a runner result.
func FromResult(res *runner.Result) *RunRecord {
	rec := &RunRecord{
		ID:        res.RunID,
		Argv:      append([]string(nil), res.Argv...),
		ExitCode:  res.ExitCode,
		Lines:     res.Lines,
		StartedAt: res.StartedAt,
		Duration:  res.Duration,
	}
	if res.Err != nil {
		rec.Error = res.Err.Error()
	}
	return rec
}

// Command returns the argv joined by spaces.
func (r *RunRecord) Command() string {
	return strings.Join(r.Argv, " ")
}

// Status summarizes the outcome in one word.
func (r *RunRecord) Status() string {
	switch {
	case r.ExitCode == runner.LaunchFailed:
		return "launch-failed"
	case r.ExitCode == runner.Abandoned:
		return "abandoned"
	case r.ExitCode == 0:
		return "ok"
	default:
		return fmt.Sprintf("exit %d", r.ExitCode)
	}
}

// ErrorHandler is told about records that could not be saved.
type ErrorHandler func(rec *RunRecord, err error)

// Recorder adapts a Store to runner.Recorder.
type Recorder struct {
	Store   Store
	OnError ErrorHandler // optional
}

// Record implements runner.Recorder.
func (r *Recorder) Record(res *runner.Result) {
	rec := FromResult(res)
	if err := r.Store.Save(rec); err != nil && r.OnError != nil {
		r.OnError(rec, err)
	}
}
