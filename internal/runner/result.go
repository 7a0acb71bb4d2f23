package runner

import "time"

// LaunchFailed is the exit code reported when a process could not be started.
const LaunchFailed = -1

// Abandoned is the exit code reported when a cancelled process could not be
// killed and was left running.
const Abandoned = -2

// Result holds the outcome of one process invocation.
type Result struct {
	RunID     string        // unique identifier for this run
	Argv      []string      // the invocation that was run
	ExitCode  int           // process exit code, LaunchFailed or Abandoned
	Lines     int           // non-blank output lines forwarded
	StartedAt time.Time     // when the launch was attempted
	Duration  time.Duration // until the process was reaped
	Err       error         // launch failure; nil whenever the process ran
}

// OK reports whether the process ran and exited 0.
func (r *Result) OK() bool {
	return r.Err == nil && r.ExitCode == 0
}
