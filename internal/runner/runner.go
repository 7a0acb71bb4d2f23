// Package runner launches external commands, relays their combined output
// line by line, and reports the final exit code.
package runner

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// ErrEmptyInvocation is reported when there is no program to run.
var ErrEmptyInvocation = errors.New("empty command")

// Sink receives operational messages.
type Sink interface {
	Message(msg string)
}

// Recorder is notified of every finished Run.
type Recorder interface {
	Record(res *Result)
}

// Runner executes invocations one at a time per call. It is safe for
// concurrent use; each call owns its child process.
type Runner struct {
	Sink     Sink               // operational log; required by Run
	Log      logrus.FieldLogger // diagnostics; nil disables them
	Timeout  time.Duration      // zero = no deadline
	Dir      string             // working directory; empty = inherit
	Recorder Recorder           // optional run history
}

// Run executes inv and forwards every non-blank output line to the Sink as
// "Command Output: <line>" before the process is reaped. A launch failure is
// reported as a single "Error executing command: ..." message and the
// LaunchFailed exit code; Run never returns an error.
func (r *Runner) Run(ctx context.Context, inv Invocation) *Result {
	r.debugf("Running command: %s", inv)

	res := r.exec(ctx, inv, func(line string) {
		r.Sink.Message("Command Output: " + line)
	})
	if res.Err != nil {
		r.Sink.Message(fmt.Sprintf("Error executing command: %v", res.Err))
	}

	if r.Recorder != nil {
		r.Recorder.Record(res)
	}
	return res
}

// Follow executes inv and hands every non-blank output line to emit. Nothing
// is written to the Sink; the caller decides how to report res.Err.
func (r *Runner) Follow(ctx context.Context, inv Invocation, emit func(line string)) *Result {
	r.debugf("Following command: %s", inv)
	return r.exec(ctx, inv, emit)
}

func (r *Runner) exec(ctx context.Context, inv Invocation, emit func(string)) *Result {
	res := &Result{
		RunID:     uuid.New().String(),
		Argv:      inv.Argv(),
		StartedAt: time.Now(),
	}
	defer func() { res.Duration = time.Since(res.StartedAt) }()

	if inv.Empty() {
		res.ExitCode = LaunchFailed
		res.Err = ErrEmptyInvocation
		return res
	}

	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	argv := inv.Argv()
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = r.Dir

	// stdout and stderr share one pipe so lines keep their relative order.
	pr, pw, err := os.Pipe()
	if err != nil {
		res.ExitCode = LaunchFailed
		res.Err = fmt.Errorf("creating output pipe: %w", err)
		return res
	}
	cmd.Stdout = pw
	cmd.Stderr = pw

	if err := cmd.Start(); err != nil {
		pr.Close()
		pw.Close()
		res.ExitCode = LaunchFailed
		res.Err = err
		return res
	}
	// The child holds its own copy; ours must go so EOF can arrive.
	pw.Close()

	// A descendant the kill cannot reach (a privileged child, a background
	// grandchild) may keep the write end open; stop reading once ctx ends.
	stopClose := context.AfterFunc(ctx, func() { pr.Close() })
	res.Lines = pump(pr, emit)
	stopClose()
	pr.Close()

	waitErr := wait(ctx, cmd, KillGrace)
	switch {
	case waitErr == nil:
		res.ExitCode = 0
	case errors.Is(waitErr, errAbandoned):
		res.ExitCode = Abandoned
		r.warnf("command %q did not exit within %v of cancellation; left running", inv.Program(), KillGrace)
	default:
		var exitErr *exec.ExitError
		if errors.As(waitErr, &exitErr) {
			res.ExitCode = exitCode(exitErr)
		} else {
			res.ExitCode = LaunchFailed
			res.Err = waitErr
		}
	}
	if ctx.Err() != nil {
		r.warnf("command %q ended early: %v", inv.Program(), ctx.Err())
	}
	return res
}

// KillGrace is how long a cancelled command gets to exit before it is
// abandoned.
var KillGrace = 2 * time.Second

var errAbandoned = errors.New("process outlived its context")

// wait reaps cmd. Once ctx is done, a process that has not exited within
// grace is abandoned; its reaping continues in the background.
func wait(ctx context.Context, cmd *exec.Cmd, grace time.Duration) error {
	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
	}
	t := time.NewTimer(grace)
	defer t.Stop()
	select {
	case err := <-done:
		return err
	case <-t.C:
		return errAbandoned
	}
}

// pump reads r until EOF, emitting trimmed non-blank lines in order.
func pump(r io.Reader, emit func(string)) int {
	br := bufio.NewReader(r)
	n := 0
	for {
		line, err := br.ReadString('\n')
		if s := strings.TrimSpace(line); s != "" {
			emit(s)
			n++
		}
		if err != nil {
			return n
		}
	}
}

func (r *Runner) debugf(format string, args ...any) {
	if r.Log != nil {
		r.Log.Debugf(format, args...)
	}
}

func (r *Runner) warnf(format string, args ...any) {
	if r.Log != nil {
		r.Log.Warnf(format, args...)
	}
}
