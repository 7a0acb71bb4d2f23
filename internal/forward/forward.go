// Package forward toggles the TCP port-forwarding helper process.
//
// Two liveness modes exist. In handle mode the helper's PID and command
// line are kept in a pid record when it is started, and only that process
// is considered ours. In probe mode the process table is searched for any
// process whose command line equals the helper invocation exactly, which
// also finds helpers started by other means.
package forward

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"strconv"
	"time"

	"github.com/shirou/gopsutil/v3/process"
	"github.com/sirupsen/logrus"
	"go.uber.org/multierr"

	"github.com/zeebie-the-zebra/Podman-Open-WebUI-Manager-GUI/internal/config"
)

// Mode selects how a running helper is detected.
type Mode string

const (
	Handle Mode = "handle"
	Probe  Mode = "probe"
)

// HelperCommand returns the socat invocation that forwards listen to target.
func HelperCommand(listen int, target string) []string {
	return []string{
		"socat",
		"TCP-LISTEN:" + strconv.Itoa(listen) + ",fork",
		"TCP:" + target,
	}
}

// Record is the persisted handle of a helper started in handle mode.
type Record struct {
	PID       int32     `json:"pid"`
	Argv      []string  `json:"argv"`
	StartedAt time.Time `json:"started_at"`
}

// DefaultSettle is how long a freshly started helper must stay up to count
// as started.
const DefaultSettle = 200 * time.Millisecond

// Forwarder starts, stops and inspects the helper process.
type Forwarder struct {
	Argv   []string
	Mode   Mode
	State  string             // pid record path, handle mode only
	Log    logrus.FieldLogger // nil disables diagnostics
	Settle time.Duration      // zero = DefaultSettle
}

// New builds a Forwarder from cfg.
func New(cfg *config.Config, log logrus.FieldLogger) *Forwarder {
	return &Forwarder{
		Argv:  HelperCommand(cfg.ForwardListen(), cfg.ForwardTarget()),
		Mode:  Mode(cfg.ForwardMode()),
		State: cfg.ForwardState(),
		Log:   log,
	}
}

// Running reports whether the helper is currently running.
func (f *Forwarder) Running(ctx context.Context) (bool, error) {
	procs, err := f.find(ctx)
	if err != nil {
		return false, err
	}
	return len(procs) > 0, nil
}

// Toggle stops the helper if it is running and starts it otherwise. It
// returns whether the helper is running afterwards.
func (f *Forwarder) Toggle(ctx context.Context) (bool, error) {
	running, err := f.Running(ctx)
	if err != nil {
		return false, err
	}
	if running {
		return false, f.Stop(ctx)
	}
	if err := f.Start(ctx); err != nil {
		return false, err
	}
	return true, nil
}

// Start launches the helper detached from this process. It is reaped in
// the background if it exits while we are still alive.
func (f *Forwarder) Start(ctx context.Context) error {
	if len(f.Argv) == 0 {
		return errors.New("forward: empty helper command")
	}
	cmd := exec.Command(f.Argv[0], f.Argv[1:]...)
	detach(cmd)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("starting %s: %w", f.Argv[0], err)
	}
	pid := cmd.Process.Pid
	exited := make(chan error, 1)
	go func() {
		err := cmd.Wait()
		f.debugf("forward helper pid %d exited: %v", pid, exitStatus(err))
		exited <- err
	}()

	settle := f.Settle
	if settle <= 0 {
		settle = DefaultSettle
	}
	select {
	case err := <-exited:
		return fmt.Errorf("%s exited right after starting: %s", f.Argv[0], exitStatus(err))
	case <-ctx.Done():
		_ = cmd.Process.Kill()
		return ctx.Err()
	case <-time.After(settle):
	}
	f.debugf("forward helper started with pid %d", pid)

	if f.Mode == Probe {
		return nil
	}
	rec := Record{PID: int32(pid), Argv: slices.Clone(f.Argv), StartedAt: time.Now()}
	if err := writeRecord(f.State, rec); err != nil {
		// Without the record the helper can't be found again; don't leave it behind.
		_ = cmd.Process.Kill()
		return err
	}
	return nil
}

func exitStatus(err error) string {
	if err == nil {
		return "exit status 0"
	}
	return err.Error()
}

// Stop terminates the helper. Stopping a helper that is not running is
// not an error.
func (f *Forwarder) Stop(ctx context.Context) error {
	procs, err := f.find(ctx)
	if err != nil {
		return err
	}
	var errs error
	for _, p := range procs {
		if err := p.TerminateWithContext(ctx); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("terminating pid %d: %w", p.Pid, err))
			continue
		}
		f.debugf("forward helper pid %d terminated", p.Pid)
	}
	if f.Mode != Probe {
		errs = multierr.Append(errs, removeRecord(f.State))
	}
	return errs
}

func (f *Forwarder) find(ctx context.Context) ([]*process.Process, error) {
	switch f.Mode {
	case Probe:
		return f.probe(ctx)
	case Handle, "":
		return f.handle(ctx)
	default:
		return nil, fmt.Errorf("forward: unknown mode %q", f.Mode)
	}
}

// probe scans the process table for exact command line matches.
func (f *Forwarder) probe(ctx context.Context) ([]*process.Process, error) {
	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing processes: %w", err)
	}
	self := int32(os.Getpid())
	var out []*process.Process
	for _, p := range procs {
		if p.Pid == self {
			continue
		}
		if f.matches(ctx, p, f.Argv) {
			out = append(out, p)
		}
	}
	return out, nil
}

// handle resolves the pid record. A record whose process is gone or now
// runs something else is stale and removed.
func (f *Forwarder) handle(ctx context.Context) ([]*process.Process, error) {
	rec, err := readRecord(f.State)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	p, err := process.NewProcessWithContext(ctx, rec.PID)
	if err == nil && f.matches(ctx, p, rec.Argv) {
		return []*process.Process{p}, nil
	}
	f.debugf("discarding stale forward record for pid %d", rec.PID)
	return nil, removeRecord(f.State)
}

func (f *Forwarder) matches(ctx context.Context, p *process.Process, argv []string) bool {
	if ok, err := p.IsRunningWithContext(ctx); err != nil || !ok {
		return false
	}
	if st, err := p.StatusWithContext(ctx); err == nil && slices.Contains(st, process.Zombie) {
		return false
	}
	cmdline, err := p.CmdlineSliceWithContext(ctx)
	if err != nil {
		return false
	}
	return slices.Equal(cmdline, argv)
}

func (f *Forwarder) debugf(format string, args ...any) {
	if f.Log != nil {
		f.Log.Debugf(format, args...)
	}
}

func readRecord(path string) (*Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading forward record: %w", err)
	}
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("parsing forward record %s: %w", path, err)
	}
	return &rec, nil
}

func writeRecord(path string, rec Record) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating state directory: %w", err)
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encoding forward record: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing forward record: %w", err)
	}
	return nil
}

func removeRecord(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing forward record: %w", err)
	}
	return nil
}
