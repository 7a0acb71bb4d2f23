// Package workflow implements the container lifecycle operations. It is
// consumed by the console, the one-shot CLI commands and the MCP server.
package workflow

import (
	"context"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/zeebie-the-zebra/Podman-Open-WebUI-Manager-GUI/internal/config"
	"github.com/zeebie-the-zebra/Podman-Open-WebUI-Manager-GUI/internal/oplog"
	"github.com/zeebie-the-zebra/Podman-Open-WebUI-Manager-GUI/internal/podman"
	"github.com/zeebie-the-zebra/Podman-Open-WebUI-Manager-GUI/internal/relay"
	"github.com/zeebie-the-zebra/Podman-Open-WebUI-Manager-GUI/internal/runner"
	"github.com/zeebie-the-zebra/Podman-Open-WebUI-Manager-GUI/internal/scheduler"
)

// CommandRunner executes invocations.
// Implemented by runner.Runner.
type CommandRunner interface {
	Run(ctx context.Context, inv runner.Invocation) *runner.Result
	Follow(ctx context.Context, inv runner.Invocation, emit func(line string)) *runner.Result
}

// Forwarder controls the port-forwarding helper.
// Implemented by forward.Forwarder.
type Forwarder interface {
	Running(ctx context.Context) (bool, error)
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

// Clearer is a display surface that can be emptied.
type Clearer interface {
	Clear()
}

// Engine holds shared dependencies for all lifecycle operations.
type Engine struct {
	Config    *config.Config
	Commands  *podman.Commands
	Runner    CommandRunner
	Log       *oplog.Log    // operational log
	Container *relay.Stream // followed container output
	Forwarder Forwarder
	Scheduler *scheduler.Scheduler
	Views     []Clearer // emptied by Clear
	Diag      logrus.FieldLogger

	// Base bounds background activities such as following container
	// logs. Nil means they run until their process exits.
	Base context.Context

	envMu sync.Mutex
	once  sync.Once
}

// Start runs the container. When it starts, its logs are followed in the
// background.
func (e *Engine) Start(ctx context.Context) Outcome {
	e.Log.Message("Starting container...")
	res := e.Runner.Run(ctx, e.Commands.Run(e.Env()))
	if res.ExitCode != 0 {
		e.Log.Printf("Failed to start (exit code %d)", res.ExitCode)
		return Outcome{Op: OpStart, ExitCode: res.ExitCode, Detail: fmt.Sprintf("failed to start (exit code %d)", res.ExitCode)}
	}
	e.FollowInBackground()
	return Outcome{Op: OpStart, Detail: "container started"}
}

// Stop force-removes the container. There is no retry.
func (e *Engine) Stop(ctx context.Context) Outcome {
	e.Log.Message("Stopping container...")
	res := e.Runner.Run(ctx, e.Commands.Remove())
	if res.ExitCode != 0 {
		e.Log.Printf("Stop failed (exit code %d)", res.ExitCode)
		return Outcome{Op: OpStop, ExitCode: res.ExitCode, Detail: fmt.Sprintf("stop failed (exit code %d)", res.ExitCode)}
	}
	return Outcome{Op: OpStop, Detail: "container removed"}
}

// Update pulls the image. A running container is left alone.
func (e *Engine) Update(ctx context.Context) Outcome {
	e.Log.Message("Starting update process...")
	res := e.Runner.Run(ctx, e.Commands.Pull())
	if res.ExitCode != 0 {
		e.Log.Message("Pull failed - update aborted")
		return Outcome{Op: OpUpdate, ExitCode: res.ExitCode, Detail: fmt.Sprintf("pull failed (exit code %d)", res.ExitCode)}
	}
	e.Log.Message("Update completed successfully!")
	return Outcome{Op: OpUpdate, Detail: "image updated"}
}

// Follow streams the container's logs onto the container stream until the
// followed process exits or ctx ends. Lines are not persisted.
func (e *Engine) Follow(ctx context.Context) Outcome {
	e.Log.Message("Starting to fetch container logs...")
	res := e.Runner.Follow(ctx, e.Commands.Logs(), e.Container.Publish)
	if res.Err != nil {
		e.Log.Printf("Error fetching container logs: %v", res.Err)
		return Outcome{Op: OpFollow, ExitCode: res.ExitCode, Detail: res.Err.Error()}
	}
	e.debugf("log follower exited with code %d after %d lines", res.ExitCode, res.Lines)
	return Outcome{Op: OpFollow, ExitCode: res.ExitCode, Detail: fmt.Sprintf("%d lines followed", res.Lines)}
}

// FollowInBackground starts Follow as a detached activity bound to Base.
// Only one follower runs at a time.
func (e *Engine) FollowInBackground() {
	_ = e.submit(OpFollow, func() { e.Follow(e.base()) })
}

// ToggleForwarding stops the forwarding helper if it runs and starts it
// otherwise.
func (e *Engine) ToggleForwarding(ctx context.Context) Outcome {
	running, err := e.Forwarder.Running(ctx)
	if err != nil {
		e.Log.Printf("Port forwarding check failed: %v", err)
		return Outcome{Op: OpForward, ExitCode: 1, Detail: err.Error()}
	}

	if running {
		e.Log.Message("Stopping port forwarding...")
		if err := e.Forwarder.Stop(ctx); err != nil {
			e.Log.Printf("Failed to stop port forwarding: %v", err)
			return Outcome{Op: OpForward, ExitCode: 1, Detail: err.Error()}
		}
		return Outcome{Op: OpForward, Detail: "port forwarding stopped"}
	}

	e.Log.Message("Starting port forwarding...")
	if err := e.Forwarder.Start(ctx); err != nil {
		e.Log.Printf("Failed to start port forwarding: %v", err)
		return Outcome{Op: OpForward, ExitCode: 1, Detail: err.Error()}
	}
	return Outcome{Op: OpForward, Detail: "port forwarding started"}
}

// ForwardingActive reports whether the forwarding helper is running.
func (e *Engine) ForwardingActive(ctx context.Context) (bool, error) {
	return e.Forwarder.Running(ctx)
}

// ShowLogs returns the persisted operational log. A read failure is
// itself logged and returned.
func (e *Engine) ShowLogs() (string, error) {
	text, err := e.Log.ReadAll()
	if err != nil {
		e.Log.Printf("Failed to display logs: %v", err)
		return "", err
	}
	return text, nil
}

// Clear empties every display view.
func (e *Engine) Clear() {
	for _, v := range e.Views {
		v.Clear()
	}
}

// Env returns the container environment used by the next Start.
func (e *Engine) Env() []config.EnvVar {
	e.envMu.Lock()
	defer e.envMu.Unlock()
	return e.Config.EnvVars()
}

// SetEnv changes one container environment value.
func (e *Engine) SetEnv(name, value string) error {
	e.envMu.Lock()
	defer e.envMu.Unlock()
	return e.Config.SetEnv(name, value)
}

// SaveConfig persists the configuration, including env choices, to path.
func (e *Engine) SaveConfig(path string) error {
	e.envMu.Lock()
	defer e.envMu.Unlock()
	return config.Save(path, e.Config)
}

func (e *Engine) base() context.Context {
	if e.Base != nil {
		return e.Base
	}
	return context.Background()
}

func (e *Engine) sched() *scheduler.Scheduler {
	e.once.Do(func() {
		if e.Scheduler == nil {
			e.Scheduler = scheduler.New()
		}
	})
	return e.Scheduler
}

func (e *Engine) debugf(format string, args ...any) {
	if e.Diag != nil {
		e.Diag.Debugf(format, args...)
	}
}
