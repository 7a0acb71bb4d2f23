// Package app wires the runner, relay, operational log, forwarder and run
// history into a workflow.Engine.
package app

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"

	"github.com/zeebie-the-zebra/Podman-Open-WebUI-Manager-GUI/internal/config"
	"github.com/zeebie-the-zebra/Podman-Open-WebUI-Manager-GUI/internal/forward"
	"github.com/zeebie-the-zebra/Podman-Open-WebUI-Manager-GUI/internal/oplog"
	"github.com/zeebie-the-zebra/Podman-Open-WebUI-Manager-GUI/internal/podman"
	"github.com/zeebie-the-zebra/Podman-Open-WebUI-Manager-GUI/internal/relay"
	"github.com/zeebie-the-zebra/Podman-Open-WebUI-Manager-GUI/internal/report"
	"github.com/zeebie-the-zebra/Podman-Open-WebUI-Manager-GUI/internal/runner"
	"github.com/zeebie-the-zebra/Podman-Open-WebUI-Manager-GUI/internal/scheduler"
	"github.com/zeebie-the-zebra/Podman-Open-WebUI-Manager-GUI/internal/workflow"
)

// Defaults for the in-memory views.
const (
	DefaultScrollback   = 1000
	DefaultHistoryCache = 64
)

// Options controls where relayed lines are echoed.
type Options struct {
	Status     io.Writer // operational lines; nil = scrollback only
	Containers io.Writer // followed container output; nil = scrollback only
	Scrollback int       // lines kept per view
}

// App is a fully wired manager.
type App struct {
	Config     *config.Config
	Engine     *workflow.Engine
	Loop       *relay.Loop
	History    report.Store
	Status     *relay.Scrollback
	Containers *relay.Scrollback
}

// New builds an App from cfg. ctx bounds background activities such as
// following container logs.
func New(ctx context.Context, cfg *config.Config, diag logrus.FieldLogger, opts Options) (*App, error) {
	policy, err := relay.ParsePolicy(cfg.RelayPolicy())
	if err != nil {
		return nil, err
	}
	size := opts.Scrollback
	if size <= 0 {
		size = DefaultScrollback
	}

	ops := relay.NewStream("status", cfg.RelayBuffer())
	containers := relay.NewStream("container", cfg.RelayBuffer())
	log := oplog.New(cfg.LogFile(), ops, diag)

	history := report.NewLRUStore(DefaultHistoryCache, report.NewDiskStore(filepath.Join(cfg.StateDir(), "runs")))
	recorder := &report.Recorder{
		Store: history,
		OnError: func(rec *report.RunRecord, err error) {
			diag.WithError(err).Warnf("run %s not recorded", rec.ID)
		},
	}

	a := &App{
		Config:     cfg,
		Loop:       relay.NewLoop(cfg.RelayInterval(), policy),
		History:    history,
		Status:     relay.NewScrollback(size),
		Containers: relay.NewScrollback(size),
	}
	a.Loop.Bind(ops, surface(a.Status, opts.Status, "[status]", color.FgCyan))
	a.Loop.Bind(containers, surface(a.Containers, opts.Containers, "[container]", color.FgMagenta))

	a.Engine = &workflow.Engine{
		Config:   cfg,
		Commands: podman.New(cfg),
		Runner: &runner.Runner{
			Sink:     log,
			Log:      diag,
			Timeout:  cfg.Timeout(),
			Recorder: recorder,
		},
		Log:       log,
		Container: containers,
		Forwarder: forward.New(cfg, diag),
		Scheduler: scheduler.New(),
		Views:     []workflow.Clearer{a.Status, a.Containers},
		Diag:      diag,
		Base:      ctx,
	}
	return a, nil
}

func surface(view *relay.Scrollback, out io.Writer, label string, attr color.Attribute) relay.Surface {
	if out == nil {
		return view
	}
	return relay.Tee(view, relay.NewWriter(out, label, attr))
}

// Relay runs the display loop in the background. The returned function
// stops it after everything still buffered has been delivered.
func (a *App) Relay(ctx context.Context) (stop func()) {
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		a.Loop.Run(ctx)
	}()
	return func() {
		cancel()
		<-done
	}
}

// Snapshot returns the newest n lines of both views.
func (a *App) Snapshot(n int) (status, containers []string) {
	return a.Status.Tail(n), a.Containers.Tail(n)
}

// String describes the app for diagnostics.
func (a *App) String() string {
	return fmt.Sprintf("engine=%s container=%s log=%s", a.Config.EngineBinary(), a.Config.ContainerSpec().Name, a.Config.LogFile())
}
