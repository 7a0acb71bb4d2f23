package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/zeebie-the-zebra/Podman-Open-WebUI-Manager-GUI/internal/app"
	"github.com/zeebie-the-zebra/Podman-Open-WebUI-Manager-GUI/internal/config"
	"github.com/zeebie-the-zebra/Podman-Open-WebUI-Manager-GUI/internal/logging"
)

// rootOptions holds the persistent flags, resolved through viper so that
// WEBUICTL_CONFIG and WEBUICTL_LOG_LEVEL work as well.
type rootOptions struct {
	v *viper.Viper
}

func newRootCommand() *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("webuictl")
	v.AutomaticEnv()
	v.SetDefault("config", "")
	v.SetDefault("log_level", "")
	_ = v.BindEnv("config", "WEBUICTL_CONFIG")
	_ = v.BindEnv("log_level", "WEBUICTL_LOG_LEVEL")

	opts := &rootOptions{v: v}

	cmd := &cobra.Command{
		Use:   "webuictl",
		Short: "Manage the Open WebUI container",
		Long: `webuictl starts, stops and updates the Open WebUI container, toggles the
port-forwarding helper and keeps a timestamped log of everything it runs.

Run "webuictl console" for an interactive session that follows container logs.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cobra.EnableCommandSorting = false

	flags := cmd.PersistentFlags()
	flags.String("config", "", "configuration file (default: ./"+config.FileName+" if present)")
	flags.String("log-level", "", "diagnostic log level (debug, info, warn, error)")
	_ = v.BindPFlag("config", flags.Lookup("config"))
	_ = v.BindPFlag("log_level", flags.Lookup("log-level"))

	cmd.AddCommand(
		newOpCommand(opts, "start", "Run the container and follow its logs"),
		newOpCommand(opts, "stop", "Force-remove the container"),
		newOpCommand(opts, "update", "Pull the latest image"),
		newOpCommand(opts, "forward", "Toggle the port-forwarding helper"),
		newLogsCommand(opts),
		newHistoryCommand(opts),
		newEnvCommand(opts),
		newConsoleCommand(opts),
		newMcpCommand(opts),
		newVersionCommand(),
	)
	return cmd
}

// session is everything a subcommand needs once flags are resolved.
type session struct {
	cfg     *config.Config
	cfgPath string // file the config came from, or where it would be saved
	diag    *logging.Logger
}

func (o *rootOptions) load(cmd *cobra.Command) (*session, error) {
	diag := logging.New(cmd.ErrOrStderr(), o.v.GetString("log_level"))

	var (
		res *config.LoadResult
		err error
	)
	if path := o.v.GetString("config"); path != "" {
		res, err = config.LoadFile(path)
	} else {
		var wd string
		wd, err = os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("determining working directory: %w", err)
		}
		res, err = config.Load(wd)
	}
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	s := &session{cfg: res.Config, cfgPath: res.Path, diag: diag}
	if s.cfgPath == "" {
		s.cfgPath = filepath.Join(res.Config.BaseDir, config.FileName)
		diag.Debug("no config file found, using defaults")
	} else {
		diag.WithField("path", s.cfgPath).Debug("config loaded")
	}
	return s, nil
}

// newApp wires an App whose background activities end with ctx.
func (s *session) newApp(ctx context.Context, opts app.Options) (*app.App, error) {
	a, err := app.New(ctx, s.cfg, s.diag, opts)
	if err != nil {
		return nil, err
	}
	s.diag.Debugf("wired %s", a)
	return a, nil
}

// syncWriter serializes writes from the relay loop and command output.
type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func newSyncWriter(w io.Writer) *syncWriter {
	return &syncWriter{w: w}
}

// Fd exposes the underlying descriptor so terminal detection sees through
// the wrapper.
func (s *syncWriter) Fd() uintptr {
	if f, ok := s.w.(interface{ Fd() uintptr }); ok {
		return f.Fd()
	}
	return ^uintptr(0)
}

func (s *syncWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}
