package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/zeebie-the-zebra/Podman-Open-WebUI-Manager-GUI/internal/app"
)

type logsOptions struct {
	Tail int
}

func newLogsCommand(root *rootOptions) *cobra.Command {
	opts := &logsOptions{}

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Print the persisted operational log",
		Example: `  webuictl logs
  webuictl logs --tail 20`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLogs(cmd, root, opts)
		},
	}
	addTailFlag(cmd.Flags(), &opts.Tail, "print only the last N lines")
	return cmd
}

func addTailFlag(fs *pflag.FlagSet, p *int, usage string) {
	fs.IntVarP(p, "tail", "n", 0, usage)
}

func runLogs(cmd *cobra.Command, root *rootOptions, opts *logsOptions) error {
	s, err := root.load(cmd)
	if err != nil {
		return err
	}
	a, err := s.newApp(cmd.Context(), app.Options{Status: cmd.ErrOrStderr()})
	if err != nil {
		return err
	}
	stopRelay := a.Relay(cmd.Context())
	defer stopRelay()

	text, err := a.Engine.ShowLogs()
	if err != nil {
		// Already reported on the status stream.
		return exitCode(1)
	}
	fmt.Fprint(cmd.OutOrStdout(), tail(text, opts.Tail))
	return nil
}

func tail(text string, n int) string {
	if n <= 0 {
		return text
	}
	lines := strings.SplitAfter(text, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "")
}
