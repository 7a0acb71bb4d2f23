package main

import (
	"fmt"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/zeebie-the-zebra/Podman-Open-WebUI-Manager-GUI/internal/app"
	"github.com/zeebie-the-zebra/Podman-Open-WebUI-Manager-GUI/internal/report"
)

type historyOptions struct {
	Limit   int
	NoStyle bool
}

func newHistoryCommand(root *rootOptions) *cobra.Command {
	opts := &historyOptions{}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent engine commands and their exit codes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(cmd, root, opts)
		},
	}
	flags := cmd.Flags()
	flags.IntVar(&opts.Limit, "limit", 20, "maximum number of runs to list")
	flags.BoolVar(&opts.NoStyle, "no-style", false, "render a plain table without colors")
	return cmd
}

func runHistory(cmd *cobra.Command, root *rootOptions, opts *historyOptions) error {
	s, err := root.load(cmd)
	if err != nil {
		return err
	}
	a, err := s.newApp(cmd.Context(), app.Options{})
	if err != nil {
		return err
	}
	recs, err := a.History.List(opts.Limit)
	if err != nil {
		return err
	}
	if len(recs) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No runs recorded yet.")
		return nil
	}

	tw := table.NewWriter()
	tw.SetOutputMirror(cmd.OutOrStdout())
	tw.AppendHeader(table.Row{"Started", "Status", "Duration", "Lines", "Command"})
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 5, WidthMax: 80, WidthMaxEnforcer: text.WrapSoft},
	})
	for _, r := range recs {
		tw.AppendRow(historyRow(r))
	}
	tw.SetStyle(table.StyleLight)
	if !opts.NoStyle && isTerminal(cmd) {
		tw.SetStyle(table.StyleColoredBright)
	}
	tw.Render()
	return nil
}

func historyRow(r *report.RunRecord) table.Row {
	cmdline := r.Command()
	if r.Error != "" {
		cmdline += "\n" + r.Error
	}
	return table.Row{
		r.StartedAt.Format(time.DateTime),
		r.Status(),
		r.Duration.Round(time.Millisecond),
		r.Lines,
		cmdline,
	}
}

func isTerminal(cmd *cobra.Command) bool {
	f, ok := cmd.OutOrStdout().(interface{ Fd() uintptr })
	return ok && isatty.IsTerminal(f.Fd())
}
