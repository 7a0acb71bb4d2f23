package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/zeebie-the-zebra/Podman-Open-WebUI-Manager-GUI/internal/app"
	"github.com/zeebie-the-zebra/Podman-Open-WebUI-Manager-GUI/internal/workflow"
)

type opOptions struct {
	Follow bool
}

// newOpCommand builds the one-shot command for a lifecycle operation.
func newOpCommand(root *rootOptions, name, short string) *cobra.Command {
	opts := &opOptions{}
	op := workflow.Op(name)

	cmd := &cobra.Command{
		Use:   name,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOp(cmd, root, op, opts)
		},
	}
	if op == workflow.OpStart {
		cmd.Flags().BoolVarP(&opts.Follow, "follow", "f", false, "keep following container logs until interrupted")
	}
	return cmd
}

func runOp(cmd *cobra.Command, root *rootOptions, op workflow.Op, opts *opOptions) error {
	s, err := root.load(cmd)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	out := newSyncWriter(cmd.OutOrStdout())
	a, err := s.newApp(ctx, app.Options{Status: out, Containers: out})
	if err != nil {
		return err
	}
	stopRelay := a.Relay(context.Background())
	defer stopRelay()

	res, err := a.Engine.Do(cmd.Context(), op)
	if err != nil {
		return err
	}
	if !opts.Follow {
		// One-shot: the follower started by a successful start ends with us.
		cancel()
	}
	a.Engine.Wait()
	return exitCode(res.ExitCode)
}
