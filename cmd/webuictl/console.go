package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/zeebie-the-zebra/Podman-Open-WebUI-Manager-GUI/internal/app"
	"github.com/zeebie-the-zebra/Podman-Open-WebUI-Manager-GUI/internal/workflow"
)

const consoleHelp = `Commands:
  start     run the container and follow its logs
  stop      force-remove the container
  update    pull the latest image
  forward   toggle port forwarding
  logs      print the persisted log
  clear     clear both views
  env [NAME=VALUE]
            show or change the container environment
  status    show port forwarding state
  help      show this help
  quit      stop following logs and exit`

func newConsoleCommand(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "console",
		Short: "Interactive session with live status and container logs",
		Long: `Read commands from standard input and run them in the background while
status lines and followed container logs are relayed to the terminal.

` + consoleHelp,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConsole(cmd, root)
		},
	}
}

func runConsole(cmd *cobra.Command, root *rootOptions) error {
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

	c := &console{app: a, out: out, ctx: ctx}
	c.loop(cmd.InOrStdin())

	// Running operations finish; the log follower ends with ctx.
	cancel()
	a.Engine.Wait()
	stopRelay()
	return nil
}

type console struct {
	app *app.App
	out io.Writer
	ctx context.Context
}

// loop reads commands until quit, end of input or ctx ends.
func (c *console) loop(in io.Reader) {
	lines := make(chan string)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(in)
		for sc.Scan() {
			lines <- sc.Text()
		}
	}()

	for {
		select {
		case <-c.ctx.Done():
			return
		case line, ok := <-lines:
			if !ok {
				return
			}
			if !c.exec(strings.Fields(line)) {
				return
			}
		}
	}
}

// exec runs one command and reports whether the console should go on.
func (c *console) exec(fields []string) bool {
	if len(fields) == 0 {
		return true
	}
	e := c.app.Engine

	switch name := fields[0]; name {
	case "quit", "exit":
		return false
	case "help":
		fmt.Fprintln(c.out, consoleHelp)
	case "clear":
		e.Clear()
	case "logs":
		if text, err := e.ShowLogs(); err == nil {
			fmt.Fprint(c.out, text)
		}
	case "status":
		active, err := e.ForwardingActive(c.ctx)
		switch {
		case err != nil:
			fmt.Fprintf(c.out, "port forwarding: unknown (%v)\n", err)
		case active:
			fmt.Fprintln(c.out, "port forwarding: active")
		default:
			fmt.Fprintln(c.out, "port forwarding: inactive")
		}
	case "env":
		for _, arg := range fields[1:] {
			k, v, ok := strings.Cut(arg, "=")
			if !ok {
				fmt.Fprintf(c.out, "%q: expected NAME=VALUE\n", arg)
				continue
			}
			if err := e.SetEnv(k, v); err != nil {
				fmt.Fprintln(c.out, err)
			}
		}
		for _, v := range e.Env() {
			fmt.Fprintf(c.out, "%s=%s\n", v.Name, v.Rendered())
		}
	default:
		op, err := workflow.ParseOp(name)
		if err != nil || op == workflow.OpFollow {
			fmt.Fprintf(c.out, "unknown command %q (try help)\n", name)
			return true
		}
		// Busy operations are reported on the status stream.
		_ = e.Dispatch(op)
	}
	return true
}
