package main

import (
	"context"
	"fmt"
	"net/http"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/zeebie-the-zebra/Podman-Open-WebUI-Manager-GUI/internal/app"
	webuimcp "github.com/zeebie-the-zebra/Podman-Open-WebUI-Manager-GUI/internal/mcp"
)

type mcpOptions struct {
	HTTPAddr     string
	Instructions bool
}

func newMcpCommand(root *rootOptions) *cobra.Command {
	opts := &mcpOptions{}

	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Start the MCP server",
		Long: `Serve the lifecycle tools over the Model Context Protocol, on stdio by
default or over streamable HTTP with --http.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.Instructions {
				fmt.Fprint(cmd.OutOrStdout(), webuimcp.Instructions)
				return nil
			}
			return serve(cmd, root, opts.HTTPAddr)
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&opts.HTTPAddr, "http", "", "start HTTP server on address (e.g. :9090)")
	flags.BoolVar(&opts.Instructions, "instructions", false, "print model instructions and exit")
	return cmd
}

func serve(cmd *cobra.Command, root *rootOptions, httpAddr string) error {
	s, err := root.load(cmd)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	// stdout belongs to the stdio transport; relayed lines stay in the
	// scrollback views that webui_status reports.
	a, err := s.newApp(ctx, app.Options{})
	if err != nil {
		return err
	}
	stopRelay := a.Relay(context.Background())
	defer func() {
		cancel()
		a.Engine.Wait()
		stopRelay()
	}()

	server := webuimcp.NewServer(a)
	if httpAddr != "" {
		return serveHTTP(ctx, server, httpAddr, s.diag)
	}
	return server.Run(ctx, &mcpsdk.StdioTransport{})
}

func serveHTTP(ctx context.Context, server *mcpsdk.Server, addr string, log logrus.FieldLogger) error {
	handler := mcpsdk.NewStreamableHTTPHandler(
		func(_ *http.Request) *mcpsdk.Server { return server },
		nil,
	)

	httpServer := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	go func() {
		<-ctx.Done()
		_ = httpServer.Close()
	}()

	log.Infof("listening on %s", addr)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}
