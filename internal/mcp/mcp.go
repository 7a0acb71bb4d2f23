// Package mcp provides the webuictl MCP server, registering the container
// lifecycle tools and publishing model instructions.
package mcp

import (
	_ "embed"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	webuictl "github.com/zeebie-the-zebra/Podman-Open-WebUI-Manager-GUI"
	"github.com/zeebie-the-zebra/Podman-Open-WebUI-Manager-GUI/internal/app"
)

//go:embed instructions.md
var Instructions string

// handler holds shared dependencies for all tool handlers.
type handler struct {
	app *app.App
}

// NewServer creates an MCP server with all webuictl tools registered.
func NewServer(a *app.App) *mcp.Server {
	h := &handler{app: a}

	opts := &mcp.ServerOptions{
		Instructions: Instructions,
		Capabilities: &mcp.ServerCapabilities{
			Tools: &mcp.ToolCapabilities{ListChanged: false},
		},
	}
	s := mcp.NewServer(&mcp.Implementation{Name: "webuictl", Version: webuictl.Version}, opts)

	mcp.AddTool(s, &mcp.Tool{
		Name: "webui_start",
		Description: `Run the Open WebUI container and start following its logs.

Fails if the container already exists or the engine reports an error. The exit code is returned.`,
	}, h.opHandler("start"))

	mcp.AddTool(s, &mcp.Tool{
		Name:        "webui_stop",
		Description: "Force-remove the Open WebUI container. Named volumes are kept.",
	}, h.opHandler("stop"))

	mcp.AddTool(s, &mcp.Tool{
		Name: "webui_update",
		Description: `Pull the latest Open WebUI image.

A running container is not restarted; use webui_stop then webui_start to switch to the new image.`,
	}, h.opHandler("update"))

	mcp.AddTool(s, &mcp.Tool{
		Name:        "webui_forward",
		Description: "Toggle the TCP port-forwarding helper: stop it if it is running, start it otherwise.",
	}, h.opHandler("forward"))

	mcp.AddTool(s, &mcp.Tool{
		Name:        "webui_status",
		Description: "Show the configured container, whether port forwarding is active, and the most recent status and container log lines.",
	}, h.statusHandler)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "webui_logs",
		Description: "Return the persisted operational log, optionally only its last lines.",
	}, h.logsHandler)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "webui_history",
		Description: "List recent engine commands with their exit codes, newest first.",
	}, h.historyHandler)

	mcp.AddTool(s, &mcp.Tool{
		Name: "webui_env",
		Description: `List the container environment variables passed on start, or change one.

Flag variables accept 1/0/true/false; choice variables must be one of their listed options.`,
	}, h.envHandler)

	return s
}

// textResult is a helper to build a text-only tool result.
func textResult(text string) (*mcp.CallToolResult, any, error) {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}, nil, nil
}

// errorResult is a helper to build an error tool result.
func errorResult(text string) (*mcp.CallToolResult, any, error) {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
		IsError: true,
	}, nil, nil
}
