package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const defaultStatusLines = 20

type statusParams struct {
	Lines int `json:"lines,omitempty" jsonschema:"number of recent lines to show per view. Defaults to 20."`
}

func (h *handler) statusHandler(ctx context.Context, _ *mcp.CallToolRequest, params statusParams) (*mcp.CallToolResult, any, error) {
	n := params.Lines
	if n <= 0 {
		n = defaultStatusLines
	}
	cfg := h.app.Config
	ctr := cfg.ContainerSpec()

	var b strings.Builder
	fmt.Fprintf(&b, "Container: %s (%s)\n", ctr.Name, ctr.Image)
	fmt.Fprintf(&b, "Engine: %s\n", strings.Join(append(cfg.ElevateArgv(), cfg.EngineBinary()), " "))

	active, err := h.app.Engine.ForwardingActive(ctx)
	switch {
	case err != nil:
		fmt.Fprintf(&b, "Port forwarding: unknown (%v)\n", err)
	case active:
		fmt.Fprintf(&b, "Port forwarding: active (%d -> %s)\n", cfg.ForwardListen(), cfg.ForwardTarget())
	default:
		fmt.Fprintln(&b, "Port forwarding: inactive")
	}

	status, containers := h.app.Snapshot(n)
	writeSection(&b, "Status", status)
	writeSection(&b, "Container logs", containers)
	return textResult(b.String())
}

func writeSection(b *strings.Builder, title string, lines []string) {
	fmt.Fprintln(b)
	if len(lines) == 0 {
		fmt.Fprintf(b, "%s: (empty)\n", title)
		return
	}
	fmt.Fprintf(b, "%s:\n", title)
	for _, l := range lines {
		fmt.Fprintf(b, "  %s\n", l)
	}
}

type logsParams struct {
	Tail int `json:"tail,omitempty" jsonschema:"only return the last N lines. Defaults to the whole log."`
}

func (h *handler) logsHandler(_ context.Context, _ *mcp.CallToolRequest, params logsParams) (*mcp.CallToolResult, any, error) {
	text, err := h.app.Engine.ShowLogs()
	if err != nil {
		return errorResult(fmt.Sprintf("Failed to display logs: %v", err))
	}
	if params.Tail > 0 {
		lines := strings.Split(strings.TrimRight(text, "\n"), "\n")
		if len(lines) > params.Tail {
			lines = lines[len(lines)-params.Tail:]
		}
		text = strings.Join(lines, "\n") + "\n"
	}
	if strings.TrimSpace(text) == "" {
		return textResult("The log is empty.")
	}
	return textResult(text)
}
