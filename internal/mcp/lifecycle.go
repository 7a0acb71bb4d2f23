package mcp

import (
	"context"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/zeebie-the-zebra/Podman-Open-WebUI-Manager-GUI/internal/scheduler"
	"github.com/zeebie-the-zebra/Podman-Open-WebUI-Manager-GUI/internal/workflow"
)

type opParams struct{}

// opHandler returns the handler for one lifecycle operation.
func (h *handler) opHandler(name string) func(context.Context, *mcp.CallToolRequest, opParams) (*mcp.CallToolResult, any, error) {
	op := workflow.Op(name)
	return func(ctx context.Context, _ *mcp.CallToolRequest, _ opParams) (*mcp.CallToolResult, any, error) {
		out, err := h.app.Engine.Do(ctx, op)
		if errors.Is(err, scheduler.ErrBusy) {
			return errorResult(fmt.Sprintf("%s is already in progress; try again once it finishes.", op))
		}
		if err != nil {
			return errorResult(fmt.Sprintf("%s failed: %v", op, err))
		}
		if !out.OK() {
			return errorResult(fmt.Sprintf("%s\nExit code: %d", out, out.ExitCode))
		}
		return textResult(out.String())
	}
}
