package mcp

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/zeebie-the-zebra/Podman-Open-WebUI-Manager-GUI/internal/report"
)

const defaultHistoryLimit = 10

type historyParams struct {
	Limit int `json:"limit,omitempty" jsonschema:"maximum number of runs to list. Defaults to 10."`
}

func (h *handler) historyHandler(_ context.Context, _ *mcp.CallToolRequest, params historyParams) (*mcp.CallToolResult, any, error) {
	limit := params.Limit
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	recs, err := h.app.History.List(limit)
	if err != nil {
		return errorResult(fmt.Sprintf("Failed to read history: %v", err))
	}
	if len(recs) == 0 {
		return textResult("No runs recorded yet.")
	}
	return textResult(formatHistory(recs))
}

func formatHistory(recs []*report.RunRecord) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Runs (%d, newest first):\n", len(recs))
	for _, r := range recs {
		fmt.Fprintf(&b, "%s  %-13s  %6s  %s\n",
			r.StartedAt.Format(time.DateTime), r.Status(), r.Duration.Round(time.Millisecond), r.Command())
		if r.Error != "" {
			fmt.Fprintf(&b, "    error: %s\n", r.Error)
		}
	}
	return b.String()
}
