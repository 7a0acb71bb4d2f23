package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/zeebie-the-zebra/Podman-Open-WebUI-Manager-GUI/internal/config"
)

type envParams struct {
	Name  string `json:"name,omitempty" jsonschema:"variable to change. Omit to only list the variables."`
	Value string `json:"value,omitempty" jsonschema:"new value for name"`
}

func (h *handler) envHandler(_ context.Context, _ *mcp.CallToolRequest, params envParams) (*mcp.CallToolResult, any, error) {
	if params.Name != "" {
		if err := h.app.Engine.SetEnv(params.Name, params.Value); err != nil {
			return errorResult(err.Error())
		}
	}
	return textResult(formatEnv(h.app.Engine.Env()))
}

func formatEnv(vars []config.EnvVar) string {
	var b strings.Builder
	for _, v := range vars {
		fmt.Fprintf(&b, "%s=%s", v.Name, v.Rendered())
		if v.Kind == config.Choice && len(v.Options) > 0 {
			fmt.Fprintf(&b, "  (one of %s)", strings.Join(v.Options, ", "))
		}
		if v.Kind == config.Flag {
			fmt.Fprint(&b, "  (flag)")
		}
		fmt.Fprintln(&b)
	}
	return b.String()
}
