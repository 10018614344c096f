// Package mcpserve exposes the console operations as MCP tools over stdio.
package mcpserve

import (
	"context"

	"github.com/lydakis/cmdconsole/internal/activity"
	"github.com/lydakis/cmdconsole/internal/command"
	"github.com/lydakis/cmdconsole/internal/config"
	"github.com/lydakis/cmdconsole/internal/console"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Tool names.
const (
	ToolHealth      = "health"
	ToolExecute     = "execute_command"
	ToolCommandLogs = "command_logs"
	ToolReference   = "reference_data"
)

type handler struct {
	exec     *console.Executor
	conn     config.Connection
	settings *config.Settings
}

// New builds an MCP server whose tools run against conn.
func New(exec *console.Executor, conn config.Connection, settings *config.Settings, version string) *server.MCPServer {
	if settings == nil {
		settings = config.Defaults()
	}
	h := &handler{exec: exec, conn: conn.Clone(), settings: settings}

	s := server.NewMCPServer("cmdconsole", version)
	s.AddTool(mcp.Tool{
		Name:        ToolHealth,
		Description: "Check that the command service is reachable",
		InputSchema: mcp.ToolInputSchema{Type: "object", Properties: map[string]any{}},
	}, h.health)
	s.AddTool(mcp.Tool{
		Name:        ToolExecute,
		Description: "Send a natural-language or direct-action command",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"mode":             map[string]any{"type": "string", "enum": []string{"natural", "direct"}},
				"raw_text":         map[string]any{"type": "string", "description": "Natural-language command text"},
				"fallback_payload": map[string]any{"type": "string", "description": "Optional JSON hint for natural mode"},
				"action":           map[string]any{"type": "string", "enum": settings.Actions},
				"payload":          map[string]any{"type": "string", "description": "JSON payload for direct mode"},
				"requested_by":     map[string]any{"type": "string"},
			},
		},
	}, h.execute)
	s.AddTool(mcp.Tool{
		Name:        ToolCommandLogs,
		Description: "List recent command executions",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"status": map[string]any{"type": "string", "enum": activity.Statuses},
				"search": map[string]any{"type": "string"},
			},
		},
	}, h.commandLogs)
	s.AddTool(mcp.Tool{
		Name:        ToolReference,
		Description: "List assets and tasks usable in payloads",
		InputSchema: mcp.ToolInputSchema{Type: "object", Properties: map[string]any{}},
	}, h.reference)
	return s
}

// ServeStdio serves s on stdin/stdout until the client disconnects.
func ServeStdio(s *server.MCPServer) error {
	return server.ServeStdio(s)
}

func (h *handler) health(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	p := h.exec.TestConnection(ctx, h.conn)
	result := mcp.NewToolResultStructuredOnly(p)
	result.IsError = p.State != console.ProbeSuccess
	return result, nil
}

func (h *handler) execute(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	mode, err := command.ParseMode(request.GetString("mode", string(command.ModeNatural)))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	requestedBy := request.GetString("requested_by", h.settings.RequestedBy)

	var in command.Input
	if mode == command.ModeDirect {
		in = command.Direct{
			RequestedBy: requestedBy,
			Action:      request.GetString("action", ""),
			Payload:     request.GetString("payload", ""),
		}
	} else {
		in = command.Natural{
			RequestedBy:     requestedBy,
			RawText:         request.GetString("raw_text", ""),
			FallbackPayload: request.GetString("fallback_payload", ""),
		}
	}

	out := h.exec.Execute(ctx, h.conn, in, h.settings.Actions)
	result := mcp.NewToolResultStructuredOnly(out.Report())
	result.IsError = out.Err != nil
	return result, nil
}

func (h *handler) commandLogs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	status := request.GetString("status", activity.StatusAll)
	if !activity.ValidStatus(status) {
		return mcp.NewToolResultError("unknown status " + status), nil
	}
	records, err := h.exec.FetchLogs(ctx, h.conn)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	visible := activity.Filter(records, status, request.GetString("search", ""))
	return mcp.NewToolResultStructuredOnly(map[string]any{
		"records": visible,
		"total":   len(records),
		"shown":   len(visible),
	}), nil
}

func (h *handler) reference(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultStructuredOnly(h.exec.FetchReference(ctx, h.conn)), nil
}
