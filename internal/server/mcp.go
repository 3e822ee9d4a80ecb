package server

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"sql-explainer/pkg/errors"
	"sql-explainer/pkg/sqlformat"
	"sql-explainer/pkg/validation"
)

const (
	explainToolName = "explain_sql"
	formatToolName  = "format_sql"
)

// NewMCPServer exposes the explainer as MCP tools.
func NewMCPServer(explainer Explainer, validator *validation.Validator, logger *zap.Logger, version string) *mcpserver.MCPServer {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validator == nil {
		validator = validation.NewValidator(0)
	}
	t := &mcpTools{explainer: explainer, validator: validator, logger: logger.With(zap.String("component", "mcp"))}

	s := mcpserver.NewMCPServer("SQL Explainer", version, mcpserver.WithToolCapabilities(false))
	s.AddTool(explainTool(), t.handleExplain)
	s.AddTool(formatTool(), t.handleFormat)
	return s
}

// NewMCPHandler serves s over the streamable HTTP transport.
func NewMCPHandler(s *mcpserver.MCPServer) *mcpserver.StreamableHTTPServer {
	return mcpserver.NewStreamableHTTPServer(s)
}

type mcpTools struct {
	explainer Explainer
	validator *validation.Validator
	logger    *zap.Logger
}

func explainTool() mcp.Tool {
	return mcp.NewTool(explainToolName,
		mcp.WithDescription("Explain in plain language what a SQL query or script does. Long scripts are explained part by part."),
		mcp.WithString("sql", mcp.Required(), mcp.Description("The SQL text to explain")),
	)
}

func formatTool() mcp.Tool {
	return mcp.NewTool(formatToolName,
		mcp.WithDescription("Normalize SQL formatting: uppercase keywords and put each clause on its own line. Does not contact the model."),
		mcp.WithString("sql", mcp.Required(), mcp.Description("The SQL text to format")),
	)
}

func (t *mcpTools) handleExplain(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sql, ok := stringParam(req, "sql")
	if !ok {
		return mcp.NewToolResultError("sql parameter is required"), nil
	}
	if err := t.validator.Validate(sql); err != nil {
		return mcp.NewToolResultError(errors.GetMessage(err)), nil
	}

	exp, err := t.explainer.Explain(ctx, sql)
	if err != nil {
		t.logger.Warn("explain tool failed", zap.String("code", errors.GetCode(err)), zap.Error(err))
		return mcp.NewToolResultError(errors.GetMessage(err)), nil
	}

	text := exp.Text
	if exp.Partial() {
		text = fmt.Sprintf("%s\n\n(%d of %d parts could not be explained)", text, len(exp.Skipped), exp.Chunks)
	}
	return mcp.NewToolResultText(text), nil
}

func (t *mcpTools) handleFormat(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sql, ok := stringParam(req, "sql")
	if !ok {
		return mcp.NewToolResultError("sql parameter is required"), nil
	}
	if err := t.validator.Validate(sql); err != nil {
		return mcp.NewToolResultError(errors.GetMessage(err)), nil
	}
	return mcp.NewToolResultText(sqlformat.Normalize(sql)), nil
}

// stringParam reads a string argument; ok is false when it is absent or not a string.
func stringParam(req mcp.CallToolRequest, key string) (string, bool) {
	args, ok := req.Params.Arguments.(map[string]interface{})
	if !ok {
		return "", false
	}
	val, ok := args[key].(string)
	return val, ok
}
