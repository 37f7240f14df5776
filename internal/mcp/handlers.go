package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"hostel-mcp/internal/analysis"
	"hostel-mcp/internal/report"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog/log"
)

// ToolInput is the argument object shared by every analysis tool.
type ToolInput struct {
	Data json.RawMessage `json:"data,omitempty"`
}

// body re-wraps the tool arguments into a {"data": ...} request body.
func (in ToolInput) body() ([]byte, error) {
	if len(in.Data) == 0 {
		return nil, nil
	}
	return json.Marshal(in)
}

func (s *Server) toolHandler(kind analysis.Kind) mcp.ToolHandlerFor[ToolInput, any] {
	return func(ctx context.Context, req *mcp.CallToolRequest, in ToolInput) (*mcp.CallToolResult, any, error) {
		return s.callTool(kind, in), nil, nil
	}
}

func (s *Server) callTool(kind analysis.Kind, in ToolInput) *mcp.CallToolResult {
	start := time.Now()

	body, err := in.body()
	if err != nil {
		log.Error().Err(err).Str("metric", string(kind)).Msg("Failed to re-encode tool arguments")
		return errorResult(fmt.Sprintf("invalid arguments: %v", err))
	}

	o := report.Build(kind, body, s.synth, report.Options{Charts: s.cfg.EnableMermaidCharts})
	if !o.OK() {
		log.Warn().Err(o.Err).Str("metric", string(kind)).Dur("duration", time.Since(start)).Msg("Analysis tool failed")
		return errorResult(o.Err.Error())
	}

	raw, err := json.MarshalIndent(o.Result, "", "  ")
	if err != nil {
		log.Error().Err(err).Str("metric", string(kind)).Msg("Failed to encode report")
		return errorResult(fmt.Sprintf("failed to encode report: %v", err))
	}

	content := []mcp.Content{
		&mcp.TextContent{Text: o.Summary.String()},
		&mcp.TextContent{Text: string(raw)},
	}
	for _, chart := range o.Charts {
		content = append(content, &mcp.TextContent{Text: chart})
	}

	log.Info().Str("metric", string(kind)).Int("charts", len(o.Charts)).Dur("duration", time.Since(start)).Msg("Analysis tool completed")
	return &mcp.CallToolResult{Content: content}
}

func errorResult(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: msg}},
		IsError: true,
	}
}
