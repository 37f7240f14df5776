package mcp

import (
	"context"

	"hostel-mcp/internal/config"
	"hostel-mcp/internal/narrative"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog/log"
)

// Server holds the state for the MCP server.
type Server struct {
	cfg   *config.AppConfig
	synth *narrative.Synthesizer
	mcp   *mcp.Server
}

// NewServer creates a new MCP server with every analysis tool registered.
func NewServer(cfg *config.AppConfig, version string) *Server {
	s := &Server{
		cfg:   cfg,
		synth: narrative.New(cfg.Thresholds),
	}
	s.mcp = mcp.NewServer(&mcp.Implementation{
		Name:    "hostel-mcp",
		Version: version,
	}, nil)
	s.registerTools()
	return s
}

// Serve runs the MCP session over Stdio until the client disconnects or ctx is done.
func (s *Server) Serve(ctx context.Context) error {
	log.Info().Int("tools", len(toolDefinitions())).Msg("MCP Server listening on stdio")
	return s.mcp.Run(ctx, &mcp.StdioTransport{})
}
