package mcpserver

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/rsarva/ContextAPI/internal/rag/assembler"
	"github.com/rsarva/ContextAPI/pkg/logger_i"
)

const Version = "0.1.0"

// Server exposes the retrieval pipeline to MCP clients over stdio.
// Agents get the same search and context assembly the HTTP API serves.
type Server struct {
	assembler assembler.Service
	server    *mcp.Server
	logger    *logger_i.Logger
}

func NewServer(asm assembler.Service) *Server {
	impl := &mcp.Implementation{
		Name:    "context-api",
		Version: Version,
	}

	s := &Server{
		assembler: asm,
		server:    mcp.NewServer(impl, nil),
		logger:    logger_i.NewLogger("McpServer"),
	}
	s.registerTools()
	return s
}

// Run blocks until the context is cancelled or the transport closes.
func (s *Server) Run(ctx context.Context) error {
	s.logger.Info("MCP server listening on stdio")
	return s.server.Run(ctx, &mcp.StdioTransport{})
}
