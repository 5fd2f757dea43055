// Package mcp exposes the intelligence engine to AI agents over the Model
// Context Protocol.
package mcp

import (
	"github.com/mark3labs/mcp-go/server"

	"github.com/hazemfarra/argus/internal/engine"
)

// Version is set via ldflags at build time.
var Version = "dev"

// Server wraps an MCP server that exposes intelligence retrieval tools.
type Server struct {
	engine *engine.Engine
	mcp    *server.MCPServer
}

// NewServer creates a new MCP server over the given engine.
func NewServer(eng *engine.Engine) *Server {
	s := &Server{engine: eng}

	s.mcp = server.NewMCPServer(
		"argus",
		Version,
		server.WithToolCapabilities(false),
	)

	s.registerTools()

	return s
}

// registerTools adds all tool definitions and their handlers to the MCP server.
func (s *Server) registerTools() {
	s.mcp.AddTool(searchIntelTool, s.handleSearchIntel)
	s.mcp.AddTool(getContextTool, s.handleGetContext)
	s.mcp.AddTool(reportThreatTool, s.handleReportThreat)
	s.mcp.AddTool(getHistoryTool, s.handleGetHistory)
	s.mcp.AddTool(getStatusTool, s.handleGetStatus)
}

// Serve starts the MCP server on stdio. Stdout is used for MCP protocol
// messages; all logging must go to stderr.
func (s *Server) Serve() error {
	return server.ServeStdio(s.mcp)
}
