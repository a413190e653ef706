package mcp

import (
	"context"
	"log/slog"
	"os"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rendis/floxyview/internal/logging"
)

// ServerDeps holds the dependencies for creating a Server.
type ServerDeps struct {
	Version string
	Theme   string // default page theme for html output
	Logger  *slog.Logger
}

// Server wraps an MCP server exposing the flow translator as tools.
type Server struct {
	theme     string
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// NewServer creates a new Server with both tools registered.
func NewServer(deps ServerDeps) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = slog.New(logging.NewCorrelationHandler(
			slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo})))
	}
	version := deps.Version
	if version == "" {
		version = "dev"
	}

	s := &Server{
		theme:  deps.Theme,
		logger: logger,
	}

	mcpSrv := server.NewMCPServer(
		"floxyview",
		version,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
		server.WithInstructions("floxyview turns Floxy flow JSON documents into diagrams. Use floxy.render with the document text to get Mermaid flowchart source, an HTML preview page, or a Graphviz rendering; use floxy.example for a sample diagram showing every node shape and edge kind."),
	)

	mcpSrv.AddTools(s.tools()...)
	s.mcpServer = mcpSrv
	return s
}

// Serve starts the stdio transport and blocks until ctx is cancelled or stdin closes.
func (s *Server) Serve(ctx context.Context) error {
	stdio := server.NewStdioServer(s.mcpServer)
	return stdio.Listen(ctx, os.Stdin, os.Stdout)
}

// MCPServer returns the underlying MCPServer for testing or custom transports.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// tools returns the registered MCP tools as ServerTool entries.
func (s *Server) tools() []server.ServerTool {
	return []server.ServerTool{
		{Tool: renderTool(), Handler: s.handleRender},
		{Tool: exampleTool(), Handler: s.handleExample},
	}
}

// --- Tool definitions ---

func renderTool() mcp.Tool {
	return mcp.NewTool("floxy.render",
		mcp.WithDescription("Render a Floxy flow JSON document as a diagram"),
		mcp.WithString("definition", mcp.Description("Flow document as JSON text. Empty renders the example diagram")),
		mcp.WithString("format",
			mcp.Enum("mermaid", "html", "dot", "svg", "png"),
			mcp.Description("Output format (default: mermaid)"),
		),
		mcp.WithString("theme",
			mcp.Enum("default", "dark", "forest", "neutral"),
			mcp.Description("Mermaid theme for html output (default: dark)"),
		),
	)
}

func exampleTool() mcp.Tool {
	return mcp.NewTool("floxy.example",
		mcp.WithDescription("Return the example flowchart showing every node shape and edge kind"),
	)
}
